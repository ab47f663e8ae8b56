package repository

import (
	"context"
	"testing"
	"time"

	"github.com/andy/workbench/internal/db"
	"github.com/andy/workbench/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.OpenPlain(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations())
	t.Cleanup(func() { database.Close() })
	return database
}

type fixture struct {
	ctx      context.Context
	db       *db.DB
	customer *domain.Customer
	user     *domain.User
	project  *domain.Project
	job      *domain.PrintJob
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	database := newTestDB(t)

	customer := domain.NewCustomer("Acme")
	require.NoError(t, NewCustomerRepo(database).Create(ctx, customer))

	user, err := NewUserRepo(database).EnsureByName(ctx, "andy")
	require.NoError(t, err)

	project := domain.NewProject("Website", customer.ID)
	require.NoError(t, NewProjectRepo(database).Create(ctx, project))

	job := domain.NewPrintJob("Bracket", customer.ID)
	require.NoError(t, NewPrintJobRepo(database).Create(ctx, job))

	return &fixture{ctx: ctx, db: database, customer: customer, user: user, project: project, job: job}
}

func TestTimeLogRepo_OpenLogLifecycle(t *testing.T) {
	f := newFixture(t)
	repo := NewTimeLogRepo(f.db)
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	open, err := repo.FindOpen(f.ctx, f.project.Subject(), f.user.ID)
	require.NoError(t, err)
	assert.Nil(t, open)

	log := domain.NewTimeLog(f.project.Subject(), f.user.ID, start)
	require.NoError(t, repo.Create(f.ctx, log))

	open, err = repo.FindOpen(f.ctx, f.project.Subject(), f.user.ID)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, log.ID, open.ID)
	assert.True(t, open.StartTime.Equal(start))

	end := start.Add(90 * time.Minute)
	ended, err := repo.End(f.ctx, log.ID, end)
	require.NoError(t, err)
	require.NotNil(t, ended)
	assert.True(t, ended.EndTime.Equal(end))

	// a second end leaves the first end time alone
	again, err := repo.End(f.ctx, log.ID, end.Add(time.Hour))
	require.NoError(t, err)
	assert.Nil(t, again)

	stored, err := repo.GetByID(f.ctx, log.ID)
	require.NoError(t, err)
	assert.True(t, stored.EndTime.Equal(end))
}

func TestTimeLogRepo_EndUnknown(t *testing.T) {
	f := newFixture(t)
	got, err := NewTimeLogRepo(f.db).End(f.ctx, 999, time.Now())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTimeLogRepo_SecondOpenLogConflicts(t *testing.T) {
	f := newFixture(t)
	repo := NewTimeLogRepo(f.db)
	now := time.Now()

	require.NoError(t, repo.Create(f.ctx, domain.NewTimeLog(f.job.Subject(), f.user.ID, now)))

	err := repo.Create(f.ctx, domain.NewTimeLog(f.job.Subject(), f.user.ID, now.Add(time.Second)))
	assert.ErrorIs(t, err, ErrConflict)

	// other subjects are independent
	require.NoError(t, repo.Create(f.ctx, domain.NewTimeLog(f.project.Subject(), f.user.ID, now)))
}

func TestTimeLogRepo_ClosedLogsDoNotConflict(t *testing.T) {
	f := newFixture(t)
	repo := NewTimeLogRepo(f.db)
	start := time.Now().Add(-2 * time.Hour)

	closed := domain.NewTimeLog(f.project.Subject(), f.user.ID, start)
	closed.Close(start.Add(time.Hour))
	require.NoError(t, repo.Create(f.ctx, closed))
	require.NoError(t, repo.Create(f.ctx, domain.NewTimeLog(f.project.Subject(), f.user.ID, start.Add(time.Hour))))
}

func TestTimeLogRepo_ListFilters(t *testing.T) {
	f := newFixture(t)
	repo := NewTimeLogRepo(f.db)
	base := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)

	child := domain.NewProject("Backend", f.customer.ID)
	child.ParentID = &f.project.ID
	require.NoError(t, NewProjectRepo(f.db).Create(f.ctx, child))

	logs := []*domain.TimeLog{
		domain.NewTimeLog(f.project.Subject(), f.user.ID, base),
		domain.NewTimeLog(child.Subject(), f.user.ID, base.Add(time.Hour)),
		domain.NewTimeLog(f.job.Subject(), f.user.ID, base.Add(2*time.Hour)),
	}
	for _, l := range logs[:2] {
		l.Close(l.StartTime.Add(30 * time.Minute))
	}
	for _, l := range logs {
		require.NoError(t, repo.Create(f.ctx, l))
	}

	got, err := repo.List(f.ctx, TimeLogFilter{ProjectIDs: []int64{f.project.ID, child.ID}})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = repo.List(f.ctx, TimeLogFilter{ProjectIDs: []int64{f.project.ID, child.ID}, ExcludeID: &logs[0].ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, logs[1].ID, got[0].ID)

	before := base.Add(90 * time.Minute)
	got, err = repo.List(f.ctx, TimeLogFilter{StartedBefore: &before})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = repo.List(f.ctx, TimeLogFilter{OpenOnly: true, UserID: &f.user.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, f.job.ID, *got[0].PrintJobID)

	subject := f.job.Subject()
	got, err = repo.List(f.ctx, TimeLogFilter{Subject: &subject, ClosedOnly: true})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestProjectRepo_Children(t *testing.T) {
	f := newFixture(t)
	repo := NewProjectRepo(f.db)

	a := domain.NewProject("A", f.customer.ID)
	a.ParentID = &f.project.ID
	b := domain.NewProject("B", f.customer.ID)
	b.ParentID = &f.project.ID
	require.NoError(t, repo.Create(f.ctx, a))
	require.NoError(t, repo.Create(f.ctx, b))

	kids, err := repo.Children(f.ctx, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID}, kids)

	kids, err = repo.Children(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, kids)
}

func TestRateCardRepo_TiersRoundTrip(t *testing.T) {
	f := newFixture(t)
	repo := NewRateCardRepo(f.db)

	card := domain.NewRateCard("Design", "studio", 60)
	lo, hi := 30.0, 45.0
	card.Friends = domain.RateTier{Min: &lo, Max: &hi}
	require.NoError(t, repo.Create(f.ctx, card))

	got, err := repo.GetByService(f.ctx, "Design")
	require.NoError(t, err)
	assert.Equal(t, 60.0, got.RateFor(domain.TierStandard))
	assert.Equal(t, 30.0, got.RateFor(domain.TierFriends))
	assert.Nil(t, got.Standard.Max)

	err = repo.Create(f.ctx, domain.NewRateCard("Design", "", 1))
	assert.ErrorIs(t, err, ErrConflict)

	_, err = repo.GetByID(f.ctx, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerRepo_ArchiveAndFriend(t *testing.T) {
	f := newFixture(t)
	repo := NewCustomerRepo(f.db)

	f.customer.IsFriend = true
	require.NoError(t, repo.Update(f.ctx, f.customer))
	require.NoError(t, repo.Archive(f.ctx, f.customer.ID))

	active, err := repo.List(f.ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := repo.List(f.ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsFriend)
	assert.Equal(t, domain.TierFriends, all[0].Tier())

	assert.ErrorIs(t, repo.Archive(f.ctx, 999), ErrNotFound)
}

func TestUserRepo_EnsureByNameIsIdempotent(t *testing.T) {
	f := newFixture(t)
	repo := NewUserRepo(f.db)

	again, err := repo.EnsureByName(f.ctx, "  andy ")
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, again.ID)

	_, err = repo.EnsureByName(f.ctx, "")
	assert.Error(t, err)
}

func TestInvoiceRepo_CreateWithLineItems(t *testing.T) {
	f := newFixture(t)
	repo := NewInvoiceRepo(f.db)

	number, err := repo.GetNextInvoiceNumber(f.ctx, "WB", 2024)
	require.NoError(t, err)
	assert.Equal(t, "WB-2024-001", number)

	inv := domain.NewInvoice(number, f.customer.ID, f.job.Subject())
	inv.LineItems = append(inv.LineItems,
		&domain.InvoiceLineItem{Layer: "electricity", Description: "Electricity", Amount: 0.7},
		&domain.InvoiceLineItem{Layer: "material", Description: "Material", Amount: 3},
	)
	inv.Total = 3.7
	require.NoError(t, repo.Create(f.ctx, inv))

	got, err := repo.GetByNumber(f.ctx, number)
	require.NoError(t, err)
	assert.Equal(t, f.job.Subject(), got.Subject)
	require.Len(t, got.LineItems, 2)
	assert.Equal(t, "electricity", got.LineItems[0].Layer)
	assert.Equal(t, "material", got.LineItems[1].Layer)

	next, err := repo.GetNextInvoiceNumber(f.ctx, "WB", 2024)
	require.NoError(t, err)
	assert.Equal(t, "WB-2024-002", next)

	require.NoError(t, repo.Delete(f.ctx, inv.ID))
	items, err := repo.GetLineItems(f.ctx, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMigrations_AreIdempotent(t *testing.T) {
	database := newTestDB(t)
	require.NoError(t, database.RunMigrations())

	v, err := database.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

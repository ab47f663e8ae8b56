package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/andy/workbench/internal/domain"
)

var trackerNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestTracker(logs *mockTimeLogRepo) *trackerService {
	return &trackerService{
		logRepo: logs,
		projectRepo: &mockProjectRepo{projects: map[int64]*domain.Project{
			1: {ID: 1, Name: "Website", CustomerID: 1},
		}},
		printJobRepo: &mockPrintJobRepo{jobs: map[int64]*domain.PrintJob{
			7: {ID: 7, Name: "Bracket", CustomerID: 1, Quantity: 1},
		}},
		logger: zap.NewNop(),
		now:    func() time.Time { return trackerNow },
	}
}

func TestStart_CreatesOpenLog(t *testing.T) {
	ctx := context.Background()
	repo := newMockTimeLogRepo()
	svc := newTestTracker(repo)

	log, err := svc.Start(ctx, domain.ProjectSubject(1), 3)
	require.NoError(t, err)
	assert.True(t, log.IsOpen())
	assert.True(t, log.StartTime.Equal(trackerNow))

	open, err := svc.FindOpen(ctx, domain.ProjectSubject(1), 3)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, log.ID, open.ID)
}

func TestStart_RejectsSecondOpenLog(t *testing.T) {
	ctx := context.Background()
	svc := newTestTracker(newMockTimeLogRepo())

	_, err := svc.Start(ctx, domain.PrintJobSubject(7), 3)
	require.NoError(t, err)

	_, err = svc.Start(ctx, domain.PrintJobSubject(7), 3)
	assert.ErrorIs(t, err, ErrTimeLogAlreadyOpen)

	// another user may track the same job
	_, err = svc.Start(ctx, domain.PrintJobSubject(7), 4)
	assert.NoError(t, err)
}

func TestStart_LostRaceMapsToAlreadyOpen(t *testing.T) {
	repo := newMockTimeLogRepo()
	repo.conflictNext = true
	svc := newTestTracker(repo)

	_, err := svc.Start(context.Background(), domain.ProjectSubject(1), 3)
	assert.ErrorIs(t, err, ErrTimeLogAlreadyOpen)
}

func TestStart_InvalidInput(t *testing.T) {
	ctx := context.Background()
	svc := newTestTracker(newMockTimeLogRepo())

	_, err := svc.Start(ctx, domain.Subject{}, 3)
	assert.ErrorIs(t, err, ErrInvalidSubject)

	_, err = svc.Start(ctx, domain.ProjectSubject(1), 0)
	assert.ErrorIs(t, err, ErrInvalidUser)

	_, err = svc.Start(ctx, domain.ProjectSubject(99), 3)
	assert.ErrorIs(t, err, ErrSubjectNotFound)

	_, err = svc.FindOpen(ctx, domain.PrintJobSubject(0), 3)
	assert.ErrorIs(t, err, ErrInvalidSubject)
}

func TestEnd_ClosesOnce(t *testing.T) {
	ctx := context.Background()
	start := trackerNow.Add(-90 * time.Minute)
	open := domain.NewTimeLog(domain.ProjectSubject(1), 3, start)
	svc := newTestTracker(newMockTimeLogRepo(open))

	ended, err := svc.End(ctx, open.ID)
	require.NoError(t, err)
	require.NotNil(t, ended)
	assert.True(t, ended.EndTime.Equal(trackerNow))

	svc.now = func() time.Time { return trackerNow.Add(time.Hour) }
	again, err := svc.End(ctx, open.ID)
	require.NoError(t, err)
	assert.Nil(t, again)
	assert.True(t, open.EndTime.Equal(trackerNow), "closed log must keep its end time")
}

func TestEnd_UnknownLog(t *testing.T) {
	svc := newTestTracker(newMockTimeLogRepo())
	got, err := svc.End(context.Background(), 404)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindOpen_PicksNewest(t *testing.T) {
	older := domain.NewTimeLog(domain.ProjectSubject(1), 3, trackerNow.Add(-2*time.Hour))
	newer := domain.NewTimeLog(domain.ProjectSubject(1), 3, trackerNow.Add(-time.Hour))
	svc := newTestTracker(newMockTimeLogRepo(older, newer))

	got, err := svc.FindOpen(context.Background(), domain.ProjectSubject(1), 3)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)
}

func TestStopOpen(t *testing.T) {
	ctx := context.Background()
	svc := newTestTracker(newMockTimeLogRepo())

	_, err := svc.StopOpen(ctx, domain.ProjectSubject(1), 3)
	assert.True(t, errors.Is(err, ErrNoOpenTimeLog))

	_, err = svc.Start(ctx, domain.ProjectSubject(1), 3)
	require.NoError(t, err)

	stopped, err := svc.StopOpen(ctx, domain.ProjectSubject(1), 3)
	require.NoError(t, err)
	assert.False(t, stopped.IsOpen())

	open, err := svc.ListOpen(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestElapsed(t *testing.T) {
	start := trackerNow.Add(-5400 * time.Second)
	open := domain.NewTimeLog(domain.PrintJobSubject(7), 3, start)
	svc := newTestTracker(newMockTimeLogRepo(open))

	got, err := svc.Elapsed(context.Background(), open.ID, trackerNow)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, got)
}

package app

import (
	"context"
	"fmt"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/andy/workbench/internal/config"
	"github.com/andy/workbench/internal/crypto"
	"github.com/andy/workbench/internal/db"
	"github.com/andy/workbench/internal/domain"
	"github.com/andy/workbench/internal/draft"
	"github.com/andy/workbench/internal/logger"
	"github.com/andy/workbench/internal/pricing"
	"github.com/andy/workbench/internal/repository"
	"github.com/andy/workbench/internal/service"
)

// App is the dependency injection container for all application components
type App struct {
	Config *config.Config
	DB     *db.DB
	Logger *zap.Logger
	Drafts *draft.Store

	// User is the local user every time log is recorded for
	User *domain.User

	// Repositories
	CustomerRepo repository.CustomerRepository
	RateCardRepo repository.RateCardRepository
	ProjectRepo  repository.ProjectRepository
	PrintJobRepo repository.PrintJobRepository
	TimeLogRepo  repository.TimeLogRepository
	InvoiceRepo  repository.InvoiceRepository
	UserRepo     repository.UserRepository

	// Services
	TrackerService service.TrackerService
	InvoiceService service.InvoiceService
	ReportService  service.ReportService
}

// New loads the default config and builds the App
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(ctx, cfg)
}

// NewWithConfig creates an App with a provided config. It opens the database
// (encrypted or plain), runs migrations, wires repositories and services and
// resolves the configured user.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}

	if err := database.RunMigrations(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a := Build(database, cfg, log)

	user, err := a.UserRepo.EnsureByName(ctx, cfg.User.Name)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to resolve user %q: %w", cfg.User.Name, err)
	}
	a.User = user

	log.Debug("app ready",
		zap.String("db", cfg.Database.Path),
		zap.Bool("encrypted", cfg.Database.Encrypted),
		zap.String("user", user.Name),
	)

	return a, nil
}

// Build wires repositories and services over an open, migrated database
func Build(database *db.DB, cfg *config.Config, log *zap.Logger) *App {
	customerRepo := repository.NewCustomerRepo(database)
	rateCardRepo := repository.NewRateCardRepo(database)
	projectRepo := repository.NewProjectRepo(database)
	printJobRepo := repository.NewPrintJobRepo(database)
	timeLogRepo := repository.NewTimeLogRepo(database)
	invoiceRepo := repository.NewInvoiceRepo(database)
	userRepo := repository.NewUserRepo(database)

	trackerService := service.NewTrackerService(timeLogRepo, projectRepo, printJobRepo, log.Named("tracker"))
	reportService := service.NewReportService(
		timeLogRepo, invoiceRepo, projectRepo, printJobRepo, rateCardRepo, customerRepo,
		log.Named("report"),
	)

	a := &App{
		Config:         cfg,
		DB:             database,
		Logger:         log,
		Drafts:         draft.NewStore(cfg.DraftDir()),
		CustomerRepo:   customerRepo,
		RateCardRepo:   rateCardRepo,
		ProjectRepo:    projectRepo,
		PrintJobRepo:   printJobRepo,
		TimeLogRepo:    timeLogRepo,
		InvoiceRepo:    invoiceRepo,
		UserRepo:       userRepo,
		TrackerService: trackerService,
		ReportService:  reportService,
	}
	a.ApplyInvoiceSettings()
	return a
}

// ApplyInvoiceSettings rebuilds the invoice service from the current config.
// Call it after editing Config.Invoice.
func (a *App) ApplyInvoiceSettings() {
	a.InvoiceService = service.NewInvoiceService(
		a.InvoiceRepo, a.PrintJobRepo, a.ProjectRepo, a.RateCardRepo, a.CustomerRepo, a.TimeLogRepo,
		InvoiceSettings(a.Config), a.Logger.Named("invoice"),
	)
}

// InvoiceSettings maps the invoice section of the config onto the service
func InvoiceSettings(cfg *config.Config) service.InvoiceSettings {
	inv := cfg.Invoice
	return service.InvoiceSettings{
		Prefix:                 inv.NumberPrefix,
		DueDays:                inv.DefaultDueDays,
		TaxRate:                inv.DefaultTaxRate,
		ElectricityRatePerHour: inv.ElectricityRate,
		LabourBaseCostPerUnit:  inv.LabourBaseCost,
		MarginRate:             inv.MarginRate,
		Pipeline: pricing.PipelineOptions{
			LegacyMaterialDoubling: inv.LegacyMaterialDoubling,
		},
	}
}

func openDatabase(cfg *config.Config) (*db.DB, error) {
	if !cfg.Database.Encrypted {
		database, err := db.OpenPlain(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return database, nil
	}

	keyring := crypto.NewKeyring()

	password, err := keyring.GetKey()
	if err != nil {
		fmt.Println("Setting up database encryption for the first time...")
		password, err = promptForPassword()
		if err != nil {
			return nil, fmt.Errorf("failed to set password: %w", err)
		}

		if err := keyring.SetKey(password); err != nil {
			return nil, fmt.Errorf("failed to store encryption key: %w", err)
		}
	}

	database, err := db.Open(cfg.Database.Path, password)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// Close flushes the logger and closes the database
func (a *App) Close() error {
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// promptForPassword asks for a new database password on first run
func promptForPassword() (string, error) {
	fmt.Println()
	fmt.Println("Your workshop data will be encrypted with a password.")
	fmt.Println("The password is kept in your system keyring.")
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	fmt.Println()
	fmt.Println("✓ Database encryption configured")
	fmt.Println()

	return string(password), nil
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	return a.Config.Save(config.DefaultConfigPath())
}

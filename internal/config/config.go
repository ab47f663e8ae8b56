package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the file
const (
	EnvDBPath    = "WORKBENCH_DB_PATH"
	EnvLogLevel  = "WORKBENCH_LOG_LEVEL"
	EnvUser      = "WORKBENCH_USER"
	EnvEncrypted = "WORKBENCH_DB_ENCRYPTED"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Invoice  InvoiceConfig  `yaml:"invoice"`

	// The local user time is tracked for
	User UserConfig `yaml:"user"`

	Log     LogConfig     `yaml:"log"`
	Tracker TrackerConfig `yaml:"tracker"`
}

type DatabaseConfig struct {
	Path      string `yaml:"path"`      // Path to SQLite database
	Encrypted bool   `yaml:"encrypted"` // SQLCipher with a keyring password, or plain SQLite
}

type InvoiceConfig struct {
	DefaultDueDays int     `yaml:"default_due_days"` // Days until invoice due
	DefaultTaxRate float64 `yaml:"default_tax_rate"` // Tax rate as decimal (0.21 = 21%)
	NumberPrefix   string  `yaml:"number_prefix"`    // Invoice number prefix (e.g., "WB")
	Currency       string  `yaml:"currency"`         // Symbol in front of amounts

	// Print job cost pipeline
	ElectricityRate        float64 `yaml:"electricity_rate"`         // per print hour
	LabourBaseCost         float64 `yaml:"labour_base_cost"`         // per unit, when the job has no rate card
	MarginRate             float64 `yaml:"margin_rate"`              // 0.25 = 25%
	LegacyMaterialDoubling bool    `yaml:"legacy_material_doubling"` // material total = 2 x electricity
}

type UserConfig struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type TrackerConfig struct {
	Chime bool `yaml:"chime"` // ring the terminal bell every quarter hour
}

// Dir returns ~/.config/workbench
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "workbench")
	}
	return filepath.Join(homeDir, ".config", "workbench")
}

// DefaultConfigPath returns ~/.config/workbench/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := Dir()

	user := os.Getenv("USER")
	if user == "" {
		user = "me"
	}

	return &Config{
		Database: DatabaseConfig{
			Path:      filepath.Join(dir, "workbench.db"),
			Encrypted: true,
		},
		Invoice: InvoiceConfig{
			DefaultDueDays:  30,
			DefaultTaxRate:  0.21,
			NumberPrefix:    "WB",
			Currency:        "€",
			ElectricityRate: 0.35,
			LabourBaseCost:  5,
			MarginRate:      0.25,
		},
		User: UserConfig{
			Name: user,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "workbench.log"),
		},
		Tracker: TrackerConfig{
			Chime: true,
		},
	}
}

// Load loads config from the given path, or defaults if the file doesn't
// exist, then applies a .env file and environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	// a missing .env is fine
	_ = godotenv.Load()
	cfg.applyEnv()

	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvDBPath)); v != "" {
		c.Database.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvUser)); v != "" {
		c.User.Name = v
	}
	if v, err := strconv.ParseBool(os.Getenv(EnvEncrypted)); err == nil {
		c.Database.Encrypted = v
	}
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DraftDir is where in-progress invoice parameters are kept
func (c *Config) DraftDir() string {
	return filepath.Join(filepath.Dir(c.Database.Path), "drafts")
}

// EnsureDirectories creates the database and draft directories
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(filepath.Dir(c.Database.Path), 0755); err != nil {
		return err
	}
	return os.MkdirAll(c.DraftDir(), 0755)
}

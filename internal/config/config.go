package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig   `mapstructure:"server"`
	Database  DatabaseConfig `mapstructure:"database"`
	Flat      FlatConfig     `mapstructure:"flat"`
	JWTSecret string         `mapstructure:"jwt_secret"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type DatabaseConfig struct {
	Driver    string `mapstructure:"driver"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	User      string `mapstructure:"user"`
	Password  string `mapstructure:"password"`
	Name      string `mapstructure:"name"`
	PoolSize  int    `mapstructure:"pool_size"`
	Path      string `mapstructure:"path"` // directory for SQLite database files
	Bootstrap bool   `mapstructure:"bootstrap"`
}

// FlatConfig controls the flat-file template overrides and the directory importers.
type FlatConfig struct {
	Root             string            `mapstructure:"root"`
	Path             string            `mapstructure:"path"`
	ProductionStatus string            `mapstructure:"production_status"`
	Atomic           bool              `mapstructure:"atomic"`
	Tables           map[string]string `mapstructure:"tables"` // import subdirectory -> table
	Variables        VariablesConfig   `mapstructure:"variables"`
	Templates        TemplatesConfig   `mapstructure:"templates"`
}

type VariablesConfig struct {
	Dir    string `mapstructure:"dir"`
	Event  string `mapstructure:"event"`
	Prefix string `mapstructure:"prefix"`
	Table  string `mapstructure:"table"`
}

type TemplatesConfig struct {
	FormsTable  string `mapstructure:"forms_table"`
	FormsColumn string `mapstructure:"forms_column"`
	PagesTable  string `mapstructure:"pages_table"`
	PagesColumn string `mapstructure:"pages_column"`
}

// DSN returns the driver-specific data source name.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path + "/" + d.Name + ".db"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// IsSQLite returns true if the driver is sqlite.
func (d DatabaseConfig) IsSQLite() bool {
	return d.Driver == "sqlite"
}

// BaseDir returns the template directory, or "" when flat files are disabled.
func (f FlatConfig) BaseDir() string {
	if strings.TrimSpace(f.Path) == "" {
		return ""
	}
	if filepath.IsAbs(f.Path) {
		return filepath.Clean(f.Path)
	}
	return filepath.Join(f.Root, f.Path)
}

// Enabled reports whether a template directory is configured.
func (f FlatConfig) Enabled() bool {
	return f.BaseDir() != ""
}

// ImportEnabled reports whether the directory importers should run on the ready event.
func (f FlatConfig) ImportEnabled() bool {
	return f.Enabled() && f.ProductionStatus != "live"
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (f FlatConfig) validate() error {
	idents := []string{
		f.Variables.Table,
		f.Templates.FormsTable, f.Templates.FormsColumn,
		f.Templates.PagesTable, f.Templates.PagesColumn,
	}
	for _, table := range f.Tables {
		idents = append(idents, table)
	}
	for _, id := range idents {
		if !identRe.MatchString(id) {
			return fmt.Errorf("invalid table or column name %q", id)
		}
	}
	for dir := range f.Tables {
		if dir == "" || strings.ContainsAny(dir, `/\`) || dir == "." || dir == ".." {
			return fmt.Errorf("invalid import directory %q", dir)
		}
	}
	return nil
}

// Load reads the configuration. An empty file searches for app.yaml in the
// working directory and two levels up.
func Load(file string) (*Config, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("app")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("../..")
	}

	v.SetDefault("server.port", 8080)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "flat")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.path", "./data")
	v.SetDefault("database.bootstrap", true)
	v.SetDefault("jwt_secret", "changeme-secret")
	v.SetDefault("flat.root", ".")
	v.SetDefault("flat.path", "../templates")
	v.SetDefault("flat.production_status", "testing")
	v.SetDefault("flat.atomic", false)
	v.SetDefault("flat.tables", map[string]string{"sections": "sections"})
	v.SetDefault("flat.variables.dir", "variables")
	v.SetDefault("flat.variables.event", "flat_variables")
	v.SetDefault("flat.variables.prefix", "flat_variable_")
	v.SetDefault("flat.variables.table", "prefs")
	v.SetDefault("flat.templates.forms_table", "forms")
	v.SetDefault("flat.templates.forms_column", "content")
	v.SetDefault("flat.templates.pages_table", "pages")
	v.SetDefault("flat.templates.pages_column", "content")

	v.SetEnvPrefix("flat")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Flat.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

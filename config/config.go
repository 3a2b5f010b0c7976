package config

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// BuildMode is stamped at build time:
//
//	go build -ldflags "-X github.com/boldserve/adminconsole/config.BuildMode=production"
//
// It selects the backend base URL once at startup and cannot be changed at runtime.
var BuildMode = ModeDevelopment

const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

// SessionTokenKey is the fixed key the admin session token is stored under
const SessionTokenKey = "adminToken"

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid" envconfig:"APPID"`
	Location string `yaml:"location" envconfig:"LOCATION"`
	Workdir  string `yaml:"workdir" envconfig:"WORKDIR"`
	Debug    bool   `yaml:"debug" envconfig:"DEBUG"`
}

// WebConfig console web server configuration
type WebConfig struct {
	Host   string `yaml:"host" envconfig:"HOST"`
	Port   int    `yaml:"port" envconfig:"PORT"`
	Secret string `yaml:"secret" envconfig:"SECRET"`
	// Workers bounds the goroutine pool that runs screen fetches
	Workers int `yaml:"workers" envconfig:"WORKERS"`
}

// BackendConfig describes the REST backend the console talks to
type BackendConfig struct {
	ProductionURL string `yaml:"production_url" envconfig:"PRODUCTION_URL"`
	LocalURL      string `yaml:"local_url" envconfig:"LOCAL_URL"`
	// Timeout in seconds
	Timeout int `yaml:"timeout" envconfig:"TIMEOUT"`
	// OrdersPath is /api/orders, or the legacy /orders alias
	OrdersPath string `yaml:"orders_path" envconfig:"ORDERS_PATH"`
	// NoAuthPaths are request paths sent without the bearer credential
	NoAuthPaths []string `yaml:"no_auth_paths" envconfig:"NO_AUTH_PATHS"`
}

// AuthConfig selects the login mechanism
type AuthConfig struct {
	// Mode is "backend" (POST /api/admin/login) or "static" (local placeholder check)
	Mode          string `yaml:"mode" envconfig:"MODE"`
	AdminID       string `yaml:"admin_id" envconfig:"ADMIN_ID"`
	AdminPassword string `yaml:"admin_password" envconfig:"ADMIN_PASSWORD"`
	TokenSecret   string `yaml:"token_secret" envconfig:"TOKEN_SECRET"`
}

// DBConfig operator log database, disabled when Dsn is empty
type DBConfig struct {
	Type     string `yaml:"type" envconfig:"TYPE"`
	Dsn      string `yaml:"dsn" envconfig:"DSN"`
	MaxConn  int    `yaml:"max_conn" envconfig:"MAX_CONN"`
	IdleConn int    `yaml:"idle_conn" envconfig:"IDLE_CONN"`
	Debug    bool   `yaml:"debug" envconfig:"DEBUG"`
}

// LogConfig logging configuration
type LogConfig struct {
	Mode       string `yaml:"mode" envconfig:"MODE"`
	FileEnable bool   `yaml:"file_enable" envconfig:"FILE_ENABLE"`
	Filename   string `yaml:"filename" envconfig:"FILENAME"`
}

type AppConfig struct {
	System   SysConfig     `yaml:"system"`
	Web      WebConfig     `yaml:"web"`
	Backend  BackendConfig `yaml:"backend"`
	Auth     AuthConfig    `yaml:"auth"`
	Database DBConfig      `yaml:"database"`
	Logger   LogConfig     `yaml:"logger"`
}

// GetSessionDbFile path of the bbolt file that persists the session token
func (c *AppConfig) GetSessionDbFile() string {
	return path.Join(c.System.Workdir, "data", "session.db")
}

// GetLogDir log directory under the workdir
func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

// BaseURL returns the backend base URL for the compiled build mode.
func (c *AppConfig) BaseURL() string {
	if BuildMode == ModeProduction {
		return strings.TrimRight(c.Backend.ProductionURL, "/")
	}
	return strings.TrimRight(c.Backend.LocalURL, "/")
}

// BackendTimeout request deadline for backend calls
func (c *AppConfig) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.Timeout) * time.Second
}

// InitDirs creates the working directories
func (c *AppConfig) InitDirs() error {
	for _, dir := range []string{path.Join(c.System.Workdir, "data"), c.GetLogDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *AppConfig) Validate() error {
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		return fmt.Errorf("invalid web port: %d", c.Web.Port)
	}
	if c.BaseURL() == "" {
		return fmt.Errorf("backend url for %s mode is required", BuildMode)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be positive")
	}
	switch c.Auth.Mode {
	case "backend":
	case "static":
		if c.Auth.AdminID == "" || c.Auth.AdminPassword == "" {
			return fmt.Errorf("static auth mode requires admin_id and admin_password")
		}
	default:
		return fmt.Errorf("invalid auth mode: %s (must be backend or static)", c.Auth.Mode)
	}
	switch c.Logger.Mode {
	case "development", "production":
	default:
		return fmt.Errorf("invalid logger mode: %s", c.Logger.Mode)
	}
	return nil
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "BoldServeAdmin",
		Location: "Asia/Kolkata",
		Workdir:  "/var/adminconsole",
		Debug:    false,
	},
	Web: WebConfig{
		Host:    "0.0.0.0",
		Port:    3000,
		Secret:  "9b6de5cc-0731-4bf1-9a5e-adminconsole",
		Workers: 16,
	},
	Backend: BackendConfig{
		ProductionURL: "https://boldservebackend-production.up.railway.app",
		LocalURL:      "http://localhost:8003",
		Timeout:       15,
		OrdersPath:    "/api/orders",
		NoAuthPaths:   []string{"/api/users"},
	},
	Auth: AuthConfig{
		Mode:        "backend",
		TokenSecret: "adminconsole-local-token",
	},
	Database: DBConfig{
		Type:     "postgres",
		MaxConn:  20,
		IdleConn: 5,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/adminconsole/logs/adminconsole.log",
	},
}

// LoadConfig reads the YAML file (falling back to defaults when it does not
// exist), then applies environment overrides keyed by section, for example
// ADMINCONSOLE_WEB_PORT or ADMINCONSOLE_BACKEND_TIMEOUT.
func LoadConfig(cfile string) (*AppConfig, error) {
	// .env is optional and only used for local runs
	_ = godotenv.Load()

	cfg := *DefaultAppConfig
	cfg.Backend.NoAuthPaths = append([]string(nil), DefaultAppConfig.Backend.NoAuthPaths...)
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, errors.Wrapf(err, "parse config %s", cfile)
			}
		case os.IsNotExist(err):
		default:
			return nil, errors.Wrapf(err, "read config %s", cfile)
		}
	}

	if err := envconfig.Process("ADMINCONSOLE", &cfg); err != nil {
		return nil, errors.Wrap(err, "process environment overrides")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

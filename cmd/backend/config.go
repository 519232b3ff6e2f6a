package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Storage     StorageConfig
	Log         LogConfig
	Browser     BrowserConfig
	Agent       AgentConfig
	App         AppConfig
	Session     SessionConfig
	Execution   ExecutionConfig
	Integration IntegrationConfig
	Crash       CrashConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	Path         string
	MaxOpenConns int
	MaxIdleConns int
}

// StorageConfig holds blob storage configuration.
type StorageConfig struct {
	Type     string // "local" or "s3"
	BaseDir  string
	S3Bucket string
	S3Region string
}

// LogConfig holds logging configuration. When File is set the server tees
// its log stream to that file in addition to stdout.
type LogConfig struct {
	Level string
	File  string
}

// BrowserConfig holds browser driver configuration.
type BrowserConfig struct {
	Headless        bool
	SlowMoMS        float64
	NavTimeout      time.Duration
	SettleDelay     time.Duration
	InstallBrowsers bool
}

// AgentConfig holds agent pipeline configuration.
type AgentConfig struct {
	MaxIterations    int
	TimeLimit        time.Duration
	BedrockRegion    string
	BedrockModel     string
	BedrockAccessKey string
	BedrockSecretKey string
}

// AppConfig holds the target application coordinates and the single test
// account. The password is read here once and handed to the identity; no
// other component sees it in plaintext.
type AppConfig struct {
	URL      string
	LoginURL string
	Username string
	Password string
}

// SessionConfig holds browser session cache configuration.
type SessionConfig struct {
	Dir string
	TTL time.Duration
}

// ExecutionConfig holds script execution configuration.
type ExecutionConfig struct {
	ScriptTimeout time.Duration
	AgentTimeout  time.Duration
	Workers       int
	PythonPath    string
}

// IntegrationConfig holds issue tracker integration configuration.
type IntegrationConfig struct {
	Passphrase string
}

// CrashConfig holds crash report configuration.
type CrashConfig struct {
	Dir string
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Enable environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	// Generation and suite-wide execution are synchronous calls.
	v.SetDefault("server.write_timeout", "15m")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "qa_agent")
	v.SetDefault("database.path", "qa_agent.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.base_dir", "./artifacts")
	v.SetDefault("storage.s3_bucket", "")
	v.SetDefault("storage.s3_region", "us-east-1")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.slow_mo_ms", 0)
	v.SetDefault("browser.nav_timeout", "30s")
	v.SetDefault("browser.settle_delay", "3s")
	v.SetDefault("browser.install_browsers", false)

	v.SetDefault("agent.max_iterations", 30)
	v.SetDefault("agent.time_limit", "10m")
	v.SetDefault("agent.bedrock_region", "us-east-1")
	v.SetDefault("agent.bedrock_model", "anthropic.claude-3-5-sonnet-20240620-v1:0")
	v.SetDefault("agent.bedrock_access_key", "")
	v.SetDefault("agent.bedrock_secret_key", "")

	v.SetDefault("app.url", "")
	v.SetDefault("app.login_url", "")
	v.SetDefault("app.username", "")
	v.SetDefault("app.password", "")

	v.SetDefault("session.dir", "./sessions")
	v.SetDefault("session.ttl", "12h")

	v.SetDefault("execution.script_timeout", "60s")
	v.SetDefault("execution.agent_timeout", "5m")
	v.SetDefault("execution.workers", 3)
	v.SetDefault("execution.python_path", "python3")

	v.SetDefault("integration.passphrase", "")

	v.SetDefault("crash.dir", "./crashes")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; using defaults
	}

	// Parse configuration
	var config Config

	config.Server.Host = v.GetString("server.host")
	config.Server.Port = v.GetInt("server.port")
	config.Server.ReadTimeout = v.GetDuration("server.read_timeout")
	config.Server.WriteTimeout = v.GetDuration("server.write_timeout")

	config.Database.Driver = v.GetString("database.driver")
	config.Database.Host = v.GetString("database.host")
	config.Database.Port = v.GetInt("database.port")
	config.Database.User = v.GetString("database.user")
	config.Database.Password = v.GetString("database.password")
	config.Database.Database = v.GetString("database.database")
	config.Database.Path = v.GetString("database.path")
	config.Database.MaxOpenConns = v.GetInt("database.max_open_conns")
	config.Database.MaxIdleConns = v.GetInt("database.max_idle_conns")

	config.Storage.Type = v.GetString("storage.type")
	config.Storage.BaseDir = v.GetString("storage.base_dir")
	config.Storage.S3Bucket = v.GetString("storage.s3_bucket")
	config.Storage.S3Region = v.GetString("storage.s3_region")

	config.Log.Level = v.GetString("log.level")
	config.Log.File = v.GetString("log.file")

	config.Browser.Headless = v.GetBool("browser.headless")
	config.Browser.SlowMoMS = v.GetFloat64("browser.slow_mo_ms")
	config.Browser.NavTimeout = v.GetDuration("browser.nav_timeout")
	config.Browser.SettleDelay = v.GetDuration("browser.settle_delay")
	config.Browser.InstallBrowsers = v.GetBool("browser.install_browsers")

	config.Agent.MaxIterations = v.GetInt("agent.max_iterations")
	config.Agent.TimeLimit = v.GetDuration("agent.time_limit")
	config.Agent.BedrockRegion = v.GetString("agent.bedrock_region")
	config.Agent.BedrockModel = v.GetString("agent.bedrock_model")
	config.Agent.BedrockAccessKey = v.GetString("agent.bedrock_access_key")
	config.Agent.BedrockSecretKey = v.GetString("agent.bedrock_secret_key")

	config.App.URL = v.GetString("app.url")
	config.App.LoginURL = v.GetString("app.login_url")
	config.App.Username = v.GetString("app.username")
	config.App.Password = v.GetString("app.password")

	config.Session.Dir = v.GetString("session.dir")
	config.Session.TTL = v.GetDuration("session.ttl")

	config.Execution.ScriptTimeout = v.GetDuration("execution.script_timeout")
	config.Execution.AgentTimeout = v.GetDuration("execution.agent_timeout")
	config.Execution.Workers = v.GetInt("execution.workers")
	config.Execution.PythonPath = v.GetString("execution.python_path")

	config.Integration.Passphrase = v.GetString("integration.passphrase")

	config.Crash.Dir = v.GetString("crash.dir")

	return &config, nil
}

package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gremialdev/memberflow/internal/api"
	"github.com/gremialdev/memberflow/internal/gateway"
	"github.com/gremialdev/memberflow/internal/notify"
	"github.com/gremialdev/memberflow/internal/store"
	"github.com/gremialdev/memberflow/internal/util"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for MemberFlow state data
	DefaultStateDir = "/var/lib/memberflow"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "memberflow.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Ensure required directories exist
	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	// Build module options
	gwOpts := buildGatewayOptions(flags)
	storeOpts := buildStoreOptions(flags)
	notifyOpts := buildNotifyOptions(flags)
	apiOpts := buildAPIOptions(flags)

	// Start the service
	slog.Info("Bootstrapping MemberFlow with configured modules")
	slog.Debug("Module options counts", "gateway", len(gwOpts), "store", len(storeOpts), "notify", len(notifyOpts), "api", len(apiOpts))
	slog.Debug("Final configuration", "state_dir", *flags.stateDir, "dsn_set", *flags.dbDSN != "", "api_addr", *flags.apiAddr)
	if err := api.Run(gwOpts, storeOpts, notifyOpts, apiOpts); err != nil {
		slog.Error("MemberFlow failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("MemberFlow exited successfully")
}

// Config holds environment configuration
type Config struct {
	BackendURL     string
	BackendTimeout string
	DatabaseURL    string
	StateDir       string
	APIAddr        string
	RefreshCron    string
	SMSEnabled     bool
	SMSFrom        string
	SMSTo          string
}

// Flags holds command line flag values
type Flags struct {
	backendURL     *string
	backendTimeout *string
	stateDir       *string
	dbDSN          *string
	apiAddr        *string
	refreshCron    *string
	smsEnabled     *bool
	smsFrom        *string
	smsTo          *string
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		BackendURL:     os.Getenv("BACKEND_URL"),
		BackendTimeout: os.Getenv("BACKEND_TIMEOUT"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		StateDir:       os.Getenv("MEMBERFLOW_STATE_DIR"),
		APIAddr:        os.Getenv("API_ADDR"),
		RefreshCron:    os.Getenv("REFRESH_SCHEDULE"),
		SMSEnabled:     util.ParseBoolEnv("SMS_NOTIFICATIONS", false),
		SMSFrom:        os.Getenv("TWILIO_FROM_NUMBER"),
		SMSTo:          os.Getenv("SMS_TO_NUMBER"),
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No MEMBERFLOW_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	} else {
		slog.Debug("MEMBERFLOW_STATE_DIR found in environment", "state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"BACKEND_URL", config.BackendURL,
		"BACKEND_TIMEOUT", config.BackendTimeout,
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"MEMBERFLOW_STATE_DIR", config.StateDir,
		"API_ADDR", config.APIAddr,
		"REFRESH_SCHEDULE", config.RefreshCron,
		"SMS_NOTIFICATIONS", config.SMSEnabled)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		backendURL:     flag.String("backend-url", config.BackendURL, "gremial backend base URL (overrides $BACKEND_URL)"),
		backendTimeout: flag.String("backend-timeout", config.BackendTimeout, "gremial backend request timeout, e.g. 30s (overrides $BACKEND_TIMEOUT)"),
		stateDir:       flag.String("state-dir", config.StateDir, "state directory for MemberFlow data (overrides $MEMBERFLOW_STATE_DIR)"),
		dbDSN:          flag.String("db-dsn", config.DatabaseURL, "database DSN for the state cache (overrides $DATABASE_URL)"),
		apiAddr:        flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		refreshCron:    flag.String("refresh-cron", config.RefreshCron, "cron schedule for background content refresh (overrides $REFRESH_SCHEDULE)"),
		smsEnabled:     flag.Bool("sms", config.SMSEnabled, "mirror toasts to SMS via Twilio (overrides $SMS_NOTIFICATIONS)"),
		smsFrom:        flag.String("sms-from", config.SMSFrom, "Twilio sender number (overrides $TWILIO_FROM_NUMBER)"),
		smsTo:          flag.String("sms-to", config.SMSTo, "SMS recipient number (overrides $SMS_TO_NUMBER)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"backendURL", *flags.backendURL,
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"apiAddr", *flags.apiAddr,
		"refreshCron", *flags.refreshCron,
		"sms", *flags.smsEnabled)

	// Update database DSN if not explicitly set but state directory is provided
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "dsn_updated", true, "old_state_dir", config.StateDir, "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	// Ensure state directory exists if we're using a file-based DSN
	if !strings.Contains(*flags.dbDSN, "postgres://") && !strings.Contains(*flags.dbDSN, "host=") {
		stateDir := filepath.Dir(*flags.dbDSN)
		slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
		slog.Debug("State directory created successfully", "state_dir", stateDir)
	}
	return nil
}

// buildGatewayOptions constructs backend gateway configuration options
func buildGatewayOptions(flags Flags) []gateway.Option {
	var gwOpts []gateway.Option
	if *flags.backendURL != "" {
		gwOpts = append(gwOpts, gateway.WithBaseURL(*flags.backendURL))
	}
	if *flags.backendTimeout != "" {
		if d, err := time.ParseDuration(*flags.backendTimeout); err == nil {
			gwOpts = append(gwOpts, gateway.WithTimeout(d))
		} else {
			slog.Warn("Invalid backend timeout, using default", "value", *flags.backendTimeout, "error", err)
		}
	}
	return gwOpts
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN != "" {
		// Check if it's a PostgreSQL DSN using the shared detection function
		if store.DetectDSNType(*flags.dbDSN) == "postgres" {
			slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store", "dsn_type", "postgresql", "dsn_set", true)
			storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.dbDSN))
		} else {
			// Assume SQLite for file paths
			slog.Debug("Detected SQLite DSN, configuring SQLite store", "dsn_type", "sqlite", "db_path", *flags.dbDSN)
			storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.dbDSN))
		}
	} else {
		slog.Debug("No database DSN provided, will use in-memory store")
	}
	return storeOpts
}

// buildNotifyOptions constructs SMS notification options
func buildNotifyOptions(flags Flags) []notify.Option {
	var notifyOpts []notify.Option
	if *flags.smsFrom != "" {
		notifyOpts = append(notifyOpts, notify.WithFrom(*flags.smsFrom))
	}
	if *flags.smsTo != "" {
		notifyOpts = append(notifyOpts, notify.WithTo(*flags.smsTo))
	}
	return notifyOpts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if *flags.refreshCron != "" {
		apiOpts = append(apiOpts, api.WithRefreshCron(*flags.refreshCron))
	}
	if *flags.smsEnabled {
		apiOpts = append(apiOpts, api.WithSMS(true))
	}
	return apiOpts
}

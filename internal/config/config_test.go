package config

import (
	"os"
	"testing"
	"time"
)

func setEnvVars(vars map[string]string) {
	for k, v := range vars {
		os.Setenv(k, v)
	}
}

func clearEnvVars(vars []string) {
	for _, k := range vars {
		os.Unsetenv(k)
	}
}

var allEnvVars = []string{
	"HOST", "PORT", "READ_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT", "ENVIRONMENT",
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE",
	"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME",
	"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB", "REDIS_POOL_SIZE",
	"REDIS_DIAL_TIMEOUT", "REDIS_READ_TIMEOUT", "REDIS_WRITE_TIMEOUT",
	"WORKER_CONCURRENCY", "WORKER_POLL_INTERVAL", "WORKER_QUEUE", "WORKER_CLEANUP_INTERVAL",
	"JWT_SECRET", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL",
	"RATE_LIMIT_ENABLED", "RATE_LIMIT_RPM", "RATE_LIMIT_BURST",
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnvVars(allEnvVars)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error with default config, got: %v", err)
	}

	if config.Server.Host != "localhost" {
		t.Errorf("Expected default host 'localhost', got %s", config.Server.Host)
	}

	if config.Server.Port != "8080" {
		t.Errorf("Expected default port '8080', got %s", config.Server.Port)
	}

	if config.Server.Environment != "development" {
		t.Errorf("Expected default environment 'development', got %s", config.Server.Environment)
	}

	if config.Database.Name != "taskify" {
		t.Errorf("Expected default DB name 'taskify', got %s", config.Database.Name)
	}

	if config.Auth.AccessTokenTTL != time.Hour {
		t.Errorf("Expected default access token TTL 1h, got %v", config.Auth.AccessTokenTTL)
	}

	if config.Worker.Queue != "taskify:jobs" {
		t.Errorf("Expected default worker queue 'taskify:jobs', got %s", config.Worker.Queue)
	}
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	clearEnvVars(allEnvVars)
	setEnvVars(map[string]string{
		"HOST":             "0.0.0.0",
		"PORT":             "9090",
		"DB_NAME":          "taskify_test",
		"ACCESS_TOKEN_TTL": "15m",
		"RATE_LIMIT_RPM":   "120",
	})
	defer clearEnvVars(allEnvVars)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if config.GetServerAddr() != "0.0.0.0:9090" {
		t.Errorf("Expected server addr '0.0.0.0:9090', got %s", config.GetServerAddr())
	}

	if config.Database.Name != "taskify_test" {
		t.Errorf("Expected DB name 'taskify_test', got %s", config.Database.Name)
	}

	if config.Auth.AccessTokenTTL != 15*time.Minute {
		t.Errorf("Expected access token TTL 15m, got %v", config.Auth.AccessTokenTTL)
	}

	if config.RateLimit.RequestsPerMin != 120 {
		t.Errorf("Expected 120 requests per minute, got %d", config.RateLimit.RequestsPerMin)
	}
}

func TestLoadConfig_ProductionRequiresSecrets(t *testing.T) {
	clearEnvVars(allEnvVars)
	setEnvVars(map[string]string{
		"ENVIRONMENT": "production",
		"DB_PASSWORD": "s3cret",
	})
	defer clearEnvVars(allEnvVars)

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error for default JWT secret in production")
	}

	setEnvVars(map[string]string{"JWT_SECRET": "prod-signing-key"})

	if _, err := LoadConfig(); err != nil {
		t.Errorf("Expected no error with secrets set, got: %v", err)
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	clearEnvVars(allEnvVars)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	dsn := config.GetDatabaseDSN()
	expected := "host=localhost port=5432 user=postgres password= dbname=taskify sslmode=disable"
	if dsn != expected {
		t.Errorf("Expected DSN %q, got %q", expected, dsn)
	}
}

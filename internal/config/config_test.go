package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Port != "5000" {
		t.Errorf("Port = %q, want 5000", cfg.Port)
	}
	if cfg.JWT.Secret == "" {
		t.Error("development config should fall back to a JWT secret")
	}
	if cfg.JWT.Expiry != 24*time.Hour {
		t.Errorf("JWT.Expiry = %v, want 24h", cfg.JWT.Expiry)
	}
	if len(cfg.Events.KafkaBrokers) != 0 {
		t.Errorf("KafkaBrokers = %v, want none", cfg.Events.KafkaBrokers)
	}
}

func TestLoadConfig_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when JWT_SECRET is missing in production")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRY", "90m")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/classroom")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.JWT.Expiry != 90*time.Minute {
		t.Errorf("JWT.Expiry = %v, want 90m", cfg.JWT.Expiry)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if got := cfg.Events.KafkaBrokers; len(got) != 2 || got[1] != "kafka-2:9092" {
		t.Errorf("KafkaBrokers = %v", got)
	}
	if cfg.Database.DSN() != "postgres://u:p@db:5432/classroom" {
		t.Errorf("DSN() = %q, want DATABASE_URL", cfg.Database.DSN())
	}
}

func TestCasdoorConfig_Enabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  CasdoorConfig
		want bool
	}{
		{name: "empty", cfg: CasdoorConfig{}, want: false},
		{name: "endpoint only", cfg: CasdoorConfig{Endpoint: "https://sso"}, want: false},
		{name: "endpoint and cert", cfg: CasdoorConfig{Endpoint: "https://sso", Cert: "-----BEGIN"}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Enabled(); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

package services

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	config := LoadConfig()

	if config.Server.Port != "8080" {
		t.Errorf("port = %s, expected 8080", config.Server.Port)
	}
	if config.Database.Driver != "postgres" {
		t.Errorf("driver = %s, expected postgres", config.Database.Driver)
	}
	if !config.Database.Seed {
		t.Errorf("seed should default to true")
	}
	if config.Database.MaxIdleConns != 10 || config.Database.MaxOpenConns != 100 {
		t.Errorf("pool defaults = %d/%d, expected 10/100", config.Database.MaxIdleConns, config.Database.MaxOpenConns)
	}
	if config.AI.AnalysisTimeout != 45*time.Second {
		t.Errorf("analysis timeout = %s, expected 45s", config.AI.AnalysisTimeout)
	}
	if config.AI.GeminiAPIKey != "" || config.JWT.Secret != "" {
		t.Errorf("secrets should default to empty")
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "mockview.db")
	t.Setenv("DATABASE_SEED", "false")
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")
	t.Setenv("AI_ANALYSIS_TIMEOUT_SECONDS", "10")
	t.Setenv("JWT_SECRET", "env-secret")

	config := LoadConfig()

	if config.Server.Port != "9090" {
		t.Errorf("port = %s, expected 9090", config.Server.Port)
	}
	if config.Database.Driver != "sqlite" {
		t.Errorf("driver = %s, expected sqlite", config.Database.Driver)
	}
	if config.Database.URL != "mockview.db" {
		t.Errorf("url = %s, expected mockview.db", config.Database.URL)
	}
	if config.Database.Seed {
		t.Errorf("seed should be false")
	}
	if config.AI.GeminiAPIKey != "test-gemini-key" {
		t.Errorf("gemini key not read from environment")
	}
	if config.AI.AnalysisTimeout != 10*time.Second {
		t.Errorf("analysis timeout = %s, expected 10s", config.AI.AnalysisTimeout)
	}
	if config.JWT.Secret != "env-secret" {
		t.Errorf("jwt secret not read from environment")
	}
}

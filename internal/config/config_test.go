package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:      HTTPConfig{Port: 8080},
		Database:  DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{APIKey: "test-key"},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.APIKey = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding api key")
	}
}

func TestValidate_TooManyVariants(t *testing.T) {
	cfg := validConfig()
	cfg.Paraphrase.MaxVariants = 11

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for excessive max_variants")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("expected default embedding model, got %q", cfg.Embedding.Model)
	}
	if cfg.Paraphrase.MaxVariants != 3 {
		t.Errorf("expected MaxVariants=3, got %d", cfg.Paraphrase.MaxVariants)
	}
	if cfg.Cache.EmbeddingTTLSeconds != 24*60*60 {
		t.Errorf("expected embedding TTL of 24h, got %d", cfg.Cache.EmbeddingTTLSeconds)
	}
	if cfg.Cache.ResultTTLSeconds != 2*60*60 {
		t.Errorf("expected result TTL of 2h, got %d", cfg.Cache.ResultTTLSeconds)
	}
	if cfg.Index.SnapshotPath != "data/index/listings.json" {
		t.Errorf("expected default snapshot path, got %q", cfg.Index.SnapshotPath)
	}
	if cfg.Search.TopK != 10 {
		t.Errorf("expected TopK=10, got %d", cfg.Search.TopK)
	}
	if cfg.Search.LexicalMaxScan != 500 {
		t.Errorf("expected LexicalMaxScan=500, got %d", cfg.Search.LexicalMaxScan)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:   HTTPConfig{ReadTimeoutSec: 5, WriteTimeoutSec: 60, ShutdownSec: 5},
		Cache:  CacheConfig{Dir: "/var/cache/searchd", EmbeddingTTLSeconds: 60, ResultTTLSeconds: 30},
		Search: SearchConfig{TopK: 25, DefaultLimit: 50, LexicalMaxScan: 1000},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 5 {
		t.Errorf("expected ReadTimeoutSec=5, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Cache.Dir != "/var/cache/searchd" {
		t.Errorf("expected cache dir preserved, got %q", cfg.Cache.Dir)
	}
	if cfg.Cache.EmbeddingTTLSeconds != 60 {
		t.Errorf("expected EmbeddingTTLSeconds=60, got %d", cfg.Cache.EmbeddingTTLSeconds)
	}
	if cfg.Search.TopK != 25 {
		t.Errorf("expected TopK=25, got %d", cfg.Search.TopK)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SEARCHD_TEST_KEY", "secret")

	got := string(expandEnvVars([]byte("api_key: ${SEARCHD_TEST_KEY}")))
	if got != "api_key: secret" {
		t.Errorf("got %q", got)
	}

	got = string(expandEnvVars([]byte("model: ${SEARCHD_UNSET_VAR:-fallback}")))
	if got != "model: fallback" {
		t.Errorf("got %q", got)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	body := `
http:
  port: 9090
database:
  addrs: ["localhost:6379"]
embedding:
  api_key: ${SEARCHD_TEST_API_KEY}
paraphrase:
  enabled: true
  max_variants: 5
`
	if err := os.WriteFile(filepath.Join(dir, "config", "test.yaml"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SEARCHD_TEST_API_KEY", "sk-test")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Embedding.APIKey != "sk-test" {
		t.Errorf("expected expanded api key, got %q", cfg.Embedding.APIKey)
	}
	if !cfg.Paraphrase.Enabled || cfg.Paraphrase.MaxVariants != 5 {
		t.Errorf("unexpected paraphrase config: %+v", cfg.Paraphrase)
	}
	// Defaults fill what the file omits.
	if cfg.Search.TopK != 10 {
		t.Errorf("expected default TopK, got %d", cfg.Search.TopK)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if c.Model.Path != "final.json" || c.Model.Kind != "file" {
		t.Fatalf("unexpected model defaults %+v", c.Model)
	}
	if c.Exchange.FallbackRate != 83.0 || c.Exchange.CacheTTL != time.Hour {
		t.Fatalf("unexpected exchange defaults %+v", c.Exchange)
	}
	if c.Export.TTL != time.Hour || c.Export.MaxRecords != 10000 {
		t.Fatalf("unexpected export defaults %+v", c.Export)
	}
	if c.Journal.Backend != "none" {
		t.Fatalf("expected journal none, got %q", c.Journal.Backend)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := "server:\n  port: 9090\nexchange:\n  cache_ttl: 30m\ncache:\n  type: layered\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 9090 || c.Exchange.CacheTTL != 30*time.Minute || c.Cache.Type != "layered" {
		t.Fatalf("overrides not applied: port=%d ttl=%s cache=%s", c.Server.Port, c.Exchange.CacheTTL, c.Cache.Type)
	}
	if c.Exchange.FallbackRate != 83.0 {
		t.Fatalf("untouched default lost: %v", c.Exchange.FallbackRate)
	}
}

func TestLoadWithEnvMissingFile(t *testing.T) {
	t.Setenv("MYPAY_MODEL_PATH", "/models/salary.json")
	t.Setenv("REDIS_ADDR", "cache:6380")

	c, err := LoadWithEnv(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Model.Path != "/models/salary.json" {
		t.Fatalf("model path override ignored: %q", c.Model.Path)
	}
	if c.Redis.Host != "cache" || c.Redis.Port != 6380 {
		t.Fatalf("redis override ignored: %s:%d", c.Redis.Host, c.Redis.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown model kind", func(c *Config) { c.Model.Kind = "onnx" }},
		{"http model without url", func(c *Config) { c.Model.Kind = "http" }},
		{"non-positive fallback", func(c *Config) { c.Exchange.FallbackRate = 0 }},
		{"no export records", func(c *Config) { c.Export.MaxRecords = 0 }},
		{"unknown cache", func(c *Config) { c.Cache.Type = "disk" }},
		{"kafka journal without brokers", func(c *Config) { c.Journal.Backend = "kafka" }},
		{"ingest without brokers", func(c *Config) { c.Journal.Ingest = true }},
		{"unknown journal", func(c *Config) { c.Journal.Backend = "s3" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Default()
			if err != nil {
				t.Fatalf("default: %v", err)
			}
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 8080 || cfg.Server.Mode != "release" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Render.Mode != RenderBrowserless || cfg.Render.Timeout != 60*time.Second || cfg.Render.Settle != 3*time.Second {
		t.Errorf("Render = %+v", cfg.Render)
	}
	if cfg.Fetch.HTTPTimeout != 30*time.Second || cfg.Webhook.Timeout != 30*time.Second || cfg.Proxy.Timeout != 30*time.Second {
		t.Errorf("timeouts: fetch=%v webhook=%v proxy=%v", cfg.Fetch.HTTPTimeout, cfg.Webhook.Timeout, cfg.Proxy.Timeout)
	}
	if cfg.Store.Backend != StoreMemory {
		t.Errorf("Store.Backend = %q", cfg.Store.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HARVEST_PORT", "9090")
	t.Setenv("HARVEST_RENDER_MODE", "CDP")
	t.Setenv("HARVEST_CDP_URL", "ws://chrome:9222")
	t.Setenv("HARVEST_STORE", "redis")
	t.Setenv("HARVEST_API_KEYS", " a , b ,,")
	t.Setenv("HARVEST_AUTH_ENABLED", "true")
	t.Setenv("HARVEST_WEBHOOK_TIMEOUT", "5s")
	t.Setenv("HARVEST_REDIS_DB", "not-a-number")

	cfg := Load()
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Render.Mode != RenderCDP || cfg.Render.CDPURL != "ws://chrome:9222" {
		t.Errorf("Render = %+v", cfg.Render)
	}
	if !reflect.DeepEqual(cfg.Auth.APIKeys, []string{"a", "b"}) {
		t.Errorf("APIKeys = %q", cfg.Auth.APIKeys)
	}
	if cfg.Webhook.Timeout != 5*time.Second {
		t.Errorf("Webhook.Timeout = %v", cfg.Webhook.Timeout)
	}
	if cfg.Store.RedisDB != 0 {
		t.Errorf("RedisDB = %d, want fallback 0", cfg.Store.RedisDB)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown render mode", func(c *Config) { c.Render.Mode = "phantom" }},
		{"cdp without url", func(c *Config) { c.Render.Mode = RenderCDP; c.Render.CDPURL = "" }},
		{"unknown store", func(c *Config) { c.Store.Backend = "sqlite" }},
		{"auth without keys", func(c *Config) { c.Auth.Enabled = true; c.Auth.APIKeys = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate = nil, want error")
			}
		})
	}
}

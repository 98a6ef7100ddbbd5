package config

import (
	"strings"
	"testing"
)

func validLocal() Config {
	return Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "mango"},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_LocalMinimal(t *testing.T) {
	c := validLocal()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validLocal()
	c.App.Env = "production"
	c.Auth.JWTIssuer = "issuer"
	c.Auth.JWTAudience = "aud"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_UpstreamRequiresUserAndName(t *testing.T) {
	c := validLocal()
	c.Upstream = UpstreamConfig{Host: "switch.internal", Port: 5432}
	err := c.Validate()
	if err == nil {
		t.Fatalf("expected error for upstream without user/name")
	}
	if !strings.Contains(err.Error(), "UPSTREAM_DB_USER") {
		t.Fatalf("error should name UPSTREAM_DB_USER, got %v", err)
	}
}

func TestIngestEnabled(t *testing.T) {
	c := validLocal()
	if c.IngestEnabled() {
		t.Fatal("ingest should be disabled without an upstream host")
	}
	c.Upstream.Host = "switch.internal"
	if !c.IngestEnabled() {
		t.Fatal("ingest should be enabled with an upstream host")
	}
}

func TestUpstreamDSNDefaultsSSLMode(t *testing.T) {
	c := validLocal()
	c.Upstream = UpstreamConfig{Host: "switch.internal", Port: 5432, User: "cdr", Name: "asterisk"}
	dsn := c.UpstreamDSN()
	if !strings.Contains(dsn, "sslmode=disable") {
		t.Fatalf("expected default sslmode in dsn, got %q", dsn)
	}
}

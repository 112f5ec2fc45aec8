package config

import (
	"strings"
	"testing"
)

func TestEnsureDSNKeepsExplicitValue(t *testing.T) {
	db := DBConfig{DSN: "postgres://owner:secret@db:5432/cruzremodel"}
	if err := db.ensureDSN(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db.DSN != "postgres://owner:secret@db:5432/cruzremodel" {
		t.Fatalf("dsn must not be rewritten, got %q", db.DSN)
	}
}

func TestEnsureDSNBuildsFromLegacyFields(t *testing.T) {
	db := DBConfig{
		LegacyHost:     "localhost",
		LegacyPort:     5432,
		LegacyUser:     "cruz",
		LegacyPassword: "pw",
		LegacyName:     "estimates",
		LegacySSLMode:  "disable",
	}
	if err := db.ensureDSN(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(db.DSN, "postgres://cruz:pw@localhost:5432/estimates") {
		t.Fatalf("unexpected dsn %q", db.DSN)
	}
	if !strings.Contains(db.DSN, "sslmode=disable") {
		t.Fatalf("expected sslmode in dsn, got %q", db.DSN)
	}
}

func TestEnsureDSNReportsMissingLegacyFields(t *testing.T) {
	db := DBConfig{LegacyHost: "localhost"}
	err := db.ensureDSN()
	if err == nil {
		t.Fatal("expected error for missing legacy fields")
	}
	if !strings.Contains(err.Error(), EnvDBUser) || !strings.Contains(err.Error(), EnvDBName) {
		t.Fatalf("error must name the missing vars, got %v", err)
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	if !(AppConfig{Env: "DEV"}).IsDev() {
		t.Fatal("env comparison must be case-insensitive")
	}
	if (AppConfig{Env: "dev"}).IsProd() {
		t.Fatal("dev must not report prod")
	}
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"testing"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	// Clear environment and set only required var
	os.Clearenv()
	setEnv(t, "INV_SESSION_SECRET", "test-secret-key-32-bytes-long!!!")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Check defaults
	if cfg.DBPath != "./data/inventory.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/inventory.db")
	}
	if cfg.ServerHost != "localhost" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "localhost")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.LowStockThreshold != 10 {
		t.Errorf("LowStockThreshold = %d, want 10", cfg.LowStockThreshold)
	}
	if cfg.EventRetentionDays != 90 {
		t.Errorf("EventRetentionDays = %d, want 90", cfg.EventRetentionDays)
	}
	if cfg.UseRedisCache() {
		t.Error("UseRedisCache() = true without INV_REDIS_URL")
	}
	if cfg.DoSeed {
		t.Error("DoSeed should default to false")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	customSecret := "custom-secret-key-32-bytes-long!"
	setEnv(t, "INV_SESSION_SECRET", customSecret)
	setEnv(t, "INV_DB_PATH", "/custom/path.db")
	setEnv(t, "INV_SERVER_HOST", "0.0.0.0")
	setEnv(t, "INV_SERVER_PORT", "3000")
	setEnv(t, "INV_ENV", "production")
	setEnv(t, "INV_LOG_LEVEL", "debug")
	setEnv(t, "INV_LOW_STOCK_THRESHOLD", "5")
	setEnv(t, "INV_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.SessionSecret != customSecret {
		t.Errorf("SessionSecret = %q, want %q", cfg.SessionSecret, customSecret)
	}
	if cfg.DBPath != "/custom/path.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "/custom/path.db")
	}
	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "0.0.0.0:3000")
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true with INV_ENV=production")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.LowStockThreshold != 5 {
		t.Errorf("LowStockThreshold = %d, want 5", cfg.LowStockThreshold)
	}
	if !cfg.UseRedisCache() {
		t.Error("UseRedisCache() = false with INV_REDIS_URL set")
	}
}

func TestLoad_RequiredSessionSecret(t *testing.T) {
	os.Clearenv()
	// Don't set INV_SESSION_SECRET

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail when INV_SESSION_SECRET is not set")
	}
}

func TestLoad_SessionSecretTooShort(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"empty", ""},
		{"short", "short"},
		{"31_bytes", "1234567890123456789012345678901"}, // 31 bytes
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			setEnv(t, "INV_SESSION_SECRET", tt.secret)

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() should fail with %d-byte secret", len(tt.secret))
			}
		})
	}
}

func TestLoad_KnownWeakSecretRejected(t *testing.T) {
	os.Clearenv()
	setEnv(t, "INV_SESSION_SECRET", "change-me-to-32-byte-secret-key!")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should reject a known default secret")
	}
}

func TestLoad_NegativeLowStockThreshold(t *testing.T) {
	os.Clearenv()
	setEnv(t, "INV_SESSION_SECRET", "test-secret-key-32-bytes-long!!!")
	setEnv(t, "INV_LOW_STOCK_THRESHOLD", "-1")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should reject a negative low stock threshold")
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		want   bool
	}{
		{"three_classes", "abcDEF123", true},
		{"four_classes", "abcDEF123!@#", true},
		{"only_lowercase", "abcdefghij", false},
		{"lower_and_digits", "abc123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasMinimumEntropy(tt.secret); got != tt.want {
				t.Errorf("hasMinimumEntropy(%q) = %v, want %v", tt.secret, got, tt.want)
			}
		})
	}
}

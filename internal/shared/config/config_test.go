package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DOC_STORE", "")
	t.Setenv("OBJECT_STORE", "")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("FLASH_UPLOAD_DEADLINE", "")
	t.Setenv("CORS_ALLOW_ORIGINS", "")
	t.Setenv("CORS_MAX_AGE", "")

	cfg := Load()
	if cfg.DocStoreType != "memory" || cfg.ObjectStoreType != "local" {
		t.Fatalf("unexpected store defaults: %s / %s", cfg.DocStoreType, cfg.ObjectStoreType)
	}
	if cfg.Flash.UploadDeadline != 10*time.Second {
		t.Fatalf("expected 10s upload deadline, got %s", cfg.Flash.UploadDeadline)
	}
	if cfg.Flash.AgentSocket == "" {
		t.Fatalf("expected a default agent socket")
	}
	if len(cfg.CORSAllowOrigin) != 1 || cfg.CORSAllowOrigin[0] != "http://localhost:5173" || cfg.CORSMaxAge != 10*time.Minute {
		t.Fatalf("unexpected cors defaults: %v / %s", cfg.CORSAllowOrigin, cfg.CORSMaxAge)
	}
}

func TestLoadDocStoreFollowsDatabaseURL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DOC_STORE", "")
	t.Setenv("DATABASE_URL", "postgres://flash@localhost/flash")

	if got := Load().DocStoreType; got != "postgres" {
		t.Fatalf("expected postgres doc store, got %s", got)
	}
}

func TestLoadYAMLOverlayUnderEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "flash.yaml")
	content := "flash:\n  agent_socket: /run/agent.sock\n  probe_timeout: 250ms\n  upload_deadline: 3s\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("AGENT_SOCKET", "")
	t.Setenv("FLASH_PROBE_TIMEOUT", "")
	t.Setenv("FLASH_UPLOAD_DEADLINE", "7s")

	cfg := Load()
	if cfg.Flash.AgentSocket != "/run/agent.sock" {
		t.Fatalf("expected socket from file, got %q", cfg.Flash.AgentSocket)
	}
	if cfg.Flash.ProbeTimeout != 250*time.Millisecond {
		t.Fatalf("expected probe timeout from file, got %s", cfg.Flash.ProbeTimeout)
	}
	if cfg.Flash.UploadDeadline != 7*time.Second {
		t.Fatalf("env must win over file, got %s", cfg.Flash.UploadDeadline)
	}
	if cfg.Flash.DispatchTimeout != 5*time.Second {
		t.Fatalf("unset file fields keep defaults, got %s", cfg.Flash.DispatchTimeout)
	}
}

func TestLoadFileRejectsBadDurations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("flash:\n  upload_deadline: soon\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadFile(path); err == nil {
		t.Fatalf("expected invalid duration error")
	}
}

func TestInvalidEnvDurationFallsBack(t *testing.T) {
	t.Setenv("FLASH_DISPATCH_TIMEOUT", "-1s")
	if got := getDuration("FLASH_DISPATCH_TIMEOUT", time.Second); got != time.Second {
		t.Fatalf("expected fallback, got %s", got)
	}
}

func TestNormalizers(t *testing.T) {
	if normalizeStoreType("GCS") != "gcs" || normalizeStoreType("nope") != "local" {
		t.Fatalf("unexpected object store normalization")
	}
	if normalizeDocStoreType("Firestore", "") != "firestore" {
		t.Fatalf("unexpected doc store normalization")
	}
	if normalizeEnv("prod") != "production" {
		t.Fatalf("unexpected env normalization")
	}
}

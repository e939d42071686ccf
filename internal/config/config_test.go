package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig err=%v", err)
	}
	if cfg.StoreDriver != StoreMemory || cfg.AuditSink != AuditLog {
		t.Fatalf("unexpected drivers %+v", cfg)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("ttl=%s want 30m", cfg.SessionTTL)
	}
	if cfg.AdminEmail != "admin@kingstonbank.com" || cfg.TransactionListLimit != 100 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("AUDIT_SINK", "Kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("ALLOW_CONCURRENT_SESSIONS", "true")
	t.Setenv("TRANSACTION_LIST_LIMIT", "20")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig err=%v", err)
	}
	if cfg.AuditSink != AuditKafka {
		t.Fatalf("sink=%q", cfg.AuditSink)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[0] != "k1:9092" || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("brokers=%v", cfg.KafkaBrokers)
	}
	if cfg.SessionTTL != 2*time.Hour || !cfg.AllowConcurrentSessions || cfg.TransactionListLimit != 20 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "ADMIN_EMAIL=ops@kingstonbank.com\nDATA_FILE=/tmp/bank.json\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig err=%v", err)
	}
	if cfg.AdminEmail != "ops@kingstonbank.com" || cfg.DataFile != "/tmp/bank.json" {
		t.Fatalf("env file not applied: %+v", cfg)
	}
}

func TestValidateRejectsIncompleteDrivers(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	if _, err := LoadConfig(t.TempDir()); err == nil {
		t.Fatal("expected error for postgres without DATABASE_URL")
	}

	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("AUDIT_SINK", "carrier-pigeon")
	if _, err := LoadConfig(t.TempDir()); err == nil {
		t.Fatal("expected error for unknown audit sink")
	}
}

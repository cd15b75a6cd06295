package sweep

import (
	"strings"
	"testing"
	"time"

	"github.com/zulandar/carscout/internal/approval"
	"github.com/zulandar/carscout/internal/config"
	"github.com/zulandar/carscout/internal/db"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Connect(config.StoreConfig{Driver: "sqlite", Path: ":memory:"})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return gdb
}

func TestNew_RequiresDB(t *testing.T) {
	_, err := New(Opts{CronExpr: "* * * * *"})
	if err == nil {
		t.Fatal("expected error for nil db")
	}
}

func TestNew_RequiresCronExpr(t *testing.T) {
	gdb := openTestDB(t)
	_, err := New(Opts{DB: gdb})
	if err == nil {
		t.Fatal("expected error for empty cron expression")
	}
}

func TestNew_InvalidCronExpr(t *testing.T) {
	gdb := openTestDB(t)
	_, err := New(Opts{DB: gdb, CronExpr: "not a cron"})
	if err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
	if !strings.Contains(err.Error(), "sweep: parse cron") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "sweep: parse cron")
	}
}

func TestRunOnce(t *testing.T) {
	gdb := openTestDB(t)
	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	if _, err := approval.Enqueue(gdb, approval.EnqueueOpts{
		ActionType: "send_offer", Description: "overdue", ExpiresAt: &past,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := approval.Enqueue(gdb, approval.EnqueueOpts{
		ActionType: "send_offer", Description: "live", ExpiresAt: &future,
	}); err != nil {
		t.Fatal(err)
	}

	s, err := New(Opts{DB: gdb, CronExpr: "*/15 * * * *"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	n, err := s.RunOnce()
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if n != 1 {
		t.Errorf("n = %d, want 1", n)
	}
}

package audit

import (
	"context"
	"testing"

	"github.com/legaltech/webgate/internal/config"
	"github.com/legaltech/webgate/internal/db"
)

func testRecorder(t *testing.T) *Recorder {
	t.Helper()
	cfg := &config.Config{DBDriver: "sqlite", DBPath: t.TempDir() + "/audit.db"}
	database, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	if err := db.Migrate(database, cfg.DBDriver); err != nil {
		t.Fatalf("db migrate: %v", err)
	}
	return NewRecorder(database)
}

func TestRecordAndRecent(t *testing.T) {
	r := testRecorder(t)
	ctx := context.Background()

	r.Record(ctx, Event{Kind: KindLoginFailure, Email: "a@b.co", Detail: "Incorrect email or password"})
	r.Record(ctx, Event{Kind: KindLoginSuccess, Email: "a@b.co", UserID: "3"})
	r.Record(ctx, Event{Kind: KindGuardRedirect, Path: "/dashboard/solo/7"})

	events, err := r.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Kind != KindGuardRedirect {
		t.Fatalf("expected newest first, got %q", events[0].Kind)
	}
	for _, ev := range events {
		if ev.EventID == "" || ev.CreatedAt == "" {
			t.Fatalf("expected generated id and timestamp, got %+v", ev)
		}
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	r.Record(context.Background(), Event{Kind: KindLogout})
	events, err := r.Recent(context.Background(), 5)
	if err != nil || events != nil {
		t.Fatalf("expected nil recorder no-ops, got %v %v", events, err)
	}
}

package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSyncer_RunOnce(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	var reports []SyncResult
	s := NewSyncer(store, func(r SyncResult) { reports = append(reports, r) })
	res := s.RunOnce(context.Background(), SyncJob{Dataset: "sample", Path: path})
	if res.Err != nil {
		t.Fatalf("RunOnce: %v", res.Err)
	}
	if res.Rows != 9 {
		t.Errorf("Rows = %d, want 9", res.Rows)
	}
	if len(reports) != 1 {
		t.Errorf("reports = %d, want 1", len(reports))
	}

	got, err := store.Observations(context.Background(), "sample", time.Time{}, time.Time{})
	if err != nil || len(got) != 9 {
		t.Errorf("Observations = %d rows, %v; want 9", len(got), err)
	}

	res = s.RunOnce(context.Background(), SyncJob{Dataset: "sample", Path: filepath.Join(t.TempDir(), "gone.csv")})
	if !errors.Is(res.Err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", res.Err)
	}
}

func TestSyncer_Add(t *testing.T) {
	store := newTestStore(t)
	s := NewSyncer(store, nil)
	ctx := context.Background()

	if err := s.Add(ctx, SyncJob{Dataset: "x", Path: "x.csv", Schedule: "@every 1h"}); err != nil {
		t.Errorf("Add(valid) = %v", err)
	}
	if err := s.Add(ctx, SyncJob{Dataset: "x", Path: "x.csv", Schedule: "not a schedule"}); err == nil {
		t.Error("expected error for a bad schedule")
	}
	if err := s.Add(ctx, SyncJob{Path: "x.csv", Schedule: "@hourly"}); err == nil {
		t.Error("expected error for a job without dataset")
	}
	if len(s.jobs) != 1 {
		t.Errorf("jobs = %d, want 1", len(s.jobs))
	}
}

func TestSyncer_StartRunsImmediately(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	done := make(chan SyncResult, 1)
	s := NewSyncer(store, func(r SyncResult) {
		select {
		case done <- r:
		default:
		}
	})
	if err := s.Add(context.Background(), SyncJob{Dataset: "sample", Path: path, Schedule: "@every 24h"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	s.Start(context.Background())
	defer s.Stop()

	select {
	case r := <-done:
		if r.Err != nil || r.Rows != 9 {
			t.Errorf("first run = %+v", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
}

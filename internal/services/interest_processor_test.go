package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeMarkerReader struct {
	month string
	err   error
}

func (f *fakeMarkerReader) InterestMarker(ctx context.Context) (string, error) {
	return f.month, f.err
}

func TestProcessDueAppliesOncePerMonth(t *testing.T) {
	svc, store, _ := newTestService()
	processor := NewInterestProcessor(svc, nil)

	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	applied, err := processor.ProcessDue(context.Background(), now)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if !applied {
		t.Fatalf("expected first run to apply interest")
	}
	if store.marker != "2026-03" {
		t.Fatalf("marker not persisted, got %q", store.marker)
	}

	applied, err = processor.ProcessDue(context.Background(), now.Add(72*time.Hour))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if applied {
		t.Fatalf("second run in same month must not apply")
	}

	applied, err = processor.ProcessDue(context.Background(), time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("next month run: %v", err)
	}
	if !applied {
		t.Fatalf("expected new month to apply interest")
	}
}

func TestProcessDueSkipsMonthStampedElsewhere(t *testing.T) {
	svc, store, _ := newTestService()
	markers := &fakeMarkerReader{month: "2026-03"}
	processor := NewInterestProcessor(svc, markers)

	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	applied, err := processor.ProcessDue(context.Background(), now)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if applied {
		t.Fatalf("month already stamped in the store must not apply")
	}
	if len(store.transactions) != 0 {
		t.Fatalf("no transactions should be persisted, got %d", len(store.transactions))
	}
	if svc.LastInterestMonth() != "2026-03" {
		t.Fatalf("stamp not adopted in memory, got %q", svc.LastInterestMonth())
	}

	applied, err = processor.ProcessDue(context.Background(), time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("next month run: %v", err)
	}
	if !applied {
		t.Fatalf("expected the following month to apply interest")
	}
}

func TestProcessDueAppliesWhenMarkerReadFails(t *testing.T) {
	svc, store, _ := newTestService()
	markers := &fakeMarkerReader{err: errors.New("database locked")}
	processor := NewInterestProcessor(svc, markers)

	applied, err := processor.ProcessDue(context.Background(), time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !applied {
		t.Fatalf("marker read failure must not block the run")
	}
	if store.marker != "2026-03" {
		t.Fatalf("marker not persisted, got %q", store.marker)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	svc, _, _ := newTestService()
	processor := NewInterestProcessor(svc, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- processor.Run(ctx, 50*time.Millisecond)
	}()

	time.Sleep(120 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run did not stop after cancel")
	}
}

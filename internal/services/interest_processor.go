package services

import (
	"context"
	"log/slog"
	"time"

	"familybank/internal/core"
)

// MarkerReader reports the month stamp persisted by the storage layer.
type MarkerReader interface {
	InterestMarker(ctx context.Context) (string, error)
}

// InterestProcessor drives the periodic interest check. It is safe to
// run as often as desired: the ledger's month marker makes repeated
// runs within the same calendar month no-ops, and the persisted marker
// keeps a second process from crediting a month again.
type InterestProcessor struct {
	service *LedgerService
	markers MarkerReader // nil when no shared store backs the ledger
}

func NewInterestProcessor(service *LedgerService, markers MarkerReader) *InterestProcessor {
	return &InterestProcessor{service: service, markers: markers}
}

// ProcessDue applies monthly interest if the current month has not been
// processed yet. The persisted marker is consulted before applying, so
// a month stamped by another process against the same database is
// skipped here. Returns whether a run actually credited anything.
func (p *InterestProcessor) ProcessDue(ctx context.Context, now time.Time) (bool, error) {
	stamp := core.MonthStamp(now.Year(), int(now.Month()))
	if p.service.LastInterestMonth() == stamp {
		slog.DebugContext(ctx, "Interest already processed for month", "month", stamp)
		return false, nil
	}

	if p.markers != nil {
		marker, err := p.markers.InterestMarker(ctx)
		if err != nil {
			slog.WarnContext(ctx, "Failed to read persisted interest marker", "error", err)
		} else if marker == stamp {
			p.service.AdoptInterestMonth(marker)
			slog.InfoContext(ctx, "Interest already applied by another process", "month", stamp)
			return false, nil
		}
	}

	res, err := p.service.ApplyMonthlyInterest(ctx, now)
	if err != nil {
		return false, err
	}
	if !res.Applied {
		slog.InfoContext(ctx, "Interest run completed without credits", "month", res.Month)
	}
	return res.Applied, nil
}

// Run blocks, checking on every tick until ctx is cancelled. An
// immediate check happens before the first tick so a freshly started
// worker does not wait a full interval.
func (p *InterestProcessor) Run(ctx context.Context, interval time.Duration) error {
	if _, err := p.ProcessDue(ctx, time.Now()); err != nil {
		slog.ErrorContext(ctx, "Interest check failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := p.ProcessDue(ctx, time.Now()); err != nil {
				slog.ErrorContext(ctx, "Interest check failed", "error", err)
			}
		}
	}
}

package booking

import (
	"context"
	"time"

	"github.com/CityCareHQ/hospital-scheduler/internal/audit"
	domain "github.com/CityCareHQ/hospital-scheduler/internal/domain/booking"
	"github.com/CityCareHQ/hospital-scheduler/internal/timezone"
)

// SweepLocks clears expired, unconfirmed slot locks system-wide. Expiry is
// already enforced inline by every reader, so this is housekeeping: it keeps
// the reservation table small and the unavailability reads cheap.
type SweepLocks struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   func() time.Time
}

func NewSweepLocks(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *SweepLocks {
	return &SweepLocks{
		repo:  repo,
		audit: audit,
		now:   timezone.Now,
	}
}

func (uc *SweepLocks) Execute(ctx context.Context) (int64, error) {
	cleared, err := uc.repo.SweepExpiredLocks(ctx, uc.now())
	if err != nil {
		return 0, err
	}

	if cleared > 0 {
		uc.audit.Dispatch(audit.Event{
			Action:   "locks_swept",
			Entity:   "slot_reservation",
			Metadata: map[string]any{"cleared": cleared},
		})
	}

	return cleared, nil
}

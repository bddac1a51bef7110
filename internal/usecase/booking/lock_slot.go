package booking

import (
	"context"
	"time"

	"github.com/CityCareHQ/hospital-scheduler/internal/audit"
	domain "github.com/CityCareHQ/hospital-scheduler/internal/domain/booking"
	"github.com/CityCareHQ/hospital-scheduler/internal/httperr"
	"github.com/CityCareHQ/hospital-scheduler/internal/timezone"
)

// LockDuration is how long a slot stays reserved while the patient pays.
// Every reader treats a lock older than this as abandoned, sweep or not.
const LockDuration = 5 * time.Minute

// ======================================================
// INPUT
// ======================================================

type LockSlotInput struct {
	DoctorID uint
	Date     string
	Time     string
	UserID   uint
}

type LockSlotResult struct {
	LockedUntil         time.Time `json:"locked_until"`
	LockDurationSeconds int       `json:"lock_duration_seconds"`
}

// ======================================================
// USE CASE
// ======================================================

type LockSlot struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   func() time.Time
}

func NewLockSlot(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *LockSlot {
	return &LockSlot{
		repo:  repo,
		audit: audit,
		now:   timezone.Now,
	}
}

func (uc *LockSlot) Execute(
	ctx context.Context,
	in LockSlotInput,
) (*LockSlotResult, error) {

	patient, err := uc.repo.GetPatientByUser(ctx, in.UserID)
	if err != nil {
		return nil, httperr.ErrBusiness("patient_profile_not_found")
	}

	doctor, err := uc.repo.GetDoctor(ctx, in.DoctorID)
	if err != nil {
		return nil, httperr.ErrBusiness("doctor_not_found")
	}

	day, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	sched, err := domain.ScheduleFromDoctor(doctor)
	if err != nil {
		return nil, err
	}
	if !scheduleOffersTime(sched, day, in.Time) {
		return nil, httperr.ErrBusiness("slot_not_offered")
	}

	now := uc.now()
	until := now.Add(LockDuration)

	key := domain.SlotKey{
		DoctorID: in.DoctorID,
		Date:     in.Date,
		Time:     in.Time,
	}

	if err := uc.repo.AcquireLock(ctx, key, patient.ID, now, until); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID: &in.UserID,
		Action: "slot_locked",
		Entity: "slot_reservation",
		Metadata: map[string]any{
			"doctor_id": in.DoctorID,
			"date":      in.Date,
			"time":      in.Time,
		},
	})

	return &LockSlotResult{
		LockedUntil:         until,
		LockDurationSeconds: int(LockDuration / time.Second),
	}, nil
}

func scheduleOffersTime(sched domain.Schedule, day time.Time, slotTime string) bool {
	candidates, ok := sched.SlotTimes(day)
	if !ok {
		return false
	}
	for _, t := range candidates {
		if t == slotTime {
			return true
		}
	}
	return false
}

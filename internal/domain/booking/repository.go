package booking

import (
	"context"
	"time"

	"github.com/CityCareHQ/hospital-scheduler/internal/models"
)

// SlotKey identifies one bookable unit: a doctor's slot on a date.
type SlotKey struct {
	DoctorID uint
	Date     string // YYYY-MM-DD
	Time     string // HH:MM:SS
}

// Repository is the storage contract the booking protocol runs on. The
// protocol holds no in-process locks; "at most one confirmed booking per
// slot" depends on the store honouring the conditions spelled out below as
// single atomic operations.
type Repository interface {
	// -------- Profiles --------
	GetDoctor(ctx context.Context, id uint) (*models.Doctor, error)

	GetPatientByUser(ctx context.Context, userID uint) (*models.Patient, error)

	// -------- Slot lock store --------

	// UnavailableTimes returns the slot times on the given date that are
	// booked or under a lock expiring after now.
	UnavailableTimes(
		ctx context.Context,
		doctorID uint,
		date string,
		now time.Time,
	) ([]string, error)

	// AcquireLock claims the slot for the patient until the given instant,
	// as one atomic upsert. It must succeed only when the slot row is
	// absent, or unbooked with an expired lock, or already held by the same
	// patient; otherwise it returns the slot_unavailable business error.
	AcquireLock(
		ctx context.Context,
		key SlotKey,
		patientID uint,
		now time.Time,
		until time.Time,
	) error

	// ConfirmBooking flips the slot to booked and writes the appointment in
	// one transaction. The flip must be conditional on the calling patient
	// still holding an unexpired lock; when the condition fails it returns
	// the lock_expired business error and writes nothing.
	ConfirmBooking(
		ctx context.Context,
		key SlotKey,
		patientID uint,
		now time.Time,
		ap *models.Appointment,
	) error

	// -------- Appointment ledger --------
	GetAppointment(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	GetAppointmentForPatient(
		ctx context.Context,
		id uint,
		patientID uint,
	) (*models.Appointment, error)

	// CancelBooking persists the cancelled appointment and releases its slot
	// reservation in one transaction; both writes apply or neither does.
	CancelBooking(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// SweepExpiredLocks clears lock fields on unbooked rows whose expiry is
	// in the past and reports how many rows it cleared. Booked rows are
	// never touched. Idempotent.
	SweepExpiredLocks(
		ctx context.Context,
		now time.Time,
	) (int64, error)
}

package booking

import (
	"time"

	"github.com/CityCareHQ/hospital-scheduler/internal/httperr"
	"github.com/CityCareHQ/hospital-scheduler/internal/models"
)

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

const (
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"

	RefundCompleted = "completed"
)

// ===============================
// Validations
// ===============================

// CanCancel: only a confirmed appointment can still be called off.
func CanCancel(current Status) error {
	if current != StatusConfirmed {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// CanComplete: completion is recorded when a prescription is written, and
// only for appointments that are still confirmed.
func CanComplete(current Status) error {
	if current != StatusConfirmed {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// ===============================
// Domain Actions
// ===============================

func Cancel(ap *models.Appointment, cancelledBy, reason string, now time.Time) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCancelled)
	ap.CancelledBy = cancelledBy
	ap.CancellationReason = reason
	ap.RefundStatus = RefundCompleted
	ap.PaymentStatus = PaymentRefunded
	ap.CancelledAt = &now
	return nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if err := CanComplete(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCompleted)
	ap.CompletedAt = &now
	return nil
}

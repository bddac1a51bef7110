package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/CityCareHQ/hospital-scheduler/internal/audit"
	domain "github.com/CityCareHQ/hospital-scheduler/internal/domain/booking"
	"github.com/CityCareHQ/hospital-scheduler/internal/httperr"
	"github.com/CityCareHQ/hospital-scheduler/internal/models"
	"github.com/CityCareHQ/hospital-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CancelBookingInput struct {
	AppointmentID uint
	UserID        uint
	Role          string
	Reason        string
}

// ======================================================
// USE CASE
// ======================================================

type CancelBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   func() time.Time
}

func NewCancelBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CancelBooking {
	return &CancelBooking{
		repo:  repo,
		audit: audit,
		now:   timezone.Now,
	}
}

func (uc *CancelBooking) Execute(
	ctx context.Context,
	in CancelBookingInput,
) (*models.Appointment, error) {

	var ap *models.Appointment
	var err error

	switch in.Role {
	case models.RoleAdmin:
		ap, err = uc.repo.GetAppointment(ctx, in.AppointmentID)
		if err != nil {
			return nil, httperr.ErrBusiness("appointment_not_found")
		}
	case models.RolePatient:
		patient, perr := uc.repo.GetPatientByUser(ctx, in.UserID)
		if perr != nil {
			return nil, httperr.ErrBusiness("patient_profile_not_found")
		}
		ap, err = uc.repo.GetAppointmentForPatient(ctx, in.AppointmentID, patient.ID)
		if err != nil {
			return nil, httperr.ErrBusiness("appointment_not_found")
		}
	default:
		return nil, httperr.ErrBusiness("forbidden")
	}

	reason := in.Reason
	if reason == "" {
		reason = "Cancelled by " + in.Role
	}

	if err := domain.Cancel(ap, in.Role, reason, uc.now()); err != nil {
		return nil, err
	}
	ap.RefundRef = uuid.NewString()

	// Ledger update and slot release land together or not at all.
	if err := uc.repo.CancelBooking(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.UserID,
		Action:   "booking_cancelled",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{"reason": reason},
	})

	return ap, nil
}

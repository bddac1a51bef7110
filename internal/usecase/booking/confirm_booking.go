package booking

import (
	"context"
	"time"

	"github.com/CityCareHQ/hospital-scheduler/internal/audit"
	domain "github.com/CityCareHQ/hospital-scheduler/internal/domain/booking"
	"github.com/CityCareHQ/hospital-scheduler/internal/httperr"
	"github.com/CityCareHQ/hospital-scheduler/internal/models"
	"github.com/CityCareHQ/hospital-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type ConfirmBookingInput struct {
	DoctorID   uint
	Date       string
	Time       string
	UserID     uint
	PaymentRef string
}

// ======================================================
// USE CASE
// ======================================================

type ConfirmBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   func() time.Time
}

func NewConfirmBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *ConfirmBooking {
	return &ConfirmBooking{
		repo:  repo,
		audit: audit,
		now:   timezone.Now,
	}
}

// Execute turns a held lock into a durable appointment. The payment
// reference is accepted as opaque proof that payment went through; the lock
// is re-checked at this point, not trusted from lock time.
func (uc *ConfirmBooking) Execute(
	ctx context.Context,
	in ConfirmBookingInput,
) (*models.Appointment, error) {

	if in.PaymentRef == "" {
		return nil, httperr.ErrBusiness("missing_payment_ref")
	}

	patient, err := uc.repo.GetPatientByUser(ctx, in.UserID)
	if err != nil {
		return nil, httperr.ErrBusiness("patient_profile_not_found")
	}

	doctor, err := uc.repo.GetDoctor(ctx, in.DoctorID)
	if err != nil {
		return nil, httperr.ErrBusiness("doctor_not_found")
	}

	ap := &models.Appointment{
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		SlotDate:        in.Date,
		SlotTime:        in.Time,
		Status:          string(domain.StatusConfirmed),
		ConsultationFee: doctor.ConsultationFee,
		PaymentStatus:   domain.PaymentPaid,
		PaymentRef:      in.PaymentRef,
	}

	key := domain.SlotKey{
		DoctorID: in.DoctorID,
		Date:     in.Date,
		Time:     in.Time,
	}

	if err := uc.repo.ConfirmBooking(ctx, key, patient.ID, uc.now(), ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.UserID,
		Action:   "booking_confirmed",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}

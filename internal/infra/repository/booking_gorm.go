package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/CityCareHQ/hospital-scheduler/internal/domain/booking"
	"github.com/CityCareHQ/hospital-scheduler/internal/httperr"
	"github.com/CityCareHQ/hospital-scheduler/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// --------------------------------------------------
// Profiles
// --------------------------------------------------

func (r *BookingGormRepository) GetDoctor(
	ctx context.Context,
	id uint,
) (*models.Doctor, error) {

	var doctor models.Doctor
	if err := r.db.WithContext(ctx).First(&doctor, id).Error; err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (r *BookingGormRepository) GetPatientByUser(
	ctx context.Context,
	userID uint,
) (*models.Patient, error) {

	var patient models.Patient
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&patient).Error; err != nil {
		return nil, err
	}
	return &patient, nil
}

// --------------------------------------------------
// Slot lock store
// --------------------------------------------------

func (r *BookingGormRepository) UnavailableTimes(
	ctx context.Context,
	doctorID uint,
	date string,
	now time.Time,
) ([]string, error) {

	var times []string
	if err := r.db.WithContext(ctx).
		Model(&models.SlotReservation{}).
		Where(
			"doctor_id = ? AND slot_date = ? AND (booked = TRUE OR locked_until > ?)",
			doctorID, date, now,
		).
		Order("slot_time ASC").
		Pluck("slot_time", &times).Error; err != nil {
		return nil, err
	}

	return times, nil
}

// AcquireLock claims the slot in a single upsert. The ON CONFLICT update is
// guarded so a live lock held by another patient is never overwritten: the
// row must be unbooked and either expired or already owned by the caller.
// Zero affected rows means the race was lost.
func (r *BookingGormRepository) AcquireLock(
	ctx context.Context,
	key domain.SlotKey,
	patientID uint,
	now time.Time,
	until time.Time,
) error {

	row := models.SlotReservation{
		DoctorID:    key.DoctorID,
		SlotDate:    key.Date,
		SlotTime:    key.Time,
		PatientID:   &patientID,
		LockedUntil: &until,
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "doctor_id"},
				{Name: "slot_date"},
				{Name: "slot_time"},
			},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"patient_id":   patientID,
				"locked_until": until,
				"updated_at":   now,
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{
					SQL: "slot_reservations.booked = FALSE AND " +
						"(slot_reservations.locked_until IS NULL OR " +
						"slot_reservations.locked_until < ? OR " +
						"slot_reservations.patient_id = ?)",
					Vars: []interface{}{now, patientID},
				},
			}},
		}).
		Create(&row)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return httperr.ErrBusiness("slot_unavailable")
	}
	return nil
}

// ConfirmBooking performs the two-write confirm: the slot flip is one
// conditional UPDATE keyed on the caller's unexpired lock, and the ledger
// insert rides the same transaction.
func (r *BookingGormRepository) ConfirmBooking(
	ctx context.Context,
	key domain.SlotKey,
	patientID uint,
	now time.Time,
	ap *models.Appointment,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		res := tx.Model(&models.SlotReservation{}).
			Where(
				"doctor_id = ? AND slot_date = ? AND slot_time = ? AND patient_id = ? "+
					"AND booked = FALSE AND locked_until IS NOT NULL AND locked_until > ?",
				key.DoctorID, key.Date, key.Time, patientID, now,
			).
			Updates(map[string]interface{}{
				"booked":       true,
				"locked_until": nil,
			})

		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return httperr.ErrBusiness("lock_expired")
		}

		return tx.Create(ap).Error
	})
}

// --------------------------------------------------
// Appointment ledger
// --------------------------------------------------

func (r *BookingGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).First(&ap, id).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *BookingGormRepository) GetAppointmentForPatient(
	ctx context.Context,
	id uint,
	patientID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where("id = ? AND patient_id = ?", id, patientID).
		First(&ap).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *BookingGormRepository) CancelBooking(
	ctx context.Context,
	ap *models.Appointment,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		if err := tx.Save(ap).Error; err != nil {
			return err
		}

		// Release, don't delete: the row stays as the slot's record and its
		// key becomes lockable again.
		return tx.Model(&models.SlotReservation{}).
			Where(
				"doctor_id = ? AND slot_date = ? AND slot_time = ?",
				ap.DoctorID, ap.SlotDate, ap.SlotTime,
			).
			Updates(map[string]interface{}{
				"booked":       false,
				"locked_until": nil,
				"patient_id":   nil,
			}).Error
	})
}

func (r *BookingGormRepository) SweepExpiredLocks(
	ctx context.Context,
	now time.Time,
) (int64, error) {

	res := r.db.WithContext(ctx).
		Model(&models.SlotReservation{}).
		Where("booked = FALSE AND locked_until IS NOT NULL AND locked_until < ?", now).
		Updates(map[string]interface{}{
			"locked_until": nil,
			"patient_id":   nil,
		})

	return res.RowsAffected, res.Error
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)

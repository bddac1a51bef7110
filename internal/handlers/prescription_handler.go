package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/CityCareHQ/hospital-scheduler/internal/audit"
	domain "github.com/CityCareHQ/hospital-scheduler/internal/domain/booking"
	"github.com/CityCareHQ/hospital-scheduler/internal/httperr"
	"github.com/CityCareHQ/hospital-scheduler/internal/httpresp"
	"github.com/CityCareHQ/hospital-scheduler/internal/middleware"
	"github.com/CityCareHQ/hospital-scheduler/internal/models"
	"github.com/CityCareHQ/hospital-scheduler/internal/timezone"
)

type PrescriptionHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewPrescriptionHandler(db *gorm.DB, dispatcher *audit.Dispatcher) *PrescriptionHandler {
	return &PrescriptionHandler{db: db, audit: dispatcher}
}

// ======================================================
// REQUESTS
// ======================================================

type CreatePrescriptionRequest struct {
	AppointmentID      uint   `json:"appointment_id" binding:"required"`
	Medicines          string `json:"medicines" binding:"required"`
	Dosage             string `json:"dosage"`
	Duration           string `json:"duration"`
	Remarks            string `json:"remarks"`
	ProblemDescription string `json:"problem_description"`
	Diagnosis          string `json:"diagnosis"`
	Advice             string `json:"advice"`
}

// ======================================================
// CREATE (doctor)
// ======================================================

// Create records a prescription and completes its appointment. A completed
// appointment always has exactly one prescription, so both writes share a
// transaction and a second prescription for the same appointment is
// rejected.
func (h *PrescriptionHandler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var doctor models.Doctor
	if err := h.db.Where("user_id = ?", userID).First(&doctor).Error; err != nil {
		httperr.Forbidden(c, "doctor_profile_not_found", "Doctor profile not found.")
		return
	}

	var req CreatePrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Missing required fields.")
		return
	}

	var ap models.Appointment
	if err := h.db.First(&ap, req.AppointmentID).Error; err != nil {
		httperr.NotFound(c, "appointment_not_found", "Appointment not found.")
		return
	}

	if ap.DoctorID != doctor.ID {
		httperr.Forbidden(c, "not_your_patient", "You can only prescribe for your own appointments.")
		return
	}

	now := timezone.Now()
	if err := domain.Complete(&ap, now); err != nil {
		httperr.BadRequest(c, "invalid_state", "Appointment cannot be completed.")
		return
	}

	prescription := models.Prescription{
		AppointmentID:      ap.ID,
		PatientID:          ap.PatientID,
		DoctorID:           doctor.ID,
		Medicines:          req.Medicines,
		Dosage:             req.Dosage,
		Duration:           req.Duration,
		Remarks:            req.Remarks,
		ProblemDescription: req.ProblemDescription,
		Diagnosis:          req.Diagnosis,
		Advice:             req.Advice,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&prescription).Error; err != nil {
			return err
		}
		return tx.Save(&ap).Error
	})

	if err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.BadRequest(c, "prescription_exists", "Prescription already exists for this appointment.")
			return
		}
		httperr.Internal(c, "failed_to_create_prescription", "Could not create prescription.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "prescription_created",
		Entity:   "prescription",
		EntityID: &prescription.ID,
	})

	httpresp.Created(c, gin.H{"prescription_id": prescription.ID})
}

// ======================================================
// MEDICAL HISTORY (patient)
// ======================================================

type PrescriptionListItem struct {
	ID                 uint   `json:"id"`
	Medicines          string `json:"medicines"`
	Dosage             string `json:"dosage"`
	Duration           string `json:"duration"`
	Remarks            string `json:"remarks"`
	ProblemDescription string `json:"problem_description"`
	Diagnosis          string `json:"diagnosis"`
	Advice             string `json:"advice"`
	SlotDate           string `json:"slot_date"`
	SlotTime           string `json:"slot_time"`
	DoctorName         string `json:"doctor_name"`
	Specialization     string `json:"specialization"`
}

func (h *PrescriptionHandler) My(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var patient models.Patient
	if err := h.db.Where("user_id = ?", userID).First(&patient).Error; err != nil {
		httperr.Forbidden(c, "patient_profile_not_found", "Patient profile not found.")
		return
	}

	var prescriptions []models.Prescription
	h.db.
		Preload("Appointment").
		Preload("Appointment.Doctor").
		Preload("Appointment.Doctor.User").
		Where("patient_id = ?", patient.ID).
		Order("created_at DESC").
		Find(&prescriptions)

	out := make([]PrescriptionListItem, 0, len(prescriptions))
	for _, p := range prescriptions {
		out = append(out, PrescriptionListItem{
			ID:                 p.ID,
			Medicines:          p.Medicines,
			Dosage:             p.Dosage,
			Duration:           p.Duration,
			Remarks:            p.Remarks,
			ProblemDescription: p.ProblemDescription,
			Diagnosis:          p.Diagnosis,
			Advice:             p.Advice,
			SlotDate:           p.Appointment.SlotDate,
			SlotTime:           p.Appointment.SlotTime,
			DoctorName:         p.Appointment.Doctor.User.Name,
			Specialization:     p.Appointment.Doctor.Specialization,
		})
	}

	httpresp.List(c, out)
}

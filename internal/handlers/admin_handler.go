package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/CityCareHQ/hospital-scheduler/internal/audit"
	"github.com/CityCareHQ/hospital-scheduler/internal/httperr"
	"github.com/CityCareHQ/hospital-scheduler/internal/httpresp"
	"github.com/CityCareHQ/hospital-scheduler/internal/middleware"
	"github.com/CityCareHQ/hospital-scheduler/internal/models"
	"github.com/CityCareHQ/hospital-scheduler/internal/validators"
)

type AdminHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewAdminHandler(db *gorm.DB, dispatcher *audit.Dispatcher) *AdminHandler {
	return &AdminHandler{db: db, audit: dispatcher}
}

// ======================================================
// ADD DOCTOR
// ======================================================

type AddDoctorRequest struct {
	Name            string  `json:"name" binding:"required"`
	Email           string  `json:"email" binding:"required,email"`
	Phone           string  `json:"phone"`
	Specialization  string  `json:"specialization" binding:"required"`
	Qualification   string  `json:"qualification"`
	ExperienceYears int     `json:"experience_years"`
	ConsultationFee float64 `json:"consultation_fee"`
}

// AddDoctor provisions a doctor account with a one-time temporary password,
// returned once in the response for handover.
func (h *AdminHandler) AddDoctor(c *gin.Context) {
	adminID := c.MustGet(middleware.ContextUserID).(uint)

	var req AddDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if !validators.IsEmailDomainValid(email) {
		httperr.BadRequest(c, "invalid_email_domain", "The email domain does not look valid.")
		return
	}

	var count int64
	h.db.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		httperr.BadRequest(c, "email_already_registered", "Email already exists.")
		return
	}

	tempPassword := "Doctor@" + uuid.NewString()[:8]
	hashed, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Could not create doctor.")
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        req.Phone,
		Role:         models.RoleDoctor,
	}

	var doctor models.Doctor

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		doctor = models.Doctor{
			UserID:          user.ID,
			Specialization:  req.Specialization,
			Qualification:   req.Qualification,
			ExperienceYears: req.ExperienceYears,
			ConsultationFee: req.ConsultationFee,
		}
		return tx.Create(&doctor).Error
	})

	if err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.BadRequest(c, "email_already_registered", "Email already exists.")
			return
		}
		httperr.Internal(c, "failed_to_create_doctor", "Could not create doctor.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &adminID,
		Action:   "doctor_added",
		Entity:   "doctor",
		EntityID: &doctor.ID,
	})

	httpresp.Created(c, gin.H{
		"doctor_id":     doctor.ID,
		"temp_password": tempPassword,
	})
}

// ======================================================
// ALL APPOINTMENTS
// ======================================================

func (h *AdminHandler) Appointments(c *gin.Context) {
	var aps []models.Appointment
	h.db.
		Preload("Patient").
		Preload("Patient.User").
		Preload("Doctor").
		Preload("Doctor.User").
		Order("slot_date DESC, slot_time DESC").
		Find(&aps)

	out := make([]AppointmentListItem, 0, len(aps))
	for _, ap := range aps {
		out = append(out, appointmentListItem(&ap))
	}

	httpresp.List(c, out)
}

// ======================================================
// AUDIT LOGS
// ======================================================

func (h *AdminHandler) AuditLogs(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	var logs []models.AuditLog
	if err := h.db.
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		httperr.Internal(c, "failed_to_list_audit_logs", "Could not list audit logs.")
		return
	}

	httpresp.List(c, logs)
}

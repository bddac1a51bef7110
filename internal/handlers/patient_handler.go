package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/CityCareHQ/hospital-scheduler/internal/httperr"
	"github.com/CityCareHQ/hospital-scheduler/internal/httpresp"
	"github.com/CityCareHQ/hospital-scheduler/internal/middleware"
	"github.com/CityCareHQ/hospital-scheduler/internal/models"
	"github.com/CityCareHQ/hospital-scheduler/internal/timezone"
)

type PatientHandler struct {
	db *gorm.DB
}

func NewPatientHandler(db *gorm.DB) *PatientHandler {
	return &PatientHandler{db: db}
}

// ======================================================
// PROFILE
// ======================================================

type PatientProfileUpdateRequest struct {
	FullName        string `json:"full_name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Mobile          string `json:"mobile" binding:"required"`
	AlternateMobile string `json:"alternate_mobile"`
	Address         string `json:"address" binding:"required"`
	DateOfBirth     string `json:"date_of_birth" binding:"required"`
	Gender          string `json:"gender"`
	BloodGroup      string `json:"blood_group"`
	MaritalStatus   string `json:"marital_status"`
	Occupation      string `json:"occupation"`

	HeightCm float64 `json:"height_cm"`
	WeightKg float64 `json:"weight_kg"`

	Allergies        string `json:"allergies"`
	ExistingDiseases string `json:"existing_diseases"`

	EmergencyContactName   string `json:"emergency_contact_name"`
	EmergencyContactNumber string `json:"emergency_contact_number"`
	Relationship           string `json:"relationship"`
}

func (h *PatientHandler) GetProfile(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var patient models.Patient
	if err := h.db.
		Preload("User").
		Where("user_id = ?", userID).
		First(&patient).Error; err != nil {
		httperr.NotFound(c, "patient_profile_not_found", "Patient profile not found.")
		return
	}

	httpresp.OK(c, patient)
}

func (h *PatientHandler) UpdateProfile(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var patient models.Patient
	if err := h.db.Where("user_id = ?", userID).First(&patient).Error; err != nil {
		httperr.NotFound(c, "patient_profile_not_found", "Patient profile not found.")
		return
	}

	var req PatientProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		httperr.BadRequest(c, "invalid_date_of_birth", "Date of birth must be YYYY-MM-DD.")
		return
	}

	patient.FullName = req.FullName
	patient.Mobile = req.Mobile
	patient.AlternateMobile = req.AlternateMobile
	patient.Address = req.Address
	patient.DateOfBirth = req.DateOfBirth
	patient.Age = ageAt(dob, timezone.Now())
	patient.Gender = req.Gender
	patient.BloodGroup = req.BloodGroup
	patient.MaritalStatus = req.MaritalStatus
	patient.Occupation = req.Occupation
	patient.HeightCm = req.HeightCm
	patient.WeightKg = req.WeightKg
	patient.Allergies = req.Allergies
	patient.ExistingDiseases = req.ExistingDiseases
	patient.EmergencyContactName = req.EmergencyContactName
	patient.EmergencyContactNumber = req.EmergencyContactNumber
	patient.Relationship = req.Relationship

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&patient).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("email", req.Email).Error
	})

	if err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.BadRequest(c, "email_already_registered", "Email already in use.")
			return
		}
		httperr.Internal(c, "failed_to_update_profile", "Could not update profile.")
		return
	}

	httpresp.OK(c, gin.H{"status": "ok"})
}

func ageAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() ||
		(now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

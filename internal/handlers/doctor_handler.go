package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/CityCareHQ/hospital-scheduler/internal/httperr"
	"github.com/CityCareHQ/hospital-scheduler/internal/httpresp"
	"github.com/CityCareHQ/hospital-scheduler/internal/middleware"
	"github.com/CityCareHQ/hospital-scheduler/internal/models"
)

type DoctorHandler struct {
	db *gorm.DB
}

func NewDoctorHandler(db *gorm.DB) *DoctorHandler {
	return &DoctorHandler{db: db}
}

// ======================================================
// PUBLIC DIRECTORY
// ======================================================

type DoctorListItem struct {
	ID              uint    `json:"id"`
	Name            string  `json:"name"`
	Specialization  string  `json:"specialization"`
	Qualification   string  `json:"qualification"`
	ExperienceYears int     `json:"experience_years"`
	ConsultationFee float64 `json:"consultation_fee"`
	AvailableDays   string  `json:"available_days"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	SlotMinutes     int     `json:"slot_minutes"`
}

func (h *DoctorHandler) List(c *gin.Context) {
	var doctors []models.Doctor
	if err := h.db.Preload("User").Order("id ASC").Find(&doctors).Error; err != nil {
		httperr.Internal(c, "failed_to_list_doctors", "Could not list doctors.")
		return
	}

	out := make([]DoctorListItem, 0, len(doctors))
	for _, d := range doctors {
		out = append(out, doctorListItem(&d))
	}

	httpresp.List(c, out)
}

func (h *DoctorHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_doctor_id", "Invalid doctor id.")
		return
	}

	var doctor models.Doctor
	if err := h.db.Preload("User").First(&doctor, uint(id)).Error; err != nil {
		httperr.NotFound(c, "doctor_not_found", "Doctor not found.")
		return
	}

	httpresp.OK(c, doctorListItem(&doctor))
}

func doctorListItem(d *models.Doctor) DoctorListItem {
	return DoctorListItem{
		ID:              d.ID,
		Name:            d.User.Name,
		Specialization:  d.Specialization,
		Qualification:   d.Qualification,
		ExperienceYears: d.ExperienceYears,
		ConsultationFee: d.ConsultationFee,
		AvailableDays:   d.AvailableDays,
		StartTime:       d.StartTime,
		EndTime:         d.EndTime,
		SlotMinutes:     d.SlotMinutes,
	}
}

// ======================================================
// OWN APPOINTMENTS
// ======================================================

func (h *DoctorHandler) Appointments(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	doctor, ok := h.doctorForUser(c, userID)
	if !ok {
		return
	}

	var aps []models.Appointment
	h.db.
		Preload("Patient").
		Preload("Patient.User").
		Where("doctor_id = ?", doctor.ID).
		Order("slot_date DESC, slot_time DESC").
		Find(&aps)

	out := make([]AppointmentListItem, 0, len(aps))
	for _, ap := range aps {
		out = append(out, appointmentListItem(&ap))
	}

	httpresp.List(c, out)
}

// ======================================================
// AVAILABILITY
// ======================================================

type AvailabilityUpdateRequest struct {
	AvailableDays []string `json:"available_days" binding:"required"`
	StartTime     string   `json:"start_time" binding:"required"`
	EndTime       string   `json:"end_time" binding:"required"`
	SlotMinutes   int      `json:"slot_minutes" binding:"required"`
}

func (h *DoctorHandler) GetAvailability(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	doctor, ok := h.doctorForUser(c, userID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"available_days": doctor.AvailableDays,
		"start_time":     doctor.StartTime,
		"end_time":       doctor.EndTime,
		"slot_minutes":   doctor.SlotMinutes,
	})
}

func (h *DoctorHandler) UpdateAvailability(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	doctor, ok := h.doctorForUser(c, userID)
	if !ok {
		return
	}

	var req AvailabilityUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Missing required fields.")
		return
	}

	for _, day := range req.AvailableDays {
		if !isWeekdayName(day) {
			httperr.BadRequest(c, "invalid_weekday", "Unknown weekday name: "+day)
			return
		}
	}

	start, err := normalizeClock(req.StartTime)
	if err != nil {
		httperr.BadRequest(c, "invalid_start_time", "Start time must be HH:MM or HH:MM:SS.")
		return
	}
	end, err := normalizeClock(req.EndTime)
	if err != nil {
		httperr.BadRequest(c, "invalid_end_time", "End time must be HH:MM or HH:MM:SS.")
		return
	}
	if !clockBefore(start, end) {
		httperr.BadRequest(c, "invalid_window", "Start time must come before end time.")
		return
	}
	if req.SlotMinutes <= 0 {
		httperr.BadRequest(c, "invalid_slot_minutes", "Slot duration must be positive.")
		return
	}

	daysJSON, _ := json.Marshal(req.AvailableDays)

	doctor.AvailableDays = string(daysJSON)
	doctor.StartTime = start
	doctor.EndTime = end
	doctor.SlotMinutes = req.SlotMinutes

	if err := h.db.Save(doctor).Error; err != nil {
		httperr.Internal(c, "failed_to_update_availability", "Could not update availability.")
		return
	}

	httpresp.OK(c, gin.H{"status": "ok"})
}

// ======================================================
// HELPERS
// ======================================================

func (h *DoctorHandler) doctorForUser(c *gin.Context, userID uint) (*models.Doctor, bool) {
	var doctor models.Doctor
	if err := h.db.Where("user_id = ?", userID).First(&doctor).Error; err != nil {
		httperr.Forbidden(c, "doctor_profile_not_found", "Doctor profile not found.")
		return nil, false
	}
	return &doctor, true
}

func isWeekdayName(s string) bool {
	switch s {
	case "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday":
		return true
	}
	return false
}

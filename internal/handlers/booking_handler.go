package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/CityCareHQ/hospital-scheduler/internal/cache"
	"github.com/CityCareHQ/hospital-scheduler/internal/httperr"
	"github.com/CityCareHQ/hospital-scheduler/internal/httpresp"
	"github.com/CityCareHQ/hospital-scheduler/internal/middleware"
	"github.com/CityCareHQ/hospital-scheduler/internal/models"
	ucBooking "github.com/CityCareHQ/hospital-scheduler/internal/usecase/booking"
)

// slotsCacheTTL bounds staleness of the open-slot listing between the
// explicit invalidations done by every protocol write.
const slotsCacheTTL = 30 * time.Second

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	db      *gorm.DB
	cache   *cache.Cache
	listUC  *ucBooking.ListOpenSlots
	lockUC  *ucBooking.LockSlot
	confUC  *ucBooking.ConfirmBooking
	cancUC  *ucBooking.CancelBooking
	sweepUC *ucBooking.SweepLocks
}

func NewBookingHandler(
	db *gorm.DB,
	cc *cache.Cache,
	listUC *ucBooking.ListOpenSlots,
	lockUC *ucBooking.LockSlot,
	confUC *ucBooking.ConfirmBooking,
	cancUC *ucBooking.CancelBooking,
	sweepUC *ucBooking.SweepLocks,
) *BookingHandler {
	return &BookingHandler{
		db:      db,
		cache:   cc,
		listUC:  listUC,
		lockUC:  lockUC,
		confUC:  confUC,
		cancUC:  cancUC,
		sweepUC: sweepUC,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type LockSlotRequest struct {
	DoctorID uint   `json:"doctor_id" binding:"required"`
	Date     string `json:"date" binding:"required"`
	Time     string `json:"time" binding:"required"`
}

type ConfirmBookingRequest struct {
	DoctorID   uint   `json:"doctor_id" binding:"required"`
	Date       string `json:"date" binding:"required"`
	Time       string `json:"time" binding:"required"`
	PaymentRef string `json:"payment_ref" binding:"required"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// ======================================================
// SLOTS
// ======================================================

func (h *BookingHandler) Slots(c *gin.Context) {
	doctorID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_doctor_id", "Invalid doctor id.")
		return
	}

	dateStr := c.Query("date")
	if _, err := parseDate(dateStr); err != nil {
		httperr.BadRequest(c, "invalid_date", "Date must be YYYY-MM-DD.")
		return
	}

	key := cache.SlotsKey(uint(doctorID), dateStr)

	var cached ucBooking.SlotsResult
	if h.cache.Get(c.Request.Context(), key, &cached) {
		httpresp.OK(c, cached)
		return
	}

	result, err := h.listUC.Execute(c.Request.Context(), uint(doctorID), dateStr)
	if err != nil {
		if httperr.IsBusiness(err, "doctor_not_found") {
			httperr.NotFound(c, "doctor_not_found", "Doctor not found.")
			return
		}
		httperr.Internal(c, "failed_to_list_slots", "Could not list slots.")
		return
	}

	h.cache.Set(c.Request.Context(), key, result, slotsCacheTTL)
	httpresp.OK(c, result)
}

// ======================================================
// LOCK
// ======================================================

func (h *BookingHandler) Lock(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req LockSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Missing required fields.")
		return
	}

	slotTime, err := normalizeClock(req.Time)
	if err != nil {
		httperr.BadRequest(c, "invalid_time", "Time must be HH:MM or HH:MM:SS.")
		return
	}

	result, err := h.lockUC.Execute(c.Request.Context(), ucBooking.LockSlotInput{
		DoctorID: req.DoctorID,
		Date:     req.Date,
		Time:     slotTime,
		UserID:   userID,
	})
	if err != nil {
		h.writeBookingError(c, err)
		return
	}

	h.cache.Delete(c.Request.Context(), cache.SlotsKey(req.DoctorID, req.Date))
	httpresp.OK(c, result)
}

// ======================================================
// CONFIRM
// ======================================================

func (h *BookingHandler) Confirm(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req ConfirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Missing required fields.")
		return
	}

	slotTime, err := normalizeClock(req.Time)
	if err != nil {
		httperr.BadRequest(c, "invalid_time", "Time must be HH:MM or HH:MM:SS.")
		return
	}

	ap, err := h.confUC.Execute(c.Request.Context(), ucBooking.ConfirmBookingInput{
		DoctorID:   req.DoctorID,
		Date:       req.Date,
		Time:       slotTime,
		UserID:     userID,
		PaymentRef: req.PaymentRef,
	})
	if err != nil {
		h.writeBookingError(c, err)
		return
	}

	h.cache.Delete(c.Request.Context(), cache.SlotsKey(req.DoctorID, req.Date))

	httpresp.Created(c, gin.H{
		"appointment_id": ap.ID,
		"status":         ap.Status,
	})
}

// ======================================================
// CANCEL
// ======================================================

func (h *BookingHandler) Cancel(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	role := c.MustGet(middleware.ContextUserRole).(string)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_appointment_id", "Invalid appointment id.")
		return
	}

	var req CancelBookingRequest
	_ = c.ShouldBindJSON(&req)

	ap, err := h.cancUC.Execute(c.Request.Context(), ucBooking.CancelBookingInput{
		AppointmentID: uint(id),
		UserID:        userID,
		Role:          role,
		Reason:        req.Reason,
	})
	if err != nil {
		h.writeBookingError(c, err)
		return
	}

	h.cache.Delete(c.Request.Context(), cache.SlotsKey(ap.DoctorID, ap.SlotDate))

	httpresp.OK(c, gin.H{
		"status":        ap.Status,
		"refund_status": ap.RefundStatus,
		"refund_ref":    ap.RefundRef,
	})
}

// ======================================================
// MY APPOINTMENTS (patient)
// ======================================================

func (h *BookingHandler) MyAppointments(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var patient models.Patient
	if err := h.db.Where("user_id = ?", userID).First(&patient).Error; err != nil {
		httperr.Forbidden(c, "patient_profile_not_found", "Patient profile not found.")
		return
	}

	var aps []models.Appointment
	h.db.
		Preload("Doctor").
		Preload("Doctor.User").
		Where("patient_id = ?", patient.ID).
		Order("slot_date DESC, slot_time DESC").
		Find(&aps)

	out := make([]AppointmentListItem, 0, len(aps))
	for _, ap := range aps {
		out = append(out, appointmentListItem(&ap))
	}

	httpresp.List(c, out)
}

// ======================================================
// SWEEP (admin / periodic)
// ======================================================

func (h *BookingHandler) Sweep(c *gin.Context) {
	cleared, err := h.sweepUC.Execute(c.Request.Context())
	if err != nil {
		httperr.Internal(c, "sweep_failed", "Could not clear expired locks.")
		return
	}

	httpresp.OK(c, gin.H{"cleared_count": cleared})
}

// ======================================================
// ERROR MAPPING
// ======================================================

func (h *BookingHandler) writeBookingError(c *gin.Context, err error) {
	switch {
	case httperr.IsBusiness(err, "slot_unavailable"):
		httperr.Conflict(c, "slot_unavailable", "Slot is no longer available.")
	case httperr.IsBusiness(err, "lock_expired"):
		httperr.Conflict(c, "lock_expired", "Slot lock expired or was never held; lock again.")
	case httperr.IsBusiness(err, "slot_not_offered"):
		httperr.BadRequest(c, "slot_not_offered", "That time is not on the doctor's schedule.")
	case httperr.IsBusiness(err, "patient_profile_not_found"):
		httperr.Forbidden(c, "patient_profile_not_found", "Only patients can book appointments.")
	case httperr.IsBusiness(err, "doctor_not_found"):
		httperr.NotFound(c, "doctor_not_found", "Doctor not found.")
	case httperr.IsBusiness(err, "appointment_not_found"):
		httperr.NotFound(c, "appointment_not_found", "Appointment not found.")
	case httperr.IsBusiness(err, "invalid_state"):
		httperr.BadRequest(c, "invalid_state", "Appointment cannot be cancelled.")
	case httperr.IsBusiness(err, "invalid_date"):
		httperr.BadRequest(c, "invalid_date", "Date must be YYYY-MM-DD.")
	case httperr.IsBusiness(err, "missing_payment_ref"):
		httperr.BadRequest(c, "missing_payment_ref", "Payment reference is required.")
	case httperr.IsBusiness(err, "forbidden"):
		httperr.Forbidden(c, "forbidden", "Not allowed.")
	default:
		httperr.Internal(c, "booking_failed", "Booking operation failed.")
	}
}

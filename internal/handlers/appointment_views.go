package handlers

import (
	"time"

	"github.com/CityCareHQ/hospital-scheduler/internal/models"
)

// AppointmentListItem is the flattened row returned by appointment listings.
type AppointmentListItem struct {
	ID             uint      `json:"id"`
	SlotDate       string    `json:"slot_date"`
	SlotTime       string    `json:"slot_time"`
	Status         string    `json:"status"`
	Fee            float64   `json:"consultation_fee"`
	PaymentStatus  string    `json:"payment_status"`
	DoctorName     string    `json:"doctor_name,omitempty"`
	Specialization string    `json:"specialization,omitempty"`
	PatientName    string    `json:"patient_name,omitempty"`
	PatientPhone   string    `json:"patient_phone,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func appointmentListItem(ap *models.Appointment) AppointmentListItem {
	item := AppointmentListItem{
		ID:            ap.ID,
		SlotDate:      ap.SlotDate,
		SlotTime:      ap.SlotTime,
		Status:        ap.Status,
		Fee:           ap.ConsultationFee,
		PaymentStatus: ap.PaymentStatus,
		CreatedAt:     ap.CreatedAt,
	}

	if ap.Doctor.ID != 0 {
		item.DoctorName = ap.Doctor.User.Name
		item.Specialization = ap.Doctor.Specialization
	}
	if ap.Patient.ID != 0 {
		item.PatientName = ap.Patient.User.Name
		item.PatientPhone = ap.Patient.User.Phone
	}

	return item
}

package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	PatientID uint    `json:"patient_id"`
	Patient   Patient `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"patient"`

	DoctorID uint   `json:"doctor_id"`
	Doctor   Doctor `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"doctor"`

	SlotDate string `gorm:"size:10;not null" json:"slot_date"`
	SlotTime string `gorm:"size:8;not null" json:"slot_time"`

	Status string `gorm:"size:20;default:'confirmed'" json:"status"`

	ConsultationFee float64 `json:"consultation_fee"`
	PaymentStatus   string  `gorm:"size:20;default:'unpaid'" json:"payment_status"`
	PaymentRef      string  `gorm:"size:100" json:"payment_ref"`

	CancelledBy        string     `gorm:"size:20" json:"cancelled_by"`
	CancellationReason string     `gorm:"size:255" json:"cancellation_reason"`
	RefundStatus       string     `gorm:"size:20" json:"refund_status"`
	RefundRef          string     `gorm:"size:100" json:"refund_ref"`
	CancelledAt        *time.Time `json:"cancelled_at"`
	CompletedAt        *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

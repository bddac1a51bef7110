package models

import "time"

type Prescription struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AppointmentID uint        `gorm:"uniqueIndex;not null" json:"appointment_id"`
	Appointment   Appointment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"appointment"`

	PatientID uint `json:"patient_id"`
	DoctorID  uint `json:"doctor_id"`

	Medicines          string `gorm:"type:text" json:"medicines"`
	Dosage             string `gorm:"size:255" json:"dosage"`
	Duration           string `gorm:"size:100" json:"duration"`
	Remarks            string `gorm:"size:255" json:"remarks"`
	ProblemDescription string `gorm:"type:text" json:"problem_description"`
	Diagnosis          string `gorm:"type:text" json:"diagnosis"`
	Advice             string `gorm:"type:text" json:"advice"`

	CreatedAt time.Time `json:"created_at"`
}

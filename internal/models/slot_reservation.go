package models

import "time"

// SlotReservation is the coordination record behind the booking protocol.
// One row per (doctor, date, time); a row is either a short-lived lock held
// by a patient while payment completes, or a permanent booking once
// confirmed. Cancellation clears the row's lock and booking fields, it never
// deletes the row's appointment.
type SlotReservation struct {
	DoctorID uint   `gorm:"primaryKey;autoIncrement:false" json:"doctor_id"`
	SlotDate string `gorm:"primaryKey;size:10" json:"slot_date"` // YYYY-MM-DD
	SlotTime string `gorm:"primaryKey;size:8" json:"slot_time"`  // HH:MM:SS

	PatientID   *uint      `json:"patient_id"`
	LockedUntil *time.Time `json:"locked_until"`
	Booked      bool       `gorm:"default:false" json:"booked"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Unavailable reports whether the slot is closed to other patients at the
// given instant: booked, or under a lock that has not yet expired.
func (r *SlotReservation) Unavailable(now time.Time) bool {
	if r.Booked {
		return true
	}
	return r.LockedUntil != nil && r.LockedUntil.After(now)
}

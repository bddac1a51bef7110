package models

import "time"

type Doctor struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID uint `gorm:"uniqueIndex" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`

	Specialization  string  `gorm:"size:100;not null" json:"specialization"`
	Qualification   string  `gorm:"size:100" json:"qualification"`
	ExperienceYears int     `json:"experience_years"`
	ConsultationFee float64 `json:"consultation_fee"`

	// Weekly availability. AvailableDays holds a JSON array of weekday
	// names ("Monday", ...); times are clock strings.
	AvailableDays string `gorm:"size:255;default:'[]'" json:"available_days"`
	StartTime     string `gorm:"size:8;default:'09:00:00'" json:"start_time"`
	EndTime       string `gorm:"size:8;default:'17:00:00'" json:"end_time"`
	SlotMinutes   int    `gorm:"default:30" json:"slot_minutes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

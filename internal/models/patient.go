package models

import "time"

type Patient struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID uint `gorm:"uniqueIndex" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`

	FullName        string `gorm:"size:100" json:"full_name"`
	Mobile          string `gorm:"size:20" json:"mobile"`
	AlternateMobile string `gorm:"size:20" json:"alternate_mobile"`
	Address         string `gorm:"size:255" json:"address"`
	DateOfBirth     string `gorm:"size:10" json:"date_of_birth"`
	Age             int    `json:"age"`
	Gender          string `gorm:"size:20" json:"gender"`
	BloodGroup      string `gorm:"size:10" json:"blood_group"`
	MaritalStatus   string `gorm:"size:20" json:"marital_status"`
	Occupation      string `gorm:"size:100" json:"occupation"`

	HeightCm float64 `json:"height_cm"`
	WeightKg float64 `json:"weight_kg"`

	Allergies        string `gorm:"size:255" json:"allergies"`
	ExistingDiseases string `gorm:"size:255" json:"existing_diseases"`

	EmergencyContactName   string `gorm:"size:100" json:"emergency_contact_name"`
	EmergencyContactNumber string `gorm:"size:20" json:"emergency_contact_number"`
	Relationship           string `gorm:"size:50" json:"relationship"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

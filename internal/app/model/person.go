package model

import "time"

// Person is the subject of stories and images. Only Origin is required.
type Person struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	Origin     string     `gorm:"type:varchar(30);not null;index" json:"origin"`
	Name       *string    `gorm:"type:varchar(50)" json:"name"`
	Profession *string    `gorm:"type:varchar(45)" json:"profession"`
	BirthDate  *time.Time `gorm:"type:date" json:"birth_date"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Person) TableName() string {
	return "persons"
}

// DisplayName returns the person's name or "" when unset.
func (p *Person) DisplayName() string {
	if p == nil || p.Name == nil {
		return ""
	}
	return *p.Name
}

package model

import "time"

type Image struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	PersonID    uint      `gorm:"not null;index" json:"person_id"`
	Filename    string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"filename"`
	Thumbnail   *string   `gorm:"type:varchar(255)" json:"thumbnail"`
	Description *string   `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Person *Person `gorm:"foreignKey:PersonID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (Image) TableName() string {
	return "images"
}

// StoredFiles lists every file the image owns in storage.
func (i *Image) StoredFiles() []string {
	files := []string{i.Filename}
	if i.Thumbnail != nil && *i.Thumbnail != "" {
		files = append(files, *i.Thumbnail)
	}
	return files
}

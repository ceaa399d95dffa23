package model

import (
	"time"
)

// Tag is a named category. Stories reference tags through story_tags and,
// optionally, through their principal tag.
type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Tag) TableName() string {
	return "tags"
}

// TagSummary is the compact form embedded in story payloads.
type TagSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func (t Tag) Summary() TagSummary {
	return TagSummary{ID: t.ID, Name: t.Name}
}

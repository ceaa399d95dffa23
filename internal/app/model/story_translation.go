package model

import (
	"strings"
	"time"
)

const MaxLanguageCodeLength = 5

// StoryTranslation holds the content of a story in one language.
// (story_id, language_code) is unique.
type StoryTranslation struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	StoryID      uint      `gorm:"not null;uniqueIndex:idx_story_translations_story_lang" json:"story_id"`
	LanguageCode string    `gorm:"type:varchar(5);not null;uniqueIndex:idx_story_translations_story_lang" json:"language_code"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (StoryTranslation) TableName() string {
	return "story_translations"
}

// NormalizeLanguageCode trims and lowercases code. Stored codes and lookups both go through it.
func NormalizeLanguageCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

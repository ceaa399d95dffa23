package model

import (
	"time"
)

// Story is narrative content about a Person. Its text lives only in Translations.
// Relationships point outward from Story; Person and Tag hold no back-references.
type Story struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	PersonID       uint      `gorm:"not null;index" json:"person_id"`
	AdminID        uint      `gorm:"not null;index" json:"admin_id"`
	PrincipalTagID *uint     `gorm:"index" json:"principal_tag_id"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Person       *Person            `gorm:"foreignKey:PersonID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Admin        *AdminUser         `gorm:"foreignKey:AdminID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	PrincipalTag *Tag               `gorm:"foreignKey:PrincipalTagID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	Translations []StoryTranslation `gorm:"foreignKey:StoryID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Tags         []Tag              `gorm:"many2many:story_tags;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (Story) TableName() string {
	return "stories"
}

// TranslatedContent returns the content for an exact language code match.
// There is no fallback language.
func (s *Story) TranslatedContent(languageCode string) (string, bool) {
	for _, t := range s.Translations {
		if t.LanguageCode == languageCode {
			return t.Content, true
		}
	}
	return "", false
}

// TagIDs returns the ids of the attached tags in load order.
func (s *Story) TagIDs() []uint {
	ids := make([]uint, 0, len(s.Tags))
	for _, t := range s.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

type TranslationSummary struct {
	LanguageCode string `json:"language_code"`
	Content      string `json:"content"`
}

// StoryResponse is the serialized form of a story for one language.
type StoryResponse struct {
	ID               uint                 `json:"id"`
	PersonID         uint                 `json:"person_id"`
	PersonName       *string              `json:"person_name"`
	AdminID          uint                 `json:"admin_id"`
	PrincipalTagID   *uint                `json:"principal_tag_id"`
	PrincipalTagName *string              `json:"principal_tag_name"`
	Language         string               `json:"language"`
	Content          *string              `json:"content"`
	Tags             []TagSummary         `json:"tags"`
	Translations     []TranslationSummary `json:"translations,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// ToResponse shapes a fully loaded story. withTranslations adds every translation,
// which admin views use.
func (s *Story) ToResponse(languageCode string, withTranslations bool) StoryResponse {
	resp := StoryResponse{
		ID:             s.ID,
		PersonID:       s.PersonID,
		AdminID:        s.AdminID,
		PrincipalTagID: s.PrincipalTagID,
		Language:       languageCode,
		Tags:           make([]TagSummary, 0, len(s.Tags)),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}

	if s.Person != nil {
		resp.PersonName = s.Person.Name
	}
	if s.PrincipalTag != nil {
		name := s.PrincipalTag.Name
		resp.PrincipalTagName = &name
	}
	if content, ok := s.TranslatedContent(languageCode); ok {
		resp.Content = &content
	}
	for _, t := range s.Tags {
		resp.Tags = append(resp.Tags, t.Summary())
	}
	if withTranslations {
		resp.Translations = make([]TranslationSummary, 0, len(s.Translations))
		for _, t := range s.Translations {
			resp.Translations = append(resp.Translations, TranslationSummary{
				LanguageCode: t.LanguageCode,
				Content:      t.Content,
			})
		}
	}
	return resp
}

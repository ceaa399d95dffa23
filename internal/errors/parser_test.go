package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		subject    string
		wantStatus int
		wantMsg    string
	}{
		{"nil", nil, "", http.StatusInternalServerError, MsgInternal},
		{"record not found", fmt.Errorf("wrap: %w", gorm.ErrRecordNotFound), "story", http.StatusNotFound, "Story not found"},
		{"translated duplicate", gorm.ErrDuplicatedKey, "tag", http.StatusConflict, "A tag with the same unique value already exists"},
		{"postgres duplicate", errors.New(`ERROR: duplicate key value violates unique constraint "idx_tags_name"`), "tag", http.StatusConflict, "A tag with the same unique value already exists"},
		{"sqlite duplicate", errors.New("UNIQUE constraint failed: tags.name"), "tag", http.StatusConflict, "A tag with the same unique value already exists"},
		{"restricted delete", errors.New(`update or delete on table "admin_users" violates foreign key constraint "fk_stories_admin" on table "stories" ... is still referenced`), "admin", http.StatusConflict, "The admin is still referenced by other records"},
		{"missing reference", errors.New("FOREIGN KEY constraint failed"), "story", http.StatusNotFound, "A referenced record does not exist"},
		{"unknown", errors.New("connection reset by peer"), "story", http.StatusInternalServerError, MsgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseError(tt.err, tt.subject)
			assert.Equal(t, tt.wantStatus, info.Status)
			assert.Equal(t, tt.wantMsg, info.Message)
		})
	}
}

func TestParseError_NoDriverTextLeak(t *testing.T) {
	info := ParseError(errors.New(`pq: password authentication failed for user "admin"`), "story")
	assert.NotContains(t, info.Message, "pq")
	assert.NotContains(t, info.Message, "admin")
}

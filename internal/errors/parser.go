package errors

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a storage error translated for clients.
type ErrorInfo struct {
	Status  int
	Message string
}

// ParseError maps storage errors to a status and a message that does not leak
// driver text. subject names the entity involved, e.g. "tag".
func ParseError(err error, subject string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Status: http.StatusInternalServerError, Message: MsgInternal}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Status: http.StatusNotFound, Message: notFoundMessage(subject)}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrorInfo{Status: http.StatusConflict, Message: duplicateMessage(subject)}
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return parseForeignKeyError(err.Error(), subject)
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "duplicate key") || strings.Contains(lower, "unique constraint"):
		return ErrorInfo{Status: http.StatusConflict, Message: duplicateMessage(subject)}
	case strings.Contains(lower, "foreign key constraint"):
		return parseForeignKeyError(lower, subject)
	case strings.Contains(lower, "not null constraint") || strings.Contains(lower, "violates not-null"):
		return ErrorInfo{Status: http.StatusBadRequest, Message: "A required field is missing"}
	}

	return ErrorInfo{Status: http.StatusInternalServerError, Message: MsgInternal}
}

func parseForeignKeyError(errStr, subject string) ErrorInfo {
	lower := strings.ToLower(errStr)
	if strings.Contains(lower, "still referenced") || strings.Contains(lower, "restrict") {
		return ErrorInfo{
			Status:  http.StatusConflict,
			Message: "The " + subjectOrDefault(subject) + " is still referenced by other records",
		}
	}
	return ErrorInfo{Status: http.StatusNotFound, Message: "A referenced record does not exist"}
}

func notFoundMessage(subject string) string {
	if subject == "" {
		return "Resource not found"
	}
	return strings.ToUpper(subject[:1]) + subject[1:] + " not found"
}

func duplicateMessage(subject string) string {
	return "A " + subjectOrDefault(subject) + " with the same unique value already exists"
}

func subjectOrDefault(subject string) string {
	if subject == "" {
		return "record"
	}
	return subject
}

// ParseAndRespond writes the translated error. The raw error stays in the server log.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, err error, subject string) {
	info := ParseError(err, subject)
	c.JSON(info.Status, ErrorResponse{Error: info.Message})
}

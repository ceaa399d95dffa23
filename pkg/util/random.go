package util

import (
	"github.com/google/uuid"
)

// RandomFilename builds a collision-free storage name that keeps only the extension
// of the client supplied file.
func RandomFilename(originalName string) string {
	name := uuid.NewString()
	if ext := FileExtension(originalName); ext != "" {
		name += "." + ext
	}
	return name
}

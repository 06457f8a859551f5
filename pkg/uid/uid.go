// Package uid generates the random identifiers used for channel
// connections and HTTP requests.
package uid

import "github.com/google/uuid"

// New returns a random (version 4) UUID string.
func New() string {
	return uuid.NewString()
}

// IsValid reports whether id is a UUID in canonical or braced form.
func IsValid(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

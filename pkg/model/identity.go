package model

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// CanonicalVideoID renders a video identity in its canonical form: 32
// lowercase hex characters, no hyphens. Cache entries are addressed by this
// form and signed URLs embed it.
func CanonicalVideoID(id uuid.UUID) string {
	return hex.EncodeToString(id[:])
}

// ParseVideoID parses a video identity from its canonical or hyphenated form.
func ParseVideoID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid video id %q: %w", s, err)
	}
	return id, nil
}

// Package roomcode generates and validates the 6-character codes players
// share to find a room. Codes are drawn from a 32-symbol alphabet with the
// easily confused characters (I, O, 0, 1) removed.
package roomcode

import (
	"errors"
	"math/rand"
	"strings"
	"time"
)

const (
	// Length of every room code.
	Length = 6

	letters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

var ErrInvalidFormat = errors.New("room code must be 6 letters or digits")

// Generate returns a random 6-character room code. Collisions are tolerated:
// a duplicate code simply routes to the already-registered room.
func Generate() string {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	b := make([]byte, Length)
	for i := range b {
		b[i] = letters[r.Intn(len(letters))]
	}
	return string(b)
}

// Validate normalizes raw client input (trim, uppercase) and returns the
// canonical code, or ErrInvalidFormat if the length or charset is wrong.
func Validate(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != Length {
		return "", ErrInvalidFormat
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return "", ErrInvalidFormat
		}
	}
	return code, nil
}

package id

import (
	"encoding/binary"

	"github.com/google/uuid"
)

const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// UUID generates a UUID v4 (random).
func UUID() string {
	return uuid.NewString()
}

// Base62 encodes n using the digits 0-9, A-Z, a-z. Zero encodes as "0".
func Base62(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [11]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = base62Alphabet[n%62]
		n /= 62
	}
	return string(buf[i:])
}

// Record returns a random record identifier: the base62 form of a
// non-negative 63-bit integer seeded from a fresh UUID.
func Record() string {
	u := uuid.New()
	n := binary.BigEndian.Uint64(u[:8]) ^ binary.BigEndian.Uint64(u[8:])
	return Base62(n &^ (1 << 63))
}

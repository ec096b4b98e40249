package common

import "crypto/rand"

// GenerateRandByteArray returns n random bytes. It panics when the system
// random source fails, which crypto/rand never does on supported platforms.
func GenerateRandByteArray(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray zeroes b in place. Used on passwords and unlocked key
// material once they are no longer needed.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

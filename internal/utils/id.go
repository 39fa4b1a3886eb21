package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// JobID returns a random hex identifier for queued fit jobs.
func JobID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}

package util

import (
	"bytes"
	"crypto/sha256"
)

// ComputeNewHash returns the hash of data when it differs from previousHash,
// and nil when data is nil or unchanged.
func ComputeNewHash(previousHash []byte, data []byte) []byte {
	if data == nil {
		return nil
	}

	hash := sha256.Sum256(data)
	if bytes.Equal(previousHash, hash[:]) {
		return nil
	}
	return hash[:]
}

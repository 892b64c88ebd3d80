package serialization

import (
	"crypto/sha256"
)

// checksum returns the SHA-256 of the data section.
func checksum(data []byte) [ChecksumSize]byte {
	return sha256.Sum256(data)
}

// verifyChecksum returns ErrChecksumMismatch if data does not hash to stored.
func verifyChecksum(data []byte, stored [ChecksumSize]byte) error {
	if checksum(data) != stored {
		return ErrChecksumMismatch
	}
	return nil
}

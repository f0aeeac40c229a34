package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for digests. The version suffix allows migrating the
// record layout without colliding with old digests.
const (
	DomainRecord = "ocarina/record/v1"
)

// Digest computes SHA256(domain + 0x00 + data), hex encoded.
// The null separator prevents domain/data boundary ambiguity.
func Digest(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DigestValue canonically marshals v and digests it under domain.
func DigestValue(domain string, v Value) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	return Digest(domain, data), nil
}

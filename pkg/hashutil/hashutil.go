package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/rohmanhakim/webqa/pkg/urlutil"
	"lukechampine.com/blake3"
)

type HashAlgo string

const (
	HashAlgoSHA256 HashAlgo = "sha256"
	HashAlgoBLAKE3 HashAlgo = "blake3"
)

// HashBytes returns the hex digest of data using algo.
func HashBytes(data []byte, algo HashAlgo) (string, error) {
	switch algo {
	case HashAlgoSHA256:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:]), nil
	case HashAlgoBLAKE3:
		sum := blake3.Sum256(data)
		return hex.EncodeToString(sum[:]), nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm: %s", algo)
	}
}

// URLHash is the BLAKE3 digest of the canonical key of raw, so every
// spelling of the same page hashes identically.
func URLHash(raw string) string {
	sum := blake3.Sum256([]byte(urlutil.CanonicalKey(raw)))
	return hex.EncodeToString(sum[:])
}

package crypto

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// DecodeSecret accepts hex, standard or unpadded base64, or raw bytes and
// returns the first interpretation that yields exactly size bytes.
func DecodeSecret(raw string, size int) ([]byte, error) {
	if len(raw) == size*2 {
		if decoded, err := hex.DecodeString(raw); err == nil {
			return decoded, nil
		}
	}
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil && len(decoded) == size {
		return decoded, nil
	}
	if decoded, err := base64.RawStdEncoding.DecodeString(raw); err == nil && len(decoded) == size {
		return decoded, nil
	}
	if len(raw) == size {
		return []byte(raw), nil
	}
	return nil, fmt.Errorf("secret must decode to %d bytes", size)
}

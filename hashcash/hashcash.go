// Package hashcash mints the proof-of-work tokens idmsa demands on the
// signin/complete request.
//
// Apple's variant differs from the hashcash convention in two ways: there is
// no random nonce between the extension and counter fields, and the counter
// is the decimal string of the attempt number rather than base64. The token
//
//	1:11:20230223170600:4d74fb15eb23f465f1f6fcbf534e5877::6373
//	^  ^       ^                    ^                      ^
//	|  |       |                    |                      +- counter
//	|  |       |                    +- resource (challenge header)
//	|  |       +- date yyyyMMddHHmmss
//	|  +- bits (required leading zero bits of SHA-1)
//	+- version
//
// is valid when SHA-1 of the whole string starts with `bits` zero bits. The
// resource comes from the X-Apple-HC-Challenge response header and the
// difficulty from X-Apple-HC-Bits.
package hashcash

import (
	"crypto/sha1"
	"fmt"
	"math/bits"
	"time"
)

// Minter searches for a token satisfying the server-issued difficulty.
// Mint reports false when no token was found within the search bound.
type Minter interface {
	Mint(resource string, difficultyBits uint) (string, bool)
}

const (
	version     = 1
	dateLayout  = "20060102150405"
	maxAttempts = 1 << 28
)

// AppleMinter implements Minter for Apple's hashcash variant.
type AppleMinter struct {
	// Now stamps the date field; nil means time.Now.
	Now func() time.Time
}

func New() *AppleMinter {
	return &AppleMinter{}
}

func (m *AppleMinter) Mint(resource string, difficultyBits uint) (string, bool) {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	date := now().Format(dateLayout)

	for counter := 0; counter < maxAttempts; counter++ {
		token := fmt.Sprintf("%d:%d:%s:%s::%d", version, difficultyBits, date, resource, counter)
		if LeadingZeroBits(sha1.Sum([]byte(token))) >= difficultyBits {
			return token, true
		}
	}
	return "", false
}

// LeadingZeroBits counts the zero bits a SHA-1 digest starts with.
func LeadingZeroBits(digest [sha1.Size]byte) uint {
	var n uint
	for _, b := range digest {
		if b == 0 {
			n += 8
			continue
		}
		n += uint(bits.LeadingZeros8(b))
		break
	}
	return n
}

package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const DefaultOTPLength = 6

// GenerateOTP returns a numeric code of exactly `length` digits. The value is
// drawn uniformly from [0, 10^length) and zero-padded, so shorter numbers keep
// their leading zeros and no digit position carries structure.
func GenerateOTP(length int) (string, error) {
	if length <= 0 {
		length = DefaultOTPLength
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("otp generate: %w", err)
	}
	return fmt.Sprintf("%0*d", length, n), nil
}

// IsOTPExpired reports whether a pending code is unusable: no expiry recorded,
// or the expiry lies strictly in the past.
func IsOTPExpired(expires *time.Time) bool {
	if expires == nil {
		return true
	}
	return expires.Before(time.Now())
}

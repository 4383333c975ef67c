package utils

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"time"
)

const (
	OTPLength         = 6
	OTPExpiry         = 15 * time.Minute
	OTPResendCooldown = 1 * time.Minute
)

func GenerateOTP() (string, error) {
	const digits = "0123456789"
	otp := make([]byte, OTPLength)

	for i := range otp {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		otp[i] = digits[num.Int64()]
	}

	return string(otp), nil
}

func GetOTPExpiryTime() time.Time {
	return time.Now().Add(OTPExpiry)
}

// GenerateResetToken creates an opaque token handed out after the reset OTP
// is verified, required by the final password-reset call.
func GenerateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

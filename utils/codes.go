package utils

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Confirmation and reset codes are time-based one-time codes derived from a
// per-user secret, so no plain code is ever stored.
var codeOpts = totp.ValidateOpts{
	Period:    600,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

func GenerateCodeSecret(email string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "PocketPlan",
		AccountName: email,
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}

func GenerateCode(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at, codeOpts)
}

func VerifyCode(secret, code string, at time.Time) bool {
	valid, err := totp.ValidateCustom(code, secret, at, codeOpts)
	return err == nil && valid
}

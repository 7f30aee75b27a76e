// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"regexp"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// # TOTP Parameters

const (
	totpPeriod   = 30
	totpSkew     = 1
	totpDigits   = otp.DigitsSix
	totpQRSize   = 256
	totpQRPrefix = "data:image/png;base64,"
)

var totpCodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// Enrollment is the material handed to an authenticator app.
type Enrollment struct {
	// Secret is the base32 shared secret to persist on the account.
	Secret string
	// URI is the otpauth:// provisioning URI.
	URI string
	// QRCode is a PNG rendering of URI encoded as a data URL.
	QRCode string
}

// TOTP generates and validates RFC 6238 codes (SHA-1, 6 digits, 30 s period).
type TOTP struct {
	issuer string
	now    func() time.Time
}

// NewTOTP creates a TOTP helper that labels enrollments with issuer.
func NewTOTP(issuer string) *TOTP {
	return &TOTP{issuer: issuer, now: time.Now}
}

// Enroll creates a fresh secret for accountName and renders its provisioning QR code.
func (t *TOTP) Enroll(accountName string) (*Enrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      t.issuer,
		AccountName: accountName,
		Period:      totpPeriod,
		Digits:      totpDigits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("sec: failed to generate totp secret: %w", err)
	}

	img, err := key.Image(totpQRSize, totpQRSize)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to render totp qr: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("sec: failed to encode totp qr: %w", err)
	}

	return &Enrollment{
		Secret: key.Secret(),
		URI:    key.URL(),
		QRCode: totpQRPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// Validate reports whether code matches secret at the current time,
// tolerating one period of clock drift in either direction.
func (t *TOTP) Validate(code, secret string) bool {
	if secret == "" || !totpCodePattern.MatchString(code) {
		return false
	}

	ok, err := totp.ValidateCustom(code, secret, t.now().UTC(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    totpDigits,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

package cryptox

import (
	"crypto/subtle"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dmitrijs2005/writer/internal/common"
)

const MinPasswordLength = 6

// ValidateNewPassword checks a password chosen in the setup dialog: at least
// MinPasswordLength characters and equal to its confirmation.
func ValidateNewPassword(password, confirm []byte) error {
	if err := validation.Validate(string(password),
		validation.Required.Error("password is required"),
		validation.RuneLength(MinPasswordLength, 0).Error("password must be at least 6 characters"),
	); err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(password, confirm) != 1 {
		return common.ErrPasswordMismatch
	}
	return nil
}

// Package validators holds the custom struct tags used on request bodies.
package validators

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var couponCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,32}$`)

// ValidateCouponCode checks the shape of a coupon code as a shopper typed it.
// Surrounding spaces are ignored and a blank code means no coupon.
func ValidateCouponCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}
	if !couponCodePattern.MatchString(code) {
		return errors.New("coupon code should be 3 to 32 letters, digits, dashes or underscores")
	}
	return nil
}

// Register installs the "couponcode" tag on v.
func Register(v *validator.Validate) error {
	return v.RegisterValidation("couponcode", func(fl validator.FieldLevel) bool {
		return ValidateCouponCode(fl.Field().String()) == nil
	})
}

package common

import (
	"strings"
	"time"

	"khoomi-api-io/storefront/internal/validators"

	"github.com/go-playground/validator/v10"
)

// Collection names
const (
	ProductCollection = "Product"
	CouponCollection  = "Coupon"
)

var Validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	if err := validators.Register(v); err != nil {
		panic(err)
	}
	return v
}

const (
	REQ_TIMEOUT_SECS          = 50 * time.Second
	CART_ITEM_EXPIRATION_TIME = 7 * 24 * time.Hour

	// Defaults, overridable through config.
	PENDING_CART_TTL     = 24 * time.Hour
	REVALIDATION_TIMEOUT = 5 * time.Second

	GUEST_SESSION_HEADER = "X-Guest-Session"

	CART_KEY_PREFIX    = "storefront:cart:"
	PENDING_KEY_PREFIX = "storefront:pending:"

	DEFAULT_THUMBNAIL = "https://res.cloudinary.com/kh-oo-mi/image/upload/v1705607175/khoomi/mypvl86lihcqvkcqmvbg.jpg"
)

// IsEmptyString checks if a string is empty
func IsEmptyString(s string) bool {
	return strings.TrimSpace(s) == ""
}

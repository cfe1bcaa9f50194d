package validators

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCouponCode(t *testing.T) {
	for _, ok := range []string{"", "   ", "SPRING20", " spring20 ", "black-friday_24"} {
		assert.NoError(t, ValidateCouponCode(ok), ok)
	}
	for _, bad := range []string{"AB", "spring 20", "50%OFF", "THIS-CODE-IS-FAR-TOO-LONG-TO-BE-REAL"} {
		assert.Error(t, ValidateCouponCode(bad), bad)
	}
}

func TestRegister(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	type body struct {
		Code string `validate:"couponcode"`
	}
	assert.NoError(t, v.Struct(body{Code: "SPRING20"}))
	assert.Error(t, v.Struct(body{Code: "no way"}))
}

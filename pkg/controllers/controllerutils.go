package controllers

import (
	"context"
	"net/http"

	"khoomi-api-io/storefront/internal/auth"
	"khoomi-api-io/storefront/internal/common"
	"khoomi-api-io/storefront/pkg/models"
	"khoomi-api-io/storefront/pkg/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithTimeout creates a context with the standard request timeout
func WithTimeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), common.REQ_TIMEOUT_SECS)
}

// ValidateAndGetUserID validates user ID and handles errors automatically
func ValidateAndGetUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, err := auth.ValidateUserID(c)
	if err != nil {
		util.HandleError(c, http.StatusUnauthorized, err)
		return primitive.NilObjectID, false
	}
	return userID, true
}

// BindJSONAndValidate binds JSON and handles validation errors. An empty body
// leaves obj at its zero value.
func BindJSONAndValidate(c *gin.Context, obj any) bool {
	if c.Request.ContentLength == 0 {
		return validate(c, obj)
	}
	if err := c.ShouldBindJSON(obj); err != nil {
		util.HandleError(c, http.StatusBadRequest, models.NewInvalidData(err.Error()))
		return false
	}
	return validate(c, obj)
}

func validate(c *gin.Context, obj any) bool {
	if err := common.Validate.Struct(obj); err != nil {
		util.HandleError(c, http.StatusBadRequest, models.NewInvalidData(err.Error()))
		return false
	}
	return true
}

// lineKeyFromQuery reads a cart line key from productId, color and size.
func lineKeyFromQuery(c *gin.Context) (models.LineKey, bool) {
	id, err := primitive.ObjectIDFromHex(c.Query("productId"))
	if err != nil {
		util.HandleError(c, http.StatusBadRequest, models.NewInvalidData("productId must be a valid id"))
		return models.LineKey{}, false
	}
	return models.LineKey{ProductID: id, Color: c.Query("color"), Size: c.Query("size")}, true
}

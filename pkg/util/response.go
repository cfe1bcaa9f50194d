package util

import (
	"net/http"

	"khoomi-api-io/storefront/pkg/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
}

func HandleSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Status:  statusCode,
		Message: message,
		Data:    data,
		Meta:    nil,
	})
}

func HandleSuccessMeta(c *gin.Context, statusCode int, message string, data, meta interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Status:  statusCode,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

type ErrorResponse struct {
	Error  string                 `json:"error,omitempty"`
	Kind   models.ErrorKind       `json:"kind,omitempty"`
	Reason models.CouponRejection `json:"reason,omitempty"`
	Keys   []models.LineKey       `json:"keys,omitempty"`
	Status int                    `json:"status"`
}

func HandleError(c *gin.Context, statusCode int, err error) {
	resp := ErrorResponse{Error: err.Error(), Status: statusCode}
	if e, ok := models.AsError(err); ok {
		resp.Kind = e.Kind
		resp.Reason = e.Reason
		resp.Keys = e.Keys
		LogWarning("request rejected", zap.String("kind", string(e.Kind)), zap.String("path", c.FullPath()), zap.String("error", e.Message))
	} else {
		LogError("request failed", err, zap.String("path", c.FullPath()))
	}
	c.JSON(statusCode, resp)
}

var statusByKind = map[models.ErrorKind]int{
	models.KindIncompleteSelection:   http.StatusBadRequest,
	models.KindInvalidData:           http.StatusBadRequest,
	models.KindInvalidQuantity:       http.StatusUnprocessableEntity,
	models.KindMissingProductData:    http.StatusUnprocessableEntity,
	models.KindMalformedPendingEntry: http.StatusUnprocessableEntity,
	models.KindInsufficientStock:     http.StatusConflict,
	models.KindChangedSinceAdded:     http.StatusConflict,
	models.KindCouponRejected:        http.StatusPreconditionFailed,
	models.KindNotFound:              http.StatusNotFound,
	models.KindLoginRequired:         http.StatusUnauthorized,
	models.KindCannotConfirm:         http.StatusServiceUnavailable,
}

// StatusFor maps err to the HTTP status its kind is reported with. Errors
// without a kind are internal failures.
func StatusFor(err error) int {
	if status, ok := statusByKind[models.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HandleKindError renders err with the status its kind maps to.
func HandleKindError(c *gin.Context, err error) {
	HandleError(c, StatusFor(err), err)
}

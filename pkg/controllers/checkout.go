package controllers

import (
	"context"
	"net/http"

	"khoomi-api-io/storefront/pkg/models"
	"khoomi-api-io/storefront/pkg/services"
	"khoomi-api-io/storefront/pkg/util"

	"github.com/gin-gonic/gin"
)

type CheckoutController struct {
	checkoutService     services.CheckoutService
	notificationService services.NotificationService
}

func InitCheckoutController(checkoutService services.CheckoutService, notificationService services.NotificationService) *CheckoutController {
	return &CheckoutController{
		checkoutService:     checkoutService,
		notificationService: notificationService,
	}
}

// Quote handles POST /:userid/checkout/quote. A coupon that does not apply
// still returns the quote, with the rejection in the message and body.
func (cc *CheckoutController) Quote() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		userID, ok := ValidateAndGetUserID(c)
		if !ok {
			return
		}

		var req models.CheckoutRequest
		if !BindJSONAndValidate(c, &req) {
			return
		}

		quote, err := cc.checkoutService.Quote(ctx, userID, req)
		if err != nil {
			if quote != nil && models.IsKind(err, models.KindCouponRejected) {
				util.HandleSuccess(c, http.StatusOK, err.Error(), quote)
				return
			}
			util.HandleKindError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "success", quote)
	}
}

// Complete handles POST /:userid/checkout/complete
func (cc *CheckoutController) Complete() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		userID, ok := ValidateAndGetUserID(c)
		if !ok {
			return
		}

		var req models.CheckoutRequest
		if !BindJSONAndValidate(c, &req) {
			return
		}

		summary, err := cc.checkoutService.Complete(ctx, userID, req)
		if err != nil {
			util.HandleKindError(c, err)
			return
		}

		go func() {
			if err := cc.notificationService.CheckoutCompleted(context.Background(), userID); err != nil {
				util.LogError("Failed to publish checkout completion", err)
			}
		}()

		util.HandleSuccess(c, http.StatusCreated, "Order placed", summary)
	}
}

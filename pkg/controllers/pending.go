package controllers

import (
	"context"
	"net/http"

	"khoomi-api-io/storefront/internal/auth"
	"khoomi-api-io/storefront/pkg/models"
	"khoomi-api-io/storefront/pkg/services"
	"khoomi-api-io/storefront/pkg/util"

	"github.com/gin-gonic/gin"
)

// PendingCartController handles add-to-cart before sign in and the replay
// that follows it.
type PendingCartController struct {
	pendingService      services.PendingCartService
	cartService         services.CartService
	notificationService services.NotificationService
}

func InitPendingCartController(pendingService services.PendingCartService, cartService services.CartService, notificationService services.NotificationService) *PendingCartController {
	return &PendingCartController{
		pendingService:      pendingService,
		cartService:         cartService,
		notificationService: notificationService,
	}
}

// AddToCart handles POST /guest/carts. A signed-in caller gets a normal add.
// Anyone else has the request parked under their guest session and receives
// 401 with loginRequired set.
func (pc *PendingCartController) AddToCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		var req models.CartItemRequest
		if !BindJSONAndValidate(c, &req) {
			return
		}

		if claim, ok := auth.ClaimFrom(c); ok {
			userID, err := claim.GetUserObjectId()
			if err != nil {
				util.HandleError(c, http.StatusUnauthorized, err)
				return
			}
			m, err := pc.cartService.AddItem(ctx, userID, req)
			if err != nil {
				util.HandleKindError(c, err)
				return
			}
			util.HandleSuccess(c, http.StatusOK, addMessage(m), m)
			return
		}

		session := auth.EnsureGuestSession(c)
		resp, err := pc.pendingService.Stash(ctx, session, req)
		if err != nil {
			util.HandleKindError(c, err)
			return
		}

		go func() {
			if err := pc.notificationService.PendingCartStashed(context.Background(), session); err != nil {
				util.LogError("Failed to publish pending cart stash", err)
			}
		}()

		util.HandleSuccess(c, http.StatusUnauthorized, models.NewLoginRequired().Message, resp)
	}
}

// Replay handles POST /:userid/carts/pending/replay. The guest session comes
// from the X-Guest-Session header or the guest cookie.
func (pc *PendingCartController) Replay() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		userID, ok := ValidateAndGetUserID(c)
		if !ok {
			return
		}

		session := auth.GuestSession(c)
		if session == "" {
			util.HandleSuccess(c, http.StatusOK, "Nothing to restore", nil)
			return
		}

		replay, err := pc.pendingService.Replay(ctx, session, userID)
		if err != nil {
			if kind := models.KindOf(err); kind != "" {
				go func() {
					if err := pc.notificationService.PendingCartDiscarded(context.Background(), session, kind); err != nil {
						util.LogError("Failed to publish pending cart discard", err)
					}
				}()
			}
			util.HandleKindError(c, err)
			return
		}
		if replay == nil {
			util.HandleSuccess(c, http.StatusOK, "Nothing to restore", nil)
			return
		}

		go func() {
			if err := pc.notificationService.PendingCartReplayed(context.Background(), session, userID); err != nil {
				util.LogError("Failed to publish pending cart replay", err)
			}
		}()

		message := "Item added to cart"
		if replay.Clamped {
			message = "Quantity adjusted to available stock"
		}
		util.HandleSuccess(c, http.StatusOK, message, replay)
	}
}

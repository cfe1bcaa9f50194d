package controllers

import (
	"context"
	"net/http"

	"khoomi-api-io/storefront/pkg/models"
	"khoomi-api-io/storefront/pkg/services"
	"khoomi-api-io/storefront/pkg/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartController serves the signed-in cart. Saved changes are announced by the
// cart service itself.
type CartController struct {
	cartService services.CartService
}

func InitCartController(cartService services.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// GetCart handles GET /:userid/carts
func (cc *CartController) GetCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		userID, ok := ValidateAndGetUserID(c)
		if !ok {
			return
		}

		cart, err := cc.cartService.CachedCart(ctx, userID)
		if err != nil {
			util.HandleKindError(c, err)
			return
		}

		util.HandleSuccessMeta(c, http.StatusOK, "success", cart, gin.H{
			"itemCount":     cart.ItemCount(),
			"subtotal":      cart.Subtotal(),
			"selectedCount": len(cart.Selected()),
		})
	}
}

// AddItem handles POST /:userid/carts
func (cc *CartController) AddItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		userID, ok := ValidateAndGetUserID(c)
		if !ok {
			return
		}

		var req models.CartItemRequest
		if !BindJSONAndValidate(c, &req) {
			return
		}

		m, err := cc.cartService.AddItem(ctx, userID, req)
		if err != nil {
			util.HandleKindError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, addMessage(m), m)
	}
}

// SetQuantity handles PUT /:userid/carts/quantity
func (cc *CartController) SetQuantity() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CartQuantityRequest
		cc.mutate(c, &req, "Quantity updated", func(ctx context.Context, userID primitive.ObjectID) (*services.CartMutation, error) {
			return cc.cartService.SetQuantity(ctx, userID, req)
		})
	}
}

// ToggleSelected handles PUT /:userid/carts/selected
func (cc *CartController) ToggleSelected() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CartKeyRequest
		cc.mutate(c, &req, "Selection updated", func(ctx context.Context, userID primitive.ObjectID) (*services.CartMutation, error) {
			return cc.cartService.ToggleSelected(ctx, userID, req.Key)
		})
	}
}

// SelectAll handles PUT /:userid/carts/selected/all
func (cc *CartController) SelectAll() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CartSelectAllRequest
		cc.mutate(c, &req, "Selection updated", func(ctx context.Context, userID primitive.ObjectID) (*services.CartMutation, error) {
			return cc.cartService.SelectAll(ctx, userID, req.Selected)
		})
	}
}

// RemoveItem handles DELETE /:userid/carts/item?productId=&color=&size=
func (cc *CartController) RemoveItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := lineKeyFromQuery(c)
		if !ok {
			return
		}
		cc.mutate(c, nil, "Item removed from cart", func(ctx context.Context, userID primitive.ObjectID) (*services.CartMutation, error) {
			return cc.cartService.RemoveItem(ctx, userID, key)
		})
	}
}

// RemoveSelected handles DELETE /:userid/carts/selected
func (cc *CartController) RemoveSelected() gin.HandlerFunc {
	return func(c *gin.Context) {
		cc.mutate(c, nil, "Selected items removed", cc.cartService.RemoveSelected)
	}
}

// Clear handles DELETE /:userid/carts/clear
func (cc *CartController) Clear() gin.HandlerFunc {
	return func(c *gin.Context) {
		cc.mutate(c, nil, "Cart cleared", cc.cartService.Clear)
	}
}

// ValidateCart handles GET /:userid/carts/validate
func (cc *CartController) ValidateCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		userID, ok := ValidateAndGetUserID(c)
		if !ok {
			return
		}

		result, err := cc.cartService.ValidateCart(ctx, userID)
		if err != nil {
			util.HandleKindError(c, err)
			return
		}

		message := "Cart is up to date"
		if result.HasInvalidItems {
			message = "Some items changed since you added them"
		}
		util.HandleSuccess(c, http.StatusOK, message, result)
	}
}

// mutate runs one cart change for the signed-in user. body is bound first
// when non-nil.
func (cc *CartController) mutate(c *gin.Context, body any, message string, apply func(context.Context, primitive.ObjectID) (*services.CartMutation, error)) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	userID, ok := ValidateAndGetUserID(c)
	if !ok {
		return
	}
	if body != nil && !BindJSONAndValidate(c, body) {
		return
	}

	m, err := apply(ctx, userID)
	if err != nil {
		util.HandleKindError(c, err)
		return
	}

	util.HandleSuccess(c, http.StatusOK, message, m)
}

func addMessage(m *services.CartMutation) string {
	if m.Outcome.Clamped {
		return "Quantity adjusted to available stock"
	}
	return "Item added to cart"
}

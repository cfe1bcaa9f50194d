package services

import (
	"context"
	"time"

	"khoomi-api-io/storefront/internal/common"
	"khoomi-api-io/storefront/pkg/discount"
	"khoomi-api-io/storefront/pkg/models"
	"khoomi-api-io/storefront/pkg/util"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CheckoutServiceImpl implements the CheckoutService interface
type CheckoutServiceImpl struct {
	carts   CartService
	catalog CatalogStore
	coupons CouponStore
	orders  OrderPublisher
	timeout time.Duration
	now     func() time.Time
}

func NewCheckoutService(carts CartService, catalog CatalogStore, coupons CouponStore, orders OrderPublisher, timeout time.Duration) *CheckoutServiceImpl {
	if timeout <= 0 {
		timeout = common.REVALIDATION_TIMEOUT
	}
	return &CheckoutServiceImpl{
		carts:   carts,
		catalog: catalog,
		coupons: coupons,
		orders:  orders,
		timeout: timeout,
		now:     time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *CheckoutServiceImpl) WithClock(now func() time.Time) *CheckoutServiceImpl {
	s.now = now
	return s
}

// Quote revalidates the selected lines and the coupon against the live
// records, then prices them. A coupon that does not apply still returns the
// undiscounted quote together with the rejection.
func (s *CheckoutServiceImpl) Quote(ctx context.Context, userID primitive.ObjectID, req models.CheckoutRequest) (*discount.Quote, error) {
	if req.ShippingFee < 0 {
		return nil, models.NewInvalidData("shipping fee cannot be negative")
	}
	if err := common.Validate.Struct(&req); err != nil {
		return nil, models.NewInvalidData("coupon code is not valid")
	}

	current, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	selected := current.Selected()
	if len(selected) == 0 {
		return nil, models.NewInvalidData("select at least one item to check out")
	}

	coupon, err := s.revalidate(ctx, selected, req.CouponCode)
	if err != nil {
		return nil, err
	}

	if coupon == nil {
		q := discount.Evaluate(selected, req.ShippingFee)
		return &q, nil
	}
	q, err := discount.Apply(selected, *coupon, s.now(), req.ShippingFee)
	return &q, err
}

// revalidate runs the live checks under the revalidation deadline. Running
// out of time is reported as cannot-confirm rather than trusting stale data.
func (s *CheckoutServiceImpl) revalidate(ctx context.Context, selected []models.CartLineItem, code string) (*models.Coupon, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := validateLines(ctx, s.catalog, selected)
	if err != nil {
		return nil, s.unconfirmed(ctx, err)
	}
	if result.HasInvalidItems {
		return nil, models.NewChangedSinceAdded(result.InvalidKeys())
	}

	if common.IsEmptyString(code) {
		return nil, nil
	}
	coupon, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		return nil, s.unconfirmed(ctx, err)
	}
	return coupon, nil
}

func (s *CheckoutServiceImpl) unconfirmed(ctx context.Context, err error) error {
	if models.KindOf(err) != "" {
		return err
	}
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		util.LogWarning("checkout revalidation timed out", zap.Duration("timeout", s.timeout))
		return models.NewCannotConfirm(err)
	}
	return err
}

// Complete re-quotes, hands the order off, and only then removes the
// checked-out lines. A coupon rejection stops the order.
func (s *CheckoutServiceImpl) Complete(ctx context.Context, userID primitive.ObjectID, req models.CheckoutRequest) (*models.CheckoutSummary, error) {
	q, err := s.Quote(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	summary := q.Summary()
	summary.UserID = userID
	summary.CreatedAt = s.now()

	if err := s.orders.PublishOrder(ctx, summary); err != nil {
		return nil, errors.Wrap(err, "hand off order")
	}

	if _, err := s.carts.RemoveSelected(ctx, userID); err != nil {
		// The order is placed; a stale cart is recoverable.
		util.LogError("failed to remove checked out lines", err, zap.String("user", userID.Hex()))
	}
	return &summary, nil
}

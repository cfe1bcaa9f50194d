package models

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind groups failures that need a different message for the shopper.
type ErrorKind string

const (
	KindIncompleteSelection   ErrorKind = "incomplete_selection"
	KindInvalidQuantity       ErrorKind = "invalid_quantity"
	KindInsufficientStock     ErrorKind = "insufficient_stock"
	KindCouponRejected        ErrorKind = "coupon_rejected"
	KindMalformedPendingEntry ErrorKind = "malformed_pending_entry"
	KindMissingProductData    ErrorKind = "missing_product_data"
	KindChangedSinceAdded     ErrorKind = "changed_since_added"
	KindCannotConfirm         ErrorKind = "cannot_confirm"
	KindNotFound              ErrorKind = "not_found"
	KindLoginRequired         ErrorKind = "login_required"
	KindInvalidData           ErrorKind = "invalid_data"
)

type CouponRejection string

const (
	CouponInactive          CouponRejection = "inactive"
	CouponNotYetActive      CouponRejection = "not_yet_active"
	CouponExpired           CouponRejection = "expired"
	CouponUsageLimitReached CouponRejection = "usage_limit_reached"
	CouponMinOrderNotMet    CouponRejection = "min_order_not_met"
	CouponNoEligibleItems   CouponRejection = "no_eligible_items"
)

// Error is a failure the shopper can act on.
type Error struct {
	Kind    ErrorKind       `json:"kind"`
	Reason  CouponRejection `json:"reason,omitempty"`
	Message string          `json:"message"`
	Keys    []LineKey       `json:"keys,omitempty"`

	cause error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf returns the kind of err, or "" for infrastructure failures.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries kind k anywhere in its chain.
func IsKind(err error, k ErrorKind) bool {
	return KindOf(err) == k
}

// AsError extracts the typed error, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func NewIncompleteSelection(msg string) *Error {
	return &Error{Kind: KindIncompleteSelection, Message: msg}
}

func NewInvalidQuantity(qty int) *Error {
	return &Error{Kind: KindInvalidQuantity, Message: fmt.Sprintf("quantity must be at least 1, got %d", qty)}
}

func NewInsufficientStock(available, requested int) *Error {
	if available <= 0 {
		return &Error{Kind: KindInsufficientStock, Message: "this item is out of stock"}
	}
	return &Error{
		Kind:    KindInsufficientStock,
		Message: fmt.Sprintf("only %d left in stock, requested %d", available, requested),
	}
}

func NewMissingProductData(msg string) *Error {
	return &Error{Kind: KindMissingProductData, Message: msg}
}

func NewMalformedPendingEntry(msg string) *Error {
	return &Error{Kind: KindMalformedPendingEntry, Message: msg}
}

func NewNotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func NewInvalidData(msg string) *Error {
	return &Error{Kind: KindInvalidData, Message: msg}
}

func NewLoginRequired() *Error {
	return &Error{Kind: KindLoginRequired, Message: "please sign in to add items to your cart"}
}

func NewChangedSinceAdded(keys []LineKey) *Error {
	return &Error{
		Kind:    KindChangedSinceAdded,
		Message: fmt.Sprintf("%d item(s) changed since you added them, please review your cart", len(keys)),
		Keys:    keys,
	}
}

func NewCannotConfirm(cause error) *Error {
	return &Error{
		Kind:    KindCannotConfirm,
		Message: "we could not confirm stock and prices right now, please retry",
		cause:   cause,
	}
}

var couponMessages = map[CouponRejection]string{
	CouponInactive:          "this coupon is no longer active",
	CouponNotYetActive:      "this coupon is not valid yet",
	CouponExpired:           "this coupon has expired",
	CouponUsageLimitReached: "this coupon has reached its usage limit",
	CouponMinOrderNotMet:    "your order does not meet the coupon minimum",
	CouponNoEligibleItems:   "this coupon does not apply to the selected items",
}

func NewCouponRejected(reason CouponRejection) *Error {
	return &Error{Kind: KindCouponRejected, Reason: reason, Message: couponMessages[reason]}
}

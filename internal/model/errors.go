package model

import "errors"

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrCouponInvalid is returned when a coupon is out of scope, exhausted or expired.
var ErrCouponInvalid = errors.New("coupon invalid")

// ErrBelowMinimumWithdrawal is returned for withdrawal requests under the minimum.
var ErrBelowMinimumWithdrawal = errors.New("withdrawal below minimum")

// ErrInsufficientBalance is returned when a debit would make a balance negative.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrDuplicatePayment is returned when a payment reference was already settled.
// Callers treat it as already-handled, not as a failure.
var ErrDuplicatePayment = errors.New("payment already settled")

// ErrLimitReached is returned when a plan limit blocks the operation.
var ErrLimitReached = errors.New("plan limit reached")

// ErrPlanUnavailable is returned when the seller's plan cannot be resolved.
// Settlement aborts without mutating anything.
var ErrPlanUnavailable = errors.New("plan unavailable")

// ErrInvalidTransition is returned for status changes the lifecycle does not allow.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrForbidden is returned when the caller does not own the target entity.
var ErrForbidden = errors.New("forbidden")

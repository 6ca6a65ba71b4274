package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
	ErrLockHeld     = errors.New("lock already held")
	ErrLockLost     = errors.New("lock lost")

	// Exchange boundary failures.
	ErrOrder              = errors.New("failed to make the order")
	ErrOcoOrder           = errors.New("failed to make the OCO order")
	ErrOcoPriceRelation   = errors.New("the relationship of the prices for the orders is not correct")
	ErrGetOrder           = errors.New("failed to get the order")
	ErrRetryLimitExceeded = errors.New("retry limit exceeded")

	// Trade client failures.
	ErrUnexpectedOrderStatus = errors.New("unexpected order status")
	ErrMissingFillPrice      = errors.New("price is undefined")
	ErrMalformedOcoResponse  = errors.New("malformed OCO order response")
	ErrPollTimeout           = errors.New("order did not reach a terminal status")

	// ErrUnknownStatus stops the bot loop: the strategy returned a terminal
	// status the loop has no transition for.
	ErrUnknownStatus = errors.New("unknown order status")
)

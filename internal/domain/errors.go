package domain

import (
	"errors"
	"fmt"
)

// Auth errors surface to the caller as HTTP-level rejections and are never
// retried.
var (
	// ErrInvalidSignature means the install callback's HMAC did not match.
	ErrInvalidSignature = errors.New("install callback signature mismatch")
	// ErrExchangeFailed means the authorization code could not be traded
	// for an access token.
	ErrExchangeFailed = errors.New("access token exchange failed")
)

// Webhook errors decide the response status of a webhook delivery.
var (
	// ErrUnauthorized covers both a bad body digest and an unknown shop.
	// No side effects are performed once it is raised.
	ErrUnauthorized = errors.New("webhook request is unauthorized")
	// ErrBadPayload means the body did not parse as an order event. It maps
	// to 400 so Shopify does not retry a delivery that can never succeed.
	ErrBadPayload = errors.New("webhook payload is malformed")
)

// ErrSessionNotFound is returned by session stores for unknown shops.
var ErrSessionNotFound = errors.New("shop session not found")

// BillingError wraps failures while creating or attaching charges. Webhook
// processing treats it as non-fatal: losing a $1 usage charge is lower
// severity than losing inventory accuracy.
type BillingError struct {
	Op  string
	Err error
}

func (e *BillingError) Error() string {
	return fmt.Sprintf("billing %s: %v", e.Op, e.Err)
}

func (e *BillingError) Unwrap() error { return e.Err }

package domain

import "github.com/shopspring/decimal"

// ChargeStatus mirrors the lifecycle Shopify reports for a recurring
// application charge.
type ChargeStatus string

const (
	ChargeStatusPending  ChargeStatus = "pending"
	ChargeStatusAccepted ChargeStatus = "accepted"
	ChargeStatusActive   ChargeStatus = "active"
	ChargeStatusDeclined ChargeStatus = "declined"
)

// RecurringCharge is the subscription-style billing object a merchant must
// accept and the app must activate before usage charges can be attached.
type RecurringCharge struct {
	ID              uint64          `json:"id"`
	Name            string          `json:"name"`
	Status          ChargeStatus    `json:"status"`
	Price           decimal.Decimal `json:"price"`
	CappedAmount    decimal.Decimal `json:"capped_amount"`
	Terms           string          `json:"terms"`
	ReturnURL       string          `json:"return_url"`
	ConfirmationURL string          `json:"confirmation_url"`
	Test            bool            `json:"test"`
}

// UsageCharge is a one-off billing increment attached to an active recurring
// charge. Write-only from the app's perspective.
type UsageCharge struct {
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// internal/models/plan.go
package models

import "time"

// PricingPlan is static configuration data, not a runtime entity.
type PricingPlan struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Price          int64    `json:"price"` // cents
	Features       []string `json:"features"`
	IsSubscription bool     `json:"isSubscription,omitempty"`
}

// PaymentStatus is the lifecycle of a purchase.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Purchase links a plan selection, the Stripe session, and the report that
// payment unlocks.
type Purchase struct {
	ID              string        `json:"id"`
	PlanID          string        `json:"planId"`
	SessionID       string        `json:"sessionId"`
	StripeSessionID string        `json:"stripeSessionId,omitempty"`
	IdempotencyKey  string        `json:"idempotencyKey"`
	Email           string        `json:"email,omitempty"`
	AmountCents     int64         `json:"amountCents"`
	Status          PaymentStatus `json:"status"`
	ReportID        string        `json:"reportId,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

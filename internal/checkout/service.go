// internal/checkout/service.go
package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"

	"canibuildit/internal/clients/stripe"
	"canibuildit/internal/common/logger"
	"canibuildit/internal/handoff"
	"canibuildit/internal/models"
)

// SessionCreator is the Stripe surface the checkout flow needs.
type SessionCreator interface {
	CreateCheckoutSession(ctx context.Context, params stripe.SessionParams) (*stripe.Session, error)
}

// ReportProvisioner is the report side of a purchase: a pending report at
// checkout, generation once payment lands.
type ReportProvisioner interface {
	EnsurePending(ctx context.Context, sessionID, idempotencyKey, email string) (*models.PremiumReport, error)
	Generate(ctx context.Context, idempotencyKey string) (*models.PremiumReport, error)
}

// Notifier delivers the report-ready notification. Failures must not block
// the webhook response.
type Notifier interface {
	ReportReady(ctx context.Context, email, reportID string)
}

type Config struct {
	Currency   string
	SuccessURL string
}

// Service runs the checkout flow: free plans complete immediately, paid
// plans go through a Stripe hosted session and return via webhook.
type Service struct {
	config  *Config
	store   *Store
	stripe  SessionCreator
	reports ReportProvisioner
	notify  Notifier
	handoff *handoff.Store
	logger  logger.Logger
}

func NewService(config *Config, store *Store, stripeClient SessionCreator, reports ReportProvisioner, notify Notifier, handoffStore *handoff.Store, log logger.Logger) *Service {
	return &Service{
		config:  config,
		store:   store,
		stripe:  stripeClient,
		reports: reports,
		notify:  notify,
		handoff: handoffStore,
		logger: log.With(map[string]interface{}{
			"component": "checkout",
		}),
	}
}

// Outcome is the checkout response: either an immediate success (free plan)
// or a redirect to the hosted payment page.
type Outcome struct {
	Status      string `json:"status"` // "completed" or "redirect"
	PurchaseID  string `json:"purchaseId"`
	ReportID    string `json:"reportId,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// Start begins a checkout for a plan. A zero-price plan completes without
// touching Stripe. For paid plans the hosted redirect URL must exist before
// any response is returned.
func (s *Service) Start(ctx context.Context, sessionID, planID, email string) (*Outcome, error) {
	plan, err := PlanByID(planID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	purchase := &models.Purchase{
		ID:          uuid.NewString(),
		PlanID:      plan.ID,
		SessionID:   sessionID,
		Email:       email,
		AmountCents: plan.Price,
		Status:      models.PaymentStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	purchase.IdempotencyKey = purchase.ID

	report, err := s.reports.EnsurePending(ctx, sessionID, purchase.IdempotencyKey, email)
	if err != nil {
		return nil, err
	}
	purchase.ReportID = report.ID

	// Selected plan travels to the confirmation page via the hand-off store.
	if err := s.handoff.Put(ctx, sessionID, handoff.KindSelectedPlan, map[string]interface{}{
		"planId": plan.ID,
		"price":  plan.Price,
	}); err != nil {
		return nil, err
	}

	if plan.Price == 0 {
		purchase.Status = models.PaymentStatusCompleted
		if err := s.store.Create(ctx, purchase); err != nil {
			return nil, err
		}
		if _, err := s.reports.Generate(ctx, purchase.IdempotencyKey); err != nil {
			return nil, err
		}

		s.logger.Info("free plan checkout completed", map[string]interface{}{
			"purchaseId": purchase.ID,
			"planId":     plan.ID,
		})
		return &Outcome{
			Status:     "completed",
			PurchaseID: purchase.ID,
			ReportID:   report.ID,
		}, nil
	}

	session, err := s.stripe.CreateCheckoutSession(ctx, stripe.SessionParams{
		AmountCents:       plan.Price,
		Currency:          s.config.Currency,
		ProductName:       plan.Name,
		CustomerEmail:     email,
		ClientReferenceID: purchase.ID,
	})
	if err != nil {
		return nil, err
	}

	purchase.StripeSessionID = session.ID
	if err := s.store.Create(ctx, purchase); err != nil {
		return nil, err
	}

	s.logger.Info("checkout session created", map[string]interface{}{
		"purchaseId":      purchase.ID,
		"planId":          plan.ID,
		"stripeSessionId": session.ID,
	})
	return &Outcome{
		Status:      "redirect",
		PurchaseID:  purchase.ID,
		ReportID:    report.ID,
		RedirectURL: session.URL,
	}, nil
}

// CompletePayment handles a verified checkout.session.completed event.
// Idempotent on the event id. The ledger row is written only after the
// purchase is completed and the report generated, so a delivery that fails
// partway stays unrecorded and Stripe's redelivery gets a full retry.
func (s *Service) CompletePayment(ctx context.Context, event *stripe.Event) error {
	seen, err := s.store.SeenEvent(ctx, event.ID)
	if err != nil {
		return err
	}
	if seen {
		s.logger.Info("webhook event already processed", map[string]interface{}{
			"eventId": event.ID,
		})
		return nil
	}

	purchase, err := s.store.GetByStripeSession(ctx, event.Data.Object.ID)
	if err != nil {
		return err
	}

	if purchase.Status != models.PaymentStatusCompleted {
		purchase.Status = models.PaymentStatusCompleted
		if err := s.store.Update(ctx, purchase); err != nil {
			return err
		}
	}

	report, err := s.reports.Generate(ctx, purchase.IdempotencyKey)
	if err != nil {
		return err
	}

	// Confirmation page picks the report up from the hand-off store.
	if err := s.handoff.Put(ctx, purchase.SessionID, handoff.KindGeneratedReport, map[string]interface{}{
		"reportId": report.ID,
		"status":   string(report.Status),
	}); err != nil {
		s.logger.Warn("failed to store generated-report hand-off", map[string]interface{}{
			"reportId": report.ID,
			"error":    err.Error(),
		})
	}

	if purchase.Email != "" {
		s.notify.ReportReady(ctx, purchase.Email, report.ID)
	}

	if _, err := s.store.RecordEvent(ctx, event.ID); err != nil {
		// Processing already succeeded; a redelivery re-runs it and
		// converges because generation is idempotent on the key.
		s.logger.Warn("failed to record webhook event", map[string]interface{}{
			"eventId": event.ID,
			"error":   err.Error(),
		})
	}

	s.logger.Info("payment completed and report generated", map[string]interface{}{
		"purchaseId": purchase.ID,
		"reportId":   report.ID,
	})
	return nil
}

// GetPurchase serves the purchase status for the confirmation page.
func (s *Service) GetPurchase(ctx context.Context, id string) (*models.Purchase, error) {
	return s.store.GetByID(ctx, id)
}

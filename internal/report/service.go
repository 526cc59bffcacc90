// internal/report/service.go
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"canibuildit/internal/clients/genai"
	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/logger"
	"canibuildit/internal/common/metrics"
	"canibuildit/internal/handoff"
	"canibuildit/internal/models"
)

const synthesisPrompt = "You are writing the assessment section of a New Zealand " +
	"property feasibility report. Using the planning data below, explain what the " +
	"owner can likely build, which consents are required, and the main risks. " +
	"Write plain prose, no markdown headings."

// Completer synthesizes the report assessment text.
type Completer interface {
	Complete(ctx context.Context, messages []genai.Message) (string, error)
}

// Service owns the premium report lifecycle: pending on checkout, generated
// on payment, served gated on payment state.
type Service struct {
	store             *Store
	analyzer          *Analyzer
	completer         Completer
	handoff           *handoff.Store
	generationTimeout time.Duration
	logger            logger.Logger
}

func NewService(store *Store, analyzer *Analyzer, completer Completer, handoffStore *handoff.Store, generationTimeout time.Duration, log logger.Logger) *Service {
	return &Service{
		store:             store,
		analyzer:          analyzer,
		completer:         completer,
		handoff:           handoffStore,
		generationTimeout: generationTimeout,
		logger: log.With(map[string]interface{}{
			"component": "report",
		}),
	}
}

// EnsurePending returns the report tied to the checkout session, creating a
// pending one from the session's intake data when none exists. Idempotent on
// the key, so a reloaded checkout page cannot create a second report.
func (s *Service) EnsurePending(ctx context.Context, sessionID, idempotencyKey, email string) (*models.PremiumReport, error) {
	existing, err := s.store.GetByIdempotencyKey(ctx, idempotencyKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	var intake models.PropertyIntakeData
	if err := s.handoff.Get(ctx, sessionID, handoff.KindPropertyIntakeData, &intake); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	report := &models.PremiumReport{
		ID:             uuid.NewString(),
		IdempotencyKey: idempotencyKey,
		Email:          email,
		Intake:         intake,
		Analysis:       models.PropertyReportData{Address: intake.Address},
		Status:         models.ReportStatusPendingPayment,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Create(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info("pending report created", map[string]interface{}{
		"reportId":  report.ID,
		"sessionId": sessionID,
	})
	return report, nil
}

// Generate marks the report paid and produces its content. Idempotent: a
// webhook retry against an already generated report is a no-op, so payment
// success and report generation stay consistent even if the browser is
// closed mid-flow.
func (s *Service) Generate(ctx context.Context, idempotencyKey string) (*models.PremiumReport, error) {
	report, err := s.store.GetByIdempotencyKey(ctx, idempotencyKey)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, apperrors.NewReportNotFoundError(idempotencyKey)
	}
	if report.Status == models.ReportStatusGenerated {
		return report, nil
	}

	report.Status = models.ReportStatusPaid
	if err := s.store.Update(ctx, report); err != nil {
		return nil, err
	}

	genCtx, cancel := context.WithTimeout(ctx, s.generationTimeout)
	defer cancel()

	if err := s.generateContent(genCtx, report); err != nil {
		metrics.ReportsGenerated.WithLabelValues("error").Inc()
		report.Status = models.ReportStatusFailed
		if saveErr := s.store.Update(ctx, report); saveErr != nil {
			s.logger.Error("failed to persist failed report status", map[string]interface{}{
				"reportId": report.ID,
				"error":    saveErr.Error(),
			})
		}
		return nil, err
	}

	report.Status = models.ReportStatusGenerated
	if err := s.store.Update(ctx, report); err != nil {
		return nil, err
	}

	metrics.ReportsGenerated.WithLabelValues("success").Inc()
	s.logger.Info("premium report generated", map[string]interface{}{
		"reportId": report.ID,
		"address":  report.Analysis.Address,
	})
	return report, nil
}

// Retry re-runs generation for a failed report. Reports in any other state
// are returned as-is.
func (s *Service) Retry(ctx context.Context, reportID string) (*models.PremiumReport, error) {
	report, err := s.store.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != models.ReportStatusFailed {
		return report, nil
	}
	return s.Generate(ctx, report.IdempotencyKey)
}

// Get serves a report by id, gated on payment state.
func (s *Service) Get(ctx context.Context, reportID string) (*models.PremiumReport, error) {
	report, err := s.store.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status == models.ReportStatusPendingPayment {
		return nil, apperrors.NewPaymentRequiredError(reportID)
	}
	return report, nil
}

func (s *Service) generateContent(ctx context.Context, report *models.PremiumReport) error {
	analysis, err := s.analyzer.Analyze(ctx, report.Intake.Address)
	if err != nil {
		return err
	}
	report.Analysis = *analysis

	summary, err := s.completer.Complete(ctx, []genai.Message{
		{Role: genai.RoleSystem, Content: synthesisPrompt},
		{Role: genai.RoleUser, Content: describeForSynthesis(report)},
	})
	if err != nil {
		return err
	}
	report.Summary = strings.TrimSpace(summary)

	md, err := RenderMarkdown(report)
	if err != nil {
		return err
	}
	report.Markdown = md
	return nil
}

// describeForSynthesis flattens the analysis into the LLM prompt.
func describeForSynthesis(report *models.PremiumReport) string {
	a := report.Analysis
	return fmt.Sprintf(
		"Address: %s\nProject type: %s\nProject: %s\nZoning: %s (%s)\n"+
			"Overlays: %s\nHazards: %s\nFlood prone: %t\nCoastal erosion: %t\n"+
			"Heritage listed: %t\nWater connected: %t\nWastewater nearby: %t",
		a.Address, report.Intake.ProjectType, report.Intake.ProjectDescription,
		a.Zoning, a.ZoneDescription,
		strings.Join(a.Overlays, ", "), strings.Join(a.Hazards, ", "),
		a.FloodProne, a.CoastalErosion, a.HeritageListed,
		a.WaterConnected, a.WastewaterNearby,
	)
}

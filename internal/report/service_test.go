// internal/report/service_test.go
package report

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canibuildit/internal/clients/genai"
	"canibuildit/internal/clients/geomaps"
	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/logger"
	"canibuildit/internal/geocode"
	"canibuildit/internal/handoff"
	"canibuildit/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeGeocoder struct {
	response *geocode.Response
	err      error
}

func (f *fakeGeocoder) Resolve(_ context.Context, _ string) (*geocode.Response, error) {
	return f.response, f.err
}

type fakeCouncil struct {
	summary *geomaps.PlanningSummary
	err     error
}

func (f *fakeCouncil) Lookup(_ context.Context, _ models.Coordinates) (*geomaps.PlanningSummary, error) {
	return f.summary, f.err
}

type fakeCompleter struct {
	reply string
	err   error
}

func (f *fakeCompleter) Complete(_ context.Context, _ []genai.Message) (string, error) {
	return f.reply, f.err
}

func happyAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	return NewAnalyzer(
		&fakeGeocoder{response: &geocode.Response{
			Results: []geocode.Result{{
				Address:     "12 Ponsonby Road, Ponsonby, Auckland",
				Coordinates: models.Coordinates{Lat: -36.85, Lng: 174.74},
			}},
			Source: geocode.SourceLINZ,
		}},
		&fakeCouncil{summary: &geomaps.PlanningSummary{
			Zoning:          "Residential - Mixed Housing Urban",
			ZoneDescription: "Two storey suburban housing",
			Overlays:        []string{"heritage"},
			Hazards:         []string{"flooding"},
			FloodProne:      true,
			HeritageListed:  true,
			WaterConnected:  true,
		}},
		logger.NewTestLogger(t),
	)
}

func newTestReportService(t *testing.T, analyzer *Analyzer, completer Completer) (*Service, sqlmock.Sqlmock, *handoff.Store) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	log := logger.NewTestLogger(t)
	handoffStore := handoff.NewStore(client, time.Hour, log)

	svc := NewService(NewStore(db), analyzer, completer, handoffStore, 30*time.Second, log)
	return svc, mock, handoffStore
}

// ==========================
// Core Functionality Tests
// ==========================

func TestAnalyzer_Analyze(t *testing.T) {
	analyzer := happyAnalyzer(t)

	data, err := analyzer.Analyze(context.Background(), "12 Ponsonby Road")
	require.NoError(t, err)

	assert.Equal(t, "12 Ponsonby Road, Ponsonby, Auckland", data.Address)
	assert.Equal(t, "Residential - Mixed Housing Urban", data.Zoning)
	assert.True(t, data.FloodProne)
	assert.True(t, data.HeritageListed)
	assert.True(t, data.WaterConnected)
	assert.Equal(t, "Zone 1", data.ClimateZone) // Auckland latitude
	assert.Equal(t, "High", data.WindZone)
}

func TestAnalyzer_CouncilFailurePropagates(t *testing.T) {
	analyzer := NewAnalyzer(
		&fakeGeocoder{response: &geocode.Response{
			Results: []geocode.Result{{Address: "1 Queen St"}},
			Source:  geocode.SourceLINZ,
		}},
		&fakeCouncil{err: apperrors.NewZoningTimeoutError()},
		logger.NewTestLogger(t),
	)

	_, err := analyzer.Analyze(context.Background(), "1 Queen St")
	require.Error(t, err)

	stdErr, ok := err.(*apperrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeZoningTimeout, stdErr.Code)
}

func TestService_EnsurePendingIsIdempotent(t *testing.T) {
	svc, mock, _ := newTestReportService(t, happyAnalyzer(t), &fakeCompleter{reply: "ok"})

	existing := testReport()
	mock.ExpectQuery("FROM premium_reports WHERE idempotency_key =").
		WithArgs("cs_123").
		WillReturnRows(reportRows(t, existing))

	got, err := svc.EnsurePending(context.Background(), "sess-1", "cs_123", "jo@example.com")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_EnsurePendingCreatesFromIntake(t *testing.T) {
	svc, mock, handoffStore := newTestReportService(t, happyAnalyzer(t), &fakeCompleter{reply: "ok"})
	ctx := context.Background()

	require.NoError(t, handoffStore.Put(ctx, "sess-1", handoff.KindPropertyIntakeData, models.PropertyIntakeData{
		Name:               "Jo",
		Address:            "12 Ponsonby Road",
		ProjectType:        models.ProjectTypeResidential,
		ProjectDescription: "minor dwelling",
	}))

	mock.ExpectQuery("FROM premium_reports WHERE idempotency_key =").
		WithArgs("cs_new").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO premium_reports").
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := svc.EnsurePending(ctx, "sess-1", "cs_new", "jo@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPendingPayment, got.Status)
	assert.Equal(t, "12 Ponsonby Road", got.Intake.Address)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_EnsurePendingWithoutIntakeFails(t *testing.T) {
	svc, mock, _ := newTestReportService(t, happyAnalyzer(t), &fakeCompleter{reply: "ok"})

	mock.ExpectQuery("FROM premium_reports WHERE idempotency_key =").
		WithArgs("cs_new").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.EnsurePending(context.Background(), "sess-empty", "cs_new", "")
	require.Error(t, err)

	stdErr, ok := err.(*apperrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeHandoffNotFound, stdErr.Code)
}

func TestService_GenerateHappyPath(t *testing.T) {
	svc, mock, _ := newTestReportService(t, happyAnalyzer(t), &fakeCompleter{reply: "You can likely build a minor dwelling."})

	pending := testReport()
	mock.ExpectQuery("FROM premium_reports WHERE idempotency_key =").
		WithArgs("cs_123").
		WillReturnRows(reportRows(t, pending))
	// paid transition, then generated content
	mock.ExpectExec("UPDATE premium_reports").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE premium_reports").WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := svc.Generate(context.Background(), "cs_123")
	require.NoError(t, err)

	assert.Equal(t, models.ReportStatusGenerated, got.Status)
	assert.Equal(t, "You can likely build a minor dwelling.", got.Summary)
	assert.Contains(t, got.Markdown, "# Property Feasibility Report")
	assert.Contains(t, got.Markdown, "Residential - Mixed Housing Urban")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GenerateIsIdempotent(t *testing.T) {
	svc, mock, _ := newTestReportService(t, happyAnalyzer(t), &fakeCompleter{reply: "ok"})

	generated := testReport()
	generated.Status = models.ReportStatusGenerated
	generated.Markdown = "# Property Feasibility Report"
	mock.ExpectQuery("FROM premium_reports WHERE idempotency_key =").
		WithArgs("cs_123").
		WillReturnRows(reportRows(t, generated))

	got, err := svc.Generate(context.Background(), "cs_123")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusGenerated, got.Status)

	// No UPDATE was issued.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GenerateSynthesisFailureMarksFailed(t *testing.T) {
	svc, mock, _ := newTestReportService(t, happyAnalyzer(t),
		&fakeCompleter{err: apperrors.NewChatUpstreamFailedError(assert.AnError)})

	pending := testReport()
	mock.ExpectQuery("FROM premium_reports WHERE idempotency_key =").
		WithArgs("cs_123").
		WillReturnRows(reportRows(t, pending))
	mock.ExpectExec("UPDATE premium_reports").WillReturnResult(sqlmock.NewResult(0, 1)) // paid
	mock.ExpectExec("UPDATE premium_reports").
		WithArgs(pending.ID, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			string(models.ReportStatusFailed), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := svc.Generate(context.Background(), "cs_123")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_RetryRegeneratesFailedReport(t *testing.T) {
	svc, mock, _ := newTestReportService(t, happyAnalyzer(t), &fakeCompleter{reply: "Second attempt succeeded."})

	failed := testReport()
	failed.Status = models.ReportStatusFailed
	mock.ExpectQuery("FROM premium_reports WHERE id =").
		WithArgs(failed.ID).
		WillReturnRows(reportRows(t, failed))
	mock.ExpectQuery("FROM premium_reports WHERE idempotency_key =").
		WithArgs("cs_123").
		WillReturnRows(reportRows(t, failed))
	mock.ExpectExec("UPDATE premium_reports").WillReturnResult(sqlmock.NewResult(0, 1)) // paid
	mock.ExpectExec("UPDATE premium_reports").WillReturnResult(sqlmock.NewResult(0, 1)) // generated

	got, err := svc.Retry(context.Background(), failed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusGenerated, got.Status)
	assert.Equal(t, "Second attempt succeeded.", got.Summary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_RetryLeavesGeneratedReportAlone(t *testing.T) {
	svc, mock, _ := newTestReportService(t, happyAnalyzer(t), &fakeCompleter{reply: "ok"})

	generated := testReport()
	generated.Status = models.ReportStatusGenerated
	mock.ExpectQuery("FROM premium_reports WHERE id =").
		WithArgs(generated.ID).
		WillReturnRows(reportRows(t, generated))

	got, err := svc.Retry(context.Background(), generated.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusGenerated, got.Status)

	// No regeneration was attempted.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetGatedOnPayment(t *testing.T) {
	svc, mock, _ := newTestReportService(t, happyAnalyzer(t), &fakeCompleter{reply: "ok"})

	pending := testReport()
	mock.ExpectQuery("FROM premium_reports WHERE id =").
		WithArgs(pending.ID).
		WillReturnRows(reportRows(t, pending))

	_, err := svc.Get(context.Background(), pending.ID)
	require.Error(t, err)

	stdErr, ok := err.(*apperrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodePaymentRequired, stdErr.Code)
}

func TestService_GetGeneratedReport(t *testing.T) {
	svc, mock, _ := newTestReportService(t, happyAnalyzer(t), &fakeCompleter{reply: "ok"})

	generated := testReport()
	generated.Status = models.ReportStatusGenerated
	mock.ExpectQuery("FROM premium_reports WHERE id =").
		WithArgs(generated.ID).
		WillReturnRows(reportRows(t, generated))

	got, err := svc.Get(context.Background(), generated.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusGenerated, got.Status)
}

func TestRenderMarkdown(t *testing.T) {
	report := testReport()
	report.Summary = "A minor dwelling is feasible subject to flood mitigation."
	report.Analysis.FloodProne = true
	report.Analysis.Overlays = []string{"heritage"}
	report.Analysis.WaterConnected = true

	md, err := RenderMarkdown(report)
	require.NoError(t, err)

	assert.Contains(t, md, "# Property Feasibility Report")
	assert.Contains(t, md, "12 Ponsonby Road, Auckland")
	assert.Contains(t, md, "## Constraints and Hazards")
	assert.Contains(t, md, "Flood prone area")
	assert.Contains(t, md, "Overlay: heritage")
	assert.Contains(t, md, "## Infrastructure")
	assert.Contains(t, md, report.Summary)
}

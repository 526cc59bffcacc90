// internal/server/router.go
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"canibuildit/internal/chat"
	"canibuildit/internal/checkout"
	"canibuildit/internal/common/logger"
	"canibuildit/internal/geocode"
	"canibuildit/internal/intake"
	"canibuildit/internal/report"
	"canibuildit/internal/scraper"
	"canibuildit/internal/server/session"
)

// Handlers collects the per-module HTTP handlers wired by the router.
type Handlers struct {
	Intake   *intake.Handler
	Chat     *chat.Handler
	Geocode  *geocode.Handler
	Report   *report.Handler
	Checkout *checkout.Handler
	Scraper  *scraper.Handler
}

// NewRouter registers every API route plus health and metrics endpoints.
func NewRouter(h Handlers, log logger.Logger) *mux.Router {
	r := mux.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(MetricsMiddleware)
	r.Use(LoggingMiddleware(log))
	r.Use(session.Middleware)

	// Intake wizard
	r.HandleFunc("/api/intake", h.Intake.Start).Methods(http.MethodPost)
	r.HandleFunc("/api/intake/{id}", h.Intake.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/intake/{id}/step/{n}", h.Intake.Step).Methods(http.MethodPut)
	r.HandleFunc("/api/intake/{id}/submit", h.Intake.Submit).Methods(http.MethodPost)

	// Chat and property assessment
	r.HandleFunc("/api/chat", h.Chat.Send).Methods(http.MethodPost)
	r.HandleFunc("/api/chat", h.Chat.History).Methods(http.MethodGet)
	r.HandleFunc("/api/assess-property", h.Chat.Assess).Methods(http.MethodPost)

	// Geocoding
	r.HandleFunc("/api/geocode", h.Geocode.Resolve).Methods(http.MethodGet)
	r.HandleFunc("/api/geocode/suggest", h.Geocode.Suggest).Methods(http.MethodGet)

	// Premium reports
	r.HandleFunc("/api/comprehensive-property-analysis", h.Report.Analyze).Methods(http.MethodPost)
	r.HandleFunc("/api/premium-report/{id}", h.Report.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/premium-report/{id}/retry", h.Report.Retry).Methods(http.MethodPost)

	// Plans and checkout
	r.HandleFunc("/api/plans", h.Checkout.Plans).Methods(http.MethodGet)
	r.HandleFunc("/api/checkout", h.Checkout.Start).Methods(http.MethodPost)
	r.HandleFunc("/api/checkout/webhook", h.Checkout.Webhook).Methods(http.MethodPost)
	r.HandleFunc("/api/checkout/{id}", h.Checkout.GetPurchase).Methods(http.MethodGet)

	// Scraper dashboard
	r.HandleFunc("/api/scraping-jobs", h.Scraper.StartJob).Methods(http.MethodPost)
	r.HandleFunc("/api/scraping-jobs", h.Scraper.ListJobs).Methods(http.MethodGet)
	r.HandleFunc("/api/scraping-jobs/{id}", h.Scraper.GetJob).Methods(http.MethodGet)
	r.HandleFunc("/api/scraping-jobs/{id}/cancel", h.Scraper.CancelJob).Methods(http.MethodPost)
	r.HandleFunc("/api/data-sources", h.Scraper.CreateSource).Methods(http.MethodPost)
	r.HandleFunc("/api/data-sources", h.Scraper.ListSources).Methods(http.MethodGet)
	r.HandleFunc("/api/data-sources/{id}", h.Scraper.GetSource).Methods(http.MethodGet)
	r.HandleFunc("/api/data-sources/{id}", h.Scraper.UpdateSource).Methods(http.MethodPut)
	r.HandleFunc("/api/data-sources/{id}", h.Scraper.DeleteSource).Methods(http.MethodDelete)
	r.HandleFunc("/api/property-records", h.Scraper.CreateRecord).Methods(http.MethodPost)
	r.HandleFunc("/api/property-records", h.Scraper.ListRecords).Methods(http.MethodGet)
	r.HandleFunc("/api/property-records/{id}", h.Scraper.GetRecord).Methods(http.MethodGet)

	// Health & metrics
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/ready", healthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

// WithCORS wraps the router with the browser CORS policy.
func WithCORS(handler http.Handler, allowedOrigins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", session.HeaderName},
		AllowCredentials: true,
	})
	return c.Handler(handler)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

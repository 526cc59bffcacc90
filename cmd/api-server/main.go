// cmd/api-server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"canibuildit/internal/chat"
	"canibuildit/internal/checkout"
	"canibuildit/internal/clients/genai"
	"canibuildit/internal/clients/geomaps"
	"canibuildit/internal/clients/linz"
	"canibuildit/internal/clients/places"
	"canibuildit/internal/clients/stripe"
	"canibuildit/internal/common/config"
	"canibuildit/internal/common/database"
	apperrors "canibuildit/internal/common/errors"
	"canibuildit/internal/common/logger"
	"canibuildit/internal/common/observability"
	"canibuildit/internal/geocode"
	"canibuildit/internal/handoff"
	"canibuildit/internal/intake"
	"canibuildit/internal/notify"
	"canibuildit/internal/report"
	"canibuildit/internal/scraper"
	"canibuildit/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	configPath := flag.String("config", "", "config file path (default: configs/config.yaml lookup)")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)
	zapLog.Info("Starting api-server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- External service clients ---
	genaiClient := genai.New(genai.Config{
		BaseURL:    cfg.APIs.GenAI.BaseURL,
		APIKey:     cfg.APIs.GenAI.APIKey,
		Timeout:    config.GetDuration(cfg.APIs.GenAI.Timeout),
		MaxRetries: cfg.APIs.GenAI.MaxRetries,
	}, log)

	linzClient := linz.New(linz.Config{
		BaseURL:    cfg.APIs.LINZ.BaseURL,
		APIKey:     cfg.APIs.LINZ.APIKey,
		Timeout:    config.GetDuration(cfg.APIs.LINZ.Timeout),
		MaxRetries: cfg.APIs.LINZ.MaxRetries,
	}, log)

	placesClient := places.New(places.Config{
		BaseURL: cfg.APIs.Places.BaseURL,
		APIKey:  cfg.APIs.Places.APIKey,
		Timeout: config.GetDuration(cfg.APIs.Places.Timeout),
	}, log)

	geomapsClient := geomaps.New(geomaps.Config{
		BaseURL:    cfg.APIs.GeoMaps.BaseURL,
		Timeout:    config.GetDuration(cfg.APIs.GeoMaps.Timeout),
		MaxRetries: cfg.APIs.GeoMaps.MaxRetries,
	}, log)

	stripeClient := stripe.New(stripe.Config{
		BaseURL:       cfg.APIs.Stripe.BaseURL,
		SecretKey:     cfg.APIs.Stripe.SecretKey,
		WebhookSecret: cfg.APIs.Stripe.WebhookSecret,
		SuccessURL:    cfg.APIs.Stripe.SuccessURL,
		CancelURL:     cfg.APIs.Stripe.CancelURL,
		Timeout:       config.GetDuration(cfg.APIs.Stripe.Timeout),
	}, log)

	notifier, err := notify.New(ctx, &notify.Config{
		EmailEnabled: cfg.Notify.Email.Enabled,
		FromEmail:    cfg.Notify.Email.FromEmail,
		SMSEnabled:   cfg.Notify.SMS.Enabled,
		TopicArn:     cfg.Notify.SMS.TopicArn,
		AWSRegion:    cfg.Notify.AWS.Region,
	}, log)
	if err != nil {
		zapLog.Fatal("notifier init failed", zap.Error(err))
	}

	zapLog.Info("All external service clients initialized")

	// --- Shared state ---
	handoffStore := handoff.NewStore(rdb.Client, config.GetTTL(cfg.Handoff.TTL), log)
	responder := apperrors.NewHTTPResponder(log)

	// --- Services & handlers ---
	intakeService := intake.NewService(&intake.Config{
		RequireBudget: cfg.Intake.RequireBudget,
		DraftTTL:      config.GetTTL(cfg.Intake.DraftTTL),
	}, rdb.Client, handoffStore, log)

	chatService := chat.NewService(&chat.Config{
		ConversationTTL:  config.GetTTL(cfg.Chat.ConversationTTL),
		MaxHistory:       cfg.Chat.MaxHistory,
		PropertyKeywords: cfg.Chat.PropertyKeywords,
		ReportKeywords:   cfg.Chat.ReportKeywords,
	}, rdb.Client, genaiClient, handoffStore, log)

	geocodeService := geocode.NewService(linzClient, placesClient, log)
	analyzer := report.NewAnalyzer(geocodeService, geomapsClient, log)

	reportService := report.NewService(
		report.NewStore(pg.DB), analyzer, genaiClient, handoffStore,
		config.GetDuration(cfg.Report.GenerationTimeout), log,
	)

	checkoutService := checkout.NewService(&checkout.Config{
		Currency:   cfg.Checkout.Currency,
		SuccessURL: cfg.APIs.Stripe.SuccessURL,
	}, checkout.NewStore(pg.DB), stripeClient, reportService, notifier, handoffStore, log)

	scraperService := scraper.NewService(
		scraper.NewStore(pg.DB),
		scraper.NewSearchIndex(esClient.Client, log),
		log,
	)

	router := server.NewRouter(server.Handlers{
		Intake:   intake.NewHandler(intakeService, responder, log),
		Chat:     chat.NewHandler(chatService, responder, log),
		Geocode:  geocode.NewHandler(geocodeService, responder, log),
		Report:   report.NewHandler(reportService, analyzer, responder, log),
		Checkout: checkout.NewHandler(checkoutService, stripeClient, responder, log),
		Scraper:  scraper.NewHandler(scraperService, responder, log),
	}, log)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.WithCORS(router, cfg.Server.AllowedOrigins),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining connections...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("api-server stopped gracefully")
}

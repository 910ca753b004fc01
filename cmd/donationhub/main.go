package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"donationhub/internal/api"
	"donationhub/internal/assistant"
	"donationhub/internal/config"
	"donationhub/internal/database"
	"donationhub/internal/handlers"
	"donationhub/internal/logger"
	"donationhub/internal/models"
	"donationhub/internal/session"
	"donationhub/internal/version"
	"donationhub/web/static"
	"donationhub/web/templates"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const sessionSweepInterval = 10 * time.Minute

func main() {
	// Command line flags
	port := flag.String("port", "", "Port to bind to (overrides PORT env var)")
	ip := flag.String("ip", "", "IP address to bind to (overrides IP env var)")
	apiURL := flag.String("api", "", "Backend API base URL (overrides API_BASE_URL env var)")
	configFile := flag.String("config", "", "YAML configuration file (overrides CONFIG_FILE env var)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Set environment variables from flags
	if *port != "" {
		os.Setenv("PORT", *port)
	}
	if *ip != "" {
		os.Setenv("IP", *ip)
	}
	if *apiURL != "" {
		os.Setenv("API_BASE_URL", *apiURL)
	}
	if *configFile != "" {
		os.Setenv("CONFIG_FILE", *configFile)
	}
	if *debug {
		os.Setenv("DEBUG", "true")
	}

	cfg := config.Load()

	logger.WithDebug(cfg.Debug)
	logger.Info("Starting DonationHub", "version", version.GetVersion(), "user_agent", version.UserAgent("donationhub-web"), "api", cfg.APIBaseURL)

	// Session database
	db, err := database.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to open session database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.DatabaseType); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	store, err := session.NewSQLStore(db, cfg.DatabaseType)
	if err != nil {
		logger.Error("Failed to create session store", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions := session.NewManager(store, session.ManagerConfig{
		Secret: cfg.SessionSecret,
		MaxAge: time.Duration(cfg.SessionMaxAge) * time.Second,
		Secure: os.Getenv("GO_ENV") == "production",
	})
	go sessions.StartSweeper(ctx, sessionSweepInterval)

	client := api.NewClient(api.ClientConfig{
		BaseURL:     cfg.APIBaseURL,
		Tokens:      session.ContextToken{},
		UserAgent:   version.UserAgent("donationhub-web"),
		Timeout:     cfg.APITimeout,
		RateLimiter: api.NewRateLimiter(cfg.APIRateLimit),
		Retry:       cfg.APIRetry,
	})
	templates.SetAssetOrigin(cfg.APIServerURL)

	bot := newAssistant(ctx, cfg, client)
	h := handlers.New(cfg, client, sessions, bot)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Handle("/static/*", static.Handler("/static/"))
	r.Mount("/", h.Routes())

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "address", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("Server gracefully stopped")
}

// newAssistant wires the chat model when a key is configured. Without one the
// chat answers that it is unavailable.
func newAssistant(ctx context.Context, cfg *config.Config, client *api.Client) *assistant.Assistant {
	if cfg.GeminiAPIKey == "" {
		logger.Info("Assistant disabled (GEMINI_API_KEY not set)")
		return assistant.New(nil, nil)
	}

	gen, err := assistant.NewGemini(ctx, cfg.GeminiAPIKey, cfg.AssistantModel)
	if err != nil {
		logger.Error("Failed to create assistant; continuing without it", "error", err)
		return assistant.New(nil, nil)
	}

	campaigns := func(ctx context.Context) ([]models.Campaign, error) {
		page, err := client.Public.Campaigns(ctx, api.CampaignFilter{Status: "active", Limit: 100})
		if err != nil {
			return nil, err
		}
		return page.Campaigns, nil
	}
	logger.Info("Assistant enabled", "model", gen.Name())
	return assistant.New(gen, campaigns)
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/harvest/api"
	"github.com/use-agent/harvest/cache"
	"github.com/use-agent/harvest/config"
	"github.com/use-agent/harvest/engine"
	"github.com/use-agent/harvest/extractor"
	"github.com/use-agent/harvest/proxy"
	"github.com/use-agent/harvest/scraper"
	"github.com/use-agent/harvest/session"
	"github.com/use-agent/harvest/store"
	"github.com/use-agent/harvest/webhook"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("harvest starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"render", cfg.Render.Mode,
		"store", cfg.Store.Backend,
	)

	// ── 3. Connect the session store ────────────────────────────────
	st, err := openStore(context.Background(), cfg.Store)
	if err != nil {
		slog.Error("failed to open session store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}

	// ── 4. Fetch chain: rendering primary → plain HTTP fallback ────
	httpEngine := engine.NewHTTPEngine(cfg.Fetch.HTTPTimeout)
	chain := engine.NewChain(primaryEngine(cfg.Render), httpEngine, cfg.Render.Timeout, cfg.Fetch.HTTPTimeout)
	slog.Info("fetch chain ready", "primary", chain.PrimaryName(), "fallback", httpEngine.Name())

	// ── 5. Scraper, cache, session service, proxy ───────────────────
	var cc *cache.Cache
	if cfg.Cache.MaxEntries > 0 {
		cc = cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)
		defer cc.Close()
	}
	sc := scraper.New(chain, scraper.Options{
		Stylesheets: scraper.HTTPStylesheets(httpEngine),
		Inline: extractor.InlineOptions{
			Timeout:     cfg.CSS.Timeout,
			Concurrency: cfg.CSS.Concurrency,
			MaxSheets:   cfg.CSS.MaxSheets,
		},
		Cache: cc,
	})
	svc := session.NewService(st, sc, webhook.NewDispatcher(cfg.Webhook.Timeout, cfg.Webhook.Secret))
	rw := proxy.NewRewriter(engine.NewHTTPEngine(cfg.Proxy.Timeout))

	// ── 6. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(cfg, sc, svc, rw, st, startTime)

	// ── 7. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 8. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	if err := st.Close(ctx); err != nil {
		slog.Error("session store close failed", "error", err)
	}
	slog.Info("harvest stopped")
}

// primaryEngine builds the rendering-capable engine for the configured
// mode. It returns nil when rendering is off.
func primaryEngine(cfg config.RenderConfig) engine.Engine {
	switch cfg.Mode {
	case config.RenderBrowserless:
		return engine.NewBrowserlessEngine(cfg.BrowserlessURL, cfg.Token, cfg.Settle, cfg.Timeout)
	case config.RenderCDP:
		return engine.NewRodEngine(cfg.CDPURL, cfg.Settle, cfg.Stealth)
	default:
		return nil
	}
}

// openStore connects the configured session store backend.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case config.StoreMongo:
		return store.NewMongo(ctx, store.MongoConfig{
			URI:            cfg.MongoURI,
			Database:       cfg.MongoDatabase,
			Collection:     cfg.MongoCollection,
			ScrapesColl:    cfg.MongoScrapes,
			ConnectTimeout: cfg.ConnectTimeout,
		})
	case config.StoreRedis:
		ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
		return store.NewRedis(ctx, store.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisPrefix,
		})
	default:
		slog.Warn("using in-memory session store; sessions are lost on restart")
		return store.NewMemory(), nil
	}
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"

	"github.com/erazemk/lostfound/internal/api"
	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/config"
	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/store"
	"github.com/erazemk/lostfound/internal/store/mongostore"
	"github.com/erazemk/lostfound/internal/uploads"
	"github.com/erazemk/lostfound/internal/web"
	webembed "github.com/erazemk/lostfound/web"
)

func main() {
	fs := flag.NewFlagSet("lostfound", flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", "", "")
	fs.StringVar(&configPath, "c", "", "")

	var addr string
	fs.StringVar(&addr, "addr", "", "")
	fs.StringVar(&addr, "a", "", "")

	var dbPath string
	fs.StringVar(&dbPath, "db", "", "")
	fs.StringVar(&dbPath, "d", "", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: lostfound [flags]

Flags:
  -c, -config <path>      YAML config file (default: defaults + environment)
  -a, -addr <host:port>   listen address (default: :5000)
  -d, -db <path>          SQLite database path (default: lostfound.db)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

Environment variables and a .env file override the config file.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if addr != "" {
		cfg.HTTP.Address = addr
	}
	if dbPath != "" {
		cfg.Storage.SQLitePath = dbPath
	}
	if logPath != "" {
		cfg.Log.Path = logPath
	}

	// Set up structured logging: INFO/WARN → stdout, ERROR → stderr.
	// Optionally also write to a log file.
	closeLog, err := setupLogger(cfg.Log.Path, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	st, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer st.Close()

	password, err := ensureAdmin(ctx, st, cfg.Auth.AdminEmail, cfg.Auth.AdminName)
	if err != nil {
		return err
	}
	if password != "" {
		printAdminCreated(os.Stdout, cfg.Auth.AdminEmail, password)
		fmt.Println()
	}

	// Configured secret wins, otherwise use the one persisted on first run.
	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret, err = st.GetJWTSecret(ctx)
		if err != nil {
			return fmt.Errorf("getting JWT secret: %w", err)
		}
	}

	images, err := uploads.New(cfg.Uploads.Dir)
	if err != nil {
		return err
	}

	apiRouter := api.NewRouter(api.Deps{
		Store:             st,
		Issuer:            auth.NewIssuer(jwtSecret, cfg.Auth.TokenExpiry),
		Uploads:           images,
		MaxUploadBytes:    cfg.Uploads.MaxBytes,
		MaxImageDimension: cfg.Uploads.MaxDimension,
	})
	webRouter, err := web.NewRouter(webembed.StaticFS())
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	// Combine: API and uploads take priority, the client handles the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/uploads/", apiRouter)
	mux.Handle("/", webRouter)

	handler := api.LoggingMiddleware(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	})(mux))

	server := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.HTTP.Address, "env", cfg.Env, "storage", cfg.Storage.Driver)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving: %w", err)
	}

	slog.Info("server stopped, closing store")
	return nil
}

// openStore opens the configured backend and prepares its schema or indexes.
func openStore(ctx context.Context, cfg config.Storage) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		st, err := mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("opening mongo store: %w", err)
		}
		slog.Info("database ready", "driver", cfg.Driver, "database", cfg.MongoDatabase)
		return st, nil
	default:
		database, err := db.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		// Ensure schema exists (idempotent).
		if err := db.EnsureSchema(database); err != nil {
			database.Close()
			return nil, fmt.Errorf("ensuring database schema: %w", err)
		}
		slog.Info("database ready", "driver", cfg.Driver, "path", cfg.SQLitePath)
		return store.NewSQLite(database), nil
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/job"
	jobrepo "github.com/ovaphlow/pitchfork/service-jobs-go/internal/job/repo"
	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-jobs-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-jobs-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-jobs-go/pkg/utilities"
)

func main() {
	// best-effort: without a .env file the real environment is used
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	lg, err := utilities.Init(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()
	sugar := lg.Sugar()
	sugar.Infow("starting service-jobs-go", "store", cfg.StoreDriver, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, jobs, closeStore, err := openStores(ctx, cfg, sugar)
	if err != nil {
		sugar.Fatalf("open store: %v", err)
	}
	defer closeStore()

	ids, err := utilities.NewIDGenerator(cfg.SnowflakeNode)
	if err != nil {
		sugar.Fatalf("id generator: %v", err)
	}
	tokens := auth.NewTokenService(auth.TokenConfig{Secret: cfg.JWTSecret, Lifetime: cfg.JWTLifetime})

	limiter := router.NewRateLimiter(cfg.AuthRateLimit.Max, cfg.AuthRateLimit.Window, cfg.AuthRateLimit.TrustProxy, sugar)
	go sweep(ctx, limiter, cfg.AuthRateLimit.Window)

	handler := router.RegisterRoutes(router.Deps{
		Logger:      sugar,
		Prefix:      cfg.APIPrefix,
		Guard:       auth.NewGuard(tokens, cfg.DemoUserID, sugar),
		Users:       user.NewHandler(user.NewUserService(users, nil, tokens, ids), sugar),
		Jobs:        job.NewHandler(job.NewService(jobs, ids), sugar),
		AuthLimiter: limiter,
		Metrics:     router.NewMetrics(),
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Info("service is running; press Ctrl+C to stop")

	<-ctx.Done()
	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}
	sugar.Info("goodbye")
}

// openStores returns the user and job stores for the configured driver.
func openStores(ctx context.Context, cfg config.Config, sugar *zap.SugaredLogger) (user.Store, job.Store, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		sugar.Warn("using in-memory store; data is lost on exit")
		return userrepo.NewMemoryRepo(), jobrepo.NewMemoryRepo(), func() {}, nil
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	users := userrepo.NewUserRepo(db)
	jobs := jobrepo.NewJobRepo(db)
	if err := users.EnsureTable(ctx); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("ensure users table: %w", err)
	}
	if err := jobs.EnsureTable(ctx); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("ensure jobs table: %w", err)
	}
	return users, jobs, func() { db.Close() }, nil
}

func sweep(ctx context.Context, rl *router.RateLimiter, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			rl.Sweep()
		}
	}
}

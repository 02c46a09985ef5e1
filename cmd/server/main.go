// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/quailbyte/go-accountsvc/internal/config"
	"github.com/quailbyte/go-accountsvc/internal/domain"
	"github.com/quailbyte/go-accountsvc/internal/handlers"
	"github.com/quailbyte/go-accountsvc/internal/middleware"
	"github.com/quailbyte/go-accountsvc/internal/ratelimit"
	lockrepo "github.com/quailbyte/go-accountsvc/internal/repository/lock"
	requestrepo "github.com/quailbyte/go-accountsvc/internal/repository/request"
	userrepo "github.com/quailbyte/go-accountsvc/internal/repository/user"
	"github.com/quailbyte/go-accountsvc/internal/services"
	"github.com/quailbyte/go-accountsvc/internal/services/mail"
	"github.com/quailbyte/go-accountsvc/internal/services/user_services"
)

func main() {
	cfg := config.Load()

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	if err := db.AutoMigrate(&domain.User{}, &domain.SecretLock{}, &domain.ProtectedActionRequest{}); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	logger := services.NewLogger("accountsvc")

	// --- Repositories ---
	userRepo := userrepo.NewGormUserRepository(db)
	lockRepo := lockrepo.NewGormLockRepository(db)
	requestRepo := requestrepo.NewGormRequestRepository(db)

	// --- Mail ---
	smtpProvider, err := mail.NewSMTPProvider(&mail.Config{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUsername,
		Password:    cfg.SMTPPassword,
		FromAddress: cfg.SMTPFromAddress,
		FromName:    cfg.SMTPFromName,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize SMTP provider: %v", err)
	}
	mailService, err := services.NewMailService(smtpProvider, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize mail service: %v", err)
	}

	// --- Services ---
	lockService := user_services.NewLockService(lockRepo, user_services.LockConfig{
		MaxFailures:          cfg.LockMaxFailures,
		FailureCooldownCount: cfg.LockFailureCooldown,
	}, logger)
	requestService := user_services.NewRequestService(requestRepo, lockService, user_services.CreateOptions{
		CodeLength: cfg.RequestCodeLength,
		ExpiresIn:  cfg.RequestTTL,
	}, logger)
	verificationService := user_services.NewVerificationService(userRepo, requestService, mailService, logger)
	passwordResetService := user_services.NewPasswordResetService(userRepo, requestService, lockService, mailService, cfg.PasswordResetTTL, logger)
	authService := user_services.NewAuthService(userRepo, lockService, verificationService, cfg.JWTSecretKey, logger)
	userService := user_services.NewUserService(
		authService,
		verificationService,
		passwordResetService,
		requestService,
		userRepo,
		lockService,
		logger,
	)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(userService)
	accountHandler := handlers.NewAccountHandler(userService)
	verificationHandler := handlers.NewVerificationHandler(userService)
	passwordResetHandler := handlers.NewPasswordResetHandler(userService)

	// --- Router Setup ---
	r := mux.NewRouter()
	authMiddleware := middleware.NewJWTMiddleware(cfg.JWTSecretKey)

	authLimiter := ratelimit.New(ratelimit.DefaultAuthConfig())
	defer authLimiter.Close()
	codeLimiter := ratelimit.New(ratelimit.StrictConfig())
	defer codeLimiter.Close()

	r.Use(middleware.RecoverPanic)
	r.Use(middleware.LoggingMiddleware)

	// --- Public Routes ---
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	public := r.PathPrefix("/api/auth").Subrouter()
	public.Use(middleware.RateLimitMiddleware(authLimiter, "auth"))
	public.Use(middleware.ForgiveOnSuccess(authLimiter))
	public.HandleFunc("/register", authHandler.Register).Methods("POST")
	public.HandleFunc("/login", authHandler.Login).Methods("POST")

	// Code verification endpoints get the strict limiter; it trips before
	// the per-lock attempt ceiling does.
	codes := r.PathPrefix("/api").Subrouter()
	codes.Use(middleware.RateLimitMiddleware(codeLimiter, "codes"))
	codes.HandleFunc("/verification/request", verificationHandler.RequestCode).Methods("POST")
	codes.HandleFunc("/verification/confirm", verificationHandler.Confirm).Methods("POST")
	codes.HandleFunc("/password-reset/request", passwordResetHandler.RequestReset).Methods("POST")
	codes.HandleFunc("/password-reset/confirm", passwordResetHandler.ConfirmReset).Methods("POST")

	// --- Protected Routes ---
	api := r.PathPrefix("/api/account").Subrouter()
	api.Use(authMiddleware)
	api.HandleFunc("", accountHandler.Profile).Methods("GET")
	api.HandleFunc("", accountHandler.DeleteAccount).Methods("DELETE")
	api.HandleFunc("/username", accountHandler.UpdateUsername).Methods("PATCH")
	api.HandleFunc("/password", accountHandler.ChangePassword).Methods("POST")
	api.HandleFunc("/requests", accountHandler.RequestHistory).Methods("GET")

	// --- Retention Sweep ---
	// Fulfilled, cancelled, and long-expired requests stay queryable for
	// audit until the retention window closes, then get purged with their
	// locks.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(cfg.RetentionSweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cutoff := time.Now().AddDate(0, 0, -cfg.RetentionDays)
				if _, err := requestService.PurgeOldRequests(sweepCtx, cutoff); err != nil {
					log.Printf("[Retention] Sweep failed: %v", err)
				}
			case <-sweepCtx.Done():
				return
			}
		}
	}()

	// --- Server Configuration ---
	port := ":" + cfg.ServerPort
	srv := &http.Server{
		Addr:    port,
		Handler: r,
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Account service starting on port %s", port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully")
}

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/kamdem/boutique-service/internal/config"
	"github.com/kamdem/boutique-service/internal/handler"
	"github.com/kamdem/boutique-service/internal/middleware"
	"github.com/kamdem/boutique-service/internal/notifier"
	"github.com/kamdem/boutique-service/internal/repository"
	"github.com/kamdem/boutique-service/internal/service"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	if err := repo.Migrate(); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	svc := service.NewService(repo, logger, cfg)
	h := handler.NewHandler(svc, logger)

	// Due-date reminders run only when SMTP is configured
	if cfg.SMTPConfigured() {
		n := notifier.New(repo, notifier.NewSender(cfg, logger), logger)
		if err := n.Start(cfg.ReminderSchedule); err != nil {
			logger.Fatalf("Failed to start reminder scheduler: %v", err)
		}
		defer n.Stop()
	} else {
		logger.Info("SMTP not configured, due-date reminders disabled")
	}

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/api/signup", h.Signup).Methods("POST")
	r.HandleFunc("/api/login", h.Login).Methods("POST")
	r.HandleFunc("/health", h.Health).Methods("GET")
	// Protected routes
	authRouter := r.PathPrefix("/api").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/products", h.ListProducts).Methods("GET")
	authRouter.HandleFunc("/products", h.CreateProduct).Methods("POST")
	authRouter.HandleFunc("/products/{id}/sell", h.Sell).Methods("POST")
	authRouter.HandleFunc("/sales", h.ListSales).Methods("GET")
	authRouter.HandleFunc("/expenses", h.CreateExpense).Methods("POST")
	authRouter.HandleFunc("/expenses", h.ListExpenses).Methods("GET")
	authRouter.HandleFunc("/expenses/{id}/pay", h.PayExpense).Methods("POST")
	authRouter.HandleFunc("/bilan", h.Bilan).Methods("GET")
	authRouter.HandleFunc("/export", h.Export).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}

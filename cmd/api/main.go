package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/cofrinho/cashflow-service/internal/alerts"
	"github.com/cofrinho/cashflow-service/internal/config"
	"github.com/cofrinho/cashflow-service/internal/engine"
	"github.com/cofrinho/cashflow-service/internal/handler"
	"github.com/cofrinho/cashflow-service/internal/integrations/bcb"
	"github.com/cofrinho/cashflow-service/internal/middleware"
	"github.com/cofrinho/cashflow-service/internal/models"
	"github.com/cofrinho/cashflow-service/internal/repository"
	"github.com/cofrinho/cashflow-service/internal/service"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
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
	svc := service.NewService(repo, logger, cfg, engine.SystemClock())
	h := handler.NewHandler(svc, cfg)
	bcbClient := bcb.NewClient(cfg, logger)

	// Schedule the daily danger-day alert run in household-local time.
	sender := alerts.NewSender(cfg, logger)
	notifier := alerts.NewNotifier(repo, svc, sender, cfg, logger)
	scheduler := cron.New(cron.WithLocation(models.Location()))
	if _, err := scheduler.AddFunc(cfg.AlertCron, notifier.Run); err != nil {
		logger.Fatalf("Failed to schedule alert job: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	// Reference rate endpoint (display only)
	r.HandleFunc("/reference-rate", func(w http.ResponseWriter, r *http.Request) {
		rate, err := bcbClient.GetReferenceRate()
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get reference rate: %v", err), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]float64{"selic_rate": rate})
	}).Methods("GET")

	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/accounts", h.CreateBankAccount).Methods("POST")
	authRouter.HandleFunc("/accounts", h.ListBankAccounts).Methods("GET")
	authRouter.HandleFunc("/projects", h.CreateProject).Methods("POST")
	authRouter.HandleFunc("/projects", h.ListProjects).Methods("GET")
	authRouter.HandleFunc("/incomes", h.CreateSingleIncome).Methods("POST")
	authRouter.HandleFunc("/incomes", h.ListSingleIncomes).Methods("GET")
	authRouter.HandleFunc("/fixed-expenses", h.CreateFixedExpense).Methods("POST")
	authRouter.HandleFunc("/fixed-expenses", h.ListFixedExpenses).Methods("GET")
	authRouter.HandleFunc("/expenses", h.CreateSingleExpense).Methods("POST")
	authRouter.HandleFunc("/expenses", h.ListSingleExpenses).Methods("GET")
	authRouter.HandleFunc("/cards", h.CreateCreditCard).Methods("POST")
	authRouter.HandleFunc("/cards", h.ListCreditCards).Methods("GET")
	authRouter.HandleFunc("/future-statements", h.CreateFutureStatement).Methods("POST")
	authRouter.HandleFunc("/future-statements", h.ListFutureStatements).Methods("GET")
	authRouter.HandleFunc("/{entity}/{id}", h.DeleteEntity).Methods("DELETE")
	authRouter.HandleFunc("/projection", h.GetProjection).Methods("GET")
	authRouter.HandleFunc("/projection/snapshots", h.SaveSnapshot).Methods("POST")
	authRouter.HandleFunc("/projection/snapshots", h.ListSnapshots).Methods("GET")

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

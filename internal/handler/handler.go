package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/cofrinho/cashflow-service/internal/config"
	"github.com/cofrinho/cashflow-service/internal/engine"
	"github.com/cofrinho/cashflow-service/internal/models"
	"github.com/cofrinho/cashflow-service/internal/service"
	"github.com/gorilla/mux"
)

type Handler struct {
	svc *service.Service
	cfg *config.Config
}

func NewHandler(svc *service.Service, cfg *config.Config) *Handler {
	return &Handler{svc: svc, cfg: cfg}
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidDueDay),
		errors.Is(err, engine.ErrInvalidHorizon),
		errors.Is(err, engine.ErrInvalidDate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, sql.ErrNoRows):
		http.Error(w, "Not found", http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.svc.Register(req.Username, req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// CreateBankAccount handles bank account creation
func (h *Handler) CreateBankAccount(w http.ResponseWriter, r *http.Request) {
	var account models.BankAccount
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	created, err := h.svc.CreateBankAccount(r.Context(), &account)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// ListBankAccounts handles bank account listing
func (h *Handler) ListBankAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListBankAccounts(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, accounts)
}

// CreateProject handles recurring income creation
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var p models.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	created, err := h.svc.CreateProject(r.Context(), &p)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// ListProjects handles recurring income listing
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.ListProjects(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, projects)
}

// CreateSingleIncome handles one-off income creation
func (h *Handler) CreateSingleIncome(w http.ResponseWriter, r *http.Request) {
	var i models.SingleShotIncome
	if err := json.NewDecoder(r.Body).Decode(&i); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	created, err := h.svc.CreateSingleIncome(r.Context(), &i)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// ListSingleIncomes handles one-off income listing
func (h *Handler) ListSingleIncomes(w http.ResponseWriter, r *http.Request) {
	incomes, err := h.svc.ListSingleIncomes(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, incomes)
}

// CreateFixedExpense handles fixed expense creation
func (h *Handler) CreateFixedExpense(w http.ResponseWriter, r *http.Request) {
	var e models.FixedExpense
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	created, err := h.svc.CreateFixedExpense(r.Context(), &e)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// ListFixedExpenses handles fixed expense listing
func (h *Handler) ListFixedExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.svc.ListFixedExpenses(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, expenses)
}

// CreateSingleExpense handles one-off expense creation
func (h *Handler) CreateSingleExpense(w http.ResponseWriter, r *http.Request) {
	var e models.SingleShotExpense
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	created, err := h.svc.CreateSingleExpense(r.Context(), &e)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// ListSingleExpenses handles one-off expense listing
func (h *Handler) ListSingleExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.svc.ListSingleExpenses(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, expenses)
}

// CreateCreditCard handles credit card creation
func (h *Handler) CreateCreditCard(w http.ResponseWriter, r *http.Request) {
	var c models.CreditCard
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	created, err := h.svc.CreateCreditCard(r.Context(), &c)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// ListCreditCards handles credit card listing
func (h *Handler) ListCreditCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.svc.ListCreditCards(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cards)
}

// CreateFutureStatement handles forecasted statement creation
func (h *Handler) CreateFutureStatement(w http.ResponseWriter, r *http.Request) {
	var fs models.FutureStatement
	if err := json.NewDecoder(r.Body).Decode(&fs); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	created, err := h.svc.CreateFutureStatement(r.Context(), &fs)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// ListFutureStatements handles forecasted statement listing
func (h *Handler) ListFutureStatements(w http.ResponseWriter, r *http.Request) {
	statements, err := h.svc.ListFutureStatements(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, statements)
}

// entityTables maps URL entity segments to their backing tables; anything
// else is a 404, so table names never come from user input.
var entityTables = map[string]string{
	"accounts":          "bank_accounts",
	"projects":          "projects",
	"incomes":           "single_incomes",
	"fixed-expenses":    "fixed_expenses",
	"expenses":          "single_expenses",
	"cards":             "credit_cards",
	"future-statements": "future_statements",
}

// DeleteEntity handles deletion for every entity collection
func (h *Handler) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	table, ok := entityTables[vars["entity"]]
	if !ok {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if err := h.svc.DeleteEntity(r.Context(), table, vars["id"]); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProjection computes the cashflow projection for the requested horizon.
// An explicit start date opts out of today-rebasing.
func (h *Handler) GetProjection(w http.ResponseWriter, r *http.Request) {
	days, err := h.horizonParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var startDate *models.Date
	if raw := r.URL.Query().Get("start"); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		startDate = &d
	}
	out, err := h.svc.BuildProjection(r.Context(), days, startDate)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// SaveSnapshot computes and stores a projection snapshot
func (h *Handler) SaveSnapshot(w http.ResponseWriter, r *http.Request) {
	days, err := h.horizonParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	snapshot, err := h.svc.SaveSnapshot(r.Context(), days)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, snapshot)
}

// ListSnapshots lists stored projection snapshots
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.svc.ListSnapshots(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snapshots)
}

func (h *Handler) horizonParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return h.cfg.AlertHorizon, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || !h.cfg.HorizonAllowed(days) {
		return 0, errors.New("days must be one of 30, 60, 90")
	}
	return days, nil
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cofrinho/cashflow-service/internal/config"
	"github.com/cofrinho/cashflow-service/internal/engine"
	"github.com/cofrinho/cashflow-service/internal/middleware"
	"github.com/cofrinho/cashflow-service/internal/models"
	"github.com/cofrinho/cashflow-service/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Service handles business logic
type Service struct {
	repo   *repository.Repository
	log    *logrus.Logger
	config *config.Config
	clock  engine.Clock
}

// NewService initializes a new service
func NewService(repo *repository.Repository, log *logrus.Logger, cfg *config.Config, clock engine.Clock) *Service {
	return &Service{repo: repo, log: log, config: cfg, clock: clock}
}

// Register creates a new user with hashed password
func (s *Service) Register(username, email, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.repo.FindUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.ID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

func ownerFromContext(ctx context.Context) (string, error) {
	ownerID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return "", fmt.Errorf("user ID not found in context")
	}
	return ownerID, nil
}

// CreateBankAccount creates a new bank account for the authenticated user
func (s *Service) CreateBankAccount(ctx context.Context, account *models.BankAccount) (*models.BankAccount, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !account.Type.Valid() {
		return nil, fmt.Errorf("invalid account type %q", account.Type)
	}

	account.ID = uuid.NewString()
	account.OwnerID = ownerID
	if err := s.repo.CreateBankAccount(account); err != nil {
		return nil, err
	}
	s.log.Infof("Bank account created for user %s: %s", ownerID, account.Name)
	return account, nil
}

// ListBankAccounts lists the authenticated user's bank accounts
func (s *Service) ListBankAccounts(ctx context.Context) ([]models.BankAccount, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBankAccounts(ownerID)
}

// CreateProject creates a recurring income project
func (s *Service) CreateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !p.Certainty.Valid() {
		return nil, fmt.Errorf("invalid certainty %q", p.Certainty)
	}
	if p.DayOfMonth < 1 || p.DayOfMonth > 31 {
		return nil, fmt.Errorf("day of month %d: %w", p.DayOfMonth, engine.ErrInvalidDueDay)
	}

	p.ID = uuid.NewString()
	p.OwnerID = ownerID
	if err := s.repo.CreateProject(p); err != nil {
		return nil, err
	}
	s.log.Infof("Project created for user %s: %s", ownerID, p.Name)
	return p, nil
}

// ListProjects lists the authenticated user's recurring incomes
func (s *Service) ListProjects(ctx context.Context) ([]models.Project, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListProjects(ownerID)
}

// CreateSingleIncome creates a one-off income
func (s *Service) CreateSingleIncome(ctx context.Context, i *models.SingleShotIncome) (*models.SingleShotIncome, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !i.Certainty.Valid() {
		return nil, fmt.Errorf("invalid certainty %q", i.Certainty)
	}
	if i.Date.IsZero() {
		return nil, fmt.Errorf("single income: %w", engine.ErrInvalidDate)
	}

	i.ID = uuid.NewString()
	i.OwnerID = ownerID
	if err := s.repo.CreateSingleIncome(i); err != nil {
		return nil, err
	}
	return i, nil
}

// ListSingleIncomes lists the authenticated user's one-off incomes
func (s *Service) ListSingleIncomes(ctx context.Context) ([]models.SingleShotIncome, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListSingleIncomes(ownerID)
}

// CreateFixedExpense creates a monthly fixed expense
func (s *Service) CreateFixedExpense(ctx context.Context, e *models.FixedExpense) (*models.FixedExpense, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if e.DueDay < 1 || e.DueDay > 31 {
		return nil, fmt.Errorf("due day %d: %w", e.DueDay, engine.ErrInvalidDueDay)
	}

	e.ID = uuid.NewString()
	e.OwnerID = ownerID
	if err := s.repo.CreateFixedExpense(e); err != nil {
		return nil, err
	}
	s.log.Infof("Fixed expense created for user %s: %s", ownerID, e.Name)
	return e, nil
}

// ListFixedExpenses lists the authenticated user's fixed expenses
func (s *Service) ListFixedExpenses(ctx context.Context) ([]models.FixedExpense, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListFixedExpenses(ownerID)
}

// CreateSingleExpense creates a one-off expense
func (s *Service) CreateSingleExpense(ctx context.Context, e *models.SingleShotExpense) (*models.SingleShotExpense, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if e.Date.IsZero() {
		return nil, fmt.Errorf("single expense: %w", engine.ErrInvalidDate)
	}

	e.ID = uuid.NewString()
	e.OwnerID = ownerID
	if err := s.repo.CreateSingleExpense(e); err != nil {
		return nil, err
	}
	return e, nil
}

// ListSingleExpenses lists the authenticated user's one-off expenses
func (s *Service) ListSingleExpenses(ctx context.Context) ([]models.SingleShotExpense, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListSingleExpenses(ownerID)
}

// CreateCreditCard creates a credit card
func (s *Service) CreateCreditCard(ctx context.Context, c *models.CreditCard) (*models.CreditCard, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return nil, fmt.Errorf("due day %d: %w", c.DueDay, engine.ErrInvalidDueDay)
	}

	c.ID = uuid.NewString()
	c.OwnerID = ownerID
	if err := s.repo.CreateCreditCard(c); err != nil {
		return nil, err
	}
	s.log.Infof("Credit card created for user %s: %s", ownerID, c.Name)
	return c, nil
}

// ListCreditCards lists the authenticated user's credit cards
func (s *Service) ListCreditCards(ctx context.Context) ([]models.CreditCard, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListCreditCards(ownerID)
}

// CreateFutureStatement creates a forecasted credit-card statement
func (s *Service) CreateFutureStatement(ctx context.Context, fs *models.FutureStatement) (*models.FutureStatement, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if fs.TargetMonth < time.January || fs.TargetMonth > time.December {
		return nil, fmt.Errorf("invalid target month %d", fs.TargetMonth)
	}

	// The forecast must point at one of the owner's cards.
	cards, err := s.repo.ListCreditCards(ownerID)
	if err != nil {
		return nil, err
	}
	known := false
	for _, c := range cards {
		if c.ID == fs.CreditCardID {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("credit card does not belong to user")
	}

	fs.ID = uuid.NewString()
	fs.OwnerID = ownerID
	if err := s.repo.CreateFutureStatement(fs); err != nil {
		return nil, err
	}
	return fs, nil
}

// ListFutureStatements lists the authenticated user's forecasted statements
func (s *Service) ListFutureStatements(ctx context.Context) ([]models.FutureStatement, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListFutureStatements(ownerID)
}

// DeleteEntity removes one entity row owned by the authenticated user
func (s *Service) DeleteEntity(ctx context.Context, table, id string) error {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return err
	}
	return s.repo.DeleteEntity(table, id, ownerID)
}

// ProjectionOutput is the full chart-ready payload for one projection run.
type ProjectionOutput struct {
	Projection            *engine.CashflowProjection   `json:"projection"`
	EstimatedToday        engine.EstimatedTodayBalance `json:"estimated_today"`
	DangerRanges          []engine.DangerRange         `json:"danger_ranges"`
	OptimisticSummary     engine.ScenarioSummary       `json:"optimistic_summary"`
	PessimisticSummary    engine.ScenarioSummary       `json:"pessimistic_summary"`
	InvestmentBufferCents models.Cents                 `json:"investment_buffer_cents"`
}

// BuildProjection computes the rebased projection for the authenticated
// user. A non-nil startDate skips rebasing and simulates plainly from that
// day instead.
func (s *Service) BuildProjection(ctx context.Context, days int, startDate *models.Date) (*ProjectionOutput, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.BuildProjectionForUser(ownerID, days, startDate)
}

// BuildProjectionForUser computes the projection for a specific user, also
// used by the alert job which has no request context.
func (s *Service) BuildProjectionForUser(ownerID string, days int, startDate *models.Date) (*ProjectionOutput, error) {
	in, err := s.repo.LoadInputs(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load projection inputs: %w", err)
	}

	var res *engine.ProjectionResult
	if startDate != nil {
		p, err := engine.Simulate(in, *startDate, days, engine.FlatSeed(engine.CheckingBalance(in.Accounts)))
		if err != nil {
			return nil, fmt.Errorf("failed to build projection: %w", err)
		}
		res = &engine.ProjectionResult{
			Projection:     p,
			EstimatedToday: engine.EstimatedTodayBalance{Today: models.DateOf(s.clock.Now())},
		}
	} else {
		res, err = engine.BuildProjection(in, days, s.clock)
		if err != nil {
			return nil, fmt.Errorf("failed to build projection: %w", err)
		}
	}

	optimistic, pessimistic := engine.Summarize(res.Projection)
	out := &ProjectionOutput{
		Projection:            res.Projection,
		EstimatedToday:        res.EstimatedToday,
		DangerRanges:          engine.DangerRanges(res.Projection.Days),
		OptimisticSummary:     optimistic,
		PessimisticSummary:    pessimistic,
		InvestmentBufferCents: engine.InvestmentBuffer(in.Accounts),
	}

	s.log.WithFields(logrus.Fields{
		"user":        ownerID,
		"days":        days,
		"has_base":    res.EstimatedToday.HasBase,
		"danger_days": res.Projection.Pessimistic.DangerDayCount,
	}).Info("Projection computed")
	return out, nil
}

// SaveSnapshot computes and persists a projection for later retrieval
func (s *Service) SaveSnapshot(ctx context.Context, days int) (*models.ProjectionSnapshot, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	out, err := s.BuildProjectionForUser(ownerID, days, nil)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize projection: %w", err)
	}

	snapshot := &models.ProjectionSnapshot{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Days:    days,
		Payload: payload,
	}
	if err := s.repo.SaveSnapshot(snapshot); err != nil {
		return nil, err
	}
	s.log.Infof("Projection snapshot saved for user %s", ownerID)
	return snapshot, nil
}

// ListSnapshots lists the authenticated user's saved projections
func (s *Service) ListSnapshots(ctx context.Context) ([]models.ProjectionSnapshot, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListSnapshots(ownerID)
}

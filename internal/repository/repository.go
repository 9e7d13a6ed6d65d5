package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cofrinho/cashflow-service/internal/engine"
	"github.com/cofrinho/cashflow-service/internal/models"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO cashflow.users (id, username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		RETURNING created_at`
	err := r.db.QueryRow(query, user.ID, user.Username, user.Email, user.PasswordHash).
		Scan(&user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM cashflow.users
		WHERE email = $1`
	err := r.db.QueryRow(query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListUsers retrieves every registered user, used by the alert job.
func (r *Repository) ListUsers() ([]models.User, error) {
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM cashflow.users
		ORDER BY created_at`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateBankAccount creates a new bank account
func (r *Repository) CreateBankAccount(a *models.BankAccount) error {
	query := `
		INSERT INTO cashflow.bank_accounts
			(id, owner_id, name, type, balance_cents, balance_updated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(query, a.ID, a.OwnerID, a.Name, a.Type, a.BalanceCents, a.BalanceUpdatedAt).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bank account: %w", err)
	}
	return nil
}

// ListBankAccounts retrieves all bank accounts of an owner
func (r *Repository) ListBankAccounts(ownerID string) ([]models.BankAccount, error) {
	query := `
		SELECT id, owner_id, name, type, balance_cents, balance_updated_at, created_at, updated_at
		FROM cashflow.bank_accounts
		WHERE owner_id = $1
		ORDER BY created_at`
	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.BankAccount
	for rows.Next() {
		var a models.BankAccount
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Name, &a.Type, &a.BalanceCents,
			&a.BalanceUpdatedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bank account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// CreateProject creates a recurring income project
func (r *Repository) CreateProject(p *models.Project) error {
	query := `
		INSERT INTO cashflow.projects
			(id, owner_id, name, amount_cents, certainty, day_of_month, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(query, p.ID, p.OwnerID, p.Name, p.AmountCents, p.Certainty, p.DayOfMonth).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// ListProjects retrieves all recurring income projects of an owner
func (r *Repository) ListProjects(ownerID string) ([]models.Project, error) {
	query := `
		SELECT id, owner_id, name, amount_cents, certainty, day_of_month, created_at, updated_at
		FROM cashflow.projects
		WHERE owner_id = $1
		ORDER BY created_at`
	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.AmountCents, &p.Certainty,
			&p.DayOfMonth, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// CreateSingleIncome creates a one-off income
func (r *Repository) CreateSingleIncome(i *models.SingleShotIncome) error {
	query := `
		INSERT INTO cashflow.single_incomes
			(id, owner_id, name, amount_cents, date, certainty, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
		RETURNING created_at`
	err := r.db.QueryRow(query, i.ID, i.OwnerID, i.Name, i.AmountCents, i.Date, i.Certainty).
		Scan(&i.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create single income: %w", err)
	}
	return nil
}

// ListSingleIncomes retrieves all one-off incomes of an owner
func (r *Repository) ListSingleIncomes(ownerID string) ([]models.SingleShotIncome, error) {
	query := `
		SELECT id, owner_id, name, amount_cents, date, certainty, created_at
		FROM cashflow.single_incomes
		WHERE owner_id = $1
		ORDER BY date, created_at`
	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list single incomes: %w", err)
	}
	defer rows.Close()

	var incomes []models.SingleShotIncome
	for rows.Next() {
		var i models.SingleShotIncome
		if err := rows.Scan(&i.ID, &i.OwnerID, &i.Name, &i.AmountCents, &i.Date,
			&i.Certainty, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan single income: %w", err)
		}
		incomes = append(incomes, i)
	}
	return incomes, rows.Err()
}

// CreateFixedExpense creates a monthly fixed expense
func (r *Repository) CreateFixedExpense(e *models.FixedExpense) error {
	query := `
		INSERT INTO cashflow.fixed_expenses
			(id, owner_id, name, amount_cents, due_day, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(query, e.ID, e.OwnerID, e.Name, e.AmountCents, e.DueDay).
		Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create fixed expense: %w", err)
	}
	return nil
}

// ListFixedExpenses retrieves all fixed expenses of an owner
func (r *Repository) ListFixedExpenses(ownerID string) ([]models.FixedExpense, error) {
	query := `
		SELECT id, owner_id, name, amount_cents, due_day, created_at, updated_at
		FROM cashflow.fixed_expenses
		WHERE owner_id = $1
		ORDER BY created_at`
	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixed expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.FixedExpense
	for rows.Next() {
		var e models.FixedExpense
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Name, &e.AmountCents, &e.DueDay,
			&e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fixed expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// CreateSingleExpense creates a one-off expense
func (r *Repository) CreateSingleExpense(e *models.SingleShotExpense) error {
	query := `
		INSERT INTO cashflow.single_expenses
			(id, owner_id, name, amount_cents, date, created_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		RETURNING created_at`
	err := r.db.QueryRow(query, e.ID, e.OwnerID, e.Name, e.AmountCents, e.Date).
		Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create single expense: %w", err)
	}
	return nil
}

// ListSingleExpenses retrieves all one-off expenses of an owner
func (r *Repository) ListSingleExpenses(ownerID string) ([]models.SingleShotExpense, error) {
	query := `
		SELECT id, owner_id, name, amount_cents, date, created_at
		FROM cashflow.single_expenses
		WHERE owner_id = $1
		ORDER BY date, created_at`
	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list single expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.SingleShotExpense
	for rows.Next() {
		var e models.SingleShotExpense
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Name, &e.AmountCents, &e.Date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan single expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// CreateCreditCard creates a credit card
func (r *Repository) CreateCreditCard(c *models.CreditCard) error {
	query := `
		INSERT INTO cashflow.credit_cards
			(id, owner_id, name, last_four, statement_balance_cents, due_day, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(query, c.ID, c.OwnerID, c.Name, c.LastFour, c.StatementBalanceCents, c.DueDay).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create credit card: %w", err)
	}
	return nil
}

// ListCreditCards retrieves all credit cards of an owner
func (r *Repository) ListCreditCards(ownerID string) ([]models.CreditCard, error) {
	query := `
		SELECT id, owner_id, name, last_four, statement_balance_cents, due_day, created_at, updated_at
		FROM cashflow.credit_cards
		WHERE owner_id = $1
		ORDER BY created_at`
	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credit cards: %w", err)
	}
	defer rows.Close()

	var cards []models.CreditCard
	for rows.Next() {
		var c models.CreditCard
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.LastFour, &c.StatementBalanceCents,
			&c.DueDay, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan credit card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// CreateFutureStatement creates a forecasted statement
func (r *Repository) CreateFutureStatement(s *models.FutureStatement) error {
	query := `
		INSERT INTO cashflow.future_statements
			(id, owner_id, credit_card_id, target_month, target_year, amount_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
		RETURNING created_at`
	err := r.db.QueryRow(query, s.ID, s.OwnerID, s.CreditCardID, int(s.TargetMonth), s.TargetYear, s.AmountCents).
		Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create future statement: %w", err)
	}
	return nil
}

// ListFutureStatements retrieves all forecasted statements of an owner
func (r *Repository) ListFutureStatements(ownerID string) ([]models.FutureStatement, error) {
	query := `
		SELECT id, owner_id, credit_card_id, target_month, target_year, amount_cents, created_at
		FROM cashflow.future_statements
		WHERE owner_id = $1
		ORDER BY target_year, target_month, created_at`
	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list future statements: %w", err)
	}
	defer rows.Close()

	var statements []models.FutureStatement
	for rows.Next() {
		var s models.FutureStatement
		var month int
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.CreditCardID, &month, &s.TargetYear,
			&s.AmountCents, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan future statement: %w", err)
		}
		s.TargetMonth = time.Month(month)
		statements = append(statements, s)
	}
	return statements, rows.Err()
}

// DeleteEntity removes one row of the given entity table if it belongs to
// the owner. The table name comes from a fixed internal set, never from
// user input.
func (r *Repository) DeleteEntity(table, id, ownerID string) error {
	query := fmt.Sprintf(`DELETE FROM cashflow.%s WHERE id = $1 AND owner_id = $2`, table)
	res, err := r.db.Exec(query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// LoadInputs gathers the full entity snapshot one projection run consumes.
func (r *Repository) LoadInputs(ownerID string) (engine.Inputs, error) {
	var (
		in  engine.Inputs
		err error
	)
	if in.Accounts, err = r.ListBankAccounts(ownerID); err != nil {
		return engine.Inputs{}, err
	}
	if in.Projects, err = r.ListProjects(ownerID); err != nil {
		return engine.Inputs{}, err
	}
	if in.SingleIncomes, err = r.ListSingleIncomes(ownerID); err != nil {
		return engine.Inputs{}, err
	}
	if in.FixedExpenses, err = r.ListFixedExpenses(ownerID); err != nil {
		return engine.Inputs{}, err
	}
	if in.SingleExpenses, err = r.ListSingleExpenses(ownerID); err != nil {
		return engine.Inputs{}, err
	}
	if in.CreditCards, err = r.ListCreditCards(ownerID); err != nil {
		return engine.Inputs{}, err
	}
	if in.FutureStatements, err = r.ListFutureStatements(ownerID); err != nil {
		return engine.Inputs{}, err
	}
	return in, nil
}

// SaveSnapshot persists a computed projection payload
func (r *Repository) SaveSnapshot(s *models.ProjectionSnapshot) error {
	query := `
		INSERT INTO cashflow.projection_snapshots (id, owner_id, days, payload, taken_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		RETURNING taken_at`
	err := r.db.QueryRow(query, s.ID, s.OwnerID, s.Days, []byte(s.Payload)).
		Scan(&s.TakenAt)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// ListSnapshots retrieves saved projections of an owner, newest first
func (r *Repository) ListSnapshots(ownerID string) ([]models.ProjectionSnapshot, error) {
	query := `
		SELECT id, owner_id, days, payload, taken_at
		FROM cashflow.projection_snapshots
		WHERE owner_id = $1
		ORDER BY taken_at DESC`
	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []models.ProjectionSnapshot
	for rows.Next() {
		var s models.ProjectionSnapshot
		var payload []byte
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Days, &payload, &s.TakenAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		s.Payload = json.RawMessage(payload)
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

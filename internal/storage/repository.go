// Package storage is the local persistence gateway for the ledger. It
// holds serialized copies of the ledger state in SQLite, never live
// references. Loading never fails the caller: corrupt or missing data
// falls back to seeded defaults. Writes are issued by the service layer
// after each in-memory mutation and are best-effort by contract.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"familybank/internal/core"
	"familybank/internal/ledger"
)

type Repository struct {
	db *sql.DB
}

// NewRepository opens (creating if needed) the SQLite database at dbPath
// and runs migrations.
func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadState reads the full ledger state. It never returns an error: any
// read failure is logged and the seeded defaults are returned instead,
// and a fresh (empty) database is seeded with those defaults so the
// first run persists them.
func (r *Repository) LoadState(ctx context.Context) ledger.State {
	state, err := r.readState(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load ledger state, using defaults", "error", err)
		return ledger.DefaultState()
	}
	if len(state.Children) == 0 {
		state = ledger.DefaultState()
		if err := r.ReplaceState(ctx, state); err != nil {
			slog.ErrorContext(ctx, "Failed to seed default state", "error", err)
		} else {
			slog.InfoContext(ctx, "Seeded default ledger state",
				"children", len(state.Children),
				"transactions", len(state.Transactions),
				"goals", len(state.Goals))
		}
	}
	return state
}

func (r *Repository) readState(ctx context.Context) (ledger.State, error) {
	var state ledger.State

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, age, balance_cents FROM children ORDER BY id`)
	if err != nil {
		return state, fmt.Errorf("query children: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c core.Child
		if err := rows.Scan(&c.ID, &c.Name, &c.Age, &c.Balance.Cents); err != nil {
			return state, fmt.Errorf("scan child: %w", err)
		}
		state.Children = append(state.Children, c)
	}
	if err := rows.Err(); err != nil {
		return state, fmt.Errorf("iterate children: %w", err)
	}

	txRows, err := r.db.QueryContext(ctx,
		`SELECT id, child_id, kind, amount_cents, note, category, tx_date, created_at
		 FROM transactions ORDER BY created_at DESC, id`)
	if err != nil {
		return state, fmt.Errorf("query transactions: %w", err)
	}
	defer txRows.Close()
	for txRows.Next() {
		var (
			t       core.Transaction
			dateStr string
		)
		if err := txRows.Scan(&t.ID, &t.ChildID, &t.Kind, &t.Amount.Cents,
			&t.Note, &t.Category, &dateStr, &t.CreatedAt); err != nil {
			return state, fmt.Errorf("scan transaction: %w", err)
		}
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return state, fmt.Errorf("parse transaction date %q: %w", dateStr, err)
		}
		t.Date = core.DateOf(parsed)
		state.Transactions = append(state.Transactions, t)
	}
	if err := txRows.Err(); err != nil {
		return state, fmt.Errorf("iterate transactions: %w", err)
	}

	goalRows, err := r.db.QueryContext(ctx,
		`SELECT id, child_id, name, target_cents, current_cents, icon FROM goals ORDER BY id`)
	if err != nil {
		return state, fmt.Errorf("query goals: %w", err)
	}
	defer goalRows.Close()
	for goalRows.Next() {
		var g core.Goal
		if err := goalRows.Scan(&g.ID, &g.ChildID, &g.Name,
			&g.Target.Cents, &g.Current.Cents, &g.Icon); err != nil {
			return state, fmt.Errorf("scan goal: %w", err)
		}
		state.Goals = append(state.Goals, g)
	}
	if err := goalRows.Err(); err != nil {
		return state, fmt.Errorf("iterate goals: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT annual_rate_percent, currency FROM settings WHERE id = 1`).
		Scan(&state.Settings.AnnualRatePercent, &state.Settings.Currency)
	if errors.Is(err, sql.ErrNoRows) {
		state.Settings = core.DefaultSettings()
	} else if err != nil {
		return state, fmt.Errorf("query settings: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT month FROM interest_marker WHERE id = 1`).
		Scan(&state.LastInterestMonth)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return state, fmt.Errorf("query interest marker: %w", err)
	}

	return state, nil
}

// ReplaceState rewrites every table from the given state in one
// transaction. Used to seed defaults and to honor a full reset.
func (r *Repository) ReplaceState(ctx context.Context, state ledger.State) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace state: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"transactions", "goals", "children"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	for _, c := range state.Children {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO children (id, name, age, balance_cents) VALUES (?, ?, ?, ?)`,
			c.ID, c.Name, c.Age, c.Balance.Cents); err != nil {
			return fmt.Errorf("insert child %s: %w", c.ID, err)
		}
	}
	for _, t := range state.Transactions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, child_id, kind, amount_cents, note, category, tx_date, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.ChildID, string(t.Kind), t.Amount.Cents, t.Note, t.Category,
			t.Date.String(), t.CreatedAt); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}
	for _, g := range state.Goals {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO goals (id, child_id, name, target_cents, current_cents, icon)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			g.ID, g.ChildID, g.Name, g.Target.Cents, g.Current.Cents, g.Icon); err != nil {
			return fmt.Errorf("insert goal %s: %w", g.ID, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO settings (id, annual_rate_percent, currency) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET annual_rate_percent = excluded.annual_rate_percent, currency = excluded.currency`,
		state.Settings.AnnualRatePercent, state.Settings.Currency); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	if state.LastInterestMonth != "" {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO interest_marker (id, month) VALUES (1, ?)
			 ON CONFLICT(id) DO UPDATE SET month = excluded.month`,
			state.LastInterestMonth); err != nil {
			return fmt.Errorf("save interest marker: %w", err)
		}
	} else if _, err := tx.ExecContext(ctx, `DELETE FROM interest_marker`); err != nil {
		return fmt.Errorf("clear interest marker: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace state: %w", err)
	}
	return nil
}

// SaveChild upserts a child row, balance included.
func (r *Repository) SaveChild(ctx context.Context, c core.Child) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO children (id, name, age, balance_cents) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, age = excluded.age, balance_cents = excluded.balance_cents`,
		c.ID, c.Name, c.Age, c.Balance.Cents)
	if err != nil {
		return fmt.Errorf("save child %s: %w", c.ID, err)
	}
	return nil
}

// InsertTransaction appends a transaction row.
func (r *Repository) InsertTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, child_id, kind, amount_cents, note, category, tx_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ChildID, string(t.Kind), t.Amount.Cents, t.Note, t.Category,
		t.Date.String(), t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction %s: %w", t.ID, err)
	}
	slog.DebugContext(ctx, "Transaction saved",
		"id", t.ID, "child_id", t.ChildID, "kind", string(t.Kind), "amount_cents", t.Amount.Cents)
	return nil
}

// UpdateTransaction rewrites the editable fields of a transaction row.
func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET amount_cents = ?, note = ?, category = ? WHERE id = ?`,
		t.Amount.Cents, t.Note, t.Category, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", t.ID, err)
	}
	return nil
}

// DeleteTransaction removes a transaction row.
func (r *Repository) DeleteTransaction(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return nil
}

// UpsertGoal writes a goal row.
func (r *Repository) UpsertGoal(ctx context.Context, g core.Goal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (id, child_id, name, target_cents, current_cents, icon)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, target_cents = excluded.target_cents,
		 current_cents = excluded.current_cents, icon = excluded.icon`,
		g.ID, g.ChildID, g.Name, g.Target.Cents, g.Current.Cents, g.Icon)
	if err != nil {
		return fmt.Errorf("upsert goal %s: %w", g.ID, err)
	}
	return nil
}

// DeleteGoal removes a goal row.
func (r *Repository) DeleteGoal(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal %s: %w", id, err)
	}
	return nil
}

// SaveSettings writes the single settings row.
func (r *Repository) SaveSettings(ctx context.Context, s core.Settings) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (id, annual_rate_percent, currency) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET annual_rate_percent = excluded.annual_rate_percent, currency = excluded.currency`,
		s.AnnualRatePercent, s.Currency)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// SetInterestMarker stores the month stamp of the last interest run.
func (r *Repository) SetInterestMarker(ctx context.Context, month string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO interest_marker (id, month) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET month = excluded.month`,
		month)
	if err != nil {
		return fmt.Errorf("set interest marker: %w", err)
	}
	return nil
}

// GetTransaction loads one transaction by ID.
func (r *Repository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	var (
		t       core.Transaction
		dateStr string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, child_id, kind, amount_cents, note, category, tx_date, created_at
		 FROM transactions WHERE id = ?`, id).
		Scan(&t.ID, &t.ChildID, &t.Kind, &t.Amount.Cents,
			&t.Note, &t.Category, &dateStr, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("query transaction: %w", err)
	}
	parsed, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", dateStr, err)
	}
	t.Date = core.DateOf(parsed)
	return t, nil
}

// GetChild loads one child by ID.
func (r *Repository) GetChild(ctx context.Context, id string) (core.Child, error) {
	var c core.Child
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, age, balance_cents FROM children WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Age, &c.Balance.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Child{}, core.ErrChildNotFound
	}
	if err != nil {
		return core.Child{}, fmt.Errorf("query child: %w", err)
	}
	return c, nil
}

// InterestMarker returns the stored month stamp, or "" when interest has
// never been applied.
func (r *Repository) InterestMarker(ctx context.Context) (string, error) {
	var month string
	err := r.db.QueryRowContext(ctx,
		`SELECT month FROM interest_marker WHERE id = 1`).Scan(&month)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query interest marker: %w", err)
	}
	return month, nil
}

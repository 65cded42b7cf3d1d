package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Deposit    TransactionKind = "deposit"
	Withdrawal TransactionKind = "withdrawal"
	// Interest is a specialization of deposit used for categorization
	// and display; it adds to the balance like a deposit does.
	Interest TransactionKind = "interest"
)

type (
	TransactionKind string

	// Date is a calendar date at day granularity. Transactions carry no
	// time-of-day.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Child struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Age     int    `json:"age"`
		Balance Money  `json:"balance"`
	}

	Transaction struct {
		ID        string          `json:"id"`
		ChildID   string          `json:"childId"`
		Kind      TransactionKind `json:"kind"`
		Amount    Money           `json:"amount"` // always positive; direction comes from Kind
		Note      string          `json:"note"`
		Category  string          `json:"category"`
		Date      Date            `json:"date"`
		CreatedAt time.Time       `json:"createdAt"`
	}

	Goal struct {
		ID      string `json:"id"`
		ChildID string `json:"childId"`
		Name    string `json:"name"`
		Target  Money  `json:"targetAmount"`
		Current Money  `json:"currentAmount"`
		Icon    string `json:"icon"`
	}

	Settings struct {
		AnnualRatePercent float64 `json:"interestRate"`
		Currency          string  `json:"currency"`
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrChildNotFound       = errors.New("child not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrGoalNotFound        = errors.New("goal not found")
	ErrUnknownCategory     = errors.New("unknown category")
	ErrUnknownKind         = errors.New("unknown transaction kind")
	ErrInvalidRate         = errors.New("invalid interest rate")
	ErrInvalidDate         = errors.New("invalid date")
)

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to day granularity.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// String renders the date as YYYY-MM-DD, the stored wire form.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns m plus other. Money is a value type; arithmetic never
// mutates in place.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

func (m Money) LessThan(other Money) bool {
	return m.Cents < other.Cents
}

func (k TransactionKind) Validate() error {
	switch k {
	case Deposit, Withdrawal, Interest:
		return nil
	default:
		return ErrUnknownKind
	}
}

// AddsToBalance reports whether transactions of this kind increase the
// child balance. Withdrawals are the only kind that decreases it.
func (k TransactionKind) AddsToBalance() bool {
	return k != Withdrawal
}

// SignedCents returns the balance effect of the transaction: positive
// for deposits and interest, negative for withdrawals.
func (t Transaction) SignedCents() int64 {
	if t.Kind.AddsToBalance() {
		return t.Amount.Cents
	}
	return -t.Amount.Cents
}

func (t Transaction) Validate() error {
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.ChildID) == "" {
		return ErrChildNotFound
	}
	if !ValidCategory(t.Kind, t.Category) {
		return ErrUnknownCategory
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return errors.New("empty goal name")
	}
	if err := g.Target.Validate(); err != nil {
		return err
	}
	if g.Current.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Complete reports whether the goal has reached its target.
func (g Goal) Complete() bool {
	return g.Current.Cents >= g.Target.Cents
}

func (s Settings) Validate() error {
	if s.AnnualRatePercent < 0 {
		return ErrInvalidRate
	}
	if strings.TrimSpace(s.Currency) == "" {
		return errors.New("empty currency code")
	}
	return nil
}

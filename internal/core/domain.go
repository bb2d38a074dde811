package core

import (
	"errors"
	"strings"
	"time"
)

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"

	PeriodMonthly BudgetPeriod = "monthly"
	PeriodAnnual  BudgetPeriod = "annual"
)

type (
	// TransactionType distinguishes money flowing into or out of an account.
	TransactionType string

	// BudgetPeriod is the reporting window a budget applies to.
	BudgetPeriod string

	// Date is a calendar date with no time component. It marshals as YYYY-MM-DD.
	Date struct {
		time.Time
	}

	Account struct {
		ID              int64     `json:"id"`
		Name            string    `json:"name"`
		Type            string    `json:"type"`
		StartingBalance Money     `json:"starting_balance"`
		CurrentBalance  Money     `json:"current_balance"`
		CreatedAt       time.Time `json:"created_at"`
	}

	Transaction struct {
		ID          int64           `json:"id"`
		AccountID   int64           `json:"account_id"`
		Date        Date            `json:"date"`
		Category    string          `json:"category"`
		Amount      Money           `json:"amount"`
		Description string          `json:"description"`
		Type        TransactionType `json:"type"`
	}

	Budget struct {
		ID       int64        `json:"id"`
		Category string       `json:"category"`
		Amount   Money        `json:"amount"`
		Period   BudgetPeriod `json:"period"`
		Year     int          `json:"year"`
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrInvalidPeriod       = errors.New("invalid budget period")
	ErrEmptyName           = errors.New("empty account name")
	ErrEmptyCategory       = errors.New("empty category")
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrBudgetNotFound      = errors.New("budget not found")
	ErrDuplicateAccount    = errors.New("account name already exists")
	ErrDuplicateBudget     = errors.New("budget already exists for category, period and year")
	ErrInvalidYear         = errors.New("invalid budget year")
	ErrDescriptionTooLong  = errors.New("description too long (max 500 characters)")
)

func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

func (p BudgetPeriod) Valid() bool {
	return p == PeriodMonthly || p == PeriodAnnual
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ISO returns the date formatted as YYYY-MM-DD, the storage and wire format.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.ISO() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Signed returns the amount as signed cents for balance arithmetic:
// positive for income, negative for expense.
func (t Transaction) Signed() int64 {
	if t.Type == TypeIncome {
		return t.Amount.Cents
	}
	return -t.Amount.Cents
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(a.Type) == "" {
		return errors.New("empty account type")
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.AccountID <= 0 {
		return ErrAccountNotFound
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if len(t.Description) > 500 {
		return ErrDescriptionTooLong
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if !b.Period.Valid() {
		return ErrInvalidPeriod
	}
	if b.Year < 1970 || b.Year > 9999 {
		return ErrInvalidYear
	}
	return nil
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the closed set of transaction kinds.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction is a single income or expense entry owned by one user.
type Transaction struct {
	Base
	UserID             string          `gorm:"type:varchar(36);not null;index:idx_transactions_user_date,priority:1" json:"userId"`
	Type               TransactionType `gorm:"type:varchar(16);not null" json:"type"`
	Amount             decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Description        string          `gorm:"not null" json:"description"`
	Date               time.Time       `gorm:"not null;index:idx_transactions_user_date,priority:2" json:"date"`
	Category           string          `gorm:"not null" json:"category"`
	IsRecurring        bool            `gorm:"not null;default:false" json:"isRecurring"`
	RecurringFrequency *string         `gorm:"type:varchar(64)" json:"recurringFrequency"`

	// CreditCycle is the number of days after Date before income is collectible.
	CreditCycle *int `json:"creditCycle"`
}

// Signed returns the amount with the sign it contributes to a balance.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

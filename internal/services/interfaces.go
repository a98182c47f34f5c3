package services

import (
	"time"

	"github.com/shopspring/decimal"

	"paisa/internal/models"
	"paisa/internal/summary"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, name string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// TransactionFilter holds the optional date bounds for listing transactions.
// Either bound may be nil; both are inclusive.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
}

// TransactionFields is the full editable field set of a transaction.
// Create and Update both take every field; Update overwrites all of them.
type TransactionFields struct {
	Type               models.TransactionType
	Amount             decimal.Decimal
	Description        string
	Date               time.Time
	Category           string
	IsRecurring        bool
	RecurringFrequency *string
	CreditCycle        *int
}

// TransactionServicer defines the contract for transaction-related business logic.
// Every call takes the authenticated owner explicitly; an empty ownerID is
// rejected with ErrUnauthorized.
type TransactionServicer interface {
	List(ownerID string, filter TransactionFilter) ([]models.Transaction, error)
	Get(ownerID, id string) (*models.Transaction, error)
	Create(ownerID string, fields TransactionFields) (*models.Transaction, error)
	Update(ownerID, id string, fields TransactionFields) (*models.Transaction, error)
	Delete(ownerID, id string) error
	Summary(ownerID string, filter TransactionFilter, now time.Time) (*summary.Summary, error)
}

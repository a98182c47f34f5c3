package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "paisa/internal/errors"
	"paisa/internal/models"
	"paisa/internal/summary"
	"paisa/internal/uuid"
)

// editableColumns is the column set an update overwrites. user_id is never in it.
var editableColumns = []string{
	"type", "amount", "description", "date", "category",
	"is_recurring", "recurring_frequency", "credit_cycle",
}

// transactionService handles transaction-related business logic.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// List returns the owner's transactions inside the optional date bounds,
// ordered by date ascending.
func (s *transactionService) List(ownerID string, filter TransactionFilter) ([]models.Transaction, error) {
	if ownerID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	q := s.db.Model(&models.Transaction{}).Where("user_id = ?", ownerID)
	q = applyTransactionFilters(q, filter)

	transactions := []models.Transaction{}
	if err := q.Order("date ASC").Order("id ASC").Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.StartDate != nil {
		q = q.Where("date >= ?", f.StartDate.UTC())
	}
	if f.EndDate != nil {
		q = q.Where("date <= ?", f.EndDate.UTC())
	}
	return q
}

// Get retrieves a single transaction owned by ownerID
func (s *transactionService) Get(ownerID, id string) (*models.Transaction, error) {
	if ownerID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	id, err := canonicalID(id)
	if err != nil {
		return nil, err
	}

	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", id, ownerID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// Create persists a new transaction for ownerID
func (s *transactionService) Create(ownerID string, fields TransactionFields) (*models.Transaction, error) {
	if ownerID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if err := validateFields(&fields); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{UserID: ownerID}
	fields.apply(transaction)

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// Update overwrites every editable field of the owner's transaction.
func (s *transactionService) Update(ownerID, id string, fields TransactionFields) (*models.Transaction, error) {
	if ownerID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if err := validateFields(&fields); err != nil {
		return nil, err
	}

	var result *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		svc := &transactionService{db: tx}
		transaction, err := svc.Get(ownerID, id)
		if err != nil {
			return err
		}

		fields.apply(transaction)
		if err := tx.Model(transaction).Select(append(editableColumns, "updated_at")).Updates(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		result = transaction
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the owner's transaction. A second delete of the same id
// reports ErrTransactionNotFound.
func (s *transactionService) Delete(ownerID, id string) error {
	if ownerID == "" {
		return apperrors.ErrUnauthorized
	}
	id, err := canonicalID(id)
	if err != nil {
		return err
	}

	res := s.db.Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Transaction{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// canonicalID lower-cases a record id. Ids that are not UUIDs can never match
// a stored record.
func canonicalID(id string) (string, error) {
	if id == "" {
		return "", apperrors.WithMessage(apperrors.ErrBadRequest, "transaction id is required")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", apperrors.ErrTransactionNotFound
	}
	return parsed, nil
}

// Summary aggregates the owner's transactions inside the filter as of now.
func (s *transactionService) Summary(ownerID string, filter TransactionFilter, now time.Time) (*summary.Summary, error) {
	transactions, err := s.List(ownerID, filter)
	if err != nil {
		return nil, err
	}
	result := summary.Compute(transactions, now)
	return &result, nil
}

// validateFields normalizes and checks the editable field set.
func validateFields(f *TransactionFields) error {
	f.Description = strings.TrimSpace(f.Description)
	f.Category = strings.TrimSpace(f.Category)
	f.Amount = f.Amount.Round(2)

	switch {
	case !f.Type.Valid():
		return apperrors.WithMessage(apperrors.ErrValidation, "type must be INCOME or EXPENSE")
	case !f.Amount.IsPositive():
		return apperrors.WithMessage(apperrors.ErrValidation, "amount must be at least 0.01")
	case f.Description == "":
		return apperrors.WithMessage(apperrors.ErrValidation, "description is required")
	case f.Category == "":
		return apperrors.WithMessage(apperrors.ErrValidation, "category is required")
	case f.Date.IsZero():
		return apperrors.WithMessage(apperrors.ErrValidation, "date is required")
	case f.CreditCycle != nil && *f.CreditCycle < 0:
		return apperrors.WithMessage(apperrors.ErrValidation, "creditCycle must not be negative")
	}

	if f.RecurringFrequency != nil && strings.TrimSpace(*f.RecurringFrequency) == "" {
		f.RecurringFrequency = nil
	}
	f.Date = f.Date.UTC()
	return nil
}

func (f TransactionFields) apply(t *models.Transaction) {
	t.Type = f.Type
	t.Amount = f.Amount
	t.Description = f.Description
	t.Date = f.Date
	t.Category = f.Category
	t.IsRecurring = f.IsRecurring
	t.RecurringFrequency = f.RecurringFrequency
	t.CreditCycle = f.CreditCycle
}

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "paisa/internal/errors"
	"paisa/internal/logger"
	"paisa/internal/models"
	"paisa/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	loc                *time.Location
	now                func() time.Time
}

// NewTransactionHandler creates a new TransactionHandler. Zone-less dates in
// requests are read in loc.
func NewTransactionHandler(transactionService services.TransactionServicer, loc *time.Location) *TransactionHandler {
	if loc == nil {
		loc = time.Local
	}
	return &TransactionHandler{transactionService: transactionService, loc: loc, now: time.Now}
}

// TransactionRequest is the editable field set of a transaction.
type TransactionRequest struct {
	Type               models.TransactionType `json:"type" binding:"required,transaction_type" example:"EXPENSE"`
	Amount             decimal.Decimal        `json:"amount" binding:"required,gt=0" swaggertype:"string" example:"499.00"`
	Description        string                 `json:"description" binding:"required,max=500" example:"Groceries"`
	Date               string                 `json:"date" binding:"required" example:"2024-05-01"`
	Category           string                 `json:"category" binding:"required,max=100" example:"Food"`
	IsRecurring        bool                   `json:"isRecurring"`
	RecurringFrequency *string                `json:"recurringFrequency" binding:"omitempty,max=64" example:"monthly"`
	CreditCycle        FlexibleInt            `json:"creditCycle" swaggertype:"integer" example:"30"`
}

// UpdateTransactionRequest carries the id of the transaction to overwrite.
type UpdateTransactionRequest struct {
	ID string `json:"id" example:"0190b5a2-7c1e-7a4b-9c1d-2f3e4a5b6c7d"`
	TransactionRequest
}

func (h *TransactionHandler) toFields(req TransactionRequest) (services.TransactionFields, error) {
	date, _, err := parseFlexibleTime(req.Date, h.loc)
	if err != nil {
		return services.TransactionFields{}, apperrors.WithMessage(apperrors.ErrValidation, err.Error())
	}
	// Amounts are stored with two fraction digits.
	if !req.Amount.Round(2).IsPositive() {
		return services.TransactionFields{}, apperrors.WithMessage(apperrors.ErrValidation, "amount must be at least 0.01")
	}
	return services.TransactionFields{
		Type:               req.Type,
		Amount:             req.Amount,
		Description:        req.Description,
		Date:               date,
		Category:           req.Category,
		IsRecurring:        req.IsRecurring,
		RecurringFrequency: req.RecurringFrequency,
		CreditCycle:        req.CreditCycle.Value,
	}, nil
}

// parseFilter reads the optional startDate and endDate query parameters.
// A bare-date endDate covers that whole day.
func (h *TransactionHandler) parseFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if raw := c.Query("startDate"); raw != "" {
		start, _, err := parseFlexibleTime(raw, h.loc)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrValidation, "startDate: "+err.Error())
		}
		filter.StartDate = &start
	}

	if raw := c.Query("endDate"); raw != "" {
		end, dateOnly, err := parseFlexibleTime(raw, h.loc)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrValidation, "endDate: "+err.Error())
		}
		if dateOnly {
			end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		filter.EndDate = &end
	}

	return filter, nil
}

// ListTransactions returns the user's transactions
// @Summary     List transactions
// @Description List the authenticated user's transactions ordered by date ascending, optionally bounded by date
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       startDate query string false "Inclusive start (YYYY-MM-DD or RFC3339)"
// @Param       endDate   query string false "Inclusive end (YYYY-MM-DD covers the whole day, or RFC3339)"
// @Success     200 {array}  models.Transaction "Transactions"
// @Failure     400 {object} ErrorResponse "Invalid date"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := h.parseFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactions, err := h.transactionService.List(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactions)
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Create a new income or expense transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TransactionRequest true "Transaction details"
// @Success     200 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	fields, err := h.toFields(req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.Create(userID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	logger.Get().Infow("transaction created",
		"user_id", userID,
		"transaction_id", transaction.ID,
		"type", transaction.Type,
	)
	c.JSON(http.StatusOK, transaction)
}

// UpdateTransaction overwrites every editable field of a transaction
// @Summary     Update a transaction
// @Description Replace all editable fields of the transaction identified by the body id
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateTransactionRequest true "Transaction id and new fields"
// @Success     200 {object} models.Transaction "Transaction updated"
// @Failure     400 {object} ErrorResponse "Missing id or invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	bindErr := c.ShouldBindJSON(&req)
	if req.ID == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrBadRequest, "id is required"))
		return
	}
	if bindErr != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, bindErr.Error()))
		return
	}

	fields, err := h.toFields(req.TransactionRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.Update(userID, req.ID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transaction)
}

// DeleteTransaction removes a transaction
// @Summary     Delete a transaction
// @Description Permanently delete the transaction with the given id
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id query string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Missing id"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Query("id")
	if id == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrBadRequest, "id is required"))
		return
	}

	if err := h.transactionService.Delete(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	logger.Get().Infow("transaction deleted", "user_id", userID, "transaction_id", id)
	c.JSON(http.StatusOK, MessageResponse{Message: "Transaction deleted successfully"})
}

// GetSummary aggregates the user's transactions
// @Summary     Transaction summary
// @Description Income, expenses, balance, balance to date and pending income computed at request time. month (YYYY-MM) takes precedence over startDate/endDate.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       startDate query string false "Inclusive start (YYYY-MM-DD or RFC3339)"
// @Param       endDate   query string false "Inclusive end (YYYY-MM-DD or RFC3339)"
// @Param       month     query string false "Calendar month (YYYY-MM)"
// @Success     200 {object} summary.Summary "Summary"
// @Failure     400 {object} ErrorResponse "Invalid date"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/summary [get]
func (h *TransactionHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var filter services.TransactionFilter
	if month := c.Query("month"); month != "" {
		start, parseErr := time.ParseInLocation("2006-01", month, h.loc)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, fmt.Sprintf("invalid month %q: use YYYY-MM", month)))
			return
		}
		end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
		filter = services.TransactionFilter{StartDate: &start, EndDate: &end}
	} else {
		filter, err = h.parseFilter(c)
		if err != nil {
			respondWithError(c, err)
			return
		}
	}

	result, err := h.transactionService.Summary(userID, filter, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

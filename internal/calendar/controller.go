package calendar

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"paisa/internal/logger"
	"paisa/internal/models"
	"paisa/internal/summary"
)

// State is the interaction state of the calendar.
type State int

const (
	// StateIdle has nothing selected.
	StateIdle State = iota
	// StateDaySummary lists the transactions of the selected day.
	StateDaySummary
	// StateEditing holds a form for a new or existing transaction.
	StateEditing
)

func (s State) String() string {
	switch s {
	case StateDaySummary:
		return "day-summary"
	case StateEditing:
		return "editing"
	default:
		return "idle"
	}
}

// Controller errors.
var (
	ErrNotEditing         = errors.New("calendar: no transaction form is open")
	ErrNothingToDelete    = errors.New("calendar: only an existing transaction can be deleted")
	ErrNotInSummary       = errors.New("calendar: no day summary is open")
	ErrUnknownTransaction = errors.New("calendar: transaction is not loaded")
)

// Backend is the transaction store the calendar talks to.
type Backend interface {
	List(ctx context.Context) ([]models.Transaction, error)
	Create(ctx context.Context, tx models.Transaction) (*models.Transaction, error)
	Update(ctx context.Context, tx models.Transaction) (*models.Transaction, error)
	Delete(ctx context.Context, id string) error
}

// Controller is the calendar state machine. It is not safe for concurrent
// use; every action runs to completion before the next one.
type Controller struct {
	backend Backend
	loc     *time.Location
	log     *zap.SugaredLogger
	now     func() time.Time

	transactions []models.Transaction

	state       State
	selectedDay time.Time
	dayTxs      []models.Transaction
	// editing is the transaction being edited; nil while creating.
	editing *models.Transaction
	draft   models.Transaction
}

// NewController creates an idle controller. Calendar days are evaluated in loc.
func NewController(backend Backend, loc *time.Location) *Controller {
	if loc == nil {
		loc = time.Local
	}
	return &Controller{
		backend: backend,
		loc:     loc,
		log:     logger.Named("calendar"),
		now:     time.Now,
	}
}

// Refresh reloads the full transaction list. On failure the previous list is kept.
func (c *Controller) Refresh(ctx context.Context) error {
	txs, err := c.backend.List(ctx)
	if err != nil {
		c.log.Warnw("failed to fetch transactions", "error", err)
		return err
	}
	c.transactions = txs
	return nil
}

// ClickDate selects a calendar day. A day with transactions opens its
// summary; an empty day opens a blank form dated on it.
func (c *Controller) ClickDate(day time.Time) {
	c.reset()
	c.selectedDay = DayOf(day, c.loc)

	c.dayTxs = TransactionsOn(c.transactions, c.selectedDay, c.loc)
	if len(c.dayTxs) > 0 {
		c.state = StateDaySummary
		return
	}
	c.openBlank()
}

// ClickEvent opens the form for a loaded transaction, bypassing the day summary.
func (c *Controller) ClickEvent(id string) error {
	tx, ok := find(c.transactions, id)
	if !ok {
		return ErrUnknownTransaction
	}
	c.reset()
	c.selectedDay = DayOf(tx.Date, c.loc)
	c.openExisting(tx)
	return nil
}

// EditFromSummary opens the form for one of the summarized day's transactions.
func (c *Controller) EditFromSummary(id string) error {
	if c.state != StateDaySummary {
		return ErrNotInSummary
	}
	tx, ok := find(c.dayTxs, id)
	if !ok {
		return ErrUnknownTransaction
	}
	c.dayTxs = nil
	c.openExisting(tx)
	return nil
}

// CreateFromSummary opens a blank form for the summarized day.
func (c *Controller) CreateFromSummary() error {
	if c.state != StateDaySummary {
		return ErrNotInSummary
	}
	c.dayTxs = nil
	c.openBlank()
	return nil
}

// Save submits form: Update when editing an existing transaction, Create
// otherwise. On success the list is reloaded and the controller goes idle.
// On failure nothing changes.
func (c *Controller) Save(ctx context.Context, form models.Transaction) error {
	if c.state != StateEditing {
		return ErrNotEditing
	}

	var err error
	if c.editing != nil {
		form.ID = c.editing.ID
		_, err = c.backend.Update(ctx, form)
	} else {
		form.ID = ""
		_, err = c.backend.Create(ctx, form)
	}
	if err != nil {
		c.log.Warnw("failed to save transaction", "id", form.ID, "error", err)
		return err
	}

	_ = c.Refresh(ctx)
	c.reset()
	return nil
}

// Delete removes the transaction being edited. It is only available when an
// existing transaction is open.
func (c *Controller) Delete(ctx context.Context) error {
	if c.state != StateEditing || c.editing == nil {
		return ErrNothingToDelete
	}

	id := c.editing.ID
	if err := c.backend.Delete(ctx, id); err != nil {
		c.log.Warnw("failed to delete transaction", "id", id, "error", err)
		return err
	}

	_ = c.Refresh(ctx)
	c.reset()
	return nil
}

// Cancel discards any open summary or form.
func (c *Controller) Cancel() {
	c.reset()
}

// State returns the current interaction state.
func (c *Controller) State() State { return c.state }

// SelectedDay returns the selected day, if any.
func (c *Controller) SelectedDay() (time.Time, bool) {
	return c.selectedDay, c.state != StateIdle
}

// Selected returns the transaction being edited, or nil when idle or creating.
func (c *Controller) Selected() *models.Transaction {
	if c.editing == nil {
		return nil
	}
	tx := *c.editing
	return &tx
}

// Draft returns the form's initial values.
func (c *Controller) Draft() models.Transaction { return c.draft }

// DayTransactions returns the summarized day's transactions.
func (c *Controller) DayTransactions() []models.Transaction {
	return append([]models.Transaction(nil), c.dayTxs...)
}

// Transactions returns the loaded transaction list.
func (c *Controller) Transactions() []models.Transaction {
	return append([]models.Transaction(nil), c.transactions...)
}

// Location returns the zone calendar days are evaluated in.
func (c *Controller) Location() *time.Location { return c.loc }

// Summary aggregates the loaded transactions as of now.
func (c *Controller) Summary() summary.Summary {
	return summary.Compute(c.transactions, c.now())
}

func (c *Controller) openBlank() {
	c.state = StateEditing
	c.editing = nil
	c.draft = models.Transaction{
		Type: models.TransactionTypeExpense,
		Date: c.selectedDay,
	}
}

func (c *Controller) openExisting(tx models.Transaction) {
	c.state = StateEditing
	c.editing = &tx
	c.draft = tx
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.selectedDay = time.Time{}
	c.dayTxs = nil
	c.editing = nil
	c.draft = models.Transaction{}
}

func find(txs []models.Transaction, id string) (models.Transaction, bool) {
	for _, t := range txs {
		if t.ID == id {
			return t, true
		}
	}
	return models.Transaction{}, false
}

// Package client provides an HTTP client for the Paisa transactions API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"paisa/internal/calendar"
	apperrors "paisa/internal/errors"
	"paisa/internal/models"
	"paisa/internal/summary"
)

var _ calendar.Backend = (*Client)(nil)

// Client communicates with the Paisa API on behalf of one user.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new API client. Call Login or SetToken before any
// transaction call.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// SetToken sets the bearer access token sent with every request.
func (c *Client) SetToken(token string) {
	c.token = token
}

// transactionPayload is the request body of create and update.
type transactionPayload struct {
	ID                 string                 `json:"id,omitempty"`
	Type               models.TransactionType `json:"type"`
	Amount             decimal.Decimal        `json:"amount"`
	Description        string                 `json:"description"`
	Date               string                 `json:"date"`
	Category           string                 `json:"category"`
	IsRecurring        bool                   `json:"isRecurring"`
	RecurringFrequency *string                `json:"recurringFrequency"`
	CreditCycle        *int                   `json:"creditCycle"`
}

func toPayload(tx models.Transaction) transactionPayload {
	return transactionPayload{
		ID:                 tx.ID,
		Type:               tx.Type,
		Amount:             tx.Amount,
		Description:        tx.Description,
		Date:               tx.Date.Format(time.RFC3339Nano),
		Category:           tx.Category,
		IsRecurring:        tx.IsRecurring,
		RecurringFrequency: tx.RecurringFrequency,
		CreditCycle:        tx.CreditCycle,
	}
}

// Login authenticates and keeps the access token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", body, &result); err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	c.token = result.AccessToken
	return nil
}

// List fetches all of the user's transactions.
func (c *Client) List(ctx context.Context) ([]models.Transaction, error) {
	return c.ListRange(ctx, nil, nil)
}

// ListRange fetches the user's transactions between the optional bounds.
func (c *Client) ListRange(ctx context.Context, start, end *time.Time) ([]models.Transaction, error) {
	q := url.Values{}
	if start != nil {
		q.Set("startDate", start.Format(time.RFC3339Nano))
	}
	if end != nil {
		q.Set("endDate", end.Format(time.RFC3339Nano))
	}

	path := "/api/v1/transactions"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var result []models.Transaction
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, fmt.Errorf("fetching transactions: %w", err)
	}
	if result == nil {
		result = []models.Transaction{}
	}
	return result, nil
}

// Create stores a new transaction. tx.ID is ignored.
func (c *Client) Create(ctx context.Context, tx models.Transaction) (*models.Transaction, error) {
	payload := toPayload(tx)
	payload.ID = ""

	var result models.Transaction
	if err := c.do(ctx, http.MethodPost, "/api/v1/transactions", payload, &result); err != nil {
		return nil, fmt.Errorf("creating transaction: %w", err)
	}
	return &result, nil
}

// Update overwrites the transaction identified by tx.ID.
func (c *Client) Update(ctx context.Context, tx models.Transaction) (*models.Transaction, error) {
	var result models.Transaction
	if err := c.do(ctx, http.MethodPut, "/api/v1/transactions", toPayload(tx), &result); err != nil {
		return nil, fmt.Errorf("updating transaction: %w", err)
	}
	return &result, nil
}

// Delete removes the transaction with the given id.
func (c *Client) Delete(ctx context.Context, id string) error {
	path := "/api/v1/transactions?" + url.Values{"id": {id}}.Encode()
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}
	return nil
}

// Summary fetches the server-side aggregates, optionally for one month (YYYY-MM).
func (c *Client) Summary(ctx context.Context, month string) (*summary.Summary, error) {
	path := "/api/v1/transactions/summary"
	if month != "" {
		path += "?" + url.Values{"month": {month}}.Encode()
	}

	var result summary.Summary
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, fmt.Errorf("fetching summary: %w", err)
	}
	return &result, nil
}

// do sends a JSON request and decodes a 2xx response into out. Error
// responses are returned as *errors.AppError carrying the server's code.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var envelope struct {
		Error apperrors.AppError `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Error.Code == "" {
		return &apperrors.AppError{
			Code:       "HTTP_ERROR",
			Message:    fmt.Sprintf("unexpected status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}
	appErr := envelope.Error
	appErr.StatusCode = resp.StatusCode
	return &appErr
}

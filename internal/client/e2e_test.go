package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"paisa/internal/calendar"
	"paisa/internal/client"
	"paisa/internal/config"
	apperrors "paisa/internal/errors"
	"paisa/internal/handlers"
	"paisa/internal/logger"
	"paisa/internal/middleware"
	"paisa/internal/models"
	"paisa/internal/services"
	"paisa/internal/testutil"
	"paisa/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	config.Set(&config.Config{
		Env:              "test",
		JWTSecret:        "e2e-secret",
		JWTExpirationDur: 15 * time.Minute,
		JWTRefreshExpDur: time.Hour,
	})
	validator.Register()
}

// startServer runs the full API over an isolated in-memory database.
func startServer(t *testing.T) *httptest.Server {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	userService := services.NewUserService(db)
	transactionService := services.NewTransactionService(db)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	handlers.RegisterRoutes(router.Group("/api/v1"),
		handlers.NewAuthHandler(userService),
		handlers.NewTransactionHandler(transactionService, time.UTC),
	)
	router.NoRoute(handlers.NotFound)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

// newUser registers a user through the API and returns a logged-in client.
func newUser(t *testing.T, server *httptest.Server, email string) *client.Client {
	t.Helper()

	body := `{"email":"` + email + `","password":"password123","name":"Test"}`
	resp, err := server.Client().Post(server.URL+"/api/v1/auth/register", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register failed with %d", resp.StatusCode)
	}

	c := client.NewClient(server.URL, server.Client())
	if err := c.Login(context.Background(), email, "password123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	return c
}

func expense(amount string, date time.Time) models.Transaction {
	return models.Transaction{
		Type:        models.TransactionTypeExpense,
		Amount:      decimal.RequireFromString(amount),
		Description: "Groceries",
		Category:    "Food",
		Date:        date,
	}
}

func TestE2E_Unauthenticated(t *testing.T) {
	server := startServer(t)
	c := client.NewClient(server.URL, server.Client())

	_, err := c.List(context.Background())
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestE2E_RoundTrip(t *testing.T) {
	server := startServer(t)
	c := newUser(t, server, "round@test.com")
	ctx := context.Background()

	freq := "monthly"
	cycle := 30
	fields := models.Transaction{
		Type:               models.TransactionTypeIncome,
		Amount:             decimal.RequireFromString("1250.75"),
		Description:        "Consulting",
		Category:           "Work",
		Date:               time.Date(2024, 5, 3, 10, 30, 0, 0, time.UTC),
		IsRecurring:        true,
		RecurringFrequency: &freq,
		CreditCycle:        &cycle,
	}
	created, err := c.Create(ctx, fields)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected assigned id")
	}

	list, err := c.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(list))
	}
	got := list[0]
	if got.ID != created.ID || got.Type != fields.Type || !got.Amount.Equal(fields.Amount) ||
		got.Description != fields.Description || got.Category != fields.Category ||
		!got.Date.Equal(fields.Date) || !got.IsRecurring ||
		got.RecurringFrequency == nil || *got.RecurringFrequency != freq ||
		got.CreditCycle == nil || *got.CreditCycle != cycle {
		t.Errorf("round trip mismatch:\nsent %+v\ngot  %+v", fields, got)
	}
}

func TestE2E_ListDateRange(t *testing.T) {
	server := startServer(t)
	c := newUser(t, server, "range@test.com")
	ctx := context.Background()

	for _, d := range []int{1, 15, 28} {
		if _, err := c.Create(ctx, expense("10", time.Date(2024, 2, d, 12, 0, 0, 0, time.UTC))); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	start := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC)
	list, err := c.ListRange(ctx, &start, &end)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Date.Day() != 15 || list[1].Date.Day() != 28 {
		t.Errorf("expected the 15th and 28th in order, got %+v", list)
	}
}

func TestE2E_Aggregates(t *testing.T) {
	server := startServer(t)
	c := newUser(t, server, "agg@test.com")
	ctx := context.Background()
	now := time.Now()

	base, err := c.Summary(ctx, "")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	// Income today counts toward balance to date immediately.
	income := models.Transaction{
		Type: models.TransactionTypeIncome, Amount: decimal.NewFromInt(1000),
		Description: "Salary", Category: "Work", Date: now.Add(-time.Minute),
	}
	if _, err := c.Create(ctx, income); err != nil {
		t.Fatalf("create income: %v", err)
	}
	afterIncome, err := c.Summary(ctx, "")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !afterIncome.BalanceToDate.Sub(base.BalanceToDate).Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected balanceToDate +1000, got %s", afterIncome.BalanceToDate)
	}
	if !afterIncome.PendingIncome.Equal(base.PendingIncome) {
		t.Errorf("expected pendingIncome unchanged, got %s", afterIncome.PendingIncome)
	}

	// An expense dated tomorrow lowers balance only.
	if _, err := c.Create(ctx, expense("500", now.AddDate(0, 0, 1))); err != nil {
		t.Fatalf("create expense: %v", err)
	}
	afterExpense, err := c.Summary(ctx, "")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !afterIncome.Balance.Sub(afterExpense.Balance).Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected balance -500, got %s -> %s", afterIncome.Balance, afterExpense.Balance)
	}
	if !afterExpense.BalanceToDate.Equal(afterIncome.BalanceToDate) {
		t.Errorf("expected balanceToDate unchanged, got %s", afterExpense.BalanceToDate)
	}
	if !afterExpense.PendingIncome.Equal(afterIncome.PendingIncome) {
		t.Errorf("expected pendingIncome unchanged, got %s", afterExpense.PendingIncome)
	}
}

func TestE2E_UpdateRecomputes(t *testing.T) {
	server := startServer(t)
	c := newUser(t, server, "update@test.com")
	ctx := context.Background()

	created, err := c.Create(ctx, expense("100", time.Now().Add(-time.Hour)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	changed := *created
	changed.Amount = decimal.NewFromInt(200)
	if _, err := c.Update(ctx, changed); err != nil {
		t.Fatalf("update: %v", err)
	}

	list, err := c.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || !list[0].Amount.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected amount 200, got %+v", list)
	}
	sum, err := c.Summary(ctx, "")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !sum.Expenses.Equal(decimal.NewFromInt(200)) || !sum.Balance.Equal(decimal.NewFromInt(-200)) {
		t.Errorf("expected aggregates from 200, got %+v", sum)
	}
}

func TestE2E_DeleteTwice(t *testing.T) {
	server := startServer(t)
	c := newUser(t, server, "delete@test.com")
	ctx := context.Background()

	created, err := c.Create(ctx, expense("10", time.Now()))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := c.Delete(ctx, created.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := c.Delete(ctx, created.ID); !errors.Is(err, apperrors.ErrTransactionNotFound) {
		t.Fatalf("expected TRANSACTION_NOT_FOUND on second delete, got %v", err)
	}
}

func TestE2E_OwnerIsolation(t *testing.T) {
	server := startServer(t)
	alice := newUser(t, server, "alice@test.com")
	bob := newUser(t, server, "bob@test.com")
	ctx := context.Background()

	created, err := alice.Create(ctx, expense("75", time.Now()))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if list, _ := bob.List(ctx); len(list) != 0 {
		t.Errorf("bob should not see alice's transactions, got %d", len(list))
	}

	hijack := *created
	hijack.Amount = decimal.NewFromInt(1)
	if _, err := bob.Update(ctx, hijack); !errors.Is(err, apperrors.ErrTransactionNotFound) {
		t.Errorf("expected NotFound for bob's update, got %v", err)
	}
	if err := bob.Delete(ctx, created.ID); !errors.Is(err, apperrors.ErrTransactionNotFound) {
		t.Errorf("expected NotFound for bob's delete, got %v", err)
	}

	list, err := alice.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || !list[0].Amount.Equal(decimal.NewFromInt(75)) {
		t.Errorf("alice's record should be untouched, got %+v", list)
	}
}

func TestE2E_CalendarController(t *testing.T) {
	server := startServer(t)
	c := newUser(t, server, "calendar@test.com")
	ctx := context.Background()

	day := time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC)
	for _, h := range []int{8, 20} {
		if _, err := c.Create(ctx, expense("30", day.Add(time.Duration(h)*time.Hour))); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := c.Create(ctx, expense("99", day.AddDate(0, 0, 1).Add(9*time.Hour))); err != nil {
		t.Fatalf("create: %v", err)
	}

	ctrl := calendar.NewController(c, time.UTC)
	if err := ctrl.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	ctrl.ClickDate(day)
	if ctrl.State() != calendar.StateDaySummary || len(ctrl.DayTransactions()) != 2 {
		t.Fatalf("expected summary of 2, got %s with %d", ctrl.State(), len(ctrl.DayTransactions()))
	}

	// Create a new transaction on an empty day.
	ctrl.ClickDate(day.AddDate(0, 0, 10))
	if ctrl.State() != calendar.StateEditing {
		t.Fatalf("expected blank form, got %s", ctrl.State())
	}
	form := ctrl.Draft()
	form.Type = models.TransactionTypeIncome
	form.Amount = decimal.NewFromInt(5000)
	form.Description = "Bonus"
	form.Category = "Work"
	if err := ctrl.Save(ctx, form); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(ctrl.Transactions()) != 4 || ctrl.State() != calendar.StateIdle {
		t.Fatalf("expected 4 transactions and idle, got %d %s", len(ctrl.Transactions()), ctrl.State())
	}

	// Edit then delete the bonus.
	var bonusID string
	for _, tx := range ctrl.Transactions() {
		if tx.Description == "Bonus" {
			bonusID = tx.ID
		}
	}
	if err := ctrl.ClickEvent(bonusID); err != nil {
		t.Fatalf("click event: %v", err)
	}
	edit := ctrl.Draft()
	edit.Amount = decimal.NewFromInt(6000)
	if err := ctrl.Save(ctx, edit); err != nil {
		t.Fatalf("save edit: %v", err)
	}
	if !ctrl.Summary().Income.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("expected income 6000, got %s", ctrl.Summary().Income)
	}

	if err := ctrl.ClickEvent(bonusID); err != nil {
		t.Fatalf("click event: %v", err)
	}
	if err := ctrl.Delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(ctrl.Transactions()) != 3 {
		t.Errorf("expected 3 transactions after delete, got %d", len(ctrl.Transactions()))
	}

	// A rejected save keeps the form open.
	ctrl.ClickDate(day.AddDate(0, 0, 20))
	if err := ctrl.Save(ctx, ctrl.Draft()); err == nil {
		t.Fatal("expected validation error for an empty form")
	}
	if ctrl.State() != calendar.StateEditing {
		t.Errorf("expected form to stay open, got %s", ctrl.State())
	}
}

func TestE2E_RefreshRotation(t *testing.T) {
	server := startServer(t)
	body := `{"email":"rotate@test.com","password":"password123"}`
	resp, err := server.Client().Post(server.URL+"/api/v1/auth/register", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	var tokens struct {
		RefreshToken string `json:"refresh_token"`
	}
	decodeJSON(t, resp, &tokens)

	refresh := func(token string) int {
		resp, err := server.Client().Post(server.URL+"/api/v1/auth/refresh", "application/json",
			strings.NewReader(`{"refresh_token":"`+token+`"}`))
		if err != nil {
			t.Fatalf("refresh: %v", err)
		}
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	if code := refresh(tokens.RefreshToken); code != http.StatusOK {
		t.Fatalf("expected 200 on first refresh, got %d", code)
	}
	if code := refresh(tokens.RefreshToken); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on reused refresh token, got %d", code)
	}
}

func TestE2E_UnknownRoute(t *testing.T) {
	server := startServer(t)

	resp, err := server.Client().Get(server.URL + "/api/v1/budgets")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decodeJSON(t, resp, &body)
	if resp.StatusCode != http.StatusNotFound || body.Error.Code != "NOT_FOUND" {
		t.Errorf("expected 404 NOT_FOUND, got %d %q", resp.StatusCode, body.Error.Code)
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"paisa/internal/calendar"
	"paisa/internal/client"
	"paisa/internal/config"
	"paisa/internal/logger"
	"paisa/internal/models"
	"paisa/internal/summary"

	"github.com/shopspring/decimal"
)

const usage = `usage: calendar <command> [args]

commands:
  month [YYYY-MM]                                  show the month grid (default: current month)
  events [YYYY-MM]                                 list the month's calendar events with colours
  day YYYY-MM-DD                                   list a day's transactions
  add YYYY-MM-DD INCOME|EXPENSE AMOUNT CATEGORY DESCRIPTION...
  edit ID AMOUNT [DESCRIPTION...]
  delete ID`

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(os.Args[1:]); err != nil {
		logger.Get().Fatalf("calendar: %v", err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%s", usage)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	loc := cfg.Location()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout*4)
	defer cancel()

	api := client.NewClient(cfg.APIURL, &http.Client{Timeout: cfg.RequestTimeout})
	if err := api.Login(ctx, cfg.APIEmail, cfg.APIPassword); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	ctrl := calendar.NewController(api, loc)
	if err := ctrl.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	now := time.Now().In(loc)
	switch args[0] {
	case "month":
		year, month, err := parseMonth(args[1:], now, loc)
		if err != nil {
			return err
		}
		return calendar.RenderMonth(os.Stdout, year, month, ctrl.Transactions(), loc, now)

	case "events":
		year, month, err := parseMonth(args[1:], now, loc)
		if err != nil {
			return err
		}
		for _, e := range calendar.Events(summary.InMonth(ctrl.Transactions(), year, month, loc), loc) {
			fmt.Printf("%s  %s  %s  %s\n", e.Date.Format("2006-01-02"), e.Color, e.Transaction.ID, e.Title)
		}
		return nil

	case "day":
		if len(args) < 2 {
			return fmt.Errorf("%s", usage)
		}
		day, err := parseDay(args[1], loc)
		if err != nil {
			return err
		}
		ctrl.ClickDate(day)
		if ctrl.State() == calendar.StateEditing {
			fmt.Printf("%s: no transactions\n", day.Format("Mon 02 Jan 2006"))
			return nil
		}
		return calendar.RenderDay(os.Stdout, day, ctrl.Transactions(), loc)

	case "add":
		if len(args) < 6 {
			return fmt.Errorf("%s", usage)
		}
		day, err := parseDay(args[1], loc)
		if err != nil {
			return err
		}
		amount, err := decimal.NewFromString(args[3])
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[3])
		}

		ctrl.ClickDate(day)
		if ctrl.State() == calendar.StateDaySummary {
			if err := ctrl.CreateFromSummary(); err != nil {
				return err
			}
		}
		form := ctrl.Draft()
		form.Type = models.TransactionType(strings.ToUpper(args[2]))
		form.Amount = amount
		form.Category = args[4]
		form.Description = strings.Join(args[5:], " ")
		if err := ctrl.Save(ctx, form); err != nil {
			return fmt.Errorf("save failed: %w", err)
		}
		return calendar.RenderDay(os.Stdout, day, ctrl.Transactions(), loc)

	case "edit":
		if len(args) < 3 {
			return fmt.Errorf("%s", usage)
		}
		amount, err := decimal.NewFromString(args[2])
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[2])
		}
		if err := ctrl.ClickEvent(args[1]); err != nil {
			return err
		}
		form := ctrl.Draft()
		form.Amount = amount
		if len(args) > 3 {
			form.Description = strings.Join(args[3:], " ")
		}
		if err := ctrl.Save(ctx, form); err != nil {
			return fmt.Errorf("save failed: %w", err)
		}
		return calendar.RenderDay(os.Stdout, form.Date, ctrl.Transactions(), loc)

	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("%s", usage)
		}
		if err := ctrl.ClickEvent(args[1]); err != nil {
			return err
		}
		if err := ctrl.Delete(ctx); err != nil {
			return fmt.Errorf("delete failed: %w", err)
		}
		fmt.Printf("deleted %s\n", args[1])
		return nil

	default:
		return fmt.Errorf("unknown command: %s\n%s", args[0], usage)
	}
}

func parseDay(s string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
	}
	return day, nil
}

// parseMonth reads an optional YYYY-MM argument, defaulting to now's month.
func parseMonth(args []string, now time.Time, loc *time.Location) (int, time.Month, error) {
	if len(args) == 0 {
		return now.Year(), now.Month(), nil
	}
	t, err := time.ParseInLocation("2006-01", args[0], loc)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q (use YYYY-MM)", args[0])
	}
	return t.Year(), t.Month(), nil
}

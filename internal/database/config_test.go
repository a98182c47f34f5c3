package database

import (
	"strings"
	"testing"

	"paisa/internal/config"
)

func TestNewConfig(t *testing.T) {
	t.Run("postgres", func(t *testing.T) {
		c, err := NewConfig(&config.Config{
			DBDriver: "postgres", DBHost: "db", DBPort: "5432", DBUser: "u",
			DBPassword: "p", DBName: "paisa", DBSSLMode: "disable",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got, want := c.DSN(), "host=db port=5432 user=u password=p dbname=paisa sslmode=disable"; got != want {
			t.Errorf("DSN() = %q, want %q", got, want)
		}
		if got, want := c.MigrateURL(), "postgres://u:p@db:5432/paisa?sslmode=disable"; got != want {
			t.Errorf("MigrateURL() = %q, want %q", got, want)
		}
		if got, want := c.MigrationsDir(), "migrations/postgres"; got != want {
			t.Errorf("MigrationsDir() = %q, want %q", got, want)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		c, err := NewConfig(&config.Config{DBDriver: "sqlite", SQLitePath: "/tmp/paisa.db"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(c.DSN(), "/tmp/paisa.db") {
			t.Errorf("DSN() = %q, want sqlite path prefix", c.DSN())
		}
		if got, want := c.MigrateURL(), "sqlite3:///tmp/paisa.db"; got != want {
			t.Errorf("MigrateURL() = %q, want %q", got, want)
		}
	})

	t.Run("unknown_driver", func(t *testing.T) {
		if _, err := NewConfig(&config.Config{DBDriver: "mysql"}); err == nil {
			t.Fatal("expected error for unsupported driver")
		}
	})
}

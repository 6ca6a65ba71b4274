package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/alanyoungcy/ocobot/internal/domain"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  ClientConfig
		want string
	}{
		{
			name: "explicit dsn wins",
			cfg:  ClientConfig{DSN: "postgres://u@h/db", Host: "ignored"},
			want: "postgres://u@h/db",
		},
		{
			name: "defaults port and sslmode",
			cfg:  ClientConfig{Host: "db", Database: "bot", User: "u", Password: "p"},
			want: "postgres://u:p@db:5432/bot?sslmode=disable",
		},
		{
			name: "custom port and sslmode",
			cfg:  ClientConfig{Host: "db", Port: 6543, Database: "bot", User: "u", Password: "p", SSLMode: "require"},
			want: "postgres://u:p@db:6543/bot?sslmode=require",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DSN(tt.cfg); got != tt.want {
				t.Fatalf("DSN = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppendListOpts(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	query, args := appendListOpts("SELECT * FROM runs WHERE 1=1", nil, "finished_at",
		domain.ListOpts{Since: &since, Limit: 20, Offset: 40})

	want := "SELECT * FROM runs WHERE 1=1 AND finished_at >= $1 ORDER BY finished_at DESC LIMIT $2 OFFSET $3"
	if query != want {
		t.Fatalf("query = %q\nwant    %q", query, want)
	}
	if len(args) != 3 || args[1] != 20 || args[2] != 40 {
		t.Fatalf("args = %v", args)
	}
}

func TestAppendListOpts_KeepsExistingArgs(t *testing.T) {
	query, args := appendListOpts("SELECT * FROM orders WHERE symbol = $1", []any{"BTCUSDT"}, "created_at",
		domain.ListOpts{Limit: 5})
	if !strings.HasSuffix(query, "LIMIT $2") {
		t.Fatalf("query = %q", query)
	}
	if len(args) != 2 {
		t.Fatalf("args = %v", args)
	}
}

func TestMigrationFiles(t *testing.T) {
	names, err := migrationFiles()
	if err != nil {
		t.Fatalf("migrationFiles: %v", err)
	}
	if len(names) == 0 || names[0] != "001_init.sql" {
		t.Fatalf("names = %v", names)
	}
	data, err := migrationsFS.ReadFile("migrations/" + names[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, table := range []string{"runs", "orders", "audit_log"} {
		if !strings.Contains(string(data), "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Errorf("migration does not create %s", table)
		}
	}
}

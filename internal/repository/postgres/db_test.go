package postgres

import (
	"testing"

	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/config"
)

func TestNewDB_KeepsFirstConnectError(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:     "127.0.0.1",
		Port:     "1",
		User:     "postgres",
		Password: "postgres",
		DBName:   "novaware",
		SSLMode:  "disable",
	}

	for i := 0; i < 2; i++ {
		db, err := NewDB(cfg)
		if err == nil {
			t.Fatalf("Call %d: expected a connect error, got nil", i+1)
		}
		if db != nil {
			t.Errorf("Call %d: expected no pool after a failed connect", i+1)
		}
	}
}

func TestDSN(t *testing.T) {
	got := DSN(&config.DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n", SSLMode: "disable"})
	want := "host=db port=5432 user=u password=p dbname=n sslmode=disable"
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

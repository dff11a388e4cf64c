//go:build integration

package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/dzoniops/booking-service/db"
)

var (
	pgOnce sync.Once
	pgDB   *gorm.DB
	pgErr  error
)

func init() {
	stores["gorm-postgres"] = newPostgresStore
}

// startPostgres runs one container for the whole package; the testcontainers
// reaper removes it when the test binary exits.
func startPostgres() (*gorm.DB, error) {
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:15",
		ExposedPorts: []string{"5432/tcp"},
		AutoRemove:   true,
		Env: map[string]string{
			"POSTGRES_USER":     "booking",
			"POSTGRES_PASSWORD": "booking",
			"POSTGRES_DB":       "booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute),
	}
	postgres, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, err
	}
	host, err := postgres.Host(ctx)
	if err != nil {
		return nil, err
	}
	port, err := postgres.MappedPort(ctx, nat.Port("5432/tcp"))
	if err != nil {
		return nil, err
	}
	gdb, err := db.Open(db.Options{
		Driver: db.DriverPostgres,
		DSN:    db.PostgresDSN(host, port.Port(), "booking", "booking", "booking"),
	})
	if err != nil {
		return nil, err
	}
	return gdb, db.Migrate(gdb)
}

func newPostgresStore(t *testing.T) Store {
	t.Helper()
	pgOnce.Do(func() { pgDB, pgErr = startPostgres() })
	require.NoError(t, pgErr)
	require.NoError(t, pgDB.Exec(
		"TRUNCATE booking_nights, bookings, listing_availability, properties",
	).Error)
	return NewGormStore(pgDB, 5*time.Second)
}

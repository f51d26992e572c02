package helpers

import (
	"context"
	"fmt"
	"os"
	"time"

	"jobboard_backend/database"

	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

// TestDatabaseURLEnv - готовая база вместо контейнера (CI с сервисом postgres)
const TestDatabaseURLEnv = "TEST_DATABASE_URL"

// PGContainer владеет контейнером postgres. Пустой, если база пришла из окружения.
type PGContainer struct {
	C *postgres.PostgresContainer
}

// StartPostgres поднимает postgres:16-alpine или берет DSN из TEST_DATABASE_URL
func StartPostgres(ctx context.Context) (*PGContainer, string, error) {
	if dsn := os.Getenv(TestDatabaseURLEnv); dsn != "" {
		return &PGContainer{}, dsn, nil
	}

	pgC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("jobboard_test"),
		postgres.WithUsername("jobboard"),
		postgres.WithPassword("jobboard"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, "", fmt.Errorf("start postgres container: %w", err)
	}

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgC.Terminate(ctx)
		return nil, "", fmt.Errorf("resolve connection string: %w", err)
	}
	return &PGContainer{C: pgC}, dsn, nil
}

func (p *PGContainer) Terminate(ctx context.Context) error {
	if p == nil || p.C == nil {
		return nil
	}
	return p.C.Terminate(ctx)
}

// ConnectAndMigrate ждет готовности базы и применяет встроенные миграции
func ConnectAndMigrate(ctx context.Context, dsn string) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	for attempt := 0; attempt < 30; attempt++ {
		db, err = database.Connect(dsn)
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("database not ready: %w", err)
	}

	if err := database.RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

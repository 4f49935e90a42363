package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/mirelabalan/fanvault/internal/settlement/domain"
	"github.com/mirelabalan/fanvault/internal/shared/infrastructure/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.RunSQLiteMigrations(context.Background(), db))
	return db
}

func TestSQLiteProcessedPaymentRepository_MarkProcessed(t *testing.T) {
	repo := NewSQLiteProcessedPaymentRepository(setupTestDB(t))
	ctx := context.Background()

	payment := domain.ProcessedPayment{
		PaymentID:   "pay_001",
		UserID:      42,
		Kind:        domain.PaymentContent,
		ProcessedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	fresh, err := repo.MarkProcessed(ctx, payment)
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = repo.MarkProcessed(ctx, payment)
	require.NoError(t, err)
	assert.False(t, fresh, "replaying the same payment id is detected")

	other := payment
	other.PaymentID = "pay_002"
	other.Kind = domain.PaymentSubscription

	fresh, err = repo.MarkProcessed(ctx, other)
	require.NoError(t, err)
	assert.True(t, fresh, "a different payment id settles normally")
}

package composables_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/levels/pkg/composables"
	"github.com/iota-uz/levels/pkg/constants"
)

type noopTx struct{}

func (noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("not implemented")
}

func TestUseTx_ReturnsContextTransaction(t *testing.T) {
	tx := noopTx{}
	ctx := context.WithValue(context.Background(), constants.TxKey, tx)

	got, err := composables.UseTx(ctx)
	require.NoError(t, err)
	require.Equal(t, tx, got)
}

func TestUseTx_NoTxNoPool(t *testing.T) {
	_, err := composables.UseTx(context.Background())
	require.ErrorIs(t, err, composables.ErrNoPool)
}

func TestInTxOrCurrent_JoinsAmbientTransaction(t *testing.T) {
	ctx := context.WithValue(context.Background(), constants.TxKey, noopTx{})

	called := false
	err := composables.InTxOrCurrent(ctx, func(inner context.Context) error {
		called = true
		// The ambient transaction stays in place, nothing new is opened.
		tx, err := composables.UseTx(inner)
		require.NoError(t, err)
		require.Equal(t, noopTx{}, tx)
		return nil
	})
	require.NoError(t, err)
	require.True(t, called)
}

func TestInTxOrCurrent_NeedsPoolWithoutAmbientTransaction(t *testing.T) {
	err := composables.InTxOrCurrent(context.Background(), func(context.Context) error {
		t.Fatal("must not run without a transaction")
		return nil
	})
	require.ErrorIs(t, err, composables.ErrNoPool)
}

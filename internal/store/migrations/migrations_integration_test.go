//go:build integration

package migrations_test

import (
	"context"
	"testing"

	"github.com/serroba/frwrd/internal/store/migrations"
	"github.com/serroba/frwrd/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUp(t *testing.T) {
	ctx := context.Background()
	env := testutils.Postgres(t)

	t.Run("applied schema is a no-op", func(t *testing.T) {
		require.NoError(t, migrations.Up(env.PostgresDSN, zap.NewNop()))
	})

	t.Run("dirty schema is refused and left dirty", func(t *testing.T) {
		_, err := env.Pool.Exec(ctx, `UPDATE schema_migrations SET dirty = true`)
		require.NoError(t, err)

		err = migrations.Up(env.PostgresDSN, zap.NewNop())
		require.ErrorIs(t, err, migrations.ErrDirty)

		var dirty bool
		require.NoError(t, env.Pool.QueryRow(ctx, `SELECT dirty FROM schema_migrations`).Scan(&dirty))
		assert.True(t, dirty)
	})
}

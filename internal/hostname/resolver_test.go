package hostname_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/serroba/frwrd/internal/hostname"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func staticLookup(names []string, err error) hostname.LookupFunc {
	return func(context.Context, string) ([]string, error) {
		return names, err
	}
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("trims the trailing dot", func(t *testing.T) {
		r := hostname.NewResolverWithLookup(staticLookup([]string{"host.example.com."}, nil), time.Second, zap.NewNop())

		assert.Equal(t, "host.example.com", r.Resolve(ctx, "1.2.3.4"))
	})

	t.Run("lookup failure is unknown", func(t *testing.T) {
		r := hostname.NewResolverWithLookup(staticLookup(nil, errors.New("no such host")), time.Second, zap.NewNop())

		assert.Equal(t, hostname.Unknown, r.Resolve(ctx, "1.2.3.4"))
	})

	t.Run("empty answer is unknown", func(t *testing.T) {
		r := hostname.NewResolverWithLookup(staticLookup([]string{"."}, nil), time.Second, zap.NewNop())

		assert.Equal(t, hostname.Unknown, r.Resolve(ctx, "1.2.3.4"))
	})

	t.Run("invalid ip is unknown without a lookup", func(t *testing.T) {
		called := false
		r := hostname.NewResolverWithLookup(func(context.Context, string) ([]string, error) {
			called = true

			return []string{"x."}, nil
		}, time.Second, zap.NewNop())

		assert.Equal(t, hostname.Unknown, r.Resolve(ctx, "not-an-ip"))
		assert.False(t, called)
	})

	t.Run("slow lookups are cut off", func(t *testing.T) {
		r := hostname.NewResolverWithLookup(func(ctx context.Context, _ string) ([]string, error) {
			<-ctx.Done()

			return nil, ctx.Err()
		}, 20*time.Millisecond, zap.NewNop())

		start := time.Now()

		assert.Equal(t, hostname.Unknown, r.Resolve(ctx, "1.2.3.4"))
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestIsIPLiteral(t *testing.T) {
	assert.True(t, hostname.IsIPLiteral("1.2.3.4"))
	assert.True(t, hostname.IsIPLiteral("::1"))
	assert.False(t, hostname.IsIPLiteral("example.com"))
	assert.False(t, hostname.IsIPLiteral(""))
	assert.True(t, hostname.IsIPLiteral("1.2.3.4:80"))
	assert.True(t, hostname.IsIPLiteral("[::1]:8080"))
	assert.False(t, hostname.IsIPLiteral("localhost:8080"))
}

package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricelens/skumatch/config"
	"github.com/pricelens/skumatch/internal/domain"
	"github.com/pricelens/skumatch/internal/similarity"
)

func TestNormalizers(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		n, cached, err := Normalizers(config.NormalizerConfig{Locale: "es", ExtraStopwords: []string{"sabor"}})
		require.NoError(t, err)
		assert.Equal(t, "brdy donpedro 200ml", n.Normalize("Brandy DON PEDRO 200ml"))
		assert.Equal(t, "brdy donpedro 200ml", cached.Normalize("Brandy DON PEDRO 200ml"))
		assert.Equal(t, 1, cached.Len())
	})

	t.Run("rule file extends the tables", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		rules := "abbreviations:\n  - name: coca-cola\n    pattern: '(\\s|^)coca cola(\\s|$)'\n    replace: '${1}cocacola${2}'\n"
		require.NoError(t, os.WriteFile(path, []byte(rules), 0o644))

		n, _, err := Normalizers(config.NormalizerConfig{RulesFile: path})
		require.NoError(t, err)
		assert.Equal(t, "cocacola 600ml", n.Normalize("Coca Cola 600 ml"))
	})

	t.Run("missing rule file", func(t *testing.T) {
		_, _, err := Normalizers(config.NormalizerConfig{RulesFile: filepath.Join(t.TempDir(), "nope.yaml")})
		assert.ErrorIs(t, err, domain.ErrInvalidFile)
	})
}

func TestMatcher(t *testing.T) {
	m := Matcher(config.MatchingConfig{
		DiceWeight:          0.3,
		UnitPenalty:         0.1,
		ReshapeDecay:        2,
		ConfidenceThreshold: 0.6,
		Tokenizer:           "char",
	}, zerolog.Nop())

	assert.Equal(t, 0.6, m.Threshold())
	assert.Equal(t, similarity.Params{DiceWeight: 0.3, UnitPenalty: 0.1, ReshapeDecay: 2, Tokenizer: similarity.Chars}, m.Scorer().Params())
}

func TestCache(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		c, closer, err := Cache(ctx, config.CacheConfig{Driver: "memory"})
		require.NoError(t, err)
		defer closer.Close()
		require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		c, closer, err := Cache(ctx, config.CacheConfig{Driver: "redis", RedisAddr: mr.Addr(), KeyPrefix: "t:"})
		require.NoError(t, err)
		defer closer.Close()

		require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
		assert.True(t, mr.Exists("t:k"))
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, _, err := Cache(ctx, config.CacheConfig{Driver: "memcached"})
		assert.Error(t, err)
	})
}

func TestStore(t *testing.T) {
	s, err := Store(context.Background(), config.StorageConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "m.db")})
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

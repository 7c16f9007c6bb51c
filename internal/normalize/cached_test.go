package normalize

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingNormalizer struct {
	mu    sync.Mutex
	calls int
}

func (c *countingNormalizer) Normalize(raw string) string {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return strings.ToLower(raw)
}

func TestCachedNormalizer(t *testing.T) {
	t.Run("memoizes by raw name", func(t *testing.T) {
		inner := &countingNormalizer{}
		c, err := NewCached(inner, 10)
		require.NoError(t, err)

		assert.Equal(t, "coca cola", c.Normalize("Coca Cola"))
		assert.Equal(t, "coca cola", c.Normalize("Coca Cola"))
		assert.Equal(t, 1, inner.calls)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		inner := &countingNormalizer{}
		c, err := NewCached(inner, 2)
		require.NoError(t, err)

		c.Normalize("A")
		c.Normalize("B")
		c.Normalize("C")
		assert.Equal(t, 2, c.Len())

		c.Normalize("A")
		assert.Equal(t, 4, inner.calls)
	})

	t.Run("purge empties the cache", func(t *testing.T) {
		c, err := NewCached(&countingNormalizer{}, 0)
		require.NoError(t, err)
		c.Normalize("A")
		c.Purge()
		assert.Equal(t, 0, c.Len())
	})

	t.Run("matches the wrapped normalizer", func(t *testing.T) {
		n := New(Options{})
		c, err := NewCached(n, 100)
		require.NoError(t, err)

		raw := "Brandy Domecq Don Pedro 200 ml Presentación"
		assert.Equal(t, n.Normalize(raw), c.Normalize(raw))
	})

	t.Run("safe for concurrent use", func(t *testing.T) {
		c, err := NewCached(New(Options{}), 100)
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					assert.Equal(t, "coca cola 600ml", c.Normalize("Refresco Coca Cola 600 ml"))
				}
			}()
		}
		wg.Wait()
	})
}

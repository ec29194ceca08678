package youtube

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialPool_RotateWrapsAround(t *testing.T) {
	pool, err := NewCredentialPool([]string{"a", "b", "c"})
	require.NoError(t, err)

	idx, key := pool.Current()
	assert.Equal(t, 0, idx)
	assert.Equal(t, "a", key)

	assert.Equal(t, 1, pool.Rotate(0))
	assert.Equal(t, 2, pool.Rotate(1))
	assert.Equal(t, 0, pool.Rotate(2))

	_, key = pool.Current()
	assert.Equal(t, "a", key)
}

func TestCredentialPool_StaleRotateIsNoop(t *testing.T) {
	pool, err := NewCredentialPool([]string{"a", "b", "c"})
	require.NoError(t, err)

	pool.Rotate(0)
	// a second caller that also observed index 0 must not skip key b
	assert.Equal(t, 1, pool.Rotate(0))

	_, key := pool.Current()
	assert.Equal(t, "b", key)
}

func TestCredentialPool_ConcurrentRotationsAdvanceOnce(t *testing.T) {
	pool, err := NewCredentialPool([]string{"a", "b", "c", "d"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Rotate(0)
		}()
	}
	wg.Wait()

	idx, _ := pool.Current()
	assert.Equal(t, 1, idx)
}

func TestNewCredentialPool_Empty(t *testing.T) {
	_, err := NewCredentialPool(nil)
	assert.ErrorIs(t, err, errNoCredentials)
}

func TestCredentialPool_CopiesKeys(t *testing.T) {
	keys := []string{"a", "b"}
	pool, err := NewCredentialPool(keys)
	require.NoError(t, err)

	keys[0] = "mutated"
	_, key := pool.Current()
	assert.Equal(t, "a", key)
}

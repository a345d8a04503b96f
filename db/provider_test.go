package db

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func providers(t *testing.T) map[string]IterableProvider {
	t.Helper()
	level, err := NewLevelDBProvider(filepath.Join(t.TempDir(), "level"))
	require.NoError(t, err)
	bolt, err := NewBoltProvider(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)

	out := map[string]IterableProvider{
		"memory":  NewMemoryProvider(),
		"leveldb": level.(IterableProvider),
		"bolt":    bolt,
	}
	t.Cleanup(func() {
		for _, p := range out {
			_ = p.Close()
		}
	})
	return out
}

func TestProviderBasics(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			v, err := p.Get([]byte("missing"))
			require.NoError(t, err)
			assert.Nil(t, v)

			require.NoError(t, p.Put([]byte("a"), []byte("1")))
			v, err = p.Get([]byte("a"))
			require.NoError(t, err)
			assert.Equal(t, []byte("1"), v)

			ok, err := p.Has([]byte("a"))
			require.NoError(t, err)
			assert.True(t, ok)

			got, err := p.GetBatch([][]byte{[]byte("a"), []byte("missing")})
			require.NoError(t, err)
			assert.Equal(t, map[string][]byte{"a": []byte("1")}, got)

			require.NoError(t, p.Delete([]byte("a")))
			ok, err = p.Has([]byte("a"))
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestProviderIteratePrefix(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, p.Put([]byte("account:b"), []byte("2")))
			require.NoError(t, p.Put([]byte("account:a"), []byte("1")))
			require.NoError(t, p.Put([]byte("other:c"), []byte("3")))

			var keys []string
			require.NoError(t, p.IteratePrefix([]byte("account:"), func(k, v []byte) bool {
				keys = append(keys, string(k))
				return true
			}))
			assert.Equal(t, []string{"account:a", "account:b"}, keys)

			keys = nil
			require.NoError(t, p.IteratePrefix([]byte("account:"), func(k, v []byte) bool {
				keys = append(keys, string(k))
				return false
			}))
			assert.Len(t, keys, 1)
		})
	}
}

func TestBatchCommitAndReset(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			b := p.Batch()
			b.Put([]byte("x"), []byte("1"))
			b.Reset()
			b.Put([]byte("y"), []byte("2"))
			require.NoError(t, b.Write())
			b.Close()

			ok, err := p.Has([]byte("x"))
			require.NoError(t, err)
			assert.False(t, ok, "reset ops must not be written")
			v, err := p.Get([]byte("y"))
			require.NoError(t, err)
			assert.Equal(t, []byte("2"), v)
		})
	}
}

func TestWithBatchDiscardsOnError(t *testing.T) {
	p := NewMemoryProvider()
	tm := NewDBTxManager(p)
	boom := errors.New("boom")

	err := tm.WithBatch(func(b DatabaseBatch) error {
		b.Put([]byte("k"), []byte("v"))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	ok, _ := p.Has([]byte("k"))
	assert.False(t, ok)

	require.NoError(t, tm.WithBatch(func(b DatabaseBatch) error {
		b.Put([]byte("k"), []byte("v"))
		return nil
	}))
	ok, _ = p.Has([]byte("k"))
	assert.True(t, ok)
}

func TestMemoryProviderCopiesValues(t *testing.T) {
	p := NewMemoryProvider()
	val := []byte("abc")
	require.NoError(t, p.Put([]byte("k"), val))
	val[0] = 'z'

	got, err := p.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	require.NoError(t, p.Put([]byte("empty"), nil))
	ok, err := p.Has([]byte("empty"))
	require.NoError(t, err)
	assert.True(t, ok)
}

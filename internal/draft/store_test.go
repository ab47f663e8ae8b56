package draft

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type params struct {
	DiscountPercent float64  `yaml:"discount_percent"`
	TaxRate         *float64 `yaml:"tax_rate,omitempty"`
}

func TestStore_SaveLoadClear(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "drafts"))
	key := Key("printjob", 7)
	assert.Equal(t, "printjob-7", key)

	var got params
	ok, err := s.Load(key, &got)
	require.NoError(t, err)
	assert.False(t, ok)

	tax := 0.1
	require.NoError(t, s.Save(key, params{DiscountPercent: 15, TaxRate: &tax}))

	ok, err = s.Load(key, &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 15.0, got.DiscountPercent)
	require.NotNil(t, got.TaxRate)
	assert.Equal(t, 0.1, *got.TaxRate)

	require.NoError(t, s.Clear(key))
	require.NoError(t, s.Clear(key))

	ok, err = s.Load(key, &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_RejectsPathKeys(t *testing.T) {
	s := NewStore(t.TempDir())
	for _, key := range []string{"", "../escape", "a/b", ".hidden"} {
		assert.ErrorIs(t, s.Save(key, params{}), ErrInvalidKey, key)
	}
}

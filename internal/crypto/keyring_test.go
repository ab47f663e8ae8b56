package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyring_SetGetDelete(t *testing.T) {
	keyring.MockInit()
	t.Setenv(EnvKey, "")
	k := NewKeyring()

	_, err := k.GetKey()
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, k.SetKey("hunter2"))
	got, err := k.GetKey()
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)
	assert.True(t, k.IsAvailable())

	require.NoError(t, k.DeleteKey())
	assert.ErrorIs(t, k.DeleteKey(), ErrKeyNotFound)
}

func TestKeyring_EnvironmentWins(t *testing.T) {
	keyring.MockInit()
	t.Setenv(EnvKey, "from-env")
	k := NewKeyring()

	require.NoError(t, k.SetKey("stored"))
	got, err := k.GetKey()
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)
}

func TestKeyring_EmptyPassword(t *testing.T) {
	keyring.MockInit()
	assert.Error(t, NewKeyring().SetKey(""))
}

package credential

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProviderCreateIsIdempotent(t *testing.T) {
	p := NewLocalProvider()

	first, err := p.CreateCredential(context.Background(), "new@acme.test", "hunter2secret")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := p.CreateCredential(context.Background(), "new@acme.test", "hunter2secret")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLocalProviderRejectsMismatchedPassword(t *testing.T) {
	p := NewLocalProvider()

	_, err := p.CreateCredential(context.Background(), "new@acme.test", "hunter2secret")
	require.NoError(t, err)

	_, err = p.CreateCredential(context.Background(), "new@acme.test", "different-secret")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLocalProviderGetCredential(t *testing.T) {
	p := NewLocalProvider()

	id, err := p.CreateCredential(context.Background(), "new@acme.test", "hunter2secret")
	require.NoError(t, err)

	profile, err := p.GetCredential(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, profile.ID)
	assert.Equal(t, "new@acme.test", profile.Email)

	_, err = p.GetCredential(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

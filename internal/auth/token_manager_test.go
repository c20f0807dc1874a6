package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// fakeTokenSource issues tokens from a queue and counts refreshes.
type fakeTokenSource struct {
	tokens []*oauth2.Token
	err    error
	calls  int
}

func (f *fakeTokenSource) Token() (*oauth2.Token, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.tokens) == 0 {
		return nil, errors.New("no tokens queued")
	}
	token := f.tokens[0]
	if len(f.tokens) > 1 {
		f.tokens = f.tokens[1:]
	}
	return token, nil
}

func validToken(access string) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  access,
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(time.Hour),
	}
}

func TestTokenReturnsCachedTokenWhileValid(t *testing.T) {
	source := &fakeTokenSource{}
	manager := NewManager(source, validToken("access-1"), zap.NewNop())

	first, err := manager.Token()
	require.NoError(t, err)
	second, err := manager.Token()
	require.NoError(t, err)

	assert.Equal(t, "access-1", first.AccessToken)
	assert.Equal(t, "access-1", second.AccessToken)
	// Both calls were served from cache
	assert.Equal(t, 0, source.calls)
}

func TestTokenRefreshesExpiredToken(t *testing.T) {
	expired := &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(-time.Hour),
	}
	source := &fakeTokenSource{tokens: []*oauth2.Token{validToken("access-2")}}
	manager := NewManager(source, expired, zap.NewNop())

	token, err := manager.Token()

	require.NoError(t, err)
	assert.Equal(t, "access-2", token.AccessToken)
	assert.Equal(t, 1, source.calls)
}

func TestTokenPreservesRefreshTokenWhenProviderOmitsIt(t *testing.T) {
	expired := &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "keep-me",
		Expiry:       time.Now().Add(-time.Hour),
	}
	fresh := &oauth2.Token{
		AccessToken: "access-3",
		Expiry:      time.Now().Add(time.Hour),
	}
	source := &fakeTokenSource{tokens: []*oauth2.Token{fresh}}
	manager := NewManager(source, expired, zap.NewNop())

	token, err := manager.Token()

	require.NoError(t, err)
	assert.Equal(t, "keep-me", token.RefreshToken)
}

func TestTokenFiresOnRefreshCallback(t *testing.T) {
	source := &fakeTokenSource{tokens: []*oauth2.Token{validToken("access-4")}}
	manager := NewManager(source, nil, zap.NewNop())

	var persisted *oauth2.Token
	manager.OnRefresh(func(token *oauth2.Token) {
		persisted = token
	})

	_, err := manager.Token()

	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "access-4", persisted.AccessToken)
}

func TestInvalidateForcesRefreshOnNextUse(t *testing.T) {
	source := &fakeTokenSource{tokens: []*oauth2.Token{validToken("access-5")}}
	manager := NewManager(source, validToken("access-old"), zap.NewNop())

	manager.Invalidate()

	token, err := manager.Token()

	require.NoError(t, err)
	assert.Equal(t, "access-5", token.AccessToken)
	assert.Equal(t, 1, source.calls)
}

func TestTokenPropagatesRefreshFailure(t *testing.T) {
	source := &fakeTokenSource{err: errors.New("provider rejected refresh")}
	manager := NewManager(source, nil, zap.NewNop())

	_, err := manager.Token()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to refresh credential")
}

func TestTokenReturnsCopies(t *testing.T) {
	manager := NewManager(&fakeTokenSource{}, validToken("access-6"), zap.NewNop())

	token, err := manager.Token()
	require.NoError(t, err)

	// Mutating the returned token must not affect the held credential
	token.AccessToken = "tampered"

	held := manager.Credential()
	require.NotNil(t, held)
	assert.Equal(t, "access-6", held.AccessToken)
}

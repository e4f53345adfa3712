package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/bindassticks/storefront/pkg/config"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyPair struct {
	private jwk.Key
	set     jwk.Set
}

func newKeyPair(t *testing.T) keyPair {
	t.Helper()
	raw, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	private, err := jwk.Import(raw)
	require.NoError(t, err)
	require.NoError(t, private.Set(jwk.KeyIDKey, "test-kid"))
	require.NoError(t, private.Set(jwk.AlgorithmKey, jwa.RS256()))
	public, err := jwk.PublicKeyOf(private)
	require.NoError(t, err)
	set := jwk.NewSet()
	require.NoError(t, set.AddKey(public))
	return keyPair{private: private, set: set}
}

func (k keyPair) sign(t *testing.T, issuer, audience string) string {
	t.Helper()
	token, err := jwt.NewBuilder().
		Subject("admin-1").
		Issuer(issuer).
		Audience([]string{audience}).
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(time.Hour)).
		Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.RS256(), k.private))
	require.NoError(t, err)
	return string(signed)
}

func idpConfig() config.IdP {
	return config.IdP{
		JwksURL:     "https://idp.test/jwks",
		Issuer:      "https://securetoken.google.com/bindas",
		Audience:    "bindas",
		MinInterval: time.Minute,
	}
}

func TestJWTVerifier_Verify(t *testing.T) {
	keys := newKeyPair(t)
	fetches := 0
	v, err := newJWTVerifier(context.Background(), idpConfig(), func(context.Context, string) (jwk.Set, error) {
		fetches++
		return keys.set, nil
	})
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		token, err := v.Verify(context.Background(), keys.sign(t, "https://securetoken.google.com/bindas", "bindas"))
		require.NoError(t, err)
		sub, ok := token.Subject()
		assert.True(t, ok)
		assert.Equal(t, "admin-1", sub)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := v.Verify(context.Background(), keys.sign(t, "https://evil.test", "bindas"))
		assert.Error(t, err)
	})

	t.Run("wrong audience", func(t *testing.T) {
		_, err := v.Verify(context.Background(), keys.sign(t, "https://securetoken.google.com/bindas", "other"))
		assert.Error(t, err)
	})

	t.Run("signed by another key", func(t *testing.T) {
		other := newKeyPair(t)
		_, err := v.Verify(context.Background(), other.sign(t, "https://securetoken.google.com/bindas", "bindas"))
		assert.Error(t, err)
	})

	assert.Equal(t, 1, fetches, "key set should be cached within min interval")
}

func TestJWTVerifier_InitialFetchFails(t *testing.T) {
	_, err := newJWTVerifier(context.Background(), idpConfig(), func(context.Context, string) (jwk.Set, error) {
		return nil, errors.New("connection refused")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial JWKS fetch failed")
}

func TestJWTVerifier_RefreshFailureKeepsCachedSet(t *testing.T) {
	keys := newKeyPair(t)
	fail := false
	cfg := idpConfig()
	cfg.MinInterval = time.Nanosecond
	v, err := newJWTVerifier(context.Background(), cfg, func(context.Context, string) (jwk.Set, error) {
		if fail {
			return nil, errors.New("jwks unavailable")
		}
		return keys.set, nil
	})
	require.NoError(t, err)
	fail = true
	time.Sleep(time.Millisecond)

	_, err = v.Verify(context.Background(), keys.sign(t, cfg.Issuer, cfg.Audience))

	assert.NoError(t, err)
}

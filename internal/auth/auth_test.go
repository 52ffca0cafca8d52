package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/internal/store"
	"github.com/parleychat/parley/internal/store/memstore"
)

func newTestService() *Service {
	return NewService(memstore.New(), NewSigner([]byte("test-secret"), time.Hour))
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pw")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pw", hash)

	require.True(t, CheckPassword("s3cret-pw", hash))
	require.False(t, CheckPassword("wrong", hash))
}

func TestSignAndVerify(t *testing.T) {
	signer := NewSigner([]byte("test-secret"), time.Hour)

	token, err := signer.Sign("u1", "alice")
	require.NoError(t, err)

	claims, err := signer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.UserID)
	require.Equal(t, "alice", claims.Username)
}

func TestVerifyRejectsTampered(t *testing.T) {
	signer := NewSigner([]byte("test-secret"), time.Hour)

	token, err := signer.Sign("u1", "alice")
	require.NoError(t, err)

	_, err = signer.Verify(token + "x")
	require.ErrorIs(t, err, ErrBadToken)

	// Signed with a different secret.
	other := NewSigner([]byte("other-secret"), time.Hour)
	foreign, err := other.Sign("u1", "alice")
	require.NoError(t, err)
	_, err = signer.Verify(foreign)
	require.ErrorIs(t, err, ErrBadToken)

	_, err = signer.Verify("not-a-jwt")
	require.ErrorIs(t, err, ErrBadToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	signer := NewSigner([]byte("test-secret"), -time.Minute)

	token, err := signer.Sign("u1", "alice")
	require.NoError(t, err)

	_, err = signer.Verify(token)
	require.ErrorIs(t, err, ErrBadToken)
}

func TestRegister(t *testing.T) {
	svc := newTestService()

	session, err := svc.Register("alice", "password1")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	require.NotEmpty(t, session.UserID)
	require.Equal(t, "alice", session.Username)

	claims, err := svc.VerifyToken(session.Token)
	require.NoError(t, err)
	require.Equal(t, session.UserID, claims.UserID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService()

	_, err := svc.Register("alice", "password1")
	require.NoError(t, err)

	_, err = svc.Register("alice", "password2")
	require.ErrorIs(t, err, store.ErrUsernameTaken)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"empty username", "", "password1"},
		{"short username", "ab", "password1"},
		{"empty password", "alice", ""},
		{"oversized password", "alice", strings.Repeat("x", 73)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(tt.username, tt.password)
			require.Error(t, err)
		})
	}
}

func TestRegisterAcceptsShortPassword(t *testing.T) {
	svc := newTestService()

	// No minimum password length: "pw1" is a valid credential.
	session, err := svc.Register("alice", "pw1")
	require.NoError(t, err)

	login, err := svc.Login("alice", "pw1")
	require.NoError(t, err)
	require.Equal(t, session.UserID, login.UserID)
}

func TestLogin(t *testing.T) {
	svc := newTestService()
	reg, err := svc.Register("alice", "password1")
	require.NoError(t, err)

	session, err := svc.Login("alice", "password1")
	require.NoError(t, err)
	require.Equal(t, reg.UserID, session.UserID)

	_, err = svc.Login("alice", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown username yields the same error as a wrong password.
	_, err = svc.Login("nobody", "password1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

package password

import (
	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"line-auth/app/server/errs"
	"testing"
)

var fastArgon2 = &argon2id.Params{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func TestHashAndVerify(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"argon2id", Options{Algorithm: Argon2id, Argon2: fastArgon2}},
		{"bcrypt", Options{Algorithm: Bcrypt, BcryptCost: bcrypt.MinCost}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := New(tt.opts)
			require.NoError(t, err)

			hash, err := h.Hash("Secret123")
			require.NoError(t, err)
			assert.NotEqual(t, "Secret123", hash)

			ok, err := h.Verify("Secret123", hash)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = h.Verify("secret123", hash)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestVerifyAcceptsHashFromOtherAlgorithm(t *testing.T) {
	bcryptHasher, err := New(Options{Algorithm: Bcrypt, BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	argonHasher, err := New(Options{Algorithm: Argon2id, Argon2: fastArgon2})
	require.NoError(t, err)

	legacy, err := bcryptHasher.Hash("123456")
	require.NoError(t, err)

	ok, err := argonHasher.Verify("123456", legacy)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyRejectsUnknownFormat(t *testing.T) {
	h, err := New(Options{Algorithm: Argon2id, Argon2: fastArgon2})
	require.NoError(t, err)

	ok, err := h.Verify("123456", "123456")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNewRejectsBadOptions(t *testing.T) {
	_, err := New(Options{Algorithm: "md5"})
	assert.Error(t, err)

	_, err = New(Options{Algorithm: Bcrypt, BcryptCost: 99})
	assert.Error(t, err)
}

func TestCheckPolicy(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
	}{
		{"short1", false},
		{"nouppercase1", false},
		{"NOLOWERCASE1", false},
		{"NoDigitsHere", false},
		{"Abcdefg1", true},
		{"密码Abcdef1", true},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := CheckPolicy(tt.password)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, errs.ErrWeakPassword)
			}
		})
	}
}

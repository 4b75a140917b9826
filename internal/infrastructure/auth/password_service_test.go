package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordService_HashAndVerify(t *testing.T) {
	svc, err := NewPasswordService(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := svc.Hash("Password123!")
	require.NoError(t, err)
	assert.NotEqual(t, "Password123!", hash)

	assert.True(t, svc.Verify(hash, "Password123!"))
	assert.False(t, svc.Verify(hash, "password123!"))
	assert.False(t, svc.Verify(hash, ""))
}

func TestPasswordService_HashesDiffer(t *testing.T) {
	svc, err := NewPasswordService(bcrypt.MinCost)
	require.NoError(t, err)

	h1, err := svc.Hash("same-password")
	require.NoError(t, err)
	h2, err := svc.Hash("same-password")
	require.NoError(t, err)

	// Salted: identical inputs never produce identical digests.
	assert.NotEqual(t, h1, h2)
	assert.True(t, svc.Verify(h1, "same-password"))
	assert.True(t, svc.Verify(h2, "same-password"))
}

func TestPasswordService_InvalidCost(t *testing.T) {
	tests := []struct {
		name    string
		cost    int
		wantErr bool
	}{
		{name: "zero uses default", cost: 0, wantErr: false},
		{name: "minimum", cost: bcrypt.MinCost, wantErr: false},
		{name: "too low", cost: 1, wantErr: true},
		{name: "too high", cost: bcrypt.MaxCost + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPasswordService(tt.cost)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPasswordService_VerifyGarbageDigest(t *testing.T) {
	svc, err := NewPasswordService(bcrypt.MinCost)
	require.NoError(t, err)

	// A corrupted stored digest must fail verification, not panic or error.
	assert.False(t, svc.Verify("not-a-bcrypt-digest", "anything"))
}

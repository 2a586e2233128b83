package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Sunroof22")
	require.NoError(t, err)
	assert.NotEqual(t, "Sunroof22", hash)

	assert.True(t, VerifyPassword("Sunroof22", hash))
	assert.False(t, VerifyPassword("sunroof22", hash))
	assert.False(t, VerifyPassword("", hash))
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Targa911x", false},
		{"too short", "Ab1", true},
		{"no uppercase", "garagequeen1", true},
		{"no lowercase", "GARAGEQUEEN1", true},
		{"no digit", "GarageQueen", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePasswordStrength(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("ops@example.com"))
	assert.True(t, IsValidEmail("  photo.lead@studio.co "))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("@missing.local"))
	assert.False(t, IsValidEmail(""))
}

func TestGenerateAndValidateToken(t *testing.T) {
	session := UserSession{
		ID:    "7a9d8f6e-1111-2222-3333-444455556666",
		Name:  "Archive Admin",
		Email: "admin@example.com",
		Role:  "admin",
	}

	token, err := GenerateToken(session)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, claims.User.ID)
	assert.Equal(t, session.Email, claims.User.Email)
	assert.True(t, claims.User.IsAdmin())
	assert.True(t, claims.User.CanEdit())
	assert.NotEmpty(t, claims.RegisteredClaims.ID)

	_, err = ValidateToken(token + "tampered")
	assert.Error(t, err)
}

func TestViewerCannotEdit(t *testing.T) {
	viewer := UserSession{Role: "viewer"}
	assert.False(t, viewer.IsAdmin())
	assert.False(t, viewer.CanEdit())

	editor := UserSession{Role: "editor"}
	assert.False(t, editor.IsAdmin())
	assert.True(t, editor.CanEdit())
}

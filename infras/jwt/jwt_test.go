package jwt_test

import (
	"roomsense/config"
	"roomsense/infras/jwt"
	"testing"
	"time"

	goJwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-access-secret"

func sign(t *testing.T, method goJwt.SigningMethod, secret string, claims jwt.Claims) string {
	t.Helper()

	token, err := goJwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	return token
}

func validClaims() jwt.Claims {
	now := time.Now()

	return jwt.Claims{
		UserID:  "user-1",
		Email:   "ana@example.com",
		Role:    "admin",
		TokenID: "token-1",
		Type:    jwt.AccessToken,
		RegisteredClaims: goJwt.RegisteredClaims{
			Issuer:    "identity",
			IssuedAt:  goJwt.NewNumericDate(now),
			ExpiresAt: goJwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestValidateToken(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.AccessSecret = testSecret
	cfg.JWT.Issuer = "identity"

	service := jwt.New(cfg)

	expired := validClaims()
	expired.ExpiresAt = goJwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongType := validClaims()
	wrongType.Type = "refresh"

	subjectOnly := validClaims()
	subjectOnly.UserID = ""
	subjectOnly.Subject = "user-from-sub"

	noEmail := validClaims()
	noEmail.Email = ""

	otherIssuer := validClaims()
	otherIssuer.Issuer = "someone-else"

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name       string
		token      string
		wantErr    error
		wantUserID string
	}{
		{
			name:       "valid token",
			token:      sign(t, goJwt.SigningMethodHS256, testSecret, validClaims()),
			wantUserID: "user-1",
		},
		{
			name:       "user id falls back to subject",
			token:      sign(t, goJwt.SigningMethodHS256, testSecret, subjectOnly),
			wantUserID: "user-from-sub",
		},
		{
			name:    "expired token",
			token:   sign(t, goJwt.SigningMethodHS256, testSecret, expired),
			wantErr: jwt.ErrExpiredToken,
		},
		{
			name:    "wrong secret",
			token:   sign(t, goJwt.SigningMethodHS256, "another-secret", validClaims()),
			wantErr: jwt.ErrInvalidToken,
		},
		{
			name:    "unexpected signing method",
			token:   sign(t, goJwt.SigningMethodHS512, testSecret, validClaims()),
			wantErr: jwt.ErrInvalidToken,
		},
		{
			name:    "wrong issuer",
			token:   sign(t, goJwt.SigningMethodHS256, testSecret, otherIssuer),
			wantErr: jwt.ErrInvalidToken,
		},
		{
			name:    "missing expiry",
			token:   sign(t, goJwt.SigningMethodHS256, testSecret, noExpiry),
			wantErr: jwt.ErrInvalidToken,
		},
		{
			name:    "wrong token type",
			token:   sign(t, goJwt.SigningMethodHS256, testSecret, wrongType),
			wantErr: jwt.ErrInvalidClaim,
		},
		{
			name:    "missing email",
			token:   sign(t, goJwt.SigningMethodHS256, testSecret, noEmail),
			wantErr: jwt.ErrInvalidClaim,
		},
		{
			name:    "garbage",
			token:   "not-a-token",
			wantErr: jwt.ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateToken(tt.token, jwt.AccessToken)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantUserID, claims.UserID)
		})
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	token, err := jwt.ExtractTokenFromHeader("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = jwt.ExtractTokenFromHeader("bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = jwt.ExtractTokenFromHeader("")
	assert.Error(t, err)

	_, err = jwt.ExtractTokenFromHeader("Basic dXNlcjpwYXNz")
	assert.Error(t, err)

	_, err = jwt.ExtractTokenFromHeader("Bearer ")
	assert.Error(t, err)
}

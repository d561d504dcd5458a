package jwt

//go:generate go run go.uber.org/mock/mockgen -source=./jwt.go -destination=./mocks/jwt_mock.go -package=mocks

import (
	"errors"
	"fmt"
	"roomsense/config"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidClaim = errors.New("invalid token claim")

	errMissingHeader = errors.New("authorization header is required")
	errNotBearer     = errors.New("authorization header must use the Bearer scheme")
)

type TokenType string

const AccessToken TokenType = "access"

const bearerScheme = "bearer"

// Claims carries the caller identity asserted by the external issuer. The
// standard sub claim stands in for user_id when the latter is absent.
type Claims struct {
	UserID  string    `json:"user_id"`
	Email   string    `json:"email"`
	Role    string    `json:"role,omitempty"`
	TokenID string    `json:"token_id"`
	Type    TokenType `json:"type"`
	jwt.RegisteredClaims
}

func (c *Claims) complete(want TokenType) error {
	if c.Type != want {
		return fmt.Errorf("%w: type %q", ErrInvalidClaim, c.Type)
	}

	if c.UserID == "" {
		c.UserID = c.Subject
	}

	if c.UserID == "" || c.Email == "" {
		return fmt.Errorf("%w: identity incomplete", ErrInvalidClaim)
	}

	return nil
}

// JWT verifies HS256 bearer tokens. Issuing tokens is left to the identity
// provider.
type JWT interface {
	ValidateToken(tokenString string, tokenType TokenType) (*Claims, error)
}

type Service struct {
	secret []byte
	parser *jwt.Parser
}

func New(cfg *config.Config) JWT {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}

	if cfg.JWT.Issuer != "" {
		options = append(options, jwt.WithIssuer(cfg.JWT.Issuer))
	}

	return &Service{
		secret: []byte(cfg.JWT.AccessSecret),
		parser: jwt.NewParser(options...),
	}
}

func (s *Service) key(_ *jwt.Token) (any, error) {
	return s.secret, nil
}

func (s *Service) ValidateToken(tokenString string, tokenType TokenType) (*Claims, error) {
	if tokenType != AccessToken {
		return nil, fmt.Errorf("unknown token type: %s", tokenType)
	}

	claims := &Claims{}

	_, err := s.parser.ParseWithClaims(tokenString, claims, s.key)

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if err := claims.complete(tokenType); err != nil {
		return nil, err
	}

	return claims, nil
}

// ExtractTokenFromHeader returns the credentials of a Bearer authorization
// header. The scheme is matched case-insensitively.
func ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", errMissingHeader
	}

	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", errNotBearer
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", errNotBearer
	}

	return token, nil
}

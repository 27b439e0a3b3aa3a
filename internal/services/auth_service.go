package services

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthConfig configures write-route authentication.
type AuthConfig struct {
	// Secret signs and verifies HS256 tokens. An empty secret disables auth.
	Secret string
	// Username and PasswordHash (bcrypt) identify the single operator account
	// allowed to exchange credentials for a token.
	Username     string
	PasswordHash string
	TokenTTL     time.Duration
}

// AuthService issues and validates the bearer tokens guarding mutating routes.
type AuthService struct {
	username     string
	passwordHash []byte
	jwtSecret    []byte
	tokenDurat   time.Duration
	log          logrus.FieldLogger
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg AuthConfig, log logrus.FieldLogger) *AuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		username:     cfg.Username,
		passwordHash: []byte(cfg.PasswordHash),
		jwtSecret:    []byte(cfg.Secret),
		tokenDurat:   ttl,
		log:          log.WithField("component", "auth"),
	}
}

// Enabled reports whether a signing secret is configured.
func (s *AuthService) Enabled() bool {
	return len(s.jwtSecret) > 0
}

// HashPassword returns the bcrypt hash to configure as the operator password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Login checks the operator credentials and returns a signed token.
func (s *AuthService) Login(username, password string) (string, error) {
	if !s.Enabled() || len(s.passwordHash) == 0 || username != s.username {
		s.log.WithField("username", username).Info("Rejected login")
		return "", fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		s.log.WithField("username", username).Info("Rejected login")
		return "", fmt.Errorf("invalid credentials")
	}
	return s.IssueToken(username)
}

// IssueToken signs a token for subject that expires after the configured TTL.
func (s *AuthService) IssueToken(subject string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("auth is not configured")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": now.Add(s.tokenDurat).Unix(),
		"iat": now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.log.WithError(err).Debug("Token validation error")
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

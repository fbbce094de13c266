package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/findnest-api/internal/models"
	appErrors "github.com/noah-isme/findnest-api/pkg/errors"
)

type profileUserReader interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// AuthConfig defines how bearer tokens are verified.
type AuthConfig struct {
	Secret string
	Issuer string
}

// AuthService verifies bearer tokens issued by the identity provider.
type AuthService struct {
	users  profileUserReader
	logger *zap.Logger
	config AuthConfig
	now    func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users profileUserReader, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{users: users, logger: logger, config: config, now: time.Now}
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now)}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.Secret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.UserID == "" && claims.Subject == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token has no subject")
	}
	if claims.Role != "" && !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, fmt.Sprintf("unknown role %q", claims.Role))
	}
	if claims.Role == "" {
		claims.Role = models.RoleStaff
	}
	return claims, nil
}

// IssueToken signs a token for principal. It backs local tooling and tests; production
// tokens come from the identity provider.
func (s *AuthService) IssueToken(p models.Principal, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = time.Hour
	}
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(ttl)
	claims := &models.JWTClaims{
		UserID:         p.ID,
		Role:           p.Role,
		Department:     p.Department,
		Email:          p.Email,
		Username:       p.Username,
		ProfilePicture: p.ProfilePicture,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   p.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Profile merges the principal with the backend user record. A missing record is not an error.
func (s *AuthService) Profile(ctx context.Context, p models.Principal) (*models.Profile, error) {
	profile := &models.Profile{Principal: p}
	if s.users == nil || p.ID == "" {
		return profile, nil
	}
	user, err := s.users.Get(ctx, p.ID)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			s.logger.Debug("principal has no backend record", zap.String("user_id", p.ID))
			return profile, nil
		}
		return nil, err
	}
	profile.User = user
	if profile.ProfilePicture == "" {
		profile.ProfilePicture = user.ProfilePicture
	}
	return profile, nil
}

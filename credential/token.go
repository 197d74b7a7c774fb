package credential

import (
	"errors"
	"staffing/authority"
	"staffing/bizerror"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultTokenTTL = 24 * time.Hour

type Claims struct {
	Role authority.Role `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the user id carried by the subject claim.
func (c *Claims) UserID() (types.ID, error) {
	return types.ParseID(c.Subject)
}

type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a HS256 token for the subject and role.
func (s *TokenService) Issue(subject types.ID, role authority.Role) (string, *Claims, error) {
	now := s.now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// Verify checks the signature and expiry of a token.
func (s *TokenService) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, bizerror.ErrTokenExpired
		}
		return nil, bizerror.ErrTokenInvalid
	}
	if !parsed.Valid || !claims.Role.Valid() {
		return nil, bizerror.ErrTokenInvalid
	}
	if _, err := claims.UserID(); err != nil {
		return nil, bizerror.ErrTokenInvalid
	}
	return claims, nil
}

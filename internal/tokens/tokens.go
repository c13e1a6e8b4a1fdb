package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tiendaf1/shop/internal/models"
)

// DefaultTTL is the validity window of an issued token. Tokens are stateless
// and stay valid for their whole lifetime regardless of later account
// changes; there is no revocation list.
const DefaultTTL = 7 * 24 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the identity assertion embedded in every session token.
type Claims struct {
	UserID  uint   `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies session tokens with a shared HS256 secret.
// Keeping the secret and expiry behind this type means a denylist could be
// bolted on later without touching call sites.
type Issuer struct {
	Secret []byte
	TTL    time.Duration
}

func NewIssuer(secret []byte) *Issuer {
	return &Issuer{Secret: secret, TTL: DefaultTTL}
}

func (i *Issuer) Issue(u *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  u.ID,
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.Secret)
}

func (i *Issuer) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

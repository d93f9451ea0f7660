package auth

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// DefaultTokenTTL matches the lifetime of tokens issued at login by the
// frontend API.
const DefaultTokenTTL = 24 * time.Hour

// TokenVerifier checks HS256 tokens against a single shared secret.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Verify returns the decoded claim set of a valid token. Every failure maps
// to exactly one of ErrTokenExpired or ErrTokenInvalid.
func (v *TokenVerifier) Verify(token string) (jwt.MapClaims, error) {
	if len(v.secret) == 0 || token == "" {
		return nil, ErrTokenInvalid
	}
	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !tok.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// UserID pulls the numeric "id" claim. JSON numbers decode as float64;
// numeric strings are accepted too.
func UserID(claims jwt.MapClaims) (int64, error) {
	switch v := claims["id"].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, ErrTokenInvalid
		}
		return int64(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, ErrTokenInvalid
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, ErrTokenInvalid
		}
		return n, nil
	}
	return 0, ErrTokenInvalid
}

// TokenSubject is the user data embedded in an issued token.
type TokenSubject struct {
	ID    int64
	Email string
	Role  string
	Name  string
}

// TokenIssuer signs tokens the verifier accepts. The service itself never
// issues tokens on a request path; this backs cmd/tokenctl and tests.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), now: time.Now}
}

func (i *TokenIssuer) Issue(sub TokenSubject, ttl time.Duration) (string, error) {
	if len(i.secret) == 0 {
		return "", errors.New("token secret is empty")
	}
	now := i.now()
	claims := jwt.MapClaims{
		"id":    sub.ID,
		"email": sub.Email,
		"role":  sub.Role,
		"name":  sub.Name,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
		"jti":   uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

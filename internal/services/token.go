package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yoockh/admission/internal/models"
)

// Claims is the payload of every access token issued by the service.
type Claims struct {
	jwt.RegisteredClaims
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
}

type TokenIssuer interface {
	Issue(subject string, role models.Role, email string) (string, error)
	Parse(raw string) (*Claims, error)
}

type jwtIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &jwtIssuer{secret: []byte(secret), ttl: ttl, issuer: "admission", now: time.Now}
}

func (j *jwtIssuer) Issue(subject string, role models.Role, email string) (string, error) {
	if len(j.secret) == 0 {
		return "", errors.New("jwt secret is not set")
	}
	now := j.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		Role:  string(role),
		Email: email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

func (j *jwtIssuer) Parse(raw string) (*Claims, error) {
	if len(j.secret) == 0 {
		return nil, errors.New("jwt secret is not set")
	}
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, err
	}
	if !tok.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

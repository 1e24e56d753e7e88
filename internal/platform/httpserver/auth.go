package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Authenticator resolves the calling user. With a secret configured the
// caller must present an HS256 bearer token whose subject is the user id;
// without one the X-User-Id header is trusted.
type Authenticator struct {
	Secret []byte
}

func (a Authenticator) Subject(r *http.Request) (string, error) {
	if len(a.Secret) == 0 {
		userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
		if userID == "" {
			return "", ErrMissingCredentials
		}
		return userID, nil
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return "", ErrMissingCredentials
	}

	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	subject, err := token.Claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		return "", ErrInvalidToken
	}
	return subject, nil
}

package remote

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "cmdq"

// DefaultTokenLifetime is how long a token made by GenerateToken is good for
// when no lifetime is given.
const DefaultTokenLifetime = 24 * time.Hour

// GenerateToken makes a bearer token for the remote API signed with secret.
// subject names the client it is issued to and is logged with every request
// it makes. If lifetime is 0 or less, DefaultTokenLifetime is used.
func GenerateToken(secret []byte, subject string, lifetime time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("secret is empty")
	}
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}

	claims := &jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(lifetime)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)

	tokStr, err := tok.SignedString(secret)
	if err != nil {
		return "", err
	}
	return tokStr, nil
}

// validateToken checks that tok was signed with secret and has not expired,
// and returns its subject.
func validateToken(tok string, secret []byte) (string, error) {
	parsed, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(tokenIssuer), jwt.WithLeeway(time.Minute))
	if err != nil {
		return "", err
	}

	subj, err := parsed.Claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("cannot get subject: %w", err)
	}
	return subj, nil
}

func getJWT(req *http.Request) (string, error) {
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))

	if authHeader == "" {
		return "", fmt.Errorf("no authorization header present")
	}

	authParts := strings.SplitN(authHeader, " ", 2)
	if len(authParts) != 2 {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	scheme := strings.TrimSpace(strings.ToLower(authParts[0]))
	token := strings.TrimSpace(authParts[1])

	if scheme != "bearer" {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	return token, nil
}

// requireAuth is middleware that refuses any request without a valid bearer
// token signed with secret. Refusals are delayed by unauthDelay.
func (in *Inbox) requireAuth(secret []byte, unauthDelay time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			tok, err := getJWT(req)
			if err == nil {
				var subj string
				subj, err = validateToken(tok, secret)
				if err == nil {
					in.log.Debug().Str("subject", subj).Str("path", req.URL.Path).Msg("authorized")
					next.ServeHTTP(w, req)
					return
				}
			}

			r := Unauthorized("", "%s", err.Error())
			time.Sleep(unauthDelay)
			in.logResponse(req, r.Status, r.IsErr, r.InternalMsg)
			r.WriteResponse(w)
		})
	}
}

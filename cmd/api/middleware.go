package main

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// BasicAuthMiddleware guards operator endpoints. The password is stored as a
// bcrypt hash in AUTH_BASIC_PASS_HASH.
func (app *application) BasicAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				app.unauthorizedBasicErrorResponse(w, r, errors.New("authorization header is missing"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Basic" {
				app.unauthorizedBasicErrorResponse(w, r, errors.New("authorization header is malformed"))
				return
			}

			decoded, err := base64.StdEncoding.DecodeString(parts[1])
			if err != nil {
				app.unauthorizedBasicErrorResponse(w, r, err)
				return
			}

			creds := strings.SplitN(string(decoded), ":", 2)
			if len(creds) != 2 || app.config.auth.basic.user == "" || app.config.auth.basic.passHash == "" {
				app.unauthorizedBasicErrorResponse(w, r, errors.New("invalid credentials"))
				return
			}

			userOK := subtle.ConstantTimeCompare([]byte(creds[0]), []byte(app.config.auth.basic.user)) == 1
			passErr := bcrypt.CompareHashAndPassword([]byte(app.config.auth.basic.passHash), []byte(creds[1]))
			if !userOK || passErr != nil {
				app.unauthorizedBasicErrorResponse(w, r, errors.New("invalid credentials"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (app *application) RateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !app.config.rateLimiter.Enabled || app.rateLimiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		if allow, retryAfter := app.rateLimiter.Allow(clientIP(r)); !allow {
			secs := int(math.Ceil(retryAfter.Seconds()))
			app.rateLimitExceededResponse(w, r, strconv.Itoa(max(secs, 1)))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr, which middleware.RealIP has
// already replaced with the forwarded address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

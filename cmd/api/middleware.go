package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/Beka01247/restaurant-orders/internal/auth"
)

type staffKey string

const staffCtx staffKey = "staff"

func (app *application) rateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.config.rateLimiter.Enabled {
			if allow, retryAfter := app.rateLimiter.Allow(clientIP(r)); !allow {
				app.rateLimitExceededResponse(w, r, retryAfter)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (app *application) staffAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			app.unauthorizedErrorResponse(w, r, errors.New("authorization header is missing"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			app.unauthorizedErrorResponse(w, r, errors.New("authorization header is malformed"))
			return
		}

		claims, err := app.auth.Validate(parts[1])
		if err != nil {
			app.unauthorizedErrorResponse(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), staffCtx, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getStaffFromCtx(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(staffCtx).(*auth.Claims)
	return claims
}

// changedBy names the staff member behind a request in audit records.
func changedBy(r *http.Request) string {
	claims := getStaffFromCtx(r)
	if claims == nil || claims.Subject == "" {
		return auth.SubjectStaff
	}
	return claims.Subject
}

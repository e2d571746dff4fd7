package mockapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const adminRole = "admin"

type ctxKey int

const subjectKey ctxKey = iota

func (s *Server) mintToken(mobile string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":    "admin:" + mobile,
		"mobile": mobile,
		"role":   adminRole,
		"iat":    now.Unix(),
		"exp":    now.Add(s.settings.TokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) parseToken(raw string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if role, _ := claims["role"].(string); role != adminRole {
		return nil, errors.New("token is not an admin token")
	}
	return claims, nil
}

// requireAdmin rejects requests without a valid admin bearer token.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		claims, err := s.parseToken(strings.TrimSpace(raw))
		if err != nil {
			s.logger.Printf("mockapi: rejected token: %v", err)
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		sub, _ := claims.GetSubject()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), subjectKey, sub)))
	})
}

func adminSubject(ctx context.Context) string {
	sub, _ := ctx.Value(subjectKey).(string)
	return sub
}

package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	httperrors "github.com/ezfintutor/tutormail/internal/http/errors"
	"github.com/ezfintutor/tutormail/internal/observability/logger"
)

// AdminConfig configura RequireAdmin.
type AdminConfig struct {
	// Enforce=false (dev) deja pasar todo.
	Enforce bool
	// APIKeyHash es el bcrypt de la key esperada en X-Admin-API-Key.
	APIKeyHash string
	// JWTSecret valida bearer tokens HS256.
	JWTSecret string
	// JWTIssuer, si no es vacío, debe coincidir con iss.
	JWTIssuer string
}

const adminRole = "admin"

// RequireAdmin protege rutas de administración y de disparo de envíos.
// Reglas (en este orden):
//  1. Enforce=false: permitir.
//  2. X-Admin-API-Key presente: debe matchear APIKeyHash.
//  3. Authorization: Bearer <jwt HS256> con sub y role=admin o "admin" en roles.
//     Sin credenciales 401; credenciales válidas sin rol 403.
func RequireAdmin(cfg AdminConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enforce {
				next.ServeHTTP(w, r)
				return
			}
			log := logger.From(r.Context()).With(logger.Component("admin_auth"))

			if key := strings.TrimSpace(r.Header.Get("X-Admin-API-Key")); key != "" {
				if cfg.APIKeyHash == "" || bcrypt.CompareHashAndPassword([]byte(cfg.APIKeyHash), []byte(key)) != nil {
					log.Warn("admin api key rejected")
					httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail("invalid api key"))
					return
				}
				next.ServeHTTP(w, r.WithContext(setAdminSubject(r.Context(), "api_key")))
				return
			}

			raw, ok := bearerToken(r)
			if !ok {
				httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail("missing credentials"))
				return
			}
			if cfg.JWTSecret == "" {
				httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail("bearer tokens not accepted"))
				return
			}

			claims, err := parseAdminToken(raw, cfg)
			if err != nil {
				log.Warn("admin bearer rejected", logger.Err(err))
				httperrors.WriteError(w, httperrors.ErrTokenInvalid.WithCause(err))
				return
			}
			if !hasAdminRole(claims) {
				httperrors.WriteError(w, httperrors.ErrForbidden.WithDetail("admin role required"))
				return
			}

			sub, _ := claims["sub"].(string)
			next.ServeHTTP(w, r.WithContext(setAdminSubject(r.Context(), sub)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(ah) < len("bearer ") || !strings.EqualFold(ah[:len("bearer ")], "bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(ah[len("bearer "):])
	return raw, raw != ""
}

func parseAdminToken(raw string, cfg AdminConfig) (jwt.MapClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.JWTIssuer))
	}
	claims := jwt.MapClaims{}
	tk, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(cfg.JWTSecret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !tk.Valid {
		return nil, errors.New("invalid token")
	}
	// sub identifica al actor en la auditoría
	if sub, _ := claims.GetSubject(); strings.TrimSpace(sub) == "" {
		return nil, errors.New("token has no sub")
	}
	return claims, nil
}

func hasAdminRole(c jwt.MapClaims) bool {
	if role, _ := c["role"].(string); strings.EqualFold(role, adminRole) {
		return true
	}
	roles, _ := c["roles"].([]any)
	for _, v := range roles {
		if s, _ := v.(string); strings.EqualFold(s, adminRole) {
			return true
		}
	}
	return false
}


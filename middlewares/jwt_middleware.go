package middlewares

import (
	"context"
	"net/http"
	"strings"

	"okrproject/utils"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type contextKey string

const UserContextKey contextKey = "user"

func JWTMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.HandleMessageResponse(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				utils.HandleMessageResponse(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			})

			if err != nil {
				utils.HandleMessageResponse(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			if claims, ok := token.Claims.(*Claims); ok && token.Valid {
				ctx := context.WithValue(r.Context(), UserContextKey, claims)
				next.ServeHTTP(w, r.WithContext(ctx))
			} else {
				utils.HandleMessageResponse(w, "Invalid token claims", http.StatusUnauthorized)
				return
			}
		})
	}
}

// GetActorIDFromContext returns the authenticated user's id. Every service
// call takes this id explicitly so the acting user is never ambient state.
func GetActorIDFromContext(ctx context.Context) (primitive.ObjectID, bool) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	if !ok {
		return primitive.NilObjectID, false
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}

	return id, true
}

func GetRoleFromContext(ctx context.Context) string {
	if claims, ok := ctx.Value(UserContextKey).(*Claims); ok {
		return claims.Role
	}
	return ""
}

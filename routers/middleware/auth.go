package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	u "github.com/gringotts/onboarding/utils"
	"github.com/gringotts/onboarding/utils/token"
)

// JWTMiddleware authenticates requests with a bearer access token and puts
// the caller's identity on the gin context. The raw token is kept alongside
// so downstream calls to the core banking API can present it unchanged.
func JWTMiddleware(ctx *gin.Context) {
	authorization := ctx.GetHeader("Authorization")
	if authorization == "" {
		u.APIResponse(ctx, http.StatusUnauthorized, "error", "Authorization header is missing", nil)
		ctx.Abort()
		return
	}

	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		u.APIResponse(ctx, http.StatusUnauthorized, "error", "Invalid Authorization header format", nil)
		ctx.Abort()
		return
	}

	claims, err := token.ValidateJWT(parts[1])
	if err != nil {
		u.APIResponse(ctx, http.StatusUnauthorized, "error", "Invalid or expired token", nil)
		ctx.Abort()
		return
	}

	if typ, ok := claims["typ"].(string); !ok || typ != "access" {
		u.APIResponse(ctx, http.StatusUnauthorized, "error", "Invalid token type", nil)
		ctx.Abort()
		return
	}

	userID, err := token.UserIDFromClaims(claims)
	if err != nil {
		u.APIResponse(ctx, http.StatusUnauthorized, "error", "Invalid or expired token", nil)
		ctx.Abort()
		return
	}

	email, _ := claims["email"].(string)

	ctx.Set("user_id", userID)
	ctx.Set("email", email)
	ctx.Set("token", parts[1])

	ctx.Next()
}

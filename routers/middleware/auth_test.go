package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gringotts/onboarding/utils/test"
	"github.com/gringotts/onboarding/utils/token"
)

type capturedIdentity struct {
	userID int64
	email  string
	token  string
}

func setupAuthRouter() (*gin.Engine, *capturedIdentity) {
	gin.SetMode(gin.TestMode)

	captured := &capturedIdentity{}
	router := gin.New()
	router.GET("/protected", JWTMiddleware, func(ctx *gin.Context) {
		captured.userID = ctx.GetInt64("user_id")
		captured.email = ctx.GetString("email")
		captured.token = ctx.GetString("token")
		ctx.Status(http.StatusOK)
	})
	return router, captured
}

func TestJWTMiddleware(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		router, _ := setupAuthRouter()
		res, err := test.PerformRequest(t, "GET", "/protected", nil, nil, router)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		router, _ := setupAuthRouter()
		res, err := test.PerformRequest(t, "GET", "/protected", nil,
			map[string]string{"Authorization": "Token abc"}, router)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		router, _ := setupAuthRouter()
		res, err := test.PerformRequest(t, "GET", "/protected", nil,
			map[string]string{"Authorization": "Bearer not.a.token"}, router)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		refreshToken, err := token.GenerateRefreshJWT(42)
		require.NoError(t, err)

		router, _ := setupAuthRouter()
		res, err := test.PerformRequest(t, "GET", "/protected", nil,
			map[string]string{"Authorization": "Bearer " + refreshToken}, router)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("valid access token populates identity", func(t *testing.T) {
		accessToken, err := token.GenerateAccessJWT(42, "harry@gringotts.bank")
		require.NoError(t, err)

		router, captured := setupAuthRouter()
		res, err := test.PerformRequest(t, "GET", "/protected", nil,
			map[string]string{"Authorization": "Bearer " + accessToken}, router)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.Code)

		assert.Equal(t, int64(42), captured.userID)
		assert.Equal(t, "harry@gringotts.bank", captured.email)
		assert.Equal(t, accessToken, captured.token)
	})
}

package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gringotts/onboarding/storage"
	u "github.com/gringotts/onboarding/utils"
)

// Controller is the default controller for service-level endpoints
type Controller struct{}

// NewController creates a new instance of Controller
func NewController() *Controller {
	return &Controller{}
}

// GetHealth reports service liveness and the reachability of redis
func (ctrl *Controller) GetHealth(ctx *gin.Context) {
	redisStatus := "ok"
	if storage.RedisClient == nil {
		redisStatus = "uninitialized"
	} else if err := storage.RedisClient.Ping(ctx).Err(); err != nil {
		redisStatus = "unreachable"
	}

	u.APIResponse(ctx, http.StatusOK, "success", "OK", map[string]interface{}{
		"time":  time.Now().UTC().Format(time.RFC3339),
		"redis": redisStatus,
	})
}

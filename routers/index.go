package routers

import (
	"github.com/gin-gonic/gin"
	"github.com/gringotts/onboarding/config"
	"github.com/gringotts/onboarding/controllers"
	onboardingCtrl "github.com/gringotts/onboarding/controllers/onboarding"
	"github.com/gringotts/onboarding/routers/middleware"
)

// Routes builds the gin engine with middleware and route registrations
func Routes() *gin.Engine {
	conf := config.ServerConfig()
	if !conf.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RateLimitMiddleware())

	ctrl := controllers.NewController()
	router.GET("/", ctrl.GetHealth)
	router.GET("/health", ctrl.GetHealth)

	onboarding := onboardingCtrl.NewOnboardingController()
	v1 := router.Group("/v1", middleware.JWTMiddleware)
	{
		v1.POST("/onboarding", onboarding.SubmitOnboarding)
		v1.POST("/onboarding/retry", onboarding.RetryOnboarding)
		v1.POST("/onboarding/acknowledge", onboarding.AcknowledgeDisclosure)
		v1.GET("/onboarding/status", onboarding.GetStatus)
		v1.GET("/onboarding/records", onboarding.GetRecords)
	}

	return router
}

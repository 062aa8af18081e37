package main

import (
	"fmt"
	"time"

	"github.com/gringotts/onboarding/config"
	"github.com/gringotts/onboarding/routers"
	"github.com/gringotts/onboarding/storage"
	"github.com/gringotts/onboarding/tasks"
	"github.com/gringotts/onboarding/utils/logger"
)

func main() {
	// Set timezone
	conf := config.ServerConfig()
	loc, _ := time.LoadLocation(conf.Timezone)
	time.Local = loc

	// Initialize Redis
	if err := storage.InitializeRedis(); err != nil {
		logger.Fatalf("Redis initialization: %v", err)
	}

	// Start cron jobs
	tasks.StartCronJobs()

	// Run the server
	router := routers.Routes()

	appServer := fmt.Sprintf("%s:%s", conf.Host, conf.Port)
	logger.Infof("Server Running at :%v", appServer)

	logger.Fatalf("%v", router.Run(appServer))
}

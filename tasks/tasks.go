package tasks

import (
	"time"

	"github.com/go-co-op/gocron"
	"github.com/gringotts/onboarding/config"
	"github.com/gringotts/onboarding/services/onboarding"
	"github.com/gringotts/onboarding/utils/logger"
)

var onboardingConf = config.OnboardingConfig()

// SweepStaleAttempts abandons onboarding attempts that have sat without
// progress past the configured TTL, wiping any undisclosed PIN with them.
func SweepStaleAttempts() error {
	expired := onboarding.NewOrchestrator().ExpireStale(onboardingConf.AttemptTTL)
	if expired > 0 {
		logger.Infof("SweepStaleAttempts: abandoned %d stale onboarding attempts", expired)
	}
	return nil
}

// StartCronJobs starts cron jobs
func StartCronJobs() {
	scheduler := gocron.NewScheduler(time.Local)

	_, err := scheduler.Every(onboardingConf.SweepInterval).Do(SweepStaleAttempts)
	if err != nil {
		logger.Errorf("StartCronJobs for SweepStaleAttempts: %v", err)
	}

	// Start scheduler
	scheduler.StartAsync()
}

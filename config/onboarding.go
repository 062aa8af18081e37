package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// OnboardingConfiguration defines workflow lifecycle settings
type OnboardingConfiguration struct {
	AttemptTTL    time.Duration
	SweepInterval time.Duration
	SnapshotTTL   time.Duration
}

// OnboardingConfig sets the onboarding workflow configuration
func OnboardingConfig() *OnboardingConfiguration {
	viper.SetDefault("ONBOARDING_ATTEMPT_TTL", 1800)   // 30 minutes
	viper.SetDefault("ONBOARDING_SWEEP_INTERVAL", 300) // 5 minutes
	viper.SetDefault("ONBOARDING_SNAPSHOT_TTL", 3600)  // 1 hour

	return &OnboardingConfiguration{
		AttemptTTL:    time.Duration(viper.GetInt("ONBOARDING_ATTEMPT_TTL")) * time.Second,
		SweepInterval: time.Duration(viper.GetInt("ONBOARDING_SWEEP_INTERVAL")) * time.Second,
		SnapshotTTL:   time.Duration(viper.GetInt("ONBOARDING_SNAPSHOT_TTL")) * time.Second,
	}
}

func init() {
	if err := SetupConfig(); err != nil {
		panic(fmt.Sprintf("config SetupConfig() error: %s", err))
	}
}

package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// BankConfiguration defines the core banking API settings. The API offers
// no multi-resource transaction; compensation is handled on our side.
type BankConfiguration struct {
	BaseURL            string
	RequestTimeout     time.Duration
	DefaultAccountType string
}

// BankConfig sets the core banking API configuration
func BankConfig() *BankConfiguration {
	viper.SetDefault("BANK_API_BASE_URL", "http://localhost:8050")
	viper.SetDefault("BANK_API_TIMEOUT", 15)
	viper.SetDefault("BANK_DEFAULT_ACCOUNT_TYPE", "SAVINGS")

	return &BankConfiguration{
		BaseURL:            viper.GetString("BANK_API_BASE_URL"),
		RequestTimeout:     time.Duration(viper.GetInt("BANK_API_TIMEOUT")) * time.Second,
		DefaultAccountType: viper.GetString("BANK_DEFAULT_ACCOUNT_TYPE"),
	}
}

func init() {
	if err := SetupConfig(); err != nil {
		panic(fmt.Sprintf("config SetupConfig() error: %s", err))
	}
}

package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Configuration struct {
	Server       ServerConfiguration
	Auth         AuthConfiguration
	Bank         BankConfiguration
	Onboarding   OnboardingConfiguration
	Notification NotificationConfiguration
}

func SetupConfig() error {
	var configuration *Configuration

	viper.AddConfigPath("../../../..")
	viper.AddConfigPath("../../..")
	viper.AddConfigPath("../..")
	viper.AddConfigPath("..")
	viper.AddConfigPath(".")

	envFilePath := os.Getenv("ENV_FILE_PATH")
	if envFilePath == "" {
		envFilePath = ".env"
	}

	viper.SetConfigName(envFilePath)
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing env file is fine: defaults and process env still apply
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Error to reading config file, %s", err)
			return err
		}
	}

	err := viper.Unmarshal(&configuration)
	if err != nil {
		fmt.Printf("error to decode, %v", err)
		return err
	}

	return nil
}

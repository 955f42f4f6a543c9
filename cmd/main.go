package main

import (
	"os"

	"healthcare-admin-console/cmd/bootstrap"
	"healthcare-admin-console/config"

	"github.com/sirupsen/logrus"
)

func main() {
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = config.DefaultConfigFile
	}

	// Initialize application with all dependencies
	app, err := bootstrap.New(configPath)
	if err != nil {
		logrus.Fatalf("Failed to initialize application: %v", err)
	}

	// Run the application
	app.Run()
}

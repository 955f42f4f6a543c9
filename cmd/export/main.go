package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"healthcare-admin-console/cmd/bootstrap"
	"healthcare-admin-console/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configPath := opts.configPath
	if configPath == "" {
		configPath = config.DefaultConfigFile
	}
	core, err := bootstrap.NewCore(ctx, configPath)
	if err != nil {
		logrus.Fatalf("Failed to initialize: %v", err)
	}
	defer core.Close()

	path, err := run(ctx, afero.NewOsFs(), core.SessionUsecase, opts, core.Log)
	if err != nil {
		core.Log.Errorf("Export failed: %v", err)
		stop()
		core.Close()
		os.Exit(1)
	}
	core.Log.Infof("Export written to %s", path)
}

package main

import (
	"flag"
	"os"
	"path"

	log "github.com/sirupsen/logrus"

	"github.com/pankratov/modelrelay/internal/cmd"
	"github.com/pankratov/modelrelay/internal/config"
	"github.com/pankratov/modelrelay/internal/logging"
	"github.com/pankratov/modelrelay/internal/util"
)

func init() {
	logging.Init()
}

func main() {
	var configPath string

	flag.StringVar(&configPath, "config", "", "Configure File Path")
	flag.Parse()

	if configPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			log.Fatalf("failed to get working directory: %v", err)
		}
		configPath = path.Join(wd, "config.yaml")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	util.SetLogLevel(cfg)

	if err = logging.ConfigureOutput(cfg.LoggingToFile); err != nil {
		log.Fatalf("failed to configure log output: %v", err)
	}

	cmd.StartService(cfg)
}

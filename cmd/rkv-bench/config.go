package main

import (
	"flag"

	"github.com/rkvcore/rkv/internal/config"
)

func loadConfig() (*config.Config, error) {
	var cfg config.Config

	configFile := flag.String("config.file", "", "Path to a YAML config file; flags take precedence over its contents.")
	fs := flag.CommandLine
	cfg.RegisterFlagsAndApplyDefaults("", fs)

	flag.Parse()

	if *configFile != "" {
		if err := config.LoadYAML(&cfg, *configFile); err != nil {
			return nil, err
		}
		// Flags parsed above only set defaults before the YAML overlay;
		// re-parse so a flag the user actually passed wins over the file.
		flag.Parse()
	}

	return &cfg, nil
}

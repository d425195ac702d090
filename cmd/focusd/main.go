package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/focusd/internal/config"
	"github.com/GriffinCanCode/focusd/internal/logging"
	"github.com/GriffinCanCode/focusd/internal/server"
)

func main() {
	addr := flag.String("addr", "", "Control API listen address (overrides FOCUSD_ADDR)")
	configFile := flag.String("config", "", "TOML config file path (overrides FOCUSD_CONFIG_FILE)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "focusd: %v\n", err)
		os.Exit(1)
	}
	if *configFile != "" {
		if err := cfg.MergeFile(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "focusd: %v\n", err)
			os.Exit(1)
		}
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	log, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "focusd: failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	for _, w := range cfg.Validate() {
		log.Warn("config warning", zap.String("warning", w))
	}

	srv := server.New(cfg, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		log.Info("shutting down", zap.String("signal", sig.String()))
		if err := srv.Close(); err != nil {
			log.Error("shutdown error", zap.Error(err))
		}
	case err := <-errChan:
		log.Error("server error", zap.Error(err))
		srv.Close()
		os.Exit(1)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cooldogedev/crossplay"
	"github.com/cooldogedev/crossplay/internal/logger"
)

func main() {
	path := flag.String("config", "config.toml", "path of the config file")
	flag.Parse()

	uc, err := crossplay.ReadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	level := slog.LevelInfo
	if uc.Log.Debug {
		level = slog.LevelDebug
	}
	handler := logger.New(os.Stdout, level)
	log := slog.New(handler)

	if err := run(log, uc); err != nil {
		log.Error("proxy stopped", "err", err)
		_ = handler.Close()
		os.Exit(1)
	}
	_ = handler.Close()
}

func run(log *slog.Logger, uc crossplay.UserConfig) error {
	conf, err := uc.Config(log)
	if err != nil {
		return err
	}
	p, err := crossplay.New(conf)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return p.Run(ctx)
}

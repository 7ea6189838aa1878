package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/basalamahsyarief/pykeen/internal/logger"
)

var (
	datasetName string
	datasetDir  string
	logLevel    string
	logFormat   string
	debug       bool
)

func datasetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "dataset",
			Aliases:     []string{"d"},
			Usage:       "dataset name (toy, or a directory under --dataset-dir)",
			Destination: &datasetName,
		},
		&cli.StringFlag{
			Name:        "dataset-dir",
			Usage:       "directory containing named dataset directories",
			Destination: &datasetDir,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

// newLogger builds the command logger from the logging flags.
func newLogger() logger.Logger {
	level := logger.ParseLevel(logLevel)
	if debug {
		level = slog.LevelDebug
	}
	switch logFormat {
	case "json":
		return logger.JSON(os.Stderr, level)
	case "text":
		return logger.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	default:
		return logger.ForTerminal(os.Stderr, level)
	}
}

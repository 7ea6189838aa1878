package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/basalamahsyarief/pykeen/internal/logger"
	"github.com/basalamahsyarief/pykeen/internal/server"
)

func serveCmd() *cli.Command {
	var (
		runDir      string
		addr        string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve a saved model over the REST scoring API",
		Flags: append(append(datasetFlags(), loggingFlags()...),
			&cli.StringFlag{
				Name:        "run",
				Aliases:     []string{"r"},
				Usage:       "run directory holding the saved artifacts",
				Required:    true,
				Destination: &runDir,
			},
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := newLogger()
			ctx = logger.WithContext(ctx, log)

			_, ds, m, err := loadRunDir(cmd, runDir)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			srv := server.NewServer(m, ds.Train, ds.KnownTriples(), ds.Name)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			srv.Register(e)
			log.Info("starting server", "address", addr, "model", m.Name(), "dataset", ds.Name)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(hs *http.Server) error {
					hs.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}

package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/svit-erp/portalgate/cmd/app/commands"
	"github.com/svit-erp/portalgate/internal/app"
	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
	"github.com/svit-erp/portalgate/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the gateway HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "check-access",
			Usage: "Print the gatekeeper decision for a role and a path",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "role",
					Aliases: []string{"r"},
					Usage:   "Caller role (admin, teacher, student, parent); omit for an anonymous caller",
				},
				&cli.StringFlag{
					Name:     "path",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Request path, e.g. /list/teachers",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				table, err := container.PolicyTable()
				if err != nil {
					return err
				}

				// No session decoding happens here, so the signing secret is not needed.
				gatekeeper := authDomain.NewGatekeeper(table, nil, cfg.APIPrefix, cfg.PublicPathList())

				return commands.RunCheckAccess(
					gatekeeper,
					cmd.String("role"),
					cmd.String("path"),
					cmd.String("format"),
					commands.DefaultIO().Writer,
				)
			},
		},
	}
}

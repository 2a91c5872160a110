package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/svit-erp/portalgate/cmd/app/commands"
	"github.com/svit-erp/portalgate/internal/app"
	"github.com/svit-erp/portalgate/internal/config"
)

func getSecretCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "wrap-secret",
			Usage: "Encrypt a session signing secret with the KMS key for AUTH_SECRET_CIPHERTEXT",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "key-uri",
					Aliases: []string{"k"},
					Usage:   "KMS key URI (defaults to KMS_KEY_URI)",
				},
				&cli.BoolFlag{
					Name:    "generate",
					Aliases: []string{"g"},
					Usage:   "Generate a fresh random secret instead of reading one from stdin",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyURI := cmd.String("key-uri")
				if keyURI == "" {
					keyURI = cfg.KMSKeyURI
				}

				return commands.RunWrapSecret(
					ctx,
					container.KMSService(),
					container.Logger(),
					keyURI,
					cmd.Bool("generate"),
					commands.DefaultIO(),
				)
			},
		},
	}
}

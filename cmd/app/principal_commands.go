package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/svit-erp/portalgate/cmd/app/commands"
	"github.com/svit-erp/portalgate/internal/app"
	"github.com/svit-erp/portalgate/internal/config"
)

func getPrincipalCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "hash-password",
			Usage: "Hash a password with the configured policy (reads stdin when --password is omitted)",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "password",
					Usage: "Plaintext password",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				hasher, err := container.PasswordHasher()
				if err != nil {
					return err
				}

				return commands.RunHashPassword(hasher, cmd.String("password"), commands.DefaultIO())
			},
		},
		{
			Name:  "create-principal",
			Usage: "Create an account in one of the principal tables",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "role",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "Principal kind: admin, teacher, student or parent",
				},
				&cli.StringFlag{
					Name:     "username",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "Login name, unique within the kind",
				},
				&cli.StringFlag{
					Name:    "name",
					Aliases: []string{"n"},
					Usage:   "Display name (defaults to the login name)",
				},
				&cli.StringFlag{
					Name:  "id",
					Usage: "Principal id (a UUIDv7 is generated when omitted)",
				},
				&cli.StringFlag{
					Name:  "password",
					Usage: "Plaintext password (read from stdin when omitted)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				principalUseCase, err := container.PrincipalUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreatePrincipal(
					ctx,
					principalUseCase,
					container.Logger(),
					commands.CreatePrincipalArgs{
						Role:     cmd.String("role"),
						Username: cmd.String("username"),
						Name:     cmd.String("name"),
						ID:       cmd.String("id"),
						Password: cmd.String("password"),
					},
					cmd.String("format"),
					commands.DefaultIO(),
				)
			},
		},
		{
			Name:  "set-password",
			Usage: "Replace the password of an existing account",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "role",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "Principal kind: admin, teacher, student or parent",
				},
				&cli.StringFlag{
					Name:     "username",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "Login name",
				},
				&cli.StringFlag{
					Name:  "password",
					Usage: "New plaintext password (read from stdin when omitted)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				principalUseCase, err := container.PrincipalUseCase()
				if err != nil {
					return err
				}

				return commands.RunSetPassword(
					ctx,
					principalUseCase,
					container.Logger(),
					cmd.String("role"),
					cmd.String("username"),
					cmd.String("password"),
					commands.DefaultIO(),
				)
			},
		},
	}
}

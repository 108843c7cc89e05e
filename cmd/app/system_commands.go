package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/tokenacl/cmd/app/commands"
	"github.com/allisson/tokenacl/internal/app"
	"github.com/allisson/tokenacl/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				if err := cfg.Validate(); err != nil {
					return err
				}
				return commands.RunServer(ctx, cfg, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Apply (or roll back) the account and transaction record schema",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "dir",
					Value: "migrations",
					Usage: "Directory holding the postgresql/ and mysql/ migration sets",
				},
				&cli.IntFlag{
					Name:  "steps",
					Usage: "Migrations to apply; negative rolls back, zero applies all pending",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), commands.MigrationsInput{
					Driver:           cfg.DBDriver,
					ConnectionString: cfg.DBConnectionString,
					Dir:              cmd.String("dir"),
					Steps:            int(cmd.Int("steps")),
				})
			},
		},
		{
			Name:  "keygen",
			Usage: "Generate a new signer keypair file",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "outfile",
					Aliases: []string{"o"},
					Usage:   "Keypair file to write (defaults to KEYPAIR_PATH)",
				},
				&cli.BoolFlag{
					Name:  "force",
					Usage: "Overwrite an existing keypair file",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				outfile := cmd.String("outfile")
				if outfile == "" {
					outfile = cfg.KeypairPath
				}
				return commands.RunKeygen(
					container.Logger(),
					commands.DefaultIO().Writer,
					outfile,
					cmd.Bool("force"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "fund-account",
			Usage: "Credit lamports to an address (deposit without a source account)",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "address",
					Aliases:  []string{"a"},
					Required: true,
					Usage:    "Address to credit",
				},
				&cli.Uint64Flag{
					Name:     "lamports",
					Aliases:  []string{"l"},
					Required: true,
					Usage:    "Amount to credit",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				address, err := commands.ParsePublicKey("address", cmd.String("address"))
				if err != nil {
					return err
				}

				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				accountUseCase, err := container.AccountUseCase()
				if err != nil {
					return err
				}

				return commands.RunFundAccount(
					ctx,
					accountUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					address,
					cmd.Uint64("lamports"),
					cmd.String("format"),
				)
			},
		},
	}
}

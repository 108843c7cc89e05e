package main

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/urfave/cli/v3"

	"github.com/allisson/tokenacl/cmd/app/commands"
	"github.com/allisson/tokenacl/internal/app"
	"github.com/allisson/tokenacl/internal/config"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getConfigCommands()...)
	cmds = append(cmds, getFreezeCommands()...)
	return cmds
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func keypairFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "keypair",
		Aliases: []string{"k"},
		Usage:   "Signer keypair file (defaults to KEYPAIR_PATH)",
	}
}

func mintFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "mint",
		Aliases:  []string{"m"},
		Required: true,
		Usage:    "Mint address",
	}
}

// newContainer loads and validates configuration before assembling the container.
func newContainer() (*app.Container, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return app.NewContainer(cfg), nil
}

// signedAction is the body of a command that submits transactions signed by the
// configured keypair.
type signedAction func(ctx context.Context, cmd *cli.Command, container *app.Container, signer solana.PrivateKey) error

// withSigner assembles the container, loads the signer keypair and runs action.
func withSigner(action signedAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		container, err := newContainer()
		if err != nil {
			return err
		}
		defer func() { _ = container.Shutdown(ctx) }()

		path := cmd.String("keypair")
		if path == "" {
			path = container.Config().KeypairPath
		}
		signer, err := container.KeyLoader().Load(ctx, path)
		if err != nil {
			return err
		}
		return action(ctx, cmd, container, signer)
	}
}

// mintArg parses the required --mint flag.
func mintArg(cmd *cli.Command) (solana.PublicKey, error) {
	return commands.ParsePublicKey("mint", cmd.String("mint"))
}

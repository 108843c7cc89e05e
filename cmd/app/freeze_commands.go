package main

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/urfave/cli/v3"

	"github.com/allisson/tokenacl/cmd/app/commands"
	"github.com/allisson/tokenacl/internal/app"
)

func targetFlags() []cli.Flag {
	return []cli.Flag{
		keypairFlag(),
		mintFlag(),
		&cli.StringFlag{
			Name:    "owner",
			Aliases: []string{"o"},
			Usage:   "Token account owner",
		},
		&cli.StringFlag{
			Name:  "token-account",
			Usage: "Token account (defaults to the owner's associated token account)",
		},
		formatFlag(),
	}
}

func permissionlessFlags() []cli.Flag {
	return append(targetFlags(), &cli.BoolFlag{
		Name:  "idempotent",
		Usage: "Succeed without changes when the account is already in the requested state",
	})
}

// targetArg parses --mint, --owner and --token-account.
func targetArg(cmd *cli.Command) (commands.TokenTarget, error) {
	mint, err := mintArg(cmd)
	if err != nil {
		return commands.TokenTarget{}, err
	}
	owner, err := commands.ParseOptionalPublicKey("owner", cmd.String("owner"), solana.PublicKey{})
	if err != nil {
		return commands.TokenTarget{}, err
	}
	tokenAccount, err := commands.ParseOptionalPublicKey("token-account", cmd.String("token-account"), solana.PublicKey{})
	if err != nil {
		return commands.TokenTarget{}, err
	}
	return commands.TokenTarget{Mint: mint, Owner: owner, TokenAccount: tokenAccount}, nil
}

func getFreezeCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "freeze",
			Usage: "Freeze a token account as the config authority",
			Flags: targetFlags(),
			Action: withSigner(func(ctx context.Context, cmd *cli.Command, container *app.Container, signer solana.PrivateKey) error {
				target, err := targetArg(cmd)
				if err != nil {
					return err
				}
				builder, sender, err := clients(container)
				if err != nil {
					return err
				}
				return commands.RunFreeze(ctx, builder, sender, container.Logger(), commands.DefaultIO().Writer,
					signer, target, cmd.String("format"))
			}),
		},
		{
			Name:  "thaw",
			Usage: "Thaw a token account as the config authority",
			Flags: targetFlags(),
			Action: withSigner(func(ctx context.Context, cmd *cli.Command, container *app.Container, signer solana.PrivateKey) error {
				target, err := targetArg(cmd)
				if err != nil {
					return err
				}
				builder, sender, err := clients(container)
				if err != nil {
					return err
				}
				return commands.RunThaw(ctx, builder, sender, container.Logger(), commands.DefaultIO().Writer,
					signer, target, cmd.String("format"))
			}),
		},
		{
			Name:  "freeze-permissionless",
			Usage: "Freeze a token account with the approval of the mint's gating program",
			Flags: permissionlessFlags(),
			Action: withSigner(func(ctx context.Context, cmd *cli.Command, container *app.Container, signer solana.PrivateKey) error {
				target, err := targetArg(cmd)
				if err != nil {
					return err
				}
				builder, sender, err := clients(container)
				if err != nil {
					return err
				}
				return commands.RunFreezePermissionless(ctx, builder, sender, container.Logger(), commands.DefaultIO().Writer,
					signer, target, cmd.Bool("idempotent"), cmd.String("format"))
			}),
		},
		{
			Name:  "thaw-permissionless",
			Usage: "Thaw a token account with the approval of the mint's gating program",
			Flags: permissionlessFlags(),
			Action: withSigner(func(ctx context.Context, cmd *cli.Command, container *app.Container, signer solana.PrivateKey) error {
				target, err := targetArg(cmd)
				if err != nil {
					return err
				}
				builder, sender, err := clients(container)
				if err != nil {
					return err
				}
				return commands.RunThawPermissionless(ctx, builder, sender, container.Logger(), commands.DefaultIO().Writer,
					signer, target, cmd.Bool("idempotent"), cmd.String("format"))
			}),
		},
		{
			Name:  "create-ata-and-thaw-permissionless",
			Usage: "Create the owner's associated token account and thaw it in one transaction",
			Flags: []cli.Flag{
				keypairFlag(),
				mintFlag(),
				&cli.StringFlag{
					Name:     "owner",
					Aliases:  []string{"o"},
					Required: true,
					Usage:    "Token account owner",
				},
				&cli.BoolFlag{
					Name:  "idempotent",
					Usage: "Succeed without changes when the account is already thawed",
				},
				formatFlag(),
			},
			Action: withSigner(func(ctx context.Context, cmd *cli.Command, container *app.Container, signer solana.PrivateKey) error {
				mint, err := mintArg(cmd)
				if err != nil {
					return err
				}
				owner, err := commands.ParsePublicKey("owner", cmd.String("owner"))
				if err != nil {
					return err
				}
				builder, sender, err := clients(container)
				if err != nil {
					return err
				}
				return commands.RunCreateATAAndThawPermissionless(ctx, builder, sender, container.Logger(),
					commands.DefaultIO().Writer, signer, mint, owner, cmd.Bool("idempotent"), cmd.String("format"))
			}),
		},
	}
}

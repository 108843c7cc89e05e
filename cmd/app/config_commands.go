package main

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/urfave/cli/v3"

	"github.com/allisson/tokenacl/cmd/app/commands"
	"github.com/allisson/tokenacl/internal/acl/client"
	"github.com/allisson/tokenacl/internal/app"
)

// clients returns the instruction builder and transaction sender.
func clients(container *app.Container) (*client.Builder, *client.Sender, error) {
	builder, err := container.Builder()
	if err != nil {
		return nil, nil, err
	}
	sender, err := container.Sender()
	if err != nil {
		return nil, nil, err
	}
	return builder, sender, nil
}

func getConfigCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-mint",
			Usage: "Create a mint whose new token accounts start frozen",
			Flags: []cli.Flag{
				keypairFlag(),
				&cli.StringFlag{
					Name:  "mint-keypair",
					Usage: "Keypair file for the mint address (a fresh key when omitted)",
				},
				&cli.IntFlag{
					Name:    "decimals",
					Aliases: []string{"d"},
					Value:   6,
					Usage:   "Number of base 10 digits to the right of the decimal place",
				},
				&cli.StringFlag{
					Name:  "mint-authority",
					Usage: "Mint authority (defaults to the signer)",
				},
				&cli.StringFlag{
					Name:  "freeze-authority",
					Usage: "Freeze authority (defaults to the signer)",
				},
				formatFlag(),
			},
			Action: withSigner(func(ctx context.Context, cmd *cli.Command, container *app.Container, signer solana.PrivateKey) error {
				decimals := cmd.Int("decimals")
				if decimals < 0 || decimals > 255 {
					return fmt.Errorf("invalid --decimals: %d", decimals)
				}
				mintAuthority, err := commands.ParseOptionalPublicKey("mint-authority", cmd.String("mint-authority"), signer.PublicKey())
				if err != nil {
					return err
				}
				freezeAuthority, err := commands.ParseOptionalPublicKey("freeze-authority", cmd.String("freeze-authority"), signer.PublicKey())
				if err != nil {
					return err
				}

				mint := solana.NewWallet().PrivateKey
				if path := cmd.String("mint-keypair"); path != "" {
					mint, err = container.KeyLoader().Load(ctx, path)
					if err != nil {
						return err
					}
				}

				_, sender, err := clients(container)
				if err != nil {
					return err
				}
				return commands.RunCreateMint(ctx, sender, container.Logger(), commands.DefaultIO().Writer, signer,
					commands.CreateMintInput{
						Mint:            mint,
						Decimals:        uint8(decimals),
						MintAuthority:   mintAuthority,
						FreezeAuthority: freezeAuthority,
					},
					cmd.String("format"),
				)
			}),
		},
		{
			Name:  "create-config",
			Usage: "Move the freeze authority of a mint into engine custody",
			Flags: []cli.Flag{
				keypairFlag(),
				mintFlag(),
				&cli.StringFlag{
					Name:    "gating-program",
					Aliases: []string{"g"},
					Usage:   "Gating program deciding permissionless operations (none when omitted)",
				},
				formatFlag(),
			},
			Action: withSigner(func(ctx context.Context, cmd *cli.Command, container *app.Container, signer solana.PrivateKey) error {
				mint, err := mintArg(cmd)
				if err != nil {
					return err
				}
				gate, err := commands.ParseOptionalPublicKey("gating-program", cmd.String("gating-program"), solana.PublicKey{})
				if err != nil {
					return err
				}
				builder, sender, err := clients(container)
				if err != nil {
					return err
				}
				return commands.RunCreateConfig(ctx, builder, sender, container.Logger(), commands.DefaultIO().Writer,
					signer, mint, gate, cmd.String("format"))
			}),
		},
		{
			Name:  "delete-config",
			Usage: "Release a mint from engine custody",
			Flags: []cli.Flag{
				keypairFlag(),
				mintFlag(),
				&cli.StringFlag{
					Name:  "receiver",
					Usage: "Receiver of the record deposit (defaults to the signer)",
				},
				&cli.StringFlag{
					Name:  "new-freeze-authority",
					Usage: "Freeze authority restored on the mint (defaults to the signer)",
				},
				formatFlag(),
			},
			Action: withSigner(func(ctx context.Context, cmd *cli.Command, container *app.Container, signer solana.PrivateKey) error {
				mint, err := mintArg(cmd)
				if err != nil {
					return err
				}
				receiver, err := commands.ParseOptionalPublicKey("receiver", cmd.String("receiver"), signer.PublicKey())
				if err != nil {
					return err
				}
				newFreezeAuthority, err := commands.ParseOptionalPublicKey(
					"new-freeze-authority", cmd.String("new-freeze-authority"), signer.PublicKey())
				if err != nil {
					return err
				}
				builder, sender, err := clients(container)
				if err != nil {
					return err
				}
				return commands.RunDeleteConfig(ctx, builder, sender, container.Logger(), commands.DefaultIO().Writer,
					signer, mint, receiver, newFreezeAuthority, cmd.String("format"))
			}),
		},
		{
			Name:  "set-authority",
			Usage: "Hand the mint config to a new authority",
			Flags: []cli.Flag{
				keypairFlag(),
				mintFlag(),
				&cli.StringFlag{
					Name:     "new-authority",
					Required: true,
					Usage:    "New config authority",
				},
				formatFlag(),
			},
			Action: withSigner(func(ctx context.Context, cmd *cli.Command, container *app.Container, signer solana.PrivateKey) error {
				mint, err := mintArg(cmd)
				if err != nil {
					return err
				}
				newAuthority, err := commands.ParsePublicKey("new-authority", cmd.String("new-authority"))
				if err != nil {
					return err
				}
				builder, sender, err := clients(container)
				if err != nil {
					return err
				}
				return commands.RunSetAuthority(ctx, builder, sender, container.Logger(), commands.DefaultIO().Writer,
					signer, mint, newAuthority, cmd.String("format"))
			}),
		},
		{
			Name:  "set-gating-program",
			Usage: "Replace the gating program of a mint (omit to disable permissionless operations)",
			Flags: []cli.Flag{
				keypairFlag(),
				mintFlag(),
				&cli.StringFlag{
					Name:    "gating-program",
					Aliases: []string{"g"},
					Usage:   "New gating program",
				},
				formatFlag(),
			},
			Action: withSigner(func(ctx context.Context, cmd *cli.Command, container *app.Container, signer solana.PrivateKey) error {
				mint, err := mintArg(cmd)
				if err != nil {
					return err
				}
				gate, err := commands.ParseOptionalPublicKey("gating-program", cmd.String("gating-program"), solana.PublicKey{})
				if err != nil {
					return err
				}
				builder, sender, err := clients(container)
				if err != nil {
					return err
				}
				return commands.RunSetGatingProgram(ctx, builder, sender, container.Logger(), commands.DefaultIO().Writer,
					signer, mint, gate, cmd.String("format"))
			}),
		},
		{
			Name:  "set-instructions",
			Usage: "Enable or disable permissionless freeze and thaw for a mint",
			Flags: []cli.Flag{
				keypairFlag(),
				mintFlag(),
				&cli.BoolFlag{
					Name:  "enable-freeze",
					Usage: "Allow permissionless freeze",
				},
				&cli.BoolFlag{
					Name:  "enable-thaw",
					Usage: "Allow permissionless thaw",
				},
				formatFlag(),
			},
			Action: withSigner(func(ctx context.Context, cmd *cli.Command, container *app.Container, signer solana.PrivateKey) error {
				mint, err := mintArg(cmd)
				if err != nil {
					return err
				}
				builder, sender, err := clients(container)
				if err != nil {
					return err
				}
				return commands.RunSetInstructions(ctx, builder, sender, container.Logger(), commands.DefaultIO().Writer,
					signer, mint, cmd.Bool("enable-freeze"), cmd.Bool("enable-thaw"), cmd.String("format"))
			}),
		},
		{
			Name:  "get-config",
			Usage: "Show the config record of a mint",
			Flags: []cli.Flag{
				mintFlag(),
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				mint, err := mintArg(cmd)
				if err != nil {
					return err
				}
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				builder, err := container.Builder()
				if err != nil {
					return err
				}
				return commands.RunGetConfig(ctx, builder, commands.DefaultIO().Writer, mint, cmd.String("format"))
			},
		},
	}
}

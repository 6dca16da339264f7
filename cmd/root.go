/*
 * Copyright (C) 2025 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mdp/qrterminal/v3"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/storage"
	storageCmd "github.com/nuts-foundation/nuts-wallet/storage/cmd"
	"github.com/nuts-foundation/nuts-wallet/vcr/codec"
	"github.com/nuts-foundation/nuts-wallet/vcr/trust"
	"github.com/nuts-foundation/nuts-wallet/wallet"
	walletAPI "github.com/nuts-foundation/nuts-wallet/wallet/api/v1"
	walletCmd "github.com/nuts-foundation/nuts-wallet/wallet/cmd"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var stdOutWriter io.Writer = os.Stdout

// maxQRCodePayload is the alphanumeric capacity of the largest QR code at error correction level M.
const maxQRCodePayload = 3391

func createRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "wallet",
		Short:        "Wallet executable which runs the wallet server and encodes or decodes compact credentials.",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}
}

func createPrintConfigCommand(system *core.System) *cobra.Command {
	command := &cobra.Command{
		Use:   "config",
		Short: "Prints the current config",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := system.Load(cmd.Flags()); err != nil {
				return err
			}
			cmd.Println("Current system config")
			cmd.Println(system.Config.PrintConfig())
			return nil
		},
	}
	command.Flags().AddFlagSet(serverConfigFlags())
	return command
}

func createTrustCommand(system *core.System) *cobra.Command {
	command := &cobra.Command{
		Use:   "trust",
		Short: "Manages the trusted issuers in the file set by wallet.trustedissuerfile",
	}
	command.AddCommand(createTrustActionCommand(system, "add", "Trusts the issuer for the credential type", (*trust.StaticList).AddTrust))
	command.AddCommand(createTrustActionCommand(system, "remove", "Untrusts the issuer for the credential type", (*trust.StaticList).RemoveTrust))
	return command
}

func createTrustActionCommand(system *core.System, use string, short string, action func(*trust.StaticList, string, string) error) *cobra.Command {
	command := &cobra.Command{
		Use:   use + " [credential type] [issuer]",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := system.Load(cmd.Flags()); err != nil {
				return err
			}
			var filename string
			system.VisitEngines(func(engine core.Engine) {
				if instance, ok := engine.(*wallet.Wallet); ok {
					filename = instance.Config().(*wallet.Config).TrustedIssuerFile
				}
			})
			list := trust.NewStaticList(filename)
			if err := list.Load(); err != nil {
				return err
			}
			if err := action(list, args[0], args[1]); err != nil {
				return err
			}
			cmd.Printf("Updated trust of %s for %s in %s\n", args[1], args[0], filename)
			return nil
		},
	}
	command.Flags().AddFlagSet(serverConfigFlags())
	return command
}

func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the version of the wallet",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Print(core.BuildInfo())
		},
	}
}

func createServerCommand(system *core.System) *cobra.Command {
	command := &cobra.Command{
		Use:   "server",
		Short: "Starts the wallet server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return startServer(cmd.Context(), system, cmd.Flags())
		},
	}
	command.Flags().AddFlagSet(serverConfigFlags())
	return command
}

func startServer(ctx context.Context, system *core.System, flags *pflag.FlagSet) error {
	if err := system.Load(flags); err != nil {
		return err
	}
	logrus.Infof("Starting wallet %s (%s)", core.Version(), core.OSArch())
	logrus.Info("Starting server with config:")
	logrus.Info(system.Config.PrintConfig())

	// check config on all engines
	if err := system.Configure(); err != nil {
		return err
	}
	// start engines
	if err := system.Start(); err != nil {
		return err
	}
	defer func() {
		if err := system.Shutdown(); err != nil {
			logrus.Error(err)
		}
	}()
	// blocks until the context is cancelled
	return system.RunServer(ctx)
}

func createCodecCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "codec",
		Short: "Encodes and decodes compact (Base45 CBOR) credentials",
	}
	encodeCommand := &cobra.Command{
		Use:   "encode [jwt|json]",
		Short: "Encodes a JWT or JSON credential as compact credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			encoded, err := codec.EncodeVCToCompactCBOR(args[0])
			if err != nil {
				return err
			}
			cmd.Println(encoded)
			if qr, _ := cmd.Flags().GetBool("qr"); qr {
				if len(encoded) > maxQRCodePayload {
					return fmt.Errorf("compact credential too large for a QR code (%d characters, max %d)", len(encoded), maxQRCodePayload)
				}
				printQrCode(cmd.OutOrStdout(), encoded)
			}
			return nil
		},
	}
	encodeCommand.Flags().Bool("qr", false, "Also prints the compact credential as QR code, for scanning it with a wallet app")
	command.AddCommand(encodeCommand)
	command.AddCommand(&cobra.Command{
		Use:   "decode [compact credential]",
		Short: "Decodes a compact credential and prints it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decoded, err := codec.ExtractVCFromCompactCBOR(args[0])
			if err != nil {
				return err
			}
			data, _ := json.MarshalIndent(decoded, "", "  ")
			cmd.Println(string(data))
			return nil
		},
	})
	return command
}

func printQrCode(writer io.Writer, payload string) {
	config := qrterminal.Config{
		HalfBlocks: false,
		BlackChar:  qrterminal.WHITE,
		WhiteChar:  qrterminal.BLACK,
		Level:      qrterminal.M,
		Writer:     writer,
		QuietZone:  1,
	}
	qrterminal.GenerateWithConfig(payload, config)
}

// serverConfigFlags returns the flags of the server and all engines.
func serverConfigFlags() *pflag.FlagSet {
	set := pflag.NewFlagSet("server", pflag.ContinueOnError)
	set.AddFlagSet(core.FlagSet())
	set.AddFlagSet(storageCmd.FlagSet())
	set.AddFlagSet(walletCmd.FlagSet())
	return set
}

// CreateCommand creates the command with all subcommands to run the system.
func CreateCommand(system *core.System) *cobra.Command {
	command := createRootCommand()
	command.SetOut(stdOutWriter)
	addSubCommands(system, command)
	return command
}

// CreateSystem creates the system and registers all default engines.
func CreateSystem() *core.System {
	system := core.NewSystem()
	// Create instances
	metricsInstance := core.NewMetricsEngine()
	storageInstance := storage.New()
	walletInstance := wallet.New(storageInstance)

	// Register HTTP routes
	system.RegisterRoutes(metricsInstance)
	system.RegisterRoutes(&walletAPI.Wrapper{Wallet: walletInstance})

	// Register engines
	// Order matters: the wallet opens its stores from the storage engine.
	system.RegisterEngine(metricsInstance)
	system.RegisterEngine(storageInstance)
	system.RegisterEngine(walletInstance)
	return system
}

// Execute executes the root command, stopping the server when the context is cancelled.
func Execute(ctx context.Context, system *core.System) error {
	command := CreateCommand(system)
	command.SetOut(stdOutWriter)
	return command.ExecuteContext(ctx)
}

func addSubCommands(system *core.System, root *cobra.Command) {
	root.AddCommand(createServerCommand(system))
	root.AddCommand(createPrintConfigCommand(system))
	root.AddCommand(createCodecCommand())
	root.AddCommand(createTrustCommand(system))
	root.AddCommand(createVersionCommand())
}

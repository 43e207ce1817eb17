package cmd

import (
	"fmt"
	"os"

	"github.com/Mohsinsiddi/samkit/internal/config"
	"github.com/Mohsinsiddi/samkit/internal/ui"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/samkit/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir      string
	cfg         *config.Config
	networkFlag string
	verbose     bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "samkit",
	Short: "Deploy and operate the SAM sample token",
	Long: `samkit deploys the SAM sample token stack (SampleToken, SampleCoin with
EIP-2612 style permits, and a rate-limited Faucet) and talks to it.

The "hardhat" network runs an in-process chain that starts fresh on every
command, like Hardhat's default network. Use --network localhost for a
running node, or add your own with: samkit network add`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

// Execute runs the root command. Errors go to stderr and exit with status 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Err(err.Error()))
		os.Exit(1)
	}
}

// currentNetwork is --network, falling back to the configured default.
func currentNetwork() string {
	if networkFlag != "" {
		return networkFlag
	}
	return cfg.DefaultNetwork
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $SAMKIT_CONFIG_DIR or ~/.samkit)")
	rootCmd.PersistentFlags().StringVarP(&networkFlag, "network", "n", "", "network to use (default from config: hardhat)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print transaction hashes and blocks")

	rootCmd.AddCommand(
		deployCmd,
		tokenCmd,
		faucetCmd,
		permitCmd,
		walletCmd,
		networkCmd,
		configCmd,
		deploymentsCmd,
	)
}

package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/samkit/internal/config"
	"github.com/Mohsinsiddi/samkit/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change samkit settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs := make([][2]string, 0, len(cfg.Keys())+1)
		pairs = append(pairs, [2]string{"config_dir", cfg.Dir()})
		for _, k := range cfg.Keys() {
			v, _ := cfg.Get(k)
			if v == "" {
				v = ui.Meta("(unset)")
			}
			pairs = append(pairs, [2]string{k, v})
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Configuration", pairs))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value. Keys:
  default_network, default_wallet, artifacts_dir,
  token.contract, token.name, token.symbol, token.initial_supply,
  faucet.amount, faucet.forwarder`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Reload without env overrides so they are not persisted.
		c, err := config.LoadFile(cfgDir)
		if err != nil {
			return err
		}
		if err := c.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := c.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("%s = %s", args[0], args[1])))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
}

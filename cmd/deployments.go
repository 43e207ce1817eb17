package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Mohsinsiddi/samkit/internal/contract"
	"github.com/Mohsinsiddi/samkit/internal/sync"
	"github.com/Mohsinsiddi/samkit/internal/ui"
	"github.com/spf13/cobra"
)

var (
	deploymentsYAML      bool
	deploymentsOverwrite bool
)

var deploymentsCmd = &cobra.Command{
	Use:     "deployments",
	Aliases: []string{"deps"},
	Short:   "Inspect the deployment registry",
}

var deploymentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded deployments (all networks unless --network is given)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		only := ""
		if networkFlag != "" {
			only = currentNetwork()
		}

		var rows []*contract.Deployment
		for _, d := range reg.All() {
			if only == "" || d.Network == only {
				rows = append(rows, d)
			}
		}
		out := cmd.OutOrStdout()
		if len(rows) == 0 {
			fmt.Fprintln(out, ui.Info("no deployments recorded"))
			return nil
		}

		t := ui.NewTable(
			ui.Column{Title: "Name"}, ui.Column{Title: "Contract"}, ui.Column{Title: "Network"},
			ui.Column{Title: "Address"}, ui.Column{Title: "Block"}, ui.Column{Title: "Deployed"},
		)
		for _, d := range rows {
			t.AddRow(d.Name, d.Contract, d.Network, d.Address, strconv.FormatUint(d.Block, 10), d.DeployedAt.Format("2006-01-02 15:04"))
		}
		fmt.Fprint(out, t.Render())
		return nil
	},
}

var deploymentsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all deployments as JSON (or YAML)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if deploymentsYAML {
			return reg.ExportYAML(out)
		}
		all := reg.All()
		if all == nil {
			all = []*contract.Deployment{}
		}
		data, err := json.MarshalIndent(all, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	},
}

var deploymentsImportCmd = &cobra.Command{
	Use:   "import <file|url>",
	Short: "Merge a shared deployments manifest into the registry",
	Long: `Import deployments exported elsewhere with "samkit deployments export"
(JSON or YAML, local file or http(s) URL). With --network only that
network's entries are taken. Entries that already exist with another address
are kept unless --overwrite is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		res, err := sync.New(reg).Run(cmd.Context(), args[0], networkFlag, deploymentsOverwrite)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("%d added, %d updated, %d unchanged", res.Added, res.Updated, res.Unchanged)))
		if res.Skipped > 0 {
			fmt.Fprintln(out, ui.Warn(fmt.Sprintf("%d kept with a different local address (use --overwrite)", res.Skipped)))
		}
		return nil
	},
}

var deploymentsRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Forget a deployment on the current network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		if err := reg.Remove(args[0], currentNetwork()); err != nil {
			return err
		}
		if err := reg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Removed %s on %s", args[0], currentNetwork())))
		return nil
	},
}

func init() {
	deploymentsExportCmd.Flags().BoolVar(&deploymentsYAML, "yaml", false, "export as YAML")
	deploymentsImportCmd.Flags().BoolVar(&deploymentsOverwrite, "overwrite", false, "replace entries whose address differs")
	deploymentsCmd.AddCommand(deploymentsListCmd, deploymentsExportCmd, deploymentsImportCmd, deploymentsRemoveCmd)
}

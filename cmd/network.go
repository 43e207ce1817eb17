package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Mohsinsiddi/samkit/internal/chain"
	"github.com/Mohsinsiddi/samkit/internal/config"
	"github.com/Mohsinsiddi/samkit/internal/rpc"
	"github.com/Mohsinsiddi/samkit/internal/ui"
	"github.com/spf13/cobra"
)

var (
	networkRPC       string
	networkFallbacks []string
	networkChainID   int64
	networkExplorer  string
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "List and manage deployment networks",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in and custom networks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		current := strings.ToLower(currentNetwork())
		t := ui.NewTable(ui.Column{Title: ""}, ui.Column{Title: "Name"}, ui.Column{Title: "Chain ID"}, ui.Column{Title: "RPC"}, ui.Column{Title: "Explorer"})
		for _, n := range chain.NewRegistry(cfg.Networks).All() {
			mark := ""
			if n.Name == current {
				mark = "*"
			}
			rpcURL := n.RPCURL
			if n.InProcess {
				rpcURL = "(in-process)"
			}
			name := n.Name
			if n.Custom {
				name += " (custom)"
			}
			t.AddRow(mark, name, strconv.FormatInt(n.ChainID, 10), rpcURL, n.Explorer)
		}
		fmt.Fprint(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

var networkAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a custom JSON-RPC network",
	Long: `Add a custom network. When --chain-id is omitted it is read from the node.

Example:
  samkit network add anvil --rpc http://127.0.0.1:8545`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.ToLower(args[0])
		id := networkChainID
		if id == 0 {
			detected, err := detectChainID(cmd.Context(), networkRPC)
			if err != nil {
				return fmt.Errorf("detecting chain id (pass --chain-id to skip): %w", err)
			}
			id = detected
		}

		c, err := config.LoadFile(cfgDir)
		if err != nil {
			return err
		}
		entry := config.NetworkEntry{RPCURL: networkRPC, FallbackRPCs: networkFallbacks, ChainID: id, Explorer: networkExplorer}
		if err := c.AddNetwork(name, entry); err != nil {
			return err
		}
		if err := c.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Added %s (chain %d)", name, id)))
		return nil
	},
}

var networkRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a custom network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadFile(cfgDir)
		if err != nil {
			return err
		}
		if err := c.RemoveNetwork(strings.ToLower(args[0])); err != nil {
			return err
		}
		if err := c.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Removed "+args[0]))
		return nil
	},
}

var networkPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Probe every endpoint of the current network",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		net, err := chain.NewRegistry(cfg.Networks).Get(currentNetwork())
		if err != nil {
			return err
		}
		if net.InProcess {
			fmt.Fprintln(out, ui.Success(net.Name+" is in-process (block 0 on every run)"))
			return nil
		}
		algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		if err != nil {
			return err
		}

		spin := ui.NewSpinner(cmd.ErrOrStderr(), "Probing "+net.Name+" endpoints…")
		spin.Start()
		eps := rpc.Probe(ctx, net.Endpoints())
		spin.Stop()

		winner, pickErr := rpc.Pick(eps, algo, net.ChainID)
		t := ui.NewTable(ui.Column{Title: ""}, ui.Column{Title: "Endpoint"}, ui.Column{Title: "Chain"},
			ui.Column{Title: "Block"}, ui.Column{Title: "Latency"}, ui.Column{Title: "Status"})
		for _, e := range eps {
			mark := ""
			if winner != nil && e.URL == winner.URL {
				mark = "*"
			}
			if !e.Healthy() {
				t.AddRow(mark, e.URL, "", "", "", "down")
				continue
			}
			status := "ok"
			if net.ChainID != 0 && e.ChainID != net.ChainID {
				status = fmt.Sprintf("wrong chain (want %d)", net.ChainID)
			}
			t.AddRow(mark, e.URL, strconv.FormatInt(e.ChainID, 10), strconv.FormatUint(e.BlockNumber, 10),
				e.Latency.Round(time.Millisecond).String(), status)
		}
		fmt.Fprint(out, t.Render())
		if pickErr != nil {
			return fmt.Errorf("%s: %w", net.Name, pickErr)
		}
		fmt.Fprintln(out, ui.Info(fmt.Sprintf("%s picks %s (%s)", ui.Network(net.Name), winner.URL, algo)))
		return nil
	},
}

func detectChainID(ctx context.Context, url string) (int64, error) {
	if url == "" {
		return 0, fmt.Errorf("--rpc is required")
	}
	dialCtx, cancel := context.WithTimeout(ctx, config.RPCDialTimeout)
	defer cancel()
	client, err := chain.Dial(dialCtx, url)
	if err != nil {
		return 0, err
	}
	defer client.Close()
	id, err := client.ChainID(dialCtx)
	if err != nil {
		return 0, err
	}
	return id.Int64(), nil
}

func init() {
	networkAddCmd.Flags().StringVar(&networkRPC, "rpc", "", "JSON-RPC endpoint (required)")
	networkAddCmd.Flags().StringSliceVar(&networkFallbacks, "fallback", nil, "extra endpoints to choose from (repeatable)")
	networkAddCmd.Flags().Int64Var(&networkChainID, "chain-id", 0, "chain id (read from the node when omitted)")
	networkAddCmd.Flags().StringVar(&networkExplorer, "explorer", "", "block explorer base URL")

	networkCmd.AddCommand(networkListCmd, networkAddCmd, networkRemoveCmd, networkPingCmd)
}

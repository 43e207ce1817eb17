package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/samkit/internal/chain"
	"github.com/Mohsinsiddi/samkit/internal/ui"
	"github.com/Mohsinsiddi/samkit/internal/wallet"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	walletKey      string
	walletAddress  string
	walletPick     bool
	walletBalances bool
	walletSignName string
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage deployer wallets",
	Long: `Wallet metadata is stored in wallets.json; private keys live in the OS
keyring (or an encrypted file keyring when none is available).`,
}

var walletImportCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Import a private key (or a watch-only address)",
	Long: `Import a private key. Pass it with --key or on stdin; with --address the
wallet is watch-only and cannot send transactions.

Examples:
  samkit wallet import deployer --key 0x…
  echo $KEY | samkit wallet import deployer
  samkit wallet import treasury --address 0xabc…`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		m := newWalletManager()
		out := cmd.OutOrStdout()

		if walletAddress != "" {
			if err := m.Add(name, &wallet.Wallet{Address: walletAddress}); err != nil {
				return err
			}
			w, err := m.Get(name)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Added watch-only wallet %s (%s)", name, ui.Addr(w.Address))))
			return nil
		}

		key := walletKey
		if key == "" {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.New("no private key given (use --key or pipe it on stdin)")
			}
			key = strings.TrimSpace(line)
		}
		w, err := m.AddWithKey(name, key)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Imported %s (%s)", name, ui.Addr(w.Address))))
		if w.IsDefault {
			fmt.Fprintln(out, ui.Info("set as default wallet"))
		}
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wallets, err := newWalletManager().List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(wallets) == 0 {
			fmt.Fprintln(out, ui.Info("no wallets (import one with `samkit wallet import <name>`)"))
			return nil
		}
		t := ui.NewTable(ui.Column{Title: ""}, ui.Column{Title: "Name"}, ui.Column{Title: "Address"}, ui.Column{Title: "Type"})
		for _, w := range wallets {
			mark := ""
			if w.IsDefault {
				mark = "*"
			}
			t.AddRow(mark, w.Name, w.Address, w.Type)
		}
		fmt.Fprint(out, t.Render())
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newWalletManager().Remove(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Removed "+args[0]))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newWalletManager().SetDefault(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(args[0]+" is now the default wallet"))
		return nil
	},
}

var walletAccountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Show the well-known development accounts",
	Long: `Show the development accounts funded by Hardhat and Anvil. Their keys are
public: never send real funds to them.

With --pick, choose one interactively and import it as dev<N>.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		accts := wallet.HardhatAccounts()

		if walletPick {
			items := make([]ui.PickerItem, len(accts))
			for i, a := range accts {
				items[i] = ui.PickerItem{Label: fmt.Sprintf("#%d", a.Index), SubLabel: a.Address.Hex(), Value: strconv.Itoa(a.Index)}
			}
			picked, err := ui.PickItem("Import a development account", items)
			if err != nil {
				return err
			}
			i, _ := strconv.Atoi(picked)
			name := fmt.Sprintf("dev%d", i)
			w, err := newWalletManager().AddWithKey(name, hexutil.Encode(crypto.FromECDSA(accts[i].Key)))
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Imported %s (%s)", name, ui.Addr(w.Address))))
			return nil
		}

		cols := []ui.Column{{Title: "#"}, {Title: "Address"}}
		if walletBalances {
			cols = append(cols, ui.Column{Title: "Balance (ETH)"})
		}
		t := ui.NewTable(cols...)

		var sess *session
		if walletBalances {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			sess = s
		}
		for _, a := range accts {
			row := []string{strconv.Itoa(a.Index), a.Address.Hex()}
			if sess != nil {
				bal, err := sess.backend.BalanceAt(cmd.Context(), a.Address)
				if err != nil {
					return err
				}
				row = append(row, chain.WeiToETH(bal))
			}
			t.AddRow(row...)
		}
		fmt.Fprint(out, t.Render())
		fmt.Fprintln(out, ui.Warn("These keys are public. Never use them outside local development."))
		return nil
	},
}

var walletSignCmd = &cobra.Command{
	Use:   "sign <message>",
	Short: "Sign a message with personal_sign (EIP-191)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := wallet.Resolve(newWalletManager(), walletSignName, false)
		if err != nil {
			return err
		}
		sig, err := wallet.SignMessage(key, []byte(args[0]))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hexutil.Encode(sig))
		return nil
	},
}

var walletVerifyCmd = &cobra.Command{
	Use:   "verify <message> <signature>",
	Short: "Recover the signer of a personal_sign signature",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sig, err := hexutil.Decode(args[1])
		if err != nil {
			return fmt.Errorf("signature: %w", err)
		}
		addr, err := wallet.VerifyMessage([]byte(args[0]), sig)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), addr.Hex())
		return nil
	},
}

func init() {
	walletImportCmd.Flags().StringVar(&walletKey, "key", "", "hex private key (read from stdin when omitted)")
	walletImportCmd.Flags().StringVar(&walletAddress, "address", "", "add a watch-only address instead of a key")
	walletAccountsCmd.Flags().BoolVar(&walletPick, "pick", false, "pick an account and import it")
	walletAccountsCmd.Flags().BoolVar(&walletBalances, "balances", false, "show ETH balances on the current network")
	walletSignCmd.Flags().StringVarP(&walletSignName, "wallet", "w", "", "wallet to sign with (default: default wallet)")

	walletCmd.AddCommand(walletImportCmd, walletListCmd, walletRemoveCmd, walletUseCmd, walletAccountsCmd, walletSignCmd, walletVerifyCmd)
}

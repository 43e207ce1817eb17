package cmd

import (
	"fmt"
	"strconv"

	"github.com/Mohsinsiddi/samkit/internal/sam"
	"github.com/Mohsinsiddi/samkit/internal/ui"
	"github.com/spf13/cobra"
)

var (
	tokenRef    string
	tokenWallet string
	tokenRaw    bool
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Read and operate the SAM token",
	Long: `Token commands use the deployment recorded for the current network (by
symbol, or --token <name|address>). On the in-process hardhat network a fresh
token and faucet are deployed first.`,
}

var tokenInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show name, symbol, supply, owner and minters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		tok, _, err := sess.tokenStack(ctx, tokenRef, "")
		if err != nil {
			return err
		}
		name, err := tok.Name(ctx)
		if err != nil {
			return err
		}
		symbol, err := tok.Symbol(ctx)
		if err != nil {
			return err
		}
		decimals, err := tok.Decimals(ctx)
		if err != nil {
			return err
		}
		supply, err := tok.TotalSupply(ctx)
		if err != nil {
			return err
		}
		owner, err := tok.Owner(ctx)
		if err != nil {
			return err
		}
		minters, err := tok.Minters(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock(name, [][2]string{
			{"Network", sess.net.Name},
			{"Address", tok.Address().Hex()},
			{"Symbol", symbol},
			{"Decimals", strconv.Itoa(int(decimals))},
			{"Total supply", formatAmount(supply, symbol)},
			{"Owner", owner.Hex()},
			{"Minters", strconv.Itoa(len(minters))},
		}))
		return nil
	},
}

var tokenBalanceCmd = &cobra.Command{
	Use:   "balance <address|wallet|#i>",
	Short: "Show the token balance of an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		account, err := sess.resolveAddress(ctx, args[0])
		if err != nil {
			return err
		}
		tok, _, err := sess.tokenStack(ctx, tokenRef, "")
		if err != nil {
			return err
		}
		symbol, err := tok.Symbol(ctx)
		if err != nil {
			return err
		}
		bal, err := tok.BalanceOf(ctx, account)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", ui.Addr(account.Hex()), formatAmount(bal, symbol))
		return nil
	},
}

var tokenTransferCmd = &cobra.Command{
	Use:   "transfer <to> <amount>",
	Short: "Transfer tokens from your wallet",
	Long: `Transfer tokens. The amount is in whole tokens (18 decimals) unless --raw
is given, in which case it is in base units.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		sess, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		to, err := sess.resolveAddress(ctx, args[0])
		if err != nil {
			return err
		}
		amount, err := parseAmount(args[1], tokenRaw)
		if err != nil {
			return err
		}
		key, err := sess.signer(tokenWallet)
		if err != nil {
			return err
		}
		tok, _, err := sess.tokenStack(ctx, tokenRef, "")
		if err != nil {
			return err
		}
		symbol, err := tok.Symbol(ctx)
		if err != nil {
			return err
		}

		r, err := tok.Connect(key).Transfer(ctx, to, amount)
		if err != nil {
			return err
		}
		sess.logTx(out, "transfer", r)
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Sent %s to %s", formatAmount(amount, symbol), ui.Addr(to.Hex()))))
		return nil
	},
}

var tokenMintersCmd = &cobra.Command{
	Use:   "minters",
	Short: "List accounts holding MINTER_ROLE",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		tok, faucet, err := sess.tokenStack(ctx, tokenRef, "")
		if err != nil {
			return err
		}
		minters, err := tok.Minters(ctx)
		if err != nil {
			return err
		}
		owner, err := tok.Owner(ctx)
		if err != nil {
			return err
		}

		t := ui.NewTable(ui.Column{Title: "#"}, ui.Column{Title: "Address"}, ui.Column{Title: "Role"})
		for i, m := range minters {
			role := ""
			switch {
			case m == owner:
				role = "owner"
			case faucet != nil && m == faucet.Address():
				role = "faucet"
			}
			t.AddRow(strconv.Itoa(i), m.Hex(), role)
		}
		fmt.Fprint(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

var tokenAddMinterCmd = &cobra.Command{
	Use:   "add-minter <address|wallet|#i>",
	Short: "Grant MINTER_ROLE (owner only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		sess, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		account, err := sess.resolveAddress(ctx, args[0])
		if err != nil {
			return err
		}
		key, err := sess.signer(tokenWallet)
		if err != nil {
			return err
		}
		tok, _, err := sess.tokenStack(ctx, tokenRef, "")
		if err != nil {
			return err
		}
		r, err := tok.Connect(key).AddMinter(ctx, account)
		if err != nil {
			return err
		}
		sess.logTx(out, "addMinter", r)

		ok, err := tok.HasRole(ctx, sam.MinterRole, account)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s still lacks MINTER_ROLE", account.Hex())
		}
		fmt.Fprintln(out, ui.Success(account.Hex()+" can now mint"))
		return nil
	},
}

func init() {
	tokenCmd.PersistentFlags().StringVar(&tokenRef, "token", "", "token deployment name or address (default: configured symbol)")
	tokenCmd.PersistentFlags().StringVarP(&tokenWallet, "wallet", "w", "", "wallet that sends transactions")
	tokenTransferCmd.Flags().BoolVar(&tokenRaw, "raw", false, "amount is in base units")

	tokenCmd.AddCommand(tokenInfoCmd, tokenBalanceCmd, tokenTransferCmd, tokenMintersCmd, tokenAddMinterCmd)
}

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/samkit/internal/sam"
	"github.com/Mohsinsiddi/samkit/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	faucetRef     string
	faucetWallet  string
	faucetFor     string
	faucetAccount string
)

var errNoFaucet = errors.New("no faucet deployed on this network (deploy with `samkit deploy --with-faucet`)")

var faucetCmd = &cobra.Command{
	Use:   "faucet",
	Short: "Claim tokens from the SAM faucet",
}

var faucetDripCmd = &cobra.Command{
	Use:   "drip",
	Short: "Mint the drip amount to your wallet (once per cooldown)",
	Long: `Claim the faucet drip. With --for the call is relayed: the sending wallet
must be the faucet's trusted forwarder and the tokens go to the given account.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		sess, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		key, err := sess.signer(faucetWallet)
		if err != nil {
			return err
		}
		tok, faucet, err := sess.faucetStack(ctx, faucetRef)
		if err != nil {
			return err
		}
		f := faucet.Connect(key)
		recipient := f.From()

		if faucetFor != "" {
			recipient, err = sess.resolveAddress(ctx, faucetFor)
			if err != nil {
				return err
			}
			trusted, err := f.IsTrustedForwarder(ctx, f.From())
			if err != nil {
				return err
			}
			if !trusted {
				return fmt.Errorf("%s is not the faucet's trusted forwarder", f.From().Hex())
			}
			r, err := f.DripFor(ctx, recipient)
			if err != nil {
				return err
			}
			sess.logTx(out, "drip (relayed)", r)
		} else {
			r, err := f.Drip(ctx)
			if err != nil {
				return err
			}
			sess.logTx(out, "drip", r)
		}

		symbol, err := tok.Symbol(ctx)
		if err != nil {
			return err
		}
		bal, err := tok.BalanceOf(ctx, recipient)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Dripped to %s, balance now %s", ui.Addr(recipient.Hex()), formatAmount(bal, symbol))))
		return nil
	},
}

var faucetInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the faucet's token, drip amount and cooldown",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		_, faucet, err := sess.faucetStack(ctx, faucetRef)
		if err != nil {
			return err
		}
		pairs, err := faucetSummary(ctx, faucet)
		if err != nil {
			return err
		}

		if faucetAccount != "" {
			account, err := sess.resolveAddress(ctx, faucetAccount)
			if err != nil {
				return err
			}
			last, err := faucet.LastDrip(ctx, account)
			if err != nil {
				return err
			}
			if last.IsZero() {
				pairs = append(pairs, [2]string{"Last drip", "never"})
			} else {
				cooldown, err := faucet.Cooldown(ctx)
				if err != nil {
					return err
				}
				pairs = append(pairs,
					[2]string{"Last drip", last.Format("2006-01-02 15:04:05 MST")},
					[2]string{"Next drip", last.Add(cooldown).Format("2006-01-02 15:04:05 MST")})
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Faucet on "+sess.net.Name, pairs))
		return nil
	},
}

func faucetSummary(ctx context.Context, f *sam.Faucet) ([][2]string, error) {
	symbol, err := f.Symbol(ctx)
	if err != nil {
		return nil, err
	}
	token, err := f.Token(ctx)
	if err != nil {
		return nil, err
	}
	amount, err := f.Amount(ctx)
	if err != nil {
		return nil, err
	}
	cooldown, err := f.Cooldown(ctx)
	if err != nil {
		return nil, err
	}
	pairs := [][2]string{
		{"Address", f.Address().Hex()},
		{"Token", token.Hex()},
		{"Drip", formatAmount(amount, symbol)},
		{"Cooldown", cooldown.String()},
	}
	if cfg.Faucet.Forwarder != "" && common.IsHexAddress(cfg.Faucet.Forwarder) {
		fwd := common.HexToAddress(cfg.Faucet.Forwarder)
		trusted, err := f.IsTrustedForwarder(ctx, fwd)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, [2]string{"Forwarder", fmt.Sprintf("%s (trusted: %t)", fwd.Hex(), trusted)})
	}
	return pairs, nil
}

func init() {
	faucetCmd.PersistentFlags().StringVar(&faucetRef, "faucet", "", "faucet deployment name or address (default: <symbol>Faucet)")
	faucetDripCmd.Flags().StringVarP(&faucetWallet, "wallet", "w", "", "wallet that sends the drip")
	faucetDripCmd.Flags().StringVar(&faucetFor, "for", "", "relay the drip for this account (sender must be the trusted forwarder)")
	faucetInfoCmd.Flags().StringVar(&faucetAccount, "account", "", "also show the last drip of this account")

	faucetCmd.AddCommand(faucetDripCmd, faucetInfoCmd)
}

package cmd

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/samkit/internal/chain"
	"github.com/Mohsinsiddi/samkit/internal/deploy"
	"github.com/Mohsinsiddi/samkit/internal/devnet"
	"github.com/Mohsinsiddi/samkit/internal/sam"
	"github.com/Mohsinsiddi/samkit/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	deployContract     string
	deployName         string
	deploySymbol       string
	deploySupply       string
	deployWithFaucet   bool
	deployFaucetAmount string
	deployForwarder    string
	deployWallet       string
	deployYes          bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the SAM token (and optionally its faucet)",
	Long: `Deploy SampleToken (default) or SampleCoin with the configured name, symbol
and initial supply, then record the addresses in the deployment registry.

The initial supply is in base units and is not scaled by decimals.

Examples:
  samkit deploy
  samkit deploy --with-faucet --faucet-amount 10000
  samkit deploy --contract SampleCoin --network localhost
  samkit deploy --network sepolia --wallet deployer`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		p, err := deployParams(cmd)
		if err != nil {
			return err
		}

		sess, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		key, err := sess.signer(deployWallet)
		if err != nil {
			return err
		}

		if sess.net.ChainID != devnet.DefaultChainID && !deployYes {
			q := fmt.Sprintf("Deploy %s (%s) to %s?", p.Contract, p.Symbol, sess.net.DisplayName)
			if !ui.Confirm(cmd.InOrStdin(), out, q) {
				return errors.New("deployment cancelled")
			}
		}

		var spin *ui.Spinner
		if sess.client != nil {
			spin = ui.NewSpinner(cmd.ErrOrStderr(), "Waiting for confirmations on "+sess.net.Name+"…")
			spin.Start()
		}
		res, err := deploy.Run(ctx, sess.backend, key, p, out)
		if spin != nil {
			spin.Stop()
		}
		if err != nil {
			return err
		}

		if verbose {
			fmt.Fprintln(out, ui.Meta(fmt.Sprintf("  %s tx %s (block %d)", res.Token.Contract, res.Token.TxHash.Hex(), res.Token.Block)))
			if res.Faucet != nil {
				fmt.Fprintln(out, ui.Meta(fmt.Sprintf("  Faucet tx %s (block %d)", res.Faucet.TxHash.Hex(), res.Faucet.Block)))
				fmt.Fprintln(out, ui.Meta("  addMinter tx "+res.MinterTx.Hex()))
			}
		}

		if sess.net.InProcess {
			fmt.Fprintln(out, ui.Info(sess.net.Name+" is in-process: this deployment is discarded on exit"))
			return nil
		}
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		if err := deploy.Record(reg, sess.net.Name, res); err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Recorded %s on %s", res.Token.Name, sess.net.Name)))
		if link := sess.net.AddressURL(res.Token.Address.Hex()); link != "" {
			fmt.Fprintln(out, ui.Meta("  "+link))
		}
		return nil
	},
}

// deployParams layers flags over the config defaults.
func deployParams(cmd *cobra.Command) (deploy.Params, error) {
	p, err := paramsFromConfig()
	if err != nil {
		return p, err
	}
	flags := cmd.Flags()
	if flags.Changed("contract") {
		p.Contract = deployContract
	}
	if flags.Changed("name") {
		p.Name = deployName
	}
	if flags.Changed("symbol") {
		p.Symbol = deploySymbol
	}
	if flags.Changed("supply") {
		supply, ok := new(big.Int).SetString(deploySupply, 10)
		if !ok {
			return p, fmt.Errorf("--supply %q is not an integer", deploySupply)
		}
		p.InitialSupply = supply
	}
	p.WithFaucet = deployWithFaucet
	if flags.Changed("faucet-amount") {
		amount, err := chain.ParseUnits(deployFaucetAmount, sam.Decimals)
		if err != nil {
			return p, fmt.Errorf("--faucet-amount: %w", err)
		}
		p.FaucetAmount = amount
	}
	if flags.Changed("forwarder") {
		if !common.IsHexAddress(deployForwarder) {
			return p, fmt.Errorf("--forwarder %q is not an address", deployForwarder)
		}
		p.Forwarder = common.HexToAddress(deployForwarder)
	}

	arts, err := loadArtifacts()
	if err != nil {
		return p, err
	}
	p.Artifacts = arts
	return p, p.Validate()
}

func init() {
	f := deployCmd.Flags()
	f.StringVar(&deployContract, "contract", "", "token contract: SampleToken or SampleCoin (default from config)")
	f.StringVar(&deployName, "name", "", "token name (default from config: Sample Coin)")
	f.StringVar(&deploySymbol, "symbol", "", "token symbol (default from config: SAM)")
	f.StringVar(&deploySupply, "supply", "", "initial supply in base units (default from config: 10000000000)")
	f.BoolVar(&deployWithFaucet, "with-faucet", false, "also deploy a Faucet and make it a minter")
	f.StringVar(&deployFaucetAmount, "faucet-amount", "", "tokens per drip (default from config: 10000)")
	f.StringVar(&deployForwarder, "forwarder", "", "trusted ERC-2771 forwarder for the faucet")
	f.StringVarP(&deployWallet, "wallet", "w", "", "wallet to deploy from (default: default wallet)")
	f.BoolVarP(&deployYes, "yes", "y", false, "skip the confirmation on public networks")
}

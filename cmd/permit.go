package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"time"

	"github.com/Mohsinsiddi/samkit/internal/contract"
	"github.com/Mohsinsiddi/samkit/internal/permit"
	"github.com/Mohsinsiddi/samkit/internal/sam"
	"github.com/Mohsinsiddi/samkit/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	permitCoin      string
	permitWallet    string
	permitOwner     string
	permitSpender   string
	permitAmount    string
	permitRaw       bool
	permitDeadline  string
	permitSig       string
	permitTypedData bool
)

var permitCmd = &cobra.Command{
	Use:   "permit",
	Short: "Build, sign and submit EIP-712 permits for SampleCoin",
	Long: `Permits let an owner grant an allowance off-chain. The owner signs the
EIP-712 digest; anyone can then submit it with permit().

Example flow against a node:
  samkit permit sign   --spender 0x7099… --amount 100 --deadline 1h
  samkit permit submit --owner 0xf39F… --spender 0x7099… --amount 100 \
                       --deadline <unix> --sig 0x…`,
}

var permitDigestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Print the domain separator, struct hash and digest for a permit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		coin, err := sess.coin(ctx, permitCoin)
		if err != nil {
			return err
		}
		owner, err := permitOwnerAddress(ctx, sess)
		if err != nil {
			return err
		}
		m, name, chainID, err := buildPermit(ctx, sess, coin, owner)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if permitTypedData {
			return printTypedData(out, permit.TypedData(name, chainID, coin.Address(), m))
		}
		ds := permit.DomainSeparator(name, chainID, coin.Address())
		fmt.Fprintln(out, ui.KeyValueBlock("Permit", append(messagePairs(m),
			[2]string{"Domain separator", ds.Hex()},
			[2]string{"Struct hash", permit.StructHash(m).Hex()},
			[2]string{"Digest", permit.Digest(ds, m).Hex()},
		)))
		return nil
	},
}

var permitSignCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a permit with your wallet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		key, err := sess.signer(permitWallet)
		if err != nil {
			return err
		}
		owner := crypto.PubkeyToAddress(key.PublicKey)
		if permitOwner != "" {
			want, err := sess.resolveAddress(ctx, permitOwner)
			if err != nil {
				return err
			}
			if want != owner {
				return fmt.Errorf("--owner %s does not match the signing wallet %s", want.Hex(), owner.Hex())
			}
		}

		coin, err := sess.coin(ctx, permitCoin)
		if err != nil {
			return err
		}
		spender, amount, deadline, err := permitInputs(ctx, sess)
		if err != nil {
			return err
		}
		chainID, err := sess.backend.ChainID(ctx)
		if err != nil {
			return err
		}
		signed, err := permit.Create(ctx, coin, chainID, key, permit.Request{
			Owner:    owner,
			Spender:  spender,
			Amount:   amount,
			Deadline: deadline,
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Signed permit", append(messagePairs(signed.Message),
			[2]string{"Digest", signed.Digest.Hex()},
			[2]string{"v", strconv.Itoa(int(signed.Signature.V))},
			[2]string{"r", hexutil.Encode(signed.Signature.R[:])},
			[2]string{"s", hexutil.Encode(signed.Signature.S[:])},
			[2]string{"Signature", signed.Signature.Hex()},
		)))
		return nil
	},
}

var permitSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a signed permit on-chain",
	Long: `Submit a permit signed by --owner. The sending wallet only pays gas; it
does not need to be the owner or the spender. --deadline must be the exact
unix timestamp that was signed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		if permitOwner == "" || permitSig == "" {
			return fmt.Errorf("--owner and --sig are required")
		}
		if _, ok := new(big.Int).SetString(permitDeadline, 10); !ok {
			return fmt.Errorf("--deadline must be the signed unix timestamp, got %q", permitDeadline)
		}
		raw, err := hexutil.Decode(permitSig)
		if err != nil {
			return fmt.Errorf("--sig: %w", err)
		}
		sig, err := permit.ParseSignature(raw)
		if err != nil {
			return err
		}

		sess, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		owner, err := sess.resolveAddress(ctx, permitOwner)
		if err != nil {
			return err
		}
		key, err := sess.signer(permitWallet)
		if err != nil {
			return err
		}
		coin, err := sess.coin(ctx, permitCoin)
		if err != nil {
			return err
		}
		m, _, _, err := buildPermit(ctx, sess, coin, owner)
		if err != nil {
			return err
		}

		r, err := coin.Connect(key).Permit(ctx, m, sig)
		if err != nil {
			return err
		}
		sess.logTx(out, "permit", r)

		allowance, err := coin.Allowance(ctx, m.Owner, m.Spender)
		if err != nil {
			return err
		}
		symbol, err := coin.Symbol(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Permit accepted: %s may spend %s of %s",
			ui.Addr(m.Spender.Hex()), formatAmount(allowance, symbol), ui.Addr(m.Owner.Hex()))))
		return nil
	},
}

// buildPermit assembles the message for owner from the flags and the
// on-chain name and nonce.
func buildPermit(ctx context.Context, sess *session, coin *sam.Coin, owner common.Address) (permit.Message, string, *big.Int, error) {
	var m permit.Message
	spender, amount, deadline, err := permitInputs(ctx, sess)
	if err != nil {
		return m, "", nil, err
	}
	name, err := coin.Name(ctx)
	if err != nil {
		return m, "", nil, err
	}
	nonce, err := coin.Nonces(ctx, owner)
	if err != nil {
		return m, "", nil, err
	}
	chainID, err := sess.backend.ChainID(ctx)
	if err != nil {
		return m, "", nil, err
	}
	m = permit.Message{Owner: owner, Spender: spender, Amount: amount, Nonce: nonce, Deadline: deadline}
	if err := m.Validate(); err != nil {
		return permit.Message{}, "", nil, err
	}
	return m, name, chainID, nil
}

func permitInputs(ctx context.Context, sess *session) (common.Address, *big.Int, *big.Int, error) {
	if permitSpender == "" || permitAmount == "" {
		return common.Address{}, nil, nil, fmt.Errorf("--spender and --amount are required")
	}
	spender, err := sess.resolveAddress(ctx, permitSpender)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	amount, err := parseAmount(permitAmount, permitRaw)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	deadline, err := parseDeadline(ctx, sess.backend, permitDeadline)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	return spender, amount, deadline, nil
}

// parseDeadline accepts unix seconds or a duration added to the latest
// block time.
func parseDeadline(ctx context.Context, backend contract.Backend, s string) (*big.Int, error) {
	if n, ok := new(big.Int).SetString(s, 10); ok {
		if n.Sign() < 0 || n.BitLen() > 256 {
			return nil, fmt.Errorf("--deadline %q: out of uint256 range", s)
		}
		return n, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return nil, fmt.Errorf("--deadline %q: want unix seconds or a positive duration like 1h", s)
	}
	now, err := backend.BlockTimestamp(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading block time: %w", err)
	}
	return new(big.Int).SetUint64(now + uint64(d/time.Second)), nil
}

func permitOwnerAddress(ctx context.Context, sess *session) (common.Address, error) {
	if permitOwner != "" {
		return sess.resolveAddress(ctx, permitOwner)
	}
	key, err := sess.signer(permitWallet)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}

func messagePairs(m permit.Message) [][2]string {
	return [][2]string{
		{"Owner", m.Owner.Hex()},
		{"Spender", m.Spender.Hex()},
		{"Amount", m.Amount.String()},
		{"Nonce", m.Nonce.String()},
		{"Deadline", formatDeadline(m.Deadline)},
	}
}

// formatDeadline shows the unix deadline with its date when it fits a time.Time.
func formatDeadline(d *big.Int) string {
	if d == nil {
		return "0"
	}
	if !d.IsInt64() || d.Int64() > maxDisplayUnix {
		return d.String()
	}
	return fmt.Sprintf("%s (%s)", d, time.Unix(d.Int64(), 0).UTC().Format(time.RFC3339))
}

// maxDisplayUnix is 9999-12-31T23:59:59Z; RFC3339 has four-digit years.
const maxDisplayUnix = 253402300799

func printTypedData(out io.Writer, td any) error {
	data, err := json.MarshalIndent(td, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func init() {
	pf := permitCmd.PersistentFlags()
	pf.StringVar(&permitCoin, "coin", "", "SampleCoin deployment name or address (default: configured symbol)")
	pf.StringVarP(&permitWallet, "wallet", "w", "", "wallet that signs or sends")
	pf.StringVar(&permitOwner, "owner", "", "token owner granting the allowance")
	pf.StringVar(&permitSpender, "spender", "", "account allowed to spend")
	pf.StringVar(&permitAmount, "amount", "", "allowance in whole tokens")
	pf.BoolVar(&permitRaw, "raw", false, "amount is in base units")
	pf.StringVar(&permitDeadline, "deadline", "1h", "unix seconds, or a duration from the latest block time")

	permitDigestCmd.Flags().BoolVar(&permitTypedData, "typed-data", false, "print the eth_signTypedData_v4 payload instead")
	permitSubmitCmd.Flags().StringVar(&permitSig, "sig", "", "65-byte signature (0x r‖s‖v)")

	permitCmd.AddCommand(permitDigestCmd, permitSignCmd, permitSubmitCmd)
}

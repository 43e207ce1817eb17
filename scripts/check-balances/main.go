// check-balances: queries the ETH and SAM balances of the development
// accounts on a running node in parallel and prints a summary table.
//
// Run from the module root against `npx hardhat node` or `anvil`:
//
//	go run ./scripts/check-balances -token 0x5FbDB2315678afecb367f032d93F642f64180aa3
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/Mohsinsiddi/samkit/internal/chain"
	"github.com/Mohsinsiddi/samkit/internal/sam"
	"github.com/Mohsinsiddi/samkit/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
)

// ── config ────────────────────────────────────────────────────────────────────

const rpcTimeout = 12 * time.Second

var (
	rpcURL    = flag.String("rpc", "http://127.0.0.1:8545", "JSON-RPC endpoint")
	tokenAddr = flag.String("token", "", "SAM token address (ETH only when empty)")
	accounts  = flag.Int("accounts", 10, "number of development accounts to query")
)

// ── types ─────────────────────────────────────────────────────────────────────

type result struct {
	index  int
	wallet string // short form
	eth    string
	sam    string
	err    string
}

// ── main ──────────────────────────────────────────────────────────────────────

func main() {
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	client, err := chain.Dial(ctx, *rpcURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer client.Close()

	// Quick ping first so an unreachable node fails once, not per account.
	if _, _, err := client.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s is unreachable: %v\n", *rpcURL, err)
		os.Exit(1)
	}

	var token *sam.Token
	if *tokenAddr != "" {
		if !common.IsHexAddress(*tokenAddr) {
			fmt.Fprintf(os.Stderr, "-token %q is not an address\n", *tokenAddr)
			os.Exit(1)
		}
		token = sam.BindToken(client, common.HexToAddress(*tokenAddr))
	}

	devAccounts := wallet.HardhatAccounts()
	if *accounts < len(devAccounts) {
		devAccounts = devAccounts[:*accounts]
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []result
	)
	for _, a := range devAccounts {
		wg.Add(1)
		go func(a wallet.Account) {
			defer wg.Done()

			r := result{index: a.Index, wallet: shortAddr(a.Address.Hex()), eth: "—", sam: "—"}
			if bal, err := client.BalanceAt(ctx, a.Address); err != nil {
				r.err = shortErr(err)
			} else {
				r.eth = chain.WeiToETH(bal)
			}
			if token != nil && r.err == "" {
				if bal, err := token.BalanceOf(ctx, a.Address); err != nil {
					r.err = shortErr(err)
				} else {
					r.sam = chain.FormatToken(bal, sam.Decimals)
				}
			}

			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		}(a)
	}
	wg.Wait()

	printTable(results)
}

// ── output ────────────────────────────────────────────────────────────────────

func printTable(results []result) {
	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "#\tWALLET\tETH\tSAM\tNOTE")
	fmt.Fprintln(w, strings.Repeat("-", 3)+"\t"+
		strings.Repeat("-", 14)+"\t"+
		strings.Repeat("-", 24)+"\t"+
		strings.Repeat("-", 24)+"\t"+
		strings.Repeat("-", 12))

	for _, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.index, r.wallet, r.eth, r.sam, r.err)
	}
	w.Flush()
}

// ── helpers ───────────────────────────────────────────────────────────────────

func shortAddr(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

func shortErr(err error) string {
	s := err.Error()
	if len(s) > 30 {
		return s[:30] + "…"
	}
	return s
}

package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/Mohsinsiddi/samkit/internal/chain"
)

// ProbeTimeout bounds a single endpoint probe.
const ProbeTimeout = 5 * time.Second

// Probe pings every URL in parallel and returns results in input order.
func Probe(ctx context.Context, urls []string) []Endpoint {
	results := make([]Endpoint, len(urls))
	var wg sync.WaitGroup

	for i, url := range urls {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()
			results[idx] = probeOne(ctx, u)
		}(i, url)
	}

	wg.Wait()
	return results
}

func probeOne(ctx context.Context, url string) Endpoint {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	ep := Endpoint{URL: url}
	c, err := chain.Dial(ctx, url)
	if err != nil {
		ep.Err = err
		return ep
	}
	defer c.Close()

	ep.Latency, ep.BlockNumber, ep.Err = c.Ping(ctx)
	if ep.Err != nil {
		return ep
	}
	id, err := c.ChainID(ctx)
	if err != nil {
		ep.Err = err
		return ep
	}
	ep.ChainID = id.Int64()
	return ep
}

// Best returns the endpoint to use for a network. A single URL is returned
// without probing.
func Best(ctx context.Context, urls []string, algo Algorithm, wantChainID int64) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}
	winner, err := Pick(Probe(ctx, urls), algo, wantChainID)
	if err != nil {
		return "", err
	}
	return winner.URL, nil
}

// Package rpc chooses between the JSON-RPC endpoints of a network.
package rpc

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrNoHealthyRPC is returned when no endpoint answered.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm selects how an endpoint is chosen.
type Algorithm string

const (
	// AlgorithmFastest probes every endpoint and takes the lowest latency
	// among those near the chain head.
	AlgorithmFastest Algorithm = "fastest"
	// AlgorithmFailover takes the first endpoint, in configured order, that answers.
	AlgorithmFailover Algorithm = "failover"

	// Discard nodes more than this many blocks behind the best.
	staleBlockThreshold = 3
)

// ParseAlgorithm accepts "fastest", "failover" or "" (fastest).
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case "":
		return AlgorithmFastest, nil
	case AlgorithmFastest, AlgorithmFailover:
		return a, nil
	default:
		return "", fmt.Errorf("unknown rpc algorithm %q (want fastest or failover)", s)
	}
}

// Endpoint is one probed RPC URL.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	ChainID     int64
	Err         error
}

// Healthy reports whether the probe succeeded.
func (e Endpoint) Healthy() bool { return e.Err == nil }

// Pick chooses an endpoint from probed results. Endpoints that report a
// different chain than wantChainID (when non-zero) are never chosen.
func Pick(endpoints []Endpoint, algo Algorithm, wantChainID int64) (*Endpoint, error) {
	var candidates []*Endpoint
	var bestBlock uint64
	for i := range endpoints {
		e := &endpoints[i]
		if !e.Healthy() || (wantChainID != 0 && e.ChainID != wantChainID) {
			continue
		}
		candidates = append(candidates, e)
		if e.BlockNumber > bestBlock {
			bestBlock = e.BlockNumber
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoHealthyRPC
	}
	if algo == AlgorithmFailover {
		return candidates[0], nil
	}

	fresh := candidates[:0:0]
	for _, e := range candidates {
		if bestBlock-e.BlockNumber <= staleBlockThreshold {
			fresh = append(fresh, e)
		}
	}
	sort.SliceStable(fresh, func(i, j int) bool { return fresh[i].Latency < fresh[j].Latency })
	return fresh[0], nil
}

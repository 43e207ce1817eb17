package samples

import "github.com/Mohsinsiddi/samkit/internal/devnet"

// Install registers the native sample contracts on c.
func Install(c *devnet.Chain) {
	c.Register("SampleToken", NewSampleToken)
	c.Register("SampleCoin", NewSampleCoin)
	c.Register("Faucet", NewFaucet)
}

// NewDevnet returns a fresh devnet with the sample contracts installed.
func NewDevnet(opts ...devnet.Option) *devnet.Chain {
	c := devnet.New(opts...)
	Install(c)
	return c
}

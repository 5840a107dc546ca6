package ethereum

// ChainConfig holds the per-chain settings for connecting to an
// ethereum node.
type ChainConfig struct {
	// ChainID identifies the chain within this process, e.g. "origin".
	ChainID string
	// Endpoint is the HTTP address of the node.
	Endpoint string
	// Password unlocks the validator account on the node before
	// submitting transactions.
	Password string
}

package core

import "context"

// ChainClient represents the connection to a chain node that the
// observer polls for new blocks. Implementations must support
// concurrent outstanding requests; the same handle is shared by the
// observer and all reactors for that chain.
type ChainClient interface {
	// ChainID returns the identifier of the chain, e.g. "origin".
	ChainID() string

	// PollNewBlockHashes returns the hashes of the blocks that appeared
	// since the previous call. It is called repeatedly at the
	// observer's polling interval.
	PollNewBlockHashes(ctx context.Context) ([]Hash256, error)

	// BlockByHash retrieves the block with the given hash. It returns
	// an error if the node does not know the block or reports a block
	// with a missing mandatory field.
	BlockByHash(ctx context.Context, hash Hash256) (*Block, error)

	// LogsByNumber retrieves all logs emitted within the block with the
	// given number.
	LogsByNumber(ctx context.Context, number uint64) ([]RawLog, error)
}

// BlockStore is a client of the block store contract that records
// canonical hashes of blocks observed on the counterpart chain.
type BlockStore interface {
	// IsBlockReported queries whether the block with the given content
	// hash has already been reported by the given validator.
	IsBlockReported(ctx context.Context, contentHash Hash256, validator Address) (bool, error)

	// ReportBlock submits the canonical block encoding to the contract
	// with a fixed gas budget and returns the transaction hash.
	ReportBlock(ctx context.Context, encodedBlock Bytes, validator Address, gas uint64) (Hash256, error)
}

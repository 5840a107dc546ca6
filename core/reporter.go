package core

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/openst/mosaic/log"
	"github.com/openst/mosaic/metrics"
)

// ReportBlockGas is the gas budget for reportBlock submissions. The
// figure comes from an estimate of the operation's worst case with a
// generous margin to avoid spurious out-of-gas failures.
const ReportBlockGas = 3_000_000

// BlockReporter reacts to every observed block by recording its
// canonical representation in the block store contract on the
// counterpart chain.
//
// Reporting is idempotent per block: the reporter queries
// isBlockReported before submitting, and skips blocks that are already
// recorded. The check is an optimization to avoid wasted gas, not the
// sole correctness mechanism: a duplicate submission can still slip in
// between the query and the call, and the contract itself rejects it.
type BlockReporter struct {
	store     BlockStore
	validator Address
	chainID   string
}

// NewBlockReporter returns a reporter that records blocks observed on
// the chain identified by chainID, submitting from the given validator
// address.
func NewBlockReporter(store BlockStore, validator Address, chainID string) *BlockReporter {
	return &BlockReporter{
		store:     store,
		validator: validator,
		chainID:   chainID,
	}
}

var _ Reactor = (*BlockReporter)(nil)

// React computes the block's content hash and spawns a task that
// performs the remote calls, so that the observer's polling loop is
// never blocked on the block store.
func (r *BlockReporter) React(ctx context.Context, block *Block) error {
	encoded, err := EncodeBlock(block)
	if err != nil {
		return errors.Wrap(err, "encode block for reporting")
	}
	contentHash := Keccak256(encoded)

	go r.report(ctx, block.Number, contentHash, encoded)
	return nil
}

// report performs the check-then-call sequence against the block store.
// Failures are logged only; a failed attempt is naturally retried when
// the block is observed again.
func (r *BlockReporter) report(ctx context.Context, number uint64, contentHash Hash256, encoded Bytes) {
	logger := log.GetLogger().WithModule("reporter").WithChain(r.chainID).WithBlock(number, contentHash.Hex())

	reported, err := r.store.IsBlockReported(ctx, contentHash, r.validator)
	if err != nil {
		metrics.ReportErrorsCounter.WithLabelValues(r.chainID).Inc()
		logger.ErrorWithStack("failed to check whether block is already reported", err)
		return
	}
	if reported {
		// Expected steady state when the block was already observed,
		// e.g. after a restart or by a concurrent node.
		logger.Debug("block already reported")
		return
	}

	txHash, err := r.store.ReportBlock(ctx, encoded, r.validator, ReportBlockGas)
	if err != nil {
		metrics.ReportErrorsCounter.WithLabelValues(r.chainID).Inc()
		logger.ErrorWithStack("failed to report block", err)
		return
	}

	metrics.BlocksReportedCounter.WithLabelValues(r.chainID).Inc()
	logger.Info("reported block", "tx hash", txHash.Hex())
}

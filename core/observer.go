package core

import (
	"context"
	"time"

	"github.com/openst/mosaic/log"
	"github.com/openst/mosaic/metrics"
)

// Observer continuously discovers new blocks on one chain, attaches the
// events decoded from the block's logs, and dispatches the completed
// block to every registered reactor.
//
// Errors inside the polling loop are never fatal: a block that cannot
// be retrieved or converted is logged and skipped, and the loop
// continues with the next one.
type Observer struct {
	client   ChainClient
	registry *EventRegistry
	interval time.Duration
	reactors []Reactor
}

// NewObserver returns an observer that polls the given chain at the
// given interval and decodes logs through the given registry. The
// registry must not be modified after this point.
func NewObserver(client ChainClient, registry *EventRegistry, interval time.Duration) *Observer {
	return &Observer{
		client:   client,
		registry: registry,
		interval: interval,
	}
}

// RegisterReactor adds a reactor. Reactors are notified of every
// observed block in registration order.
func (o *Observer) RegisterReactor(reactor Reactor) {
	o.reactors = append(o.reactors, reactor)
}

// Run polls the chain for new blocks until ctx is cancelled. It only
// returns the ctx error; everything else is handled inside the loop.
func (o *Observer) Run(ctx context.Context) error {
	logger := o.logger()
	logger.Info("starting observer", "interval", o.interval.String())

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("stopping observer")
			return ctx.Err()
		case <-ticker.C:
			hashes, err := o.client.PollNewBlockHashes(ctx)
			if err != nil {
				logger.ErrorWithStack("failed to poll for new block hashes", err)
				continue
			}
			for _, hash := range hashes {
				o.processBlock(ctx, hash)
			}
		}
	}
}

// processBlock retrieves one block, attaches its decoded events and
// dispatches it. Failures only affect this block.
func (o *Observer) processBlock(ctx context.Context, hash Hash256) {
	logger := o.logger()
	chainID := o.client.ChainID()

	block, err := o.client.BlockByHash(ctx, hash)
	if err != nil {
		metrics.BlockErrorsCounter.WithLabelValues(chainID).Inc()
		logger.ErrorWithStack("failed to retrieve block", err, "block hash", hash.Hex())
		return
	}

	logs, err := o.client.LogsByNumber(ctx, block.Number)
	if err != nil {
		metrics.BlockErrorsCounter.WithLabelValues(chainID).Inc()
		logger.ErrorWithStack("failed to retrieve logs", err, "block number", block.Number)
		return
	}

	blockLogger := logger.WithBlock(block.Number, block.Hash.Hex())
	for _, rawLog := range logs {
		event, err := o.registry.Decode(rawLog)
		if err != nil {
			metrics.EventDecodeErrorsCounter.WithLabelValues(chainID).Inc()
			blockLogger.Warn("failed to convert a log into an event", "error", err.Error())
			continue
		}
		if event == nil {
			// The log did not match any registered event.
			continue
		}
		metrics.EventsDecodedCounter.WithLabelValues(chainID).Inc()
		block.Events = append(block.Events, event)
	}

	metrics.BlocksObservedCounter.WithLabelValues(chainID).Inc()
	blockLogger.Debug("observed block", "events", len(block.Events))

	for _, reactor := range o.reactors {
		if err := reactor.React(ctx, block); err != nil {
			blockLogger.ErrorWithStack("reactor failed to handle block", err)
		}
	}
}

func (o *Observer) logger() *log.RelayLogger {
	return log.GetLogger().WithModule("observer").WithChain(o.client.ChainID())
}

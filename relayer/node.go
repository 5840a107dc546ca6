// Package relayer wires up and runs a mosaic node. A node observes the
// origin and the auxiliary chain and commits each chain's blocks onto
// the block store contract on the other chain.
package relayer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/openst/mosaic/chains/ethereum"
	"github.com/openst/mosaic/config"
	"github.com/openst/mosaic/core"
	"github.com/openst/mosaic/log"
)

// Start connects to both chains, registers the event decoders and the
// block reporters, and runs one observer per chain until ctx is
// cancelled. Any error before the observers are running is a startup
// configuration failure and terminates the node.
func Start(ctx context.Context, cfg *config.Config) error {
	logger := log.GetLogger().WithModule("relayer")

	origin, err := ethereum.NewChain(ctx, ethereum.ChainConfig{
		ChainID:  "origin",
		Endpoint: cfg.OriginEndpoint,
		Password: cfg.OriginPassword,
	})
	if err != nil {
		return err
	}
	defer origin.Close()

	auxiliary, err := ethereum.NewChain(ctx, ethereum.ChainConfig{
		ChainID:  "auxiliary",
		Endpoint: cfg.AuxiliaryEndpoint,
		Password: cfg.AuxiliaryPassword,
	})
	if err != nil {
		return err
	}
	defer auxiliary.Close()

	logAccounts(ctx, origin)
	logAccounts(ctx, auxiliary)

	// Blocks observed on origin are recorded in the origin block store,
	// which lives on auxiliary, and vice versa. Each chain's registry
	// watches the block store hosted on that chain.
	originStore, err := ethereum.NewBlockStore(auxiliary, cfg.OriginBlockStoreAddress)
	if err != nil {
		return err
	}
	auxiliaryStore, err := ethereum.NewBlockStore(origin, cfg.AuxiliaryBlockStoreAddress)
	if err != nil {
		return err
	}

	originRegistry := core.NewEventRegistry()
	if err := core.RegisterBlockStoreEvents(originRegistry, cfg.AuxiliaryBlockStoreAddress); err != nil {
		return err
	}
	auxiliaryRegistry := core.NewEventRegistry()
	if err := core.RegisterBlockStoreEvents(auxiliaryRegistry, cfg.OriginBlockStoreAddress); err != nil {
		return err
	}

	originObserver := core.NewObserver(origin, originRegistry, cfg.PollingInterval)
	originObserver.RegisterReactor(core.NewBlockReporter(originStore, cfg.AuxiliaryValidatorAddress, origin.ChainID()))

	auxiliaryObserver := core.NewObserver(auxiliary, auxiliaryRegistry, cfg.PollingInterval)
	auxiliaryObserver.RegisterReactor(core.NewBlockReporter(auxiliaryStore, cfg.OriginValidatorAddress, auxiliary.ChainID()))

	logger.Info("starting mosaic node",
		"origin endpoint", cfg.OriginEndpoint,
		"auxiliary endpoint", cfg.AuxiliaryEndpoint,
	)

	// The two observers run fully independently; neither may assume
	// anything about the other's progress.
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return originObserver.Run(ctx)
	})
	group.Go(func() error {
		return auxiliaryObserver.Run(ctx)
	})
	return group.Wait()
}

func logAccounts(ctx context.Context, chain *ethereum.Chain) {
	logger := log.GetLogger().WithModule("relayer").WithChain(chain.ChainID())
	accounts, err := chain.Accounts(ctx)
	if err != nil {
		logger.Warn("could not retrieve accounts", "error", err.Error())
		return
	}
	for _, account := range accounts {
		logger.Info("node account", "address", "0x"+account.Hex())
	}
}

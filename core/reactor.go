package core

import "context"

// Reactor reacts to blocks observed on a chain. Anything that wants to
// act on block generation implements this and registers itself with the
// chain's observer.
//
// React must not block the observer's polling loop; long-running work,
// in particular remote calls, belongs in a task spawned by the reactor.
// Reactors must not mutate the block.
type Reactor interface {
	React(ctx context.Context, block *Block) error
}

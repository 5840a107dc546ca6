package core

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openst/mosaic/log"
)

func TestMain(m *testing.M) {
	if err := log.InitLoggerWithWriter("error", "json", io.Discard); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeChainClient struct {
	polls     [][]Hash256
	pollErr   error
	pollCount int
	blocks    map[Hash256]*Block
	blockErrs map[Hash256]error
	logs      map[uint64][]RawLog
	logsErrs  map[uint64]error
}

func (c *fakeChainClient) ChainID() string { return "testchain" }

func (c *fakeChainClient) PollNewBlockHashes(context.Context) ([]Hash256, error) {
	if c.pollErr != nil {
		return nil, c.pollErr
	}
	if c.pollCount >= len(c.polls) {
		return nil, nil
	}
	hashes := c.polls[c.pollCount]
	c.pollCount++
	return hashes, nil
}

func (c *fakeChainClient) BlockByHash(_ context.Context, hash Hash256) (*Block, error) {
	if err, ok := c.blockErrs[hash]; ok {
		return nil, err
	}
	block, ok := c.blocks[hash]
	if !ok {
		return nil, errors.Newf("no block found for hash %s", hash)
	}
	// Fresh copy so that one dispatch cannot leak events into another.
	copied := *block
	return &copied, nil
}

func (c *fakeChainClient) LogsByNumber(_ context.Context, number uint64) ([]RawLog, error) {
	if err, ok := c.logsErrs[number]; ok {
		return nil, err
	}
	return c.logs[number], nil
}

type fakeReactor struct {
	blocks []*Block
	err    error
}

func (r *fakeReactor) React(_ context.Context, block *Block) error {
	r.blocks = append(r.blocks, block)
	return r.err
}

func testHash(b byte) Hash256 {
	var h Hash256
	h[31] = b
	return h
}

func testBlock(number uint64, hash Hash256) *Block {
	return &Block{
		Hash:   hash,
		Number: number,
	}
}

func TestObserverAttachesDecodedEventsInLogOrder(t *testing.T) {
	storeAddress, err := ParseAddress("1234567890123456789012345678901234567890")
	require.NoError(t, err)
	registry := NewEventRegistry()
	require.NoError(t, RegisterBlockStoreEvents(registry, storeAddress))

	first := testHash(1)
	second := testHash(2)
	client := &fakeChainClient{
		blocks: map[Hash256]*Block{first: testBlock(10, first)},
		logs: map[uint64][]RawLog{
			10: {
				{Address: storeAddress, Topics: []Hash256{TopicBlockReported}, Data: Bytes(first[:])},
				// Unregistered address, skipped without error.
				{Address: Address{0xff}, Topics: []Hash256{TopicBlockReported}, Data: Bytes(first[:])},
				// Malformed payload, logged and skipped.
				{Address: storeAddress, Topics: []Hash256{TopicBlockFinalized}, Data: Bytes{0x01}},
				{Address: storeAddress, Topics: []Hash256{TopicBlockFinalized}, Data: Bytes(second[:])},
			},
		},
	}
	reactor := &fakeReactor{}
	observer := NewObserver(client, registry, time.Millisecond)
	observer.RegisterReactor(reactor)

	observer.processBlock(context.Background(), first)

	require.Len(t, reactor.blocks, 1)
	require.Equal(t, []Event{
		BlockReported{BlockHash: first},
		BlockFinalized{BlockHash: second},
	}, reactor.blocks[0].Events)
}

func TestObserverSkipsBlocksThatCannotBeRetrieved(t *testing.T) {
	bad := testHash(1)
	good := testHash(2)
	client := &fakeChainClient{
		blocks:    map[Hash256]*Block{good: testBlock(11, good)},
		blockErrs: map[Hash256]error{bad: errors.New("block has no hash")},
	}
	reactor := &fakeReactor{}
	observer := NewObserver(client, NewEventRegistry(), time.Millisecond)
	observer.RegisterReactor(reactor)

	observer.processBlock(context.Background(), bad)
	observer.processBlock(context.Background(), good)

	require.Len(t, reactor.blocks, 1)
	assert.Equal(t, good, reactor.blocks[0].Hash)
}

func TestObserverSkipsBlocksWhoseLogsCannotBeRetrieved(t *testing.T) {
	hash := testHash(1)
	client := &fakeChainClient{
		blocks:   map[Hash256]*Block{hash: testBlock(12, hash)},
		logsErrs: map[uint64]error{12: errors.New("node unreachable")},
	}
	reactor := &fakeReactor{}
	observer := NewObserver(client, NewEventRegistry(), time.Millisecond)
	observer.RegisterReactor(reactor)

	observer.processBlock(context.Background(), hash)

	assert.Empty(t, reactor.blocks)
}

func TestObserverIsolatesReactorFailures(t *testing.T) {
	hash := testHash(1)
	client := &fakeChainClient{
		blocks: map[Hash256]*Block{hash: testBlock(13, hash)},
	}
	failing := &fakeReactor{err: errors.New("reactor down")}
	succeeding := &fakeReactor{}
	observer := NewObserver(client, NewEventRegistry(), time.Millisecond)
	observer.RegisterReactor(failing)
	observer.RegisterReactor(succeeding)

	observer.processBlock(context.Background(), hash)

	require.Len(t, failing.blocks, 1)
	require.Len(t, succeeding.blocks, 1)
}

func TestObserverRunDispatchesInDiscoveryOrder(t *testing.T) {
	first := testHash(1)
	second := testHash(2)
	third := testHash(3)
	client := &fakeChainClient{
		polls: [][]Hash256{{first, second}, {third}},
		blocks: map[Hash256]*Block{
			first:  testBlock(1, first),
			second: testBlock(2, second),
			third:  testBlock(3, third),
		},
	}
	reactor := &fakeReactor{}
	observer := NewObserver(client, NewEventRegistry(), time.Millisecond)
	observer.RegisterReactor(reactor)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := observer.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.Len(t, reactor.blocks, 3)
	assert.Equal(t, uint64(1), reactor.blocks[0].Number)
	assert.Equal(t, uint64(2), reactor.blocks[1].Number)
	assert.Equal(t, uint64(3), reactor.blocks[2].Number)
}

func TestObserverRunSurvivesPollErrors(t *testing.T) {
	client := &fakeChainClient{pollErr: errors.New("node unreachable")}
	observer := NewObserver(client, NewEventRegistry(), time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := observer.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

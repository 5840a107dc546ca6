package ethereum

import (
	"context"
	"math/big"
	"time"

	retry "github.com/avast/retry-go"
	"github.com/cockroachdb/errors"
	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/openst/mosaic/core"
)

var (
	rtyAttNum = uint(5)
	rtyAtt    = retry.Attempts(rtyAttNum)
	rtyDel    = retry.Delay(time.Millisecond * 400)
	rtyErr    = retry.LastErrorOnly(true)
)

// Chain is a connection to an ethereum node. It implements
// core.ChainClient on top of a new-block filter installed on the node.
// The underlying RPC client supports concurrent outstanding requests,
// so the same Chain handle is shared by the observer and the block
// store clients.
type Chain struct {
	chainID  string
	rpc      *rpc.Client
	eth      *ethclient.Client
	password string
	filterID string
}

var _ core.ChainClient = (*Chain)(nil)

// NewChain connects to the node at the configured endpoint and installs
// a filter for new block hashes. Connecting is retried a few times
// before giving up, so a node that is still starting up does not kill
// the process.
func NewChain(ctx context.Context, config ChainConfig) (*Chain, error) {
	chain := &Chain{
		chainID:  config.ChainID,
		password: config.Password,
	}

	if err := retry.Do(func() error {
		rpcClient, err := rpc.DialContext(ctx, config.Endpoint)
		if err != nil {
			return err
		}
		chain.rpc = rpcClient
		return nil
	}, rtyAtt, rtyDel, rtyErr, retry.Context(ctx)); err != nil {
		return nil, errors.Wrapf(err, "dial %s node at %s", config.ChainID, config.Endpoint)
	}
	chain.eth = ethclient.NewClient(chain.rpc)

	if err := chain.installBlockFilter(ctx); err != nil {
		return nil, err
	}
	return chain, nil
}

// ChainID returns the identifier of the chain within this process.
func (c *Chain) ChainID() string {
	return c.chainID
}

// Close releases the underlying RPC connection.
func (c *Chain) Close() {
	c.rpc.Close()
}

func (c *Chain) installBlockFilter(ctx context.Context) error {
	var filterID string
	if err := c.rpc.CallContext(ctx, &filterID, "eth_newBlockFilter"); err != nil {
		return errors.Wrapf(err, "install block filter on %s", c.chainID)
	}
	c.filterID = filterID
	return nil
}

// PollNewBlockHashes returns the hashes of the blocks that appeared
// since the previous poll. If the node has forgotten the filter, e.g.
// after a restart, a new filter is installed so that the next poll can
// resume.
func (c *Chain) PollNewBlockHashes(ctx context.Context) ([]core.Hash256, error) {
	var raw []common.Hash
	if err := c.rpc.CallContext(ctx, &raw, "eth_getFilterChanges", c.filterID); err != nil {
		if ierr := c.installBlockFilter(ctx); ierr != nil {
			return nil, errors.CombineErrors(errors.Wrap(err, "poll filter changes"), ierr)
		}
		return nil, errors.Wrap(err, "poll filter changes, filter reinstalled")
	}

	hashes := make([]core.Hash256, len(raw))
	for i, hash := range raw {
		hashes[i] = core.Hash256(hash)
	}
	return hashes, nil
}

// rpcBlock mirrors the node's block representation. Fields that the
// node may omit are pointers so that their absence is detectable.
type rpcBlock struct {
	Hash             *common.Hash   `json:"hash"`
	ParentHash       common.Hash    `json:"parentHash"`
	StateRoot        common.Hash    `json:"stateRoot"`
	TransactionsRoot common.Hash    `json:"transactionsRoot"`
	Number           *hexutil.Big   `json:"number"`
	GasUsed          hexutil.Uint64 `json:"gasUsed"`
	GasLimit         hexutil.Uint64 `json:"gasLimit"`
	Timestamp        *hexutil.Big   `json:"timestamp"`
}

// toBlock converts the node's block into a core.Block. It fails if a
// mandatory field is missing or a numeric field exceeds the 64 bit
// range; values are never silently truncated.
func (b *rpcBlock) toBlock() (*core.Block, error) {
	if b.Hash == nil {
		return nil, errors.New("block has no hash")
	}
	if b.Number == nil {
		return nil, errors.New("block has no number")
	}
	number := b.Number.ToInt()
	if !number.IsUint64() {
		return nil, errors.Newf("block number %s exceeds the 64 bit range", number)
	}
	if b.Timestamp == nil {
		return nil, errors.New("block has no timestamp")
	}
	timestamp := b.Timestamp.ToInt()
	if !timestamp.IsUint64() {
		return nil, errors.Newf("block timestamp %s exceeds the 64 bit range", timestamp)
	}

	return &core.Block{
		Hash:             core.Hash256(*b.Hash),
		ParentHash:       core.Hash256(b.ParentHash),
		StateRoot:        core.Hash256(b.StateRoot),
		TransactionsRoot: core.Hash256(b.TransactionsRoot),
		Number:           number.Uint64(),
		GasUsed:          uint64(b.GasUsed),
		GasLimit:         uint64(b.GasLimit),
		Timestamp:        timestamp.Uint64(),
	}, nil
}

// BlockByHash retrieves the block with the given hash from the node.
func (c *Chain) BlockByHash(ctx context.Context, hash core.Hash256) (*core.Block, error) {
	var raw *rpcBlock
	if err := c.rpc.CallContext(ctx, &raw, "eth_getBlockByHash", common.Hash(hash), false); err != nil {
		return nil, errors.Wrapf(err, "retrieve block %s", hash)
	}
	if raw == nil {
		return nil, errors.Newf("no block found for hash %s", hash)
	}
	block, err := raw.toBlock()
	if err != nil {
		return nil, errors.Wrapf(err, "convert block %s", hash)
	}
	return block, nil
}

// LogsByNumber retrieves all logs emitted within the given block.
func (c *Chain) LogsByNumber(ctx context.Context, number uint64) ([]core.RawLog, error) {
	blockNumber := new(big.Int).SetUint64(number)
	logs, err := c.eth.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: blockNumber,
		ToBlock:   blockNumber,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "retrieve logs of block %d", number)
	}

	rawLogs := make([]core.RawLog, len(logs))
	for i, l := range logs {
		topics := make([]core.Hash256, len(l.Topics))
		for j, topic := range l.Topics {
			topics[j] = core.Hash256(topic)
		}
		rawLogs[i] = core.RawLog{
			Address: core.Address(l.Address),
			Topics:  topics,
			Data:    core.Bytes(l.Data),
		}
	}
	return rawLogs, nil
}

// Accounts returns the accounts known to the node.
func (c *Chain) Accounts(ctx context.Context) ([]core.Address, error) {
	var raw []common.Address
	if err := c.rpc.CallContext(ctx, &raw, "eth_accounts"); err != nil {
		return nil, errors.Wrap(err, "retrieve accounts")
	}
	accounts := make([]core.Address, len(raw))
	for i, account := range raw {
		accounts[i] = core.Address(account)
	}
	return accounts, nil
}

// unlockAccount unlocks the given account on the node with the
// configured password. A zero duration unlocks the account until the
// node shuts down.
func (c *Chain) unlockAccount(ctx context.Context, account core.Address, duration uint64) error {
	var unlocked bool
	if err := c.rpc.CallContext(ctx, &unlocked, "personal_unlockAccount", common.Address(account), c.password, duration); err != nil {
		return errors.Wrapf(err, "unlock account %s", account)
	}
	if !unlocked {
		return errors.Newf("node refused to unlock account %s", account)
	}
	return nil
}

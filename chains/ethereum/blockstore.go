package ethereum

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/openst/mosaic/core"
)

// blockStoreABI is the part of the block store contract's interface
// that the node interacts with.
const blockStoreABI = `[
	{
		"constant": true,
		"inputs": [
			{"name": "_blockHash", "type": "bytes32"},
			{"name": "_validator", "type": "address"}
		],
		"name": "isBlockReported",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [
			{"name": "_encodedHeader", "type": "bytes"},
			{"name": "_validator", "type": "address"}
		],
		"name": "reportBlock",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// BlockStore is a client of a block store contract instance. It
// implements core.BlockStore.
type BlockStore struct {
	chain   *Chain
	address common.Address
	abi     abi.ABI
}

var _ core.BlockStore = (*BlockStore)(nil)

// NewBlockStore returns a client of the block store contract at the
// given address on the given chain.
func NewBlockStore(chain *Chain, address core.Address) (*BlockStore, error) {
	parsed, err := abi.JSON(strings.NewReader(blockStoreABI))
	if err != nil {
		return nil, errors.Wrap(err, "parse block store abi")
	}
	return &BlockStore{
		chain:   chain,
		address: common.Address(address),
		abi:     parsed,
	}, nil
}

// IsBlockReported queries whether the block with the given content hash
// has already been reported by the given validator.
func (s *BlockStore) IsBlockReported(ctx context.Context, contentHash core.Hash256, validator core.Address) (bool, error) {
	input, err := s.abi.Pack("isBlockReported", [32]byte(contentHash), common.Address(validator))
	if err != nil {
		return false, errors.Wrap(err, "pack isBlockReported call")
	}

	output, err := s.chain.eth.CallContract(ctx, ethereum.CallMsg{
		To:   &s.address,
		Data: input,
	}, nil)
	if err != nil {
		return false, errors.Wrap(err, "query isBlockReported")
	}

	values, err := s.abi.Unpack("isBlockReported", output)
	if err != nil {
		return false, errors.Wrap(err, "unpack isBlockReported result")
	}
	reported, ok := values[0].(bool)
	if !ok {
		return false, errors.Newf("unexpected isBlockReported result type %T", values[0])
	}
	return reported, nil
}

// ReportBlock submits the canonical block encoding to the contract. The
// validator account is unlocked on the node first; the node signs and
// sends the transaction.
func (s *BlockStore) ReportBlock(ctx context.Context, encodedBlock core.Bytes, validator core.Address, gas uint64) (core.Hash256, error) {
	if err := s.chain.unlockAccount(ctx, validator, 0); err != nil {
		return core.Hash256{}, err
	}

	input, err := s.abi.Pack("reportBlock", []byte(encodedBlock), common.Address(validator))
	if err != nil {
		return core.Hash256{}, errors.Wrap(err, "pack reportBlock call")
	}

	var txHash common.Hash
	if err := s.chain.rpc.CallContext(ctx, &txHash, "eth_sendTransaction", map[string]any{
		"from": common.Address(validator),
		"to":   s.address,
		"gas":  hexutil.Uint64(gas),
		"data": hexutil.Bytes(input),
	}); err != nil {
		return core.Hash256{}, errors.Wrap(err, "send reportBlock transaction")
	}
	return core.Hash256(txHash), nil
}

package core

import (
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/sha3"
)

// canonicalHeader fixes the set and order of the header fields that make
// up the canonical encoding of a block. The order is part of the wire
// contract with the block store contract; reordering is a breaking
// change. The chain-assigned block hash is deliberately not part of the
// encoding.
type canonicalHeader struct {
	ParentHash       Hash256
	StateRoot        Hash256
	TransactionsRoot Hash256
	Number           uint64
	GasUsed          uint64
	GasLimit         uint64
	Timestamp        uint64
}

// EncodeBlock returns the canonical RLP encoding of the block's header.
// Encoding the same logical block always yields identical bytes.
func EncodeBlock(block *Block) (Bytes, error) {
	encoded, err := rlp.EncodeToBytes(&canonicalHeader{
		ParentHash:       block.ParentHash,
		StateRoot:        block.StateRoot,
		TransactionsRoot: block.TransactionsRoot,
		Number:           block.Number,
		GasUsed:          block.GasUsed,
		GasLimit:         block.GasLimit,
		Timestamp:        block.Timestamp,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "rlp encode %s", block)
	}
	return encoded, nil
}

// ContentHash returns the Keccak-256 digest of the canonical block
// encoding. It is used as the cross-chain reporting key for the block.
func ContentHash(block *Block) (Hash256, error) {
	encoded, err := EncodeBlock(block)
	if err != nil {
		return Hash256{}, err
	}
	return Keccak256(encoded), nil
}

// Keccak256 computes the Keccak-256 digest of data.
func Keccak256(data []byte) Hash256 {
	var h Hash256
	d := sha3.NewLegacyKeccak256()
	d.Write(data)
	d.Sum(h[:0])
	return h
}

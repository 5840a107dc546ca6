package core

import "fmt"

// Block represents a block of a blockchain, together with the events
// that were decoded from the logs emitted within it. A block is
// immutable once the observer has constructed it; reactors only read
// it.
type Block struct {
	// Hash is the chain-assigned hash of this block.
	Hash             Hash256
	ParentHash       Hash256
	StateRoot        Hash256
	TransactionsRoot Hash256
	Number           uint64
	GasUsed          uint64
	GasLimit         uint64
	Timestamp        uint64
	// Events holds the decoded events in log order.
	Events []Event
}

func (b *Block) String() string {
	return fmt.Sprintf("Block (%s)", b.Hash.Hex())
}

// RawLog is a log entry as reported by a chain node, before any event
// decoding has happened.
type RawLog struct {
	// Address of the contract that emitted the log.
	Address Address
	// Topics of the log. The first topic identifies the event.
	Topics []Hash256
	// Data is the ABI-encoded event payload.
	Data Bytes
}

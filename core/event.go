package core

import (
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Events are extracted from chain logs. An event results in an action on
// the origin chain, the auxiliary chain, or both.
//
// To add a new event:
//   - Add a new variant that implements the Event interface.
//   - Add an EventDecoder that builds the variant from a raw log.
//   - Register the decoder with the relevant chain's registry.
//
// Once registered, the observer automatically attaches the new event to
// observed blocks; no other code needs to change.

// Event is a decoded domain event. Events are produced exclusively by
// registry decoders.
type Event interface {
	isEvent()
}

// BlockFinalized signals that a block has been finalized according to
// the Casper FFG protocol.
type BlockFinalized struct {
	BlockHash Hash256
}

func (BlockFinalized) isEvent() {}

// BlockReported signals that an observed block has been reported to the
// relevant block store.
type BlockReported struct {
	BlockHash Hash256
}

func (BlockReported) isEvent() {}

// Log topics identifying the block store events. A topic is the
// Keccak-256 hash of the canonical event signature and is fixed at
// registration time.
var (
	// TopicBlockReported is keccak256("BlockReported(bytes32)").
	TopicBlockReported = mustHash256("721303f9f13058e7a8abd8036b2897d3cee27492b247eceddd6203ff601c006b")
	// TopicBlockFinalized is keccak256("BlockFinalised(bytes32)").
	TopicBlockFinalized = mustHash256("2b6cea6adc0c092ab654c32a0ee19b8ccddafbbc780bce0a5dd193bc30aa186e")
)

// EventDecoder converts a raw log into an event. Decoders are pure
// functions without shared mutable state and are safe to call
// concurrently.
type EventDecoder func(log RawLog) (Event, error)

// EventRegistry maps (contract address, first topic) pairs to decoders.
// It is populated at startup and read-only afterwards.
type EventRegistry struct {
	decoders map[Address]map[Hash256]EventDecoder
}

func NewEventRegistry() *EventRegistry {
	return &EventRegistry{
		decoders: make(map[Address]map[Hash256]EventDecoder),
	}
}

// Register binds a decoder to the (address, topic) pair. At most one
// decoder may be registered per pair; a duplicate registration is a
// configuration error.
func (r *EventRegistry) Register(address Address, topic Hash256, decoder EventDecoder) error {
	topics, ok := r.decoders[address]
	if !ok {
		topics = make(map[Hash256]EventDecoder)
		r.decoders[address] = topics
	}
	if _, exists := topics[topic]; exists {
		return errors.Newf("decoder already registered for address %s topic %s", address, topic)
	}
	topics[topic] = decoder
	return nil
}

// Decode converts a log into an event. It returns a nil event without an
// error if the log's address has no registered decoders, the log has no
// topics, or its first topic has no matching decoder. It returns an
// error if a matching decoder could not parse the log's payload.
func (r *EventRegistry) Decode(log RawLog) (Event, error) {
	topics, ok := r.decoders[log.Address]
	if !ok {
		return nil, nil
	}
	if len(log.Topics) == 0 {
		return nil, nil
	}

	// The canonical identifier for a log is always the first topic.
	decoder, ok := topics[log.Topics[0]]
	if !ok {
		return nil, nil
	}
	return decoder(log)
}

// RegisterBlockStoreEvents registers decoders for all events emitted by
// a block store contract at the given address.
func RegisterBlockStoreEvents(registry *EventRegistry, blockStore Address) error {
	if err := registry.Register(blockStore, TopicBlockReported, DecodeBlockReported); err != nil {
		return err
	}
	return registry.Register(blockStore, TopicBlockFinalized, DecodeBlockFinalized)
}

// DecodeBlockReported builds a BlockReported event from a log entry.
func DecodeBlockReported(log RawLog) (Event, error) {
	blockHash, err := blockHashFromData(log.Data)
	if err != nil {
		return nil, errors.Wrap(err, "abi decode of 'block reported' event")
	}
	return BlockReported{BlockHash: blockHash}, nil
}

// DecodeBlockFinalized builds a BlockFinalized event from a log entry.
func DecodeBlockFinalized(log RawLog) (Event, error) {
	blockHash, err := blockHashFromData(log.Data)
	if err != nil {
		return nil, errors.Wrap(err, "abi decode of 'block finalized' event")
	}
	return BlockFinalized{BlockHash: blockHash}, nil
}

var bytes32Arguments = abi.Arguments{{Type: mustNewABIType("bytes32")}}

// blockHashFromData unpacks a single ABI-encoded bytes32 payload.
func blockHashFromData(data Bytes) (Hash256, error) {
	values, err := bytes32Arguments.Unpack(data)
	if err != nil {
		return Hash256{}, err
	}
	if len(values) != 1 {
		return Hash256{}, errors.Newf("expected a single bytes32, got %d values", len(values))
	}
	word, ok := values[0].([HashLength]byte)
	if !ok {
		return Hash256{}, errors.Newf("unexpected type %T after abi decoding", values[0])
	}
	return Hash256(word), nil
}

func mustHash256(s string) Hash256 {
	h, err := ParseHash256(s)
	if err != nil {
		panic(err)
	}
	return h
}

func mustNewABIType(t string) abi.Type {
	ty, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return ty
}

package core

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	// AddressLength is the expected length of an account address in bytes.
	AddressLength = 20
	// HashLength is the expected length of a hash in bytes.
	HashLength = 32
)

// ErrInvalidFormat marks errors returned when parsing malformed hex input.
var ErrInvalidFormat = errors.New("invalid hex format")

// Address represents the 20-byte address of an account or contract.
type Address [AddressLength]byte

// Hash256 represents a 32-byte hash, e.g. a block hash or a log topic.
type Hash256 [HashLength]byte

// Bytes is a variable-length byte buffer with hex (de)serialization.
type Bytes []byte

// ParseAddress parses a 40-character hex string, with or without a
// leading "0x", into an Address.
func ParseAddress(s string) (Address, error) {
	var a Address
	if err := parseFixedHex(s, a[:]); err != nil {
		return Address{}, errors.Wrap(err, "parse address")
	}
	return a, nil
}

// ParseHash256 parses a 64-character hex string, with or without a
// leading "0x", into a Hash256.
func ParseHash256(s string) (Hash256, error) {
	var h Hash256
	if err := parseFixedHex(s, h[:]); err != nil {
		return Hash256{}, errors.Wrap(err, "parse hash")
	}
	return h, nil
}

// ParseBytes parses a hex string of any even length, with or without a
// leading "0x". The empty string is valid and yields empty Bytes.
func ParseBytes(s string) (Bytes, error) {
	b, err := hex.DecodeString(normalizeHex(s))
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidFormat, "parse bytes %q: %v", s, err)
	}
	return b, nil
}

func normalizeHex(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "0x")
	return s
}

func parseFixedHex(s string, dst []byte) error {
	h := normalizeHex(s)
	if len(h) != hex.EncodedLen(len(dst)) {
		return errors.Wrapf(ErrInvalidFormat, "%q: expected %d hex characters, got %d", s, hex.EncodedLen(len(dst)), len(h))
	}
	if _, err := hex.Decode(dst, []byte(h)); err != nil {
		return errors.Wrapf(ErrInvalidFormat, "%q: %v", s, err)
	}
	return nil
}

// Hex returns the lowercase hex representation without a "0x" prefix.
func (a Address) Hex() string {
	return hex.EncodeToString(a[:])
}

func (a Address) String() string {
	return a.Hex()
}

// Cmp compares two addresses by byte content.
func (a Address) Cmp(other Address) int {
	return bytes.Compare(a[:], other[:])
}

// Hex returns the lowercase hex representation without a "0x" prefix.
func (h Hash256) Hex() string {
	return hex.EncodeToString(h[:])
}

func (h Hash256) String() string {
	return h.Hex()
}

// Cmp compares two hashes by byte content.
func (h Hash256) Cmp(other Hash256) int {
	return bytes.Compare(h[:], other[:])
}

// Hex returns the lowercase hex representation without a "0x" prefix.
func (b Bytes) Hex() string {
	return hex.EncodeToString(b)
}

func (b Bytes) String() string {
	return b.Hex()
}

// Cmp compares two buffers by byte content.
func (b Bytes) Cmp(other Bytes) int {
	return bytes.Compare(b, other)
}

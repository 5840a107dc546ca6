package core_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openst/mosaic/core"
)

func TestParseAddressRoundTrip(t *testing.T) {
	expected := "1234567890abcdef1234567890abcdef12345678"

	for _, input := range []string{
		expected,
		"0x" + expected,
		"1234567890ABCDEF1234567890ABCDEF12345678",
		"0x1234567890ABCDEF1234567890abcdef12345678",
		"  " + expected + "\n",
	} {
		address, err := core.ParseAddress(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, expected, address.Hex(), "input %q", input)
	}
}

func TestParseAddressRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{
		"",
		"0x",
		"12345678901234567890123456789012345678",     // too short
		"123456789012345678901234567890123456789012", // too long
		"0x0x1234567890123456789012345678901234567890",
		"123456789012345678901234567890123456789g",
		"1234567890123456789012345678901234567890123456789012345678901234", // hash length
	} {
		_, err := core.ParseAddress(input)
		require.Error(t, err, "input %q", input)
		assert.True(t, errors.Is(err, core.ErrInvalidFormat), "input %q", input)
	}
}

func TestParseHash256RoundTrip(t *testing.T) {
	expected := "721303f9f13058e7a8abd8036b2897d3cee27492b247eceddd6203ff601c006b"

	for _, input := range []string{
		expected,
		"0x" + expected,
		"721303F9F13058E7A8ABD8036B2897D3CEE27492B247ECEDDD6203FF601C006B",
	} {
		hash, err := core.ParseHash256(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, expected, hash.Hex(), "input %q", input)
	}
}

func TestParseHash256RejectsMalformedInput(t *testing.T) {
	for _, input := range []string{
		"",
		"1234567890123456789012345678901234567890", // address length
		"721303f9f13058e7a8abd8036b2897d3cee27492b247eceddd6203ff601c006", // odd
	} {
		_, err := core.ParseHash256(input)
		require.Error(t, err, "input %q", input)
		assert.True(t, errors.Is(err, core.ErrInvalidFormat), "input %q", input)
	}
}

func TestParseBytes(t *testing.T) {
	b, err := core.ParseBytes("0xdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", b.Hex())

	// Empty is valid.
	b, err = core.ParseBytes("")
	require.NoError(t, err)
	assert.Len(t, b, 0)
	b, err = core.ParseBytes("0x")
	require.NoError(t, err)
	assert.Len(t, b, 0)

	_, err = core.ParseBytes("abc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidFormat))
	_, err = core.ParseBytes("zz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidFormat))
}

func TestOrderingByByteContent(t *testing.T) {
	low, err := core.ParseAddress("0000000000000000000000000000000000000001")
	require.NoError(t, err)
	high, err := core.ParseAddress("ff00000000000000000000000000000000000000")
	require.NoError(t, err)

	assert.Equal(t, -1, low.Cmp(high))
	assert.Equal(t, 1, high.Cmp(low))
	assert.Equal(t, 0, low.Cmp(low))
}

package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportCall struct {
	encoded   Bytes
	validator Address
	gas       uint64
}

type fakeBlockStore struct {
	mu        sync.Mutex
	reported  bool
	queryErr  error
	reportErr error
	queries   int
	reports   []reportCall
}

func (s *fakeBlockStore) IsBlockReported(_ context.Context, _ Hash256, _ Address) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	if s.queryErr != nil {
		return false, s.queryErr
	}
	return s.reported, nil
}

func (s *fakeBlockStore) ReportBlock(_ context.Context, encoded Bytes, validator Address, gas uint64) (Hash256, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reportErr != nil {
		return Hash256{}, s.reportErr
	}
	s.reports = append(s.reports, reportCall{encoded: encoded, validator: validator, gas: gas})
	return testHash(0x77), nil
}

func (s *fakeBlockStore) reportCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

func reporterFixture(store *fakeBlockStore) (*BlockReporter, *Block, Address) {
	validator := Address{0x01}
	reporter := NewBlockReporter(store, validator, "origin")
	block := &Block{
		Hash:     testHash(0xaa),
		Number:   7,
		GasUsed:  21000,
		GasLimit: 8000000,
	}
	return reporter, block, validator
}

func TestReporterSkipsAlreadyReportedBlocks(t *testing.T) {
	store := &fakeBlockStore{reported: true}
	reporter, block, _ := reporterFixture(store)

	encoded, err := EncodeBlock(block)
	require.NoError(t, err)
	reporter.report(context.Background(), block.Number, Keccak256(encoded), encoded)

	assert.Equal(t, 1, store.queries)
	assert.Empty(t, store.reports)
}

func TestReporterSubmitsUnreportedBlocksExactlyOnce(t *testing.T) {
	store := &fakeBlockStore{reported: false}
	reporter, block, validator := reporterFixture(store)

	encoded, err := EncodeBlock(block)
	require.NoError(t, err)
	reporter.report(context.Background(), block.Number, Keccak256(encoded), encoded)

	require.Len(t, store.reports, 1)
	assert.Equal(t, encoded, store.reports[0].encoded)
	assert.Equal(t, validator, store.reports[0].validator)
	assert.Equal(t, uint64(ReportBlockGas), store.reports[0].gas)
}

func TestReporterAbortsOnQueryFailure(t *testing.T) {
	store := &fakeBlockStore{queryErr: errors.New("node unreachable")}
	reporter, block, _ := reporterFixture(store)

	encoded, err := EncodeBlock(block)
	require.NoError(t, err)
	reporter.report(context.Background(), block.Number, Keccak256(encoded), encoded)

	assert.Empty(t, store.reports)
}

func TestReporterDoesNotBlockTheCaller(t *testing.T) {
	store := &fakeBlockStore{reported: false}
	reporter, block, _ := reporterFixture(store)

	require.NoError(t, reporter.React(context.Background(), block))

	assert.Eventually(t, func() bool {
		return store.reportCount() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestReporterToleratesSubmissionFailure(t *testing.T) {
	store := &fakeBlockStore{reportErr: errors.New("transaction rejected")}
	reporter, block, _ := reporterFixture(store)

	// Submission failures are logged only; React must still succeed.
	require.NoError(t, reporter.React(context.Background(), block))

	assert.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.queries == 1
	}, time.Second, 5*time.Millisecond)
}

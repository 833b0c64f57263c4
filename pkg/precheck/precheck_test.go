package precheck_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/berendjan/pyth-zkproof/pkg/precheck"
	"github.com/berendjan/pyth-zkproof/pkg/quote"
)

func signBatch(t *testing.T, quotes []quote.Quote) []*quote.SignedQuote {
	t.Helper()

	batch := make([]*quote.SignedQuote, len(quotes))
	for i, q := range quotes {
		signer, err := quote.GenerateSigner()
		require.NoError(t, err)
		batch[i], err = quote.Sign(q, signer)
		require.NoError(t, err)
	}
	return batch
}

func requireGroup(t *testing.T, err error, group precheck.Group, index int) {
	t.Helper()

	var perr *precheck.Error
	require.ErrorAs(t, err, &perr)
	require.Equal(t, group, perr.Group)
	require.Equal(t, index, perr.Index)
}

func TestValidBatchPasses(t *testing.T) {
	batch := signBatch(t, []quote.Quote{
		{Price: 100, Conf: 5, Timestamp: 1000, ObservedOnline: true},
		{Price: 102, Conf: 3, Timestamp: 1000, ObservedOnline: true},
		{Price: 98, Conf: 4, Timestamp: 998, ObservedOnline: true},
	})
	require.NoError(t, precheck.Batch(batch))
}

func TestEmptyBatchFailsShape(t *testing.T) {
	err := precheck.Batch(nil)
	requireGroup(t, err, precheck.GroupShape, -1)
}

func TestOversizedBatchFailsShape(t *testing.T) {
	quotes := make([]quote.Quote, 9)
	for i := range quotes {
		quotes[i] = quote.Quote{Price: 100, Timestamp: 1000}
	}
	err := precheck.Batch(signBatch(t, quotes))
	requireGroup(t, err, precheck.GroupShape, -1)
}

func TestTamperedSignatureDiagnosed(t *testing.T) {
	batch := signBatch(t, []quote.Quote{
		{Price: 100, Conf: 5, Timestamp: 1000},
		{Price: 102, Conf: 3, Timestamp: 1000},
	})
	batch[1].Quote.Conf = 4

	err := precheck.Batch(batch)
	requireGroup(t, err, precheck.GroupSignature, 1)
}

func TestStaleTimestampDiagnosed(t *testing.T) {
	batch := signBatch(t, []quote.Quote{
		{Price: 100, Conf: 5, Timestamp: 1000},
		{Price: 102, Conf: 3, Timestamp: 1000},
		{Price: 98, Conf: 4, Timestamp: 900},
	})

	err := precheck.Batch(batch)
	requireGroup(t, err, precheck.GroupStaleness, 2)
}

func TestTimestampAboveMedianDiagnosed(t *testing.T) {
	batch := signBatch(t, []quote.Quote{
		{Price: 100, Conf: 5, Timestamp: 1000},
		{Price: 102, Conf: 3, Timestamp: 1000},
		{Price: 98, Conf: 4, Timestamp: 1005},
	})

	err := precheck.Batch(batch)
	requireGroup(t, err, precheck.GroupStaleness, 2)
}

func TestConfidenceAbovePriceDiagnosed(t *testing.T) {
	batch := signBatch(t, []quote.Quote{
		{Price: 100, Conf: 5, Timestamp: 1000},
		{Price: 10, Conf: 11, Timestamp: 1000},
	})

	err := precheck.Batch(batch)
	requireGroup(t, err, precheck.GroupModel, 1)
}

func TestErrorMessageNamesGroupAndSlot(t *testing.T) {
	err := precheck.Batch(nil)
	require.EqualError(t, err, "shape: empty batch")

	var perr *precheck.Error
	require.True(t, errors.As(err, &perr))
}

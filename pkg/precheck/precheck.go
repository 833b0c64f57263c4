// Package precheck validates a quote batch against every constraint family
// of the aggregation circuit before proving. A constraint system has exactly
// one failure mode — an unsatisfiable witness with no error kind attached —
// so diagnosability has to come from re-evaluating the checks natively and
// reporting which group, and which slot, is in violation.
package precheck

import (
	"fmt"
	"math"

	"github.com/berendjan/pyth-zkproof/circuits/aggregation"
	"github.com/berendjan/pyth-zkproof/pkg/quote"
	"github.com/berendjan/pyth-zkproof/pkg/stats"
)

// Group identifies a constraint family of the aggregation circuit.
type Group string

const (
	GroupShape     Group = "shape"
	GroupSignature Group = "signature"
	GroupStaleness Group = "staleness"
	GroupModel     Group = "price-model"
)

// Error reports the first violated check, the constraint group it belongs
// to, and the failing slot for indexed checks.
type Error struct {
	Group  Group
	Index  int // -1 when the check is not slot-indexed
	Reason string
}

func (e *Error) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.Group, e.Reason)
	}
	return fmt.Sprintf("%s[%d]: %s", e.Group, e.Index, e.Reason)
}

// Batch runs every native check and returns the first violation, or nil if
// the batch should produce a satisfiable witness.
func Batch(batch []*quote.SignedQuote) error {
	if len(batch) == 0 {
		return &Error{Group: GroupShape, Index: -1, Reason: "empty batch"}
	}
	if len(batch) > aggregation.MaxQuotes {
		return &Error{
			Group:  GroupShape,
			Index:  -1,
			Reason: fmt.Sprintf("batch size %d exceeds capacity %d", len(batch), aggregation.MaxQuotes),
		}
	}

	for i, sq := range batch {
		ok, err := quote.Verify(sq)
		if err != nil {
			return &Error{Group: GroupSignature, Index: i, Reason: err.Error()}
		}
		if !ok {
			return &Error{Group: GroupSignature, Index: i, Reason: "signature does not verify against (price, conf)"}
		}
	}

	timestamps := make([]uint64, len(batch))
	for i, sq := range batch {
		timestamps[i] = sq.Quote.Timestamp
	}
	median := stats.Median(timestamps)
	for i, ts := range timestamps {
		if ts > median {
			return &Error{
				Group:  GroupStaleness,
				Index:  i,
				Reason: fmt.Sprintf("timestamp %d newer than median %d", ts, median),
			}
		}
		if median >= ts+aggregation.TimestampThreshold {
			return &Error{
				Group:  GroupStaleness,
				Index:  i,
				Reason: fmt.Sprintf("timestamp %d outside window (median %d, threshold %d)", ts, median, aggregation.TimestampThreshold),
			}
		}
	}

	for i, sq := range batch {
		q := sq.Quote
		if q.Conf > q.Price {
			return &Error{
				Group:  GroupModel,
				Index:  i,
				Reason: fmt.Sprintf("confidence %d exceeds price %d", q.Conf, q.Price),
			}
		}
		if q.Price > math.MaxUint64-q.Conf {
			return &Error{
				Group:  GroupModel,
				Index:  i,
				Reason: fmt.Sprintf("price %d + confidence %d exceeds 64 bits", q.Price, q.Conf),
			}
		}
	}

	return nil
}

package trips

import (
	"context"
	"fmt"

	"github.com/youssef-benmansour/fuel-vivo/internal/masterdata"
)

// SequenceKind names a document-number sequence.
type SequenceKind string

const (
	SequenceDeliveryNote SequenceKind = "delivery_note"
	SequenceInvoice      SequenceKind = "invoice"
)

// Floors are the last numbers issued by the predecessor system; the first
// allocation of each kind is floor+1.
var sequenceFloors = map[SequenceKind]int64{
	SequenceDeliveryNote: 14614,
	SequenceInvoice:      39123,
}

// AllocateSequence issues the next number of a kind from its counter row.
// The increment takes a row-level lock, so concurrent allocators of the same
// kind queue on the row; under RepeatableRead the waiter surfaces a
// serialization failure once the holder commits, and the caller retries the
// whole transaction. Must be called on a transaction-bound executor, and the
// trips columns carry unique indexes as a backstop.
func AllocateSequence(ctx context.Context, db masterdata.DBTX, kind SequenceKind) (int64, error) {
	floor, ok := sequenceFloors[kind]
	if !ok {
		return 0, fmt.Errorf("unknown sequence kind %q", kind)
	}
	var next int64
	err := db.QueryRow(ctx, `
		INSERT INTO sequence_counters (kind, value)
		VALUES ($1, $2 + 1)
		ON CONFLICT (kind) DO UPDATE SET value = sequence_counters.value + 1
		RETURNING value`,
		string(kind), floor,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("allocate %s number: %w", kind, err)
	}
	return next, nil
}

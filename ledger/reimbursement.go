package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnreimbursedEntry is one outstanding reimbursable charge sitting in a
// ReimbursementQueue, awaiting a future cash reimbursement.
type UnreimbursedEntry struct {
	TransactionDate time.Time
	TotalAmount     decimal.Decimal
	CreditPostings  []TransactionPosting
}

// ReimbursementQueue is a per-reimbursable-entity FIFO of outstanding
// charges. Entries are pushed as charges accrue and popped, oldest first,
// when a Reimburse transaction clears them.
type ReimbursementQueue struct {
	entries []UnreimbursedEntry
}

// Push appends a new outstanding entry to the back of the queue.
func (q *ReimbursementQueue) Push(entry UnreimbursedEntry) {
	q.entries = append(q.entries, entry)
}

// Len reports the number of outstanding entries.
func (q *ReimbursementQueue) Len() int {
	return len(q.entries)
}

// Entries returns a copy of the outstanding entries, oldest first.
func (q *ReimbursementQueue) Entries() []UnreimbursedEntry {
	out := make([]UnreimbursedEntry, len(q.entries))
	copy(out, q.entries)
	return out
}

// Peek walks the FIFO accumulating whole entries' TotalAmount until the
// accumulated sum reaches amount, without mutating the queue. It never
// splits an entry: if the next entry would overshoot the remaining target,
// or the queue runs out before the target is reached, the walk fails.
//
// Returns the prefix that would be consumed and the total amount still
// outstanding in the queue behind that prefix.
func (q *ReimbursementQueue) Peek(account Account, amount, tolerance decimal.Decimal) ([]UnreimbursedEntry, decimal.Decimal, error) {
	if len(q.entries) == 0 {
		return nil, decimal.Zero, &NoTransactionsToReimburseError{Account: account}
	}

	remaining := amount
	var i int
	for i = 0; i < len(q.entries); i++ {
		if IsZeroWithin(remaining, tolerance) {
			break
		}
		entry := q.entries[i]
		if entry.TotalAmount.Sub(remaining).GreaterThan(tolerance) {
			return nil, decimal.Zero, &ReimbursementTracingError{
				Account: account,
				Reason:  "amount cannot be satisfied with a whole number of entries",
			}
		}
		remaining = remaining.Sub(entry.TotalAmount)
	}
	if !IsZeroWithin(remaining, tolerance) {
		return nil, decimal.Zero, &ReimbursementTracingError{
			Account: account,
			Reason:  "ran out of entries before reaching the expected amount",
		}
	}

	consumed := make([]UnreimbursedEntry, i)
	copy(consumed, q.entries[:i])
	outstanding := decimal.Zero
	for _, entry := range q.entries[i:] {
		outstanding = outstanding.Add(entry.TotalAmount)
	}
	return consumed, outstanding, nil
}

// Pop is Peek followed by discarding the consumed prefix in place.
func (q *ReimbursementQueue) Pop(account Account, amount, tolerance decimal.Decimal) ([]UnreimbursedEntry, decimal.Decimal, error) {
	consumed, outstanding, err := q.Peek(account, amount, tolerance)
	if err != nil {
		return nil, decimal.Zero, err
	}
	q.entries = append(q.entries[:0:0], q.entries[len(consumed):]...)
	return consumed, outstanding, nil
}

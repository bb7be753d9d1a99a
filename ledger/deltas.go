package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Delta Architecture
//
// Pure validation computes a delta describing a pending state mutation,
// and a separate Apply step commits it. The fold in processor.go validates
// each spec completely before applying any of that spec's deltas, so a spec
// that fails validation leaves none of its own mutations in FoldState.
//
// Benefits:
//   - Pure validation: computing a delta has no side effects
//   - Inspectable: deltas are plain Go structs that can be logged/debugged
//   - Testable: validate without applying, test deltas independently
//   - Consistent: same pattern across both pieces of running state

// ExpenseHistoryDeltaKind discriminates the two ways a fold step can affect
// an account's ExpenseHistory.
type ExpenseHistoryDeltaKind int

const (
	ExpenseHistoryInit ExpenseHistoryDeltaKind = iota
	ExpenseHistoryRecord
)

// ExpenseHistoryDelta describes a pending mutation to one account's
// ExpenseHistory, computed by VariableExpenseInit/VariableExpense
// processing ahead of being applied to FoldState.
type ExpenseHistoryDelta struct {
	Kind        ExpenseHistoryDeltaKind
	Account     Account
	At          time.Time
	WindowStart time.Time
	WindowEnd   time.Time
	DailyRate   decimal.Decimal
}

// Apply commits the delta to the given history in place.
func (d ExpenseHistoryDelta) Apply(h *ExpenseHistory) error {
	switch d.Kind {
	case ExpenseHistoryInit:
		return h.Init(d.Account, d.At)
	case ExpenseHistoryRecord:
		h.Record(d.WindowStart, d.WindowEnd, d.DailyRate)
		return nil
	default:
		return &InvalidArgumentsForAccountingLogicError{Logic: "ExpenseHistoryDelta", Reason: "unknown kind"}
	}
}

// ReimbursementDeltaKind discriminates push (a new charge becomes
// reimbursable) from pop (a Reimburse transaction clears charges).
type ReimbursementDeltaKind int

const (
	ReimbursementPush ReimbursementDeltaKind = iota
	ReimbursementPop
)

// ReimbursementDelta describes a pending mutation to one entity's
// ReimbursementQueue.
type ReimbursementDelta struct {
	Kind    ReimbursementDeltaKind
	Account Account

	// Push fields.
	PushEntry UnreimbursedEntry

	// Pop fields.
	PopAmount    decimal.Decimal
	PopTolerance decimal.Decimal
	// PopConsumed and PopOutstanding are filled in by
	// ValidateReimbursementPop so the processor can build the reimbursement
	// transaction and assertion from the walk Validate inspected; Apply
	// repeats the walk through Pop. PopOutstanding is the total still
	// queued behind the consumed prefix.
	PopConsumed    []UnreimbursedEntry
	PopOutstanding decimal.Decimal
}

// ValidateReimbursementPop computes, without mutating q, the entries and
// outstanding remainder a Pop of amount would produce. The processor calls
// this during the Validate pass and stashes the result on the delta for
// Apply to commit verbatim.
func ValidateReimbursementPop(q *ReimbursementQueue, account Account, amount, tolerance decimal.Decimal) (ReimbursementDelta, error) {
	consumed, outstanding, err := q.Peek(account, amount, tolerance)
	if err != nil {
		return ReimbursementDelta{}, err
	}
	return ReimbursementDelta{
		Kind:           ReimbursementPop,
		Account:        account,
		PopAmount:      amount,
		PopTolerance:   tolerance,
		PopConsumed:    consumed,
		PopOutstanding: outstanding,
	}, nil
}

// Apply commits the delta to the given queue in place. For a Pop delta this
// replays the consumption against the queue's current state; Validate
// having already succeeded guarantees Apply runs unless an intervening
// delta altered the same queue (the fold applies deltas for one account in
// the order they were validated, so this cannot happen).
func (d ReimbursementDelta) Apply(q *ReimbursementQueue) error {
	switch d.Kind {
	case ReimbursementPush:
		q.Push(d.PushEntry)
		return nil
	case ReimbursementPop:
		_, _, err := q.Pop(d.Account, d.PopAmount, d.PopTolerance)
		return err
	default:
		return &InvalidArgumentsForAccountingLogicError{Logic: "ReimbursementDelta", Reason: "unknown kind"}
	}
}

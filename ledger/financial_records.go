package ledger

import (
	"sort"

	"golang.org/x/exp/maps"
)

// ReimbursementEntry pairs an outstanding UnreimbursedEntry with the
// liability account it is queued against, for the flattened view
// FinancialRecords exposes.
type ReimbursementEntry struct {
	Account Account
	Entry   UnreimbursedEntry
}

// FinancialRecords is the final output of the spec processor: a flattened,
// ready-to-report view of everything the fold accumulated.
type FinancialRecords struct {
	Transactions        []Transaction
	Assertions          []Assertion
	LabelLookup         map[SpecID]TransactionLabel
	AnnotationsLookup   map[SpecID][]Annotation
	UnreimbursedEntries []ReimbursementEntry
}

// assemble combines a FoldState's accumulated assertions with any
// standalone AssertionSpecs, and flattens the per-account reimbursement
// queues into a single ordered sequence.
func assemble(state *FoldState, assertionSpecs []AssertionSpec) FinancialRecords {
	assertions := make([]Assertion, 0, len(state.Assertions)+len(assertionSpecs))
	for _, as := range assertionSpecs {
		assertions = append(assertions, as.ToAssertion())
	}
	assertions = append(assertions, state.Assertions...)

	var unreimbursed []ReimbursementEntry
	accounts := maps.Keys(state.Reimbursement)
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].String() < accounts[j].String() })
	for _, account := range accounts {
		for _, entry := range state.Reimbursement[account].Entries() {
			unreimbursed = append(unreimbursed, ReimbursementEntry{Account: account, Entry: entry})
		}
	}

	return FinancialRecords{
		Transactions:        state.Transactions,
		Assertions:          assertions,
		LabelLookup:         state.LabelLookup,
		AnnotationsLookup:   state.AnnotationsLookup,
		UnreimbursedEntries: unreimbursed,
	}
}

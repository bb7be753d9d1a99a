package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/jnewland/ifrsfold/telemetry"
)

// FoldState carries everything the spec processor threads across the
// whole stream: it is owned exclusively by Process and mutated only by its
// fold step, never shared or aliased elsewhere.
type FoldState struct {
	Transactions      []Transaction
	Assertions        []Assertion
	ExpenseHistory    map[Account]*ExpenseHistory
	LabelLookup       map[SpecID]TransactionLabel
	AnnotationsLookup map[SpecID][]Annotation
	Reimbursement     map[Account]*ReimbursementQueue
}

// NewFoldState builds an empty FoldState.
func NewFoldState() *FoldState {
	return &FoldState{
		ExpenseHistory:    make(map[Account]*ExpenseHistory),
		LabelLookup:       make(map[SpecID]TransactionLabel),
		AnnotationsLookup: make(map[SpecID][]Annotation),
		Reimbursement:     make(map[Account]*ReimbursementQueue),
	}
}

func (s *FoldState) historyFor(account Account) *ExpenseHistory {
	h, ok := s.ExpenseHistory[account]
	if !ok {
		h = &ExpenseHistory{}
		s.ExpenseHistory[account] = h
	}
	return h
}

func (s *FoldState) queueFor(account Account) *ReimbursementQueue {
	q, ok := s.Reimbursement[account]
	if !ok {
		q = &ReimbursementQueue{}
		s.Reimbursement[account] = q
	}
	return q
}

// Transformation is everything one spec's fold step produces: the
// transactions it emits, the state deltas it implies, and the annotations
// it accumulates (from its logic variant, on top of whatever its
// decorators already appended).
type Transformation struct {
	Transactions   []Transaction
	Assertions     []Assertion
	HistoryDeltas  []ExpenseHistoryDelta
	ReimburseDelta []ReimbursementDelta
	Annotations    []Annotation
}

// Process decorates, sorts, and folds a sequence of TransactionSpecs (plus
// standalone AssertionSpecs) into FinancialRecords. It is the top-level
// entrypoint of the spec processor.
func Process(ctx context.Context, specs []TransactionSpec, assertionSpecs []AssertionSpec) (FinancialRecords, error) {
	cfg := ConfigFromContext(ctx)
	root := telemetry.FromContext(ctx).Start("ledger.process")
	defer root.End()

	decorateTimer := root.Child("decorate")
	decorated := make([]DecoratedTransactionSpec, 0, len(specs))
	for _, spec := range specs {
		d, err := Decorate(ctx, spec)
		if err != nil {
			return FinancialRecords{}, err
		}
		decorated = append(decorated, d)
	}
	decorateTimer.End()

	// Stable sort by payment date: ties keep source/insertion order. This
	// ordering is load-bearing for reimbursement FIFO correctness and for
	// variable-expense history visibility.
	slices.SortStableFunc(decorated, func(a, b DecoratedTransactionSpec) int {
		return a.PaymentDate.Compare(b.PaymentDate)
	})

	foldTimer := root.Child(fmt.Sprintf("fold (%d specs)", len(decorated)))
	state := NewFoldState()
	for _, spec := range decorated {
		specTimer := foldTimer.Child(fmt.Sprintf("spec:%d", spec.ID))
		t, err := validateSpec(cfg, state, spec)
		if err != nil {
			specTimer.End()
			return FinancialRecords{}, err
		}
		applyTransformation(state, spec, t)
		specTimer.End()
	}
	foldTimer.End()

	return assemble(state, assertionSpecs), nil
}

// applyTransformation commits a validated Transformation to state. It never
// fails: every check that could fail already ran during validateSpec.
func applyTransformation(state *FoldState, spec DecoratedTransactionSpec, t Transformation) {
	state.Transactions = append(state.Transactions, t.Transactions...)
	state.Assertions = append(state.Assertions, t.Assertions...)

	for _, delta := range t.HistoryDeltas {
		_ = delta.Apply(state.historyFor(delta.Account))
	}
	for _, delta := range t.ReimburseDelta {
		_ = delta.Apply(state.queueFor(delta.Account))
	}

	annotations := append([]Annotation{}, spec.Annotations...)
	annotations = append(annotations, t.Annotations...)
	if len(annotations) > 0 {
		state.AnnotationsLookup[spec.ID] = append(state.AnnotationsLookup[spec.ID], annotations...)
	}
	if spec.Payee != "" || spec.Description != "" {
		state.LabelLookup[spec.ID] = TransactionLabel{Payee: spec.Payee, Description: spec.Description}
	}
}

// validateSpec computes the Transformation one decorated spec implies,
// without mutating state. It is the pure half of the Delta Architecture:
// every precondition check and every possible failure happens here, so
// applyTransformation can commit without further error handling.
func validateSpec(cfg *Config, state *FoldState, spec DecoratedTransactionSpec) (Transformation, error) {
	t := Transformation{
		Transactions: append([]Transaction{}, spec.ExtTransactions...),
		Assertions:   append([]Assertion{}, spec.ExtAssertions...),
	}

	logic := spec.Logic
	switch logic.Kind {
	case LogicCommonStock:
		if err := emitCommonStock(&t, spec, logic); err != nil {
			return Transformation{}, err
		}
	case LogicCostOfEquity:
		if err := emitCostOfEquity(&t, spec); err != nil {
			return Transformation{}, err
		}
	case LogicSimpleExpense:
		if err := emitSimpleExpense(&t, spec, logic); err != nil {
			return Transformation{}, err
		}
	case LogicCapitalize:
		if err := emitCapitalize(&t, spec, logic); err != nil {
			return Transformation{}, err
		}
	case LogicAmortize:
		if err := emitAmortize(&t, spec, logic); err != nil {
			return Transformation{}, err
		}
	case LogicFixedExpense:
		if err := emitFixedExpense(&t, spec, logic); err != nil {
			return Transformation{}, err
		}
	case LogicVariableExpenseInit:
		if err := emitVariableExpenseInit(state, &t, spec, logic); err != nil {
			return Transformation{}, err
		}
	case LogicVariableExpense:
		if err := emitVariableExpense(&t, state, spec, logic); err != nil {
			return Transformation{}, err
		}
	case LogicImmaterialIncome:
		if err := emitImmaterialIncome(&t, spec, logic); err != nil {
			return Transformation{}, err
		}
	case LogicImmaterialExpense:
		if err := emitImmaterialExpense(&t, spec, logic); err != nil {
			return Transformation{}, err
		}
	case LogicReimburse:
		if err := emitReimburse(&t, state, spec, logic, cfg); err != nil {
			return Transformation{}, err
		}
	case LogicClearVat:
		if err := emitClearVat(&t, spec, logic); err != nil {
			return Transformation{}, err
		}
	default:
		return Transformation{}, &InvalidArgumentsForAccountingLogicError{Logic: "unknown", Reason: "unrecognized accounting logic kind"}
	}

	if err := trackUnreimbursed(&t, spec, cfg); err != nil {
		return Transformation{}, err
	}

	for _, txn := range t.Transactions {
		if !txn.Balances(cfg.Tolerance) {
			return Transformation{}, &InvalidArgumentsForAccountingLogicError{
				Logic:  logic.Kind.String(),
				Reason: fmt.Sprintf("emitted transaction does not balance %s", formatResiduals(txn.Residuals())),
			}
		}
	}

	return t, nil
}

func requirePositive(logic string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &UnexpectedNegativeValueError{Logic: logic, Amount: amount}
	}
	return nil
}

func requireNegative(logic string, amount decimal.Decimal) error {
	if !amount.IsNegative() {
		return &UnexpectedPositiveValueError{Logic: logic, Amount: amount}
	}
	return nil
}

func requireNoAccrualEnd(logic string, spec DecoratedTransactionSpec) error {
	if spec.AccrualEnd != nil {
		return &InvalidArgumentsForAccountingLogicError{Logic: logic, Reason: "accrual_end must be absent"}
	}
	return nil
}

func requireAccrualEnd(logic string, spec DecoratedTransactionSpec) error {
	if spec.AccrualEnd == nil {
		return &InvalidArgumentsForAccountingLogicError{Logic: logic, Reason: "accrual_end is required"}
	}
	return nil
}

// timingBranch classifies a spec's accrual/payment relationship into the
// three-way pattern most logic variants share.
type timingBranch int

const (
	timingImmediate timingBranch = iota
	timingPrepaid
	timingPayable
)

func branchFor(accrual, payment time.Time) timingBranch {
	switch {
	case payment.Before(accrual):
		return timingPrepaid
	case payment.After(accrual):
		return timingPayable
	default:
		return timingImmediate
	}
}

// genericTimingEmission implements the three-branch immediate/prepaid/
// payable pattern shared by CostOfEquity, SimpleExpense, and Capitalize.
// amount is negative throughout; mainAccount recognizes the expense/cost/
// asset, prepaidAccount and payableAccount are its companion timing
// accounts, and noun names the thing being recorded in transaction
// comments ("expense", "asset", "share issuance costs").
//
// isCapitalize selects Capitalize's asset-specific prepaid handling: the
// pre-payment posting is deliberately not linked (the cash movement
// pre-pays, it does not yet acquire the final asset, so it stays in
// operating activities until reclassification), the degenerate
// prepaid==main case emits no reclassification at all, and the surviving
// reclassification carries the non-cash tag on its destination leg.
func genericTimingEmission(spec DecoratedTransactionSpec, mainAccount, prepaidAccount, payableAccount Account, noun string, isCapitalize bool) []Transaction {
	amount := spec.Amount
	currency := spec.Commodity.CurrencyValue()
	backing := spec.BackingAccount.Account()

	switch branchFor(spec.AccrualStart, spec.PaymentDate) {
	case timingImmediate:
		return []Transaction{{
			SpecID: spec.ID,
			Date:   spec.PaymentDate,
			Postings: []TransactionPosting{
				NewPosting(backing, amount, currency),
				NewPosting(mainAccount, amount.Neg(), currency),
			},
		}}
	case timingPrepaid:
		if isCapitalize {
			txns := []Transaction{{
				SpecID:  spec.ID,
				Date:    spec.PaymentDate,
				Comment: "Pre-paid " + noun,
				Postings: []TransactionPosting{
					NewPosting(backing, amount, currency),
					NewPosting(prepaidAccount, amount.Neg(), currency),
				},
			}}
			if !prepaidAccount.Equal(mainAccount) {
				txns = append(txns, Transaction{
					SpecID:  spec.ID,
					Date:    spec.AccrualStart,
					Comment: "Reclassify pre-paid " + noun,
					Postings: []TransactionPosting{
						NewPosting(prepaidAccount, amount, currency),
						NonCashReclassificationPosting(mainAccount, amount.Neg(), currency),
					},
				})
			}
			return txns
		}
		return []Transaction{
			{
				SpecID:  spec.ID,
				Date:    spec.PaymentDate,
				Comment: "Pre-paid " + noun,
				Postings: []TransactionPosting{
					NewPosting(backing, amount, currency),
					LinkedPosting(prepaidAccount, mainAccount, amount.Neg(), currency),
				},
			},
			{
				SpecID:  spec.ID,
				Date:    spec.AccrualStart,
				Comment: "Accrue pre-paid " + noun,
				Postings: []TransactionPosting{
					NewPosting(prepaidAccount, amount, currency),
					NewPosting(mainAccount, amount.Neg(), currency),
				},
			},
		}
	default: // timingPayable
		return []Transaction{
			{
				SpecID:  spec.ID,
				Date:    spec.AccrualStart,
				Comment: "Accrue payable " + noun,
				Postings: []TransactionPosting{
					NewPosting(payableAccount, amount, currency),
					NewPosting(mainAccount, amount.Neg(), currency),
				},
			},
			{
				SpecID:  spec.ID,
				Date:    spec.PaymentDate,
				Comment: "Clear payable " + noun,
				Postings: []TransactionPosting{
					NewPosting(backing, amount, currency),
					LinkedPosting(payableAccount, mainAccount, amount.Neg(), currency),
				},
			},
		}
	}
}

func emitCommonStock(t *Transformation, spec DecoratedTransactionSpec, logic AccountingLogic) error {
	if err := requireNoAccrualEnd(logic.Kind.String(), spec); err != nil {
		return err
	}
	if err := requirePositive(logic.Kind.String(), spec.Amount); err != nil {
		return err
	}
	if spec.PaymentDate.Before(spec.AccrualStart) {
		return &CommonStockCannotBePrepaidError{AccrualDate: spec.AccrualStart, PaymentDate: spec.PaymentDate}
	}

	amount := spec.Amount.Abs()
	currency := spec.Commodity.CurrencyValue()
	backing := spec.BackingAccount.Account()
	subscriber := logic.Subscriber.Account()

	if spec.PaymentDate.Equal(spec.AccrualStart) {
		// Capital contribution was made on the same day, so record in a
		// single journal entry.
		t.Transactions = append(t.Transactions, Transaction{
			SpecID: spec.ID,
			Date:   spec.PaymentDate,
			Postings: []TransactionPosting{
				NewPosting(subscriber, amount.Neg(), currency),
				NewPosting(backing, amount, currency),
			},
		})
		return nil
	}

	// Capital contribution was made later, so record unpaid share capital
	// as a temporary account until the cash arrives.
	temporary := logic.WhileUnpaid.Account()
	t.Transactions = append(t.Transactions,
		Transaction{
			SpecID:  spec.ID,
			Date:    spec.AccrualStart,
			Comment: "Unpaid share capital",
			Postings: []TransactionPosting{
				NewPosting(subscriber, amount.Neg(), currency),
				NewPosting(temporary, amount, currency),
			},
		},
		Transaction{
			SpecID:  spec.ID,
			Date:    spec.PaymentDate,
			Comment: "Share capital contribution",
			Postings: []TransactionPosting{
				LinkedPosting(temporary, subscriber, amount.Neg(), currency),
				NewPosting(backing, amount, currency),
			},
		},
	)
	return nil
}

func emitCostOfEquity(t *Transformation, spec DecoratedTransactionSpec) error {
	if err := requireNoAccrualEnd(LogicCostOfEquity.String(), spec); err != nil {
		return err
	}
	if err := requireNegative(LogicCostOfEquity.String(), spec.Amount); err != nil {
		return err
	}
	t.Transactions = append(t.Transactions, genericTimingEmission(spec,
		ShareIssuanceCostsAccount, PrepaidShareIssuanceCostsAccount, ShareIssuanceCostsPayableAccount,
		"share issuance costs", false)...)
	return nil
}

func emitSimpleExpense(t *Transformation, spec DecoratedTransactionSpec, logic AccountingLogic) error {
	if err := requireNoAccrualEnd(logic.Kind.String(), spec); err != nil {
		return err
	}
	if err := requireNegative(logic.Kind.String(), spec.Amount); err != nil {
		return err
	}
	e := logic.Expense
	t.Transactions = append(t.Transactions, genericTimingEmission(spec, e.Account(), e.WhilePrepaid(), e.WhilePayable(), "expense", false)...)
	return nil
}

func emitCapitalize(t *Transformation, spec DecoratedTransactionSpec, logic AccountingLogic) error {
	if err := requireNoAccrualEnd(logic.Kind.String(), spec); err != nil {
		return err
	}
	if err := requireNegative(logic.Kind.String(), spec.Amount); err != nil {
		return err
	}
	a := logic.Asset
	t.Transactions = append(t.Transactions, genericTimingEmission(spec, a.Account(), a.WhilePrepaid(), a.WhilePayable(), "asset", true)...)
	return nil
}

func emitAmortize(t *Transformation, spec DecoratedTransactionSpec, logic AccountingLogic) error {
	if err := requireNegative(logic.Kind.String(), spec.Amount); err != nil {
		return err
	}
	if err := requireAccrualEnd(logic.Kind.String(), spec); err != nil {
		return err
	}
	a := logic.Asset
	accrualAccount, ok := a.UponAccrual()
	if !ok {
		return &NonAmortizableAssetError{Account: a.Account()}
	}

	// Record the capitalization first, as a point event at accrual start.
	capSpec := spec
	capSpec.AccrualEnd = nil
	t.Transactions = append(t.Transactions, genericTimingEmission(capSpec, a.Account(), a.WhilePrepaid(), a.WhilePayable(), "asset", true)...)

	// Then the monthly amortization adjustments.
	currency := spec.Commodity.CurrencyValue()
	periods := SplitByMonth(spec.AccrualStart, *spec.AccrualEnd, spec.Amount.Abs(), currency)
	for _, p := range periods {
		t.Transactions = append(t.Transactions, Transaction{
			SpecID:  spec.ID,
			Date:    p.End,
			Comment: fmt.Sprintf("Amortization adjustment for %s - %s", p.Start.Format("2006-01-02"), p.End.Format("2006-01-02")),
			Postings: []TransactionPosting{
				NewPosting(a.Account(), p.Amount.Neg(), currency),
				NewPosting(accrualAccount, p.Amount, currency),
			},
		})
	}
	return nil
}

func emitFixedExpense(t *Transformation, spec DecoratedTransactionSpec, logic AccountingLogic) error {
	if err := requireNegative(logic.Kind.String(), spec.Amount); err != nil {
		return err
	}
	if err := requireAccrualEnd(logic.Kind.String(), spec); err != nil {
		return err
	}
	e := logic.Expense
	currency := spec.Commodity.CurrencyValue()
	periods := SplitByMonth(spec.AccrualStart, *spec.AccrualEnd, spec.Amount.Abs(), currency)

	payableSum := decimal.Zero
	prepaidSum := decimal.Zero
	for _, p := range periods {
		// Adjustments on or before payment accrue as payable (the clearing
		// is still ahead); later ones accrue as prepaid (the clearing
		// already funded them).
		account := e.WhilePayable()
		if p.End.After(spec.PaymentDate) {
			account = e.WhilePrepaid()
			prepaidSum = prepaidSum.Add(p.Amount)
		} else {
			payableSum = payableSum.Add(p.Amount)
		}
		t.Transactions = append(t.Transactions, Transaction{
			SpecID:  spec.ID,
			Date:    p.End,
			Comment: fmt.Sprintf("Accrue fixed expense for %s - %s", p.Start.Format("2006-01-02"), p.End.Format("2006-01-02")),
			Postings: []TransactionPosting{
				NewPosting(account, p.Amount.Neg(), currency),
				NewPosting(e.Account(), p.Amount, currency),
			},
		})
	}

	// The clearing transaction may land before, between, or after the
	// accrual adjustments above: it clears the payables accrued up to the
	// payment date and pours the remainder into prepaid, to be drawn down
	// by the later adjustments.
	t.Transactions = append(t.Transactions, Transaction{
		SpecID:  spec.ID,
		Date:    spec.PaymentDate,
		Comment: "Clear / pre-pay fixed expense",
		Postings: []TransactionPosting{
			NewPosting(spec.BackingAccount.Account(), spec.Amount.Abs().Neg(), currency),
			LinkedPosting(e.WhilePrepaid(), e.Account(), prepaidSum, currency),
			LinkedPosting(e.WhilePayable(), e.Account(), payableSum, currency),
		},
	})
	return nil
}

func emitVariableExpenseInit(state *FoldState, t *Transformation, spec DecoratedTransactionSpec, logic AccountingLogic) error {
	if err := requireAccrualEnd(logic.Kind.String(), spec); err != nil {
		return err
	}
	account := logic.InitAccount.Account()
	if h, ok := state.ExpenseHistory[account]; ok && h.InitDate != nil {
		return &VariableExpenseDoubleInitError{Account: account, InitDate: *h.InitDate}
	}
	days := int64(spec.AccrualEnd.Sub(spec.AccrualStart).Hours()/24) + 1
	if days <= 0 {
		return &InvalidArgumentsForAccountingLogicError{Logic: logic.Kind.String(), Reason: "accrual window must span at least one day"}
	}
	dailyInit := logic.InitEstimate.Abs().Div(decimal.NewFromInt(days))
	return emitVariableExpenseCommon(t, spec, logic.InitAccount, dailyInit, true)
}

// emitVariableExpense uses the last 90 days of history before the accrual
// start to compute the daily average rate. If the account's init ran less
// than 90 days prior, the window instead starts at the init date.
func emitVariableExpense(t *Transformation, state *FoldState, spec DecoratedTransactionSpec, logic AccountingLogic) error {
	if err := requireAccrualEnd(logic.Kind.String(), spec); err != nil {
		return err
	}

	e := logic.Expense
	history, ok := state.ExpenseHistory[e.Account()]
	if !ok || history.InitDate == nil {
		return &VariableExpenseNoInitError{Account: e.Account()}
	}

	windowStart := spec.AccrualStart.AddDate(0, 0, -90)
	if history.InitDate.After(windowStart) {
		windowStart = *history.InitDate
	}
	windowEnd := spec.AccrualStart.AddDate(0, 0, -1)

	dailyRate, err := history.DailyAverageOverWindow(e.Account(), windowStart, windowEnd)
	if err != nil {
		return err
	}
	return emitVariableExpenseCommon(t, spec, e, dailyRate, false)
}

// emitVariableExpenseCommon is the shared tail of VariableExpenseInit and
// VariableExpense: monthly accrual at the estimated daily rate, a
// discrepancy correction once the actual amount is known, the clearing
// against the backing account, and the history delta recording the actual
// daily rate for future estimation.
func emitVariableExpenseCommon(t *Transformation, spec DecoratedTransactionSpec, e ExpenseHandler, estimatedDailyRate decimal.Decimal, isInit bool) error {
	if err := requireNegative(LogicVariableExpense.String(), spec.Amount); err != nil {
		return err
	}
	if !spec.PaymentDate.After(*spec.AccrualEnd) {
		return &VariableExpenseInvalidPaymentDateError{AccrualEnd: *spec.AccrualEnd, PaymentDate: spec.PaymentDate}
	}

	currency := spec.Commodity.CurrencyValue()
	accrualDays := int64(spec.AccrualEnd.Sub(spec.AccrualStart).Hours()/24) + 1
	estimatedTotal := estimatedDailyRate.Mul(decimal.NewFromInt(accrualDays))

	periods := SplitByMonth(spec.AccrualStart, *spec.AccrualEnd, estimatedTotal, currency)
	for _, p := range periods {
		t.Transactions = append(t.Transactions, Transaction{
			SpecID:  spec.ID,
			Date:    p.End,
			Comment: fmt.Sprintf("Estimated expense accrual for %s - %s", p.Start.Format("2006-01-02"), p.End.Format("2006-01-02")),
			Postings: []TransactionPosting{
				NewPosting(e.WhilePayable(), p.Amount.Neg(), currency),
				NewPosting(e.Account(), p.Amount, currency),
			},
		})
	}

	// The discrepancy must be computed at currency precision so no
	// lingering fractional pennies survive the correction.
	actualTotal := spec.Amount.Abs()
	discrepancy := RoundAt(actualTotal, currency).Sub(RoundAt(estimatedTotal, currency))
	if discrepancy.Abs().GreaterThanOrEqual(spec.Commodity.PrecisionCutoff()) {
		t.Transactions = append(t.Transactions, Transaction{
			SpecID:  spec.ID,
			Date:    spec.PaymentDate,
			Comment: "Correct estimate discrepancy",
			Postings: []TransactionPosting{
				NewPosting(e.WhilePayable(), discrepancy.Neg(), currency),
				NewPosting(e.Account(), discrepancy, currency),
			},
		})
	}

	t.Transactions = append(t.Transactions, Transaction{
		SpecID:  spec.ID,
		Date:    spec.PaymentDate,
		Comment: "Clear payable expense",
		Postings: []TransactionPosting{
			NewPosting(spec.BackingAccount.Account(), actualTotal.Neg(), currency),
			LinkedPosting(e.WhilePayable(), e.Account(), actualTotal, currency),
		},
	})

	// Record this expense's actual daily rate for future history.
	actualDailyRate := actualTotal.Div(decimal.NewFromInt(accrualDays))
	t.HistoryDeltas = append(t.HistoryDeltas, ExpenseHistoryDelta{
		Kind:        ExpenseHistoryRecord,
		Account:     e.Account(),
		WindowStart: spec.AccrualStart,
		WindowEnd:   *spec.AccrualEnd,
		DailyRate:   actualDailyRate,
	})
	if isInit {
		t.HistoryDeltas = append(t.HistoryDeltas, ExpenseHistoryDelta{
			Kind:    ExpenseHistoryInit,
			Account: e.Account(),
			At:      spec.AccrualStart,
		})
	}

	t.Annotations = append(t.Annotations, AnnotationVariableExpense)
	return nil
}

func emitImmaterialIncome(t *Transformation, spec DecoratedTransactionSpec, logic AccountingLogic) error {
	if err := requirePositive(logic.Kind.String(), spec.Amount); err != nil {
		return err
	}
	currency := spec.Commodity.CurrencyValue()
	t.Transactions = append(t.Transactions, Transaction{
		SpecID: spec.ID,
		Date:   spec.PaymentDate,
		Postings: []TransactionPosting{
			NewPosting(logic.Income.Account(), spec.Amount.Neg(), currency),
			NewPosting(spec.BackingAccount.Account(), spec.Amount, currency),
		},
	})
	t.Annotations = append(t.Annotations, AnnotationImmaterialIncome)
	return nil
}

func emitImmaterialExpense(t *Transformation, spec DecoratedTransactionSpec, logic AccountingLogic) error {
	if err := requireNegative(logic.Kind.String(), spec.Amount); err != nil {
		return err
	}
	currency := spec.Commodity.CurrencyValue()
	t.Transactions = append(t.Transactions, Transaction{
		SpecID: spec.ID,
		Date:   spec.PaymentDate,
		Postings: []TransactionPosting{
			NewPosting(spec.BackingAccount.Account(), spec.Amount, currency),
			NewPosting(logic.Expense.Account(), spec.Amount.Neg(), currency),
		},
	})
	t.Annotations = append(t.Annotations, AnnotationImmaterialExpense)
	return nil
}

func emitReimburse(t *Transformation, state *FoldState, spec DecoratedTransactionSpec, logic AccountingLogic, cfg *Config) error {
	if err := requireNoAccrualEnd(logic.Kind.String(), spec); err != nil {
		return err
	}
	if err := requireNegative(logic.Kind.String(), spec.Amount); err != nil {
		return err
	}
	if spec.BackingAccount.IsReimburse() {
		return &InvalidArgumentsForAccountingLogicError{Logic: logic.Kind.String(), Reason: "reimbursement requires a cash backing account"}
	}

	account := logic.Reimbursable.Account()
	amount := spec.Amount.Abs()
	queue, ok := state.Reimbursement[account]
	if !ok {
		queue = &ReimbursementQueue{}
	}
	delta, err := ValidateReimbursementPop(queue, account, amount, cfg.Tolerance)
	if err != nil {
		return err
	}

	// Reimburse expects the queue drained; anything still outstanding means
	// the caller should have used ReimbursePartial.
	if !logic.Partial && delta.PopOutstanding.Abs().GreaterThanOrEqual(spec.Commodity.PrecisionCutoff()) {
		return &UnexpectedPartialReimbursementError{Account: account, Residual: delta.PopOutstanding}
	}

	currency := spec.Commodity.CurrencyValue()
	postings := []TransactionPosting{NewPosting(spec.BackingAccount.Account(), amount.Neg(), currency)}
	for _, entry := range delta.PopConsumed {
		for _, credit := range entry.CreditPostings {
			source := credit.Account
			if credit.SourceAccount != nil {
				source = *credit.SourceAccount
			}
			postings = append(postings, LinkedPosting(account, source, credit.Amount.Abs(), credit.Currency))
		}
	}

	t.Transactions = append(t.Transactions, Transaction{
		SpecID:   spec.ID,
		Date:     spec.PaymentDate,
		Postings: postings,
	})

	balance := decimal.Zero
	if logic.Partial {
		balance = delta.PopOutstanding.Abs().Neg()
	}
	t.Assertions = append(t.Assertions, Assertion{Date: spec.PaymentDate, Account: account, Balance: balance, Currency: currency})

	t.ReimburseDelta = append(t.ReimburseDelta, delta)
	return nil
}

func emitClearVat(t *Transformation, spec DecoratedTransactionSpec, logic AccountingLogic) error {
	if err := requireNoAccrualEnd(logic.Kind.String(), spec); err != nil {
		return err
	}
	if spec.BackingAccount.IsReimburse() {
		return &ClearVatInvalidBackingAccountError{}
	}
	currency := spec.Commodity.CurrencyValue()
	amount := spec.Amount
	backing := spec.BackingAccount.Account()
	window := fmt.Sprintf("%s - %s", logic.From.Format("2006-01-02"), logic.To.Format("2006-01-02"))

	if amount.IsPositive() {
		t.Transactions = append(t.Transactions, Transaction{
			SpecID:  spec.ID,
			Date:    spec.AccrualStart,
			Comment: "Clear VAT receivable for " + window,
			Postings: []TransactionPosting{
				NewPosting(VatReceivableAccount, amount.Neg(), currency),
				NewPosting(backing, amount, currency),
			},
		})
		t.Assertions = append(t.Assertions,
			Assertion{Date: logic.To, Account: VatReceivableAccount, Balance: amount.Abs(), Currency: currency},
			Assertion{Date: logic.To, Account: VatPayableAccount, Balance: decimal.Zero, Currency: currency},
		)
		return nil
	}

	t.Transactions = append(t.Transactions, Transaction{
		SpecID:  spec.ID,
		Date:    spec.AccrualStart,
		Comment: "Clear VAT payable for " + window,
		Postings: []TransactionPosting{
			NewPosting(backing, amount, currency),
			NewPosting(VatPayableAccount, amount.Neg(), currency),
		},
	})
	t.Assertions = append(t.Assertions,
		Assertion{Date: logic.To, Account: VatReceivableAccount, Balance: decimal.Zero, Currency: currency},
		Assertion{Date: logic.To, Account: VatPayableAccount, Balance: amount.Abs().Neg(), Currency: currency},
	)
	return nil
}

// trackUnreimbursed records, for a spec settled against a reimbursable
// liability, one UnreimbursedEntry per emitted transaction that debits the
// liability, capturing the credit postings the later reimbursement must
// link back to.
func trackUnreimbursed(t *Transformation, spec DecoratedTransactionSpec, cfg *Config) error {
	if !spec.BackingAccount.IsReimburse() {
		return nil
	}
	account := spec.BackingAccount.Account()

	var entries []UnreimbursedEntry
	for _, txn := range t.Transactions {
		debitTotal := decimal.Zero
		for _, p := range txn.Postings {
			if p.Account.Equal(account) && p.Amount.IsNegative() {
				debitTotal = debitTotal.Add(p.Amount.Abs())
			}
		}
		if debitTotal.IsZero() {
			continue
		}

		creditTotal := decimal.Zero
		var credits []TransactionPosting
		for _, p := range txn.Postings {
			if p.Account.Equal(account) {
				continue
			}
			if p.Amount.IsPositive() {
				creditTotal = creditTotal.Add(p.Amount)
				credits = append(credits, p)
			}
		}
		if !IsZeroWithin(debitTotal.Sub(creditTotal), cfg.Tolerance) {
			return &ReimbursementTracingError{Account: account, Reason: "mixed reimbursable / non-reimbursable debits unsupported"}
		}
		entries = append(entries, UnreimbursedEntry{TransactionDate: txn.Date, TotalAmount: debitTotal, CreditPostings: credits})
	}

	for _, e := range entries {
		t.ReimburseDelta = append(t.ReimburseDelta, ReimbursementDelta{Kind: ReimbursementPush, Account: account, PushEntry: e})
	}
	return nil
}

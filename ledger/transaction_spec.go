package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountingLogicKind discriminates the closed set of accounting-logic
// variants a TransactionSpec can carry. Precondition validation per
// variant (e.g. "Amortize requires AccrualEnd") is a per-variant check in
// the processor, not a separate type; see AccountingLogic.
type AccountingLogicKind int

const (
	LogicCommonStock AccountingLogicKind = iota
	LogicCostOfEquity
	LogicSimpleExpense
	LogicCapitalize
	LogicAmortize
	LogicFixedExpense
	LogicVariableExpenseInit
	LogicVariableExpense
	LogicImmaterialIncome
	LogicImmaterialExpense
	LogicReimburse
	LogicClearVat
)

func (k AccountingLogicKind) String() string {
	switch k {
	case LogicCommonStock:
		return "CommonStock"
	case LogicCostOfEquity:
		return "CostOfEquity"
	case LogicSimpleExpense:
		return "SimpleExpense"
	case LogicCapitalize:
		return "Capitalize"
	case LogicAmortize:
		return "Amortize"
	case LogicFixedExpense:
		return "FixedExpense"
	case LogicVariableExpenseInit:
		return "VariableExpenseInit"
	case LogicVariableExpense:
		return "VariableExpense"
	case LogicImmaterialIncome:
		return "ImmaterialIncome"
	case LogicImmaterialExpense:
		return "ImmaterialExpense"
	case LogicReimburse:
		return "Reimburse"
	case LogicClearVat:
		return "ClearVat"
	default:
		return "Unknown"
	}
}

// CommonStockWhileUnpaid selects which temporary account holds share
// capital that was subscribed but not yet paid in: a receivable-style asset
// or a negative-equity contra account.
type CommonStockWhileUnpaid int

const (
	WhileUnpaidAsset CommonStockWhileUnpaid = iota
	WhileUnpaidNegativeEquity
)

// Account returns the standard unpaid-share-capital account this variant
// books against.
func (w CommonStockWhileUnpaid) Account() Account {
	if w == WhileUnpaidNegativeEquity {
		return UnpaidShareCapitalEquityAccount
	}
	return UnpaidShareCapitalAssetAccount
}

// AccountingLogic is a single tagged union covering all twelve accounting
// logic variants. Only the fields relevant to Kind are populated; the
// processor enforces each variant's preconditions before reading them.
type AccountingLogic struct {
	Kind AccountingLogicKind

	// CommonStock.
	Subscriber  ShareholderHandler
	WhileUnpaid CommonStockWhileUnpaid

	// SimpleExpense, FixedExpense, VariableExpense, ImmaterialExpense.
	Expense ExpenseHandler

	// Capitalize, Amortize.
	Asset AssetHandler

	// VariableExpenseInit.
	InitAccount  ExpenseHandler
	InitEstimate decimal.Decimal

	// ImmaterialIncome.
	Income IncomeHandler

	// Reimburse / ReimbursePartial (Partial selects which).
	Reimbursable ReimbursableEntityHandler
	Partial      bool

	// ClearVat.
	From, To time.Time
}

// CommonStock constructs the CommonStock variant.
func CommonStock(subscriber ShareholderHandler, whileUnpaid CommonStockWhileUnpaid) AccountingLogic {
	return AccountingLogic{Kind: LogicCommonStock, Subscriber: subscriber, WhileUnpaid: whileUnpaid}
}

// CostOfEquity constructs the CostOfEquity variant.
func CostOfEquity() AccountingLogic {
	return AccountingLogic{Kind: LogicCostOfEquity}
}

// SimpleExpenseLogic constructs the SimpleExpense variant.
func SimpleExpenseLogic(expense ExpenseHandler) AccountingLogic {
	return AccountingLogic{Kind: LogicSimpleExpense, Expense: expense}
}

// CapitalizeLogic constructs the Capitalize variant.
func CapitalizeLogic(asset AssetHandler) AccountingLogic {
	return AccountingLogic{Kind: LogicCapitalize, Asset: asset}
}

// AmortizeLogic constructs the Amortize variant.
func AmortizeLogic(asset AssetHandler) AccountingLogic {
	return AccountingLogic{Kind: LogicAmortize, Asset: asset}
}

// FixedExpenseLogic constructs the FixedExpense variant.
func FixedExpenseLogic(expense ExpenseHandler) AccountingLogic {
	return AccountingLogic{Kind: LogicFixedExpense, Expense: expense}
}

// VariableExpenseInitLogic constructs the VariableExpenseInit variant.
func VariableExpenseInitLogic(account ExpenseHandler, estimate decimal.Decimal) AccountingLogic {
	return AccountingLogic{Kind: LogicVariableExpenseInit, InitAccount: account, InitEstimate: estimate}
}

// VariableExpenseLogic constructs the VariableExpense variant.
func VariableExpenseLogic(expense ExpenseHandler) AccountingLogic {
	return AccountingLogic{Kind: LogicVariableExpense, Expense: expense}
}

// ImmaterialIncomeLogic constructs the ImmaterialIncome variant.
func ImmaterialIncomeLogic(income IncomeHandler) AccountingLogic {
	return AccountingLogic{Kind: LogicImmaterialIncome, Income: income}
}

// ImmaterialExpenseLogic constructs the ImmaterialExpense variant.
func ImmaterialExpenseLogic(expense ExpenseHandler) AccountingLogic {
	return AccountingLogic{Kind: LogicImmaterialExpense, Expense: expense}
}

// ReimburseLogic constructs the Reimburse variant (exact match required).
func ReimburseLogic(r ReimbursableEntityHandler) AccountingLogic {
	return AccountingLogic{Kind: LogicReimburse, Reimbursable: r}
}

// ReimbursePartialLogic constructs the ReimbursePartial variant. The amount
// must still match whole queued entries exactly; entries left queued after
// the match are asserted as the outstanding balance rather than rejected.
func ReimbursePartialLogic(r ReimbursableEntityHandler) AccountingLogic {
	return AccountingLogic{Kind: LogicReimburse, Reimbursable: r, Partial: true}
}

// ClearVatLogic constructs the ClearVat variant.
func ClearVatLogic(from, to time.Time) AccountingLogic {
	return AccountingLogic{Kind: LogicClearVat, From: from, To: to}
}

// TransactionSpec is a single row of input describing an accounting
// intent: the raw, pre-decoration form the spec source yields.
type TransactionSpec struct {
	ID           SpecID
	AccrualStart time.Time
	AccrualEnd   *time.Time
	PaymentDate  time.Time
	Logic        AccountingLogic
	Decorators   []Decorator
	Payee        string
	Description  string
	// Amount is signed from the company's cash perspective: inflows
	// positive, outflows negative.
	Amount         decimal.Decimal
	Commodity      Commodity
	BackingAccount BackingAccount
}

// AccrualEndOr returns AccrualEnd if set, else AccrualStart: the "point
// event" reading of an absent accrual window.
func (s TransactionSpec) AccrualEndOr() time.Time {
	if s.AccrualEnd != nil {
		return *s.AccrualEnd
	}
	return s.AccrualStart
}

// DecoratedTransactionSpec is a TransactionSpec after the decorator
// pipeline has run: it carries the side transactions, side assertions, and
// annotations decorators appended, plus the (possibly rewritten) amount
// and commodity.
type DecoratedTransactionSpec struct {
	TransactionSpec
	ExtTransactions []Transaction
	ExtAssertions   []Assertion
	Annotations     []Annotation
}

// AssertionSpec describes a standalone balance assertion, converted into
// an Assertion when the fold's output is assembled. Only cash accounts can
// be asserted this way.
type AssertionSpec struct {
	CashHandler CashHandler
	Date        time.Time
	Balance     decimal.Decimal
	Commodity   Commodity
}

// ToAssertion converts an AssertionSpec into its Assertion form.
func (a AssertionSpec) ToAssertion() Assertion {
	return Assertion{
		Date:     a.Date,
		Account:  a.CashHandler.Account(),
		Balance:  a.Balance,
		Currency: a.Commodity.CurrencyValue(),
	}
}

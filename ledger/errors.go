package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ClientError is implemented by every error that signals a problem with
// caller-supplied data (a spec with the wrong shape for its accounting
// logic, an out-of-range decorator parameter). Consumers can distinguish
// this from InternalError without string matching.
type ClientError interface {
	error
	clientError()
}

// InternalError is implemented by every error that signals a violated
// invariant inside the fold itself, rather than bad input.
type InternalError interface {
	error
	internalError()
}

// InvalidCsvError reports a structurally malformed CSV document handed to
// a spec source. Spec sources construct it; the fold itself never sees raw
// CSV.
type InvalidCsvError struct {
	Reason string
}

func (e *InvalidCsvError) Error() string {
	return fmt.Sprintf("invalid csv: %s", e.Reason)
}
func (*InvalidCsvError) clientError() {}

// InvalidCsvContentError reports a CSV row whose cells do not decode into
// a spec.
type InvalidCsvContentError struct {
	Row    int
	Reason string
}

func (e *InvalidCsvContentError) Error() string {
	return fmt.Sprintf("invalid csv content at row %d: %s", e.Row, e.Reason)
}
func (*InvalidCsvContentError) clientError() {}

// InvalidRonError reports an embedded RON literal that failed to decode
// into the named type.
type InvalidRonError struct {
	Type  string
	Value string
}

func (e *InvalidRonError) Error() string {
	return fmt.Sprintf("invalid ron literal for %s: %q", e.Type, e.Value)
}
func (*InvalidRonError) clientError() {}

// InvalidIsoDateError reports a date field that is not a valid ISO-8601
// calendar date.
type InvalidIsoDateError struct {
	Value string
}

func (e *InvalidIsoDateError) Error() string {
	return fmt.Sprintf("invalid iso date: %q", e.Value)
}
func (*InvalidIsoDateError) clientError() {}

// InvalidIsoCurrencyCodeError reports an unrecognized ISO-4217 currency
// code.
type InvalidIsoCurrencyCodeError struct {
	Code string
}

func (e *InvalidIsoCurrencyCodeError) Error() string {
	return fmt.Sprintf("invalid iso currency code: %q", e.Code)
}
func (*InvalidIsoCurrencyCodeError) clientError() {}

// InvalidAccountingAmountError reports an amount field that failed to
// parse as a decimal.
type InvalidAccountingAmountError struct {
	Value string
}

func (e *InvalidAccountingAmountError) Error() string {
	return fmt.Sprintf("invalid accounting amount: %q", e.Value)
}
func (*InvalidAccountingAmountError) clientError() {}

// CommonStockCannotBePrepaidError is returned when a CommonStock spec's
// payment_date precedes its accrual_date.
type CommonStockCannotBePrepaidError struct {
	AccrualDate, PaymentDate time.Time
}

func (e *CommonStockCannotBePrepaidError) Error() string {
	return fmt.Sprintf("common stock cannot be prepaid: payment date %s is before accrual date %s",
		e.PaymentDate.Format("2006-01-02"), e.AccrualDate.Format("2006-01-02"))
}
func (*CommonStockCannotBePrepaidError) clientError() {}

// NonAmortizableAssetError is returned when Amortize is applied to an asset
// with no UponAccrual account configured.
type NonAmortizableAssetError struct {
	Account Account
}

func (e *NonAmortizableAssetError) Error() string {
	return fmt.Sprintf("asset %s has no accrual account configured and cannot be amortized", e.Account)
}
func (*NonAmortizableAssetError) clientError() {}

// VariableExpenseInvalidPaymentDateError is returned when a VariableExpense
// spec's payment_date does not come after its accrual_end.
type VariableExpenseInvalidPaymentDateError struct {
	AccrualEnd, PaymentDate time.Time
}

func (e *VariableExpenseInvalidPaymentDateError) Error() string {
	return fmt.Sprintf("variable expense payment date %s must be after accrual end %s",
		e.PaymentDate.Format("2006-01-02"), e.AccrualEnd.Format("2006-01-02"))
}
func (*VariableExpenseInvalidPaymentDateError) clientError() {}

// VariableExpenseNotEnoughHistoricalDataError is returned when no history
// records overlap the lookback window, or their weighted rate is zero.
type VariableExpenseNotEnoughHistoricalDataError struct {
	Account     Account
	WindowStart time.Time
	WindowEnd   time.Time
}

func (e *VariableExpenseNotEnoughHistoricalDataError) Error() string {
	return fmt.Sprintf("account %s has no usable history in window [%s, %s]",
		e.Account, e.WindowStart.Format("2006-01-02"), e.WindowEnd.Format("2006-01-02"))
}
func (*VariableExpenseNotEnoughHistoricalDataError) clientError() {}

// VariableExpenseNoInitError is returned when a VariableExpense spec is
// processed before the account has an init_date recorded.
type VariableExpenseNoInitError struct {
	Account Account
}

func (e *VariableExpenseNoInitError) Error() string {
	return fmt.Sprintf("account %s has no VariableExpenseInit recorded", e.Account)
}
func (*VariableExpenseNoInitError) clientError() {}

// VariableExpenseDoubleInitError is returned when a second
// VariableExpenseInit targets an account that already has an init_date.
type VariableExpenseDoubleInitError struct {
	Account  Account
	InitDate time.Time
}

func (e *VariableExpenseDoubleInitError) Error() string {
	return fmt.Sprintf("account %s was already initialized on %s", e.Account, e.InitDate.Format("2006-01-02"))
}
func (*VariableExpenseDoubleInitError) clientError() {}

// ClearVatInvalidBackingAccountError is returned when a ClearVat spec's
// backing account is not Cash.
type ClearVatInvalidBackingAccountError struct{}

func (e *ClearVatInvalidBackingAccountError) Error() string {
	return "clear vat requires a cash backing account"
}
func (*ClearVatInvalidBackingAccountError) clientError() {}

// InvalidArgumentsForAccountingLogicError is returned when a spec's fields
// don't satisfy the preconditions of its accounting logic variant (e.g. a
// missing accrual_end for Amortize).
type InvalidArgumentsForAccountingLogicError struct {
	Logic  string
	Reason string
}

func (e *InvalidArgumentsForAccountingLogicError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Logic, e.Reason)
}
func (*InvalidArgumentsForAccountingLogicError) clientError() {}

// UnexpectedNegativeValueError is returned when a logic variant that
// requires a positive amount receives a negative one.
type UnexpectedNegativeValueError struct {
	Logic  string
	Amount decimal.Decimal
}

func (e *UnexpectedNegativeValueError) Error() string {
	return fmt.Sprintf("%s requires a positive amount, got %s", e.Logic, e.Amount)
}
func (*UnexpectedNegativeValueError) clientError() {}

// UnexpectedPositiveValueError is returned when a logic variant that
// requires a negative amount receives a positive one.
type UnexpectedPositiveValueError struct {
	Logic  string
	Amount decimal.Decimal
}

func (e *UnexpectedPositiveValueError) Error() string {
	return fmt.Sprintf("%s requires a negative amount, got %s", e.Logic, e.Amount)
}
func (*UnexpectedPositiveValueError) clientError() {}

// NoTransactionsToReimburseError is returned when a Reimburse/
// ReimbursePartial spec targets a liability account with an empty queue.
type NoTransactionsToReimburseError struct {
	Account Account
}

func (e *NoTransactionsToReimburseError) Error() string {
	return fmt.Sprintf("no unreimbursed entries queued for %s", e.Account)
}
func (*NoTransactionsToReimburseError) clientError() {}

// UnexpectedPartialReimbursementError is returned when a Reimburse spec
// (not ReimbursePartial) leaves a non-zero residual beyond the precision
// cutoff after matching.
type UnexpectedPartialReimbursementError struct {
	Account  Account
	Residual decimal.Decimal
}

func (e *UnexpectedPartialReimbursementError) Error() string {
	return fmt.Sprintf("reimburse left an unexpected residual of %s on %s", e.Residual, e.Account)
}
func (*UnexpectedPartialReimbursementError) clientError() {}

// ReimbursementTracingError is an internal invariant violation: the exact-
// amount pop could not be satisfied by a whole number of queued entries, or
// a reimbursable transaction mixed reimbursable and non-reimbursable
// debits.
type ReimbursementTracingError struct {
	Account Account
	Reason  string
}

func (e *ReimbursementTracingError) Error() string {
	return fmt.Sprintf("reimbursement tracing error on %s: %s", e.Account, e.Reason)
}
func (*ReimbursementTracingError) internalError() {}

// DivisionByZeroError is returned by decorators whose math would divide by
// zero or produce a non-finite result (e.g. withholding tax at 100%).
type DivisionByZeroError struct {
	Context string
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("division by zero: %s", e.Context)
}
func (*DivisionByZeroError) clientError() {}

// HledgerCommandFailedError and HledgerBalanceInvalidTotalError round out
// the error taxonomy's internal axis for completeness; they belong to the
// external cash-flow-statement subsystem (out of scope here) and are never
// constructed by this module.
type HledgerCommandFailedError struct {
	Command string
	Err     error
}

func (e *HledgerCommandFailedError) Error() string {
	return fmt.Sprintf("hledger command failed: %s: %v", e.Command, e.Err)
}
func (*HledgerCommandFailedError) internalError() {}

type HledgerBalanceInvalidTotalError struct {
	Account Account
}

func (e *HledgerBalanceInvalidTotalError) Error() string {
	return fmt.Sprintf("hledger returned an invalid total for %s", e.Account)
}
func (*HledgerBalanceInvalidTotalError) internalError() {}

// formatResiduals renders a currency->residual map in sorted currency
// order, used by imbalance-flavored error messages.
func formatResiduals(residuals map[string]decimal.Decimal) string {
	if len(residuals) == 0 {
		return ""
	}
	currencies := make([]string, 0, len(residuals))
	for c := range residuals {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)

	result := "("
	for i, c := range currencies {
		if i > 0 {
			result += ", "
		}
		result += fmt.Sprintf("%s %s", residuals[c], c)
	}
	result += ")"
	return result
}

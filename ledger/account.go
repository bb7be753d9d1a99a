// Package ledger folds a stream of accounting specifications into a
// canonical double-entry ledger: balanced transactions plus balance
// assertions, ready for downstream reporting.
package ledger

import "fmt"

// AccountKind identifies which of the five basic account categories an
// Account belongs to.
type AccountKind int

const (
	KindAsset AccountKind = iota
	KindLiability
	KindIncome
	KindExpense
	KindEquity
)

func (k AccountKind) String() string {
	switch k {
	case KindAsset:
		return "Asset"
	case KindLiability:
		return "Liability"
	case KindIncome:
		return "Income"
	case KindExpense:
		return "Expense"
	case KindEquity:
		return "Equity"
	default:
		return "Unknown"
	}
}

// Classification further categorizes an account within its kind (e.g.
// AccountsPayable for a Liability). It is a plain string so each kind's
// classification enum below can share storage without a type hierarchy.
type Classification string

// Asset classifications.
const (
	CashAndCashEquivalents Classification = "CashAndCashEquivalents"
	AccountsReceivable     Classification = "AccountsReceivable"
	Inventory              Classification = "Inventory"
	PrepaidExpenses        Classification = "PrepaidExpenses"
	ShortTermInvestments   Classification = "ShortTermInvestments"
	ShortTermDeposits      Classification = "ShortTermDeposits"
	OtherCurrentAsset      Classification = "OtherCurrentAsset"
	PropertyPlantEquipment Classification = "PropertyPlantEquipment"
	IntangibleAssets       Classification = "IntangibleAssets"
	LongTermInvestments    Classification = "LongTermInvestments"
	LongTermDeposits       Classification = "LongTermDeposits"
	DeferredIncomeTaxAsset Classification = "DeferredIncomeTaxAsset"
	OtherNonCurrentAsset   Classification = "OtherNonCurrentAsset"
)

// Liability classifications.
const (
	AccountsPayable            Classification = "AccountsPayable"
	AccruedExpenses            Classification = "AccruedExpenses"
	DeferredRevenue            Classification = "DeferredRevenue"
	ShortTermDebt              Classification = "ShortTermDebt"
	OtherCurrentLiability      Classification = "OtherCurrentLiability"
	LongTermDebt               Classification = "LongTermDebt"
	DeferredIncomeTaxLiability Classification = "DeferredIncomeTaxLiability"
	OtherNonCurrentLiability   Classification = "OtherNonCurrentLiability"
)

// Income classifications.
const (
	SalesRevenue       Classification = "SalesRevenue"
	ServiceRevenue     Classification = "ServiceRevenue"
	InterestIncome     Classification = "InterestIncome"
	DividendIncome     Classification = "DividendIncome"
	RentalIncome       Classification = "RentalIncome"
	GainOnSaleOfAssets Classification = "GainOnSaleOfAssets"
	FxGainClass        Classification = "FxGain"
	OtherIncome        Classification = "OtherIncome"
)

// Expense classifications.
const (
	CostOfGoodsSold                Classification = "CostOfGoodsSold"
	SellingExpenses                Classification = "SellingExpenses"
	GeneralAdministrativeExpenses  Classification = "GeneralAdministrativeExpenses"
	ResearchAndDevelopmentExpenses Classification = "ResearchAndDevelopmentExpenses"
	CloudServiceExpense            Classification = "CloudServiceExpense"
	DepreciationExpense            Classification = "DepreciationExpense"
	AmortizationExpense            Classification = "AmortizationExpense"
	InterestExpense                Classification = "InterestExpense"
	IncomeTaxExpense               Classification = "IncomeTaxExpense"
	LossOnSaleOfAssets             Classification = "LossOnSaleOfAssets"
	FxLossClass                    Classification = "FxLoss"
	OtherExpenses                  Classification = "OtherExpenses"
)

// Equity classifications.
const (
	CommonStockClass Classification = "CommonStock"
	PreferredStock   Classification = "PreferredStock"
	TreasuryStock    Classification = "TreasuryStock"
	RetainedEarnings Classification = "RetainedEarnings"
)

// Account is a closed tagged-variant value type: a name paired with a
// classification drawn from its kind's enumeration. Accounts are cheap to
// copy and compare structurally; there is no reference identity.
type Account struct {
	Kind           AccountKind
	Name           string
	Classification Classification
}

func (a Account) String() string {
	return fmt.Sprintf("%s:%s", a.Kind, a.Name)
}

// Equal reports whether two accounts refer to the same kind, name, and
// classification.
func (a Account) Equal(other Account) bool {
	return a.Kind == other.Kind && a.Name == other.Name && a.Classification == other.Classification
}

// Asset constructs an Asset account.
func Asset(name string, class Classification) Account {
	return Account{Kind: KindAsset, Name: name, Classification: class}
}

// Liability constructs a Liability account.
func Liability(name string, class Classification) Account {
	return Account{Kind: KindLiability, Name: name, Classification: class}
}

// Income constructs an Income account.
func Income(name string, class Classification) Account {
	return Account{Kind: KindIncome, Name: name, Classification: class}
}

// Expense constructs an Expense account.
func Expense(name string, class Classification) Account {
	return Account{Kind: KindExpense, Name: name, Classification: class}
}

// Equity constructs an Equity account.
func Equity(name string, class Classification) Account {
	return Account{Kind: KindEquity, Name: name, Classification: class}
}

// AssetHandler exposes the companion accounts a capitalized/prepaid asset
// spec needs: the asset itself, the account it sits in while prepaid, the
// account it sits in while payable, and (for amortizable assets) the
// account credited upon accrual.
type AssetHandler interface {
	Account() Account
	WhilePrepaid() Account
	WhilePayable() Account
	UponAccrual() (Account, bool)
}

// IncomeHandler exposes the income account a spec credits.
type IncomeHandler interface {
	Account() Account
}

// ExpenseHandler exposes the companion accounts an expense spec needs.
type ExpenseHandler interface {
	Account() Account
	WhilePrepaid() Account
	WhilePayable() Account
}

// CashHandler exposes the cash/bank account backing a spec.
type CashHandler interface {
	Account() Account
}

// ReimbursableEntityHandler exposes the liability account a reimbursement
// spec settles against.
type ReimbursableEntityHandler interface {
	Account() Account
}

// ShareholderHandler exposes the equity account a subscriber's shares are
// recorded against.
type ShareholderHandler interface {
	Account() Account
}

// SimpleAsset is a minimal AssetHandler implementation: a bare capitalized
// asset with no separate prepaid/payable timing accounts and no accrual
// target (UponAccrual returns false). Use AmortizableAsset for assets that
// need depreciation/amortization postings.
type SimpleAsset struct {
	AssetAccount Account
}

func (a SimpleAsset) Account() Account      { return a.AssetAccount }
func (a SimpleAsset) WhilePrepaid() Account { return a.AssetAccount }
func (a SimpleAsset) WhilePayable() Account { return a.AssetAccount }
func (a SimpleAsset) UponAccrual() (Account, bool) {
	return Account{}, false
}

// AmortizableAsset is an AssetHandler with distinct prepaid/payable timing
// accounts and an accrual target account (e.g. accumulated depreciation).
type AmortizableAsset struct {
	AssetAccount   Account
	PrepaidAccount Account
	PayableAccount Account
	AccrualAccount Account
}

func (a AmortizableAsset) Account() Account      { return a.AssetAccount }
func (a AmortizableAsset) WhilePrepaid() Account { return a.PrepaidAccount }
func (a AmortizableAsset) WhilePayable() Account { return a.PayableAccount }
func (a AmortizableAsset) UponAccrual() (Account, bool) {
	return a.AccrualAccount, true
}

// SimpleExpenseAccount is the common ExpenseHandler: a single expense
// account used for its own prepaid and payable companion accounts too (no
// timing mismatch support needed).
type SimpleExpenseAccount struct {
	ExpenseAccount Account
}

func (e SimpleExpenseAccount) Account() Account      { return e.ExpenseAccount }
func (e SimpleExpenseAccount) WhilePrepaid() Account { return e.ExpenseAccount }
func (e SimpleExpenseAccount) WhilePayable() Account { return e.ExpenseAccount }

// TimingExpense is an ExpenseHandler with distinct prepaid/payable
// companion accounts, for specs where accrual and payment dates diverge.
type TimingExpense struct {
	ExpenseAccount Account
	PrepaidAccount Account
	PayableAccount Account
}

func (e TimingExpense) Account() Account      { return e.ExpenseAccount }
func (e TimingExpense) WhilePrepaid() Account { return e.PrepaidAccount }
func (e TimingExpense) WhilePayable() Account { return e.PayableAccount }

// SimpleIncome is the common IncomeHandler.
type SimpleIncome struct {
	IncomeAccount Account
}

func (i SimpleIncome) Account() Account { return i.IncomeAccount }

// SimpleCash is the common CashHandler.
type SimpleCash struct {
	CashAccount Account
}

func (c SimpleCash) Account() Account { return c.CashAccount }

// SimpleReimbursable is the common ReimbursableEntityHandler.
type SimpleReimbursable struct {
	LiabilityAccount Account
}

func (r SimpleReimbursable) Account() Account { return r.LiabilityAccount }

// SimpleShareholder is the common ShareholderHandler.
type SimpleShareholder struct {
	EquityAccount Account
}

func (s SimpleShareholder) Account() Account { return s.EquityAccount }

// BackingAccount is a closed tagged variant: a spec either settles in cash
// or against a reimbursable liability.
type BackingAccount struct {
	Cash      CashHandler
	Reimburse ReimbursableEntityHandler
}

// IsReimburse reports whether this backing account is the Reimburse
// variant.
func (b BackingAccount) IsReimburse() bool {
	return b.Reimburse != nil
}

// Account returns the underlying account regardless of variant.
func (b BackingAccount) Account() Account {
	if b.Reimburse != nil {
		return b.Reimburse.Account()
	}
	return b.Cash.Account()
}

package ledger

// Standard accounts used by the decorator pipeline and several accounting
// logic variants for postings that are not user-configured per spec.
var (
	PaymentFeesAccount           = Expense("PaymentFees", OtherExpenses)
	ForeignTransactionFeeAccount = Expense("ForeignTransactionFee", OtherExpenses)
	ForeignWithholdingTaxAccount = Expense("ForeignWithholdingTax", IncomeTaxExpense)

	FxGainAccount = Income("FxGain", FxGainClass)
	FxLossAccount = Expense("FxLoss", FxLossClass)

	VatPendingReceiptAccount = Liability("VatPendingReceipt", OtherCurrentLiability)
	VatReceivableAccount     = Asset("VatReceivable", OtherCurrentAsset)
	VatPayableAccount        = Liability("VatPayable", OtherCurrentLiability)

	ShareIssuanceCostsAccount        = Expense("ShareIssuanceCosts", OtherExpenses)
	PrepaidShareIssuanceCostsAccount = Asset("PrepaidShareIssuanceCosts", PrepaidExpenses)
	ShareIssuanceCostsPayableAccount = Liability("ShareIssuanceCostsPayable", AccruedExpenses)

	UnpaidShareCapitalAssetAccount  = Asset("UnpaidShareCapital", AccountsReceivable)
	UnpaidShareCapitalEquityAccount = Equity("UnpaidShareCapital", CommonStockClass)
)

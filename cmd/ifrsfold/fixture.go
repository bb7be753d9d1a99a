package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jnewland/ifrsfold/ledger"
	"github.com/jnewland/ifrsfold/rates"
)

const dateLayout = "2006-01-02"

// accountJSON is the wire shape of an Account: a name plus its
// classification string (validated only by the ledger constructors'
// consumers; an unrecognized classification still round-trips as a plain
// string).
type accountJSON struct {
	Name           string `json:"name"`
	Classification string `json:"classification"`
}

func (a accountJSON) build(kind ledger.AccountKind) ledger.Account {
	return ledger.Account{Kind: kind, Name: a.Name, Classification: ledger.Classification(a.Classification)}
}

// handlerJSON describes one of the six capability handlers a fixture's
// specs reference by name: an Asset, Income, Expense, Cash, Reimbursable,
// or Shareholder account, with companion timing accounts where relevant.
type handlerJSON struct {
	Kind    string       `json:"kind"`
	Account accountJSON  `json:"account"`
	Prepaid *accountJSON `json:"prepaid,omitempty"`
	Payable *accountJSON `json:"payable,omitempty"`
	Accrual *accountJSON `json:"accrual,omitempty"`
}

func (h handlerJSON) asAsset() (ledger.AssetHandler, error) {
	switch h.Kind {
	case "asset":
		return ledger.SimpleAsset{AssetAccount: h.Account.build(ledger.KindAsset)}, nil
	case "amortizable_asset":
		if h.Prepaid == nil || h.Payable == nil || h.Accrual == nil {
			return nil, fmt.Errorf("amortizable_asset %q requires prepaid, payable, and accrual accounts", h.Account.Name)
		}
		return ledger.AmortizableAsset{
			AssetAccount:   h.Account.build(ledger.KindAsset),
			PrepaidAccount: h.Prepaid.build(ledger.KindAsset),
			PayableAccount: h.Payable.build(ledger.KindLiability),
			AccrualAccount: h.Accrual.build(ledger.KindAsset),
		}, nil
	default:
		return nil, fmt.Errorf("unknown asset handler kind %q", h.Kind)
	}
}

func (h handlerJSON) asExpense() (ledger.ExpenseHandler, error) {
	switch h.Kind {
	case "simple_expense":
		return ledger.SimpleExpenseAccount{ExpenseAccount: h.Account.build(ledger.KindExpense)}, nil
	case "timing_expense":
		if h.Prepaid == nil || h.Payable == nil {
			return nil, fmt.Errorf("timing_expense %q requires prepaid and payable accounts", h.Account.Name)
		}
		return ledger.TimingExpense{
			ExpenseAccount: h.Account.build(ledger.KindExpense),
			PrepaidAccount: h.Prepaid.build(ledger.KindAsset),
			PayableAccount: h.Payable.build(ledger.KindLiability),
		}, nil
	default:
		return nil, fmt.Errorf("unknown expense handler kind %q", h.Kind)
	}
}

func (h handlerJSON) asIncome() ledger.IncomeHandler {
	return ledger.SimpleIncome{IncomeAccount: h.Account.build(ledger.KindIncome)}
}

func (h handlerJSON) asCash() ledger.CashHandler {
	return ledger.SimpleCash{CashAccount: h.Account.build(ledger.KindAsset)}
}

func (h handlerJSON) asReimbursable() ledger.ReimbursableEntityHandler {
	return ledger.SimpleReimbursable{LiabilityAccount: h.Account.build(ledger.KindLiability)}
}

func (h handlerJSON) asShareholder() ledger.ShareholderHandler {
	return ledger.SimpleShareholder{EquityAccount: h.Account.build(ledger.KindEquity)}
}

// logicJSON is the wire shape of an AccountingLogic: the discriminant plus
// whichever fields that variant needs, keyed by the handler names declared
// in the fixture's "handlers" map.
type logicJSON struct {
	Kind         string `json:"kind"`
	Subscriber   string `json:"subscriber,omitempty"`
	WhileUnpaid  string `json:"while_unpaid,omitempty"`
	Expense      string `json:"expense,omitempty"`
	Asset        string `json:"asset,omitempty"`
	InitAccount  string `json:"init_account,omitempty"`
	InitEstimate string `json:"init_estimate,omitempty"`
	Income       string `json:"income,omitempty"`
	Reimbursable string `json:"reimbursable,omitempty"`
	Partial      bool   `json:"partial,omitempty"`
	From         string `json:"from,omitempty"`
	To           string `json:"to,omitempty"`
}

// decoratorJSON is the wire shape of a Decorator.
type decoratorJSON struct {
	Kind          string `json:"kind"`
	Fee           string `json:"fee,omitempty"`
	InvoiceDate   string `json:"invoice_date,omitempty"`
	FeePercent    string `json:"fee_percent,omitempty"`
	MainCommodity string `json:"main_commodity,omitempty"`
	SettleDate    string `json:"settle_date,omitempty"`
	ToCurrency    string `json:"to_currency,omitempty"`
	Percent       string `json:"percent,omitempty"`
}

type backingAccountJSON struct {
	Cash      string `json:"cash,omitempty"`
	Reimburse string `json:"reimburse,omitempty"`
}

type transactionSpecJSON struct {
	ID             uint64             `json:"id"`
	AccrualStart   string             `json:"accrual_start"`
	AccrualEnd     string             `json:"accrual_end,omitempty"`
	PaymentDate    string             `json:"payment_date"`
	Logic          logicJSON          `json:"logic"`
	Decorators     []decoratorJSON    `json:"decorators,omitempty"`
	Payee          string             `json:"payee,omitempty"`
	Description    string             `json:"description,omitempty"`
	Amount         string             `json:"amount"`
	Commodity      string             `json:"commodity"`
	BackingAccount backingAccountJSON `json:"backing_account"`
}

type assertionSpecJSON struct {
	CashHandler string `json:"cash_handler"`
	Date        string `json:"date"`
	Balance     string `json:"balance"`
	Commodity   string `json:"commodity"`
}

type priceJSON struct {
	Date string `json:"date"`
	From string `json:"from"`
	To   string `json:"to"`
	Rate string `json:"rate"`
}

// fixture is the top-level JSON document the demo CLI reads: a set of
// named handlers, the transaction specs and assertion specs that reference
// them, and the price quotes backing any FX decorator.
type fixture struct {
	Handlers   map[string]handlerJSON `json:"handlers"`
	Specs      []transactionSpecJSON  `json:"specs"`
	Assertions []assertionSpecJSON    `json:"assertions,omitempty"`
	Prices     []priceJSON            `json:"prices,omitempty"`
}

func parseFixture(data []byte) (fixture, error) {
	var f fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return fixture{}, fmt.Errorf("parsing fixture: %w", err)
	}
	return f, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, &ledger.InvalidIsoDateError{Value: s}
	}
	return d, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, &ledger.InvalidAccountingAmountError{Value: s}
	}
	return d, nil
}

// build translates the fixture into the ledger's domain types: the ordered
// TransactionSpecs, AssertionSpecs, and the rate graph any Card FX
// decorator resolves against.
func (f fixture) build() ([]ledger.TransactionSpec, []ledger.AssertionSpec, *rates.Graph, error) {
	rateGraph := rates.NewGraph()
	for _, p := range f.Prices {
		date, err := parseDate(p.Date)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("price %s->%s: %w", p.From, p.To, err)
		}
		rate, err := parseDecimal(p.Rate)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("price %s->%s: %w", p.From, p.To, err)
		}
		rateGraph.AddPrice(date, p.From, p.To, rate)
	}

	cashHandler := func(name string) (ledger.CashHandler, error) {
		h, ok := f.Handlers[name]
		if !ok {
			return nil, fmt.Errorf("unknown handler %q", name)
		}
		return h.asCash(), nil
	}

	specs := make([]ledger.TransactionSpec, 0, len(f.Specs))
	for _, s := range f.Specs {
		spec, err := f.buildSpec(s, rateGraph)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("spec %d: %w", s.ID, err)
		}
		specs = append(specs, spec)
	}

	assertions := make([]ledger.AssertionSpec, 0, len(f.Assertions))
	for _, a := range f.Assertions {
		cash, err := cashHandler(a.CashHandler)
		if err != nil {
			return nil, nil, nil, err
		}
		date, err := parseDate(a.Date)
		if err != nil {
			return nil, nil, nil, err
		}
		balance, err := parseDecimal(a.Balance)
		if err != nil {
			return nil, nil, nil, err
		}
		assertions = append(assertions, ledger.AssertionSpec{
			CashHandler: cash,
			Date:        date,
			Balance:     balance,
			Commodity:   ledger.NewCommodity(a.Commodity),
		})
	}

	return specs, assertions, rateGraph, nil
}

func (f fixture) handler(name string) (handlerJSON, error) {
	h, ok := f.Handlers[name]
	if !ok {
		return handlerJSON{}, fmt.Errorf("unknown handler %q", name)
	}
	return h, nil
}

func (f fixture) buildBackingAccount(b backingAccountJSON) (ledger.BackingAccount, error) {
	if b.Cash != "" {
		h, err := f.handler(b.Cash)
		if err != nil {
			return ledger.BackingAccount{}, err
		}
		return ledger.BackingAccount{Cash: h.asCash()}, nil
	}
	if b.Reimburse != "" {
		h, err := f.handler(b.Reimburse)
		if err != nil {
			return ledger.BackingAccount{}, err
		}
		return ledger.BackingAccount{Reimburse: h.asReimbursable()}, nil
	}
	return ledger.BackingAccount{}, fmt.Errorf("backing_account must set cash or reimburse")
}

func (f fixture) buildLogic(l logicJSON) (ledger.AccountingLogic, error) {
	switch l.Kind {
	case "common_stock":
		sub, err := f.handler(l.Subscriber)
		if err != nil {
			return ledger.AccountingLogic{}, err
		}
		var whileUnpaid ledger.CommonStockWhileUnpaid
		switch l.WhileUnpaid {
		case "asset", "":
			whileUnpaid = ledger.WhileUnpaidAsset
		case "negative_equity":
			whileUnpaid = ledger.WhileUnpaidNegativeEquity
		default:
			return ledger.AccountingLogic{}, fmt.Errorf("unknown while_unpaid %q", l.WhileUnpaid)
		}
		return ledger.CommonStock(sub.asShareholder(), whileUnpaid), nil
	case "cost_of_equity":
		return ledger.CostOfEquity(), nil
	case "simple_expense":
		h, err := f.handler(l.Expense)
		if err != nil {
			return ledger.AccountingLogic{}, err
		}
		e, err := h.asExpense()
		if err != nil {
			return ledger.AccountingLogic{}, err
		}
		return ledger.SimpleExpenseLogic(e), nil
	case "capitalize":
		h, err := f.handler(l.Asset)
		if err != nil {
			return ledger.AccountingLogic{}, err
		}
		a, err := h.asAsset()
		if err != nil {
			return ledger.AccountingLogic{}, err
		}
		return ledger.CapitalizeLogic(a), nil
	case "amortize":
		h, err := f.handler(l.Asset)
		if err != nil {
			return ledger.AccountingLogic{}, err
		}
		a, err := h.asAsset()
		if err != nil {
			return ledger.AccountingLogic{}, err
		}
		return ledger.AmortizeLogic(a), nil
	case "fixed_expense":
		h, err := f.handler(l.Expense)
		if err != nil {
			return ledger.AccountingLogic{}, err
		}
		e, err := h.asExpense()
		if err != nil {
			return ledger.AccountingLogic{}, err
		}
		return ledger.FixedExpenseLogic(e), nil
	case "variable_expense_init":
		h, err := f.handler(l.InitAccount)
		if err != nil {
			return ledger.AccountingLogic{}, err
		}
		e, err := h.asExpense()
		if err != nil {
			return ledger.AccountingLogic{}, err
		}
		estimate, err := parseDecimal(l.InitEstimate)
		if err != nil {
			return ledger.AccountingLogic{}, err
		}
		return ledger.VariableExpenseInitLogic(e, estimate), nil
	case "variable_expense":
		h, err := f.handler(l.Expense)
		if err != nil {
			return ledger.AccountingLogic{}, err
		}
		e, err := h.asExpense()
		if err != nil {
			return ledger.AccountingLogic{}, err
		}
		return ledger.VariableExpenseLogic(e), nil
	case "immaterial_income":
		h, err := f.handler(l.Income)
		if err != nil {
			return ledger.AccountingLogic{}, err
		}
		return ledger.ImmaterialIncomeLogic(h.asIncome()), nil
	case "immaterial_expense":
		h, err := f.handler(l.Expense)
		if err != nil {
			return ledger.AccountingLogic{}, err
		}
		e, err := h.asExpense()
		if err != nil {
			return ledger.AccountingLogic{}, err
		}
		return ledger.ImmaterialExpenseLogic(e), nil
	case "reimburse":
		h, err := f.handler(l.Reimbursable)
		if err != nil {
			return ledger.AccountingLogic{}, err
		}
		if l.Partial {
			return ledger.ReimbursePartialLogic(h.asReimbursable()), nil
		}
		return ledger.ReimburseLogic(h.asReimbursable()), nil
	case "clear_vat":
		from, err := parseDate(l.From)
		if err != nil {
			return ledger.AccountingLogic{}, err
		}
		to, err := parseDate(l.To)
		if err != nil {
			return ledger.AccountingLogic{}, err
		}
		return ledger.ClearVatLogic(from, to), nil
	default:
		return ledger.AccountingLogic{}, fmt.Errorf("unknown logic kind %q", l.Kind)
	}
}

func (f fixture) buildDecorator(d decoratorJSON, rateGraph *rates.Graph) (ledger.Decorator, error) {
	switch d.Kind {
	case "payment_fee":
		fee, err := parseDecimal(d.Fee)
		if err != nil {
			return nil, err
		}
		return ledger.PaymentFeeDecorator{Fee: fee}, nil
	case "vat_korea_awaiting_invoice":
		return ledger.VatKoreaAwaitingInvoice(), nil
	case "vat_korea_recoverable":
		date, err := parseDate(d.InvoiceDate)
		if err != nil {
			return nil, err
		}
		return ledger.VatKoreaRecoverable(date), nil
	case "vat_korea_unrecoverable":
		return ledger.VatKoreaUnrecoverable(), nil
	case "vat_korea_reverse_charge_exempt":
		return ledger.VatKoreaReverseChargeExempt(), nil
	case "card_fx_by_fee":
		feePercent, err := parseDecimal(d.FeePercent)
		if err != nil {
			return nil, err
		}
		return ledger.CardFxByFeeDecorator{
			FeePercent:    feePercent,
			MainCommodity: ledger.NewCommodity(d.MainCommodity),
			Rates:         rateGraph,
		}, nil
	case "card_fx_by_settle":
		settleDate, err := parseDate(d.SettleDate)
		if err != nil {
			return nil, err
		}
		return ledger.CardFxBySettleDecorator{
			ToCurrency:    d.ToCurrency,
			SettleDate:    settleDate,
			MainCommodity: ledger.NewCommodity(d.MainCommodity),
			Rates:         rateGraph,
		}, nil
	case "withholding_tax":
		percent, err := parseDecimal(d.Percent)
		if err != nil {
			return nil, err
		}
		return ledger.WithholdingTaxDecorator{Percent: percent}, nil
	default:
		return nil, fmt.Errorf("unknown decorator kind %q", d.Kind)
	}
}

func (f fixture) buildSpec(s transactionSpecJSON, rateGraph *rates.Graph) (ledger.TransactionSpec, error) {
	accrualStart, err := parseDate(s.AccrualStart)
	if err != nil {
		return ledger.TransactionSpec{}, err
	}
	paymentDate, err := parseDate(s.PaymentDate)
	if err != nil {
		return ledger.TransactionSpec{}, err
	}
	var accrualEnd *time.Time
	if s.AccrualEnd != "" {
		d, err := parseDate(s.AccrualEnd)
		if err != nil {
			return ledger.TransactionSpec{}, err
		}
		accrualEnd = &d
	}
	amount, err := parseDecimal(s.Amount)
	if err != nil {
		return ledger.TransactionSpec{}, err
	}
	logic, err := f.buildLogic(s.Logic)
	if err != nil {
		return ledger.TransactionSpec{}, err
	}
	backing, err := f.buildBackingAccount(s.BackingAccount)
	if err != nil {
		return ledger.TransactionSpec{}, err
	}

	decorators := make([]ledger.Decorator, 0, len(s.Decorators))
	for _, d := range s.Decorators {
		dec, err := f.buildDecorator(d, rateGraph)
		if err != nil {
			return ledger.TransactionSpec{}, err
		}
		decorators = append(decorators, dec)
	}

	return ledger.TransactionSpec{
		ID:             ledger.SpecID(s.ID),
		AccrualStart:   accrualStart,
		AccrualEnd:     accrualEnd,
		PaymentDate:    paymentDate,
		Logic:          logic,
		Decorators:     decorators,
		Payee:          s.Payee,
		Description:    s.Description,
		Amount:         amount,
		Commodity:      ledger.NewCommodity(s.Commodity),
		BackingAccount: backing,
	}, nil
}

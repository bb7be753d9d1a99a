package ledger

import "fmt"

// Annotation is a closed tagged enum recording why a spec's processing
// took a particular shape, surfaced to downstream consumers via
// FinancialRecords.AnnotationsLookup for human-readable notes.
type Annotation struct {
	kind    annotationKind
	percent int
	text    string
}

type annotationKind int

const (
	annotationImmaterialExpense annotationKind = iota
	annotationImmaterialIncome
	annotationVariableExpense
	annotationVatKorea
	annotationVatKoreaUnrecoverable
	annotationVatKoreaReverseChargeExempt
	annotationCardFxBySettle
	annotationCardFxByFee
	annotationForeignWithholdingTax
	annotationShareIssuanceCostsDirectedToRetainedEarnings
	annotationCustom
)

var (
	AnnotationImmaterialExpense                            = Annotation{kind: annotationImmaterialExpense}
	AnnotationImmaterialIncome                             = Annotation{kind: annotationImmaterialIncome}
	AnnotationVariableExpense                              = Annotation{kind: annotationVariableExpense}
	AnnotationVatKorea                                     = Annotation{kind: annotationVatKorea}
	AnnotationVatKoreaUnrecoverable                        = Annotation{kind: annotationVatKoreaUnrecoverable}
	AnnotationVatKoreaReverseChargeExempt                  = Annotation{kind: annotationVatKoreaReverseChargeExempt}
	AnnotationCardFxBySettle                               = Annotation{kind: annotationCardFxBySettle}
	AnnotationCardFxByFee                                  = Annotation{kind: annotationCardFxByFee}
	AnnotationShareIssuanceCostsDirectedToRetainedEarnings = Annotation{kind: annotationShareIssuanceCostsDirectedToRetainedEarnings}
)

// AnnotationForeignWithholdingTax constructs the percent-carrying variant.
func AnnotationForeignWithholdingTax(percent int) Annotation {
	return Annotation{kind: annotationForeignWithholdingTax, percent: percent}
}

// AnnotationCustom constructs a free-text annotation.
func AnnotationCustom(text string) Annotation {
	return Annotation{kind: annotationCustom, text: text}
}

// String renders the annotation's fixed descriptive text.
func (a Annotation) String() string {
	switch a.kind {
	case annotationImmaterialExpense:
		return "Immaterial expense, accounted for without accrual."
	case annotationImmaterialIncome:
		return "Immaterial income, accounted for without accrual."
	case annotationVariableExpense:
		return "Variable expense, estimated via historical daily rate."
	case annotationVatKorea:
		return "Korean VAT handled via standard split."
	case annotationVatKoreaUnrecoverable:
		return "Korean VAT is unrecoverable; booked as cost."
	case annotationVatKoreaReverseChargeExempt:
		return "Korean VAT reverse-charge exempt."
	case annotationCardFxBySettle:
		return "Card transaction converted at settlement-date rate."
	case annotationCardFxByFee:
		return "Card transaction converted at payment-date rate with foreign transaction fee."
	case annotationForeignWithholdingTax:
		return fmt.Sprintf("Foreign withholding tax of %d%% applied.", a.percent)
	case annotationShareIssuanceCostsDirectedToRetainedEarnings:
		return "Share issuance costs directed to retained earnings."
	case annotationCustom:
		return a.text
	default:
		return "unknown annotation"
	}
}

// Package validate implements the conditional required-field rules for the
// intake forms. Everything here is pure: callers use the returned field
// sets to mark inputs and to gate persistence.
package validate

import (
	"sort"
	"strings"

	"github.com/brightpath-mortgage/intake-api/internal/model"
)

// FieldSet is the set of field names that failed the required check.
type FieldSet map[string]bool

// Empty reports whether no fields are missing.
func (s FieldSet) Empty() bool { return len(s) == 0 }

// Names returns the missing field names in sorted order.
func (s FieldSet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// applicationBase is required on every pre-approval regardless of purpose.
var applicationBase = []string{
	"fullName",
	"email",
	"phone",
	"streetAddress",
	"city",
	"state",
	"zipCode",
	"incomeSource",
	"grossAnnualIncome",
	"loanPurpose",
	"propertyType",
	"loanAmount",
	"propertyValue",
}

// purposeExtra attaches the additional required fields to each loan-purpose
// variant. A purpose absent from this map adds nothing. The cash-out
// variant carries desiredCashAmount here and picks up appraisalCompleted
// from the refinance family below; the two rules are not mutually
// exclusive.
var purposeExtra = map[model.LoanPurpose][]string{
	model.LoanPurposePurchase:         {"downPayment", "firstTimeBuyer", "timelineToPurchase"},
	model.LoanPurposeRefinanceCashOut: {"desiredCashAmount"},
}

// refinanceExtra applies to every refinance variant.
var refinanceExtra = []string{"appraisalCompleted"}

// coBorrowerBase is required whenever a co-borrower is present.
var coBorrowerBase = []string{
	"fullName",
	"email",
	"phone",
	"incomeSource",
	"grossAnnualIncome",
}

// coBorrowerAddress is additionally required when the co-borrower does not
// share the borrower's address.
var coBorrowerAddress = []string{
	"streetAddress",
	"city",
	"state",
	"zipCode",
}

// missing returns the subset of required that is empty in values. A field
// absent from the map counts as empty, and whitespace-only values count as
// empty.
func missing(values map[string]string, required []string) FieldSet {
	out := FieldSet{}
	for _, f := range required {
		if strings.TrimSpace(values[f]) == "" {
			out[f] = true
		}
	}
	return out
}

// ApplicationFields returns the required-but-empty fields for a
// pre-approval value map under the given loan purpose.
func ApplicationFields(values map[string]string, purpose model.LoanPurpose) FieldSet {
	required := append([]string(nil), applicationBase...)
	required = append(required, purposeExtra[purpose]...)
	if purpose.IsRefinance() {
		required = append(required, refinanceExtra...)
	}
	return missing(values, required)
}

// CoBorrowerFields returns the required-but-empty fields for a co-borrower
// value map. When addCoBorrower is anything but "yes" the co-borrower is
// not part of the submission and the result is empty regardless of the
// map's contents.
func CoBorrowerFields(values map[string]string, addCoBorrower string, sameAsBorrower bool) FieldSet {
	if addCoBorrower != "yes" {
		return FieldSet{}
	}
	required := append([]string(nil), coBorrowerBase...)
	if !sameAsBorrower {
		required = append(required, coBorrowerAddress...)
	}
	return missing(values, required)
}

// PreApproval validates a full pre-approval submission and returns the
// missing-field sets for the application and the co-borrower.
func PreApproval(app model.PreApprovalApplication, co *model.CoBorrower) (FieldSet, FieldSet) {
	appErrs := ApplicationFields(app.Fields(), app.Purpose())

	var coValues map[string]string
	sameAs := false
	if co != nil {
		coValues = co.Fields()
		sameAs = co.SameAsBorrowerAddress
	}
	coErrs := CoBorrowerFields(coValues, app.AddCoBorrower, sameAs)
	return appErrs, coErrs
}

// Lead required-field lists per form kind. Optional fields (free-text
// notes, the contact form's loan type, the rate tracker's current rate)
// are deliberately absent.
var leadRequired = map[model.LeadKind][]string{
	model.LeadKindContact:      {"name", "email", "phone", "message"},
	model.LeadKindScheduleCall: {"name", "email", "phone", "preferredDate", "preferredTime", "timeZone", "callReason"},
	model.LeadKindRateTracker:  {"fullName", "email", "phone", "propertyType", "propertyUse", "state", "loanType", "loanPurpose"},
}

// LeadFields returns the required-but-empty fields for a lead form value
// map of the given kind.
func LeadFields(kind model.LeadKind, values map[string]string) FieldSet {
	return missing(values, leadRequired[kind])
}

// Required treats every key in the map as required and returns the empty
// ones.
func Required(values map[string]string) FieldSet {
	names := make([]string, 0, len(values))
	for n := range values {
		names = append(names, n)
	}
	return missing(values, names)
}

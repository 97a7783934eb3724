package model

import "time"

// LoanPurpose identifies why the borrower wants the loan. The wire value is
// the string the intake form submits; ParseLoanPurpose maps it onto the
// variant family.
type LoanPurpose string

const (
	LoanPurposePurchase         LoanPurpose = "purchase"
	LoanPurposeRefinanceRate    LoanPurpose = "refinance-rate-term"
	LoanPurposeRefinanceCashOut LoanPurpose = "refinance-cash-out"
	LoanPurposeRefinancePayoff  LoanPurpose = "refinance-payoff-2nd"
	LoanPurposeOther            LoanPurpose = "other"
)

// refinanceVariants is the set of purposes that require a completed
// appraisal. Membership is explicit rather than derived from the wire
// string prefix.
var refinanceVariants = map[LoanPurpose]bool{
	LoanPurposeRefinanceRate:    true,
	LoanPurposeRefinanceCashOut: true,
	LoanPurposeRefinancePayoff:  true,
}

// IsRefinance reports whether the purpose is any refinance variant.
func (p LoanPurpose) IsRefinance() bool {
	return refinanceVariants[p]
}

// ParseLoanPurpose maps a submitted purpose string onto a known variant.
// Unknown values (including empty) come back as LoanPurposeOther so the
// validator only adds conditional fields for purposes it recognizes.
func ParseLoanPurpose(s string) LoanPurpose {
	switch LoanPurpose(s) {
	case LoanPurposePurchase, LoanPurposeRefinanceRate, LoanPurposeRefinanceCashOut, LoanPurposeRefinancePayoff:
		return LoanPurpose(s)
	default:
		return LoanPurposeOther
	}
}

// PreApprovalApplication is a mortgage pre-approval submission. All field
// values are kept as strings: the intake form submits strings and the
// required-field check treats numeric and free-text fields identically.
type PreApprovalApplication struct {
	FullName           string `json:"fullName"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	StreetAddress      string `json:"streetAddress"`
	Unit               string `json:"unit,omitempty"`
	City               string `json:"city"`
	State              string `json:"state"`
	ZipCode            string `json:"zipCode"`
	IncomeSource       string `json:"incomeSource"`
	GrossAnnualIncome  string `json:"grossAnnualIncome"`
	LoanPurpose        string `json:"loanPurpose"`
	PropertyType       string `json:"propertyType"`
	LoanAmount         string `json:"loanAmount"`
	PropertyValue      string `json:"propertyValue"`
	DownPayment        string `json:"downPayment,omitempty"`
	FirstTimeBuyer     string `json:"firstTimeBuyer,omitempty"`
	TimelineToPurchase string `json:"timelineToPurchase,omitempty"`
	DesiredCashAmount  string `json:"desiredCashAmount,omitempty"`
	AppraisalCompleted string `json:"appraisalCompleted,omitempty"`
	AdditionalInfo     string `json:"additionalInfo,omitempty"`
	AddCoBorrower      string `json:"addCoBorrower"` // "yes" or "no"
}

// Fields returns the application as a field-name → value map, the form the
// required-field validator consumes.
func (a PreApprovalApplication) Fields() map[string]string {
	return map[string]string{
		"fullName":           a.FullName,
		"email":              a.Email,
		"phone":              a.Phone,
		"streetAddress":      a.StreetAddress,
		"unit":               a.Unit,
		"city":               a.City,
		"state":              a.State,
		"zipCode":            a.ZipCode,
		"incomeSource":       a.IncomeSource,
		"grossAnnualIncome":  a.GrossAnnualIncome,
		"loanPurpose":        a.LoanPurpose,
		"propertyType":       a.PropertyType,
		"loanAmount":         a.LoanAmount,
		"propertyValue":      a.PropertyValue,
		"downPayment":        a.DownPayment,
		"firstTimeBuyer":     a.FirstTimeBuyer,
		"timelineToPurchase": a.TimelineToPurchase,
		"desiredCashAmount":  a.DesiredCashAmount,
		"appraisalCompleted": a.AppraisalCompleted,
		"additionalInfo":     a.AdditionalInfo,
	}
}

// Purpose returns the parsed loan purpose variant.
func (a PreApprovalApplication) Purpose() LoanPurpose {
	return ParseLoanPurpose(a.LoanPurpose)
}

// CoBorrower is the optional second applicant on a pre-approval.
type CoBorrower struct {
	FullName              string `json:"fullName"`
	Email                 string `json:"email"`
	Phone                 string `json:"phone"`
	IncomeSource          string `json:"incomeSource"`
	GrossAnnualIncome     string `json:"grossAnnualIncome"`
	SameAsBorrowerAddress bool   `json:"sameAsBorrowerAddress"`
	StreetAddress         string `json:"streetAddress,omitempty"`
	Unit                  string `json:"unit,omitempty"`
	City                  string `json:"city,omitempty"`
	State                 string `json:"state,omitempty"`
	ZipCode               string `json:"zipCode,omitempty"`
}

// Fields returns the co-borrower as a field-name → value map.
func (c CoBorrower) Fields() map[string]string {
	return map[string]string{
		"fullName":          c.FullName,
		"email":             c.Email,
		"phone":             c.Phone,
		"incomeSource":      c.IncomeSource,
		"grossAnnualIncome": c.GrossAnnualIncome,
		"streetAddress":     c.StreetAddress,
		"unit":              c.Unit,
		"city":              c.City,
		"state":             c.State,
		"zipCode":           c.ZipCode,
	}
}

// CopyBorrowerAddress copies the borrower's address into the co-borrower
// once, at the moment it is called. Later edits to the borrower's address
// do not follow; callers re-invoke this if the same-address flag is
// toggled off and on again.
func (c *CoBorrower) CopyBorrowerAddress(a PreApprovalApplication) {
	c.SameAsBorrowerAddress = true
	c.StreetAddress = a.StreetAddress
	c.Unit = a.Unit
	c.City = a.City
	c.State = a.State
	c.ZipCode = a.ZipCode
}

// PreApproval is a stored pre-approval submission.
type PreApproval struct {
	ID          string                 `json:"id"`
	Application PreApprovalApplication `json:"application"`
	CoBorrower  *CoBorrower            `json:"co_borrower,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

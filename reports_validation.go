package treasury

import "fmt"

// Severity grades a validation finding.
type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

// IssueStatus is the lifecycle state of a validation issue. An issue is
// closed only by a subsequent run that no longer detects the condition,
// never by manual edit.
type IssueStatus string

const (
	IssueOpen     IssueStatus = "Open"
	IssueResolved IssueStatus = "Resolved"
)

// CheckType names a data-quality rule.
type CheckType string

const (
	CheckMissingBalance CheckType = "missing_balance"
	CheckDuplicate      CheckType = "duplicate"
	CheckNegativeCash   CheckType = "negative_cash"
	CheckFXMismatch     CheckType = "fx_mismatch"
)

// ValidationIssue is one finding of a validation run. The check date is the
// snapshot date, not the wall clock, so re-running on an unchanged snapshot
// reproduces the identical issue.
type ValidationIssue struct {
	CheckType       CheckType   `json:"check_type"`
	Severity        Severity    `json:"severity"`
	AffectedRecords int         `json:"affected_records"`
	Description     string      `json:"description"`
	CheckDate       Date        `json:"check_date"`
	Status          IssueStatus `json:"status"`
}

// ValidationReport is the issue set of one run, with derived count views.
type ValidationReport struct {
	AsOf        Date              `json:"as_of_date"`
	TotalIssues int               `json:"total_issues"`
	BySeverity  map[Severity]int  `json:"by_severity"`
	ByType      map[CheckType]int `json:"by_type"`
	Issues      []ValidationIssue `json:"issues"`
}

// Validate runs every data-quality rule over the snapshot. The rules are
// independent and all run even when earlier ones find issues; their order is
// fixed so the issue list is deterministic. Validation is idempotent: an
// unchanged snapshot reproduces the identical issue set.
func (s *Snapshot) Validate() *ValidationReport {
	report := &ValidationReport{
		AsOf:       s.on,
		BySeverity: make(map[Severity]int),
		ByType:     make(map[CheckType]int),
	}

	add := func(check CheckType, severity Severity, affected int, description string) {
		if affected == 0 {
			return
		}
		report.Issues = append(report.Issues, ValidationIssue{
			CheckType:       check,
			Severity:        severity,
			AffectedRecords: affected,
			Description:     description,
			CheckDate:       s.on,
			Status:          IssueOpen,
		})
	}

	missing := s.missingBalances()
	add(CheckMissingBalance, SeverityHigh, missing,
		fmt.Sprintf("found %d accounts with no balance on %s", missing, s.on))

	dups := s.duplicateBalances()
	add(CheckDuplicate, SeverityHigh, dups,
		fmt.Sprintf("found %d duplicate account-date balance records", dups))

	negative := s.negativeBalances()
	add(CheckNegativeCash, SeverityMedium, negative,
		fmt.Sprintf("found %d accounts with a negative cash position", negative))

	mismatch := s.fxMismatches()
	add(CheckFXMismatch, SeverityHigh, mismatch,
		fmt.Sprintf("found %d balances with no rate path to %s", mismatch, s.cur))

	report.TotalIssues = len(report.Issues)
	for _, issue := range report.Issues {
		report.BySeverity[issue.Severity]++
		report.ByType[issue.CheckType]++
	}
	return report
}

// missingBalances counts active accounts with no balance on the snapshot date.
func (s *Snapshot) missingBalances() int {
	withBalance := make(map[string]struct{})
	for _, b := range s.BalancesOn(s.on) {
		withBalance[b.Account] = struct{}{}
	}
	missing := 0
	for _, a := range s.accounts {
		if _, ok := withBalance[a.ID]; !ok {
			missing++
		}
	}
	return missing
}

// duplicateBalances counts balance records beyond the first for the same
// (account, date).
func (s *Snapshot) duplicateBalances() int {
	type key struct {
		account string
		date    Date
	}
	seen := make(map[key]int)
	for _, b := range s.balances {
		seen[key{b.Account, b.Date}]++
	}
	dups := 0
	for _, n := range seen {
		dups += n - 1
	}
	return dups
}

// negativeBalances counts negative positions on accounts that are not credit
// facilities.
func (s *Snapshot) negativeBalances() int {
	negative := 0
	for _, b := range s.BalancesOn(s.on) {
		a, _ := s.Account(b.Account)
		if a.Type == Overdraft {
			continue
		}
		if b.Amount.IsNegative() {
			negative++
		}
	}
	return negative
}

// fxMismatches counts balances whose currency has no rate path to the
// reporting currency on the snapshot date. This is the same condition the
// normalizer reports as MissingRateError; here it becomes visible to the
// operator instead of a hard failure.
func (s *Snapshot) fxMismatches() int {
	mismatch := 0
	for _, b := range s.BalancesOn(s.on) {
		if _, err := s.Rate(b.Currency, s.cur, s.on); err != nil {
			mismatch++
		}
	}
	return mismatch
}

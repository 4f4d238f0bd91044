package treasury

import (
	"reflect"
	"testing"
	"time"
)

func TestSnapshot_Validate(t *testing.T) {
	on := D(time.June, 30)
	s := mustSnapshot(t, on, "USD", Inputs{
		Accounts: []BankAccount{
			{ID: "ACC-1", Entity: "A", Currency: "USD", Type: Operating},
			{ID: "ACC-2", Entity: "A", Currency: "USD", Type: Operating},
			{ID: "ACC-3", Entity: "B", Currency: "USD", Type: Overdraft},
			{ID: "ACC-4", Entity: "B", Currency: "XYZ", Type: Operating},
			{ID: "ACC-5", Entity: "B", Currency: "USD", Type: Operating}, // no balance at all
		},
		Balances: []CashBalance{
			{Account: "ACC-1", Date: on, Currency: "USD", Amount: Q(100)},
			{Account: "ACC-1", Date: on, Currency: "USD", Amount: Q(100)}, // duplicate
			{Account: "ACC-2", Date: on, Currency: "USD", Amount: Q(-50)}, // negative on operating
			{Account: "ACC-3", Date: on, Currency: "USD", Amount: Q(-75)}, // negative on overdraft: fine
			{Account: "ACC-4", Date: on, Currency: "XYZ", Amount: Q(10)},  // no rate path
		},
	})

	report := s.Validate()

	byType := make(map[CheckType]ValidationIssue)
	for _, issue := range report.Issues {
		byType[issue.CheckType] = issue
	}

	testCases := []struct {
		check        CheckType
		severity     Severity
		wantAffected int
	}{
		{CheckMissingBalance, SeverityHigh, 1}, // ACC-5
		{CheckDuplicate, SeverityHigh, 1},      // second ACC-1 record
		{CheckNegativeCash, SeverityMedium, 1}, // ACC-2 only, overdraft exempt
		{CheckFXMismatch, SeverityHigh, 1},     // the XYZ balance
	}
	for _, tc := range testCases {
		issue, ok := byType[tc.check]
		if !ok {
			t.Errorf("no %s issue reported", tc.check)
			continue
		}
		if issue.Severity != tc.severity {
			t.Errorf("%s severity = %s, want %s", tc.check, issue.Severity, tc.severity)
		}
		if issue.AffectedRecords != tc.wantAffected {
			t.Errorf("%s affected = %d, want %d", tc.check, issue.AffectedRecords, tc.wantAffected)
		}
		if issue.Status != IssueOpen {
			t.Errorf("%s status = %s, want %s", tc.check, issue.Status, IssueOpen)
		}
		if issue.CheckDate != on {
			t.Errorf("%s check date = %s, want snapshot date %s", tc.check, issue.CheckDate, on)
		}
	}

	if report.TotalIssues != 4 {
		t.Errorf("TotalIssues = %d, want 4", report.TotalIssues)
	}
	if report.BySeverity[SeverityHigh] != 3 || report.BySeverity[SeverityMedium] != 1 {
		t.Errorf("BySeverity = %v, want High:3 Medium:1", report.BySeverity)
	}
}

func TestSnapshot_Validate_Idempotent(t *testing.T) {
	on := D(time.June, 30)
	in := treasuryInputs(on)
	in.Balances = append(in.Balances,
		CashBalance{Account: "ACC-A1", Date: on, Currency: "USD", Amount: Q(300)},
	)
	s := mustSnapshot(t, on, "USD", in)

	first := s.Validate()
	second := s.Validate()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("two runs on the same snapshot differ:\n%+v\n%+v", first, second)
	}
}

func TestSnapshot_Validate_CleanData(t *testing.T) {
	on := D(time.June, 30)
	s := mustSnapshot(t, on, "USD", Inputs{
		Accounts: []BankAccount{{ID: "ACC-1", Entity: "A", Currency: "USD", Type: Operating}},
		Balances: []CashBalance{{Account: "ACC-1", Date: on, Currency: "USD", Amount: Q(100)}},
	})

	report := s.Validate()
	if report.TotalIssues != 0 {
		t.Errorf("TotalIssues = %d, want 0: %+v", report.TotalIssues, report.Issues)
	}
}

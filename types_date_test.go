package treasury

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2025-06-30", want: D(time.June, 30)},
		{in: "2025-6-3", want: D(time.June, 3)},
		{in: " 2025-06-30 ", want: D(time.June, 30)},
		{in: "2025-06-30T00:00:00Z", want: D(time.June, 30)},
		{in: "30/06/2025", wantErr: true},
		{in: "not a date", wantErr: true},
	}
	for _, tc := range testCases {
		got, err := ParseDate(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseDate(%q) = %v, want error", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%q) error = %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestDate_Add(t *testing.T) {
	if got, want := D(time.June, 30).Add(1), D(time.July, 1); got != want {
		t.Errorf("Add(1) = %s, want %s", got, want)
	}
	if got, want := D(time.March, 1).Add(-1), D(time.February, 28); got != want {
		t.Errorf("Add(-1) = %s, want %s", got, want)
	}
}

func TestDate_JSON(t *testing.T) {
	b, err := json.Marshal(D(time.June, 30))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if want := `"2025-06-30"`; string(b) != want {
		t.Errorf("Marshal() = %s, want %s", b, want)
	}

	var d Date
	if err := json.Unmarshal([]byte(`"2025-6-3"`), &d); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if want := D(time.June, 3); d != want {
		t.Errorf("Unmarshal() = %s, want %s", d, want)
	}
}

package treasury

import (
	"errors"
	"testing"
	"time"
)

func TestSnapshot_Rate(t *testing.T) {
	on := D(time.June, 30)
	in := Inputs{
		Rates: []FXRate{
			{Pair: "EUR/USD", Rate: Q(1.05), Date: D(time.June, 1)},
			{Pair: "EUR/USD", Rate: Q(1.10), Date: D(time.June, 15)},
			{Pair: "EUR/USD", Rate: Q(1.20), Date: D(time.July, 1)}, // future, never applied
			{Pair: "GBP/USD", Rate: Q(1.25), Date: D(time.June, 10)},
		},
	}
	s := mustSnapshot(t, on, "USD", in)

	testCases := []struct {
		name     string
		from, to string
		on       Date
		want     Quantity
	}{
		{name: "identity", from: "USD", to: "USD", on: on, want: Q(1)},
		{name: "direct pair latest quote", from: "EUR", to: "USD", on: on, want: Q(1.10)},
		{name: "direct pair earlier as-of", from: "EUR", to: "USD", on: D(time.June, 10), want: Q(1.05)},
		{name: "direct pair on quote date", from: "EUR", to: "USD", on: D(time.June, 15), want: Q(1.10)},
		{name: "inverse pair", from: "USD", to: "GBP", on: on, want: Q(1.25).Inv()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.Rate(tc.from, tc.to, tc.on)
			if err != nil {
				t.Fatalf("Rate(%q, %q, %s) error = %v", tc.from, tc.to, tc.on, err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("Rate(%q, %q, %s) = %v, want %v", tc.from, tc.to, tc.on, got, tc.want)
			}
		})
	}
}

func TestSnapshot_Rate_Missing(t *testing.T) {
	on := D(time.June, 30)
	s := mustSnapshot(t, on, "USD", Inputs{
		Rates: []FXRate{
			{Pair: "EUR/USD", Rate: Q(1.10), Date: D(time.July, 1)}, // only a future quote
		},
	})

	for _, pair := range [][2]string{{"EUR", "USD"}, {"XYZ", "USD"}} {
		_, err := s.Rate(pair[0], pair[1], on)
		var missing *MissingRateError
		if !errors.As(err, &missing) {
			t.Fatalf("Rate(%q, %q) error = %v, want MissingRateError", pair[0], pair[1], err)
		}
		if missing.From != pair[0] || missing.To != pair[1] || missing.On != on {
			t.Errorf("MissingRateError = %+v, want {%s %s %s}", missing, pair[0], pair[1], on)
		}
	}
}

func TestSnapshot_Rate_NoCrossRate(t *testing.T) {
	// EUR→USD and GBP→USD are both quoted, but EUR→GBP must not be derived
	// through USD.
	on := D(time.June, 30)
	s := mustSnapshot(t, on, "USD", Inputs{
		Rates: []FXRate{
			{Pair: "EUR/USD", Rate: Q(1.10), Date: on},
			{Pair: "GBP/USD", Rate: Q(1.25), Date: on},
		},
	})

	var missing *MissingRateError
	if _, err := s.Rate("EUR", "GBP", on); !errors.As(err, &missing) {
		t.Fatalf("Rate(EUR, GBP) error = %v, want MissingRateError", err)
	}
}

func TestSnapshot_ConvertTo(t *testing.T) {
	on := D(time.June, 30)
	s := mustSnapshot(t, on, "USD", Inputs{
		Rates: []FXRate{{Pair: "EUR/USD", Rate: Q(1.10), Date: on}},
	})

	got, err := s.ConvertTo(EUR(500000), "USD", on)
	if err != nil {
		t.Fatalf("ConvertTo() error = %v", err)
	}
	if want := USD(550000); !got.Equal(want) {
		t.Errorf("ConvertTo(EUR 500000, USD) = %v, want %v", got, want)
	}

	// same currency passes through untouched, no rate needed
	got, err = s.ConvertTo(USD(42), "USD", on)
	if err != nil {
		t.Fatalf("ConvertTo() error = %v", err)
	}
	if !got.Equal(USD(42)) {
		t.Errorf("ConvertTo(USD 42, USD) = %v, want USD 42", got)
	}
}

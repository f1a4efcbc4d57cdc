package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12.345", 1234, false}, // rounds down
		{"12.346", 1235, false}, // rounds up
		{"0.5", 50, false},
		{".5", 50, false},
		{"1000", 100000, false},
		{"", 0, true},
		{"-5", 0, true},
		{"+5", 0, true},
		{"1.2.3", 0, true},
		{"abc", 0, true},
		{"0", 0, true},
		{"0.00", 0, true},
		{"92233720368547760", 0, true}, // overflow when scaled to cents
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseDecimalToCents(%q) expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDecimalToCents(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 1500}
	b := Money{Cents: 700}
	if got := a.Add(b); got.Cents != 2200 {
		t.Fatalf("Add = %d, want 2200", got.Cents)
	}
	if got := b.Sub(a); got.Cents != -800 {
		t.Fatalf("Sub = %d, want -800", got.Cents)
	}
	if !a.IsPositive() || (Money{}).IsPositive() {
		t.Fatalf("IsPositive misbehaves")
	}
}

func TestMoneyUnits(t *testing.T) {
	if got := (Money{Cents: 1234}).Units(); got != 12.34 {
		t.Fatalf("Units = %v, want 12.34", got)
	}
}

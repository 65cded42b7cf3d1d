package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"45.50", 4550, true},
		{"45,50", 4550, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{".5", 50, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.00", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{4550, "45.50"},
		{5, "0.05"},
		{0, "0.00"},
		{-123, "-1.23"},
		{100000, "1000.00"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Fatalf("%d cents expected %q, got %q", tc.cents, tc.want, got)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 4550}
	b := Money{Cents: 1000}
	if got := a.Add(b); got.Cents != 5550 {
		t.Fatalf("Add expected 5550, got %d", got.Cents)
	}
	if got := a.Sub(b); got.Cents != 3550 {
		t.Fatalf("Sub expected 3550, got %d", got.Cents)
	}
	if b.LessThan(a) != true || a.LessThan(b) != false {
		t.Fatalf("LessThan ordering wrong")
	}
}

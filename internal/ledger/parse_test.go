package ledger

import (
	"testing"
	"time"
)

func TestParseAmount(t *testing.T) {
	valid := map[string]string{
		"75":    "75",
		"30.50": "30.5",
		"30,50": "30.5",
		"0.01":  "0.01",
	}
	for in, want := range valid {
		got, err := ParseAmount(in)
		if err != nil {
			t.Errorf("ParseAmount(%q) unexpected error: %v", in, err)
			continue
		}
		if !got.Equal(d(want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", in, got, want)
		}
	}

	invalid := []string{"", "0", "-5", "abc", "12.3.4", "12 MDL", "+5"}
	for _, in := range invalid {
		if _, err := ParseAmount(in); err == nil {
			t.Errorf("ParseAmount(%q) should fail", in)
		}
	}
}

func TestParseBalanceTargetAllowsZero(t *testing.T) {
	got, err := ParseBalanceTarget("0")
	if err != nil {
		t.Fatalf("ParseBalanceTarget(0) unexpected error: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("ParseBalanceTarget(0) = %s, want 0", got)
	}
	if _, err := ParseBalanceTarget("-1"); err == nil {
		t.Fatal("ParseBalanceTarget(-1) should fail")
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("ParseDate = %v, want %v", got, want)
	}

	invalid := []string{"2024-1-31", "31-01-2024", "2024/01/31", "2024-13-01", "yesterday", ""}
	for _, in := range invalid {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("ParseDate(%q) should fail", in)
		}
	}
}

package date

import (
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2024-01-15", want: New(2024, time.January, 15)},
		{in: "2025-7-1", want: New(2025, time.July, 1)},
		{in: " 2023-12-31 ", want: New(2023, time.December, 31)},
		{in: "2024-03-05T17:30:00Z", want: New(2024, time.March, 5)},
		{in: "15/01/2024", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestSub(t *testing.T) {
	testCases := []struct {
		a, b Date
		want int
	}{
		{New(2024, 1, 1), New(2024, 1, 1), 0},
		{New(2024, 12, 31), New(2024, 1, 1), 365},
		{New(2023, 3, 1), New(2023, 2, 28), 1},
		{New(2023, 1, 1), New(2023, 1, 11), -10},
	}
	for _, tc := range testCases {
		if got := tc.a.Sub(tc.b); got != tc.want {
			t.Errorf("%v.Sub(%v) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestNormalization(t *testing.T) {
	if got, want := New(2024, time.February, 30), New(2024, time.March, 1); got != want {
		t.Errorf("New(2024, 2, 30) = %v, want %v", got, want)
	}
	if got, want := New(2024, time.January, 31).Add(1), New(2024, time.February, 1); got != want {
		t.Errorf("Add(1) = %v, want %v", got, want)
	}
}

func TestRangeContains(t *testing.T) {
	r := Range{From: New(2024, 1, 10), To: New(2024, 1, 20)}
	testCases := []struct {
		r    Range
		in   Date
		want bool
	}{
		{r, New(2024, 1, 10), true},
		{r, New(2024, 1, 20), true},
		{r, New(2024, 1, 9), false},
		{r, New(2024, 1, 21), false},
		{Range{To: New(2024, 1, 20)}, New(1999, 1, 1), true},
		{Range{From: New(2024, 1, 10)}, New(2099, 1, 1), true},
		{Range{}, New(2024, 6, 6), true},
	}
	for _, tc := range testCases {
		if got := tc.r.Contains(tc.in); got != tc.want {
			t.Errorf("%v.Contains(%v) = %v, want %v", tc.r, tc.in, got, tc.want)
		}
	}
}

func TestRangeDays(t *testing.T) {
	r := Range{From: New(2024, 2, 27), To: New(2024, 3, 2)}
	var got []Date
	for d := range r.Days() {
		got = append(got, d)
	}
	if len(got) != 5 {
		t.Fatalf("Days() yielded %d days, want 5: %v", len(got), got)
	}
	if got[2] != New(2024, 2, 29) {
		t.Errorf("Days()[2] = %v, want 2024-02-29", got[2])
	}

	for d := range (Range{From: New(2024, 1, 2), To: New(2024, 1, 1)}).Days() {
		t.Errorf("inverted range yielded %v", d)
	}
}

func TestYear(t *testing.T) {
	r := Year(2024)
	if r.From != New(2024, 1, 1) || r.To != New(2024, 12, 31) {
		t.Errorf("Year(2024) = %v", r)
	}
	if r.Identifier() != "2024" {
		t.Errorf("Year(2024).Identifier() = %q, want 2024", r.Identifier())
	}
}

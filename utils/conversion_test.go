package utils

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 1440, false},
		{"24:01", 0, true},
		{"9.30", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ParseClock(%q) err = %v", tc.in, err)
		}
		if !tc.wantErr && got != tc.want {
			t.Fatalf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatClockRoundTrip(t *testing.T) {
	for _, m := range []int{0, 59, 600, 1439, 1440} {
		back, err := ParseClock(FormatClock(m))
		if err != nil || back != m {
			t.Fatalf("round trip of %d gave %d (%v)", m, back, err)
		}
	}
}

func TestDayOfWeek(t *testing.T) {
	d, err := DayOfWeek("2030-01-07")
	if err != nil || d != int(time.Monday) {
		t.Fatalf("DayOfWeek = %d, %v", d, err)
	}
	if _, err := DayOfWeek("2030-02-30"); err == nil {
		t.Fatal("expected error for impossible date")
	}
}

func TestBookingStartsAt(t *testing.T) {
	loc := time.FixedZone("EAT", 3*60*60)
	got, err := BookingStartsAt("2030-01-07", "09:00", loc)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2030, 1, 7, 6, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("BookingStartsAt = %v, want %v", got, want)
	}
}

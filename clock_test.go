package lazykepler

import (
	"errors"
	"testing"
	"time"

	"github.com/gonum/floats"
)

func TestParseDate(t *testing.T) {
	exp := time.Date(2017, 3, 20, 14, 45, 0, 0, time.UTC)
	for _, s := range []string{"2017-03-20T14:45:00Z", "2017-03-20 14:45:00", "2017-03-20T14:45", "2017-03-20T16:45:00+02:00"} {
		dt, err := ParseDate(s)
		if err != nil {
			t.Fatalf("%s: %s", s, err)
		}
		if !dt.Equal(exp) {
			t.Fatalf("%s: got %s", s, dt)
		}
	}
	if dt, err := ParseDate("2017-03-20"); err != nil || !dt.Equal(time.Date(2017, 3, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("got %s (%v)", dt, err)
	}
	if dt, err := ParseDate("  "); err != nil || !dt.IsZero() {
		t.Fatal("an empty date should be the zero time")
	}
	if _, err := ParseDate("20 March 2017"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestClock(t *testing.T) {
	clock := Clock{Epoch: J2000, Unit: "day"}
	jd, err := clock.JD(0)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(jd, 2451545, 1e-9) {
		t.Fatalf("JD of J2000 is %f", jd)
	}
	dt := time.Date(2000, 1, 31, 12, 0, 0, 0, time.UTC)
	at, err := clock.At(dt)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(at, 30, 1e-9) {
		t.Fatalf("30 days after J2000 gives %f", at)
	}
	back, _ := clock.Date(at)
	if back.Sub(dt).Abs() > time.Millisecond {
		t.Fatalf("%s != %s", back, dt)
	}

	hours := Clock{Epoch: J2000, Unit: "h"}
	if at, _ := hours.At(dt); !floats.EqualWithinAbs(at, 720, 1e-6) {
		t.Fatalf("30 days after J2000 gives %f hours", at)
	}
	years := Clock{Epoch: J2000, Unit: "year"}
	if jd, _ := years.JD(1); !floats.EqualWithinAbs(jd, 2451545+365.25, 1e-9) {
		t.Fatalf("one Julian year after J2000 gives JD %f", jd)
	}

	unknown := Clock{Epoch: J2000, Unit: "fortnight-ish"}
	if _, err := unknown.At(dt); !errors.Is(err, ErrMissingConstant) {
		t.Fatalf("expected a missing constant, got %v", err)
	}
}

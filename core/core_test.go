package core

import (
	"testing"
	"time"
)

func TestBucketIdBlake2bForm(t *testing.T) {
	id, err := ParseBucketId("#test")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := "RKiZXdULZlegN6eDkwRTWw"
	if id.String() != want {
		t.Fatalf("got %s want %s", id.String(), want)
	}
}

func TestBucketIdBlake3Form(t *testing.T) {
	id, err := ParseBucketId("@test")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := "SHjKBCXHOfpCf37aIP6EXw"
	if id.String() != want {
		t.Fatalf("got %s want %s", id.String(), want)
	}
}

func TestBucketIdDirectForm(t *testing.T) {
	original, err := ParseBucketId("#test")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	roundTripped, err := ParseBucketId(original.String())
	if err != nil {
		t.Fatalf("round-trip parse: %v", err)
	}
	if roundTripped != original {
		t.Fatalf("round trip mismatch")
	}
}

func TestBucketIdInvalidLength(t *testing.T) {
	if _, err := ParseBucketId("AAAA"); err == nil {
		t.Fatalf("expected error for short base64url payload")
	}
}

func TestDateTimeRoundTrip(t *testing.T) {
	date := time.Date(2025, time.May, 25, 12, 30, 0, 0, time.UTC)
	dt := NewDateTime(date)

	wantSeconds := uint32(12_486_600)
	if dt.Seconds() != wantSeconds {
		t.Fatalf("got %d want %d", dt.Seconds(), wantSeconds)
	}

	back := FromSeconds(dt.Seconds())
	if !back.Equal(dt) {
		t.Fatalf("round trip: got %v want %v", back.Time(), dt.Time())
	}
}

func TestDateTimeMaxValue(t *testing.T) {
	dt := FromSeconds(^uint32(0))
	want := "2161-02-07T06:28:15Z"
	if got := dt.Time().Format(time.RFC3339); got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}

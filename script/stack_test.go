package script

import (
	"math/big"
	"testing"
)

func TestMemoryCosts(t *testing.T) {
	cases := []struct {
		v    StackData
		want int
	}{
		{Boolean(true), 1},
		{Byte(5), 2},
		{NumberInt64(100), 2},
		{Float(1.5), 2},
		{Buffer([]byte{1, 2, 3}), 3},
	}
	for _, c := range cases {
		if got := c.v.Memory(); got != c.want {
			t.Fatalf("Memory() = %d, want %d", got, c.want)
		}
	}
}

func TestAsNumberCoercion(t *testing.T) {
	if n, err := Boolean(true).AsNumber(); err != nil || n.Int64() != 1 {
		t.Fatalf("Boolean(true).AsNumber() = %v, %v", n, err)
	}
	if n, err := Byte(9).AsNumber(); err != nil || n.Int64() != 9 {
		t.Fatalf("Byte(9).AsNumber() = %v, %v", n, err)
	}
	if n, err := Float(4.0).AsNumber(); err != nil || n.Int64() != 4 {
		t.Fatalf("Float(4.0).AsNumber() = %v, %v", n, err)
	}
	if _, err := Float(4.5).AsNumber(); err == nil {
		t.Fatalf("expected an error coercing a fractional float to a number")
	}
	if _, err := Buffer([]byte{1}).AsNumber(); err == nil {
		t.Fatalf("expected an error coercing a buffer to a number")
	}
}

func TestEqualCoercion(t *testing.T) {
	cases := []struct {
		a, b StackData
		want bool
	}{
		{Boolean(true), NumberInt64(1), true},
		{Boolean(false), NumberInt64(0), true},
		{NumberInt64(4), Float(4.0), true},
		{NumberInt64(4), Float(4.5), false},
		{Byte(7), NumberInt64(7), true},
		{Buffer([]byte{1, 2}), Buffer([]byte{1, 2}), true},
		{Buffer([]byte{1}), Byte(1), true},
	}
	for i, c := range cases {
		got, err := Equal(c.a, c.b)
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if got != c.want {
			t.Fatalf("case %d: got %v want %v", i, got, c.want)
		}
	}
}

func TestNumberToBytesRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 127, -128, 255, 256, -300}
	for _, v := range cases {
		b := numberToBytes(big.NewInt(v))
		got := bytesToNumber(b)
		if got.Int64() != v {
			t.Fatalf("value %d: round trip gave %v (bytes %v)", v, got, b)
		}
	}
}

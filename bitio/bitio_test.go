package bitio

import "testing"

// TestCryptoSettingsVectorPQC reproduces the two-byte CryptoSettings wire
// form with post-quantum fields present: 0b1011_0101, 0b0001_0101.
func TestCryptoSettingsVectorPQC(t *testing.T) {
	w := NewWriter()
	// byte 0, LSB first: 1,0,1,0,1,1,0,1 -> 0b1011_0101
	bits0 := []bool{true, false, true, false, true, true, false, true}
	for _, b := range bits0 {
		w.WriteBool(b)
	}
	// byte 1: 1,0,1,0,1,0,0,0 -> 0b0001_0101
	bits1 := []bool{true, false, true, false, true, false, false, false}
	for _, b := range bits1 {
		w.WriteBool(b)
	}
	got := w.Bytes()
	want := []byte{0b10110101, 0b00010101}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %08b %08b, want %08b %08b", got[0], got[1], want[0], want[1])
	}

	r := NewReader(got)
	for i, want := range bits0 {
		b, err := r.ReadBool()
		if err != nil {
			t.Fatalf("read bit %d: %v", i, err)
		}
		if b != want {
			t.Fatalf("byte0 bit %d: got %v want %v", i, b, want)
		}
	}
	for i, want := range bits1 {
		b, err := r.ReadBool()
		if err != nil {
			t.Fatalf("read bit %d: %v", i, err)
		}
		if b != want {
			t.Fatalf("byte1 bit %d: got %v want %v", i, b, want)
		}
	}
}

// TestCryptoSettingsVectorDefaults reproduces the single-byte defaults
// form: 0b0011_1011.
func TestCryptoSettingsVectorDefaults(t *testing.T) {
	w := NewWriter()
	bits := []bool{true, true, false, true, true, true, false, false}
	for _, b := range bits {
		w.WriteBool(b)
	}
	got := w.Bytes()
	if len(got) != 1 || got[0] != 0b00111011 {
		t.Fatalf("got %08b, want %08b", got[0], byte(0b00111011))
	}
}

// TestPacketHeaderVector reproduces the dead PlabblePacketHeader test
// vector: packet_type=Session(1), flags=[false,true,true,false],
// response_to=123 -> bytes [0b0110_0001, 0, 123].
func TestPacketHeaderVector(t *testing.T) {
	w := NewWriter()
	w.WriteBits(1, 4) // packet_type = 1
	for _, f := range []bool{false, true, true, false} {
		w.WriteBool(f)
	}
	w.WriteFixedUint(123, 16)
	got := w.Bytes()
	want := []byte{0b01100001, 0, 123}
	if len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Fatalf("got % 08b, want % 08b", got, want)
	}

	r := NewReader(got)
	packetType, err := r.ReadBits(4)
	if err != nil || packetType != 1 {
		t.Fatalf("packet_type: got %d err %v", packetType, err)
	}
	for i, want := range []bool{false, true, true, false} {
		f, err := r.ReadBool()
		if err != nil || f != want {
			t.Fatalf("flag %d: got %v err %v", i, f, err)
		}
	}
	responseTo, err := r.ReadFixedUint(16)
	if err != nil || responseTo != 123 {
		t.Fatalf("response_to: got %d err %v", responseTo, err)
	}
}

// TestRoundTripDynLength checks WriteDynLength/ReadDynLength round-trip
// and the length-mismatch error on oversized payloads.
func TestRoundTripDynLength(t *testing.T) {
	w := NewWriter()
	payload := []byte{1, 2, 3, 4, 5}
	if err := w.WriteDynLength(payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := NewReader(w.Bytes())
	got, err := r.ReadDynLength()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(payload) {
		t.Fatalf("got %v want %v", got, payload)
	}
	for i := range payload {
		if got[i] != payload[i] {
			t.Fatalf("byte %d: got %d want %d", i, got[i], payload[i])
		}
	}

	oversized := make([]byte, 256)
	if err := NewWriter().WriteDynLength(oversized); err == nil {
		t.Fatalf("expected error for oversized dyn_length payload")
	}
}

// TestRoundTripDynInt checks WriteDynInt/ReadDynInt across a range of
// magnitudes, including the byte-count boundaries.
func TestRoundTripDynInt(t *testing.T) {
	values := []uint64{0, 1, 255, 256, 65535, 65536, 1 << 32, ^uint64(0)}
	for _, v := range values {
		w := NewWriter()
		w.WriteDynInt(v)
		r := NewReader(w.Bytes())
		got, err := r.ReadDynInt()
		if err != nil {
			t.Fatalf("value %d: read error %v", v, err)
		}
		if got != v {
			t.Fatalf("value %d: got %d", v, got)
		}
	}
}

// TestSetOffsetEndReservesTrailer confirms SetOffsetEnd pulls the
// logical end back and makes the reserved bytes available unmodified.
func TestSetOffsetEndReservesTrailer(t *testing.T) {
	w := NewWriter()
	w.WriteBytes([]byte{0xAA, 0xBB})
	trailer := []byte{1, 2, 3, 4}
	w.WriteBytes(trailer)
	buf := w.Bytes()

	r := NewReader(buf)
	r.SetOffsetEnd(len(trailer))
	got, err := r.ReadBytes(2)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if got[0] != 0xAA || got[1] != 0xBB {
		t.Fatalf("got %v", got)
	}
	if _, err := r.ReadBits(1); err == nil {
		t.Fatalf("expected end-of-input once the reserved trailer is reached")
	}
	tail := r.TrailingBytes()
	if len(tail) != len(trailer) {
		t.Fatalf("trailer len: got %d want %d", len(tail), len(trailer))
	}
	for i := range trailer {
		if tail[i] != trailer[i] {
			t.Fatalf("trailer byte %d: got %d want %d", i, tail[i], trailer[i])
		}
	}
}

// xorStream is a deterministic test double for CryptoStream.
type xorStream struct {
	seed byte
	i    int
}

func (s *xorStream) NextByte() byte {
	b := s.seed + byte(s.i)
	s.i++
	return b
}

func TestCryptoStreamRoundTrip(t *testing.T) {
	w := NewWriter()
	w.SetCryptoStream(&xorStream{seed: 7})
	payload := []byte{10, 20, 30, 40}
	w.WriteBytes(payload)
	buf := w.Bytes()
	if buf[0] == payload[0] {
		t.Fatalf("expected crypto stream to transform output")
	}

	r := NewReader(buf)
	r.SetCryptoStream(&xorStream{seed: 7})
	got, err := r.ReadBytes(len(payload))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for i := range payload {
		if got[i] != payload[i] {
			t.Fatalf("byte %d: got %d want %d", i, got[i], payload[i])
		}
	}
}

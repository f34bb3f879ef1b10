package packet

import (
	"rubin.dev/plabble/bitio"
	"rubin.dev/plabble/schema"
)

// SlotRange addresses a byte offset/length window within one bucket
// slot, selected numerically or by string key per the binary_keys
// flag. Either bound may be omitted: a nil offset means "from the
// start", a nil length means "to the end".
type SlotRange struct {
	NumericSlot *uint16
	BinarySlot  *string

	Offset *uint64
	Length *uint64
}

func EncodeSlotRange(w *bitio.Writer, rng *SlotRange, cfg *schema.Config) error {
	if cfg.MustToggledBy("binary_keys") {
		if rng.BinarySlot == nil {
			return bitio.NewError(bitio.ErrLengthMismatch, "binary_keys set but slot key missing")
		}
		if err := w.WriteDynLength([]byte(*rng.BinarySlot)); err != nil {
			return err
		}
	} else {
		if rng.NumericSlot == nil {
			return bitio.NewError(bitio.ErrLengthMismatch, "numeric slot missing")
		}
		w.WriteFixedUint(uint64(*rng.NumericSlot), 16)
	}

	w.WriteBool(rng.Offset != nil)
	if rng.Offset != nil {
		w.WriteDynInt(*rng.Offset)
	}
	w.WriteBool(rng.Length != nil)
	if rng.Length != nil {
		w.WriteDynInt(*rng.Length)
	}
	return nil
}

func DecodeSlotRange(r *bitio.Reader, cfg *schema.Config) (*SlotRange, error) {
	rng := &SlotRange{}
	if cfg.MustToggledBy("binary_keys") {
		b, err := r.ReadDynLength()
		if err != nil {
			return nil, err
		}
		s := string(b)
		rng.BinarySlot = &s
	} else {
		v, err := r.ReadFixedUint(16)
		if err != nil {
			return nil, err
		}
		slot := uint16(v)
		rng.NumericSlot = &slot
	}

	hasOffset, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if hasOffset {
		v, err := r.ReadDynInt()
		if err != nil {
			return nil, err
		}
		rng.Offset = &v
	}

	hasLength, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if hasLength {
		v, err := r.ReadDynInt()
		if err != nil {
			return nil, err
		}
		rng.Length = &v
	}

	return rng, nil
}

// StreamRequestBody either reads a window of a slot (write_mode false,
// no Data) or writes one (write_mode true, Data present).
type StreamRequestBody struct {
	Data  *[]byte // present iff header flag write_mode
	Range SlotRange
}

func EncodeStreamRequestBody(w *bitio.Writer, b *StreamRequestBody, cfg *schema.Config) error {
	if cfg.MustToggledBy("write_mode") {
		if b.Data == nil {
			return bitio.NewError(bitio.ErrLengthMismatch, "write_mode set but data missing")
		}
		if err := w.WriteDynLength(*b.Data); err != nil {
			return err
		}
	}
	return EncodeSlotRange(w, &b.Range, cfg)
}

func DecodeStreamRequestBody(r *bitio.Reader, cfg *schema.Config) (*StreamRequestBody, error) {
	b := &StreamRequestBody{}
	if cfg.MustToggledBy("write_mode") {
		data, err := r.ReadDynLength()
		if err != nil {
			return nil, err
		}
		b.Data = &data
	}
	rng, err := DecodeSlotRange(r, cfg)
	if err != nil {
		return nil, err
	}
	b.Range = *rng
	return b, nil
}

// StreamResponseBody answers a write with the slot's new total size,
// or a read with the requested window's bytes. Data has no length
// prefix: it is the body's last field and consumes whatever remains.
type StreamResponseBody struct {
	NewSize *uint64 // present iff header flag write_mode
	Data    []byte  // present iff !write_mode
}

func EncodeStreamResponseBody(w *bitio.Writer, b *StreamResponseBody, cfg *schema.Config) error {
	if cfg.MustToggledBy("write_mode") {
		if b.NewSize == nil {
			return bitio.NewError(bitio.ErrLengthMismatch, "write_mode set but new_size missing")
		}
		w.WriteDynInt(*b.NewSize)
		return nil
	}
	w.WriteBytes(b.Data)
	return nil
}

func DecodeStreamResponseBody(r *bitio.Reader, cfg *schema.Config) (*StreamResponseBody, error) {
	b := &StreamResponseBody{}
	if cfg.MustToggledBy("write_mode") {
		v, err := r.ReadDynInt()
		if err != nil {
			return nil, err
		}
		b.NewSize = &v
		return b, nil
	}
	data, err := r.ReadBytes(r.RemainingBytes())
	if err != nil {
		return nil, err
	}
	b.Data = data
	return b, nil
}

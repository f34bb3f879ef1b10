package textfmt

import "rubin.dev/plabble/packet"

type slotRangeDoc struct {
	NumericSlot *uint16 `toml:"numeric_slot,omitempty"`
	BinarySlot  *string `toml:"binary_slot,omitempty"`
	Offset      *uint64 `toml:"offset,omitempty"`
	Length      *uint64 `toml:"length,omitempty"`
}

func slotRangeToDoc(r *packet.SlotRange) slotRangeDoc {
	return slotRangeDoc{
		NumericSlot: r.NumericSlot, BinarySlot: r.BinarySlot,
		Offset: r.Offset, Length: r.Length,
	}
}

func slotRangeFromDoc(doc slotRangeDoc) *packet.SlotRange {
	return &packet.SlotRange{
		NumericSlot: doc.NumericSlot, BinarySlot: doc.BinarySlot,
		Offset: doc.Offset, Length: doc.Length,
	}
}

type streamRequestDoc struct {
	Data  *string      `toml:"data,omitempty"`
	Range slotRangeDoc `toml:"range"`
}

func streamRequestToDoc(b *packet.StreamRequestBody) streamRequestDoc {
	doc := streamRequestDoc{Range: slotRangeToDoc(&b.Range)}
	if b.Data != nil {
		s := byteString(*b.Data)
		doc.Data = &s
	}
	return doc
}

func streamRequestFromDoc(doc streamRequestDoc) (*packet.StreamRequestBody, error) {
	b := &packet.StreamRequestBody{Range: *slotRangeFromDoc(doc.Range)}
	if doc.Data != nil {
		raw, err := parseBytes(*doc.Data)
		if err != nil {
			return nil, err
		}
		b.Data = &raw
	}
	return b, nil
}

type streamResponseDoc struct {
	NewSize *uint64 `toml:"new_size,omitempty"`
	Data    *string `toml:"data,omitempty"`
}

func streamResponseToDoc(b *packet.StreamResponseBody) streamResponseDoc {
	doc := streamResponseDoc{NewSize: b.NewSize}
	if b.NewSize == nil {
		s := byteString(b.Data)
		doc.Data = &s
	}
	return doc
}

func streamResponseFromDoc(doc streamResponseDoc) (*packet.StreamResponseBody, error) {
	b := &packet.StreamResponseBody{NewSize: doc.NewSize}
	if doc.NewSize == nil {
		if doc.Data == nil {
			return nil, errLength(1, 0)
		}
		raw, err := parseBytes(*doc.Data)
		if err != nil {
			return nil, err
		}
		b.Data = raw
	}
	return b, nil
}

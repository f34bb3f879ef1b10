package packet

import "rubin.dev/plabble/bitio"

// CustomBody carries sub-protocol traffic tunneled through Plabble: a
// protocol ID naming which sub-protocol the data belongs to, and the
// raw bytes that protocol parses. Data is this body's last field and
// so consumes to the end of input; it carries no length prefix.
type CustomBody struct {
	Protocol uint16
	Data     []byte
}

func EncodeCustomBody(w *bitio.Writer, b *CustomBody) error {
	w.WriteFixedUint(uint64(b.Protocol), 16)
	w.WriteBytes(b.Data)
	return nil
}

func DecodeCustomBody(r *bitio.Reader) (*CustomBody, error) {
	protocol, err := r.ReadFixedUint(16)
	if err != nil {
		return nil, err
	}
	data, err := r.ReadBytes(r.RemainingBytes())
	if err != nil {
		return nil, err
	}
	return &CustomBody{Protocol: uint16(protocol), Data: data}, nil
}

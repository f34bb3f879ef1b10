package packet

import "rubin.dev/plabble/bitio"

// ErrorBody is the ERROR response body: a tagged union selected by an
// explicit 8-bit discriminator (the only packet body with an in-band
// tag, since there is no earlier header flag to select it by).
type ErrorBody struct {
	UnsupportedVersion   *UnsupportedVersionError
	UnsupportedAlgorithm *UnsupportedAlgorithmError
}

type UnsupportedVersionError struct {
	MinVersion uint8
	MaxVersion uint8
}

type UnsupportedAlgorithmError struct {
	Name string
}

func EncodeErrorBody(w *bitio.Writer, b *ErrorBody) error {
	switch {
	case b.UnsupportedVersion != nil:
		w.WriteBits(0, 8)
		w.WriteBits(uint64(b.UnsupportedVersion.MinVersion), 8)
		w.WriteBits(uint64(b.UnsupportedVersion.MaxVersion), 8)
		return nil
	case b.UnsupportedAlgorithm != nil:
		w.WriteBits(1, 8)
		return w.WriteDynLength([]byte(b.UnsupportedAlgorithm.Name))
	default:
		return bitio.NewError(bitio.ErrLengthMismatch, "error body: no variant set")
	}
}

func DecodeErrorBody(r *bitio.Reader) (*ErrorBody, error) {
	tag, err := r.ReadBits(8)
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		minV, err := r.ReadBits(8)
		if err != nil {
			return nil, err
		}
		maxV, err := r.ReadBits(8)
		if err != nil {
			return nil, err
		}
		return &ErrorBody{UnsupportedVersion: &UnsupportedVersionError{
			MinVersion: uint8(minV), MaxVersion: uint8(maxV),
		}}, nil
	case 1:
		name, err := r.ReadDynLength()
		if err != nil {
			return nil, err
		}
		return &ErrorBody{UnsupportedAlgorithm: &UnsupportedAlgorithmError{Name: string(name)}}, nil
	default:
		return nil, bitio.NewError(bitio.ErrInvalidDiscriminator, "unknown error body tag")
	}
}

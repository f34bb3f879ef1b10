package packet

import (
	"rubin.dev/plabble/bitio"
	"rubin.dev/plabble/core"
	"rubin.dev/plabble/script"
)

// OpcodeRequestBody submits an Opcode Script program to run against
// the bucket identified by Id, sandboxed by the interpreter's
// capability and memory limits.
type OpcodeRequestBody struct {
	Id     core.BucketId
	Script script.OpcodeScript
}

func EncodeOpcodeRequestBody(w *bitio.Writer, b *OpcodeRequestBody) error {
	w.WriteBytes(b.Id.Bytes())
	return script.Encode(w, b.Script)
}

func DecodeOpcodeRequestBody(r *bitio.Reader) (*OpcodeRequestBody, error) {
	idBytes, err := r.ReadBytes(16)
	if err != nil {
		return nil, err
	}
	var id core.BucketId
	copy(id[:], idBytes)
	s, err := script.Decode(r)
	if err != nil {
		return nil, err
	}
	return &OpcodeRequestBody{Id: id, Script: s}, nil
}

// OpCodeResponseBody reports the final contents of the main stack once
// a script halts, each entry length-prefixed, and whether it errored.
type OpCodeResponseBody struct {
	Failed  bool
	Results [][]byte
}

func EncodeOpCodeResponseBody(w *bitio.Writer, b *OpCodeResponseBody) error {
	w.WriteBool(b.Failed)
	if len(b.Results) > 255 {
		return bitio.NewError(bitio.ErrLengthMismatch, "too many result values")
	}
	w.WriteBits(uint64(len(b.Results)), 8)
	for _, v := range b.Results {
		if err := w.WriteDynLength(v); err != nil {
			return err
		}
	}
	return nil
}

func DecodeOpCodeResponseBody(r *bitio.Reader) (*OpCodeResponseBody, error) {
	failed, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	n, err := r.ReadBits(8)
	if err != nil {
		return nil, err
	}
	b := &OpCodeResponseBody{Failed: failed}
	for i := uint64(0); i < n; i++ {
		v, err := r.ReadDynLength()
		if err != nil {
			return nil, err
		}
		b.Results = append(b.Results, v)
	}
	return b, nil
}

package packet

import (
	"rubin.dev/plabble/bitio"
	"rubin.dev/plabble/schema"
)

// Request is a complete Plabble request packet: the base, the
// type/flags header, and the body the header's type selects.
type Request struct {
	Base   Base
	Header RequestHeader
	Body   RequestBody
}

// EncodeRequest runs the full framing pipeline described for request
// packets: base, crypto-settings adoption, per-packet key derivation
// and stream attachment, header, body.
//
// Every packet is either encrypted with a keystream or authenticated
// with an appended 16-byte MAC, and both need keys from ctx, so a nil
// ctx is always an error.
func EncodeRequest(ctx *Context, req *Request) ([]byte, error) {
	w := bitio.NewWriter()
	cfg := schema.NewConfig()

	if err := EncodeBase(w, &req.Base, cfg); err != nil {
		return nil, err
	}

	settings := DefaultCryptoSettings()
	if req.Base.SpecifyCryptoSettings && req.Base.CryptoSettings != nil {
		settings = *req.Base.CryptoSettings
	}
	settings.ApplyToggles(cfg)

	if req.Base.UseEncryption {
		if ctx == nil {
			return nil, bitio.NewError(bitio.ErrLengthMismatch, "use_encryption set but no session context given")
		}
		stream, err := ctx.packetStream(&req.Base, settings, true)
		if err != nil {
			return nil, err
		}
		w.SetCryptoStream(stream)
	}

	if err := EncodeRequestHeader(w, &req.Header, cfg); err != nil {
		return nil, err
	}
	if err := encodeRequestBody(w, req.Header.Type, &req.Body, cfg); err != nil {
		return nil, err
	}

	if !req.Base.UseEncryption {
		if ctx == nil {
			return nil, bitio.NewError(bitio.ErrLengthMismatch, "unencrypted packet requires a session context for its MAC")
		}
		mac, err := computeMAC(ctx, &req.Base, settings, true, w.Bytes())
		if err != nil {
			return nil, err
		}
		return append(w.Bytes(), mac...), nil
	}

	return w.Bytes(), nil
}

// DecodeRequest mirrors EncodeRequest. When the packet is unencrypted
// it reserves the trailing 16 bytes as a MAC and verifies it once the
// body has been read.
func DecodeRequest(ctx *Context, data []byte) (*Request, error) {
	r := bitio.NewReader(data)
	cfg := schema.NewConfig()

	base, err := DecodeBase(r, cfg)
	if err != nil {
		return nil, err
	}

	settings := DefaultCryptoSettings()
	if base.SpecifyCryptoSettings && base.CryptoSettings != nil {
		settings = *base.CryptoSettings
	}
	settings.ApplyToggles(cfg)

	if base.UseEncryption {
		if ctx == nil {
			return nil, bitio.NewError(bitio.ErrLengthMismatch, "use_encryption set but no session context given")
		}
		stream, err := ctx.packetStream(base, settings, true)
		if err != nil {
			return nil, err
		}
		r.SetCryptoStream(stream)
	} else {
		r.SetOffsetEnd(16)
	}

	header, err := DecodeRequestHeader(r, cfg)
	if err != nil {
		return nil, err
	}
	body, err := decodeRequestBody(r, header.Type, cfg)
	if err != nil {
		return nil, err
	}

	if !base.UseEncryption {
		if ctx == nil {
			return nil, bitio.NewError(bitio.ErrLengthMismatch, "unencrypted packet requires a session context for its MAC")
		}
		signed := data[:len(data)-16]
		mac, err := computeMAC(ctx, base, settings, true, signed)
		if err != nil {
			return nil, err
		}
		if !macEqual(mac, r.TrailingBytes()) {
			ctx.logger().Warn("request packet authentication tag mismatch", "packet_type", header.Type)
			return nil, bitio.NewError(bitio.ErrLengthMismatch, "packet authentication tag mismatch")
		}
	}

	return &Request{Base: *base, Header: *header, Body: *body}, nil
}

func encodeRequestBody(w *bitio.Writer, t RequestPacketType, b *RequestBody, cfg *schema.Config) error {
	switch t {
	case ReqCertificate:
		return EncodeCertificateRequestBody(w, b.Certificate, cfg)
	case ReqSession:
		return EncodeSessionRequestBody(w, b.Session, cfg)
	case ReqGet:
		return EncodeBucketQuery(w, b.Get, cfg)
	case ReqStream:
		return EncodeStreamRequestBody(w, b.Stream, cfg)
	case ReqPost:
		return EncodePostRequestBody(w, b.Post, cfg)
	case ReqPatch:
		return EncodePatchRequestBody(w, b.Patch, cfg)
	case ReqPut:
		return EncodePutRequestBody(w, b.Put, cfg)
	case ReqDelete:
		return EncodeBucketQuery(w, b.Delete, cfg)
	case ReqSubscribe:
		return EncodeBucketQuery(w, b.Subscribe, cfg)
	case ReqUnsubscribe:
		return EncodeBucketQuery(w, b.Unsubscribe, cfg)
	case ReqRegister:
		return EncodeRegisterRequestBody(w, b.Register, cfg)
	case ReqIdentify:
		return EncodeIdentifyRequestBody(w, b.Identify, cfg)
	case ReqProxy:
		return EncodeProxyRequestBody(w, b.Proxy, cfg)
	case ReqCustom:
		return EncodeCustomBody(w, b.Custom)
	case ReqOpcode:
		return EncodeOpcodeRequestBody(w, b.Opcode)
	default:
		return bitio.NewError(bitio.ErrInvalidDiscriminator, "unknown request packet type")
	}
}

func decodeRequestBody(r *bitio.Reader, t RequestPacketType, cfg *schema.Config) (*RequestBody, error) {
	b := &RequestBody{}
	var err error
	switch t {
	case ReqCertificate:
		b.Certificate, err = DecodeCertificateRequestBody(r, cfg)
	case ReqSession:
		b.Session, err = DecodeSessionRequestBody(r, cfg)
	case ReqGet:
		b.Get, err = DecodeBucketQuery(r, cfg)
	case ReqStream:
		b.Stream, err = DecodeStreamRequestBody(r, cfg)
	case ReqPost:
		b.Post, err = DecodePostRequestBody(r, cfg)
	case ReqPatch:
		b.Patch, err = DecodePatchRequestBody(r, cfg)
	case ReqPut:
		b.Put, err = DecodePutRequestBody(r, cfg)
	case ReqDelete:
		b.Delete, err = DecodeBucketQuery(r, cfg)
	case ReqSubscribe:
		b.Subscribe, err = DecodeBucketQuery(r, cfg)
	case ReqUnsubscribe:
		b.Unsubscribe, err = DecodeBucketQuery(r, cfg)
	case ReqRegister:
		b.Register, err = DecodeRegisterRequestBody(r, cfg)
	case ReqIdentify:
		b.Identify, err = DecodeIdentifyRequestBody(r, cfg)
	case ReqProxy:
		b.Proxy, err = DecodeProxyRequestBody(r, cfg)
	case ReqCustom:
		b.Custom, err = DecodeCustomBody(r)
	case ReqOpcode:
		b.Opcode, err = DecodeOpcodeRequestBody(r)
	default:
		return nil, bitio.NewError(bitio.ErrInvalidDiscriminator, "unknown request packet type")
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

package packet

import (
	"rubin.dev/plabble/bitio"
	"rubin.dev/plabble/certificate"
	"rubin.dev/plabble/schema"
)

// Response is a complete Plabble response packet, mirroring Request.
type Response struct {
	Base   Base
	Header ResponseHeader
	Body   ResponseBody
}

func EncodeResponse(ctx *Context, resp *Response) ([]byte, error) {
	w := bitio.NewWriter()
	cfg := schema.NewConfig()

	if err := EncodeBase(w, &resp.Base, cfg); err != nil {
		return nil, err
	}

	settings := DefaultCryptoSettings()
	if resp.Base.SpecifyCryptoSettings && resp.Base.CryptoSettings != nil {
		settings = *resp.Base.CryptoSettings
	}
	settings.ApplyToggles(cfg)

	if resp.Base.UseEncryption {
		if ctx == nil {
			return nil, bitio.NewError(bitio.ErrLengthMismatch, "use_encryption set but no session context given")
		}
		stream, err := ctx.packetStream(&resp.Base, settings, false)
		if err != nil {
			return nil, err
		}
		w.SetCryptoStream(stream)
	}

	if err := EncodeResponseHeader(w, &resp.Header, cfg); err != nil {
		return nil, err
	}
	if err := encodeResponseBody(w, resp.Header.Type, &resp.Body, cfg); err != nil {
		return nil, err
	}

	if !resp.Base.UseEncryption {
		if ctx == nil {
			return nil, bitio.NewError(bitio.ErrLengthMismatch, "unencrypted packet requires a session context for its MAC")
		}
		mac, err := computeMAC(ctx, &resp.Base, settings, false, w.Bytes())
		if err != nil {
			return nil, err
		}
		return append(w.Bytes(), mac...), nil
	}

	return w.Bytes(), nil
}

func DecodeResponse(ctx *Context, data []byte) (*Response, error) {
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
		stream, err := ctx.packetStream(base, settings, false)
		if err != nil {
			return nil, err
		}
		r.SetCryptoStream(stream)
	} else {
		r.SetOffsetEnd(16)
	}

	header, err := DecodeResponseHeader(r, cfg)
	if err != nil {
		return nil, err
	}
	body, err := decodeResponseBody(r, header.Type, cfg)
	if err != nil {
		return nil, err
	}

	if !base.UseEncryption {
		if ctx == nil {
			return nil, bitio.NewError(bitio.ErrLengthMismatch, "unencrypted packet requires a session context for its MAC")
		}
		signed := data[:len(data)-16]
		mac, err := computeMAC(ctx, base, settings, false, signed)
		if err != nil {
			return nil, err
		}
		if !macEqual(mac, r.TrailingBytes()) {
			ctx.logger().Warn("response packet authentication tag mismatch", "packet_type", header.Type)
			return nil, bitio.NewError(bitio.ErrLengthMismatch, "packet authentication tag mismatch")
		}
	}

	return &Response{Base: *base, Header: *header, Body: *body}, nil
}

// isAckOnly reports the response types that carry no body at all: the
// response's presence is itself the acknowledgement.
func isAckOnly(t ResponsePacketType) bool {
	switch t {
	case ResPost, ResPatch, ResPut, ResDelete, ResSubscribe, ResUnsubscribe, ResIdentify:
		return true
	default:
		return false
	}
}

func encodeResponseBody(w *bitio.Writer, t ResponsePacketType, b *ResponseBody, cfg *schema.Config) error {
	if isAckOnly(t) {
		return nil
	}
	switch t {
	case ResCertificate:
		return EncodeCertificateResponseBody(w, b.Certificate, cfg)
	case ResSession:
		return EncodeSessionResponseBody(w, b.Session, cfg)
	case ResGet:
		return EncodeBucketBody(w, b.Get, cfg)
	case ResStream:
		return EncodeStreamResponseBody(w, b.Stream, cfg)
	case ResRegister:
		certCfg := schema.NewConfig()
		return certificate.Encode(w, &b.Register.Certificate, certCfg)
	case ResProxy:
		return EncodeProxyResponseBody(w, b.Proxy, cfg)
	case ResCustom:
		return EncodeCustomBody(w, b.Custom)
	case ResOpcode:
		return EncodeOpCodeResponseBody(w, b.Opcode)
	case ResError:
		return EncodeErrorBody(w, b.Error)
	default:
		return bitio.NewError(bitio.ErrInvalidDiscriminator, "unknown response packet type")
	}
}

func decodeResponseBody(r *bitio.Reader, t ResponsePacketType, cfg *schema.Config) (*ResponseBody, error) {
	b := &ResponseBody{}
	if isAckOnly(t) {
		return b, nil
	}

	var err error
	switch t {
	case ResCertificate:
		b.Certificate, err = DecodeCertificateResponseBody(r, cfg)
	case ResSession:
		b.Session, err = DecodeSessionResponseBody(r, cfg)
	case ResGet:
		b.Get, err = DecodeBucketBody(r, cfg)
	case ResStream:
		b.Stream, err = DecodeStreamResponseBody(r, cfg)
	case ResRegister:
		certCfg := schema.NewConfig()
		cert, decodeErr := certificate.Decode(r, certCfg)
		if decodeErr != nil {
			return nil, decodeErr
		}
		b.Register = &RegisterResponseBody{Certificate: *cert}
	case ResProxy:
		b.Proxy, err = DecodeProxyResponseBody(r, cfg)
	case ResCustom:
		b.Custom, err = DecodeCustomBody(r)
	case ResOpcode:
		b.Opcode, err = DecodeOpCodeResponseBody(r)
	case ResError:
		b.Error, err = DecodeErrorBody(r)
	default:
		return nil, bitio.NewError(bitio.ErrInvalidDiscriminator, "unknown response packet type")
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

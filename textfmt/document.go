package textfmt

import (
	"bytes"

	"github.com/BurntSushi/toml"

	"rubin.dev/plabble/packet"
)

// requestDoc and responseDoc are the TOML-level shape of a parsed
// Plabble packet: a base table, a header table, and a body table whose
// fields depend on the header's packet_type, filled and read by
// requestBodyToDoc/requestBodyFromDoc and their response counterparts
// below.
type requestDoc struct {
	Base   baseDoc                `toml:"base"`
	Header headerDoc              `toml:"header"`
	Body   map[string]interface{} `toml:"body,omitempty"`
}

type responseDoc struct {
	Base   baseDoc                `toml:"base"`
	Header headerDoc              `toml:"header"`
	Body   map[string]interface{} `toml:"body,omitempty"`
}

// RenderRequest renders a decoded request as human-readable TOML, in
// the style the original project's own test fixtures use.
func RenderRequest(req *packet.Request) ([]byte, error) {
	doc := requestDoc{Base: baseToDoc(&req.Base), Header: headerFromRequest(&req.Header)}
	body, err := requestBodyToDoc(req.Header.Type, &req.Body)
	if err != nil {
		return nil, err
	}
	doc.Body = body
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseRequest parses the TOML representation back into a decoded
// request. The result still needs EncodeRequest to produce wire bytes.
func ParseRequest(data []byte) (*packet.Request, error) {
	var doc requestDoc
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, err
	}
	base, err := baseFromDoc(doc.Base)
	if err != nil {
		return nil, err
	}
	header, err := headerToRequest(doc.Header)
	if err != nil {
		return nil, err
	}
	body, err := requestBodyFromDoc(header.Type, doc.Body)
	if err != nil {
		return nil, err
	}
	return &packet.Request{Base: *base, Header: *header, Body: *body}, nil
}

// RenderResponse mirrors RenderRequest for the response side.
func RenderResponse(resp *packet.Response) ([]byte, error) {
	doc := responseDoc{Base: baseToDoc(&resp.Base), Header: headerFromResponse(&resp.Header)}
	body, err := responseBodyToDoc(resp.Header.Type, &resp.Body)
	if err != nil {
		return nil, err
	}
	doc.Body = body
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseResponse mirrors ParseRequest for the response side.
func ParseResponse(data []byte) (*packet.Response, error) {
	var doc responseDoc
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, err
	}
	base, err := baseFromDoc(doc.Base)
	if err != nil {
		return nil, err
	}
	header, err := headerToResponse(doc.Header)
	if err != nil {
		return nil, err
	}
	body, err := responseBodyFromDoc(header.Type, doc.Body)
	if err != nil {
		return nil, err
	}
	return &packet.Response{Base: *base, Header: *header, Body: *body}, nil
}

// docRoundTrip marshals a typed doc struct to TOML and back into a
// map[string]interface{}, the shape toml.Decode needs when re-decoding
// a nested table whose concrete type depends on a sibling field (the
// packet type) it cannot see.
func docRoundTrip(v interface{}) (map[string]interface{}, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if _, err := toml.Decode(buf.String(), &m); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeBodyTable(m map[string]interface{}, out interface{}) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return err
	}
	_, err := toml.Decode(buf.String(), out)
	return err
}

func requestBodyToDoc(t packet.RequestPacketType, b *packet.RequestBody) (map[string]interface{}, error) {
	switch t {
	case packet.ReqCertificate:
		return docRoundTrip(certificateRequestToDoc(b.Certificate))
	case packet.ReqSession:
		return docRoundTrip(sessionRequestToDoc(b.Session))
	case packet.ReqGet, packet.ReqDelete, packet.ReqSubscribe, packet.ReqUnsubscribe:
		q := b.Get
		switch t {
		case packet.ReqDelete:
			q = b.Delete
		case packet.ReqSubscribe:
			q = b.Subscribe
		case packet.ReqUnsubscribe:
			q = b.Unsubscribe
		}
		return docRoundTrip(bucketQueryToDoc(q))
	case packet.ReqStream:
		return docRoundTrip(streamRequestToDoc(b.Stream))
	case packet.ReqPost:
		return docRoundTrip(postRequestToDoc(b.Post))
	case packet.ReqPatch:
		return docRoundTrip(patchRequestToDoc(b.Patch))
	case packet.ReqPut:
		return docRoundTrip(putRequestToDoc(b.Put))
	case packet.ReqRegister:
		return docRoundTrip(registerRequestToDoc(b.Register))
	case packet.ReqIdentify:
		return docRoundTrip(identifyRequestToDoc(b.Identify))
	case packet.ReqProxy:
		return docRoundTrip(proxyRequestToDoc(b.Proxy))
	case packet.ReqCustom:
		return docRoundTrip(customBodyToDoc(b.Custom))
	case packet.ReqOpcode:
		doc, err := opcodeRequestToDoc(b.Opcode)
		if err != nil {
			return nil, err
		}
		return docRoundTrip(doc)
	default:
		return nil, errUnknownType(requestTypeNames[t])
	}
}

func requestBodyFromDoc(t packet.RequestPacketType, m map[string]interface{}) (*packet.RequestBody, error) {
	b := &packet.RequestBody{}
	switch t {
	case packet.ReqCertificate:
		var doc certificateRequestDoc
		if err := decodeBodyTable(m, &doc); err != nil {
			return nil, err
		}
		v, err := certificateRequestFromDoc(doc)
		if err != nil {
			return nil, err
		}
		b.Certificate = v
	case packet.ReqSession:
		var doc sessionRequestDoc
		if err := decodeBodyTable(m, &doc); err != nil {
			return nil, err
		}
		v, err := sessionRequestFromDoc(doc)
		if err != nil {
			return nil, err
		}
		b.Session = v
	case packet.ReqGet, packet.ReqDelete, packet.ReqSubscribe, packet.ReqUnsubscribe:
		var doc bucketQueryDoc
		if err := decodeBodyTable(m, &doc); err != nil {
			return nil, err
		}
		v := bucketQueryFromDoc(doc)
		switch t {
		case packet.ReqGet:
			b.Get = v
		case packet.ReqDelete:
			b.Delete = v
		case packet.ReqSubscribe:
			b.Subscribe = v
		case packet.ReqUnsubscribe:
			b.Unsubscribe = v
		}
	case packet.ReqStream:
		var doc streamRequestDoc
		if err := decodeBodyTable(m, &doc); err != nil {
			return nil, err
		}
		v, err := streamRequestFromDoc(doc)
		if err != nil {
			return nil, err
		}
		b.Stream = v
	case packet.ReqPost:
		var doc postRequestDoc
		if err := decodeBodyTable(m, &doc); err != nil {
			return nil, err
		}
		v, err := postRequestFromDoc(doc)
		if err != nil {
			return nil, err
		}
		b.Post = v
	case packet.ReqPatch:
		var doc patchRequestDoc
		if err := decodeBodyTable(m, &doc); err != nil {
			return nil, err
		}
		v, err := patchRequestFromDoc(doc)
		if err != nil {
			return nil, err
		}
		b.Patch = v
	case packet.ReqPut:
		var doc putRequestDoc
		if err := decodeBodyTable(m, &doc); err != nil {
			return nil, err
		}
		v, err := putRequestFromDoc(doc)
		if err != nil {
			return nil, err
		}
		b.Put = v
	case packet.ReqRegister:
		var doc registerRequestDoc
		if err := decodeBodyTable(m, &doc); err != nil {
			return nil, err
		}
		v, err := registerRequestFromDoc(doc)
		if err != nil {
			return nil, err
		}
		b.Register = v
	case packet.ReqIdentify:
		var doc identifyRequestDoc
		if err := decodeBodyTable(m, &doc); err != nil {
			return nil, err
		}
		v, err := identifyRequestFromDoc(doc)
		if err != nil {
			return nil, err
		}
		b.Identify = v
	case packet.ReqProxy:
		var doc proxyRequestDoc
		if err := decodeBodyTable(m, &doc); err != nil {
			return nil, err
		}
		v, err := proxyRequestFromDoc(doc)
		if err != nil {
			return nil, err
		}
		b.Proxy = v
	case packet.ReqCustom:
		var doc customBodyDoc
		if err := decodeBodyTable(m, &doc); err != nil {
			return nil, err
		}
		v, err := customBodyFromDoc(doc)
		if err != nil {
			return nil, err
		}
		b.Custom = v
	case packet.ReqOpcode:
		var doc opcodeRequestDoc
		if err := decodeBodyTable(m, &doc); err != nil {
			return nil, err
		}
		v, err := opcodeRequestFromDoc(doc)
		if err != nil {
			return nil, err
		}
		b.Opcode = v
	default:
		return nil, errUnknownType(requestTypeNames[t])
	}
	return b, nil
}

func responseBodyToDoc(t packet.ResponsePacketType, b *packet.ResponseBody) (map[string]interface{}, error) {
	if isAckOnlyResponse(t) {
		return nil, nil
	}
	switch t {
	case packet.ResCertificate:
		return docRoundTrip(certificateResponseToDoc(b.Certificate))
	case packet.ResSession:
		return docRoundTrip(sessionResponseToDoc(b.Session))
	case packet.ResGet:
		return docRoundTrip(bucketBodyToDoc(b.Get))
	case packet.ResStream:
		return docRoundTrip(streamResponseToDoc(b.Stream))
	case packet.ResRegister:
		return docRoundTrip(registerResponseToDoc(b.Register))
	case packet.ResProxy:
		return docRoundTrip(proxyResponseToDoc(b.Proxy))
	case packet.ResCustom:
		return docRoundTrip(customBodyToDoc(b.Custom))
	case packet.ResOpcode:
		return docRoundTrip(opcodeResponseToDoc(b.Opcode))
	case packet.ResError:
		return docRoundTrip(errorBodyToDoc(b.Error))
	default:
		return nil, errUnknownType(responseTypeNames[t])
	}
}

func responseBodyFromDoc(t packet.ResponsePacketType, m map[string]interface{}) (*packet.ResponseBody, error) {
	b := &packet.ResponseBody{}
	if isAckOnlyResponse(t) {
		return b, nil
	}
	switch t {
	case packet.ResCertificate:
		var doc certificateResponseDoc
		if err := decodeBodyTable(m, &doc); err != nil {
			return nil, err
		}
		v, err := certificateResponseFromDoc(doc)
		if err != nil {
			return nil, err
		}
		b.Certificate = v
	case packet.ResSession:
		var doc sessionResponseDoc
		if err := decodeBodyTable(m, &doc); err != nil {
			return nil, err
		}
		v, err := sessionResponseFromDoc(doc)
		if err != nil {
			return nil, err
		}
		b.Session = v
	case packet.ResGet:
		var doc bucketBodyDoc
		if err := decodeBodyTable(m, &doc); err != nil {
			return nil, err
		}
		v, err := bucketBodyFromDoc(doc)
		if err != nil {
			return nil, err
		}
		b.Get = v
	case packet.ResStream:
		var doc streamResponseDoc
		if err := decodeBodyTable(m, &doc); err != nil {
			return nil, err
		}
		v, err := streamResponseFromDoc(doc)
		if err != nil {
			return nil, err
		}
		b.Stream = v
	case packet.ResRegister:
		var doc registerResponseDoc
		if err := decodeBodyTable(m, &doc); err != nil {
			return nil, err
		}
		v, err := registerResponseFromDoc(doc)
		if err != nil {
			return nil, err
		}
		b.Register = v
	case packet.ResProxy:
		var doc proxyResponseDoc
		if err := decodeBodyTable(m, &doc); err != nil {
			return nil, err
		}
		v, err := proxyResponseFromDoc(doc)
		if err != nil {
			return nil, err
		}
		b.Proxy = v
	case packet.ResCustom:
		var doc customBodyDoc
		if err := decodeBodyTable(m, &doc); err != nil {
			return nil, err
		}
		v, err := customBodyFromDoc(doc)
		if err != nil {
			return nil, err
		}
		b.Custom = v
	case packet.ResOpcode:
		var doc opcodeResponseDoc
		if err := decodeBodyTable(m, &doc); err != nil {
			return nil, err
		}
		v, err := opcodeResponseFromDoc(doc)
		if err != nil {
			return nil, err
		}
		b.Opcode = v
	case packet.ResError:
		var doc errorBodyDoc
		if err := decodeBodyTable(m, &doc); err != nil {
			return nil, err
		}
		v, err := errorBodyFromDoc(doc)
		if err != nil {
			return nil, err
		}
		b.Error = v
	default:
		return nil, errUnknownType(responseTypeNames[t])
	}
	return b, nil
}

func isAckOnlyResponse(t packet.ResponsePacketType) bool {
	switch t {
	case packet.ResPost, packet.ResPatch, packet.ResPut, packet.ResDelete,
		packet.ResSubscribe, packet.ResUnsubscribe, packet.ResIdentify:
		return true
	default:
		return false
	}
}

package packet

import (
	"rubin.dev/plabble/bitio"
	"rubin.dev/plabble/core"
	"rubin.dev/plabble/schema"
)

// RequestPacketType is the 4-bit discriminator selecting a request
// body variant. Value 15 is reserved for future use.
type RequestPacketType uint8

const (
	ReqCertificate RequestPacketType = iota
	ReqSession
	ReqGet
	ReqStream
	ReqPost
	ReqPatch
	ReqPut
	ReqDelete
	ReqSubscribe
	ReqUnsubscribe
	ReqRegister
	ReqIdentify
	ReqProxy
	ReqCustom
	ReqOpcode
	reqReserved15
)

// ResponsePacketType is the 4-bit discriminator selecting a response
// body variant. It shares its first 15 values (Certificate through
// Opcode) with RequestPacketType; value 15 is Error, where requests keep
// a reserved slot.
type ResponsePacketType uint8

const (
	ResCertificate ResponsePacketType = iota
	ResSession
	ResGet
	ResStream
	ResPost
	ResPatch
	ResPut
	ResDelete
	ResSubscribe
	ResUnsubscribe
	ResRegister
	ResIdentify
	ResProxy
	ResCustom
	ResOpcode
	ResError
)

// requestNeedsBucketID lists the request types that carry a bucket ID
// directly in the header rather than in the body: queries and mutations
// that target exactly one bucket by ID. Post carries its bucket ID in
// the body instead, since it is choosing a new ID rather than
// addressing an existing one.
func requestNeedsBucketID(t RequestPacketType) bool {
	switch t {
	case ReqGet, ReqStream, ReqPatch, ReqPut, ReqDelete, ReqSubscribe, ReqUnsubscribe:
		return true
	default:
		return false
	}
}

// RequestHeaderFlags packs the handful of per-type boolean flags that
// ride alongside the 4-bit packet type discriminator, one nibble total.
// Which fields apply depends on packet_type; unused fields are ignored
// by Encode/Decode for a given type and must be left false.
type RequestHeaderFlags struct {
	// Certificate
	FullCerts bool
	Challenge bool
	QueryMode bool

	// Session
	PersistKey bool
	ClientSalt bool

	// Post
	Subscribe bool

	// Patch
	AddToACL          bool
	RemoveFromACL     bool
	UpdatePermissions bool

	// Get/Delete/Subscribe/Unsubscribe, Stream, Put and Post: selects the
	// binary- vs numeric-keyed variant of whatever bucket addressing the
	// body carries.
	BinaryKeys bool

	// Stream
	WriteMode bool

	// Proxy
	InitSession      bool
	SelectRandomHops bool

	// Custom: four opaque passthrough bits, meaningless to the base
	// protocol and interpreted entirely by the sub-protocol named by
	// CustomBody.Protocol.
	Custom1, Custom2, Custom3, Custom4 bool
}

// encodeRequestFlags writes the 4-bit flags nibble for t, in a fixed
// per-type field order, and mirrors every flag that gates a later body
// field into cfg as a toggle of the same name.
func encodeRequestFlags(w *bitio.Writer, t RequestPacketType, f RequestHeaderFlags, cfg *schema.Config) {
	switch t {
	case ReqCertificate:
		w.WriteBool(f.FullCerts)
		w.WriteBool(f.Challenge)
		w.WriteBool(f.QueryMode)
		w.WriteBool(false)
		cfg.SetToggle("full_certs", f.FullCerts)
		cfg.SetToggle("challenge", f.Challenge)
		cfg.SetToggle("query_mode", f.QueryMode)

	case ReqSession:
		w.WriteBool(f.PersistKey)
		w.WriteBool(f.ClientSalt)
		w.WriteBool(false)
		w.WriteBool(false)
		cfg.SetToggle("persist_key", f.PersistKey)
		cfg.SetToggle("client_salt", f.ClientSalt)

	case ReqGet, ReqDelete, ReqSubscribe, ReqUnsubscribe:
		w.WriteBool(f.BinaryKeys)
		w.WriteBool(false)
		w.WriteBool(false)
		w.WriteBool(false)
		cfg.SetToggle("binary_keys", f.BinaryKeys)

	case ReqStream:
		w.WriteBool(f.WriteMode)
		w.WriteBool(f.BinaryKeys)
		w.WriteBool(false)
		w.WriteBool(false)
		cfg.SetToggle("write_mode", f.WriteMode)
		cfg.SetToggle("binary_keys", f.BinaryKeys)

	case ReqPost:
		w.WriteBool(f.Subscribe)
		w.WriteBool(f.BinaryKeys)
		w.WriteBool(false)
		w.WriteBool(false)
		cfg.SetToggle("subscribe", f.Subscribe)
		cfg.SetToggle("binary_keys", f.BinaryKeys)

	case ReqPatch:
		w.WriteBool(f.UpdatePermissions)
		w.WriteBool(f.AddToACL)
		w.WriteBool(f.RemoveFromACL)
		w.WriteBool(false)
		cfg.SetToggle("update_perm", f.UpdatePermissions)
		cfg.SetToggle("acl_add", f.AddToACL)
		cfg.SetToggle("acl_del", f.RemoveFromACL)

	case ReqPut:
		w.WriteBool(f.BinaryKeys)
		w.WriteBool(false)
		w.WriteBool(false)
		w.WriteBool(false)
		cfg.SetToggle("binary_keys", f.BinaryKeys)

	case ReqProxy:
		w.WriteBool(f.InitSession)
		w.WriteBool(f.SelectRandomHops)
		w.WriteBool(false)
		w.WriteBool(false)
		cfg.SetToggle("init_session", f.InitSession)
		cfg.SetToggle("random_hops", f.SelectRandomHops)

	case ReqCustom:
		w.WriteBool(f.Custom1)
		w.WriteBool(f.Custom2)
		w.WriteBool(f.Custom3)
		w.WriteBool(f.Custom4)

	default:
		// Register, Identify, Opcode carry no header flags.
		w.WriteBool(false)
		w.WriteBool(false)
		w.WriteBool(false)
		w.WriteBool(false)
	}
}

func decodeRequestFlags(r *bitio.Reader, t RequestPacketType, cfg *schema.Config) (RequestHeaderFlags, error) {
	var f RequestHeaderFlags
	bits := make([]bool, 4)
	for i := range bits {
		b, err := r.ReadBool()
		if err != nil {
			return f, err
		}
		bits[i] = b
	}

	switch t {
	case ReqCertificate:
		f.FullCerts, f.Challenge, f.QueryMode = bits[0], bits[1], bits[2]
		cfg.SetToggle("full_certs", f.FullCerts)
		cfg.SetToggle("challenge", f.Challenge)
		cfg.SetToggle("query_mode", f.QueryMode)

	case ReqSession:
		f.PersistKey, f.ClientSalt = bits[0], bits[1]
		cfg.SetToggle("persist_key", f.PersistKey)
		cfg.SetToggle("client_salt", f.ClientSalt)

	case ReqGet, ReqDelete, ReqSubscribe, ReqUnsubscribe:
		f.BinaryKeys = bits[0]
		cfg.SetToggle("binary_keys", f.BinaryKeys)

	case ReqStream:
		f.WriteMode, f.BinaryKeys = bits[0], bits[1]
		cfg.SetToggle("write_mode", f.WriteMode)
		cfg.SetToggle("binary_keys", f.BinaryKeys)

	case ReqPost:
		f.Subscribe, f.BinaryKeys = bits[0], bits[1]
		cfg.SetToggle("subscribe", f.Subscribe)
		cfg.SetToggle("binary_keys", f.BinaryKeys)

	case ReqPatch:
		f.UpdatePermissions, f.AddToACL, f.RemoveFromACL = bits[0], bits[1], bits[2]
		cfg.SetToggle("update_perm", f.UpdatePermissions)
		cfg.SetToggle("acl_add", f.AddToACL)
		cfg.SetToggle("acl_del", f.RemoveFromACL)

	case ReqPut:
		f.BinaryKeys = bits[0]
		cfg.SetToggle("binary_keys", f.BinaryKeys)

	case ReqProxy:
		f.InitSession, f.SelectRandomHops = bits[0], bits[1]
		cfg.SetToggle("init_session", f.InitSession)
		cfg.SetToggle("random_hops", f.SelectRandomHops)

	case ReqCustom:
		f.Custom1, f.Custom2, f.Custom3, f.Custom4 = bits[0], bits[1], bits[2], bits[3]
	}

	return f, nil
}

// RequestHeader is the second section of a Plabble request packet:
// which operation this is and the bucket it targets, if the type needs
// one directly. Unlike the response side, the request header carries
// no counter field of its own — the client/server counters that feed
// key derivation are tracked purely in-session (Context), never
// serialized here; the response correlates back via its own
// RequestCounter field instead.
type RequestHeader struct {
	Type     RequestPacketType
	Flags    RequestHeaderFlags
	BucketID *core.BucketId // present iff requestNeedsBucketID(Type)
}

// EncodeRequestHeader writes the header. cfg must already carry the
// "fire_and_forget" toggle set by EncodeBase; it records "packet_type"
// as a variant for any body field keyed on it.
func EncodeRequestHeader(w *bitio.Writer, h *RequestHeader, cfg *schema.Config) error {
	w.WriteBits(uint64(h.Type), 4)
	encodeRequestFlags(w, h.Type, h.Flags, cfg)
	cfg.SetVariant("packet_type", int64(h.Type))

	if requestNeedsBucketID(h.Type) {
		if h.BucketID == nil {
			return bitio.NewError(bitio.ErrLengthMismatch, "packet type requires a bucket id in the header")
		}
		w.WriteBytes(h.BucketID.Bytes())
	}

	return nil
}

func DecodeRequestHeader(r *bitio.Reader, cfg *schema.Config) (*RequestHeader, error) {
	typ, err := r.ReadBits(4)
	if err != nil {
		return nil, err
	}
	h := &RequestHeader{Type: RequestPacketType(typ)}

	var err2 error
	h.Flags, err2 = decodeRequestFlags(r, h.Type, cfg)
	if err2 != nil {
		return nil, err2
	}
	cfg.SetVariant("packet_type", int64(h.Type))

	if requestNeedsBucketID(h.Type) {
		idBytes, err := r.ReadBytes(16)
		if err != nil {
			return nil, err
		}
		var id core.BucketId
		copy(id[:], idBytes)
		h.BucketID = &id
	}

	return h, nil
}

// ResponseHeaderFlags packs the per-type boolean flags on the response
// side, mirroring RequestHeaderFlags.
type ResponseHeaderFlags struct {
	// Session
	KeyPersisted bool
	ServerSalt   bool

	// Get response body: which bucket addressing variant the body
	// carries.
	BinaryKeys bool

	// Stream
	WriteMode bool

	// Proxy
	InitSession bool
}

func encodeResponseFlags(w *bitio.Writer, t ResponsePacketType, f ResponseHeaderFlags, cfg *schema.Config) {
	switch t {
	case ResSession:
		w.WriteBool(f.KeyPersisted)
		w.WriteBool(f.ServerSalt)
		w.WriteBool(false)
		w.WriteBool(false)
		cfg.SetToggle("key_persisted", f.KeyPersisted)
		cfg.SetToggle("server_salt", f.ServerSalt)

	case ResGet:
		w.WriteBool(f.BinaryKeys)
		w.WriteBool(false)
		w.WriteBool(false)
		w.WriteBool(false)
		cfg.SetToggle("binary_keys", f.BinaryKeys)

	case ResStream:
		w.WriteBool(f.WriteMode)
		w.WriteBool(false)
		w.WriteBool(false)
		w.WriteBool(false)
		cfg.SetToggle("write_mode", f.WriteMode)

	case ResProxy:
		w.WriteBool(f.InitSession)
		w.WriteBool(false)
		w.WriteBool(false)
		w.WriteBool(false)
		cfg.SetToggle("init_session", f.InitSession)

	default:
		w.WriteBool(false)
		w.WriteBool(false)
		w.WriteBool(false)
		w.WriteBool(false)
	}
}

func decodeResponseFlags(r *bitio.Reader, t ResponsePacketType, cfg *schema.Config) (ResponseHeaderFlags, error) {
	var f ResponseHeaderFlags
	bits := make([]bool, 4)
	for i := range bits {
		b, err := r.ReadBool()
		if err != nil {
			return f, err
		}
		bits[i] = b
	}

	switch t {
	case ResSession:
		f.KeyPersisted, f.ServerSalt = bits[0], bits[1]
		cfg.SetToggle("key_persisted", f.KeyPersisted)
		cfg.SetToggle("server_salt", f.ServerSalt)

	case ResGet:
		f.BinaryKeys = bits[0]
		cfg.SetToggle("binary_keys", f.BinaryKeys)

	case ResStream:
		f.WriteMode = bits[0]
		cfg.SetToggle("write_mode", f.WriteMode)

	case ResProxy:
		f.InitSession = bits[0]
		cfg.SetToggle("init_session", f.InitSession)
	}

	return f, nil
}

// ResponseHeader mirrors RequestHeader for the response side: instead
// of a bucket ID it carries request_counter, correlating this response
// back to the request it answers.
type ResponseHeader struct {
	Type  ResponsePacketType
	Flags ResponseHeaderFlags

	// RequestCounter is present iff !fire_and_forget.
	RequestCounter *uint16
}

func EncodeResponseHeader(w *bitio.Writer, h *ResponseHeader, cfg *schema.Config) error {
	w.WriteBits(uint64(h.Type), 4)
	encodeResponseFlags(w, h.Type, h.Flags, cfg)
	cfg.SetVariant("packet_type", int64(h.Type))

	if !cfg.Toggle("fire_and_forget") {
		if h.RequestCounter == nil {
			return bitio.NewError(bitio.ErrLengthMismatch, "request_counter required unless fire_and_forget")
		}
		w.WriteFixedUint(uint64(*h.RequestCounter), 16)
	}
	return nil
}

func DecodeResponseHeader(r *bitio.Reader, cfg *schema.Config) (*ResponseHeader, error) {
	typ, err := r.ReadBits(4)
	if err != nil {
		return nil, err
	}
	h := &ResponseHeader{Type: ResponsePacketType(typ)}

	h.Flags, err = decodeResponseFlags(r, h.Type, cfg)
	if err != nil {
		return nil, err
	}
	cfg.SetVariant("packet_type", int64(h.Type))

	if !cfg.Toggle("fire_and_forget") {
		counter, err := r.ReadFixedUint(16)
		if err != nil {
			return nil, err
		}
		c := uint16(counter)
		h.RequestCounter = &c
	}

	return h, nil
}

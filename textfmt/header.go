package textfmt

import (
	"rubin.dev/plabble/core"
	"rubin.dev/plabble/packet"
)

// headerDoc is the union of every request- and response-side header
// flag name, in the vocabulary packet/header.go's toggles use. Only
// the fields relevant to PacketType are read; the rest are left at
// their zero value and simply omitted from rendered output.
type headerDoc struct {
	PacketType string  `toml:"packet_type"`
	BucketID   *string `toml:"bucket_id,omitempty"`

	// response-only
	RequestCounter *uint16 `toml:"request_counter,omitempty"`

	FullCerts bool `toml:"full_certs,omitempty"`
	Challenge bool `toml:"challenge,omitempty"`
	QueryMode bool `toml:"query_mode,omitempty"`

	PersistKey bool `toml:"persist_key,omitempty"`
	ClientSalt bool `toml:"client_salt,omitempty"`

	KeyPersisted bool `toml:"key_persisted,omitempty"`
	ServerSalt   bool `toml:"server_salt,omitempty"`

	BinaryKeys bool `toml:"binary_keys,omitempty"`
	WriteMode  bool `toml:"write_mode,omitempty"`
	Subscribe  bool `toml:"subscribe,omitempty"`

	UpdatePermissions bool `toml:"update_perm,omitempty"`
	AddToACL          bool `toml:"acl_add,omitempty"`
	RemoveFromACL     bool `toml:"acl_del,omitempty"`

	InitSession      bool `toml:"init_session,omitempty"`
	SelectRandomHops bool `toml:"random_hops,omitempty"`

	Flag1 bool `toml:"flag1,omitempty"`
	Flag2 bool `toml:"flag2,omitempty"`
	Flag3 bool `toml:"flag3,omitempty"`
	Flag4 bool `toml:"flag4,omitempty"`
}

var requestTypeNames = map[packet.RequestPacketType]string{
	packet.ReqCertificate: "Certificate",
	packet.ReqSession:     "Session",
	packet.ReqGet:         "Get",
	packet.ReqStream:      "Stream",
	packet.ReqPost:        "Post",
	packet.ReqPatch:       "Patch",
	packet.ReqPut:         "Put",
	packet.ReqDelete:      "Delete",
	packet.ReqSubscribe:   "Subscribe",
	packet.ReqUnsubscribe: "Unsubscribe",
	packet.ReqRegister:    "Register",
	packet.ReqIdentify:    "Identify",
	packet.ReqProxy:       "Proxy",
	packet.ReqCustom:      "Custom",
	packet.ReqOpcode:      "Opcode",
}

var responseTypeNames = map[packet.ResponsePacketType]string{
	packet.ResCertificate:  "Certificate",
	packet.ResSession:      "Session",
	packet.ResGet:          "Get",
	packet.ResStream:       "Stream",
	packet.ResPost:         "Post",
	packet.ResPatch:        "Patch",
	packet.ResPut:          "Put",
	packet.ResDelete:       "Delete",
	packet.ResSubscribe:    "Subscribe",
	packet.ResUnsubscribe:  "Unsubscribe",
	packet.ResRegister:     "Register",
	packet.ResIdentify:     "Identify",
	packet.ResProxy:        "Proxy",
	packet.ResCustom:       "Custom",
	packet.ResOpcode:       "Opcode",
	packet.ResError:        "Error",
}

func requestTypeByName(name string) (packet.RequestPacketType, error) {
	for t, n := range requestTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, errUnknownType(name)
}

func responseTypeByName(name string) (packet.ResponsePacketType, error) {
	for t, n := range responseTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, errUnknownType(name)
}

func headerFromRequest(h *packet.RequestHeader) headerDoc {
	doc := headerDoc{PacketType: requestTypeNames[h.Type]}
	if h.BucketID != nil {
		s := h.BucketID.String()
		doc.BucketID = &s
	}
	f := h.Flags
	doc.FullCerts, doc.Challenge, doc.QueryMode = f.FullCerts, f.Challenge, f.QueryMode
	doc.PersistKey, doc.ClientSalt = f.PersistKey, f.ClientSalt
	doc.BinaryKeys, doc.WriteMode, doc.Subscribe = f.BinaryKeys, f.WriteMode, f.Subscribe
	doc.UpdatePermissions, doc.AddToACL, doc.RemoveFromACL = f.UpdatePermissions, f.AddToACL, f.RemoveFromACL
	doc.InitSession, doc.SelectRandomHops = f.InitSession, f.SelectRandomHops
	doc.Flag1, doc.Flag2, doc.Flag3, doc.Flag4 = f.Custom1, f.Custom2, f.Custom3, f.Custom4
	return doc
}

func headerToRequest(doc headerDoc) (*packet.RequestHeader, error) {
	t, err := requestTypeByName(doc.PacketType)
	if err != nil {
		return nil, err
	}
	h := &packet.RequestHeader{Type: t}
	if doc.BucketID != nil {
		id, err := core.ParseBucketId(*doc.BucketID)
		if err != nil {
			return nil, err
		}
		h.BucketID = &id
	}
	h.Flags = packet.RequestHeaderFlags{
		FullCerts: doc.FullCerts, Challenge: doc.Challenge, QueryMode: doc.QueryMode,
		PersistKey: doc.PersistKey, ClientSalt: doc.ClientSalt,
		BinaryKeys: doc.BinaryKeys, WriteMode: doc.WriteMode, Subscribe: doc.Subscribe,
		UpdatePermissions: doc.UpdatePermissions, AddToACL: doc.AddToACL, RemoveFromACL: doc.RemoveFromACL,
		InitSession: doc.InitSession, SelectRandomHops: doc.SelectRandomHops,
		Custom1: doc.Flag1, Custom2: doc.Flag2, Custom3: doc.Flag3, Custom4: doc.Flag4,
	}
	return h, nil
}

func headerFromResponse(h *packet.ResponseHeader) headerDoc {
	doc := headerDoc{PacketType: responseTypeNames[h.Type], RequestCounter: h.RequestCounter}
	f := h.Flags
	doc.KeyPersisted, doc.ServerSalt = f.KeyPersisted, f.ServerSalt
	doc.BinaryKeys, doc.WriteMode, doc.InitSession = f.BinaryKeys, f.WriteMode, f.InitSession
	return doc
}

func headerToResponse(doc headerDoc) (*packet.ResponseHeader, error) {
	t, err := responseTypeByName(doc.PacketType)
	if err != nil {
		return nil, err
	}
	h := &packet.ResponseHeader{Type: t, RequestCounter: doc.RequestCounter}
	h.Flags = packet.ResponseHeaderFlags{
		KeyPersisted: doc.KeyPersisted, ServerSalt: doc.ServerSalt,
		BinaryKeys: doc.BinaryKeys, WriteMode: doc.WriteMode, InitSession: doc.InitSession,
	}
	return h, nil
}

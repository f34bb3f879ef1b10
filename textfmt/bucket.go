package textfmt

import (
	"rubin.dev/plabble/packet"
)

type bucketRangeDoc struct {
	BinaryStart  *string `toml:"binary_start,omitempty"`
	BinaryEnd    *string `toml:"binary_end,omitempty"`
	NumericStart *uint16 `toml:"numeric_start,omitempty"`
	NumericEnd   *uint16 `toml:"numeric_end,omitempty"`
}

func bucketRangeToDoc(r *packet.BucketRange) bucketRangeDoc {
	return bucketRangeDoc{
		BinaryStart: r.BinaryStart, BinaryEnd: r.BinaryEnd,
		NumericStart: r.NumericStart, NumericEnd: r.NumericEnd,
	}
}

func bucketRangeFromDoc(doc bucketRangeDoc) *packet.BucketRange {
	return &packet.BucketRange{
		BinaryStart: doc.BinaryStart, BinaryEnd: doc.BinaryEnd,
		NumericStart: doc.NumericStart, NumericEnd: doc.NumericEnd,
	}
}

type bucketQueryDoc struct {
	Range bucketRangeDoc `toml:"range"`
}

func bucketQueryToDoc(q *packet.BucketQuery) bucketQueryDoc {
	return bucketQueryDoc{Range: bucketRangeToDoc(&q.Range)}
}

func bucketQueryFromDoc(doc bucketQueryDoc) *packet.BucketQuery {
	return &packet.BucketQuery{Range: *bucketRangeFromDoc(doc.Range)}
}

type bucketBodyDoc struct {
	Binary  map[string]string `toml:"binary,omitempty"`
	Numeric map[string]string `toml:"numeric,omitempty"`
}

func bucketBodyToDoc(b *packet.BucketBody) bucketBodyDoc {
	doc := bucketBodyDoc{}
	if b.Binary != nil {
		doc.Binary = make(map[string]string, len(b.Binary))
		for k, v := range b.Binary {
			doc.Binary[k] = byteString(v)
		}
	}
	if b.Numeric != nil {
		doc.Numeric = make(map[string]string, len(b.Numeric))
		for k, v := range b.Numeric {
			doc.Numeric[u16key(k)] = byteString(v)
		}
	}
	return doc
}

func bucketBodyFromDoc(doc bucketBodyDoc) (*packet.BucketBody, error) {
	b := &packet.BucketBody{}
	if doc.Binary != nil {
		b.Binary = make(map[string][]byte, len(doc.Binary))
		for k, v := range doc.Binary {
			raw, err := parseBytes(v)
			if err != nil {
				return nil, err
			}
			b.Binary[k] = raw
		}
	}
	if doc.Numeric != nil {
		b.Numeric = make(map[uint16][]byte, len(doc.Numeric))
		for k, v := range doc.Numeric {
			slot, err := parseU16Key(k)
			if err != nil {
				return nil, err
			}
			raw, err := parseBytes(v)
			if err != nil {
				return nil, err
			}
			b.Numeric[slot] = raw
		}
	}
	return b, nil
}

type bucketPermissionsDoc struct {
	PublicRead, PublicAppend, PublicWrite, PublicDelete, PublicScriptExecution bool

	ProtectedRead, ProtectedAppend, ProtectedWrite, ProtectedDelete, ProtectedScriptExecution, ProtectedBucketDelete bool

	PrivateRead, PrivateAppend, PrivateWrite, PrivateDelete, PrivateScriptExecution, PrivateBucketDelete bool

	DenyExistence bool
}

func bucketPermissionsToDoc(p packet.BucketPermissions) bucketPermissionsDoc {
	return bucketPermissionsDoc{
		PublicRead: p.PublicRead, PublicAppend: p.PublicAppend, PublicWrite: p.PublicWrite,
		PublicDelete: p.PublicDelete, PublicScriptExecution: p.PublicScriptExecution,
		ProtectedRead: p.ProtectedRead, ProtectedAppend: p.ProtectedAppend, ProtectedWrite: p.ProtectedWrite,
		ProtectedDelete: p.ProtectedDelete, ProtectedScriptExecution: p.ProtectedScriptExecution,
		ProtectedBucketDelete: p.ProtectedBucketDelete,
		PrivateRead:           p.PrivateRead, PrivateAppend: p.PrivateAppend, PrivateWrite: p.PrivateWrite,
		PrivateDelete: p.PrivateDelete, PrivateScriptExecution: p.PrivateScriptExecution,
		PrivateBucketDelete: p.PrivateBucketDelete,
		DenyExistence:       p.DenyExistence,
	}
}

func bucketPermissionsFromDoc(doc bucketPermissionsDoc) packet.BucketPermissions {
	return packet.BucketPermissions{
		PublicRead: doc.PublicRead, PublicAppend: doc.PublicAppend, PublicWrite: doc.PublicWrite,
		PublicDelete: doc.PublicDelete, PublicScriptExecution: doc.PublicScriptExecution,
		ProtectedRead: doc.ProtectedRead, ProtectedAppend: doc.ProtectedAppend, ProtectedWrite: doc.ProtectedWrite,
		ProtectedDelete: doc.ProtectedDelete, ProtectedScriptExecution: doc.ProtectedScriptExecution,
		ProtectedBucketDelete: doc.ProtectedBucketDelete,
		PrivateRead:           doc.PrivateRead, PrivateAppend: doc.PrivateAppend, PrivateWrite: doc.PrivateWrite,
		PrivateDelete: doc.PrivateDelete, PrivateScriptExecution: doc.PrivateScriptExecution,
		PrivateBucketDelete: doc.PrivateBucketDelete,
		DenyExistence:       doc.DenyExistence,
	}
}

type bucketSettingsDoc struct {
	Permissions bucketPermissionsDoc `toml:"permissions"`
	ACL         []string             `toml:"acl,omitempty"`
}

func bucketSettingsToDoc(s *packet.BucketSettings) bucketSettingsDoc {
	doc := bucketSettingsDoc{Permissions: bucketPermissionsToDoc(s.Permissions)}
	for _, id := range s.AccessControlList {
		doc.ACL = append(doc.ACL, byteString(id[:]))
	}
	return doc
}

func bucketSettingsFromDoc(doc bucketSettingsDoc) (*packet.BucketSettings, error) {
	s := &packet.BucketSettings{Permissions: bucketPermissionsFromDoc(doc.Permissions)}
	for _, entry := range doc.ACL {
		raw, err := parseBytesN(entry, 20)
		if err != nil {
			return nil, err
		}
		var id [20]byte
		copy(id[:], raw)
		s.AccessControlList = append(s.AccessControlList, id)
	}
	return s, nil
}

type postRequestDoc struct {
	Id       string          `toml:"id"`
	Settings bucketSettingsDoc `toml:"settings"`
	Range    *bucketRangeDoc `toml:"range,omitempty"`
}

func postRequestToDoc(b *packet.PostRequestBody) postRequestDoc {
	doc := postRequestDoc{Id: b.Id.String(), Settings: bucketSettingsToDoc(&b.Settings)}
	if b.Range != nil {
		rd := bucketRangeToDoc(b.Range)
		doc.Range = &rd
	}
	return doc
}

func postRequestFromDoc(doc postRequestDoc) (*packet.PostRequestBody, error) {
	id, err := parseBucketID(doc.Id)
	if err != nil {
		return nil, err
	}
	settings, err := bucketSettingsFromDoc(doc.Settings)
	if err != nil {
		return nil, err
	}
	b := &packet.PostRequestBody{Id: id, Settings: *settings}
	if doc.Range != nil {
		b.Range = bucketRangeFromDoc(*doc.Range)
	}
	return b, nil
}

type patchRequestDoc struct {
	Permissions *bucketPermissionsDoc `toml:"permissions,omitempty"`
	AclAdd      []string              `toml:"acl_add,omitempty"`
	AclDel      []string              `toml:"acl_del,omitempty"`
}

func patchRequestToDoc(b *packet.PatchRequestBody) patchRequestDoc {
	doc := patchRequestDoc{}
	if b.Permissions != nil {
		pd := bucketPermissionsToDoc(*b.Permissions)
		doc.Permissions = &pd
	}
	for _, id := range b.AclAdd {
		doc.AclAdd = append(doc.AclAdd, byteString(id[:]))
	}
	for _, id := range b.AclDel {
		doc.AclDel = append(doc.AclDel, byteString(id[:]))
	}
	return doc
}

func patchRequestFromDoc(doc patchRequestDoc) (*packet.PatchRequestBody, error) {
	b := &packet.PatchRequestBody{}
	if doc.Permissions != nil {
		p := bucketPermissionsFromDoc(*doc.Permissions)
		b.Permissions = &p
	}
	add, err := parseId16List(doc.AclAdd)
	if err != nil {
		return nil, err
	}
	b.AclAdd = add
	del, err := parseId16List(doc.AclDel)
	if err != nil {
		return nil, err
	}
	b.AclDel = del
	return b, nil
}

func parseId16List(entries []string) ([][16]byte, error) {
	var out [][16]byte
	for _, entry := range entries {
		raw, err := parseBytesN(entry, 16)
		if err != nil {
			return nil, err
		}
		var id [16]byte
		copy(id[:], raw)
		out = append(out, id)
	}
	return out, nil
}

type putRequestDoc struct {
	Range bucketRangeDoc `toml:"range"`
	Data  string         `toml:"data"`
}

func putRequestToDoc(b *packet.PutRequestBody) putRequestDoc {
	return putRequestDoc{Range: bucketRangeToDoc(&b.Range), Data: byteString(b.Data)}
}

func putRequestFromDoc(doc putRequestDoc) (*packet.PutRequestBody, error) {
	data, err := parseBytes(doc.Data)
	if err != nil {
		return nil, err
	}
	return &packet.PutRequestBody{Range: *bucketRangeFromDoc(doc.Range), Data: data}, nil
}

package packet

import (
	"rubin.dev/plabble/bitio"
	"rubin.dev/plabble/core"
	"rubin.dev/plabble/schema"
)

// BucketRange selects a span of slots within a bucket, either by
// numeric slot index or by string key, picked externally by the
// binary_keys header flag (there is no in-band discriminator). Either
// bound may be omitted to mean "from the start" / "to the end".
type BucketRange struct {
	BinaryStart, BinaryEnd   *string
	NumericStart, NumericEnd *uint16
}

func encodeOptionalString(w *bitio.Writer, s *string) error {
	w.WriteBool(s != nil)
	if s == nil {
		return nil
	}
	return w.WriteDynLength([]byte(*s))
}

func decodeOptionalString(r *bitio.Reader) (*string, error) {
	present, err := r.ReadBool()
	if err != nil || !present {
		return nil, err
	}
	b, err := r.ReadDynLength()
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

func encodeOptionalU16(w *bitio.Writer, v *uint16) {
	w.WriteBool(v != nil)
	if v != nil {
		w.WriteFixedUint(uint64(*v), 16)
	}
}

func decodeOptionalU16(r *bitio.Reader) (*uint16, error) {
	present, err := r.ReadBool()
	if err != nil || !present {
		return nil, err
	}
	v, err := r.ReadFixedUint(16)
	if err != nil {
		return nil, err
	}
	u := uint16(v)
	return &u, nil
}

func EncodeBucketRange(w *bitio.Writer, rng *BucketRange, cfg *schema.Config) error {
	if cfg.MustToggledBy("binary_keys") {
		if err := encodeOptionalString(w, rng.BinaryStart); err != nil {
			return err
		}
		return encodeOptionalString(w, rng.BinaryEnd)
	}
	encodeOptionalU16(w, rng.NumericStart)
	encodeOptionalU16(w, rng.NumericEnd)
	return nil
}

func DecodeBucketRange(r *bitio.Reader, cfg *schema.Config) (*BucketRange, error) {
	rng := &BucketRange{}
	var err error
	if cfg.MustToggledBy("binary_keys") {
		if rng.BinaryStart, err = decodeOptionalString(r); err != nil {
			return nil, err
		}
		if rng.BinaryEnd, err = decodeOptionalString(r); err != nil {
			return nil, err
		}
		return rng, nil
	}
	if rng.NumericStart, err = decodeOptionalU16(r); err != nil {
		return nil, err
	}
	if rng.NumericEnd, err = decodeOptionalU16(r); err != nil {
		return nil, err
	}
	return rng, nil
}

// BucketQuery is the GET/DELETE/SUBSCRIBE/UNSUBSCRIBE request body: the
// bucket ID itself lives in the header, so the body holds only the
// range of slots being addressed within it.
type BucketQuery struct {
	Range BucketRange
}

func EncodeBucketQuery(w *bitio.Writer, q *BucketQuery, cfg *schema.Config) error {
	return EncodeBucketRange(w, &q.Range, cfg)
}

func DecodeBucketQuery(r *bitio.Reader, cfg *schema.Config) (*BucketQuery, error) {
	rng, err := DecodeBucketRange(r, cfg)
	if err != nil {
		return nil, err
	}
	return &BucketQuery{Range: *rng}, nil
}

// BucketBody is the GET response payload: a binary- or
// numeric-keyed map of slot data, selected by the binary_keys flag. It
// is encoded with an explicit entry count (unlike a certificate list,
// which runs to end of input) since it is never the sole trailing
// field of its containing packet.
type BucketBody struct {
	Binary  map[string][]byte
	Numeric map[uint16][]byte
}

func EncodeBucketBody(w *bitio.Writer, b *BucketBody, cfg *schema.Config) error {
	if cfg.MustToggledBy("binary_keys") {
		if len(b.Binary) > 255 {
			return bitio.NewError(bitio.ErrLengthMismatch, "bucket body: too many binary entries")
		}
		w.WriteBits(uint64(len(b.Binary)), 8)
		for k, v := range b.Binary {
			if err := w.WriteDynLength([]byte(k)); err != nil {
				return err
			}
			if err := w.WriteDynLength(v); err != nil {
				return err
			}
		}
		return nil
	}
	if len(b.Numeric) > 255 {
		return bitio.NewError(bitio.ErrLengthMismatch, "bucket body: too many numeric entries")
	}
	w.WriteBits(uint64(len(b.Numeric)), 8)
	for k, v := range b.Numeric {
		w.WriteFixedUint(uint64(k), 16)
		if err := w.WriteDynLength(v); err != nil {
			return err
		}
	}
	return nil
}

func DecodeBucketBody(r *bitio.Reader, cfg *schema.Config) (*BucketBody, error) {
	n, err := r.ReadBits(8)
	if err != nil {
		return nil, err
	}
	b := &BucketBody{}
	if cfg.MustToggledBy("binary_keys") {
		b.Binary = make(map[string][]byte, n)
		for i := uint64(0); i < n; i++ {
			k, err := r.ReadDynLength()
			if err != nil {
				return nil, err
			}
			v, err := r.ReadDynLength()
			if err != nil {
				return nil, err
			}
			b.Binary[string(k)] = v
		}
		return b, nil
	}
	b.Numeric = make(map[uint16][]byte, n)
	for i := uint64(0); i < n; i++ {
		k, err := r.ReadFixedUint(16)
		if err != nil {
			return nil, err
		}
		v, err := r.ReadDynLength()
		if err != nil {
			return nil, err
		}
		b.Numeric[uint16(k)] = v
	}
	return b, nil
}

// BucketPermissions is the three-tier access control bitset a bucket
// carries: public (anyone), protected (authenticated users), and
// private (the bucket key holder only). Eighteen flags packed into
// three bytes, six trailing bits reserved.
type BucketPermissions struct {
	PublicRead            bool
	PublicAppend          bool
	PublicWrite           bool
	PublicDelete          bool
	PublicScriptExecution bool

	ProtectedRead            bool
	ProtectedAppend          bool
	ProtectedWrite           bool
	ProtectedDelete          bool
	ProtectedScriptExecution bool
	ProtectedBucketDelete    bool

	PrivateRead            bool
	PrivateAppend          bool
	PrivateWrite           bool
	PrivateDelete          bool
	PrivateScriptExecution bool
	PrivateBucketDelete    bool

	DenyExistence bool
}

// DefaultBucketPermissions matches the original's per-field defaults:
// every *Read flag plus private append, write, delete and bucket-delete
// default true.
func DefaultBucketPermissions() BucketPermissions {
	return BucketPermissions{
		PublicRead:          true,
		ProtectedRead:       true,
		PrivateRead:         true,
		PrivateAppend:       true,
		PrivateWrite:        true,
		PrivateDelete:       true,
		PrivateBucketDelete: true,
	}
}

func EncodeBucketPermissions(w *bitio.Writer, p BucketPermissions) {
	for _, b := range []bool{
		p.PublicRead, p.PublicAppend, p.PublicWrite, p.PublicDelete, p.PublicScriptExecution,
		p.ProtectedRead, p.ProtectedAppend, p.ProtectedWrite, p.ProtectedDelete, p.ProtectedScriptExecution, p.ProtectedBucketDelete,
		p.PrivateRead, p.PrivateAppend, p.PrivateWrite, p.PrivateDelete, p.PrivateScriptExecution, p.PrivateBucketDelete,
		p.DenyExistence,
	} {
		w.WriteBool(b)
	}
	w.WriteBits(0, 6)
}

func DecodeBucketPermissions(r *bitio.Reader) (BucketPermissions, error) {
	var p BucketPermissions
	fields := []*bool{
		&p.PublicRead, &p.PublicAppend, &p.PublicWrite, &p.PublicDelete, &p.PublicScriptExecution,
		&p.ProtectedRead, &p.ProtectedAppend, &p.ProtectedWrite, &p.ProtectedDelete, &p.ProtectedScriptExecution, &p.ProtectedBucketDelete,
		&p.PrivateRead, &p.PrivateAppend, &p.PrivateWrite, &p.PrivateDelete, &p.PrivateScriptExecution, &p.PrivateBucketDelete,
		&p.DenyExistence,
	}
	for _, f := range fields {
		v, err := r.ReadBool()
		if err != nil {
			return p, err
		}
		*f = v
	}
	if _, err := r.ReadBits(6); err != nil {
		return p, err
	}
	return p, nil
}

// BucketSettings bundles a bucket's permissions with the access
// control list of user IDs that receive protected-tier access.
type BucketSettings struct {
	Permissions       BucketPermissions
	AccessControlList [][20]byte
}

func EncodeBucketSettings(w *bitio.Writer, s *BucketSettings) error {
	EncodeBucketPermissions(w, s.Permissions)
	if len(s.AccessControlList) > 255 {
		return bitio.NewError(bitio.ErrLengthMismatch, "access control list too large")
	}
	w.WriteBits(uint64(len(s.AccessControlList)), 8)
	for _, id := range s.AccessControlList {
		w.WriteBytes(id[:])
	}
	return nil
}

func DecodeBucketSettings(r *bitio.Reader) (*BucketSettings, error) {
	perms, err := DecodeBucketPermissions(r)
	if err != nil {
		return nil, err
	}
	n, err := r.ReadBits(8)
	if err != nil {
		return nil, err
	}
	s := &BucketSettings{Permissions: perms}
	for i := uint64(0); i < n; i++ {
		idBytes, err := r.ReadBytes(20)
		if err != nil {
			return nil, err
		}
		var id [20]byte
		copy(id[:], idBytes)
		s.AccessControlList = append(s.AccessControlList, id)
	}
	return s, nil
}

// PostRequestBody creates a new bucket under a client-chosen ID with
// the given settings, optionally subscribing to it immediately.
type PostRequestBody struct {
	Id       core.BucketId
	Settings BucketSettings
	Range    *BucketRange // present iff header flag subscribe
}

func EncodePostRequestBody(w *bitio.Writer, b *PostRequestBody, cfg *schema.Config) error {
	w.WriteBytes(b.Id.Bytes())
	if err := EncodeBucketSettings(w, &b.Settings); err != nil {
		return err
	}
	if cfg.MustToggledBy("subscribe") {
		if b.Range == nil {
			return bitio.NewError(bitio.ErrLengthMismatch, "subscribe set but range missing")
		}
		return EncodeBucketRange(w, b.Range, cfg)
	}
	return nil
}

func DecodePostRequestBody(r *bitio.Reader, cfg *schema.Config) (*PostRequestBody, error) {
	idBytes, err := r.ReadBytes(16)
	if err != nil {
		return nil, err
	}
	var id core.BucketId
	copy(id[:], idBytes)

	settings, err := DecodeBucketSettings(r)
	if err != nil {
		return nil, err
	}
	b := &PostRequestBody{Id: id, Settings: *settings}

	if cfg.MustToggledBy("subscribe") {
		rng, err := DecodeBucketRange(r, cfg)
		if err != nil {
			return nil, err
		}
		b.Range = rng
	}
	return b, nil
}

// PatchRequestBody changes a bucket's permissions and/or ACL. Not
// grounded in the retrieved Rust source beyond the toggled_by names
// (update_perm, acl_add, acl_del); the ACL entries here use 16-byte
// user/certificate IDs, matching the original's field-level annotation
// even though BucketSettings's own ACL uses 20-byte entries.
type PatchRequestBody struct {
	Permissions *BucketPermissions // present iff header flag update_perm
	AclAdd      [][16]byte         // present iff header flag acl_add
	AclDel      [][16]byte         // present iff header flag acl_del
}

func EncodePatchRequestBody(w *bitio.Writer, b *PatchRequestBody, cfg *schema.Config) error {
	if cfg.MustToggledBy("update_perm") {
		if b.Permissions == nil {
			return bitio.NewError(bitio.ErrLengthMismatch, "update_perm set but permissions missing")
		}
		EncodeBucketPermissions(w, *b.Permissions)
	}
	if cfg.MustToggledBy("acl_add") {
		if err := encodeIdList(w, b.AclAdd); err != nil {
			return err
		}
	}
	if cfg.MustToggledBy("acl_del") {
		if err := encodeIdList(w, b.AclDel); err != nil {
			return err
		}
	}
	return nil
}

func DecodePatchRequestBody(r *bitio.Reader, cfg *schema.Config) (*PatchRequestBody, error) {
	b := &PatchRequestBody{}
	if cfg.MustToggledBy("update_perm") {
		perms, err := DecodeBucketPermissions(r)
		if err != nil {
			return nil, err
		}
		b.Permissions = &perms
	}
	if cfg.MustToggledBy("acl_add") {
		ids, err := decodeIdList(r)
		if err != nil {
			return nil, err
		}
		b.AclAdd = ids
	}
	if cfg.MustToggledBy("acl_del") {
		ids, err := decodeIdList(r)
		if err != nil {
			return nil, err
		}
		b.AclDel = ids
	}
	return b, nil
}

func encodeIdList(w *bitio.Writer, ids [][16]byte) error {
	if len(ids) > 255 {
		return bitio.NewError(bitio.ErrLengthMismatch, "id list too large")
	}
	w.WriteBits(uint64(len(ids)), 8)
	for _, id := range ids {
		w.WriteBytes(id[:])
	}
	return nil
}

func decodeIdList(r *bitio.Reader) ([][16]byte, error) {
	n, err := r.ReadBits(8)
	if err != nil {
		return nil, err
	}
	out := make([][16]byte, 0, n)
	for i := uint64(0); i < n; i++ {
		b, err := r.ReadBytes(16)
		if err != nil {
			return nil, err
		}
		var id [16]byte
		copy(id[:], b)
		out = append(out, id)
	}
	return out, nil
}

// PutRequestBody overwrites a bucket slot's entire value in one shot.
// Not grounded (no put.rs was retrieved); modeled after the STREAM
// request's write path but without the streaming offset/length, since
// PUT replaces a whole value rather than splicing part of one.
type PutRequestBody struct {
	Range BucketRange
	Data  []byte // last field: consumes to end of input, no length prefix
}

func EncodePutRequestBody(w *bitio.Writer, b *PutRequestBody, cfg *schema.Config) error {
	if err := EncodeBucketRange(w, &b.Range, cfg); err != nil {
		return err
	}
	w.WriteBytes(b.Data)
	return nil
}

func DecodePutRequestBody(r *bitio.Reader, cfg *schema.Config) (*PutRequestBody, error) {
	rng, err := DecodeBucketRange(r, cfg)
	if err != nil {
		return nil, err
	}
	data, err := r.ReadBytes(r.RemainingBytes())
	if err != nil {
		return nil, err
	}
	return &PutRequestBody{Range: *rng, Data: data}, nil
}

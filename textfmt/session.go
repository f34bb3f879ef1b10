package textfmt

import "rubin.dev/plabble/packet"

type sessionRequestDoc struct {
	PskExpiration *uint32           `toml:"psk_expiration,omitempty"`
	Salt          *string           `toml:"salt,omitempty"`
	Keys          map[string]string `toml:"keys,omitempty"`
}

func sessionRequestToDoc(b *packet.SessionRequestBody) sessionRequestDoc {
	doc := sessionRequestDoc{PskExpiration: b.PskExpiration, Keys: kexRequestsToDoc(b.Keys)}
	if b.Salt != nil {
		s := byteString(b.Salt[:])
		doc.Salt = &s
	}
	return doc
}

func sessionRequestFromDoc(doc sessionRequestDoc) (*packet.SessionRequestBody, error) {
	b := &packet.SessionRequestBody{PskExpiration: doc.PskExpiration}
	if doc.Salt != nil {
		raw, err := parseBytesN(*doc.Salt, 16)
		if err != nil {
			return nil, err
		}
		var salt [16]byte
		copy(salt[:], raw)
		b.Salt = &salt
	}
	keys, err := kexRequestsFromDoc(doc.Keys)
	if err != nil {
		return nil, err
	}
	b.Keys = keys
	return b, nil
}

type sessionResponseDoc struct {
	PskId      *string           `toml:"psk_id,omitempty"`
	Salt       *string           `toml:"salt,omitempty"`
	Keys       map[string]string `toml:"keys,omitempty"`
	Signatures map[string]string `toml:"signatures,omitempty"`
}

func sessionResponseToDoc(b *packet.SessionResponseBody) sessionResponseDoc {
	doc := sessionResponseDoc{
		Keys:       kexResponsesToDoc(b.Keys),
		Signatures: keyedValuesToDoc(b.Signatures),
	}
	if b.PskId != nil {
		s := byteString(b.PskId[:])
		doc.PskId = &s
	}
	if b.Salt != nil {
		s := byteString(b.Salt[:])
		doc.Salt = &s
	}
	return doc
}

func sessionResponseFromDoc(doc sessionResponseDoc) (*packet.SessionResponseBody, error) {
	b := &packet.SessionResponseBody{}
	if doc.PskId != nil {
		raw, err := parseBytesN(*doc.PskId, 12)
		if err != nil {
			return nil, err
		}
		var id [12]byte
		copy(id[:], raw)
		b.PskId = &id
	}
	if doc.Salt != nil {
		raw, err := parseBytesN(*doc.Salt, 16)
		if err != nil {
			return nil, err
		}
		var salt [16]byte
		copy(salt[:], raw)
		b.Salt = &salt
	}
	keys, err := kexResponsesFromDoc(doc.Keys)
	if err != nil {
		return nil, err
	}
	b.Keys = keys
	sigs, err := keyedValuesFromDoc(doc.Signatures)
	if err != nil {
		return nil, err
	}
	b.Signatures = sigs
	return b, nil
}

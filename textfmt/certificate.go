package textfmt

import (
	"rubin.dev/plabble/certificate"
	"rubin.dev/plabble/core"
)

type certificateDoc struct {
	FullCert bool    `toml:"full_cert"`
	RootCert bool    `toml:"root_cert"`
	Id       string  `toml:"id"`
	Uri      string  `toml:"uri"`
	Body     *bodyDocCert `toml:"body,omitempty"`
}

type bodyDocCert struct {
	ValidFrom  uint32            `toml:"valid_from"`
	ValidUntil uint32            `toml:"valid_until"`
	IssuerURI  *string           `toml:"issuer_uri,omitempty"`
	Data       string            `toml:"data"`
	Keys       map[string]string `toml:"keys,omitempty"`
	Signatures map[string]string `toml:"signatures,omitempty"`
}

func certificateToDoc(c *certificate.Certificate) certificateDoc {
	doc := certificateDoc{
		FullCert: c.FullCert,
		RootCert: c.RootCert,
		Id:       byteString(c.Id[:]),
		Uri:      c.Uri,
	}
	if c.Body != nil {
		doc.Body = &bodyDocCert{
			ValidFrom:  c.Body.ValidFrom.Seconds(),
			ValidUntil: c.Body.ValidUntil.Seconds(),
			IssuerURI:  c.Body.IssuerURI,
			Data:       c.Body.Data,
			Keys:       keyedValuesToDoc(c.Body.Keys),
			Signatures: keyedValuesToDoc(c.Body.Signatures),
		}
	}
	return doc
}

func certificateFromDoc(doc certificateDoc) (*certificate.Certificate, error) {
	idBytes, err := parseBytesN(doc.Id, 16)
	if err != nil {
		return nil, err
	}
	c := &certificate.Certificate{FullCert: doc.FullCert, RootCert: doc.RootCert, Uri: doc.Uri}
	copy(c.Id[:], idBytes)

	if doc.Body != nil {
		keys, err := keyedValuesFromDoc(doc.Body.Keys)
		if err != nil {
			return nil, err
		}
		sigs, err := keyedValuesFromDoc(doc.Body.Signatures)
		if err != nil {
			return nil, err
		}
		c.Body = &certificate.Body{
			ValidFrom:  core.FromSeconds(doc.Body.ValidFrom),
			ValidUntil: core.FromSeconds(doc.Body.ValidUntil),
			IssuerURI:  doc.Body.IssuerURI,
			Data:       doc.Body.Data,
			Keys:       keys,
			Signatures: sigs,
		}
	}
	return c, nil
}

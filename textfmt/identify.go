package textfmt

import (
	"rubin.dev/plabble/core"
	"rubin.dev/plabble/packet"
)

type identifyRequestDoc struct {
	Timestamp    uint32            `toml:"timestamp"`
	Signatures   map[string]string `toml:"signatures,omitempty"`
	Certificates []certificateDoc  `toml:"certificates,omitempty"`
}

func identifyRequestToDoc(b *packet.IdentifyRequestBody) identifyRequestDoc {
	doc := identifyRequestDoc{
		Timestamp:  b.Timestamp.Seconds(),
		Signatures: keyedValuesToDoc(b.Signatures),
	}
	for i := range b.Certificates {
		doc.Certificates = append(doc.Certificates, certificateToDoc(&b.Certificates[i]))
	}
	return doc
}

func identifyRequestFromDoc(doc identifyRequestDoc) (*packet.IdentifyRequestBody, error) {
	sigs, err := keyedValuesFromDoc(doc.Signatures)
	if err != nil {
		return nil, err
	}
	b := &packet.IdentifyRequestBody{
		Timestamp:  core.FromSeconds(doc.Timestamp),
		Signatures: sigs,
	}
	for _, cd := range doc.Certificates {
		cert, err := certificateFromDoc(cd)
		if err != nil {
			return nil, err
		}
		b.Certificates = append(b.Certificates, *cert)
	}
	return b, nil
}

package textfmt

import (
	"rubin.dev/plabble/bitio"
	"rubin.dev/plabble/packet"
	"rubin.dev/plabble/script"
)

type customBodyDoc struct {
	Protocol uint16 `toml:"protocol"`
	Data     string `toml:"data"`
}

func customBodyToDoc(b *packet.CustomBody) customBodyDoc {
	return customBodyDoc{Protocol: b.Protocol, Data: byteString(b.Data)}
}

func customBodyFromDoc(doc customBodyDoc) (*packet.CustomBody, error) {
	data, err := parseBytes(doc.Data)
	if err != nil {
		return nil, err
	}
	return &packet.CustomBody{Protocol: doc.Protocol, Data: data}, nil
}

// opcodeRequestDoc renders an Opcode Script program as base64 of its
// own wire encoding rather than unpacking every instruction into TOML:
// the bytecode is already the program's natural textual-adjacent form
// (the teacher's own opcode disassembler works from these same bytes).
type opcodeRequestDoc struct {
	Id     string `toml:"id"`
	Script string `toml:"script"`
}

func opcodeRequestToDoc(b *packet.OpcodeRequestBody) (opcodeRequestDoc, error) {
	w := bitio.NewWriter()
	if err := script.Encode(w, b.Script); err != nil {
		return opcodeRequestDoc{}, err
	}
	return opcodeRequestDoc{Id: b.Id.String(), Script: byteString(w.Bytes())}, nil
}

func opcodeRequestFromDoc(doc opcodeRequestDoc) (*packet.OpcodeRequestBody, error) {
	id, err := parseBucketID(doc.Id)
	if err != nil {
		return nil, err
	}
	raw, err := parseBytes(doc.Script)
	if err != nil {
		return nil, err
	}
	r := bitio.NewReader(raw)
	s, err := script.Decode(r)
	if err != nil {
		return nil, err
	}
	return &packet.OpcodeRequestBody{Id: id, Script: s}, nil
}

type opcodeResponseDoc struct {
	Failed  bool     `toml:"failed"`
	Results []string `toml:"results,omitempty"`
}

func opcodeResponseToDoc(b *packet.OpCodeResponseBody) opcodeResponseDoc {
	doc := opcodeResponseDoc{Failed: b.Failed}
	for _, v := range b.Results {
		doc.Results = append(doc.Results, byteString(v))
	}
	return doc
}

func opcodeResponseFromDoc(doc opcodeResponseDoc) (*packet.OpCodeResponseBody, error) {
	b := &packet.OpCodeResponseBody{Failed: doc.Failed}
	for _, s := range doc.Results {
		raw, err := parseBytes(s)
		if err != nil {
			return nil, err
		}
		b.Results = append(b.Results, raw)
	}
	return b, nil
}

type errorBodyDoc struct {
	UnsupportedVersion   *unsupportedVersionDoc   `toml:"unsupported_version,omitempty"`
	UnsupportedAlgorithm *unsupportedAlgorithmDoc `toml:"unsupported_algorithm,omitempty"`
}

type unsupportedVersionDoc struct {
	MinVersion uint8 `toml:"min_version"`
	MaxVersion uint8 `toml:"max_version"`
}

type unsupportedAlgorithmDoc struct {
	Name string `toml:"name"`
}

func errorBodyToDoc(b *packet.ErrorBody) errorBodyDoc {
	doc := errorBodyDoc{}
	if b.UnsupportedVersion != nil {
		doc.UnsupportedVersion = &unsupportedVersionDoc{
			MinVersion: b.UnsupportedVersion.MinVersion, MaxVersion: b.UnsupportedVersion.MaxVersion,
		}
	}
	if b.UnsupportedAlgorithm != nil {
		doc.UnsupportedAlgorithm = &unsupportedAlgorithmDoc{Name: b.UnsupportedAlgorithm.Name}
	}
	return doc
}

func errorBodyFromDoc(doc errorBodyDoc) (*packet.ErrorBody, error) {
	b := &packet.ErrorBody{}
	if doc.UnsupportedVersion != nil {
		b.UnsupportedVersion = &packet.UnsupportedVersionError{
			MinVersion: doc.UnsupportedVersion.MinVersion, MaxVersion: doc.UnsupportedVersion.MaxVersion,
		}
	}
	if doc.UnsupportedAlgorithm != nil {
		b.UnsupportedAlgorithm = &packet.UnsupportedAlgorithmError{Name: doc.UnsupportedAlgorithm.Name}
	}
	if b.UnsupportedVersion == nil && b.UnsupportedAlgorithm == nil {
		return nil, bitio.NewError(bitio.ErrLengthMismatch, "error body: no variant set")
	}
	return b, nil
}

type certificateRequestDoc struct {
	Id        *string `toml:"id,omitempty"`
	Challenge *string `toml:"challenge,omitempty"`
}

func certificateRequestToDoc(b *packet.CertificateRequestBody) certificateRequestDoc {
	doc := certificateRequestDoc{}
	if b.Id != nil {
		s := byteString(b.Id[:])
		doc.Id = &s
	}
	if b.Challenge != nil {
		s := byteString(b.Challenge[:])
		doc.Challenge = &s
	}
	return doc
}

func certificateRequestFromDoc(doc certificateRequestDoc) (*packet.CertificateRequestBody, error) {
	b := &packet.CertificateRequestBody{}
	if doc.Id != nil {
		raw, err := parseBytesN(*doc.Id, 16)
		if err != nil {
			return nil, err
		}
		var id [16]byte
		copy(id[:], raw)
		b.Id = &id
	}
	if doc.Challenge != nil {
		raw, err := parseBytesN(*doc.Challenge, 16)
		if err != nil {
			return nil, err
		}
		var ch [16]byte
		copy(ch[:], raw)
		b.Challenge = &ch
	}
	return b, nil
}

type certificateResponseDoc struct {
	Signatures   map[string]string `toml:"signatures,omitempty"`
	Certificates []certificateDoc  `toml:"certificates,omitempty"`
}

func certificateResponseToDoc(b *packet.CertificateResponseBody) certificateResponseDoc {
	doc := certificateResponseDoc{Signatures: keyedValuesToDoc(b.Signatures)}
	for i := range b.Certificates {
		doc.Certificates = append(doc.Certificates, certificateToDoc(&b.Certificates[i]))
	}
	return doc
}

func certificateResponseFromDoc(doc certificateResponseDoc) (*packet.CertificateResponseBody, error) {
	sigs, err := keyedValuesFromDoc(doc.Signatures)
	if err != nil {
		return nil, err
	}
	b := &packet.CertificateResponseBody{Signatures: sigs}
	for _, cd := range doc.Certificates {
		cert, err := certificateFromDoc(cd)
		if err != nil {
			return nil, err
		}
		b.Certificates = append(b.Certificates, *cert)
	}
	return b, nil
}

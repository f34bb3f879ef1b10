package textfmt

import "rubin.dev/plabble/packet"

type registerRequestDoc struct {
	Keys   map[string]string `toml:"keys,omitempty"`
	Claims string            `toml:"claims"`
}

func registerRequestToDoc(b *packet.RegisterRequestBody) registerRequestDoc {
	return registerRequestDoc{Keys: keyedValuesToDoc(b.Keys), Claims: b.Claims}
}

func registerRequestFromDoc(doc registerRequestDoc) (*packet.RegisterRequestBody, error) {
	keys, err := keyedValuesFromDoc(doc.Keys)
	if err != nil {
		return nil, err
	}
	return &packet.RegisterRequestBody{Keys: keys, Claims: doc.Claims}, nil
}

type registerResponseDoc struct {
	Certificate certificateDoc `toml:"certificate"`
}

func registerResponseToDoc(b *packet.RegisterResponseBody) registerResponseDoc {
	return registerResponseDoc{Certificate: certificateToDoc(&b.Certificate)}
}

func registerResponseFromDoc(doc registerResponseDoc) (*packet.RegisterResponseBody, error) {
	cert, err := certificateFromDoc(doc.Certificate)
	if err != nil {
		return nil, err
	}
	return &packet.RegisterResponseBody{Certificate: *cert}, nil
}

package textfmt

import (
	"rubin.dev/plabble/certificate"
	"rubin.dev/plabble/kex"
)

func keyedValuesToDoc(values []certificate.KeyedValue) map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for _, v := range values {
		name := signingAlgorithmName(v.Algorithm)
		if name == "" {
			continue
		}
		out[name] = byteString(v.Bytes)
	}
	return out
}

func keyedValuesFromDoc(doc map[string]string) ([]certificate.KeyedValue, error) {
	var out []certificate.KeyedValue
	for name, encoded := range doc {
		algorithm, err := parseSigningAlgorithm(name)
		if err != nil {
			return nil, err
		}
		raw, err := parseBytes(encoded)
		if err != nil {
			return nil, err
		}
		out = append(out, certificate.KeyedValue{Algorithm: algorithm, Bytes: raw})
	}
	return out, nil
}

func kexRequestsToDoc(reqs []kex.Request) map[string]string {
	if len(reqs) == 0 {
		return nil
	}
	out := make(map[string]string, len(reqs))
	for _, r := range reqs {
		name := kexAlgorithmName(r.Algorithm)
		if name == "" {
			continue
		}
		out[name] = byteString(r.Bytes)
	}
	return out
}

func kexRequestsFromDoc(doc map[string]string) ([]kex.Request, error) {
	var out []kex.Request
	for name, encoded := range doc {
		algorithm, err := parseKexAlgorithm(name)
		if err != nil {
			return nil, err
		}
		raw, err := parseBytes(encoded)
		if err != nil {
			return nil, err
		}
		out = append(out, kex.Request{Algorithm: algorithm, Bytes: raw})
	}
	return out, nil
}

func kexResponsesToDoc(resps []kex.Response) map[string]string {
	if len(resps) == 0 {
		return nil
	}
	out := make(map[string]string, len(resps))
	for _, r := range resps {
		name := kexAlgorithmName(r.Algorithm)
		if name == "" {
			continue
		}
		out[name] = byteString(r.Bytes)
	}
	return out
}

func kexResponsesFromDoc(doc map[string]string) ([]kex.Response, error) {
	var out []kex.Response
	for name, encoded := range doc {
		algorithm, err := parseKexAlgorithm(name)
		if err != nil {
			return nil, err
		}
		raw, err := parseBytes(encoded)
		if err != nil {
			return nil, err
		}
		out = append(out, kex.Response{Algorithm: algorithm, Bytes: raw})
	}
	return out, nil
}

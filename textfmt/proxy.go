package textfmt

import "rubin.dev/plabble/packet"

type proxyTunnelDoc struct {
	TunnelId uint32 `toml:"tunnel_id"`
	Packet   string `toml:"packet"`
}

type proxyInitializeRequestDoc struct {
	Target   string            `toml:"target"`
	HopCount uint8             `toml:"hop_count"`
	Via      []string          `toml:"via,omitempty"`
	Keys     map[string]string `toml:"keys,omitempty"`
}

type proxyRequestDoc struct {
	Tunnel     *proxyTunnelDoc            `toml:"tunnel,omitempty"`
	Initialize *proxyInitializeRequestDoc `toml:"initialize,omitempty"`
}

func proxyRequestToDoc(b *packet.ProxyRequestBody) proxyRequestDoc {
	doc := proxyRequestDoc{}
	if b.Tunnel != nil {
		doc.Tunnel = &proxyTunnelDoc{TunnelId: b.Tunnel.TunnelId, Packet: byteString(b.Tunnel.Packet)}
	}
	if b.Initialize != nil {
		doc.Initialize = &proxyInitializeRequestDoc{
			Target: b.Initialize.Target, HopCount: b.Initialize.HopCount,
			Via: b.Initialize.Via, Keys: kexRequestsToDoc(b.Initialize.Keys),
		}
	}
	return doc
}

func proxyRequestFromDoc(doc proxyRequestDoc) (*packet.ProxyRequestBody, error) {
	b := &packet.ProxyRequestBody{}
	if doc.Tunnel != nil {
		raw, err := parseBytes(doc.Tunnel.Packet)
		if err != nil {
			return nil, err
		}
		b.Tunnel = &packet.ProxyTunnel{TunnelId: doc.Tunnel.TunnelId, Packet: raw}
	}
	if doc.Initialize != nil {
		keys, err := kexRequestsFromDoc(doc.Initialize.Keys)
		if err != nil {
			return nil, err
		}
		b.Initialize = &packet.ProxyInitializeRequest{
			Target: doc.Initialize.Target, HopCount: doc.Initialize.HopCount,
			Via: doc.Initialize.Via, Keys: keys,
		}
	}
	return b, nil
}

type hopInfoDoc struct {
	Keys       map[string]string `toml:"keys,omitempty"`
	Signatures map[string]string `toml:"signatures,omitempty"`
}

func hopInfoToDoc(h *packet.HopInfo) hopInfoDoc {
	return hopInfoDoc{Keys: kexResponsesToDoc(h.Keys), Signatures: keyedValuesToDoc(h.Signatures)}
}

func hopInfoFromDoc(doc hopInfoDoc) (*packet.HopInfo, error) {
	keys, err := kexResponsesFromDoc(doc.Keys)
	if err != nil {
		return nil, err
	}
	sigs, err := keyedValuesFromDoc(doc.Signatures)
	if err != nil {
		return nil, err
	}
	return &packet.HopInfo{Keys: keys, Signatures: sigs}, nil
}

type proxyInitializeResponseDoc struct {
	TunnelId uint32                `toml:"tunnel_id"`
	Hops     map[string]hopInfoDoc `toml:"hops,omitempty"`
}

type proxyResponseDoc struct {
	Tunnel     *proxyTunnelDoc             `toml:"tunnel,omitempty"`
	Initialize *proxyInitializeResponseDoc `toml:"initialize,omitempty"`
}

func proxyResponseToDoc(b *packet.ProxyResponseBody) proxyResponseDoc {
	doc := proxyResponseDoc{}
	if b.Tunnel != nil {
		doc.Tunnel = &proxyTunnelDoc{TunnelId: b.Tunnel.TunnelId, Packet: byteString(b.Tunnel.Packet)}
	}
	if b.Initialize != nil {
		hops := make(map[string]hopInfoDoc, len(b.Initialize.Hops))
		for name, hop := range b.Initialize.Hops {
			h := hop
			hops[name] = hopInfoToDoc(&h)
		}
		doc.Initialize = &proxyInitializeResponseDoc{TunnelId: b.Initialize.TunnelId, Hops: hops}
	}
	return doc
}

func proxyResponseFromDoc(doc proxyResponseDoc) (*packet.ProxyResponseBody, error) {
	b := &packet.ProxyResponseBody{}
	if doc.Tunnel != nil {
		raw, err := parseBytes(doc.Tunnel.Packet)
		if err != nil {
			return nil, err
		}
		b.Tunnel = &packet.ProxyTunnelResponse{TunnelId: doc.Tunnel.TunnelId, Packet: raw}
	}
	if doc.Initialize != nil {
		hops := make(map[string]packet.HopInfo, len(doc.Initialize.Hops))
		for name, hd := range doc.Initialize.Hops {
			hop, err := hopInfoFromDoc(hd)
			if err != nil {
				return nil, err
			}
			hops[name] = *hop
		}
		b.Initialize = &packet.ProxyInitializeResponse{TunnelId: doc.Initialize.TunnelId, Hops: hops}
	}
	return b, nil
}

package packet

import (
	"rubin.dev/plabble/bitio"
	"rubin.dev/plabble/certificate"
	"rubin.dev/plabble/kex"
	"rubin.dev/plabble/schema"
)

// ProxyRequestBody is selected by the init_session header flag: a
// Tunnel send through an already-established route, or an Initialize
// request opening a new one.
type ProxyRequestBody struct {
	Tunnel     *ProxyTunnel
	Initialize *ProxyInitializeRequest
}

type ProxyTunnel struct {
	TunnelId uint32
	Packet   []byte // last field: consumes to end
}

type ProxyInitializeRequest struct {
	Target  string
	HopCount uint8
	Via      []string // present iff !random_hops, exactly HopCount entries
	Keys     []kex.Request
}

func EncodeProxyRequestBody(w *bitio.Writer, b *ProxyRequestBody, cfg *schema.Config) error {
	if cfg.MustToggledBy("init_session") {
		init := b.Initialize
		if init == nil {
			return bitio.NewError(bitio.ErrLengthMismatch, "init_session set but Initialize missing")
		}
		if err := w.WriteDynLength([]byte(init.Target)); err != nil {
			return err
		}
		w.WriteBits(uint64(init.HopCount), 8)
		if !cfg.MustToggledBy("random_hops") {
			if len(init.Via) != int(init.HopCount) {
				return bitio.NewError(bitio.ErrLengthMismatch, "via must have exactly hop_count entries")
			}
			for _, hop := range init.Via {
				if err := w.WriteDynLength([]byte(hop)); err != nil {
					return err
				}
			}
		}
		return EncodeKeyExchangeRequests(w, init.Keys, cfg)
	}

	tunnel := b.Tunnel
	if tunnel == nil {
		return bitio.NewError(bitio.ErrLengthMismatch, "!init_session but Tunnel missing")
	}
	w.WriteDynInt(uint64(tunnel.TunnelId))
	w.WriteBytes(tunnel.Packet)
	return nil
}

func DecodeProxyRequestBody(r *bitio.Reader, cfg *schema.Config) (*ProxyRequestBody, error) {
	if cfg.MustToggledBy("init_session") {
		targetBytes, err := r.ReadDynLength()
		if err != nil {
			return nil, err
		}
		hopCount, err := r.ReadBits(8)
		if err != nil {
			return nil, err
		}
		init := &ProxyInitializeRequest{Target: string(targetBytes), HopCount: uint8(hopCount)}

		if !cfg.MustToggledBy("random_hops") {
			for i := uint64(0); i < hopCount; i++ {
				hopBytes, err := r.ReadDynLength()
				if err != nil {
					return nil, err
				}
				init.Via = append(init.Via, string(hopBytes))
			}
		}

		keys, err := DecodeKeyExchangeRequests(r, cfg)
		if err != nil {
			return nil, err
		}
		init.Keys = keys
		return &ProxyRequestBody{Initialize: init}, nil
	}

	tunnelId, err := r.ReadDynInt()
	if err != nil {
		return nil, err
	}
	packetBytes, err := r.ReadBytes(r.RemainingBytes())
	if err != nil {
		return nil, err
	}
	return &ProxyRequestBody{Tunnel: &ProxyTunnel{TunnelId: uint32(tunnelId), Packet: packetBytes}}, nil
}

// HopInfo is one hop's contribution to a newly initialized proxy
// route: its half of the key exchange and its signature proving it
// really is the hop the client asked to route through.
type HopInfo struct {
	Keys       []kex.Response
	Signatures []certificate.KeyedValue
}

func encodeHopInfo(w *bitio.Writer, h *HopInfo, cfg *schema.Config) error {
	if err := EncodeKeyExchangeResponses(w, h.Keys, cfg); err != nil {
		return err
	}
	return EncodeCryptoSignatures(w, h.Signatures, cfg)
}

func decodeHopInfo(r *bitio.Reader, cfg *schema.Config) (*HopInfo, error) {
	keys, err := DecodeKeyExchangeResponses(r, cfg)
	if err != nil {
		return nil, err
	}
	sigs, err := DecodeCryptoSignatures(r, cfg)
	if err != nil {
		return nil, err
	}
	return &HopInfo{Keys: keys, Signatures: sigs}, nil
}

// ProxyResponseBody mirrors ProxyRequestBody on the response side.
type ProxyResponseBody struct {
	Tunnel     *ProxyTunnelResponse
	Initialize *ProxyInitializeResponse
}

type ProxyTunnelResponse struct {
	TunnelId uint32
	Packet   []byte // last field: consumes to end
}

type ProxyInitializeResponse struct {
	TunnelId uint32
	Hops     map[string]HopInfo
}

func EncodeProxyResponseBody(w *bitio.Writer, b *ProxyResponseBody, cfg *schema.Config) error {
	if cfg.MustToggledBy("init_session") {
		init := b.Initialize
		if init == nil {
			return bitio.NewError(bitio.ErrLengthMismatch, "init_session set but Initialize missing")
		}
		w.WriteDynInt(uint64(init.TunnelId))
		if len(init.Hops) > 255 {
			return bitio.NewError(bitio.ErrLengthMismatch, "too many hops")
		}
		w.WriteBits(uint64(len(init.Hops)), 8)
		for name, hop := range init.Hops {
			if err := w.WriteDynLength([]byte(name)); err != nil {
				return err
			}
			h := hop
			if err := encodeHopInfo(w, &h, cfg); err != nil {
				return err
			}
		}
		return nil
	}

	tunnel := b.Tunnel
	if tunnel == nil {
		return bitio.NewError(bitio.ErrLengthMismatch, "!init_session but Tunnel missing")
	}
	w.WriteDynInt(uint64(tunnel.TunnelId))
	w.WriteBytes(tunnel.Packet)
	return nil
}

func DecodeProxyResponseBody(r *bitio.Reader, cfg *schema.Config) (*ProxyResponseBody, error) {
	if cfg.MustToggledBy("init_session") {
		tunnelId, err := r.ReadDynInt()
		if err != nil {
			return nil, err
		}
		n, err := r.ReadBits(8)
		if err != nil {
			return nil, err
		}
		init := &ProxyInitializeResponse{TunnelId: uint32(tunnelId), Hops: make(map[string]HopInfo, n)}
		for i := uint64(0); i < n; i++ {
			nameBytes, err := r.ReadDynLength()
			if err != nil {
				return nil, err
			}
			hop, err := decodeHopInfo(r, cfg)
			if err != nil {
				return nil, err
			}
			init.Hops[string(nameBytes)] = *hop
		}
		return &ProxyResponseBody{Initialize: init}, nil
	}

	tunnelId, err := r.ReadDynInt()
	if err != nil {
		return nil, err
	}
	packetBytes, err := r.ReadBytes(r.RemainingBytes())
	if err != nil {
		return nil, err
	}
	return &ProxyResponseBody{Tunnel: &ProxyTunnelResponse{TunnelId: uint32(tunnelId), Packet: packetBytes}}, nil
}

package transport

// Option keys understood by the engine's stream layer.
const (
	OptCryptoMethod     = "crypto_method"
	OptPeerName         = "peer_name"
	OptVerifyPeer       = "verify_peer"
	OptVerifyPeerName   = "verify_peer_name"
	OptVerifyDepth      = "verify_depth"
	OptCiphers          = "ciphers"
	OptHonorCipherOrder = "honor_cipher_order"
	OptSingleDHUse      = "single_dh_use"
	OptNoTicket         = "no_ticket"
	OptCapturePeerCert  = "capture_peer_cert"
	OptCapturePeerChain = "capture_peer_chain"
	OptLocalCert        = "local_cert"
	OptLocalPK          = "local_pk"
	OptSNIServerCerts   = "sni_server_certs"
	OptCAFile           = "cafile"
	OptCAPath           = "capath"
)

// StreamContextKey namespaces the TLS options inside a stream context.
const StreamContextKey = "ssl"

// Options is the flat option mapping handed to the TLS engine.
type Options map[string]any

// StreamContext wraps Options under StreamContextKey.
type StreamContext map[string]Options

// SNIKeyPair is an sni_server_certs entry for a certificate whose key lives
// in a separate file. Combined certificates are rendered as a plain string.
type SNIKeyPair map[string]string

// Options renders the context. The result is freshly allocated on every
// call, so callers may modify it.
func (c ServerContext) Options() Options {
	var peerName any
	if name, ok := c.PeerName(); ok {
		peerName = name
	}

	opts := Options{
		OptCryptoMethod:     c.CryptoMethod(),
		OptPeerName:         peerName,
		OptVerifyPeer:       c.verifyPeer,
		OptVerifyPeerName:   c.verifyPeer,
		OptVerifyDepth:      c.verifyDepth,
		OptCiphers:          c.Ciphers(),
		OptHonorCipherOrder: true,
		OptSingleDHUse:      true,
		OptNoTicket:         true,
		OptCapturePeerCert:  c.capturePeer,
		OptCapturePeerChain: c.capturePeer,
	}

	if cert := c.defaultCertificate; cert != nil {
		opts[OptLocalCert] = cert.CertFile()
		if !cert.IsCombined() {
			opts[OptLocalPK] = cert.KeyFile()
		}
	}

	if len(c.certificates) > 0 {
		sni := make([]any, 0, len(c.certificates))
		for _, cert := range c.certificates {
			if cert.IsCombined() {
				sni = append(sni, cert.CertFile())
				continue
			}

			sni = append(sni, SNIKeyPair{
				OptLocalCert: cert.CertFile(),
				OptLocalPK:   cert.KeyFile(),
			})
		}
		opts[OptSNIServerCerts] = sni
	}

	if caFile, ok := c.CAFile(); ok {
		opts[OptCAFile] = caFile
	}

	if caPath, ok := c.CAPath(); ok {
		opts[OptCAPath] = caPath
	}

	return opts
}

// StreamContext renders the context wrapped under the "ssl" namespace.
func (c ServerContext) StreamContext() StreamContext {
	return StreamContext{StreamContextKey: c.Options()}
}

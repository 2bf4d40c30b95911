package transport

import (
	"crypto/tls"
	"fmt"
)

// CryptoMethod is the engine's protocol bitmask. Each protocol version owns
// one bit; bit 0 marks a client method and is never set for servers.
type CryptoMethod uint32

const (
	MethodSSLv2Server  CryptoMethod = 1 << 1
	MethodSSLv3Server  CryptoMethod = 1 << 2
	MethodTLSv10Server CryptoMethod = 1 << 3
	MethodTLSv11Server CryptoMethod = 1 << 4
	MethodTLSv12Server CryptoMethod = 1 << 5

	// MethodTLSServer accepts every TLS version the engine knows.
	MethodTLSServer = MethodTLSv10Server | MethodTLSv11Server | MethodTLSv12Server

	// MethodAnyServer additionally accepts the legacy SSL protocols.
	MethodAnyServer = MethodSSLv2Server | MethodSSLv3Server | MethodTLSServer
)

// Version is a minimum protocol version a server context may be pinned to.
type Version uint32

const (
	VersionTLS10 = Version(MethodTLSv10Server)
	VersionTLS11 = Version(MethodTLSv11Server)
	VersionTLS12 = Version(MethodTLSv12Server)
)

// cryptoMethods maps a minimum version to the set of versions the server
// negotiates: the version itself and everything newer, SSL excluded.
// The values equal (^(v-1) & MethodAnyServer) &^ 1.
var cryptoMethods = map[Version]CryptoMethod{
	VersionTLS10: MethodTLSv10Server | MethodTLSv11Server | MethodTLSv12Server,
	VersionTLS11: MethodTLSv11Server | MethodTLSv12Server,
	VersionTLS12: MethodTLSv12Server,
}

// ParseTLSVersion parses a string TLS version to Version
func ParseTLSVersion(version string) (Version, error) {
	switch version {
	case "1.0", "TLSv1.0":
		return VersionTLS10, nil
	case "1.1", "TLSv1.1":
		return VersionTLS11, nil
	case "1.2", "TLSv1.2":
		return VersionTLS12, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedTLSVersion, version)
	}
}

// Valid reports whether v is one of the supported minimum versions.
func (v Version) Valid() bool {
	_, ok := cryptoMethods[v]
	return ok
}

// CryptoMethod returns the bitmask of versions allowed when v is the minimum.
// It is zero for an unsupported version.
func (v Version) CryptoMethod() CryptoMethod {
	return cryptoMethods[v]
}

// StdVersion returns the matching crypto/tls version identifier.
func (v Version) StdVersion() uint16 {
	switch v {
	case VersionTLS10:
		return tls.VersionTLS10
	case VersionTLS11:
		return tls.VersionTLS11
	case VersionTLS12:
		return tls.VersionTLS12
	default:
		return 0
	}
}

func (v Version) String() string {
	switch v {
	case VersionTLS10:
		return "TLSv1.0"
	case VersionTLS11:
		return "TLSv1.1"
	case VersionTLS12:
		return "TLSv1.2"
	default:
		return fmt.Sprintf("Version(%d)", uint32(v))
	}
}

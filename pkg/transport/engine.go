package transport

// DefaultCiphers is OpenSSL's default cipher list for stream servers.
const DefaultCiphers = "ECDHE-ECDSA-AES128-GCM-SHA256:ECDHE-RSA-AES128-GCM-SHA256:" +
	"ECDHE-ECDSA-AES256-GCM-SHA384:ECDHE-RSA-AES256-GCM-SHA384:" +
	"ECDHE-ECDSA-CHACHA20-POLY1305:ECDHE-RSA-CHACHA20-POLY1305:" +
	"DHE-RSA-AES128-GCM-SHA256:DHE-RSA-AES256-GCM-SHA384:" +
	"ECDHE-ECDSA-AES128-SHA256:ECDHE-RSA-AES128-SHA256:" +
	"ECDHE-ECDSA-AES128-SHA:ECDHE-RSA-AES256-SHA384:ECDHE-RSA-AES128-SHA:" +
	"ECDHE-ECDSA-AES256-SHA384:ECDHE-ECDSA-AES256-SHA:ECDHE-RSA-AES256-SHA:" +
	"DHE-RSA-AES128-SHA256:DHE-RSA-AES128-SHA:DHE-RSA-AES256-SHA256:DHE-RSA-AES256-SHA:" +
	"ECDHE-ECDSA-DES-CBC3-SHA:ECDHE-RSA-DES-CBC3-SHA:EDH-RSA-DES-CBC3-SHA:" +
	"AES128-GCM-SHA256:AES256-GCM-SHA384:AES128-SHA256:AES256-SHA256:" +
	"AES128-SHA:AES256-SHA:DES-CBC3-SHA:!DSS"

// Engine describes the capabilities of the TLS engine a ServerContext is rendered for.
type Engine struct {
	// Name identifies the engine in configuration files
	Name string

	// DefaultCiphers is used when a context sets no explicit cipher list
	DefaultCiphers string

	// SplitKeyFiles reports whether the engine can read a certificate and
	// its private key from two different files
	SplitKeyFiles bool
}

var (
	// OpenSSLEngine is a current OpenSSL stream binding.
	OpenSSLEngine = Engine{
		Name:           "openssl",
		DefaultCiphers: DefaultCiphers,
		SplitKeyFiles:  true,
	}

	// LegacyEngine is an older binding whose SNI certificate list only accepts combined PEM files.
	LegacyEngine = Engine{
		Name:           "legacy",
		DefaultCiphers: DefaultCiphers,
		SplitKeyFiles:  false,
	}
)

// LookupEngine returns the known engine with the given name.
func LookupEngine(name string) (Engine, bool) {
	switch name {
	case "", OpenSSLEngine.Name:
		return OpenSSLEngine, true
	case LegacyEngine.Name:
		return LegacyEngine, true
	default:
		return Engine{}, false
	}
}

func (e Engine) defaultCiphers() string {
	if e.DefaultCiphers == "" {
		return DefaultCiphers
	}
	return e.DefaultCiphers
}

package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a With* call receives a value outside its domain.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidCertificate is returned when a certificate set contains an entry
	// that was not built by NewCertificate.
	ErrInvalidCertificate = errors.New("invalid certificate")

	// ErrUnsupportedEnvironment is returned when the selected engine cannot
	// honor a request, e.g. split cert/key files on an engine that only reads combined PEM.
	ErrUnsupportedEnvironment = errors.New("unsupported environment")

	ErrUnsupportedTLSVersion = fmt.Errorf("%w: unsupported TLS version", ErrInvalidArgument)
)

package checker

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"syscall"
)

// TransportError is a failure to complete the HTTP exchange.
type TransportError struct {
	Reason string
	Err    error
}

func (e *TransportError) Error() string {
	return e.Reason + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func newTransportError(err error) *TransportError {
	return &TransportError{Reason: classifyError(err), Err: err}
}

func classifyError(err error) string {

	if errors.Is(err, context.DeadlineExceeded) {
		return "TIMEOUT"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "DNS_FAILURE"
	}

	var certErr *tls.CertificateVerificationError
	var unknownAuth x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	var recordErr tls.RecordHeaderError
	if errors.As(err, &certErr) || errors.As(err, &unknownAuth) || errors.As(err, &hostErr) || errors.As(err, &recordErr) {
		return "TLS_FAILURE"
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return "CONNECTION_REFUSED"
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "NETWORK_TIMEOUT"
		}
		return "NETWORK_ERROR"
	}

	return "UNKNOWN_ERROR"
}

// isTransportFailure tells a broken connection apart from a local fault
// while the body is being read.
func isTransportFailure(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

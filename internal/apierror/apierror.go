// Package apierror defines the closed set of lookup failures and their
// wire representation.
package apierror

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
)

// Kind identifies one classified failure. The set is closed: every error
// that reaches a transport boundary is converted into exactly one Kind.
type Kind int

const (
	IPAddressInvalid Kind = iota + 1
	IPAddressRequired
	IPAddressNotFound
	IPAddressReserved
	AccountIDRequired
	AccountIDUnknown
	AuthorizationInvalid
	LicenseKeyRequired
	InsufficientFunds
	PermissionRequired
)

// Kinds returns every Kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		IPAddressInvalid,
		IPAddressRequired,
		IPAddressNotFound,
		IPAddressReserved,
		AccountIDRequired,
		AccountIDUnknown,
		AuthorizationInvalid,
		LicenseKeyRequired,
		InsufficientFunds,
		PermissionRequired,
	}
}

// Body is the JSON payload of every non-2xx lookup response.
type Body struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// wire is the single conversion point from a Kind to its status, code and
// message. Values outside the enumeration fall back to IPAddressNotFound.
func (k Kind) wire() (int, string, string) {
	switch k {
	case IPAddressInvalid:
		return http.StatusBadRequest, "IP_ADDRESS_INVALID", "You have not supplied a valid IPv4 or IPv6 address."
	case IPAddressRequired:
		return http.StatusBadRequest, "IP_ADDRESS_REQUIRED", "You have not supplied an IP address, which is a required field."
	case IPAddressReserved:
		return http.StatusBadRequest, "IP_ADDRESS_RESERVED", "You have supplied an IP address which belongs to a reserved or private range."
	case AccountIDRequired:
		return http.StatusUnauthorized, "ACCOUNT_ID_REQUIRED", "You have not supplied a account ID in the Authorization header."
	case AccountIDUnknown:
		return http.StatusUnauthorized, "ACCOUNT_ID_UNKNOWN", "You have supplied an unknown account ID."
	case AuthorizationInvalid:
		return http.StatusUnauthorized, "AUTHORIZATION_INVALID", "You have supplied an invalid account ID and/or license key in the Authorization header."
	case LicenseKeyRequired:
		return http.StatusPaymentRequired, "LICENSE_KEY_REQUIRED", "You have not supplied a license key in the Authorization header."
	case InsufficientFunds:
		return http.StatusPaymentRequired, "INSUFFICIENT_FUNDS", "The license key you have provided does not have sufficient funds to use this service. Please purchase more service credits."
	case PermissionRequired:
		return http.StatusForbidden, "PERMISSION_REQUIRED", "You do not have permission to use the service."
	default:
		return http.StatusNotFound, "IP_ADDRESS_NOT_FOUND", "The supplied IP address is not in the database."
	}
}

// Status returns the HTTP status code.
func (k Kind) Status() int {
	status, _, _ := k.wire()
	return status
}

// Code returns the machine-readable error code.
func (k Kind) Code() string {
	_, code, _ := k.wire()
	return code
}

// Message returns the human-readable error message.
func (k Kind) Message() string {
	_, _, msg := k.wire()
	return msg
}

// Body returns the JSON response body.
func (k Kind) Body() Body {
	_, code, msg := k.wire()
	return Body{Code: code, Error: msg}
}

func (k Kind) String() string {
	return k.Code()
}

// Error lets a bare Kind be returned as an error.
func (k Kind) Error() string {
	return k.Code() + ": " + k.Message()
}

// GRPCCode returns the gRPC status code used for the Kind.
func (k Kind) GRPCCode() codes.Code {
	switch k {
	case IPAddressInvalid, IPAddressRequired, IPAddressReserved:
		return codes.InvalidArgument
	case AccountIDRequired, AccountIDUnknown, AuthorizationInvalid, LicenseKeyRequired:
		return codes.Unauthenticated
	case InsufficientFunds:
		return codes.ResourceExhausted
	case PermissionRequired:
		return codes.PermissionDenied
	default:
		return codes.NotFound
	}
}

// Error is a classified failure. The cause is never part of the wire
// representation; it exists so the request logger can report it.
type Error struct {
	Kind  Kind
	cause error
}

// New returns the terminal error for kind. cause may be nil.
func New(kind Kind, cause error) error {
	return &Error{Kind: kind, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Kind.Error() + " (" + e.cause.Error() + ")"
	}
	return e.Kind.Error()
}

// Unwrap returns the internal cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf classifies err. Errors that carry no Kind are internal failures and
// are reported as IPAddressNotFound.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return IPAddressNotFound
}

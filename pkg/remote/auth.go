package remote

import (
	"encoding/base64"
	"strings"

	"github.com/trigitdb/trigit/pkg/errors"
)

// Credential headers of the replication wire contract. Authorization
// authenticates the caller to the server handling the request;
// AuthorizationRemote is forwarded by that server to the remote it dials on
// the caller's behalf. Two independent sets, because the operation is
// triangular: client -> local server -> remote server.
const (
	HeaderAuthorization       = "Authorization"
	HeaderAuthorizationRemote = "Authorization-Remote"
)

// ErrBadCredentials indicates a missing or malformed credential header.
var ErrBadCredentials = errors.New("bad credentials")

// Credentials is a user/password pair carried base64-encoded on the wire.
type Credentials struct {
	User     string
	Password string
	_        struct{}
}

// IsZero tells whether no credentials were supplied.
func (c Credentials) IsZero() bool {
	return c.User == "" && c.Password == ""
}

// Encode yields the base64 user:password form.
func (c Credentials) Encode() string {
	return base64.StdEncoding.EncodeToString([]byte(c.User + ":" + c.Password))
}

// BasicAuth yields the standard Authorization header value.
func (c Credentials) BasicAuth() string {
	return "Basic " + c.Encode()
}

// DecodeCredentials parses a credential header value: either the bare
// base64 user:password form (Authorization-Remote) or with a Basic prefix
// (Authorization).
func DecodeCredentials(header string) (Credentials, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return Credentials{}, ErrBadCredentials
	}
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "Basic "))
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return Credentials{}, ErrBadCredentials.Wrap(err)
	}
	user, password, found := strings.Cut(string(decoded), ":")
	if !found {
		return Credentials{}, ErrBadCredentials
	}
	return Credentials{User: user, Password: password}, nil
}

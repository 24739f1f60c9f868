package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"
	pkgerrors "github.com/pkg/errors"

	"github.com/trigitdb/trigit/pkg/model"
)

// Client talks to one remote replication server about one label.
type Client struct {
	base  string
	label string
	creds Credentials
	http  *http.Client
}

// ParseRemoteURL splits a remote URL into the server base and the label key
// it names: the path component is the label, slashes included, e.g.
// http://host:6363/acme/crm/local/branch/main.
func ParseRemoteURL(remoteURL string) (base, label string, err error) {
	u, err := url.Parse(remoteURL)
	if err != nil {
		return "", "", pkgerrors.Wrap(err, "parse remote url")
	}
	if u.Scheme == "" || u.Host == "" {
		return "", "", pkgerrors.Errorf("remote url %q has no scheme or host", remoteURL)
	}
	label = strings.Trim(u.Path, "/")
	if label == "" {
		return "", "", pkgerrors.Errorf("remote url %q names no label", remoteURL)
	}
	return u.Scheme + "://" + u.Host, label, nil
}

// NewClient builds a client for a remote URL, authenticating with creds.
func NewClient(remoteURL string, creds Credentials, opts ...ClientOption) (*Client, error) {
	base, label, err := ParseRemoteURL(remoteURL)
	if err != nil {
		return nil, err
	}
	c := &Client{base: base, label: label, creds: creds, http: http.DefaultClient}
	for _, apply := range opts {
		apply(c)
	}
	return c, nil
}

// ClientOption is a functor to build a client with some options
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client used for remote calls
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// Label yields the remote label this client replicates.
func (c *Client) Label() string {
	return c.label
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := jsoniter.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return pkgerrors.Wrap(err, "build remote request")
	}
	if !c.creds.IsZero() {
		req.Header.Set(HeaderAuthorization, c.creds.BasicAuth())
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrapf(err, "remote call %s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var remoteErr ErrorResponse
		data, _ := io.ReadAll(resp.Body)
		if jsoniter.Unmarshal(data, &remoteErr) == nil && remoteErr.Error != "" {
			return pkgerrors.Errorf("remote %s %s: %s (status %d)", method, path, remoteErr.Error, resp.StatusCode)
		}
		return pkgerrors.Errorf("remote %s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(err, "read remote response")
	}
	return pkgerrors.Wrap(jsoniter.Unmarshal(data, out), "decode remote response")
}

// FetchAncestry lists the remote label's layer ancestry, oldest first.
func (c *Client) FetchAncestry(ctx context.Context) (*AncestryResponse, error) {
	var out AncestryResponse
	if err := c.do(ctx, http.MethodGet, "/v1/ancestry/"+c.label, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchLayer retrieves one layer verbatim.
func (c *Client) FetchLayer(ctx context.Context, id string) (*model.LayerDescriptor, error) {
	var out LayerRecord
	if err := c.do(ctx, http.MethodGet, "/v1/layers/"+id, nil, &out); err != nil {
		return nil, err
	}
	if out.Layer == nil {
		return nil, pkgerrors.New("remote returned an empty layer record")
	}
	return out.Layer, nil
}

// SendLayer imports one layer into the remote store.
func (c *Client) SendLayer(ctx context.Context, layer *model.LayerDescriptor) error {
	return c.do(ctx, http.MethodPost, "/v1/layers", LayerRecord{Layer: layer}, nil)
}

// CASLabel asks the remote to move the label head from expected to next.
func (c *Client) CASLabel(ctx context.Context, expected, next string) (bool, error) {
	var out CASResponse
	err := c.do(ctx, http.MethodPost, "/v1/cas/"+c.label, CASRequest{Expected: expected, Next: next}, &out)
	if err != nil {
		return false, err
	}
	return out.Swapped, nil
}

func (c *Client) String() string {
	return fmt.Sprintf("%s/%s", c.base, c.label)
}

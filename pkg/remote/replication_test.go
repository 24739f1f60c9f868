package remote_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trigitdb/trigit/pkg/core"
	"github.com/trigitdb/trigit/pkg/model"
	"github.com/trigitdb/trigit/pkg/remote"
	"github.com/trigitdb/trigit/pkg/schema"
	"github.com/trigitdb/trigit/pkg/store"
	"github.com/trigitdb/trigit/pkg/store/memory"
)

const mainBranch = "acme/crm/local/branch/main"

// node bundles one store with its engine and a running replication server.
type node struct {
	store store.Store
	eng   *core.Engine
	srv   *remote.Server
	ts    *httptest.Server
}

func newNode(t *testing.T, opts ...remote.ServerOption) *node {
	t.Helper()
	s := memory.New()
	require.NoError(t, schema.Bootstrap(context.Background(), s))
	srv := remote.NewServer(s, opts...)
	srv.SetReady(true)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &node{store: s, eng: core.New(s), srv: srv, ts: ts}
}

func (n *node) createDB(t *testing.T, org, db string) model.Descriptor {
	t.Helper()
	require.NoError(t, n.eng.CreateDatabase(context.Background(), org, db, nil))
	return model.BranchDescriptor(org, db, model.SourceLocal, "main")
}

func (n *node) commit(t *testing.T, d model.Descriptor, triples ...model.Triple) string {
	t.Helper()
	id, err := n.eng.WithTransaction(context.Background(), d,
		model.CommitInfo{Author: "t", Message: "m"},
		func(tc *core.Context) error {
			return tc.Insert(triples...)
		})
	require.NoError(t, err)
	return id
}

func postJSON(t *testing.T, url string, payload interface{}, headers map[string]string) (int, []byte) {
	t.Helper()
	data, err := jsoniter.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func decodeSync(t *testing.T, body []byte) remote.SyncResponse {
	t.Helper()
	var out remote.SyncResponse
	require.NoError(t, jsoniter.Unmarshal(body, &out))
	return out
}

func TestCloneReplicatesFullAncestry(t *testing.T) {
	ctx := context.Background()
	origin := newNode(t)
	d := origin.createDB(t, "acme", "crm")
	origin.commit(t, d, model.T("a", "b", "c"))
	origin.commit(t, d, model.T("d", "e", "f"))
	head := origin.commit(t, d, model.T("g", "h", "i"))

	mirror := newNode(t)
	code, body := postJSON(t, mirror.ts.URL+"/v1/clone", remote.CloneRequest{
		Comment:   "mirror of origin",
		Label:     mainBranch,
		RemoteURL: origin.ts.URL + "/" + mainBranch,
	}, nil)
	require.Equal(t, http.StatusOK, code, string(body))

	result := decodeSync(t, body)
	assert.Equal(t, 3, result.Transferred)
	assert.Equal(t, head, result.Head)

	// the mirrored history is byte for byte the origin's
	originAncestry, err := store.Ancestry(ctx, origin.store, head)
	require.NoError(t, err)
	mirrorHead, err := mirror.store.LabelHead(ctx, mainBranch)
	require.NoError(t, err)
	require.Equal(t, head, mirrorHead)
	mirrorAncestry, err := store.Ancestry(ctx, mirror.store, mirrorHead)
	require.NoError(t, err)
	require.Equal(t, originAncestry, mirrorAncestry)
	for _, id := range originAncestry {
		want, err := origin.store.OpenLayer(ctx, id)
		require.NoError(t, err)
		got, err := mirror.store.OpenLayer(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// a pull with nothing missing transfers zero layers
	code, body = postJSON(t, mirror.ts.URL+"/v1/pull", remote.SyncRequest{
		Label:     mainBranch,
		RemoteURL: origin.ts.URL + "/" + mainBranch,
	}, nil)
	require.Equal(t, http.StatusOK, code, string(body))
	assert.Equal(t, 0, decodeSync(t, body).Transferred)
}

func TestPullIsIncremental(t *testing.T) {
	origin := newNode(t)
	d := origin.createDB(t, "acme", "crm")
	origin.commit(t, d, model.T("a", "b", "c"))

	mirror := newNode(t)
	code, body := postJSON(t, mirror.ts.URL+"/v1/clone", remote.CloneRequest{
		Label:     mainBranch,
		RemoteURL: origin.ts.URL + "/" + mainBranch,
	}, nil)
	require.Equal(t, http.StatusOK, code, string(body))
	require.Equal(t, 1, decodeSync(t, body).Transferred)

	origin.commit(t, d, model.T("d", "e", "f"))
	head := origin.commit(t, d, model.T("g", "h", "i"))

	code, body = postJSON(t, mirror.ts.URL+"/v1/pull", remote.SyncRequest{
		Label:     mainBranch,
		RemoteURL: origin.ts.URL + "/" + mainBranch,
	}, nil)
	require.Equal(t, http.StatusOK, code, string(body))
	result := decodeSync(t, body)
	assert.Equal(t, 2, result.Transferred, "only the two new layers travel")
	assert.Equal(t, head, result.Head)
}

func TestPushTransfersMissingLayers(t *testing.T) {
	ctx := context.Background()
	local := newNode(t)
	d := local.createDB(t, "acme", "crm")
	local.commit(t, d, model.T("a", "b", "c"))
	head := local.commit(t, d, model.T("d", "e", "f"))

	upstream := newNode(t)
	require.NoError(t, upstream.store.CreateLabel(ctx, mainBranch, ""))

	code, body := postJSON(t, local.ts.URL+"/v1/push", remote.SyncRequest{
		Label:     mainBranch,
		RemoteURL: upstream.ts.URL + "/" + mainBranch,
	}, nil)
	require.Equal(t, http.StatusOK, code, string(body))
	result := decodeSync(t, body)
	assert.Equal(t, 2, result.Transferred)
	assert.Equal(t, head, result.Head)

	upstreamHead, err := upstream.store.LabelHead(ctx, mainBranch)
	require.NoError(t, err)
	assert.Equal(t, head, upstreamHead)
}

func TestServerAuthentication(t *testing.T) {
	n := newNode(t, remote.ServerWithCredentials(map[string]string{"alice": "secret"}))

	get := func(headers map[string]string) int {
		req, err := http.NewRequest(http.MethodGet, n.ts.URL+"/v1/ancestry/system", nil)
		require.NoError(t, err)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusUnauthorized, get(nil))
	bad := remote.Credentials{User: "alice", Password: "wrong"}
	assert.Equal(t, http.StatusUnauthorized, get(map[string]string{remote.HeaderAuthorization: bad.BasicAuth()}))
	good := remote.Credentials{User: "alice", Password: "secret"}
	assert.Equal(t, http.StatusOK, get(map[string]string{remote.HeaderAuthorization: good.BasicAuth()}))

	// liveness stays open so orchestrators can probe before credentials exist
	resp, err := http.Get(n.ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRemoteCredentialForwarding(t *testing.T) {
	origin := newNode(t, remote.ServerWithCredentials(map[string]string{"alice": "secret"}))
	d := origin.createDB(t, "acme", "crm")
	origin.commit(t, d, model.T("a", "b", "c"))

	mirror := newNode(t, remote.ServerWithCredentials(map[string]string{"bob": "hunter2"}))
	localAuth := remote.Credentials{User: "bob", Password: "hunter2"}
	req := remote.CloneRequest{
		Label:     mainBranch,
		RemoteURL: origin.ts.URL + "/" + mainBranch,
	}

	// authenticated locally but no remote credentials forwarded: the remote
	// rejects the mirror and the failure surfaces as a gateway error
	code, body := postJSON(t, mirror.ts.URL+"/v1/clone", req, map[string]string{
		remote.HeaderAuthorization: localAuth.BasicAuth(),
	})
	assert.Equal(t, http.StatusBadGateway, code, string(body))

	remoteAuth := remote.Credentials{User: "alice", Password: "secret"}
	code, body = postJSON(t, mirror.ts.URL+"/v1/clone", req, map[string]string{
		remote.HeaderAuthorization:       localAuth.BasicAuth(),
		remote.HeaderAuthorizationRemote: remoteAuth.Encode(),
	})
	require.Equal(t, http.StatusOK, code, string(body))
	assert.Equal(t, 1, decodeSync(t, body).Transferred)
}

func TestReadinessGate(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, schema.Bootstrap(ctx, s))
	srv := remote.NewServer(s)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/ancestry/system")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), "still loading")

	resp, err = http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	srv.SetReady(true)
	resp, err = http.Get(ts.URL + "/v1/ancestry/system")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPutLayerRejectsForgedContent(t *testing.T) {
	n := newNode(t)

	layer := model.NewLayerDescriptor("", []model.Triple{model.T("a", "b", "c")}, nil)
	code, _ := postJSON(t, n.ts.URL+"/v1/layers", remote.LayerRecord{Layer: layer}, nil)
	assert.Equal(t, http.StatusCreated, code)

	forged := model.NewLayerDescriptor("", []model.Triple{model.T("d", "e", "f")}, nil)
	forged.Added = append(forged.Added, model.T("smuggled", "in", "later"))
	code, body := postJSON(t, n.ts.URL+"/v1/layers", remote.LayerRecord{Layer: forged}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(body), "content address mismatch")
}

func TestFailedPullLeavesLabelUntouched(t *testing.T) {
	ctx := context.Background()
	origin := newNode(t)
	d := origin.createDB(t, "acme", "crm")
	origin.commit(t, d, model.T("a", "b", "c"))
	origin.commit(t, d, model.T("d", "e", "f"))

	// a remote that serves ancestry but fails every layer fetch
	inner := origin.srv.Handler()
	flaky := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v1/layers/") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		inner.ServeHTTP(w, r)
	}))
	defer flaky.Close()

	local := memory.New()
	require.NoError(t, schema.Bootstrap(ctx, local))
	client, err := remote.NewClient(flaky.URL+"/"+mainBranch, remote.Credentials{})
	require.NoError(t, err)

	_, err = remote.NewReplicator(local).Clone(ctx, client, mainBranch)
	require.Error(t, err)

	// the label was created but never moved: no partial branch head
	head, err := local.LabelHead(ctx, mainBranch)
	require.NoError(t, err)
	assert.Empty(t, head)
}

func TestParseRemoteURL(t *testing.T) {
	base, label, err := remote.ParseRemoteURL("http://host:6363/acme/crm/local/branch/main")
	require.NoError(t, err)
	assert.Equal(t, "http://host:6363", base)
	assert.Equal(t, "acme/crm/local/branch/main", label)

	for _, bad := range []string{
		"host/acme/crm/local/branch/main", // no scheme
		"http://host:6363",                // no label
		"http://host:6363/",
	} {
		_, _, err := remote.ParseRemoteURL(bad)
		assert.Error(t, err, bad)
	}
}

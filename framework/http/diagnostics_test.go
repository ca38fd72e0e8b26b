package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/canister/framework/container"
	gohttp "github.com/km-arc/canister/framework/http"
)

// ── fixtures ─────────────────────────────────────────────────────────────────

type Ticket struct{ id int }

type Clock struct{ Zone string }

type wired struct {
	c       *container.Canister
	handler http.Handler
	builds  int
	loads   int
}

func newWired(t *testing.T) *wired {
	t.Helper()
	w := &wired{c: container.New()}

	w.c.Set("config", map[string]string{"name": "billing"})
	require.NoError(t, w.c.Alias("configuration", "config"))
	require.NoError(t, w.c.Factory("ticket", func() *Ticket {
		w.builds++
		return &Ticket{id: w.builds}
	}))
	require.NoError(t, w.c.Share("clock", func(zone string) *Clock {
		w.builds++
		return &Clock{Zone: zone}
	}))
	require.NoError(t, w.c.Define("clock", container.Definitions{"zone": container.Val("UTC")}))
	_, err := w.c.Provide(func() *Clock { w.builds++; return &Clock{} })
	require.NoError(t, err)
	w.c.Defer([]string{"router"}, func(*container.Canister) error {
		w.loads++
		return nil
	})

	r := chi.NewRouter()
	r.Mount("/_canister", gohttp.Diagnostics(w.c))
	w.handler = r
	return w
}

func (w *wired) get(t *testing.T, path string) (int, any) {
	t.Helper()
	rr := httptest.NewRecorder()
	w.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	if data, ok := body["data"]; ok {
		return rr.Code, data
	}
	return rr.Code, body
}

// ── Endpoints ─────────────────────────────────────────────────────────────────

func TestDiagnostics_Summary(t *testing.T) {
	w := newWired(t)

	code, data := w.get(t, "/_canister")
	require.Equal(t, http.StatusOK, code)

	summary := data.(map[string]any)
	assert.Equal(t, w.c.ID(), summary["id"])
	assert.Equal(t, float64(len(w.c.Keys())), summary["keys"])
	assert.Equal(t, float64(1), summary["aliases"])
	assert.Equal(t, float64(1), summary["factories"])
	assert.Equal(t, float64(1), summary["shared"])
	assert.Equal(t, float64(1), summary["definitions"])
	assert.Equal(t, float64(1), summary["provided"])
}

func TestDiagnostics_Registrations(t *testing.T) {
	w := newWired(t)

	_, aliases := w.get(t, "/_canister/aliases")
	assert.Equal(t, map[string]any{"configuration": "config"}, aliases)

	_, factories := w.get(t, "/_canister/factories")
	assert.Equal(t, map[string]any{"ticket": "func() *http_test.Ticket"}, factories)

	_, shared := w.get(t, "/_canister/shared")
	assert.Equal(t, map[string]any{"clock": "func(string) *http_test.Clock"}, shared)

	_, defs := w.get(t, "/_canister/definitions")
	assert.Equal(t, map[string]any{
		"clock": map[string]any{
			"zone": map[string]any{"kind": "literal", "value": "UTC"},
		},
	}, defs)
}

func TestDiagnostics_Keys(t *testing.T) {
	w := newWired(t)

	code, all := w.get(t, "/_canister/keys")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, all, "config")
	assert.Len(t, all, len(w.c.Keys()))

	_, reserved := w.get(t, "/_canister/keys?prefix=_reflector.")
	assert.Equal(t, []any{
		container.KeyAliases,
		container.KeyDefinitions,
		container.KeyFactories,
		container.KeyShared,
	}, reserved)

	_, none := w.get(t, "/_canister/keys?prefix=zzz")
	assert.Equal(t, []any{}, none)
}

func TestDiagnostics_KeysDetail(t *testing.T) {
	w := newWired(t)

	code, data := w.get(t, "/_canister/keys?prefix=config&detail=true")
	require.Equal(t, http.StatusOK, code)
	infos := data.([]any)
	require.Len(t, infos, 1)
	info := infos[0].(map[string]any)
	assert.Equal(t, "config", info["key"])
	assert.Equal(t, true, info["stored"])
	assert.Equal(t, "map[string]string", info["type"])
}

func TestDiagnostics_KeysRejectsMalformedPrefix(t *testing.T) {
	w := newWired(t)

	code, body := w.get(t, "/_canister/keys?prefix=a%20b")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	errs := body.(map[string]any)["errors"].(map[string]any)
	assert.Contains(t, errs, "prefix")
}

func TestDiagnostics_UnknownRouteAndMethod(t *testing.T) {
	w := newWired(t)

	code, body := w.get(t, "/_canister/bogus")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "no diagnostics endpoint for GET /_canister/bogus", body.(map[string]any)["message"])

	rr := httptest.NewRecorder()
	w.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/_canister/keys", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	var msg map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&msg))
	assert.Equal(t, "POST is not allowed on /_canister/keys", msg["message"])
}

func TestDiagnostics_Key(t *testing.T) {
	w := newWired(t)

	code, data := w.get(t, "/_canister/keys/configuration")
	require.Equal(t, http.StatusOK, code)
	info := data.(map[string]any)
	assert.Equal(t, "config", info["alias"])
	assert.Equal(t, false, info["stored"])

	// Type keys contain slashes.
	self := container.TypeKey(w.c)
	code, data = w.get(t, "/_canister/keys/"+self)
	require.Equal(t, http.StatusOK, code)
	info = data.(map[string]any)
	assert.Equal(t, self, info["key"])
	assert.Equal(t, true, info["stored"])
	assert.Equal(t, "*container.Canister", info["type"])

	code, data = w.get(t, "/_canister/keys/router")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, data.(map[string]any)["deferred"])

	code, data = w.get(t, "/_canister/keys/nope")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, `unknown key "nope"`, data.(map[string]any)["message"])
}

func TestDiagnostics_NeverResolves(t *testing.T) {
	w := newWired(t)

	for _, path := range []string{
		"/_canister",
		"/_canister/factories",
		"/_canister/shared",
		"/_canister/keys/ticket",
		"/_canister/keys/clock",
		"/_canister/keys/router",
	} {
		code, _ := w.get(t, path)
		assert.Equal(t, http.StatusOK, code, path)
	}

	assert.Zero(t, w.builds)
	assert.Zero(t, w.loads)
	assert.False(t, w.c.Has("clock"))
}

func TestInspect(t *testing.T) {
	w := newWired(t)

	info := gohttp.Inspect(w.c, "clock")
	assert.True(t, info.Shared)
	assert.True(t, info.Defined)
	assert.False(t, info.Factory)
	assert.True(t, info.Known())

	assert.False(t, gohttp.Inspect(w.c, "missing").Known())
}

// ── Context ───────────────────────────────────────────────────────────────────

func TestInject_FromContext(t *testing.T) {
	c := container.New()

	var seen *container.Canister
	h := gohttp.Inject(c)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = gohttp.FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Same(t, c, seen)
	assert.Nil(t, gohttp.FromContext(context.Background()))
	assert.Same(t, c, gohttp.FromContext(gohttp.WithCanister(context.Background(), c)))
}

package http

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/km-arc/canister/framework/container"
	"github.com/km-arc/canister/framework/validation"
)

// ── Payloads ─────────────────────────────────────────────────────────────────

// Summary is the body of the diagnostics index.
type Summary struct {
	ID          string `json:"id"`
	Keys        int    `json:"keys"`
	Aliases     int    `json:"aliases"`
	Factories   int    `json:"factories"`
	Shared      int    `json:"shared"`
	Definitions int    `json:"definitions"`
	Provided    int    `json:"provided"`
}

// KeyInfo describes everything the Canister knows about one key.
type KeyInfo struct {
	Key      string `json:"key"`
	Stored   bool   `json:"stored"`
	Type     string `json:"type,omitempty"`
	Alias    string `json:"alias,omitempty"`
	Factory  bool   `json:"factory"`
	Shared   bool   `json:"shared"`
	Defined  bool   `json:"defined"`
	Provided bool   `json:"provided"`
	Deferred bool   `json:"deferred"`
}

// Known reports whether any part of the Canister mentions the key.
func (k KeyInfo) Known() bool {
	return k.Stored || k.Alias != "" || k.Factory || k.Shared || k.Defined || k.Provided || k.Deferred
}

// DefinitionInfo is the JSON form of a container.Definition.
type DefinitionInfo struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// ── Handler ──────────────────────────────────────────────────────────────────

// Diagnostics returns read-only JSON endpoints over c:
//
//	GET /               Summary
//	GET /aliases        name → target
//	GET /factories      name → target description
//	GET /shared         name → target description
//	GET /definitions    name → param → DefinitionInfo
//	GET /keys           stored keys, ?prefix= filters, ?detail=true lists KeyInfo
//	GET /keys/{key...}  KeyInfo, 404 when unknown
//
// None of the endpoints resolve anything. Unknown paths get a JSON 404 and
// other methods a JSON 405.
func Diagnostics(c *container.Canister) http.Handler {
	r := chi.NewRouter()
	r.Use(Inject(c))
	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)
	r.Get("/", summary)
	r.Get("/aliases", aliases)
	r.Get("/factories", factories)
	r.Get("/shared", shared)
	r.Get("/definitions", definitions)
	r.Get("/keys", keys)
	r.Get("/keys/*", key)
	return r
}

var keysQuery = validation.Rules{
	"prefix": `nullable|regex:^\S{1,256}$`,
}

func notFound(w http.ResponseWriter, r *http.Request) {
	req := NewRequest(r)
	NewResponse(w).NotFound(fmt.Sprintf("no diagnostics endpoint for %s %s", req.Method(), req.Path()))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	req := NewRequest(r)
	NewResponse(w).Error(http.StatusMethodNotAllowed, fmt.Sprintf("%s is not allowed on %s", req.Method(), req.Path()))
}

func canister(w http.ResponseWriter, r *http.Request) (*container.Canister, bool) {
	c := FromContext(r.Context())
	if c == nil {
		NewResponse(w).ServerError("no canister in request context")
		return nil, false
	}
	return c, true
}

func summary(w http.ResponseWriter, r *http.Request) {
	c, ok := canister(w, r)
	if !ok {
		return
	}
	NewResponse(w).Success(Summary{
		ID:          c.ID(),
		Keys:        len(c.Keys()),
		Aliases:     len(c.Aliases()),
		Factories:   len(c.Factories()),
		Shared:      len(c.Shared()),
		Definitions: len(c.Definitions()),
		Provided:    len(c.Provided()),
	})
}

func aliases(w http.ResponseWriter, r *http.Request) {
	c, ok := canister(w, r)
	if !ok {
		return
	}
	NewResponse(w).Success(c.Aliases())
}

func factories(w http.ResponseWriter, r *http.Request) {
	c, ok := canister(w, r)
	if !ok {
		return
	}
	NewResponse(w).Success(describeTargets(c.Factories()))
}

func shared(w http.ResponseWriter, r *http.Request) {
	c, ok := canister(w, r)
	if !ok {
		return
	}
	NewResponse(w).Success(describeTargets(c.Shared()))
}

func definitions(w http.ResponseWriter, r *http.Request) {
	c, ok := canister(w, r)
	if !ok {
		return
	}
	out := make(map[string]map[string]DefinitionInfo)
	for name, defs := range c.Definitions() {
		params := make(map[string]DefinitionInfo, len(defs))
		for param, d := range defs {
			params[param] = DefinitionInfo{Kind: d.Kind().String(), Value: fmt.Sprint(d.Value())}
		}
		out[name] = params
	}
	NewResponse(w).Success(out)
}

func keys(w http.ResponseWriter, r *http.Request) {
	c, ok := canister(w, r)
	if !ok {
		return
	}
	req, res := NewRequest(r), NewResponse(w)
	prefix := req.Query("prefix")
	if v := validation.Make(map[string]string{"prefix": prefix}, keysQuery); v.Fails() {
		res.ValidationError(v.Errors())
		return
	}

	out := []string{}
	for _, k := range c.Keys() {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	slices.Sort(out)

	if !req.QueryBool("detail", false) {
		res.Success(out)
		return
	}
	infos := make([]KeyInfo, 0, len(out))
	for _, k := range out {
		infos = append(infos, Inspect(c, k))
	}
	res.Success(infos)
}

func key(w http.ResponseWriter, r *http.Request) {
	c, ok := canister(w, r)
	if !ok {
		return
	}
	name := NewRequest(r).RouteParam("*")
	res := NewResponse(w)
	if name == "" {
		res.NotFound("key is required")
		return
	}

	info := Inspect(c, name)
	if !info.Known() {
		res.NotFound(fmt.Sprintf("unknown key %q", name))
		return
	}
	res.Success(info)
}

// Inspect collects the flags of key without resolving it.
func Inspect(c *container.Canister, key string) KeyInfo {
	info := KeyInfo{
		Key:      key,
		Stored:   c.Has(key),
		Factory:  c.IsFactory(key),
		Shared:   c.IsShared(key),
		Defined:  c.IsDefined(key),
		Provided: c.IsProvided(key),
		Deferred: c.IsDeferred(key),
	}
	if info.Stored {
		info.Type = fmt.Sprintf("%T", c.OffsetGet(key))
	}
	if target, err := c.GetAlias(key); err == nil {
		info.Alias = target
	}
	return info
}

func describeTargets(targets map[string]any) map[string]string {
	out := make(map[string]string, len(targets))
	for name, target := range targets {
		switch t := target.(type) {
		case string:
			out[name] = t
		case fmt.Stringer:
			out[name] = t.String()
		default:
			out[name] = fmt.Sprintf("%T", t)
		}
	}
	return out
}

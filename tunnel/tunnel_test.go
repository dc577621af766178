package tunnel

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
	"testing"

	dynamicpkg "github.com/aura-studio/bootstrap/dynamic"
	"github.com/aura-studio/bootstrap/runtime"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/tidwall/gjson"
)

type invokeCall struct {
	route string
	req   string
}

type mockTunnel struct {
	mu      sync.Mutex
	reply   func(route, req string) string
	metaDoc string
	invokes []invokeCall
}

func (m *mockTunnel) Init() {}

func (m *mockTunnel) Invoke(route string, req string) string {
	m.mu.Lock()
	m.invokes = append(m.invokes, invokeCall{route: route, req: req})
	m.mu.Unlock()

	if m.reply != nil {
		return m.reply(route, req)
	}
	return req
}

func (m *mockTunnel) Meta() string {
	if m.metaDoc == "" {
		return "{}"
	}
	return m.metaDoc
}

func (m *mockTunnel) Close() {}

func (m *mockTunnel) calls() []invokeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]invokeCall(nil), m.invokes...)
}

type nopEnvSink struct{}

func (nopEnvSink) Setenv(key, value string) error { return nil }

func (nopEnvSink) Unsetenv(key string) error { return nil }

func newInvokeContext(t *testing.T, requestID string) *runtime.Context {
	t.Helper()

	ictx := runtime.NewContext(nopEnvSink{})
	ictx.RequestID = requestID
	return ictx
}

func newStaticTunnel(t *testing.T, locator string, pkg, version string, mock *mockTunnel) *Tunnel {
	t.Helper()

	tn := NewTunnel(
		WithLocator(locator),
		dynamicpkg.WithStaticPackage(&dynamicpkg.Package{
			Package: pkg,
			Version: version,
			Tunnel:  mock,
		}),
	)
	if err := tn.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return tn
}

func TestParseLocator(t *testing.T) {
	tests := []struct {
		name    string
		locator string
		pkg     string
		version string
		route   string
		wantErr bool
	}{
		{name: "full locator", locator: "user-service/v1/api/users", pkg: "user-service", version: "v1", route: "/api/users"},
		{name: "package and version", locator: "user-service/v1", pkg: "user-service", version: "v1", route: "/"},
		{name: "package and route", locator: "user-service/health", pkg: "user-service", version: "", route: "/health"},
		{name: "bare package", locator: "user-service", pkg: "user-service", version: "", route: "/"},
		{name: "leading slash", locator: "/user-service/v1", pkg: "user-service", version: "v1", route: "/"},
		{name: "latest version", locator: "user-service/latest/users", pkg: "user-service", version: "latest", route: "/users"},
		{name: "numeric version", locator: "user-service/1.0.3", pkg: "user-service", version: "1.0.3", route: "/"},
		{name: "three segments pin the version", locator: "svc/api/users", pkg: "svc", version: "api", route: "/users"},
		{name: "empty segments collapse", locator: "user-service//v1", pkg: "user-service", version: "v1", route: "/"},
		{name: "surrounding spaces", locator: "  user-service/v1  ", pkg: "user-service", version: "v1", route: "/"},
		{name: "empty locator", locator: "", wantErr: true},
		{name: "bare slash", locator: "/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg, version, route, err := ParseLocator(tt.locator)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseLocator(%q) expected error, got %q %q %q", tt.locator, pkg, version, route)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLocator(%q) error = %v", tt.locator, err)
			}
			if pkg != tt.pkg || version != tt.version || route != tt.route {
				t.Errorf("ParseLocator(%q) = %q %q %q, want %q %q %q",
					tt.locator, pkg, version, route, tt.pkg, tt.version, tt.route)
			}
		})
	}
}

func TestParseLocatorProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(42)

	properties := gopter.NewProperties(parameters)

	properties.Property("full locators split into their segments", prop.ForAll(
		func(pkg, version, route string) bool {
			gotPkg, gotVersion, gotRoute, err := ParseLocator(pkg + "/" + version + "/" + route)
			return err == nil && gotPkg == pkg && gotVersion == version && gotRoute == "/"+route
		},
		gen.RegexMatch(`[a-z][a-z0-9-]{0,11}`),
		gen.RegexMatch(`v[0-9]{1,3}`),
		gen.RegexMatch(`[a-z]{1,8}(/[a-z]{1,8}){0,2}`),
	))

	properties.Property("a leading slash never changes the parse", prop.ForAll(
		func(pkg, version string) bool {
			p1, v1, r1, err1 := ParseLocator(pkg + "/" + version)
			p2, v2, r2, err2 := ParseLocator("/" + pkg + "/" + version)
			return err1 == nil && err2 == nil && p1 == p2 && v1 == v2 && r1 == r2
		},
		gen.RegexMatch(`[a-z][a-z0-9-]{0,11}`),
		gen.RegexMatch(`v[0-9]{1,3}`),
	))

	properties.TestingRun(t)
}

func TestTunnelInvokesResolvedPackage(t *testing.T) {
	mock := &mockTunnel{reply: func(route, req string) string {
		return `{"route":"` + route + `","echo":` + req + `}`
	}}
	tn := newStaticTunnel(t, "user-service/v1/api/users", "user-service", "v1", mock)

	out, err := tn.OnEvent(`{"id":7}`, newInvokeContext(t, "req-1"))
	if err != nil {
		t.Fatalf("OnEvent() error = %v", err)
	}

	raw, ok := out.(json.RawMessage)
	if !ok {
		t.Fatalf("OnEvent() output type = %T, want json.RawMessage", out)
	}
	if got := gjson.GetBytes(raw, "route").String(); got != "/api/users" {
		t.Errorf("reply route = %q, want %q", got, "/api/users")
	}
	if got := gjson.GetBytes(raw, "echo.id").Int(); got != 7 {
		t.Errorf("reply echo.id = %d, want 7", got)
	}

	calls := mock.calls()
	if len(calls) != 1 {
		t.Fatalf("Invoke calls = %d, want 1", len(calls))
	}
	if calls[0].route != "/api/users" {
		t.Errorf("invoked route = %q, want %q", calls[0].route, "/api/users")
	}
	if calls[0].req != `{"id":7}` {
		t.Errorf("invoked request = %q, want %q", calls[0].req, `{"id":7}`)
	}
}

func TestTunnelOnEventReplies(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    any
		wantErr string
	}{
		{name: "json object passes through", reply: `{"ok":true}`, want: json.RawMessage(`{"ok":true}`)},
		{name: "json array passes through", reply: `[1,2,3]`, want: json.RawMessage(`[1,2,3]`)},
		{name: "plain text becomes a string", reply: "pong", want: "pong"},
		{name: "error scheme turns into an error", reply: "error://downstream failed", wantErr: "tunnel: downstream failed"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockTunnel{reply: func(string, string) string { return tt.reply }}
			pkg := "reply-service-" + string(rune('a'+i))
			tn := newStaticTunnel(t, pkg+"/v1", pkg, "v1", mock)

			out, err := tn.OnEvent("{}", newInvokeContext(t, "req-1"))
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Fatalf("OnEvent() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("OnEvent() error = %v", err)
			}
			if !reflect.DeepEqual(out, tt.want) {
				t.Errorf("OnEvent() = %#v, want %#v", out, tt.want)
			}
		})
	}
}

func TestTunnelDefaultVersion(t *testing.T) {
	mock := &mockTunnel{}
	tn := NewTunnel(
		WithLocator("orders/api"),
		dynamicpkg.WithDefaultVersion("v1"),
		dynamicpkg.WithStaticPackage(&dynamicpkg.Package{
			Package: "orders",
			Version: "v1",
			Tunnel:  mock,
		}),
	)
	if err := tn.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if _, err := tn.OnEvent(`{"n":1}`, newInvokeContext(t, "req-1")); err != nil {
		t.Fatalf("OnEvent() error = %v", err)
	}

	calls := mock.calls()
	if len(calls) != 1 || calls[0].route != "/api" {
		t.Fatalf("Invoke calls = %+v, want one call routed to /api", calls)
	}
}

func TestTunnelLocatorFromEnv(t *testing.T) {
	mock := &mockTunnel{}
	t.Setenv(runtime.EnvHandler, "env-service/v2")

	tn := NewTunnel(
		dynamicpkg.WithStaticPackage(&dynamicpkg.Package{
			Package: "env-service",
			Version: "v2",
			Tunnel:  mock,
		}),
	)
	if err := tn.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if _, err := tn.OnEvent("{}", newInvokeContext(t, "req-1")); err != nil {
		t.Fatalf("OnEvent() error = %v", err)
	}

	calls := mock.calls()
	if len(calls) != 1 || calls[0].route != "/" {
		t.Fatalf("Invoke calls = %+v, want one call routed to /", calls)
	}
}

func TestTunnelInitializeWithoutLocator(t *testing.T) {
	t.Setenv(runtime.EnvHandler, "")

	tn := NewTunnel()
	if err := tn.Initialize(); err == nil {
		t.Fatal("Initialize() expected error for empty locator")
	}
}

func TestTunnelOptionRouting(t *testing.T) {
	tn := NewTunnel(
		WithLocator("catalog/v3"),
		dynamicpkg.WithDefaultVersion("v3"),
	)

	if tn.Locator != "catalog/v3" {
		t.Errorf("Locator = %q, want %q", tn.Locator, "catalog/v3")
	}
	if tn.PackageDefaultVersion != "v3" {
		t.Errorf("PackageDefaultVersion = %q, want %q", tn.PackageDefaultVersion, "v3")
	}
}

func TestTunnelMeta(t *testing.T) {
	mock := &mockTunnel{metaDoc: `{"name":"catalog","build":"abc123"}`}
	tn := NewTunnel(
		WithLocator("catalog/v1"),
		dynamicpkg.WithWarehouse("/tmp/warehouse", "s3://bucket/warehouse"),
		dynamicpkg.WithStaticPackage(&dynamicpkg.Package{
			Package: "catalog",
			Version: "v1",
			Tunnel:  mock,
		}),
	)
	if err := tn.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	meta := tn.Meta()
	if !gjson.Valid(meta) {
		t.Fatalf("Meta() = %q, want valid JSON", meta)
	}
	if got := gjson.Get(meta, "warehouse.local").String(); got != "/tmp/warehouse" {
		t.Errorf("meta warehouse.local = %q, want %q", got, "/tmp/warehouse")
	}
	if got := gjson.Get(meta, "warehouse.remote").String(); got != "s3://bucket/warehouse" {
		t.Errorf("meta warehouse.remote = %q, want %q", got, "s3://bucket/warehouse")
	}
	if got := gjson.Get(meta, "name").String(); got != "catalog" {
		t.Errorf("meta name = %q, want %q", got, "catalog")
	}
	if got := gjson.Get(meta, "build").String(); got != "abc123" {
		t.Errorf("meta build = %q, want %q", got, "abc123")
	}
}

func TestTunnelConfig(t *testing.T) {
	yml := strings.Join([]string{
		"mode:",
		"  debug: true",
		"locator: billing/v2/charges",
	}, "\n")

	options := NewOptions(WithConfig([]byte(yml)))
	if !options.DebugMode {
		t.Error("DebugMode = false, want true")
	}
	if options.Locator != "billing/v2/charges" {
		t.Errorf("Locator = %q, want %q", options.Locator, "billing/v2/charges")
	}
}

func TestTunnelConfigInvalidYAML(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for invalid YAML")
		}
	}()

	NewOptions(WithConfig([]byte("mode: [unterminated")))
}

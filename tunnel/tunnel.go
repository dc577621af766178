package tunnel

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	dynamicpkg "github.com/aura-studio/bootstrap/dynamic"
	"github.com/aura-studio/bootstrap/runtime"
	"github.com/aura-studio/dynamic"
	"github.com/tidwall/gjson"
)

// Tunnel adapts a dynamically loaded package to the invocation loop.
// Initialize resolves the configured locator to a package tunnel, then
// OnEvent forwards each raw payload through it.
type Tunnel struct {
	*Options
	*dynamicpkg.Dynamic

	tunnel dynamic.Tunnel
	route  string
}

func NewTunnel(opts ...ServeOption) *Tunnel {
	bag := &serveOptionBag{}
	bag.apply(opts...)

	return &Tunnel{
		Options: NewOptions(bag.tunnel...),
		Dynamic: dynamicpkg.NewDynamic(bag.dynamic...),
	}
}

// Initialize resolves the locator to a loaded package. The locator
// comes from Options or, when unset, from _HANDLER. A missing or
// unloadable package fails initialization.
func (t *Tunnel) Initialize() error {
	locator := t.Locator
	if locator == "" {
		locator = os.Getenv(runtime.EnvHandler)
	}

	pkg, version, route, err := ParseLocator(locator)
	if err != nil {
		return err
	}

	tunnel, err := t.GetPackage(pkg, version)
	if err != nil {
		return fmt.Errorf("tunnel: package not found: %s_%s: %w", pkg, version, err)
	}

	t.tunnel = tunnel
	t.route = route

	if t.DebugMode {
		log.Printf("[Tunnel] Resolved package %s_%s, route %s", pkg, version, route)
	}

	return nil
}

// OnEvent forwards the raw payload to the resolved package. Replies
// prefixed with error:// turn into invocation errors; valid JSON is
// passed through untouched, anything else is reported as a JSON string.
func (t *Tunnel) OnEvent(event string, ictx *runtime.Context) (any, error) {
	if t.DebugMode {
		log.Printf("[Tunnel] Invoke %s route %s", ictx.RequestID, t.route)
	}

	reply := t.tunnel.Invoke(t.route, event)

	if strings.HasPrefix(reply, "error://") {
		return nil, fmt.Errorf("tunnel: %s", strings.TrimPrefix(reply, "error://"))
	}

	if gjson.Valid(reply) {
		return json.RawMessage(reply), nil
	}

	return reply, nil
}

// Meta reports loader and package metadata as JSON.
func (t *Tunnel) Meta() string {
	var tunnelMeta string
	if t.tunnel != nil {
		tunnelMeta = t.tunnel.Meta()
	}
	return dynamicpkg.NewMetaGenerator(t.LocalWarehouse, t.RemoteWarehouse).Generate(tunnelMeta)
}

// ParseLocator extracts package, version and route from a handler
// locator. Accepted forms are pkg/version/route, pkg/version, pkg/route
// and pkg; when the second segment does not look like a version the
// loader's default version is used.
func ParseLocator(locator string) (pkg, version, route string, err error) {
	locator = strings.TrimSpace(locator)
	if locator == "" || locator == "/" {
		return "", "", "", fmt.Errorf("tunnel: invalid locator: locator is empty")
	}

	parts := splitLocator(strings.TrimPrefix(locator, "/"))
	if len(parts) < 1 {
		return "", "", "", fmt.Errorf("tunnel: invalid locator: missing package name")
	}

	pkg = parts[0]

	switch {
	case len(parts) == 1:
		version = ""
		route = "/"
	case len(parts) >= 3 || isVersion(parts[1]):
		version = parts[1]
		if len(parts) > 2 {
			route = "/" + strings.Join(parts[2:], "/")
		} else {
			route = "/"
		}
	default:
		// Second segment is already the route, use the default version.
		version = ""
		route = "/" + strings.Join(parts[1:], "/")
	}

	return pkg, version, route, nil
}

// isVersion checks if a segment looks like a version identifier:
// v-prefixed, commit, latest, or dotted numerics.
func isVersion(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == 'v' || s == "commit" || s == "latest" {
		return true
	}
	for _, c := range s {
		if c != '.' && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// splitLocator splits on '/' and drops empty segments.
func splitLocator(s string) []string {
	var parts []string
	for _, p := range strings.Split(s, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

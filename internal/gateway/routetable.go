// Package gateway implements the edge router: a prefix-based route table,
// the reverse proxy forwarding stage and the middleware pipeline that wraps
// it.
package gateway

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/NexaCommerce/commerce_layer/internal/config"
)

// Route is a compiled gateway route. Roles is the set of roles accepted for
// the route; empty with Public=false means any authenticated caller.
type Route struct {
	Name   string
	Prefix string
	Target *url.URL
	Roles  []string
	Public bool
}

// RouteTable resolves request paths to routes by longest matching prefix.
// The table is immutable after construction and safe for concurrent use.
type RouteTable struct {
	routes []Route
}

// NewRouteTable compiles the configured routes. Two routes with prefixes of
// equal length that both match some path would make dispatch ambiguous, so
// duplicate prefixes are rejected here rather than surfacing at request
// time.
func NewRouteTable(configs []config.RouteConfig) (*RouteTable, error) {
	seen := make(map[string]string, len(configs))
	routes := make([]Route, 0, len(configs))

	for _, rc := range configs {
		prefix := strings.TrimSuffix(rc.Prefix, "/")
		if !strings.HasPrefix(prefix, "/") {
			return nil, fmt.Errorf("route %q: prefix must start with /", rc.Name)
		}
		if existing, ok := seen[prefix]; ok {
			return nil, fmt.Errorf("route %q: duplicate prefix %q already used by route %q", rc.Name, prefix, existing)
		}
		seen[prefix] = rc.Name

		target, err := url.Parse(rc.Target)
		if err != nil {
			return nil, fmt.Errorf("route %q: invalid target %q: %w", rc.Name, rc.Target, err)
		}
		if target.Scheme == "" || target.Host == "" {
			return nil, fmt.Errorf("route %q: target %q must be an absolute URL", rc.Name, rc.Target)
		}

		routes = append(routes, Route{
			Name:   rc.Name,
			Prefix: prefix,
			Target: target,
			Roles:  append([]string(nil), rc.Roles...),
			Public: rc.Public,
		})
	}

	// Longest prefix first so Match can return the first hit.
	sort.SliceStable(routes, func(i, j int) bool {
		return len(routes[i].Prefix) > len(routes[j].Prefix)
	})

	return &RouteTable{routes: routes}, nil
}

// Match returns the route with the longest prefix matching path, or false
// when no route matches. A prefix matches at segment boundaries only:
// /api/orders matches /api/orders and /api/orders/42 but not /api/ordersx.
func (t *RouteTable) Match(path string) (Route, bool) {
	for _, route := range t.routes {
		if matchesPrefix(path, route.Prefix) {
			return route, true
		}
	}
	return Route{}, false
}

// Routes returns the compiled routes in match order.
func (t *RouteTable) Routes() []Route {
	return t.routes
}

func matchesPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}

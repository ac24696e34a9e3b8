package extspi

import (
	"net/url"
	"sort"
	"strings"
)

// URL is the typed request descriptor that carries dispatch keys for
// adaptive method routing and activation filtering (spec section 4.4,
// section 6). It wraps a protocol/host/path triple plus a flat
// parameter set, mirroring the "typed request URL" the adaptive
// dispatcher reads fields from.
type URL struct {
	Protocol string
	Host     string
	Path     string
	params   map[string]string
}

// NewURL builds a URL from its components and an initial parameter set.
// The params map is copied; later mutation of the caller's map does not
// affect the URL.
func NewURL(protocol, host, path string, params map[string]string) *URL {
	u := &URL{Protocol: protocol, Host: host, Path: path, params: make(map[string]string, len(params))}
	for k, v := range params {
		u.params[k] = v
	}
	return u
}

// ParseURL parses a standard URL string plus its query string into a
// URL, folding query parameters into the parameter set.
func ParseURL(raw string) (*URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	u := &URL{
		Protocol: parsed.Scheme,
		Host:     parsed.Host,
		Path:     parsed.Path,
		params:   make(map[string]string),
	}
	for k, v := range parsed.Query() {
		if len(v) > 0 {
			u.params[k] = v[0]
		}
	}
	return u, nil
}

// Parameter returns the value of key, or "" if absent.
func (u *URL) Parameter(key string) string {
	if u == nil {
		return ""
	}
	return u.params[key]
}

// ParameterOrDefault returns the value of key, or def if absent or empty.
func (u *URL) ParameterOrDefault(key, def string) string {
	if v := u.Parameter(key); v != "" {
		return v
	}
	return def
}

// HasParameter reports whether key is present and non-empty - the
// "bare k entry matches when the parameter is present and non-empty"
// rule used by activate matching (spec section 4.3).
func (u *URL) HasParameter(key string) bool {
	if u == nil {
		return false
	}
	v, ok := u.params[key]
	return ok && v != ""
}

// WithParameter returns a copy of u with key set to value.
func (u *URL) WithParameter(key, value string) *URL {
	clone := &URL{Protocol: u.Protocol, Host: u.Host, Path: u.Path, params: make(map[string]string, len(u.params)+1)}
	for k, v := range u.params {
		clone.params[k] = v
	}
	clone.params[key] = value
	return clone
}

// Parameters returns a sorted copy of the parameter keys, useful for
// stable logging and tests.
func (u *URL) Parameters() []string {
	if u == nil {
		return nil
	}
	keys := make([]string, 0, len(u.params))
	for k := range u.params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (u *URL) String() string {
	if u == nil {
		return ""
	}
	var b strings.Builder
	if u.Protocol != "" {
		b.WriteString(u.Protocol)
		b.WriteString("://")
	}
	b.WriteString(u.Host)
	b.WriteString(u.Path)
	if len(u.params) > 0 {
		b.WriteString("?")
		keys := u.Parameters()
		for i, k := range keys {
			if i > 0 {
				b.WriteString("&")
			}
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(u.params[k])
		}
	}
	return b.String()
}

// URLGetter is implemented by request types that carry a URL behind an
// accessor rather than being a URL themselves - the "parameter whose
// type exposes a GetURL() accessor" fallback of spec section 4.4 step 2.
type URLGetter interface {
	GetURL() *URL
}

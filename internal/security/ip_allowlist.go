package security

import (
	"fmt"
	"net/http"
	"net/netip"
	"strings"
)

// Allowlist is a set of client address prefixes. An empty Allowlist admits
// every client.
type Allowlist []netip.Prefix

// ParseAllowlist reads CIDR blocks and bare addresses, skipping blank
// entries. A bare address admits that single host.
func ParseAllowlist(entries []string) (Allowlist, error) {
	var out Allowlist
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if addr, err := netip.ParseAddr(e); err == nil {
			addr = addr.Unmap()
			out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		p, err := netip.ParsePrefix(e)
		if err != nil {
			return nil, fmt.Errorf("allowlist entry %q: %w", e, err)
		}
		out = append(out, p.Masked())
	}
	return out, nil
}

// Admits reports whether addr lies inside one of the prefixes.
func (a Allowlist) Admits(addr netip.Addr) bool {
	if len(a) == 0 {
		return true
	}
	addr = addr.Unmap()
	for _, p := range a {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientAddr parses the address part of r.RemoteAddr.
func ClientAddr(r *http.Request) (netip.Addr, bool) {
	ap, err := netip.ParseAddrPort(r.RemoteAddr)
	if err != nil {
		return netip.Addr{}, false
	}
	return ap.Addr().Unmap(), true
}

// IPAllowlist answers 403 to clients outside allow.
func IPAllowlist(allow Allowlist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(allow) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if addr, ok := ClientAddr(r); !ok || !allow.Admits(addr) {
				WriteJSONError(w, r, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

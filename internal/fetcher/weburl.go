package fetcher

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Reserved ranges not covered by net.IP helpers
var (
	cgnat    = mustCIDR("100.64.0.0/10")
	v6unique = mustCIDR("fc00::/7")
	v6link   = mustCIDR("fe80::/10")
)

func mustCIDR(s string) *net.IPNet {
	_, n, err := net.ParseCIDR(s)
	if err != nil {
		panic("invalid CIDR " + s + ": " + err.Error())
	}
	return n
}

// ValidateURL checks that rawURL is an absolute http(s) URL permitted by
// opts. Literal private addresses and local host names are rejected unless
// opts.AllowPrivate is set.
func ValidateURL(rawURL string, opts Options) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	switch parsed.Scheme {
	case "https":
	case "http":
		if opts.RequireHTTPS {
			return fmt.Errorf("%w: only HTTPS URLs are allowed", ErrBlockedURL)
		}
	default:
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	if opts.AllowPrivate {
		return nil
	}

	lowHost := strings.ToLower(host)
	if lowHost == "localhost" || strings.HasSuffix(lowHost, ".localhost") {
		return fmt.Errorf("%w: localhost URLs are not allowed", ErrBlockedURL)
	}
	if strings.HasSuffix(lowHost, ".local") || strings.HasSuffix(lowHost, ".internal") {
		return fmt.Errorf("%w: local domain URLs are not allowed", ErrBlockedURL)
	}
	if ip := net.ParseIP(host); ip != nil && IsPrivateIP(ip) {
		return fmt.Errorf("%w: private IP addresses are not allowed", ErrBlockedURL)
	}

	return nil
}

// IsPrivateIP reports whether ip is loopback, private, link-local,
// unspecified or in a reserved range. IPv4-mapped IPv6 addresses are
// checked as IPv4.
func IsPrivateIP(ip net.IP) bool {
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}
	return cgnat.Contains(ip) || v6unique.Contains(ip) || v6link.Contains(ip)
}

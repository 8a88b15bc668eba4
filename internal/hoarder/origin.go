package hoarder

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// hostProfile maps and punycodes hosts but, unlike idna.Lookup, accepts
// underscores so container and LAN hostnames keep working.
var hostProfile = idna.New(
	idna.MapForLookup(),
	idna.Transitional(false),
	idna.StrictDomainName(false),
)

// NormalizeOrigin reduces raw to scheme://host[:port].
//
// User info, path, query and fragment are dropped. Scheme and host are
// lowercased, internationalized hosts are converted to their ASCII form and
// the scheme's default port is removed. The result never ends in "/".
func NormalizeOrigin(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", &URLError{Input: raw, Err: unwrapURLParse(err)}
	}
	if u.Scheme == "" {
		return "", &URLError{Input: raw, Err: errors.New("relative URL without a base")}
	}
	if u.Opaque != "" || u.Host == "" {
		return "", &URLError{Input: raw, Err: errors.New("empty host")}
	}

	scheme := strings.ToLower(u.Scheme)
	host, err := canonicalHost(u.Hostname())
	if err != nil {
		return "", &URLError{Input: raw, Err: err}
	}

	port := u.Port()
	if port == defaultPorts[scheme] {
		port = ""
	}
	if port != "" {
		host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	origin := scheme + "://" + host
	return strings.TrimRight(origin, "/"), nil
}

func canonicalHost(host string) (string, error) {
	if host == "" {
		return "", errors.New("empty host")
	}
	if ip := net.ParseIP(host); ip != nil {
		return strings.ToLower(host), nil
	}
	ascii, err := hostProfile.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("invalid international domain name: %w", err)
	}
	return strings.ToLower(ascii), nil
}

// unwrapURLParse drops the "parse <input>:" prefix net/url adds so the
// message reads like the parser's own complaint.
func unwrapURLParse(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err
	}
	return err
}

// RedactURL returns raw with any user info replaced, for logging input that
// failed validation. Unparseable input is redacted by scanning the authority.
func RedactURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if u, err := url.Parse(trimmed); err == nil {
		if u.User != nil {
			u.User = url.User(redacted)
		}
		return u.String()
	}

	prefix, rest := "", trimmed
	if i := strings.Index(trimmed, "://"); i >= 0 {
		prefix, rest = trimmed[:i+3], trimmed[i+3:]
	}
	authority := rest
	if j := strings.IndexAny(rest, "/?#"); j >= 0 {
		authority = rest[:j]
	}
	if at := strings.LastIndex(authority, "@"); at >= 0 {
		return prefix + redacted + rest[at:]
	}
	return trimmed
}

const redacted = "xxxxx"

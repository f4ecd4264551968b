// Package identity canonicalizes hostnames into the dedupe key used across
// runs and classifies hosts into skip/builder/ordinary buckets.
package identity

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Class is the routing category for a hostname.
type Class int

// Classification values. Skip hosts are aggregators and never become leads;
// builder hosts are enriched but score-penalized.
const (
	ClassOrdinary Class = iota
	ClassSkip
	ClassBuilder
)

// String returns the class name for logging.
func (c Class) String() string {
	switch c {
	case ClassSkip:
		return "skip"
	case ClassBuilder:
		return "builder"
	default:
		return "ordinary"
	}
}

// Config holds the static domain tables the resolver matches against.
type Config struct {
	// MultiTenantSuffixes are hosting platforms where every subdomain is a
	// distinct customer (vercel.app, github.io, ...).
	MultiTenantSuffixes []string
	// SkipDomains are registrable domains of aggregators, social platforms,
	// and marketplaces that never yield a lead themselves.
	SkipDomains []string
	// BuilderDomains are registrable domains of website builders.
	BuilderDomains []string
	// RepoHosts are code-hosting registrable domains eligible for outbound
	// link resolution (a subset of SkipDomains).
	RepoHosts []string
}

// Resolver maps hostnames to identities and classes. It is a pure function
// over its configuration tables.
type Resolver struct {
	multiTenant []string
	skip        map[string]struct{}
	builder     map[string]struct{}
	repoHosts   map[string]struct{}
}

// NewResolver builds a Resolver from the given tables.
func NewResolver(cfg Config) *Resolver {
	r := &Resolver{
		skip:      toSet(cfg.SkipDomains),
		builder:   toSet(cfg.BuilderDomains),
		repoHosts: toSet(cfg.RepoHosts),
	}
	for _, s := range cfg.MultiTenantSuffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			r.multiTenant = append(r.multiTenant, s)
		}
	}
	return r
}

// Canonical computes the dedupe identity for host. Multi-tenant hosts keep
// the full hostname (every subdomain is a distinct prospect); everything
// else collapses to the registrable domain.
func (r *Resolver) Canonical(host string) string {
	host = normalizeHost(host)
	if host == "" {
		return ""
	}
	for _, suffix := range r.multiTenant {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return host
		}
	}
	return r.RegistrableDomain(host)
}

// RegistrableDomain returns the eTLD+1 of host, or the host itself when the
// public-suffix list cannot determine one. It never fails.
func (r *Resolver) RegistrableDomain(host string) string {
	host = normalizeHost(host)
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return etld1
}

// Classify buckets host by its registrable domain. Entries also match as
// dot-boundary suffixes: several builder hosts (wixsite.com, github.io) sit
// on the public-suffix list themselves, so their subdomains have no shorter
// registrable domain to look up.
func (r *Resolver) Classify(host string) Class {
	host = normalizeHost(host)
	domain := r.RegistrableDomain(host)
	if matchSet(r.skip, host, domain) {
		return ClassSkip
	}
	if matchSet(r.builder, host, domain) {
		return ClassBuilder
	}
	return ClassOrdinary
}

// IsRepoHost reports whether host belongs to a code-hosting platform whose
// pages may link out to the real product site.
func (r *Resolver) IsRepoHost(host string) bool {
	host = normalizeHost(host)
	return matchSet(r.repoHosts, host, r.RegistrableDomain(host))
}

// HostOf extracts the lowercase hostname from a raw URL, or "" when the URL
// does not parse to an absolute http(s) location.
func HostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return normalizeHost(u.Hostname())
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimSuffix(host, ".")
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host
}

func matchSet(set map[string]struct{}, host, domain string) bool {
	if _, ok := set[host]; ok {
		return true
	}
	if _, ok := set[domain]; ok {
		return true
	}
	for entry := range set {
		if strings.HasSuffix(host, "."+entry) {
			return true
		}
	}
	return false
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

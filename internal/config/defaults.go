package config

import "github.com/spf13/viper"

// setDefaults installs the complete built-in configuration. A run with no
// config file and no environment overrides uses exactly these values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.development", false)

	v.SetDefault("http.user_agent", "leads-enricher/1.0 (+https://github.com/TimAnthonyAlexander/leads)")
	v.SetDefault("http.homepage_timeout_ms", 7000)
	v.SetDefault("http.probe_timeout_ms", 5000)
	v.SetDefault("http.probe_delay_ms", 200)

	v.SetDefault("cache.dir", "data/cache")
	v.SetDefault("cache.ttl_hours", 168)
	v.SetDefault("cache.max_body_chars", 200000)

	v.SetDefault("sources.dir", "data/sources")

	v.SetDefault("store.driver", "csv")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.kept_path", "data/leads.csv")
	v.SetDefault("store.filtered_path", "data/filtered.csv")

	v.SetDefault("server.port", 8080)

	v.SetDefault("scoring.min_score", 5.0)
	v.SetDefault("scoring.require_dev_signal", true)
	v.SetDefault("scoring.require_team_cue", true)
	v.SetDefault("scoring.builder_penalty", 3.0)

	v.SetDefault("scoring.weights", map[string]float64{
		// Developer-tool orientation.
		"api":           2,
		"sdk":           2,
		"cli":           2,
		"webhook":       1.5,
		"webhooks":      1.5,
		"docs":          1,
		"documentation": 1,
		"changelog":     1,
		"open source":   1,
		"self-hosted":   1,
		"integration":   0.5,

		// Multi-seat and collaboration cues.
		"per seat":  2,
		"per user":  2,
		"sso":       2,
		"saml":      1.5,
		"workspace": 1,
		"team plan": 1,
		"audit log": 1,
		"rbac":      1,

		// Commercial readiness.
		"pricing":    1,
		"free trial": 0.5,
		"sign up":    0.5,

		// Launch language.
		"beta":          1,
		"early access":  1,
		"launching":     1,
		"just launched": 1,
		"waitlist":      0.5,

		// Off-target verticals.
		"casino":         -5,
		"betting":        -5,
		"crypto signals": -4,
		"essay writing":  -4,
		"coupon":         -3,
		"dropshipping":   -3,
	})

	v.SetDefault("scoring.dev_signals", []string{
		"api", "sdk", "cli", "webhook", "webhooks",
		"docs", "documentation", "changelog", "open source", "self-hosted",
	})
	v.SetDefault("scoring.team_signals", []string{
		"per seat", "per user", "sso", "saml",
		"workspace", "team plan", "audit log", "rbac",
	})
	v.SetDefault("scoring.launch_keywords", []string{
		"beta", "early access", "launching", "just launched", "waitlist",
	})
	v.SetDefault("scoring.pricing_models", []map[string]any{
		{"name": "per_seat", "patterns": []string{"per seat", "per user", "/seat", "/user"}},
		{"name": "usage_based", "patterns": []string{"pay as you go", "usage-based", "usage based", "per request"}},
		{"name": "flat", "patterns": []string{"flat rate", "one price", "single plan"}},
		{"name": "freemium", "patterns": []string{"free plan", "free tier", "free forever"}},
		{"name": "one_time", "patterns": []string{"lifetime deal", "one-time payment", "pay once"}},
	})

	v.SetDefault("domains.multi_tenant_suffixes", []string{
		"github.io", "gitlab.io", "vercel.app", "netlify.app",
		"pages.dev", "web.app", "herokuapp.com", "onrender.com",
		"fly.dev", "surge.sh", "repl.co", "glitch.me",
	})
	v.SetDefault("domains.skip", []string{
		"news.ycombinator.com", "producthunt.com", "reddit.com",
		"twitter.com", "x.com", "linkedin.com", "facebook.com",
		"instagram.com", "youtube.com", "medium.com", "substack.com",
		"github.com", "gitlab.com", "bitbucket.org",
		"apps.apple.com", "play.google.com", "chrome.google.com",
		"crunchbase.com", "wikipedia.org", "betalist.com",
	})
	v.SetDefault("domains.builder", []string{
		"wixsite.com", "wix.com", "squarespace.com", "weebly.com",
		"webflow.io", "carrd.co", "notion.site", "typeform.com",
		"google.com", "framer.website", "framer.ai", "strikingly.com",
	})
	v.SetDefault("domains.repo_hosts", []string{
		"github.com", "gitlab.com",
	})
	v.SetDefault("domains.resolve_exclude", []string{
		"github.com", "gitlab.com", "github.io", "gitlab.io",
		"twitter.com", "x.com", "linkedin.com", "facebook.com",
		"youtube.com", "google.com", "apple.com", "discord.gg",
		"discord.com", "patreon.com", "opencollective.com",
	})
}

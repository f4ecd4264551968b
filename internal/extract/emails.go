package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Email confidence labels persisted on the lead.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceNone   = "none"
)

const maxEmails = 5

var (
	emailRe      = regexp.MustCompile(`[a-zA-Z0-9][a-zA-Z0-9._%+\-]*@[a-zA-Z0-9][a-zA-Z0-9.\-]*\.[a-zA-Z]{2,}`)
	decimalRefRe = regexp.MustCompile(`&#(\d{1,7});`)
	hexRefRe     = regexp.MustCompile(`&#[xX]([0-9a-fA-F]{1,6});`)
	unicodeEscRe = regexp.MustCompile(`\\u([0-9a-fA-F]{4})`)
)

// blockedPrefixes are role and placeholder local parts that never reach a
// human worth emailing.
var blockedPrefixes = []string{
	"noreply", "no-reply", "no_reply", "donotreply", "do-not-reply",
	"notifications", "notification", "mailer-daemon", "postmaster", "bounce",
	"abuse", "admin", "administrator", "webmaster", "root", "hostmaster",
	"test", "testing", "demo", "example", "sample",
	"user", "username", "name", "email", "mail", "your", "you", "someone", "somebody",
	"firstname", "lastname", "john.doe", "jane.doe", "janedoe", "johndoe",
	"privacy", "legal", "dmca", "security", "unsubscribe",
}

// blockedDomains are placeholder and infrastructure domains.
var blockedDomains = []string{
	"example.com", "example.org", "example.net", "example.io",
	"domain.com", "yourdomain.com", "yourcompany.com", "company.com",
	"email.com", "mysite.com", "test.com", "acme.org",
	"sentry.io", "wixpress.com", "sentry-next.wixpress.com",
	"godaddy.com", "schema.org",
}

// assetSuffixes filter image filenames that happen to match the address
// shape (logo@2x.png).
var assetSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico", ".css", ".js"}

// Emails extracts contact addresses from page text: HTML entities and common
// escape sequences are decoded first, role/placeholder addresses dropped,
// survivors deduplicated, ranked by confidence, and capped at five.
func Emails(text string) []string {
	decoded := decodeObfuscations(text)

	seen := make(map[string]struct{})
	var found []string
	for _, raw := range emailRe.FindAllString(decoded, -1) {
		email := strings.ToLower(strings.Trim(raw, "."))
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		if rankEmail(email) > 0 {
			found = append(found, email)
		}
	}

	// Stable sort: confidence first, discovery order among equals.
	sort.SliceStable(found, func(i, j int) bool {
		return rankEmail(found[i]) > rankEmail(found[j])
	})

	if len(found) > maxEmails {
		found = found[:maxEmails]
	}
	return found
}

// Confidence derives the lead-level label from the ranked email list: high
// for a personal or hello/team-style top address, medium for support/contact
// style, none when nothing survived filtering.
func Confidence(ranked []string) string {
	if len(ranked) == 0 {
		return ConfidenceNone
	}
	if rankEmail(ranked[0]) >= 2 {
		return ConfidenceHigh
	}
	return ConfidenceMedium
}

// rankEmail scores an address: 0 blocked, 1 support/contact-style, 2
// hello/team-style, 3 personal or unrecognized prefix.
func rankEmail(email string) int {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return 0
	}
	local, domain := email[:at], email[at+1:]

	for _, suffix := range assetSuffixes {
		if strings.HasSuffix(domain, suffix) {
			return 0
		}
	}
	for _, blocked := range blockedDomains {
		if domain == blocked || strings.HasSuffix(domain, "."+blocked) {
			return 0
		}
	}
	for _, blocked := range blockedPrefixes {
		if local == blocked || strings.HasPrefix(local, blocked+"+") || strings.HasPrefix(local, blocked+".") {
			return 0
		}
	}

	switch local {
	case "hello", "hey", "hi", "howdy", "team", "founders", "founder", "yo":
		return 2
	case "support", "contact", "info", "sales", "help", "feedback", "press":
		return 1
	}
	return 3
}

// decodeObfuscations reverses the common ways pages hide addresses from
// naive scrapers: numeric/hex character references, \uXXXX escapes, and
// spelled-out at/dot.
func decodeObfuscations(text string) string {
	text = decimalRefRe.ReplaceAllStringFunc(text, func(m string) string {
		code, err := strconv.Atoi(decimalRefRe.FindStringSubmatch(m)[1])
		if err != nil || code > 0x10FFFF {
			return m
		}
		return string(rune(code))
	})
	text = hexRefRe.ReplaceAllStringFunc(text, func(m string) string {
		code, err := strconv.ParseInt(hexRefRe.FindStringSubmatch(m)[1], 16, 32)
		if err != nil {
			return m
		}
		return string(rune(code))
	})
	text = unicodeEscRe.ReplaceAllStringFunc(text, func(m string) string {
		code, err := strconv.ParseInt(unicodeEscRe.FindStringSubmatch(m)[1], 16, 32)
		if err != nil {
			return m
		}
		return string(rune(code))
	})

	replacer := strings.NewReplacer(
		" [at] ", "@", "[at]", "@", " (at) ", "@", "(at)", "@",
		" [dot] ", ".", "[dot]", ".", " (dot) ", ".", "(dot)", ".",
	)
	return replacer.Replace(text)
}

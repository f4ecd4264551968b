// Package extract pulls structured signals out of fetched marketing pages.
// Everything here is a pure function over HTML or combined page text: a
// tolerant goquery/regex hybrid, not a rendering engine.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxTitleLen     = 200
	maxValuePropLen = 120
)

// Signals bundles the per-page extraction results.
type Signals struct {
	Title           string
	ValueProp       string
	ContactChannels []string
	HasCareers      bool
	TeamSize        string
}

// FromHTML extracts the homepage-level signals. Unparseable HTML yields
// zero-valued signals rather than an error.
func FromHTML(html string) Signals {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Signals{TeamSize: "0"}
	}
	return Signals{
		Title:           Title(doc),
		ValueProp:       ValueProp(doc),
		ContactChannels: ContactChannels(doc, html),
		HasCareers:      HasCareers(html),
		TeamSize:        TeamSizeBucket(doc),
	}
}

// Title returns the first <title> content, trimmed and capped.
func Title(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	return truncate(collapseSpace(title), maxTitleLen)
}

// ValueProp picks the page's value proposition: first heading, else meta
// description, else Open Graph description, else the first paragraph of
// plausible length.
func ValueProp(doc *goquery.Document) string {
	for _, sel := range []string{"h1", "h2"} {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := collapseSpace(strings.TrimSpace(s.Text()))
			if text != "" {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return truncate(found, maxValuePropLen)
		}
	}

	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		if d := collapseSpace(strings.TrimSpace(desc)); d != "" {
			return truncate(d, maxValuePropLen)
		}
	}
	if desc, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content"); ok {
		if d := collapseSpace(strings.TrimSpace(desc)); d != "" {
			return truncate(d, maxValuePropLen)
		}
	}

	var para string
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := collapseSpace(strings.TrimSpace(s.Text()))
		if len(text) >= 20 && len(text) <= 200 {
			para = text
			return false
		}
		return true
	})
	return truncate(para, maxValuePropLen)
}

// chatWidgetHosts are script signatures of embedded chat widgets.
var chatWidgetHosts = []string{
	"intercom.io",
	"widget.intercom",
	"crisp.chat",
	"drift.com",
	"driftt.com",
	"tawk.to",
}

// ContactChannels detects contact surfaces: a contact-form link, a chat
// widget, and hosted messaging/scheduling links. Channel names are emitted
// in a fixed order so output stays deterministic.
func ContactChannels(doc *goquery.Document, html string) []string {
	lower := strings.ToLower(html)

	hasContactForm := false
	hasDiscord := false
	hasSlack := false
	hasScheduling := false
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.ToLower(href)
		text := strings.ToLower(strings.TrimSpace(s.Text()))
		switch {
		case strings.Contains(href, "/contact") || text == "contact" || text == "contact us":
			hasContactForm = true
		case strings.Contains(href, "discord.gg/") || strings.Contains(href, "discord.com/invite"):
			hasDiscord = true
		case strings.Contains(href, "join.slack.com") || strings.Contains(href, "slack.com/join"):
			hasSlack = true
		case strings.Contains(href, "calendly.com/") || strings.Contains(href, "cal.com/"):
			hasScheduling = true
		}
	})

	hasChat := false
	for _, host := range chatWidgetHosts {
		if strings.Contains(lower, host) {
			hasChat = true
			break
		}
	}

	var channels []string
	if hasContactForm {
		channels = append(channels, "contact_form")
	}
	if hasChat {
		channels = append(channels, "chat_widget")
	}
	if hasDiscord {
		channels = append(channels, "discord")
	}
	if hasSlack {
		channels = append(channels, "slack")
	}
	if hasScheduling {
		channels = append(channels, "scheduling")
	}
	return channels
}

// careerIndicators mark a hiring page or section.
var careerIndicators = []string{
	"careers",
	"we're hiring",
	"we are hiring",
	"now hiring",
	"join our team",
	"join the team",
	"open positions",
	"open roles",
}

// HasCareers reports whether the combined text shows hiring indicators.
func HasCareers(text string) bool {
	lower := strings.ToLower(text)
	for _, indicator := range careerIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// TeamSizeBucket estimates headcount from team-labeled imagery. A weak
// heuristic by construction; buckets, not counts.
func TeamSizeBucket(doc *goquery.Document) string {
	count := 0
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		alt, _ := s.Attr("alt")
		src, _ := s.Attr("src")
		class, _ := s.Attr("class")
		blob := strings.ToLower(alt + " " + src + " " + class)
		if strings.Contains(blob, "team") || strings.Contains(blob, "founder") || strings.Contains(blob, "headshot") {
			count++
		}
	})
	switch {
	case count == 0:
		return "0"
	case count <= 3:
		return "1-3"
	case count <= 10:
		return "4-10"
	default:
		return "10+"
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

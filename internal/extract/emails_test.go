package extract

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailsFilterAndRank(t *testing.T) {
	t.Parallel()

	body := "Reach us: noreply@acme.com hello@acme.com support@acme.com"
	emails := Emails(body)

	assert.NotContains(t, emails, "noreply@acme.com")
	assert.Equal(t, []string{"hello@acme.com", "support@acme.com"}, emails)
	assert.Equal(t, ConfidenceHigh, Confidence(emails))
}

func TestEmailsPersonalRanksHighest(t *testing.T) {
	t.Parallel()

	body := "support@acme.com then jane@acme.com then hello@acme.com"
	emails := Emails(body)

	assert.Equal(t, []string{"jane@acme.com", "hello@acme.com", "support@acme.com"}, emails)
}

func TestEmailsDecodeEntities(t *testing.T) {
	t.Parallel()

	assert.Contains(t, Emails("mail: jane&#64;acme.com"), "jane@acme.com")
	assert.Contains(t, Emails("mail: jane&#x40;acme.com"), "jane@acme.com")
	assert.Contains(t, Emails(`mail: jane\u0040acme.com`), "jane@acme.com")
	assert.Contains(t, Emails("mail: jane [at] acme [dot] com"), "jane@acme.com")
}

func TestEmailsBlocklist(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Emails("noreply@acme.com admin@acme.com you@example.com webmaster@acme.com"))
	// Image filenames that look like addresses are not emails.
	assert.Empty(t, Emails(`<img src="logo@2x.png">`))
}

func TestEmailsDeduplicateAndCap(t *testing.T) {
	t.Parallel()

	body := "jane@acme.com jane@acme.com JANE@acme.com"
	assert.Equal(t, []string{"jane@acme.com"}, Emails(body))

	var many string
	for i := 0; i < 9; i++ {
		many += fmt.Sprintf(" person%d@acme.com", i)
	}
	assert.Len(t, Emails(many), 5)
}

func TestConfidenceLabels(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ConfidenceNone, Confidence(nil))
	assert.Equal(t, ConfidenceHigh, Confidence([]string{"jane@acme.com"}))
	assert.Equal(t, ConfidenceHigh, Confidence([]string{"team@acme.com"}))
	assert.Equal(t, ConfidenceMedium, Confidence([]string{"support@acme.com"}))
}

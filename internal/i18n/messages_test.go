package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinterRendersEnglish(t *testing.T) {
	p := NewPrinter("en-US")
	assert.Equal(t, "Please give your invite a title.", p.T(TitleRequired))
	assert.Equal(t,
		"bob@example.com has a confirmed account and this invite will be encrypted using their public key.",
		p.T(LookupConfirmed, "bob@example.com"))
}

func TestPrinterFallsBackToEnglish(t *testing.T) {
	for _, locale := range []string{"", "fr-FR", "not a locale"} {
		assert.Equal(t, "Passphrase (optional)", NewPrinter(locale).T(PassphraseOptional), "locale %q", locale)
	}
}

func TestEveryKeyHasEnglishText(t *testing.T) {
	p := NewPrinter("en")
	for key := range english {
		assert.NotEqual(t, key, p.T(key, "x@example.com"), "missing translation for %s", key)
	}
}

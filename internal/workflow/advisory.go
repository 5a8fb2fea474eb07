package workflow

import (
	"github.com/stanstork/stratum-spaces/internal/i18n"
	"github.com/stanstork/stratum-spaces/internal/models"
)

// Severity styles the advisory banner.
type Severity string

const (
	SeverityNone    Severity = ""
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warn"
)

// Advisory is the non-authoritative hint derived from the latest account lookup.
type Advisory struct {
	Message               string
	Severity              Severity
	PassphrasePlaceholder string
}

func emptyAdvisory(p *i18n.Printer) Advisory {
	return Advisory{PassphrasePlaceholder: p.T(i18n.PassphraseDefault)}
}

func advisoryFor(p *i18n.Printer, result models.LookupResult) Advisory {
	switch {
	case result.KeyUnusable:
		return Advisory{
			Message:               p.T(i18n.LookupKeyUnusable, result.Email),
			Severity:              SeverityWarning,
			PassphrasePlaceholder: p.T(i18n.PassphraseRecommended),
		}
	case result.Presence == models.PresenceConfirmed && result.PublicKey != nil:
		return Advisory{
			Message:               p.T(i18n.LookupConfirmed, result.Email),
			Severity:              SeveritySuccess,
			PassphrasePlaceholder: p.T(i18n.PassphraseOptional),
		}
	case result.Presence != models.PresenceNone:
		return Advisory{
			Message:               p.T(i18n.LookupUnconfirmed, result.Email),
			Severity:              SeverityWarning,
			PassphrasePlaceholder: p.T(i18n.PassphraseRecommended),
		}
	default:
		return Advisory{
			Message:               p.T(i18n.LookupNone, result.Email),
			Severity:              SeverityWarning,
			PassphrasePlaceholder: p.T(i18n.PassphraseRecommended),
		}
	}
}

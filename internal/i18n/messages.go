// Package i18n holds the user-facing strings of the invite workflow and renders them through
// golang.org/x/text/message.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	TitleRequired      = "invite.error.title_required"
	SpaceKeyMissing    = "invite.error.space_key_missing"
	EmailInvalid       = "invite.error.email_invalid"
	RoleRequired       = "invite.error.role_required"
	RoleUnknown        = "invite.error.role_unknown"
	AlreadyMember      = "invite.error.already_member"
	AlreadyInvited     = "invite.error.already_invited"
	NoProtection       = "invite.error.no_protection"
	ConnectionFailed   = "invite.error.connection_failed"
	SendFailed         = "invite.error.send_failed"
	ConnectionRequired = "invite.error.connection_required"

	LookupConfirmed   = "invite.lookup.confirmed"
	LookupUnconfirmed = "invite.lookup.unconfirmed"
	LookupNone        = "invite.lookup.none"
	LookupKeyUnusable = "invite.lookup.key_unusable"

	PassphraseDefault     = "invite.passphrase.default"
	PassphraseOptional    = "invite.passphrase.optional"
	PassphraseRecommended = "invite.passphrase.recommended"
)

var english = map[string]string{
	TitleRequired:      "Please give your invite a title.",
	SpaceKeyMissing:    "The current space has no key. Please try logging out and back in.",
	EmailInvalid:       "The email given is invalid.",
	RoleRequired:       "Please select a role for this user.",
	RoleUnknown:        "The specified role does not exist.",
	AlreadyMember:      "That user is already a member of this space.",
	AlreadyInvited:     "That user is already invited to this space.",
	NoProtection:       "This invite can't be protected. Please give it a passphrase.",
	ConnectionFailed:   "Couldn't connect to the server",
	SendFailed:         "There was a problem sending that invite",
	ConnectionRequired: "Sending an invite requires a connection to the server.",

	LookupConfirmed:   "%s has a confirmed account and this invite will be encrypted using their public key.",
	LookupUnconfirmed: "%s has an account, but it is not confirmed. You may want to protect the invite with a passphrase to keep it private.",
	LookupNone:        "%s isn't registered. It's recommended to protect the invite with a passphrase to keep it private.",
	LookupKeyUnusable: "%s has an account, but its public key can't be used. Protect the invite with a passphrase to keep it private.",

	PassphraseDefault:     "Passphrase",
	PassphraseOptional:    "Passphrase (optional)",
	PassphraseRecommended: "Passphrase (optional, but recommended)",
}

var supported = []language.Tag{language.English}

func init() {
	for key, msg := range english {
		if err := message.SetString(language.English, key, msg); err != nil {
			panic(err)
		}
	}
}

// Printer renders catalog keys for one locale.
type Printer struct {
	p *message.Printer
}

// NewPrinter picks the closest supported locale, falling back to English.
func NewPrinter(locale string) *Printer {
	tag := supported[0]
	if parsed, err := language.Parse(strings.TrimSpace(locale)); err == nil {
		_, index, _ := language.NewMatcher(supported).Match(parsed)
		tag = supported[index]
	}
	return &Printer{p: message.NewPrinter(tag)}
}

// T renders key with args.
func (p *Printer) T(key string, args ...interface{}) string {
	return p.p.Sprintf(key, args...)
}

package workflow

import (
	"strings"

	"github.com/stanstork/stratum-spaces/internal/i18n"
	"github.com/stanstork/stratum-spaces/internal/models"
)

// Form holds the raw values of the invite dialog.
type Form struct {
	Title      string
	Email      string
	Role       string
	Passphrase string
}

type normalizedForm struct {
	title      string
	email      string
	role       models.SpaceRole
	passphrase string
}

// validate collects every violation instead of stopping at the first one.
func validate(p *i18n.Printer, space *models.Space, roles models.RoleCatalog, form Form) (normalizedForm, []string) {
	nf := normalizedForm{
		title:      strings.TrimSpace(form.Title),
		email:      models.NormalizeEmail(form.Email),
		role:       models.SpaceRole(strings.TrimSpace(form.Role)),
		passphrase: form.Passphrase,
	}

	var violations []string
	if nf.title == "" {
		violations = append(violations, p.T(i18n.TitleRequired))
	}
	if len(space.Key) == 0 {
		violations = append(violations, p.T(i18n.SpaceKeyMissing))
	}
	if nf.email == "" || !models.LooksLikeEmail(nf.email) {
		violations = append(violations, p.T(i18n.EmailInvalid))
	}
	if nf.role == "" {
		violations = append(violations, p.T(i18n.RoleRequired))
	}
	if !roles.Contains(nf.role) {
		violations = append(violations, p.T(i18n.RoleUnknown))
	}
	if nf.email != "" {
		if space.HasMember(nf.email) {
			violations = append(violations, p.T(i18n.AlreadyMember))
		}
		if space.HasInvite(nf.email) {
			violations = append(violations, p.T(i18n.AlreadyInvited))
		}
	}
	return nf, violations
}

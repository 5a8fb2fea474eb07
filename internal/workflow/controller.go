// Package workflow drives the "invite someone to this space" dialog: a debounced account lookup
// that feeds advisory hints, and a submit pipeline that validates, seals and persists an invite.
//
// Every piece of shared state is guarded by the controller mutex, which plays the part of the
// single UI thread. Remote calls and sealing run with the mutex released; their results are only
// applied after re-acquiring it and checking that they are still current.
package workflow

import (
	"context"
	"encoding/base64"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stanstork/stratum-spaces/internal/debounce"
	"github.com/stanstork/stratum-spaces/internal/i18n"
	"github.com/stanstork/stratum-spaces/internal/models"
	"github.com/stanstork/stratum-spaces/internal/remote"
	"github.com/stanstork/stratum-spaces/internal/seal"
)

const (
	scopeLookup = "lookup"
	scopeSubmit = "submit"
)

// State is the lifecycle stage of the dialog.
type State int

const (
	StateEditing State = iota
	StateValidating
	StateSealing
	StatePersisting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateValidating:
		return "validating"
	case StateSealing:
		return "sealing"
	case StatePersisting:
		return "persisting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Snapshot is what the view needs to draw the dialog.
type Snapshot struct {
	State         State
	InputDisabled bool
	Advisory      Advisory
	Roles         []models.RoleInfo
}

// Deps wires the controller to its collaborators. Space, Accounts, Invites and Sealer are
// required; everything else has a usable default.
type Deps struct {
	Space       *models.Space
	Roles       models.RoleCatalog
	Accounts    AccountFinder
	Invites     InviteSaver
	Sealer      Sealer
	Feedback    Feedback
	Loading     LoadingIndicator
	View        View
	Clock       clock.Clock
	LookupDelay time.Duration
	Printer     *i18n.Printer
	Logger      zerolog.Logger
	// OnClose runs once, after the dialog reaches StateClosed.
	OnClose func()
}

type Controller struct {
	space    *models.Space
	roles    models.RoleCatalog
	accounts AccountFinder
	invites  InviteSaver
	sealer   Sealer
	feedback Feedback
	loading  LoadingIndicator
	view     View
	printer  *i18n.Printer
	logger   zerolog.Logger
	onClose  func()

	busy      *Busy
	debouncer *debounce.Debouncer

	mu          sync.Mutex
	state       State
	lookupGuard *Guard
	lookup      models.LookupResult
	advisory    Advisory
}

func New(d Deps) (*Controller, error) {
	if d.Space == nil {
		return nil, ErrNoSpace
	}
	if d.Accounts == nil || d.Invites == nil || d.Sealer == nil {
		return nil, errors.New("workflow: accounts, invites and sealer are required")
	}
	if d.Roles == nil {
		d.Roles = models.DefaultRoleCatalog()
	}
	if d.Printer == nil {
		d.Printer = i18n.NewPrinter("")
	}
	if d.Feedback == nil {
		d.Feedback = nopFeedback{}
	}
	if d.Loading == nil {
		d.Loading = nopLoading{}
	}

	c := &Controller{
		space:    d.Space,
		roles:    d.Roles,
		accounts: d.Accounts,
		invites:  d.Invites,
		sealer:   d.Sealer,
		feedback: d.Feedback,
		loading:  d.Loading,
		view:     d.View,
		printer:  d.Printer,
		logger:   d.Logger.With().Str("component", "invite_workflow").Str("space_id", d.Space.ID).Logger(),
		onClose:  d.OnClose,
		busy:     NewBusy(),
	}
	c.advisory = emptyAdvisory(c.printer)
	c.debouncer = debounce.New(d.Clock, d.LookupDelay, c.runLookup, c.logger)
	return c, nil
}

// RequireConnection refuses to go on when the server is unreachable.
func (c *Controller) RequireConnection(ctx context.Context, p Pinger) error {
	if err := p.Ping(ctx); err != nil {
		c.feedback.Message(c.printer.T(i18n.ConnectionRequired))
		c.logger.Warn().Err(err).Msg("invite dialog needs a server connection")
		return errors.Wrap(ErrNoConnection, err.Error())
	}
	return nil
}

// State returns the current lifecycle stage.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the current view model.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// InputDisabled reports whether any lookup or submission currently holds the input.
func (c *Controller) InputDisabled() bool {
	return c.busy.Held()
}

// OnEmailChanged is called on every edit of the email field.
func (c *Controller) OnEmailChanged(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return
	}

	email := models.NormalizeEmail(raw)
	if !models.LooksLikeEmail(email) {
		c.debouncer.Cancel()
		c.lookupGuard.Release()
		c.lookupGuard = nil
		c.lookup = models.LookupResult{}
		c.advisory = emptyAdvisory(c.printer)
		c.renderLocked()
		return
	}

	if c.lookupGuard == nil {
		c.lookupGuard = c.busy.Acquire(scopeLookup)
	}
	c.debouncer.Trigger(email)
	c.renderLocked()
}

// runLookup is the debounced action. ctx is cancelled once a newer edit or Close supersedes it.
func (c *Controller) runLookup(ctx context.Context, email string) {
	account, err := c.accounts.FindAccountByEmail(ctx, email)
	var result models.LookupResult
	if err == nil {
		result, err = models.NewLookupResult(email, account)
		if errors.Is(err, models.ErrInvalidPublicKey) {
			c.logger.Warn().Err(err).Str("email", email).Msg("account has an unusable public key")
			stripped := *account
			stripped.PublicKey = ""
			result, err = models.NewLookupResult(email, &stripped)
			result.KeyUnusable = true
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Err() != nil || c.state == StateClosed {
		return
	}
	if err != nil {
		c.logger.Debug().Err(err).Bool("disconnected", remote.IsDisconnected(err)).Str("email", email).Msg("account lookup failed")
		c.lookup = models.LookupResult{}
		c.advisory = emptyAdvisory(c.printer)
		c.lookupGuard.Release()
		c.lookupGuard = nil
		c.renderLocked()
		return
	}
	c.onLookupResultLocked(result)
}

func (c *Controller) onLookupResultLocked(result models.LookupResult) {
	c.lookup = result
	c.advisory = advisoryFor(c.printer, result)
	c.lookupGuard.Release()
	c.lookupGuard = nil
	c.renderLocked()
}

// Submit validates, seals and saves the invite. Every failure is reported through Feedback and
// returned; the dialog goes back to StateEditing with input re-enabled on every path.
func (c *Controller) Submit(ctx context.Context, form Form) error {
	c.mu.Lock()
	switch c.state {
	case StateEditing:
	case StateClosed:
		c.mu.Unlock()
		return ErrClosed
	default:
		c.mu.Unlock()
		return ErrSubmitInProgress
	}

	c.state = StateValidating
	nf, violations := validate(c.printer, c.space, c.roles, form)
	if len(violations) > 0 {
		c.state = StateEditing
		c.mu.Unlock()
		verr := &ValidationError{Messages: violations}
		c.feedback.Message(verr.Error())
		return verr
	}

	guard := c.busy.Acquire(scopeSubmit)
	c.loading.SetLoading(true)
	defer func() {
		c.mu.Lock()
		guard.Release()
		if c.state != StateClosed {
			c.state = StateEditing
		}
		c.renderLocked()
		c.mu.Unlock()
		c.loading.SetLoading(false)
	}()

	c.state = StateSealing
	recipient := c.lookup.SealingKey(nf.email)
	invite := models.Invite{
		SpaceID:  c.space.ID,
		SpaceKey: append([]byte(nil), c.space.Key...),
		ToUser:   nf.email,
		Role:     nf.role,
		Title:    nf.title,
	}
	c.renderLocked()
	c.mu.Unlock()

	fields := invite.Fields(base64.StdEncoding.EncodeToString(invite.SpaceKey))
	payload, err := c.sealer.Seal(fields, recipient, nf.passphrase)
	if err != nil {
		return c.sealingFailed(err)
	}
	invite.Sealed = payload

	c.setState(StatePersisting)
	saved, err := c.invites.SaveInvite(ctx, invite)
	if err != nil {
		return c.persistFailed(invite, err)
	}

	invite.ID = saved.ID
	invite.CreatedAt = saved.CreatedAt
	invite.FromUser = saved.FromUser
	return c.succeeded(invite)
}

func (c *Controller) sealingFailed(err error) error {
	msg := c.printer.T(i18n.SendFailed)
	if errors.Is(err, seal.ErrNoProtection) {
		msg = c.printer.T(i18n.NoProtection)
	} else {
		c.logger.Error().Err(err).Msg("sealing invite failed")
	}
	c.feedback.Message(msg)
	return &ValidationError{Messages: []string{msg}, Err: err}
}

func (c *Controller) persistFailed(invite models.Invite, err error) error {
	if remote.IsDisconnected(err) {
		c.feedback.Message(c.printer.T(i18n.ConnectionFailed))
		return &ConnectivityError{Err: err}
	}
	c.feedback.Error(c.printer.T(i18n.SendFailed), err)
	c.logger.Error().
		Err(err).
		Str("to_user", invite.ToUser).
		Str("role", string(invite.Role)).
		Int("status", remote.StatusCode(err)).
		Msg("spaces: invites: send failed")
	return &ServerError{Err: err}
}

func (c *Controller) succeeded(invite models.Invite) error {
	if err := c.space.AddInvite(invite.Sanitized()); err != nil {
		c.logger.Warn().Err(err).Str("to_user", invite.ToUser).Msg("invite saved but not added locally")
	}
	c.logger.Info().Str("invite_id", invite.ID).Str("to_user", invite.ToUser).Msg("invite sent")
	c.Close()
	return nil
}

// Close releases the dialog. Pending lookups become inert; it is safe to call more than once.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = StateClosed
	c.debouncer.Close()
	c.lookupGuard.Release()
	c.lookupGuard = nil
	c.renderLocked()
	onClose := c.onClose
	c.mu.Unlock()

	if onClose != nil {
		onClose()
	}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return
	}
	c.state = s
	c.renderLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:         c.state,
		InputDisabled: c.busy.Held(),
		Advisory:      c.advisory,
		Roles:         c.roles.Sorted(),
	}
}

func (c *Controller) renderLocked() {
	if c.view == nil {
		return
	}
	c.view.Render(c.snapshotLocked())
}

type nopFeedback struct{}

func (nopFeedback) Message(string)      {}
func (nopFeedback) Error(string, error) {}

type nopLoading struct{}

func (nopLoading) SetLoading(bool) {}

// Command invite sends a sealed space invite from the terminal. It drives the same workflow as
// the invite dialog: look up the recipient, show the advisory, then validate, seal and save.
package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stanstork/stratum-spaces/internal/config"
	"github.com/stanstork/stratum-spaces/internal/i18n"
	"github.com/stanstork/stratum-spaces/internal/remote"
	"github.com/stanstork/stratum-spaces/internal/seal"
	"github.com/stanstork/stratum-spaces/internal/workflow"
)

type options struct {
	spaceID    string
	keyFile    string
	email      string
	role       string
	title      string
	passphrase string
	verbose    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.spaceID, "space", "", "ID of the space to invite into")
	flag.StringVar(&opts.keyFile, "key-file", "", "file holding the base64 space key")
	flag.StringVar(&opts.email, "email", "", "email of the person to invite")
	flag.StringVar(&opts.role, "role", "member", "role to grant")
	flag.StringVar(&opts.title, "title", "", "title shown with the invite")
	flag.StringVar(&opts.passphrase, "passphrase", os.Getenv("STRATUM_INVITE_PASSPHRASE"), "optional passphrase protecting the invite")
	flag.BoolVar(&opts.verbose, "v", false, "verbose logging")
	flag.Parse()

	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	logger := zerolog.New(consoleWriter).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if opts.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	feedback := &consoleFeedback{out: os.Stderr, logger: logger}
	if err := run(context.Background(), config.Load(), opts, feedback, logger); err != nil {
		report(os.Stderr, feedback, err)
		os.Exit(1)
	}
}

// report prints err unless the workflow already showed the user a message for it.
func report(w io.Writer, feedback *consoleFeedback, err error) {
	if err == nil || feedback.reported {
		return
	}
	fmt.Fprintln(w, err)
}

func run(ctx context.Context, cfg *config.Config, opts options, feedback *consoleFeedback, logger zerolog.Logger) error {
	if opts.spaceID == "" || opts.email == "" {
		return errors.New("both -space and -email are required")
	}
	key, err := readSpaceKey(opts.keyFile)
	if err != nil {
		return err
	}

	client := remote.NewClient(cfg.API, logger)
	printer := i18n.NewPrinter(cfg.Invite.Locale)

	snap, err := client.GetSpace(ctx, opts.spaceID)
	if err != nil {
		if remote.IsDisconnected(err) {
			return errors.New(printer.T(i18n.ConnectionRequired))
		}
		return errors.Wrap(err, "load space")
	}
	space := snap.Space(key)

	ctrl, err := workflow.New(workflow.Deps{
		Space:    space,
		Accounts: client,
		Invites:  client,
		Sealer: seal.New(
			seal.WithKDFParams(cfg.Invite.KDF),
			seal.WithAllowUnprotected(cfg.Invite.AllowUnprotected),
		),
		Feedback:    feedback,
		LookupDelay: cfg.Invite.LookupDelay,
		Printer:     printer,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if err := ctrl.RequireConnection(ctx, client); err != nil {
		return err
	}

	ctrl.OnEmailChanged(opts.email)
	if err := waitForLookup(ctx, ctrl, cfg.Invite.LookupDelay+cfg.API.Timeout); err != nil {
		return err
	}
	if adv := ctrl.Snapshot().Advisory; adv.Message != "" {
		fmt.Fprintln(os.Stdout, adv.Message)
	}

	err = ctrl.Submit(ctx, workflow.Form{
		Title:      opts.title,
		Email:      opts.email,
		Role:       opts.role,
		Passphrase: opts.passphrase,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Invite sent to %s.\n", strings.ToLower(strings.TrimSpace(opts.email)))
	return nil
}

func waitForLookup(ctx context.Context, ctrl *workflow.Controller, limit time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()
	for ctrl.InputDisabled() {
		select {
		case <-ctx.Done():
			return errors.New("account lookup timed out")
		case <-ticker.C:
		}
	}
	return nil
}

func readSpaceKey(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read space key")
	}
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, errors.Wrap(err, "decode space key")
	}
	return key, nil
}

// consoleFeedback is the only place workflow messages reach the terminal.
type consoleFeedback struct {
	out      io.Writer
	logger   zerolog.Logger
	reported bool
}

func (f *consoleFeedback) Message(text string) {
	f.reported = true
	fmt.Fprintln(f.out, text)
}

func (f *consoleFeedback) Error(text string, err error) {
	f.reported = true
	f.logger.Debug().Err(err).Msg("invite failed")
	fmt.Fprintln(f.out, text)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"seva-health/internal/apiclient"
	"seva-health/internal/authstate"
	"seva-health/internal/config"
	"seva-health/internal/health"
	"seva-health/internal/kv"
	"seva-health/internal/logging"
	"seva-health/internal/platform/httpclient"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const requestTimeout = 15 * time.Second

// app carries what every command shares. The local store and the session
// holder are opened on first use so commands that need neither stay offline.
type app struct {
	cfg     config.Client
	log     *zap.Logger
	out     io.Writer
	noInput bool

	api   *apiclient.Client
	store *kv.Badger
	auth  *authstate.Holder
}

// newRootCmd builds the command tree. The caller closes the returned app
// after Execute.
func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:           "seva",
		Short:         "Seva health services from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().BoolVar(&a.noInput, "no-input", false, "never prompt, take every value from flags")

	root.AddCommand(
		newSignupCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newRecoverCmd(a),
		newRemindersCmd(a),
		newBMICmd(a),
		newBloodBanksCmd(a),
		newDrugsCmd(a),
		newPredictCmd(a),
		newAppointmentsCmd(a),
	)
	return root, a
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, warns := config.LoadClient()
	a.cfg = cfg
	a.out = cmd.OutOrStdout()
	if fd := os.Stdin.Fd(); !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		a.noInput = true
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logger = zap.NewNop()
	}
	a.log = logger
	for _, w := range warns {
		a.log.Warn("config", zap.String("detail", w))
	}

	a.api, err = apiclient.New(cfg.APIURL, requestTimeout, a.log)
	if err != nil {
		return fmt.Errorf("SEVA_API_URL: %w", err)
	}
	return nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("close local store", zap.Error(err))
		}
		a.store = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func (a *app) localStore() (*kv.Badger, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := kv.Open(kv.Config{
		Path:       filepath.Join(a.cfg.DataDir, "store"),
		SyncWrites: true,
		Logger:     a.log,
	})
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	a.store = store
	return store, nil
}

// holder returns the session holder, initializing it from the local store
// on first use.
func (a *app) holder(ctx context.Context) (*authstate.Holder, error) {
	if a.auth != nil {
		return a.auth, nil
	}
	store, err := a.localStore()
	if err != nil {
		return nil, err
	}
	h := authstate.NewHolder(store, apiclient.AuthBackend{Client: a.api}, a.log)
	if _, err := h.Init(ctx); err != nil {
		return nil, err
	}
	a.auth = h
	return h, nil
}

func (a *app) session(ctx context.Context) (authstate.Session, error) {
	h, err := a.holder(ctx)
	if err != nil {
		return authstate.Session{}, err
	}
	return h.Require()
}

// run shows a form unless prompting is disabled.
func (a *app) run(form *huh.Form) error {
	if a.noInput {
		return errors.New("input required: pass the missing flags, or run in a terminal without --no-input")
	}
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errCancelled
		}
		return err
	}
	return nil
}

var errCancelled = errors.New("cancelled")

// userMessage is the text shown for err.
func userMessage(err error) string {
	var nerr *httpclient.NetworkError
	if errors.As(err, &nerr) {
		return nerr.UserMessage()
	}
	if errors.Is(err, health.ErrMissingInput) {
		return "Please enter both weight and height"
	}
	return err.Error()
}

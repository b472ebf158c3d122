// Command eyecare is the clinic console: it drives the MauEyeCare backend
// through the SDK packages, holding the operator's session between runs.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/maueyecare/clinic/internal/api"
	"github.com/maueyecare/clinic/internal/config"
	"github.com/maueyecare/clinic/internal/domain/auth"
	"github.com/maueyecare/clinic/internal/guard"
	"github.com/maueyecare/clinic/internal/session"
)

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "eyecare",
		Short:         "MauEyeCare clinic console",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	rootCmd.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.bootstrapCmd(),
		a.patientsCmd(),
		a.visitsCmd(),
		a.prescriptionsCmd(),
		a.posCmd(),
		a.inventoryCmd(),
		a.dashboardCmd(),
		a.labCmd(),
		a.insightsCmd(),
		a.serveStubCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app holds the wired SDK stack. Built once in the root PersistentPreRunE so
// every subcommand sees the same session.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	client  *api.Client
	session *session.Store
	auth    *auth.Service
}

func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level)
	}
	a.log = logger

	// The anonymous client carries no token; login and bootstrap go through
	// it. The profile fetcher pins its own token per call, so it can share
	// the anonymous client.
	anon, err := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, api.StaticToken(""), logger)
	if err != nil {
		return err
	}
	a.auth = auth.NewService(anon)

	keyring := session.NewFileKeyring(cfg.TokenFile)
	a.session = session.NewStore(keyring, a.auth, logger)

	// The authed client reads the live session on every request, so a login
	// or logout mid-process takes effect immediately.
	a.client, err = api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, a.session, logger)
	if err != nil {
		return err
	}

	return a.session.Restore()
}

// requireAuth is the presence gate shared by every data command.
func (a *app) requireAuth() error {
	res := guard.Presence(a.session, "")
	if res.Decision != guard.Allow {
		return fmt.Errorf("not logged in; run 'eyecare login' first")
	}
	return nil
}

// requireRole additionally waits for the profile and checks role membership.
func (a *app) requireRole(ctx context.Context, allowed ...string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := a.session.WaitProfile(waitCtx); err != nil {
		return fmt.Errorf("resolving profile: %w", err)
	}

	switch res := guard.Role(a.session, "", allowed...); res.Decision {
	case guard.Allow:
		return nil
	case guard.Unauthorized:
		p := a.session.Profile()
		return fmt.Errorf("role %q is not permitted here", p.Role)
	case guard.Redirect:
		return fmt.Errorf("not logged in; run 'eyecare login' first")
	default:
		return fmt.Errorf("profile still loading; try again")
	}
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"scout/internal/shared"
)

// AuthLogin authenticates with a phone number and stores the issued token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	phone := strings.TrimSpace(cmd.StringArg("phone"))
	if phone == "" {
		return fmt.Errorf("%w: phone number is required", shared.ErrMissingArgument)
	}

	r.logger.Info("logging in", "phone", phone)

	grant, err := r.auth.LoginPhone(ctx, phone)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	r.writePlain("✓ Logged in as %s\n", grant.PhoneNumber)
	r.writePlain("Token expires in %d seconds\n", grant.ExpiresIn)
	return nil
}

// AuthLogout invalidates the session and removes the stored token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.auth.Logout(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out\n")
}

// AuthWhoami shows the authenticated user's profile.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	user, err := r.auth.Me(ctx)
	if err != nil {
		return err
	}

	r.writePlain("Phone:    %s\n", user.PhoneNumber)
	r.writePlain("Active:   %v\n", user.IsActive)
	r.writePlain("Sessions: %d\n", user.TotalSessions)
	return nil
}

// AuthStatus checks backend health and reports the current identity.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking backend health")

	health, err := r.discovery.Health(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	r.writePlain("✓ Service is %s\n", health.Status)
	if health.Service != "" {
		r.writePlain("Service: %s (%s)\n", health.Service, health.Version)
	}
	r.writePlain("Active sessions: %d\n", health.ActiveSessions)

	if r.auth.Authenticated() {
		r.writePlain("Authentication: ✓ Authenticated\n")
	} else {
		r.writePlain("Authentication: ✗ Guest (%s)\n", r.auth.GuestID())
	}
	return nil
}

// AuthLimit reports whether another search session is allowed.
func (r *Runner) AuthLimit(ctx context.Context, cmd *cli.Command) error {
	limit, err := r.auth.CheckSessionLimit(ctx)
	if err != nil {
		return err
	}

	if limit.CanSearch {
		r.writePlain("✓ Searches remaining: %d\n", limit.SessionsRemaining)
	} else {
		r.writePlain("✗ Session limit reached (%d used)\n", limit.SessionsUsed)
		if limit.Message != "" {
			r.writePlain("%s\n", limit.Message)
		}
	}
	return nil
}

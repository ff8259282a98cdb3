package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/msomdec/attendance-tracker/internal/domain"
)

// login prompts once for the admin password and stores the session token.
func (c *Console) login(ctx context.Context) bool {
	c.print("Enter Admin Password: ")
	password, ok := c.readLine(ctx)
	if !ok {
		if ctx.Err() != nil {
			c.println("\nInterrupted. Goodbye!")
		} else {
			c.println("")
		}
		return false
	}

	token, err := c.auth.Login(ctx, password)
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthorized) {
			slog.Error("admin login", "error", err)
		}
		slog.Warn("admin login rejected")
		c.println("Access Denied!")
		return false
	}

	slog.Info("admin logged in")
	c.token = token
	return true
}

// requireSession runs action only while the session token is valid. It
// reports false once the session has expired.
func (c *Console) requireSession(action func()) bool {
	if err := c.auth.ValidateToken(c.token); err != nil {
		slog.Info("admin session expired")
		c.println("Session expired. Please restart and sign in again.")
		return false
	}
	action()
	return true
}

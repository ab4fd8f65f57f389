package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/citybreaks/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/citybreaks/internal/common"
)

// Login authenticates against the server and remembers the session.
func (a *App) Login(ctx context.Context) error {
	return a.authenticate(ctx, a.accounts.Login, "Login successful")
}

// Signup creates an account and signs in with it.
func (a *App) Signup(ctx context.Context) error {
	return a.authenticate(ctx, a.accounts.Signup, "Account created")
}

func (a *App) authenticate(ctx context.Context, call func(context.Context, string, string) (string, error), done string) error {
	userName, err := GetSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		a.printErr(err)
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		a.printErr(err)
		return err
	}

	token, err := call(ctx, userName, password)
	if err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			fmt.Fprintln(a.out, "Server unavailable, try again when online")
		} else {
			a.printErr(err)
		}
		a.logger.Warn(ctx, "authentication failed", "user", userName, "error", err)
		return err
	}

	if err := a.session.Save(ctx, metadata.Session{UserName: userName, Token: token}); err != nil {
		a.logger.Warn(ctx, "cannot persist session", "error", err)
	}

	a.startSession(ctx, userName, token)
	fmt.Fprintln(a.out, done)
	a.logger.Info(ctx, "signed in", "user", userName)
	return nil
}

// Logout forgets the session. Queued operations stay in the cache.
func (a *App) Logout(ctx context.Context) error {
	a.stopSession()
	if err := a.session.Clear(ctx); err != nil {
		a.printErr(err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// restoreSession picks up the token saved by a previous run, so the cache
// and pending operations are usable without the server.
func (a *App) restoreSession(ctx context.Context) {
	sess, err := a.session.Load(ctx)
	if err != nil {
		a.logger.Warn(ctx, "cannot load session", "error", err)
		return
	}
	if sess == nil {
		return
	}
	a.startSession(ctx, sess.UserName, sess.Token)
	fmt.Fprintf(a.out, "Resumed session of %s\n", sess.UserName)
}

func (a *App) startSession(ctx context.Context, userName, token string) {
	a.stopSession()

	pushCtx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.token = token
	a.userName = userName
	a.stopPush = cancel
	a.draft = nil
	a.mu.Unlock()

	a.engine.SetToken(token)
	if a.push != nil {
		go func() {
			_ = a.push.Run(pushCtx, token)
		}()
	}
}

func (a *App) stopSession() {
	a.mu.Lock()
	cancel := a.stopPush
	a.stopPush = nil
	a.token = ""
	a.userName = ""
	a.draft = nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	a.engine.SetToken("")
}

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/citybreaks/internal/client/client"
	"github.com/dmitrijs2005/citybreaks/internal/client/config"
	"github.com/dmitrijs2005/citybreaks/internal/client/connectivity"
	"github.com/dmitrijs2005/citybreaks/internal/client/engine"
	"github.com/dmitrijs2005/citybreaks/internal/client/models"
	"github.com/dmitrijs2005/citybreaks/internal/client/push"
	"github.com/dmitrijs2005/citybreaks/internal/client/repositories"
	"github.com/dmitrijs2005/citybreaks/internal/logging"
	"golang.org/x/sync/errgroup"
)

type App struct {
	engine   syncEngine
	accounts accountClient
	session  sessionStore
	push     pushRunner
	monitor  connectivityMonitor
	logger   logging.Logger

	reader *bufio.Reader
	out    io.Writer

	mu         sync.Mutex
	token      string
	userName   string
	stopPush   context.CancelFunc
	draft      *models.Record
	closeFuncs []func() error

	saveExport func(ctx context.Context, url string) (string, error)
}

// NewApp opens the cache and builds every client component from c.
func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	repos, err := repositories.Open(ctx, c.CacheDSN)
	if err != nil {
		return nil, err
	}

	prober, err := client.NewHealthProber(c.HealthAddr)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	api := client.NewHTTPClient(c.APIBaseURL, c.RequestTimeout)
	monitor := connectivity.NewMonitor(prober, c.OnlineCheckInterval, l)
	eng := engine.New(api, repos.Cache, monitor, l, engine.WithReplayRetry(c.ReplayAttempts, c.ReplayBackoff))

	pc, err := push.NewClient(c.APIBaseURL, eng.HandlePush, l)
	if err != nil {
		_ = prober.Close()
		_ = repos.Close()
		return nil, err
	}

	a := newApp(eng, api, repos.Session, pc, monitor, l, os.Stdin, os.Stdout)
	a.closeFuncs = []func() error{prober.Close, repos.Close}
	return a, nil
}

func newApp(e syncEngine, accounts accountClient, s sessionStore, p pushRunner, m connectivityMonitor,
	l logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		engine:   e,
		accounts: accounts,
		session:  s,
		push:     p,
		monitor:  m,
		logger:   l.With("module", "cli"),
		reader:   bufio.NewReader(in),
		out:      out,

		saveExport: downloadExport,
	}
}

// Run starts the connectivity monitor and the sync engine, restores the
// previous session and serves the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	transitions := a.monitor.Subscribe()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.monitor.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return a.engine.Run(gctx, transitions)
	})

	// The REPL blocks on input, so it stays outside the group and is
	// abandoned when ctx ends first.
	replDone := make(chan struct{})
	go func() {
		defer close(replDone)
		fmt.Fprintln(a.out, "Welcome to citybreaks (type 'help' for commands)")
		a.restoreSession(gctx)
		runREPL(gctx, a, a.getStatus, a.reader)
	}()

	select {
	case <-replDone:
	case <-gctx.Done():
	}
	cancel()

	err := g.Wait()
	a.stopSession()
	a.engine.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases the resources opened by NewApp.
func (a *App) Close() error {
	var errs []error
	for _, f := range a.closeFuncs {
		errs = append(errs, f())
	}
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	return a.currentToken() != ""
}

func (a *App) currentToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

func (a *App) getStatus() string {
	a.mu.Lock()
	user := a.userName
	a.mu.Unlock()

	mode := "offline"
	if a.engine.Online() {
		mode = "online"
	}
	if user == "" {
		return mode
	}
	return user + " " + mode
}

func (a *App) printErr(err error) {
	fmt.Fprintf(a.out, "error: %v\n", err)
}

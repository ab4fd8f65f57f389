package cli

import (
	"context"

	"github.com/dmitrijs2005/citybreaks/internal/client/connectivity"
	"github.com/dmitrijs2005/citybreaks/internal/client/engine"
	"github.com/dmitrijs2005/citybreaks/internal/client/models"
	"github.com/dmitrijs2005/citybreaks/internal/client/repositories/metadata"
)

// syncEngine is the part of *engine.Engine the commands use.
type syncEngine interface {
	List(ctx context.Context, token string) engine.ListResult
	Save(ctx context.Context, rec models.Record, connected bool) (engine.SaveResult, error)
	Remove(ctx context.Context, rec models.Record, connected bool) (engine.RemoveResult, error)
	GetWithConflictCheck(ctx context.Context, token, id string, localVersion int64) (*models.ConflictSnapshot, error)
	BeginEdit(id string)
	KeepLocal(ctx context.Context, rec models.Record) (engine.SaveResult, error)
	AdoptRemote(ctx context.Context) (engine.SaveResult, error)
	Replay(ctx context.Context) (engine.ReplayReport, error)
	Pending(ctx context.Context) ([]models.Record, error)
	Run(ctx context.Context, transitions <-chan connectivity.Transition) error
	State() engine.State
	SetToken(token string)
	Online() bool
	Wait()
}

// accountClient covers the server calls made outside the sync engine.
type accountClient interface {
	Login(ctx context.Context, username, password string) (string, error)
	Signup(ctx context.Context, username, password string) (string, error)
	Export(ctx context.Context, token string) (string, error)
}

// sessionStore persists the signed-in session between runs.
type sessionStore interface {
	Load(ctx context.Context) (*metadata.Session, error)
	Save(ctx context.Context, s metadata.Session) error
	Clear(ctx context.Context) error
}

type pushRunner interface {
	Run(ctx context.Context, token string) error
}

type connectivityMonitor interface {
	Run(ctx context.Context)
	Subscribe() <-chan connectivity.Transition
}

package engine

import (
	"context"

	"github.com/dmitrijs2005/citybreaks/internal/client/push"
)

// HandlePush observes a server change notification. Notifications are
// informational: the record set is refreshed by the next List, so state is
// left untouched.
func (e *Engine) HandlePush(ctx context.Context, n push.Notification) {
	local, known := e.store.State().Find(n.Record.ID)
	switch {
	case !known:
		e.logger.Info(ctx, "remote change to unlisted record", "type", string(n.Type), "id", n.Record.ID)
	case local.Version < n.Record.Version:
		e.logger.Info(ctx, "remote change is newer than local copy", "type", string(n.Type), "id", n.Record.ID,
			"local_version", local.Version, "remote_version", n.Record.Version)
	default:
		e.logger.Debug(ctx, "remote change already known", "id", n.Record.ID, "version", n.Record.Version)
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/citybreaks/internal/client/models"
	"github.com/dmitrijs2005/citybreaks/internal/filex"
	"github.com/dmitrijs2005/citybreaks/internal/netx"
)

var errUnknownRecord = errors.New("unknown record id, run 'list' first")

// List loads the record set, from the server when reachable.
func (a *App) List(ctx context.Context) error {
	res := a.engine.List(ctx, a.currentToken())
	if res.FromCache {
		fmt.Fprintln(a.out, "(offline copy)")
	}
	if res.Err != nil {
		fmt.Fprintf(a.out, "server unavailable: %v\n", res.Err)
	}
	renderRecords(a.out, res.Records)
	return nil
}

func (a *App) Show(ctx context.Context, id string) error {
	rec, err := a.lookup(id)
	if err != nil {
		a.printErr(err)
		return err
	}
	renderRecord(a.out, rec)
	return nil
}

// Add asks for a new trip and saves it, queueing when offline.
func (a *App) Add(ctx context.Context) error {
	a.engine.BeginEdit("")
	rec, err := a.readForm(models.Record{})
	if err != nil {
		a.printErr(err)
		return err
	}
	return a.save(ctx, rec.NextEdit())
}

// Edit changes a trip. When online the server copy is checked first; on a
// version conflict the edit is held as a draft until 'keep' or 'adopt'.
func (a *App) Edit(ctx context.Context, id string) error {
	rec, err := a.lookup(id)
	if err != nil {
		a.printErr(err)
		return err
	}

	var snap *models.ConflictSnapshot
	if a.engine.Online() && !rec.IsNew() {
		snap, err = a.engine.GetWithConflictCheck(ctx, a.currentToken(), rec.ID, rec.Version)
		if err != nil {
			a.logger.Warn(ctx, "conflict check failed", "id", rec.ID, "error", err)
		}
	} else {
		a.engine.BeginEdit(rec.ID)
	}
	if snap != nil {
		renderConflict(a.out, *snap)
	}

	edited, err := a.readForm(rec)
	if err != nil {
		a.printErr(err)
		return err
	}

	if c := a.engine.State().Conflict; c != nil && c.RecordID() == rec.ID {
		a.mu.Lock()
		a.draft = &edited
		a.mu.Unlock()
		fmt.Fprintln(a.out, "Edit held until the conflict is resolved ('keep' or 'adopt')")
		return nil
	}
	return a.save(ctx, edited.NextEdit())
}

func (a *App) save(ctx context.Context, rec models.Record) error {
	res, err := a.engine.Save(ctx, rec, a.engine.Online())
	if err != nil {
		a.printErr(err)
		return err
	}
	if res.Queued {
		fmt.Fprintf(a.out, "Saved locally as %s, will sync later\n", res.Record.ID)
		return nil
	}
	fmt.Fprintf(a.out, "Saved %s (version %d)\n", res.Record.ID, res.Record.Version)
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	rec, err := a.lookup(id)
	if err != nil {
		a.printErr(err)
		return err
	}
	res, err := a.engine.Remove(ctx, rec, a.engine.Online())
	if err != nil {
		a.printErr(err)
		return err
	}
	if res.Queued {
		fmt.Fprintf(a.out, "Deleted %s locally, will sync later\n", rec.ID)
		return nil
	}
	fmt.Fprintf(a.out, "Deleted %s\n", rec.ID)
	return nil
}

// Keep resolves the conflict with the held draft, or the local copy when
// there is none.
func (a *App) Keep(ctx context.Context) error {
	st := a.engine.State()
	if st.Conflict == nil {
		fmt.Fprintln(a.out, "No conflict to resolve")
		return nil
	}

	a.mu.Lock()
	draft := a.draft
	a.mu.Unlock()

	var rec models.Record
	if draft != nil && draft.ID == st.Conflict.RecordID() {
		rec = *draft
	} else {
		local, ok := st.Find(st.Conflict.RecordID())
		if !ok {
			a.printErr(errUnknownRecord)
			return errUnknownRecord
		}
		rec = local
	}

	res, err := a.engine.KeepLocal(ctx, rec)
	if err != nil {
		a.printErr(err)
		return err
	}
	a.clearDraft()
	if res.Queued {
		fmt.Fprintf(a.out, "Kept your version of %s locally, will sync later\n", res.Record.ID)
		return nil
	}
	fmt.Fprintf(a.out, "Kept your version of %s (version %d)\n", res.Record.ID, res.Record.Version)
	return nil
}

func (a *App) Adopt(ctx context.Context) error {
	if a.engine.State().Conflict == nil {
		fmt.Fprintln(a.out, "No conflict to resolve")
		return nil
	}
	res, err := a.engine.AdoptRemote(ctx)
	if err != nil {
		a.printErr(err)
		return err
	}
	a.clearDraft()
	fmt.Fprintf(a.out, "Adopted the server copy of %s\n", res.Record.ID)
	return nil
}

func (a *App) clearDraft() {
	a.mu.Lock()
	a.draft = nil
	a.mu.Unlock()
}

// Pending lists operations waiting for replay.
func (a *App) Pending(ctx context.Context) error {
	pending, err := a.engine.Pending(ctx)
	if err != nil {
		a.printErr(err)
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(a.out, "Nothing to sync")
		return nil
	}
	renderRecords(a.out, pending)
	return nil
}

// Sync replays pending operations now.
func (a *App) Sync(ctx context.Context) error {
	if !a.engine.Online() {
		fmt.Fprintln(a.out, "Offline, pending operations will sync on reconnect")
		return nil
	}
	report, err := a.engine.Replay(ctx)
	if err != nil {
		a.printErr(err)
		return err
	}
	fmt.Fprintf(a.out, "Sync: %s\n", report)
	return nil
}

func (a *App) Status(ctx context.Context) error {
	pending, err := a.engine.Pending(ctx)
	if err != nil {
		a.logger.Warn(ctx, "cannot count pending operations", "error", err)
	}
	a.mu.Lock()
	user := a.userName
	a.mu.Unlock()
	renderStatus(a.out, user, a.engine.State(), len(pending))
	return nil
}

// Export asks the server for a download link of all the user's trips. With
// "save" the file is also downloaded into the exports directory.
func (a *App) Export(ctx context.Context, arg string) error {
	if arg != "" && arg != "save" {
		fmt.Fprintln(a.out, "Usage: export [save]")
		return nil
	}
	if !a.engine.Online() {
		fmt.Fprintln(a.out, "Export needs the server, try again when online")
		return nil
	}
	url, err := a.accounts.Export(ctx, a.currentToken())
	if err != nil {
		a.printErr(err)
		return err
	}
	fmt.Fprintf(a.out, "Export ready: %s\n", url)

	if arg != "save" {
		return nil
	}
	path, err := a.saveExport(ctx, url)
	if err != nil {
		a.printErr(err)
		return err
	}
	fmt.Fprintf(a.out, "Saved export to %s\n", path)
	return nil
}

func downloadExport(ctx context.Context, url string) (string, error) {
	dir, err := filex.EnsureSubDir("exports")
	if err != nil {
		return "", err
	}
	name := "citybreaks-" + time.Now().Format("20060102-150405") + ".json"
	return filex.WriteFileAtomic(dir, name, func(w io.Writer) error {
		_, err := netx.DownloadPresignedURL(ctx, nil, url, w)
		return err
	})
}

// lookup finds id in the in-memory set, asking for it when id is empty.
func (a *App) lookup(id string) (models.Record, error) {
	if id == "" {
		var err error
		id, err = GetSimpleText(a.reader, "Enter record id", a.out)
		if err != nil {
			return models.Record{}, err
		}
	}
	rec, ok := a.engine.State().Find(id)
	if !ok {
		return models.Record{}, errUnknownRecord
	}
	return rec, nil
}

// readForm asks for every editable field, offering the values of cur.
func (a *App) readForm(cur models.Record) (models.Record, error) {
	rec := cur
	var err error

	if rec.Name, err = GetWithDefault(a.reader, "Name", cur.Name, a.out); err != nil {
		return rec, err
	}
	if rec.StartDate, err = GetWithDefault(a.reader, "Start date (YYYY-MM-DD)", cur.StartDate, a.out); err != nil {
		return rec, err
	}
	if rec.EndDate, err = GetWithDefault(a.reader, "End date (YYYY-MM-DD)", cur.EndDate, a.out); err != nil {
		return rec, err
	}

	price := ""
	if cur.Name != "" {
		price = fmt.Sprintf("%.2f", cur.Price)
	}
	s, err := GetWithDefault(a.reader, "Price", price, a.out)
	if err != nil {
		return rec, err
	}
	if rec.Price, err = parsePrice(s); err != nil {
		return rec, err
	}

	transport := ""
	if cur.Name != "" {
		transport = yesNo(cur.TransportIncluded)
	}
	s, err = GetWithDefault(a.reader, "Transport included (y/n)", transport, a.out)
	if err != nil {
		return rec, err
	}
	if rec.TransportIncluded, err = parseYesNo(s); err != nil {
		return rec, err
	}

	return rec, rec.Validate()
}

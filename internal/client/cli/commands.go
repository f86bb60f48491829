package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/fieldsync/internal/client/models"
	"github.com/dmitrijs2005/fieldsync/internal/client/services"
)

// errSyncFailed is returned by one-shot sync when some items failed.
var errSyncFailed = errors.New("some items failed to sync")

func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	if err := a.auth.Login(ctx, userName, password); err != nil {
		return err
	}
	a.setUser(userName)
	fmt.Fprintf(a.out, "Logged in as %s\n", userName)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.setUser("")
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) CreateMission(ctx context.Context) error {
	var m models.CreateMission
	if err := a.ask(
		prompt{"Mission title", &m.Title},
		prompt{"Site", &m.Site},
		prompt{"Description (optional)", &m.Description},
		prompt{"Inspector (optional)", &m.Inspector},
	); err != nil {
		return err
	}
	id, err := a.fieldwork.CreateMission(ctx, m)
	return a.reportSaved("Mission", id, err)
}

func (a *App) CreateNonConformity(ctx context.Context) error {
	var nc models.CreateNonConformity
	if err := a.ask(
		prompt{"Mission id (optional)", &nc.MissionID},
		prompt{"Non-conformity title", &nc.Title},
		prompt{"Description (optional)", &nc.Description},
		prompt{"Severity (low, medium, high, critical; optional)", &nc.Severity},
	); err != nil {
		return err
	}
	findings, err := getList(a.reader, "Findings, one per line", a.out)
	if err != nil {
		return err
	}
	nc.Findings = findings

	id, err := a.fieldwork.CreateNonConformity(ctx, nc)
	return a.reportSaved("Non-conformity", id, err)
}

func (a *App) UpdateActionStatus(ctx context.Context) error {
	var u models.UpdateActionStatus
	if err := a.ask(
		prompt{"Action id", &u.ActionID},
		prompt{"Non-conformity id (optional)", &u.NonConformityID},
		prompt{"New status (open, in_progress, done, cancelled)", &u.Status},
		prompt{"Comment (optional)", &u.Comment},
	); err != nil {
		return err
	}
	err := a.fieldwork.UpdateActionStatus(ctx, u)
	return a.reportSaved("Action", u.ActionID, err)
}

func (a *App) CreateMaintenanceLog(ctx context.Context) error {
	var l models.CreateMaintenanceLog
	if err := a.ask(
		prompt{"Equipment id", &l.EquipmentID},
		prompt{"Log title", &l.Title},
		prompt{"Notes (optional)", &l.Notes},
	); err != nil {
		return err
	}
	minutes, err := getInt(a.reader, "Duration in minutes (optional)", a.out)
	if err != nil {
		return err
	}
	l.DurationMinutes = minutes

	id, err := a.fieldwork.CreateMaintenanceLog(ctx, l)
	return a.reportSaved("Maintenance log", id, err)
}

func (a *App) UploadDocument(ctx context.Context) error {
	var path, owner string
	if err := a.ask(
		prompt{"File path", &path},
		prompt{"Attach to (mission or non-conformity id, optional)", &owner},
	); err != nil {
		return err
	}
	id, err := a.fieldwork.UploadDocument(ctx, path, owner)
	return a.reportSaved("Document", id, err)
}

var listKinds = map[string]models.WorkItemKind{
	"missions": models.WorkItemMission,
	"ncs":      models.WorkItemNonConformity,
	"actions":  models.WorkItemAction,
	"logs":     models.WorkItemMaintenanceLog,
	"docs":     models.WorkItemDocument,
}

func (a *App) ListItems(ctx context.Context, what string) error {
	kind, ok := listKinds[what]
	if !ok {
		return fmt.Errorf("usage: list missions|ncs|actions|logs|docs")
	}
	items, err := a.fieldwork.List(ctx, kind)
	if err != nil {
		return err
	}
	return RenderWorkItems(a.out, items)
}

func (a *App) ShowOutbox(ctx context.Context) error {
	items, err := a.outbox.GetOutboxItems(ctx)
	if err != nil {
		return err
	}
	return RenderOutbox(a.out, items)
}

func (a *App) Pending(ctx context.Context) error {
	n, err := a.outbox.GetPendingCount(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d pending\n", n)
	return nil
}

func (a *App) Sync(ctx context.Context) error {
	if !a.isLoggedIn() {
		return services.ErrNotLoggedIn
	}
	res, err := a.sync.Sync(ctx)
	if err != nil {
		return err
	}
	if err := RenderSyncResult(a.out, res); err != nil {
		return err
	}
	if !res.Success && !res.Skipped {
		return errSyncFailed
	}
	return nil
}

func (a *App) Retry(ctx context.Context) error {
	n, err := a.outbox.RetryFailedItems(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d failed item(s) moved back to pending\n", n)
	return nil
}

func (a *App) Clear(ctx context.Context) error {
	n, err := a.outbox.ClearSentItems(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d sent item(s) removed\n", n)
	return nil
}

func (a *App) Status(ctx context.Context) error {
	pending, err := a.outbox.GetPendingCount(ctx)
	if err != nil {
		return err
	}
	last, err := a.sync.LastSyncAt(ctx)
	if err != nil {
		return err
	}
	return RenderStatus(a.out, Status{
		User:     a.user(),
		Mode:     a.currentMode(),
		Pending:  pending,
		LastSync: last,
		Syncing:  a.sync.Running(),
	})
}

type prompt struct {
	text string
	dst  *string
}

func (a *App) ask(prompts ...prompt) error {
	for _, p := range prompts {
		v, err := getSimpleText(a.reader, p.text, a.out)
		if err != nil {
			return err
		}
		*p.dst = strings.TrimSpace(v)
	}
	return nil
}

func (a *App) reportSaved(what, id string, err error) error {
	switch {
	case errors.Is(err, services.ErrNotQueued):
		fmt.Fprintf(a.out, "%s %s: %v\n", what, id, err)
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintf(a.out, "%s %s saved and queued for sync\n", what, id)
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/assemblysync/internal/models"
	"github.com/dmitrijs2005/assemblysync/internal/syncer"
)

// parseEventType accepts both the short spellings used at the prompt and
// the canonical type identifiers.
func parseEventType(s string) (models.EventType, error) {
	switch strings.ToLower(s) {
	case "co", "assembly-co":
		return models.EventTypeAssemblyCO, nil
	case "br", "assembly-br":
		return models.EventTypeAssemblyBR, nil
	case "convention":
		return models.EventTypeConvention, nil
	}
	t := models.EventType(s)
	if t.Valid() {
		return t, nil
	}
	return "", fmt.Errorf("unknown event type %q (use co, br or convention)", s)
}

// Open starts an admin session for an event and loads its document.
//
//	open <event-id> [type]
func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: open <event-id> [co|br|convention]")
	}
	eventID := args[0]

	var hint models.EventType
	if len(args) > 1 {
		t, err := parseEventType(args[1])
		if err != nil {
			return err
		}
		hint = t
	}

	_, err := a.syncer.StartSession(ctx, eventID, syncer.RoleAdmin, hint)
	if errors.Is(err, syncer.ErrTypeSelectionRequired) {
		printlnFn("This event predates type tracking. Run 'type co|br|convention' to continue.")
		return nil
	}
	if err != nil {
		return err
	}

	if err := a.syncer.LoadEvent(ctx); err != nil {
		return err
	}
	doc := a.syncer.Document()
	printlnFn(fmt.Sprintf("Opened %s (%s)", eventID, doc.Type))
	return nil
}

// SelectType supplies or switches the event type for the open session.
//
//	type <co|br|convention>
func (a *App) SelectType(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: type <co|br|convention>")
	}
	t, err := parseEventType(args[0])
	if err != nil {
		return err
	}

	sess := a.syncer.Session()
	if sess == nil {
		return errors.New("no open event")
	}
	if sess.NeedsTypeSelection {
		a.syncer.ResolveTypeSelection(ctx, t)
		if err := a.syncer.LoadEvent(ctx); err != nil {
			return err
		}
	} else {
		a.syncer.SetType(ctx, t)
	}
	printlnFn("Event type set to " + string(t))
	return nil
}

// Push uploads the full current document.
func (a *App) Push(ctx context.Context) error {
	if err := a.syncer.Push(ctx); err != nil {
		return err
	}
	printlnFn("Pushed")
	return nil
}

// Pull fetches the remote document, overwriting local state.
func (a *App) Pull(ctx context.Context) error {
	if err := a.syncer.Pull(ctx); err != nil {
		return err
	}
	printlnFn("Pulled")
	return nil
}

// Note records a free-text note for a program part.
//
//	note <part-id> <text...>
func (a *App) Note(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: note <part-id> <text>")
	}
	if !a.hasOpenEvent() {
		return errors.New("no open event")
	}
	a.syncer.SetNote(ctx, args[0], strings.Join(args[1:], " "))
	return nil
}

// Attendance records a headcount for a session.
//
//	attendance <session-id> <count>
func (a *App) Attendance(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: attendance <session-id> <count>")
	}
	if !a.hasOpenEvent() {
		return errors.New("no open event")
	}
	a.syncer.SetAttendance(ctx, args[0], args[1])
	return nil
}

// Show prints a summary of the open document.
func (a *App) Show(ctx context.Context) error {
	doc := a.syncer.Document()
	if doc == nil {
		return errors.New("no open event")
	}
	sess := a.syncer.Session()

	printlnFn(fmt.Sprintf("Event:      %s", sess.EventID))
	printlnFn(fmt.Sprintf("Type:       %s", doc.Type))
	if doc.Org != nil {
		printlnFn(fmt.Sprintf("Committee:  %s", doc.Org.Committee.Congregation))
		for _, group := range [][]models.DepartmentAssignment{
			doc.Org.AODepartments, doc.Org.AAODepartments,
			doc.Org.CoordDepartments, doc.Org.ProgDepartments, doc.Org.RoomDepartments,
		} {
			for _, d := range group {
				overseer := "-"
				if d.Overseer != nil && d.Overseer.Name != "" {
					overseer = d.Overseer.Name
				}
				printlnFn(fmt.Sprintf("  %-24s %s (%d assistants)", d.Name, overseer, len(d.Assistants)))
			}
		}
	}
	if doc.Program != nil {
		printlnFn(fmt.Sprintf("Program:    %d parts (%s)", len(doc.Program.Parts), doc.Program.ProgramType))
	}
	printlnFn(fmt.Sprintf("Notes:      %d", len(doc.Notes)))
	printlnFn(fmt.Sprintf("Attendance: %d sessions", len(doc.Attendance)))
	return nil
}

// Events lists the event identifiers present in the local store.
func (a *App) Events(ctx context.Context) error {
	ids := a.kv.ListLocalEvents(ctx)
	if len(ids) == 0 {
		printlnFn("No local events")
		return nil
	}
	for _, id := range ids {
		printlnFn("  " + id)
	}
	return nil
}

// Remote lists the events stored on the backend, newest first.
func (a *App) Remote(ctx context.Context) error {
	infos, err := a.remote.ListAllEvents(ctx)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		printlnFn("No remote events")
		return nil
	}
	for _, info := range infos {
		printlnFn(fmt.Sprintf("  %-24s %s", info.ID, info.UpdatedAt.Format("2006-01-02 15:04")))
	}
	return nil
}

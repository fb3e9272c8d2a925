package cli

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/dmitrijs2005/assemblysync/internal/dbx"
	"github.com/dmitrijs2005/assemblysync/internal/localstore"
)

// Drop deletes all locally cached data of one event. The per-key deletes
// run in a single transaction, so a failure never leaves an event half
// wiped.
//
//	drop <event-id>
func (a *App) Drop(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: drop <event-id>")
	}
	eventID := args[0]

	err := dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return localstore.New(tx, a.log).RemoveEventData(ctx, eventID)
	})
	if err != nil {
		return err
	}
	printlnFn("Dropped local data for " + eventID)
	return nil
}

// Reset wipes every locally stored value, including cached events and the
// persisted backend credentials, after an explicit confirmation.
func (a *App) Reset(ctx context.Context) error {
	answer, err := GetSimpleText(a.reader, "This deletes ALL local data and credentials. Type 'yes' to confirm", os.Stdout)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "yes") {
		printlnFn("Reset cancelled")
		return nil
	}

	a.syncer.CancelAutoSave()
	a.remote.Disconnect(ctx)
	a.kv.Clear(ctx)
	printlnFn("Local data wiped")
	return nil
}

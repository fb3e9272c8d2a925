package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/assemblysync/internal/remote"
	"github.com/dmitrijs2005/assemblysync/internal/syncer"
)

// Connect prompts for the backend URL, API key and optional encryption
// password, configures the remote manager and verifies the connection.
func (a *App) Connect(ctx context.Context) error {
	url, err := GetSimpleText(a.reader, "Backend URL (project ref, dashboard link or full URL)", os.Stdout)
	if err != nil {
		return err
	}
	key, err := GetSimpleText(a.reader, "API key", os.Stdout)
	if err != nil {
		return err
	}
	pass, err := GetPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.remote.Configure(ctx, url, key, pass); err != nil {
		return err
	}

	if err := a.remote.TestConnection(ctx); err != nil {
		printlnFn("Connection check failed: " + err.Error())
		return err
	}
	printlnFn("Connected to " + a.remote.Credentials().URL)
	return nil
}

// Join configures the backend from an invite token.
func (a *App) Join(ctx context.Context, token string) error {
	creds, err := syncer.DecodeInviteToken(token)
	if err != nil {
		return err
	}
	if err := a.remote.Configure(ctx, creds.URL, creds.APIKey, creds.Password); err != nil {
		return err
	}
	if err := a.remote.TestConnection(ctx); err != nil {
		printlnFn("Connection check failed: " + err.Error())
		return err
	}
	printlnFn("Joined " + a.remote.Credentials().URL)
	return nil
}

// Disconnect drops the backend connection and the persisted credentials.
func (a *App) Disconnect(ctx context.Context) error {
	a.syncer.CancelAutoSave()
	a.remote.Disconnect(ctx)
	printlnFn("Disconnected")
	return nil
}

// Provision creates the event table and its access policy on a self-hosted
// Postgres backend.
//
//	provision <dsn>
func (a *App) Provision(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: provision <postgres-dsn>")
	}
	if err := remote.Provision(ctx, args[0]); err != nil {
		return err
	}
	printlnFn("Backend schema provisioned")
	return nil
}

// Invite prints a token bundling the active credentials for another device.
func (a *App) Invite(ctx context.Context) error {
	token, err := a.syncer.InviteToken()
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Invite token: %s", token))
	return nil
}

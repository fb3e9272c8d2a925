package remote

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/assemblysync/internal/remote/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Provision creates the event_document table (and its open access policy)
// on the target database. This is the corrective step for the
// "not provisioned" classification reported by TestConnection.
func Provision(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

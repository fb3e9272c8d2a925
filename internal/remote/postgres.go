package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/assemblysync/internal/common"
	"github.com/dmitrijs2005/assemblysync/internal/logging"
	"github.com/dmitrijs2005/assemblysync/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store against a Postgres database reached
// directly with pgx, for self-hosted deployments that skip the REST layer.
type PostgresStore struct {
	pool     *pgxpool.Pool
	password string
	log      logging.Logger
}

// NewPostgresStore connects a pool for the given DSN. An empty password
// disables the encryption envelope.
func NewPostgresStore(ctx context.Context, dsn, password string, log logging.Logger) (*PostgresStore, error) {
	if log == nil {
		log = logging.Discard()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	return &PostgresStore{pool: pool, password: password, log: log}, nil
}

func (s *PostgresStore) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()

	var id string
	err := s.pool.QueryRow(ctx, `SELECT id FROM event_document LIMIT 1`).Scan(&id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return classifyPgError(err)
	}
	return nil
}

func (s *PostgresStore) SaveEvent(ctx context.Context, eventID string, doc *models.EventDocument) error {
	ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()

	data, err := marshalDoc(doc, s.password)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO event_document (id, updated_at, data)
		VALUES ($1, now(), $2)
		ON CONFLICT (id)
		DO UPDATE SET updated_at = EXCLUDED.updated_at, data = EXCLUDED.data
	`
	if _, err := s.pool.Exec(ctx, query, eventID, data); err != nil {
		return classifyPgError(err)
	}
	s.log.Debug(ctx, "event saved", "event_id", eventID, "encrypted", s.password != "")
	return nil
}

func (s *PostgresStore) LoadEvent(ctx context.Context, eventID string) (*LoadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, ReadTimeout)
	defer cancel()

	var data json.RawMessage
	var updatedAt time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT data, updated_at FROM event_document WHERE id = $1`, eventID).
		Scan(&data, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classifyPgError(err)
	}

	doc, err := unmarshalDoc(data, s.password)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return &LoadResult{Doc: doc, UpdatedAt: updatedAt}, nil
}

func (s *PostgresStore) ListAllEvents(ctx context.Context) ([]EventInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, updated_at FROM event_document ORDER BY updated_at DESC`)
	if err != nil {
		return nil, classifyPgError(err)
	}
	defer rows.Close()

	var result []EventInfo
	for rows.Next() {
		var info EventInfo
		if err := rows.Scan(&info.ID, &info.UpdatedAt); err != nil {
			return nil, classifyPgError(err)
		}
		result = append(result, info)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyPgError(err)
	}
	return result, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// classifyPgError maps pgx/pgconn failures onto the closed sentinel set.
func classifyPgError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return common.ErrTimeout
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01": // undefined_table
			return fmt.Errorf("%w: run the provisioning script to create the %s table",
				common.ErrNotProvisioned, common.EventTableName)
		case "42501", "28P01", "28000": // insufficient_privilege, auth failures
			return fmt.Errorf("%w: %s", common.ErrPermissionDenied, pgErr.Message)
		default:
			return fmt.Errorf("%w: %s", common.ErrUnknown, pgErr.Message)
		}
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	return fmt.Errorf("%w: %v", common.ErrUnknown, err)
}

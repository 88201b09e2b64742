package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"variaredirect/internal/domain/consts"
	"variaredirect/internal/models"

	"github.com/Masterminds/squirrel"
)

// ErrRecordNotFound is returned when cancelling or erasing an unknown download.
var ErrRecordNotFound = errors.New("download record not found")

// DownloadStore holds a pointer to the sql.DB.
type DownloadStore struct {
	DB *sql.DB
}

// GetDownloadStore returns a download store instance with injected database.
func GetDownloadStore(db *sql.DB) *DownloadStore {
	return &DownloadStore{
		DB: db,
	}
}

// GetDB returns the database.
func (ds *DownloadStore) GetDB() *sql.DB {
	return ds.DB
}

// AddRecord records a newly created download. Re-reporting an id refreshes the record.
func (ds *DownloadStore) AddRecord(ctx context.Context, ev models.DownloadEvent) error {
	now := time.Now()
	query := squirrel.
		Insert(consts.DBDownloads).
		Columns(
			consts.QDLID,
			consts.QDLURL,
			consts.QDLReferrer,
			consts.QDLFilename,
			consts.QDLMime,
			consts.QDLBytes,
			consts.QDLState,
			consts.QDLCreatedAt,
			consts.QDLUpdatedAt,
		).
		Values(ev.ID, ev.URL, ev.Referrer, ev.Filename, ev.Mime, ev.TotalBytes, string(models.RecordCreated), now, now).
		Suffix(fmt.Sprintf("ON CONFLICT(%s) DO UPDATE SET %s = excluded.%s, %s = excluded.%s, %s = excluded.%s, %s = excluded.%s",
			consts.QDLID,
			consts.QDLURL, consts.QDLURL,
			consts.QDLFilename, consts.QDLFilename,
			consts.QDLBytes, consts.QDLBytes,
			consts.QDLUpdatedAt, consts.QDLUpdatedAt,
		)).
		RunWith(ds.DB)

	if _, err := query.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to record download %q: %w", ev.ID, err)
	}
	return nil
}

// GetRecord retrieves a download record by id.
func (ds *DownloadStore) GetRecord(ctx context.Context, id string) (rec *models.DownloadRecord, found bool, err error) {
	var (
		r        models.DownloadRecord
		referrer sql.NullString
		filename sql.NullString
		mime     sql.NullString
		state    string
	)

	err = squirrel.
		Select(
			consts.QDLID,
			consts.QDLURL,
			consts.QDLReferrer,
			consts.QDLFilename,
			consts.QDLMime,
			consts.QDLBytes,
			consts.QDLState,
			consts.QDLCreatedAt,
			consts.QDLUpdatedAt,
		).
		From(consts.DBDownloads).
		Where(squirrel.Eq{consts.QDLID: id}).
		RunWith(ds.DB).
		QueryRowContext(ctx).
		Scan(&r.ID, &r.URL, &referrer, &filename, &mime, &r.TotalBytes, &state, &r.CreatedAt, &r.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to query download %q: %w", id, err)
	}

	// Handle nullable fields
	if referrer.Valid {
		r.Referrer = referrer.String
	}
	if filename.Valid {
		r.Filename = filename.String
	}
	if mime.Valid {
		r.Mime = mime.String
	}
	r.State = models.RecordState(state)
	return &r, true, nil
}

// Cancel marks a download record as cancelled.
func (ds *DownloadStore) Cancel(ctx context.Context, id string) error {
	query := squirrel.
		Update(consts.DBDownloads).
		Set(consts.QDLState, string(models.RecordCancelled)).
		Set(consts.QDLUpdatedAt, time.Now()).
		Where(squirrel.Eq{consts.QDLID: id}).
		RunWith(ds.DB)

	res, err := query.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to cancel download %q: %w", id, err)
	}
	return requireAffected(res, id)
}

// Erase removes a download record from history.
func (ds *DownloadStore) Erase(ctx context.Context, id string) error {
	query := squirrel.
		Delete(consts.DBDownloads).
		Where(squirrel.Eq{consts.QDLID: id}).
		RunWith(ds.DB)

	res, err := query.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to erase download %q: %w", id, err)
	}
	return requireAffected(res, id)
}

// requireAffected reports ErrRecordNotFound when no row changed.
func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrRecordNotFound, id)
	}
	return nil
}

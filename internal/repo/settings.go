package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
	"variaredirect/internal/domain/consts"
	"variaredirect/internal/domain/logger"
	"variaredirect/internal/models"

	"github.com/Masterminds/squirrel"
)

// SettingsStore holds a pointer to the sql.DB.
type SettingsStore struct {
	DB *sql.DB

	// writeMu serializes read-then-write updates.
	writeMu sync.Mutex
}

// GetSettingsStore returns a settings store instance with injected database.
func GetSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{
		DB: db,
	}
}

// GetDB returns the database.
func (ss *SettingsStore) GetDB() *sql.DB {
	return ss.DB
}

// GetSettings reads the settings document, applying per-field defaults.
func (ss *SettingsStore) GetSettings(ctx context.Context) (models.Settings, error) {
	raw, found, err := ss.readRaw(ctx, ss.DB)
	if err != nil {
		return models.DefaultSettings(), err
	}
	if !found {
		return models.DefaultSettings(), nil
	}

	s, err := models.ParseSettingsJSON(raw)
	if err != nil {
		logger.Pl.W("Stored settings document is unreadable, using defaults: %v", err)
	}
	return s, nil
}

// GetDocument returns the settings document (defaults applied), restricted to keys when given.
func (ss *SettingsStore) GetDocument(ctx context.Context, keys ...string) (map[string]any, error) {
	s, err := ss.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := s.Document()
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings document: %w", err)
	}
	if len(keys) == 0 {
		return doc, nil
	}

	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := doc[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// SetSettings replaces the whole settings document.
func (ss *SettingsStore) SetSettings(ctx context.Context, s models.Settings) error {
	b, err := models.Serialize(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	ss.writeMu.Lock()
	defer ss.writeMu.Unlock()
	return ss.writeRaw(ctx, ss.DB, b)
}

// UpdateSettings applies updateFn to the current settings and stores the result.
func (ss *SettingsStore) UpdateSettings(ctx context.Context, updateFn func(*models.Settings) error) (before, after models.Settings, err error) {
	ss.writeMu.Lock()
	defer ss.writeMu.Unlock()

	tx, err := ss.DB.BeginTx(ctx, nil)
	if err != nil {
		return before, after, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Pl.E("Panic rollback failed for settings update: %v", rbErr)
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logger.Pl.E("Error rolling back settings update (original error: %v): %v", err, rbErr)
			}
		}
	}()

	raw, found, err := ss.readRaw(ctx, tx)
	if err != nil {
		return before, after, err
	}
	before = models.DefaultSettings()
	if found {
		if before, err = models.ParseSettingsJSON(raw); err != nil {
			logger.Pl.W("Stored settings document is unreadable, updating from defaults: %v", err)
			err = nil
		}
	}

	after = before.Clone()
	if err = updateFn(&after); err != nil {
		return before, after, err
	}

	b, err := models.Serialize(after)
	if err != nil {
		return before, after, fmt.Errorf("failed to encode settings: %w", err)
	}
	if err = ss.writeRaw(ctx, tx, b); err != nil {
		return before, after, err
	}
	if err = tx.Commit(); err != nil {
		return before, after, fmt.Errorf("failed to commit settings update: %w", err)
	}
	return before, after, nil
}

// SeedDefaults stores the default settings if no document exists yet.
func (ss *SettingsStore) SeedDefaults(ctx context.Context) (seeded bool, err error) {
	b, err := models.Serialize(models.DefaultSettings())
	if err != nil {
		return false, err
	}

	ss.writeMu.Lock()
	defer ss.writeMu.Unlock()

	query := squirrel.
		Insert(consts.DBSettings).
		Columns(consts.QSettingsID, consts.QSettingsDocument, consts.QSettingsUpdatedAt).
		Values(consts.SettingsRowID, string(b), time.Now()).
		Suffix("ON CONFLICT(" + consts.QSettingsID + ") DO NOTHING").
		RunWith(ss.DB)

	res, err := query.ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to seed default settings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ******************************** Private ***************************************************************************************

// readRaw returns the stored document bytes.
func (ss *SettingsStore) readRaw(ctx context.Context, runner squirrel.BaseRunner) ([]byte, bool, error) {
	var doc string
	err := squirrel.
		Select(consts.QSettingsDocument).
		From(consts.DBSettings).
		Where(squirrel.Eq{consts.QSettingsID: consts.SettingsRowID}).
		RunWith(runner).
		QueryRowContext(ctx).
		Scan(&doc)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read settings: %w", err)
	}
	return []byte(doc), true, nil
}

// writeRaw upserts the document bytes.
func (ss *SettingsStore) writeRaw(ctx context.Context, runner squirrel.BaseRunner, b []byte) error {
	now := time.Now()
	query := squirrel.
		Insert(consts.DBSettings).
		Columns(consts.QSettingsID, consts.QSettingsDocument, consts.QSettingsUpdatedAt).
		Values(consts.SettingsRowID, string(b), now).
		Suffix(fmt.Sprintf("ON CONFLICT(%s) DO UPDATE SET %s = excluded.%s, %s = excluded.%s",
			consts.QSettingsID,
			consts.QSettingsDocument, consts.QSettingsDocument,
			consts.QSettingsUpdatedAt, consts.QSettingsUpdatedAt,
		)).
		RunWith(runner)

	if _, err := query.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

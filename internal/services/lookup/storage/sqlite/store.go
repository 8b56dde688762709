// Package sqlite provides a SQLite-backed homebrew collection store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	sqlitemigrate "github.com/louisbranch/grimoire.space/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/grimoire.space/internal/services/lookup/domain"
	"github.com/louisbranch/grimoire.space/internal/services/lookup/storage"
	"github.com/louisbranch/grimoire.space/internal/services/lookup/storage/sqlite/migrations"
)

// Store persists homebrew collections and activations in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite lookup store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateCollection inserts one collection and its entities in a transaction.
func (s *Store) CreateCollection(ctx context.Context, collection storage.Collection, entities []storage.Entity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(collection.ID)
	ownerID := strings.TrimSpace(collection.OwnerID)
	name := strings.TrimSpace(collection.Name)
	if id == "" {
		return fmt.Errorf("collection id is required")
	}
	if ownerID == "" {
		return fmt.Errorf("owner id is required")
	}
	if name == "" {
		return fmt.Errorf("collection name is required")
	}
	if !collection.Kind.Valid() {
		return fmt.Errorf("collection kind %q is not registered", collection.Kind)
	}
	createdAt := collection.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := collection.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create collection: %w", err)
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO homebrew_collections (id, owner_id, name, kind, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id,
		ownerID,
		name,
		string(collection.Kind),
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create collection: %w", err)
	}

	for _, entity := range entities {
		entityName := strings.TrimSpace(entity.Name)
		if entityName == "" {
			_ = tx.Rollback()
			return fmt.Errorf("entity name is required")
		}
		entityCreatedAt := entity.CreatedAt.UTC()
		if entityCreatedAt.IsZero() {
			entityCreatedAt = createdAt
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO homebrew_entities (collection_id, name, kind, summary, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			id,
			entityName,
			string(collection.Kind),
			entity.Summary,
			toMillis(entityCreatedAt),
		); err != nil {
			_ = tx.Rollback()
			if isUniqueViolation(err) {
				return storage.ErrAlreadyExists
			}
			return fmt.Errorf("create collection entity: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create collection: %w", err)
	}
	return nil
}

// GetCollection returns one collection by ID.
func (s *Store) GetCollection(ctx context.Context, id string) (storage.Collection, error) {
	if err := ctx.Err(); err != nil {
		return storage.Collection{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Collection{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.Collection{}, fmt.Errorf("collection id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, owner_id, name, kind, created_at, updated_at
		   FROM homebrew_collections
		  WHERE id = ?`,
		id,
	)
	return scanCollection(row)
}

// ListEntities returns every entity in a collection ordered by name.
func (s *Store) ListEntities(ctx context.Context, collectionID string) ([]storage.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	collectionID = strings.TrimSpace(collectionID)
	if collectionID == "" {
		return nil, fmt.Errorf("collection id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT collection_id, name, kind, summary, created_at
		   FROM homebrew_entities
		  WHERE collection_id = ?
		  ORDER BY name ASC`,
		collectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()

	var entities []storage.Entity
	for rows.Next() {
		var entity storage.Entity
		var kind string
		var createdAt int64
		if err := rows.Scan(&entity.CollectionID, &entity.Name, &kind, &entity.Summary, &createdAt); err != nil {
			return nil, fmt.Errorf("list entities: %w", err)
		}
		entity.Kind = domain.Kind(kind)
		entity.CreatedAt = fromMillis(createdAt)
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	return entities, nil
}

// GetActiveCollection returns the user's active personal collection for the
// kind, or storage.ErrNoActiveCollection.
func (s *Store) GetActiveCollection(ctx context.Context, userID string, kind domain.Kind) (storage.Collection, error) {
	if err := ctx.Err(); err != nil {
		return storage.Collection{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Collection{}, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return storage.Collection{}, fmt.Errorf("user id is required")
	}
	if !kind.Valid() {
		return storage.Collection{}, fmt.Errorf("kind %q is not registered", kind)
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT c.id, c.owner_id, c.name, c.kind, c.created_at, c.updated_at
		   FROM personal_activations a
		   JOIN homebrew_collections c ON c.id = a.collection_id
		  WHERE a.user_id = ? AND a.kind = ?`,
		userID,
		string(kind),
	)
	collection, err := scanCollection(row)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Collection{}, storage.ErrNoActiveCollection
	}
	return collection, err
}

// SetActiveCollection makes a collection the user's active one for its kind,
// replacing any previous activation of that kind.
func (s *Store) SetActiveCollection(ctx context.Context, userID string, collectionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	collection, err := s.GetCollection(ctx, collectionID)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO personal_activations (user_id, kind, collection_id, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, kind) DO UPDATE SET
		   collection_id = excluded.collection_id,
		   updated_at = excluded.updated_at`,
		userID,
		string(collection.Kind),
		collection.ID,
		toMillis(time.Now().UTC()),
	)
	if err != nil {
		return fmt.Errorf("set active collection: %w", err)
	}
	return nil
}

// ListCampaignCollections returns one page of the campaign's activated
// collections for the kind, ordered by collection ID.
func (s *Store) ListCampaignCollections(ctx context.Context, campaignID string, kind domain.Kind, pageSize int, pageToken string) (storage.CollectionPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.CollectionPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.CollectionPage{}, fmt.Errorf("storage is not configured")
	}
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return storage.CollectionPage{}, fmt.Errorf("campaign id is required")
	}
	if !kind.Valid() {
		return storage.CollectionPage{}, fmt.Errorf("kind %q is not registered", kind)
	}
	if pageSize <= 0 {
		return storage.CollectionPage{}, fmt.Errorf("page size must be greater than zero")
	}
	pageToken = strings.TrimSpace(pageToken)

	page := storage.CollectionPage{
		Collections: make([]storage.Collection, 0, pageSize),
	}

	var (
		rows *sql.Rows
		err  error
	)
	if pageToken == "" {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT c.id, c.owner_id, c.name, c.kind, c.created_at, c.updated_at
			   FROM campaign_activations a
			   JOIN homebrew_collections c ON c.id = a.collection_id
			  WHERE a.campaign_id = ? AND c.kind = ?
			  ORDER BY c.id ASC
			  LIMIT ?`,
			campaignID,
			string(kind),
			pageSize+1,
		)
	} else {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT c.id, c.owner_id, c.name, c.kind, c.created_at, c.updated_at
			   FROM campaign_activations a
			   JOIN homebrew_collections c ON c.id = a.collection_id
			  WHERE a.campaign_id = ? AND c.kind = ? AND c.id > ?
			  ORDER BY c.id ASC
			  LIMIT ?`,
			campaignID,
			string(kind),
			pageToken,
			pageSize+1,
		)
	}
	if err != nil {
		return storage.CollectionPage{}, fmt.Errorf("list campaign collections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		collection, err := scanCollectionRows(rows)
		if err != nil {
			return storage.CollectionPage{}, fmt.Errorf("list campaign collections: %w", err)
		}
		page.Collections = append(page.Collections, collection)
	}
	if err := rows.Err(); err != nil {
		return storage.CollectionPage{}, fmt.Errorf("list campaign collections: %w", err)
	}
	if len(page.Collections) > pageSize {
		page.NextPageToken = page.Collections[pageSize-1].ID
		page.Collections = page.Collections[:pageSize]
	}

	return page, nil
}

// ActivateForCampaign adds a collection to the campaign's active set.
// Re-activating an already active collection is a no-op.
func (s *Store) ActivateForCampaign(ctx context.Context, campaignID string, collectionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return fmt.Errorf("campaign id is required")
	}

	collection, err := s.GetCollection(ctx, collectionID)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO campaign_activations (campaign_id, collection_id, activated_at)
		 VALUES (?, ?, ?)`,
		campaignID,
		collection.ID,
		toMillis(time.Now().UTC()),
	)
	if err != nil {
		return fmt.Errorf("activate for campaign: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCollection(row rowScanner) (storage.Collection, error) {
	collection, err := scanCollectionRows(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Collection{}, storage.ErrNotFound
		}
		return storage.Collection{}, fmt.Errorf("get collection: %w", err)
	}
	return collection, nil
}

func scanCollectionRows(row rowScanner) (storage.Collection, error) {
	var collection storage.Collection
	var kind string
	var createdAt int64
	var updatedAt int64
	if err := row.Scan(
		&collection.ID,
		&collection.OwnerID,
		&collection.Name,
		&kind,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.Collection{}, err
	}
	collection.Kind = domain.Kind(kind)
	collection.CreatedAt = fromMillis(createdAt)
	collection.UpdatedAt = fromMillis(updatedAt)
	return collection, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ storage.CollectionStore = (*Store)(nil)

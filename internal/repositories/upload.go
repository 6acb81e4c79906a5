package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
)

// UploadRepository implements [models.Repository] for [models.Upload] history.
type UploadRepository struct {
	db *sql.DB
}

// NewUploadRepository creates a new [UploadRepository] with the given database connection
func NewUploadRepository(db *sql.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// Create inserts a new upload with generated ID and sequence
func (r *UploadRepository) Create(upload *models.Upload) error {
	if err := upload.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()
	query := `
		INSERT INTO uploads (id, sequence, media_id, source_url, file_name, caption, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var sequence int
	err := InTx(r.db, func(tx *sql.Tx) error {
		var err error
		if sequence, err = NextSequence(tx, "uploads"); err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}
		_, err = tx.Exec(query, id, sequence, upload.MediaID(), upload.SourceURL(), upload.FileName(),
			upload.Caption(), upload.CreatedAt())
		if err != nil {
			return fmt.Errorf("failed to insert upload: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	upload.SetID(id)
	upload.SetSequence(sequence)
	return nil
}

// Get retrieves an upload by ID, excluding soft-deleted uploads
func (r *UploadRepository) Get(id string) (*models.Upload, error) {
	query := `
		SELECT id, sequence, media_id, source_url, file_name, caption, created_at, deleted_at
		FROM uploads
		WHERE id = ? AND deleted_at IS NULL
	`

	upload, err := scanUpload(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("upload not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query upload: %w", err)
	}
	return upload, nil
}

// Update stores a new caption for an existing upload
func (r *UploadRepository) Update(upload *models.Upload) error {
	if err := upload.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE uploads
		SET caption = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, upload.Caption(), upload.ID())
	if err != nil {
		return fmt.Errorf("failed to update upload: %w", err)
	}
	return expectAffected(result, "upload not found or already deleted: %s", upload.ID())
}

// Delete soft-deletes an upload by ID
func (r *UploadRepository) Delete(id string) error {
	query := `
		UPDATE uploads
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return expectAffected(result, "upload not found or already deleted: %s", id)
}

// List retrieves uploads newest first, excluding soft-deleted ones.
//
// Supported criteria: "media_id" (int) and "limit" (int).
func (r *UploadRepository) List(criteria map[string]any) ([]*models.Upload, error) {
	query := `
		SELECT id, sequence, media_id, source_url, file_name, caption, created_at, deleted_at
		FROM uploads
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if mediaID, ok := criteria["media_id"].(int); ok && mediaID > 0 {
		query += " AND media_id = ?"
		args = append(args, mediaID)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query uploads: %w", err)
	}
	defer rows.Close()

	uploads := []*models.Upload{}
	for rows.Next() {
		upload, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		uploads = append(uploads, upload)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return uploads, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUpload(s scanner) (*models.Upload, error) {
	var (
		id        string
		sequence  int
		mediaID   int
		sourceURL string
		fileName  string
		caption   string
		createdAt time.Time
		deletedAt sql.NullTime
	)

	if err := s.Scan(&id, &sequence, &mediaID, &sourceURL, &fileName, &caption, &createdAt, &deletedAt); err != nil {
		return nil, err
	}

	upload := models.NewUpload(mediaID, sourceURL, fileName, caption)
	upload.SetID(id)
	upload.SetSequence(sequence)
	upload.SetCreatedAt(createdAt)
	if deletedAt.Valid {
		upload.SetDeletedAt(&deletedAt.Time)
	}
	return upload, nil
}

func expectAffected(result sql.Result, format string, args ...any) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf(format, args...)
	}
	return nil
}

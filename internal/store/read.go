package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/scribe/internal/history"
	"github.com/roach88/scribe/internal/ir"
)

// DocumentInfo is the cached summary row of one stored history.
type DocumentInfo struct {
	ID            string      `json:"id"`
	State         ir.IRObject `json:"state"`
	HistoryHash   string      `json:"history_hash"`
	Removed       bool        `json:"removed"`
	EntryCount    int         `json:"entry_count"`
	CreatedAt     int64       `json:"created_at"`
	UpdatedAt     int64       `json:"updated_at"`
	EngineVersion string      `json:"engine_version"`
}

// Load reads the entries of document id and rebuilds a Scribe from them.
// The entries are always re-validated with opts. Returns ErrNotFound if the
// document has no entries.
func Load[I any](ctx context.Context, s *Store, id string, opts ...history.Option) (*history.Scribe[I], error) {
	entries, err := readEntries[I](ctx, s, id)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("load %s: %w", id, ErrNotFound)
	}

	sc, err := history.FromEntries(entries, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	return sc, nil
}

// LoadHistorical is Load followed by Compile.
func LoadHistorical[I any](ctx context.Context, s *Store, id string, opts ...history.Option) (history.Historical[I], error) {
	sc, err := Load[I](ctx, s, id, opts...)
	if err != nil {
		return history.Historical[I]{}, err
	}
	return sc.Compile()
}

// readEntries returns the stored entries of a document ordered by position.
// Returns an empty slice (not nil) if there are none.
func readEntries[I any](ctx context.Context, s *Store, id string) ([]history.Entry[I], error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, timestamp, signature, data
		FROM entries
		WHERE document_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []history.Entry[I]{}
	for rows.Next() {
		e, err := scanEntry[I](rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

func scanEntry[I any](rows *sql.Rows) (history.Entry[I], error) {
	var (
		kind      string
		timestamp int64
		sigText   sql.NullString
		dataText  sql.NullString
	)
	if err := rows.Scan(&kind, &timestamp, &sigText, &dataText); err != nil {
		return history.Entry[I]{}, fmt.Errorf("scan entry: %w", err)
	}

	k := history.Kind(kind)
	if !k.Valid() {
		return history.Entry[I]{}, fmt.Errorf("scan entry: unknown kind %q", kind)
	}
	sig, err := unmarshalSignature[I](sigText)
	if err != nil {
		return history.Entry[I]{}, err
	}
	data, err := unmarshalData(dataText)
	if err != nil {
		return history.Entry[I]{}, err
	}

	return history.Entry[I]{Kind: k, Timestamp: timestamp, Signature: sig, Data: data}, nil
}

// GetDocument returns the summary row of document id.
// Returns ErrNotFound if it does not exist.
func (s *Store) GetDocument(ctx context.Context, id string) (DocumentInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, state, history_hash, removed, entry_count, created_at, updated_at, engine_version
		FROM documents
		WHERE id = ?
	`, id)

	info, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return DocumentInfo{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("get %s: %w", id, err)
	}
	return info, nil
}

// ListDocuments returns every document summary ordered by id.
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, state, history_hash, removed, entry_count, created_at, updated_at, engine_version
		FROM documents
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := []DocumentInfo{}
	for rows.Next() {
		info, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (DocumentInfo, error) {
	var (
		info      DocumentInfo
		stateText string
		removed   int
	)
	err := row.Scan(
		&info.ID,
		&stateText,
		&info.HistoryHash,
		&removed,
		&info.EntryCount,
		&info.CreatedAt,
		&info.UpdatedAt,
		&info.EngineVersion,
	)
	if err != nil {
		return DocumentInfo{}, err
	}

	state, err := unmarshalObject(stateText)
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("scan document %s: %w", info.ID, err)
	}
	info.State = state
	info.Removed = removed != 0
	return info, nil
}

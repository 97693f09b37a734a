package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/scribe/internal/history"
	"github.com/roach88/scribe/internal/ir"
)

// Save validates h and writes it under id, replacing any previous history
// for that document. The documents row and all entries are written in one
// transaction.
//
// h is re-validated with opts before anything is written; the stored state
// and hash are the re-derived ones, never h.State.
func Save[I any](ctx context.Context, s *Store, id string, h history.Historical[I], opts ...history.Option) (DocumentInfo, error) {
	sc, err := history.Load(h, opts...)
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("save %s: %w", id, err)
	}
	return SaveScribe(ctx, s, id, sc)
}

// SaveScribe writes an already validated Scribe under id.
func SaveScribe[I any](ctx context.Context, s *Store, id string, sc *history.Scribe[I]) (DocumentInfo, error) {
	compiled, err := sc.Compile()
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("save %s: %w", id, err)
	}
	hash, err := compiled.Hash()
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("save %s: %w", id, err)
	}
	stateJSON, err := marshalObject(compiled.State)
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("save %s: %w", id, err)
	}

	entries := compiled.History
	info := DocumentInfo{
		ID:            id,
		State:         compiled.State,
		HistoryHash:   hash,
		Removed:       compiled.Removed(),
		EntryCount:    len(entries),
		CreatedAt:     entries[0].Timestamp,
		UpdatedAt:     entries[len(entries)-1].Timestamp,
		EngineVersion: ir.EngineVersion,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("save %s: begin: %w", id, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents
		(id, state, history_hash, removed, entry_count, created_at, updated_at, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			history_hash = excluded.history_hash,
			removed = excluded.removed,
			entry_count = excluded.entry_count,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			engine_version = excluded.engine_version
	`,
		info.ID,
		stateJSON,
		info.HistoryHash,
		boolToInt(info.Removed),
		info.EntryCount,
		info.CreatedAt,
		info.UpdatedAt,
		info.EngineVersion,
	)
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("save %s: upsert document: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE document_id = ?`, id); err != nil {
		return DocumentInfo{}, fmt.Errorf("save %s: clear entries: %w", id, err)
	}

	for i, e := range entries {
		sig, err := marshalSignature(e.Signature)
		if err != nil {
			return DocumentInfo{}, fmt.Errorf("save %s: entry %d: %w", id, i, err)
		}
		data, err := marshalData(e.Data, e.Kind != history.KindRemove)
		if err != nil {
			return DocumentInfo{}, fmt.Errorf("save %s: entry %d: %w", id, i, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO entries (document_id, position, kind, timestamp, signature, data)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, i, string(e.Kind), e.Timestamp, sig, data)
		if err != nil {
			return DocumentInfo{}, fmt.Errorf("save %s: insert entry %d: %w", id, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return DocumentInfo{}, fmt.Errorf("save %s: commit: %w", id, err)
	}

	slog.Debug("document saved",
		"id", id,
		"entries", info.EntryCount,
		"removed", info.Removed,
		"hash", info.HistoryHash,
	)
	return info, nil
}

// DeleteDocument removes a document and its entries.
// Returns ErrNotFound if no document has the given id.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete %s: begin: %w", id, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("delete %s: entries: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: document: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete %s: commit: %w", id, err)
	}

	slog.Debug("document deleted", "id", id)
	return nil
}

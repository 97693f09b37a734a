package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/scribe/internal/ir"
)

// marshalObject converts an IRObject to canonical JSON TEXT for storage.
func marshalObject(obj ir.IRObject) (string, error) {
	if obj == nil {
		obj = ir.IRObject{}
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal object: %w", err)
	}
	return string(data), nil
}

// unmarshalObject parses stored JSON TEXT into an IRObject.
// Goes through IRObject.UnmarshalJSON so large integers keep full precision.
func unmarshalObject(data string) (ir.IRObject, error) {
	var obj ir.IRObject
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal object: %w", err)
	}
	if obj == nil {
		obj = ir.IRObject{}
	}
	return obj, nil
}

// marshalData encodes an entry payload. Remove entries have none and store NULL.
func marshalData(data ir.IRObject, present bool) (sql.NullString, error) {
	if !present {
		return sql.NullString{}, nil
	}
	text, err := marshalObject(data)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: text, Valid: true}, nil
}

func unmarshalData(data sql.NullString) (ir.IRObject, error) {
	if !data.Valid {
		return nil, nil
	}
	return unmarshalObject(data.String)
}

// marshalSignature encodes an optional signature as JSON TEXT, NULL when absent.
func marshalSignature[I any](sig *I) (sql.NullString, error) {
	if sig == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(*sig)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal signature: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalSignature[I any](data sql.NullString) (*I, error) {
	if !data.Valid {
		return nil, nil
	}
	var sig I
	if err := json.Unmarshal([]byte(data.String), &sig); err != nil {
		return nil, fmt.Errorf("unmarshal signature: %w", err)
	}
	return &sig, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package history

import (
	"encoding/json"
	"fmt"
)

// UnmarshalJSON rejects kinds outside the three known variants so that a
// malformed stored entry fails at decode time instead of reaching Validate.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("entry kind: %w", err)
	}
	kind := Kind(s)
	if !kind.Valid() {
		return fmt.Errorf("entry kind: unknown kind %q", s)
	}
	*k = kind
	return nil
}

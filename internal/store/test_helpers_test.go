package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/scribe/internal/history"
	"github.com/roach88/scribe/internal/ir"
	"github.com/roach88/scribe/internal/testutil"
)

// createTestStore opens a fresh database in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// furniture builds create -> painting -> finishing with timestamps 1000,
// 1100, 1200, signed by "ana".
func furniture(t *testing.T) *history.Scribe[string] {
	t.Helper()
	sc := history.New[string](history.WithClock(testutil.NewDeterministicClock(1000, 100)))

	var err error
	sc, err = sc.Create(ir.Obj(ir.O("stage", ir.IRString("carpentry")), ir.O("finished", ir.IRBool(false))), history.Signed("ana"))
	require.NoError(t, err)
	sc, err = sc.Patch(ir.Obj(ir.O("stage", ir.IRString("painting"))), history.Signed("ana"))
	require.NoError(t, err)
	sc, err = sc.Patch(ir.Obj(ir.O("stage", ir.IRString("finishing"))))
	require.NoError(t, err)
	return sc
}

func compiled(t *testing.T, sc *history.Scribe[string]) history.Historical[string] {
	t.Helper()
	h, err := sc.Compile()
	require.NoError(t, err)
	return h
}

package dbutil

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestFinalizeRebindsPlaceholders(t *testing.T) {
	query, args := Finalize("SELECT id FROM inspections WHERE inspector_id=? AND state=?", []interface{}{"u", 1})
	require.Equal(t, "SELECT id FROM inspections WHERE inspector_id=$1 AND state=$2", query)
	require.Equal(t, []interface{}{"u", 1}, args)
}

func TestFinalizeRewritesMysqlLimit(t *testing.T) {
	query, args := Finalize("SELECT id FROM inspections WHERE inspector_id=? LIMIT ?,?", []interface{}{"u", 20, 10})
	require.Equal(t, "SELECT id FROM inspections WHERE inspector_id=$1 LIMIT $2 OFFSET $3", query)
	require.Equal(t, []interface{}{"u", 10, 20}, args)
}

func TestIsConflict(t *testing.T) {
	require.True(t, IsConflict(&pq.Error{Code: "23505"}))
	require.True(t, IsConflict(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	require.False(t, IsConflict(&pq.Error{Code: "23503"}))
	require.False(t, IsConflict(fmt.Errorf("boom")))
}

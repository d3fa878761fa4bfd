package rowhook_test

import (
	"database/sql/driver"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mickamy/rowhook"
	"github.com/mickamy/rowhook/memdb"
)

// TestObserveInsert registers a hook that records (action, table) and
// verifies an insert is observed exactly once, before the row becomes
// visible in the store.
func TestObserveInsert(t *testing.T) {
	t.Parallel()

	db := memdb.New()
	require.NoError(t, db.CreateTable("t", "v"))
	conn := rowhook.Wrap(db)

	type logEntry struct {
		action rowhook.Action
		table  string
	}
	var log []logEntry
	conn.SetPreupdateHook(func(action rowhook.Action, dbName, tblName string, c rowhook.Case) {
		log = append(log, logEntry{action: action, table: tblName})
		ic := c.(rowhook.InsertCase)
		_, visible := db.Get("t", ic.New.NewRowID())
		assert.False(t, visible, "hook must observe the change before it is applied")
	})

	id, err := db.Insert("t", int64(1))
	require.NoError(t, err)

	require.Equal(t, []logEntry{{action: rowhook.ActionInsert, table: "t"}}, log)
	_, visible := db.Get("t", id)
	assert.True(t, visible)
}

// TestReplaceHook verifies that after re-registration only the new hook
// fires on subsequent changes.
func TestReplaceHook(t *testing.T) {
	t.Parallel()

	db := memdb.New()
	require.NoError(t, db.CreateTable("t", "v"))
	conn := rowhook.Wrap(db)

	var first, second int
	conn.SetPreupdateHook(func(rowhook.Action, string, string, rowhook.Case) { first++ })
	conn.SetPreupdateHook(func(rowhook.Action, string, string, rowhook.Case) { second++ })

	_, err := db.Insert("t", int64(1))
	require.NoError(t, err)

	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}

// TestUpdateOldAndNewValues performs an update changing column 0 from 5
// to 9 and reads both images inside the callback.
func TestUpdateOldAndNewValues(t *testing.T) {
	t.Parallel()

	db := memdb.New()
	require.NoError(t, db.CreateTable("t", "v"))
	conn := rowhook.Wrap(db)

	id, err := db.Insert("t", int64(5))
	require.NoError(t, err)

	checked := false
	conn.SetPreupdateHook(func(action rowhook.Action, dbName, tblName string, c rowhook.Case) {
		checked = true
		uc := c.(rowhook.UpdateCase)

		old, err := uc.Old.OldColumnValue(0)
		require.NoError(t, err)
		assert.Equal(t, int64(5), old.Int64())

		nw, err := uc.New.NewColumnValue(0)
		require.NoError(t, err)
		assert.Equal(t, int64(9), nw.Int64())
	})

	require.NoError(t, db.Update("t", id, int64(9)))
	assert.True(t, checked)
}

// TestPanickingHookDoesNotBlockCommit verifies a hook that panics on
// every invocation neither crashes the host nor prevents the change.
func TestPanickingHookDoesNotBlockCommit(t *testing.T) {
	t.Parallel()

	db := memdb.New()
	require.NoError(t, db.CreateTable("t", "v"))
	conn := rowhook.Wrap(db)

	conn.SetPreupdateHook(func(rowhook.Action, string, string, rowhook.Case) {
		panic("always")
	})

	id, err := db.Insert("t", int64(1))
	require.NoError(t, err)
	require.NoError(t, db.Update("t", id, int64(2)))

	row, ok := db.Get("t", id)
	require.True(t, ok)
	assert.Equal(t, []driver.Value{int64(2)}, row)
}

// TestRemovedHookNeverFires removes the hook and performs changes.
func TestRemovedHookNeverFires(t *testing.T) {
	t.Parallel()

	db := memdb.New()
	require.NoError(t, db.CreateTable("t", "v"))
	conn := rowhook.Wrap(db)

	calls := 0
	conn.SetPreupdateHook(func(rowhook.Action, string, string, rowhook.Case) { calls++ })

	id, err := db.Insert("t", int64(1))
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	conn.RemovePreupdateHook()
	require.NoError(t, db.Update("t", id, int64(2)))
	require.NoError(t, db.Delete("t", id))
	assert.Equal(t, 1, calls)
}

// TestAllValueKinds inserts a row covering every storage class and reads
// it back through the new-value accessor.
func TestAllValueKinds(t *testing.T) {
	t.Parallel()

	db := memdb.New()
	require.NoError(t, db.CreateTable("t", "i", "f", "s", "b", "n"))
	conn := rowhook.Wrap(db)

	checked := false
	conn.SetPreupdateHook(func(action rowhook.Action, dbName, tblName string, c rowhook.Case) {
		checked = true
		acc := c.(rowhook.InsertCase).New
		require.Equal(t, 5, acc.ColumnCount())

		wants := []struct {
			typ rowhook.Type
			any any
		}{
			{typ: rowhook.TypeInteger, any: int64(42)},
			{typ: rowhook.TypeFloat, any: 1.5},
			{typ: rowhook.TypeText, any: "hi"},
			{typ: rowhook.TypeBlob, any: []byte{0x01}},
			{typ: rowhook.TypeNull, any: nil},
		}
		for i, want := range wants {
			v, err := acc.NewColumnValue(i)
			require.NoError(t, err)
			assert.Equal(t, want.typ, v.Type(), "column %d", i)
			assert.Equal(t, want.any, v.Any(), "column %d", i)
		}
	})

	_, err := db.Insert("t", int64(42), 1.5, "hi", []byte{0x01}, nil)
	require.NoError(t, err)
	assert.True(t, checked)
}

// TestTriggerCascadeDepth verifies query depth is 0 for a direct change
// and positive for a change caused by a trigger.
func TestTriggerCascadeDepth(t *testing.T) {
	t.Parallel()

	db := memdb.New()
	require.NoError(t, db.CreateTable("t", "v"))
	require.NoError(t, db.CreateTable("audit", "note"))
	require.NoError(t, db.OnInsert("t", func(db *memdb.DB, rowid int64) error {
		_, err := db.Insert("audit", "cascade")
		return err
	}))

	conn := rowhook.Wrap(db)
	depths := map[string]int{}
	conn.SetPreupdateHook(func(action rowhook.Action, dbName, tblName string, c rowhook.Case) {
		depths[tblName] = c.(rowhook.InsertCase).New.QueryDepth()
	})

	_, err := db.Insert("t", int64(1))
	require.NoError(t, err)

	assert.Equal(t, 0, depths["t"])
	assert.Equal(t, 1, depths["audit"])
}

// TestDeleteExposesOldValuesOnly verifies the delete case carries a
// functioning old-value accessor.
func TestDeleteExposesOldValuesOnly(t *testing.T) {
	t.Parallel()

	db := memdb.New()
	require.NoError(t, db.CreateTable("t", "v"))
	conn := rowhook.Wrap(db)

	id, err := db.Insert("t", "gone")
	require.NoError(t, err)

	checked := false
	conn.SetPreupdateHook(func(action rowhook.Action, dbName, tblName string, c rowhook.Case) {
		checked = true
		dc, ok := c.(rowhook.DeleteCase)
		require.True(t, ok)
		assert.Equal(t, id, dc.Old.OldRowID())

		v, err := dc.Old.OldColumnValue(0)
		require.NoError(t, err)
		assert.Equal(t, "gone", v.Text())
	})

	require.NoError(t, db.Delete("t", id))
	assert.True(t, checked)
}

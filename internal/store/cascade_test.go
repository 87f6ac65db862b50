package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yusapedia/jimpitan/internal/model"
)

func TestDeleteOrder_ChildrenFirst(t *testing.T) {
	steps := deleteOrder(model.CollectionCitizens, "c1")

	require.Len(t, steps, 3)
	assert.Equal(t, deletion{model.CollectionJimpitan, "citizen_id", "c1"}, steps[0])
	assert.Equal(t, deletion{model.CollectionAttendances, "citizen_id", "c1"}, steps[1])
	assert.Equal(t, deletion{model.CollectionCitizens, "id", "c1"}, steps[2])
}

func TestDeleteOrder_LeafCollection(t *testing.T) {
	steps := deleteOrder(model.CollectionMeetings, "m1")

	require.Len(t, steps, 1)
	assert.Equal(t, deletion{model.CollectionMeetings, "id", "m1"}, steps[0])
}

func cascadeStore(t *testing.T) (*Store, *fakeBackend) {
	t.Helper()
	st, backend := seededStore(t)

	_, err := st.SubmitJimpitan("c1", 1500, "2026-01-10", "Regu Melati")
	require.NoError(t, err)
	_, err = st.SubmitJimpitan("c2", 1000, "2026-01-10", "Regu Melati")
	require.NoError(t, err)
	_, err = st.RecordAttendance("c1", "2026-01-10", model.StatusHadir, "", "", "regu-1")
	require.NoError(t, err)
	_, err = st.PairWargaAccount("c1", "budi", "rahasia")
	require.NoError(t, err)
	st.Wait()
	return st, backend
}

func TestDeleteCitizen_Cascades(t *testing.T) {
	st, backend := cascadeStore(t)

	require.NoError(t, st.DeleteCitizen(context.Background(), "c1"))
	st.Wait()

	// Memory: citizen, its records, its attendance and its paired account
	// are all gone; unrelated rows survive.
	for _, c := range st.Citizens() {
		assert.NotEqual(t, "c1", c.ID)
	}
	for _, r := range st.Jimpitan() {
		assert.NotEqual(t, "c1", r.CitizenID)
	}
	assert.Empty(t, st.Attendances())
	for _, a := range st.Accounts() {
		assert.NotEqual(t, model.WargaAccountID("c1"), a.ID)
	}
	assert.Len(t, st.Jimpitan(), 1)

	// Backend: dependent rows deleted strictly before the citizen row, the
	// paired account last.
	var deletes []string
	for _, call := range backend.callLog() {
		if len(call) > 11 && call[:11] == "deleteWhere" {
			deletes = append(deletes, call)
		}
	}
	require.Equal(t, []string{
		"deleteWhere:jimpitan_records:citizen_id=c1",
		"deleteWhere:attendances:citizen_id=c1",
		"deleteWhere:citizens:id=c1",
		"deleteWhere:users_app:id=warga-c1",
	}, deletes)
}

func TestDeleteCitizen_NotFound(t *testing.T) {
	st, _ := seededStore(t)

	assert.ErrorIs(t, st.DeleteCitizen(context.Background(), "ghost"), ErrCitizenNotFound)
}

func TestDeleteCitizen_BackendFailure(t *testing.T) {
	st, backend := cascadeStore(t)
	backend.fail["deleteWhere:attendances:citizen_id=c1"] = errors.New("constraint")

	err := st.DeleteCitizen(context.Background(), "c1")
	require.Error(t, err)
	assert.NotEmpty(t, st.Banner())

	// Memory already dropped the citizen; the error surfaces the partial
	// backend state instead of rolling back.
	for _, c := range st.Citizens() {
		assert.NotEqual(t, "c1", c.ID)
	}
}

func TestDeleteRegu(t *testing.T) {
	st, backend := cascadeStore(t)

	require.NoError(t, st.DeleteRegu(context.Background(), "regu-1"))
	st.Wait()

	// Citizens stay, detached from the group.
	citizens := st.Citizens()
	require.Len(t, citizens, 2)
	for _, c := range citizens {
		assert.Empty(t, c.ReguID)
	}
	for _, a := range st.Accounts() {
		assert.NotEqual(t, "regu-1", a.ID)
	}

	calls := backend.callLog()
	clearAt, deleteAt := -1, -1
	for i, call := range calls {
		switch call {
		case "clearRef:citizens:regu_id=regu-1":
			clearAt = i
		case "deleteWhere:users_app:id=regu-1":
			deleteAt = i
		}
	}
	require.GreaterOrEqual(t, clearAt, 0)
	require.GreaterOrEqual(t, deleteAt, 0)
	assert.Less(t, clearAt, deleteAt, "references must be cleared before the account row is deleted")
}

func TestDeleteRegu_Validation(t *testing.T) {
	st, _ := seededStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, st.DeleteRegu(ctx, "ghost"), ErrAccountNotFound)
	assert.ErrorIs(t, st.DeleteRegu(ctx, "a1"), ErrNotRegu)
}

func TestFullReset(t *testing.T) {
	st, backend := cascadeStore(t)

	fired := false
	st.onReset = func() { fired = true }

	require.NoError(t, st.FullReset(context.Background()))

	assert.Empty(t, st.Citizens())
	assert.Empty(t, st.Jimpitan())
	assert.Empty(t, st.Meetings())
	assert.Empty(t, st.Attendances())
	accounts := st.Accounts()
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].IsAdmin())
	assert.True(t, fired)

	// Settings survive a reset.
	assert.Equal(t, 1000, st.Settings().JimpitanNominal)

	var wipes []string
	for _, call := range backend.callLog() {
		if len(call) > 9 && call[:9] == "deleteAll" {
			wipes = append(wipes, call)
		}
	}
	require.Equal(t, []string{
		"deleteAll:jimpitan_records",
		"deleteAll:attendances",
		"deleteAll:meetings",
		"deleteAll:citizens",
	}, wipes)
}

func TestFullReset_BackendFailureStops(t *testing.T) {
	st, backend := cascadeStore(t)
	backend.fail["deleteAll:attendances"] = errors.New("unreachable")

	err := st.FullReset(context.Background())
	require.Error(t, err)
	assert.Equal(t, "reset failed", st.Banner())

	// The wipe stopped at the failing collection; memory is untouched.
	assert.NotEmpty(t, st.Citizens())
	for _, call := range backend.callLog() {
		assert.NotEqual(t, "deleteAll:citizens", call)
	}
}

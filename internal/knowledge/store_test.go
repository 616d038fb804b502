package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrieve(t *testing.T) {
	st := NewStore()

	t.Run("standard name in query matches by key", func(t *testing.T) {
		matches, ok := st.Retrieve("what does iec_61215 require", "standards")
		require.True(t, ok)
		require.Len(t, matches, 1)
		assert.Equal(t, "iec_61215", matches[0].Key)
	})

	t.Run("query text inside content matches", func(t *testing.T) {
		matches, ok := st.Retrieve("thermal cycling", "test_procedures")
		require.True(t, ok)
		found := false
		for _, m := range matches {
			if m.Key == "thermal_cycling" {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		matches, ok := st.Retrieve("SOLAR SIMULATOR", "equipment")
		require.True(t, ok)
		assert.Equal(t, "solar_simulator", matches[0].Key)
	})

	t.Run("no matches reports false", func(t *testing.T) {
		matches, ok := st.Retrieve("wind turbine gearbox", "standards")
		assert.False(t, ok)
		assert.Nil(t, matches)
	})

	t.Run("unknown category reports false", func(t *testing.T) {
		_, ok := st.Retrieve("anything", "nonexistent")
		assert.False(t, ok)
	})
}

func TestGet(t *testing.T) {
	st := NewStore()

	t.Run("empty key returns whole category in insertion order", func(t *testing.T) {
		matches, ok := st.Get("standards", "")
		require.True(t, ok)
		require.Len(t, matches, 3)
		assert.Equal(t, "iec_61215", matches[0].Key)
		assert.Equal(t, "iec_61730", matches[1].Key)
		assert.Equal(t, "ul_1703", matches[2].Key)
	})

	t.Run("specific key returns single match", func(t *testing.T) {
		matches, ok := st.Get("test_procedures", "iv_curve")
		require.True(t, ok)
		require.Len(t, matches, 1)
		assert.Equal(t, "iv_curve", matches[0].Key)
	})

	t.Run("missing key is not an error", func(t *testing.T) {
		matches, ok := st.Get("standards", "iec_62446")
		assert.False(t, ok)
		assert.Nil(t, matches)
	})
}

func TestAddUpsert(t *testing.T) {
	st := NewStore()

	st.Add("standards", "iec_61215", "replacement content")

	matches, ok := st.Get("standards", "iec_61215")
	require.True(t, ok)
	assert.Equal(t, "replacement content", matches[0].Entry.Content)

	// The key count is unchanged; the overwrite does not duplicate.
	all, _ := st.Get("standards", "")
	assert.Len(t, all, 3)
}

func TestAddNewCategory(t *testing.T) {
	st := NewStore()

	st.Add("calibration", "reference_cell", map[string]any{
		"content": "Reference cell calibration schedule",
	})

	cats := st.Categories()
	assert.Contains(t, cats, "calibration")
	// New categories go to the end of the listing.
	assert.Equal(t, "calibration", cats[len(cats)-1])

	matches, ok := st.Retrieve("reference cell", "calibration")
	require.True(t, ok)
	assert.Equal(t, "reference_cell", matches[0].Key)
}

func TestDefaultCategories(t *testing.T) {
	st := NewStore()

	assert.Equal(t, []string{
		"standards", "test_procedures", "equipment", "best_practices",
	}, st.Categories())
}

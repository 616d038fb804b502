package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextVersion(t *testing.T) {
	tests := []struct {
		latest string
		want   string
	}{
		{"", "1.0"},
		{"1.0", "1.1"},
		{"1.9", "1.10"},
		{"2.3", "2.4"},
		{"garbage", "1.0"},
		{"x.y", "1.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nextVersion(tt.latest), "latest=%q", tt.latest)
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()

	st, err := NewStore(filepath.Join(dir, "versions.db"), filepath.Join(dir, "archive"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	require.NoError(t, st.InitSchema())
	return st
}

func writeReportFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("report body"), 0o644))
	return path
}

func TestCreateVersionSequence(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	src := writeReportFile(t, "report.pdf")

	v1, err := st.CreateVersion(ctx, "r1", src, []string{"Initial generation"}, "system")
	require.NoError(t, err)
	assert.Equal(t, "1.0", v1.Version)
	assert.Equal(t, []string{"Initial generation"}, v1.Changes)

	// The archive holds its own copy named by report and version.
	assert.Equal(t, "r1_v1.0.pdf", filepath.Base(v1.FilePath))
	content, err := os.ReadFile(v1.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "report body", string(content))

	v2, err := st.CreateVersion(ctx, "r1", src, []string{"Regenerated"}, "system")
	require.NoError(t, err)
	assert.Equal(t, "1.1", v2.Version)

	// Reports version independently.
	other, err := st.CreateVersion(ctx, "r2", src, nil, "system")
	require.NoError(t, err)
	assert.Equal(t, "1.0", other.Version)
}

func TestCreateVersionMissingSource(t *testing.T) {
	st := newTestStore(t)

	_, err := st.CreateVersion(context.Background(), "r1", "/nonexistent/file.pdf", nil, "system")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to archive file")
}

func TestGetVersions(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	src := writeReportFile(t, "report.pdf")

	for i := 0; i < 3; i++ {
		_, err := st.CreateVersion(ctx, "r1", src, []string{"change"}, "system")
		require.NoError(t, err)
	}

	versions, err := st.GetVersions(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, "1.0", versions[0].Version)
	assert.Equal(t, "1.2", versions[2].Version)

	t.Run("unknown report is empty, not an error", func(t *testing.T) {
		versions, err := st.GetVersions(ctx, "nope")
		require.NoError(t, err)
		assert.Empty(t, versions)
	})
}

func TestGetVersionAndLatest(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	src := writeReportFile(t, "report.docx")

	_, err := st.CreateVersion(ctx, "r1", src, nil, "alice")
	require.NoError(t, err)
	_, err = st.CreateVersion(ctx, "r1", src, nil, "bob")
	require.NoError(t, err)

	v, err := st.GetVersion(ctx, "r1", "1.0")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "alice", v.CreatedBy)

	latest, err := st.GetLatest(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "1.1", latest.Version)

	t.Run("absent version is nil", func(t *testing.T) {
		v, err := st.GetVersion(ctx, "r1", "9.9")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("absent report has no latest", func(t *testing.T) {
		latest, err := st.GetLatest(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, latest)
	})
}

func TestCompare(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	src := writeReportFile(t, "report.pdf")

	_, err := st.CreateVersion(ctx, "r1", src, nil, "system")
	require.NoError(t, err)
	_, err = st.CreateVersion(ctx, "r1", src, nil, "system")
	require.NoError(t, err)

	cmp, err := st.Compare(ctx, "r1", "1.0", "1.1")
	require.NoError(t, err)
	assert.Equal(t, "1.0", cmp.Version1.Version)
	assert.Equal(t, "1.1", cmp.Version2.Version)
	assert.GreaterOrEqual(t, cmp.TimeDifference, 0.0)

	_, err = st.Compare(ctx, "r1", "1.0", "7.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDeleteVersion(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	src := writeReportFile(t, "report.pdf")

	v, err := st.CreateVersion(ctx, "r1", src, nil, "system")
	require.NoError(t, err)

	deleted, err := st.DeleteVersion(ctx, "r1", "1.0")
	require.NoError(t, err)
	assert.True(t, deleted)

	// Both the row and the archived copy are gone.
	_, statErr := os.Stat(v.FilePath)
	assert.True(t, os.IsNotExist(statErr))
	got, err := st.GetVersion(ctx, "r1", "1.0")
	require.NoError(t, err)
	assert.Nil(t, got)

	deleted, err = st.DeleteVersion(ctx, "r1", "1.0")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestListReports(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	src := writeReportFile(t, "report.pdf")

	for _, id := range []string{"zeta", "alpha", "alpha"} {
		_, err := st.CreateVersion(ctx, id, src, nil, "system")
		require.NoError(t, err)
	}

	ids, err := st.ListReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, ids)
}

func TestGetSummary(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	src := writeReportFile(t, "report.pdf")

	_, err := st.CreateVersion(ctx, "r1", src, []string{"Initial generation"}, "system")
	require.NoError(t, err)
	_, err = st.CreateVersion(ctx, "r1", src, []string{"Fixed summary", "New measurements"}, "system")
	require.NoError(t, err)

	summary, err := st.GetSummary(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.VersionCount)
	assert.Equal(t, "1.0", summary.FirstVersion)
	assert.Equal(t, "1.1", summary.LatestVersion)
	assert.Equal(t, 3, summary.TotalChanges)
	require.NotNil(t, summary.CreatedAt)
	require.NotNil(t, summary.LastUpdated)

	t.Run("unknown report has an empty summary", func(t *testing.T) {
		summary, err := st.GetSummary(ctx, "nope")
		require.NoError(t, err)
		assert.Equal(t, 0, summary.VersionCount)
		assert.Empty(t, summary.FirstVersion)
		assert.Nil(t, summary.CreatedAt)
	})
}

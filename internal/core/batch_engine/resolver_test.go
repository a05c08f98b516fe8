package batch_engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/uloader/internal/models"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("sample content"), 0o644))
	}
}

func locations(items []ResolvedItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Location)
	}
	return out
}

func TestResolveFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "doc.txt")

	items, err := Resolve(&models.SourceDescriptor{
		Kind:     models.SourceFile,
		Location: filepath.Join(dir, "doc.txt"),
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].IsURL)
}

func TestResolveFileMissing(t *testing.T) {
	_, err := Resolve(&models.SourceDescriptor{
		Kind:     models.SourceFile,
		Location: "/does/not/exist.txt",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestResolveFileRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	_, err := Resolve(&models.SourceDescriptor{Kind: models.SourceFile, Location: dir})
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestResolveDirectoryIncludePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.txt", "b.txt", "c.txt", "report.pdf")

	items, err := Resolve(&models.SourceDescriptor{
		Kind:            models.SourceDirectory,
		Location:        dir,
		IncludePatterns: []string{"*.txt"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "c.txt"),
	}, locations(items))
}

func TestResolveDirectoryExcludeWinsOverInclude(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "keep.txt", "drop.txt")

	items, err := Resolve(&models.SourceDescriptor{
		Kind:            models.SourceDirectory,
		Location:        dir,
		IncludePatterns: []string{"*.txt"},
		ExcludePatterns: []string{"drop.*"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "keep.txt")}, locations(items))
}

func TestResolveDirectoryNonRecursiveSkipsSubdirs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "top.txt", filepath.Join("nested", "inner.txt"))

	flat, err := Resolve(&models.SourceDescriptor{Kind: models.SourceDirectory, Location: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "top.txt")}, locations(flat))

	deep, err := Resolve(&models.SourceDescriptor{Kind: models.SourceDirectory, Location: dir, Recursive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "nested", "inner.txt"),
		filepath.Join(dir, "top.txt"),
	}, locations(deep))
}

func TestResolveDirectoryDefaultFilterSupportedOnly(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "doc.txt", "binary.bin")

	items, err := Resolve(&models.SourceDescriptor{Kind: models.SourceDirectory, Location: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "doc.txt")}, locations(items))
}

func TestResolveDirectoryDeterministicOrder(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "zeta.txt", "alpha.txt", "mid.txt")

	desc := &models.SourceDescriptor{Kind: models.SourceDirectory, Location: dir}
	first, err := Resolve(desc)
	require.NoError(t, err)
	second, err := Resolve(desc)
	require.NoError(t, err)
	assert.Equal(t, locations(first), locations(second))
	assert.Equal(t, []string{
		filepath.Join(dir, "alpha.txt"),
		filepath.Join(dir, "mid.txt"),
		filepath.Join(dir, "zeta.txt"),
	}, locations(first))
}

func TestResolveDirectoryEmptyMatchIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	items, err := Resolve(&models.SourceDescriptor{Kind: models.SourceDirectory, Location: dir})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestResolveURLNoReachabilityCheck(t *testing.T) {
	items, err := Resolve(&models.SourceDescriptor{
		Kind:     models.SourceURL,
		Location: "https://unreachable.invalid/doc.pdf",
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].IsURL)
}

func TestResolveURLList(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "urls.txt")
	content := "# catalog\nhttps://a.example/one\n\n  https://b.example/two  \n# trailing comment\n"
	require.NoError(t, os.WriteFile(list, []byte(content), 0o644))

	items, err := Resolve(&models.SourceDescriptor{Kind: models.SourceURLList, Location: list})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "https://a.example/one", items[0].Location)
	assert.Equal(t, "https://b.example/two", items[1].Location)
	assert.True(t, items[0].IsURL)
}

func TestResolveURLListMissing(t *testing.T) {
	_, err := Resolve(&models.SourceDescriptor{Kind: models.SourceURLList, Location: "/nope/urls.txt"})
	assert.ErrorIs(t, err, ErrInvalidSource)
}

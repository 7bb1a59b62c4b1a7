package plan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, when time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, when, when))
}

func TestNeedsCompileMissingObject(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.c")
	touch(t, src, time.Now())

	stale, err := NeedsCompile(dir, src, filepath.Join(dir, "a.o"), filepath.Join(dir, "a.d"), false)
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestNeedsCompileUpToDate(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	src := filepath.Join(dir, "a.c")
	hdr := filepath.Join(dir, "a.h")
	obj := filepath.Join(dir, "a.o")
	dep := filepath.Join(dir, "a.d")

	touch(t, src, base)
	touch(t, hdr, base)
	touch(t, obj, base.Add(time.Minute))
	require.NoError(t, os.WriteFile(dep, []byte("a.o: a.c a.h\n"), 0o644))

	stale, err := NeedsCompile(dir, src, obj, dep, false)
	require.NoError(t, err)
	assert.False(t, stale)
}

func TestNeedsCompileHeaderTouched(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	src := filepath.Join(dir, "a.c")
	hdr := filepath.Join(dir, "a.h")
	obj := filepath.Join(dir, "a.o")
	dep := filepath.Join(dir, "a.d")

	touch(t, src, base)
	touch(t, obj, base.Add(time.Minute))
	touch(t, hdr, time.Now()) // newer than object
	require.NoError(t, os.WriteFile(dep, []byte("a.o: a.c a.h\n"), 0o644))

	stale, err := NeedsCompile(dir, src, obj, dep, false)
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestNeedsCompileForcedByClean(t *testing.T) {
	dir := t.TempDir()
	stale, err := NeedsCompile(dir, "a.c", "a.o", "a.d", true)
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestNeedsRelinkSkipsWhenNothingCompiled(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	obj := filepath.Join(dir, "a.o")
	art := filepath.Join(dir, "hello")
	touch(t, obj, base)
	touch(t, art, base.Add(time.Minute))

	relink, err := NeedsRelink(art, true, []string{obj}, nil)
	require.NoError(t, err)
	assert.False(t, relink)
}

func TestNeedsRelinkForcedWhenSourceCompiled(t *testing.T) {
	dir := t.TempDir()
	relink, err := NeedsRelink(filepath.Join(dir, "hello"), false, nil, nil)
	require.NoError(t, err)
	assert.True(t, relink)
}

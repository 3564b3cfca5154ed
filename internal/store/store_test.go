package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyinit/internal/pipeline"
)

var _ pipeline.Cache = (*Store)(nil)

func open(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestPutGet(t *testing.T) {
	s := open(t).WithSession("sess")
	_, ok := s.Get("a/B@1@2")
	assert.False(t, ok)

	require.NoError(t, s.Put("a/B@1@2", []byte{0xca, 0xfe}))
	data, ok := s.Get("a/B@1@2")
	require.True(t, ok)
	assert.Equal(t, []byte{0xca, 0xfe}, data)

	rec, err := s.Lookup("a/B@1@2")
	require.NoError(t, err)
	assert.Equal(t, "a/B", rec.Class)
	assert.Equal(t, "sess", rec.Session)

	require.NoError(t, s.Put("a/B@1@2", []byte{1}))
	data, _ = s.Get("a/B@1@2")
	assert.Equal(t, []byte{1}, data)
	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put("x/Y@h", []byte("woven")))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	data, ok := s.Get("x/Y@h")
	require.True(t, ok)
	assert.Equal(t, "woven", string(data))
}

func TestForgetPrune(t *testing.T) {
	s := open(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	require.NoError(t, s.Put("a/A@1", []byte{1}))
	require.NoError(t, s.Put("a/A@2", []byte{2}))
	s.now = func() time.Time { return base.Add(time.Hour) }
	require.NoError(t, s.Put("b/B@1", []byte{3}))

	n, err := s.Prune(base.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.Forget("b/B")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	total, _ := s.Len()
	assert.Equal(t, 0, total)
}

func TestClassOf(t *testing.T) {
	tests := []struct{ key, want string }{
		{"a/B@h@f", "a/B"},
		{"a/B", "a/B"},
	}
	for _, tt := range tests {
		if got := ClassOf(tt.key); got != tt.want {
			t.Errorf("ClassOf(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

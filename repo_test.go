package git_test

import (
	"path/filepath"
	"testing"

	git "github.com/sankantsu/minigit"
	"github.com/sankantsu/minigit/internal/env"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEnv() *env.Env {
	return env.NewFromKVList([]string{"HOME=/home/user"})
}

func writeGlobalGitConfig(t *testing.T, fs afero.Fs) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, "/home/user/.gitconfig", []byte("[user]\n\tname = A\n\temail = a@x\n"), 0o644))
}

func TestInitRepositoryIsIdempotent(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	root := "/repo"

	r, err := git.InitRepository(root, git.Options{FS: fs})
	require.NoError(t, err)
	require.NoError(t, r.Close())

	// re-running init on the same repository must not fail
	r2, err := git.InitRepository(root, git.Options{FS: fs})
	require.NoError(t, err)
	require.NoError(t, r2.Close())

	exists, err := afero.Exists(fs, filepath.Join(root, ".git", "objects"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestHashObjectAndGetObjectRoundTrip(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	root := "/repo"
	r, err := git.InitRepository(root, git.Options{FS: fs})
	require.NoError(t, err)
	defer r.Close()

	oid, err := r.HashObject([]byte("hello\n"), true)
	require.NoError(t, err)
	assert.Equal(t, "ce013625030ba8dba906f756967f9e9ca394464a", oid.String())

	o, err := r.GetObject(oid)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(o.Bytes()))
}

func TestHashObjectWithoutWriteDoesNotPersist(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	root := "/repo"
	r, err := git.InitRepository(root, git.Options{FS: fs})
	require.NoError(t, err)
	defer r.Close()

	oid, err := r.HashObject([]byte(""), false)
	require.NoError(t, err)
	assert.Equal(t, "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391", oid.String())

	_, err = r.GetObject(oid)
	assert.Error(t, err)
}

func TestEndToEndStageWriteTreeCommit(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeGlobalGitConfig(t, fs)
	root := "/repo"

	r, err := git.InitRepository(root, git.Options{FS: fs, Env: fakeEnv()})
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, afero.WriteFile(fs, filepath.Join(root, "hello"), []byte("hello\n"), 0o644))

	idx, err := r.LoadIndex()
	require.NoError(t, err)
	require.NoError(t, r.AddToIndex(idx, []string{"hello"}))
	require.NoError(t, r.StoreIndex(idx))

	reloaded, err := r.LoadIndex()
	require.NoError(t, err)
	require.Len(t, reloaded.Entries, 1)

	treeOID, err := r.WriteTree(reloaded)
	require.NoError(t, err)
	assert.Equal(t, "aa5a352b2e4d1c4ab3906676f0bfc5f5dd10c2f2", treeOID.String())

	commitOID, err := r.CommitTree(treeOID, nil, "msg\n")
	require.NoError(t, err)

	o, err := r.GetObject(commitOID)
	require.NoError(t, err)
	c, err := o.AsCommit()
	require.NoError(t, err)
	assert.Equal(t, treeOID, c.TreeID())
	assert.Empty(t, c.ParentIDs())
	assert.Equal(t, "msg\n", c.Message())

	i2, err := r.ReadTree(treeOID)
	require.NoError(t, err)
	require.Len(t, i2.Entries, 1)
	assert.Equal(t, "hello", i2.Entries[0].Path)
}

func TestResolveOid(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	root := "/repo"
	r, err := git.InitRepository(root, git.Options{FS: fs})
	require.NoError(t, err)
	defer r.Close()

	oid, err := r.HashObject([]byte("hello\n"), true)
	require.NoError(t, err)

	t.Run("exact prefix resolves", func(t *testing.T) {
		t.Parallel()
		got, err := r.ResolveOid(oid.String()[:8])
		require.NoError(t, err)
		assert.Equal(t, oid, got)
	})

	t.Run("too short is rejected", func(t *testing.T) {
		t.Parallel()
		_, err := r.ResolveOid("ce0")
		assert.ErrorIs(t, err, git.ErrOidTooShort)
	})

	t.Run("unknown prefix", func(t *testing.T) {
		t.Parallel()
		_, err := r.ResolveOid("ffffffff")
		assert.ErrorIs(t, err, git.ErrOidNotFound)
	})
}

package index_test

import (
	"strings"
	"testing"

	"github.com/sankantsu/minigit/ginternals"
	"github.com/sankantsu/minigit/ginternals/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIndexRoundTrip covers spec scenario S5: an index with entries
// ["a", "b/c", "b/d"] serializes, deserializes, and compares equal;
// the encoded form's trailing checksum verifies.
func TestIndexRoundTrip(t *testing.T) {
	t.Parallel()

	blobOID := oid(t, "ce013625030ba8dba906f756967f9e9ca394464a")

	idx := index.New()
	idx.Entries = []index.Entry{
		{Path: "b/d", Mode: 0o100644, OID: blobOID, Size: 6},
		{Path: "a", Mode: 0o100644, OID: blobOID, Size: 6},
		{Path: "b/c", Mode: 0o100755, OID: blobOID, Size: 6, Stage: 0},
	}

	data := index.Encode(idx)
	decoded, err := index.Decode(data)
	require.NoError(t, err)

	require.Len(t, decoded.Entries, 3)
	assert.Equal(t, []string{"a", "b/c", "b/d"}, []string{
		decoded.Entries[0].Path, decoded.Entries[1].Path, decoded.Entries[2].Path,
	})
	for _, e := range decoded.Entries {
		assert.Equal(t, blobOID, e.OID)
	}
	assert.Equal(t, uint32(0o100755), decoded.Entries[1].Mode)

	// re-encoding the decoded index must produce byte-identical output
	assert.Equal(t, data, index.Encode(decoded))
}

func TestEncodeProducesMultipleOf8Entries(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"a", "ab", "readme.md", "a-fairly-long-path/within/a/tree/structure.go"} {
		idx := index.New()
		idx.Entries = []index.Entry{{Path: name}}
		data := index.Encode(idx)

		// header(12) + entries + checksum(20); entries alone must be a
		// multiple of 8.
		entryBytes := len(data) - 12 - 20
		assert.Zero(t, entryBytes%8, "entry for %q isn't padded to a multiple of 8", name)
	}
}

func TestDecodeRejectsBadVersion(t *testing.T) {
	t.Parallel()

	idx := index.New()
	data := index.Encode(idx)
	// version field lives right after the 4-byte magic
	data[4], data[5], data[6], data[7] = 0, 0, 0, 3

	_, err := index.Decode(data)
	assert.ErrorIs(t, err, index.ErrUnsupportedVersion)
}

func TestDecodeRejectsBadChecksum(t *testing.T) {
	t.Parallel()

	idx := index.New()
	idx.Entries = []index.Entry{{Path: "a"}}
	data := index.Encode(idx)
	data[len(data)-1] ^= 0xFF

	_, err := index.Decode(data)
	assert.ErrorIs(t, err, index.ErrCorrupt)
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	t.Parallel()

	_, err := index.Decode([]byte("short"))
	assert.ErrorIs(t, err, index.ErrCorrupt)
}

func TestDecodeRejectsTrailingBytesBeforeChecksum(t *testing.T) {
	t.Parallel()

	idx := index.New()
	data := index.Encode(idx)
	// splice an "extension" between the (zero) entries and the checksum
	withExtension := append(append([]byte{}, data[:len(data)-20]...), []byte("TREE0000")...)
	withExtension = append(withExtension, data[len(data)-20:]...)

	_, err := index.Decode(withExtension)
	assert.ErrorIs(t, err, index.ErrCorrupt)
}

func TestRoundTripCappedNameLength(t *testing.T) {
	t.Parallel()

	longName := strings.Repeat("a", 0xFFF+200)
	idx := index.New()
	idx.Entries = []index.Entry{{Path: longName, OID: ginternals.NullOid}}

	data := index.Encode(idx)
	decoded, err := index.Decode(data)
	require.NoError(t, err)
	require.Len(t, decoded.Entries, 1)
	assert.Equal(t, longName, decoded.Entries[0].Path)
}

func TestFlagBitsRoundTrip(t *testing.T) {
	t.Parallel()

	idx := index.New()
	idx.Entries = []index.Entry{
		{Path: "a", AssumeValid: true, Stage: 2},
		{Path: "b", Extended: true, Stage: 1},
	}

	decoded, err := index.Decode(index.Encode(idx))
	require.NoError(t, err)
	require.Len(t, decoded.Entries, 2)

	assert.True(t, decoded.Entries[0].AssumeValid)
	assert.Equal(t, uint8(2), decoded.Entries[0].Stage)
	assert.True(t, decoded.Entries[1].Extended)
	assert.Equal(t, uint8(1), decoded.Entries[1].Stage)
}

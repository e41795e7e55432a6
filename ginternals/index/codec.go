package index

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // git's index checksum is specified as SHA-1, not used for security here
	"encoding/binary"

	"github.com/sankantsu/minigit/ginternals"
	"github.com/sankantsu/minigit/internal/readutil"
	"golang.org/x/xerrors"
)

const (
	magic = "DIRC"
	// entryFixedLen is the size, in bytes, of the fixed portion of an
	// entry: 10 big-endian u32 fields, a 20-byte oid, and a u16 flags
	// field (40 + 20 + 2).
	entryFixedLen = 62
	checksumLen   = 20
	headerLen     = 12
)

// Encode serializes idx into git's binary index format (version 2):
// entries are sorted by path first, then the DIRC header, each entry,
// and a trailing SHA-1 checksum over everything before it.
func Encode(idx *Index) []byte {
	idx.Sort()

	buf := new(bytes.Buffer)
	buf.WriteString(magic)
	writeU32(buf, Version)
	writeU32(buf, uint32(len(idx.Entries)))

	for _, e := range idx.Entries {
		encodeEntry(buf, e)
	}

	sum := sha1.Sum(buf.Bytes()) //nolint:gosec
	buf.Write(sum[:])
	return buf.Bytes()
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func encodeEntry(buf *bytes.Buffer, e Entry) {
	writeU32(buf, e.CtimeSec)
	writeU32(buf, e.CtimeNano)
	writeU32(buf, e.MtimeSec)
	writeU32(buf, e.MtimeNano)
	writeU32(buf, e.Dev)
	writeU32(buf, e.Ino)
	writeU32(buf, e.Mode)
	writeU32(buf, e.UID)
	writeU32(buf, e.GID)
	writeU32(buf, e.Size)
	oid := e.OID
	if oid == nil {
		oid = ginternals.NullOid
	}
	buf.Write(oid.Bytes())

	flags := e.nameLength()
	if e.AssumeValid {
		flags |= 1 << 15
	}
	if e.Extended {
		flags |= 1 << 14
	}
	flags |= uint16(e.Stage&0x3) << 12
	writeU16(buf, flags)

	buf.WriteString(e.Path)
	buf.Write(make([]byte, paddingFor(len(e.Path))))
}

// paddingFor returns the number of NUL bytes (including the path's
// terminator) needed after a nameLen-byte path so that the entry, from
// ctime to the end of padding, is a multiple of 8 bytes.
// entryFixedLen (62) mod 8 is 6, so "nameLen+6" below stands in for
// "nameLen+entryFixedLen" without risking an int overflow on nameLen.
func paddingFor(nameLen int) int {
	return 8 - ((nameLen + 6) % 8)
}

// Decode parses raw index bytes: it verifies the trailing checksum,
// the DIRC header and version, then every entry in turn. Any index
// extension between the last entry and the checksum is rejected as
// CorruptIndex rather than skipped.
func Decode(data []byte) (*Index, error) {
	if len(data) < headerLen+checksumLen {
		return nil, xerrors.Errorf("index is only %d bytes: %w", len(data), ErrCorrupt)
	}

	body := data[:len(data)-checksumLen]
	wantSum := data[len(data)-checksumLen:]
	gotSum := sha1.Sum(body) //nolint:gosec
	if !bytes.Equal(gotSum[:], wantSum) {
		return nil, xerrors.Errorf("checksum mismatch: %w", ErrCorrupt)
	}

	c := readutil.NewCursor(body)

	hdr, err := c.ReadN(4)
	if err != nil || string(hdr) != magic {
		return nil, xerrors.Errorf("missing %q magic: %w", magic, ErrCorrupt)
	}

	version, err := c.ReadU32BE()
	if err != nil {
		return nil, xerrors.Errorf("could not read version: %w", ErrCorrupt)
	}
	if version != Version {
		return nil, xerrors.Errorf("version %d: %w", version, ErrUnsupportedVersion)
	}

	count, err := c.ReadU32BE()
	if err != nil {
		return nil, xerrors.Errorf("could not read entry count: %w", ErrCorrupt)
	}

	entries := make([]Entry, 0, count)
	for i := uint32(0); i < count; i++ {
		e, err := decodeEntry(c)
		if err != nil {
			return nil, xerrors.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}

	if c.Len() != 0 {
		return nil, xerrors.Errorf("%d unexpected trailing bytes before checksum: %w", c.Len(), ErrCorrupt)
	}

	return &Index{Entries: entries}, nil
}

func decodeEntry(c *readutil.Cursor) (Entry, error) {
	var e Entry

	fields := make([]uint32, 10)
	for i := range fields {
		v, err := c.ReadU32BE()
		if err != nil {
			return e, xerrors.Errorf("could not read field %d: %w", i, ErrCorrupt)
		}
		fields[i] = v
	}
	e.CtimeSec, e.CtimeNano = fields[0], fields[1]
	e.MtimeSec, e.MtimeNano = fields[2], fields[3]
	e.Dev, e.Ino, e.Mode, e.UID, e.GID, e.Size = fields[4], fields[5], fields[6], fields[7], fields[8], fields[9]

	oidBytes, err := c.ReadN(ginternals.OidSize())
	if err != nil {
		return e, xerrors.Errorf("could not read oid: %w", ErrCorrupt)
	}
	e.OID, err = ginternals.NewOidFromHex(oidBytes)
	if err != nil {
		return e, xerrors.Errorf("invalid oid: %w", ErrCorrupt)
	}

	flags, err := c.ReadU16BE()
	if err != nil {
		return e, xerrors.Errorf("could not read flags: %w", ErrCorrupt)
	}
	e.AssumeValid = flags&(1<<15) != 0
	e.Extended = flags&(1<<14) != 0
	e.Stage = uint8((flags >> 12) & 0x3) //nolint:gosec // masked to 2 bits
	nameLen := int(flags & 0x0FFF)

	var path []byte
	if nameLen < 0xFFF {
		path, err = c.ReadN(nameLen)
		if err != nil {
			return e, xerrors.Errorf("could not read %d-byte path: %w", nameLen, ErrCorrupt)
		}
		if _, err := c.ReadN(paddingFor(len(path))); err != nil {
			return e, xerrors.Errorf("could not read padding: %w", ErrCorrupt)
		}
	} else {
		// the true length doesn't fit in 12 bits: fall back to
		// scanning for the NUL terminator, which ReadUntil consumes.
		path = c.ReadUntil(0)
		if path == nil {
			return e, xerrors.Errorf("could not find NUL-terminated path: %w", ErrCorrupt)
		}
		if extra := paddingFor(len(path)) - 1; extra > 0 {
			if _, err := c.ReadN(extra); err != nil {
				return e, xerrors.Errorf("could not read padding: %w", ErrCorrupt)
			}
		}
	}
	e.Path = string(path)

	return e, nil
}

package ginternals

import "github.com/sankantsu/minigit/ginternals/githash"

// hashMethod is the hashing algorithm used to name every object in this
// implementation. Git itself can be compiled against SHA1 or SHA256;
// we only ever need the former.
var hashMethod = githash.NewSHA1()

// Oid represents a git Object ID (a SHA1 sum)
type Oid = githash.Oid

// NullOid is the zero-value Oid, used to represent "no object"
// (e.g. a commit with no parent)
var NullOid = hashMethod.NullOid()

// NewOidFromHex returns an Oid from its binary representation.
// For the SHA 9b91da06e69613397b38e0808e0ba5ee6983251b the expected
// input is []byte{0x9b, 0x91, 0xda, ...}
func NewOidFromHex(id []byte) (Oid, error) {
	return hashMethod.ConvertFromBytes(id)
}

// NewOidFromChars returns an Oid from its hex-encoded ASCII representation.
// For the SHA 9b91da06e69613397b38e0808e0ba5ee6983251b the expected
// input is []byte("9b91da06e69613397b38e0808e0ba5ee6983251b")
func NewOidFromChars(id []byte) (Oid, error) {
	return hashMethod.ConvertFromChars(id)
}

// NewOidFromStr returns an Oid from its hex-encoded string representation
func NewOidFromStr(id string) (Oid, error) {
	return hashMethod.ConvertFromString(id)
}

// NewOidFromContent computes the Oid of the given content.
// content is expected to be the already-framed object representation
// (type SP size NUL content), not the raw payload.
func NewOidFromContent(content []byte) Oid {
	return hashMethod.Sum(content)
}

// OidSize returns the size, in bytes, of an Oid's binary representation
func OidSize() int {
	return hashMethod.OidSize()
}

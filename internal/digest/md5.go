// Package digest wraps the MD5 primitive as a black-box 128-bit digest.
package digest

import "crypto/md5"

// Size is the length in bytes of an MD5 digest.
const Size = md5.Size

// Sum returns the MD5 digest of the concatenation of all given byte slices.
func Sum(parts ...[]byte) [Size]byte {
	h := md5.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out [Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

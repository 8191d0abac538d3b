package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strconv"
)

// diagramKey hashes a line's content hash with every render option into
// "<kind>:<sha256>". Fields are NUL-separated so adjacent values cannot run
// together ("ab"+"c" and "a"+"bc" hash differently).
func diagramKey(kind, lineHash string, opts DiagramKeyOpts) string {
	h := sha256.New()
	for _, field := range []string{lineHash, opts.Format, opts.Direction, strconv.FormatBool(opts.Distances)} {
		io.WriteString(h, field)
		h.Write([]byte{0})
	}
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data. Renderers pass the encoded line
// snapshot, so any edit to stations, sections or metadata changes it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

package metadata

import (
	"fmt"
	"strings"

	"github.com/bodgit/apw/crc32"
)

const filenameTrim = 56

// CRCFilename computes the key for an image from its filename in the same
// way as the display firmware. The name is upper-cased, truncated or
// zero-padded to 56 bytes and checksummed from 0xffffffff.
func CRCFilename(filename string) uint32 {
	var b [filenameTrim]byte
	copy(b[:], fmt.Sprintf("%.*s", filenameTrim, strings.ToUpper(filename)))
	return crc32.Update(0xffffffff, b[:])
}

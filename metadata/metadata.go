/*
Package metadata implements the bundle file written to a directory of APW
images so the display firmware can find an image by name without a
filesystem directory lookup.

The bundle starts with 1024 little-endian filename CRCs in ascending order,
then 1024 16-bit image indices and 1024 32-bit image offsets, each table
padded with all bits set. The APW images follow, concatenated, with offsets
relative to the first one. Identical images are only stored once.
*/
package metadata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
)

const (
	// Filename is the expected filename used when writing to disk
	Filename   = "images.apb"
	maxEntries = 1024

	keyTableSize    = maxEntries * 4
	indexTableSize  = maxEntries * 2
	offsetTableSize = maxEntries * 4
	tablesSize      = keyTableSize + indexTableSize + offsetTableSize

	unusedKey    = 0xffffffff
	unusedIndex  = 0xffff
	unusedOffset = 0xffffffff
)

var (
	errNotAPW        = errors.New("metadata: not an APW image")
	errInsufficient  = errors.New("metadata: insufficient data")
	errBadIndex      = errors.New("metadata: image index out of range")
	errBadOffset     = errors.New("metadata: image offset out of range")
	errTooManyImages = fmt.Errorf("metadata: more than %d entries", maxEntries)
)

// DB is the bundle. It implements the encoding.BinaryMarshaler and
// encoding.BinaryUnmarshaler interfaces.
type DB struct {
	checksums map[uint32]uint16
	images    [][]byte
}

// New returns an empty bundle
func New() *DB {
	return &DB{
		checksums: make(map[uint32]uint16),
	}
}

// Length returns the number of checksums in the bundle
func (db *DB) Length() int {
	return len(db.checksums)
}

// Images returns the number of distinct images in the bundle
func (db *DB) Images() int {
	return len(db.images)
}

// Set stores the APW image for the given CRC. An existing entry is kept.
func (db *DB) Set(crc uint32, image []byte) error {
	if !bytes.HasPrefix(image, []byte("CBLS")) {
		return errNotAPW
	}
	if _, ok := db.checksums[crc]; ok {
		return nil
	}
	if len(db.checksums) == maxEntries {
		return errTooManyImages
	}
	for i, b := range db.images {
		if bytes.Equal(b, image) {
			db.checksums[crc] = uint16(i)
			return nil
		}
	}
	db.images = append(db.images, image)
	db.checksums[crc] = uint16(len(db.images) - 1)
	return nil
}

// Get returns the APW image stored for the given CRC
func (db *DB) Get(crc uint32) ([]byte, bool) {
	i, ok := db.checksums[crc]
	if !ok {
		return nil, false
	}
	return db.images[i], true
}

// MarshalBinary encodes the bundle into binary form and returns the result
func (db *DB) MarshalBinary() ([]byte, error) {
	length := len(db.checksums)

	if length > maxEntries {
		return nil, errTooManyImages
	}

	keys := make([]uint32, 0, length)
	for k := range db.checksums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	b := new(bytes.Buffer)

	// Write out CRC values
	if err := binary.Write(b, binary.LittleEndian, keys); err != nil {
		return nil, err
	}
	if _, err := b.Write(bytes.Repeat([]byte{0xff, 0xff, 0xff, 0xff}, maxEntries-length)); err != nil {
		return nil, err
	}

	// Write out image indices
	for _, k := range keys {
		if err := binary.Write(b, binary.LittleEndian, db.checksums[k]); err != nil {
			return nil, err
		}
	}
	if _, err := b.Write(bytes.Repeat([]byte{0xff, 0xff}, maxEntries-length)); err != nil {
		return nil, err
	}

	// Write out image offsets
	var offset uint32
	for _, image := range db.images {
		if err := binary.Write(b, binary.LittleEndian, offset); err != nil {
			return nil, err
		}
		offset += uint32(len(image))
	}
	if _, err := b.Write(bytes.Repeat([]byte{0xff, 0xff, 0xff, 0xff}, maxEntries-len(db.images))); err != nil {
		return nil, err
	}

	// Write out images
	for _, image := range db.images {
		if _, err := b.Write(image); err != nil {
			return nil, err
		}
	}

	return b.Bytes(), nil
}

// UnmarshalBinary decodes the bundle from binary form
func (db *DB) UnmarshalBinary(b []byte) error {
	if len(b) < tablesSize {
		return errInsufficient
	}

	db.checksums = make(map[uint32]uint16)
	db.images = nil

	var keys []uint32
	for i := 0; i < maxEntries; i++ {
		if crc := binary.LittleEndian.Uint32(b[i*4:]); crc != unusedKey {
			keys = append(keys, crc)
		}
	}

	var offsets []int
	for i := 0; i < maxEntries; i++ {
		offset := binary.LittleEndian.Uint32(b[keyTableSize+indexTableSize+i*4:])
		if offset == unusedOffset {
			break
		}
		offsets = append(offsets, int(offset))
	}

	data := b[tablesSize:]
	for i, offset := range offsets {
		end := len(data)
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		if offset > end || end > len(data) {
			return errBadOffset
		}
		db.images = append(db.images, data[offset:end])
	}

	for i, k := range keys {
		index := binary.LittleEndian.Uint16(b[keyTableSize+i*2:])
		if index == unusedIndex {
			continue
		}
		if int(index) >= len(db.images) {
			return errBadIndex
		}
		db.checksums[k] = index
	}

	return nil
}

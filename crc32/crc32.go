/*
Package crc32 implements the CRC-32 used to key images in an APW bundle.

It is the MSB-first CRC-32 with the standard polynomial and no final XOR,
however the data is consumed as little-endian 32-bit words with the most
significant byte of each word first. This matches firmware that loads a word
at a time on a little-endian CPU.
*/
package crc32

import "hash"

// Size of a CRC-32 checksum in bytes.
const Size = 4

const polynomial = 0x04c11db7

var table = func() (t [256]uint32) {
	for i := range t {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = crc<<1 ^ polynomial
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return
}()

func updateWord(crc uint32, w []byte) uint32 {
	for i := 3; i >= 0; i-- {
		crc = crc<<8 ^ table[byte(crc>>24)^w[i]]
	}
	return crc
}

// Update returns the result of adding the bytes in p to crc. Any trailing
// partial word is ignored.
func Update(crc uint32, p []byte) uint32 {
	for ; len(p) >= 4; p = p[4:] {
		crc = updateWord(crc, p)
	}
	return crc
}

// Checksum returns the checksum of data, starting from zero.
func Checksum(data []byte) uint32 { return Update(0, data) }

type digest struct {
	crc  uint32
	init uint32
	buf  [4]byte
	n    int
}

// New creates a new hash.Hash32 computing the checksum from the initial
// value init. Bytes are buffered until a whole word is available. Its Sum
// method lays the value out in big-endian byte order.
func New(init uint32) hash.Hash32 {
	return &digest{crc: init, init: init}
}

func (d *digest) Size() int { return Size }

func (d *digest) BlockSize() int { return 4 }

func (d *digest) Reset() {
	d.crc, d.n = d.init, 0
}

func (d *digest) Write(p []byte) (int, error) {
	n := len(p)
	if d.n > 0 {
		c := copy(d.buf[d.n:], p)
		d.n += c
		p = p[c:]
		if d.n < 4 {
			return n, nil
		}
		d.crc = updateWord(d.crc, d.buf[:])
		d.n = 0
	}
	d.crc = Update(d.crc, p)
	d.n = copy(d.buf[:], p[len(p)&^3:])
	return n, nil
}

func (d *digest) Sum32() uint32 { return d.crc }

func (d *digest) Sum(in []byte) []byte {
	s := d.Sum32()
	return append(in, byte(s>>24), byte(s>>16), byte(s>>8), byte(s))
}

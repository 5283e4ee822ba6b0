package encoding

import "io"

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

// writeUvarint encodes x as an unsigned LEB128 varint.
func writeUvarint(w io.Writer, x uint64) error {
	for {
		b := byte(x & 0x7f)
		x >>= 7
		if x != 0 {
			b |= 0x80
		}
		if err := writeByte(w, b); err != nil {
			return err
		}
		if x == 0 {
			return nil
		}
	}
}

// writeVarint encodes x as a signed LEB128 varint.
func writeVarint(w io.Writer, x int64) error {
	more := true
	for more {
		b := byte(x & 0x7f)
		x >>= 7
		signBitSet := b&0x40 != 0
		if (x == 0 && !signBitSet) || (x == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		if err := writeByte(w, b); err != nil {
			return err
		}
	}
	return nil
}

func writeU32(w io.Writer, x uint32) error { return writeUvarint(w, uint64(x)) }
func writeI32(w io.Writer, x int32) error  { return writeVarint(w, int64(x)) }
func writeI64(w io.Writer, x int64) error  { return writeVarint(w, x) }

// writeName encodes a length-prefixed UTF-8 string, as used for import/export
// names and custom section contents.
func writeName(w io.Writer, s string) error {
	if err := writeU32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// writeF64Bits encodes bits as little-endian IEEE-754 double precision bits.
func writeF64Bits(w io.Writer, bits uint64) error {
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[i] = byte(bits >> (8 * i))
	}
	_, err := w.Write(buf)
	return err
}

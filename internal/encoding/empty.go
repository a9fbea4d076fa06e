package encoding

import (
	"encoding/binary"
	"io"
)

// writeEmptyGIF writes a GIF89a header, a logical screen descriptor without
// a global color table, and the trailer. image/gif refuses to encode zero
// frames, so the bytes are written directly.
func writeEmptyGIF(w io.Writer, size int) error {
	size = min(max(size, 0), 0xFFFF)
	buf := make([]byte, 0, 14)
	buf = append(buf, "GIF89a"...)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(size))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(size))
	// packed fields, background color index, pixel aspect ratio
	buf = append(buf, 0x00, 0x00, 0x00)
	buf = append(buf, 0x3B)
	_, err := w.Write(buf)
	return err
}

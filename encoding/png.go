package encoding

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"io"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// IHDR is always the first chunk: length (4) + type (4) + data (13) + crc (4)
const ihdrEnd = 8 + 4 + 4 + 13 + 4

var ErrNotPNG = errors.New("not a PNG image")

// Text is a PNG tEXt key / value pair
type Text struct {
	Key   string
	Value string
}

// Encode the Image to PNG bytes
func encodePNG(img image.Image) ([]byte, error) {
	var buffer bytes.Buffer
	err := png.Encode(&buffer, img)
	if err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

// EncodePNG writes img to w as PNG, with a tEXt chunk for each entry of text
// placed directly after the header.
func EncodePNG(w io.Writer, img image.Image, text []Text) error {
	data, err := encodePNG(img)
	if err != nil {
		return fmt.Errorf("encode png: %w", err)
	}

	if _, err = w.Write(data[:ihdrEnd]); err != nil {
		return err
	}
	for _, entry := range text {
		chunk, err := textChunk(entry)
		if err != nil {
			return err
		}
		if _, err = w.Write(chunk); err != nil {
			return err
		}
	}
	_, err = w.Write(data[ihdrEnd:])
	return err
}

func textChunk(entry Text) ([]byte, error) {
	if len(entry.Key) == 0 || len(entry.Key) > 79 {
		return nil, fmt.Errorf("invalid tEXt keyword %q: must be 1-79 bytes", entry.Key)
	}
	if bytes.IndexByte([]byte(entry.Key), 0) >= 0 || bytes.IndexByte([]byte(entry.Value), 0) >= 0 {
		return nil, fmt.Errorf("invalid tEXt entry %q: contains null byte", entry.Key)
	}

	data := make([]byte, 0, len(entry.Key)+1+len(entry.Value))
	data = append(data, entry.Key...)
	data = append(data, 0)
	data = append(data, entry.Value...)

	chunk := make([]byte, 8, 12+len(data))
	binary.BigEndian.PutUint32(chunk[:4], uint32(len(data)))
	copy(chunk[4:8], "tEXt")
	chunk = append(chunk, data...)
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))
	return chunk, nil
}

// ReadText returns the tEXt entries of a PNG stream, in file order.
// Reading stops at the first image data chunk.
func ReadText(r io.Reader) ([]Text, error) {
	br := bufio.NewReader(r)

	signature := make([]byte, len(pngSignature))
	if _, err := io.ReadFull(br, signature); err != nil || !bytes.Equal(signature, pngSignature) {
		return nil, ErrNotPNG
	}

	var text []Text
	header := make([]byte, 8)
	for {
		if _, err := io.ReadFull(br, header); err != nil {
			return nil, fmt.Errorf("read chunk header: %w", err)
		}
		length := binary.BigEndian.Uint32(header[:4])
		chunkType := string(header[4:8])

		switch chunkType {
		case "IDAT", "IEND":
			return text, nil
		case "tEXt":
			data := make([]byte, length)
			if _, err := io.ReadFull(br, data); err != nil {
				return nil, fmt.Errorf("read tEXt chunk: %w", err)
			}
			key, value, found := bytes.Cut(data, []byte{0})
			if !found {
				return nil, fmt.Errorf("malformed tEXt chunk")
			}
			text = append(text, Text{Key: string(key), Value: string(value)})
		default:
			if _, err := br.Discard(int(length)); err != nil {
				return nil, fmt.Errorf("skip %s chunk: %w", chunkType, err)
			}
		}

		// crc
		if _, err := br.Discard(4); err != nil {
			return nil, fmt.Errorf("read chunk crc: %w", err)
		}
	}
}

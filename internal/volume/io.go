package volume

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// SampleFormat identifies the on-disk sample encoding of a raw volume
// file. All formats are little-endian with the same index layout as
// Block.Data.
type SampleFormat string

const (
	Float32LE SampleFormat = "float32le"
	Float64LE SampleFormat = "float64le"
)

// ReadRaw loads a raw volume file with the given extents and sample
// format. The file length must match the extents exactly.
func ReadRaw(path string, nx, ny, nz int, format SampleFormat) (*Block, error) {
	b, err := New(nx, ny, nz)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open volume file: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	switch format {
	case Float32LE:
		buf := make([]byte, 4)
		for i := range b.Data {
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, fmt.Errorf("short volume file at sample %d of %d: %w", i, b.Len(), err)
			}
			b.Data[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf)))
		}
	case Float64LE:
		buf := make([]byte, 8)
		for i := range b.Data {
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, fmt.Errorf("short volume file at sample %d of %d: %w", i, b.Len(), err)
			}
			b.Data[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf))
		}
	default:
		return nil, fmt.Errorf("unknown sample format %q", format)
	}

	// Reject trailing data so extent typos fail loudly instead of
	// silently reading a misaligned volume.
	if _, err := r.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("volume file longer than extents (%d,%d,%d)", nx, ny, nz)
	}
	return b, nil
}

// WriteRaw writes the block to path in the given sample format.
func WriteRaw(path string, b *Block, format SampleFormat) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create volume file: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := writeSamples(w, b, format); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush volume file: %w", err)
	}
	return f.Close()
}

func writeSamples(w io.Writer, b *Block, format SampleFormat) error {
	switch format {
	case Float32LE:
		buf := make([]byte, 4)
		for _, v := range b.Data {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v)))
			if _, err := w.Write(buf); err != nil {
				return fmt.Errorf("failed to write volume file: %w", err)
			}
		}
	case Float64LE:
		buf := make([]byte, 8)
		for _, v := range b.Data {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
			if _, err := w.Write(buf); err != nil {
				return fmt.Errorf("failed to write volume file: %w", err)
			}
		}
	default:
		return fmt.Errorf("unknown sample format %q", format)
	}
	return nil
}

package dynamic

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cjmxp/recast.go/recast"
)

var ErrMalformedSpanData = errors.New("dynamic: malformed span data")

const spanRecordSize = 5

// VoxelTile is the serialized base heightfield of one tile, border included. SpanData holds one run per
// column in x-major row order: a big-endian uint16 span count, then count records of uint16 smin, uint16
// smax and one byte area.
type VoxelTile struct {
	TileX      int        `msgpack:"tileX"`
	TileZ      int        `msgpack:"tileZ"`
	Width      int        `msgpack:"width"`
	Depth      int        `msgpack:"depth"`
	BorderSize int        `msgpack:"borderSize"`
	BoundsMin  [3]float32 `msgpack:"boundsMin"`
	BoundsMax  [3]float32 `msgpack:"boundsMax"`
	CellSize   float32    `msgpack:"cellSize"`
	CellHeight float32    `msgpack:"cellHeight"`
	Compressed bool       `msgpack:"compressed"`
	SpanData   []byte     `msgpack:"spanData"`
}

// NewVoxelTile snapshots hf as the base of tile (tx, tz).
func NewVoxelTile(hf *recast.Heightfield, tx, tz int, compress bool) (*VoxelTile, error) {
	tile := &VoxelTile{
		TileX:      tx,
		TileZ:      tz,
		Width:      hf.GetWidth(),
		Depth:      hf.GetHeight(),
		BorderSize: hf.GetBorderSize(),
		CellSize:   hf.GetCs(),
		CellHeight: hf.GetCh(),
		Compressed: compress,
	}
	copy(tile.BoundsMin[:], hf.GetBmin())
	copy(tile.BoundsMax[:], hf.GetBmax())
	data := make([]byte, 0, tile.Width*tile.Depth*2+hf.SpanCount()*spanRecordSize)
	for z := 0; z < tile.Depth; z++ {
		for x := 0; x < tile.Width; x++ {
			count := 0
			for s := hf.GetSpan(x, z); s != nil; s = s.GetNext() {
				count++
			}
			data = binary.BigEndian.AppendUint16(data, uint16(count))
			for s := hf.GetSpan(x, z); s != nil; s = s.GetNext() {
				data = binary.BigEndian.AppendUint16(data, uint16(s.GetSmin()))
				data = binary.BigEndian.AppendUint16(data, uint16(s.GetSmax()))
				data = append(data, byte(s.GetArea()))
			}
		}
	}
	if !compress {
		tile.SpanData = data
		return tile, nil
	}
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestSpeed)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("compress tile (%d, %d): %w", tx, tz, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress tile (%d, %d): %w", tx, tz, err)
	}
	tile.SpanData = buf.Bytes()
	return tile, nil
}

// Heightfield decodes the span data into a fresh heightfield.
func (this *VoxelTile) Heightfield() (*recast.Heightfield, error) {
	if this.Width <= 0 || this.Depth <= 0 || this.CellSize <= 0 || this.CellHeight <= 0 {
		return nil, fmt.Errorf("%w: tile (%d, %d) has size %d x %d cell %v x %v", ErrMalformedSpanData,
			this.TileX, this.TileZ, this.Width, this.Depth, this.CellSize, this.CellHeight)
	}
	data := this.SpanData
	if this.Compressed {
		r := flate.NewReader(bytes.NewReader(this.SpanData))
		defer r.Close()
		var err error
		if data, err = io.ReadAll(r); err != nil {
			return nil, fmt.Errorf("decompress tile (%d, %d): %w", this.TileX, this.TileZ, err)
		}
	}
	hf := recast.NewHeightfield(this.Width, this.Depth, this.BoundsMin[:], this.BoundsMax[:], this.CellSize, this.CellHeight, this.BorderSize)
	pos := 0
	for z := 0; z < this.Depth; z++ {
		for x := 0; x < this.Width; x++ {
			if pos+2 > len(data) {
				return nil, fmt.Errorf("%w: tile (%d, %d) truncated at column (%d, %d)", ErrMalformedSpanData, this.TileX, this.TileZ, x, z)
			}
			count := int(binary.BigEndian.Uint16(data[pos:]))
			pos += 2
			if pos+count*spanRecordSize > len(data) {
				return nil, fmt.Errorf("%w: tile (%d, %d) truncated at column (%d, %d)", ErrMalformedSpanData, this.TileX, this.TileZ, x, z)
			}
			for i := 0; i < count; i++ {
				smin := int(binary.BigEndian.Uint16(data[pos:]))
				smax := int(binary.BigEndian.Uint16(data[pos+2:]))
				area := int(data[pos+4])
				pos += spanRecordSize
				if !hf.PushSpan(x, z, smin, smax, area) {
					return nil, fmt.Errorf("%w: tile (%d, %d) column (%d, %d) span [%d, %d) out of order", ErrMalformedSpanData,
						this.TileX, this.TileZ, x, z, smin, smax)
				}
			}
		}
	}
	if pos != len(data) {
		return nil, fmt.Errorf("%w: tile (%d, %d) has %d trailing bytes", ErrMalformedSpanData, this.TileX, this.TileZ, len(data)-pos)
	}
	return hf, nil
}

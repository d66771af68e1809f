// Package pl4 decodes the fixed-layout binary waveform files produced by the
// ATP/EMTP transient simulator into typed datasets, and provides optional
// sample-window cropping on the result.
package pl4

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// ErrCorruptHeader is returned when the header fields do not describe a
// consistent payload (negative, zero or fractional record count, or a file
// shorter than the layout implies).
var ErrCorruptHeader = errors.New("pl4: corrupt header")

// Fixed byte layout of a PL4 file. All fields are little-endian; all sample
// values are single-precision floats. Kept together so the layout is
// auditable in one place.
const (
	offDeltaT       = 40 // float32: sampling interval in seconds
	offRawChannels  = 48 // uint32: twice the channel count
	offDeclaredSize = 56 // uint32: payload size + 1

	headerBlocks = 5  // 16-byte blocks before the channel descriptors
	blockSize    = 16 // descriptor block size
	sampleSize   = 4  // float32

	descPadBytes  = 3
	descNameBytes = 6
)

// ChannelDescriptor describes one channel of the waveform: its numeric type
// code and the two endpoint names, fixed by position in the file.
type ChannelDescriptor struct {
	Type int    `json:"type"`
	From string `json:"from"`
	To   string `json:"to"`
}

var typeNames = map[int]string{
	4: "node voltage",
	7: "branch energy",
	8: "branch voltage",
	9: "branch current",
}

// TypeName maps the numeric type code to a semantic name. Unknown codes map
// to a generic "type-<code>" label; this never fails.
func (c ChannelDescriptor) TypeName() string {
	if name, ok := typeNames[c.Type]; ok {
		return name
	}
	return fmt.Sprintf("type-%d", c.Type)
}

// Label is the human-readable display name for the channel.
func (c ChannelDescriptor) Label() string {
	return fmt.Sprintf("%s-%s (%s)", c.From, c.To, c.TypeName())
}

// Dataset is one decoded waveform file: a time vector of length Records and
// a channel×Records matrix in descriptor order. The derived scalars stay
// consistent with the vector length after any windowing. A Dataset is never
// mutated after decoding; Crop returns a new one.
type Dataset struct {
	Time     []float32           `json:"time"`
	Data     [][]float32         `json:"data"` // Data[i] is channel i, len == len(Time)
	Channels []ChannelDescriptor `json:"channels"`

	Records int     `json:"records"`
	DeltaT  float32 `json:"delta_t"`
	TMax    float32 `json:"tmax"`
}

// Labels returns the display labels of all channels in file order.
func (ds *Dataset) Labels() []string {
	labels := make([]string, len(ds.Channels))
	for i, c := range ds.Channels {
		labels[i] = c.Label()
	}
	return labels
}

// Decode parses one PL4 result file into a Dataset. It fails with
// ErrCorruptHeader when the derived record count is not a positive integer or
// the file is shorter than the header implies, and with the underlying IO
// error on read failure.
func Decode(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pl4: open %s: %w", path, err)
	}
	defer f.Close()

	header := make([]byte, offDeclaredSize+4)
	if _, err := io.ReadFull(f, header); err != nil {
		return nil, fmt.Errorf("%w: %s: file shorter than fixed header", ErrCorruptHeader, path)
	}

	deltaT := math.Float32frombits(binary.LittleEndian.Uint32(header[offDeltaT:]))
	nvar := int(binary.LittleEndian.Uint32(header[offRawChannels:])) / 2
	declared := int(binary.LittleEndian.Uint32(header[offDeclaredSize:])) - 1

	if nvar <= 0 {
		return nil, fmt.Errorf("%w: %s: channel count %d", ErrCorruptHeader, path, nvar)
	}

	numerator := declared - headerBlocks*blockSize - nvar*blockSize
	rowBytes := (nvar + 1) * sampleSize
	if numerator < 0 || numerator%rowBytes != 0 {
		return nil, fmt.Errorf("%w: %s: declared size %d yields no whole record count", ErrCorruptHeader, path, declared)
	}
	records := numerator / rowBytes
	if records <= 0 {
		return nil, fmt.Errorf("%w: %s: record count %d", ErrCorruptHeader, path, records)
	}
	tmax := float32(records-1) * deltaT

	channels, err := readDescriptors(f, nvar, path)
	if err != nil {
		return nil, err
	}

	// Some writer versions pad between the descriptors and the data region;
	// tolerated, not treated as corruption.
	expected := (headerBlocks+nvar)*blockSize + records*rowBytes
	padding := 0
	if declared > expected {
		padding = declared - expected
	}
	dataOffset := (headerBlocks+nvar)*blockSize + padding

	raw := make([]byte, records*rowBytes)
	if _, err := f.ReadAt(raw, int64(dataOffset)); err != nil {
		return nil, fmt.Errorf("%w: %s: data region truncated", ErrCorruptHeader, path)
	}

	// Column 0 of each row is the time sample; columns 1..nvar are channel
	// samples in descriptor order. Transpose into channel-major storage.
	time := make([]float32, records)
	data := make([][]float32, nvar)
	for i := range data {
		data[i] = make([]float32, records)
	}
	for r := 0; r < records; r++ {
		row := raw[r*rowBytes:]
		time[r] = math.Float32frombits(binary.LittleEndian.Uint32(row))
		for c := 0; c < nvar; c++ {
			data[c][r] = math.Float32frombits(binary.LittleEndian.Uint32(row[(c+1)*sampleSize:]))
		}
	}

	return &Dataset{
		Time:     time,
		Data:     data,
		Channels: channels,
		Records:  records,
		DeltaT:   deltaT,
		TMax:     tmax,
	}, nil
}

// readDescriptors reads one 16-byte channel descriptor per channel starting
// at the end of the fixed header: 3 padding bytes, a 1-byte type code, then
// two 6-byte space/NUL padded endpoint names.
func readDescriptors(f *os.File, nvar int, path string) ([]ChannelDescriptor, error) {
	buf := make([]byte, nvar*blockSize)
	if _, err := f.ReadAt(buf, int64(headerBlocks*blockSize)); err != nil {
		return nil, fmt.Errorf("%w: %s: descriptor region truncated", ErrCorruptHeader, path)
	}

	channels := make([]ChannelDescriptor, nvar)
	for i := 0; i < nvar; i++ {
		d := buf[i*blockSize:]
		channels[i] = ChannelDescriptor{
			Type: int(d[descPadBytes]),
			From: trimName(d[descPadBytes+1 : descPadBytes+1+descNameBytes]),
			To:   trimName(d[descPadBytes+1+descNameBytes : descPadBytes+1+2*descNameBytes]),
		}
	}
	return channels, nil
}

func trimName(b []byte) string {
	return strings.TrimFunc(string(b), func(r rune) bool {
		return r == ' ' || r == 0
	})
}

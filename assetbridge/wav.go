// Package assetbridge adapts external asset formats into the core's
// native types: WAV PCM decoding for the audio collaborator (spec
// section 6 "Files consumed") and glTF mesh/material import (spec
// section 6 resource hooks, the "mesh import is an out-of-scope
// collaborator" seam). The WAV chunk walk is grounded on the
// RIFF/GLB chunk-walking style of gviegas-neo3/gltf/glb.go
// (header + (id,length) chunk pairs read via encoding/binary);
// the glTF half is grounded on the teacher's scene/gltf_loader.go.
package assetbridge

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Sentinel errors for the WAV decode taxonomy (spec section 7
// "Configuration: invalid argument (unsupported WAV variant ...)").
var (
	ErrNotRIFF             = errors.New("assetbridge: not a RIFF container")
	ErrNotWAVE             = errors.New("assetbridge: RIFF container is not WAVE")
	ErrMissingFmtChunk     = errors.New("assetbridge: missing \"fmt \" chunk")
	ErrMissingDataChunk    = errors.New("assetbridge: missing \"data\" chunk")
	ErrUnsupportedWAVFormat = errors.New("assetbridge: unsupported WAV format (PCM 8/16-bit mono/stereo only)")
)

const (
	riffTag = "RIFF"
	waveTag = "WAVE"
	fmtTag  = "fmt "
	dataTag = "data"

	pcmFormatTag = 1
)

// WAVData is a decoded canonical-form PCM WAV stream: interleaved
// samples at BitsPerSample, ready for upload to an audio backend.
type WAVData struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
	Data          []byte
}

type chunkHeader struct {
	ID     [4]byte
	Length uint32
}

// DecodeWAV walks a canonical RIFF/WAVE stream, locating the "fmt "
// and "data" sub-chunks in whatever order they appear and honoring
// RIFF's rule that every chunk is padded to an even byte count (spec
// 6: "parser must locate 'fmt ' and 'data' chunks by walking the
// header and honoring even-byte chunk alignment").
func DecodeWAV(r io.Reader) (*WAVData, error) {
	var riffHeader struct {
		RIFF [4]byte
		Size uint32
		WAVE [4]byte
	}
	if err := binary.Read(r, binary.LittleEndian, &riffHeader); err != nil {
		return nil, fmt.Errorf("assetbridge: read RIFF header: %w", err)
	}
	if string(riffHeader.RIFF[:]) != riffTag {
		return nil, ErrNotRIFF
	}
	if string(riffHeader.WAVE[:]) != waveTag {
		return nil, ErrNotWAVE
	}

	var (
		channels, bitsPerSample int
		sampleRate              int
		haveFmt                 bool
		data                    []byte
		haveData                bool
	)

	for {
		var ch chunkHeader
		if err := binary.Read(r, binary.LittleEndian, &ch); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, fmt.Errorf("assetbridge: read chunk header: %w", err)
		}

		payload := make([]byte, ch.Length)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, fmt.Errorf("assetbridge: read chunk %q payload: %w", ch.ID, err)
		}
		// RIFF pads odd-length chunks with one byte so the next chunk
		// header starts on an even offset.
		if ch.Length%2 == 1 {
			var pad [1]byte
			if _, err := io.ReadFull(r, pad[:]); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("assetbridge: read chunk padding: %w", err)
			}
		}

		switch string(ch.ID[:]) {
		case fmtTag:
			if len(payload) < 16 {
				return nil, ErrUnsupportedWAVFormat
			}
			format := binary.LittleEndian.Uint16(payload[0:2])
			numChannels := binary.LittleEndian.Uint16(payload[2:4])
			rate := binary.LittleEndian.Uint32(payload[4:8])
			bits := binary.LittleEndian.Uint16(payload[14:16])
			if format != pcmFormatTag || (bits != 8 && bits != 16) || (numChannels != 1 && numChannels != 2) {
				return nil, ErrUnsupportedWAVFormat
			}
			channels = int(numChannels)
			sampleRate = int(rate)
			bitsPerSample = int(bits)
			haveFmt = true
		case dataTag:
			data = payload
			haveData = true
		}
	}

	if !haveFmt {
		return nil, ErrMissingFmtChunk
	}
	if !haveData {
		return nil, ErrMissingDataChunk
	}

	return &WAVData{
		Channels:      channels,
		SampleRate:    sampleRate,
		BitsPerSample: bitsPerSample,
		Data:          data,
	}, nil
}

package assetbridge

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildWAV assembles a minimal canonical RIFF/WAVE buffer with a "fmt "
// chunk followed by an odd-length "data" chunk, to exercise the
// even-byte alignment padding rule.
func buildWAV(t *testing.T, channels, bitsPerSample uint16, sampleRate uint32, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString(riffTag)
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // size placeholder, unchecked by DecodeWAV
	buf.WriteString(waveTag)

	buf.WriteString(fmtTag)
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(pcmFormatTag))
	binary.Write(&buf, binary.LittleEndian, channels)
	binary.Write(&buf, binary.LittleEndian, sampleRate)
	byteRate := sampleRate * uint32(channels) * uint32(bitsPerSample) / 8
	binary.Write(&buf, binary.LittleEndian, byteRate)
	blockAlign := channels * bitsPerSample / 8
	binary.Write(&buf, binary.LittleEndian, blockAlign)
	binary.Write(&buf, binary.LittleEndian, bitsPerSample)

	buf.WriteString(dataTag)
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)
	if len(data)%2 == 1 {
		buf.WriteByte(0)
	}

	return buf.Bytes()
}

func TestDecodeWAVParsesFmtAndData(t *testing.T) {
	raw := buildWAV(t, 2, 16, 44100, []byte{1, 2, 3, 4, 5})

	w, err := DecodeWAV(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if w.Channels != 2 || w.BitsPerSample != 16 || w.SampleRate != 44100 {
		t.Fatalf("unexpected format: %+v", w)
	}
	if !bytes.Equal(w.Data, []byte{1, 2, 3, 4, 5}) {
		t.Fatalf("unexpected data: %v", w.Data)
	}
}

func TestDecodeWAVRejectsNonRIFF(t *testing.T) {
	_, err := DecodeWAV(bytes.NewReader([]byte("not a riff file at all.......")))
	if err == nil {
		t.Fatal("expected an error for a non-RIFF stream")
	}
}

func TestDecodeWAVRejectsUnsupportedFormat(t *testing.T) {
	raw := buildWAV(t, 2, 24, 48000, []byte{1, 2, 3, 4})
	_, err := DecodeWAV(bytes.NewReader(raw))
	if err != ErrUnsupportedWAVFormat {
		t.Fatalf("expected ErrUnsupportedWAVFormat, got %v", err)
	}
}

func TestDecodeWAVMissingDataChunk(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(riffTag)
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	buf.WriteString(waveTag)
	buf.WriteString(fmtTag)
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(pcmFormatTag))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(44100))
	binary.Write(&buf, binary.LittleEndian, uint32(88200))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))

	_, err := DecodeWAV(bytes.NewReader(buf.Bytes()))
	if err != ErrMissingDataChunk {
		t.Fatalf("expected ErrMissingDataChunk, got %v", err)
	}
}

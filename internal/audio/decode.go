package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Sentinel decode errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrInvalidWAV        = errors.New("invalid wav data")
	ErrNoAudio           = errors.New("no audio data decoded")
)

// ffmpegSampleRate is the rate compressed formats are decoded to.
const ffmpegSampleRate = 22050

const (
	wavFormatPCM        = 1
	wavFormatFloat      = 3
	wavFormatExtensible = 0xFFFE
)

// Decoder turns uploaded audio bytes into mono float32 samples.
type Decoder struct {
	ffmpegPath string
}

// NewDecoder creates a Decoder. ffmpegPath is used for anything that is not WAV.
func NewDecoder(ffmpegPath string) *Decoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Decoder{ffmpegPath: ffmpegPath}
}

// Decode returns mono samples and their sample rate. WAV is parsed in-process;
// mp3 goes through ffmpeg.
func (d *Decoder) Decode(ctx context.Context, filename string, data []byte) ([]float32, int, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case ext == ".wav" || isRIFFWave(data):
		return DecodeWAV(data)
	case ext == ".mp3":
		return d.decodeFFmpeg(ctx, data)
	default:
		return nil, 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func isRIFFWave(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

type wavFormat struct {
	audioFormat   uint16
	channels      uint16
	sampleRate    uint32
	blockAlign    uint16
	bitsPerSample uint16
}

// DecodeWAV parses a RIFF/WAVE file, mixing all channels down to mono.
func DecodeWAV(data []byte) ([]float32, int, error) {
	if !isRIFFWave(data) {
		return nil, 0, fmt.Errorf("%w: missing RIFF/WAVE header", ErrInvalidWAV)
	}

	var (
		format  *wavFormat
		payload []byte
	)
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		end := body + size
		if end > len(data) || end < body {
			// Streaming writers leave the data size unset; take what is there.
			end = len(data)
		}

		switch id {
		case "fmt ":
			if end-body < 16 {
				return nil, 0, fmt.Errorf("%w: short fmt chunk", ErrInvalidWAV)
			}
			chunk := data[body:end]
			format = &wavFormat{
				audioFormat:   binary.LittleEndian.Uint16(chunk[0:2]),
				channels:      binary.LittleEndian.Uint16(chunk[2:4]),
				sampleRate:    binary.LittleEndian.Uint32(chunk[4:8]),
				blockAlign:    binary.LittleEndian.Uint16(chunk[12:14]),
				bitsPerSample: binary.LittleEndian.Uint16(chunk[14:16]),
			}
			if format.audioFormat == wavFormatExtensible && len(chunk) >= 26 {
				format.audioFormat = binary.LittleEndian.Uint16(chunk[24:26])
			}
		case "data":
			payload = data[body:end]
		}

		pos = end + size%2 // chunks are word aligned
	}

	if format == nil {
		return nil, 0, fmt.Errorf("%w: missing fmt chunk", ErrInvalidWAV)
	}
	if format.channels == 0 || format.sampleRate == 0 || format.blockAlign == 0 {
		return nil, 0, fmt.Errorf("%w: zero channels, rate or block size", ErrInvalidWAV)
	}
	if len(payload) == 0 {
		return nil, 0, ErrNoAudio
	}

	read, err := sampleReader(format)
	if err != nil {
		return nil, 0, err
	}

	channels := int(format.channels)
	width := int(format.bitsPerSample) / 8
	if int(format.blockAlign) < channels*width {
		return nil, 0, fmt.Errorf("%w: block align %d too small", ErrInvalidWAV, format.blockAlign)
	}
	frames := len(payload) / int(format.blockAlign)
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		frame := payload[i*int(format.blockAlign):]
		var sum float64
		for c := 0; c < channels; c++ {
			sum += read(frame[c*width : (c+1)*width])
		}
		out[i] = float32(sum / float64(channels))
	}
	return out, int(format.sampleRate), nil
}

func sampleReader(f *wavFormat) (func([]byte) float64, error) {
	switch {
	case f.audioFormat == wavFormatPCM && f.bitsPerSample == 8:
		return func(b []byte) float64 { return (float64(b[0]) - 128) / 128 }, nil
	case f.audioFormat == wavFormatPCM && f.bitsPerSample == 16:
		return func(b []byte) float64 {
			return float64(int16(binary.LittleEndian.Uint16(b))) / 32768
		}, nil
	case f.audioFormat == wavFormatPCM && f.bitsPerSample == 24:
		return func(b []byte) float64 {
			v := int32(uint32(b[0])<<8|uint32(b[1])<<16|uint32(b[2])<<24) >> 8
			return float64(v) / 8388608
		}, nil
	case f.audioFormat == wavFormatPCM && f.bitsPerSample == 32:
		return func(b []byte) float64 {
			return float64(int32(binary.LittleEndian.Uint32(b))) / 2147483648
		}, nil
	case f.audioFormat == wavFormatFloat && f.bitsPerSample == 32:
		return func(b []byte) float64 {
			return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		}, nil
	default:
		return nil, fmt.Errorf("%w: wav format %d with %d bits", ErrUnsupportedFormat, f.audioFormat, f.bitsPerSample)
	}
}

// decodeFFmpeg pipes data through ffmpeg to mono f32le.
func (d *Decoder) decodeFFmpeg(ctx context.Context, data []byte) ([]float32, int, error) {
	cmd := exec.CommandContext(ctx, d.ffmpegPath,
		"-v", "error",
		"-i", "pipe:0",
		"-f", "f32le",
		"-acodec", "pcm_f32le",
		"-ac", "1",
		"-ar", strconv.Itoa(ffmpegSampleRate),
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, 0, fmt.Errorf("ffmpeg: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}

	raw := stdout.Bytes()
	numSamples := len(raw) / 4
	if numSamples == 0 {
		return nil, 0, fmt.Errorf("%w (ffmpeg: %s)", ErrNoAudio, strings.TrimSpace(stderr.String()))
	}

	samples := make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4 : i*4+4]))
	}
	return samples, ffmpegSampleRate, nil
}

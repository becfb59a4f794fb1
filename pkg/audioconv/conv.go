// Package audioconv normalizes recorded or uploaded audio into the
// mono 16 kHz float32 PCM the transcribers expect, and encodes PCM back
// to WAV for the cloud transcription upload. Supported inputs: WAV,
// MP3, Ogg Vorbis and Ogg Opus.
package audioconv

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	popus "github.com/pekim/opus"
)

const TargetRate = 16000

// Limits bounds decoded audio length; zero values mean unlimited.
type Limits struct {
	MaxSamples int
}

// DecodeFile decodes path into mono 16 kHz PCM, picking the decoder
// from the extension and falling back to magic-byte sniffing.
func DecodeFile(path string, lim Limits) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return Decode(data, strings.ToLower(filepath.Ext(path)), lim)
}

// Decode decodes an in-memory recording. ext is the lowercase file
// extension including the dot; pass "" to rely on sniffing alone.
func Decode(data []byte, ext string, lim Limits) ([]float32, error) {
	switch ext {
	case ".wav":
		return decodeWAV(data, lim)
	case ".mp3":
		return decodeMP3(data, lim)
	case ".ogg", ".oga", ".opus":
		return decodeOgg(data, lim)
	}

	switch {
	case bytes.HasPrefix(data, []byte("RIFF")):
		return decodeWAV(data, lim)
	case bytes.HasPrefix(data, []byte("OggS")):
		return decodeOgg(data, lim)
	case bytes.HasPrefix(data, []byte("ID3")) || ext == "":
		return decodeMP3(data, lim)
	}
	return nil, fmt.Errorf("unsupported audio format %q", ext)
}

func decodeWAV(data []byte, lim Limits) ([]float32, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, errors.New("invalid wav")
	}
	pb, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if pb == nil || len(pb.Data) == 0 {
		return nil, errors.New("empty wav")
	}

	depth := int(dec.BitDepth)
	if depth == 0 {
		depth = 16
	}
	scale := 1.0 / float64(int64(1)<<(depth-1))
	pcm := make([]float32, len(pb.Data))
	for i, v := range pb.Data {
		pcm[i] = clampSample(float64(v) * scale)
	}

	channels, rate := 1, 44100
	if pb.Format != nil {
		if pb.Format.NumChannels > 0 {
			channels = pb.Format.NumChannels
		}
		if pb.Format.SampleRate > 0 {
			rate = pb.Format.SampleRate
		}
	}
	return finish(pcm, channels, rate, lim), nil
}

func decodeMP3(data []byte, lim Limits) ([]float32, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, err
	}

	pcm := make([]float32, len(raw)/2)
	for i := range pcm {
		s := int16(binary.LittleEndian.Uint16(raw[2*i:]))
		pcm[i] = float32(s) / 32768
	}

	rate := dec.SampleRate()
	if rate <= 0 {
		rate = 44100
	}
	// go-mp3 always emits interleaved stereo
	return finish(pcm, 2, rate, lim), nil
}

func decodeOgg(data []byte, lim Limits) ([]float32, error) {
	if pcm, err := decodeVorbis(data, lim); err == nil {
		return pcm, nil
	}
	pcm, err := decodeOpus(data, lim)
	if err != nil {
		return nil, fmt.Errorf("ogg container is neither vorbis nor opus: %w", err)
	}
	return pcm, nil
}

func decodeVorbis(data []byte, lim Limits) ([]float32, error) {
	pcm, format, err := oggvorbis.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if format == nil || format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, errors.New("invalid vorbis stream")
	}
	return finish(pcm, format.Channels, format.SampleRate, lim), nil
}

func decodeOpus(data []byte, lim Limits) ([]float32, error) {
	dec, err := popus.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer dec.Destroy()

	channels := dec.ChannelCount()
	if channels <= 0 {
		channels = 1
	}

	var pcm []float32
	buf := make([]int16, 48000*channels/2)
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			for _, s := range buf[:n*channels] {
				pcm = append(pcm, float32(s)/32768)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if len(pcm) == 0 {
		return nil, errors.New("empty opus stream")
	}
	// opus always decodes at 48 kHz
	return finish(pcm, channels, 48000, lim), nil
}

// finish downmixes, resamples to the target rate, and applies limits.
func finish(pcm []float32, channels, rate int, lim Limits) []float32 {
	if channels > 1 {
		pcm = Downmix(pcm, channels)
	}
	if rate != TargetRate {
		pcm = Resample(pcm, rate, TargetRate)
	}
	if lim.MaxSamples > 0 && len(pcm) > lim.MaxSamples {
		pcm = pcm[:lim.MaxSamples]
	}
	return pcm
}

// Downmix averages interleaved channels into mono.
func Downmix(in []float32, channels int) []float32 {
	if channels <= 1 {
		return in
	}
	frames := len(in) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(in[i*channels+c])
		}
		out[i] = float32(sum / float64(channels))
	}
	return out
}

// Resample converts between sample rates by linear interpolation.
// Speech headed for a recognizer does not need anything fancier.
func Resample(in []float32, from, to int) []float32 {
	if from == to || len(in) == 0 {
		return in
	}
	ratio := float64(to) / float64(from)
	n := int(math.Ceil(float64(len(in)) * ratio))
	out := make([]float32, n)
	for i := range out {
		src := float64(i) / ratio
		lo := int(src)
		if lo >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := float32(src - float64(lo))
		out[i] = in[lo]*(1-frac) + in[lo+1]*frac
	}
	return out
}

// EncodeWAV16k wraps mono 16 kHz float32 PCM in a 16-bit WAV container
// for upload to speech APIs. The go-audio encoder wants an
// io.WriteSeeker, so the 44-byte header is assembled directly.
func EncodeWAV16k(pcm []float32) []byte {
	dataLen := len(pcm) * 2
	buf := bytes.NewBuffer(make([]byte, 0, 44+dataLen))

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVEfmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))           // fmt chunk size
	binary.Write(buf, binary.LittleEndian, uint16(1))            // PCM
	binary.Write(buf, binary.LittleEndian, uint16(1))            // mono
	binary.Write(buf, binary.LittleEndian, uint32(TargetRate))   // sample rate
	binary.Write(buf, binary.LittleEndian, uint32(TargetRate*2)) // byte rate
	binary.Write(buf, binary.LittleEndian, uint16(2))            // block align
	binary.Write(buf, binary.LittleEndian, uint16(16))           // bits per sample
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataLen))

	for _, s := range pcm {
		v := int16(clampSample(float64(s)) * 32767)
		binary.Write(buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

func clampSample(x float64) float32 {
	if x < -1 {
		return -1
	}
	if x > 1 {
		return 1
	}
	return float32(x)
}

package audio

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	sampleRate = 16000
	frameSize  = 320 // 20ms at 16 kHz
)

// Recorder captures mono 16 kHz PCM from the default input device.
// Init must be called once before recording and Close once at exit.
type Recorder struct{}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// RecordUtterance records one answer: capture starts on the first frame
// above the RMS threshold and stops after silenceDur of quiet (or at
// maxDur). Returns nil samples when nothing was said at all.
func (r *Recorder) RecordUtterance(ctx context.Context, maxDur time.Duration) ([]float32, error) {
	const (
		silenceThreshRMS = 0.015
		silenceDur       = 600 * time.Millisecond
	)
	if maxDur <= 0 {
		maxDur = 10 * time.Second
	}

	buf := make([]float32, frameSize)
	out := make([]float32, 0, sampleRate*3)

	stream, err := portaudio.OpenDefaultStream(1, 0, sampleRate, len(buf), buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	var (
		speaking      bool
		silenceFrames int
	)
	frameDur := 20 * time.Millisecond
	maxFrames := int(maxDur / frameDur)

	for i := 0; i < maxFrames; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stream.Read(); err != nil {
			return nil, err
		}

		if frameRMS(buf) > silenceThreshRMS {
			speaking = true
			silenceFrames = 0
			out = append(out, buf...)
			continue
		}

		if speaking {
			silenceFrames++
			if time.Duration(silenceFrames)*frameDur >= silenceDur {
				break
			}
			out = append(out, buf...)
		}
	}

	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// RecordChunk captures a fixed-length chunk regardless of content, for
// the live transcription loop that endpoints on the text side instead.
func (r *Recorder) RecordChunk(ctx context.Context, dur time.Duration) ([]float32, error) {
	if dur <= 0 {
		dur = 3 * time.Second
	}

	buf := make([]float32, frameSize)

	stream, err := portaudio.OpenDefaultStream(1, 0, sampleRate, len(buf), buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	frames := int(dur / (20 * time.Millisecond))
	out := make([]float32, 0, frames*frameSize)

	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stream.Read(); err != nil {
			return nil, err
		}
		out = append(out, buf...)
	}

	if len(out) == 0 {
		return nil, errors.New("no audio recorded")
	}
	return out, nil
}

// Silent reports whether a chunk never rises above the speech
// threshold, so the live loop can skip transcribing dead air.
func Silent(pcm []float32) bool {
	const thresh = 0.015
	for off := 0; off+frameSize <= len(pcm); off += frameSize {
		if frameRMS(pcm[off:off+frameSize]) > thresh {
			return false
		}
	}
	return true
}

func frameRMS(f []float32) float64 {
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}

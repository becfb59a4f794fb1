// Package speech defines the narrow speech-to-text contract the
// conversation drivers consume, with a local whisper.cpp backend and a
// cloud backend. Both report the two recoverable miss conditions as
// sentinel errors so drivers can map them to the matching re-prompt.
package speech

import (
	"context"
	"errors"
)

// ErrNoSpeech means the capture window contained no speech at all.
var ErrNoSpeech = errors.New("speech: no speech detected")

// ErrUnclear means speech was present but could not be decoded.
var ErrUnclear = errors.New("speech: audio unclear")

// Transcriber converts mono 16 kHz float32 PCM into text.
type Transcriber interface {
	Transcribe(ctx context.Context, pcm []float32) (string, error)
	Close() error
}

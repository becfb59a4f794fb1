// Package voice narrates system turns. Two backends: the offline
// espeak-ng wrapper that plays directly through the sound card, and the
// OpenAI speech endpoint whose MP3 output goes through the beep player.
// A synthesis failure is logged by the driver and never blocks the
// conversation.
package voice

import "context"

// Speaker voices one utterance and returns when playback is done.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

package notify

import (
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/gen2brain/beeep"

	log "log/slog"
)

// Listening shows a desktop notification that the assistant is
// waiting for the user to speak.
func Listening() {
	if err := beeep.Notify("triptalk", "Listening...", ""); err != nil {
		log.Debug("desktop notification failed", "err", err)
	}
}

// Ended shows a desktop notification that the conversation finished.
func Ended() {
	if err := beeep.Notify("triptalk", "Conversation ended", ""); err != nil {
		log.Debug("desktop notification failed", "err", err)
	}
}

// Cue plays a short audible cue before the microphone opens. Missing
// or undecodable cue files are logged, never fatal.
func Cue(path string) {
	if path == "" {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		log.Debug("cue file unavailable", "path", path, "err", err)
		return
	}
	defer f.Close()

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		log.Debug("cue decode failed", "path", path, "err", err)
		return
	}
	defer streamer.Close()

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		log.Debug("speaker init failed", "err", err)
		return
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		close(done)
	})))
	<-done
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"triptalk/internal/audio"
	"triptalk/internal/dialogue"
	"triptalk/internal/ipc"
	"triptalk/internal/notify"
	"triptalk/internal/proxy"
	"triptalk/internal/session"
	"triptalk/internal/speech"
	"triptalk/internal/voice"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

type daemon struct {
	rec     *audio.Recorder
	stt     speech.Transcriber
	speaker voice.Speaker
	ducker  *audio.Ducker
	cue     string
	live    bool
	chunk   time.Duration

	mu     sync.Mutex
	sess   *session.Session
	cancel context.CancelFunc
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	model := cli.StringP("model", "m", "third_party/whisper.cpp/models/ggml-medium.bin", "Whisper model path")
	cloud := cli.Bool("cloud", false, "Use OpenAI for transcription and speech instead of whisper/espeak")
	proxyAddr := cli.StringP("proxy", "p", "", "Socks proxy address for cloud APIs")
	live := cli.Bool("live", false, "Capture fixed-length chunks instead of endpointed utterances")
	chunkSec := cli.Float64("chunk", 3, "Chunk length in seconds for --live")
	cuePath := cli.String("cue", "", "Mp3 played before the microphone opens")
	duck := cli.Bool("duck", false, "Lower other audio streams while in a conversation")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	godotenv.Load(*envFile)

	rec := audio.NewRecorder()
	if err := rec.Init(); err != nil {
		log.Error("Failed to init audio", "err", err)
		os.Exit(1)
	}
	defer rec.Close()

	log.Debug("Loaded recorder")

	d := &daemon{
		rec:   rec,
		cue:   *cuePath,
		live:  *live,
		chunk: time.Duration(*chunkSec * float64(time.Second)),
	}

	if *duck {
		d.ducker = audio.NewDucker([]string{"triptalk"}, 20)
	}

	if *cloud {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			log.Error("OPENAI_API_KEY not set")
			os.Exit(1)
		}

		opts := []option.RequestOption{option.WithAPIKey(apiKey)}
		if *proxyAddr != "" {
			httpClient, err := proxy.NewSocksClient(*proxyAddr, 0)
			if err != nil {
				log.Error("Failed to dial socks proxy", "proxy", *proxyAddr, "err", err)
				os.Exit(1)
			}
			opts = append(opts, option.WithHTTPClient(httpClient))
			log.Debug("Loaded proxy")
		}

		client := openai.NewClient(opts...)
		d.stt = speech.NewCloud(client, "")
		d.speaker = voice.NewOpenAI(client)
		log.Debug("Loaded cloud speech")
	} else {
		whisper, err := speech.NewWhisper(*model, speech.WhisperOptions{Language: "en"})
		if err != nil {
			log.Error("Failed to init whisper", "err", err)
			os.Exit(1)
		}
		defer whisper.Close()
		d.stt = whisper
		d.speaker = voice.NewEspeak()
		log.Debug("Loaded whisper")
	}

	d.sess = session.New(dialogue.NewEngine(nil))

	if err := ipc.StartServer(d.handleControl); err != nil {
		log.Error("Failed ipc server", "err", err)
		os.Exit(1)
	}

	log.Info("Boot up - successful")

	select {}
}

func (d *daemon) handleControl(msg ipc.ControlMessage) ipc.Reply {
	switch msg.Cmd {
	case ipc.CmdStart:
		return d.start()
	case ipc.CmdStop:
		return d.stop()
	case ipc.CmdReset:
		return d.reset()
	case ipc.CmdStatus:
		return d.status()
	case ipc.CmdSay:
		if err := d.speaker.Speak(context.Background(), msg.Arg); err != nil {
			return ipc.Reply{Msg: err.Error()}
		}
		return ipc.Reply{Ok: true}
	default:
		log.Warn("Unknown command", "cmd", msg.Cmd)
		return ipc.Reply{Msg: "unknown command: " + msg.Cmd}
	}
}

func (d *daemon) start() ipc.Reply {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		return ipc.Reply{Msg: "conversation already running"}
	}
	if d.sess.Ended() {
		return ipc.Reply{Msg: "conversation over; reset first"}
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	go d.converse(ctx)
	return ipc.Reply{Ok: true, Msg: "started"}
}

func (d *daemon) stop() ipc.Reply {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.sess.Stop()
	return ipc.Reply{Ok: true, Msg: "stopped"}
}

func (d *daemon) reset() ipc.Reply {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.sess.Reset()
	return ipc.Reply{Ok: true, Msg: "reset"}
}

func (d *daemon) status() ipc.Reply {
	d.mu.Lock()
	defer d.mu.Unlock()

	st := d.sess.State()
	return ipc.Reply{Ok: true, Msg: fmt.Sprintf(
		"active=%v ended=%v trip=[%s] confirmed=%s",
		st.Active, st.Ended, st.Trip.Summary(), st.Trip.Confirmed,
	)}
}

// converse runs one full conversation on the microphone.
func (d *daemon) converse(ctx context.Context) {
	defer func() {
		d.mu.Lock()
		d.cancel = nil
		d.mu.Unlock()
	}()

	if d.ducker != nil {
		if err := d.ducker.Duck(ctx, 0.3, 300*time.Millisecond); err != nil {
			log.Warn("Failed to duck audio", "err", err)
		}
		defer func() {
			if err := d.ducker.Restore(context.Background(), 300*time.Millisecond); err != nil {
				log.Warn("Failed to restore audio", "err", err)
			}
		}()
	}

	d.mu.Lock()
	turn, ok := d.sess.Start()
	d.mu.Unlock()
	if !ok {
		return
	}
	d.speak(ctx, turn.Text)

	for !d.ended() && ctx.Err() == nil {
		notify.Listening()
		notify.Cue(d.cue)

		log.Info("Starting listening")

		pcm, err := d.capture(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("Failed to record", "err", err)
			continue
		}

		log.Info("Recorded", "samples", len(pcm))

		tctx, cancel := context.WithTimeout(ctx, 60*time.Second)
		text, err := d.stt.Transcribe(tctx, pcm)
		cancel()

		if err != nil && !errors.Is(err, speech.ErrNoSpeech) && !errors.Is(err, speech.ErrUnclear) {
			if ctx.Err() != nil {
				return
			}
			log.Error("Failed to transcribe", "err", err)
			continue
		}

		d.mu.Lock()
		var reply session.Turn
		switch {
		case errors.Is(err, speech.ErrNoSpeech):
			log.Warn("No speech detected")
			reply = d.sess.Silence()
		case errors.Is(err, speech.ErrUnclear):
			log.Warn("Could not understand audio")
			reply = d.sess.MissHeard()
		default:
			log.Info("Transcribed", "text", text)
			reply = d.sess.Submit(text)
		}
		d.mu.Unlock()

		d.speak(ctx, reply.Text)
	}

	if d.ended() {
		d.mu.Lock()
		trip := d.sess.Trip()
		d.mu.Unlock()
		notify.Ended()
		log.Info("Conversation finished", "trip", trip.Summary(), "confirmed", trip.Confirmed)
	}
}

func (d *daemon) ended() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sess.Ended()
}

// capture grabs the next user answer: one endpointed utterance, or in
// live mode a run of chunks up to the first silent one.
func (d *daemon) capture(ctx context.Context) ([]float32, error) {
	if !d.live {
		return d.rec.RecordUtterance(ctx, 10*time.Second)
	}

	var out []float32
	for len(out) < maxCaptureSamples {
		chunk, err := d.rec.RecordChunk(ctx, d.chunk)
		if err != nil {
			return nil, err
		}
		if audio.Silent(chunk) {
			break
		}
		out = append(out, chunk...)
	}
	return out, nil
}

// one minute of 16 kHz samples
const maxCaptureSamples = 16000 * 60

func (d *daemon) speak(ctx context.Context, text string) {
	if text == "" {
		return
	}
	log.Info("Speaking", "text", text)
	if err := d.speaker.Speak(ctx, text); err != nil {
		log.Error("Failed to voice out", "err", err)
	}
}

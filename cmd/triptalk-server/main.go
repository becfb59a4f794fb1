package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"triptalk/internal/proxy"
	"triptalk/internal/server"
	"triptalk/internal/speech"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	addr := cli.StringP("addr", "a", ":8092", "Listen address")
	model := cli.StringP("model", "m", "", "Whisper model path (enables local transcription of audio turns)")
	cloud := cli.Bool("cloud", false, "Transcribe audio turns through OpenAI")
	proxyAddr := cli.StringP("proxy", "p", "", "Socks proxy address for cloud APIs")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	godotenv.Load(*envFile)

	var stt speech.Transcriber
	switch {
	case *cloud:
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
		}

		stt = speech.NewCloud(openai.NewClient(opts...), "")
		log.Debug("Loaded cloud transcription")
	case *model != "":
		whisper, err := speech.NewWhisper(*model, speech.WhisperOptions{Language: "en"})
		if err != nil {
			log.Error("Failed to init whisper", "err", err)
			os.Exit(1)
		}
		defer whisper.Close()
		stt = whisper
		log.Debug("Loaded whisper")
	default:
		log.Warn("No transcriber configured; audio turns disabled, text turns only")
	}

	if logLevelMap[*logLevel] > log.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(server.Options{Transcriber: stt})

	log.Info("Boot up - successful", "addr", *addr)

	if err := srv.Router().Run(*addr); err != nil {
		log.Error("Server stopped", "err", err)
		os.Exit(1)
	}
}

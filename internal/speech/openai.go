package speech

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v3"

	"triptalk/pkg/audioconv"
)

// Cloud transcribes through the OpenAI transcription endpoint. Used by
// deployments without a local whisper model.
type Cloud struct {
	client openai.Client
	model  openai.AudioModel
}

func NewCloud(client openai.Client, model openai.AudioModel) *Cloud {
	if model == "" {
		model = openai.AudioModelWhisper1
	}
	return &Cloud{client: client, model: model}
}

func (c *Cloud) Close() error { return nil }

func (c *Cloud) Transcribe(ctx context.Context, pcm []float32) (string, error) {
	if len(pcm) == 0 {
		return "", ErrNoSpeech
	}

	wav := audioconv.EncodeWAV16k(pcm)
	resp, err := c.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: c.model,
		File:  openai.File(bytes.NewReader(wav), "capture.wav", "audio/wav"),
	})
	if err != nil {
		return "", fmt.Errorf("cloud transcription: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrUnclear
	}
	return text, nil
}

package voice

import (
	"context"
	"fmt"
	"io"

	openai "github.com/openai/openai-go/v3"
)

// OpenAI synthesizes speech through the OpenAI audio endpoint and plays
// the returned MP3 locally.
type OpenAI struct {
	client openai.Client
	model  openai.SpeechModel
	voice  openai.AudioSpeechNewParamsVoice
}

func NewOpenAI(client openai.Client) *OpenAI {
	return &OpenAI{
		client: client,
		model:  openai.SpeechModelTTS1,
		voice:  openai.AudioSpeechNewParamsVoiceNova,
	}
}

// Synthesize returns the MP3 bytes for text without playing them.
func (o *OpenAI) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := o.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          o.model,
		Voice:          o.voice,
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read synthesis response: %w", err)
	}
	return data, nil
}

func (o *OpenAI) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	data, err := o.Synthesize(ctx, text)
	if err != nil {
		return err
	}
	return PlayMP3(data)
}

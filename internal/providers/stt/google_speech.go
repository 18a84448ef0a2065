package stt

import (
	"context"
	"mime"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
)

const DefaultLanguage = "en-US"

type GoogleSpeech struct {
	c *speech.Client

	// used for raw PCM uploads without a header
	SampleRateHz int32
}

func NewGoogleSpeech(ctx context.Context) (*GoogleSpeech, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GoogleSpeech{c: c, SampleRateHz: 16000}, nil
}

func (g *GoogleSpeech) Close() error { return g.c.Close() }

// Transcribe joins the best alternative of every result segment.
func (g *GoogleSpeech) Transcribe(ctx context.Context, a Audio) (string, float64, error) {
	lang := a.Language
	if lang == "" {
		lang = DefaultLanguage
	}

	enc := EncodingFor(a.ContentType)
	cfg := &speechpb.RecognitionConfig{
		Encoding:                   enc,
		LanguageCode:               lang,
		EnableAutomaticPunctuation: true,
	}
	if enc == speechpb.RecognitionConfig_LINEAR16 {
		cfg.SampleRateHertz = g.SampleRateHz
	}

	resp, err := g.c.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: cfg,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: a.Data},
		},
	})
	if err != nil {
		return "", 0, err
	}

	var parts []string
	var confSum float64
	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 || r.Alternatives[0].Transcript == "" {
			continue
		}
		best := r.Alternatives[0]
		parts = append(parts, strings.TrimSpace(best.Transcript))
		confSum += float64(best.Confidence)
	}
	if len(parts) == 0 {
		return "", 0, ErrNoSpeech
	}
	return strings.Join(parts, " "), confSum / float64(len(parts)), nil
}

// EncodingFor maps an upload content type onto the recognizer's encoding.
func EncodingFor(contentType string) speechpb.RecognitionConfig_AudioEncoding {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(contentType))
	}
	switch mt {
	case "audio/webm":
		return speechpb.RecognitionConfig_WEBM_OPUS
	case "audio/ogg":
		return speechpb.RecognitionConfig_OGG_OPUS
	case "audio/flac", "audio/x-flac":
		return speechpb.RecognitionConfig_FLAC
	case "audio/mpeg", "audio/mp3":
		return speechpb.RecognitionConfig_MP3
	case "audio/l16", "audio/pcm":
		return speechpb.RecognitionConfig_LINEAR16
	default:
		// wav and friends carry their own header
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

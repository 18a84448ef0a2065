package stt

import (
	"context"
	"errors"
)

var ErrNoSpeech = errors.New("stt: no speech recognised")

// Audio is one recorded voice message.
type Audio struct {
	Data        []byte
	ContentType string
	Language    string // ex: "en-US", "ur-PK"
}

type Provider interface {
	Transcribe(ctx context.Context, audio Audio) (text string, confidence float64, err error)
	Close() error
}

package llm

import (
	"context"
	"errors"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"
)

// VertexGemini generates through Vertex AI with application default credentials.
type VertexGemini struct {
	client *vertexgenai.Client
	model  *vertexgenai.GenerativeModel
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	m := c.GenerativeModel(modelName)
	m.SetCandidateCount(1)
	return &VertexGemini{client: c, model: m}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

// Generate streams the reply and joins the chunks. An empty reply is a shape error.
func (v *VertexGemini) Generate(ctx context.Context, prompt string) (string, error) {
	var b strings.Builder
	it := v.model.GenerateContentStream(ctx, vertexgenai.Text(prompt))
	for {
		resp, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return "", &Error{Kind: KindTimeout, Err: err}
			}
			return "", &Error{Kind: KindTransport, Err: err}
		}
		b.WriteString(vertexText(resp))
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", &Error{Kind: KindShape}
	}
	return b.String(), nil
}

// vertexText returns the text parts of the first candidate.
func vertexText(resp *vertexgenai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(vertexgenai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

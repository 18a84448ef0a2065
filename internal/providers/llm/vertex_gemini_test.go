package llm

import (
	"testing"

	vertexgenai "cloud.google.com/go/vertexai/genai"
)

func TestVertexText(t *testing.T) {
	resp := &vertexgenai.GenerateContentResponse{
		Candidates: []*vertexgenai.Candidate{
			{Content: &vertexgenai.Content{Parts: []vertexgenai.Part{vertexgenai.Text("Program: "), vertexgenai.Text("Nursing")}}},
			{Content: &vertexgenai.Content{Parts: []vertexgenai.Part{vertexgenai.Text("ignored")}}},
		},
	}
	if got := vertexText(resp); got != "Program: Nursing" {
		t.Fatalf("vertexText = %q", got)
	}

	for _, r := range []*vertexgenai.GenerateContentResponse{nil, {}, {Candidates: []*vertexgenai.Candidate{{}}}} {
		if got := vertexText(r); got != "" {
			t.Fatalf("vertexText(%+v) = %q, want empty", r, got)
		}
	}
}

package seed

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yoockh/admission/internal/chatbot"
	"github.com/yoockh/admission/internal/models"
)

//go:embed default.yaml
var defaultYAML []byte

type Question struct {
	Field       string `yaml:"field"`
	Type        string `yaml:"type"`
	Question    string `yaml:"question"`
	Restriction string `yaml:"restriction"`
}

type Data struct {
	Questions []Question `yaml:"questions"`
	Material  string     `yaml:"material"`
}

// Load reads the seed file at path, or the embedded default when path is empty.
func Load(path string) (*Data, error) {
	raw := defaultYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed %s: %w", path, err)
		}
		raw = b
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := validate(&d); err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}
	return &d, nil
}

func validate(d *Data) error {
	seen := map[string]bool{}
	for i, q := range d.Questions {
		if strings.TrimSpace(q.Question) == "" || strings.TrimSpace(q.Field) == "" {
			return fmt.Errorf("question %d: question and field are required", i)
		}
		if !chatbot.ValidAnswerType(q.Type) {
			return fmt.Errorf("question %d (%s): unknown type %q", i, q.Field, q.Type)
		}
		if seen[q.Field] {
			return fmt.Errorf("question %d: duplicate field %q", i, q.Field)
		}
		seen[q.Field] = true
	}
	return nil
}

// InterviewQuestions converts the seed into ordered models.
func (d *Data) InterviewQuestions() []models.InterviewQuestion {
	out := make([]models.InterviewQuestion, len(d.Questions))
	for i, q := range d.Questions {
		out[i] = models.InterviewQuestion{
			Question:    q.Question,
			Field:       q.Field,
			Type:        strings.ToLower(q.Type),
			Restriction: q.Restriction,
			Order:       i,
		}
	}
	return out
}

package chatbot

import (
	"time"

	"github.com/yoockh/admission/internal/models"
)

type Mode string

const (
	ModeMenu       Mode = "menu"
	ModeInterview  Mode = "interview"
	ModeTransition Mode = "transition"
	// ModeRecommendation is only held while a recommendation is being produced.
	ModeRecommendation Mode = "recommendation"
	ModeGeneral        Mode = "general"
)

// Session is one conversation's interview state. It is owned by a single writer at a time.
type Session struct {
	ID            string                   `json:"id"`
	Mode          Mode                     `json:"mode"`
	QuestionIndex int                      `json:"question_index"`
	Fields        map[string]string        `json:"fields"`
	Transcript    []models.TranscriptEntry `json:"transcript"`
	History       string                   `json:"history"`
	StudentID     string                   `json:"student_id,omitempty"`
	// Questions is the list the current interview run started with; later
	// admin edits apply to the next run only.
	Questions []models.InterviewQuestion `json:"questions,omitempty"`
	StartedAt     time.Time                `json:"started_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Mode:      ModeMenu,
		Fields:    map[string]string{},
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so a turn can be applied without touching the original.
func (s *Session) Clone() *Session {
	c := *s
	c.Fields = make(map[string]string, len(s.Fields))
	for k, v := range s.Fields {
		c.Fields[k] = v
	}
	if s.Transcript != nil {
		c.Transcript = append([]models.TranscriptEntry(nil), s.Transcript...)
	}
	if s.Questions != nil {
		c.Questions = append([]models.InterviewQuestion(nil), s.Questions...)
	}
	return &c
}

// InterviewDone reports whether a completed interview has put a name on record.
func (s *Session) InterviewDone() bool {
	return s.Fields["full_name"] != ""
}

func (s *Session) reset(now time.Time, qs []models.InterviewQuestion) {
	s.Mode = ModeInterview
	s.QuestionIndex = 0
	s.Fields = map[string]string{}
	s.Transcript = nil
	s.History = ""
	s.StudentID = ""
	s.Questions = append([]models.InterviewQuestion(nil), qs...)
	s.StartedAt = now
}

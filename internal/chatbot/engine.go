package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yoockh/admission/internal/models"
	"github.com/yoockh/admission/internal/utils"
)

const (
	ExitSentinel = "exit"

	MsgMenu = "Main Menu:\n" +
		"1. Complete admission interview\n" +
		"2. Get program recommendations (requires completed interview)\n" +
		"3. Ask general questions\n" +
		"4. Exit"
	MsgGeneralIntro   = "You can now ask general questions. Type 'menu' to return to main menu."
	MsgNeedInterview  = "Please complete the admission interview first to get personalized recommendations."
	MsgInterviewSaved = "Interview completed and saved to database. Would you like program recommendations based on your interview? (yes/no)"
	MsgDeclined       = "You can now ask general questions or type 'menu' to return to main menu."
	MsgInvalidChoice  = "Invalid choice. Please enter 1, 2, 3, or 4."
	MsgNotConfigured  = "Interview questions not configured. Please contact administrator."
	MsgConcluded      = "Thank you for your time. This concludes your admission interview. We will contact you soon."

	RecommendationHeader = "Program Recommendations:\n"
)

// Oracle is the external text generator: one prompt in, one text out.
type Oracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type QuestionSource interface {
	Questions(ctx context.Context) ([]models.InterviewQuestion, error)
}

type Corpus interface {
	Material(ctx context.Context) (string, error)
}

// InterviewStore persists finished interviews. Records are insert-once; later changes are partial merges.
type InterviewStore interface {
	SaveInterview(ctx context.Context, fields map[string]string, transcript []models.TranscriptEntry) (string, error)
	AttachRecommendation(ctx context.Context, studentID, recommendation string) error
}

type Reply struct {
	Text string `json:"response"`
	Mode Mode   `json:"mode"`
	Exit bool   `json:"exit,omitempty"`
}

type Engine struct {
	oracle    Oracle
	questions QuestionSource
	corpus    Corpus
	store     InterviewStore
	now       func() time.Time
}

func NewEngine(oracle Oracle, questions QuestionSource, corpus Corpus, store InterviewStore) *Engine {
	return &Engine{
		oracle:    oracle,
		questions: questions,
		corpus:    corpus,
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Handle applies one user message to cur. The returned session is a new value;
// on error cur is returned untouched so the caller can retry the same message.
func (e *Engine) Handle(ctx context.Context, cur *Session, input string) (*Session, Reply, error) {
	msg := strings.TrimSpace(input)
	token := strings.ToLower(msg)

	if isExit(token) {
		return cur, Reply{Text: ExitSentinel, Mode: cur.Mode, Exit: true}, nil
	}

	s := cur.Clone()
	var (
		text string
		err  error
	)
	switch token {
	case "menu":
		s.Mode = ModeMenu
		text = MsgMenu
	case "3":
		s.Mode = ModeGeneral
		text = MsgGeneralIntro
	case "2":
		text, err = e.recommendOnDemand(ctx, s)
	case "1":
		text, err = e.startInterview(ctx, s)
	default:
		switch s.Mode {
		case ModeInterview:
			text, err = e.answer(ctx, s, msg)
		case ModeTransition:
			text, err = e.transition(ctx, s, token)
		case ModeGeneral, ModeRecommendation:
			text, err = e.general(ctx, s, msg)
		default:
			text = MsgInvalidChoice
		}
	}
	if err != nil {
		return cur, Reply{Mode: cur.Mode}, err
	}

	s.UpdatedAt = e.now()
	return s, Reply{Text: text, Mode: s.Mode}, nil
}

func isExit(token string) bool {
	switch token {
	case "4", "exit", "quit", "bye":
		return true
	}
	return false
}

func (e *Engine) loadQuestions(ctx context.Context) ([]models.InterviewQuestion, error) {
	const op = "Engine.loadQuestions"
	qs, err := e.questions.Questions(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load interview questions", err)
	}
	if len(qs) == 0 {
		return nil, utils.E(utils.CodeNotConfigured, op, MsgNotConfigured, nil)
	}
	return qs, nil
}

// runQuestions returns the list the session's interview started with. Sessions
// stored before the list was kept on the session adopt the current one.
func (e *Engine) runQuestions(ctx context.Context, s *Session) ([]models.InterviewQuestion, error) {
	if len(s.Questions) > 0 {
		return s.Questions, nil
	}
	qs, err := e.loadQuestions(ctx)
	if err != nil {
		return nil, err
	}
	s.Questions = qs
	return qs, nil
}

func (e *Engine) startInterview(ctx context.Context, s *Session) (string, error) {
	qs, err := e.loadQuestions(ctx)
	if err != nil {
		return "", err
	}
	s.reset(e.now(), qs)
	return e.ask(ctx, s, s.Questions)
}

func (e *Engine) ask(ctx context.Context, s *Session, qs []models.InterviewQuestion) (string, error) {
	prompt, ok := InterviewPrompt(qs, s.QuestionIndex, s.Fields["full_name"], s.History)
	if !ok {
		return MsgConcluded, nil
	}
	return e.generate(ctx, "Engine.ask", prompt)
}

func (e *Engine) answer(ctx context.Context, s *Session, msg string) (string, error) {
	const op = "Engine.answer"
	qs, err := e.runQuestions(ctx, s)
	if err != nil {
		return "", err
	}
	if s.QuestionIndex >= len(qs) {
		return MsgConcluded, nil
	}
	q := qs[s.QuestionIndex]

	if strings.TrimSpace(q.Restriction) != "" {
		verdict, err := e.generate(ctx, op, ValidationPrompt(q.Question, q.Restriction, msg))
		if err != nil {
			return "", err
		}
		if !IsValid(verdict) {
			again, err := e.ask(ctx, s, qs)
			if err != nil {
				return "", err
			}
			return strings.TrimSpace(verdict) + "\n\n" + again, nil
		}
	}

	now := e.now()
	s.Transcript = append(s.Transcript, models.TranscriptEntry{Question: q.Question, Answer: msg, Timestamp: now})
	s.Fields[q.Field] = Normalize(msg, AnswerType(q.Type))
	s.History += fmt.Sprintf("\nQ: %s\nA: %s", q.Question, msg)
	s.QuestionIndex++

	if s.QuestionIndex < len(qs) {
		return e.ask(ctx, s, qs)
	}

	record := make(map[string]string, len(s.Fields)+1)
	for k, v := range s.Fields {
		record[k] = v
	}
	record["interview_date"] = s.StartedAt.Format(time.RFC3339)
	id, err := e.store.SaveInterview(ctx, record, s.Transcript)
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to save interview", err)
	}
	s.StudentID = id
	s.Mode = ModeTransition
	return MsgInterviewSaved, nil
}

func (e *Engine) transition(ctx context.Context, s *Session, token string) (string, error) {
	const op = "Engine.transition"
	if token != "yes" && token != "y" {
		s.Mode = ModeGeneral
		return MsgDeclined, nil
	}

	s.Mode = ModeRecommendation
	rec, err := e.generate(ctx, op, RecommendationPrompt(s.Fields))
	if err != nil {
		return "", err
	}
	if s.StudentID != "" {
		if err := e.store.AttachRecommendation(ctx, s.StudentID, rec); err != nil {
			return "", utils.E(utils.CodeInternal, op, "failed to save recommendation", err)
		}
	}
	s.Mode = ModeGeneral
	return RecommendationHeader + rec, nil
}

func (e *Engine) recommendOnDemand(ctx context.Context, s *Session) (string, error) {
	if !s.InterviewDone() {
		return MsgNeedInterview, nil
	}
	rec, err := e.generate(ctx, "Engine.recommendOnDemand", RecommendationPrompt(s.Fields))
	if err != nil {
		return "", err
	}
	s.Mode = ModeGeneral
	return RecommendationHeader + rec, nil
}

func (e *Engine) general(ctx context.Context, s *Session, msg string) (string, error) {
	const op = "Engine.general"
	material, err := e.corpus.Material(ctx)
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to load admission material", err)
	}
	s.Mode = ModeGeneral
	return e.generate(ctx, op, GeneralPrompt(RelevantLines(material, msg), msg))
}

type timeoutError interface{ Timeout() bool }

type notConfiguredError interface{ NotConfigured() bool }

// generate calls the oracle and classifies failures as upstream or timeout errors.
func (e *Engine) generate(ctx context.Context, op, prompt string) (string, error) {
	out, err := e.oracle.Generate(ctx, prompt)
	if err == nil {
		return out, nil
	}
	var nc notConfiguredError
	if errors.As(err, &nc) && nc.NotConfigured() {
		return "", utils.E(utils.CodeNotConfigured, op, "The assistant is not configured. Please contact administrator.", err)
	}
	code := utils.CodeUpstream
	var te timeoutError
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &te) && te.Timeout()) {
		code = utils.CodeTimeout
	}
	return "", utils.E(code, op, err.Error(), err)
}

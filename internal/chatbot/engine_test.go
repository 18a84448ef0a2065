package chatbot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/yoockh/admission/internal/models"
	"github.com/yoockh/admission/internal/utils"
)

var reAskAbout = regexp.MustCompile(`You MUST ask about: (.*)`)

// stubOracle answers deterministically per prompt kind.
type stubOracle struct {
	prompts  []string
	validate func(prompt string) string
	err      error
}

func (o *stubOracle) Generate(_ context.Context, prompt string) (string, error) {
	o.prompts = append(o.prompts, prompt)
	if o.err != nil {
		return "", o.err
	}
	switch {
	case strings.Contains(prompt, "validating student answers"):
		if o.validate != nil {
			return o.validate(prompt), nil
		}
		return "VALID", nil
	case strings.HasPrefix(prompt, "IMPORTANT RULES"):
		m := reAskAbout.FindStringSubmatch(prompt)
		return "ASK: " + m[1], nil
	case strings.Contains(prompt, "expert admission counselor"):
		return "Program: BS CS\nReason: fits\nUniversities: A, B", nil
	default:
		return "ANSWER", nil
	}
}

type stubQuestions struct {
	qs  []models.InterviewQuestion
	err error
}

func (s stubQuestions) Questions(context.Context) ([]models.InterviewQuestion, error) {
	return s.qs, s.err
}

type stubCorpus string

func (c stubCorpus) Material(context.Context) (string, error) { return string(c), nil }

type stubStore struct {
	saved    []map[string]string
	attached map[string]string
	saveErr  error
}

func (s *stubStore) SaveInterview(_ context.Context, fields map[string]string, transcript []models.TranscriptEntry) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.saved = append(s.saved, fields)
	return fmt.Sprintf("student-%d", len(s.saved)), nil
}

func (s *stubStore) AttachRecommendation(_ context.Context, id, rec string) error {
	if s.attached == nil {
		s.attached = map[string]string{}
	}
	s.attached[id] = rec
	return nil
}

func testQuestions() []models.InterviewQuestion {
	return []models.InterviewQuestion{
		{Question: "What is your full name?", Field: "full_name", Type: "name"},
		{Question: "What is your email?", Field: "email", Type: "email", Restriction: "must be a valid email address"},
		{Question: "Which program do you want?", Field: "program_choice", Type: "program"},
	}
}

func newTestEngine(o *stubOracle, qs []models.InterviewQuestion, st *stubStore) *Engine {
	e := NewEngine(o, stubQuestions{qs: qs}, stubCorpus("Fee structure: 50k per semester\nHostel is available"), st)
	e.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	return e
}

func send(t *testing.T, e *Engine, s *Session, msg string) (*Session, Reply) {
	t.Helper()
	next, reply, err := e.Handle(context.Background(), s, msg)
	if err != nil {
		t.Fatalf("Handle(%q) returned error: %v", msg, err)
	}
	return next, reply
}

func TestEngineFullInterview(t *testing.T) {
	oracle := &stubOracle{validate: func(p string) string {
		if strings.Contains(p, "Student's Answer: no email") {
			return "Please provide a valid email address."
		}
		return "valid "
	}}
	store := &stubStore{}
	e := newTestEngine(oracle, testQuestions(), store)
	s := NewSession("s1", e.now())

	s, reply := send(t, e, s, "1")
	if s.Mode != ModeInterview || reply.Text != "ASK: What is your full name?" {
		t.Fatalf("unexpected start: mode=%s text=%q", s.Mode, reply.Text)
	}

	s, _ = send(t, e, s, "My name is Ali Khan")
	if s.QuestionIndex != 1 || s.Fields["full_name"] != "Ali Khan" {
		t.Fatalf("unexpected state after name: %+v", s)
	}

	s, reply = send(t, e, s, "no email")
	if s.QuestionIndex != 1 || len(s.Transcript) != 1 {
		t.Fatalf("rejected answer must not advance: index=%d transcript=%d", s.QuestionIndex, len(s.Transcript))
	}
	if reply.Text != "Please provide a valid email address.\n\nASK: What is your email?" {
		t.Fatalf("unexpected re-ask: %q", reply.Text)
	}

	s, _ = send(t, e, s, "Ali@Example.com")
	if len(store.saved) != 0 {
		t.Fatalf("interview saved too early")
	}
	s, reply = send(t, e, s, "BS Computer Science")
	if s.Mode != ModeTransition || reply.Text != MsgInterviewSaved {
		t.Fatalf("expected transition, got mode=%s text=%q", s.Mode, reply.Text)
	}
	if s.QuestionIndex != 3 || len(s.Transcript) != 3 {
		t.Fatalf("index=%d transcript=%d, want 3/3", s.QuestionIndex, len(s.Transcript))
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected one saved record, got %d", len(store.saved))
	}
	rec := store.saved[0]
	if rec["email"] != "ali@example.com" || rec["program_choice"] != "BS COMPUTER SCIENCE" || rec["interview_date"] == "" {
		t.Fatalf("unexpected saved record: %v", rec)
	}
	if s.Transcript[1].Answer != "Ali@Example.com" {
		t.Fatalf("transcript should keep the raw answer, got %q", s.Transcript[1].Answer)
	}

	s, reply = send(t, e, s, "Yes")
	if s.Mode != ModeGeneral || !strings.HasPrefix(reply.Text, RecommendationHeader) {
		t.Fatalf("unexpected recommendation turn: mode=%s text=%q", s.Mode, reply.Text)
	}
	if store.attached["student-1"] == "" {
		t.Fatalf("recommendation not attached to saved record")
	}
	last := oracle.prompts[len(oracle.prompts)-1]
	if !strings.Contains(last, "programs from this field: IT.") {
		t.Fatalf("recommendation prompt not scoped to IT:\n%s", last)
	}
}

func TestEngineTransitionDeclined(t *testing.T) {
	e := newTestEngine(&stubOracle{}, testQuestions(), &stubStore{})
	s := NewSession("s1", e.now())
	s.Mode = ModeTransition

	s, reply := send(t, e, s, "maybe later")
	if s.Mode != ModeGeneral || reply.Text != MsgDeclined {
		t.Fatalf("mode=%s text=%q", s.Mode, reply.Text)
	}
}

func sessionInEveryMode() []*Session {
	var out []*Session
	for _, m := range []Mode{ModeMenu, ModeInterview, ModeTransition, ModeGeneral} {
		s := NewSession("s-"+string(m), time.Unix(0, 0))
		s.Mode = m
		s.QuestionIndex = 1
		s.Fields["full_name"] = "Ali Khan"
		s.Transcript = []models.TranscriptEntry{{Question: "What is your full name?", Answer: "Ali Khan"}}
		out = append(out, s)
	}
	return out
}

func TestEngineMenuKeepsAnswers(t *testing.T) {
	e := newTestEngine(&stubOracle{}, testQuestions(), &stubStore{})
	for _, s := range sessionInEveryMode() {
		next, reply := send(t, e, s, " MENU ")
		if next.Mode != ModeMenu || reply.Text != MsgMenu {
			t.Fatalf("from %s: mode=%s text=%q", s.Mode, next.Mode, reply.Text)
		}
		if next.Fields["full_name"] != "Ali Khan" || len(next.Transcript) != 1 || next.QuestionIndex != 1 {
			t.Fatalf("from %s: menu mutated session %+v", s.Mode, next)
		}
	}
}

func TestEngineExitHasNoSideEffects(t *testing.T) {
	oracle := &stubOracle{}
	store := &stubStore{}
	e := newTestEngine(oracle, testQuestions(), store)
	for _, s := range sessionInEveryMode() {
		for _, tok := range []string{"4", "Exit", "quit", "BYE"} {
			next, reply := send(t, e, s, tok)
			if !reply.Exit || reply.Text != ExitSentinel {
				t.Fatalf("%q in %s: reply %+v", tok, s.Mode, reply)
			}
			if next != s {
				t.Fatalf("%q in %s: session replaced", tok, s.Mode)
			}
		}
	}
	if len(oracle.prompts) != 0 || len(store.saved) != 0 {
		t.Fatalf("exit reached the oracle or store")
	}
}

func TestEngineRecommendationRequiresInterview(t *testing.T) {
	oracle := &stubOracle{}
	e := newTestEngine(oracle, testQuestions(), &stubStore{})
	s := NewSession("s1", e.now())

	next, reply := send(t, e, s, "2")
	if reply.Text != MsgNeedInterview || next.Mode != ModeMenu {
		t.Fatalf("text=%q mode=%s", reply.Text, next.Mode)
	}

	s.Fields["full_name"] = "Ali Khan"
	s.Fields["inter_program"] = "Pre-Medical"
	next, reply = send(t, e, s, "2")
	if next.Mode != ModeGeneral || !strings.HasPrefix(reply.Text, RecommendationHeader) {
		t.Fatalf("text=%q mode=%s", reply.Text, next.Mode)
	}
	if !strings.Contains(oracle.prompts[0], "field: Medical.") {
		t.Fatalf("expected Medical scope:\n%s", oracle.prompts[0])
	}
}

func TestEngineMenuModeAndGeneral(t *testing.T) {
	oracle := &stubOracle{}
	e := newTestEngine(oracle, testQuestions(), &stubStore{})
	s := NewSession("s1", e.now())

	s, reply := send(t, e, s, "hello")
	if reply.Text != MsgInvalidChoice || s.Mode != ModeMenu {
		t.Fatalf("text=%q mode=%s", reply.Text, s.Mode)
	}

	s, reply = send(t, e, s, "3")
	if reply.Text != MsgGeneralIntro || s.Mode != ModeGeneral {
		t.Fatalf("text=%q mode=%s", reply.Text, s.Mode)
	}

	s, reply = send(t, e, s, "FEE structure")
	if reply.Text != "ANSWER" || s.Mode != ModeGeneral {
		t.Fatalf("text=%q mode=%s", reply.Text, s.Mode)
	}
	p := oracle.prompts[0]
	if !strings.Contains(p, "Fee structure: 50k per semester") || strings.Contains(p, "Hostel") {
		t.Fatalf("general prompt not narrowed to matching lines:\n%s", p)
	}
}

type offlineErr struct{}

func (offlineErr) Error() string       { return "offline" }
func (offlineErr) NotConfigured() bool { return true }

func TestEngineOracleFailureLeavesStateUnchanged(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want utils.Code
	}{
		{"upstream", errors.New("API Error: status 500"), utils.CodeUpstream},
		{"timeout", context.DeadlineExceeded, utils.CodeTimeout},
		{"not configured", offlineErr{}, utils.CodeNotConfigured},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(&stubOracle{err: tc.err}, testQuestions(), &stubStore{})
			s := NewSession("s1", e.now())
			s.Mode = ModeInterview

			next, _, err := e.Handle(context.Background(), s, "Ali Khan")
			if err == nil {
				t.Fatalf("expected error")
			}
			if utils.CodeOf(err) != tc.want {
				t.Fatalf("code = %s, want %s", utils.CodeOf(err), tc.want)
			}
			if next != s || s.QuestionIndex != 0 || len(s.Transcript) != 0 || len(s.Fields) != 0 {
				t.Fatalf("state changed on failure: %+v", next)
			}
		})
	}
}

func TestEngineNotConfigured(t *testing.T) {
	e := newTestEngine(&stubOracle{}, nil, &stubStore{})
	s := NewSession("s1", e.now())

	next, _, err := e.Handle(context.Background(), s, "1")
	if !utils.IsCode(err, utils.CodeNotConfigured) || utils.MessageOf(err) != MsgNotConfigured {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Mode != ModeMenu {
		t.Fatalf("mode = %s, want menu", next.Mode)
	}
}

func TestEngineSaveFailureKeepsLastAnswerPending(t *testing.T) {
	store := &stubStore{saveErr: errors.New("mongo down")}
	e := newTestEngine(&stubOracle{}, testQuestions()[:1], store)
	s := NewSession("s1", e.now())
	s.Mode = ModeInterview

	next, _, err := e.Handle(context.Background(), s, "Ali Khan")
	if utils.CodeOf(err) != utils.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
	if next.QuestionIndex != 0 || next.Mode != ModeInterview {
		t.Fatalf("state advanced despite failed save: %+v", next)
	}
}

type liveQuestions struct{ qs []models.InterviewQuestion }

func (l *liveQuestions) Questions(context.Context) ([]models.InterviewQuestion, error) {
	return l.qs, nil
}

func TestEngineInterviewKeepsItsQuestionList(t *testing.T) {
	src := &liveQuestions{qs: testQuestions()}
	e := NewEngine(&stubOracle{}, src, stubCorpus(""), &stubStore{})
	e.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }

	s, _ := send(t, e, NewSession("s1", e.now()), "1")

	// an admin reorders and trims the list mid-interview
	qs := testQuestions()
	src.qs = []models.InterviewQuestion{qs[2], qs[0]}

	s, reply := send(t, e, s, "My name is Ali Khan")
	if s.Fields["full_name"] != "Ali Khan" || s.Fields["program_choice"] != "" {
		t.Fatalf("answer stored against the wrong question: %v", s.Fields)
	}
	if reply.Text != "ASK: What is your email?" {
		t.Fatalf("next question = %q", reply.Text)
	}

	restarted, reply := send(t, e, s, "1")
	if len(restarted.Questions) != 2 || reply.Text != "ASK: Which program do you want?" {
		t.Fatalf("a new run should use the edited list: %d questions, %q", len(restarted.Questions), reply.Text)
	}
}

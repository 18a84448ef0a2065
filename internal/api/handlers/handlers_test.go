package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yoockh/admission/internal/chatbot"
	"github.com/yoockh/admission/internal/logger"
	"github.com/yoockh/admission/internal/models"
	"github.com/yoockh/admission/internal/providers/recaptcha"
	"github.com/yoockh/admission/internal/providers/stt"
	"github.com/yoockh/admission/internal/services"
	"github.com/yoockh/admission/internal/utils"
)

func init() { gin.SetMode(gin.TestMode) }

type stubChat struct {
	sent   []string
	ids    []string
	result *services.ChatResult
	err    error
	turns  []models.ChatLog
	limit  int
}

func (s *stubChat) NewSession(context.Context) (*chatbot.Session, error) {
	return chatbot.NewSession(uuid.NewString(), time.Now()), nil
}

func (s *stubChat) Get(_ context.Context, id string) (*chatbot.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, "stub", "invalid session id", nil)
	}
	return nil, utils.E(utils.CodeNotFound, "stub", "chat session not found", nil)
}

func (s *stubChat) Send(_ context.Context, id, msg string) (*services.ChatResult, error) {
	s.ids = append(s.ids, id)
	s.sent = append(s.sent, msg)
	if s.err != nil {
		return nil, s.err
	}
	res := *s.result
	res.SessionID = id
	return &res, nil
}

func (s *stubChat) History(context.Context, string, int) ([]models.ChatLog, error) {
	return nil, utils.E(utils.CodeNotConfigured, "stub", "chat history is not enabled", nil)
}

func (s *stubChat) RecentTurns(_ context.Context, limit int) ([]models.ChatLog, error) {
	s.limit = limit
	return s.turns, nil
}

func (s *stubChat) Turn(_ context.Context, id string) (*models.ChatLog, error) {
	for _, t := range s.turns {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, utils.E(utils.CodeNotFound, "stub", "chat turn not found", nil)
}

func (s *stubChat) End(context.Context, string) error { return nil }

type stubSpeech struct{ text string }

func (s stubSpeech) Transcribe(context.Context, stt.Audio) (string, float64, error) {
	if s.text == "" {
		return "", 0, stt.ErrNoSpeech
	}
	return s.text, 0.9, nil
}

func (stubSpeech) Close() error { return nil }

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func chatRouter(h *ChatHandler) *gin.Engine {
	r := gin.New()
	r.POST("/send_message", h.SendMessage)
	r.POST("/chat/session", h.NewSession)
	r.GET("/chat/session/:session_id", h.GetSession)
	r.GET("/chat/session/:session_id/history", h.History)
	r.POST("/chat/voice", h.Voice)
	return r
}

func TestSendMessageIssuesSession(t *testing.T) {
	chat := &stubChat{result: &services.ChatResult{Response: "Welcome", Mode: chatbot.ModeMenu}}
	r := chatRouter(NewChatHandler(chat, nil, logger.Discard(), nil))

	req := httptest.NewRequest(http.MethodPost, "/send_message", strings.NewReader(`{"message":"menu"}`))
	req.Header.Set("Content-Type", "application/json")
	w := do(r, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["response"] != "Welcome" || body["mode"] != "menu" {
		t.Fatalf("body = %v", body)
	}
	id := w.Header().Get(SessionHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("no session issued: %q", id)
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), SessionCookie+"="+id) {
		t.Fatalf("cookie not set: %q", w.Header().Get("Set-Cookie"))
	}
}

func TestSendMessageReusesCookie(t *testing.T) {
	chat := &stubChat{result: &services.ChatResult{Response: "ok", Mode: chatbot.ModeGeneral}}
	r := chatRouter(NewChatHandler(chat, nil, logger.Discard(), nil))
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodPost, "/send_message", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: id})
	w := do(r, req)

	if w.Code != http.StatusOK || chat.ids[0] != id {
		t.Fatalf("status=%d ids=%v", w.Code, chat.ids)
	}
	if w.Header().Get("Set-Cookie") != "" {
		t.Fatalf("cookie reissued")
	}
}

func TestSendMessageRetryableFailureIsOK(t *testing.T) {
	chat := &stubChat{result: &services.ChatResult{
		Response:  "API Error: status 500",
		Mode:      chatbot.ModeInterview,
		ErrorCode: utils.CodeUpstream,
	}}
	r := chatRouter(NewChatHandler(chat, nil, logger.Discard(), nil))

	req := httptest.NewRequest(http.MethodPost, "/send_message", strings.NewReader(`{"message":"Ali"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SessionHeader, uuid.NewString())
	w := do(r, req)

	body := decode(t, w)
	if w.Code != http.StatusOK || body["error"] != string(utils.CodeUpstream) {
		t.Fatalf("status=%d body=%v", w.Code, body)
	}
}

func TestSendMessageBusySession(t *testing.T) {
	chat := &stubChat{err: utils.E(utils.CodeConflict, "stub", "another message is still being processed for this session", nil)}
	r := chatRouter(NewChatHandler(chat, nil, logger.Discard(), nil))

	req := httptest.NewRequest(http.MethodPost, "/send_message", strings.NewReader(`{"message":"1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := do(r, req)

	if w.Code != http.StatusConflict || decode(t, w)["code"] != string(utils.CodeConflict) {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestChatSessionErrors(t *testing.T) {
	r := chatRouter(NewChatHandler(&stubChat{}, nil, logger.Discard(), nil))

	cases := []struct {
		path string
		want int
	}{
		{"/chat/session/not-a-uuid", http.StatusBadRequest},
		{"/chat/session/" + uuid.NewString(), http.StatusNotFound},
		{"/chat/session/" + uuid.NewString() + "/history", http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		w := do(r, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if w.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.path, w.Code, tc.want)
		}
	}
}

func TestNewSessionSetsCookie(t *testing.T) {
	r := chatRouter(NewChatHandler(&stubChat{}, nil, logger.Discard(), nil))
	w := do(r, httptest.NewRequest(http.MethodPost, "/chat/session", nil))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	id, _ := decode(t, w)["session_id"].(string)
	if id == "" || !strings.Contains(w.Header().Get("Set-Cookie"), id) {
		t.Fatalf("session %q not in cookie %q", id, w.Header().Get("Set-Cookie"))
	}
}

func voiceRequest(t *testing.T, audio []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("audio", "clip.wav")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write(audio)
	_ = mw.WriteField("language", "en-US")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/chat/voice", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestVoice(t *testing.T) {
	chat := &stubChat{result: &services.ChatResult{Response: "Question 1", Mode: chatbot.ModeInterview}}

	t.Run("disabled", func(t *testing.T) {
		r := chatRouter(NewChatHandler(chat, nil, logger.Discard(), nil))
		if w := do(r, voiceRequest(t, []byte("RIFF"))); w.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d", w.Code)
		}
	})

	t.Run("transcribed", func(t *testing.T) {
		r := chatRouter(NewChatHandler(chat, stubSpeech{text: "one"}, logger.Discard(), nil))
		w := do(r, voiceRequest(t, []byte("RIFF")))
		body := decode(t, w)
		if w.Code != http.StatusOK || body["transcript"] != "one" || body["response"] != "Question 1" {
			t.Fatalf("status=%d body=%v", w.Code, body)
		}
		if chat.sent[len(chat.sent)-1] != "one" {
			t.Fatalf("sent = %v", chat.sent)
		}
	})

	t.Run("silence", func(t *testing.T) {
		r := chatRouter(NewChatHandler(chat, stubSpeech{}, logger.Discard(), nil))
		if w := do(r, voiceRequest(t, []byte("RIFF"))); w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", w.Code)
		}
	})
}

type stubVerifier struct{ token string }

func (v *stubVerifier) Verify(_ context.Context, token, _ string) (recaptcha.Result, error) {
	v.token = token
	return recaptcha.Result{"success": true, "hostname": "localhost"}, nil
}

func TestRecaptcha(t *testing.T) {
	post := func(h *RecaptchaHandler, body string) *httptest.ResponseRecorder {
		r := gin.New()
		r.POST("/api/verify-recaptcha", h.Verify)
		req := httptest.NewRequest(http.MethodPost, "/api/verify-recaptcha", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return do(r, req)
	}

	if w := post(NewRecaptchaHandler(nil), `{"recaptchaResponse":"x"}`); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("unconfigured status = %d", w.Code)
	}

	v := &stubVerifier{}
	if w := post(NewRecaptchaHandler(v), `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing token status = %d", w.Code)
	}
	w := post(NewRecaptchaHandler(v), `{"recaptchaResponse":"tok"}`)
	if w.Code != http.StatusOK || decode(t, w)["success"] != true || v.token != "tok" {
		t.Fatalf("status=%d body=%s token=%q", w.Code, w.Body.String(), v.token)
	}
}

func TestWriteErrorHidesUnknownErrors(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) { writeError(c, io.ErrUnexpectedEOF) })
	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))

	body := decode(t, w)
	if w.Code != http.StatusInternalServerError || body["code"] != string(utils.CodeInternal) {
		t.Fatalf("status=%d body=%v", w.Code, body)
	}
	if strings.Contains(w.Body.String(), "unexpected EOF") {
		t.Fatalf("internal error leaked: %s", w.Body.String())
	}
}

func TestChatLogReview(t *testing.T) {
	svc := &stubChat{}
	h := NewChatHandler(svc, nil, logger.Discard(), nil)
	r := gin.New()
	r.GET("/logs", h.RecentTurns)
	r.GET("/logs/:id", h.Turn)

	w := do(r, httptest.NewRequest(http.MethodGet, "/logs?limit=7", nil))
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"turns":[]}` || svc.limit != 7 {
		t.Fatalf("status=%d body=%s limit=%d", w.Code, w.Body.String(), svc.limit)
	}

	id := uuid.NewString()
	svc.turns = []models.ChatLog{{ID: id, SessionID: uuid.NewString(), Role: "user", Content: "3"}}
	w = do(r, httptest.NewRequest(http.MethodGet, "/logs/"+id, nil))
	if body := decode(t, w); w.Code != http.StatusOK || body["content"] != "3" {
		t.Fatalf("status=%d body=%v", w.Code, body)
	}
	if w = do(r, httptest.NewRequest(http.MethodGet, "/logs/"+uuid.NewString(), nil)); w.Code != http.StatusNotFound {
		t.Fatalf("missing turn status = %d", w.Code)
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/admission/internal/api/middleware"
	"github.com/yoockh/admission/internal/models"
	"github.com/yoockh/admission/internal/providers/stt"
	"github.com/yoockh/admission/internal/services"
	"github.com/yoockh/admission/internal/utils"
)

const (
	SessionHeader = middleware.HeaderChatSession
	SessionCookie = "chat_session"

	maxVoiceBytes = 10 << 20
)

type ChatHandler struct {
	svc      services.ChatService
	speech   stt.Provider // nil disables /chat/voice
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

func NewChatHandler(svc services.ChatService, speech stt.Provider, log *logrus.Logger, checkOrigin func(*http.Request) bool) *ChatHandler {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &ChatHandler{
		svc:      svc,
		speech:   speech,
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
	}
}

type SendMessageRequest struct {
	Message string `json:"message"`
}

// sessionID resolves the caller's chat session, issuing one when none was sent.
func (h *ChatHandler) sessionID(c *gin.Context) string {
	id := strings.TrimSpace(c.GetHeader(SessionHeader))
	if id == "" {
		id, _ = c.Cookie(SessionCookie)
	}
	if id == "" {
		id = uuid.NewString()
		setSessionCookie(c, id)
	}
	c.Header(SessionHeader, id)
	return id
}

func setSessionCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, id, int((24 * time.Hour).Seconds()), "/", "", false, true)
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ChatHandler.SendMessage", "invalid request body", err)
		return
	}

	res, err := h.svc.Send(c.Request.Context(), h.sessionID(c), req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ChatHandler) NewSession(c *gin.Context) {
	sess, err := h.svc.NewSession(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	setSessionCookie(c, sess.ID)
	c.Header(SessionHeader, sess.ID)
	c.JSON(http.StatusCreated, gin.H{"session_id": sess.ID, "mode": sess.Mode})
}

func (h *ChatHandler) GetSession(c *gin.Context) {
	sess, err := h.svc.Get(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *ChatHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, err := h.svc.History(c.Request.Context(), c.Param("session_id"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": c.Param("session_id"), "turns": rows})
}

// RecentTurns lists the newest logged turns across sessions (?limit, capped by the service).
func (h *ChatHandler) RecentTurns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, err := h.svc.RecentTurns(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if rows == nil {
		rows = []models.ChatLog{}
	}
	c.JSON(http.StatusOK, gin.H{"turns": rows})
}

func (h *ChatHandler) Turn(c *gin.Context) {
	row, err := h.svc.Turn(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *ChatHandler) EndSession(c *gin.Context) {
	if err := h.svc.End(c.Request.Context(), c.Param("session_id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session ended"})
}

// Voice transcribes a recorded message and feeds the text through the same turn as SendMessage.
func (h *ChatHandler) Voice(c *gin.Context) {
	const op = "ChatHandler.Voice"

	if h.speech == nil {
		writeError(c, utils.E(utils.CodeNotConfigured, op, "voice input is not enabled", nil))
		return
	}

	fh, err := c.FormFile("audio")
	if err != nil {
		badRequest(c, op, "missing multipart field 'audio'", err)
		return
	}
	if fh.Size <= 0 || fh.Size > maxVoiceBytes {
		badRequest(c, op, "audio too large (max 10MB)", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxVoiceBytes))
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to read upload", err))
		return
	}

	text, conf, err := h.speech.Transcribe(c.Request.Context(), stt.Audio{
		Data:        data,
		ContentType: fh.Header.Get("Content-Type"),
		Language:    c.PostForm("language"),
	})
	if err != nil {
		if errors.Is(err, stt.ErrNoSpeech) {
			badRequest(c, op, "no speech recognised", err)
			return
		}
		writeError(c, utils.E(utils.CodeUpstream, op, "speech recognition failed", err))
		return
	}

	res, err := h.svc.Send(c.Request.Context(), h.sessionID(c), text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": res.SessionID,
		"transcript": text,
		"confidence": conf,
		"response":   res.Response,
		"mode":       res.Mode,
		"exit":       res.Exit,
		"error":      res.ErrorCode,
	})
}

type wsClientMsg struct {
	Message string `json:"message"`
}

type wsServerMsg struct {
	SessionID string     `json:"session_id,omitempty"`
	Response  string     `json:"response"`
	Mode      string     `json:"mode,omitempty"`
	Exit      bool       `json:"exit,omitempty"`
	Error     utils.Code `json:"error,omitempty"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

// ChatWS runs the chat over a websocket. Turns are applied one at a time in arrival order.
func (h *ChatHandler) ChatWS(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = h.sessionID(c)
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		badRequest(c, "ChatHandler.ChatWS", "invalid session id", err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	log := h.log.WithField("session_id", sessionID)
	_ = wc.writeJSON(wsServerMsg{SessionID: sessionID, Response: "connected"})

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
		return nil
	})

	for {
		_, data, rerr := conn.ReadMessage()
		if rerr != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))

		var msg wsClientMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = wc.writeJSON(wsServerMsg{Response: "invalid json", Error: utils.CodeInvalidArgument})
			continue
		}

		res, err := h.svc.Send(ctx, sessionID, msg.Message)
		if err != nil {
			log.WithError(err).Warn("ws chat turn failed")
			_ = wc.writeJSON(wsServerMsg{Response: utils.MessageOf(err), Error: utils.CodeOf(err)})
			continue
		}
		out := wsServerMsg{Response: res.Response, Mode: string(res.Mode), Exit: res.Exit, Error: res.ErrorCode}
		if werr := wc.writeJSON(out); werr != nil {
			return
		}
		if res.Exit {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
				time.Now().Add(time.Second))
			return
		}
	}
}

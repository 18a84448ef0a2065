package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/yoockh/admission/internal/chatbot"
	"github.com/yoockh/admission/internal/models"
	pgrepo "github.com/yoockh/admission/internal/repositories/postgres"
	"github.com/yoockh/admission/internal/sessions"
	"github.com/yoockh/admission/internal/utils"
)

const (
	defaultLockWait = 30 * time.Second
	maxRecentTurns  = 200
)

// ChatResult is the outcome of one chat turn. ErrorCode is set when the turn
// failed in a retryable way; the session was left as it was.
type ChatResult struct {
	SessionID string       `json:"session_id"`
	Response  string       `json:"response"`
	Mode      chatbot.Mode `json:"mode"`
	Exit      bool         `json:"exit,omitempty"`
	ErrorCode utils.Code   `json:"error,omitempty"`
}

type ChatService interface {
	NewSession(ctx context.Context) (*chatbot.Session, error)
	Get(ctx context.Context, sessionID string) (*chatbot.Session, error)
	Send(ctx context.Context, sessionID, message string) (*ChatResult, error)
	History(ctx context.Context, sessionID string, limit int) ([]models.ChatLog, error)
	RecentTurns(ctx context.Context, limit int) ([]models.ChatLog, error)
	Turn(ctx context.Context, id string) (*models.ChatLog, error)
	End(ctx context.Context, sessionID string) error
}

// TurnRecorder receives the rows of every chat turn. The chat log repository
// satisfies it directly; workers.StreamRecorder defers the insert to a stream.
type TurnRecorder interface {
	Insert(ctx context.Context, logs ...*models.ChatLog) error
}

type ChatOption func(*chatService)

// WithTurnRecorder routes turn rows somewhere other than the history repository.
func WithTurnRecorder(r TurnRecorder) ChatOption {
	return func(s *chatService) { s.recorder = r }
}

type chatService struct {
	engine   *chatbot.Engine
	store    sessions.Store
	logs     pgrepo.ChatLogRepo // nil disables history
	recorder TurnRecorder       // nil disables the audit log
	log      *logrus.Logger
	lockWait time.Duration
}

func NewChatService(engine *chatbot.Engine, store sessions.Store, logs pgrepo.ChatLogRepo, log *logrus.Logger, opts ...ChatOption) ChatService {
	s := &chatService{engine: engine, store: store, logs: logs, log: log, lockWait: defaultLockWait}
	if logs != nil {
		s.recorder = logs
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *chatService) NewSession(ctx context.Context) (*chatbot.Session, error) {
	const op = "ChatService.NewSession"

	sess := chatbot.NewSession(uuid.NewString(), time.Now().UTC())
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create chat session", err)
	}
	return sess, nil
}

func (s *chatService) Get(ctx context.Context, sessionID string) (*chatbot.Session, error) {
	const op = "ChatService.Get"

	if !validSessionID(sessionID) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid session id", nil)
	}
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "chat session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get chat session", err)
	}
	return sess, nil
}

// Send applies one message to the session under its lock. Unknown ids start a fresh session.
func (s *chatService) Send(ctx context.Context, sessionID, message string) (*ChatResult, error) {
	const op = "ChatService.Send"

	if !validSessionID(sessionID) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid session id", nil)
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	unlock, err := s.store.Lock(lockCtx, sessionID)
	cancel()
	if err != nil {
		if errors.Is(err, sessions.ErrBusy) {
			return nil, utils.E(utils.CodeConflict, op, "another message is still being processed for this session", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to lock chat session", err)
	}
	defer unlock()

	cur, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, sessions.ErrNotFound) {
		cur = chatbot.NewSession(sessionID, time.Now().UTC())
	} else if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load chat session", err)
	}

	next, reply, err := s.engine.Handle(ctx, cur, message)
	entry := s.log.WithFields(logrus.Fields{"session_id": sessionID, "mode": cur.Mode})
	if err != nil {
		code := utils.CodeOf(err)
		if !code.Retryable() {
			entry.WithError(err).Error("chat turn failed")
			return nil, err
		}
		entry.WithError(err).Warn("chat turn failed")
		res := &ChatResult{SessionID: sessionID, Response: utils.MessageOf(err), Mode: cur.Mode, ErrorCode: code}
		s.appendLog(ctx, cur, message, res)
		return res, nil
	}

	if err := s.store.Save(ctx, next); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save chat session", err)
	}

	res := &ChatResult{SessionID: sessionID, Response: reply.Text, Mode: reply.Mode, Exit: reply.Exit}
	s.appendLog(ctx, next, message, res)
	return res, nil
}

// appendLog records both sides of a turn. Failures are logged, never returned.
func (s *chatService) appendLog(ctx context.Context, sess *chatbot.Session, message string, res *ChatResult) {
	if s.recorder == nil {
		return
	}
	now := time.Now().UTC()
	meta, _ := json.Marshal(map[string]any{
		"question_index": sess.QuestionIndex,
		"error":          res.ErrorCode,
		"exit":           res.Exit,
	})
	rows := []*models.ChatLog{
		{
			ID:        uuid.NewString(),
			SessionID: res.SessionID,
			Role:      "user",
			Mode:      string(sess.Mode),
			Content:   message,
			Keywords:  chatbot.Keywords(message),
			Timestamp: now,
			Metadata:  datatypes.JSON(meta),
		},
		{
			ID:        uuid.NewString(),
			SessionID: res.SessionID,
			Role:      "assistant",
			Mode:      string(res.Mode),
			Content:   res.Response,
			Timestamp: now.Add(time.Millisecond),
			Metadata:  datatypes.JSON(meta),
		},
	}
	if err := s.recorder.Insert(ctx, rows...); err != nil {
		s.log.WithError(err).WithField("session_id", res.SessionID).Warn("failed to append chat log")
	}
}

func (s *chatService) History(ctx context.Context, sessionID string, limit int) ([]models.ChatLog, error) {
	const op = "ChatService.History"

	if !validSessionID(sessionID) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid session id", nil)
	}
	if s.logs == nil {
		return nil, utils.E(utils.CodeNotConfigured, op, "chat history is not enabled", nil)
	}
	rows, err := s.logs.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list chat history", err)
	}
	return rows, nil
}

// RecentTurns lists the newest logged turns across every session, for review by admins.
func (s *chatService) RecentTurns(ctx context.Context, limit int) ([]models.ChatLog, error) {
	const op = "ChatService.RecentTurns"

	if s.logs == nil {
		return nil, utils.E(utils.CodeNotConfigured, op, "chat history is not enabled", nil)
	}
	if limit <= 0 || limit > maxRecentTurns {
		limit = maxRecentTurns
	}
	rows, err := s.logs.LatestN(ctx, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list chat turns", err)
	}
	return rows, nil
}

func (s *chatService) Turn(ctx context.Context, id string) (*models.ChatLog, error) {
	const op = "ChatService.Turn"

	if !validSessionID(id) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid chat turn id", nil)
	}
	if s.logs == nil {
		return nil, utils.E(utils.CodeNotConfigured, op, "chat history is not enabled", nil)
	}
	row, err := s.logs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "chat turn not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get chat turn", err)
	}
	return row, nil
}

func (s *chatService) End(ctx context.Context, sessionID string) error {
	const op = "ChatService.End"

	if !validSessionID(sessionID) {
		return utils.E(utils.CodeInvalidArgument, op, "invalid session id", nil)
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to end chat session", err)
	}
	return nil
}

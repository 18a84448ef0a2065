package workers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/admission/internal/models"
	pgrepo "github.com/yoockh/admission/internal/repositories/postgres"
)

const (
	DefaultStream = "chat:log"
	DefaultGroup  = "chatlog-writers"

	rowField = "row"
)

// StreamRecorder queues chat log rows on a Redis stream so a chat turn never
// waits on Postgres. ChatLogWorkerPool drains the stream.
type StreamRecorder struct {
	Redis  *redis.Client
	Stream string
	MaxLen int64
}

func NewStreamRecorder(rdb *redis.Client) *StreamRecorder {
	return &StreamRecorder{Redis: rdb, Stream: DefaultStream, MaxLen: 100000}
}

func (r *StreamRecorder) Insert(ctx context.Context, logs ...*models.ChatLog) error {
	if len(logs) == 0 {
		return nil
	}
	pipe := r.Redis.Pipeline()
	for _, row := range logs {
		b, err := json.Marshal(row)
		if err != nil {
			return err
		}
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: r.Stream,
			MaxLen: r.MaxLen,
			Approx: true,
			Values: map[string]any{rowField: string(b)},
		})
	}
	_, err := pipe.Exec(ctx)
	return err
}

// ChatLogWorkerPool moves queued rows from the stream into the chat log table.
// Messages whose insert failed stay pending and are retried when a consumer restarts.
type ChatLogWorkerPool struct {
	Redis      *redis.Client
	Logs       pgrepo.ChatLogRepo
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *ChatLogWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Logs == nil {
		return errors.New("ChatLogWorkerPool missing dependency: Redis/Logs must be set")
	}
	if p.Stream == "" {
		p.Stream = DefaultStream
	}
	if p.Group == "" {
		p.Group = DefaultGroup
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 2
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *ChatLogWorkerPool) runConsumer(ctx context.Context, consumer string) {
	// "0" replays this consumer's pending entries once, then ">" reads new ones.
	start := "0"
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, start},
			Count:    50,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			p.Logger.WithError(err).WithField("consumer", consumer).Warn("chat log stream read failed")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		empty := true
		for _, stream := range res {
			if len(stream.Messages) > 0 {
				empty = false
			}
			if !p.handleBatch(ctx, stream.Messages) {
				start = "0"
				time.Sleep(time.Second)
			}
		}
		if start == "0" && empty {
			start = ">"
		}
	}
}

// handleBatch reports false when the batch must stay pending.
func (p *ChatLogWorkerPool) handleBatch(ctx context.Context, msgs []redis.XMessage) bool {
	if len(msgs) == 0 {
		return true
	}
	ids, ok := p.persist(ctx, msgs)
	if !ok {
		return false
	}
	_ = p.Redis.XAck(ctx, p.Stream, p.Group, ids...).Err()
	return true
}

// persist writes the decodable rows of msgs and returns every entry id to ack.
// Rows already stored by an earlier, unacked delivery are skipped by the repo.
func (p *ChatLogWorkerPool) persist(ctx context.Context, msgs []redis.XMessage) ([]string, bool) {
	rows := make([]*models.ChatLog, 0, len(msgs))
	ids := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		ids = append(ids, msg.ID)
		row, err := decodeRow(msg)
		if err != nil {
			// unreadable entries are acked and dropped
			p.Logger.WithError(err).WithField("redis_id", msg.ID).Warn("bad chat log entry")
			continue
		}
		rows = append(rows, row)
	}

	if err := p.Logs.Insert(ctx, rows...); err != nil {
		p.Logger.WithError(err).WithField("count", len(rows)).Error("chat log insert failed")
		return nil, false
	}
	return ids, true
}

func decodeRow(msg redis.XMessage) (*models.ChatLog, error) {
	raw, _ := msg.Values[rowField].(string)
	if raw == "" {
		return nil, errors.New("missing row field")
	}
	var row models.ChatLog
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		return nil, err
	}
	if row.ID == "" || row.SessionID == "" {
		return nil, errors.New("row without id or session_id")
	}
	return &row, nil
}

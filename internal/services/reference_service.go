package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"

	"github.com/yoockh/admission/internal/cache"
	"github.com/yoockh/admission/internal/chatbot"
	"github.com/yoockh/admission/internal/models"
	mongorepo "github.com/yoockh/admission/internal/repositories/mongo"
	"github.com/yoockh/admission/internal/seed"
	"github.com/yoockh/admission/internal/utils"
)

// ReferenceService owns the chatbot reference data: the ordered interview questions,
// the general admission material and the uploaded university documents.
// Reads go through the cache; every write invalidates it.
type ReferenceService interface {
	chatbot.QuestionSource
	chatbot.Corpus
	FilesText(ctx context.Context) (string, error)

	ListQuestions(ctx context.Context) ([]models.InterviewQuestion, error)
	AddQuestion(ctx context.Context, q QuestionInput) (*models.InterviewQuestion, error)
	UpdateQuestion(ctx context.Context, id string, q QuestionInput) error
	DeleteQuestion(ctx context.Context, id string) error
	ReorderQuestions(ctx context.Context, ids []string) error

	GetMaterial(ctx context.Context) (*models.GeneralMaterial, error)
	PutMaterial(ctx context.Context, content string) error

	UploadFile(ctx context.Context, filename string, data []byte) (*models.ChatbotFile, error)
	ListFiles(ctx context.Context) ([]models.ChatbotFile, error)
	GetFile(ctx context.Context, id string) (*models.ChatbotFile, error)
	DeleteFile(ctx context.Context, id string) error

	// Seed fills empty question and material collections.
	Seed(ctx context.Context, d *seed.Data) error
}

type QuestionInput struct {
	Question    string `json:"question"`
	Field       string `json:"field"`
	Type        string `json:"type"`
	Restriction string `json:"restriction"`
}

type referenceService struct {
	questions       mongorepo.QuestionRepository
	material        mongorepo.MaterialRepository
	files           mongorepo.FileRepository
	cache           cache.Cache
	defaultMaterial string
	log             *logrus.Logger
	group           singleflight.Group
}

func NewReferenceService(
	questions mongorepo.QuestionRepository,
	material mongorepo.MaterialRepository,
	files mongorepo.FileRepository,
	c cache.Cache,
	defaultMaterial string,
	log *logrus.Logger,
) ReferenceService {
	return &referenceService{
		questions:       questions,
		material:        material,
		files:           files,
		cache:           c,
		defaultMaterial: defaultMaterial,
		log:             log,
	}
}

// cached reads key from the cache, falling back to load. Concurrent misses share one load.
func cached[T any](ctx context.Context, s *referenceService, key string, load func(context.Context) (T, error)) (T, error) {
	var out T
	if hit, err := s.cache.GetJSON(ctx, key, &out); err == nil && hit {
		return out, nil
	} else if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("reference cache read failed")
	}

	// the shared load outlives any single caller's request
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(key, func() (any, error) {
		val, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetJSON(loadCtx, key, val, cache.ReferenceTTL); err != nil {
			s.log.WithError(err).WithField("key", key).Warn("reference cache write failed")
		}
		return val, nil
	})
	if err != nil {
		return out, err
	}
	return v.(T), nil
}

func (s *referenceService) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.log.WithError(err).WithField("keys", keys).Warn("reference cache invalidation failed")
	}
}

func (s *referenceService) Questions(ctx context.Context) ([]models.InterviewQuestion, error) {
	return cached(ctx, s, cache.KeyQuestions, s.questions.List)
}

func (s *referenceService) Material(ctx context.Context) (string, error) {
	return cached(ctx, s, cache.KeyMaterial, func(ctx context.Context) (string, error) {
		m, err := s.material.Get(ctx)
		if errors.Is(err, utils.ErrNotFound) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		return m.Content, nil
	})
}

// FilesText concatenates the text of every uploaded .docx; unreadable files are skipped.
func (s *referenceService) FilesText(ctx context.Context) (string, error) {
	return cached(ctx, s, cache.KeyFilesText, func(ctx context.Context) (string, error) {
		files, err := s.files.ListWithData(ctx)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		for _, f := range files {
			if !strings.EqualFold(filepath.Ext(f.Filename), ".docx") {
				continue
			}
			txt, err := DocxText(f.Data)
			if err != nil {
				s.log.WithError(err).WithField("file", f.Filename).Warn("skipping unreadable document")
				continue
			}
			b.WriteString(txt)
			b.WriteString("\n\n")
		}
		return strings.TrimSpace(b.String()), nil
	})
}

func (s *referenceService) ListQuestions(ctx context.Context) ([]models.InterviewQuestion, error) {
	const op = "ReferenceService.ListQuestions"

	out, err := s.questions.List(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list questions", err)
	}
	return out, nil
}

// reservedFields are student keys that are not plain strings or are written by the service itself.
var reservedFields = map[string]bool{
	"_id": true, "password": true, "documents": true, "full_interview": true,
	"recommendation": true, "recommendations": true, "interview_date": true,
	"created_at": true, "updated_at": true,
	"matric_subjects": true, "inter_subjects": true, "bachelor_major": true, "master_major": true,
}

func (in QuestionInput) validate(op string) error {
	if strings.TrimSpace(in.Question) == "" || strings.TrimSpace(in.Field) == "" || strings.TrimSpace(in.Type) == "" {
		return utils.E(utils.CodeInvalidArgument, op, "question, field and type are required", nil)
	}
	field := strings.TrimSpace(in.Field)
	if reservedFields[field] || strings.ContainsAny(field, ".$") {
		return utils.E(utils.CodeInvalidArgument, op, "field name is reserved: "+field, nil)
	}
	if !chatbot.ValidAnswerType(in.Type) {
		return utils.E(utils.CodeInvalidArgument, op, "unknown answer type: "+in.Type, nil)
	}
	return nil
}

func (s *referenceService) AddQuestion(ctx context.Context, in QuestionInput) (*models.InterviewQuestion, error) {
	const op = "ReferenceService.AddQuestion"

	if err := in.validate(op); err != nil {
		return nil, err
	}
	n, err := s.questions.Count(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count questions", err)
	}

	now := time.Now().UTC()
	q := &models.InterviewQuestion{
		Question:    strings.TrimSpace(in.Question),
		Field:       strings.TrimSpace(in.Field),
		Type:        strings.ToLower(strings.TrimSpace(in.Type)),
		Restriction: strings.TrimSpace(in.Restriction),
		Order:       int(n),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.questions.Create(ctx, q); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to add question", err)
	}
	s.invalidate(ctx, cache.KeyQuestions)
	return q, nil
}

func (s *referenceService) UpdateQuestion(ctx context.Context, id string, in QuestionInput) error {
	const op = "ReferenceService.UpdateQuestion"

	oid, err := mongorepo.ParseID(id)
	if err != nil {
		return utils.E(utils.CodeInvalidArgument, op, "invalid question id", err)
	}
	if err := in.validate(op); err != nil {
		return err
	}

	err = s.questions.Update(ctx, oid, bson.M{
		"question":    strings.TrimSpace(in.Question),
		"field":       strings.TrimSpace(in.Field),
		"type":        strings.ToLower(strings.TrimSpace(in.Type)),
		"restriction": strings.TrimSpace(in.Restriction),
	})
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "question not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to update question", err)
	}
	s.invalidate(ctx, cache.KeyQuestions)
	return nil
}

func (s *referenceService) DeleteQuestion(ctx context.Context, id string) error {
	const op = "ReferenceService.DeleteQuestion"

	oid, err := mongorepo.ParseID(id)
	if err != nil {
		return utils.E(utils.CodeInvalidArgument, op, "invalid question id", err)
	}
	if err := s.questions.Delete(ctx, oid); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "question not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete question", err)
	}
	s.invalidate(ctx, cache.KeyQuestions)
	return nil
}

func (s *referenceService) ReorderQuestions(ctx context.Context, ids []string) error {
	const op = "ReferenceService.ReorderQuestions"

	if len(ids) == 0 {
		return utils.E(utils.CodeInvalidArgument, op, "questionIds is required", nil)
	}
	oids := make([]primitive.ObjectID, len(ids))
	for i, id := range ids {
		oid, err := mongorepo.ParseID(id)
		if err != nil {
			return utils.E(utils.CodeInvalidArgument, op, "invalid question id: "+id, err)
		}
		oids[i] = oid
	}
	if err := s.questions.Reorder(ctx, oids); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to reorder questions", err)
	}
	s.invalidate(ctx, cache.KeyQuestions)
	return nil
}

func (s *referenceService) GetMaterial(ctx context.Context) (*models.GeneralMaterial, error) {
	const op = "ReferenceService.GetMaterial"

	m, err := s.material.Get(ctx)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to get material", err)
	}

	m, err = s.material.InsertIfMissing(ctx, s.defaultMaterial)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create default material", err)
	}
	s.invalidate(ctx, cache.KeyMaterial)
	return m, nil
}

func (s *referenceService) PutMaterial(ctx context.Context, content string) error {
	const op = "ReferenceService.PutMaterial"

	if strings.TrimSpace(content) == "" {
		return utils.E(utils.CodeInvalidArgument, op, "content is required", nil)
	}
	if err := s.material.Upsert(ctx, content); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to save material", err)
	}
	s.invalidate(ctx, cache.KeyMaterial)
	return nil
}

func (s *referenceService) UploadFile(ctx context.Context, filename string, data []byte) (*models.ChatbotFile, error) {
	const op = "ReferenceService.UploadFile"

	filename = filepath.Base(strings.TrimSpace(filename))
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".doc", ".docx":
	default:
		return nil, utils.E(utils.CodeInvalidArgument, op, "only .doc and .docx files are allowed", nil)
	}
	if len(data) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "file is empty", nil)
	}

	f := &models.ChatbotFile{
		Filename:   filename,
		Size:       int64(len(data)),
		Data:       data,
		UploadedAt: time.Now().UTC(),
	}
	if _, err := s.files.Create(ctx, f); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to store file", err)
	}
	s.invalidate(ctx, cache.KeyFilesText)
	f.Data = nil
	return f, nil
}

func (s *referenceService) ListFiles(ctx context.Context) ([]models.ChatbotFile, error) {
	const op = "ReferenceService.ListFiles"

	out, err := s.files.List(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list files", err)
	}
	return out, nil
}

func (s *referenceService) GetFile(ctx context.Context, id string) (*models.ChatbotFile, error) {
	const op = "ReferenceService.GetFile"

	oid, err := mongorepo.ParseID(id)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid file id", err)
	}
	f, err := s.files.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "file not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get file", err)
	}
	return f, nil
}

func (s *referenceService) DeleteFile(ctx context.Context, id string) error {
	const op = "ReferenceService.DeleteFile"

	oid, err := mongorepo.ParseID(id)
	if err != nil {
		return utils.E(utils.CodeInvalidArgument, op, "invalid file id", err)
	}
	if err := s.files.Delete(ctx, oid); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "file not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete file", err)
	}
	s.invalidate(ctx, cache.KeyFilesText)
	return nil
}

func (s *referenceService) Seed(ctx context.Context, d *seed.Data) error {
	const op = "ReferenceService.Seed"

	n, err := s.questions.Count(ctx)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to count questions", err)
	}
	if n == 0 && len(d.Questions) > 0 {
		qs := d.InterviewQuestions()
		now := time.Now().UTC()
		for i := range qs {
			qs[i].CreatedAt = now
			qs[i].UpdatedAt = now
		}
		if err := s.questions.InsertMany(ctx, qs); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to seed questions", err)
		}
		s.log.WithField("count", len(qs)).Info("seeded interview questions")
	}

	if strings.TrimSpace(d.Material) != "" {
		if _, err := s.material.InsertIfMissing(ctx, d.Material); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to seed material", err)
		}
	}
	s.invalidate(ctx, cache.KeyQuestions, cache.KeyMaterial)
	return nil
}

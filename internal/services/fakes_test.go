package services

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yoockh/admission/internal/models"
	"github.com/yoockh/admission/internal/utils"
)

type fakeStudents struct {
	mu       sync.Mutex
	byID     map[primitive.ObjectID]*models.Student
	saved    []map[string]string
	attached map[string]string
	updates  []bson.M
	docs     map[string]string
	err      error
}

func newFakeStudents() *fakeStudents {
	return &fakeStudents{
		byID:     map[primitive.ObjectID]*models.Student{},
		attached: map[string]string{},
		docs:     map[string]string{},
	}
}

func (f *fakeStudents) add(s models.Student) primitive.ObjectID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	f.byID[s.ID] = &s
	return s.ID
}

func (f *fakeStudents) Create(_ context.Context, s *models.Student) (primitive.ObjectID, error) {
	if f.err != nil {
		return primitive.NilObjectID, f.err
	}
	s.ID = f.add(*s)
	return s.ID, nil
}

func (f *fakeStudents) GetByID(_ context.Context, id primitive.ObjectID) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.byID[id]; ok {
		c := *s
		return &c, nil
	}
	return nil, utils.ErrNotFound
}

func (f *fakeStudents) GetAccountByEmail(_ context.Context, email string) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.byID {
		if s.Email == email && s.PasswordHash != "" {
			c := *s
			return &c, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeStudents) all() []models.Student {
	out := []models.Student{}
	for _, s := range f.byID {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out
}

func (f *fakeStudents) List(_ context.Context, _ string, _ utils.Page) ([]models.Student, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.all()
	return out, int64(len(out)), nil
}

func (f *fakeStudents) ListRegistered(ctx context.Context, search string, p utils.Page) ([]models.Student, int64, error) {
	return f.List(ctx, search, p)
}

func (f *fakeStudents) UpdateProfile(_ context.Context, id primitive.ObjectID, set bson.M) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return false, utils.ErrNotFound
	}
	f.updates = append(f.updates, set)
	return true, nil
}

func (f *fakeStudents) SetDocument(_ context.Context, id primitive.ObjectID, fileType, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return utils.ErrNotFound
	}
	f.docs[fileType] = path
	return nil
}

func (f *fakeStudents) SaveRecommendation(_ context.Context, id primitive.ObjectID, rec *models.RecommendationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[id]
	if !ok {
		return utils.ErrNotFound
	}
	s.Recommendation = rec
	return nil
}

func (f *fakeStudents) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.byID)), nil
}

func (f *fakeStudents) SaveInterview(_ context.Context, fields map[string]string, _ []models.TranscriptEntry) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	f.saved = append(f.saved, fields)
	f.mu.Unlock()
	return f.add(models.Student{FullName: fields["full_name"]}).Hex(), nil
}

func (f *fakeStudents) AttachRecommendation(_ context.Context, id, rec string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attached[id] = rec
	return nil
}

type fakeQuestions struct {
	mu    sync.Mutex
	items []models.InterviewQuestion
	lists int
}

func (f *fakeQuestions) List(context.Context) ([]models.InterviewQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	out := append([]models.InterviewQuestion(nil), f.items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakeQuestions) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.items)), nil
}

func (f *fakeQuestions) Create(_ context.Context, q *models.InterviewQuestion) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q.ID = primitive.NewObjectID()
	f.items = append(f.items, *q)
	return q.ID, nil
}

func (f *fakeQuestions) InsertMany(_ context.Context, qs []models.InterviewQuestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range qs {
		q.ID = primitive.NewObjectID()
		f.items = append(f.items, q)
	}
	return nil
}

func (f *fakeQuestions) index(id primitive.ObjectID) int {
	for i, q := range f.items {
		if q.ID == id {
			return i
		}
	}
	return -1
}

func (f *fakeQuestions) Update(_ context.Context, id primitive.ObjectID, set bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return utils.ErrNotFound
	}
	if v, ok := set["question"].(string); ok {
		f.items[i].Question = v
	}
	return nil
}

func (f *fakeQuestions) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return utils.ErrNotFound
	}
	f.items = append(f.items[:i], f.items[i+1:]...)
	return nil
}

func (f *fakeQuestions) Reorder(_ context.Context, ids []primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for pos, id := range ids {
		if i := f.index(id); i >= 0 {
			f.items[i].Order = pos
		}
	}
	return nil
}

type fakeMaterial struct {
	m *models.GeneralMaterial
}

func (f *fakeMaterial) Get(context.Context) (*models.GeneralMaterial, error) {
	if f.m == nil {
		return nil, utils.ErrNotFound
	}
	return f.m, nil
}

func (f *fakeMaterial) Upsert(_ context.Context, content string) error {
	f.m = &models.GeneralMaterial{ID: primitive.NewObjectID(), Content: content}
	return nil
}

func (f *fakeMaterial) InsertIfMissing(ctx context.Context, content string) (*models.GeneralMaterial, error) {
	if f.m == nil {
		_ = f.Upsert(ctx, content)
	}
	return f.m, nil
}

type fakeFiles struct {
	items []models.ChatbotFile
}

func (f *fakeFiles) Create(_ context.Context, file *models.ChatbotFile) (primitive.ObjectID, error) {
	file.ID = primitive.NewObjectID()
	f.items = append(f.items, *file)
	return file.ID, nil
}

func (f *fakeFiles) List(ctx context.Context) ([]models.ChatbotFile, error) {
	out, _ := f.ListWithData(ctx)
	for i := range out {
		out[i].Data = nil
	}
	return out, nil
}

func (f *fakeFiles) ListWithData(context.Context) ([]models.ChatbotFile, error) {
	return append([]models.ChatbotFile(nil), f.items...), nil
}

func (f *fakeFiles) GetByID(_ context.Context, id primitive.ObjectID) (*models.ChatbotFile, error) {
	for _, it := range f.items {
		if it.ID == id {
			c := it
			return &c, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeFiles) Delete(_ context.Context, id primitive.ObjectID) error {
	for i, it := range f.items {
		if it.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return utils.ErrNotFound
}

// scriptedOracle answers by the first matching prompt fragment.
type scriptedOracle struct {
	mu      sync.Mutex
	replies map[string]string
	err     error
	prompts []string
}

func (o *scriptedOracle) Generate(_ context.Context, prompt string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prompts = append(o.prompts, prompt)
	if o.err != nil {
		return "", o.err
	}
	for frag, reply := range o.replies {
		if strings.Contains(prompt, frag) {
			return reply, nil
		}
	}
	return "ok", nil
}

type memUploader struct {
	files map[string]string
}

func (u *memUploader) Upload(_ context.Context, name, _ string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if u.files == nil {
		u.files = map[string]string{}
	}
	u.files[name] = string(b)
	return "mem://" + name, nil
}

type staticText string

func (s staticText) FilesText(context.Context) (string, error) { return string(s), nil }

type countOf int64

func (c countOf) Count(context.Context) (int64, error) { return int64(c), nil }

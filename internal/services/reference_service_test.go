package services

import (
	"context"
	"testing"

	"github.com/yoockh/admission/internal/cache"
	"github.com/yoockh/admission/internal/logger"
	"github.com/yoockh/admission/internal/seed"
	"github.com/yoockh/admission/internal/utils"
)

func newReference(t *testing.T) (*referenceService, *fakeQuestions, *fakeMaterial, *fakeFiles) {
	t.Helper()
	qs := &fakeQuestions{}
	mat := &fakeMaterial{}
	files := &fakeFiles{}
	svc := NewReferenceService(qs, mat, files, cache.NewMemoryCache(), "default material", logger.Discard())
	return svc.(*referenceService), qs, mat, files
}

func TestReference_QuestionsAreCachedUntilWrite(t *testing.T) {
	ctx := context.Background()
	svc, qs, _, _ := newReference(t)

	if _, err := svc.AddQuestion(ctx, QuestionInput{Question: "Name?", Field: "full_name", Type: "name"}); err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}
	for i := 0; i < 3; i++ {
		got, err := svc.Questions(ctx)
		if err != nil || len(got) != 1 {
			t.Fatalf("Questions = %v, %v", got, err)
		}
	}
	if qs.lists != 1 {
		t.Fatalf("repository listed %d times, want 1", qs.lists)
	}

	second, err := svc.AddQuestion(ctx, QuestionInput{Question: "City?", Field: "city", Type: "Location"})
	if err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}
	if second.Order != 1 || second.Type != "location" {
		t.Fatalf("second question = %+v", second)
	}
	got, _ := svc.Questions(ctx)
	if len(got) != 2 || qs.lists != 2 {
		t.Fatalf("after write: %d questions, %d lists", len(got), qs.lists)
	}
}

func TestReference_AddQuestionValidation(t *testing.T) {
	svc, _, _, _ := newReference(t)
	cases := []QuestionInput{
		{Question: "", Field: "x", Type: "text"},
		{Question: "Q", Field: "x", Type: "colour"},
		{Question: "Q", Field: "matric_subjects", Type: "text"},
		{Question: "Q", Field: "documents.id", Type: "text"},
	}
	for _, in := range cases {
		_, err := svc.AddQuestion(context.Background(), in)
		if !utils.IsCode(err, utils.CodeInvalidArgument) {
			t.Errorf("AddQuestion(%+v) err = %v, want INVALID_ARGUMENT", in, err)
		}
	}
}

func TestReference_ReorderAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, qs, _, _ := newReference(t)
	a, _ := svc.AddQuestion(ctx, QuestionInput{Question: "A", Field: "a", Type: "text"})
	b, _ := svc.AddQuestion(ctx, QuestionInput{Question: "B", Field: "b", Type: "text"})

	if err := svc.ReorderQuestions(ctx, nil); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("empty reorder err = %v", err)
	}
	if err := svc.ReorderQuestions(ctx, []string{"nope"}); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("bad id reorder err = %v", err)
	}
	if err := svc.ReorderQuestions(ctx, []string{b.ID.Hex(), a.ID.Hex()}); err != nil {
		t.Fatalf("ReorderQuestions: %v", err)
	}
	got, _ := svc.Questions(ctx)
	if got[0].Field != "b" || got[1].Field != "a" {
		t.Fatalf("order = %s,%s", got[0].Field, got[1].Field)
	}

	if err := svc.DeleteQuestion(ctx, a.ID.Hex()); err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}
	if err := svc.DeleteQuestion(ctx, a.ID.Hex()); !utils.IsCode(err, utils.CodeNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
	if len(qs.items) != 1 {
		t.Fatalf("items = %d", len(qs.items))
	}
	if err := svc.UpdateQuestion(ctx, a.ID.Hex(), QuestionInput{Question: "A", Field: "a", Type: "text"}); !utils.IsCode(err, utils.CodeNotFound) {
		t.Fatalf("update missing err = %v", err)
	}
}

func TestReference_MaterialDefaultAndPut(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newReference(t)

	if txt, _ := svc.Material(ctx); txt != "" {
		t.Fatalf("material before create = %q", txt)
	}
	m, err := svc.GetMaterial(ctx)
	if err != nil || m.Content != "default material" {
		t.Fatalf("GetMaterial = %+v, %v", m, err)
	}
	if txt, _ := svc.Material(ctx); txt != "default material" {
		t.Fatalf("material after default = %q", txt)
	}

	if err := svc.PutMaterial(ctx, "  "); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("blank put err = %v", err)
	}
	if err := svc.PutMaterial(ctx, "fees are due in June"); err != nil {
		t.Fatalf("PutMaterial: %v", err)
	}
	if txt, _ := svc.Material(ctx); txt != "fees are due in June" {
		t.Fatalf("material after put = %q", txt)
	}
}

func TestReference_Files(t *testing.T) {
	ctx := context.Background()
	svc, _, _, files := newReference(t)

	if _, err := svc.UploadFile(ctx, "list.pdf", []byte("x")); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("pdf upload err = %v", err)
	}

	doc := buildDocx(t, "FAST University", "BS Computer Science")
	f, err := svc.UploadFile(ctx, "unis.docx", doc)
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if f.Data != nil || f.Size != int64(len(doc)) {
		t.Fatalf("uploaded = %+v", f)
	}
	if _, err := svc.UploadFile(ctx, "broken.docx", []byte("not a zip")); err != nil {
		t.Fatalf("UploadFile broken: %v", err)
	}

	txt, err := svc.FilesText(ctx)
	if err != nil {
		t.Fatalf("FilesText: %v", err)
	}
	if txt != "FAST University\nBS Computer Science" {
		t.Fatalf("FilesText = %q", txt)
	}

	if err := svc.DeleteFile(ctx, f.ID.Hex()); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if len(files.items) != 1 {
		t.Fatalf("files left = %d", len(files.items))
	}
	if txt, _ := svc.FilesText(ctx); txt != "" {
		t.Fatalf("FilesText after delete = %q", txt)
	}
	if _, err := svc.GetFile(ctx, f.ID.Hex()); !utils.IsCode(err, utils.CodeNotFound) {
		t.Fatalf("GetFile deleted err = %v", err)
	}
}

func TestReference_SeedOnlyFillsEmpty(t *testing.T) {
	ctx := context.Background()
	svc, qs, mat, _ := newReference(t)

	d := &seed.Data{
		Questions: []seed.Question{{Field: "full_name", Type: "name", Question: "Name?"}},
		Material:  "seeded",
	}
	if err := svc.Seed(ctx, d); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := svc.Seed(ctx, d); err != nil {
		t.Fatalf("Seed again: %v", err)
	}
	if len(qs.items) != 1 {
		t.Fatalf("questions = %d, want 1", len(qs.items))
	}
	if mat.m == nil || mat.m.Content != "seeded" {
		t.Fatalf("material = %+v", mat.m)
	}
	got, _ := svc.Questions(ctx)
	if len(got) != 1 || got[0].Type != "name" {
		t.Fatalf("questions after seed = %+v", got)
	}
}

func TestReference_SharedLoadIgnoresCallerCancellation(t *testing.T) {
	svc, _, _, _ := newReference(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := cached(ctx, svc, "test:key", func(ctx context.Context) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "loaded", nil
	})
	if err != nil || got != "loaded" {
		t.Fatalf("cached = %q, %v", got, err)
	}
}

package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/yoockh/admission/internal/models"
	"github.com/yoockh/admission/internal/utils"
)

func newStudentSvc() (StudentService, *fakeStudents, *memUploader, TokenIssuer) {
	students := newFakeStudents()
	up := &memUploader{}
	tokens := NewTokenIssuer("test-secret", time.Hour)
	return NewStudentService(students, up, tokens), students, up, tokens
}

func TestStudent_SignupAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, students, _, tokens := newStudentSvc()

	id, err := svc.Signup(ctx, "Sara Khan", " Sara@Example.com ", "pw123456")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if _, err := svc.Signup(ctx, "Other", "sara@example.com", "x"); !utils.IsCode(err, utils.CodeConflict) {
		t.Fatalf("duplicate signup err = %v", err)
	}
	// an interview record with the same email is not an account
	students.add(models.Student{FullName: "Interviewee", Email: "iv@example.com"})
	if _, err := svc.Signup(ctx, "Iv", "iv@example.com", "pw"); err != nil {
		t.Fatalf("signup over interview record: %v", err)
	}

	res, err := svc.Login(ctx, "sara@example.com", "pw123456")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.ID != id || res.Role != string(models.RoleStudent) {
		t.Fatalf("login = %+v", res)
	}
	claims, err := tokens.Parse(res.Token)
	if err != nil || claims.Subject != id || claims.Role != "student" {
		t.Fatalf("claims = %+v, %v", claims, err)
	}

	if _, err := svc.Login(ctx, "sara@example.com", "wrong"); !utils.IsCode(err, utils.CodeUnauthorized) {
		t.Fatalf("bad password err = %v", err)
	}
	if _, err := svc.Signup(ctx, "", "a@b.c", "x"); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("blank name err = %v", err)
	}
}

func TestStudent_RegisteredView(t *testing.T) {
	svc, students, _, _ := newStudentSvc()
	students.add(models.Student{
		FullName:       "Ali",
		MatricSubjects: []string{"Physics", "Maths"},
		Documents:      map[string]string{"idDocument": "a_idDocument_cnic.png"},
	})

	page, err := svc.ListRegistered(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("ListRegistered: %v", err)
	}
	if page.CurrentPage != 1 || page.PerPage != 10 || page.Total != 1 || page.TotalPages != 1 {
		t.Fatalf("page meta = %+v", page)
	}
	v := page.Students[0]
	if v.FullName != "Ali" || v.Nationality != "N/A" || v.MatricSubjects != "Physics, Maths" ||
		v.InterSubjects != "" || v.IDDocumentPath != "a_idDocument_cnic.png" || v.MasterTranscriptPath != "N/A" {
		t.Fatalf("view = %+v", v)
	}
}

func TestStudent_ProfileUpdateAndUpload(t *testing.T) {
	ctx := context.Background()
	svc, students, up, _ := newStudentSvc()
	id := students.add(models.Student{FullName: "Ali"}).Hex()

	name := "Ali Raza"
	modified, err := svc.UpdateProfile(ctx, id, models.StudentProfileUpdate{
		FullName:       &name,
		MatricSubjects: SplitList("Physics, , Maths ,"),
	})
	if err != nil || !modified {
		t.Fatalf("UpdateProfile = %v, %v", modified, err)
	}
	set := students.updates[0]
	if set["full_name"] != "Ali Raza" || strings.Join(set["matric_subjects"].([]string), "|") != "Physics|Maths" {
		t.Fatalf("set = %v", set)
	}
	if _, ok := set["dob"]; ok {
		t.Fatal("untouched field was written")
	}
	if _, err := svc.UpdateProfile(ctx, id, models.StudentProfileUpdate{}); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("empty update err = %v", err)
	}

	p, err := svc.UploadDocument(ctx, id, "idDocument", "../my cnic.png", "image/png", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("UploadDocument: %v", err)
	}
	want := id + "_idDocument_my_cnic.png"
	if p != "mem://"+want || up.files[want] != "img" || students.docs["idDocument"] != p {
		t.Fatalf("upload path = %q, docs = %v", p, students.docs)
	}

	for _, ft := range []string{"", "documents.x", "a$b"} {
		if _, err := svc.UploadDocument(ctx, id, ft, "f.png", "", strings.NewReader("")); !utils.IsCode(err, utils.CodeInvalidArgument) {
			t.Errorf("fileType %q err = %v", ft, err)
		}
	}

	view, err := svc.Profile(ctx, id)
	if err != nil || view.FullName != "Ali" || view.MatricTranscriptPath != "" {
		t.Fatalf("Profile = %+v, %v", view, err)
	}
}

type pageRecorder struct {
	*fakeStudents
	last utils.Page
}

func (r *pageRecorder) ListRegistered(ctx context.Context, search string, p utils.Page) ([]models.Student, int64, error) {
	r.last = p
	return r.fakeStudents.ListRegistered(ctx, search, p)
}

func TestStudent_RegisteredPageIsClamped(t *testing.T) {
	rec := &pageRecorder{fakeStudents: newFakeStudents()}
	svc := NewStudentService(rec, &memUploader{}, NewTokenIssuer("test-secret", time.Hour))

	if _, err := svc.ListRegistered(context.Background(), "", int(^uint(0)>>1)); err != nil {
		t.Fatalf("ListRegistered: %v", err)
	}
	if rec.last.Page != utils.MaxPage || rec.last.Skip() < 0 {
		t.Fatalf("page = %+v skip=%d", rec.last, rec.last.Skip())
	}
}

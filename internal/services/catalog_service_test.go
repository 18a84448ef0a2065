package services

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yoockh/admission/internal/models"
	"github.com/yoockh/admission/internal/utils"
)

type fakeUniversities struct {
	known map[string]bool
}

func (f fakeUniversities) Register(context.Context, RegisterUniversityInput) (string, error) {
	return "", nil
}
func (f fakeUniversities) Login(context.Context, string, string) (*AuthResult, *models.University, error) {
	return nil, nil, nil
}
func (f fakeUniversities) Get(context.Context, string) (*models.University, error) { return nil, nil }
func (f fakeUniversities) List(context.Context, string, utils.Page) (*UniversityPage, error) {
	return nil, nil
}
func (f fakeUniversities) EnsureExists(_ context.Context, id string) error {
	if !f.known[id] {
		return utils.E(utils.CodeNotFound, "test", "University not found", nil)
	}
	return nil
}

type fakeCampuses struct {
	items map[primitive.ObjectID]models.Campus
	sets  []bson.M
}

func (f *fakeCampuses) Create(_ context.Context, c *models.Campus) (primitive.ObjectID, error) {
	c.ID = primitive.NewObjectID()
	f.items[c.ID] = *c
	return c.ID, nil
}

func (f *fakeCampuses) GetByID(_ context.Context, id primitive.ObjectID) (*models.Campus, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &c, nil
}

func (f *fakeCampuses) ListByUniversity(_ context.Context, uid string) ([]models.Campus, error) {
	out := []models.Campus{}
	for _, c := range f.items {
		if c.UniversityID == uid {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCampuses) Update(_ context.Context, id primitive.ObjectID, set bson.M) error {
	if _, ok := f.items[id]; !ok {
		return utils.ErrNotFound
	}
	f.sets = append(f.sets, set)
	return nil
}

func (f *fakeCampuses) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.items[id]; !ok {
		return utils.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeCampuses) Count(context.Context) (int64, error) { return int64(len(f.items)), nil }

func TestCatalog_CampusLifecycle(t *testing.T) {
	ctx := context.Background()
	uni := primitive.NewObjectID().Hex()
	other := primitive.NewObjectID().Hex()
	repo := &fakeCampuses{items: map[primitive.ObjectID]models.Campus{}}
	svc := NewCatalogService(CampusKind, repo, fakeUniversities{known: map[string]bool{uni: true, other: true}})

	owner := Actor{ID: uni, Role: models.RoleUniversity}
	stranger := Actor{ID: other, Role: models.RoleUniversity}
	admin := Actor{ID: "x", Role: models.RoleAdmin}

	_, err := svc.Create(ctx, owner, &models.Campus{UniversityID: uni, Name: "Main", Address: "Road 1"})
	if !utils.IsCode(err, utils.CodeInvalidArgument) || utils.MessageOf(err) != "Missing required field: contact" {
		t.Fatalf("missing contact err = %v", err)
	}
	if _, err := svc.Create(ctx, stranger, &models.Campus{UniversityID: uni, Name: "M", Address: "A", Contact: "C"}); !utils.IsCode(err, utils.CodeForbidden) {
		t.Fatalf("stranger create err = %v", err)
	}
	ghost := primitive.NewObjectID().Hex()
	if _, err := svc.Create(ctx, admin, &models.Campus{UniversityID: ghost, Name: "M", Address: "A", Contact: "C"}); !utils.IsCode(err, utils.CodeNotFound) {
		t.Fatalf("unknown university err = %v", err)
	}

	id, err := svc.Create(ctx, owner, &models.Campus{UniversityID: uni, Name: "Main", Address: "Road 1", Contact: "042"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := svc.Get(ctx, id)
	if err != nil || got.CreatedAt.IsZero() {
		t.Fatalf("Get = %+v, %v", got, err)
	}

	list, err := svc.ListByUniversity(ctx, uni)
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %v, %v", list, err)
	}
	if _, err := svc.ListByUniversity(ctx, ghost); !utils.IsCode(err, utils.CodeNotFound) {
		t.Fatalf("list unknown university err = %v", err)
	}

	// universityId may be omitted on update; the stored owner is kept
	if err := svc.Update(ctx, owner, id, &models.Campus{Name: "City", Address: "Road 2", Contact: "043"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if repo.sets[0]["name"] != "City" {
		t.Fatalf("set = %v", repo.sets[0])
	}
	if err := svc.Update(ctx, owner, id, &models.Campus{Name: "City"}); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("partial update err = %v", err)
	}
	if err := svc.Update(ctx, stranger, id, &models.Campus{Name: "X", Address: "Y", Contact: "Z"}); !utils.IsCode(err, utils.CodeForbidden) {
		t.Fatalf("stranger update err = %v", err)
	}

	if err := svc.Delete(ctx, admin, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, admin, id); !utils.IsCode(err, utils.CodeNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
	if err := svc.Delete(ctx, admin, "zzz"); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("bad id err = %v", err)
	}
}

func TestKinds_RequiredFields(t *testing.T) {
	if f := ProgramKind.Missing(&models.Program{UniversityID: "u", Title: "BS", Campus: "c", Department: "d", Duration: "4y"}); f != "fees" {
		t.Errorf("program missing = %q", f)
	}
	if f := ProgramKind.Missing(&models.Program{UniversityID: "u", Title: "BS", Campus: "c", Department: "d", Duration: "4y", Fees: "1"}); f != "" {
		t.Errorf("program without description missing = %q", f)
	}
	if f := FacultyKind.Missing(&models.Faculty{UniversityID: "u", Name: "n", Designation: "d", Campus: "c", Department: "d"}); f != "email" {
		t.Errorf("faculty missing = %q", f)
	}
	if f := DepartmentKind.Missing(&models.Department{Name: "n"}); f != "universityId" {
		t.Errorf("department missing = %q", f)
	}
}

package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/yoockh/admission/internal/models"
	mongorepo "github.com/yoockh/admission/internal/repositories/mongo"
	"github.com/yoockh/admission/internal/utils"
)

// Actor is the authenticated caller of a write.
type Actor struct {
	ID   string
	Role models.Role
}

// CanManage reports whether the actor may write records of the given university.
func (a Actor) CanManage(universityID string) bool {
	return a.Role == models.RoleAdmin || (a.Role == models.RoleUniversity && a.ID == universityID)
}

// Kind describes one university-owned resource: its label, required fields and updatable set.
type Kind[T any] struct {
	Label      string
	University func(*T) string
	Own        func(*T, string)
	// Missing returns the first required field left blank.
	Missing func(*T) string
	Fields  func(*T) bson.M
	Stamp   func(*T, time.Time)
}

type CatalogService[T any] interface {
	Create(ctx context.Context, actor Actor, doc *T) (string, error)
	Get(ctx context.Context, id string) (*T, error)
	ListByUniversity(ctx context.Context, universityID string) ([]T, error)
	Update(ctx context.Context, actor Actor, id string, doc *T) error
	Delete(ctx context.Context, actor Actor, id string) error
}

type catalogService[T any] struct {
	kind         Kind[T]
	repo         mongorepo.ChildRepository[T]
	universities UniversityService
}

func NewCatalogService[T any](kind Kind[T], repo mongorepo.ChildRepository[T], universities UniversityService) CatalogService[T] {
	return &catalogService[T]{kind: kind, repo: repo, universities: universities}
}

func (s *catalogService[T]) op(m string) string { return s.kind.Label + "Service." + m }

func (s *catalogService[T]) Create(ctx context.Context, actor Actor, doc *T) (string, error) {
	op := s.op("Create")

	if f := s.kind.Missing(doc); f != "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "Missing required field: "+f, nil)
	}
	uid := s.kind.University(doc)
	if !actor.CanManage(uid) {
		return "", utils.E(utils.CodeForbidden, op, "forbidden", nil)
	}
	if err := s.universities.EnsureExists(ctx, uid); err != nil {
		return "", err
	}

	s.kind.Stamp(doc, time.Now().UTC())
	id, err := s.repo.Create(ctx, doc)
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to create "+s.kind.Label, err)
	}
	return id.Hex(), nil
}

func (s *catalogService[T]) Get(ctx context.Context, id string) (*T, error) {
	op := s.op("Get")

	oid, err := mongorepo.ParseID(id)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid "+s.kind.Label+" id", err)
	}
	doc, err := s.repo.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, s.kind.Label+" not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get "+s.kind.Label, err)
	}
	return doc, nil
}

func (s *catalogService[T]) ListByUniversity(ctx context.Context, universityID string) ([]T, error) {
	op := s.op("ListByUniversity")

	if err := s.universities.EnsureExists(ctx, universityID); err != nil {
		return nil, err
	}
	out, err := s.repo.ListByUniversity(ctx, universityID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list "+s.kind.Label, err)
	}
	return out, nil
}

// authorize loads the stored record and checks the actor owns its university.
func (s *catalogService[T]) authorize(ctx context.Context, op string, actor Actor, id string) (*T, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(s.kind.University(cur)) {
		return nil, utils.E(utils.CodeForbidden, op, "forbidden", nil)
	}
	return cur, nil
}

func (s *catalogService[T]) Update(ctx context.Context, actor Actor, id string, doc *T) error {
	op := s.op("Update")

	oid, err := mongorepo.ParseID(id)
	if err != nil {
		return utils.E(utils.CodeInvalidArgument, op, "invalid "+s.kind.Label+" id", err)
	}
	cur, err := s.authorize(ctx, op, actor, id)
	if err != nil {
		return err
	}
	// records never move between universities
	s.kind.Own(doc, s.kind.University(cur))
	if f := s.kind.Missing(doc); f != "" {
		return utils.E(utils.CodeInvalidArgument, op, "Missing required field: "+f, nil)
	}
	if err := s.repo.Update(ctx, oid, s.kind.Fields(doc)); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, s.kind.Label+" not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to update "+s.kind.Label, err)
	}
	return nil
}

func (s *catalogService[T]) Delete(ctx context.Context, actor Actor, id string) error {
	op := s.op("Delete")

	oid, err := mongorepo.ParseID(id)
	if err != nil {
		return utils.E(utils.CodeInvalidArgument, op, "invalid "+s.kind.Label+" id", err)
	}
	if _, err := s.authorize(ctx, op, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, oid); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, s.kind.Label+" not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete "+s.kind.Label, err)
	}
	return nil
}

var CampusKind = Kind[models.Campus]{
	Label:      "Campus",
	University: func(c *models.Campus) string { return c.UniversityID },
	Own:        func(c *models.Campus, id string) { c.UniversityID = id },
	Missing: func(c *models.Campus) string {
		return firstBlank("universityId", c.UniversityID, "name", c.Name, "address", c.Address, "contact", c.Contact)
	},
	Fields: func(c *models.Campus) bson.M {
		return bson.M{"name": c.Name, "address": c.Address, "contact": c.Contact}
	},
	Stamp: func(c *models.Campus, t time.Time) { c.CreatedAt = t },
}

var DepartmentKind = Kind[models.Department]{
	Label:      "Department",
	University: func(d *models.Department) string { return d.UniversityID },
	Own:        func(d *models.Department, id string) { d.UniversityID = id },
	Missing: func(d *models.Department) string {
		return firstBlank("universityId", d.UniversityID, "name", d.Name, "campus", d.Campus, "description", d.Description)
	},
	Fields: func(d *models.Department) bson.M {
		return bson.M{"name": d.Name, "campus": d.Campus, "description": d.Description}
	},
	Stamp: func(d *models.Department, t time.Time) { d.CreatedAt = t },
}

var ProgramKind = Kind[models.Program]{
	Label:      "Program",
	University: func(p *models.Program) string { return p.UniversityID },
	Own:        func(p *models.Program, id string) { p.UniversityID = id },
	Missing: func(p *models.Program) string {
		return firstBlank("universityId", p.UniversityID, "title", p.Title, "campus", p.Campus,
			"department", p.Department, "duration", p.Duration, "fees", p.Fees)
	},
	Fields: func(p *models.Program) bson.M {
		return bson.M{
			"title": p.Title, "campus": p.Campus, "department": p.Department,
			"duration": p.Duration, "fees": p.Fees, "description": p.Description,
		}
	},
	Stamp: func(p *models.Program, t time.Time) { p.CreatedAt = t },
}

var FacultyKind = Kind[models.Faculty]{
	Label:      "Faculty",
	University: func(f *models.Faculty) string { return f.UniversityID },
	Own:        func(f *models.Faculty, id string) { f.UniversityID = id },
	Missing: func(f *models.Faculty) string {
		return firstBlank("universityId", f.UniversityID, "name", f.Name, "designation", f.Designation,
			"campus", f.Campus, "department", f.Department, "email", f.Email)
	},
	Fields: func(f *models.Faculty) bson.M {
		return bson.M{
			"name": f.Name, "designation": f.Designation, "campus": f.Campus,
			"department": f.Department, "email": f.Email,
		}
	},
	Stamp: func(f *models.Faculty, t time.Time) { f.CreatedAt = t },
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"

	"github.com/yoockh/admission/internal/models"
	mongorepo "github.com/yoockh/admission/internal/repositories/mongo"
	"github.com/yoockh/admission/internal/utils"
)

type AdminInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SubAdminInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type AdminService interface {
	ListAdmins(ctx context.Context) ([]models.Admin, error)
	GetAdmin(ctx context.Context, id string) (*models.Admin, error)
	CreateAdmin(ctx context.Context, in AdminInput) (*models.Admin, error)
	UpdateAdmin(ctx context.Context, id string, in AdminInput) (*models.Admin, error)
	DeleteAdmin(ctx context.Context, id string) (*models.Admin, error)
	Login(ctx context.Context, email, password string) (*AuthResult, *models.Admin, error)
	// Bootstrap creates the first admin when none exists.
	Bootstrap(ctx context.Context, email, password string) error

	ListSubAdmins(ctx context.Context) ([]models.SubAdmin, error)
	GetSubAdmin(ctx context.Context, id string) (*models.SubAdmin, error)
	CreateSubAdmin(ctx context.Context, in SubAdminInput) (*models.SubAdmin, error)
	UpdateSubAdmin(ctx context.Context, id string, in SubAdminInput) (*models.SubAdmin, error)
	DeleteSubAdmin(ctx context.Context, id string) (*models.SubAdmin, error)
}

type adminService struct {
	admins    mongorepo.AdminRepository
	subadmins mongorepo.SubAdminRepository
	tokens    TokenIssuer
	log       *logrus.Logger
}

func NewAdminService(admins mongorepo.AdminRepository, subadmins mongorepo.SubAdminRepository, tokens TokenIssuer, log *logrus.Logger) AdminService {
	return &adminService{admins: admins, subadmins: subadmins, tokens: tokens, log: log}
}

func (s *adminService) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	const op = "AdminService.ListAdmins"

	out, err := s.admins.List(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list admins", err)
	}
	return out, nil
}

func (s *adminService) GetAdmin(ctx context.Context, id string) (*models.Admin, error) {
	const op = "AdminService.GetAdmin"

	oid, err := mongorepo.ParseID(id)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Invalid admin ID", err)
	}
	a, err := s.admins.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Admin not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get admin", err)
	}
	return a, nil
}

func (s *adminService) CreateAdmin(ctx context.Context, in AdminInput) (*models.Admin, error) {
	const op = "AdminService.CreateAdmin"

	in.Name, in.Email = strings.TrimSpace(in.Name), normEmail(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Name, email and password are required", nil)
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, utils.HashError(op, err)
	}

	a := &models.Admin{Name: in.Name, Email: in.Email, PasswordHash: hash, CreatedAt: time.Now().UTC()}
	if _, err := s.admins.Create(ctx, a); err != nil {
		if errors.Is(err, utils.ErrDuplicate) {
			return nil, utils.E(utils.CodeConflict, op, "Admin with this email already exists", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to create admin", err)
	}
	a.PasswordHash = ""
	return a, nil
}

func (s *adminService) UpdateAdmin(ctx context.Context, id string, in AdminInput) (*models.Admin, error) {
	const op = "AdminService.UpdateAdmin"

	oid, err := mongorepo.ParseID(id)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Invalid admin ID", err)
	}
	in.Name, in.Email = strings.TrimSpace(in.Name), normEmail(in.Email)
	if in.Name == "" || in.Email == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Name and email are required", nil)
	}

	set := bson.M{"name": in.Name, "email": in.Email}
	if in.Password != "" {
		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			return nil, utils.HashError(op, err)
		}
		set["password"] = hash
	}
	if err := s.admins.Update(ctx, oid, set); err != nil {
		switch {
		case errors.Is(err, utils.ErrNotFound):
			return nil, utils.E(utils.CodeNotFound, op, "Admin not found", err)
		case errors.Is(err, utils.ErrDuplicate):
			return nil, utils.E(utils.CodeConflict, op, "Admin with this email already exists", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to update admin", err)
	}
	return s.GetAdmin(ctx, id)
}

func (s *adminService) DeleteAdmin(ctx context.Context, id string) (*models.Admin, error) {
	const op = "AdminService.DeleteAdmin"

	oid, err := mongorepo.ParseID(id)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Invalid admin ID", err)
	}
	a, err := s.admins.Delete(ctx, oid)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Admin not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to delete admin", err)
	}
	return a, nil
}

func (s *adminService) Login(ctx context.Context, email, password string) (*AuthResult, *models.Admin, error) {
	const op = "AdminService.Login"

	email = normEmail(email)
	if email == "" || password == "" {
		return nil, nil, utils.E(utils.CodeInvalidArgument, op, "Email and password are required", nil)
	}
	a, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, nil, utils.E(utils.CodeNotFound, op, "Admin not found", err)
		}
		return nil, nil, utils.E(utils.CodeInternal, op, "failed to get admin", err)
	}
	if err := utils.CheckPassword(a.PasswordHash, password); err != nil {
		return nil, nil, utils.E(utils.CodeUnauthorized, op, "Invalid credentials", err)
	}

	tok, err := s.tokens.Issue(a.ID.Hex(), models.RoleAdmin, a.Email)
	if err != nil {
		return nil, nil, utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}
	a.PasswordHash = ""
	return &AuthResult{Token: tok, ID: a.ID.Hex(), Name: a.Name, Email: a.Email, Role: string(models.RoleAdmin)}, a, nil
}

func (s *adminService) Bootstrap(ctx context.Context, email, password string) error {
	const op = "AdminService.Bootstrap"

	if email == "" || password == "" {
		return nil
	}
	n, err := s.admins.Count(ctx)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to count admins", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := s.CreateAdmin(ctx, AdminInput{Name: "Super Admin", Email: email, Password: password}); err != nil {
		if utils.IsCode(err, utils.CodeConflict) {
			return nil
		}
		return err
	}
	s.log.WithField("email", normEmail(email)).Info("bootstrap admin created")
	return nil
}

func (s *adminService) ListSubAdmins(ctx context.Context) ([]models.SubAdmin, error) {
	const op = "AdminService.ListSubAdmins"

	out, err := s.subadmins.List(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list sub-admins", err)
	}
	return out, nil
}

func (s *adminService) GetSubAdmin(ctx context.Context, id string) (*models.SubAdmin, error) {
	const op = "AdminService.GetSubAdmin"

	oid, err := mongorepo.ParseID(id)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Invalid sub-admin ID", err)
	}
	out, err := s.subadmins.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Sub-admin not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get sub-admin", err)
	}
	return out, nil
}

func (in SubAdminInput) trimmed() (SubAdminInput, bool) {
	in.Name, in.Description = strings.TrimSpace(in.Name), strings.TrimSpace(in.Description)
	return in, in.Name != "" && in.Description != ""
}

func (s *adminService) CreateSubAdmin(ctx context.Context, in SubAdminInput) (*models.SubAdmin, error) {
	const op = "AdminService.CreateSubAdmin"

	in, ok := in.trimmed()
	if !ok {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Name and description are required", nil)
	}
	sa := &models.SubAdmin{Name: in.Name, Description: in.Description, CreatedAt: time.Now().UTC()}
	if _, err := s.subadmins.Create(ctx, sa); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create sub-admin", err)
	}
	return sa, nil
}

func (s *adminService) UpdateSubAdmin(ctx context.Context, id string, in SubAdminInput) (*models.SubAdmin, error) {
	const op = "AdminService.UpdateSubAdmin"

	oid, err := mongorepo.ParseID(id)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Invalid sub-admin ID", err)
	}
	in, ok := in.trimmed()
	if !ok {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Name and description are required", nil)
	}
	if err := s.subadmins.Update(ctx, oid, bson.M{"name": in.Name, "description": in.Description}); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Sub-admin not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to update sub-admin", err)
	}
	return s.GetSubAdmin(ctx, id)
}

func (s *adminService) DeleteSubAdmin(ctx context.Context, id string) (*models.SubAdmin, error) {
	const op = "AdminService.DeleteSubAdmin"

	oid, err := mongorepo.ParseID(id)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Invalid sub-admin ID", err)
	}
	out, err := s.subadmins.Delete(ctx, oid)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Sub-admin not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to delete sub-admin", err)
	}
	return out, nil
}

// Counter is anything that can count its collection.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type DashboardCounters struct {
	Universities, SubAdmins, Students        Counter
	Campuses, Departments, Faculty, Programs Counter
}

type DashboardService interface {
	Counts(ctx context.Context) (*models.DashboardCounts, error)
	UniversityCounts(ctx context.Context) (*models.UniversityDashboardCounts, error)
}

type dashboardService struct {
	c DashboardCounters
}

func NewDashboardService(c DashboardCounters) DashboardService {
	return &dashboardService{c: c}
}

// countAll runs the counters concurrently, writing each result into its slot.
func countAll(ctx context.Context, pairs map[*int64]Counter) error {
	g, ctx := errgroup.WithContext(ctx)
	for dst, c := range pairs {
		g.Go(func() error {
			n, err := c.Count(ctx)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	return g.Wait()
}

// Counts reports the admins figure from sub-admins; the dashboard lists sub-admins as admins.
func (s *dashboardService) Counts(ctx context.Context) (*models.DashboardCounts, error) {
	const op = "DashboardService.Counts"

	var out models.DashboardCounts
	err := countAll(ctx, map[*int64]Counter{
		&out.Universities: s.c.Universities,
		&out.Admins:       s.c.SubAdmins,
		&out.Students:     s.c.Students,
	})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count records", err)
	}
	return &out, nil
}

func (s *dashboardService) UniversityCounts(ctx context.Context) (*models.UniversityDashboardCounts, error) {
	const op = "DashboardService.UniversityCounts"

	var out models.UniversityDashboardCounts
	err := countAll(ctx, map[*int64]Counter{
		&out.Students:    s.c.Students,
		&out.Campuses:    s.c.Campuses,
		&out.Departments: s.c.Departments,
		&out.Faculty:     s.c.Faculty,
		&out.Programs:    s.c.Programs,
	})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count records", err)
	}
	return &out, nil
}

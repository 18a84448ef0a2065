package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yoockh/admission/internal/models"
	mongorepo "github.com/yoockh/admission/internal/repositories/mongo"
	"github.com/yoockh/admission/internal/utils"
)

type UniversityPage struct {
	Universities []models.University `json:"universities"`
	Total        int64               `json:"total"`
	Page         int                 `json:"page"`
	PerPage      int                 `json:"per_page"`
	TotalPages   int                 `json:"total_pages"`
}

type RegisterUniversityInput struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contactPerson"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Address       string `json:"address"`
	Website       string `json:"website"`
	Description   string `json:"description"`
}

type UniversityService interface {
	Register(ctx context.Context, in RegisterUniversityInput) (string, error)
	Login(ctx context.Context, email, password string) (*AuthResult, *models.University, error)
	Get(ctx context.Context, id string) (*models.University, error)
	List(ctx context.Context, search string, p utils.Page) (*UniversityPage, error)
	// EnsureExists reports NOT_FOUND for unknown or malformed university ids.
	EnsureExists(ctx context.Context, id string) error
}

type universityService struct {
	universities mongorepo.UniversityRepository
	tokens       TokenIssuer
}

func NewUniversityService(universities mongorepo.UniversityRepository, tokens TokenIssuer) UniversityService {
	return &universityService{universities: universities, tokens: tokens}
}

func (s *universityService) Register(ctx context.Context, in RegisterUniversityInput) (string, error) {
	const op = "UniversityService.Register"

	in.Email = normEmail(in.Email)
	if f := firstBlank(
		"name", in.Name,
		"contactPerson", in.ContactPerson,
		"email", in.Email,
		"password", in.Password,
		"address", in.Address,
	); f != "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "Missing required field: "+f, nil)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return "", utils.HashError(op, err)
	}
	u := &models.University{
		Name:          strings.TrimSpace(in.Name),
		ContactPerson: strings.TrimSpace(in.ContactPerson),
		Email:         in.Email,
		PasswordHash:  hash,
		Address:       strings.TrimSpace(in.Address),
		Website:       strings.TrimSpace(in.Website),
		Description:   strings.TrimSpace(in.Description),
		CreatedAt:     time.Now().UTC(),
	}
	id, err := s.universities.Create(ctx, u)
	if err != nil {
		if errors.Is(err, utils.ErrDuplicate) {
			return "", utils.E(utils.CodeConflict, op, "University with this email already exists", err)
		}
		return "", utils.E(utils.CodeInternal, op, "failed to register university", err)
	}
	return id.Hex(), nil
}

func (s *universityService) Login(ctx context.Context, email, password string) (*AuthResult, *models.University, error) {
	const op = "UniversityService.Login"

	email = normEmail(email)
	if email == "" || password == "" {
		return nil, nil, utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}
	u, err := s.universities.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, nil, utils.E(utils.CodeUnauthorized, op, "Invalid email or password", err)
		}
		return nil, nil, utils.E(utils.CodeInternal, op, "failed to get university", err)
	}
	if err := utils.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, nil, utils.E(utils.CodeUnauthorized, op, "Invalid email or password", err)
	}

	tok, err := s.tokens.Issue(u.ID.Hex(), models.RoleUniversity, u.Email)
	if err != nil {
		return nil, nil, utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}
	return &AuthResult{Token: tok, ID: u.ID.Hex(), Name: u.Name, Email: u.Email, Role: string(models.RoleUniversity)}, u, nil
}

func (s *universityService) Get(ctx context.Context, id string) (*models.University, error) {
	const op = "UniversityService.Get"

	oid, err := mongorepo.ParseID(id)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid university id", err)
	}
	u, err := s.universities.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "University not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get university", err)
	}
	return u, nil
}

func (s *universityService) List(ctx context.Context, search string, p utils.Page) (*UniversityPage, error) {
	const op = "UniversityService.List"

	rows, total, err := s.universities.List(ctx, search, p)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list universities", err)
	}
	return &UniversityPage{
		Universities: rows,
		Total:        total,
		Page:         p.Page,
		PerPage:      p.PerPage,
		TotalPages:   utils.TotalPages(total, p.PerPage),
	}, nil
}

func (s *universityService) EnsureExists(ctx context.Context, id string) error {
	const op = "UniversityService.EnsureExists"

	oid, err := mongorepo.ParseID(id)
	if err != nil {
		return utils.E(utils.CodeNotFound, op, "University not found", err)
	}
	ok, err := s.universities.Exists(ctx, oid)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to check university", err)
	}
	if !ok {
		return utils.E(utils.CodeNotFound, op, "University not found", nil)
	}
	return nil
}

// firstBlank takes name/value pairs and returns the first name whose value is blank.
func firstBlank(pairs ...string) string {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return pairs[i]
		}
	}
	return ""
}

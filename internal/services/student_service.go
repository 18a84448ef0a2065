package services

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/yoockh/admission/internal/models"
	mongorepo "github.com/yoockh/admission/internal/repositories/mongo"
	"github.com/yoockh/admission/internal/storage"
	"github.com/yoockh/admission/internal/utils"
)

const notAvailable = "N/A"

type StudentPage struct {
	Students    []models.Student `json:"students"`
	Total       int64            `json:"totalRecords"`
	CurrentPage int              `json:"currentPage"`
	PerPage     int              `json:"perPage"`
	TotalPages  int              `json:"totalPages"`
}

// StudentView is the camelCase shape the profile pages consume.
type StudentView struct {
	ID                     string `json:"_id"`
	FullName               string `json:"fullName"`
	Email                  string `json:"email"`
	DOB                    string `json:"dob"`
	Gender                 string `json:"gender"`
	Nationality            string `json:"nationality"`
	Address                string `json:"address"`
	ContactNumber          string `json:"contactNumber"`
	AppliedUniversity      string `json:"appliedUniversity"`
	AppliedCampus          string `json:"appliedCampus"`
	AppliedProgram         string `json:"appliedProgram"`
	MatricBoard            string `json:"matricBoard"`
	MatricYear             string `json:"matricYear"`
	MatricMarks            string `json:"matricMarks"`
	MatricSubjects         string `json:"matricSubjects"`
	InterBoard             string `json:"interBoard"`
	InterYear              string `json:"interYear"`
	InterMarks             string `json:"interMarks"`
	InterSubjects          string `json:"interSubjects"`
	BachelorUni            string `json:"bachelorUni"`
	BachelorYear           string `json:"bachelorYear"`
	BachelorMarks          string `json:"bachelorMarks"`
	BachelorMajor          string `json:"bachelorMajor"`
	MasterUni              string `json:"masterUni"`
	MasterYear             string `json:"masterYear"`
	MasterMarks            string `json:"masterMarks"`
	MasterMajor            string `json:"masterMajor"`
	IDDocumentPath         string `json:"idDocumentPath"`
	MatricTranscriptPath   string `json:"matricTranscriptPath"`
	InterTranscriptPath    string `json:"interTranscriptPath"`
	BachelorTranscriptPath string `json:"bachelorTranscriptPath"`
	MasterTranscriptPath   string `json:"masterTranscriptPath"`
}

type RegisteredPage struct {
	Students    []StudentView `json:"students"`
	Total       int64         `json:"totalRecords"`
	CurrentPage int           `json:"currentPage"`
	PerPage     int           `json:"perPage"`
	TotalPages  int           `json:"totalPages"`
}

type AuthResult struct {
	Token string `json:"token"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type StudentService interface {
	Signup(ctx context.Context, name, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	List(ctx context.Context, search string, p utils.Page) (*StudentPage, error)
	ListRegistered(ctx context.Context, search string, page int) (*RegisteredPage, error)
	Profile(ctx context.Context, id string) (*StudentView, error)
	UpdateProfile(ctx context.Context, id string, in models.StudentProfileUpdate) (modified bool, err error)
	UploadDocument(ctx context.Context, id, fileType, filename, contentType string, r io.Reader) (string, error)
}

type studentService struct {
	students mongorepo.StudentRepository
	uploader storage.Uploader
	tokens   TokenIssuer
}

func NewStudentService(students mongorepo.StudentRepository, uploader storage.Uploader, tokens TokenIssuer) StudentService {
	return &studentService{students: students, uploader: uploader, tokens: tokens}
}

func normEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (s *studentService) Signup(ctx context.Context, name, email, password string) (string, error) {
	const op = "StudentService.Signup"

	name, email = strings.TrimSpace(name), normEmail(email)
	if name == "" || email == "" || password == "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "name, email and password are required", nil)
	}

	if _, err := s.students.GetAccountByEmail(ctx, email); err == nil {
		return "", utils.E(utils.CodeConflict, op, "Email already exists", nil)
	} else if !errors.Is(err, utils.ErrNotFound) {
		return "", utils.E(utils.CodeInternal, op, "failed to check email", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return "", utils.HashError(op, err)
	}
	id, err := s.students.Create(ctx, &models.Student{FullName: name, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, utils.ErrDuplicate) {
			return "", utils.E(utils.CodeConflict, op, "Email already exists", err)
		}
		return "", utils.E(utils.CodeInternal, op, "failed to create student", err)
	}
	return id.Hex(), nil
}

func (s *studentService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	const op = "StudentService.Login"

	email = normEmail(email)
	if email == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}
	st, err := s.students.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeUnauthorized, op, "Invalid email or password", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get student", err)
	}
	if err := utils.CheckPassword(st.PasswordHash, password); err != nil {
		return nil, utils.E(utils.CodeUnauthorized, op, "Invalid email or password", err)
	}

	tok, err := s.tokens.Issue(st.ID.Hex(), models.RoleStudent, st.Email)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}
	return &AuthResult{Token: tok, ID: st.ID.Hex(), Name: st.FullName, Email: st.Email, Role: string(models.RoleStudent)}, nil
}

func (s *studentService) List(ctx context.Context, search string, p utils.Page) (*StudentPage, error) {
	const op = "StudentService.List"

	rows, total, err := s.students.List(ctx, search, p)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list students", err)
	}
	return &StudentPage{
		Students:    rows,
		Total:       total,
		CurrentPage: p.Page,
		PerPage:     p.PerPage,
		TotalPages:  utils.TotalPages(total, p.PerPage),
	}, nil
}

func (s *studentService) ListRegistered(ctx context.Context, search string, page int) (*RegisteredPage, error) {
	const op = "StudentService.ListRegistered"

	p := utils.Page{Page: min(max(page, 1), utils.MaxPage), PerPage: utils.DefaultPerPage}
	rows, total, err := s.students.ListRegistered(ctx, search, p)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list registered students", err)
	}

	out := make([]StudentView, len(rows))
	for i := range rows {
		out[i] = viewOf(&rows[i], notAvailable)
	}
	return &RegisteredPage{
		Students:    out,
		Total:       total,
		CurrentPage: p.Page,
		PerPage:     p.PerPage,
		TotalPages:  utils.TotalPages(total, p.PerPage),
	}, nil
}

func (s *studentService) Profile(ctx context.Context, id string) (*StudentView, error) {
	const op = "StudentService.Profile"

	oid, err := mongorepo.ParseID(id)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid student id", err)
	}
	st, err := s.students.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Student not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get student", err)
	}
	v := viewOf(st, "")
	return &v, nil
}

// viewOf flattens a student; empty values become def and list values are joined.
func viewOf(st *models.Student, def string) StudentView {
	or := func(v string) string {
		if v == "" {
			return def
		}
		return v
	}
	doc := func(k string) string { return or(st.Documents[k]) }
	join := func(v []string) string { return strings.Join(v, ", ") }

	return StudentView{
		ID:                     st.ID.Hex(),
		FullName:               or(st.FullName),
		Email:                  or(st.Email),
		DOB:                    or(st.DOB),
		Gender:                 or(st.Gender),
		Nationality:            or(st.Nationality),
		Address:                or(st.Address),
		ContactNumber:          or(st.ContactNumber),
		AppliedUniversity:      or(st.AppliedUniversity),
		AppliedCampus:          or(st.AppliedCampus),
		AppliedProgram:         or(st.AppliedProgram),
		MatricBoard:            or(st.MatricBoard),
		MatricYear:             or(st.MatricYear),
		MatricMarks:            or(st.MatricMarks),
		MatricSubjects:         join(st.MatricSubjects),
		InterBoard:             or(st.InterBoard),
		InterYear:              or(st.InterYear),
		InterMarks:             or(st.InterMarks),
		InterSubjects:          join(st.InterSubjects),
		BachelorUni:            or(st.BachelorUni),
		BachelorYear:           or(st.BachelorYear),
		BachelorMarks:          or(st.BachelorMarks),
		BachelorMajor:          join(st.BachelorMajor),
		MasterUni:              or(st.MasterUni),
		MasterYear:             or(st.MasterYear),
		MasterMarks:            or(st.MasterMarks),
		MasterMajor:            join(st.MasterMajor),
		IDDocumentPath:         doc("idDocument"),
		MatricTranscriptPath:   doc("matricTranscript"),
		InterTranscriptPath:    doc("interTranscript"),
		BachelorTranscriptPath: doc("bachelorTranscript"),
		MasterTranscriptPath:   doc("masterTranscript"),
	}
}

// SplitList splits a comma separated form value, dropping blanks.
func SplitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func profileSet(in models.StudentProfileUpdate) bson.M {
	set := bson.M{}
	str := func(key string, v *string) {
		if v != nil {
			set[key] = strings.TrimSpace(*v)
		}
	}
	list := func(key string, v []string) {
		if v != nil {
			set[key] = v
		}
	}
	str("full_name", in.FullName)
	str("dob", in.DOB)
	str("gender", in.Gender)
	str("nationality", in.Nationality)
	str("address", in.Address)
	str("contact_number", in.ContactNumber)
	str("applied_university", in.AppliedUniversity)
	str("applied_campus", in.AppliedCampus)
	str("applied_program", in.AppliedProgram)
	str("matric_board", in.MatricBoard)
	str("matric_year", in.MatricYear)
	str("matric_marks", in.MatricMarks)
	list("matric_subjects", in.MatricSubjects)
	str("inter_board", in.InterBoard)
	str("inter_year", in.InterYear)
	str("inter_marks", in.InterMarks)
	list("inter_subjects", in.InterSubjects)
	str("bachelor_uni", in.BachelorUni)
	str("bachelor_year", in.BachelorYear)
	str("bachelor_marks", in.BachelorMarks)
	list("bachelor_major", in.BachelorMajor)
	str("master_uni", in.MasterUni)
	str("master_year", in.MasterYear)
	str("master_marks", in.MasterMarks)
	list("master_major", in.MasterMajor)
	return set
}

func (s *studentService) UpdateProfile(ctx context.Context, id string, in models.StudentProfileUpdate) (bool, error) {
	const op = "StudentService.UpdateProfile"

	oid, err := mongorepo.ParseID(id)
	if err != nil {
		return false, utils.E(utils.CodeInvalidArgument, op, "invalid student id", err)
	}
	set := profileSet(in)
	if len(set) == 0 {
		return false, utils.E(utils.CodeInvalidArgument, op, "no profile fields provided", nil)
	}
	modified, err := s.students.UpdateProfile(ctx, oid, set)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return false, utils.E(utils.CodeNotFound, op, "Student not found", err)
		}
		return false, utils.E(utils.CodeInternal, op, "failed to update profile", err)
	}
	return modified, nil
}

var fileTypeRe = regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)

func (s *studentService) UploadDocument(ctx context.Context, id, fileType, filename, contentType string, r io.Reader) (string, error) {
	const op = "StudentService.UploadDocument"

	if strings.TrimSpace(id) == "" || strings.TrimSpace(fileType) == "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "Student ID and file type are required", nil)
	}
	if !fileTypeRe.MatchString(fileType) {
		return "", utils.E(utils.CodeInvalidArgument, op, "invalid file type", nil)
	}
	oid, err := mongorepo.ParseID(id)
	if err != nil {
		return "", utils.E(utils.CodeInvalidArgument, op, "invalid student id", err)
	}
	if _, err := s.students.GetByID(ctx, oid); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return "", utils.E(utils.CodeNotFound, op, "Student not found", err)
		}
		return "", utils.E(utils.CodeInternal, op, "failed to get student", err)
	}

	name := oid.Hex() + "_" + fileType + "_" + storage.SecureName(filename)
	path, err := s.uploader.Upload(ctx, name, contentType, r)
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to store file", err)
	}
	if err := s.students.SetDocument(ctx, oid, fileType, path); err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to record file", err)
	}
	return path, nil
}

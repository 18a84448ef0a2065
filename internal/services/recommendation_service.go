package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/admission/internal/chatbot"
	"github.com/yoockh/admission/internal/models"
	mongorepo "github.com/yoockh/admission/internal/repositories/mongo"
	"github.com/yoockh/admission/internal/utils"
)

// Suggestions returned in place of a real answer when the oracle cannot be used.
var (
	FallbackMalformed = []models.ProgramSuggestion{{
		Name:        "Error processing request",
		University:  "Please try again",
		Description: "We couldn't generate recommendations at this time",
		Reason:      "Please provide more specific interests",
	}}
	FallbackUnavailable = []models.ProgramSuggestion{{
		Name:        "Service unavailable",
		University:  "Try again later",
		Description: "Our recommendation service is currently down",
		Reason:      "Please try again later",
	}}
)

type RecommendationRequest struct {
	StudentID              string `json:"studentId"`
	Name                   string `json:"name"`
	CurrentStudyLevel      string `json:"currentStudyLevel"`
	Bio                    string `json:"bio"`
	AreaOfInterest         string `json:"areaOfInterest"`
	FutureIntendedPrograms string `json:"futureIntendedPrograms"`
}

func (r RecommendationRequest) missing() string {
	for _, f := range []struct{ name, val string }{
		{"studentId", r.StudentID},
		{"name", r.Name},
		{"currentStudyLevel", r.CurrentStudyLevel},
		{"bio", r.Bio},
		{"areaOfInterest", r.AreaOfInterest},
		{"futureIntendedPrograms", r.FutureIntendedPrograms},
	} {
		if strings.TrimSpace(f.val) == "" {
			return f.name
		}
	}
	return ""
}

type RecommendationService interface {
	Save(ctx context.Context, req RecommendationRequest) (*models.RecommendationRecord, error)
	Get(ctx context.Context, studentID string) (*models.RecommendationRecord, error)
}

// UniversityData supplies the text the JSON recommendation prompt is grounded on.
type UniversityData interface {
	FilesText(ctx context.Context) (string, error)
}

type recommendationService struct {
	students mongorepo.StudentRepository
	data     UniversityData
	oracle   chatbot.Oracle
	log      *logrus.Logger
}

func NewRecommendationService(students mongorepo.StudentRepository, data UniversityData, oracle chatbot.Oracle, log *logrus.Logger) RecommendationService {
	return &recommendationService{students: students, data: data, oracle: oracle, log: log}
}

func (s *recommendationService) Save(ctx context.Context, req RecommendationRequest) (*models.RecommendationRecord, error) {
	const op = "RecommendationService.Save"

	if f := req.missing(); f != "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Missing required field: "+f, nil)
	}
	id, err := mongorepo.ParseID(req.StudentID)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid student id", err)
	}
	if _, err := s.students.GetByID(ctx, id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Student not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get student", err)
	}

	rec := &models.RecommendationRecord{
		Name:                   req.Name,
		CurrentStudyLevel:      req.CurrentStudyLevel,
		Bio:                    req.Bio,
		AreaOfInterest:         req.AreaOfInterest,
		FutureIntendedPrograms: req.FutureIntendedPrograms,
		AIRecommendation:       s.suggest(ctx, req),
		SubmittedAt:            time.Now().UTC(),
	}
	if err := s.students.SaveRecommendation(ctx, id, rec); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Student not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to save recommendation", err)
	}
	return rec, nil
}

// suggest never fails: oracle and decode errors degrade to the fallback lists.
func (s *recommendationService) suggest(ctx context.Context, req RecommendationRequest) []models.ProgramSuggestion {
	entry := s.log.WithField("student_id", req.StudentID)

	uniData, err := s.data.FilesText(ctx)
	if err != nil {
		entry.WithError(err).Warn("university documents unavailable")
	}

	reply, err := s.oracle.Generate(ctx, chatbot.ProgramsPrompt(chatbot.ProfileRequest{
		StudyLevel:     req.CurrentStudyLevel,
		Interests:      req.AreaOfInterest,
		FuturePrograms: req.FutureIntendedPrograms,
		UniversityData: uniData,
	}))
	if err != nil {
		entry.WithError(err).Error("recommendation oracle failed")
		return FallbackUnavailable
	}

	out, err := chatbot.ParseSuggestions(reply)
	if err != nil {
		entry.WithError(err).Warn("recommendation reply malformed")
		return FallbackMalformed
	}
	return out
}

func (s *recommendationService) Get(ctx context.Context, studentID string) (*models.RecommendationRecord, error) {
	const op = "RecommendationService.Get"

	id, err := mongorepo.ParseID(studentID)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid student id", err)
	}
	st, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Student not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get student", err)
	}
	if st.Recommendation == nil {
		return nil, utils.E(utils.CodeNotFound, op, "No recommendation found for this student", nil)
	}
	return st.Recommendation, nil
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Student is one document of the students collection. Interview runs, signups and
// profile edits all land in the same collection, so any field the interview question
// list introduces beyond the named ones is kept in InterviewFields.
type Student struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FullName     string             `bson:"full_name,omitempty" json:"full_name,omitempty"`
	Email        string             `bson:"email,omitempty" json:"email,omitempty"`
	PasswordHash string             `bson:"password,omitempty" json:"-"`
	CreatedAt    *time.Time         `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt    *time.Time         `bson:"updated_at,omitempty" json:"updated_at,omitempty"`

	DOB                string   `bson:"dob,omitempty" json:"dob,omitempty"`
	Gender             string   `bson:"gender,omitempty" json:"gender,omitempty"`
	Nationality        string   `bson:"nationality,omitempty" json:"nationality,omitempty"`
	Address            string   `bson:"address,omitempty" json:"address,omitempty"`
	ContactNumber      string   `bson:"contact_number,omitempty" json:"contact_number,omitempty"`
	AppliedUniversity  string   `bson:"applied_university,omitempty" json:"applied_university,omitempty"`
	AppliedCampus      string   `bson:"applied_campus,omitempty" json:"applied_campus,omitempty"`
	AppliedProgram     string   `bson:"applied_program,omitempty" json:"applied_program,omitempty"`
	ProgramChoice      string   `bson:"program_choice,omitempty" json:"program_choice,omitempty"`
	MatricBoard        string   `bson:"matric_board,omitempty" json:"matric_board,omitempty"`
	MatricYear         string   `bson:"matric_year,omitempty" json:"matric_year,omitempty"`
	MatricMarks        string   `bson:"matric_marks,omitempty" json:"matric_marks,omitempty"`
	MatricSubjects     []string `bson:"matric_subjects,omitempty" json:"matric_subjects,omitempty"`
	InterBoard         string   `bson:"inter_board,omitempty" json:"inter_board,omitempty"`
	InterYear          string   `bson:"inter_year,omitempty" json:"inter_year,omitempty"`
	InterMarks         string   `bson:"inter_marks,omitempty" json:"inter_marks,omitempty"`
	InterSubjects      []string `bson:"inter_subjects,omitempty" json:"inter_subjects,omitempty"`
	BachelorUni        string   `bson:"bachelor_uni,omitempty" json:"bachelor_uni,omitempty"`
	BachelorYear       string   `bson:"bachelor_year,omitempty" json:"bachelor_year,omitempty"`
	BachelorMarks      string   `bson:"bachelor_marks,omitempty" json:"bachelor_marks,omitempty"`
	BachelorMajor      []string `bson:"bachelor_major,omitempty" json:"bachelor_major,omitempty"`
	MasterUni          string   `bson:"master_uni,omitempty" json:"master_uni,omitempty"`
	MasterYear         string   `bson:"master_year,omitempty" json:"master_year,omitempty"`
	MasterMarks        string   `bson:"master_marks,omitempty" json:"master_marks,omitempty"`
	MasterMajor        []string `bson:"master_major,omitempty" json:"master_major,omitempty"`

	Documents map[string]string `bson:"documents,omitempty" json:"documents,omitempty"`

	FullInterview   []TranscriptEntry     `bson:"full_interview,omitempty" json:"full_interview,omitempty"`
	Recommendations string                `bson:"recommendations,omitempty" json:"recommendations,omitempty"`
	Recommendation  *RecommendationRecord `bson:"recommendation,omitempty" json:"recommendation,omitempty"`

	InterviewFields map[string]any `bson:",inline" json:"interview_fields,omitempty"`
}

// TranscriptEntry is one accepted interview answer, verbatim.
type TranscriptEntry struct {
	Question  string    `bson:"question" json:"question"`
	Answer    string    `bson:"answer" json:"answer"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

type ProgramSuggestion struct {
	Name        string `bson:"name" json:"name"`
	University  string `bson:"university" json:"university"`
	Description string `bson:"description" json:"description"`
	Reason      string `bson:"reason" json:"reason"`
}

type RecommendationRecord struct {
	Name                   string              `bson:"name" json:"name"`
	CurrentStudyLevel      string              `bson:"currentStudyLevel" json:"currentStudyLevel"`
	Bio                    string              `bson:"bio" json:"bio"`
	AreaOfInterest         string              `bson:"areaOfInterest" json:"areaOfInterest"`
	FutureIntendedPrograms string              `bson:"futureIntendedPrograms" json:"futureIntendedPrograms"`
	AIRecommendation       []ProgramSuggestion `bson:"aiRecommendation" json:"aiRecommendation"`
	SubmittedAt            time.Time           `bson:"submittedAt" json:"submittedAt"`
}

// StudentProfileUpdate carries the profile form; nil fields are left untouched.
type StudentProfileUpdate struct {
	FullName          *string
	DOB               *string
	Gender            *string
	Nationality       *string
	Address           *string
	ContactNumber     *string
	AppliedUniversity *string
	AppliedCampus     *string
	AppliedProgram    *string
	MatricBoard       *string
	MatricYear        *string
	MatricMarks       *string
	MatricSubjects    []string
	InterBoard        *string
	InterYear         *string
	InterMarks        *string
	InterSubjects     []string
	BachelorUni       *string
	BachelorYear      *string
	BachelorMarks     *string
	BachelorMajor     []string
	MasterUni         *string
	MasterYear        *string
	MasterMarks       *string
	MasterMajor       []string
}

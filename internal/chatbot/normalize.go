package chatbot

import (
	"regexp"
	"strings"
	"unicode"
)

// AnswerType selects the normalization rule applied to an interview answer.
type AnswerType string

const (
	TypeName        AnswerType = "name"
	TypeDate        AnswerType = "date"
	TypeGender      AnswerType = "gender"
	TypeID          AnswerType = "id"
	TypeEmail       AnswerType = "email"
	TypePhone       AnswerType = "phone"
	TypeLocation    AnswerType = "location"
	TypeEducation   AnswerType = "education"
	TypeYear        AnswerType = "year"
	TypeMarks       AnswerType = "marks"
	TypeInstitution AnswerType = "institution"
	TypeProgram     AnswerType = "program"
	TypeText        AnswerType = "text"
	TypePreference  AnswerType = "preference"
	TypeYesNo       AnswerType = "yesno"
	TypeRating      AnswerType = "rating"
)

var knownTypes = map[AnswerType]struct{}{
	TypeName: {}, TypeDate: {}, TypeGender: {}, TypeID: {}, TypeEmail: {}, TypePhone: {},
	TypeLocation: {}, TypeEducation: {}, TypeYear: {}, TypeMarks: {}, TypeInstitution: {},
	TypeProgram: {}, TypeText: {}, TypePreference: {}, TypeYesNo: {}, TypeRating: {},
}

// ValidAnswerType reports whether t names one of the normalization rules.
func ValidAnswerType(t string) bool {
	_, ok := knownTypes[AnswerType(strings.ToLower(strings.TrimSpace(t)))]
	return ok
}

var (
	reFillers  = regexp.MustCompile(`(?i)\b(?:i|am|is|are|was|were|my|the|a|an|from|in|at)\b`)
	reDisallow = regexp.MustCompile(`[^a-zA-Z0-9. ]`)

	reNamePrefix = regexp.MustCompile(`^(hi|hello|hey|my name is|i am|name is|im|this is|is)\s*`)
	reDate       = regexp.MustCompile(`(\d{2}[/-]\d{2}[/-]\d{4})|(\d{4}[/-]\d{2}[/-]\d{2})`)
	reGender     = regexp.MustCompile(`male|female|other`)
	reNationalID = regexp.MustCompile(`\d{5}-\d{7}-\d{1}|\d{13}`)
	reEmail      = regexp.MustCompile(`[\w.-]+@[\w.-]+`)
	rePhone      = regexp.MustCompile(`\d{4}-\d{7}`)
	reYear       = regexp.MustCompile(`\d{4}`)
	reMarks      = regexp.MustCompile(`\d+(\.\d+)?`)
	reYesNo      = regexp.MustCompile(`yes|no`)
	reRating     = regexp.MustCompile(`[1-5]`)
)

// CleanText collapses whitespace, drops filler words and anything outside [A-Za-z0-9. ].
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	s = reFillers.ReplaceAllString(s, "")
	s = reDisallow.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Normalize turns a free-text answer into the canonical value stored for its field.
// It is total: every input produces a string.
func Normalize(raw string, t AnswerType) string {
	answer := strings.ToLower(strings.TrimSpace(raw))
	if answer == "" {
		return ""
	}

	switch AnswerType(strings.ToLower(string(t))) {
	case TypeName:
		return titleCase(CleanText(reNamePrefix.ReplaceAllString(answer, "")))
	case TypeDate:
		return firstOr(reDate, answer, CleanText(answer))
	case TypeGender:
		if m := reGender.FindString(answer); m != "" {
			return titleCase(m)
		}
		return "Other"
	case TypeID:
		return firstOr(reNationalID, answer, CleanText(answer))
	case TypeEmail:
		return firstOr(reEmail, answer, CleanText(answer))
	case TypePhone:
		return firstOr(rePhone, answer, CleanText(answer))
	case TypeLocation, TypeInstitution:
		return titleCase(CleanText(answer))
	case TypeEducation, TypeProgram:
		return strings.ToUpper(CleanText(answer))
	case TypeYear:
		return firstOr(reYear, answer, "N/A")
	case TypeMarks:
		return firstOr(reMarks, answer, "N/A")
	case TypePreference:
		return capitalize(CleanText(answer))
	case TypeYesNo:
		return capitalize(firstOr(reYesNo, answer, "no"))
	case TypeRating:
		return firstOr(reRating, answer, "3")
	default:
		return CleanText(answer)
	}
}

func firstOr(re *regexp.Regexp, s, fallback string) string {
	if m := re.FindString(s); m != "" {
		return m
	}
	return fallback
}

// titleCase upper-cases the first letter of every run of letters and lower-cases the rest.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		prevLetter = false
		b.WriteRune(r)
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

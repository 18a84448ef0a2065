package chatbot

import "strings"

// Field is the coarse academic category used to scope recommendations.
type Field string

const (
	FieldMedical     Field = "Medical"
	FieldIT          Field = "IT"
	FieldBusiness    Field = "Business"
	FieldEngineering Field = "Engineering"
	FieldGeneral     Field = "General"
)

type fieldRule struct {
	field        Field
	choiceWords  []string
	priorPhrases []string
}

// evaluated in order, first match wins
var fieldRules = []fieldRule{
	{FieldMedical, []string{"mbbs", "doctor", "medicine", "medical"}, []string{"pre-medical"}},
	{FieldIT, []string{"cs", "computer", "software", "it", "ai"}, []string{"ics", "computer"}},
	{FieldBusiness, []string{"business", "commerce", "bba", "mba"}, []string{"commerce"}},
	{FieldEngineering, []string{"engineering", "electrical", "mechanical", "civil"}, []string{"engineering"}},
}

// ClassifyField maps the program the student wants and their prior program to a Field.
func ClassifyField(programChoice, priorProgram string) Field {
	pc := strings.ToLower(programChoice)
	pp := strings.ToLower(priorProgram)
	for _, rule := range fieldRules {
		if containsAny(pc, rule.choiceWords) || containsAny(pp, rule.priorPhrases) {
			return rule.field
		}
	}
	return FieldGeneral
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

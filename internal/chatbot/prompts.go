package chatbot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yoockh/admission/internal/models"
)

const (
	MsgNoMaterial = "No general admission material found in database."
	MsgNoMatches  = "No direct matches found in general admission material."
)

// InterviewPrompt asks the oracle to rephrase the question at index.
// ok is false once index is past the end of the list.
func InterviewPrompt(questions []models.InterviewQuestion, index int, studentName, history string) (prompt string, ok bool) {
	if index < 0 || index >= len(questions) {
		return "", false
	}
	q := questions[index]

	var b strings.Builder
	b.WriteString("IMPORTANT RULES:\n")
	b.WriteString("- You are an admission interviewer asking questions to a student.\n")
	fmt.Fprintf(&b, "- You MUST ask about: %s\n", q.Question)
	b.WriteString("- REPHRASE this question in a natural, conversational way.\n")
	b.WriteString("- Ask ONLY ONE question.\n")
	b.WriteString("- Use student's name if known.\n")
	b.WriteString("- Reply politely in human interviewer tone.\n")
	b.WriteString("- DO NOT add any extra text or explanations.\n")
	fmt.Fprintf(&b, "- IMPORTANT: The answer must follow these restrictions: %s\n", q.Restriction)
	if studentName != "" {
		fmt.Fprintf(&b, "\nStudent name: %s\n", studentName)
	}
	fmt.Fprintf(&b, "\nConversation context:\n%s\n", history)
	fmt.Fprintf(&b, "\nPlease rephrase this question naturally: %q\n", q.Question)
	return b.String(), true
}

func ValidationPrompt(question, restriction, answer string) string {
	return fmt.Sprintf(`You are an admission interviewer validating student answers.

Question: %s
Restriction: %s
Student's Answer: %s

IMPORTANT: Analyze if the answer follows the restriction.
- If it DOES follow the restriction, respond with only: "VALID"
- If it DOES NOT follow the restriction, respond with a helpful error message explaining what's wrong and how to correct it.

Your response:
`, question, restriction, answer)
}

// IsValid reports whether a validation reply is the literal VALID token.
func IsValid(reply string) bool {
	return strings.ToUpper(strings.TrimSpace(reply)) == "VALID"
}

// RecommendationPrompt builds the line-oriented recommendation request used by the chat flow.
func RecommendationPrompt(fields map[string]string) string {
	field := ClassifyField(fields["program_choice"], fields["inter_program"])
	get := func(key, def string) string {
		if v := strings.TrimSpace(fields[key]); v != "" {
			return v
		}
		return def
	}

	return fmt.Sprintf(`You are an expert admission counselor. Suggest only 2-3 programs from this field: %[1]s.

Student Details:
Name: %[2]s
Matric: %[3]s/%[4]s from %[5]s
Intermediate: %[6]s - %[7]s/%[8]s
Program Choice: %[9]s

STRICT Guidelines:
- Only suggest programs directly related to %[1]s field.
- Do NOT suggest any program outside %[1]s field.
- For each program, give a short reason why it suits them based on their education and marks.
- Suggest 2-3 good universities in Pakistan offering each program.
- Output ONLY in this EXACT format:

Program: [Program Name]
Reason: [Short reason]
Universities: [Uni1], [Uni2], [Uni3]

Repeat this block for each suggested program. Do NOT include headings, explanations, or extra text. Strictly follow the format.
`,
		field,
		get("full_name", "Not Provided"),
		get("matric_obtained", "N/A"), get("matric_total", "N/A"), get("matric_board", "N/A"),
		get("inter_program", "N/A"), get("inter_obtained", "N/A"), get("inter_total", "N/A"),
		get("program_choice", "Not Provided"),
	)
}

// RelevantLines keeps the corpus lines containing any whitespace-separated keyword of query.
func RelevantLines(corpus, query string) string {
	if strings.TrimSpace(corpus) == "" {
		return MsgNoMaterial
	}
	keywords := Keywords(query)
	var matched []string
	for _, line := range strings.Split(corpus, "\n") {
		lower := strings.ToLower(line)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, strings.TrimSpace(line))
				break
			}
		}
	}
	if len(matched) == 0 {
		return MsgNoMatches
	}
	return strings.Join(matched, "\n")
}

// Keywords returns the lower-cased query terms used for corpus matching.
func Keywords(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

func GeneralPrompt(context, question string) string {
	return fmt.Sprintf(`You are an AI university admission assistant.
Use the following personal data context to answer clearly and accurately.

Personal Data Context:
%s

User Question:
%s
`, context, question)
}

// ProfileRequest is the input of the JSON recommendation prompt.
type ProfileRequest struct {
	StudyLevel     string
	Interests      string
	FuturePrograms string
	UniversityData string
}

func ProgramsPrompt(req ProfileRequest) string {
	return fmt.Sprintf(`Recommend 3 educational programs with specific universities based on:
- Current Study Level: %s
- Areas of Interest: %s
- Future Intended Programs: %s

If current study level is high school, suggest bachelor's degrees.
If current study level is bachelor's, suggest master's degrees.
If current study level is master's, suggest PhD programs.

Only suggest programs related to the student's interests.

Consider these universities and their programs:
%s

For each program, provide:
1. Program Name (simple like BS Computer Science)
2. University Name
3. Short Description
4. Reason why it suits this student

Return only a JSON array with these fields for each program:
name, university, description, reason
`, req.StudyLevel, req.Interests, req.FuturePrograms, req.UniversityData)
}

// MaxSuggestions caps the parsed JSON recommendation list.
const MaxSuggestions = 3

var ErrMalformedSuggestions = errors.New("recommendation reply is not a JSON array")

// ParseSuggestions strips markdown fences from the oracle reply and decodes the JSON array.
func ParseSuggestions(reply string) ([]models.ProgramSuggestion, error) {
	cleaned := strings.ReplaceAll(reply, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var out []models.ProgramSuggestion
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSuggestions, err)
	}
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out, nil
}

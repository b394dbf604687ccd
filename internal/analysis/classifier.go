package analysis

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// UnknownQuestion is the sentinel used when no question number can be extracted.
const UnknownQuestion = "Unknown"

// Issue types assigned to a complaint, from most to least specific.
const (
	IssueUnchecked    = "Unchecked Question"
	IssueCalculation  = "Calculation Error"
	IssuePartialMarks = "Partial Marks Issue"
	IssueMarks        = "Marks Discrepancy"
	IssueEvaluation   = "Evaluation Issue"
	IssueGeneral      = "General Complaint"
)

// Classification is the structured outcome of analysing a complaint text.
type Classification struct {
	QuestionNumber      string  `json:"question_number"`
	IssueType           string  `json:"issue_type"`
	Summary             string  `json:"summary"`
	DetailedExplanation string  `json:"detailed_explanation"`
	ConfidenceScore     float64 `json:"confidence_score"`
}

// Question number patterns, tried in priority order; the first match wins.
var questionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bQ\.?\s*(\d+)\b`),
	regexp.MustCompile(`(?i)\bquestion\s+(\d+)\b`),
	regexp.MustCompile(`#(\d+)`),
	regexp.MustCompile(`(?i)\b(\d+)[a-z]?\s*(?:marks?|points?)`),
}

var (
	uncheckedKeywords   = []string{"not checked", "unchecked", "not evaluated", "skipped", "missed", "overlooked"}
	calculationKeywords = []string{"calculation", "total", "totaling", "sum", "add", "adding", "counted"}
	marksKeywords       = []string{"marks", "mark", "points", "score", "grade", "missing", "deducted", "deserve"}
	partialKeywords     = []string{"partial", "some", "part", "section", "step"}
	evaluationKeywords  = []string{"wrong", "incorrect", "unfair", "mistake", "error", "wrongly", "incorrectly"}

	// Keywords that raise classification confidence when present.
	specificKeywords = []string{"marks", "question", "answer", "correct", "wrong", "error", "deserve"}
)

// Classify analyses a complaint text and returns a structured classification.
// It never panics: any internal fault degrades to a fallback classification
// that flags the complaint for manual review.
func Classify(text string) (result Classification) {
	defer func() {
		if r := recover(); r != nil {
			result = fallbackClassification(fmt.Errorf("%v", r))
		}
	}()

	lower := strings.ToLower(text)

	questionNumber := extractQuestionNumber(text)
	issueType := detectIssueType(lower)

	return Classification{
		QuestionNumber:      questionNumber,
		IssueType:           issueType,
		Summary:             buildSummary(lower, questionNumber, issueType),
		DetailedExplanation: buildDetailedExplanation(text, lower, questionNumber, issueType),
		ConfidenceScore:     confidenceScore(text, lower, questionNumber, issueType),
	}
}

func fallbackClassification(cause error) Classification {
	return Classification{
		QuestionNumber:      UnknownQuestion,
		IssueType:           IssueGeneral,
		Summary:             "Error processing complaint",
		DetailedExplanation: fmt.Sprintf("Unable to process complaint automatically. Manual review required. Error: %v", cause),
		ConfidenceScore:     0.0,
	}
}

func extractQuestionNumber(text string) string {
	for _, pattern := range questionPatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			return "Q" + match[1]
		}
	}

	return UnknownQuestion
}

func detectIssueType(lower string) string {
	switch {
	case containsAny(lower, uncheckedKeywords):
		return IssueUnchecked
	case containsAny(lower, calculationKeywords):
		return IssueCalculation
	case containsAny(lower, marksKeywords):
		if containsAny(lower, partialKeywords) {
			return IssuePartialMarks
		}
		return IssueMarks
	case containsAny(lower, evaluationKeywords):
		return IssueEvaluation
	default:
		return IssueGeneral
	}
}

func buildSummary(lower, questionNumber, issueType string) string {
	var sb strings.Builder

	if questionNumber != UnknownQuestion {
		fmt.Fprintf(&sb, "Student reports %s in %s. ", strings.ToLower(issueType), questionNumber)
	} else {
		fmt.Fprintf(&sb, "Student reports %s. ", strings.ToLower(issueType))
	}

	if strings.Contains(lower, "deserve") {
		sb.WriteString("Claims deserving more marks. ")
	}
	if strings.Contains(lower, "correct") && strings.Contains(lower, "answer") {
		sb.WriteString("States answer is correct. ")
	}
	if strings.Contains(lower, "not checked") || strings.Contains(lower, "unchecked") {
		sb.WriteString("Claims answer not properly checked. ")
	}

	return strings.TrimSpace(sb.String())
}

func buildDetailedExplanation(text, lower, questionNumber, issueType string) string {
	var sb strings.Builder

	// Section 1: Complaint Overview
	sb.WriteString("**Complaint Overview:**\n")
	if questionNumber != UnknownQuestion {
		fmt.Fprintf(&sb, "The student has raised a concern regarding %s of the examination paper. ", questionNumber)
	} else {
		sb.WriteString("The student has raised a concern regarding the examination evaluation. ")
	}
	if utf8.RuneCountInString(text) > 100 {
		sb.WriteString("The complaint provides detailed information about the perceived issue.")
	} else {
		sb.WriteString("The complaint is brief but indicates a specific concern.")
	}

	// Section 2: Identified Issue
	fmt.Fprintf(&sb, "\n\n**Identified Issue:**\n%s.", issueType)

	// Section 3: AI Interpretation
	sb.WriteString("\n\n**AI Interpretation:**\n")
	switch issueType {
	case IssueMarks:
		sb.WriteString("The student believes that the marks awarded do not accurately reflect their performance. ")
		if strings.Contains(lower, "deserve") || strings.Contains(lower, "should") {
			sb.WriteString("The student explicitly states they deserve more marks. ")
		}
		if strings.Contains(lower, "correct") {
			sb.WriteString("The student claims their answer is correct. ")
		}
		if containsAny(lower, []string{"missing", "deducted", "lost"}) {
			sb.WriteString("There appears to be a concern about marks being incorrectly deducted or not awarded. ")
		}
	case IssueUnchecked:
		sb.WriteString("The student believes that this question was not properly evaluated or was completely overlooked during marking. ")
		sb.WriteString("This requires immediate verification of the answer sheet to confirm if the question was graded. ")
	case IssueCalculation:
		sb.WriteString("The student suspects an error in the calculation or totaling of marks. ")
		sb.WriteString("This may involve incorrect addition of marks across different sections or questions. ")
	case IssueEvaluation:
		sb.WriteString("The student believes the evaluation methodology or marking scheme was not correctly applied. ")
		if strings.Contains(lower, "method") || strings.Contains(lower, "approach") {
			sb.WriteString("The concern relates to the method or approach used in solving the problem. ")
		}
		if strings.Contains(lower, "step") {
			sb.WriteString("The student mentions specific steps that may not have been properly credited. ")
		}
	case IssuePartialMarks:
		sb.WriteString("The student believes they should receive partial credit for their work. ")
		sb.WriteString("The answer may be partially correct or demonstrate understanding of the concept. ")
	default:
		sb.WriteString("The complaint requires manual review to understand the specific concern raised by the student. ")
	}

	if strings.Contains(lower, "formula") {
		sb.WriteString("The student mentions formula usage. ")
	}
	if strings.Contains(lower, "diagram") || strings.Contains(lower, "graph") {
		sb.WriteString("The complaint involves diagrams or graphical representations. ")
	}
	if strings.Contains(lower, "explanation") || strings.Contains(lower, "reasoning") {
		sb.WriteString("The student provided explanations or reasoning in their answer. ")
	}

	// Section 4: Suggested Faculty Action
	sb.WriteString("\n\n**Suggested Faculty Action:**\n")
	if questionNumber != UnknownQuestion {
		fmt.Fprintf(&sb, "It is recommended that the faculty re-evaluate %s, ", questionNumber)
	} else {
		sb.WriteString("It is recommended that the faculty review the relevant section, ")
	}

	switch issueType {
	case IssueMarks:
		sb.WriteString("specifically verifying step marking and method correctness according to the marking scheme. ")
		sb.WriteString("Compare the student's answer with the model answer and ensure all valid approaches are credited.")
	case IssueUnchecked:
		sb.WriteString("first confirming whether the question was evaluated. ")
		sb.WriteString("If unevaluated, complete the marking process. If evaluated, verify the marks were correctly recorded.")
	case IssueCalculation:
		sb.WriteString("recalculating the total marks to ensure accuracy. ")
		sb.WriteString("Verify that all section marks have been correctly added and recorded.")
	case IssueEvaluation:
		sb.WriteString("reviewing the evaluation criteria and ensuring the marking scheme was consistently applied. ")
		sb.WriteString("Consider alternative valid approaches that may have been used by the student.")
	case IssuePartialMarks:
		sb.WriteString("assessing whether partial credit is warranted based on the work shown. ")
		sb.WriteString("Review the marking scheme for partial credit allocation guidelines.")
	default:
		sb.WriteString("carefully reviewing the student's answer and the complaint details. ")
		sb.WriteString("Consult with colleagues if the issue requires subject matter expertise.")
	}

	return sb.String()
}

// confidenceScore grades how reliable the automated analysis is, capped at
// 0.95 so automated analysis never claims full certainty.
func confidenceScore(text, lower, questionNumber, issueType string) float64 {
	score := 0.5

	if questionNumber != UnknownQuestion {
		score += 0.2
	}

	// Length thresholds count characters, not bytes, so complaints written
	// in non-Latin scripts land in the same tier as their Latin equivalents.
	switch length := utf8.RuneCountInString(text); {
	case length > 150:
		score += 0.15
	case length > 80:
		score += 0.10
	case length > 40:
		score += 0.05
	}

	if issueType != IssueGeneral {
		score += 0.15
	}

	matched := 0
	for _, keyword := range specificKeywords {
		if strings.Contains(lower, keyword) {
			matched++
		}
	}
	keywordBonus := float64(matched) * 0.02
	if keywordBonus > 0.10 {
		keywordBonus = 0.10
	}
	score += keywordBonus

	if score > 0.95 {
		score = 0.95
	}

	return score
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

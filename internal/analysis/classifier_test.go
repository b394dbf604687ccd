package analysis

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyIsDeterministic(t *testing.T) {
	text := "Q4 was not checked even though I wrote the full answer with a diagram"

	first := Classify(text)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, Classify(text))
	}
}

func TestExtractQuestionNumberPriority(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		expected string
	}{
		{"q prefix", "I lost marks in Q3", "Q3"},
		{"q prefix with dot and space", "Please check Q. 12 again", "Q12"},
		{"question word", "question 7 was not evaluated", "Q7"},
		{"hash", "re-check #5 please", "Q5"},
		{"number before marks", "I should get 10 marks for that part", "Q10"},
		{"q beats question word", "See Q2 and also question 5", "Q2"},
		{"question word beats hash", "question 3 and #9", "Q3"},
		{"none", "the evaluation was unfair", UnknownQuestion},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, Classify(tc.text).QuestionNumber)
		})
	}
}

func TestDetectIssueTypePriority(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		expected string
	}{
		{"unchecked beats marks and evaluation", "the question was not checked and marks are wrong", IssueUnchecked},
		{"calculation beats evaluation", "the total is wrong", IssueCalculation},
		{"marks plus partial keyword", "I deserve partial marks for this section", IssuePartialMarks},
		{"marks alone", "my score seems too low", IssueMarks},
		{"evaluation", "this was evaluated incorrectly", IssueEvaluation},
		{"general", "I am unhappy with the outcome", IssueGeneral},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, Classify(tc.text).IssueType)
		})
	}
}

func TestSummaryClauses(t *testing.T) {
	result := Classify("Q2 was not checked but my answer is correct and I deserve marks")

	require.Equal(t, "Q2", result.QuestionNumber)
	require.Equal(t, IssueUnchecked, result.IssueType)
	require.True(t, strings.HasPrefix(result.Summary, "Student reports unchecked question in Q2."))
	require.Contains(t, result.Summary, "Claims deserving more marks.")
	require.Contains(t, result.Summary, "States answer is correct.")
	require.Contains(t, result.Summary, "Claims answer not properly checked.")
	require.Equal(t, result.Summary, strings.TrimSpace(result.Summary))
}

func TestSummaryWithoutQuestionNumber(t *testing.T) {
	result := Classify("the grading felt unfair")

	require.Equal(t, UnknownQuestion, result.QuestionNumber)
	require.Equal(t, "Student reports evaluation issue.", result.Summary)
}

func TestDetailedExplanationSections(t *testing.T) {
	sections := []string{
		"**Complaint Overview:**",
		"**Identified Issue:**",
		"**AI Interpretation:**",
		"**Suggested Faculty Action:**",
	}

	inputs := []string{
		"Q1 calculation of the total is off",
		"I deserve more marks, my method and formula were correct",
		"",
		"something vague",
	}

	for _, input := range inputs {
		result := Classify(input)
		for _, section := range sections {
			require.Contains(t, result.DetailedExplanation, section)
		}
	}
}

func TestDetailedExplanationTriggers(t *testing.T) {
	result := Classify("For Q6 I deserve more marks, the answer is correct and marks were deducted despite my diagram and reasoning")

	require.Equal(t, IssueMarks, result.IssueType)
	require.Contains(t, result.DetailedExplanation, "regarding Q6 of the examination paper")
	require.Contains(t, result.DetailedExplanation, "explicitly states they deserve more marks")
	require.Contains(t, result.DetailedExplanation, "claims their answer is correct")
	require.Contains(t, result.DetailedExplanation, "incorrectly deducted or not awarded")
	require.Contains(t, result.DetailedExplanation, "diagrams or graphical representations")
	require.Contains(t, result.DetailedExplanation, "explanations or reasoning")
	require.Contains(t, result.DetailedExplanation, "re-evaluate Q6")
}

func TestConfidenceScoreBounds(t *testing.T) {
	inputs := []string{
		"",
		"short",
		"Q1 wrong total marks deserve answer correct question error",
		strings.Repeat("marks question answer correct wrong error deserve ", 10),
		"completely unrelated text about the cafeteria",
	}

	for _, input := range inputs {
		score := Classify(input).ConfidenceScore
		require.GreaterOrEqual(t, score, 0.0)
		require.LessOrEqual(t, score, 0.95)
	}
}

func TestConfidenceScoreExactValues(t *testing.T) {
	// No question number, no keywords, short text: base score only.
	require.InDelta(t, 0.5, Classify("hello").ConfidenceScore, 1e-9)

	// Question number + >40 chars + specific issue + keyword bonus caps at 0.95.
	result := Classify("I deserve more marks for Q3 because my answer is correct")
	require.InDelta(t, 0.95, result.ConfidenceScore, 1e-9)
}

func TestConfidenceLengthCountsCharacters(t *testing.T) {
	// 33 characters but 93 bytes: multibyte text must not jump a length tier.
	text := "Q3 " + strings.Repeat("अ", 30)

	result := Classify(text)

	// base 0.5 + 0.2 question number, no length bonus, no specific issue,
	// no specific keywords.
	require.InDelta(t, 0.70, result.ConfidenceScore, 1e-9)
	require.Contains(t, result.DetailedExplanation, "brief but indicates a specific concern")
}

func TestFallbackClassification(t *testing.T) {
	result := fallbackClassification(errors.New("boom"))

	require.Equal(t, UnknownQuestion, result.QuestionNumber)
	require.Equal(t, IssueGeneral, result.IssueType)
	require.Equal(t, "Error processing complaint", result.Summary)
	require.Contains(t, result.DetailedExplanation, "Manual review required")
	require.Contains(t, result.DetailedExplanation, "boom")
	require.Zero(t, result.ConfidenceScore)
}

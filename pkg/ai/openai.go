package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	triageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "grievance",
		Subsystem: "ai",
		Name:      "triage_duration_seconds",
		Help:      "Duration of advisory triage requests",
	}, []string{"model"})

	triageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "grievance",
		Subsystem: "ai",
		Name:      "triage_failures_total",
		Help:      "Number of advisory triage failures",
	}, []string{"model"})
)

// Responses that fail schema validation are discarded rather than stored.
const triageResponseSchema = `{
	"type": "object",
	"required": ["issue_type", "priority", "agrees"],
	"properties": {
		"issue_type": {"type": "string", "minLength": 1},
		"priority": {"type": "string", "enum": ["high", "medium", "low"]},
		"rationale": {"type": "string"},
		"agrees": {"type": "boolean"}
	}
}`

// OpenAIConfig defines configuration options for the OpenAI triager.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAITriager implements Triager against the OpenAI chat completion API.
type OpenAITriager struct {
	client *openai.Client
	cfg    OpenAIConfig
	schema *jsonschema.Schema
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAITriager builds a new triager using the provided configuration.
func NewOpenAITriager(cfg OpenAIConfig) (*OpenAITriager, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 256
	}

	schema, err := jsonschema.CompileString("triage_response.json", triageResponseSchema)
	if err != nil {
		return nil, fmt.Errorf("compile triage response schema: %w", err)
	}

	tracer := otel.Tracer("github.com/noah-isme/grievance-go-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAITriager{
		client: client,
		cfg:    cfg,
		schema: schema,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Triage asks the model for a second opinion and validates the response
// against the triage schema before returning it.
func (t *OpenAITriager) Triage(parent context.Context, input TriageInput) (TriageResult, error) {
	ctx, span := t.tracer.Start(parent, "openai.triage", trace.WithAttributes(
		attribute.String("model", t.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       t.cfg.Model,
		MaxTokens:   t.cfg.MaxTokens,
		Temperature: t.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: triageSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildTriagePrompt(input),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := t.client.CreateChatCompletion(ctx, request)
	duration := time.Since(start)
	triageDuration.WithLabelValues(t.cfg.Model).Observe(duration.Seconds())
	if err != nil {
		triageFailures.WithLabelValues(t.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return TriageResult{}, fmt.Errorf("openai triage: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		triageFailures.WithLabelValues(t.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return TriageResult{}, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	result, err := t.parseTriageResponse(content)
	if err != nil {
		triageFailures.WithLabelValues(t.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return TriageResult{}, err
	}

	result.Raw = map[string]interface{}{
		"usage": resp.Usage,
	}

	return result, nil
}

func triageSystemPrompt() string {
	return "You review academic grievance tickets. You are given a complaint and a rule-based classification. Respond with a J" +
		"SON object containing issue_type, priority (high, medium or low), agrees (whether the rule-based issue_type fits), and a" +
		" short rationale."
}

func buildTriagePrompt(input TriageInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Complaint\n")
	builder.WriteString(input.ComplaintText)
	builder.WriteString("\n\n## Subject\n")
	builder.WriteString(input.Subject)
	builder.WriteString("\n\n## Exam\n")
	builder.WriteString(input.Exam)
	builder.WriteString("\n\n## Rule-based issue type\n")
	builder.WriteString(input.IssueType)
	if input.ExtractedQuestion != "" {
		builder.WriteString("\n\n## Question referenced\n")
		builder.WriteString(input.ExtractedQuestion)
	}
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func (t *OpenAITriager) parseTriageResponse(content string) (TriageResult, error) {
	var document interface{}
	if err := json.Unmarshal([]byte(content), &document); err != nil {
		return TriageResult{}, fmt.Errorf("parse triage json: %w", err)
	}

	if err := t.schema.Validate(document); err != nil {
		return TriageResult{}, fmt.Errorf("triage response failed schema validation: %w", err)
	}

	var result TriageResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return TriageResult{}, fmt.Errorf("decode triage json: %w", err)
	}

	return result, nil
}

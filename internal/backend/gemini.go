package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/nao1215/sentinel/internal/model"
)

// Default Gemini models.
const (
	DefaultAssessmentModel = "gemini-3-pro-preview"
	DefaultChatModel       = "gemini-3-flash-preview"
)

// Generation settings per call kind.
const (
	assessmentTemperature    = 0.2
	assessmentThinkingBudget = 8192
	simulationTemperature    = 0.7
	simulationThinkingBudget = 16384
	chatTemperature          = 0.4
)

// Gemini implements Generator with the Gemini API.
type Gemini struct {
	client          *genai.Client
	assessmentModel string
	chatModel       string
	logger          *slog.Logger
	now             func() time.Time
}

// Option configures Gemini.
type Option func(*Gemini)

// WithAssessmentModel sets the model used for reports, pre-checks and
// simulations.
func WithAssessmentModel(name string) Option {
	return func(g *Gemini) {
		if name != "" {
			g.assessmentModel = name
		}
	}
}

// WithChatModel sets the model used for conversations.
func WithChatModel(name string) Option {
	return func(g *Gemini) {
		if name != "" {
			g.chatModel = name
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gemini) {
		g.logger = logger
	}
}

// WithClock sets the clock used for the report date.
func WithClock(now func() time.Time) Option {
	return func(g *Gemini) {
		g.now = now
	}
}

// NewGemini creates a Gemini backend authenticated with apiKey.
func NewGemini(ctx context.Context, apiKey string, opts ...Option) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	g := &Gemini{
		client:          client,
		assessmentModel: DefaultAssessmentModel,
		chatModel:       DefaultChatModel,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g, nil
}

// GenerateAssessment produces a report for the request.
func (g *Gemini) GenerateAssessment(ctx context.Context, req model.AssessmentRequest) (string, error) {
	start := time.Now()
	g.logger.Debug("generating assessment",
		"model", g.assessmentModel,
		"standards", len(req.Standards),
		"attachments", len(req.Attachments),
	)

	contents := []*genai.Content{
		genai.NewContentFromParts(requestParts(assessmentPrompt(req), req.Attachments, "Attached technical context"), genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(assessmentInstruction(g.now(), req.Persona, req.Standards), genai.RoleUser),
		Temperature:       genai.Ptr[float32](assessmentTemperature),
		ThinkingConfig:    &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](assessmentThinkingBudget)},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.assessmentModel, contents, config)
	if err != nil {
		return "", &GenerationError{Err: err}
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &GenerationError{Err: ErrEmptyResponse}
	}

	g.logger.Debug("assessment generated", "bytes", len(text), "elapsed", time.Since(start))
	return text, nil
}

// ValidateInput asks the backend whether material is detailed enough.
func (g *Gemini) ValidateInput(ctx context.Context, material string, standards []model.Standard) (model.ValidationResult, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(validationPrompt(material, standards), genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   validationSchema(),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.assessmentModel, contents, config)
	if err != nil {
		return model.ValidationResult{}, &ValidationError{Err: err}
	}
	result, err := decodeValidation(resp.Text())
	if err != nil {
		return model.ValidationResult{}, &ValidationError{Err: err}
	}
	return result, nil
}

// SimulateAttack narrates an attack exploiting one finding.
func (g *Gemini) SimulateAttack(ctx context.Context, findingSummary, infrastructure, standard string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(simulationPrompt(findingSummary, infrastructure, standard), genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(simulationInstruction, genai.RoleUser),
		Temperature:       genai.Ptr[float32](simulationTemperature),
		ThinkingConfig:    &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](simulationThinkingBudget)},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.assessmentModel, contents, config)
	if err != nil {
		return "", &SimulationError{Err: err}
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &SimulationError{Err: ErrEmptyResponse}
	}
	return text, nil
}

// CreateConversation opens a remediation chat about cc.Report.
func (g *Gemini) CreateConversation(ctx context.Context, cc model.ConversationContext) (Conversation, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(chatInstruction(cc), genai.RoleUser),
		Temperature:       genai.Ptr[float32](chatTemperature),
	}

	chat, err := g.client.Chats.Create(ctx, g.chatModel, config, nil)
	if err != nil {
		return nil, &ChatError{Op: "create", Err: err}
	}
	return &geminiConversation{chat: chat, logger: g.logger}, nil
}

// geminiConversation is a Conversation backed by a genai chat session.
type geminiConversation struct {
	mu     sync.Mutex
	chat   *genai.Chat
	closed bool
	logger *slog.Logger
}

// Send sends one user turn.
func (c *geminiConversation) Send(ctx context.Context, message string, attachments []model.Attachment) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", &ChatError{Op: "send", Err: ErrConversationClosed}
	}
	if strings.TrimSpace(message) == "" {
		message = defaultAttachmentPrompt
	}

	parts := requestParts(message, attachments, "REFERENCE FILE")
	values := make([]genai.Part, len(parts))
	for i, p := range parts {
		values[i] = *p
	}

	resp, err := c.chat.SendMessage(ctx, values...)
	if err != nil {
		c.logger.Debug("chat turn failed", "error", err)
		return "", &ChatError{Op: "send", Err: err}
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &ChatError{Op: "send", Err: ErrEmptyResponse}
	}
	return text, nil
}

// Close marks the conversation closed. The chat history is released with it.
func (c *geminiConversation) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.chat = nil
	return nil
}

// requestParts builds the parts of a user turn. Text attachments follow the
// prompt as labelled text parts; binary attachments are sent inline.
func requestParts(prompt string, attachments []model.Attachment, label string) []*genai.Part {
	parts := make([]*genai.Part, 0, 1+len(attachments))
	parts = append(parts, genai.NewPartFromText(prompt))
	for _, a := range attachments {
		switch {
		case a.Text != "":
			parts = append(parts, genai.NewPartFromText(fmt.Sprintf("%s [%s]:\n\n%s", label, a.Name, a.Text)))
		case len(a.Data) > 0:
			parts = append(parts, genai.NewPartFromBytes(a.Data, a.MIMEType))
		}
	}
	return parts
}

// validationSchema describes the JSON answer of ValidateInput.
func validationSchema() *genai.Schema {
	field := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":          {Type: genai.TypeString},
			"label":       {Type: genai.TypeString},
			"type":        {Type: genai.TypeString, Description: "One of: text, select, boolean, number"},
			"description": {Type: genai.TypeString},
			"options": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Only for type select",
			},
		},
		Required: []string{"id", "label", "type", "description"},
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"isComplete":    {Type: genai.TypeBoolean, Description: "True if no critical information is missing."},
			"missingFields": {Type: genai.TypeArray, Items: field},
			"reasoning":     {Type: genai.TypeString, Description: "Why the input is or is not complete."},
		},
		Required: []string{"isComplete", "missingFields", "reasoning"},
	}
}

// decodeValidation parses the JSON answer of ValidateInput.
func decodeValidation(text string) (model.ValidationResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ValidationResult{}, ErrEmptyResponse
	}

	var result model.ValidationResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return model.ValidationResult{}, fmt.Errorf("failed to decode validation result: %w", err)
	}
	if result.MissingFields == nil {
		result.MissingFields = []model.MissingField{}
	}
	return result, nil
}

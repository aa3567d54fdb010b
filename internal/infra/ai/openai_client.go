package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/xavierca1/lead-capture/internal/entity"
)

const salesSystemPrompt = "You are a sales assistant for an online store. " +
	"Be short, friendly, persuasive. " +
	"Ask only ONE question at a time. " +
	"Collect name, product interest, and contact info. " +
	"If user shows buying intent, mark as HOT."

const classifierSystemPrompt = "You are an intent classifier. " +
	"Respond with only one word: HOT, WARM, COLD, or NEUTRAL."

// OpenAIClient backs both the responder and the classifier contracts with
// chat completions. GenerateReply reports errors so the catalog responder
// can fall back; Classify absorbs them itself.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (c *OpenAIClient) GenerateReply(ctx context.Context, text string, history []entity.Message) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: salesSystemPrompt,
	})
	for _, m := range history {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    chatRole(m.Role),
			Content: m.Content,
		})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		MaxTokens:   150,
		Temperature: 0.7,
	})
	if err != nil {
		log.Printf("[ai] completion error: %v", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty choices from model %s", c.model)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Classify returns one of HOT/WARM/COLD/NEUTRAL. Unrecognized model output
// and API failures both come back as NEUTRAL, which downstream treats as
// "no intent change".
func (c *OpenAIClient) Classify(ctx context.Context, text string, history []entity.Message) entity.LeadIntent {
	recent := make([]string, 0, 5)
	for _, m := range history {
		recent = append(recent, m.Content)
	}
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}

	prompt := fmt.Sprintf(
		"Based on the following conversation, determine the user's intent: "+
			"Conversation: %v Latest message: %s "+
			"Respond with one of: HOT, WARM, COLD, or NEUTRAL",
		recent, text,
	)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifierSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   10,
		Temperature: 0.1,
	})
	if err != nil {
		log.Printf("[ai] classify error: %v", err)
		return entity.IntentNeutral
	}
	if len(resp.Choices) == 0 {
		return entity.IntentNeutral
	}

	label := entity.LeadIntent(strings.ToUpper(strings.TrimSpace(resp.Choices[0].Message.Content)))
	if !label.Storable() && label != entity.IntentNeutral {
		log.Printf("[ai] unrecognized intent label %q, treating as NEUTRAL", label)
		return entity.IntentNeutral
	}
	return label
}

func chatRole(role string) string {
	if role == entity.RoleAssistant {
		return openai.ChatMessageRoleAssistant
	}
	return openai.ChatMessageRoleUser
}

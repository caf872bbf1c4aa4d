package ai

import "fmt"

// SystemPrompt frames the model as a concise, enthusiastic parks expert.
const SystemPrompt = "You are a helpful Disney theme parks expert assistant. " +
	"Provide accurate, friendly information about Disney parks, resorts, rides, attractions, special events, and policies. " +
	"Keep responses concise, exciting, and factual for the customer."

// Default sampling parameters. The temperature sits at the high end of the
// range, so answers to the same question vary between calls.
const (
	DefaultMaxTokens   = 300
	DefaultTemperature = 1.0
)

// BuildQuestionPrompt wraps a raw guest question in the domain template.
func BuildQuestionPrompt(domain, question string) string {
	if domain == "" {
		domain = "Disney"
	}
	return fmt.Sprintf("Please answer this %s-related question: %s", domain, question)
}

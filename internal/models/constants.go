// Package models contains data types and constants for the support chat widget.
package models

import "strings"

// Endpoints for the chat-completions API
const (
	EndpointChatCompletions = "https://api.openai.com/v1/chat/completions"
	EndpointBaseURL         = "https://api.openai.com/v1/"
)

// DefaultModel is the model identifier sent with every completion request
const DefaultModel = "gpt-3.5-turbo"

// DefaultBrand is the company the support bot speaks for
const DefaultBrand = "Bobee"

// FailureMessage is shown as an assistant turn when a completion request fails
const FailureMessage = "Something went wrong, please try again."

// Widget labels
const (
	WidgetTitle       = "Support Bot"
	WidgetStatus      = "Online"
	WidgetTypingText  = "Assistant is typing..."
	CustomerLabel     = "Customer"
	AssistantLabel    = "Assistant"
	PlaceholderPrefix = "Speak to "
)

// SystemInstruction returns the fixed instruction that prefixes every request
func SystemInstruction(brand string) string {
	brand = brandOrDefault(brand)
	return strings.Join([]string{
		"You are a support bot for " + brand + ", a company that offers on-demand cleaning services.",
		"Your task is to assist customers with inquiries about " + brand + "'s services, mission, pricing, and general cleaning topics.",
		"If the customer asks about anything unrelated to " + brand + " or cleaning or something similar, politely inform them that you can only assist with " + brand + "-related or cleaning-related queries.",
	}, " ")
}

// SystemTurn wraps SystemInstruction in a system Turn
func SystemTurn(brand string) Turn {
	return NewSystemTurn(SystemInstruction(brand))
}

// RedirectMessage is the canned reply for off-topic questions
func RedirectMessage(brand string) string {
	return "I'm here to help with questions about " + brandOrDefault(brand) +
		" and cleaning services. Please ask something related to those topics!"
}

// Placeholder returns the input placeholder for the brand
func Placeholder(brand string) string {
	return PlaceholderPrefix + brandOrDefault(brand)
}

func brandOrDefault(brand string) string {
	if strings.TrimSpace(brand) == "" {
		return DefaultBrand
	}
	return brand
}

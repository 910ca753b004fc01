// Package assistant answers visitor questions about DonationHub with a
// Gemini model primed with the live campaign list.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"donationhub/internal/logger"
	"donationhub/internal/models"
)

const (
	Greeting    = "Hello! I'm the DonationHub AI Assistant. How can I help you today? You can ask me about our campaigns, how to donate, or our mission."
	Unavailable = "Sorry, the chat is not available right now."
	Apology     = "I'm sorry, I encountered an error. Please try asking in a different way."

	maxHistory       = 20
	campaignCacheTTL = 5 * time.Minute
)

// Sender identifies who wrote a message.
type Sender string

const (
	User Sender = "user"
	Bot  Sender = "bot"
)

// Message is one chat bubble.
type Message struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// Generator produces the model's reply to prompt given the conversation so
// far.
type Generator interface {
	Generate(ctx context.Context, system string, history []Message, prompt string) (string, error)
}

// CampaignLister supplies the campaigns the assistant may talk about.
type CampaignLister func(ctx context.Context) ([]models.Campaign, error)

// SystemInstruction primes the model with the platform's purpose and the
// current campaigns.
func SystemInstruction(campaigns []models.Campaign) string {
	lines := make([]string, 0, len(campaigns))
	for _, c := range campaigns {
		lines = append(lines, fmt.Sprintf("- %s (Goal: %s, Raised: %s)", c.Title, models.Rupees(c.Goal), models.Rupees(c.Raised)))
	}

	var b strings.Builder
	b.WriteString("You are a friendly and helpful AI assistant for DonationHub, a platform for charitable giving. ")
	b.WriteString("Your role is to assist users by answering their questions about the platform, our mission, how to donate, ")
	b.WriteString("information about campaigns, and our commitment to transparency. ")
	b.WriteString("Be concise, polite, and guide users to relevant pages on the website when appropriate. ")
	b.WriteString("Do not provide financial advice. Here is a list of current active campaigns:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\nKeep your answers helpful and not too long.")
	return b.String()
}

// Assistant is safe for concurrent use.
type Assistant struct {
	gen       Generator
	campaigns CampaignLister
	refresh   singleflight.Group

	mu       sync.Mutex
	system   string
	loadedAt time.Time
	now      func() time.Time
}

// New creates an assistant. A nil generator makes every reply Unavailable.
func New(gen Generator, campaigns CampaignLister) *Assistant {
	return &Assistant{gen: gen, campaigns: campaigns, now: time.Now}
}

// Enabled reports whether a model is configured.
func (a *Assistant) Enabled() bool {
	return a != nil && a.gen != nil
}

// Reply answers message. Failures are logged and answered with Apology.
func (a *Assistant) Reply(ctx context.Context, history []Message, message string) string {
	if !a.Enabled() {
		return Unavailable
	}
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	text, err := a.gen.Generate(ctx, a.instruction(ctx), history, message)
	if err != nil {
		logger.ErrorContext(ctx, "assistant reply failed", "error", err)
		return Apology
	}
	if strings.TrimSpace(text) == "" {
		return Apology
	}
	return text
}

// instruction returns the cached system instruction, rebuilding it when the
// campaign list is stale. The list is fetched without holding the lock and
// concurrent refreshes share one fetch. A failed refresh keeps the previous
// instruction.
func (a *Assistant) instruction(ctx context.Context) string {
	a.mu.Lock()
	system, fresh := a.system, a.system != "" && a.now().Sub(a.loadedAt) < campaignCacheTTL
	a.mu.Unlock()
	if fresh {
		return system
	}

	v, _, _ := a.refresh.Do("campaigns", func() (any, error) {
		var campaigns []models.Campaign
		if a.campaigns != nil {
			list, err := a.campaigns(ctx)
			if err != nil {
				logger.WarnContext(ctx, "assistant could not load campaigns", "error", err)
				a.mu.Lock()
				previous := a.system
				a.mu.Unlock()
				if previous != "" {
					return previous, nil
				}
			}
			campaigns = list
		}

		built := SystemInstruction(campaigns)
		a.mu.Lock()
		a.system, a.loadedAt = built, a.now()
		a.mu.Unlock()
		return built, nil
	})
	return v.(string)
}

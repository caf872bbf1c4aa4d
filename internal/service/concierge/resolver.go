// Package concierge decides how each guest question is answered and runs
// the per-session turn pipeline around that decision.
package concierge

import (
	"context"
	"log"

	"github.com/zhouzirui/park-concierge/backend/internal/model/chat"
	"github.com/zhouzirui/park-concierge/backend/internal/model/faq"
	"github.com/zhouzirui/park-concierge/backend/internal/observe"
	"github.com/zhouzirui/park-concierge/backend/internal/service/ai"
)

// Completer produces a non-empty answer for a prompt. Failures come back as
// apology text, never as an error.
type Completer interface {
	Complete(ctx context.Context, prompt string) string
}

// Resolution is the answer for one question and the path that produced it.
// Keyword is set only on the FAQ path.
type Resolution struct {
	Answer  string      `json:"answer"`
	Source  chat.Source `json:"source"`
	Keyword string      `json:"keyword,omitempty"`
}

// Resolver answers from the FAQ table first and falls back to the
// completion client on a miss.
type Resolver struct {
	table     *faq.Table
	completer Completer
	domain    string
	metrics   *observe.Metrics
}

// NewResolver wires the lookup table and the fallback client. completer may
// be nil, in which case misses get an apology.
func NewResolver(table *faq.Table, completer Completer, domain string, metrics *observe.Metrics) *Resolver {
	return &Resolver{
		table:     table,
		completer: completer,
		domain:    domain,
		metrics:   metrics,
	}
}

// Resolve classifies the question and returns the answer with its source.
// The source is decided here, once, before the answer is returned.
func (r *Resolver) Resolve(ctx context.Context, question string) Resolution {
	if entry, ok := r.table.Lookup(question); ok {
		r.metrics.RecordResolution(ctx, string(chat.SourceFAQ))
		log.Printf("[concierge] FAQ hit keyword=%q", entry.Keyword)
		return Resolution{Answer: entry.Answer, Source: chat.SourceFAQ, Keyword: entry.Keyword}
	}

	r.metrics.RecordResolution(ctx, string(chat.SourceAI))
	if r.completer == nil {
		return Resolution{Answer: ai.Apology(errNoCompleter), Source: chat.SourceAI}
	}

	answer := r.completer.Complete(ctx, ai.BuildQuestionPrompt(r.domain, question))
	return Resolution{Answer: answer, Source: chat.SourceAI}
}

// Package summarize turns raw feed text into short news-feed summaries
// via a completion provider, with throttling and bounded retries.
package summarize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/nrouizem/ctic-news-feed/internal/ai"
	"github.com/nrouizem/ctic-news-feed/internal/textutil"
)

// badOutputMarker shows up when a provider echoes scraped page markup
// back instead of a summary.
const badOutputMarker = "field--name-body"

// fallbackLen is how much of the plain text survives when no AI summary
// is available.
const fallbackLen = 250

const prompt = `Please summarize the following article in 2 sentences, ` +
	`focusing on any mention of business deals, partnerships, mergers, or ` +
	`acquisitions. If none exist, summarize the article normally. The purpose ` +
	`is to directly put this summary in a news feed, so the summary should be ` +
	`engaging while being completely accurate to the article. ` +
	`Provide only the 2-sentence summary (with a focus on deals if applicable), and nothing else.

%s
`

// Options tune the adapter; zero values get defaults.
type Options struct {
	Interval    time.Duration // minimum gap between provider calls
	MaxAttempts int           // attempts per text before giving up
	RetryBase   time.Duration // first backoff after a malformed response
	CallTimeout time.Duration // per-call deadline
}

type Summarizer struct {
	client      ai.Client
	limiter     *rate.Limiter
	maxAttempts int
	retryBase   time.Duration
	callTimeout time.Duration
}

func New(client ai.Client, opts Options) *Summarizer {
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = 30 * time.Second
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 60 * time.Second
	}
	return &Summarizer{
		client:      client,
		limiter:     rate.NewLimiter(rate.Every(opts.Interval), 1),
		maxAttempts: opts.MaxAttempts,
		retryBase:   opts.RetryBase,
		callTimeout: opts.CallTimeout,
	}
}

// Summarize produces a two-sentence summary of text. A malformed
// provider response (empty, or contaminated with page markup) is
// retried with exponential backoff up to the attempt limit. Transport
// errors are returned immediately; callers should substitute
// FallbackSummary.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	delay := s.retryBase
	for attempt := 1; ; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}

		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		out, err := s.client.Complete(callCtx, fmt.Sprintf(prompt, text))
		cancel()
		if err != nil {
			return "", err
		}

		out = strings.TrimSpace(out)
		if out != "" && !strings.Contains(out, badOutputMarker) {
			return out, nil
		}

		if attempt >= s.maxAttempts {
			return "", fmt.Errorf("malformed summary after %d attempts", attempt)
		}
		if err := sleep(ctx, delay); err != nil {
			return "", err
		}
		delay *= 2
	}
}

// FallbackSummary is the deterministic substitute when no AI summary
// could be produced: a truncated excerpt of the plain text.
func FallbackSummary(text string) string {
	return textutil.Truncate(text, fallbackLen)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

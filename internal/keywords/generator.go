package keywords

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nrouizem/ctic-news-feed/internal/ai"
)

const prompt = `Please provide a list of 20 single-word keywords related to ` +
	`the therapeutic area of %s. I will be parsing the output programmatically, ` +
	`so provide only the keywords as a comma-separated list, and nothing else.
`

var splitPattern = regexp.MustCompile(`[,\s]+`)

// Options tune keyword generation; zero values get defaults.
type Options struct {
	MaxAttempts int           // attempts per area when the provider returns nothing
	RetryBase   time.Duration // first backoff after an empty response
}

// Generator answers "what keywords define this area", caching results
// so each area costs at most one provider call ever.
type Generator struct {
	client      ai.Client
	cache       *Cache
	maxAttempts int
	retryBase   time.Duration
}

func NewGenerator(client ai.Client, cache *Cache, opts Options) *Generator {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = 30 * time.Second
	}
	return &Generator{
		client:      client,
		cache:       cache,
		maxAttempts: opts.MaxAttempts,
		retryBase:   opts.RetryBase,
	}
}

// Lookup returns the keyword set for an area, serving from the cache
// when possible. A cached set is reused verbatim until evicted. An
// empty provider response is retried rather than cached, so a bad
// result never poisons the cache. On provider error the area has no
// keywords and callers should treat it as matching nothing.
func (g *Generator) Lookup(ctx context.Context, area string) ([]string, error) {
	kws, ok, err := g.cache.Get(area)
	if err != nil {
		return nil, err
	}
	if ok {
		return kws, nil
	}

	if g.client == nil {
		return nil, fmt.Errorf("keywords for %s: AI not configured", area)
	}

	raw, err := g.generate(ctx, area)
	if err != nil {
		return nil, fmt.Errorf("generating keywords for %s: %w", area, err)
	}

	kws = Normalize(raw, area)
	if err := g.cache.Put(area, kws); err != nil {
		return nil, err
	}
	return kws, nil
}

func (g *Generator) generate(ctx context.Context, area string) (string, error) {
	delay := g.retryBase
	for attempt := 1; ; attempt++ {
		out, err := g.client.Complete(ctx, fmt.Sprintf(prompt, area))
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(out) != "" {
			return out, nil
		}
		// Empty responses are transient; retry instead of caching them.
		if attempt >= g.maxAttempts {
			return "", fmt.Errorf("empty response after %d attempts", attempt)
		}
		if err := sleep(ctx, delay); err != nil {
			return "", err
		}
		delay *= 2
	}
}

// Normalize splits a comma-separated provider response into lowercase
// keywords, with the area name itself appended as an implicit keyword.
func Normalize(raw, area string) []string {
	var kws []string
	for _, kw := range splitPattern.Split(raw, -1) {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			kws = append(kws, kw)
		}
	}
	return append(kws, strings.ToLower(area))
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

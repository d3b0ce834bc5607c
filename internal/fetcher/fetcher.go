package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"sjsage522/dealbite/helpers"
	"sjsage522/dealbite/logger"
	apperrors "sjsage522/dealbite/pkg/errors"
	"sjsage522/dealbite/services/cache"
)

// Options configures an HTTPFetcher
type Options struct {
	Timeout   time.Duration
	BlockTime time.Duration
	Cache     cache.CacheService
	// Rate and Burst bound requests per host. Zero Rate means one per second.
	Rate  rate.Limit
	Burst int
}

// HTTPFetcher retrieves deals pages and returns their visible text.
// It makes a single attempt per call.
type HTTPFetcher struct {
	client    *http.Client
	cache     cache.CacheService
	blockTime time.Duration
	rate      rate.Limit
	burst     int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	log *logger.Logger
}

// New creates an HTTPFetcher
func New(opts Options) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Rate == 0 {
		opts.Rate = rate.Every(time.Second)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: opts.Timeout},
		cache:     opts.Cache,
		blockTime: opts.BlockTime,
		rate:      opts.Rate,
		burst:     opts.Burst,
		limiters:  map[string]*rate.Limiter{},
		log:       logger.ForFetcher(),
	}
}

func (f *HTTPFetcher) limiterFor(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(f.rate, f.burst)
	f.limiters[host] = l
	return l
}

func blockKey(host string) string {
	return strings.ReplaceAll(host, ":", "_") + "_rate_limited"
}

// FetchText downloads pageURL and returns its visible text with whitespace
// collapsed. While a host is inside its block window the call fails fast.
func (f *HTTPFetcher) FetchText(ctx context.Context, pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return "", apperrors.NewValidation(pageURL, "invalid page url")
	}
	host := u.Host

	if f.cache != nil {
		if _, err := f.cache.Get(blockKey(host)); err == nil {
			return "", apperrors.NewRateLimit(host, f.blockTime)
		}
	}

	if err := f.limiterFor(host).Wait(ctx); err != nil {
		return "", apperrors.NewNetwork(host, "rate limiter wait aborted", err)
	}

	start := time.Now()
	body, err := helpers.FetchWithRandomHeaders(ctx, f.client, pageURL)
	if err != nil {
		var statusErr *helpers.StatusError
		if errors.As(err, &statusErr) && statusErr.IsRateLimit() {
			f.block(host)
			return "", apperrors.New(apperrors.ErrorTypeRateLimit, host, "deals page rate limited", err)
		}
		return "", apperrors.NewNetwork(host, "failed to fetch deals page", err)
	}

	text, err := VisibleText(body)
	if err != nil {
		return "", apperrors.NewParsing(host, "failed to parse deals page", err)
	}

	f.log.Debug().
		Str("url", pageURL).
		Dur("elapsed", time.Since(start)).
		Int("chars", len(text)).
		Msg("Fetched deals page")
	return text, nil
}

func (f *HTTPFetcher) block(host string) {
	if f.cache == nil || f.blockTime <= 0 {
		return
	}
	value := []byte(fmt.Sprintf("%d", int(f.blockTime/time.Second)))
	if err := f.cache.Set(blockKey(host), value, f.blockTime); err != nil {
		f.log.Warn().Err(err).Str("host", host).Msg("Failed to set rate limit block")
	}
}

var skippedElements = "script, style, noscript, template, svg, iframe"

// VisibleText parses an HTML document and returns the text a reader would
// see, in document order, with element boundaries turned into spaces.
func VisibleText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}
	doc.Find(skippedElements).Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var b strings.Builder
	for _, n := range root.Nodes {
		writeText(&b, n)
	}
	return helpers.CollapseWhitespace(b.String()), nil
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	}
	b.WriteByte(' ')
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	b.WriteByte(' ')
}

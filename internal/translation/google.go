package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/golu19102003/Multilangual-Chat-Translator/internal/chaterr"
)

// GoogleTranslator calls the public translate endpoint. Calls are rate
// limited client-side and guarded by a circuit breaker so a flapping
// upstream degrades to original-text delivery instead of piling up
// timeouts.
type GoogleTranslator struct {
	endpoint string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
	limiter  *rate.Limiter
}

func NewGoogleTranslator(endpoint string, timeout time.Duration, perSecond float64, burst int) *GoogleTranslator {
	return &GoogleTranslator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "translate-upstream",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (g *GoogleTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	translated, _, err := g.call(ctx, text, sourceLang, targetLang)
	return translated, err
}

func (g *GoogleTranslator) Detect(ctx context.Context, text string) (string, error) {
	_, detected, err := g.call(ctx, text, LanguageAuto, "en")
	return detected, err
}

func (g *GoogleTranslator) call(ctx context.Context, text, sourceLang, targetLang string) (string, string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", "", chaterr.ErrTranslationUnavailable
	}
	res, err := g.breaker.Execute(func() (interface{}, error) {
		return g.request(ctx, text, sourceLang, targetLang)
	})
	if err != nil {
		return "", "", chaterr.ErrTranslationUnavailable
	}
	out := res.(result)
	return out.text, out.detected, nil
}

type result struct {
	text     string
	detected string
}

func (g *GoogleTranslator) request(ctx context.Context, text, sourceLang, targetLang string) (result, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", sourceLang)
	q.Set("tl", targetLang)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return result{}, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return result{}, fmt.Errorf("translate upstream status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result{}, err
	}
	return parseResponse(body)
}

// parseResponse unpacks the endpoint's positional JSON: element 0 holds
// translated segments, element 2 the detected source language.
func parseResponse(body []byte) (result, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return result{}, err
	}
	if len(raw) == 0 {
		return result{}, fmt.Errorf("translate upstream: empty response")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(raw[0], &segments); err != nil {
		return result{}, err
	}
	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(seg[0], &part); err != nil {
			continue
		}
		sb.WriteString(part)
	}

	var detected string
	if len(raw) > 2 {
		_ = json.Unmarshal(raw[2], &detected)
	}
	return result{text: sb.String(), detected: detected}, nil
}

package translation

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/golu19102003/Multilangual-Chat-Translator/internal/models"
)

var (
	upstreamCalls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_translation_upstream_calls_total",
		Help: "Calls made to the upstream translation capability.",
	})
	upstreamFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_translation_upstream_failures_total",
		Help: "Upstream translation calls that failed or timed out.",
	})
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_translation_cache_hits_total",
		Help: "Translation lookups served from cache.",
	})
)

// Service fronts the upstream translator with a TTL cache and the
// per-language batching used by the message pipeline.
type Service struct {
	upstream Translator
	cache    Cache
	timeout  time.Duration
	fallback string
	log      *zap.SugaredLogger
}

func NewService(upstream Translator, cache Cache, timeout time.Duration, fallbackLanguage string, log *zap.SugaredLogger) *Service {
	return &Service{
		upstream: upstream,
		cache:    cache,
		timeout:  timeout,
		fallback: fallbackLanguage,
		log:      log,
	}
}

// Translate returns text converted from sourceLang to targetLang.
// Same-language requests return the text unchanged without touching the
// upstream: downstream callers rely on same-language round-trips being
// lossless. The cache is consulted before every upstream call.
func (s *Service) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if sourceLang != LanguageAuto && sourceLang == targetLang {
		return text, nil
	}
	if cached, ok := s.cache.Get(ctx, text, sourceLang, targetLang); ok {
		cacheHits.Inc()
		return cached, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	upstreamCalls.Inc()
	translated, err := s.upstream.Translate(callCtx, text, sourceLang, targetLang)
	if err != nil {
		upstreamFailures.Inc()
		return "", err
	}
	s.cache.Set(ctx, text, sourceLang, targetLang, translated)
	return translated, nil
}

// TranslateForRecipients produces one translation per distinct
// preferred language among the recipients that differs from the
// original language. Recipients sharing a language share one call. A
// failed language is omitted; those recipients fall back to the
// original text at delivery time.
func (s *Service) TranslateForRecipients(ctx context.Context, content, originalLang string, recipients []*models.User) []Translated {
	seen := make(map[string]struct{}, len(recipients))
	var out []Translated
	for _, r := range recipients {
		lang := r.PreferredLanguage
		if lang == "" || lang == originalLang {
			continue
		}
		if _, dup := seen[lang]; dup {
			continue
		}
		seen[lang] = struct{}{}

		text, err := s.Translate(ctx, content, originalLang, lang)
		if err != nil {
			s.log.Warnw("translation failed, delivering original text", "language", lang, "error", err)
			continue
		}
		out = append(out, Translated{Language: lang, Text: text})
	}
	return out
}

// FallbackLanguage returns the code assumed when a message carries no
// language and none can be detected.
func (s *Service) FallbackLanguage() string {
	return s.fallback
}

// DetectLanguage is best-effort: on failure it returns the configured
// fallback code rather than an error.
func (s *Service) DetectLanguage(ctx context.Context, text string) string {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	code, err := s.upstream.Detect(callCtx, text)
	if err != nil || code == "" {
		return s.fallback
	}
	return code
}

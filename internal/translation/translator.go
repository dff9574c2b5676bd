package translation

import "context"

// LanguageAuto asks the upstream capability to detect the source language.
const LanguageAuto = "auto"

// Translator is the upstream translation capability: single call,
// fallible, rate-limited, latency-variable.
type Translator interface {
	// Translate converts text from sourceLang to targetLang.
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
	// Detect returns the ISO code of the text's language.
	Detect(ctx context.Context, text string) (string, error)
}

// Language is one entry of the supported-language list.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Translated is one per-language result of a batched translation.
type Translated struct {
	Language string
	Text     string
}

package translation

// SupportedLanguages lists the language codes the UI offers as
// preferred-language choices.
func SupportedLanguages() []Language {
	return []Language{
		{Code: "en", Name: "English"},
		{Code: "es", Name: "Spanish"},
		{Code: "fr", Name: "French"},
		{Code: "de", Name: "German"},
		{Code: "it", Name: "Italian"},
		{Code: "pt", Name: "Portuguese"},
		{Code: "ru", Name: "Russian"},
		{Code: "zh", Name: "Chinese"},
		{Code: "ja", Name: "Japanese"},
		{Code: "ko", Name: "Korean"},
		{Code: "ar", Name: "Arabic"},
		{Code: "hi", Name: "Hindi"},
		{Code: "bn", Name: "Bengali"},
		{Code: "ta", Name: "Tamil"},
		{Code: "te", Name: "Telugu"},
		{Code: "mr", Name: "Marathi"},
		{Code: "gu", Name: "Gujarati"},
		{Code: "kn", Name: "Kannada"},
		{Code: "ml", Name: "Malayalam"},
		{Code: "pa", Name: "Punjabi"},
		{Code: "ur", Name: "Urdu"},
	}
}

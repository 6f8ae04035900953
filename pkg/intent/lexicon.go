package intent

import (
	"strings"

	"github.com/qa-canvas/canvasd/pkg/models"
)

// Language is the detected user language. Only English and Spanish are
// distinguished; everything else is treated as English.
type Language string

const (
	LangEnglish Language = "en"
	LangSpanish Language = "es"
)

// spanishMarkers are characters and phrases that only (or almost only)
// occur in Spanish text.
var spanishMarkers = []string{
	"¿", "¡", "ñ", "á", "é", "í", "ó", "ú",
	"por favor", "agrega", "añade", "necesito", "puedes",
	"caso de prueba", "casos de prueba", "criterios", "documento",
	"gracias", "hola", "cómo", "qué", "más",
}

// DetectLanguage guesses the language of a user message.
func DetectLanguage(message string) Language {
	lower := strings.ToLower(message)
	hits := 0
	for _, marker := range spanishMarkers {
		if strings.Contains(lower, marker) {
			hits++
		}
	}
	if hits >= 2 {
		return LangSpanish
	}
	return LangEnglish
}

// modifyKeywords signal a request to change the document, in English
// and Spanish.
var modifyKeywords = []string{
	"add", "remove", "delete", "change", "update", "rewrite", "modify",
	"fix", "correct", "improve", "expand", "shorten", "more", "fewer",
	"agrega", "añade", "quita", "elimina", "cambia", "actualiza",
	"modifica", "corrige", "mejora", "amplía", "más",
}

// questionKeywords signal an informational question.
var questionKeywords = []string{
	"what", "why", "how", "which", "where", "explain", "mean",
	"qué", "por qué", "cómo", "cuál", "dónde", "explica", "significa",
}

// offTopicKeywords signal content unrelated to QA documentation.
var offTopicKeywords = []string{
	"weather", "recipe", "joke", "movie", "football", "stock", "lottery",
	"clima", "receta", "chiste", "película", "fútbol", "lotería",
}

// qaKeywords anchor a message to the QA documentation domain.
var qaKeywords = []string{
	"test", "criteria", "criterion", "scenario", "canvas", "document",
	"bug", "ticket", "qa", "coverage", "regression", "edge case",
	"prueba", "criterio", "escenario", "documento", "cobertura",
}

// sectionLexicon maps each canvas section to the phrases users employ
// to refer to it, in English and Spanish.
var sectionLexicon = map[models.CanvasSection][]string{
	models.SectionTicketSummary: {
		"summary", "problem statement", "overview", "description",
		"resumen", "problema", "descripción",
	},
	models.SectionAcceptanceCriteria: {
		"acceptance criteria", "criteria", "criterion", "requirement",
		"criterios de aceptación", "criterios", "criterio", "requisito",
	},
	models.SectionTestCases: {
		"test case", "test cases", "scenario", "scenarios", "gherkin",
		"steps", "given", "edge case", "negative test",
		"caso de prueba", "casos de prueba", "escenario", "escenarios",
	},
	models.SectionConfigurationWarnings: {
		"warning", "warnings", "configuration",
		"advertencia", "advertencias", "configuración",
	},
	models.SectionMetadata: {
		"version", "metadata", "versión", "metadatos",
	},
}

// countMatches returns how many lexicon entries occur in the message.
func countMatches(lower string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			count++
		}
	}
	return count
}

// hasAmbiguitySignals reports whether a message contains the explicit
// ambiguity markers that justify asking for clarification: bare
// pronouns without a referent, or mutually exclusive asks.
func hasAmbiguitySignals(message string) bool {
	lower := strings.ToLower(message)
	words := strings.Fields(lower)

	pronouns := 0
	nouns := 0
	for _, w := range words {
		w = strings.Trim(w, ".,!?")
		switch w {
		case "it", "this", "that", "them", "esto", "eso", "lo":
			pronouns++
		case "summary", "criteria", "criterion", "test", "tests", "case",
			"cases", "scenario", "warning", "section", "document",
			"resumen", "criterios", "prueba", "pruebas", "escenario",
			"sección", "documento":
			nouns++
		}
	}
	if pronouns > 0 && nouns == 0 {
		return true
	}
	if strings.Contains(lower, "comprehensive") && strings.Contains(lower, "simple") {
		return true
	}
	return false
}

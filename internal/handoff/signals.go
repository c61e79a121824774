// Package handoff decides when the active persona should change.
//
// This file is the handoff signal library: static regex pattern sets that
// recognize explicit AI-authored handoff suggestions and crisis language,
// plus the total map from intent category to the persona type that should
// handle it.
package handoff

import (
	"regexp"

	"github.com/ConvergioEdu/StudyFlow/internal/models"
)

// MaestroSuggestionPatterns match assistant text in which the AI proposes a
// subject expert. Each pattern captures the suggested maestro's first name.
var MaestroSuggestionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:ti consiglio|potresti parlare con|c'è|chiedi a|il (?:professor|maestro))\s+(\w+)`),
	regexp.MustCompile(`(?i)per (?:questa materia|questo argomento).*?(?:meglio|ideale|perfetto)\s+(\w+)`),
	regexp.MustCompile(`(?i)\b(euclide|feynman|manzoni|leonardo|shakespeare|curie|socrate|mozart|erodoto|humboldt|smith)\b`),
}

// BuddySuggestionPatterns match assistant text in which the AI proposes peer
// support for an emotional need.
var BuddySuggestionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:capisco che|sembra che).*?(?:difficile|stressante|preoccupato|ansioso)`),
	regexp.MustCompile(`(?i)(?:mario|noemi).*?(?:può aiutarti|ti capisce|può ascoltarti)`),
	regexp.MustCompile(`(?i)(?:vuoi parlare con|potresti sentirti meglio parlando con).*?(?:un amico|qualcuno della tua età)`),
}

// CoachSuggestionPatterns match assistant text in which the AI proposes
// method or organization support.
var CoachSuggestionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:melissa|davide).*?(?:può aiutarti|sa come|organizzare)`),
	regexp.MustCompile(`(?i)(?:per organizzarti|per il metodo|per pianificare).*?(?:chiedi a|parla con)`),
}

// CrisisSignals match acute emotional distress in the combined user and
// assistant text of a turn.
var CrisisSignals = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:mi sento|sono)\s+(?:molto\s+)?(?:solo|sola|triste|disperato|disperata|senza speranza)`),
	regexp.MustCompile(`(?i)non ce la faccio più`),
	regexp.MustCompile(`(?i)nessuno mi capisce`),
	regexp.MustCompile(`(?i)voglio smettere`),
}

// IntentHandoffMap maps every intent category to the persona type that
// should handle it. The empty value means "no handoff from intent alone":
// tool requests and general chat stay with the current persona.
var IntentHandoffMap = map[models.IntentCategory]models.CharacterType{
	models.IntentAcademicHelp:     models.CharacterTypeMaestro,
	models.IntentMethodHelp:       models.CharacterTypeCoach,
	models.IntentEmotionalSupport: models.CharacterTypeBuddy,
	models.IntentCrisis:           models.CharacterTypeBuddy,
	models.IntentToolRequest:      "",
	models.IntentGeneralChat:      "",
}

// maestroIDByName maps the first names the suggestion patterns capture to
// catalog ids.
var maestroIDByName = map[string]string{
	"euclide":     "euclide-matematica",
	"feynman":     "feynman-fisica",
	"manzoni":     "manzoni-italiano",
	"leonardo":    "leonardo-arte",
	"shakespeare": "shakespeare-inglese",
	"curie":       "curie-chimica",
	"socrate":     "socrate-filosofia",
	"mozart":      "mozart-musica",
	"erodoto":     "erodoto-storia",
	"humboldt":    "humboldt-geografia",
	"smith":       "smith-economia",
}

// Package intent classifies single user utterances into intent categories.
//
// Classification is an ordered cascade of pattern families where the first
// match wins, not the highest confidence. The cascade order and per-family
// confidences are load-bearing: the handoff analyzer builds its decisions on
// top of them. Detection is pure and deterministic for identical input.
package intent

import (
	"regexp"
	"strings"

	"github.com/ConvergioEdu/StudyFlow/internal/models"
)

// Per-family confidences. Families are tried in cascade order; each carries
// a fixed confidence rather than a computed score.
const (
	ConfidenceCrisis      = 0.95
	ConfidenceEmotional   = 0.85
	ConfidenceMethod      = 0.80
	ConfidenceAcademic    = 0.90
	ConfidenceTool        = 0.80
	ConfidenceGeneralChat = 0.60
)

// Crisis terms. This family supersets the handoff signal library's crisis
// signals so that any utterance the signal scan would flag also classifies
// as crisis here.
var crisisPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)voglio morire`),
	regexp.MustCompile(`(?i)non voglio vivere`),
	regexp.MustCompile(`(?i)voglio ammazzarmi`),
	regexp.MustCompile(`(?i)farmi del male`),
	regexp.MustCompile(`(?i)mi odio`),
	regexp.MustCompile(`(?i)(?:mi sento|sono)\s+(?:molto\s+)?(?:solo|sola|triste|disperato|disperata|senza speranza)`),
	regexp.MustCompile(`(?i)non ce la faccio più`),
	regexp.MustCompile(`(?i)nessuno mi capisce`),
	regexp.MustCompile(`(?i)voglio smettere`),
}

var emotionalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:triste|ansia|ansios[oa]|stressat[oa]|preoccupat[oa]|stuf[oa]|scoraggiat[oa]|demoralizzat[oa])\b`),
	regexp.MustCompile(`(?i)\bho paura\b`),
	regexp.MustCompile(`(?i)voglia di piangere`),
	regexp.MustCompile(`(?i)troppe cose da fare`),
}

var methodPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)metodo di studio`),
	regexp.MustCompile(`(?i)come (?:faccio|posso) studiare`),
	regexp.MustCompile(`(?i)non riesco a concentrarmi`),
	regexp.MustCompile(`(?i)\borganizzar\w*\b`),
	regexp.MustCompile(`(?i)\bpianificare\b`),
	regexp.MustCompile(`(?i)gestisco il tempo`),
	regexp.MustCompile(`(?i)gestire il tempo`),
}

// subjectPattern pairs one subject with its keyword pattern. The table is
// ordered: the first subject whose pattern matches wins.
type subjectPattern struct {
	subject models.Subject
	pattern *regexp.Regexp
}

var subjectPatterns = []subjectPattern{
	{models.SubjectMathematics, regexp.MustCompile(`(?i)\b(?:matematica|equazion\w*|derivat\w*|algebra|geometria|frazion\w*|calcol\w*)\b`)},
	{models.SubjectPhysics, regexp.MustCompile(`(?i)\b(?:fisica|cinematica|velocit\w*|forza|energia)\b`)},
	{models.SubjectChemistry, regexp.MustCompile(`(?i)\b(?:chimica|chimich\w*|molecol\w*|reazion\w*)\b`)},
	{models.SubjectBiology, regexp.MustCompile(`(?i)\b(?:biologia|dna|cellul\w*|evoluzion\w*)\b`)},
	{models.SubjectHistory, regexp.MustCompile(`(?i)\b(?:storia|rivoluzione|impero|medioevo)\b`)},
	{models.SubjectGeography, regexp.MustCompile(`(?i)\b(?:geografia|continenti|capitali|fiumi)\b`)},
	{models.SubjectItalian, regexp.MustCompile(`(?i)\b(?:italiano|grammatica|grammatical\w*|verbi|letteratura)\b`)},
	{models.SubjectEnglish, regexp.MustCompile(`(?i)\b(?:inglese|english)\b`)},
	{models.SubjectArt, regexp.MustCompile(`(?i)\b(?:arte|leonardo da vinci|quadr\w*|dipint\w*)\b`)},
	{models.SubjectMusic, regexp.MustCompile(`(?i)\b(?:musica|mozart|note musicali|strument\w*)\b`)},
	{models.SubjectComputerScience, regexp.MustCompile(`(?i)\b(?:informatica|programmazione|codice|computer)\b`)},
	{models.SubjectEconomics, regexp.MustCompile(`(?i)\b(?:economia|mercato|inflazione)\b`)},
	{models.SubjectPhilosophy, regexp.MustCompile(`(?i)\b(?:filosofia|filosof\w*)\b`)},
}

var toolPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:mappa mentale|mappa concettuale|schema|diagramma)\b`),
	regexp.MustCompile(`(?i)\b(?:quiz|verifica|interrogazione|mi interroghi)\b`),
	regexp.MustCompile(`(?i)\b(?:flashcard|flash card)\b`),
	regexp.MustCompile(`(?i)\b(?:timeline|linea del tempo)\b`),
	regexp.MustCompile(`(?i)\briassunto\b`),
	regexp.MustCompile(`(?i)\b(?:demo|simulazione|animazione)\b`)}

var toolTypePatterns = []struct {
	tool    models.ToolType
	pattern *regexp.Regexp
}{
	{models.ToolTypeMindmap, regexp.MustCompile(`(?i)\b(?:mappa mentale|mappa concettuale|schema|diagramma|mappa)\b`)},
	{models.ToolTypeQuiz, regexp.MustCompile(`(?i)\b(?:quiz|test|verifica|interrogazione|mi interroghi)\b`)},
	{models.ToolTypeFlashcard, regexp.MustCompile(`(?i)\b(?:flashcard|flash card|carte per ripasso)\b`)},
	{models.ToolTypeDemo, regexp.MustCompile(`(?i)\b(?:demo|simulazione|animazione|interattiv\w*)\b`)},
}

// Detect classifies one utterance. The cascade is evaluated in order:
// crisis, emotional support, method help, subject academic, tool request,
// then general chat as the default. The first matching family returns
// immediately with its fixed confidence.
func Detect(message string) models.DetectedIntent {
	text := strings.TrimSpace(message)
	if text == "" {
		return models.DetectedIntent{Type: models.IntentGeneralChat, Confidence: ConfidenceGeneralChat}
	}

	for _, p := range crisisPatterns {
		if p.MatchString(text) {
			return models.DetectedIntent{Type: models.IntentCrisis, Confidence: ConfidenceCrisis}
		}
	}

	for _, p := range emotionalPatterns {
		if p.MatchString(text) {
			return models.DetectedIntent{Type: models.IntentEmotionalSupport, Confidence: ConfidenceEmotional}
		}
	}

	for _, p := range methodPatterns {
		if p.MatchString(text) {
			return models.DetectedIntent{Type: models.IntentMethodHelp, Confidence: ConfidenceMethod}
		}
	}

	for _, sp := range subjectPatterns {
		if sp.pattern.MatchString(text) {
			return models.DetectedIntent{
				Type:       models.IntentAcademicHelp,
				Confidence: ConfidenceAcademic,
				Subject:    sp.subject,
			}
		}
	}

	for _, p := range toolPatterns {
		if p.MatchString(text) {
			return models.DetectedIntent{
				Type:       models.IntentToolRequest,
				Confidence: ConfidenceTool,
				ToolType:   ToolTypeOf(text),
			}
		}
	}

	return models.DetectedIntent{Type: models.IntentGeneralChat, Confidence: ConfidenceGeneralChat}
}

// ToolTypeOf returns the study tool named in the message, or "" when the
// message names none.
func ToolTypeOf(message string) models.ToolType {
	for _, tp := range toolTypePatterns {
		if tp.pattern.MatchString(message) {
			return tp.tool
		}
	}
	return ""
}

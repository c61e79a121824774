package handoff

import (
	"fmt"
	"strings"

	"github.com/ConvergioEdu/StudyFlow/internal/catalog"
	"github.com/ConvergioEdu/StudyFlow/internal/character"
	"github.com/ConvergioEdu/StudyFlow/internal/intent"
	"github.com/ConvergioEdu/StudyFlow/internal/models"
)

// Context is one conversational turn as seen by the analyzer: the user
// message, the assistant's reply to it, and who is currently speaking.
type Context struct {
	UserMessage string
	AIResponse  string
	Current     character.ActiveCharacter
	Student     models.StudentProfile
	Language    string
}

// Suggestion proposes a specific persona to hand the conversation to.
type Suggestion struct {
	To         character.ActiveCharacter `json:"to"`
	Reason     string                    `json:"reason"`
	Confidence float64                   `json:"confidence"`
}

// Analysis is the analyzer's verdict for one turn.
type Analysis struct {
	ShouldHandoff bool        `json:"should_handoff"`
	Suggestion    *Suggestion `json:"suggestion,omitempty"`
	Confidence    float64     `json:"confidence"`
	Reason        string      `json:"reason"`
}

// Fixed confidences per detection step. Steps run in a fixed order and the
// first positive one wins, so a lower-confidence step can shadow a
// higher-confidence one that runs later.
const (
	confidenceExplicitMaestro = 0.85
	confidenceExplicitBuddy   = 0.80
	confidenceExplicitCoach   = 0.80
	confidenceIntentMismatch  = 0.70
	confidenceCrisis          = 0.95
	confidenceSubjectChange   = 0.85
	confidenceNoHandoff       = 0.90
)

const crisisReason = "Ti sento un po' giù. Vuoi parlare con qualcuno che ti capisce?"

// Italian subject labels used in user-facing handoff reasons.
var subjectLabels = map[models.Subject]string{
	models.SubjectMathematics:     "la matematica",
	models.SubjectPhysics:         "la fisica",
	models.SubjectChemistry:       "la chimica",
	models.SubjectBiology:         "la biologia",
	models.SubjectHistory:         "la storia",
	models.SubjectGeography:       "la geografia",
	models.SubjectItalian:         "l'italiano",
	models.SubjectEnglish:         "l'inglese",
	models.SubjectArt:             "l'arte",
	models.SubjectMusic:           "la musica",
	models.SubjectComputerScience: "l'informatica",
	models.SubjectEconomics:       "l'economia",
	models.SubjectPhilosophy:      "la filosofia",
}

func subjectLabel(s models.Subject) string {
	if label, ok := subjectLabels[s]; ok {
		return label
	}
	return string(s)
}

// bareSubjectLabel strips the article for use after "esperto di".
func bareSubjectLabel(s models.Subject) string {
	label := subjectLabel(s)
	label = strings.TrimPrefix(label, "la ")
	label = strings.TrimPrefix(label, "il ")
	label = strings.TrimPrefix(label, "l'")
	return label
}

// Analyze inspects one turn and decides whether the conversation should be
// handed to another persona. Detection steps run in a fixed order and the
// first positive one wins: explicit AI suggestion, intent mismatch, crisis
// signals, subject change, then no handoff.
func Analyze(ctx Context) Analysis {
	if s := detectExplicitSuggestion(ctx); s != nil {
		return Analysis{ShouldHandoff: true, Suggestion: s, Confidence: s.Confidence, Reason: s.Reason}
	}

	detected := intent.Detect(ctx.UserMessage)

	if s := checkIntentMismatch(ctx, detected); s != nil {
		return Analysis{ShouldHandoff: true, Suggestion: s, Confidence: s.Confidence, Reason: s.Reason}
	}

	if s := detectCrisisSignals(ctx); s != nil {
		return Analysis{ShouldHandoff: true, Suggestion: s, Confidence: s.Confidence, Reason: s.Reason}
	}

	if s := checkSubjectChange(ctx, detected); s != nil {
		return Analysis{ShouldHandoff: true, Suggestion: s, Confidence: s.Confidence, Reason: s.Reason}
	}

	return Analysis{
		ShouldHandoff: false,
		Confidence:    confidenceNoHandoff,
		Reason:        "current character fits the conversation",
	}
}

// detectExplicitSuggestion scans the assistant's reply for an explicit
// persona recommendation. Pattern families are tried maestro, buddy, coach;
// the family targeting the currently active persona type is skipped.
func detectExplicitSuggestion(ctx Context) *Suggestion {
	if ctx.AIResponse == "" {
		return nil
	}

	if ctx.Current.Type != models.CharacterTypeMaestro {
		for _, p := range MaestroSuggestionPatterns {
			m := p.FindStringSubmatch(ctx.AIResponse)
			if m == nil {
				continue
			}
			if s := suggestMaestroByName(ctx, m[1]); s != nil {
				return s
			}
		}
	}

	if ctx.Current.Type != models.CharacterTypeBuddy {
		for _, p := range BuddySuggestionPatterns {
			if p.MatchString(ctx.AIResponse) {
				return suggestBuddy(ctx, confidenceExplicitBuddy, "")
			}
		}
	}

	if ctx.Current.Type != models.CharacterTypeCoach {
		for _, p := range CoachSuggestionPatterns {
			if p.MatchString(ctx.AIResponse) {
				return suggestCoach(ctx, confidenceExplicitCoach)
			}
		}
	}

	return nil
}

// checkIntentMismatch proposes a handoff when the detected intent maps to a
// persona type other than the active one. A maestro target is skipped here:
// without a subject there is no way to pick which maestro.
func checkIntentMismatch(ctx Context, detected models.DetectedIntent) *Suggestion {
	target := IntentHandoffMap[detected.Type]
	if target == "" || target == ctx.Current.Type {
		return nil
	}

	switch target {
	case models.CharacterTypeCoach:
		return suggestCoach(ctx, confidenceIntentMismatch)
	case models.CharacterTypeBuddy:
		reason := ""
		if detected.Type == models.IntentCrisis {
			reason = crisisReason
		}
		return suggestBuddy(ctx, confidenceIntentMismatch, reason)
	default:
		return nil
	}
}

// detectCrisisSignals scans the combined user and assistant text of the turn
// for acute distress and proposes the buddy. The scan is unconditional: it
// fires even while a buddy is already active.
func detectCrisisSignals(ctx Context) *Suggestion {
	combined := ctx.UserMessage + " " + ctx.AIResponse
	for _, p := range CrisisSignals {
		if p.MatchString(combined) {
			return suggestBuddy(ctx, confidenceCrisis, crisisReason)
		}
	}
	return nil
}

// checkSubjectChange proposes the expert for the newly mentioned subject
// when a maestro is active and the student moves to a different subject.
func checkSubjectChange(ctx Context, detected models.DetectedIntent) *Suggestion {
	if ctx.Current.Type != models.CharacterTypeMaestro || detected.Subject == "" {
		return nil
	}
	current := ctx.Current.Character.Maestro
	if current == nil || current.Subject == detected.Subject {
		return nil
	}
	m := catalog.MaestroForSubject(detected.Subject)
	if m == nil {
		return nil
	}
	to := character.NewActiveCharacter(catalog.MaestroCharacter(m), ctx.Student, ctx.Language)
	return &Suggestion{
		To:         to,
		Reason:     fmt.Sprintf("Per %s, %s è l'esperto!", subjectLabel(detected.Subject), m.Name),
		Confidence: confidenceSubjectChange,
	}
}

func suggestMaestroByName(ctx Context, name string) *Suggestion {
	id, ok := maestroIDByName[strings.ToLower(name)]
	if !ok {
		return nil
	}
	m := catalog.MaestroByID(id)
	if m == nil {
		return nil
	}
	to := character.NewActiveCharacter(catalog.MaestroCharacter(m), ctx.Student, ctx.Language)
	return &Suggestion{
		To:         to,
		Reason:     fmt.Sprintf("%s è l'esperto di %s!", m.Name, bareSubjectLabel(m.Subject)),
		Confidence: confidenceExplicitMaestro,
	}
}

func suggestCoach(ctx Context, confidence float64) *Suggestion {
	c := CoachForStudent(ctx.Student)
	to := character.NewActiveCharacter(catalog.CoachCharacter(c), ctx.Student, ctx.Language)
	return &Suggestion{
		To:         to,
		Reason:     fmt.Sprintf("%s può aiutarti a organizzarti meglio!", c.Name),
		Confidence: confidence,
	}
}

func suggestBuddy(ctx Context, confidence float64, reason string) *Suggestion {
	b := BuddyForStudent(ctx.Student)
	if reason == "" {
		reason = fmt.Sprintf("%s ti capisce e può ascoltarti!", b.Name)
	}
	to := character.NewActiveCharacter(catalog.BuddyCharacter(b), ctx.Student, ctx.Language)
	return &Suggestion{To: to, Reason: reason, Confidence: confidence}
}

// CoachForStudent resolves the student's preferred coach, falling back to
// the default coach when the preference is unset or unknown.
func CoachForStudent(student models.StudentProfile) *catalog.Coach {
	if student.PreferredCoach != "" {
		if c := catalog.CoachByID(student.PreferredCoach); c != nil {
			return c
		}
	}
	return catalog.DefaultCoach()
}

// BuddyForStudent resolves the student's preferred buddy, falling back to
// the default buddy when the preference is unset or unknown.
func BuddyForStudent(student models.StudentProfile) *catalog.Buddy {
	if student.PreferredBuddy != "" {
		if b := catalog.BuddyByID(student.PreferredBuddy); b != nil {
			return b
		}
	}
	return catalog.DefaultBuddy()
}

// MightNeedHandoff is a cheap pre-check: it reports whether the message's
// intent maps to a persona type other than the active one.
func MightNeedHandoff(message string, current models.CharacterType) bool {
	target := IntentHandoffMap[intent.Detect(message).Type]
	return target != "" && target != current
}

// TransitionMessage builds the system line announcing an accepted handoff:
// who passed the conversation on, why, and the new persona's greeting.
func TransitionMessage(fromName, reason string, to character.ActiveCharacter, greeting string) string {
	if greeting == "" {
		greeting = to.Greeting
	}
	if reason == "" {
		return fmt.Sprintf("%s ti ha passato a %s. %s", fromName, to.Name, greeting)
	}
	return fmt.Sprintf("%s ti ha passato a %s. %s %s", fromName, to.Name, reason, greeting)
}

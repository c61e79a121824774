package handoff

import (
	"fmt"

	"github.com/ConvergioEdu/StudyFlow/internal/catalog"
	"github.com/ConvergioEdu/StudyFlow/internal/intent"
	"github.com/ConvergioEdu/StudyFlow/internal/models"
)

// RoutingContext is the input to RouteToCharacter: the message to route and
// where the conversation currently stands.
type RoutingContext struct {
	Message          string
	Student          models.StudentProfile
	CurrentType      models.CharacterType
	CurrentID        string
	PreferContinuity bool
}

// RoutingResult names the persona a message should go to, with ranked
// alternatives when more than one persona could plausibly serve it.
type RoutingResult struct {
	Type         models.CharacterType
	Character    catalog.Character
	Intent       models.DetectedIntent
	Reason       string
	Alternatives []catalog.Character
}

// continuityThreshold is the intent confidence below which a routing
// decision defers to the persona already speaking.
const continuityThreshold = 0.8

// RouteToCharacter picks the persona best suited to answer a message.
// With PreferContinuity set, a low-confidence intent keeps the current
// persona rather than bouncing the student around; crisis always routes.
func RouteToCharacter(rc RoutingContext) RoutingResult {
	detected := intent.Detect(rc.Message)

	if rc.PreferContinuity && rc.CurrentType != "" &&
		detected.Confidence < continuityThreshold && detected.Type != models.IntentCrisis {
		if current, ok := catalog.CharacterByID(rc.CurrentID); ok {
			return RoutingResult{
				Type:      current.Type,
				Character: current,
				Intent:    detected,
				Reason:    "continuità della conversazione",
			}
		}
	}

	switch detected.Type {
	case models.IntentCrisis:
		b := BuddyForStudent(rc.Student)
		return RoutingResult{
			Type:      models.CharacterTypeBuddy,
			Character: catalog.BuddyCharacter(b),
			Intent:    detected,
			Reason:    crisisReason,
		}

	case models.IntentEmotionalSupport:
		b := BuddyForStudent(rc.Student)
		return RoutingResult{
			Type:         models.CharacterTypeBuddy,
			Character:    catalog.BuddyCharacter(b),
			Intent:       detected,
			Reason:       fmt.Sprintf("%s ti capisce e può ascoltarti!", b.Name),
			Alternatives: []catalog.Character{catalog.CoachCharacter(CoachForStudent(rc.Student))},
		}

	case models.IntentAcademicHelp:
		if detected.Subject != "" {
			if m := catalog.MaestroForSubject(detected.Subject); m != nil {
				return RoutingResult{
					Type:         models.CharacterTypeMaestro,
					Character:    catalog.MaestroCharacter(m),
					Intent:       detected,
					Reason:       fmt.Sprintf("%s è l'esperto di %s!", m.Name, bareSubjectLabel(detected.Subject)),
					Alternatives: academicAlternatives(detected.Subject, m.ID, rc.Student),
				}
			}
		}
		return routeToCoach(rc, detected)

	case models.IntentMethodHelp:
		c := CoachForStudent(rc.Student)
		result := RoutingResult{
			Type:      models.CharacterTypeCoach,
			Character: catalog.CoachCharacter(c),
			Intent:    detected,
			Reason:    fmt.Sprintf("%s può aiutarti a organizzarti meglio!", c.Name),
		}
		if detected.Subject != "" {
			if m := catalog.MaestroForSubject(detected.Subject); m != nil {
				result.Alternatives = []catalog.Character{catalog.MaestroCharacter(m)}
			}
		}
		return result

	case models.IntentToolRequest:
		if detected.Subject != "" {
			if m := catalog.MaestroForSubject(detected.Subject); m != nil {
				return RoutingResult{
					Type:      models.CharacterTypeMaestro,
					Character: catalog.MaestroCharacter(m),
					Intent:    detected,
					Reason:    fmt.Sprintf("%s può preparare il materiale giusto!", m.Name),
				}
			}
		}
		if current, ok := catalog.CharacterByID(rc.CurrentID); ok {
			return RoutingResult{
				Type:      current.Type,
				Character: current,
				Intent:    detected,
				Reason:    "continuità della conversazione",
			}
		}
		return routeToCoach(rc, detected)

	default:
		if current, ok := catalog.CharacterByID(rc.CurrentID); ok {
			return RoutingResult{
				Type:      current.Type,
				Character: current,
				Intent:    detected,
				Reason:    "continuità della conversazione",
			}
		}
		return routeToCoach(rc, detected)
	}
}

func routeToCoach(rc RoutingContext, detected models.DetectedIntent) RoutingResult {
	c := CoachForStudent(rc.Student)
	return RoutingResult{
		Type:      models.CharacterTypeCoach,
		Character: catalog.CoachCharacter(c),
		Intent:    detected,
		Reason:    fmt.Sprintf("%s può aiutarti a organizzarti meglio!", c.Name),
	}
}

// academicAlternatives lists the other maestri for the subject plus the
// student's coach.
func academicAlternatives(subject models.Subject, primaryID string, student models.StudentProfile) []catalog.Character {
	var alts []catalog.Character
	for _, m := range catalog.MaestriBySubject(subject) {
		if m.ID != primaryID {
			alts = append(alts, catalog.MaestroCharacter(m))
		}
	}
	alts = append(alts, catalog.CoachCharacter(CoachForStudent(student)))
	return alts
}

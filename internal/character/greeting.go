// Package character provides greeting selection for re-entered personas.
package character

import (
	"fmt"
	"strings"

	"github.com/ConvergioEdu/StudyFlow/internal/models"
)

// GreetingFor picks the greeting shown when a persona becomes active.
// When the persona's bucket carries a previous summary or topics from the
// bootstrap load, a contextual greeting built from them is preferred over
// the generic record greeting.
func GreetingFor(ac ActiveCharacter, bucket *models.CharacterConversation, language string) string {
	if language == "" {
		language = DefaultLanguage
	}
	if bucket == nil {
		return ac.Greeting
	}
	if bucket.PreviousSummary == "" && len(bucket.PreviousTopics) == 0 {
		return ac.Greeting
	}
	return contextualGreeting(ac.Name, bucket.PreviousSummary, bucket.PreviousTopics, language)
}

func contextualGreeting(name, previousSummary string, previousTopics []string, language string) string {
	if language == "en" {
		if len(previousTopics) > 0 {
			return fmt.Sprintf("Welcome back! I'm %s. Last time we talked about %s. Want to pick up from there or start something new?", name, joinTopics(previousTopics, "and"))
		}
		return fmt.Sprintf("Welcome back! I'm %s. %s Shall we continue from there?", name, previousSummary)
	}
	if len(previousTopics) > 0 {
		return fmt.Sprintf("Bentornato! Sono %s. L'ultima volta abbiamo parlato di %s. Vuoi riprendere da lì o iniziare qualcosa di nuovo?", name, joinTopics(previousTopics, "e"))
	}
	return fmt.Sprintf("Bentornato! Sono %s. %s Vuoi continuare da dove eravamo rimasti?", name, previousSummary)
}

func joinTopics(topics []string, conj string) string {
	switch len(topics) {
	case 0:
		return ""
	case 1:
		return topics[0]
	default:
		return strings.Join(topics[:len(topics)-1], ", ") + " " + conj + " " + topics[len(topics)-1]
	}
}

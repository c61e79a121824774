// Package catalog defines the maestro catalog: historical subject experts.
package catalog

import "github.com/ConvergioEdu/StudyFlow/internal/models"

// Maestro records, one primary expert per subject. Greetings open in the
// maestro's historical register; system prompts stay short here because the
// full pedagogical prompts live server-side with the AI configuration.
var (
	maestroEuclide = Maestro{
		ID:           "euclide-matematica",
		Name:         "Euclide",
		Subject:      models.SubjectMathematics,
		Greeting:     "Χαῖρε! Sono Euclide. Costruiamo insieme le basi della matematica?",
		SystemPrompt: "Sei Euclide di Alessandria, padre della geometria. Insegni matematica procedendo per definizioni, esempi e piccoli passi dimostrativi. Paziente e rigoroso, usi sempre il tu.",
		Color:        "#2563EB",
	}
	maestroFeynman = Maestro{
		ID:           "feynman-fisica",
		Name:         "Richard Feynman",
		Subject:      models.SubjectPhysics,
		Greeting:     "Hi! Sono Richard Feynman. Scopriamo la fisica in modo divertente?",
		SystemPrompt: "Sei Richard Feynman. Spieghi la fisica con analogie quotidiane ed entusiasmo contagioso. Se lo studente non capisce, riprovi da un'angolazione diversa.",
		Color:        "#F97316",
	}
	maestroCurie = Maestro{
		ID:           "curie-chimica",
		Name:         "Marie Curie",
		Subject:      models.SubjectChemistry,
		Greeting:     "Bonjour! Sono Marie Curie. Scopriamo insieme i segreti della chimica?",
		SystemPrompt: "Sei Marie Curie. Insegni chimica con metodo sperimentale: osservare, ipotizzare, verificare. Incoraggi la curiosità e la precisione.",
		Color:        "#10B981",
	}
	maestroErodoto = Maestro{
		ID:           "erodoto-storia",
		Name:         "Erodoto",
		Subject:      models.SubjectHistory,
		Greeting:     "Χαῖρε! Sono Erodoto. Viaggiamo insieme attraverso la storia?",
		SystemPrompt: "Sei Erodoto di Alicarnasso, il padre della storia. Racconti gli eventi come storie di persone e luoghi, collegando cause ed effetti.",
		Color:        "#B45309",
	}
	maestroHumboldt = Maestro{
		ID:           "humboldt-geografia",
		Name:         "Alexander von Humboldt",
		Subject:      models.SubjectGeography,
		Greeting:     "Guten Tag! Sono Alexander von Humboldt. Esploriamo il mondo insieme?",
		SystemPrompt: "Sei Alexander von Humboldt, esploratore e naturalista. Insegni la geografia come rete di connessioni tra natura, clima e popoli.",
		Color:        "#059669",
	}
	maestroManzoni = Maestro{
		ID:           "manzoni-italiano",
		Name:         "Alessandro Manzoni",
		Subject:      models.SubjectItalian,
		Greeting:     "Buongiorno! Sono Alessandro Manzoni. Esploriamo la bellezza della lingua italiana?",
		SystemPrompt: "Sei Alessandro Manzoni. Insegni l'italiano con amore per la lingua viva: grammatica, analisi e scrittura con esempi tratti dalla letteratura.",
		Color:        "#7C3AED",
	}
	maestroShakespeare = Maestro{
		ID:           "shakespeare-inglese",
		Name:         "William Shakespeare",
		Subject:      models.SubjectEnglish,
		Greeting:     "Good morrow! Sono Shakespeare. Parliamo insieme di inglese?",
		SystemPrompt: "You are William Shakespeare teaching English to an Italian student. Mix playful English with Italian explanations, adapting to the student's level.",
		Color:        "#DC2626",
	}
	maestroLeonardo = Maestro{
		ID:           "leonardo-arte",
		Name:         "Leonardo da Vinci",
		Subject:      models.SubjectArt,
		Greeting:     "Salve! Sono Leonardo da Vinci. Esploriamo insieme l'arte e la scienza?",
		SystemPrompt: "Sei Leonardo da Vinci. Insegni l'arte intrecciandola con l'osservazione della natura e la tecnica. Inviti sempre a guardare prima di giudicare.",
		Color:        "#92400E",
	}
	maestroMozart = Maestro{
		ID:           "mozart-musica",
		Name:         "Wolfgang Amadeus Mozart",
		Subject:      models.SubjectMusic,
		Greeting:     "Guten Tag! Sono Wolfgang Amadeus Mozart. Scopriamo la magia della musica?",
		SystemPrompt: "Sei Wolfgang Amadeus Mozart. Insegni la musica con gioia e leggerezza, dall'ascolto alla teoria, sempre partendo da esempi sonori.",
		Color:        "#DB2777",
	}
	maestroSocrate = Maestro{
		ID:           "socrate-filosofia",
		Name:         "Socrate",
		Subject:      models.SubjectPhilosophy,
		Greeting:     "Χαῖρε! Sono Socrate. Filosofiamo insieme?",
		SystemPrompt: "Sei Socrate. Insegni filosofia con il metodo maieutico: domande brevi che guidano lo studente a trovare da sé le risposte.",
		Color:        "#4B5563",
	}
	maestroSmith = Maestro{
		ID:           "smith-economia",
		Name:         "Adam Smith",
		Subject:      models.SubjectEconomics,
		Greeting:     "Good day! Sono Adam Smith. Parliamo di economia e società?",
		SystemPrompt: "Sei Adam Smith. Insegni economia partendo da esempi concreti della vita quotidiana: mercati, scambi, lavoro e società.",
		Color:        "#0D9488",
	}
)

var maestri = []*Maestro{
	&maestroEuclide,
	&maestroFeynman,
	&maestroCurie,
	&maestroErodoto,
	&maestroHumboldt,
	&maestroManzoni,
	&maestroShakespeare,
	&maestroLeonardo,
	&maestroMozart,
	&maestroSocrate,
	&maestroSmith,
}

// DefaultMaestroBySubject maps each subject to its primary maestro id.
var DefaultMaestroBySubject = map[models.Subject]string{
	models.SubjectMathematics: "euclide-matematica",
	models.SubjectPhysics:     "feynman-fisica",
	models.SubjectChemistry:   "curie-chimica",
	models.SubjectHistory:     "erodoto-storia",
	models.SubjectGeography:   "humboldt-geografia",
	models.SubjectItalian:     "manzoni-italiano",
	models.SubjectEnglish:     "shakespeare-inglese",
	models.SubjectArt:         "leonardo-arte",
	models.SubjectMusic:       "mozart-musica",
	models.SubjectPhilosophy:  "socrate-filosofia",
	models.SubjectEconomics:   "smith-economia",
}

// MaestroByID returns the maestro with the given id, or nil.
func MaestroByID(id string) *Maestro {
	for _, m := range maestri {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// MaestriBySubject returns all maestri teaching the given subject. The
// primary maestro for the subject, when known, is first.
func MaestriBySubject(subject models.Subject) []*Maestro {
	var out []*Maestro
	if id, ok := DefaultMaestroBySubject[subject]; ok {
		if m := MaestroByID(id); m != nil {
			out = append(out, m)
		}
	}
	for _, m := range maestri {
		if m.Subject == subject && (len(out) == 0 || m != out[0]) {
			out = append(out, m)
		}
	}
	return out
}

// MaestroForSubject returns the primary maestro for a subject, falling back
// to the first maestro teaching it. Returns nil when the subject has none.
func MaestroForSubject(subject models.Subject) *Maestro {
	if ms := MaestriBySubject(subject); len(ms) > 0 {
		return ms[0]
	}
	return nil
}

// AllMaestri returns every maestro record in catalog order.
func AllMaestri() []*Maestro {
	return append([]*Maestro(nil), maestri...)
}

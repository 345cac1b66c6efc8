package tutor

import (
	"slices"

	"github.com/randalmurphal/tutorgraph/pkg/flowgraph"
)

// Word bank sizes. Absolute beginners get the full bank.
const (
	wordBankA0 = 6
	wordBankA1 = 4
)

// scaffoldTopic is support for answering one kind of tutor question.
type scaffoldTopic struct {
	triggers []string
	words    []string
	hint     string
	starter  string
}

// scaffoldTopics are tried in order against the tutor's last message; the
// final entry of each list is the fallback.
var scaffoldTopics = map[Language][]scaffoldTopic{
	LanguageSpanish: {
		{
			triggers: []string{"llamas", "nombre"},
			words:    []string{"me", "llamo", "soy", "mi", "nombre", "es"},
			hint:     `Tell the tutor your name with "Me llamo..."`,
			starter:  "Me llamo",
		},
		{
			triggers: []string{"dónde", "eres"},
			words:    []string{"soy", "de", "vivo", "en", "ciudad", "país"},
			hint:     `Say where you are from with "Soy de..."`,
			starter:  "Soy de",
		},
		{
			triggers: []string{"gusta", "gustar"},
			words:    []string{"me", "gusta", "no", "mucho", "el", "café"},
			hint:     `Use "Me gusta..." or "No me gusta..." to share a preference.`,
			starter:  "Me gusta",
		},
		{
			triggers: []string{"perro", "gato", "tienes"},
			words:    []string{"tengo", "un", "una", "perro", "gato", "no"},
			hint:     `Answer with "Tengo..." or "No tengo...".`,
			starter:  "Tengo",
		},
		{
			triggers: []string{"vives", "familia"},
			words:    []string{"vivo", "con", "mi", "familia", "solo", "amigos"},
			hint:     `Say who you live with using "Vivo con...".`,
			starter:  "Vivo con",
		},
		{
			words:   []string{"hola", "sí", "no", "gracias", "bien", "yo"},
			hint:    "Answer with a short sentence. One or two words is fine too.",
			starter: "Yo",
		},
	},
	LanguageGerman: {
		{
			triggers: []string{"heißt", "name"},
			words:    []string{"ich", "heiße", "bin", "mein", "Name", "ist"},
			hint:     `Tell the tutor your name with "Ich heiße..."`,
			starter:  "Ich heiße",
		},
		{
			triggers: []string{"woher", "kommst"},
			words:    []string{"ich", "komme", "aus", "wohne", "in", "Stadt"},
			hint:     `Say where you are from with "Ich komme aus..."`,
			starter:  "Ich komme aus",
		},
		{
			triggers: []string{"gern", "magst"},
			words:    []string{"ich", "trinke", "gern", "nicht", "Kaffee", "Tee"},
			hint:     `Use "gern" after the verb to say you like doing something.`,
			starter:  "Ich trinke gern",
		},
		{
			triggers: []string{"hund", "katze", "hast"},
			words:    []string{"ich", "habe", "einen", "eine", "Hund", "Katze"},
			hint:     `Answer with "Ich habe..." or "Ich habe keinen...".`,
			starter:  "Ich habe",
		},
		{
			triggers: []string{"wohnst", "wem"},
			words:    []string{"ich", "wohne", "mit", "meiner", "Familie", "allein"},
			hint:     `Say who you live with using "Ich wohne mit...".`,
			starter:  "Ich wohne",
		},
		{
			words:   []string{"hallo", "ja", "nein", "danke", "gut", "ich"},
			hint:    "Answer with a short sentence. One or two words is fine too.",
			starter: "Ich",
		},
	},
}

// Scaffold builds beginner support for the learner's next answer. Levels A0
// and A1 get an enabled record with a word bank, hint and sentence starter
// matched to the tutor's last question; every other level gets a disabled
// record with an empty word bank. Scaffold never fails.
func Scaffold(_ flowgraph.Context, s State) (Update, error) {
	level := s.EffectiveLevel()
	if level != LevelA0 && level != LevelA1 {
		return Update{}.SetScaffolding(&Scaffolding{Enabled: false, WordBank: []string{}}), nil
	}

	topic := pickTopic(s)
	size := wordBankA1
	if level == LevelA0 {
		size = wordBankA0
	}

	return Update{}.SetScaffolding(&Scaffolding{
		Enabled:         true,
		WordBank:        slices.Clone(topic.words[:min(size, len(topic.words))]),
		Hint:            topic.hint,
		SentenceStarter: topic.starter,
		AutoExpand:      level == LevelA0,
	}), nil
}

func pickTopic(s State) scaffoldTopic {
	topics := scaffoldTopics[s.EffectiveLanguage()]
	fallback := topics[len(topics)-1]

	msg, ok := s.LastAI()
	if !ok {
		return fallback
	}
	asked := words(msg.Content)
	for _, t := range topics {
		for _, trigger := range t.triggers {
			if slices.Contains(asked, trigger) {
				return t
			}
		}
	}
	return fallback
}

package tutor

import (
	"fmt"

	"github.com/randalmurphal/tutorgraph/pkg/flowgraph/registry"
	"github.com/randalmurphal/tutorgraph/pkg/flowgraph/template"
)

type instructionKey struct {
	level    Level
	language Language
}

var (
	instructions = newInstructionTable()
	expander     = template.NewExpander(template.WithMissingAction(template.MissingError))
)

// levelInstructions hold the tone and content guidance per level.
var levelInstructions = map[Level]string{
	LevelA0: "You are a warm, patient ${language_name} tutor for an absolute beginner (CEFR ${level}). " +
		"Reply in one or two very short ${language_name} sentences using only the most common words. " +
		"Ask one simple question the learner can answer with a single word or a short phrase. " +
		"Never correct grammar explicitly; model the correct form in your reply instead.",
	LevelA1: "You are a friendly ${language_name} tutor for a beginner (CEFR ${level}). " +
		"Reply in two or three short ${language_name} sentences in the present tense. " +
		"Use everyday vocabulary and ask one follow-up question about the learner's life.",
	LevelA2: "You are a ${language_name} conversation partner for an elementary learner (CEFR ${level}). " +
		"Reply naturally in ${language_name}, mixing present and past tenses. " +
		"Introduce at most one new word per reply and keep the conversation going with an open question.",
	LevelB1: "You are a ${language_name} conversation partner for an intermediate learner (CEFR ${level}). " +
		"Reply naturally in ${language_name} at normal length. " +
		"Use opinions, hypotheticals and connected sentences, and invite the learner to explain their reasoning.",
}

// languageNotes are appended for languages with specific pitfalls.
var languageNotes = map[Language]string{
	LanguageSpanish: " Use the informal tú form.",
	LanguageGerman:  " Use the informal du form and capitalize every noun.",
}

// instructionVars are the placeholders Instruction fills in.
var instructionVars = map[string]bool{"level": true, "language_name": true}

func newInstructionTable() *registry.Registry[instructionKey, string] {
	r := registry.New[instructionKey, string]()
	for _, level := range Levels {
		for _, language := range Languages {
			r.Register(instructionKey{level, language}, levelInstructions[level]+languageNotes[language])
		}
	}
	r.Freeze()
	if err := checkInstructions(r); err != nil {
		panic(err)
	}
	return r
}

// checkInstructions rejects templates that are empty or use a placeholder
// Instruction never fills.
func checkInstructions(r *registry.Registry[instructionKey, string]) error {
	var err error
	r.Range(func(k instructionKey, tmpl string) bool {
		if tmpl == "" {
			err = fmt.Errorf("tutor: empty instruction for %s/%s", k.level, k.language)
			return false
		}
		for _, name := range template.Placeholders(tmpl) {
			if !instructionVars[name] {
				err = fmt.Errorf("tutor: instruction for %s/%s uses unknown ${%s}", k.level, k.language, name)
				return false
			}
		}
		return true
	})
	return err
}

// Instruction returns the system instruction for a level and language.
//
// A level outside Levels is a caller error and yields a
// *ConfigurationError. An unsupported language is not: the instruction for
// DefaultLanguage is returned unchanged.
func Instruction(level Level, language Language) (string, error) {
	if err := ValidateLevel(level); err != nil {
		return "", err
	}
	if !language.Valid() {
		language = DefaultLanguage
	}

	tmpl, ok := instructions.Lookup(instructionKey{level, language}, instructionKey{level, DefaultLanguage})
	if !ok {
		return "", &ConfigurationError{Field: "language", Value: string(language)}
	}
	return expander.Expand(tmpl, map[string]any{
		"level":         level,
		"language_name": language.Name(),
	})
}

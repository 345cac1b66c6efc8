package tutor

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/randalmurphal/tutorgraph/pkg/flowgraph"
)

// Grammar topics, in the order learners meet them.
const (
	TopicSpelling    = "spelling"
	TopicConjugation = "verb conjugation"
	TopicGender      = "gender agreement"
	TopicPastTense   = "past tense"
	TopicReflexive   = "reflexive verbs"
	TopicSubjunctive = "subjunctive"
	TopicConditional = "conditional"
)

// grammarRule flags one common mistake. A rule applies to learners at or
// above minLevel, so error categories grow with proficiency. Only the text
// captured by the group named err is reported; the rest of the pattern is
// context that has to be present for the mistake to be one.
type grammarRule struct {
	minLevel    Level
	topic       string
	pattern     *regexp.Regexp
	corrected   string
	explanation string
	severity    Severity
}

// rule matches pattern as whole words, ignoring case.
func rule(minLevel Level, topic, pattern, corrected, explanation string, severity Severity) grammarRule {
	return contextRule(minLevel, topic, `(?i)\b(?P<err>`+pattern+`)\b`, corrected, explanation, severity)
}

// contextRule matches a raw expression, which must contain an err group.
func contextRule(minLevel Level, topic, pattern, corrected, explanation string, severity Severity) grammarRule {
	re := regexp.MustCompile(pattern)
	if re.SubexpIndex("err") < 0 {
		panic("tutor: grammar rule without err group: " + pattern)
	}
	return grammarRule{
		minLevel:    minLevel,
		topic:       topic,
		pattern:     re,
		corrected:   corrected,
		explanation: explanation,
		severity:    severity,
	}
}

// Reflexive verbs used without "me" are only mistakes when nothing could be
// their object: at the end of the message, or before a time expression.
const reflexiveTail = `(?:\s+(?i:temprano|tarde|pronto|cada|todos|todas)\b|\s*[.!?]*\s*$)`

var grammarRules = map[Language][]grammarRule{
	LanguageSpanish: {
		// "ola" is a wave; only a message opening with it is a misspelled greeting.
		contextRule(LevelA0, TopicSpelling, `^[\s¡¿]*(?P<err>(?i:ola))\b`, "hola", `"Hola" starts with a silent h.`, SeverityMinor),
		rule(LevelA0, TopicSpelling, `grasias`, "gracias", `"Gracias" is written with a c.`, SeverityMinor),
		rule(LevelA0, TopicSpelling, `buenos dias`, "buenos días", `"Días" carries an accent on the i.`, SeverityMinor),
		rule(LevelA0, TopicConjugation, `yo es`, "yo soy", `With "yo", "ser" becomes "soy".`, SeverityModerate),
		rule(LevelA0, TopicConjugation, `yo ser`, "yo soy", `Conjugate "ser" for "yo": "soy".`, SeverityModerate),
		rule(LevelA0, TopicConjugation, `yo tiene`, "yo tengo", `With "yo", "tener" becomes "tengo".`, SeverityModerate),
		rule(LevelA0, TopicConjugation, `yo estar`, "yo estoy", `Conjugate "estar" for "yo": "estoy".`, SeverityModerate),

		rule(LevelA1, TopicGender, `el casa`, "la casa", `"Casa" is feminine, so it takes "la".`, SeverityModerate),
		rule(LevelA1, TopicGender, `el mano`, "la mano", `"Mano" is feminine even though it ends in -o.`, SeverityModerate),
		rule(LevelA1, TopicGender, `la problema`, "el problema", `"Problema" is masculine even though it ends in -a.`, SeverityModerate),
		rule(LevelA1, TopicGender, `un mesa`, "una mesa", `"Mesa" is feminine, so it takes "una".`, SeverityModerate),
		rule(LevelA1, TopicGender, `una libro`, "un libro", `"Libro" is masculine, so it takes "un".`, SeverityModerate),

		rule(LevelA2, TopicPastTense, `ayer (yo )?voy`, "ayer fui", `"Ayer" needs the preterite: "fui".`, SeverityModerate),
		rule(LevelA2, TopicPastTense, `ayer (yo )?como`, "ayer comí", `"Ayer" needs the preterite: "comí".`, SeverityModerate),
		rule(LevelA2, TopicPastTense, `ayer (yo )?trabajo`, "ayer trabajé", `"Ayer" needs the preterite: "trabajé".`, SeverityModerate),
		// "Yo llamo a mi madre" is fine; "yo llamo Ana" introduces a name.
		contextRule(LevelA2, TopicReflexive, `\b(?P<err>(?i:yo llamo))(?:\s+\p{Lu}|\s*[.!?]*\s*$)`, "me llamo", `"Llamarse" is reflexive: "me llamo".`, SeverityModerate),
		contextRule(LevelA2, TopicReflexive, `\b(?P<err>(?i:yo levanto))`+reflexiveTail, "me levanto", `"Levantarse" is reflexive: "me levanto".`, SeverityModerate),
		contextRule(LevelA2, TopicReflexive, `\b(?P<err>(?i:yo ducho))`+reflexiveTail, "me ducho", `"Ducharse" is reflexive: "me ducho".`, SeverityModerate),

		rule(LevelB1, TopicSubjunctive, `espero que tienes`, "espero que tengas", `"Esperar que" triggers the subjunctive.`, SeveritySignificant),
		rule(LevelB1, TopicSubjunctive, `quiero que vienes`, "quiero que vengas", `"Querer que" with a new subject triggers the subjunctive.`, SeveritySignificant),
		rule(LevelB1, TopicSubjunctive, `es importante que aprenden`, "es importante que aprendan", `Impersonal expressions of value take the subjunctive.`, SeveritySignificant),
		rule(LevelB1, TopicConditional, `si tendría`, "si tuviera", `After "si" use the imperfect subjunctive, not the conditional.`, SeveritySignificant),
		rule(LevelB1, TopicConditional, `si podría`, "si pudiera", `After "si" use the imperfect subjunctive, not the conditional.`, SeveritySignificant),
	},
	LanguageGerman: {
		rule(LevelA0, TopicSpelling, `ich heisse`, "ich heiße", `"Heiße" is written with ß after a long vowel.`, SeverityMinor),
		rule(LevelA0, TopicSpelling, `danke schon`, "danke schön", `"Schön" needs the umlaut; "schon" means "already".`, SeverityMinor),
		rule(LevelA0, TopicConjugation, `ich bist`, "ich bin", `With "ich", "sein" becomes "bin".`, SeverityModerate),
		rule(LevelA0, TopicConjugation, `ich ist`, "ich bin", `With "ich", "sein" becomes "bin".`, SeverityModerate),
		rule(LevelA0, TopicConjugation, `du bin`, "du bist", `With "du", "sein" becomes "bist".`, SeverityModerate),
		rule(LevelA0, TopicConjugation, `ich hat`, "ich habe", `With "ich", "haben" becomes "habe".`, SeverityModerate),

		rule(LevelA1, TopicGender, `ein frau`, "eine Frau", `"Frau" is feminine: "eine Frau".`, SeverityModerate),
		rule(LevelA1, TopicGender, `die mann`, "der Mann", `"Mann" is masculine: "der Mann".`, SeverityModerate),
		rule(LevelA1, TopicGender, `das katze`, "die Katze", `"Katze" is feminine: "die Katze".`, SeverityModerate),
		rule(LevelA1, TopicGender, `der haus`, "das Haus", `"Haus" is neuter: "das Haus".`, SeverityModerate),

		rule(LevelA2, TopicPastTense, `ich habe gegangen`, "ich bin gegangen", `Verbs of motion form the Perfekt with "sein".`, SeverityModerate),
		rule(LevelA2, TopicPastTense, `ich habe gefahren`, "ich bin gefahren", `Verbs of motion form the Perfekt with "sein".`, SeverityModerate),
		rule(LevelA2, TopicReflexive, `ich freue auf`, "ich freue mich auf", `"Sich freuen auf" needs the reflexive pronoun.`, SeverityModerate),
		rule(LevelA2, TopicReflexive, `ich interessiere für`, "ich interessiere mich für", `"Sich interessieren für" needs the reflexive pronoun.`, SeverityModerate),

		rule(LevelB1, TopicSubjunctive, `wenn ich habe zeit`, "wenn ich Zeit hätte", `Unreal conditions use Konjunktiv II with the verb at the end.`, SeveritySignificant),
		rule(LevelB1, TopicSubjunctive, `wenn ich bin reich`, "wenn ich reich wäre", `Unreal conditions use Konjunktiv II with the verb at the end.`, SeveritySignificant),
		rule(LevelB1, TopicConditional, `ich werde gern`, "ich würde gern", `Polite wishes use "würde", not the future "werde".`, SeveritySignificant),
	},
}

type glossaryEntry struct {
	word         string
	translation  string
	partOfSpeech string
}

// glossaries are keyed by the lowercased word.
var glossaries = map[Language]map[string]glossaryEntry{
	LanguageSpanish: glossary(
		glossaryEntry{"hola", "hello", "interjection"},
		glossaryEntry{"gracias", "thank you", "interjection"},
		glossaryEntry{"casa", "house", "noun"},
		glossaryEntry{"perro", "dog", "noun"},
		glossaryEntry{"gato", "cat", "noun"},
		glossaryEntry{"café", "coffee", "noun"},
		glossaryEntry{"agua", "water", "noun"},
		glossaryEntry{"familia", "family", "noun"},
		glossaryEntry{"amigo", "friend", "noun"},
		glossaryEntry{"amiga", "friend", "noun"},
		glossaryEntry{"hermano", "brother", "noun"},
		glossaryEntry{"hermana", "sister", "noun"},
		glossaryEntry{"ciudad", "city", "noun"},
		glossaryEntry{"viaje", "trip", "noun"},
		glossaryEntry{"libro", "book", "noun"},
		glossaryEntry{"trabajo", "work", "noun"},
		glossaryEntry{"escuela", "school", "noun"},
		glossaryEntry{"comer", "to eat", "verb"},
		glossaryEntry{"vivir", "to live", "verb"},
		glossaryEntry{"grande", "big", "adjective"},
		glossaryEntry{"pequeño", "small", "adjective"},
		glossaryEntry{"bueno", "good", "adjective"},
		glossaryEntry{"ayer", "yesterday", "adverb"},
		glossaryEntry{"hoy", "today", "adverb"},
		glossaryEntry{"mañana", "tomorrow", "adverb"},
	),
	LanguageGerman: glossary(
		glossaryEntry{"hallo", "hello", "interjection"},
		glossaryEntry{"danke", "thank you", "interjection"},
		glossaryEntry{"Haus", "house", "noun"},
		glossaryEntry{"Hund", "dog", "noun"},
		glossaryEntry{"Katze", "cat", "noun"},
		glossaryEntry{"Kaffee", "coffee", "noun"},
		glossaryEntry{"Wasser", "water", "noun"},
		glossaryEntry{"Familie", "family", "noun"},
		glossaryEntry{"Freund", "friend", "noun"},
		glossaryEntry{"Bruder", "brother", "noun"},
		glossaryEntry{"Schwester", "sister", "noun"},
		glossaryEntry{"Stadt", "city", "noun"},
		glossaryEntry{"Reise", "trip", "noun"},
		glossaryEntry{"Buch", "book", "noun"},
		glossaryEntry{"Arbeit", "work", "noun"},
		glossaryEntry{"Schule", "school", "noun"},
		glossaryEntry{"essen", "to eat", "verb"},
		glossaryEntry{"wohnen", "to live", "verb"},
		glossaryEntry{"groß", "big", "adjective"},
		glossaryEntry{"klein", "small", "adjective"},
		glossaryEntry{"gut", "good", "adjective"},
		glossaryEntry{"gestern", "yesterday", "adverb"},
		glossaryEntry{"heute", "today", "adverb"},
		glossaryEntry{"morgen", "tomorrow", "adverb"},
	),
}

func glossary(entries ...glossaryEntry) map[string]glossaryEntry {
	m := make(map[string]glossaryEntry, len(entries))
	for _, e := range entries {
		m[strings.ToLower(e.word)] = e
	}
	return m
}

// maxNewVocabulary caps how many words one turn reports.
const maxNewVocabulary = 5

// Analyze inspects the most recent learner message. It reports grammar
// mistakes from every rule at or below the learner's level and glossary
// words the learner has not used in an earlier message. Both lists may be
// empty. Analyze never fails.
func Analyze(_ flowgraph.Context, s State) (Update, error) {
	corrections := []GrammarCorrection{}
	vocabulary := []VocabularyItem{}

	msg, ok := s.LastHuman()
	if !ok || strings.TrimSpace(msg.Content) == "" {
		return Update{}.SetGrammarFeedback(corrections).SetNewVocabulary(vocabulary), nil
	}

	language := s.EffectiveLanguage()
	corrections = checkGrammar(msg.Content, s.EffectiveLevel(), language)
	vocabulary = newVocabulary(s, msg.Content, language)

	return Update{}.SetGrammarFeedback(corrections).SetNewVocabulary(vocabulary), nil
}

func checkGrammar(text string, level Level, language Language) []GrammarCorrection {
	out := []GrammarCorrection{}
	rank := level.rank()
	for _, r := range grammarRules[language] {
		if r.minLevel.rank() > rank {
			continue
		}
		group := r.pattern.SubexpIndex("err")
		for _, match := range r.pattern.FindAllStringSubmatch(text, -1) {
			out = append(out, GrammarCorrection{
				Original:    match[group],
				Corrected:   r.corrected,
				Explanation: r.explanation,
				Severity:    r.severity,
				Rule:        r.topic,
			})
		}
	}
	return out
}

func newVocabulary(s State, text string, language Language) []VocabularyItem {
	entries := glossaries[language]

	seen := make(map[string]bool)
	// Everything before the latest learner message counts as already used.
	for _, m := range s.Messages[:lastIndex(s.Messages, RoleHuman)] {
		if m.Role != RoleHuman {
			continue
		}
		for _, w := range words(m.Content) {
			seen[w] = true
		}
	}

	out := []VocabularyItem{}
	for _, w := range words(text) {
		entry, ok := entries[w]
		if !ok || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, VocabularyItem{
			Word:         entry.word,
			Translation:  entry.translation,
			PartOfSpeech: entry.partOfSpeech,
		})
		if len(out) == maxNewVocabulary {
			break
		}
	}
	return out
}

// words splits text into lowercased letter runs.
func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

func lastIndex(msgs []Message, role Role) int {
	for j := len(msgs) - 1; j >= 0; j-- {
		if msgs[j].Role == role {
			return j
		}
	}
	return 0
}

package tutor

import (
	"slices"
	"strings"
)

// Role tags the author of a message.
type Role string

const (
	RoleHuman Role = "human"
	RoleAI    Role = "ai"
)

// Message is one turn of the conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Human returns a learner message.
func Human(content string) Message {
	return Message{Role: RoleHuman, Content: content}
}

// AI returns a tutor message.
func AI(content string) Message {
	return Message{Role: RoleAI, Content: content}
}

// Level is a CEFR proficiency tier.
type Level string

const (
	LevelA0 Level = "A0"
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"

	// DefaultLevel is assumed when a state carries no level.
	DefaultLevel = LevelA1
)

// Levels lists the supported levels from lowest to highest.
var Levels = []Level{LevelA0, LevelA1, LevelA2, LevelB1}

// Valid reports whether l is one of Levels. The match is exact.
func (l Level) Valid() bool {
	return slices.Contains(Levels, l)
}

// rank orders levels for rule selection. Invalid levels rank as DefaultLevel.
func (l Level) rank() int {
	if i := slices.Index(Levels, l); i >= 0 {
		return i
	}
	return slices.Index(Levels, DefaultLevel)
}

// Language is a target language code.
type Language string

const (
	LanguageSpanish Language = "es"
	LanguageGerman  Language = "de"

	// DefaultLanguage is used for missing or unsupported languages.
	DefaultLanguage = LanguageSpanish
)

// Languages lists the supported target languages.
var Languages = []Language{LanguageSpanish, LanguageGerman}

// Valid reports whether l is one of Languages.
func (l Language) Valid() bool {
	return slices.Contains(Languages, l)
}

// Name returns the English name of the language, or of DefaultLanguage
// when l is unsupported.
func (l Language) Name() string {
	switch l {
	case LanguageGerman:
		return "German"
	default:
		return "Spanish"
	}
}

// Severity grades a grammar correction.
type Severity string

const (
	SeverityMinor       Severity = "minor"
	SeverityModerate    Severity = "moderate"
	SeveritySignificant Severity = "significant"
)

// GrammarCorrection is one problem found in a learner message.
type GrammarCorrection struct {
	Original    string   `json:"original"`
	Corrected   string   `json:"corrected"`
	Explanation string   `json:"explanation"`
	Severity    Severity `json:"severity"`
	// Rule names the grammar topic, e.g. "gender agreement".
	Rule string `json:"rule,omitempty"`
}

// VocabularyItem is a word the learner used for the first time.
type VocabularyItem struct {
	Word         string `json:"word"`
	Translation  string `json:"translation"`
	PartOfSpeech string `json:"part_of_speech"`
}

// Scaffolding is the beginner support shown alongside a tutor reply.
type Scaffolding struct {
	Enabled         bool     `json:"enabled"`
	WordBank        []string `json:"word_bank"`
	Hint            string   `json:"hint,omitempty"`
	SentenceStarter string   `json:"sentence_starter,omitempty"`
	AutoExpand      bool     `json:"auto_expand"`
}

// Clone returns a deep copy. Clone of nil is nil.
func (s *Scaffolding) Clone() *Scaffolding {
	if s == nil {
		return nil
	}
	out := *s
	out.WordBank = slices.Clone(s.WordBank)
	if out.WordBank == nil {
		out.WordBank = []string{}
	}
	return &out
}

// FeedbackMessage is a display-ready grammar note.
type FeedbackMessage struct {
	Text     string   `json:"text"`
	Severity Severity `json:"severity"`
	Rule     string   `json:"rule,omitempty"`
}

// State is everything a thread knows about its conversation.
// Messages only ever grow; every other field is replaced by the latest
// update that sets it.
type State struct {
	Messages         []Message           `json:"messages"`
	Level            Level               `json:"level"`
	Language         Language            `json:"language"`
	GrammarFeedback  []GrammarCorrection `json:"grammar_feedback"`
	NewVocabulary    []VocabularyItem    `json:"new_vocabulary"`
	Scaffolding      *Scaffolding        `json:"scaffolding,omitempty"`
	FeedbackMessages []FeedbackMessage   `json:"feedback_messages"`
}

// EffectiveLevel returns the level, or DefaultLevel when unset.
// An invalid non-empty level is returned as is.
func (s State) EffectiveLevel() Level {
	if s.Level == "" {
		return DefaultLevel
	}
	return s.Level
}

// EffectiveLanguage returns the language, or DefaultLanguage when unset
// or unsupported.
func (s State) EffectiveLanguage() Language {
	if !s.Language.Valid() {
		return DefaultLanguage
	}
	return s.Language
}

// LastHuman returns the most recent learner message.
func (s State) LastHuman() (Message, bool) {
	return s.last(RoleHuman)
}

// LastAI returns the most recent tutor message.
func (s State) LastAI() (Message, bool) {
	return s.last(RoleAI)
}

func (s State) last(role Role) (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == role {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}

// Count returns the number of messages with the given role.
func (s State) Count(role Role) int {
	n := 0
	for _, m := range s.Messages {
		if m.Role == role {
			n++
		}
	}
	return n
}

// Transcript renders the history one line per message, for logs and the CLI.
func (s State) Transcript() string {
	var b strings.Builder
	for _, m := range s.Messages {
		b.WriteString(string(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteByte('\n')
	}
	return b.String()
}

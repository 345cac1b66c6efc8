package tutor

import (
	"slices"
	"strings"
)

// Field identifies a State field an Update can set.
type Field uint8

const (
	FieldMessages Field = 1 << iota
	FieldLevel
	FieldLanguage
	FieldGrammarFeedback
	FieldNewVocabulary
	FieldScaffolding
	FieldFeedbackMessages
)

var fieldNames = map[Field]string{
	FieldMessages:         "messages",
	FieldLevel:            "level",
	FieldLanguage:         "language",
	FieldGrammarFeedback:  "grammar_feedback",
	FieldNewVocabulary:    "new_vocabulary",
	FieldScaffolding:      "scaffolding",
	FieldFeedbackMessages: "feedback_messages",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return "unknown"
}

// Update is a partial state returned by a step function. Only fields that
// were explicitly set are merged; setting a slice to empty is different
// from not setting it.
//
// Update is a value type; every setter returns a modified copy.
//
//	u := tutor.Update{}.AppendMessages(tutor.AI("¡Hola!")).SetLevel(tutor.LevelA0)
type Update struct {
	set Field

	messages         []Message
	level            Level
	language         Language
	grammarFeedback  []GrammarCorrection
	newVocabulary    []VocabularyItem
	scaffolding      *Scaffolding
	feedbackMessages []FeedbackMessage
}

// Has reports whether f was set.
func (u Update) Has(f Field) bool {
	return u.set&f != 0
}

// Fields returns the set fields in merge order.
func (u Update) Fields() []Field {
	var out []Field
	for _, f := range fieldOrder {
		if u.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// IsEmpty reports whether no field was set.
func (u Update) IsEmpty() bool {
	return u.set == 0
}

func (u Update) String() string {
	names := make([]string, 0, len(fieldOrder))
	for _, f := range u.Fields() {
		names = append(names, f.String())
	}
	return "Update{" + strings.Join(names, ",") + "}"
}

// AppendMessages adds messages to be appended to the history.
func (u Update) AppendMessages(msgs ...Message) Update {
	u.messages = append(slices.Clip(u.messages), msgs...)
	u.set |= FieldMessages
	return u
}

// SetLevel replaces the level.
func (u Update) SetLevel(l Level) Update {
	u.level = l
	u.set |= FieldLevel
	return u
}

// SetLanguage replaces the language.
func (u Update) SetLanguage(l Language) Update {
	u.language = l
	u.set |= FieldLanguage
	return u
}

// SetGrammarFeedback replaces the grammar corrections.
func (u Update) SetGrammarFeedback(g []GrammarCorrection) Update {
	u.grammarFeedback = g
	u.set |= FieldGrammarFeedback
	return u
}

// SetNewVocabulary replaces the new vocabulary list.
func (u Update) SetNewVocabulary(v []VocabularyItem) Update {
	u.newVocabulary = v
	u.set |= FieldNewVocabulary
	return u
}

// SetScaffolding replaces the scaffolding record. nil clears it.
func (u Update) SetScaffolding(s *Scaffolding) Update {
	u.scaffolding = s
	u.set |= FieldScaffolding
	return u
}

// SetFeedbackMessages replaces the formatted feedback.
func (u Update) SetFeedbackMessages(f []FeedbackMessage) Update {
	u.feedbackMessages = f
	u.set |= FieldFeedbackMessages
	return u
}

// ResetTurn clears every per-turn field so results from an earlier turn
// are not mistaken for this one's.
func (u Update) ResetTurn() Update {
	return u.SetGrammarFeedback(nil).
		SetNewVocabulary(nil).
		SetScaffolding(nil).
		SetFeedbackMessages(nil)
}

// Messages returns the messages to append.
func (u Update) Messages() []Message { return u.messages }

// Level returns the level and whether it was set.
func (u Update) Level() (Level, bool) { return u.level, u.Has(FieldLevel) }

// Language returns the language and whether it was set.
func (u Update) Language() (Language, bool) { return u.language, u.Has(FieldLanguage) }

// GrammarFeedback returns the grammar corrections.
func (u Update) GrammarFeedback() []GrammarCorrection { return u.grammarFeedback }

// NewVocabulary returns the vocabulary items.
func (u Update) NewVocabulary() []VocabularyItem { return u.newVocabulary }

// Scaffolding returns the scaffolding record.
func (u Update) Scaffolding() *Scaffolding { return u.scaffolding }

// FeedbackMessages returns the formatted feedback.
func (u Update) FeedbackMessages() []FeedbackMessage { return u.feedbackMessages }

// Reducer merges one field of an update into state.
type Reducer func(s State, u Update) State

// fieldOrder is the order Merge applies reducers in.
var fieldOrder = []Field{
	FieldMessages,
	FieldLevel,
	FieldLanguage,
	FieldGrammarFeedback,
	FieldNewVocabulary,
	FieldScaffolding,
	FieldFeedbackMessages,
}

// reducers maps every field to its merge rule. Messages accumulate;
// everything else is last-write-wins. A new State field needs an entry
// here and in fieldOrder.
var reducers = map[Field]Reducer{
	FieldMessages: func(s State, u Update) State {
		merged := make([]Message, 0, len(s.Messages)+len(u.messages))
		merged = append(merged, s.Messages...)
		s.Messages = append(merged, u.messages...)
		return s
	},
	FieldLevel: func(s State, u Update) State {
		s.Level = u.level
		return s
	},
	FieldLanguage: func(s State, u Update) State {
		s.Language = u.language
		return s
	},
	FieldGrammarFeedback: func(s State, u Update) State {
		s.GrammarFeedback = nonNil(slices.Clone(u.grammarFeedback))
		return s
	},
	FieldNewVocabulary: func(s State, u Update) State {
		s.NewVocabulary = nonNil(slices.Clone(u.newVocabulary))
		return s
	},
	FieldScaffolding: func(s State, u Update) State {
		s.Scaffolding = u.scaffolding.Clone()
		return s
	},
	FieldFeedbackMessages: func(s State, u Update) State {
		s.FeedbackMessages = nonNil(slices.Clone(u.feedbackMessages))
		return s
	},
}

// Merge applies u to s field by field. It never writes to the backing
// arrays of either argument.
func Merge(s State, u Update) State {
	for _, f := range fieldOrder {
		if u.Has(f) {
			s = reducers[f](s, u)
		}
	}
	return s
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

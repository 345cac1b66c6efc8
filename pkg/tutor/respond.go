package tutor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/randalmurphal/tutorgraph/pkg/flowgraph"
	"github.com/randalmurphal/tutorgraph/pkg/llm"
)

// Responder produces the respond step's reply. A nil Responder falls back
// to ScriptedResponder for the state's level and language.
type Responder struct {
	llm llm.Responder
}

// NewResponder wraps r. r may be nil.
func NewResponder(r llm.Responder) *Responder {
	return &Responder{llm: r}
}

// Respond appends exactly one AI message. A missing level is treated as
// DefaultLevel and a missing language as DefaultLanguage; an unsupported
// non-empty level is a *ConfigurationError.
func (r *Responder) Respond(ctx flowgraph.Context, s State) (Update, error) {
	level := s.EffectiveLevel()
	language := s.EffectiveLanguage()

	system, err := Instruction(level, language)
	if err != nil {
		return Update{}, err
	}

	backend := r.llm
	if backend == nil {
		backend = ScriptedResponder(level, language)
	}

	logger := ctx.Logger()
	resp, err := backend.Respond(ctx, llm.Request{
		System:   system,
		Messages: toLLMMessages(s.Messages),
	})
	if err != nil {
		return Update{}, fmt.Errorf("generate reply: %w", err)
	}

	reply := strings.TrimSpace(resp.Content)
	if reply == "" {
		return Update{}, fmt.Errorf("generate reply: %w", llm.ErrEmptyReply)
	}

	logger.Debug("reply generated",
		slog.String("model", resp.Model),
		slog.Int("tokens", resp.Usage.Total()))

	return Update{}.AppendMessages(AI(reply)), nil
}

func toLLMMessages(msgs []Message) []llm.Message {
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		role := llm.RoleUser
		if m.Role == RoleAI {
			role = llm.RoleAssistant
		}
		out = append(out, llm.Message{Role: role, Content: m.Content})
	}
	return out
}

// scriptedReplies are canned tutor turns per language and level. The
// scripted responder walks through them as the learner keeps talking.
var scriptedReplies = map[Language]map[Level][]string{
	LanguageSpanish: {
		LevelA0: {
			"¡Hola! Me llamo Sofía. ¿Cómo te llamas?",
			"¡Muy bien! ¿De dónde eres?",
			"¡Qué bien! ¿Te gusta el café?",
			"¡Perfecto! ¿Tienes un perro o un gato?",
		},
		LevelA1: {
			"¡Hola! ¿Qué tal? ¿Cómo te llamas y de dónde eres?",
			"¡Qué interesante! ¿Qué te gusta hacer los fines de semana?",
			"¡Genial! ¿Con quién vives?",
			"¿Y qué comes normalmente para el desayuno?",
		},
		LevelA2: {
			"¡Hola! Cuéntame, ¿qué hiciste ayer?",
			"¡Suena bien! ¿Y cómo fue tu último viaje?",
			"¿Qué hacías cuando eras niño o niña?",
			"Interesante. ¿Qué vas a hacer este fin de semana?",
		},
		LevelB1: {
			"¡Hola! Si pudieras vivir en cualquier ciudad, ¿cuál elegirías y por qué?",
			"Entiendo. ¿Crees que es importante que los niños aprendan otro idioma?",
			"¿Qué habrías hecho diferente en tu último trabajo?",
			"Es un buen punto. ¿Qué le recomendarías a alguien que empieza a aprender idiomas?",
		},
	},
	LanguageGerman: {
		LevelA0: {
			"Hallo! Ich heiße Anna. Wie heißt du?",
			"Sehr gut! Woher kommst du?",
			"Toll! Trinkst du gern Kaffee?",
			"Super! Hast du einen Hund oder eine Katze?",
		},
		LevelA1: {
			"Hallo! Wie geht's? Wie heißt du und woher kommst du?",
			"Interessant! Was machst du gern am Wochenende?",
			"Schön! Mit wem wohnst du zusammen?",
			"Und was isst du normalerweise zum Frühstück?",
		},
		LevelA2: {
			"Hallo! Erzähl mal, was hast du gestern gemacht?",
			"Klingt gut! Wie war deine letzte Reise?",
			"Was hast du als Kind gern gemacht?",
			"Interessant. Was machst du am Wochenende?",
		},
		LevelB1: {
			"Hallo! Wenn du in jeder Stadt leben könntest, welche würdest du wählen und warum?",
			"Verstehe. Findest du es wichtig, dass Kinder eine Fremdsprache lernen?",
			"Was hättest du in deinem letzten Job anders gemacht?",
			"Guter Punkt. Was würdest du jemandem empfehlen, der gerade anfängt, eine Sprache zu lernen?",
		},
	},
}

// ScriptedResponder returns a deterministic, offline responder for a level
// and language. It is the default when no LLM provider is configured.
func ScriptedResponder(level Level, language Language) llm.Responder {
	if !language.Valid() {
		language = DefaultLanguage
	}
	replies := scriptedReplies[language][level]
	if len(replies) == 0 {
		replies = scriptedReplies[language][DefaultLevel]
	}

	return llm.ResponderFunc(func(ctx context.Context, req llm.Request) (llm.Response, error) {
		if err := ctx.Err(); err != nil {
			return llm.Response{}, err
		}
		turns := 0
		for _, m := range req.Messages {
			if m.Role == llm.RoleUser {
				turns++
			}
		}
		i := max(turns-1, 0) % len(replies)
		return llm.Response{Content: replies[i], Model: "scripted"}, nil
	})
}

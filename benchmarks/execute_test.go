package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/randalmurphal/tutorgraph/pkg/flowgraph"
	"github.com/randalmurphal/tutorgraph/pkg/flowgraph/checkpoint"
	"github.com/randalmurphal/tutorgraph/pkg/tutor"
)

// BenchmarkRun_Linear_10 measures engine overhead on a 10-node graph.
func BenchmarkRun_Linear_10(b *testing.B) {
	compiled := mustCompile(buildLinearGraph(10))
	ctx := flowgraph.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, tutor.Update{})
	}
}

// BenchmarkTurn runs one stateless tutoring turn per level, covering both
// the scaffold and analyze branches.
func BenchmarkTurn(b *testing.B) {
	graph := mustTutorGraph(b)
	ctx := flowgraph.NewContext(context.Background())

	for _, level := range tutor.Levels {
		b.Run(string(level), func(b *testing.B) {
			input := tutor.Update{}.
				AppendMessages(tutor.Human("Ayer voy al cine con mi amigo")).
				SetLevel(level).
				SetLanguage(tutor.LanguageSpanish)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := graph.Run(ctx, input); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkConversation_Send measures a checkpointed turn on a thread that
// grows with every iteration.
func BenchmarkConversation_Send(b *testing.B) {
	conv := tutor.NewConversation(mustTutorGraph(b), checkpoint.NewMemoryStore())
	thread := conv.ThreadID("bench")
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := conv.Send(ctx, thread, tutor.LevelA2, tutor.LanguageGerman, "Ich habe gestern Brot gekauft"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMerge_Append measures the message reducer on long threads.
func BenchmarkMerge_Append(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("history_%d", n), func(b *testing.B) {
			state := longThread(n)
			update := tutor.Update{}.AppendMessages(tutor.Human("hola"))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = tutor.Merge(state, update)
			}
		})
	}
}

// BenchmarkContextCreation measures context creation overhead.
func BenchmarkContextCreation(b *testing.B) {
	ctx := context.Background()
	for i := 0; i < b.N; i++ {
		_ = flowgraph.NewContext(ctx)
	}
}

func longThread(n int) tutor.State {
	s := tutor.State{Level: tutor.LevelA1, Language: tutor.LanguageSpanish}
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			s.Messages = append(s.Messages, tutor.Human(fmt.Sprintf("mensaje %d", i)))
		} else {
			s.Messages = append(s.Messages, tutor.AI(fmt.Sprintf("respuesta %d", i)))
		}
	}
	return s
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/tutorgraph/pkg/tutor"
)

func newChatCmd(a *app) *cobra.Command {
	var (
		level    string
		language string
		stream   bool
	)

	cmd := &cobra.Command{
		Use:   "chat [message...]",
		Short: "Send a message to the tutor, or chat interactively",
		Long: `Send one message given as arguments, or with no arguments read one
message per line from stdin until EOF or "/quit".`,
		Example: `  tutor chat --level A0 "Hola"
  tutor chat --level B1 --language de`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := tutor.ParseLevel(level)
			if err != nil {
				return err
			}
			lang := tutor.ParseLanguage(language)

			conv, err := a.conversation(cmd.Context())
			if err != nil {
				return err
			}

			send := func(text string) error {
				return sendTurn(cmd.Context(), cmd.OutOrStdout(), conv, a.thread(), lvl, lang, text, stream)
			}

			if len(args) > 0 {
				return send(strings.Join(args, " "))
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "/quit" {
					break
				}
				if err := send(line); err != nil {
					return err
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVarP(&level, "level", "l", string(tutor.DefaultLevel), "CEFR level: A0, A1, A2 or B1")
	cmd.Flags().StringVar(&language, "language", string(tutor.DefaultLanguage), "target language: es or de")
	cmd.Flags().BoolVar(&stream, "stream", false, "print each step as it finishes")
	return cmd
}

func sendTurn(ctx context.Context, w io.Writer, conv *tutor.Conversation, thread string, level tutor.Level, language tutor.Language, text string, stream bool) error {
	if !stream {
		state, err := conv.Send(ctx, thread, level, language, text)
		if err != nil {
			return err
		}
		printTurn(w, state)
		return nil
	}

	events, result := conv.Stream(ctx, thread, level, language, text)
	for ev := range events {
		fmt.Fprintf(w, "· %s %s\n", ev.NodeID, ev.Update)
	}
	res := <-result
	if res.Err != nil {
		return res.Err
	}
	printTurn(w, res.State)
	return nil
}

// printTurn shows the tutor's reply and whatever support this turn produced.
func printTurn(w io.Writer, s tutor.State) {
	if reply, ok := s.LastAI(); ok {
		fmt.Fprintf(w, "tutor: %s\n", reply.Content)
	}

	if sc := s.Scaffolding; sc != nil && sc.Enabled {
		fmt.Fprintf(w, "  words: %s\n", strings.Join(sc.WordBank, ", "))
		if sc.Hint != "" {
			fmt.Fprintf(w, "  hint: %s\n", sc.Hint)
		}
		if sc.SentenceStarter != "" {
			fmt.Fprintf(w, "  try: %s ...\n", sc.SentenceStarter)
		}
	}

	for _, fb := range s.FeedbackMessages {
		fmt.Fprintf(w, "  [%s] %s\n", fb.Severity, fb.Text)
	}

	for _, v := range s.NewVocabulary {
		fmt.Fprintf(w, "  new: %s (%s) = %s\n", v.Word, v.PartOfSpeech, v.Translation)
	}
}

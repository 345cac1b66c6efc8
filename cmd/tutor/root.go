package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/randalmurphal/tutorgraph/pkg/config"
	"github.com/randalmurphal/tutorgraph/pkg/flowgraph"
	"github.com/randalmurphal/tutorgraph/pkg/flowgraph/checkpoint"
	"github.com/randalmurphal/tutorgraph/pkg/llm"
	"github.com/randalmurphal/tutorgraph/pkg/tutor"
)

// app is the state shared by all subcommands of one invocation.
type app struct {
	registry *checkpoint.Registry

	configPath string
	envFile    string
	userID     string
	threadID   string

	settings config.Settings
	logger   *slog.Logger
	logClose io.Closer
	store    checkpoint.Store
}

func newRootCmd(registry *checkpoint.Registry) *cobra.Command {
	a := &app{registry: registry}

	root := &cobra.Command{
		Use:           "tutor",
		Short:         "Practice a language with a leveled conversation tutor",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "settings file (YAML or JSON)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.StringVarP(&a.userID, "user", "u", "local", "learner id; selects the thread user:<id>")
	flags.StringVar(&a.threadID, "thread", "", "explicit thread id, e.g. one printed by 'tutor new'")

	root.AddCommand(
		newChatCmd(a),
		newHistoryCmd(a),
		newNewCmd(a),
		newResumeCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) setup(stderr io.Writer) error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", a.envFile, err)
		}
	}

	settings, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.settings = settings

	logger, closer, err := newLogger(settings, stderr)
	if err != nil {
		return err
	}
	a.logger = logger
	a.logClose = closer
	return nil
}

func (a *app) close() error {
	var errs []error
	if a.store != nil {
		// The registry's memory store outlives the command.
		if _, shared := a.store.(*checkpoint.MemoryStore); !shared {
			errs = append(errs, a.store.Close())
		}
		a.store = nil
	}
	if a.logClose != nil {
		errs = append(errs, a.logClose.Close())
		a.logClose = nil
	}
	return errors.Join(errs...)
}

// thread returns --thread, or the user's default thread.
func (a *app) thread() string {
	if a.threadID != "" {
		return a.threadID
	}
	return tutor.ThreadID(a.userID)
}

// openStore selects the checkpoint backend. A valid DATABASE_URL wins;
// otherwise sqlite_path, if set; otherwise the shared in-memory store.
func (a *app) openStore(ctx context.Context) (checkpoint.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	var (
		store checkpoint.Store
		err   error
	)
	if !checkpoint.ValidConnString(a.settings.DatabaseURL) && a.settings.SQLitePath != "" {
		a.logger.Info("using sqlite checkpoint store", slog.String("path", a.settings.SQLitePath))
		store, err = checkpoint.NewSQLiteStore(ctx, a.settings.SQLitePath)
	} else {
		store, err = checkpoint.Open(ctx, a.settings.DatabaseURL, a.registry, a.logger)
	}
	if err != nil {
		return nil, err
	}
	a.store = store
	return store, nil
}

func (a *app) conversation(ctx context.Context) (*tutor.Conversation, error) {
	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	responder, err := llm.FromSettings(a.settings.LLM, nil)
	if err != nil {
		return nil, err
	}

	graph, err := tutor.NewGraph(
		tutor.WithResponder(responder),
		tutor.WithTopology(a.settings.Topology))
	if err != nil {
		return nil, err
	}

	return tutor.NewConversation(graph, store,
		tutor.WithLogger(a.logger),
		tutor.WithRunOptions(flowgraph.WithObservabilityLogger(a.logger))), nil
}

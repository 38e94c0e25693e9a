package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/taskboard/internal/board"
	"github.com/sadopc/taskboard/internal/config"
	"github.com/sadopc/taskboard/internal/logging"
	"github.com/sadopc/taskboard/internal/store"
	"github.com/sadopc/taskboard/internal/tui"
)

var version = "0.1.0"

// session is everything a command needs once configuration is resolved.
type session struct {
	cfg    config.Config
	log    *zap.Logger
	board  *board.Store
	closer func() error
}

func (s *session) Close() {
	s.board.Close()
	if s.closer != nil {
		if err := s.closer(); err != nil {
			s.log.Warn("close storage", zap.Error(err))
		}
	}
	_ = s.log.Sync()
}

type rootOptions struct {
	cfgFile string
	fs      afero.Fs
}

// NewRootCmd builds the command tree. Without a subcommand it opens the
// board UI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{fs: afero.NewOsFs()}

	root := &cobra.Command{
		Use:           "taskboard",
		Short:         "A three-column task board for the terminal.",
		Long:          "taskboard keeps tasks in To Do, In Progress and Done columns.\nCompleted tasks are removed automatically after ten seconds unless they recur.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			app := tui.NewApp(sess.board, sess.cfg.DataDir)
			if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("run ui: %w", err)
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.cfgFile, "config", "c", "", "config file (default is <data-dir>/taskboard.yaml or ./taskboard.yaml)")
	pf.String("data-dir", "", "directory holding the board data")
	pf.String("storage", "", "storage backend: sqlite or file")
	pf.String("log-file", "", "write JSON logs to this file")
	pf.String("log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newListCmd(opts),
		newAddCmd(opts),
		newExportCmd(opts),
	)
	return root
}

// open resolves configuration and loads the board from the configured
// backend.
func (o *rootOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(o.cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var (
		kv     store.KV
		closer func() error
	)
	switch cfg.Storage {
	case config.StorageFile:
		fkv, err := store.NewFileKV(o.fs, cfg.BoardFile())
		if err != nil {
			return nil, err
		}
		kv = fkv
	default:
		db, err := store.New(cfg.DBPath())
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		kv, closer = db, db.Close
	}

	logger.Debug("board opened",
		zap.String("storage", cfg.Storage),
		zap.String("data_dir", cfg.DataDir),
	)

	b := board.New(
		board.WithPersistence(store.NewSnapshots(kv)),
		board.WithLogger(logger),
	)
	return &session{cfg: cfg, log: logger, board: b, closer: closer}, nil
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

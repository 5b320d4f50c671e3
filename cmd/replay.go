package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	"github.com/okian/matchxg/internal/adapters/export"
	service "github.com/okian/matchxg/internal/app"
	"github.com/okian/matchxg/internal/config"
	"github.com/okian/matchxg/internal/domain/model"
	"github.com/okian/matchxg/pkg/logger"
)

// ErrInvalidScript is returned when a replay script cannot be used.
var ErrInvalidScript = errors.New("invalid replay script")

// scriptEvent is one line of a replay script.
type scriptEvent struct {
	Minute  int    `koanf:"minute"`
	Team    string `koanf:"team"`
	Kind    string `koanf:"kind"`
	EventID string `koanf:"event_id"`
}

type scriptInfo struct {
	HomeName     string `koanf:"home_name"`
	AwayName     string `koanf:"away_name"`
	Label        string `koanf:"label"`
	Date         string `koanf:"date"`
	Championship string `koanf:"championship"`
}

// script is a recorded match: optional info plus an event list.
type script struct {
	Info   scriptInfo    `koanf:"info"`
	Events []scriptEvent `koanf:"events"`
}

var replayCSV string

var replayCmd = &cobra.Command{
	Use:   "replay <script.yaml>",
	Short: "Feed a recorded match through the tracker and print the summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := config.Load(ctx)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}

		var csvOut io.Writer
		switch replayCSV {
		case "":
		case "-":
			csvOut = cmd.OutOrStdout()
		default:
			f, err := os.Create(replayCSV)
			if err != nil {
				return fmt.Errorf("create csv: %w", err)
			}
			defer func() { _ = f.Close() }()
			csvOut = f
		}
		return replay(ctx, cfg, args[0], cmd.OutOrStdout(), csvOut)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayCSV, "csv", "", "also write the event log as CSV to this file (- for stdout)")
}

func loadScript(path string) (*script, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	var s script
	if err := k.UnmarshalWithConf("", &s, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	for i, e := range s.Events {
		if _, ok := model.ParseTeam(e.Team); !ok {
			return nil, fmt.Errorf("%w: event %d: unknown team %q", ErrInvalidScript, i, e.Team)
		}
		if e.Minute < 0 {
			return nil, fmt.Errorf("%w: event %d: negative minute", ErrInvalidScript, i)
		}
	}
	// Stable so same-minute events keep script order.
	sort.SliceStable(s.Events, func(i, j int) bool { return s.Events[i].Minute < s.Events[j].Minute })
	return &s, nil
}

// replay runs a script through a clockless service and renders the result.
func replay(ctx context.Context, cfg *config.Config, path string, out, csvOut io.Writer) error {
	applyLogLevel(ctx, cfg)
	s, err := loadScript(path)
	if err != nil {
		return err
	}

	opts, err := serviceOptions(cfg, logger.Named("replay"))
	if err != nil {
		return err
	}
	svc := service.New(opts...)
	if s.Info != (scriptInfo{}) {
		info := svc.Info()
		if s.Info.HomeName != "" {
			info.HomeName = s.Info.HomeName
		}
		if s.Info.AwayName != "" {
			info.AwayName = s.Info.AwayName
		}
		info.Label, info.Date, info.Championship = s.Info.Label, s.Info.Date, s.Info.Championship
		svc.SetInfo(ctx, info)
	}

	for _, e := range s.Events {
		team, _ := model.ParseTeam(e.Team)
		kind, _ := model.ParseKind(e.Kind)
		svc.SeekClock(ctx, e.Minute)
		if _, _, err := svc.RecordEvent(ctx, team, kind, e.EventID); err != nil {
			return fmt.Errorf("record event at minute %d: %w", e.Minute, err)
		}
	}

	if err := export.WriteSummary(out, svc.Snapshot()); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if csvOut != nil {
		if err := export.WriteCSV(csvOut, svc.Events(), svc.Info()); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	return nil
}

package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/drakos74/tradescore/infra/config"
	"github.com/drakos74/tradescore/internal/backtest"
	"github.com/drakos74/tradescore/internal/exit"
	"github.com/drakos74/tradescore/internal/metrics"
	"github.com/drakos74/tradescore/internal/scoring"
	"github.com/drakos74/tradescore/internal/storage"
	"github.com/drakos74/tradescore/internal/storage/file/json"
	"github.com/drakos74/tradescore/internal/storage/kafka"
	cointime "github.com/drakos74/tradescore/internal/time"
)

func main() {
	os.Exit(start(os.Args[1:]))
}

// start runs the backtest and returns the process exit code.
func start(args []string) int {
	flags := flag.NewFlagSet("backtest", flag.ContinueOnError)
	file := flags.String("config", "", "run configuration file, infra/config/backtest.yaml if empty")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	run, err := config.LoadRun(*file)
	if err != nil {
		log.Error().Err(err).Str("config", *file).Msg("could not load config")
		return 1
	}
	setupLog(run.Log)

	if run.MetricsAddr != "" {
		server := metrics.Serve(run.MetricsAddr)
		defer func() {
			ctx, cnl := context.WithTimeout(context.Background(), 5*time.Second)
			defer cnl()
			if err := server.Shutdown(ctx); err != nil {
				log.Warn().Err(err).Msg("could not stop metrics server")
			}
		}()
	}

	ctx, cnl := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cnl()

	if err := execute(ctx, run); err != nil {
		log.Error().Err(err).Str("run", run.Name).Msg("backtest failed")
		return 1
	}
	return 0
}

func setupLog(cfg config.Log) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}}
	if cfg.File != "" {
		maxSize := cfg.MaxSize
		if maxSize <= 0 {
			maxSize = 100
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    maxSize,
			MaxBackups: 5,
			Compress:   true,
		})
	}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
}

func execute(ctx context.Context, run config.Run) error {
	loc, err := cointime.Location(run.Location)
	if err != nil {
		return err
	}

	versions := scoring.Versions{}
	for _, f := range run.Rules {
		rs, err := scoring.LoadRuleSet(f)
		if err != nil {
			return err
		}
		versions.RuleSets = append(versions.RuleSets, rs)
	}
	for _, f := range run.Hybrids {
		h, err := scoring.LoadHybrid(f)
		if err != nil {
			return err
		}
		versions.Hybrids = append(versions.Hybrids, h)
	}

	segmenters := make([]exit.Segmenter, 0, len(run.Segments))
	for _, s := range run.Segments {
		segmenter, err := exit.NewSegmenter(s, loc)
		if err != nil {
			return err
		}
		segmenters = append(segmenters, segmenter)
	}

	var calibration scoring.Calibration
	if run.Inputs.Calibration != "" {
		table, err := backtest.LoadCalibration(run.Inputs.Calibration)
		if err != nil {
			return err
		}
		calibration = table
	}

	runner, err := backtest.New(backtest.Config{
		Name:          run.Name,
		Location:      loc,
		DecisionClock: run.DecisionClock,
		Indicators:    run.Indicators,
		Versions:      versions,
		Tiers:         run.Tiers,
		Checkpoints:   run.Checkpoints,
		ExitAt:        run.ExitAt,
		Lot:           run.Lot,
		Segmenters:    segmenters,
		MinCount:      run.MinCount,
		Workers:       run.Workers,
	}, calibration)
	if err != nil {
		return err
	}

	candidates, exclusions, err := backtest.LoadCandidates(run.Inputs.Candidates, run.Inputs.Bars)
	if err != nil {
		return err
	}

	report, err := runner.Run(ctx, candidates, exclusions...)
	if err != nil {
		return err
	}

	sink := storage.Multi{json.NewJsonBlob("backtest", run.Name, true).WithRoot(outputDir(run.Output))}
	if brokers := run.Output.Kafka.Brokers; len(brokers) > 0 {
		producer, err := kafka.NewProducer(brokers, run.Output.Kafka.Topic)
		if err != nil {
			return err
		}
		defer func() {
			if err := producer.Close(); err != nil {
				log.Warn().Err(err).Msg("could not close kafka producer")
			}
		}()
		sink = append(sink, producer)
	}
	return report.Store(sink)
}

func outputDir(output config.Output) string {
	if output.Dir == "" {
		return storage.DefaultDir
	}
	return output.Dir
}

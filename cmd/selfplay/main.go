// Command selfplay runs a random-vs-random series, prints its statistics
// and optionally stores every game in a Parquet file.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/bbengine/pkg/engine"
	"github.com/yourusername/bbengine/pkg/record"
)

func main() {
	games := flag.Int("games", 1000, "Number of games")
	workers := flag.Int("workers", 0, "Worker goroutines (0 = auto)")
	seed := flag.Int64("seed", 0, "Random seed (0 = random)")
	maxRounds := flag.Int("max-rounds", 1000, "Per-game round limit")
	strict := flag.Bool("strict", false, "Strict ball pass and ball carrier checks")
	output := flag.String("output", "", "Write game records to this Parquet file")
	parallel := flag.Int64("parallel", 4, "Parquet writer/reader parallelism")
	verify := flag.Bool("verify", false, "Read the Parquet file back and replay every game")
	progress := flag.Bool("progress", true, "Print progress")
	debug := flag.Bool("debug", false, "Development logging")
	flag.Parse()

	logger, err := zap.NewProduction()
	if *debug {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	e, err := engine.NewEngine(engine.EngineOptions{
		StrictBallPass:    *strict,
		StrictBallCarrier: *strict,
		Logger:            logger,
	})
	if err != nil {
		logger.Fatal("failed to create engine", zap.Error(err))
	}

	var sink engine.GameSink
	var records chan record.GameRecord
	writeDone := make(chan error, 1)
	if *output != "" {
		records = make(chan record.GameRecord, 256)
		sink = func(id string, result engine.Result, history []engine.Turn) {
			records <- record.FromGame(id, engine.StartingPosition(), result, history)
		}
		go func() {
			writeDone <- record.WriteParquet(*output, records, *parallel)
		}()
	}

	var callback engine.SelfPlayCallback
	if *progress {
		callback = func(p engine.SelfPlayProgress) {
			fmt.Fprintf(os.Stderr, "\r%5.1f%%  %d/%d games  white %.1f%%",
				p.Percent, p.GamesCompleted, p.GamesTotal, p.WhiteWinRate*100)
		}
	}

	start := time.Now()
	result, err := e.SelfPlayWithProgress(engine.SelfPlayOptions{
		Games:     *games,
		Workers:   *workers,
		Seed:      *seed,
		MaxRounds: *maxRounds,
	}, sink, callback)
	elapsed := time.Since(start)
	if *progress {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		logger.Fatal("self-play failed", zap.Error(err))
	}

	if records != nil {
		close(records)
		if err := <-writeDone; err != nil {
			logger.Fatal("writing records failed", zap.String("path", *output), zap.Error(err))
		}
	}

	fmt.Printf("Self-play (%d games, %.1fs):\n", result.GamesCompleted, elapsed.Seconds())
	fmt.Printf("  White: %d  Black: %d  Unfinished: %d  Forfeits: %d\n",
		result.WhiteWins, result.BlackWins, result.Unfinished, result.Forfeits)
	fmt.Printf("  White win rate: %.1f%%\n", result.WhiteWinRate*100)
	fmt.Printf("  Rounds: %.1f ± %.1f (95%% CI: ±%.2f, min %.0f, max %.0f)\n",
		result.MeanRounds, result.RoundsStdDev, result.RoundsCI, result.MinRounds, result.MaxRounds)

	if *output != "" && *verify {
		if err := verifyRecords(*output, *parallel, result.GamesCompleted); err != nil {
			logger.Fatal("verification failed", zap.Error(err))
		}
		fmt.Printf("  Verified %d records in %s\n", result.GamesCompleted, *output)
	}
}

// verifyRecords reads the file back and replays every game. A game that
// ended naturally must replay to a terminal board won by the recorded
// winner.
func verifyRecords(path string, parallel int64, want int) error {
	recs, err := record.ReadParquet(path, parallel)
	if err != nil {
		return err
	}
	if len(recs) != want {
		return fmt.Errorf("read %d records, want %d", len(recs), want)
	}
	for _, rec := range recs {
		board, err := rec.Replay()
		if err != nil {
			return err
		}
		if rec.Forfeit || rec.WinnerSide() == engine.NoSide {
			continue
		}
		winner, over := board.Winner()
		if !over || winner != rec.WinnerSide() {
			return fmt.Errorf("game %s: replay ends at %s, recorded winner %s", rec.GameID, board.PositionID(), rec.Winner)
		}
	}
	return nil
}

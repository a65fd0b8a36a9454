package engine

import (
	"errors"
	"math"
	"math/rand"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SelfPlayOptions controls a self-play series
type SelfPlayOptions struct {
	Games     int   // Number of games to play (default 100)
	Workers   int   // Number of parallel workers (0 = GOMAXPROCS)
	Seed      int64 // RNG seed (0 = random)
	MaxRounds int   // Per-game round limit (0 = engine setting, or 1000 if unlimited)
}

// SelfPlayProgress contains progress information during a series
type SelfPlayProgress struct {
	GamesCompleted int     // Number of games finished so far
	GamesTotal     int     // Total number of games
	Percent        float64 // Percentage complete (0-100)
	WhiteWinRate   float64 // White wins / decided games so far
}

// SelfPlayCallback is called periodically with progress updates
type SelfPlayCallback func(progress SelfPlayProgress)

// GameSink receives every finished game of a series. It is called from
// worker goroutines and must be safe for concurrent use.
type GameSink func(id string, result Result, history []Turn)

// SelfPlayResult contains the results of a series
type SelfPlayResult struct {
	GamesCompleted int
	WhiteWins      int
	BlackWins      int
	Forfeits       int
	Unfinished     int // games cut off by the round limit

	WhiteWinRate float64 // over decided games

	// Game length (rounds played) over decided games
	MeanRounds   float64
	RoundsStdDev float64
	RoundsCI     float64 // 95% confidence interval of the mean
	MinRounds    float64
	MaxRounds    float64
}

// DefaultSelfPlayOptions returns sensible defaults
func DefaultSelfPlayOptions() SelfPlayOptions {
	return SelfPlayOptions{
		Games:   100,
		Workers: 0,
		Seed:    0,
	}
}

// gameOutcome is what a worker reports per finished game
type gameOutcome struct {
	result   Result
	finished bool
}

// SelfPlay plays a series of random-vs-random games
func (e *Engine) SelfPlay(opts SelfPlayOptions, sink GameSink) (*SelfPlayResult, error) {
	return e.SelfPlayWithProgress(opts, sink, nil)
}

// SelfPlayWithProgress plays a series and reports progress about 20 times.
func (e *Engine) SelfPlayWithProgress(opts SelfPlayOptions, sink GameSink, callback SelfPlayCallback) (*SelfPlayResult, error) {
	// Set defaults
	if opts.Games <= 0 {
		opts.Games = 100
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Workers > opts.Games {
		opts.Workers = opts.Games
	}
	if opts.Seed == 0 {
		opts.Seed = rand.Int63()
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = e.maxRounds
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = 1000
	}

	e.logger.Info("self-play started",
		zap.Int("games", opts.Games),
		zap.Int("workers", opts.Workers),
		zap.Int64("seed", opts.Seed),
	)

	// Distribute games across workers
	gamesPerWorker := opts.Games / opts.Workers
	extraGames := opts.Games % opts.Workers

	outcomes := make(chan gameOutcome, opts.Workers*4)
	var wg sync.WaitGroup

	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		workerGames := gamesPerWorker
		if i < extraGames {
			workerGames++
		}
		workerSeed := opts.Seed + int64(i)*1000000

		go func(games int, seed int64) {
			defer wg.Done()
			e.selfPlayWorker(games, seed, opts.MaxRounds, sink, outcomes)
		}(workerGames, workerSeed)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	return e.aggregateSelfPlay(outcomes, opts.Games, callback)
}

// selfPlayWorker plays its share of games with its own RNG
func (e *Engine) selfPlayWorker(games int, seed int64, maxRounds int, sink GameSink, out chan<- gameOutcome) {
	rng := rand.New(rand.NewSource(seed))
	opts := e.gameOptions()
	opts.MaxRounds = maxRounds
	// per-round debug lines from thousands of games are noise
	opts.Logger = nil

	for i := 0; i < games; i++ {
		white := &RandomPlayer{Side: White, Rules: e.rules, Rng: rng}
		black := &RandomPlayer{Side: Black, Rules: e.rules, Rng: rng}
		g := NewGame(white, black, opts)

		result, err := g.Run()
		finished := true
		if err != nil {
			if !errors.Is(err, ErrRoundLimit) {
				e.logger.Error("self-play game failed", zap.Error(err))
			}
			finished = false
		}
		if sink != nil {
			sink(uuid.New().String(), result, g.History())
		}
		out <- gameOutcome{result: result, finished: finished}
	}
}

// aggregateSelfPlay combines worker outcomes and calls the progress callback
func (e *Engine) aggregateSelfPlay(outcomes <-chan gameOutcome, totalGames int, callback SelfPlayCallback) (*SelfPlayResult, error) {
	result := &SelfPlayResult{}
	rounds := make([]float64, 0, totalGames)

	reportEvery := totalGames / 20
	if reportEvery < 1 {
		reportEvery = 1
	}

	for o := range outcomes {
		result.GamesCompleted++
		switch {
		case !o.finished:
			result.Unfinished++
		case o.result.Winner == White:
			result.WhiteWins++
		case o.result.Winner == Black:
			result.BlackWins++
		}
		if o.finished {
			// rounds are 0-based
			rounds = append(rounds, float64(o.result.Round+1))
			if o.result.Forfeit {
				result.Forfeits++
			}
		}

		if callback != nil && (result.GamesCompleted%reportEvery == 0 || result.GamesCompleted == totalGames) {
			callback(SelfPlayProgress{
				GamesCompleted: result.GamesCompleted,
				GamesTotal:     totalGames,
				Percent:        100.0 * float64(result.GamesCompleted) / float64(totalGames),
				WhiteWinRate:   winRate(result.WhiteWins, result.BlackWins),
			})
		}
	}

	result.WhiteWinRate = winRate(result.WhiteWins, result.BlackWins)

	n := float64(len(rounds))
	if n > 0 {
		result.MeanRounds, result.RoundsStdDev = stat.MeanStdDev(rounds, nil)
		if n < 2 {
			result.RoundsStdDev = 0
		}
		result.RoundsCI = 1.96 * result.RoundsStdDev / math.Sqrt(n)
		result.MinRounds = floats.Min(rounds)
		result.MaxRounds = floats.Max(rounds)
	}

	e.logger.Info("self-play finished",
		zap.Int("games", result.GamesCompleted),
		zap.Int("white_wins", result.WhiteWins),
		zap.Int("black_wins", result.BlackWins),
		zap.Int("unfinished", result.Unfinished),
		zap.Float64("mean_rounds", result.MeanRounds),
	)
	return result, nil
}

func winRate(white, black int) float64 {
	if white+black == 0 {
		return 0
	}
	return float64(white) / float64(white+black)
}

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/runlog/internal/game"
	"github.com/verte-zerg/runlog/internal/objective"
)

var replayFlags gameFlags

// replayScript is a scripted, headless run.
//
//	seed = 1
//	[[step]]
//	action = "move"
//	dx = 1
//	repeat = 3
type replayScript struct {
	Seed  *int64       `toml:"seed"`
	Steps []replayStep `toml:"step"`
}

type replayStep struct {
	Action  string  `toml:"action"`
	DX      int     `toml:"dx"`
	DY      int     `toml:"dy"`
	Repeat  int     `toml:"repeat"`
	Seconds float64 `toml:"seconds"`
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <script.toml>",
		Short: "Run a scripted playthrough without the TUI",
		Args:  cobra.ExactArgs(1),
		RunE:  runReplayCmd,
	}
	addGameFlags(cmd, &replayFlags)
	cmd.Flags().BoolVar(&replayFlags.async, "async-telemetry", false, "write telemetry rows from a background goroutine")
	return cmd
}

func loadReplayScript(path string) (replayScript, error) {
	var script replayScript
	meta, err := toml.DecodeFile(path, &script)
	if err != nil {
		return replayScript{}, fmt.Errorf("failed to decode replay script: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return replayScript{}, fmt.Errorf("unknown replay key %q", undecoded[0].String())
	}
	for i, step := range script.Steps {
		if err := step.validate(); err != nil {
			return replayScript{}, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return script, nil
}

func (s replayStep) validate() error {
	switch s.Action {
	case "move":
		if abs(s.DX)+abs(s.DY) != 1 {
			return errors.New("move needs exactly one of dx or dy set to 1 or -1")
		}
	case "wait":
		if s.Seconds < 0 {
			return errors.New("wait seconds must be >= 0")
		}
	case "interact", "attack", "cycle", "step":
	default:
		return fmt.Errorf("unknown action %q", s.Action)
	}
	if s.Repeat < 0 {
		return errors.New("repeat must be >= 0")
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// replayClock only moves on wait steps.
type replayClock struct {
	t time.Time
}

func (c *replayClock) now() time.Time {
	return c.t
}

func runReplayCmd(cmd *cobra.Command, args []string) error {
	script, err := loadReplayScript(args[0])
	if err != nil {
		return err
	}
	s, err := resolveSettings(cmd, replayFlags)
	if err != nil {
		return err
	}
	if script.Seed != nil && !cmd.Flags().Changed("seed") {
		s.seed = *script.Seed
	}
	if s.seed == 0 {
		s.seed = 1
	}
	s.history = false

	logger := newLogger(cmd.ErrOrStderr(), s.logLevel)
	sinks, err := openSinks(s, time.Now(), logger)
	if err != nil {
		return err
	}
	clock := &replayClock{t: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)}
	r, err := newRig(s, rigOptions{Sinks: sinks.list, Logger: logger, Now: clock.now})
	if err != nil {
		return errors.Join(err, sinks.Close())
	}

	r.manager.OnSessionStart()
	runErr := replay(cmd.OutOrStdout(), r, clock, script.Steps, logger)
	r.manager.OnSessionEnd()
	if err := sinks.Close(); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("failed to close telemetry: %w", err))
	}
	if runErr != nil {
		return runErr
	}
	c := r.manager.Completions()
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "completions reach-exit=%d kill-all=%d heist=%d\n",
		c.ReachExit, c.KillAll, c.Heist); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// replay runs every step. Interaction errors are logged and the run
// continues; they are returned together at the end.
func replay(out io.Writer, r *rig, clock *replayClock, steps []replayStep, logger *slog.Logger) error {
	var errs []error
	for i, step := range steps {
		times := max(step.Repeat, 1)
		for range times {
			switch step.Action {
			case "move":
				r.world.Move(step.DX, step.DY)
			case "wait":
				clock.t = clock.t.Add(time.Duration(step.Seconds * float64(time.Second)))
			case "attack":
				r.world.Attack()
			case "cycle":
				r.world.CycleWeapon()
			case "step":
				r.world.Step()
			case "interact":
				res, err := r.manager.Interact()
				if werr := writeOutcome(out, res); werr != nil {
					return werr
				}
				if err != nil {
					logger.Error("interaction failed", "step", i+1, "err", err)
					errs = append(errs, fmt.Errorf("step %d: %w", i+1, err))
				}
			}
			r.manager.Tick()
		}
	}
	return errors.Join(errs...)
}

func writeOutcome(out io.Writer, res game.Result) error {
	o := res.Outcome
	var err error
	switch o.Kind {
	case objective.Enter:
		_, err = fmt.Fprintf(out, "enter %s (%s)\n", o.Level, o.Archetype)
	case objective.Complete:
		_, err = fmt.Fprintf(out, "complete %s time=%gs enemies=%d/%g best=%gs fewest=%g recorded=%t\n",
			o.Level, res.Row.CompletionTime, o.EnemiesRemaining, res.Row.TotalEnemies,
			res.Best.BestTimeSeconds, res.Best.BestEnemiesRemaining, res.Recorded)
	default:
		_, err = fmt.Fprintln(out, "nothing to interact with")
	}
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

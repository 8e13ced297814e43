package automation

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/firesim/internal/experiment"
	"github.com/san-kum/firesim/internal/metrics"
	"github.com/san-kum/firesim/internal/session"
)

var ErrSweep = errors.New("automation: invalid sweep")

// Parameters a sweep can vary.
const (
	ParamWindStrength      = "wind_strength"
	ParamWindAngle         = "wind_angle"
	ParamThunderPercentage = "thunder_percentage"
	ParamBurningTrees      = "burning_trees"
	ParamBurningGrasses    = "burning_grasses"
)

// Sweep runs the simulation once per value of one parameter, Repeats
// times each, and records how much of the forest burned.
type Sweep struct {
	Name      string            `yaml:"name"`
	Parameter string            `yaml:"parameter"`
	Min       float64           `yaml:"min"`
	Max       float64           `yaml:"max"`
	Step      float64           `yaml:"step"`
	Repeats   int               `yaml:"repeats"`
	Timeout   time.Duration     `yaml:"timeout"`
	Base      experiment.Params `yaml:"base"`
}

func DefaultSweep() *Sweep {
	return &Sweep{
		Parameter: ParamWindStrength,
		Min:       0,
		Max:       50,
		Step:      1,
		Repeats:   5,
		Timeout:   5 * time.Minute,
		Base:      experiment.DefaultParams(),
	}
}

func LoadSweep(path string) (*Sweep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	sweep := DefaultSweep()
	if err := yaml.Unmarshal(data, sweep); err != nil {
		return nil, err
	}
	if err := sweep.Validate(); err != nil {
		return nil, err
	}
	return sweep, nil
}

func (s *Sweep) Validate() error {
	if err := s.Base.Validate(); err != nil {
		return fmt.Errorf("%w: base: %v", ErrSweep, err)
	}
	if _, err := s.Apply(s.Base, s.Min); err != nil {
		return err
	}
	if s.Step <= 0 {
		return fmt.Errorf("%w: step must be positive", ErrSweep)
	}
	if s.Max < s.Min {
		return fmt.Errorf("%w: max %.2f below min %.2f", ErrSweep, s.Max, s.Min)
	}
	if s.Repeats < 1 {
		return fmt.Errorf("%w: repeats must be at least 1", ErrSweep)
	}
	return nil
}

// Values lists the swept values from Min to Max inclusive.
func (s *Sweep) Values() []float64 {
	if s.Step <= 0 || s.Max < s.Min {
		return nil
	}
	n := int(math.Floor((s.Max-s.Min)/s.Step+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = s.Min + float64(i)*s.Step
	}
	return out
}

// Apply returns p with the swept parameter set to v.
func (s *Sweep) Apply(p experiment.Params, v float64) (experiment.Params, error) {
	switch s.Parameter {
	case ParamWindStrength:
		p.WindStrength = v
	case ParamWindAngle:
		p.WindAngle = v
	case ParamThunderPercentage:
		p.ThunderPercentage = v
	case ParamBurningTrees:
		p.BurningTrees = int(math.Round(v))
	case ParamBurningGrasses:
		p.BurningGrasses = int(math.Round(v))
	default:
		return p, fmt.Errorf("%w: unknown parameter %q", ErrSweep, s.Parameter)
	}
	return p, nil
}

// Trial is one finished run of a sweep.
type Trial struct {
	Value   float64
	Repeat  int
	Summary metrics.Summary
	// TimedOut is set when the run was cut off before the fire went out.
	TimedOut bool
}

// SweepResult averages the trials of one value.
type SweepResult struct {
	Value            float64 `json:"value"`
	Runs             int     `json:"runs"`
	MaxBurnedPercent float64 `json:"max_burned_percent"`
	BurnedPercent    float64 `json:"burned_percent"`
	PeakFront        float64 `json:"peak_fire_front"`
	Frames           float64 `json:"frames"`
}

// Runner drives sweep trials through a session.
type Runner struct {
	Session *session.Session
	// PollInterval is how often a trial checks the stream.
	PollInterval time.Duration
	Logger       *slog.Logger
	// OnTrial, when set, is called after every trial.
	OnTrial func(Trial)
}

// RunSweep executes every trial of s in order. Runs share the stream and
// control files, so they cannot overlap.
func (r *Runner) RunSweep(ctx context.Context, s *Sweep) ([]SweepResult, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	defer r.Session.Close()

	values := s.Values()
	results := make([]SweepResult, 0, len(values))
	for i, v := range values {
		params, err := s.Apply(s.Base, v)
		if err != nil {
			return results, err
		}

		res := SweepResult{Value: v}
		for rep := 0; rep < s.Repeats; rep++ {
			trial, err := r.runTrial(ctx, params, s.Timeout)
			if err != nil {
				return results, fmt.Errorf("%s=%v repeat %d: %w", s.Parameter, v, rep+1, err)
			}
			trial.Value = v
			trial.Repeat = rep + 1
			if r.OnTrial != nil {
				r.OnTrial(trial)
			}

			res.Runs++
			res.MaxBurnedPercent += trial.Summary.MaxBurnedPercent
			res.BurnedPercent += trial.Summary.BurnedPercent
			res.PeakFront += float64(trial.Summary.PeakFront)
			res.Frames += float64(trial.Summary.Frames)
		}

		n := float64(res.Runs)
		res.MaxBurnedPercent /= n
		res.BurnedPercent /= n
		res.PeakFront /= n
		res.Frames /= n
		results = append(results, res)

		logger.Info("automation: sweep value done", "step", i+1, "of", len(values),
			"parameter", s.Parameter, "value", v, "max_burned_percent", res.MaxBurnedPercent)
	}
	return results, nil
}

// runTrial starts a run and follows it until a frame has no burning cells,
// the stream ends or the timeout passes. The run is stopped either way.
func (r *Runner) runTrial(ctx context.Context, p experiment.Params, timeout time.Duration) (Trial, error) {
	s := r.Session
	if err := s.StartRun(ctx, p); err != nil {
		return Trial{}, err
	}
	defer s.Close()

	interval := r.PollInterval
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return Trial{}, ctx.Err()
		case <-deadline:
			s.Tick(0)
			return Trial{Summary: s.Summary(), TimedOut: true}, nil
		case <-ticker.C:
		}

		s.Tick(0)
		if s.Len() > 0 && metrics.Burning(s.Stats()) == 0 {
			return Trial{Summary: s.Summary()}, nil
		}
		if s.Ended() {
			if err := s.Err(); err != nil {
				return Trial{}, err
			}
			return Trial{Summary: s.Summary()}, nil
		}
	}
}

// WriteCSV writes one row per swept value.
func WriteCSV(w io.Writer, parameter string, results []SweepResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{parameter, "runs", "max_burned_percent", "burned_percent", "peak_fire_front", "frames"}); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			strconv.FormatFloat(r.Value, 'f', -1, 64),
			strconv.Itoa(r.Runs),
			strconv.FormatFloat(r.MaxBurnedPercent, 'f', 2, 64),
			strconv.FormatFloat(r.BurnedPercent, 'f', 2, 64),
			strconv.FormatFloat(r.PeakFront, 'f', 2, 64),
			strconv.FormatFloat(r.Frames, 'f', 1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Package runner drives the external transient simulator across many input
// decks concurrently. Each job runs in its own uniquely named working
// directory with a private copy of its input; completion is detected by
// polling for the output artifact rather than trusting the process exit
// status. Failed inputs are quarantined, successful artifacts are relocated
// to a shared output directory, and working directories are always cleaned up.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-atp-pipeline/internal/model"
	"go-atp-pipeline/pkg/utils"
)

var (
	// ErrTimeout reports a job whose external process exceeded the
	// configured process timeout. Treated the same as no output produced.
	ErrTimeout = errors.New("runner: process timeout")

	// ErrOutputMissing reports a job whose output artifact never appeared
	// or never stabilized within the appearance timeout.
	ErrOutputMissing = errors.New("runner: no output artifact produced")
)

// Launcher starts the external simulator for one job. The process must be
// executed with workDir as its working directory and the job's local input
// copy as its sole argument.
type Launcher interface {
	Launch(ctx context.Context, workDir, inputName string) error
}

// ExecLauncher launches the real simulator executable via os/exec.
type ExecLauncher struct {
	Executable string
}

func (l ExecLauncher) Launch(ctx context.Context, workDir, inputName string) error {
	cmd := exec.CommandContext(ctx, l.Executable, inputName)
	cmd.Dir = workDir
	return cmd.Run()
}

// Config holds the operator-configured runner tunables.
type Config struct {
	OutputSuffix  string // artifact extension, default ".pl4"
	ScratchDir    string // per-job workdirs are created here
	OutputDir     string // successful artifacts are moved here
	QuarantineDir string // failed inputs are copied here

	Limit       int    // max in-flight external processes
	ProcessName string // engine process name for the admission probe, "" disables

	AppearTimeout  time.Duration // how long to wait for the artifact to appear
	StableInterval time.Duration // delay between artifact size checks
	StableSamples  int           // max size checks before giving up
	ProcessTimeout time.Duration // per-process limit, 0 = unbounded
}

func (c *Config) applyDefaults() {
	if c.OutputSuffix == "" {
		c.OutputSuffix = ".pl4"
	}
	if c.ScratchDir == "" {
		c.ScratchDir = "tmp-runs"
	}
	if c.QuarantineDir == "" {
		c.QuarantineDir = "quarantine"
	}
	if c.Limit <= 0 {
		c.Limit = 2
	}
	if c.AppearTimeout <= 0 {
		c.AppearTimeout = 30 * time.Second
	}
	if c.StableInterval <= 0 {
		c.StableInterval = 500 * time.Millisecond
	}
	if c.StableSamples <= 0 {
		c.StableSamples = 5
	}
}

// Report is the outcome of one batch of simulation jobs.
type Report struct {
	Succeeded   []model.SimulationJob `json:"succeeded"`
	Quarantined []model.SimulationJob `json:"quarantined"`
}

// Runner manages concurrent execution of the external simulator.
type Runner struct {
	cfg      Config
	launcher Launcher
	probe    ProcessProbe
}

// New creates a Runner. probe may be nil to disable external admission
// throttling; the concurrency limit still bounds in-flight jobs.
func New(cfg Config, launcher Launcher, probe ProcessProbe) *Runner {
	cfg.applyDefaults()
	return &Runner{cfg: cfg, launcher: launcher, probe: probe}
}

// RunAll executes one job per input deck under the configured concurrency
// limit and returns the batch report. Jobs are independent and may complete
// in any order; per-job failures never fail the batch.
func (r *Runner) RunAll(ctx context.Context, inputs []string) Report {
	for _, dir := range []string{r.cfg.ScratchDir, r.cfg.OutputDir, r.cfg.QuarantineDir} {
		if dir != "" {
			os.MkdirAll(dir, 0755)
		}
	}

	fmt.Printf("🚀 Runner: launching %d simulation jobs (limit %d)\n", len(inputs), r.cfg.Limit)

	sem := make(chan struct{}, r.cfg.Limit)
	results := make(chan model.SimulationJob, len(inputs))
	var wg sync.WaitGroup

	for _, input := range inputs {
		// Throttle submission while the engine's own process pool is full.
		// The probe is read-only and eventually consistent; it only slows
		// submission, the semaphore enforces the hard limit.
		r.waitForEngineSlot(ctx)

		select {
		case <-ctx.Done():
			results <- model.SimulationJob{
				Input: input, State: model.JobFailed,
				Error: fmt.Sprintf("%v: batch cancelled before launch", ErrOutputMissing),
			}
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(input string) {
			defer wg.Done()
			defer func() { <-sem }()
			results <- r.runJob(ctx, input)
		}(input)
	}

	wg.Wait()
	close(results)

	var report Report
	for job := range results {
		if job.State == model.JobSucceeded {
			report.Succeeded = append(report.Succeeded, job)
		} else {
			report.Quarantined = append(report.Quarantined, job)
		}
	}

	// Final sweep: remove leftover workdirs whose per-job cleanup failed.
	r.sweepScratch()

	fmt.Printf("🏁 Runner Summary: %d succeeded, %d quarantined\n",
		len(report.Succeeded), len(report.Quarantined))
	return report
}

func (r *Runner) waitForEngineSlot(ctx context.Context) {
	if r.probe == nil || r.cfg.ProcessName == "" {
		return
	}
	for r.probe.Count(r.cfg.ProcessName) >= r.cfg.Limit {
		select {
		case <-ctx.Done():
			return
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// runJob owns the full lifecycle of one simulation job:
// Pending → Running → AwaitingOutput → {Succeeded | Failed}.
func (r *Runner) runJob(ctx context.Context, input string) model.SimulationJob {
	job := model.SimulationJob{
		Input:   input,
		State:   model.JobPending,
		Started: time.Now(),
	}
	stem := inputStem(input)

	workDir := filepath.Join(r.cfg.ScratchDir, fmt.Sprintf("%s__%s", stem, uuid.NewString()[:8]))
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return r.fail(job, fmt.Errorf("create workdir: %w", err))
	}
	job.WorkDir = workDir
	defer utils.RemoveDirResilient(workDir)

	localInput := filepath.Join(workDir, filepath.Base(input))
	if err := utils.CopyFile(input, localInput); err != nil {
		return r.fail(job, fmt.Errorf("copy input: %w", err))
	}

	job.State = model.JobRunning
	launchCtx := ctx
	if r.cfg.ProcessTimeout > 0 {
		var cancel context.CancelFunc
		launchCtx, cancel = context.WithTimeout(ctx, r.cfg.ProcessTimeout)
		defer cancel()
	}
	err := r.launcher.Launch(launchCtx, workDir, filepath.Base(input))
	if launchCtx.Err() == context.DeadlineExceeded {
		return r.fail(job, fmt.Errorf("%w after %v", ErrTimeout, r.cfg.ProcessTimeout))
	}
	if err != nil {
		// Exit status is not trusted either way; completion is decided by
		// the artifact poll below.
		fmt.Printf("⚠️ Runner: %s: simulator exited with error: %v\n", filepath.Base(input), err)
	}

	job.State = model.JobAwaitingOutput
	artifact, err := r.awaitArtifact(ctx, workDir, stem)
	if err != nil {
		return r.fail(job, err)
	}

	dest := filepath.Join(r.cfg.OutputDir, filepath.Base(artifact))
	if err := utils.MoveReplace(artifact, dest); err != nil {
		return r.fail(job, fmt.Errorf("relocate artifact: %w", err))
	}

	job.State = model.JobSucceeded
	job.Artifact = dest
	job.Finished = time.Now()
	fmt.Printf("✅ Runner: %s → %s\n", filepath.Base(input), dest)
	return job
}

// fail marks the job terminal, preserves a copy of the original input in the
// quarantine directory for manual inspection, and reports the failure kind.
func (r *Runner) fail(job model.SimulationJob, cause error) model.SimulationJob {
	job.State = model.JobFailed
	job.Error = cause.Error()
	job.Finished = time.Now()

	dest := filepath.Join(r.cfg.QuarantineDir, filepath.Base(job.Input))
	if err := utils.CopyFile(job.Input, dest); err != nil {
		fmt.Printf("⚠️ Runner: failed to quarantine %s: %v\n", filepath.Base(job.Input), err)
	}
	fmt.Printf("❌ Runner: %s failed: %v (copy in %s)\n",
		filepath.Base(job.Input), cause, r.cfg.QuarantineDir)
	return job
}

// awaitArtifact waits for the job's output file to appear in its workdir,
// then polls its size at a fixed interval until it is non-zero and unchanged
// across two consecutive reads. Guards against reading a partially flushed
// file.
func (r *Runner) awaitArtifact(ctx context.Context, workDir, stem string) (string, error) {
	deadline := time.Now().Add(r.cfg.AppearTimeout)
	var artifact string
	for {
		artifact = r.findArtifact(workDir, stem)
		if artifact != "" {
			break
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("%w: nothing matching %q appeared within %v",
				ErrOutputMissing, stem+r.cfg.OutputSuffix, r.cfg.AppearTimeout)
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: batch cancelled", ErrOutputMissing)
		case <-time.After(r.cfg.StableInterval):
		}
	}

	var lastSize int64 = -1
	for i := 0; i < r.cfg.StableSamples; i++ {
		info, err := os.Stat(artifact)
		if err == nil {
			size := info.Size()
			if size > 0 && size == lastSize {
				return artifact, nil
			}
			lastSize = size
		} else {
			lastSize = -1
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: batch cancelled", ErrOutputMissing)
		case <-time.After(r.cfg.StableInterval):
		}
	}
	return "", fmt.Errorf("%w: artifact size never stabilized over %d samples",
		ErrOutputMissing, r.cfg.StableSamples)
}

// findArtifact looks for the expected output by conventional name, matched
// case-insensitively against the input's stem. Each job polls only its own
// private workdir, so stem collisions across jobs cannot merge results.
func (r *Runner) findArtifact(workDir, stem string) string {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return ""
	}
	expected := stem + r.cfg.OutputSuffix
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(e.Name(), expected) {
			return filepath.Join(workDir, e.Name())
		}
	}
	// Fallback: same stem, same suffix, different casing or decoration.
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.EqualFold(filepath.Ext(name), r.cfg.OutputSuffix) &&
			strings.EqualFold(inputStem(name), stem) {
			return filepath.Join(workDir, name)
		}
	}
	return ""
}

func (r *Runner) sweepScratch() {
	entries, err := os.ReadDir(r.cfg.ScratchDir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			utils.RemoveDirResilient(filepath.Join(r.cfg.ScratchDir, e.Name()))
		}
	}
}

func inputStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

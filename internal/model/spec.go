package model

// BatchSpec defines one simulation sweep batch: which input decks to run,
// how to drive the simulator, and how to extract the resulting waveforms.
// It is the payload of POST /api/v1/batches and of the YAML spec file used
// by the CLI.
type BatchSpec struct {
	Inputs   []string `json:"inputs,omitempty" yaml:"inputs,omitempty"`     // explicit input deck paths
	InputDir string   `json:"inputDir,omitempty" yaml:"inputDir,omitempty"` // or a directory scanned for *.atp

	Runner      RunnerSpec      `json:"runner" yaml:"runner"`
	Crop        *CropSpec       `json:"crop,omitempty" yaml:"crop,omitempty"`
	Export      ExportSpec      `json:"export" yaml:"export"`
	Concurrency ConcurrencySpec `json:"concurrency" yaml:"concurrency"`
	Logging     bool            `json:"logging" yaml:"logging"` // enable detailed logs
}

// RunnerSpec configures the external simulator runs.
type RunnerSpec struct {
	Executable    string `json:"executable" yaml:"executable"`                           // e.g. ./runATP
	OutputSuffix  string `json:"outputSuffix,omitempty" yaml:"outputSuffix,omitempty"`   // artifact extension, default ".pl4"
	ProcessName   string `json:"processName,omitempty" yaml:"processName,omitempty"`     // engine process name for the admission probe
	ScratchDir    string `json:"scratchDir,omitempty" yaml:"scratchDir,omitempty"`       // per-job workdirs live here
	OutputDir     string `json:"outputDir" yaml:"outputDir"`                             // successful artifacts are moved here
	QuarantineDir string `json:"quarantineDir,omitempty" yaml:"quarantineDir,omitempty"` // failed inputs are copied here

	AppearTimeout  string `json:"appearTimeout,omitempty" yaml:"appearTimeout,omitempty"`   // e.g. "30s"
	StableInterval string `json:"stableInterval,omitempty" yaml:"stableInterval,omitempty"` // e.g. "500ms"
	StableSamples  int    `json:"stableSamples,omitempty" yaml:"stableSamples,omitempty"`
	ProcessTimeout string `json:"processTimeout,omitempty" yaml:"processTimeout,omitempty"` // empty = unbounded
}

// CropSpec removes a leading or trailing slice of samples before export.
// The number of samples removed is floor(samplesPerCycle * lineFrequencyHz * secondsToRemove).
type CropSpec struct {
	SamplesPerCycle int     `json:"samplesPerCycle" yaml:"samplesPerCycle"`
	LineFrequencyHz float64 `json:"lineFrequencyHz" yaml:"lineFrequencyHz"`
	SecondsToRemove float64 `json:"secondsToRemove" yaml:"secondsToRemove"`
	Edge            string  `json:"edge" yaml:"edge"` // "start" or "end"
}

// ExportSpec defines how decoded datasets are written out.
type ExportSpec struct {
	Mode     string   `json:"mode" yaml:"mode"`                             // "full" or "selected"
	Channels []string `json:"channels,omitempty" yaml:"channels,omitempty"` // selected-mode channel labels
	Format   string   `json:"format,omitempty" yaml:"format,omitempty"`     // "parquet" (default), "csv", "json"
	Dir      string   `json:"dir" yaml:"dir"`                               // one table per input stem is written here
}

// Workers defines number of workers per stage.
type Workers struct {
	Extract int `json:"extract" yaml:"extract"`
	Export  int `json:"export" yaml:"export"`
}

// ConcurrencySpec defines concurrency and batch-level options.
type ConcurrencySpec struct {
	SimulatorLimit    int     `json:"simulatorLimit" yaml:"simulatorLimit"` // max in-flight external processes
	Workers           Workers `json:"workers" yaml:"workers"`
	ChannelBufferSize int     `json:"channelBufferSize" yaml:"channelBufferSize"`
	BatchTimeout      string  `json:"batchTimeout" yaml:"batchTimeout"` // e.g. "30m"
}

package config

// OutputConfig selects which artifacts a run leaves behind. Empty paths
// disable the corresponding output.
type OutputConfig struct {
	// CSVPath is the file the sample series is written to.
	CSVPath string `json:"csv_path"`
	// PlotsDir is the directory the PNG charts are rendered into.
	PlotsDir string `json:"plots_dir"`
}

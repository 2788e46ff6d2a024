// Package config implements the environment-variable configuration
// surface (FIG_CACHE_URL, FIG_FACTORY_FIGMENTATORS,
// FIG_SCHEDULER_<TYPE>_*, DEBUG) and the application-wide logger every
// component is handed explicitly rather than reaching for a
// package-level global.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	jsoniter "github.com/json-iterator/go"

	"github.com/storium/figmentator/internal/figmodel"
	"github.com/storium/figmentator/internal/scheduler"
)

var api = jsoniter.ConfigCompatibleWithStandardLibrary

// NewLogger builds the application-wide hclog.Logger. DEBUG lowers the
// level to Debug and switches to a human-readable format;
// otherwise the gateway logs structured JSON at Info, suitable for a
// production log pipeline.
func NewLogger(debug bool) hclog.Logger {
	opts := &hclog.LoggerOptions{
		Name:   "figmentator",
		Output: os.Stderr,
		Level:  hclog.Info,
	}
	if debug {
		opts.Level = hclog.Debug
	} else {
		opts.JSONFormat = true
	}
	return hclog.New(opts)
}

// EnvString returns the environment variable key, or def if unset.
func EnvString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

// EnvInt returns the environment variable key parsed as an int, or def
// if unset or unparsable.
func EnvInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// EnvFloat returns the environment variable key parsed as a float64, or
// def if unset or unparsable.
func EnvFloat(key string, def float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// EnvBool returns the environment variable key parsed as a bool, or def
// if unset or unparsable.
func EnvBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// SchedulerSettingsFor loads FIG_SCHEDULER_<TYPE>_WAIT_TIME,
// _MAX_BATCH_SIZE and _NUM_WORKERS for t, falling back to
// scheduler.DefaultSettings for anything unset.
func SchedulerSettingsFor(t figmodel.SuggestionType) scheduler.Settings {
	def := scheduler.DefaultSettings()
	prefix := "FIG_SCHEDULER_" + strings.ToUpper(string(t)) + "_"

	waitSeconds := EnvFloat(prefix+"WAIT_TIME", def.WaitTime.Seconds())
	return scheduler.Settings{
		WaitTime:     time.Duration(waitSeconds * float64(time.Second)),
		MaxBatchSize: EnvInt(prefix+"MAX_BATCH_SIZE", def.MaxBatchSize),
		NumWorkers:   EnvInt(prefix+"NUM_WORKERS", def.NumWorkers),
	}
}

// FigmentatorConfig is one entry of FIG_FACTORY_FIGMENTATORS: which
// suggestion type's model to build, how to build it, and the properties
// passed to its Startup.
type FigmentatorConfig struct {
	// Class selects how the model is launched. "process" runs it as an
	// out-of-process worker pool (internal/pool.ProcessPool); any other
	// value (including empty) runs it in-process via the static registry
	// (internal/pool.InProcessPool). There is no dynamic class loading:
	// Class only picks between the two pool.WorkerPool implementations
	// this build ships.
	Class string `json:"cls"`
	// Requires names the subprocess binary and arguments to launch when
	// Class == "process". Requires[0] is the command; the rest are
	// arguments appended after "-suggestion-type <type>".
	Requires []string `json:"requires"`
	// Properties is passed verbatim to the model's Startup.
	Properties map[string]interface{} `json:"properties"`
}

// LoadFactoryConfig parses FIG_FACTORY_FIGMENTATORS, a JSON object
// mapping suggestion type name to FigmentatorConfig. An unset or empty
// variable yields an empty, valid map (no configured figmentators).
func LoadFactoryConfig() (map[figmodel.SuggestionType]FigmentatorConfig, error) {
	raw := os.Getenv("FIG_FACTORY_FIGMENTATORS")
	out := map[figmodel.SuggestionType]FigmentatorConfig{}
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}

	var byName map[string]FigmentatorConfig
	if err := api.UnmarshalFromString(raw, &byName); err != nil {
		return nil, err
	}

	for name, cfg := range byName {
		out[figmodel.SuggestionType(name)] = cfg
	}
	return out, nil
}

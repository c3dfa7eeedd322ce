package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that call external APIs.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "compound-engine/0.1"). Per prd001-resolution R5.2, prd002-bioactivity R5.1.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CompoundConfig holds settings for the chemical registry stage.
// Per prd001-resolution R5.1-R5.3.
type CompoundConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is an optional NCBI API key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// ContactEmail is included in requests so the registry operators can
	// reach out about traffic, as their usage policy asks.
	ContactEmail string `json:"contact_email,omitempty" yaml:"contact_email,omitempty"`
}

// BioassayConfig holds settings for the bioactivity stage.
// Per prd002-bioactivity R5.1-R5.4.
type BioassayConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxActivities caps how many measurements one profile keeps (default 15).
	MaxActivities int `json:"max_activities" yaml:"max_activities"`

	// KeepUnnamedTargets controls what happens when a target name lookup
	// fails: false drops the measurement, true keeps it with target "Unknown".
	KeepUnnamedTargets bool `json:"keep_unnamed_targets" yaml:"keep_unnamed_targets"`

	// MaxTargets is how many distinct targets get protein annotations (default 3).
	MaxTargets int `json:"max_targets" yaml:"max_targets"`
}

// ProfileConfig holds settings for the profile pipeline: caching, retries,
// and the connectivity probe that gates every run.
// Per prd005-pipeline R2.1-R2.6.
type ProfileConfig struct {
	// RetryAttempts is the total number of pipeline attempts per fetch (default 3).
	RetryAttempts int `json:"retry_attempts" yaml:"retry_attempts"`

	// CacheTTL is how long a completed profile stays cached (default 1h).
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`

	// CacheEntries is the maximum number of cached profiles (default 20).
	CacheEntries int `json:"cache_entries" yaml:"cache_entries"`

	// ProbeAddr is the host:port dialed by the connectivity check
	// (default "www.google.com:80").
	ProbeAddr string `json:"probe_addr" yaml:"probe_addr"`

	// ProbeTimeout is the dial timeout for the connectivity check (default 5s).
	ProbeTimeout time.Duration `json:"probe_timeout" yaml:"probe_timeout"`
}

// SummaryConfig holds settings for the natural-language summary.
// Per prd004-presentation R3.1-R3.4.
type SummaryConfig struct {
	// Enabled controls whether a prose summary is rendered at all.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// MaxSentences caps how many activity sentences the summary includes (default 5).
	MaxSentences int `json:"max_sentences" yaml:"max_sentences"`
}

// NLPConfig holds settings for the named-entity decoration stage.
// Per prd006-web R4.1-R4.3.
type NLPConfig struct {
	// Enabled controls whether entity recognition runs over summaries.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// ModelDir is the directory holding the downloaded ONNX model.
	ModelDir string `json:"model_dir" yaml:"model_dir"`

	// ModelName is the Hugging Face model identifier to download on demand.
	ModelName string `json:"model_name" yaml:"model_name"`
}

// WebConfig holds settings for the embedded web UI.
// Per prd006-web R1.1-R1.3.
type WebConfig struct {
	// Addr is the listen address (default ":8700").
	Addr string `json:"addr" yaml:"addr"`

	// SessionTTL is how long an idle browser session is remembered (default 1h).
	SessionTTL time.Duration `json:"session_ttl" yaml:"session_ttl"`
}

// EngineConfig groups all stage configurations for the pipeline.
type EngineConfig struct {
	Compound CompoundConfig `json:"compound" yaml:"compound"`
	Bioassay BioassayConfig `json:"bioassay" yaml:"bioassay"`
	Profile  ProfileConfig  `json:"profile" yaml:"profile"`
	Summary  SummaryConfig  `json:"summary" yaml:"summary"`
	NLP      NLPConfig      `json:"nlp" yaml:"nlp"`
	Web      WebConfig      `json:"web" yaml:"web"`
}

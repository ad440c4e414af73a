// Package config loads process-wide configuration from the environment,
// with an optional YAML overlay file for values that are awkward to pass
// as env vars (tuning knobs for the selection engine, mostly).
//
// Grounded on pkg/connector/memory_config.go's defaults-then-override
// merge style (pickString/pickInt/pickBool), adapted from a per-agent
// config override model to a flat env+yaml one.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Env controls whether we're willing to run without a password pepper and
// other development-only relaxations (see design note "Pepper lifetime").
type Env string

const (
	EnvDevelopment Env = "development"
	EnvProduction  Env = "production"
)

// StoreConfig configures internal/store's connection pool.
type StoreConfig struct {
	Type               string // DATABASE_TYPE, e.g. "postgres"
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxOpenConns       int
	MinIdleConns       int
	ConnMaxIdleTime    time.Duration
	StatementTimeout   time.Duration
	IdleInTxTimeout    time.Duration
	KeepaliveIdleSec   int
	KeepaliveIntvlSec  int
	KeepaliveCount     int
	PoolAcquireTimeout time.Duration
}

// GeneratorConfig configures internal/generator's external LM client.
type GeneratorConfig struct {
	BaseURL          string
	APIKey           string
	Model            string
	DefaultMaxTokens int
}

// BlobStoreConfig configures internal/blobstore.
type BlobStoreConfig struct {
	BaseURL   string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// WordConfig configures internal/word's derived-URL construction (spec
// §4.5: "construct a word record with derived pronunciation and stroke
// URLs"). Both are fmt.Sprintf templates taking the word's codepoint as
// a single %d verb.
type WordConfig struct {
	PronunciationURLTemplate   string
	StrokeAnimationURLTemplate string
	DictionaryBaseURL          string
	DictionaryScrapeTimeout    time.Duration
}

// QGenConfig tunes the three AI-backed batchqueue.Processor instances
// internal/qgen owns, one per kind (spec §4.2's batch_size/max_wait
// knobs).
type QGenConfig struct {
	BatchSize int
	MaxWait   time.Duration
}

// SelectionConfig tunes internal/selection's scoring and sampling.
type SelectionConfig struct {
	MaxWrongWords          int
	PriorityWeightTime     float64 // w_t
	PriorityWeightCount    float64 // w_c
	JitterMean             float64
	JitterStdDev           float64
	DecayHours             float64 // H
	NeverOutdatedCap       int     // C
	SigmoidSteepness       float64 // k
	SigmoidThreshold       float64 // θ
	AccuracyFactorOverride float64 // resolved Open Question: config-switchable, default 1.0
	LateralJoinLimit       int     // K=50
}

// Config is the fully-resolved, immutable process configuration.
type Config struct {
	Env            Env
	PasswordPepper string
	Store          StoreConfig
	Generator      GeneratorConfig
	BlobStore      BlobStoreConfig
	Word           WordConfig
	QGen           QGenConfig
	Selection      SelectionConfig
}

// overlay mirrors the subset of Config that may be supplied via an
// optional YAML file; all fields are pointers so "unset" is distinguishable
// from "zero value" during the merge, matching the teacher's
// override-vs-default pointer convention in memory_config.go.
type overlay struct {
	Selection *struct {
		MaxWrongWords          *int     `yaml:"max_wrong_words"`
		PriorityWeightTime     *float64 `yaml:"priority_weight_time"`
		PriorityWeightCount    *float64 `yaml:"priority_weight_count"`
		JitterMean             *float64 `yaml:"jitter_mean"`
		JitterStdDev           *float64 `yaml:"jitter_stddev"`
		DecayHours             *float64 `yaml:"decay_hours"`
		NeverOutdatedCap       *int     `yaml:"never_outdated_cap"`
		SigmoidSteepness       *float64 `yaml:"sigmoid_steepness"`
		SigmoidThreshold       *float64 `yaml:"sigmoid_threshold"`
		AccuracyFactorOverride *float64 `yaml:"accuracy_factor_override"`
		LateralJoinLimit       *int     `yaml:"lateral_join_limit"`
	} `yaml:"selection"`
}

// Load reads the environment (and, if ENGINE_CONFIG_FILE is set, a YAML
// overlay) into a Config. It refuses to produce a Config in production
// mode without a PASSWORD_PEPPER, per design note "Pepper lifetime".
func Load() (*Config, error) {
	env := Env(pickString(os.Getenv("ENGINE_ENV"), "", string(EnvProduction)))

	pepper := os.Getenv("PASSWORD_PEPPER")
	if pepper == "" && env != EnvDevelopment {
		return nil, fmt.Errorf("config: PASSWORD_PEPPER is required outside development mode")
	}

	cfg := &Config{
		Env:            env,
		PasswordPepper: pepper,
		Store: StoreConfig{
			Type:               pickString(os.Getenv("DATABASE_TYPE"), "", "postgres"),
			Host:               pickString(os.Getenv("DATABASE_HOST"), "", "localhost"),
			Port:               pickIntFromEnv("DATABASE_PORT", 5432),
			User:               os.Getenv("DATABASE_USER"),
			Password:           os.Getenv("DATABASE_PASSWORD"),
			Database:           pickString(os.Getenv("DATABASE_NAME"), "", "hanzidojo"),
			SSLMode:            pickString(os.Getenv("DATABASE_SSLMODE"), "", "disable"),
			MaxOpenConns:       6,
			MinIdleConns:       1,
			ConnMaxIdleTime:    5 * time.Minute,
			StatementTimeout:   60 * time.Second,
			IdleInTxTimeout:    30 * time.Second,
			KeepaliveIdleSec:   300,
			KeepaliveIntvlSec:  30,
			KeepaliveCount:     3,
			PoolAcquireTimeout: 10 * time.Second,
		},
		Generator: GeneratorConfig{
			BaseURL:          os.Getenv("GENERATOR_BASE_URL"),
			APIKey:           os.Getenv("GENERATOR_API_KEY"),
			Model:            pickString(os.Getenv("GENERATOR_MODEL"), "", "gpt-4o-mini"),
			DefaultMaxTokens: pickIntFromEnv("GENERATOR_DEFAULT_MAX_TOKENS", 1024),
		},
		BlobStore: BlobStoreConfig{
			BaseURL:   os.Getenv("BLOB_STORE_BASE_URL"),
			Bucket:    pickString(os.Getenv("BLOB_STORE_BUCKET"), "", "hanzidojo-assets"),
			Region:    pickString(os.Getenv("BLOB_STORE_REGION"), "", "us-east-1"),
			AccessKey: os.Getenv("BLOB_STORE_ACCESS_KEY"),
			SecretKey: os.Getenv("BLOB_STORE_SECRET_KEY"),
		},
		Word: WordConfig{
			PronunciationURLTemplate:   pickString(os.Getenv("WORD_PRONUNCIATION_URL_TEMPLATE"), "", "https://assets.hanzidojo.example/pronunciation/%d.mp3"),
			StrokeAnimationURLTemplate: pickString(os.Getenv("WORD_STROKE_URL_TEMPLATE"), "", "https://assets.hanzidojo.example/strokes/%d.svg"),
			DictionaryBaseURL:          pickString(os.Getenv("WORD_DICTIONARY_BASE_URL"), "", "https://dictionary.hanzidojo.example/entry/%s"),
			DictionaryScrapeTimeout:    time.Duration(pickIntFromEnv("WORD_DICTIONARY_SCRAPE_TIMEOUT_MS", 5000)) * time.Millisecond,
		},
		QGen: QGenConfig{
			BatchSize: pickIntFromEnv("QGEN_BATCH_SIZE", 5),
			MaxWait:   time.Duration(pickIntFromEnv("QGEN_MAX_WAIT_MS", 1000)) * time.Millisecond,
		},
		Selection: SelectionConfig{
			MaxWrongWords:          pickIntFromEnv("SELECTION_MAX_WRONG_WORDS", 20),
			PriorityWeightTime:     pickFloatFromEnv("SELECTION_PRIORITY_WEIGHT_TIME", 1.0),
			PriorityWeightCount:    pickFloatFromEnv("SELECTION_PRIORITY_WEIGHT_COUNT", 5.0),
			JitterMean:             pickFloatFromEnv("SELECTION_JITTER_MEAN", 0.0),
			JitterStdDev:           pickFloatFromEnv("SELECTION_JITTER_STDDEV", 3.0),
			DecayHours:             pickFloatFromEnv("SELECTION_DECAY_HOURS", 168.0),
			NeverOutdatedCap:       pickIntFromEnv("SELECTION_NEVER_OUTDATED_CAP", 3),
			SigmoidSteepness:       pickFloatFromEnv("SELECTION_SIGMOID_STEEPNESS", 10.0),
			SigmoidThreshold:       pickFloatFromEnv("SELECTION_SIGMOID_THRESHOLD", 0.5),
			AccuracyFactorOverride: pickFloatFromEnv("SELECTION_ACCURACY_FACTOR_OVERRIDE", 1.0),
			LateralJoinLimit:       50,
		},
	}

	if path := os.Getenv("ENGINE_CONFIG_FILE"); path != "" {
		if err := applyOverlay(cfg, path); err != nil {
			return nil, fmt.Errorf("config: overlay %s: %w", path, err)
		}
	}

	return cfg, nil
}

func applyOverlay(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var ov overlay
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return err
	}
	if ov.Selection == nil {
		return nil
	}
	s := ov.Selection
	cfg.Selection.MaxWrongWords = pickIntPtr(s.MaxWrongWords, cfg.Selection.MaxWrongWords)
	cfg.Selection.PriorityWeightTime = pickFloatPtr(s.PriorityWeightTime, cfg.Selection.PriorityWeightTime)
	cfg.Selection.PriorityWeightCount = pickFloatPtr(s.PriorityWeightCount, cfg.Selection.PriorityWeightCount)
	cfg.Selection.JitterMean = pickFloatPtr(s.JitterMean, cfg.Selection.JitterMean)
	cfg.Selection.JitterStdDev = pickFloatPtr(s.JitterStdDev, cfg.Selection.JitterStdDev)
	cfg.Selection.DecayHours = pickFloatPtr(s.DecayHours, cfg.Selection.DecayHours)
	cfg.Selection.NeverOutdatedCap = pickIntPtr(s.NeverOutdatedCap, cfg.Selection.NeverOutdatedCap)
	cfg.Selection.SigmoidSteepness = pickFloatPtr(s.SigmoidSteepness, cfg.Selection.SigmoidSteepness)
	cfg.Selection.SigmoidThreshold = pickFloatPtr(s.SigmoidThreshold, cfg.Selection.SigmoidThreshold)
	cfg.Selection.AccuracyFactorOverride = pickFloatPtr(s.AccuracyFactorOverride, cfg.Selection.AccuracyFactorOverride)
	cfg.Selection.LateralJoinLimit = pickIntPtr(s.LateralJoinLimit, cfg.Selection.LateralJoinLimit)
	return nil
}

func pickString(override, fallback, defaultVal string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return defaultVal
}

func pickIntFromEnv(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}

func pickFloatFromEnv(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func pickIntPtr(override *int, defaultVal int) int {
	if override != nil {
		return *override
	}
	return defaultVal
}

func pickFloatPtr(override *float64, defaultVal float64) float64 {
	if override != nil {
		return *override
	}
	return defaultVal
}

package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Matcher   MatcherConfig   `yaml:"matcher" mapstructure:"matcher"`
	Columns   ColumnsConfig   `yaml:"columns" mapstructure:"columns"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key            string `yaml:"key" mapstructure:"key"`
	Model          string `yaml:"model" mapstructure:"model"`
	TimeoutSecs    int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MatchMaxTokens int64  `yaml:"match_max_tokens" mapstructure:"match_max_tokens"`
	ScoreMaxTokens int64  `yaml:"score_max_tokens" mapstructure:"score_max_tokens"`
}

// Timeout returns the fixed client-side request timeout.
func (c AnthropicConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// MatcherConfig configures the matching pipeline. AccuracyThreshold is the
// caller-side display cutoff for flagging low scores; ConfidenceFloor is the
// service-side cutoff interpolated into the matching prompt, below which the
// matcher is told to return no match. The two are independent knobs.
type MatcherConfig struct {
	AccuracyThreshold float64 `yaml:"accuracy_threshold" mapstructure:"accuracy_threshold"`
	ConfidenceFloor   float64 `yaml:"confidence_floor" mapstructure:"confidence_floor"`
	OverridesPath     string  `yaml:"overrides_path" mapstructure:"overrides_path"`
}

// ColumnsConfig holds default column names per questionnaire side.
type ColumnsConfig struct {
	RefQuestion   string `yaml:"ref_question" mapstructure:"ref_question"`
	RefAnswer     string `yaml:"ref_answer" mapstructure:"ref_answer"`
	UnansQuestion string `yaml:"unans_question" mapstructure:"unans_question"`
	UnansAnswer   string `yaml:"unans_answer" mapstructure:"unans_answer"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("QFILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.timeout_secs", 60)
	v.SetDefault("anthropic.match_max_tokens", 2000)
	v.SetDefault("anthropic.score_max_tokens", 16000)
	v.SetDefault("matcher.accuracy_threshold", 0.85)
	v.SetDefault("matcher.confidence_floor", 0.49)
	v.SetDefault("columns.ref_question", "Question")
	v.SetDefault("columns.ref_answer", "Answer")
	v.SetDefault("columns.unans_question", "Question")
	v.SetDefault("columns.unans_answer", "Answer")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings a run depends on are present and sane.
func (c *Config) Validate() error {
	if c.Anthropic.Key == "" {
		return eris.New("config: anthropic.key is required (set QFILL_ANTHROPIC_KEY or config.yaml)")
	}
	if c.Matcher.AccuracyThreshold < 0 || c.Matcher.AccuracyThreshold > 1 {
		return eris.Errorf("config: matcher.accuracy_threshold must be in [0,1] (got %v)", c.Matcher.AccuracyThreshold)
	}
	if c.Matcher.ConfidenceFloor < 0 || c.Matcher.ConfidenceFloor > 1 {
		return eris.Errorf("config: matcher.confidence_floor must be in [0,1] (got %v)", c.Matcher.ConfidenceFloor)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

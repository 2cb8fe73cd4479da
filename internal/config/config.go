package config

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "rostercli/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data          DataConfig          `yaml:"data" envconfig:"DATA"`
	Parsing       ParsingConfig       `yaml:"parsing" envconfig:"PARSING"`
	Reports       ReportsConfig       `yaml:"reports" envconfig:"REPORTS"`
	Export        ExportConfig        `yaml:"export" envconfig:"EXPORT"`
	Logging       LoggingConfig       `yaml:"logging" envconfig:"LOGGING"`
	Observability ObservabilityConfig `yaml:"observability" envconfig:"OBSERVABILITY"`
}

// DataConfig names the input sources. Relative file names resolve against Dir.
type DataConfig struct {
	Dir          string `yaml:"dir" envconfig:"DIR" validate:"required"`
	IdentityFile string `yaml:"identity_file" envconfig:"IDENTITY_FILE" validate:"required"`
	MarksFile    string `yaml:"marks_file" envconfig:"MARKS_FILE" validate:"required"`
	WeightsFile  string `yaml:"weights_file" envconfig:"WEIGHTS_FILE"`
}

// ParsingConfig controls how sources are read
type ParsingConfig struct {
	Delimiter       string   `yaml:"delimiter" envconfig:"DELIMITER" validate:"required"`
	Subjects        []string `yaml:"subjects" envconfig:"SUBJECTS" validate:"min=1,unique,dive,required"`
	UnknownStudents string   `yaml:"unknown_students" envconfig:"UNKNOWN_STUDENTS" validate:"oneof=create reject"`
}

// ReportsConfig controls report rendering
type ReportsConfig struct {
	// Collation is "binary" for byte order or a BCP 47 language tag.
	Collation string `yaml:"collation" envconfig:"COLLATION" validate:"required"`
}

// ExportConfig controls the export outputs. An empty Dir means Data.Dir.
type ExportConfig struct {
	Dir          string `yaml:"dir" envconfig:"DIR"`
	File         string `yaml:"file" envconfig:"FILE" validate:"required"`
	Workbook     bool   `yaml:"workbook" envconfig:"WORKBOOK"`
	WorkbookFile string `yaml:"workbook_file" envconfig:"WORKBOOK_FILE" validate:"required_if=Workbook true"`
	BOM          bool   `yaml:"bom" envconfig:"BOM"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// ObservabilityConfig contains tracing and metrics configuration
type ObservabilityConfig struct {
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=none prometheus"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"min=0,max=1"`
	// MetricsAddr enables the diagnostics listener when non-empty.
	MetricsAddr string `yaml:"metrics_addr" envconfig:"METRICS_ADDR" validate:"omitempty,hostname_port"`
}

var validate = validator.New()

// Load builds the configuration from defaults, the optional YAML file and
// the environment, in increasing order of precedence. A .env file in the
// working directory is loaded into the environment first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit YAML file path. An empty path skips the
// file layer.
func LoadFile(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("failed to load config file %s", configFile), err)
		}
	}

	// Only variables that are set override earlier layers
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	for i, s := range c.Parsing.Subjects {
		c.Parsing.Subjects[i] = strings.TrimSpace(s)
	}

	if err := validate.Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}

	if utf8.RuneCountInString(c.Parsing.Delimiter) != 1 {
		return apperrors.NewConfigError(fmt.Sprintf("delimiter must be a single character, got %q", c.Parsing.Delimiter), nil)
	}
	if c.Parsing.Delimiter == "," || c.Parsing.Delimiter == "\"" || c.Parsing.Delimiter == "\n" || c.Parsing.Delimiter == "\r" {
		return apperrors.NewConfigError(fmt.Sprintf("delimiter %q collides with marks lists or quoting", c.Parsing.Delimiter), nil)
	}

	return nil
}

// DelimiterRune returns the configured field delimiter
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Parsing.Delimiter)
	return r
}

// RejectUnknownStudents reports whether marks for unknown ids are fatal
func (c *Config) RejectUnknownStudents() bool {
	return c.Parsing.UnknownStudents == UnknownStudentsReject
}

// getConfigFilePath returns the path to the config file, or "" if none exists
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		return path
	}

	locations := []string{
		"roster.yaml",
		"configs/roster.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Dir:          DefaultDataDir,
			IdentityFile: DefaultIdentityFile,
			MarksFile:    DefaultMarksFile,
			WeightsFile:  DefaultWeightsFile,
		},
		Parsing: ParsingConfig{
			Delimiter:       DefaultDelimiter,
			Subjects:        []string{"Math", "Science", "English"},
			UnknownStudents: UnknownStudentsCreate,
		},
		Reports: ReportsConfig{
			Collation: CollationBinary,
		},
		Export: ExportConfig{
			File:         DefaultExportFile,
			WorkbookFile: DefaultWorkbookFile,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/roster.log",
		},
		Observability: ObservabilityConfig{
			TraceExporter:  "none",
			MetricExporter: "none",
			SampleRatio:    1.0,
		},
	}
}

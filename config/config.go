//go:generate go run github.com/abice/go-enum -f=$GOFILE --marshal --names
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/creasty/defaults"
	"golang.org/x/exp/slices"

	"github.com/listharvest/listharvest/output"
)

const cachedConfigFilename = "last_conf.json"

// CompressionType names the supported FilterList source encodings. ENUM(
// none  // uncompressed
// gz    // gzip
// targz // gzip'd tar archive, a single entry of which is selected
// )
type CompressionType uint8

// Compression describes how a FilterList's Source is encoded on disk or
// over the wire. TarGzEntry names the archive member to extract when
// Type is CompressionTypeTargz; it is ignored otherwise.
type Compression struct {
	Type       CompressionType `yaml:"type" json:"type"`
	TarGzEntry string          `yaml:"entry,omitempty" json:"entry,omitempty"`
}

// UnmarshalJSON accepts both `null`, the bare string `"Gz"`, and the object
// form `{"TarGz": "path/in/archive"}`, mirroring the wire shape described
// for FilterList.compression.
func (c *Compression) UnmarshalJSON(data []byte) error {
	var asNull any
	if err := json.Unmarshal(data, &asNull); err == nil && asNull == nil {
		*c = Compression{Type: CompressionTypeNone}

		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		switch asString {
		case "Gz":
			*c = Compression{Type: CompressionTypeGz}
		case "None", "":
			*c = Compression{Type: CompressionTypeNone}
		default:
			return fmt.Errorf("unknown compression: %s", asString)
		}

		return nil
	}

	var asObject struct {
		TarGz string `json:"TarGz"`
	}
	if err := json.Unmarshal(data, &asObject); err != nil {
		return fmt.Errorf("invalid compression: %w", err)
	}

	*c = Compression{Type: CompressionTypeTargz, TarGzEntry: asObject.TarGz}

	return nil
}

func (c Compression) MarshalJSON() ([]byte, error) {
	switch c.Type {
	case CompressionTypeGz:
		return json.Marshal("Gz")
	case CompressionTypeTargz:
		return json.Marshal(struct {
			TarGz string `json:"TarGz"`
		}{c.TarGzEntry})
	case CompressionTypeNone:
		fallthrough
	default:
		return []byte("null"), nil
	}
}

// FilterList declaratively describes one remote (or local, or inline)
// filter-list source: where to read it from, how it's compressed, the
// tags that assign it to categories, and the regex that extracts a
// token (usually a domain) from each line.
type FilterList struct {
	ID          string      `yaml:"id" json:"id"`
	Source      BytesSource `yaml:"source" json:"source"`
	Comment     *string     `yaml:"comment,omitempty" json:"comment,omitempty"`
	Compression Compression `yaml:"compression" json:"compression"`
	Tags        []string    `yaml:"tags" json:"tags"`
	Regex       string      `yaml:"regex" json:"regex"`
}

// Downloader configures the HTTP client used to fetch FilterList sources.
type Downloader struct {
	Timeout               Duration `yaml:"timeout" json:"timeout" default:"30s"`
	Attempts              uint     `yaml:"attempts" json:"attempts" default:"3"`
	Cooldown              Duration `yaml:"cooldown" json:"cooldown" default:"1s"`
	MaxBackoff            Duration `yaml:"maxBackoff" json:"max_backoff" default:"30s"`
	TLSHandshakeTimeout   Duration `yaml:"tlsHandshakeTimeout" json:"tls_handshake_timeout" default:"10s"`
	ResponseHeaderTimeout Duration `yaml:"responseHeaderTimeout" json:"response_header_timeout" default:"10s"`
}

// Config is the top-level declarative description of a harvesting run.
type Config struct {
	Lists                 []FilterList  `yaml:"lists" json:"lists"`
	CacheDir              string        `yaml:"cacheDir" json:"cache_dir" default:"./cache"`
	OutputDir             string        `yaml:"outputDir" json:"output_dir" default:"./output"`
	OutputFormat          output.Format `yaml:"outputFormat" json:"output_format" default:"Hostsfile"`
	Downloader            Downloader    `yaml:"downloader" json:"downloader"`
	Log                   LogConfig     `yaml:"log" json:"log"`
	ProcessingConcurrency uint          `yaml:"processingConcurrency" json:"processing_concurrency" default:"4"`
	RefreshPeriod         Duration      `yaml:"refreshPeriod" json:"refresh_period" default:"4h"`

	// CachedConfig is the previous run's Config, loaded from
	// `<cache_dir>/last_conf.json`. It is not itself persisted recursively:
	// its own CachedConfig field is always nil.
	CachedConfig *Config `yaml:"-" json:"-"`
}

// LogConfig is kept distinct from the log package's own Config so that
// config.Config doesn't need to import logrus-flavored types into its JSON
// shape; cmd wires the two together.
type LogConfig struct {
	Level  string `yaml:"level" json:"level" default:"info"`
	Format string `yaml:"format" json:"format" default:"text"`
}

// WithDefaults builds a zero-value T and applies its `default:"..."` struct
// tags via github.com/creasty/defaults, returning the populated value.
func WithDefaults[T any]() (T, error) {
	var t T

	if err := defaults.Set(&t); err != nil {
		return t, fmt.Errorf("can't apply default values: %w", err)
	}

	return t, nil
}

// Validate checks invariants that can't be expressed via struct tags alone:
// FilterList IDs must be unique across the Config.
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Lists))

	for _, list := range c.Lists {
		if list.ID == "" {
			return fmt.Errorf("filter list has empty id")
		}

		if _, ok := seen[list.ID]; ok {
			return fmt.Errorf("duplicate filter list id: %s", list.ID)
		}

		seen[list.ID] = struct{}{}
	}

	return nil
}

// Tags returns the set of distinct tag names across all configured lists.
func (c *Config) Tags() []string {
	seen := make(map[string]struct{})
	res := make([]string, 0)

	for _, list := range c.Lists {
		for _, tag := range list.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}

			seen[tag] = struct{}{}
			res = append(res, tag)
		}
	}

	return res
}

// ListsForTag returns the filter lists contributing to the given tag, in
// Config.Lists order.
func (c *Config) ListsForTag(tag string) []FilterList {
	var res []FilterList

	for _, list := range c.Lists {
		if slices.Contains(list.Tags, tag) {
			res = append(res, list)
		}
	}

	return res
}

// Load reads a Config from a JSON file at path, applies defaults for any
// field the file doesn't set, and attaches the previous run's Config (if
// `<cache_dir>/last_conf.json` exists) as CachedConfig.
func Load(path string) (*Config, error) {
	cfg, err := WithDefaults[Config]()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("can't parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cached, err := loadCachedConfig(cfg.CacheDir); err == nil {
		cfg.CachedConfig = cached
	}

	return &cfg, nil
}

func loadCachedConfig(cacheDir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(cacheDir, cachedConfigFilename))
	if err != nil {
		return nil, err
	}

	var cached Config
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}

	cached.CachedConfig = nil

	return &cached, nil
}

// Save persists c (with its own CachedConfig cleared, per the single-level
// recursion rule) to `<cache_dir>/last_conf.json`.
func (c *Config) Save() error {
	toSave := *c
	toSave.CachedConfig = nil

	if err := os.MkdirAll(c.CacheDir, 0o750); err != nil {
		return fmt.Errorf("can't create cache dir: %w", err)
	}

	data, err := json.MarshalIndent(&toSave, "", "  ")
	if err != nil {
		return fmt.Errorf("can't marshal config: %w", err)
	}

	path := filepath.Join(c.CacheDir, cachedConfigFilename)

	if err := os.WriteFile(path, data, 0o640); err != nil {
		return fmt.Errorf("can't write cached config: %w", err)
	}

	return nil
}

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"unicode/utf8"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Config is the agent configuration parsed from the YAML file.
// Every optional field is resolved at load time; the zero Config is never
// returned to callers.
type Config struct {
	aggregatorHost string
	aggregatorPort uint16
	maxRetries     int
	pidFile        string
	log            LogConfig
}

// AggregatorHost is the network address of the remote aggregator.
func (c *Config) AggregatorHost() string { return c.aggregatorHost }

// AggregatorPort is the aggregator's port, always in 1..65535.
func (c *Config) AggregatorPort() uint16 { return c.aggregatorPort }

// AggregatorAddr joins host and port for dialing.
func (c *Config) AggregatorAddr() string {
	return net.JoinHostPort(c.aggregatorHost, strconv.Itoa(int(c.aggregatorPort)))
}

// MaxRetries bounds transport retry attempts. Never negative.
func (c *Config) MaxRetries() int { return c.maxRetries }

// PIDFile is where the running agent records its process id.
func (c *Config) PIDFile() string { return c.pidFile }

// Log returns the resolved logging section.
func (c *Config) Log() LogConfig { return c.log }

// Equal reports whether two configurations hold the same values.
func (c *Config) Equal(o *Config) bool {
	if c == nil || o == nil {
		return c == o
	}
	return *c == *o
}

// LogConfig holds the log level and destination.
type LogConfig struct {
	level    Level
	location Location
}

// Level is the minimum severity to emit.
func (l LogConfig) Level() Level { return l.level }

// Location is the raw destination variant.
func (l LogConfig) Location() Location { return l.location }

// IsStdout reports whether logs go to standard output.
func (l LogConfig) IsStdout() bool {
	_, ok := l.location.(StdoutLocation)
	return ok
}

// FilePath returns the log file path when the destination is a file.
func (l LogConfig) FilePath() (string, bool) {
	f, ok := l.location.(FileLocation)
	return f.Path, ok
}

func defaultLogConfig() LogConfig {
	return LogConfig{level: DefaultLevel, location: defaultLocation()}
}

// LoadOption customises Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	trace io.Writer
}

// WithTrace echoes the raw file content to w before it is parsed.
// The content may include connection details, so this is opt-in only.
func WithTrace(w io.Writer) LoadOption {
	return func(o *loadOptions) {
		o.trace = w
	}
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with their defaults.
func Load(path string, opts ...LoadOption) (*Config, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	if o.trace != nil {
		fmt.Fprintf(o.trace, "--- %s ---\n%s", path, data)
		if !bytes.HasSuffix(data, []byte("\n")) {
			fmt.Fprintln(o.trace)
		}
		fmt.Fprintf(o.trace, "--- end %s ---\n", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, withFile(err, path)
	}
	return cfg, nil
}

// readFile reads the whole file. The handle is closed on every return path.
func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Kind: KindIO, File: path, Msg: "cannot open file", Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &Error{Kind: KindIO, File: path, Msg: "cannot stat file", Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &Error{Kind: KindIO, File: path, Msg: fmt.Sprintf("not a regular file (mode %s)", info.Mode())}
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &Error{Kind: KindIO, File: path, Msg: "cannot read file", Err: err}
	}
	if !utf8.Valid(data) {
		return nil, &Error{Kind: KindIO, File: path, Msg: "content is not valid UTF-8"}
	}
	return data, nil
}

func withFile(err error, path string) error {
	for _, e := range multierr.Errors(err) {
		var ce *Error
		if errors.As(e, &ce) {
			ce.File = path
		}
	}
	return err
}

// document is the on-disk shape used by Marshal.
type document struct {
	AggregatorHost string      `yaml:"aggregator_host"`
	AggregatorPort uint16      `yaml:"aggregator_port"`
	MaxRetries     int         `yaml:"max_retries"`
	PIDFile        string      `yaml:"pid_file"`
	Log            logDocument `yaml:"log"`
}

type logDocument struct {
	Level    string           `yaml:"level"`
	Location locationDocument `yaml:"location"`
}

type locationDocument struct {
	Type string `yaml:"type"`
	Path string `yaml:"path,omitempty"`
}

// Marshal writes cfg as YAML with every default spelled out.
func Marshal(cfg *Config) ([]byte, error) {
	doc := document{
		AggregatorHost: cfg.aggregatorHost,
		AggregatorPort: cfg.aggregatorPort,
		MaxRetries:     cfg.maxRetries,
		PIDFile:        cfg.pidFile,
		Log: logDocument{
			Level:    cfg.log.level.String(),
			Location: locationDocument{Type: cfg.log.location.Type()},
		},
	}
	if path, ok := cfg.log.FilePath(); ok {
		doc.Log.Location.Path = path
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}
	return buf.Bytes(), nil
}

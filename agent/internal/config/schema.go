package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Top-level keys.
const (
	keyAggregatorHost = "aggregator_host"
	keyAggregatorPort = "aggregator_port"
	keyMaxRetries     = "max_retries"
	keyPIDFile        = "pid_file"
	keyLog            = "log"
)

var topLevelKeys = []string{keyAggregatorHost, keyAggregatorPort, keyMaxRetries, keyPIDFile, keyLog}

// Parse decodes a YAML document into a Config, enforcing the closed schema.
// The input must hold at most one document. The returned error aggregates
// every problem found; each element is an *Error.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var root yaml.Node
	if err := dec.Decode(&root); err != nil && !errors.Is(err, io.EOF) {
		return nil, &Error{Kind: KindParse, Msg: "invalid YAML", Err: err}
	}

	var body *yaml.Node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		body = root.Content[0]
	}

	p := &parser{}
	cfg := p.config(body)

	if root.Kind != 0 {
		var extra yaml.Node
		switch err := dec.Decode(&extra); {
		case errors.Is(err, io.EOF):
		case err != nil:
			return nil, &Error{Kind: KindParse, Msg: "invalid YAML", Err: err}
		default:
			p.fail(KindSchemaViolation, &extra, "", "multiple documents are not supported")
		}
	}
	if p.errs != nil {
		return nil, p.errs
	}
	return cfg, nil
}

type parser struct {
	errs error
}

func (p *parser) fail(kind Kind, n *yaml.Node, field, format string, args ...any) {
	e := &Error{Kind: kind, Field: field, Msg: fmt.Sprintf(format, args...)}
	if n != nil {
		e.Line = n.Line
	}
	p.errs = multierr.Append(p.errs, e)
}

func (p *parser) config(n *yaml.Node) *Config {
	cfg := &Config{log: defaultLogConfig()}

	n = resolve(n)
	if isNull(n) {
		for _, key := range []string{keyAggregatorHost, keyAggregatorPort, keyMaxRetries, keyPIDFile} {
			p.fail(KindMissingField, nil, key, "required field is absent")
		}
		return cfg
	}
	if n.Kind != yaml.MappingNode {
		p.fail(KindSchemaViolation, n, "", "expected a mapping at the top level, got %s", describe(n))
		return cfg
	}

	f := p.fields(n, "", topLevelKeys)
	cfg.aggregatorHost = p.requiredString(f, keyAggregatorHost)
	cfg.aggregatorPort = uint16(p.requiredInt(f, keyAggregatorPort, 1, math.MaxUint16))
	cfg.maxRetries = int(p.requiredInt(f, keyMaxRetries, 0, math.MaxInt16))
	cfg.pidFile = p.requiredString(f, keyPIDFile)

	if v := f[keyLog]; !isNull(v) {
		cfg.log = p.logConfig(v, keyLog)
	}
	return cfg
}

func (p *parser) logConfig(n *yaml.Node, path string) LogConfig {
	lc := defaultLogConfig()
	if n.Kind != yaml.MappingNode {
		p.fail(KindSchemaViolation, n, path, "expected a mapping, got %s", describe(n))
		return lc
	}

	f := p.fields(n, path, []string{"level", "location"})
	if v := f["level"]; !isNull(v) {
		if lvl, ok := p.level(v, path+".level"); ok {
			lc.level = lvl
		}
	}
	if v := f["location"]; !isNull(v) {
		if loc := p.location(v, path+".location"); loc != nil {
			lc.location = loc
		}
	}
	return lc
}

func (p *parser) level(n *yaml.Node, field string) (Level, bool) {
	if !isString(n) {
		p.fail(KindSchemaViolation, n, field, "expected a string, got %s", describe(n))
		return 0, false
	}
	lvl, err := ParseLevel(n.Value)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			e.Field, e.Line = field, n.Line
		}
		p.errs = multierr.Append(p.errs, err)
		return 0, false
	}
	return lvl, true
}

// location selects the variant from the "type" discriminator. Keys are
// checked against the union of all variants first, then per variant.
func (p *parser) location(n *yaml.Node, path string) Location {
	if n.Kind != yaml.MappingNode {
		p.fail(KindSchemaViolation, n, path, "expected a mapping, got %s", describe(n))
		return nil
	}

	f := p.fields(n, path, []string{"type", "path"})
	t, ok := f["type"]
	if !ok || isNull(t) {
		p.fail(KindMissingField, n, path+".type", "location type is required (stdout or file)")
		return nil
	}
	if !isString(t) {
		p.fail(KindSchemaViolation, t, path+".type", "expected a string, got %s", describe(t))
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(t.Value)) {
	case "stdout":
		if pv, ok := f["path"]; ok {
			p.fail(KindSchemaViolation, pv, path+".path", "only valid when type is file")
			return nil
		}
		return StdoutLocation{}
	case "file":
		pv := f["path"]
		if isNull(pv) {
			return FileLocation{Path: DefaultLogPath}
		}
		if !isString(pv) {
			p.fail(KindSchemaViolation, pv, path+".path", "expected a string, got %s", describe(pv))
			return nil
		}
		if strings.TrimSpace(pv.Value) == "" {
			p.fail(KindSchemaViolation, pv, path+".path", "must not be empty; omit it to use %s", DefaultLogPath)
			return nil
		}
		return FileLocation{Path: pv.Value}
	default:
		p.fail(KindUnknownVariant, t, path+".type", "unknown location type %q (want stdout or file)", t.Value)
		return nil
	}
}

// fields indexes a mapping by key, reporting unknown and duplicate keys.
func (p *parser) fields(n *yaml.Node, path string, allowed []string) map[string]*yaml.Node {
	out := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], resolve(n.Content[i+1])
		if k.Kind != yaml.ScalarNode {
			p.fail(KindSchemaViolation, k, path, "mapping keys must be strings, got %s", describe(k))
			continue
		}
		field := join(path, k.Value)
		if !slices.Contains(allowed, k.Value) {
			p.fail(KindSchemaViolation, k, field, "unknown field (allowed: %s)", strings.Join(allowed, ", "))
			continue
		}
		if _, dup := out[k.Value]; dup {
			p.fail(KindSchemaViolation, k, field, "duplicate field")
			continue
		}
		out[k.Value] = v
	}
	return out
}

func (p *parser) requiredString(f map[string]*yaml.Node, key string) string {
	v, ok := p.required(f, key)
	if !ok {
		return ""
	}
	if !isString(v) {
		p.fail(KindSchemaViolation, v, key, "expected a string, got %s", describe(v))
		return ""
	}
	if strings.TrimSpace(v.Value) == "" {
		p.fail(KindMissingField, v, key, "required field is empty")
		return ""
	}
	return v.Value
}

func (p *parser) requiredInt(f map[string]*yaml.Node, key string, lo, hi int64) int64 {
	v, ok := p.required(f, key)
	if !ok {
		return 0
	}
	if v.Kind != yaml.ScalarNode || v.ShortTag() != "!!int" {
		p.fail(KindSchemaViolation, v, key, "expected an integer, got %s", describe(v))
		return 0
	}
	var i int64
	if err := v.Decode(&i); err != nil {
		p.fail(KindSchemaViolation, v, key, "expected an integer in %d..%d, got %q", lo, hi, v.Value)
		return 0
	}
	if i < lo || i > hi {
		p.fail(KindSchemaViolation, v, key, "value %d out of range %d..%d", i, lo, hi)
		return 0
	}
	return i
}

func (p *parser) required(f map[string]*yaml.Node, key string) (*yaml.Node, bool) {
	v, ok := f[key]
	if !ok {
		p.fail(KindMissingField, nil, key, "required field is absent")
		return nil, false
	}
	if isNull(v) {
		p.fail(KindMissingField, v, key, "required field has no value")
		return nil, false
	}
	return v, true
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n == nil || n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

// isString reports whether n is a scalar tagged !!str.
func isString(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}

func describe(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "a mapping"
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.ScalarNode:
		return fmt.Sprintf("%s %q", strings.TrimPrefix(n.ShortTag(), "!!"), n.Value)
	default:
		return "an unsupported node"
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

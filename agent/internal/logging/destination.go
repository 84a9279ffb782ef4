package logging

import (
	"github.com/snitch-monitoring/snitch/agent/internal/config"
)

// Sink is where log entries are written: StdoutSink or FileSink.
type Sink interface {
	String() string
	sink()
}

// StdoutSink writes to the process's standard output.
type StdoutSink struct{}

// FileSink appends to the file at Path.
type FileSink struct {
	Path string
}

func (StdoutSink) String() string { return "stdout" }
func (s FileSink) String() string { return "file:" + s.Path }

func (StdoutSink) sink() {}
func (FileSink) sink()   {}

// Destination is everything the logging subsystem needs from the config.
type Destination struct {
	MinLevel config.Level
	Sink     Sink
}

// WithLevel returns a copy of d with a different minimum level.
func (d Destination) WithLevel(l config.Level) Destination {
	d.MinLevel = l
	return d
}

// Resolve maps a log config onto a Destination. It does no I/O.
func Resolve(lc config.LogConfig) Destination {
	d := Destination{MinLevel: lc.Level(), Sink: StdoutSink{}}
	if path, ok := lc.FilePath(); ok {
		d.Sink = FileSink{Path: path}
	}
	return d
}

package config

// DefaultLogPath is used when the file location omits a path, and when the
// log section has no location at all.
const DefaultLogPath = "/var/log/snitch.log"

// Location is where the agent writes its log. It is either StdoutLocation or
// FileLocation; the unexported method keeps other packages from adding
// variants.
type Location interface {
	// Type is the discriminator written in the config file.
	Type() string
	location()
}

// StdoutLocation sends logs to the process's standard output.
type StdoutLocation struct{}

// FileLocation appends logs to the file at Path.
type FileLocation struct {
	Path string
}

func (StdoutLocation) Type() string { return "stdout" }
func (FileLocation) Type() string   { return "file" }

func (StdoutLocation) location() {}
func (FileLocation) location()   {}

func defaultLocation() Location {
	return FileLocation{Path: DefaultLogPath}
}

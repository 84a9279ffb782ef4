// Package logging turns the validated log section of the agent config into a
// running zap logger.
//
// Resolve(config.LogConfig) is a pure function returning a Destination: the
// minimum level plus a Sink that is either StdoutSink or FileSink{Path}.
// New(Destination) opens the sink and builds a JSON *zap.Logger; the returned
// close func flushes and releases the file.
package logging

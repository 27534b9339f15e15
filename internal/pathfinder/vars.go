package pathfinder

var (
	Debug      = false // set to true for verbose debug output
	Progress   = false // set to true to print [PROGRESS] lines while computing a batch
	RecordLogs = true  // set to false to stop recording skipped-path events
	// Compile time checks to ensure the sinks implement PathSink
	_ PathSink = (*MemorySink)(nil)
	_ PathSink = (*ChannelSink)(nil)
	_ PathSink = (*GeoJSONSink)(nil)
	_ PathSink = (*FuncSink)(nil)
)

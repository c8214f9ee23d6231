package console

// Config mirrors spec §6's SnesConfig: the fixed output geometry and audio
// format frontends should assume, plus the StrictMode toggle spec §7/§9
// describe ("keep the test mode as hard-abort; in production, downgrade to
// logged warning plus best-effort default").
type Config struct {
	DisplayWidth    int
	DisplayHeight   int
	DisplayRate     int
	AudioChannels   int
	AudioSampleSize int
	AudioSampleRate int

	// StrictMode turns the CPU's unimplemented/unsupported-path warnings
	// (unknown opcode, decimal-mode ADC/SBC) into panics instead of the
	// production default of logging and falling back to best-effort
	// behavior. It is passed to the CPU only; other components always log.
	StrictMode bool

	// LogBufferSize sizes the shared debug.Logger's circular entry buffer.
	LogBufferSize int
}

// DefaultConfig returns spec §6's SnesConfig values with logging enabled at
// a generous buffer size and StrictMode off (production policy).
func DefaultConfig() Config {
	return Config{
		DisplayWidth:    256,
		DisplayHeight:   224,
		DisplayRate:     60,
		AudioChannels:   2,
		AudioSampleSize: 4,
		AudioSampleRate: 32000,
		StrictMode:      false,
		LogBufferSize:   10000,
	}
}

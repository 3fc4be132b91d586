package id3v23

import "github.com/sirupsen/logrus"

// DefaultPadding is the padding written after the frames of a new tag.
// Some players drop the last frame of a tag without padding.
const DefaultPadding = 16

// Config holds the settings of one tag.
//
// A Config is built from Options when a tag is created or read and is
// owned by that tag; there is no process-wide state.
type Config struct {
	// Strict treats ID3v2.3 deviations as fatal errors and rejects
	// duplicate keyed frames instead of replacing them.
	Strict bool

	// Padding is the number of zero bytes written after the frames of a
	// new tag. Tags that are read keep the padding they were read with.
	Padding int

	// Agents resolves ENCR owner identifiers to crypto agents.
	Agents AgentDirectory

	// Logger receives debug and warning output.
	Logger logrus.FieldLogger

	// Unsynchronization applies the unsynchronization scheme on write
	// when the frame bytes require it.
	Unsynchronization bool

	// ExtendedHeader writes an extended header; CRC adds a CRC32 of the frames.
	ExtendedHeader bool
	CRC            bool

	// RejectUnknownFrameFlags makes undefined frame flag bits fatal in strict mode.
	RejectUnknownFrameFlags bool
}

// Option configures a tag.
//
// Options use the functional options pattern for clean, extensible APIs.
//
// Example:
//
//	tag, err := id3v23.Read(data,
//	    id3v23.WithStrict(),
//	    id3v23.WithAgents(agents),
//	)
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Strict:  false,
		Padding: DefaultPadding,
		Logger:  logrus.StandardLogger(),
	}
}

func newConfig(opts []Option) Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.Padding < 0 {
		cfg.Padding = 0
	}
	return cfg
}

// WithStrict enables strict parsing.
//
// By default, frames with invalid ids are skipped and duplicate keyed
// frames replace earlier ones, with a Warning recorded on the tag.
// With strict parsing both abort the read, and adding a duplicate keyed
// frame returns a ConstraintError.
func WithStrict() Option {
	return func(c *Config) {
		c.Strict = true
	}
}

// WithPadding sets the padding written after the frames of a new tag.
//
// Default is 16 bytes.
func WithPadding(n int) Option {
	return func(c *Config) {
		c.Padding = n
	}
}

// WithAgents sets the directory used to resolve crypto agents for
// encrypted frames.
//
// Example:
//
//	dir := cryptoagent.NewDirectory()
//	dir.Register("mailto:keys@example.com", cryptoagent.NewSecretbox(key))
//	tag, err := id3v23.Read(data, id3v23.WithAgents(dir))
func WithAgents(dir AgentDirectory) Option {
	return func(c *Config) {
		c.Agents = dir
	}
}

// WithLogger sets the logger. Default is logrus.StandardLogger().
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithUnsynchronization applies unsynchronization on write when needed.
func WithUnsynchronization() Option {
	return func(c *Config) {
		c.Unsynchronization = true
	}
}

// WithExtendedHeader writes an extended header, optionally with a CRC32
// of the frame data.
func WithExtendedHeader(crc bool) Option {
	return func(c *Config) {
		c.ExtendedHeader = true
		c.CRC = crc
	}
}

// WithRejectUnknownFrameFlags makes frames with undefined flag bits fatal
// in strict mode.
func WithRejectUnknownFrameFlags() Option {
	return func(c *Config) {
		c.RejectUnknownFrameFlags = true
	}
}

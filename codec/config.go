package codec

// DecodeOption adjusts limits applied while decoding untrusted input.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	maxLength uint32
	maxDepth  int
}

func newDecodeConfig(opts []DecodeOption) decodeConfig {
	var cfg decodeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithMaxLength rejects any decoded length prefix above n. Zero means no limit.
func WithMaxLength(n uint32) DecodeOption {
	return func(c *decodeConfig) {
		c.maxLength = n
	}
}

// WithMaxDepth bounds nesting of sequences, maps and owned references.
// Zero means no limit.
func WithMaxDepth(n int) DecodeOption {
	return func(c *decodeConfig) {
		c.maxDepth = n
	}
}

package contracts

// DriverConfig holds configuration passed to the device handle backend.
type DriverConfig struct {
	ClientName string // Name under which the driver registers the client.
	QueueSize  int    // Driver-side message queue size, in messages.
}

// ClientOptions defines the configuration options for a MIDI input.
type ClientOptions struct {
	Logger       Logger        // Logger for lifecycle events and errors.
	LogLevel     LogLevel      // Level of logging to use.
	Backend      Backend       // Device handle backend to construct.
	DeviceHandle DeviceHandle  // Pre-built device handle; overrides Backend.
	BufferSize   int           // Bridge queue capacity, in events.
	DriverConfig *DriverConfig // Configuration for the device backend.
}

// Option is a function that modifies ClientOptions.
type Option func(*ClientOptions)

// WithLogger sets the logger for the MIDI input.
func WithLogger(l Logger) Option {
	return func(opts *ClientOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the MIDI input.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ClientOptions) {
		opts.LogLevel = level
	}
}

// WithBackend selects the device handle backend by name.
func WithBackend(backend Backend) Option {
	return func(opts *ClientOptions) {
		opts.Backend = backend
	}
}

// WithDeviceHandle injects a pre-built device handle, bypassing the backend
// registry. The input takes ownership and destroys the handle with itself.
func WithDeviceHandle(handle DeviceHandle) Option {
	return func(opts *ClientOptions) {
		opts.DeviceHandle = handle
	}
}

// WithBufferSize sets the bridge queue capacity. Deliveries arriving while
// the queue is full are dropped, never blocked on.
func WithBufferSize(size int) Option {
	return func(opts *ClientOptions) {
		opts.BufferSize = size
	}
}

// WithDriverConfig sets the device backend configuration.
func WithDriverConfig(config DriverConfig) Option {
	return func(opts *ClientOptions) {
		opts.DriverConfig = &config
	}
}

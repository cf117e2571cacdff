package framecast

import (
	"errors"
	"net"
	"strconv"
	"strings"
)

const (
	// DefaultAddress is the bind address used when none is configured.
	DefaultAddress = "127.0.0.1"

	// DefaultEndpoint is the request path served when none is configured.
	DefaultEndpoint = "/"
)

// Configuration holds the parameters a [Server] binds and serves with.
//
// Configuration is immutable after creation via [NewConfiguration]. All
// fields are private with getter methods.
type Configuration struct {
	port     uint16
	address  string
	endpoint string
}

// Port returns the TCP port to bind. Zero asks the system for a free port;
// the bound address is then reported by [Server.Addr].
func (c Configuration) Port() uint16 {
	return c.port
}

// Address returns the host or IP address to bind.
// Defaults to "127.0.0.1".
func (c Configuration) Address() string {
	if c.address == "" {
		return DefaultAddress
	}
	return c.address
}

// Endpoint returns the exact request target the stream is served on.
// Defaults to "/".
func (c Configuration) Endpoint() string {
	if c.endpoint == "" {
		return DefaultEndpoint
	}
	return c.endpoint
}

// Addr returns the "host:port" string passed to the listener.
func (c Configuration) Addr() string {
	return net.JoinHostPort(c.Address(), strconv.Itoa(int(c.port)))
}

// ConfigurationOption configures a [Configuration] during construction.
// Options return an error if validation fails.
type ConfigurationOption func(*Configuration) error

// NewConfiguration creates a [Configuration] for the given port.
//
// Address and endpoint default to "127.0.0.1" and "/" and can be changed
// with [WithAddress] and [WithEndpoint].
//
// Example:
//
//	cfg, err := framecast.NewConfiguration(7879,
//	    framecast.WithAddress("0.0.0.0"),
//	    framecast.WithEndpoint("/img"),
//	)
func NewConfiguration(port uint16, opts ...ConfigurationOption) (Configuration, error) {
	c := Configuration{
		port:     port,
		address:  DefaultAddress,
		endpoint: DefaultEndpoint,
	}
	for _, opt := range opts {
		if err := opt(&c); err != nil {
			return Configuration{}, err
		}
	}
	return c, nil
}

// WithAddress sets the bind address, e.g. "0.0.0.0" or "::1".
//
// Returns an error if the address is empty or contains whitespace.
func WithAddress(address string) ConfigurationOption {
	return func(c *Configuration) error {
		if address == "" {
			return errors.New("address cannot be empty")
		}
		if strings.ContainsAny(address, " \t\r\n") {
			return errors.New("address cannot contain whitespace")
		}
		c.address = address
		return nil
	}
}

// WithEndpoint sets the request path viewers connect to.
//
// The path is matched byte for byte against the request target, so
// "/stream" does not match "/stream/" or "/stream?x=1".
//
// Returns an error if the path does not start with "/" or contains
// whitespace.
func WithEndpoint(path string) ConfigurationOption {
	return func(c *Configuration) error {
		if !strings.HasPrefix(path, "/") {
			return errors.New("endpoint must start with /")
		}
		if strings.ContainsAny(path, " \t\r\n") {
			return errors.New("endpoint cannot contain whitespace")
		}
		c.endpoint = path
		return nil
	}
}

package chnative

import (
	"crypto/tls"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cloudflare/ch-native/compress"
)

// ParseDSN parses a connection string of the form
//
//	clickhouse://[user[:password]@]host[:port][,host2[:port2]...][/database][?param=value&...]
//
// into an Options value. Recognized query params: compression
// (none|lz4|zstd), dial_timeout, read_timeout, write_timeout, secure.
// Unknown params are a Protocol-kind error, not silently ignored.
func ParseDSN(s string) (*Options, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, NewProtocolError(err, "chnative: parsing DSN")
	}
	if u.Scheme != "clickhouse" {
		return nil, NewProtocolError(nil, "chnative: DSN scheme must be \"clickhouse\", got %q", u.Scheme)
	}

	opts := &Options{}

	if u.User != nil {
		opts.User = u.User.Username()
		opts.Password, _ = u.User.Password()
	}

	opts.Addresses = strings.Split(u.Host, ",")
	if len(opts.Addresses) == 0 || opts.Addresses[0] == "" {
		return nil, NewProtocolError(nil, "chnative: DSN has no host")
	}

	opts.Database = strings.TrimPrefix(u.Path, "/")

	q := u.Query()
	for key, values := range q {
		value := values[0]
		switch key {
		case "compression":
			switch value {
			case "none":
				opts.Compression = compress.MethodNone
			case "lz4":
				opts.Compression = compress.MethodLZ4
			case "zstd":
				opts.Compression = compress.MethodZSTD
			default:
				return nil, NewProtocolError(nil, "chnative: unknown compression %q", value)
			}
		case "dial_timeout":
			d, err := time.ParseDuration(value)
			if err != nil {
				return nil, NewProtocolError(err, "chnative: parsing dial_timeout")
			}
			opts.DialTimeout = d
		case "read_timeout":
			d, err := time.ParseDuration(value)
			if err != nil {
				return nil, NewProtocolError(err, "chnative: parsing read_timeout")
			}
			opts.ReadTimeout = d
		case "write_timeout":
			d, err := time.ParseDuration(value)
			if err != nil {
				return nil, NewProtocolError(err, "chnative: parsing write_timeout")
			}
			opts.WriteTimeout = d
		case "secure":
			secure, err := strconv.ParseBool(value)
			if err != nil {
				return nil, NewProtocolError(err, "chnative: parsing secure")
			}
			if secure {
				opts.TLSConfig = &tls.Config{}
			}
		default:
			return nil, NewProtocolError(nil, "chnative: unrecognized DSN parameter %q", key)
		}
	}

	return opts, nil
}

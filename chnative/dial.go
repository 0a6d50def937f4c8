package chnative

import (
	"context"
	"crypto/tls"
	"net"
	"sync"

	"github.com/cloudflare/ch-native/retry"
	"github.com/pkg/errors"
)

// Dial resolves opts.Addresses and races a connection attempt across all of
// them when more than one is given — the first successful handshake wins
// and the rest are cancelled, mirroring cloudflared's multi-edge-IP racing
// in edgediscovery. Each attempt is retried per opts' backoff policy before
// the overall Dial fails.
func Dial(ctx context.Context, opts Options) (*Session, error) {
	if len(opts.Addresses) == 0 {
		return nil, NewTransportError(nil, "chnative: no addresses configured")
	}
	if len(opts.Addresses) == 1 {
		return dialOne(ctx, opts, opts.Addresses[0])
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sessions := make(chan *Session, 1)
	errs := make(chan error, len(opts.Addresses))

	var wg sync.WaitGroup
	for _, addr := range opts.Addresses {
		addr := addr
		wg.Add(1)
		go func() {
			defer wg.Done()
			// A failed dial to one address must never cancel the others —
			// only a winning address (or raceCtx's own cancellation below)
			// should stop the race.
			s, err := dialOne(raceCtx, opts, addr)
			if err != nil {
				errs <- err
				return
			}
			select {
			case sessions <- s:
			default:
				s.conn.Close()
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case s := <-sessions:
		cancel()
		<-done
		return s, nil
	case <-done:
		select {
		case s := <-sessions:
			return s, nil
		default:
			close(errs)
			var lastErr error
			for err := range errs {
				lastErr = err
			}
			return nil, lastErr
		}
	}
}

func dialOne(ctx context.Context, opts Options, addr string) (*Session, error) {
	backoff := &retry.BackoffHandler{
		MaxRetries:   opts.MaxRetries,
		RetryForever: opts.RetryForever,
		BaseTime:     opts.BackoffBase,
	}

	var lastErr error
	for {
		conn, err := dialTCP(ctx, opts, addr)
		if err == nil {
			s, err := newSession(conn, opts, addr)
			if err != nil {
				conn.Close()
				lastErr = err
			} else {
				return s, nil
			}
		} else {
			lastErr = err
		}

		if !backoff.Backoff(ctx) {
			return nil, NewTransportError(lastErr, "chnative: dialing %s", addr)
		}
	}
}

func dialTCP(ctx context.Context, opts Options, addr string) (net.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, opts.dialTimeout())
	defer cancel()

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", addr)
	}

	if opts.TLSConfig != nil {
		tlsConn := tls.Client(conn, opts.TLSConfig)
		if err := tlsConn.HandshakeContext(dialCtx); err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "TLS handshake with %s", addr)
		}
		return tlsConn, nil
	}
	return conn, nil
}

//go:build linux

// Package hello is a minimal HTTP responder built on epio. Every
// connection is answered with a fixed page after a single read,
// without parsing the request.
package hello

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/webriots/epio"
)

// Response is written verbatim to every client that sends data.
const Response = "HTTP/1.1 200 OK\r\n\r\n\n" +
	"<html>\n" +
	"    <body>\n" +
	"        <h1>hello, response</h1>\n" +
	"    </body>\n" +
	"</html>"

// BufferSize is the size of each connection's read buffer.
const BufferSize = 4096

// Listen creates a listening socket on port.
func Listen(s *epio.Scheduler, port, backlog int) (*epio.Socket, error) {
	ln, err := epio.NewSocket(s)
	if err != nil {
		return nil, err
	}
	if err := ln.Bind(port); err != nil {
		ln.Close()
		return nil, err
	}
	if err := ln.Listen(backlog); err != nil {
		ln.Close()
		return nil, err
	}
	return ln, nil
}

// Serve accepts connections on ln from task t, spawning a task per
// connection. Accept errors are logged and the loop continues. Serve
// closes ln and returns once ctx is done, which is checked after every
// accept.
func Serve(ctx context.Context, t *epio.Task, ln *epio.Socket, log zerolog.Logger) {
	defer ln.Close()

	for ctx.Err() == nil {
		log.Debug().Msg("accept ...")

		fd, err := ln.Accept().Await(t)
		if err != nil {
			log.Error().Err(err).Msg("accept failed")
			continue
		}

		log.Debug().Int("fd", fd).Msg("accept ok")
		t.Go(func(_ context.Context, t *epio.Task) {
			Handle(t, epio.WrapSocket(t.Scheduler(), fd), log)
		})
	}
}

// Handle performs one read/write exchange on sock and closes it. A
// client that sends nothing before closing gets no response.
func Handle(t *epio.Task, sock *epio.Socket, log zerolog.Logger) {
	defer sock.Close()

	log = log.With().Int("fd", sock.FD()).Int("slot", t.Slot()).Logger()

	buf := make([]byte, BufferSize)
	n, err := sock.Read(buf).Await(t)
	if err != nil {
		log.Error().Err(err).Msg("read failed")
		return
	}
	if n == 0 {
		return
	}

	log.Debug().Int("bytes", n).Bytes("request", buf[:n]).Msg("read from client")

	n = copy(buf, Response)
	n, err = sock.Write(buf, n).Await(t)
	if err != nil {
		log.Error().Err(err).Msg("write failed")
		return
	}

	log.Debug().Int("bytes", n).Msg("write to client")
}

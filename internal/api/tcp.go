package api

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/calvinwijaya/blackjack-duel/internal/hub"
)

const writeWait = 10 * time.Second

// LineServer accepts raw TCP connections speaking the newline protocol.
type LineServer struct {
	hub      *hub.Hub
	sessions Sessions
	log      zerolog.Logger

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

func NewLineServer(h *hub.Hub, sessions Sessions, log zerolog.Logger) *LineServer {
	return &LineServer{
		hub:      h,
		sessions: sessions,
		log:      log.With().Str("component", "tcp").Logger(),
		conns:    make(map[net.Conn]struct{}),
	}
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *LineServer) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then closes every
// open connection and waits for their handlers to return.
func (s *LineServer) Serve(ctx context.Context, ln net.Listener) error {
	s.log.Info().Str("addr", ln.Addr().String()).Msg("accepting connections")

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.closeAll()
				s.wg.Wait()
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.log.Warn().Err(err).Msg("accept timeout")
				continue
			}
			return err
		}

		s.track(conn, true)
		if ctx.Err() != nil {
			conn.Close()
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.track(conn, false)
			s.handle(conn)
		}()
	}
}

func (s *LineServer) track(conn net.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.conns[conn] = struct{}{}
	} else {
		delete(s.conns, conn)
	}
}

func (s *LineServer) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}

func (s *LineServer) handle(conn net.Conn) {
	client := connect(s.hub, s.sessions, conn.RemoteAddr().String())
	log := s.log.With().Str("client", client.ID).Str("addr", client.Addr).Logger()
	log.Info().Msg("connected")

	stop := make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.writeLoop(conn, client, stop, log)
	}()

	s.readLoop(conn, client, log)

	close(stop)
	conn.Close()
	s.sessions.Leave(client.ID)
	log.Info().Msg("disconnected")
}

// readLoop dispatches lines until the peer goes away. A line longer than
// MaxLineBytes is discarded up to its newline and the connection stays open.
func (s *LineServer) readLoop(conn net.Conn, client *hub.Client, log zerolog.Logger) {
	r := bufio.NewReaderSize(conn, MaxLineBytes)
	for {
		line, err := r.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			log.Debug().Int("limit", MaxLineBytes).Msg("discarding oversized line")
			if err := discardLine(r); err != nil {
				return
			}
			continue
		}
		if len(line) > 0 {
			dispatch(s.sessions, log, client.ID, string(line))
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Debug().Err(err).Msg("read failed")
			}
			return
		}
	}
}

// discardLine consumes input through the next newline.
func discardLine(r *bufio.Reader) error {
	for {
		_, err := r.ReadSlice('\n')
		if !errors.Is(err, bufio.ErrBufferFull) {
			return err
		}
	}
}

// writeLoop drains the client's queue onto the socket. It exits when the
// queue is closed, stop is closed or a write fails, closing the conn so the
// reader stops.
func (s *LineServer) writeLoop(conn net.Conn, client *hub.Client, stop <-chan struct{}, log zerolog.Logger) {
	defer conn.Close()

	w := bufio.NewWriter(conn)
	queue := client.Outbound()
	for {
		var line string
		select {
		case <-stop:
			return
		case next, ok := <-queue:
			if !ok {
				return
			}
			line = next
		}

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		w.WriteString(line)
		w.WriteByte('\n')

		// coalesce whatever is already queued into one flush
		closed := false
		for n := len(queue); n > 0 && !closed; n-- {
			next, ok := <-queue
			if !ok {
				closed = true
				break
			}
			w.WriteString(next)
			w.WriteByte('\n')
		}
		if err := w.Flush(); err != nil {
			log.Debug().Err(err).Msg("write failed")
			return
		}
		if closed {
			return
		}
	}
}

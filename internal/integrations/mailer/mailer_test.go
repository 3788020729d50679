package mailer

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Info(format string, v ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}
func (l *recordingLogger) Warn(string, ...interface{})  {}
func (l *recordingLogger) Error(string, ...interface{}) {}

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("from@example.com", "to@example.com", "Booked", "See you soon")

	assert.Contains(t, msg, "From: from@example.com\r\n")
	assert.Contains(t, msg, "To: to@example.com\r\n")
	assert.Contains(t, msg, "Subject: Booked\r\n")
	assert.Contains(t, msg, "\r\n\r\nSee you soon\r\n")
}

func TestBuildMessage_StripsLineBreaksFromHeaders(t *testing.T) {
	msg := buildMessage("from@example.com", "to@example.com", "Booked: Cut\r\nBcc: all@example.com", "body")

	assert.Contains(t, msg, "Subject: Booked: CutBcc: all@example.com\r\n")
	assert.NotContains(t, msg, "\r\nBcc:")
}

func TestLogSender_HidesBodiesInProduction(t *testing.T) {
	dev := &recordingLogger{}
	require.NoError(t, NewLogSender(dev, "development").Send(context.Background(), "a@b.c", "Hi", "secret body"))
	require.Len(t, dev.lines, 1)
	assert.Contains(t, dev.lines[0], "secret body")

	prod := &recordingLogger{}
	require.NoError(t, NewLogSender(prod, "Production").Send(context.Background(), "a@b.c", "Hi", "secret body"))
	require.Len(t, prod.lines, 1)
	assert.NotContains(t, prod.lines[0], "secret body")
}

func TestSMTPSender_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSMTPSender("localhost", 2525, "", "", "").Send(ctx, "a@b.c", "Hi", "body")
	assert.ErrorIs(t, err, ErrSendFailed)
}

// listen поднимает TCP-сервер на свободном порту и отдает соединения serve
func listen(t *testing.T, serve func(conn net.Conn)) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serve(conn)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port
}

func TestSMTPSender_HangingServerHonorsDeadline(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	host, port := listen(t, func(conn net.Conn) {
		defer conn.Close()
		<-release
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	started := time.Now()
	err := NewSMTPSender(host, port, "", "", "").Send(ctx, "a@b.c", "Hi", "body")
	assert.ErrorIs(t, err, ErrSendFailed)
	assert.Less(t, time.Since(started), 3*time.Second)
}

func TestSMTPSender_DeliversMessage(t *testing.T) {
	received := make(chan string, 1)

	host, port := listen(t, func(conn net.Conn) {
		defer conn.Close()
		r := bufio.NewReader(conn)
		fmt.Fprint(conn, "220 localhost ESMTP\r\n")
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"):
				fmt.Fprint(conn, "250-localhost\r\n250 8BITMIME\r\n")
			case cmd == "DATA":
				fmt.Fprint(conn, "354 go ahead\r\n")
				var data strings.Builder
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if l == ".\r\n" {
						break
					}
					data.WriteString(l)
				}
				received <- data.String()
				fmt.Fprint(conn, "250 queued\r\n")
			case cmd == "QUIT":
				fmt.Fprint(conn, "221 bye\r\n")
				return
			default:
				fmt.Fprint(conn, "250 OK\r\n")
			}
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := NewSMTPSender(host, port, "", "", "bookings@example.com").Send(ctx, "jane@example.com", "Booked", "See you")
	require.NoError(t, err)

	select {
	case msg := <-received:
		assert.Contains(t, msg, "From: bookings@example.com\r\n")
		assert.Contains(t, msg, "Subject: Booked\r\n")
		assert.Contains(t, msg, "See you")
	case <-time.After(time.Second):
		t.Fatal("message was not received")
	}
}

package systemd

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/vcdash/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.InitWith(logger.Options{Output: io.Discard}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// notifySocket listens where sd_notify writes and returns the next datagram.
func notifySocket(t *testing.T) (path string, next func() string) {
	t.Helper()
	// Unix socket paths are short; t.TempDir can exceed the limit.
	dir, err := os.MkdirTemp("", "sd")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	path = filepath.Join(dir, "notify")
	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: path, Net: "unixgram"})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return path, func() string {
		buf := make([]byte, 256)
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		n, err := conn.Read(buf)
		if err != nil {
			return ""
		}
		return string(buf[:n])
	}
}

func TestNotify(t *testing.T) {
	Convey("Given no NOTIFY_SOCKET", t, func() {
		t.Setenv("NOTIFY_SOCKET", "")

		Convey("Then notifications are skipped without error", func() {
			sent, err := NotifyReady()
			So(err, ShouldBeNil)
			So(sent, ShouldBeFalse)

			sent, err = NotifyStopping()
			So(err, ShouldBeNil)
			So(sent, ShouldBeFalse)
		})
	})

	Convey("Given a NOTIFY_SOCKET", t, func() {
		path, next := notifySocket(t)
		t.Setenv("NOTIFY_SOCKET", path)

		Convey("When the server is ready", func() {
			sent, err := NotifyReady()

			Convey("Then READY=1 is delivered", func() {
				So(err, ShouldBeNil)
				So(sent, ShouldBeTrue)
				So(next(), ShouldEqual, "READY=1")
			})
		})

		Convey("When the server stops", func() {
			sent, err := NotifyStopping()

			Convey("Then STOPPING=1 is delivered", func() {
				So(err, ShouldBeNil)
				So(sent, ShouldBeTrue)
				So(next(), ShouldEqual, "STOPPING=1")
			})
		})
	})
}

func TestWatchdog(t *testing.T) {
	log := logger.Get()

	Convey("Given no watchdog configured", t, func() {
		t.Setenv("WATCHDOG_USEC", "")

		Convey("Then Watchdog returns immediately", func() {
			done := make(chan struct{})
			go func() {
				Watchdog(context.Background(), log)
				close(done)
			}()
			So(func() { <-done }, ShouldNotPanic)
		})
	})

	Convey("Given a watchdog of 100ms", t, func() {
		path, next := notifySocket(t)
		t.Setenv("NOTIFY_SOCKET", path)
		t.Setenv("WATCHDOG_USEC", "100000")
		t.Setenv("WATCHDOG_PID", "")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		done := make(chan struct{})
		go func() {
			Watchdog(ctx, log)
			close(done)
		}()

		Convey("Then it pings until cancelled", func() {
			So(strings.TrimSpace(next()), ShouldEqual, "WATCHDOG=1")
			cancel()
			<-done
		})
	})
}

func TestListener(t *testing.T) {
	Convey("Given a process not started by socket activation", t, func() {
		t.Setenv("LISTEN_PID", "")
		t.Setenv("LISTEN_FDS", "")

		Convey("Then no listener is returned", func() {
			ln, err := Listener()
			So(err, ShouldBeNil)
			So(ln, ShouldBeNil)
		})
	})
}

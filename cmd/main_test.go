package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	app "github.com/okian/vcdash/internal/app"
	"github.com/okian/vcdash/internal/config"
	"github.com/okian/vcdash/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("VCDASH_ADDR", ":8081")
			_ = os.Setenv("VCDASH_REFRESH_INTERVAL_SECONDS", "60")
			defer func() {
				_ = os.Unsetenv("VCDASH_ADDR")
				_ = os.Unsetenv("VCDASH_REFRESH_INTERVAL_SECONDS")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8081")
				convey.So(cfg.RefreshInterval(), convey.ShouldEqual, time.Minute)
			})
		})

		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("VCDASH_OUT_OF_WINDOW", "sometimes")
			defer func() { _ = os.Unsetenv("VCDASH_OUT_OF_WINDOW") }()

			convey.Convey("Then configuration loading should fail", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given a service wired from configuration", t, func() {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		}))
		defer upstream.Close()

		cfg := config.New()
		cfg.UpstreamBaseURL = upstream.URL
		cfg.Timezone = "UTC"
		ctx := context.Background()

		svc, err := app.FromConfig(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		mux := newMux(ctx, svc)

		for _, path := range []string{"/api/v1/weekly-chart", "/openapi.yaml", "/api-docs", "/dashboard", "/stats", "/healthz"} {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		}

		convey.Convey("Then an empty upstream still yields a seven-day chart", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/weekly-chart", nil))
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"average":0`)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"channels":[]`)
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then a single update does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("Then the loop exits when the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("metrics updater did not stop")
			}
		})
	})
}

func TestListen(t *testing.T) {
	convey.Convey("Given a process without socket activation", t, func() {
		t.Setenv("LISTEN_FDS", "")

		convey.Convey("Then listen binds the configured address", func() {
			ln, err := listen("127.0.0.1:0")
			convey.So(err, convey.ShouldBeNil)
			defer ln.Close()
			convey.So(ln.Addr().String(), convey.ShouldStartWith, "127.0.0.1:")
		})
	})
}

type closeRecorder struct{ closed atomic.Bool }

func (c *closeRecorder) Close() error {
	c.closed.Store(true)
	return nil
}

func TestRun(t *testing.T) {
	convey.Convey("Given a service owning a closable resource", t, func() {
		t.Setenv("LISTEN_FDS", "")
		rec := &closeRecorder{}
		svc := app.New(app.WithCloser(rec))
		cfg := config.New()

		convey.Convey("When the address cannot be bound", func() {
			cfg.Addr = "256.0.0.1:bad"
			ctx, stop := context.WithCancel(context.Background())
			defer stop()
			err := run(ctx, stop, cfg, svc)

			convey.Convey("Then run fails and still closes the service", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "listen on")
				convey.So(rec.closed.Load(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the context ends", func() {
			cfg.Addr = "127.0.0.1:0"
			ctx, stop := context.WithCancel(context.Background())
			stop()
			err := run(ctx, stop, cfg, svc)

			convey.Convey("Then run shuts down cleanly and closes the service", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.closed.Load(), convey.ShouldBeTrue)
			})
		})
	})
}

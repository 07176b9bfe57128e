package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"

	service "github.com/okian/vcdash/internal/app"
	"github.com/okian/vcdash/internal/config"
	"github.com/okian/vcdash/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFromConfig(t *testing.T) {
	Convey("Given a configuration pointing at a usage API", t, func() {
		var hits atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			_, _ = w.Write([]byte(`[{"date":"2000-01-01","channel_id":7,"channel_name":"old","duration_hour":1}]`))
		}))
		defer srv.Close()

		path := filepath.Join(t.TempDir(), "colors.json")
		So(os.WriteFile(path, []byte(`{"7":"#123456"}`), 0o600), ShouldBeNil)

		cfg := config.New()
		cfg.UpstreamBaseURL = srv.URL
		cfg.ColorConfigPath = path
		cfg.Timezone = "UTC"

		Convey("When out-of-window records are dropped", func() {
			cfg.OutOfWindow = "drop"
			svc, err := service.FromConfig(context.Background(), cfg, logger.Get())
			So(err, ShouldBeNil)
			chart, err := svc.Weekly(context.Background())

			Convey("Then the engine follows the configured policy", func() {
				So(err, ShouldBeNil)
				So(chart.Dropped, ShouldEqual, 1)
				So(chart.Rows, ShouldHaveLength, 7)
			})
		})

		Convey("When out-of-window records are kept", func() {
			svc, err := service.FromConfig(context.Background(), cfg, logger.Get())
			So(err, ShouldBeNil)
			chart, err := svc.Weekly(context.Background())

			Convey("Then the palette colors the appended row's channel", func() {
				So(err, ShouldBeNil)
				So(chart.Rows, ShouldHaveLength, 8)
				So(chart.Colors["old"], ShouldEqual, "#123456")
			})
		})

		Convey("When the response cache lives in redis", func() {
			mr := miniredis.RunT(t)
			cfg.CacheBackend = config.CacheRedis
			cfg.RedisAddr = mr.Addr()
			svc, err := service.FromConfig(context.Background(), cfg, logger.Get())
			So(err, ShouldBeNil)
			_, err = svc.Weekly(context.Background())
			So(err, ShouldBeNil)

			Convey("Then the upstream body is stored under the configured prefix", func() {
				keys := mr.Keys()
				So(keys, ShouldHaveLength, 1)
				So(keys[0], ShouldStartWith, cfg.RedisKeyPrefix)
				So(mr.TTL(keys[0]), ShouldEqual, cfg.CacheTTL())
			})

			Convey("Then Close releases the redis client", func() {
				So(svc.Close(), ShouldBeNil)
			})
		})

		Convey("When the cache TTL is zero with the memory backend", func() {
			cfg.CacheTTLSeconds = 0
			svc, err := service.FromConfig(context.Background(), cfg, logger.Get())
			So(err, ShouldBeNil)
			_, err1 := svc.Weekly(context.Background())
			_, err2 := svc.Weekly(context.Background())

			Convey("Then every Weekly call reaches the upstream", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(hits.Load(), ShouldEqual, 2)
			})
		})

		Convey("When the cache TTL is zero with the redis backend", func() {
			mr := miniredis.RunT(t)
			cfg.CacheTTLSeconds = 0
			cfg.CacheBackend = config.CacheRedis
			cfg.RedisAddr = mr.Addr()
			svc, err := service.FromConfig(context.Background(), cfg, logger.Get())
			So(err, ShouldBeNil)
			_, _ = svc.Weekly(context.Background())
			_, _ = svc.Weekly(context.Background())

			Convey("Then nothing is cached anywhere", func() {
				So(hits.Load(), ShouldEqual, 2)
				So(mr.Keys(), ShouldBeEmpty)
			})
		})

		Convey("When the memory cache has a TTL", func() {
			svc, err := service.FromConfig(context.Background(), cfg, logger.Get())
			So(err, ShouldBeNil)
			_, _ = svc.Weekly(context.Background())
			_, _ = svc.Weekly(context.Background())

			Convey("Then the second call is served from the cache", func() {
				So(hits.Load(), ShouldEqual, 1)
			})
		})

		Convey("When the color file is missing", func() {
			cfg.ColorConfigPath = filepath.Join(t.TempDir(), "missing.json")
			_, err := service.FromConfig(context.Background(), cfg, logger.Get())

			Convey("Then construction fails", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the duplicate policy is unknown", func() {
			cfg.Duplicates = "max"
			_, err := service.FromConfig(context.Background(), cfg, logger.Get())

			Convey("Then construction fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

package config_test

import (
	"testing"
	"time"

	"github.com/okian/vcdash/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.UpstreamBaseURL, convey.ShouldEqual, "http://localhost:8000")
			convey.So(cfg.UpstreamTimeout(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.CacheTTL(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.RefreshInterval(), convey.ShouldEqual, 0)
			convey.So(cfg.FallbackColor, convey.ShouldEqual, "#cccccc")
			convey.So(cfg.OutOfWindow, convey.ShouldEqual, "keep")
			convey.So(cfg.Duplicates, convey.ShouldEqual, "last")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the default timezone resolves to the local zone", func() {
			loc, err := cfg.Location()
			convey.So(err, convey.ShouldBeNil)
			convey.So(loc, convey.ShouldEqual, time.Local)
		})
	})
}

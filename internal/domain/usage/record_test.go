package usage_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/okian/vcdash/internal/domain/usage"
	. "github.com/smartystreets/goconvey/convey"
)

func decodeOne(payload string) usage.RawRecord {
	recs, err := usage.DecodeRecords(strings.NewReader("[" + payload + "]"))
	So(err, ShouldBeNil)
	So(recs, ShouldHaveLength, 1)
	return recs[0]
}

func TestRawRecordValidate(t *testing.T) {
	Convey("Given weekly usage entries decoded from JSON", t, func() {
		Convey("When the entry is complete with a string channel id", func() {
			rec, err := decodeOne(`{"date":"2025-02-18","channel_id":"123","channel_name":"general","duration_hour":1.5}`).Validate()

			Convey("Then it should validate", func() {
				So(err, ShouldBeNil)
				So(rec, ShouldResemble, usage.Record{Date: "2025-02-18", ChannelID: "123", ChannelName: "general", DurationHour: 1.5})
			})
		})

		Convey("When the channel id is a large integer", func() {
			rec, err := decodeOne(`{"date":"2025-02-18","channel_id":1234567890123456789012,"channel_name":"music","duration_hour":2}`).Validate()

			Convey("Then the literal digits should be kept", func() {
				So(err, ShouldBeNil)
				So(rec.ChannelID, ShouldEqual, "1234567890123456789012")
			})
		})

		Convey("When a zero duration is given", func() {
			rec, err := decodeOne(`{"date":"2025-02-18","channel_id":1,"channel_name":"afk","duration_hour":0}`).Validate()

			Convey("Then it is still a valid record", func() {
				So(err, ShouldBeNil)
				So(rec.DurationHour, ShouldEqual, 0)
			})
		})

		Convey("When entries are malformed", func() {
			cases := []string{
				`{"channel_id":"1","channel_name":"a","duration_hour":1}`,
				`{"date":"18/02/2025","channel_id":"1","channel_name":"a","duration_hour":1}`,
				`{"date":20250218,"channel_id":"1","channel_name":"a","duration_hour":1}`,
				`{"date":"2025-02-18","channel_name":"a","duration_hour":1}`,
				`{"date":"2025-02-18","channel_id":" ","channel_name":"a","duration_hour":1}`,
				`{"date":"2025-02-18","channel_id":1.5,"channel_name":"a","duration_hour":1}`,
				`{"date":"2025-02-18","channel_id":true,"channel_name":"a","duration_hour":1}`,
				`{"date":"2025-02-18","channel_id":"1","duration_hour":1}`,
				`{"date":"2025-02-18","channel_id":"1","channel_name":7,"duration_hour":1}`,
				`{"date":"2025-02-18","channel_id":"1","channel_name":"date","duration_hour":1}`,
				`{"date":"2025-02-18","channel_id":"1","channel_name":"a"}`,
				`{"date":"2025-02-18","channel_id":"1","channel_name":"a","duration_hour":null}`,
				`{"date":"2025-02-18","channel_id":"1","channel_name":"a","duration_hour":"1.5"}`,
				`{"date":"2025-02-18","channel_id":"1","channel_name":"a","duration_hour":-1}`,
			}

			Convey("Then each should report ErrMalformedRecord", func() {
				for _, payload := range cases {
					_, err := decodeOne(payload).Validate()
					So(errors.Is(err, usage.ErrMalformedRecord), ShouldBeTrue)
				}
			})
		})

		Convey("When built from typed values", func() {
			rec, err := usage.NewRawRecord("2025-02-20", "9", "music", 0.25).Validate()

			Convey("Then it should round-trip into a Record", func() {
				So(err, ShouldBeNil)
				So(rec.ChannelName, ShouldEqual, "music")
				So(rec.ChannelID, ShouldEqual, "9")
				So(rec.DurationHour, ShouldEqual, 0.25)
			})
		})
	})
}

func TestDecodeRecords(t *testing.T) {
	Convey("Given a weekly usage payload", t, func() {
		Convey("When it is an empty array", func() {
			recs, err := usage.DecodeRecords(strings.NewReader(`[]`))

			Convey("Then no records are returned", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldBeEmpty)
			})
		})

		Convey("When it is not an array", func() {
			_, err := usage.DecodeRecords(strings.NewReader(`{"detail":"oops"}`))

			Convey("Then it should fail with ErrDecode", func() {
				So(errors.Is(err, usage.ErrDecode), ShouldBeTrue)
			})
		})
	})
}

func TestSummaries(t *testing.T) {
	Convey("Given per-channel totals", t, func() {
		items := []usage.ChannelUsage{
			{ChannelID: 1, ChannelName: "general", DurationHour: 3},
			{ChannelID: 2, ChannelName: "music", DurationHour: 1},
		}

		Convey("When summarizing today's usage", func() {
			sum := usage.Summarize(items)

			Convey("Then the average is the per-channel mean", func() {
				So(sum.Average, ShouldEqual, 2)
				So(sum.Channels, ShouldHaveLength, 2)
			})
		})

		Convey("When summarizing nothing", func() {
			sum := usage.Summarize(nil)

			Convey("Then the average is zero and channels is an empty list", func() {
				So(sum.Average, ShouldEqual, 0)
				So(sum.Channels, ShouldNotBeNil)
			})
		})

		Convey("When ranking totals", func() {
			ranked := usage.RankTotals(items)

			Convey("Then ranks follow input order", func() {
				So(ranked[0].Rank, ShouldEqual, 1)
				So(ranked[0].ChannelName, ShouldEqual, "general")
				So(ranked[1].Rank, ShouldEqual, 2)
			})
		})
	})
}

package timecode_test

import (
	"errors"
	"testing"

	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/timecode"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given well-formed time strings", t, func() {
		Convey("Then colon-delimited values parse to centiseconds", func() {
			cases := map[string]int{
				"00:00:00": 0,
				"00:00:01": 1,
				"00:01:00": 100,
				"01:00:00": 6000,
				"02:34:56": 2*6000 + 34*100 + 56,
				"12:59:99": 12*6000 + 59*100 + 99,
			}
			for in, want := range cases {
				got, err := timecode.Parse(in)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
			}
		})

		Convey("Then the canonical period form parses identically", func() {
			a, err := timecode.Parse("02:34:56")
			So(err, ShouldBeNil)
			b, err := timecode.Parse("02:34.56")
			So(err, ShouldBeNil)
			So(a, ShouldEqual, b)
		})

		Convey("Then surrounding whitespace is tolerated", func() {
			got, err := timecode.Parse("  01:02:03 ")
			So(err, ShouldBeNil)
			So(got, ShouldEqual, 6000+2*100+3)
		})
	})

	Convey("Given malformed time strings", t, func() {
		bad := []string{
			"",
			"01:02",
			"01:02:03:04",
			"aa:02:03",
			"01:bb:03",
			"01:02:cc",
			"1.2",
			"one minute",
		}
		for _, in := range bad {
			_, err := timecode.Parse(in)
			So(err, ShouldNotBeNil)
			So(errors.Is(err, timecode.ErrFormat), ShouldBeTrue)
		}
	})
}

func TestFormat(t *testing.T) {
	Convey("Given centisecond values", t, func() {
		Convey("Then they render zero-padded as MM:SS.CC", func() {
			So(timecode.Format(0), ShouldEqual, "00:00.00")
			So(timecode.Format(1), ShouldEqual, "00:00.01")
			So(timecode.Format(100), ShouldEqual, "00:01.00")
			So(timecode.Format(6000), ShouldEqual, "01:00.00")
			So(timecode.Format(2*6000+34*100+56), ShouldEqual, "02:34.56")
		})
	})
}

func TestRoundTrip(t *testing.T) {
	Convey("Given the codec pair", t, func() {
		Convey("Then Parse(Format(n)) == n for non-negative n", func() {
			for _, n := range []int{0, 1, 99, 100, 5999, 6000, 6001, 123456, 599999} {
				got, err := timecode.Parse(timecode.Format(n))
				So(err, ShouldBeNil)
				So(got, ShouldEqual, n)
			}
		})

		Convey("Then Format(Parse(s)) == s for canonical strings", func() {
			for _, s := range []string{"00:00.00", "00:59.99", "05:12.34", "59:59.99"} {
				n, err := timecode.Parse(s)
				So(err, ShouldBeNil)
				So(timecode.Format(n), ShouldEqual, s)
			}
		})
	})
}

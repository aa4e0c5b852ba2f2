package artifact_test

import (
	"testing"

	json "github.com/goccy/go-json"

	artifact "github.com/halden/reelrank/internal/artifact"
	. "github.com/smartystreets/goconvey/convey"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

var docFields = artifact.KnownFields("name", "count")

func TestUnmarshalKeep(t *testing.T) {
	Convey("Given a document with unknown fields", t, func() {
		raw := []byte(`{"name":"a","count":2,"theme":"dark","tags":["x"]}`)

		Convey("When decoded", func() {
			var d doc
			extra, err := artifact.UnmarshalKeep(raw, &d, docFields)

			Convey("Then known fields should populate the struct", func() {
				So(err, ShouldBeNil)
				So(d.Name, ShouldEqual, "a")
				So(d.Count, ShouldEqual, 2)
			})

			Convey("And only unknown fields should be kept", func() {
				So(extra, ShouldHaveLength, 2)
				So(string(extra["theme"]), ShouldEqual, `"dark"`)
				So(string(extra["tags"]), ShouldEqual, `["x"]`)
			})
		})
	})

	Convey("Given a document with only known fields", t, func() {
		var d doc
		extra, err := artifact.UnmarshalKeep([]byte(`{"name":"a","count":2}`), &d, docFields)

		Convey("Then no extras should be reported", func() {
			So(err, ShouldBeNil)
			So(extra, ShouldBeNil)
		})
	})

	Convey("Given malformed input", t, func() {
		var d doc
		_, err := artifact.UnmarshalKeep([]byte(`{`), &d, docFields)

		Convey("Then the decode error should surface", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func TestMarshalMerge(t *testing.T) {
	Convey("Given a struct and preserved extras", t, func() {
		d := doc{Name: "a", Count: 2}
		extra := map[string]json.RawMessage{"theme": json.RawMessage(`"dark"`)}

		Convey("When encoded", func() {
			out, err := artifact.MarshalMerge(d, extra)

			Convey("Then the extras should reappear alongside known fields", func() {
				So(err, ShouldBeNil)
				So(string(out), ShouldContainSubstring, `"name":"a"`)
				So(string(out), ShouldContainSubstring, `"theme":"dark"`)
			})
		})
	})

	Convey("Given an extra that collides with a known field", t, func() {
		d := doc{Name: "current", Count: 1}
		extra := map[string]json.RawMessage{"name": json.RawMessage(`"stale"`)}

		out, err := artifact.MarshalMerge(d, extra)

		Convey("Then the known field should win", func() {
			So(err, ShouldBeNil)
			So(string(out), ShouldContainSubstring, `"name":"current"`)
			So(string(out), ShouldNotContainSubstring, "stale")
		})
	})

	Convey("Given no extras", t, func() {
		out, err := artifact.MarshalMerge(doc{Name: "a"}, nil)

		Convey("Then encoding should pass through untouched", func() {
			So(err, ShouldBeNil)
			So(string(out), ShouldEqual, `{"name":"a","count":0}`)
		})
	})
}

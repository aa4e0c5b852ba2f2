package swipe_test

import (
	"testing"

	json "github.com/goccy/go-json"

	"github.com/halden/reelrank/internal/domain/item"
	swipe "github.com/halden/reelrank/internal/domain/swipe"
	. "github.com/smartystreets/goconvey/convey"
)

func twoPersonState() *swipe.State {
	s := swipe.Empty()
	s.Movies = []item.Item{{Title: "Alien"}, {Title: "Heat"}}
	s.Persons = []string{"p1", "p2"}
	swipe.EnsureProgress(s)
	return s
}

func TestParseDecision(t *testing.T) {
	Convey("Given the accepted decision spellings", t, func() {
		for _, raw := range []string{"yes", "Y", "JA", " ja "} {
			d, err := swipe.ParseDecision(raw)
			So(err, ShouldBeNil)
			So(d, ShouldEqual, swipe.Yes)
		}
		for _, raw := range []string{"no", "N", "nein", "NEIN"} {
			d, err := swipe.ParseDecision(raw)
			So(err, ShouldBeNil)
			So(d, ShouldEqual, swipe.No)
		}
	})

	Convey("Given an unknown spelling", t, func() {
		_, err := swipe.ParseDecision("maybe")

		Convey("Then it should be rejected", func() {
			So(err, ShouldWrap, swipe.ErrInvalidDecision)
		})
	})
}

func TestEmpty(t *testing.T) {
	Convey("Given the empty state", t, func() {
		s := swipe.Empty()

		Convey("Then every collection should be allocated", func() {
			So(s.Movies, ShouldNotBeNil)
			So(s.Progress, ShouldNotBeNil)
			So(s.Persons, ShouldNotBeNil)
			So(s.Likes, ShouldNotBeNil)
			So(s.Matches, ShouldNotBeNil)
			So(s.Locked, ShouldBeFalse)
		})
	})
}

func TestEnsureProgress(t *testing.T) {
	Convey("Given registered persons without progress", t, func() {
		s := twoPersonState()

		Convey("Then each person should get the full title order", func() {
			So(s.Progress["p1"].Order, ShouldResemble, []string{"Alien", "Heat"})
			So(s.Progress["p2"].Order, ShouldResemble, []string{"Alien", "Heat"})
			So(s.Progress["p1"].Idx, ShouldEqual, 0)
		})
	})

	Convey("Given a person mid-walk when the movie list changes", t, func() {
		s := twoPersonState()
		So(swipe.Decide(s, "p1", swipe.No), ShouldBeNil)
		s.Movies = append(s.Movies, item.Item{Title: "Ran"})

		Convey("When progress is ensured again", func() {
			swipe.EnsureProgress(s)

			Convey("Then the in-flight order and cursor should stay pinned", func() {
				So(s.Progress["p1"].Order, ShouldResemble, []string{"Alien", "Heat"})
				So(s.Progress["p1"].Idx, ShouldEqual, 1)
			})
		})
	})
}

func TestDecide(t *testing.T) {
	Convey("Given a two person swipe session", t, func() {
		s := twoPersonState()

		Convey("When only one person likes the first title", func() {
			So(swipe.Decide(s, "p1", swipe.Yes), ShouldBeNil)

			Convey("Then the like should be recorded without a match", func() {
				So(s.Likes["Alien"], ShouldResemble, []string{"p1"})
				So(s.Matches, ShouldBeEmpty)
				So(s.Progress["p1"].Idx, ShouldEqual, 1)
			})
		})

		Convey("When both persons like the first title", func() {
			So(swipe.Decide(s, "p1", swipe.Yes), ShouldBeNil)
			So(swipe.Decide(s, "p2", swipe.Yes), ShouldBeNil)

			Convey("Then the title should become a match", func() {
				So(s.Matches, ShouldResemble, []string{"Alien"})
			})
		})

		Convey("When a person dislikes a title", func() {
			So(swipe.Decide(s, "p1", swipe.No), ShouldBeNil)

			Convey("Then only the cursor should move", func() {
				So(s.Likes, ShouldBeEmpty)
				So(s.Progress["p1"].Idx, ShouldEqual, 1)
				So(s.Progress["p1"].Done, ShouldBeFalse)
			})
		})

		Convey("When a person finishes their order", func() {
			So(swipe.Decide(s, "p1", swipe.No), ShouldBeNil)
			So(swipe.Decide(s, "p1", swipe.No), ShouldBeNil)

			Convey("Then they should be marked done", func() {
				So(s.Progress["p1"].Done, ShouldBeTrue)
				So(s.Progress["p1"].Idx, ShouldEqual, 2)
			})

			Convey("And a further decision should change nothing", func() {
				likesBefore := len(s.Likes)
				So(swipe.Decide(s, "p1", swipe.Yes), ShouldBeNil)
				So(s.Progress["p1"].Idx, ShouldEqual, 2)
				So(len(s.Likes), ShouldEqual, likesBefore)
			})
		})

		Convey("When an unregistered person swipes", func() {
			So(swipe.Decide(s, "guest", swipe.No), ShouldBeNil)

			Convey("Then they should get an implicit progress record", func() {
				So(s.Progress["guest"].Order, ShouldResemble, []string{"Alien", "Heat"})
				So(s.Progress["guest"].Idx, ShouldEqual, 1)
			})

			Convey("And the registered roster should be unchanged", func() {
				So(s.Persons, ShouldResemble, []string{"p1", "p2"})
			})
		})

		Convey("When a person likes the same title twice", func() {
			So(swipe.Decide(s, "p1", swipe.Yes), ShouldBeNil)
			s.Progress["p1"].Idx = 0
			So(swipe.Decide(s, "p1", swipe.Yes), ShouldBeNil)

			Convey("Then the like set should not duplicate", func() {
				So(s.Likes["Alien"], ShouldResemble, []string{"p1"})
			})
		})

		Convey("When the person id is blank", func() {
			err := swipe.Decide(s, "  ", swipe.Yes)

			Convey("Then it should be rejected", func() {
				So(err, ShouldWrap, swipe.ErrEmptyPerson)
			})
		})
	})

	Convey("Given a session with no registered persons", t, func() {
		s := swipe.Empty()
		s.Movies = []item.Item{{Title: "Alien"}}

		Convey("When a lone swiper likes a title", func() {
			So(swipe.Decide(s, "solo", swipe.Yes), ShouldBeNil)

			Convey("Then a single like should already be a match", func() {
				So(s.Matches, ShouldResemble, []string{"Alien"})
			})
		})
	})
}

func TestConfirm(t *testing.T) {
	Convey("Given a session with accumulated likes and matches", t, func() {
		s := twoPersonState()
		So(swipe.Decide(s, "p1", swipe.Yes), ShouldBeNil)
		So(swipe.Decide(s, "p2", swipe.Yes), ShouldBeNil)
		So(s.Matches, ShouldNotBeEmpty)

		Convey("When the roster is confirmed", func() {
			movies := []item.Item{{Title: "Ran"}, {Title: "Heat"}}
			swipe.Confirm(s, movies, []string{"p1", "p3"}, nil)

			Convey("Then the state should lock with the new roster", func() {
				So(s.Locked, ShouldBeTrue)
				So(s.Persons, ShouldResemble, []string{"p1", "p3"})
				So(s.Movies, ShouldResemble, movies)
			})

			Convey("And likes and matches should be cleared", func() {
				So(s.Likes, ShouldBeEmpty)
				So(s.Matches, ShouldBeEmpty)
			})

			Convey("And every person should get fresh progress", func() {
				So(s.Progress["p1"].Order, ShouldResemble, []string{"Ran", "Heat"})
				So(s.Progress["p3"].Order, ShouldResemble, []string{"Ran", "Heat"})
			})
		})
	})
}

func TestState_JSONRoundTrip(t *testing.T) {
	Convey("Given an artifact with fields this build does not know", t, func() {
		raw := []byte(`{"movies":[{"title":"Alien","display":"Alien","image":""}],"locked":true,"sessionTheme":"dark"}`)

		Convey("When decoded and encoded again", func() {
			var s swipe.State
			So(json.Unmarshal(raw, &s), ShouldBeNil)
			So(s.Locked, ShouldBeTrue)
			So(s.Movies[0].Title, ShouldEqual, "Alien")

			out, err := json.Marshal(&s)
			So(err, ShouldBeNil)

			Convey("Then the unknown field should survive the round trip", func() {
				So(string(out), ShouldContainSubstring, `"sessionTheme":"dark"`)
			})

			Convey("And missing collections should encode as empty, not null", func() {
				So(string(out), ShouldContainSubstring, `"likes":{}`)
				So(string(out), ShouldContainSubstring, `"matches":[]`)
			})
		})
	})
}

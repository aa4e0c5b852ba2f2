package service_test

import (
	"context"
	"testing"

	"github.com/halden/reelrank/internal/adapters/repository"
	service "github.com/halden/reelrank/internal/app"
	"github.com/halden/reelrank/internal/domain/item"
	"github.com/halden/reelrank/internal/domain/swipe"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestService(t *testing.T) *service.Service {
	t.Helper()
	store := repository.NewFileStore(repository.WithDataDir(t.TempDir()))
	svc := service.New(service.WithStore(store))
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func seedSession(t *testing.T, svc *service.Service, titles ...string) {
	t.Helper()
	items := make([]item.Item, 0, len(titles))
	for _, title := range titles {
		items = append(items, item.Item{Title: title})
	}
	_, err := svc.Generate(context.Background(), items, 2)
	So(err, ShouldBeNil)
}

func TestService_Generate(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := newTestService(t)

		Convey("When a session is generated with duplicate titles", func() {
			sess, err := svc.Generate(ctx, []item.Item{
				{Title: "Alien"}, {Title: "alien"}, {Title: "Heat"},
			}, 2)

			Convey("Then the session should hold deduplicated items at the prior", func() {
				So(err, ShouldBeNil)
				So(sess.Movies, ShouldHaveLength, 2)
				So(sess.Ratings["Alien"].Mu, ShouldEqual, 25.0)
				So(sess.PersonCount, ShouldEqual, 2)
			})

			Convey("And the session should be durable", func() {
				loaded, err := svc.State(ctx)
				So(err, ShouldBeNil)
				So(loaded.Movies, ShouldHaveLength, 2)
			})
		})

		Convey("When generated with a non-positive person count", func() {
			sess, err := svc.Generate(ctx, []item.Item{{Title: "Alien"}}, 0)

			Convey("Then the default person count should apply", func() {
				So(err, ShouldBeNil)
				So(sess.PersonCount, ShouldEqual, 1)
			})
		})
	})
}

func TestService_Vote(t *testing.T) {
	ctx := context.Background()

	Convey("Given a session over two items", t, func() {
		svc := newTestService(t)
		seedSession(t, svc, "Alien", "Heat")

		Convey("When a vote is recorded", func() {
			sess, err := svc.Vote(ctx, "Alien", "Heat", "person1")

			Convey("Then the ratings should move apart", func() {
				So(err, ShouldBeNil)
				So(sess.Ratings["Alien"].Mu, ShouldBeGreaterThan, 25.0)
				So(sess.Ratings["Heat"].Mu, ShouldBeLessThan, 25.0)
			})

			Convey("And the accounting should advance", func() {
				So(sess.TotalVotes, ShouldEqual, 1)
				So(sess.ComparisonCount["person1"], ShouldEqual, 1)
				So(sess.Ratings["Alien"].Wins, ShouldEqual, 1)
				So(sess.Ratings["Heat"].Wins, ShouldEqual, 0)
			})

			Convey("And coverage should count the pair once", func() {
				So(sess.Coverage.Global.Covered, ShouldEqual, 1)
				So(sess.Coverage.Global.Ratio, ShouldEqual, 1.0)
			})
		})

		Convey("When the person is omitted", func() {
			sess, err := svc.Vote(ctx, "Alien", "Heat", "")

			Convey("Then the default rater should be charged", func() {
				So(err, ShouldBeNil)
				So(sess.ComparisonCount["person1"], ShouldEqual, 1)
			})
		})

		Convey("When the winner is unknown", func() {
			_, err := svc.Vote(ctx, "Ran", "Heat", "person1")

			Convey("Then the vote should be rejected whole", func() {
				So(err, ShouldWrap, service.ErrUnknownTitle)

				sess, loadErr := svc.State(ctx)
				So(loadErr, ShouldBeNil)
				So(sess.TotalVotes, ShouldEqual, 0)
				So(sess.Ratings["Heat"].Mu, ShouldEqual, 25.0)
			})
		})

		Convey("When an item is compared against itself", func() {
			_, err := svc.Vote(ctx, "Alien", "Alien", "person1")

			Convey("Then the vote should be rejected", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestService_Resets(t *testing.T) {
	ctx := context.Background()

	Convey("Given a session with recorded votes", t, func() {
		svc := newTestService(t)
		seedSession(t, svc, "Alien", "Heat")
		_, err := svc.Vote(ctx, "Alien", "Heat", "person1")
		So(err, ShouldBeNil)

		Convey("When ratings are reset", func() {
			sess, err := svc.ResetRatings(ctx, 3)

			Convey("Then ratings should return to the prior with the items kept", func() {
				So(err, ShouldBeNil)
				So(sess.Movies, ShouldHaveLength, 2)
				So(sess.Ratings["Alien"].Mu, ShouldEqual, 25.0)
				So(sess.Ratings["Alien"].Games, ShouldEqual, 0)
				So(sess.TotalVotes, ShouldEqual, 0)
				So(sess.PersonCount, ShouldEqual, 3)
			})

			Convey("And coverage should be empty again", func() {
				So(sess.Coverage.Global.Covered, ShouldEqual, 0)
			})
		})

		Convey("When everything is reset", func() {
			So(svc.ResetAll(ctx), ShouldBeNil)

			Convey("Then the session should be empty", func() {
				sess, err := svc.State(ctx)
				So(err, ShouldBeNil)
				So(sess.Movies, ShouldBeEmpty)
				So(sess.TotalVotes, ShouldEqual, 0)
			})

			Convey("And the swipe state should be empty", func() {
				st, err := svc.SwipeState(ctx)
				So(err, ShouldBeNil)
				So(st.Movies, ShouldBeEmpty)
				So(st.Locked, ShouldBeFalse)
			})
		})
	})
}

func TestService_ConfirmRanking(t *testing.T) {
	ctx := context.Background()

	Convey("Given a live session", t, func() {
		svc := newTestService(t)
		seedSession(t, svc, "Alien")

		Convey("When the ranking is confirmed and then unconfirmed", func() {
			sess, err := svc.ConfirmRanking(ctx, true)
			So(err, ShouldBeNil)
			So(sess.RankerConfirmed, ShouldBeTrue)

			sess, err = svc.ConfirmRanking(ctx, false)
			So(err, ShouldBeNil)
			So(sess.RankerConfirmed, ShouldBeFalse)
		})
	})
}

func TestService_Rankings(t *testing.T) {
	ctx := context.Background()

	Convey("Given a session with a decisive history", t, func() {
		svc := newTestService(t)
		seedSession(t, svc, "Alien", "Heat", "Ran")
		for i := 0; i < 5; i++ {
			_, err := svc.Vote(ctx, "Alien", "Heat", "person1")
			So(err, ShouldBeNil)
			_, err = svc.Vote(ctx, "Heat", "Ran", "person1")
			So(err, ShouldBeNil)
		}

		Convey("When rankings are read", func() {
			ranked, err := svc.Rankings(ctx)

			Convey("Then items should order best first by conservative score", func() {
				So(err, ShouldBeNil)
				So(ranked, ShouldHaveLength, 3)
				So(ranked[0].Item.Title, ShouldEqual, "Alien")
				So(ranked[2].Item.Title, ShouldEqual, "Ran")
				So(ranked[0].Score, ShouldBeGreaterThan, ranked[1].Score)
				So(ranked[1].Score, ShouldBeGreaterThan, ranked[2].Score)
			})
		})
	})

	Convey("Given a fresh session with no votes", t, func() {
		svc := newTestService(t)
		seedSession(t, svc, "Beta", "Alpha")

		Convey("Then equal scores should fall back to title order", func() {
			ranked, err := svc.Rankings(ctx)
			So(err, ShouldBeNil)
			So(ranked[0].Item.Title, ShouldEqual, "Alpha")
			So(ranked[1].Item.Title, ShouldEqual, "Beta")
		})
	})
}

func TestService_Swipe(t *testing.T) {
	ctx := context.Background()

	Convey("Given a confirmed swipe roster", t, func() {
		svc := newTestService(t)
		movies := []item.Item{{Title: "Alien"}, {Title: "Heat"}}
		st, err := svc.SwipeConfirm(ctx, movies, []string{"p1", "p2"}, nil)
		So(err, ShouldBeNil)
		So(st.Locked, ShouldBeTrue)

		Convey("When both persons like the first title", func() {
			_, err := svc.SwipeAction(ctx, "p1", "yes")
			So(err, ShouldBeNil)
			st, err := svc.SwipeAction(ctx, "p2", "ja")
			So(err, ShouldBeNil)

			Convey("Then the title should match", func() {
				So(st.Matches, ShouldResemble, []string{"Alien"})
			})
		})

		Convey("When a decision cannot be parsed", func() {
			_, err := svc.SwipeAction(ctx, "p1", "maybe")

			Convey("Then it should be rejected without touching the state", func() {
				So(err, ShouldWrap, swipe.ErrInvalidDecision)

				st, loadErr := svc.SwipeState(ctx)
				So(loadErr, ShouldBeNil)
				So(st.Progress["p1"].Idx, ShouldEqual, 0)
			})
		})

		Convey("When the swipe state is reset", func() {
			_, err := svc.SwipeAction(ctx, "p1", "yes")
			So(err, ShouldBeNil)

			st, err := svc.SwipeReset(ctx)
			So(err, ShouldBeNil)

			Convey("Then everything should be empty and unlocked", func() {
				So(st.Movies, ShouldBeEmpty)
				So(st.Likes, ShouldBeEmpty)
				So(st.Locked, ShouldBeFalse)
			})
		})
	})
}

func TestService_Snapshots(t *testing.T) {
	ctx := context.Background()

	Convey("Given a live session", t, func() {
		svc := newTestService(t)
		seedSession(t, svc, "Alien", "Heat")

		Convey("When a snapshot guards a voting spree", func() {
			info, err := svc.CreateSnapshot(ctx, "clean slate")
			So(err, ShouldBeNil)
			So(info.Name, ShouldEqual, "clean_slate")

			_, err = svc.Vote(ctx, "Alien", "Heat", "person1")
			So(err, ShouldBeNil)

			Convey("Then restoring should roll the votes back", func() {
				sess, err := svc.LoadSnapshot(ctx, "clean slate")
				So(err, ShouldBeNil)
				So(sess.TotalVotes, ShouldEqual, 0)
			})

			Convey("And the snapshot should be listed", func() {
				infos, err := svc.ListSnapshots(ctx)
				So(err, ShouldBeNil)
				So(infos, ShouldHaveLength, 1)
				So(infos[0].Name, ShouldEqual, "clean_slate")
			})
		})
	})
}

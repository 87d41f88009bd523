package scorer_test

import (
	"errors"
	"testing"

	"github.com/okian/deuce/internal/domain/model"
	"github.com/okian/deuce/internal/domain/rules"
	"github.com/okian/deuce/internal/domain/scorer"
	. "github.com/smartystreets/goconvey/convey"
)

func newScorer(mt model.MatchType) *scorer.Scorer {
	s, err := scorer.New(mt)
	So(err, ShouldBeNil)
	return s
}

func points(s *scorer.Scorer, isHome bool, n int) {
	for i := 0; i < n; i++ {
		_, err := s.IncreaseScore(isHome)
		So(err, ShouldBeNil)
	}
}

func games(s *scorer.Scorer, isHome bool, n int) {
	points(s, isHome, 4*n)
}

func TestScorer_EndToEnd(t *testing.T) {
	Convey("Given a fresh Davis Cup doubles scorer", t, func() {
		s := newScorer(model.DoublesDavisCup)

		Convey("Then the score should read love all", func() {
			So(s.Score(), ShouldEqual, "0:0-0:0")
		})

		Convey("When home wins a point", func() {
			points(s, true, 1)
			So(s.Score(), ShouldEqual, "0:0-15:0")
		})

		Convey("When away wins a point", func() {
			points(s, false, 1)
			So(s.Score(), ShouldEqual, "0:0-0:15")
		})

		Convey("When home wins four points", func() {
			points(s, true, 4)
			So(s.Score(), ShouldEqual, "1:0-0:0")
		})

		Convey("When home wins six games", func() {
			games(s, true, 6)

			Convey("Then the match should move to the second set", func() {
				So(s.Score(), ShouldEqual, "6:0;0:0-0:0")
				So(s.State().CurrentSetIndex, ShouldEqual, 1)
				So(s.State().HomeScore, ShouldEqual, 1)
			})
		})

		Convey("When home wins two straight sets", func() {
			games(s, true, 12)

			Convey("Then home should win the match", func() {
				side, ok := s.Winner()
				So(ok, ShouldBeTrue)
				So(side, ShouldEqual, model.SideHome)
				So(s.Finished(), ShouldBeTrue)
				So(s.Score(), ShouldEqual, "6:0;6:0")
			})

			Convey("And further points should change nothing", func() {
				before := s.State()
				score := s.Score()
				out, err := s.IncreaseScore(true)
				So(err, ShouldBeNil)
				So(out.Applied, ShouldBeFalse)
				_, _ = s.IncreaseScore(false)
				So(s.Score(), ShouldEqual, score)
				So(s.State(), ShouldResemble, before)
			})
		})

		Convey("When both sides trade games to 6-6", func() {
			for i := 0; i < 12; i++ {
				games(s, i%2 == 0, 1)
			}

			Convey("Then a tiebreak should start", func() {
				So(s.Score(), ShouldEqual, "6:6-0:0")
				So(s.State().CurrentSet().CurrentGame.IsTiebreak, ShouldBeTrue)
			})

			Convey("And tiebreak points should be counted numerically", func() {
				points(s, true, 1)
				So(s.Score(), ShouldEqual, "6:6-1:0")
			})

			Convey("And winning the tiebreak should win the set 7-6", func() {
				points(s, false, 7)
				So(s.Score(), ShouldEqual, "6:7;0:0-0:0")
				So(s.State().AwayScore, ShouldEqual, 1)
			})

			Convey("And a tiebreak at 6-6 points should need a two point lead", func() {
				for i := 0; i < 6; i++ {
					points(s, true, 1)
					points(s, false, 1)
				}
				points(s, true, 1)
				So(s.Score(), ShouldEqual, "6:6-7:6")
				points(s, true, 1)
				So(s.Score(), ShouldEqual, "7:6;0:0-0:0")
			})
		})

		Convey("When a set goes to 7-5", func() {
			for i := 0; i < 10; i++ {
				games(s, i%2 == 0, 1)
			}
			games(s, true, 2)

			Convey("Then the set should be won without a tiebreak", func() {
				So(s.Score(), ShouldEqual, "7:5;0:0-0:0")
			})
		})
	})
}

func TestScorer_MatchFormats(t *testing.T) {
	Convey("Given a singles grand slam", t, func() {
		s := newScorer(model.SinglesGrandSlam)

		Convey("When home wins two sets", func() {
			games(s, true, 12)

			Convey("Then the match should continue", func() {
				_, ok := s.Winner()
				So(ok, ShouldBeFalse)
				So(s.Score(), ShouldEqual, "6:0;6:0;0:0-0:0")
			})

			Convey("And a third set should decide it", func() {
				games(s, true, 6)
				side, ok := s.Winner()
				So(ok, ShouldBeTrue)
				So(side, ShouldEqual, model.SideHome)
			})
		})

		Convey("When the match goes the full five sets", func() {
			games(s, true, 6)
			games(s, false, 6)
			games(s, true, 6)
			games(s, false, 6)
			games(s, false, 6)

			Convey("Then away should win in the final set", func() {
				side, ok := s.Winner()
				So(ok, ShouldBeTrue)
				So(side, ShouldEqual, model.SideAway)
				So(s.Score(), ShouldEqual, "6:0;0:6;6:0;0:6;0:6")
				So(s.State().CurrentSetIndex, ShouldEqual, 4)
			})
		})
	})

	Convey("Given tour doubles with the deciding point", t, func() {
		s := newScorer(model.DoublesATPTour)
		points(s, true, 3)
		points(s, false, 3)
		So(s.Score(), ShouldEqual, "0:0-40:40")

		Convey("When away wins the next point", func() {
			points(s, false, 1)

			Convey("Then away should take the game outright", func() {
				So(s.Score(), ShouldEqual, "0:1-0:0")
			})
		})
	})

	Convey("Given Davis Cup doubles without the deciding point", t, func() {
		s := newScorer(model.DoublesDavisCup)
		points(s, true, 3)
		points(s, false, 3)

		Convey("When away wins the next point", func() {
			points(s, false, 1)

			Convey("Then away should only have the advantage", func() {
				So(s.Score(), ShouldEqual, "0:0-40:Ad")
			})

			Convey("And losing the next point should return to deuce", func() {
				points(s, true, 1)
				So(s.Score(), ShouldEqual, "0:0-40:40")
			})
		})
	})

	Convey("Given tour doubles at one set all", t, func() {
		s := newScorer(model.DoublesATPTour)
		games(s, true, 6)
		games(s, false, 6)
		for i := 0; i < 12; i++ {
			games(s, i%2 == 0, 1)
		}

		Convey("Then the final set should reach a regular tiebreak at 6-6", func() {
			So(s.Score(), ShouldEqual, "6:0;0:6;6:6-0:0")
		})

		Convey("When home wins seven tiebreak points", func() {
			points(s, true, 7)

			Convey("Then home should win the match 7-6 in the final set", func() {
				side, ok := s.Winner()
				So(ok, ShouldBeTrue)
				So(side, ShouldEqual, model.SideHome)
				So(s.Score(), ShouldEqual, "6:0;0:6;7:6")
			})
		})
	})

	Convey("Given an unknown match type", t, func() {
		_, err := scorer.New(model.MatchType("PADEL"))
		So(errors.Is(err, rules.ErrUnrecognizedMatchType), ShouldBeTrue)
	})
}

func TestScorer_Outcome(t *testing.T) {
	Convey("Given a fresh scorer", t, func() {
		s := newScorer(model.SinglesATPFinals)

		Convey("When a point does not end the game", func() {
			out, err := s.IncreaseScore(false)
			So(err, ShouldBeNil)
			So(out, ShouldResemble, scorer.Outcome{Applied: true})
		})

		Convey("When a point ends a game", func() {
			points(s, false, 3)
			out, err := s.IncreaseScore(false)
			So(err, ShouldBeNil)
			So(out.GameCompleted, ShouldBeTrue)
			So(out.GameWinner, ShouldEqual, model.SideAway)
			So(out.SetCompleted, ShouldBeFalse)
		})

		Convey("When a point ends the match", func() {
			games(s, true, 11)
			points(s, true, 3)
			out, err := s.IncreaseScore(true)
			So(err, ShouldBeNil)
			So(out.SetCompleted, ShouldBeTrue)
			So(out.MatchCompleted, ShouldBeTrue)
		})
	})
}

func TestScorer_Undo(t *testing.T) {
	Convey("Given a fresh scorer", t, func() {
		s := newScorer(model.DoublesDavisCup)
		initial := s.State()

		Convey("When undoing with no points played", func() {
			So(s.Undo(), ShouldBeFalse)
			So(s.State(), ShouldResemble, initial)
		})

		Convey("When undoing a single point", func() {
			points(s, true, 1)
			So(s.Undo(), ShouldBeTrue)
			So(s.Score(), ShouldEqual, "0:0-0:0")
			So(s.Undo(), ShouldBeFalse)
		})

		Convey("When undoing every point of a long match", func() {
			seq := []bool{true, true, false, true, false, false, false, true}
			n := 0
			for i := 0; i < 40; i++ {
				for _, p := range seq {
					_, err := s.IncreaseScore(p)
					So(err, ShouldBeNil)
					n++
				}
			}
			So(s.Points(), ShouldBeLessThanOrEqualTo, n)

			for s.Undo() {
			}

			Convey("Then the exact initial state should be restored", func() {
				So(s.State(), ShouldResemble, initial)
				So(s.Points(), ShouldEqual, 0)
			})
		})

		Convey("When undoing across a set boundary", func() {
			games(s, true, 6)
			So(s.Score(), ShouldEqual, "6:0;0:0-0:0")
			So(s.Undo(), ShouldBeTrue)

			Convey("Then the set should be reopened at 5-0, 40-0", func() {
				So(s.Score(), ShouldEqual, "5:0-40:0")
				So(s.State().HomeScore, ShouldEqual, 0)
				So(s.State().CurrentSetIndex, ShouldEqual, 0)
			})
		})

		Convey("When undoing the winning point of a match", func() {
			games(s, false, 12)
			So(s.Finished(), ShouldBeTrue)
			So(s.Undo(), ShouldBeTrue)

			Convey("Then the match should be live again", func() {
				So(s.Finished(), ShouldBeFalse)
				_, ok := s.Winner()
				So(ok, ShouldBeFalse)
				So(s.Score(), ShouldEqual, "0:6;0:5-0:40")
			})
		})
	})
}

func TestScorer_StateIsolation(t *testing.T) {
	Convey("Given a scorer with history", t, func() {
		s := newScorer(model.DoublesDavisCup)
		games(s, true, 2)

		Convey("When a caller mutates a returned state", func() {
			st := s.State()
			st.Sets[0].HomeScore = 99
			st.Sets[0].Games[0].AwayScore = 99

			Convey("Then the scorer should be unaffected", func() {
				So(s.Score(), ShouldEqual, "2:0-0:0")
				So(s.State().Sets[0].Games[0].AwayScore, ShouldEqual, 0)
			})
		})
	})
}

func TestReplay(t *testing.T) {
	Convey("Given a list of point winners", t, func() {
		seq := []model.Side{model.SideHome, model.SideHome, model.SideAway}

		Convey("When replayed", func() {
			s, err := scorer.Replay(model.DoublesDavisCup, seq)
			So(err, ShouldBeNil)
			So(s.Score(), ShouldEqual, "0:0-30:15")
			So(s.Points(), ShouldEqual, 3)
		})

		Convey("When a point has no side", func() {
			_, err := scorer.Replay(model.DoublesDavisCup, []model.Side{model.SideNone})
			So(err, ShouldNotBeNil)
		})
	})
}

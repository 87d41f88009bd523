package rules_test

import (
	"errors"
	"testing"

	"github.com/okian/deuce/internal/domain/model"
	"github.com/okian/deuce/internal/domain/rules"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCreateMatchConfig(t *testing.T) {
	Convey("Given every supported match type", t, func() {
		for _, mt := range rules.MatchTypes() {
			cfg, err := rules.CreateMatchConfig(mt)

			Convey("Then "+string(mt)+" should start a fresh match", func() {
				So(err, ShouldBeNil)
				So(cfg.MatchType, ShouldEqual, mt)
				So(cfg.InitialState.Rules, ShouldResemble, cfg.Rules)
				So(len(cfg.InitialState.Sets), ShouldEqual, cfg.Rules.BestOf)
				So(cfg.InitialState.CurrentSetIndex, ShouldEqual, 0)
				So(cfg.InitialState.IsFinished, ShouldBeFalse)
				So(cfg.Rules.BestOf%2, ShouldEqual, 1)
				for _, s := range cfg.InitialState.Sets {
					So(s.HomeScore, ShouldEqual, 0)
					So(s.AwayScore, ShouldEqual, 0)
					So(s.CurrentGame, ShouldResemble, model.GameState{})
					So(s.Games, ShouldBeEmpty)
				}
			})
		}
	})

	Convey("Given the rule bundles", t, func() {
		expect := map[model.MatchType]model.ScoringRules{
			model.SinglesGrandSlam: {BestOf: 5, MatchTiebreakPoints: 10, RegularTiebreakPoints: 7},
			model.SinglesATPFinals: {BestOf: 3, MatchTiebreakPoints: 10, RegularTiebreakPoints: 7},
			model.DoublesDavisCup:  {BestOf: 3, MatchTiebreakPoints: 10, RegularTiebreakPoints: 7},
			model.DoublesATPTour:   {BestOf: 3, FinalSetMatchTiebreak: true, MatchTiebreakPoints: 10, RegularTiebreakPoints: 7, DecidingPoint: true},
			model.DoublesGrandSlam: {BestOf: 3, FinalSetMatchTiebreak: true, MatchTiebreakPoints: 10, RegularTiebreakPoints: 7},
		}

		Convey("Then each type should carry its fixed rules", func() {
			for mt, want := range expect {
				got, err := rules.Rules(mt)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, want)
			}
		})
	})

	Convey("Given an unknown match type", t, func() {
		_, err := rules.CreateMatchConfig(model.MatchType("MIXED_EXHIBITION"))

		Convey("Then creation should fail with ErrUnrecognizedMatchType", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, rules.ErrUnrecognizedMatchType), ShouldBeTrue)
		})
	})

	Convey("Given two configs for the same type", t, func() {
		a, _ := rules.CreateMatchConfig(model.DoublesDavisCup)
		b, _ := rules.CreateMatchConfig(model.DoublesDavisCup)

		Convey("Then they should not share set storage", func() {
			a.InitialState.Sets[0].HomeScore = 3
			So(b.InitialState.Sets[0].HomeScore, ShouldEqual, 0)
		})
	})
}

func TestParseMatchType(t *testing.T) {
	Convey("Given match type identifiers from clients", t, func() {
		Convey("When the identifier is lower case with spaces", func() {
			mt, err := rules.ParseMatchType("  doubles_atptour ")
			So(err, ShouldBeNil)
			So(mt, ShouldEqual, model.DoublesATPTour)
		})

		Convey("When the identifier is unknown", func() {
			_, err := rules.ParseMatchType("beach_tennis")
			So(errors.Is(err, rules.ErrUnrecognizedMatchType), ShouldBeTrue)
		})
	})
}

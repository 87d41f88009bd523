package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/okian/deuce/internal/adapters/repository"
	service "github.com/okian/deuce/internal/app"
	"github.com/okian/deuce/internal/domain/model"
	"github.com/okian/deuce/internal/domain/rules"
	"github.com/okian/deuce/internal/domain/types"
	"github.com/okian/deuce/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type recordingPublisher struct {
	mu    sync.Mutex
	views []types.MatchView
}

func (p *recordingPublisher) Publish(v types.MatchView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.views = append(p.views, v)
}

func (p *recordingPublisher) Viewers() int { return 3 }

func (p *recordingPublisher) scores() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.views))
	for i, v := range p.views {
		out[i] = v.Score
	}
	return out
}

func startService(opts ...service.Option) *service.Service {
	svc := service.New(append([]service.Option{service.WithWorkerCount(2)}, opts...)...)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithWorkerCount(3), service.WithQueueSize(50))

		Convey("Then stats should report it stopped", func() {
			So(svc.GetStats(), ShouldResemble, types.Stats{WorkerCount: 3})
			So(svc.Size(), ShouldEqual, 0)
		})

		Convey("When started", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Start(context.Background()), ShouldBeNil)

			Convey("Then stats should describe the running pipeline", func() {
				stats := svc.GetStats()
				So(stats.Started, ShouldBeTrue)
				So(stats.QueueCapacity, ShouldEqual, 150)
				So(stats.Matches, ShouldEqual, 0)
			})

			Convey("And stopping should mark it stopped", func() {
				svc.Stop()
				So(svc.GetStats().Started, ShouldBeFalse)
				svc.Stop()
			})
		})
	})
}

func TestService_Matches(t *testing.T) {
	Convey("Given a started service with a publisher", t, func() {
		pub := &recordingPublisher{}
		svc := startService(service.WithPublisher(pub))
		defer svc.Stop()
		ctx := context.Background()

		Convey("When creating a match by a lower case type name", func() {
			v, err := svc.CreateMatch(ctx, "doubles_atptour")
			So(err, ShouldBeNil)

			Convey("Then a fresh view should be returned and published", func() {
				So(v.ID, ShouldNotBeEmpty)
				So(v.MatchType, ShouldEqual, model.DoublesATPTour)
				So(v.Score, ShouldEqual, "0:0-0:0")
				So(v.Sets, ShouldResemble, []types.SetScore{{}})
				So(v.Winner, ShouldEqual, model.SideNone)
				So(pub.scores(), ShouldResemble, []string{"0:0-0:0"})
			})

			Convey("And it should be listed and fetchable", func() {
				list, err := svc.Matches(ctx, 10)
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 1)
				got, err := svc.Match(ctx, v.ID)
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, v.ID)
			})
		})

		Convey("When creating an unknown match type", func() {
			_, err := svc.CreateMatch(ctx, "PICKLEBALL")
			So(errors.Is(err, rules.ErrUnrecognizedMatchType), ShouldBeTrue)
		})

		Convey("When fetching an unknown match", func() {
			_, err := svc.Match(ctx, "missing")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When listing with a bad limit", func() {
			_, err := svc.Matches(ctx, 0)
			So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
		})
	})
}

func TestService_Scoring(t *testing.T) {
	Convey("Given a Davis Cup match", t, func() {
		pub := &recordingPublisher{}
		svc := startService(service.WithPublisher(pub))
		defer svc.Stop()
		ctx := context.Background()
		m, err := svc.CreateMatch(ctx, string(model.DoublesDavisCup))
		So(err, ShouldBeNil)

		Convey("When points are scored", func() {
			_, err := svc.ScorePoint(ctx, m.ID, model.SideHome)
			So(err, ShouldBeNil)
			v, err := svc.ScorePoint(ctx, m.ID, model.SideAway)
			So(err, ShouldBeNil)

			Convey("Then the view should follow the score", func() {
				So(v.Score, ShouldEqual, "0:0-15:15")
				So(v.Points, ShouldEqual, 2)
				So(v.CurrentGame, ShouldResemble, model.GameState{HomeScore: 1, AwayScore: 1})
				So(pub.scores(), ShouldResemble, []string{"0:0-0:0", "0:0-15:0", "0:0-15:15"})
			})

			Convey("And undo should take the last one back", func() {
				v, err := svc.Undo(ctx, m.ID)
				So(err, ShouldBeNil)
				So(v.Score, ShouldEqual, "0:0-15:0")
			})
		})

		Convey("When undoing at the start of the match", func() {
			_, err := svc.Undo(ctx, m.ID)
			So(errors.Is(err, service.ErrNothingToUndo), ShouldBeTrue)
		})

		Convey("When scoring without a side", func() {
			_, err := svc.ScorePoint(ctx, m.ID, model.SideNone)
			So(errors.Is(err, service.ErrInvalidSide), ShouldBeTrue)
		})

		Convey("When home wins two sets", func() {
			var v types.MatchView
			for i := 0; i < 48; i++ {
				v, err = svc.ScorePoint(ctx, m.ID, model.SideHome)
				So(err, ShouldBeNil)
			}

			Convey("Then the match should be finished with a winner", func() {
				So(v.Finished, ShouldBeTrue)
				So(v.Winner, ShouldEqual, model.SideHome)
				So(v.Score, ShouldEqual, "6:0;6:0")
				So(v.Sets, ShouldResemble, []types.SetScore{{Home: 6}, {Home: 6}})
			})

			Convey("And more points should not change it", func() {
				again, err := svc.ScorePoint(ctx, m.ID, model.SideAway)
				So(err, ShouldBeNil)
				So(again.Score, ShouldEqual, "6:0;6:0")
				So(again.Points, ShouldEqual, 48)
			})

			Convey("And stats should count it as inactive", func() {
				stats := svc.GetStats()
				So(stats.Matches, ShouldEqual, 1)
				So(stats.LiveViewers, ShouldEqual, 3)
			})
		})
	})
}

func TestService_ApplyEvent(t *testing.T) {
	Convey("Given a match", t, func() {
		svc := startService()
		defer svc.Stop()
		ctx := context.Background()
		m, _ := svc.CreateMatch(ctx, string(model.SinglesATPFinals))

		Convey("When point and undo events are applied", func() {
			So(svc.ApplyEvent(ctx, model.Event{MatchID: m.ID, Kind: model.EventPoint, Side: model.SideAway}), ShouldBeNil)
			So(svc.ApplyEvent(ctx, model.Event{MatchID: m.ID, Kind: model.EventPoint, Side: model.SideAway}), ShouldBeNil)
			So(svc.ApplyEvent(ctx, model.Event{MatchID: m.ID, Kind: model.EventUndo}), ShouldBeNil)

			Convey("Then the match should reflect them", func() {
				v, _ := svc.Match(ctx, m.ID)
				So(v.Score, ShouldEqual, "0:0-0:15")
			})
		})

		Convey("When an event has an unknown kind", func() {
			err := svc.ApplyEvent(ctx, model.Event{MatchID: m.ID, Kind: "serve"})
			So(errors.Is(err, service.ErrInvalidEvent), ShouldBeTrue)
		})

		Convey("When an event targets an unknown match", func() {
			err := svc.ApplyEvent(ctx, model.Event{MatchID: "nope", Kind: model.EventPoint, Side: model.SideHome})
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestService_Dedupe(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startService(service.WithDedupeSize(2))
		defer svc.Stop()
		ctx := context.Background()

		Convey("When the same event id is seen twice", func() {
			So(svc.SeenAndRecord(ctx, "event-1"), ShouldBeFalse)
			So(svc.SeenAndRecord(ctx, "event-1"), ShouldBeTrue)
			So(svc.Size(), ShouldEqual, 1)

			Convey("And unrecorded", func() {
				svc.Unrecord(ctx, "event-1")
				So(svc.SeenAndRecord(ctx, "event-1"), ShouldBeFalse)
			})
		})
	})
}

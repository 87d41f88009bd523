package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	service "github.com/okian/deuce/internal/app"
	"github.com/okian/deuce/internal/domain/model"
	"github.com/okian/deuce/internal/domain/scorer"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service with several workers", t, func() {
		pub := &recordingPublisher{}
		svc := service.New(
			service.WithWorkerCount(4),
			service.WithQueueSize(5000),
			service.WithDedupeSize(5000),
			service.WithSnapshotInterval(10*time.Millisecond),
			service.WithPublisher(pub),
		)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When point events for several matches are submitted asynchronously", func() {
			seq := []model.Side{
				model.SideHome, model.SideAway, model.SideHome, model.SideHome,
				model.SideAway, model.SideAway, model.SideAway, model.SideHome,
			}
			var ids []string
			for m := 0; m < 5; m++ {
				v, err := svc.CreateMatch(ctx, string(model.SinglesGrandSlam))
				So(err, ShouldBeNil)
				ids = append(ids, v.ID)
			}

			var points []model.Side
			for round := 0; round < 30; round++ {
				for i, side := range seq {
					points = append(points, side)
					for _, id := range ids {
						e := model.Event{
							EventID: fmt.Sprintf("%s-%d-%d", id, round, i),
							MatchID: id,
							Kind:    model.EventPoint,
							Side:    side,
						}
						So(svc.SeenAndRecord(ctx, e.EventID), ShouldBeFalse)
						So(svc.Enqueue(ctx, e), ShouldBeTrue)
					}
				}
			}

			// A replayed id is a duplicate and never reaches the queue.
			So(svc.SeenAndRecord(ctx, fmt.Sprintf("%s-0-0", ids[0])), ShouldBeTrue)

			svc.Stop()

			Convey("Then every match should equal a local replay of the same points", func() {
				want, err := scorer.Replay(model.SinglesGrandSlam, points)
				So(err, ShouldBeNil)
				for _, id := range ids {
					v, err := svc.Match(ctx, id)
					So(err, ShouldBeNil)
					So(v.Score, ShouldEqual, want.Score())
				}
			})
		})

		Reset(svc.Stop)
	})
}

package avl

import (
	"time"

	gtfsrt "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/pkg/errors"

	"github.com/camsys-rove/rove/model"
)

// LoadFromRealtimeSnapshot derives AVL stop events from a batch of
// GTFS-realtime VehiclePosition feed messages, one snapshot per
// message, all attributed to svcDate. PassengerLoad is taken from
// OccupancyPercentage when the feed reports it, else left zero.
//
// This does not attempt to reconstruct dwell time, boardings or
// alightings: a single VehiclePosition snapshot carries none of that,
// unlike the richer per-stop exports the agency Normalizers consume.
func LoadFromRealtimeSnapshot(msgs []*gtfsrt.FeedMessage, svcDate string) ([]model.AVLStopEvent, error) {
	var out []model.AVLStopEvent

	for _, msg := range msgs {
		for _, entity := range msg.GetEntity() {
			vp := entity.GetVehicle()
			if vp == nil {
				continue
			}

			trip := vp.GetTrip()
			tripID := trip.GetTripId()
			stopID := vp.GetStopId()
			if tripID == "" || stopID == "" {
				continue
			}

			out = append(out, model.AVLStopEvent{
				SvcDate:       svcDate,
				TripID:        tripID,
				RouteID:       trip.GetRouteId(),
				StopID:        stopID,
				StopSequence:  int(vp.GetCurrentStopSequence()),
				StopTime:      secondsOfDay(vp.GetTimestamp()),
				PassengerLoad: int(vp.GetOccupancyPercentage()),
			})
		}
	}

	if out == nil {
		return nil, errors.New("avl: no usable vehicle positions in realtime snapshot")
	}
	return out, nil
}

func secondsOfDay(unixTimestamp uint64) int {
	if unixTimestamp == 0 {
		return 0
	}
	t := time.Unix(int64(unixTimestamp), 0).UTC()
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

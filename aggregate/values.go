package aggregate

import "github.com/camsys-rove/rove/metrics"

// stopMetricValues/routeMetricValues/tpbpMetricValues flatten each
// metrics table row's set columns into a name->value map, skipping
// columns that were never computed (nil AVL-dependent fields).

func stopMetricValues(r metrics.StopMetric) map[string]float64 {
	out := map[string]float64{}
	addIfSet(out, "stop_spacing", r.StopSpacing)
	addIfSet(out, "scheduled_headway", r.ScheduledHeadway)
	addIfSet(out, "scheduled_running_time", r.ScheduledRunningTime)
	addIfSet(out, "scheduled_speed", r.ScheduledSpeed)
	addIfSet(out, "observed_headway", r.ObservedHeadway)
	addIfSet(out, "observed_running_time", r.ObservedRunningTime)
	addIfSet(out, "observed_speed_without_dwell", r.ObservedSpeedWithoutDwell)
	addIfSet(out, "observed_running_time_with_dwell", r.ObservedRunningTimeWithDwell)
	addIfSet(out, "observed_speed_with_dwell", r.ObservedSpeedWithDwell)
	addIfSet(out, "boardings", r.Boardings)
	addIfSet(out, "on_time_performance", r.OnTimePerformance)
	addIfSet(out, "passenger_load", r.PassengerLoad)
	addIfSet(out, "crowding", r.Crowding)
	addIfSet(out, "vehicle_congestion_delay", r.VehicleCongestionDelay)
	addIfSet(out, "passenger_congestion_delay", r.PassengerCongestionDelay)
	return out
}

func routeMetricValues(r metrics.RouteMetric) map[string]float64 {
	out := map[string]float64{}
	addIfSet(out, "stop_spacing", r.StopSpacing)
	addIfSet(out, "scheduled_running_time", r.ScheduledRunningTime)
	addIfSet(out, "scheduled_speed", r.ScheduledSpeed)
	addIfSet(out, "observed_running_time", r.ObservedRunningTime)
	addIfSet(out, "observed_speed_without_dwell", r.ObservedSpeedWithoutDwell)
	addIfSet(out, "observed_running_time_with_dwell", r.ObservedRunningTimeWithDwell)
	addIfSet(out, "observed_speed_with_dwell", r.ObservedSpeedWithDwell)
	addIfSet(out, "boardings", r.Boardings)
	addIfSet(out, "on_time_performance", r.OnTimePerformance)
	addIfSet(out, "passenger_load", r.PassengerLoad)
	addIfSet(out, "crowding", r.Crowding)
	return out
}

func tpbpMetricValues(r metrics.TpbpMetric) map[string]float64 {
	out := map[string]float64{}
	addIfSet(out, "stop_spacing", r.StopSpacing)
	addIfSet(out, "scheduled_running_time", r.ScheduledRunningTime)
	addIfSet(out, "scheduled_speed", r.ScheduledSpeed)
	addIfSet(out, "observed_running_time", r.ObservedRunningTime)
	addIfSet(out, "observed_speed_without_dwell", r.ObservedSpeedWithoutDwell)
	addIfSet(out, "observed_running_time_with_dwell", r.ObservedRunningTimeWithDwell)
	addIfSet(out, "observed_speed_with_dwell", r.ObservedSpeedWithDwell)
	addIfSet(out, "boardings", r.Boardings)
	return out
}

func addIfSet(out map[string]float64, name string, v *float64) {
	if v != nil {
		out[name] = *v
	}
}

package pattern

import (
	"log/slog"

	"github.com/camsys-rove/rove/model"
)

// AssignTimepoints finalizes the Timepoint column. BuildStopEvents
// already copied whichever of {timepoint, timepoints, checkpoint} the
// source table carried into each record's Timepoint field (-1 when
// none of those columns existed). When hasTimepointColumn is false,
// every record is forced to 1 and a single warning is emitted, matching
// the source's "label every stop a timepoint" fallback.
func AssignTimepoints(events []model.GTFSStopEvent, hasTimepointColumn bool, log *slog.Logger) {
	if hasTimepointColumn {
		return
	}

	if log != nil {
		log.Warn("GTFS stop_times table does not contain a timepoint column; every stop is labeled a timepoint")
	}
	for i := range events {
		events[i].Timepoint = 1
	}
}

package shape

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/camsys-rove/rove/downloader"
	"github.com/camsys-rove/rove/model"
)

// Valhalla trace_attributes turn_penalty_factor/radius conventions, matched
// to a street network closely enough that sharp turns onto the wrong
// leg of a junction are penalized rather than silently accepted.
const (
	turnPenaltyFactor  = 100000
	stopRadiusMeters   = 35
	maneuverPenaltySec = 43200
)

type tracePoint struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Type string  `json:"type"`
	Radius int   `json:"radius"`
}

type traceRequest struct {
	Shape              []tracePoint `json:"shape"`
	Costing            string       `json:"costing"`
	ShapeMatch         string       `json:"shape_match"`
	CostingOptions      struct {
		Bus struct {
			ManeuverPenalty   int `json:"maneuver_penalty"`
			TurnPenaltyFactor int `json:"turn_penalty_factor"`
		} `json:"bus"`
	} `json:"costing_options"`
}

type traceResponse struct {
	Trip struct {
		Summary struct {
			Length float64 `json:"length"` // kilometers
		} `json:"summary"`
	} `json:"trip"`
}

// HTTPClient is a TraceAttributesClient that POSTs a Valhalla-style
// trace_attributes request, grounded on the teacher's HTTPGet
// (context-bound http.Client, header injection, size-limited body
// read) but adapted to a POST-with-JSON-body call.
type HTTPClient struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration
	MaxSize int
}

func (c HTTPClient) TraceAttributes(ctx context.Context, polyline []model.Stop) (TraceResult, error) {
	if len(polyline) < 2 {
		return TraceResult{}, errors.New("shape: trace request needs at least two points")
	}

	req := traceRequest{
		Costing:    "bus",
		ShapeMatch: "map_snap",
	}
	req.CostingOptions.Bus.ManeuverPenalty = maneuverPenaltySec
	req.CostingOptions.Bus.TurnPenaltyFactor = turnPenaltyFactor

	for _, s := range polyline {
		req.Shape = append(req.Shape, tracePoint{
			Lat:    s.Lat,
			Lon:    s.Lon,
			Type:   "break",
			Radius: stopRadiusMeters,
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return TraceResult{}, errors.Wrap(err, "shape: marshaling trace_attributes request")
	}

	headers := map[string]string{"Content-Type": "application/json"}
	for k, v := range c.Headers {
		headers[k] = v
	}

	respBody, err := downloader.HTTPPost(ctx, c.URL, headers, body, downloader.GetOptions{
		Timeout: c.Timeout,
		MaxSize: c.MaxSize,
	})
	if err != nil {
		return TraceResult{}, errors.Wrap(ErrShapeMatchFailed, err.Error())
	}

	var resp traceResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return TraceResult{}, errors.Wrap(ErrShapeMatchFailed, "unmarshaling trace_attributes response: "+err.Error())
	}

	if resp.Trip.Summary.Length <= 0 {
		return TraceResult{}, errors.Wrap(ErrShapeMatchFailed, "zero-length route")
	}

	return TraceResult{DistanceKM: resp.Trip.Summary.Length}, nil
}

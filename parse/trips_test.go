package parse_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camsys-rove/rove/model"
	"github.com/camsys-rove/rove/parse"
)

func TestParseTrips(t *testing.T) {
	routes := map[string]model.Route{"R1": {ID: "R1", Type: model.RouteTypeBus}}
	active := map[string]bool{"WKDY": true}

	cases := []struct {
		name    string
		content string
		wantErr bool
		wantLen int
	}{
		{
			name:    "keeps active trip on kept route",
			content: "trip_id,route_id,service_id,direction_id\nT1,R1,WKDY,0\n",
			wantLen: 1,
		},
		{
			name:    "drops trip on filtered-out route",
			content: "trip_id,route_id,service_id,direction_id\nT1,R2,WKDY,0\n",
			wantLen: 0,
		},
		{
			name:    "drops trip on inactive service",
			content: "trip_id,route_id,service_id,direction_id\nT1,R1,SAT,0\n",
			wantLen: 0,
		},
		{
			name:    "rejects invalid direction_id",
			content: "trip_id,route_id,service_id,direction_id\nT1,R1,WKDY,2\n",
			wantErr: true,
		},
		{
			name:    "rejects duplicate trip_id",
			content: "trip_id,route_id,service_id,direction_id\nT1,R1,WKDY,0\nT1,R1,WKDY,1\n",
			wantErr: true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			trips, err := parse.ParseTrips(strings.NewReader(c.content), routes, active)
			if c.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, trips, c.wantLen)
		})
	}
}

package parse_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camsys-rove/rove/model"
	"github.com/camsys-rove/rove/parse"
)

func TestParseRoutesFiltersByType(t *testing.T) {
	csv := "route_id,route_type\n" +
		"R1,3\n" +
		"R2,1\n"

	routes, err := parse.ParseRoutes(strings.NewReader(csv), map[model.RouteType]bool{model.RouteTypeBus: true})
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Contains(t, routes, "R1")
}

func TestParseRoutesRejectsInvalidType(t *testing.T) {
	csv := "route_id,route_type\nR1,99\n"

	_, err := parse.ParseRoutes(strings.NewReader(csv), nil)
	assert.Error(t, err)
}

func TestParseRoutesRejectsDuplicateID(t *testing.T) {
	csv := "route_id,route_type\nR1,3\nR1,3\n"

	_, err := parse.ParseRoutes(strings.NewReader(csv), nil)
	assert.Error(t, err)
}

package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func queryContext(rawQuery string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestCoordsFromQuery(t *testing.T) {
	//両方あれば値が入る
	lat, lng, err := coordsFromQuery(queryContext("lat=27.7172&lng=85.3240"))
	assert.NoError(t, err)
	assert.NotNil(t, lat)
	assert.NotNil(t, lng)
	assert.InDelta(t, 27.7172, *lat, 1e-9)
	assert.InDelta(t, 85.3240, *lng, 1e-9)

	//どちらも無ければnil（座標なしの見積もり）
	lat, lng, err = coordsFromQuery(queryContext(""))
	assert.NoError(t, err)
	assert.Nil(t, lat)
	assert.Nil(t, lng)
}

func TestCoordsFromQuery_HalfCoordinatesRejected(t *testing.T) {
	//片方だけは黙ってnilにしない
	_, _, err := coordsFromQuery(queryContext("lat=27.7172"))
	assert.Error(t, err)

	_, _, err = coordsFromQuery(queryContext("lng=85.3240"))
	assert.Error(t, err)
}

func TestCoordsFromQuery_NonNumeric(t *testing.T) {
	_, _, err := coordsFromQuery(queryContext("lat=abc&lng=85.3240"))
	assert.Error(t, err)
}

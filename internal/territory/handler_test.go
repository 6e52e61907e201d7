package territory

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(newTestService(nil), nil).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func perform(router *gin.Engine, method, path string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_ListEpcis(t *testing.T) {
	w := perform(setupRouter(), http.MethodGet, "/api/v1/territoires", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
}

func TestHandler_GetFlux(t *testing.T) {
	w := perform(setupRouter(), http.MethodGet, "/api/v1/territoires/"+testEpci+"/flux", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Territory string  `json:"territory"`
		Total     float64 `json:"total"`
		Summary   map[string]struct {
			TotalCarbonSequestration float64 `json:"totalCarbonSequestration"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, testEpci, body.Territory)
	assert.InDelta(t, -240.0, body.Summary["vignes"].TotalCarbonSequestration, 1e-9)
}

func TestHandler_PostFluxOverride(t *testing.T) {
	w := perform(setupRouter(), http.MethodPost, "/api/v1/territoires/"+testEpci+"/flux",
		`{"areaChanges": {"cult_vign": 10}}`)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Summary map[string]struct {
			TotalCarbonSequestration float64 `json:"totalCarbonSequestration"`
			AreaModified             bool    `json:"areaModified"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.InDelta(t, -400.0, body.Summary["vignes"].TotalCarbonSequestration, 1e-9)
	assert.True(t, body.Summary["vignes"].AreaModified)
}

func TestHandler_Errors(t *testing.T) {
	router := setupRouter()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"unknown epci", http.MethodGet, "/api/v1/territoires/999/flux", "", http.StatusNotFound},
		{"unknown extra commune", http.MethodGet, "/api/v1/territoires/" + testEpci + "/stocks?communes=99999", "", http.StatusNotFound},
		{"invalid proportion", http.MethodPost, "/api/v1/territoires/" + testEpci + "/flux", `{"proportionSolsImpermeables": 2}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/api/v1/territoires/" + testEpci + "/flux", `{"areaChanges": [`, http.StatusBadRequest},
		{"malformed query", http.MethodGet, "/api/v1/territoires/" + testEpci + "/flux?proportionSolsImpermeables=abc", "", http.StatusBadRequest},
		{"unknown wood method", http.MethodGet, "/api/v1/territoires/" + testEpci + "/stocks?woodCalculation=import", "", http.StatusBadRequest},
		{"missing reference row", http.MethodGet, "/api/v1/territoires/" + testEpci + "/flux?communes=02001", "", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestHandler_GetStocks(t *testing.T) {
	w := perform(setupRouter(), http.MethodPost, "/api/v1/territoires/"+testEpci+"/stocks",
		`{"areas": {"cultures": 300}}`)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Stocks map[string]struct {
			Area      float64 `json:"area"`
			SoilStock float64 `json:"soilStock"`
		} `json:"stocks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 300.0, body.Stocks["cultures"].Area)
	assert.InDelta(t, 15000.0, body.Stocks["cultures"].SoilStock, 1e-9)
}

func TestHandler_Exports(t *testing.T) {
	router := setupRouter()
	base := "/api/v1/territoires/" + testEpci

	w := perform(router, http.MethodGet, base+"/export.xlsx", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contentTypeXLSX, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), testEpci+".xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w = perform(router, http.MethodGet, base+"/export.csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "Commune,"))

	w = perform(router, http.MethodGet, base+"/export.pdf", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestFluxOptionsFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	query := url.Values{
		"woodCalculation":            {"consommation"},
		"proportionSolsImpermeables": {"0.5"},
		"surface_cult_vign":          {"12"},
		"area_forêt mixte":           {"40"},
		"unrelated":                  {"1"},
	}
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+query.Encode(), nil)

	opts, err := fluxOptionsFromQuery(c)
	require.NoError(t, err)

	assert.Equal(t, "consommation", string(opts.WoodCalculation))
	require.NotNil(t, opts.ProportionSolsImpermeables)
	assert.Equal(t, 0.5, *opts.ProportionSolsImpermeables)
	assert.Equal(t, map[string]float64{"cult_vign": 12}, opts.AreaChanges)
	assert.Equal(t, map[string]float64{"forêt mixte": 40}, opts.Areas)
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/AutoNestCut/internal/model"
)

type fakeLister struct {
	materials []model.StockMaterial
	err       error
}

func (f fakeLister) List(context.Context) ([]model.StockMaterial, error) {
	return f.materials, f.err
}

func newTestServer(lister MaterialLister) http.Handler {
	gin.SetMode(gin.TestMode)
	return New(model.DefaultSettings(), lister, nil).Router()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const cabinetJob = `{
	"version": "1.0.0",
	"name": "Cabinet",
	"parts": [
		{"template": {"id": "side", "name": "Side", "width": 600, "height": 400, "thickness": 19, "material": "Plywood_19mm"}, "quantity": 2}
	]
}`

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMaterials_FromSettings(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodGet, "/api/materials", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Materials []model.StockMaterial `json:"materials"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Materials, len(model.DefaultMaterials()))
	assert.Equal(t, "MDF_16mm", body.Materials[0].Name)
}

func TestMaterials_FromStore(t *testing.T) {
	lister := fakeLister{materials: []model.StockMaterial{{Name: "Birch", Width: 2500, Height: 1250, Price: 60}}}

	rec := do(t, newTestServer(lister), http.MethodGet, "/api/materials", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Birch"`)
}

func TestMaterials_StoreError(t *testing.T) {
	rec := do(t, newTestServer(fakeLister{err: errors.New("disk gone")}), http.MethodGet, "/api/materials", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "disk gone")
}

func TestNest(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodPost, "/api/nest", cabinetJob)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp NestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "Cabinet", resp.Job)
	assert.Equal(t, 2, resp.TotalParts)
	require.Len(t, resp.Result.Boards, 1)
	board := resp.Result.Boards[0]
	require.Len(t, board.Parts, 2)
	assert.Equal(t, "P1", board.Parts[0].InstanceID)
	assert.Equal(t, "P2", board.Parts[1].InstanceID)
	assert.False(t, resp.Result.Stock["Plywood_19mm"].Defaulted)

	assert.Equal(t, 1, resp.Report.Summary.TotalBoards)
	assert.Equal(t, 2, resp.Report.Summary.TotalParts)
	require.Len(t, resp.Report.Materials, 1)
	assert.Nil(t, resp.Report.Materials[0].Estimate)
}

func TestNest_UnknownMaterialUsesDefaultSheet(t *testing.T) {
	job := strings.ReplaceAll(cabinetJob, "Plywood_19mm", "Walnut_25mm")

	rec := do(t, newTestServer(nil), http.MethodPost, "/api/nest", job)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp NestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	stock := resp.Result.Stock["Walnut_25mm"]
	assert.True(t, stock.Defaulted)
	assert.Equal(t, model.DefaultStockWidth, stock.Width)
	assert.Equal(t, 0.0, stock.Price)
}

func TestNest_WithEstimates(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodPost, "/api/nest?waste_percent=10", cabinetJob)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp NestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Report.Materials, 1)
	require.NotNil(t, resp.Report.Materials[0].Estimate)
	assert.Equal(t, 1, resp.Report.Materials[0].Estimate.SheetsNeededMin)
	assert.Equal(t, 10.0, resp.Report.Materials[0].Estimate.WastePercent)
}

func TestNest_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
	}{
		{"malformed json", "/api/nest", `{"version": `},
		{"missing version", "/api/nest", `{"name": "x"}`},
		{"zero kerf", "/api/nest", `{"version": "1.0.0", "settings": {"kerf_width": 0}}`},
		{"negative kerf", "/api/nest", `{"version": "1.0.0", "settings": {"kerf_width": -2}}`},
		{"bad waste", "/api/nest?waste_percent=lots", cabinetJob},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(nil), http.MethodPost, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestNest_TooManyParts(t *testing.T) {
	body := `{
	"version": "1.0.0",
	"parts": [
		{"template": {"name": "A", "width": 10, "height": 10, "material": "Plywood_19mm"}, "quantity": 6000},
		{"template": {"name": "B", "width": 20, "height": 10, "material": "Plywood_19mm"}, "quantity": 6000}
	]
}`
	rec := do(t, newTestServer(nil), http.MethodPost, "/api/nest", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "more than 10000 parts")
}

func TestNest_BodyTooLarge(t *testing.T) {
	body := cabinetJob + strings.Repeat(" ", MaxRequestBytes)
	rec := do(t, newTestServer(nil), http.MethodPost, "/api/nest", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/revlimit/modengine-go/pkg/model"
	"github.com/revlimit/modengine-go/pkg/service"
	"github.com/revlimit/modengine-go/testsupport/basedata"
)

func testHandler(t *testing.T, opts ...service.Option) http.Handler {
	t.Helper()
	opts = append([]service.Option{
		service.WithCatalogSource(func(_ context.Context) ([]*model.Modification, error) {
			return basedata.SampleCatalog(), nil
		}),
	}, opts...)
	srv := NewServer(
		WithEvaluator(service.NewEvaluator(opts...)),
		WithAdminToken("secret"),
	)
	return srv.Handler()
}

func postJSON(t *testing.T, h http.Handler, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	assert.NilError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	if token != "" {
		req.Header.Set("api-token", token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestEvaluateEndpoint(t *testing.T) {
	h := testHandler(t)
	rec := postJSON(t, h, "/api/evaluate", "", map[string]any{
		"vehicle": basedata.SampleVehicle(),
		"modIds":  []string{"tune-stage2", "downpipe", "intake"},
	})
	assert.Equal(t, rec.Code, http.StatusOK)
	var res service.EvaluationResult
	assert.NilError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Assert(t, res.Gain.FinalHP > basedata.SampleVehicle().StockHP)
	assert.Equal(t, len(res.Conflicts), 0)
}

func TestEvaluateUnknownMod(t *testing.T) {
	h := testHandler(t)
	rec := postJSON(t, h, "/api/evaluate", "", map[string]any{
		"vehicle": basedata.SampleVehicle(),
		"modIds":  []string{"warp-drive"},
	})
	assert.Equal(t, rec.Code, http.StatusBadRequest)
}

func TestEvaluateMissingVehicle(t *testing.T) {
	h := testHandler(t)
	rec := postJSON(t, h, "/api/evaluate", "", map[string]any{
		"modIds": []string{"intake"},
	})
	assert.Equal(t, rec.Code, http.StatusBadRequest)
}

func TestEvaluateRejectsZeroPowerVehicle(t *testing.T) {
	h := testHandler(t)
	veh := basedata.SampleVehicle()
	veh.StockHP = 0
	rec := postJSON(t, h, "/api/evaluate", "", map[string]any{
		"vehicle": veh,
		"modIds":  []string{"intake"},
	})
	assert.Equal(t, rec.Code, http.StatusBadRequest)
}

func TestEvaluateDuplicateModIDs(t *testing.T) {
	h := testHandler(t)
	rec := postJSON(t, h, "/api/evaluate", "", map[string]any{
		"vehicle": basedata.SampleVehicle(),
		"modIds":  []string{"tune-stage2", "tune-stage2"},
	})
	assert.Equal(t, rec.Code, http.StatusOK)
	var res service.EvaluationResult
	assert.NilError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, len(res.Gain.Breakdown), 1)
}

func TestLapTimeEndpointUnavailable(t *testing.T) {
	// no aggregate source configured
	h := testHandler(t)
	rec := postJSON(t, h, "/api/laptime", "", map[string]any{
		"vehicle": basedata.SampleVehicle(),
		"modIds":  []string{"intake"},
		"trackId": "road-atlanta",
		"skill":   "advanced",
	})
	assert.Equal(t, rec.Code, http.StatusOK)
	var res struct {
		Estimate    *model.LapTimeEstimate `json:"estimate"`
		Unavailable *struct {
			Reason string `json:"reason"`
		} `json:"unavailable"`
	}
	assert.NilError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Assert(t, res.Estimate == nil)
	assert.Assert(t, res.Unavailable != nil)
}

func TestLapTimeEndpoint(t *testing.T) {
	h := testHandler(t, service.WithAggregateLookup(
		func(_ context.Context, _ string) (*model.PercentileStats, error) {
			return basedata.SampleStats(), nil
		}))
	rec := postJSON(t, h, "/api/laptime", "", map[string]any{
		"vehicle": basedata.SampleVehicle(),
		"modIds":  []string{"tune-stage2", "downpipe", "intake"},
		"trackId": "road-atlanta",
		"skill":   "professional",
	})
	assert.Equal(t, rec.Code, http.StatusOK)
	var res struct {
		Estimate *model.LapTimeEstimate `json:"estimate"`
	}
	assert.NilError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Assert(t, res.Estimate != nil)
	assert.Assert(t, res.Estimate.Estimated < res.Estimate.Baseline)
}

func TestLapSampleEndpoint(t *testing.T) {
	var stored []*model.LapTimeSample
	h := testHandler(t, service.WithLapSampleStore(
		func(_ context.Context, s *model.LapTimeSample) error {
			stored = append(stored, s)
			return nil
		}))
	rec := postJSON(t, h, "/api/laptime/sample", "", map[string]any{
		"trackId":  "road-atlanta",
		"lapTime":  100.4,
		"modified": true,
	})
	assert.Equal(t, rec.Code, http.StatusAccepted)
	assert.Equal(t, len(stored), 1)

	rec = postJSON(t, h, "/api/laptime/sample", "", map[string]any{
		"trackId": "road-atlanta",
	})
	assert.Equal(t, rec.Code, http.StatusBadRequest)
}

func TestDynoRequiresAdminToken(t *testing.T) {
	h := testHandler(t, service.WithDynoStore(
		func(_ context.Context, _, _ string, _ *model.DynoMeasurement) error {
			return nil
		}))
	body := map[string]any{
		"vehicle":     basedata.SampleVehicle(),
		"modIds":      []string{"tune-stage2"},
		"measurement": map[string]any{"whp": 520.0, "wtq": 490.0},
	}
	rec := postJSON(t, h, "/api/dyno", "", body)
	assert.Equal(t, rec.Code, http.StatusForbidden)

	rec = postJSON(t, h, "/api/dyno", "wrong", body)
	assert.Equal(t, rec.Code, http.StatusForbidden)

	rec = postJSON(t, h, "/api/dyno", "secret", body)
	assert.Equal(t, rec.Code, http.StatusAccepted)
	var res map[string]string
	assert.NilError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Assert(t, res["buildHash"] != "")
}

func TestHealthz(t *testing.T) {
	h := testHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, rec.Code, http.StatusOK)
}

package recoder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibe-annotate/vibe-annotate/internal/httpclient"
)

func noSleep(context.Context, time.Duration) error { return nil }

func TestRecodeMany_SingleChunk(t *testing.T) {
	var gotBody map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"input": "rs6025", "A": {"vcf_string": ["1-169549811-T-C"]}},
			{"input": "5-169557518-G-A", "A": {"vcf_string": ["5-169557518-G-A"]}}
		]`))
	}))
	defer srv.Close()

	h := httpclient.New(srv.URL, nil, nil)
	c := New(h)
	c.SleepFn = noSleep

	results, err := c.RecodeMany(context.Background(), []string{"rs6025", "5-169557518-G-A"}, nil, false)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "rs6025", results[0].Input)
	assert.Equal(t, []string{"1-169549811-T-C"}, results[0].Alleles["A"].VCFString)
	assert.Equal(t, []string{"5-169557518-G-A"}, results[1].Alleles["A"].VCFString)
	assert.Equal(t, []string{"rs6025", "5-169557518-G-A"}, gotBody["variants"])
}

func TestRecodeMany_ChunksAndPreservesOrder(t *testing.T) {
	var callCount int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Variants []string `json:"variants"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		callCount++
		w.Header().Set("Content-Type", "application/json")
		w.Write(buildResponse(body.Variants))
	}))
	defer srv.Close()

	h := httpclient.New(srv.URL, nil, nil)
	c := New(h)
	c.ChunkSize = 2
	c.SleepFn = noSleep

	inputs := []string{"rs1", "rs2", "rs3", "rs4", "rs5"}
	results, err := c.RecodeMany(context.Background(), inputs, nil, false)
	require.NoError(t, err)
	require.Len(t, results, 5)
	assert.Equal(t, 3, callCount) // chunks of 2, 2, 1
	for i, in := range inputs {
		assert.Equal(t, in, results[i].Input)
	}
}

func buildResponse(variants []string) []byte {
	out := make([]map[string]interface{}, len(variants))
	for i, v := range variants {
		out[i] = map[string]interface{}{
			"input": v,
			"A":     map[string]interface{}{"vcf_string": []string{"1-1-A-G"}},
		}
	}
	data, _ := json.Marshal(out)
	return data
}

func TestRecode_Single(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"input": "rs6025", "A": {"vcf_string": ["1-169549811-T-C"]}}]`))
	}))
	defer srv.Close()

	h := httpclient.New(srv.URL, nil, nil)
	c := New(h)
	c.SleepFn = noSleep

	result, err := c.Recode(context.Background(), "rs6025", nil, false)
	require.NoError(t, err)
	assert.Equal(t, "rs6025", result.Input)
}

package control

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peragwin/spectromesh/audio/analyzer"
	"github.com/peragwin/spectromesh/visual"
)

type fakeStats struct{ s visual.Stats }

func (f *fakeStats) Stats() visual.Stats { return f.s }

func newTestServer(t *testing.T) (*Server, *analyzer.Analyzer) {
	t.Helper()
	a, err := analyzer.New(analyzer.Config{Window: 512, SampleRate: 44100})
	require.NoError(t, err)
	s, err := NewServer(Config{
		Params: a,
		Stats:  &fakeStats{visual.Stats{Ticks: 42, AudioFrames: 40, Ready: true, Average: 12.5}},
		Info:   Info{Window: 512, Bins: 256, SampleRate: 44100, Format: "red", ColorMode: "lookup"},
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, a
}

func decode(t *testing.T, v interface{}, out interface{}) {
	t.Helper()
	bs, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(bs, out))
}

func TestQueryParamsAndStats(t *testing.T) {
	s, _ := newTestServer(t)

	res := s.Query(`{
		params { smoothing minDecibels maxDecibels }
		stats { ticks audioFrames ready average }
		info { bins format }
	}`, nil)
	require.Empty(t, res.Errors)

	var data struct {
		Params analyzer.Parameters `json:"params"`
		Stats  visual.Stats        `json:"stats"`
		Info   Info                `json:"info"`
	}
	decode(t, res.Data, &data)
	assert.Equal(t, analyzer.DefaultParameters(), data.Params)
	assert.Equal(t, uint64(42), data.Stats.Ticks)
	assert.True(t, data.Stats.Ready)
	assert.Equal(t, 12.5, data.Stats.Average)
	assert.Equal(t, 256, data.Info.Bins)
	assert.Equal(t, "red", data.Info.Format)
}

func TestMutateParams(t *testing.T) {
	s, a := newTestServer(t)

	res := s.Query(`mutation {
		params(params: {smoothing: 0.5, maxDecibels: -20}) { smoothing maxDecibels minDecibels }
	}`, nil)
	require.Empty(t, res.Errors)
	assert.Equal(t, analyzer.Parameters{Smoothing: 0.5, MinDecibels: -100, MaxDecibels: -20}, a.Parameters())

	// invalid values are rejected and leave the analyzer untouched
	res = s.Query(`mutation { params(params: {minDecibels: 0}) { minDecibels } }`, nil)
	assert.NotEmpty(t, res.Errors)
	assert.Equal(t, -100.0, a.Parameters().MinDecibels)
}

func TestHTTPHandlers(t *testing.T) {
	s, a := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/graphql?query=" + url.QueryEscape("{ params { smoothing } }"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var got struct {
		Data struct {
			Params analyzer.Parameters `json:"params"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 0.8, got.Data.Params.Smoothing)

	body, _ := json.Marshal(map[string]interface{}{
		"query":     `mutation($p: inputParams) { params(params: $p) { smoothing } }`,
		"variables": map[string]interface{}{"p": map[string]interface{}{"smoothing": 0.25}},
	})
	resp2, err := http.Post(ts.URL+"/api/v2/graphql", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
	assert.Equal(t, 0.25, a.Parameters().Smoothing)

	resp3, err := http.Post(ts.URL+"/api/v2/graphql", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp3.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp3.StatusCode)
}

func TestFrameStream(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return s.stream.Clients() == 1 }, time.Second, 5*time.Millisecond)

	s.Publish(analyzer.Frame{1, 2, 3, 255})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	typ, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, typ)
	assert.Equal(t, []byte{1, 2, 3, 255}, msg)

	conn.Close()
	require.Eventually(t, func() bool { return s.stream.Clients() == 0 }, time.Second, 5*time.Millisecond)
}

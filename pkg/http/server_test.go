package http

import (
	"bytes"
	"encoding/json"
	"net"
	"testing"

	"github.com/spiceai/dualaxis/pkg/component"
	"github.com/spiceai/dualaxis/pkg/controls"
	"github.com/spiceai/dualaxis/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

const weatherCsv = "date,temp,hum,city\n2021-11-01 00:00:00,3.5,81,Seattle\n2021-11-01 01:00:00,3.1,83,Seattle\n"

func TestServer(t *testing.T) {
	t.Run("healthHandler() - initializing until data arrives", testHealthFunc())
	t.Run("apiGetChartHandler() - validation failure is 422", testChartNotTabularFunc())
	t.Run("apiPostDataHandler() - csv body becomes the table", testPostDataFunc())
	t.Run("apiPostDataHandler() - bad requests", testPostDataInvalidFunc())
	t.Run("apiPostDataHandler() - refused while a live source is bound", testPostDataLiveFunc())
	t.Run("apiPutControlHandler() - pick and reconcile", testPutControlFunc())
	t.Run("apiGetChartImageHandler() - svg", testChartImageFunc())
	t.Run("Serve() - in-memory listener", testServeFunc())
}

func newTestServer(t *testing.T) *server {
	return NewServer(0, component.New(component.DefaultOptions()))
}

func request(s *server, method string, uri string, body []byte) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if body != nil {
		ctx.Request.SetBody(body)
	}
	s.Handler()(ctx)
	return ctx
}

func testHealthFunc() func(*testing.T) {
	return func(t *testing.T) {
		s := newTestServer(t)
		ctx := request(s, "GET", "/health", nil)
		assert.Equal(t, "initializing", string(ctx.Response.Body()))

		require.NoError(t, s.component.SetData(testutils.WeatherTable(t, "temp")))
		ctx = request(s, "GET", "/health", nil)
		assert.Equal(t, "ok", string(ctx.Response.Body()))
	}
}

func testChartNotTabularFunc() func(*testing.T) {
	return func(t *testing.T) {
		s := newTestServer(t)

		ctx := request(s, "GET", "/api/v0.1/chart", nil)
		assert.Equal(t, 422, ctx.Response.StatusCode())
		assert.JSONEq(t, `{"reason":"not_tabular","message":"Data must be a table"}`, string(ctx.Response.Body()))

		ctx = request(s, "GET", "/api/v0.1/columns", nil)
		assert.Equal(t, 422, ctx.Response.StatusCode())
	}
}

func testPostDataFunc() func(*testing.T) {
	return func(t *testing.T) {
		s := newTestServer(t)

		ctx := request(s, "POST", "/api/v0.1/data?processor=csv", []byte(weatherCsv))
		require.Equal(t, 201, ctx.Response.StatusCode(), string(ctx.Response.Body()))

		ctx = request(s, "GET", "/api/v0.1/columns", nil)
		require.Equal(t, 200, ctx.Response.StatusCode())
		var columns []ColumnInfo
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &columns))
		assert.Equal(t, []ColumnInfo{
			{Name: "date", Kind: "time", Class: "time"},
			{Name: "temp", Kind: "double", Class: "numeric"},
			{Name: "hum", Kind: "integer", Class: "numeric"},
			{Name: "city", Kind: "string", Class: "other"},
		}, columns)

		ctx = request(s, "GET", "/api/v0.1/chart", nil)
		require.Equal(t, 200, ctx.Response.StatusCode())
		var config map[string]interface{}
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &config))
		assert.Equal(t, "temp", config["y"].(map[string]interface{})["label"])
	}
}

func testPostDataInvalidFunc() func(*testing.T) {
	return func(t *testing.T) {
		s := newTestServer(t)

		ctx := request(s, "POST", "/api/v0.1/data?processor=parquet", []byte(weatherCsv))
		assert.Equal(t, 400, ctx.Response.StatusCode())

		ctx = request(s, "POST", "/api/v0.1/data", []byte("date,date\n1,2\n"))
		assert.Equal(t, 400, ctx.Response.StatusCode())
		assert.Contains(t, string(ctx.Response.Body()), "duplicate column 'date'")

		ctx = request(s, "POST", "/api/v0.1/data?location=Nowhere/Special", []byte(weatherCsv))
		assert.Equal(t, 400, ctx.Response.StatusCode())
	}
}

func testPostDataLiveFunc() func(*testing.T) {
	return func(t *testing.T) {
		s := newTestServer(t)
		require.NoError(t, s.component.Subscribe(func() (interface{}, error) {
			return testutils.WeatherTable(t, "temp", "hum"), nil
		}))

		ctx := request(s, "POST", "/api/v0.1/data?processor=csv", []byte(weatherCsv))
		assert.Equal(t, 409, ctx.Response.StatusCode())
		assert.Equal(t, "data is provided by a live data source", string(ctx.Response.Body()))

		ctx = request(s, "GET", "/api/v0.1/columns", nil)
		require.Equal(t, 200, ctx.Response.StatusCode())
		var columns []ColumnInfo
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &columns))
		assert.Len(t, columns, 3)
	}
}

func testPutControlFunc() func(*testing.T) {
	return func(t *testing.T) {
		s := newTestServer(t)
		require.NoError(t, s.component.SetData(testutils.WeatherTable(t, "temp", "hum")))

		ctx := request(s, "PUT", "/api/v0.1/controls/y2", []byte(`["hum"]`))
		require.Equal(t, 200, ctx.Response.StatusCode(), string(ctx.Response.Body()))

		var all map[controls.Name]controls.Update
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &all))
		assert.Equal(t, []string{"hum"}, all[controls.Y2].Selected)
		assert.Equal(t, []string{"temp"}, all[controls.Y1].Choices)

		ctx = request(s, "PUT", "/api/v0.1/controls/y3", []byte(`["hum"]`))
		assert.Equal(t, 404, ctx.Response.StatusCode())

		ctx = request(s, "PUT", "/api/v0.1/controls/y1", []byte(`"temp"`))
		assert.Equal(t, 400, ctx.Response.StatusCode())
	}
}

func testChartImageFunc() func(*testing.T) {
	return func(t *testing.T) {
		s := newTestServer(t)
		require.NoError(t, s.component.SetData(testutils.WeatherTable(t, "temp", "hum")))

		ctx := request(s, "GET", "/api/v0.1/chart/svg", nil)
		require.Equal(t, 200, ctx.Response.StatusCode(), string(ctx.Response.Body()))
		assert.Equal(t, "image/svg+xml", string(ctx.Response.Header.ContentType()))
		assert.True(t, bytes.Contains(ctx.Response.Body(), []byte("<svg")))

		ctx = request(s, "GET", "/api/v0.1/chart/gif", nil)
		assert.Equal(t, 404, ctx.Response.StatusCode())
	}
}

func testServeFunc() func(*testing.T) {
	return func(t *testing.T) {
		s := newTestServer(t)
		require.NoError(t, s.component.SetData(testutils.WeatherTable(t, "temp")))

		ln := fasthttputil.NewInmemoryListener()
		require.NoError(t, s.Serve(ln))
		defer s.Shutdown()

		client := &fasthttp.Client{
			Dial: func(addr string) (net.Conn, error) {
				return ln.Dial()
			},
		}

		status, body, err := client.Get(nil, "http://dualaxis/api/v0.1/controls")
		require.NoError(t, err)
		assert.Equal(t, 200, status)

		var all map[controls.Name]controls.Update
		require.NoError(t, json.Unmarshal(body, &all))
		assert.Equal(t, []string{"date"}, all[controls.Time].Selected)
		assert.True(t, all[controls.Y2].Visible)
	}
}

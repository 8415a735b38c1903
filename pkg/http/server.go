package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/fasthttp/router"
	"github.com/spiceai/dualaxis/pkg/chart"
	"github.com/spiceai/dualaxis/pkg/classify"
	"github.com/spiceai/dualaxis/pkg/component"
	"github.com/spiceai/dualaxis/pkg/controls"
	"github.com/spiceai/dualaxis/pkg/dataprocessors"
	"github.com/spiceai/dualaxis/pkg/loggers"
	"github.com/spiceai/dualaxis/pkg/table"
	"github.com/spiceai/dualaxis/pkg/validation"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

type ServerConfig struct {
	Port   uint
	Render chart.RenderOptions
}

type server struct {
	config     ServerConfig
	component  *component.Component
	fastServer *fasthttp.Server
}

// ColumnInfo describes one column of the current table.
type ColumnInfo struct {
	Name  string `json:"name" csv:"name"`
	Kind  string `json:"kind" csv:"kind"`
	Class string `json:"class" csv:"class"`
}

var (
	zaplog *zap.Logger = loggers.ZapLogger()
)

func NewServer(port uint, c *component.Component) *server {
	return &server{
		config: ServerConfig{
			Port:   port,
			Render: chart.DefaultRenderOptions(),
		},
		component: c,
	}
}

func (server *server) WithRenderOptions(opts chart.RenderOptions) *server {
	server.config.Render = opts
	return server
}

func (server *server) healthHandler(ctx *fasthttp.RequestCtx) {
	if !server.component.Ready() {
		fmt.Fprintf(ctx, "initializing")
		return
	}

	fmt.Fprintf(ctx, "ok")
}

func (server *server) apiGetColumnsHandler(ctx *fasthttp.RequestCtx) {
	snapshot, classification, err := server.component.Current()
	if err != nil {
		writeError(ctx, err)
		return
	}

	writeJson(ctx, http.StatusOK, Columns(snapshot.Table.Columns(), classification))
}

func (server *server) apiGetControlsHandler(ctx *fasthttp.RequestCtx) {
	writeJson(ctx, http.StatusOK, server.component.Controls())
}

func (server *server) apiPutControlHandler(ctx *fasthttp.RequestCtx) {
	name, err := controls.ParseName(ctx.UserValue("control").(string))
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusNotFound)
		ctx.Response.SetBodyString(err.Error())
		return
	}

	var values []string
	err = json.Unmarshal(ctx.Request.Body(), &values)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString(err.Error())
		return
	}

	err = server.component.Select(name, values)
	if err != nil {
		zaplog.Sugar().Error(err)
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		ctx.Response.SetBodyString(err.Error())
		return
	}

	writeJson(ctx, http.StatusOK, server.component.Controls())
}

func (server *server) apiGetChartHandler(ctx *fasthttp.RequestCtx) {
	config, err := server.component.Chart()
	if err != nil {
		writeError(ctx, err)
		return
	}

	writeJson(ctx, http.StatusOK, config)
}

func (server *server) apiGetChartImageHandler(ctx *fasthttp.RequestCtx) {
	format, err := chart.ParseFormat(ctx.UserValue("format").(string))
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusNotFound)
		ctx.Response.SetBodyString(err.Error())
		return
	}

	config, err := server.component.Chart()
	if err != nil {
		writeError(ctx, err)
		return
	}

	var buf bytes.Buffer
	err = chart.Render(config, format, &buf, server.config.Render)
	if err != nil {
		zaplog.Sugar().Error(err)
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		ctx.Response.SetBodyString(err.Error())
		return
	}

	ctx.Response.Header.SetContentType(format.ContentType())
	ctx.Response.SetBody(buf.Bytes())
}

// apiPostDataHandler replaces the data with the posted table. It is refused
// while a live data source feeds the component.
func (server *server) apiPostDataHandler(ctx *fasthttp.RequestCtx) {
	if server.component.Live() {
		ctx.Response.SetStatusCode(http.StatusConflict)
		ctx.Response.SetBodyString("data is provided by a live data source")
		return
	}

	processorName := string(ctx.QueryArgs().Peek("processor"))
	if processorName == "" {
		processorName = "csv"
	}

	processor, err := dataprocessors.NewDataProcessor(processorName)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString(err.Error())
		return
	}

	params := make(map[string]string)
	ctx.QueryArgs().VisitAll(func(key, value []byte) {
		if string(key) != "processor" {
			params[string(key)] = string(value)
		}
	})

	err = processor.Init(params)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString(err.Error())
		return
	}

	_, err = processor.OnData(ctx.Request.Body())
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString(err.Error())
		return
	}

	t, err := processor.GetTable()
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		fmt.Fprintf(ctx, "error processing data: %s", err.Error())
		return
	}
	if t == nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString("no data")
		return
	}

	err = server.component.SetData(t)
	if err != nil {
		zaplog.Sugar().Error(err)
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		ctx.Response.SetBodyString(err.Error())
		return
	}

	ctx.Response.SetStatusCode(http.StatusCreated)
}

// Columns pairs each column with its kind and class.
func Columns(columns []*table.Column, classification *classify.Classification) []ColumnInfo {
	infos := make([]ColumnInfo, 0, len(columns))
	for _, c := range columns {
		infos = append(infos, ColumnInfo{
			Name:  c.Name(),
			Kind:  c.Kind().String(),
			Class: classification.ClassOf(c.Name()).String(),
		})
	}
	return infos
}

func writeJson(ctx *fasthttp.RequestCtx, status int, v interface{}) {
	response, err := json.Marshal(v)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		ctx.Response.SetBodyString(err.Error())
		return
	}

	ctx.Response.SetStatusCode(status)
	ctx.Response.Header.SetContentType("application/json")
	ctx.Response.SetBody(response)
}

// writeError reports validation failures as 422 with their reason, and
// anything else as 500.
func writeError(ctx *fasthttp.RequestCtx, err error) {
	if failure, ok := validation.AsFailure(err); ok {
		writeJson(ctx, http.StatusUnprocessableEntity, failure)
		return
	}

	zaplog.Sugar().Error(err)
	ctx.Response.SetStatusCode(http.StatusInternalServerError)
	ctx.Response.SetBodyString(err.Error())
}

func (server *server) Handler() fasthttp.RequestHandler {
	r := router.New()
	r.GET("/health", server.healthHandler)

	api := r.Group("/api/v0.1")
	{
		api.GET("/columns", server.apiGetColumnsHandler)

		// Controls
		api.GET("/controls", server.apiGetControlsHandler)
		api.PUT("/controls/{control}", server.apiPutControlHandler)

		// Chart
		api.GET("/chart", server.apiGetChartHandler)
		api.GET("/chart/{format}", server.apiGetChartImageHandler)

		api.POST("/data", server.apiPostDataHandler)
	}

	return r.Handler
}

func (server *server) Start() error {
	ln, err := net.Listen("tcp4", fmt.Sprintf(":%d", server.config.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", server.config.Port, err)
	}

	return server.Serve(ln)
}

// Serve starts serving ln in the background.
func (server *server) Serve(ln net.Listener) error {
	serverLogger, err := zap.NewStdLogAt(zaplog, zap.DebugLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	server.fastServer = &fasthttp.Server{
		Handler: server.Handler(),
		Logger:  serverLogger,
	}

	go func() {
		if err := server.fastServer.Serve(ln); err != nil {
			zaplog.Sugar().Errorf("http server stopped: %v", err)
		}
	}()

	return nil
}

func (server *server) Shutdown() error {
	if server.fastServer == nil {
		return nil
	}
	return server.fastServer.Shutdown()
}

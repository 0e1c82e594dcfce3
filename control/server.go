// Package control exposes the running pipeline over HTTP: a GraphQL API for analyzer
// parameters and frame statistics, and a websocket stream of analyzed frames.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/graphql-go/graphql"

	"github.com/peragwin/spectromesh/audio/analyzer"
	"github.com/peragwin/spectromesh/visual"
)

// ParameterStore reads and writes analyzer parameters. *analyzer.Analyzer implements it.
type ParameterStore interface {
	Parameters() analyzer.Parameters
	SetParameters(analyzer.Parameters) error
}

// StatsSource reports pipeline counters. *visual.Synchronizer implements it.
type StatsSource interface {
	Stats() visual.Stats
}

// Info describes the fixed setup of the pipeline.
type Info struct {
	Window     int     `json:"window"`
	Bins       int     `json:"bins"`
	SampleRate float64 `json:"sampleRate"`
	Format     string  `json:"format"`
	ColorMode  string  `json:"colorMode"`
}

// Config wires a Server.
type Config struct {
	Params ParameterStore
	Stats  StatsSource
	Info   Info
	// HTTPDir is served at / when set.
	HTTPDir string
}

// Server serves the control API.
type Server struct {
	schema graphql.Schema
	stream *FrameStream
	mux    *http.ServeMux
}

// NewServer builds the schema and routes.
func NewServer(cfg Config) (*Server, error) {
	s := &Server{
		stream: NewFrameStream(),
		mux:    http.NewServeMux(),
	}
	schema, err := newSchema(cfg)
	if err != nil {
		return nil, err
	}
	s.schema = schema

	s.mux.HandleFunc("/api/v1/graphql", s.handleGet)
	s.mux.HandleFunc("/api/v2/graphql", s.handlePost)
	s.mux.Handle("/ws", s.stream)
	if cfg.HTTPDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(cfg.HTTPDir)))
	}
	return s, nil
}

func newSchema(cfg Config) (graphql.Schema, error) {
	paramType, inputParamType := NewGraphqlType("Params", analyzer.Parameters{})
	statsType, _ := NewGraphqlType("Stats", visual.Stats{})
	infoType, _ := NewGraphqlType("Info", Info{})

	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name: "RootQuery",
		Fields: graphql.Fields{
			"params": &graphql.Field{
				Type: paramType,
				Resolve: func(graphql.ResolveParams) (interface{}, error) {
					return cfg.Params.Parameters(), nil
				},
			},
			"stats": &graphql.Field{
				Type: statsType,
				Resolve: func(graphql.ResolveParams) (interface{}, error) {
					if cfg.Stats == nil {
						return visual.Stats{}, nil
					}
					return cfg.Stats.Stats(), nil
				},
			},
			"info": &graphql.Field{
				Type: infoType,
				Resolve: func(graphql.ResolveParams) (interface{}, error) {
					return cfg.Info, nil
				},
			},
		},
	})
	rootMut := graphql.NewObject(graphql.ObjectConfig{
		Name: "RootMut",
		Fields: graphql.Fields{
			"params": &graphql.Field{
				Type: paramType,
				Args: graphql.FieldConfigArgument{
					"params": &graphql.ArgumentConfig{Type: inputParamType},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					args, ok := p.Args["params"].(map[string]interface{})
					if !ok {
						return nil, errors.New("missing arg: params")
					}
					params := cfg.Params.Parameters()
					if err := applyArgs(&params, args); err != nil {
						return nil, err
					}
					if err := cfg.Params.SetParameters(params); err != nil {
						return nil, err
					}
					glog.Infof("control: parameters updated: %+v", params)
					return params, nil
				},
			},
		},
	})
	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    rootQuery,
		Mutation: rootMut,
	})
}

// Query runs a GraphQL request against the schema.
func (s *Server) Query(query string, vars map[string]interface{}) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  query,
		VariableValues: vars,
	})
}

// Publish forwards a frame to stream clients.
func (s *Server) Publish(f analyzer.Frame) { s.stream.Publish(f) }

// Handler is the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	glog.V(1).Info(query)
	s.writeResult(w, s.Query(query, nil))
}

type queryRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var req queryRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	glog.V(1).Info(req.Query)
	s.writeResult(w, s.Query(req.Query, req.Variables))
}

func (s *Server) writeResult(w http.ResponseWriter, res *graphql.Result) {
	for _, err := range res.Errors {
		glog.Warningf("control: graphql: %v", err)
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		glog.Errorf("control: encoding response: %v", err)
	}
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux}
	errc := make(chan error, 1)
	go func() {
		glog.Infof("control: listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.stream.Close()
		return err
	case <-ctx.Done():
	}

	s.stream.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// Close stops the frame stream.
func (s *Server) Close() { s.stream.Close() }

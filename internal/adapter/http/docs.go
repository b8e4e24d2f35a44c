package adapthttp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sort"
	"sync"

	"github.com/gorilla/mux"
	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v6"

	"musify/internal/domain"
)

const schemaBaseURL = "https://musify.invalid/schemas/"

// Schema names used for request validation.
const (
	schemaCredentials    = "CredentialsRequest"
	schemaPlaylistCreate = "PlaylistCreateRequest"
	schemaPlaylistUpdate = "PlaylistUpdateRequest"
	schemaAddTrack       = "AddTrackRequest"
	schemaTrackCreate    = "TrackCreateRequest"
)

var requestTypes = map[string]any{
	schemaCredentials:    &credentialsRequest{},
	schemaPlaylistCreate: &playlistCreateRequest{},
	schemaPlaylistUpdate: &playlistUpdateRequest{},
	schemaAddTrack:       &addTrackRequest{},
	schemaTrackCreate:    &trackCreateRequest{},
}

var responseTypes = map[string]any{
	"TokenResponse":         &tokenResponse{},
	"MeResponse":            &meResponse{},
	"AccountResponse":       &accountResponse{},
	"PlaylistResponse":      &playlistResponse{},
	"TrackResponse":         &trackResponse{},
	"PlaylistTrackResponse": &playlistTrackResponse{},
	"PlaylistEntryResponse": &playlistEntryResponse{},
	"ErrorResponse":         &errorResponse{},
}

type routeDoc struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Public bool   `json:"public"`
}

// apiDocs holds the JSON Schemas reflected from the wire types and the
// compiled validators for request bodies.
type apiDocs struct {
	schemas    map[string]json.RawMessage
	validators map[string]*validator.Schema

	mu     sync.RWMutex
	routes []routeDoc
}

func newAPIDocs() (*apiDocs, error) {
	reflector := &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
	}
	d := &apiDocs{
		schemas:    make(map[string]json.RawMessage),
		validators: make(map[string]*validator.Schema),
	}
	compiler := validator.NewCompiler()

	reflectAll := func(types map[string]any, validate bool) error {
		for name, v := range types {
			raw, err := json.Marshal(reflector.Reflect(v))
			if err != nil {
				return fmt.Errorf("reflect schema %s: %w", name, err)
			}
			d.schemas[name] = raw
			if !validate {
				continue
			}
			doc, err := validator.UnmarshalJSON(bytes.NewReader(raw))
			if err != nil {
				return fmt.Errorf("load schema %s: %w", name, err)
			}
			if err := compiler.AddResource(schemaBaseURL+name, doc); err != nil {
				return fmt.Errorf("add schema %s: %w", name, err)
			}
		}
		return nil
	}
	if err := reflectAll(requestTypes, true); err != nil {
		return nil, err
	}
	if err := reflectAll(responseTypes, false); err != nil {
		return nil, err
	}
	for name := range requestTypes {
		sch, err := compiler.Compile(schemaBaseURL + name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		d.validators[name] = sch
	}
	return d, nil
}

// validate checks body against the named request schema.
func (d *apiDocs) validate(name string, body []byte) error {
	sch, ok := d.validators[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	inst, err := validator.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: invalid json: %v", domain.ErrInvalidInput, err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

func (d *apiDocs) setRoutes(routes []routeDoc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.routes = routes
}

func (d *apiDocs) index() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return map[string]any{
		"title":   "musify",
		"schemas": d.schemas,
		"routes":  d.routes,
	}
}

// walkRoutes lists every method and path template served by router.
func walkRoutes(router *mux.Router, public *PublicPaths) []routeDoc {
	var routes []routeDoc
	_ = router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		tpl, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, err := route.GetMethods()
		if err != nil {
			return nil
		}
		for _, m := range methods {
			routes = append(routes, routeDoc{Method: m, Path: tpl, Public: public.Match(tpl)})
		}
		return nil
	})
	sort.SliceStable(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})
	return slices.Compact(routes)
}

// decode reads a JSON body, validates it against schema and decodes it into dst.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, schema string, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", domain.ErrInvalidInput, err)
	}
	if err := s.docs.validate(schema, body); err != nil {
		return err
	}
	return parseJSON(body, dst)
}

func (s *Server) handleAPIDocs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.docs.index())
}

func (s *Server) handleAPIDocsSchema(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.docs.schemas[mux.Vars(r)["name"]]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: schema %q", domain.ErrNotFound, mux.Vars(r)["name"]))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

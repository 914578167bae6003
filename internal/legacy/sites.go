package legacy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/five82/alfalfa/internal/api"
	"github.com/five82/alfalfa/internal/sim"
)

// Version is the API version served by the legacy dialect.
const Version = "v1"

// Ensure Sites implements sim.Backend at compile time.
var _ sim.Backend = (*Sites)(nil)

// Sites speaks the GraphQL + Haystack dialect. Runs are called sites there
// and a run id is the upload id of its model.
type Sites struct {
	t *api.Transport

	mu      sync.Mutex
	uploads map[sim.ModelID]string
}

// NewSites builds the legacy dialect for host.
func NewSites(host string, opts ...api.Option) (*Sites, error) {
	t, err := api.NewTransport(host, "", opts...)
	if err != nil {
		return nil, err
	}
	return &Sites{t: t, uploads: make(map[sim.ModelID]string)}, nil
}

// graphql posts a document and decodes its data member into dest. GraphQL
// errors arrive with a 200 status; they are surfaced as a 422 APIError.
func (s *Sites) graphql(ctx context.Context, doc string, vars map[string]any, dest any) error {
	var resp graphQLResponse
	if err := s.t.Do(ctx, http.MethodPost, "graphql", graphQLRequest{Query: doc, Variables: vars}, &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		return &sim.APIError{StatusCode: http.StatusUnprocessableEntity, Message: resp.errorMessage()}
	}
	if dest == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, dest); err != nil {
		return &sim.ClientError{Kind: sim.KindDecode, Message: "decode graphql data", Err: err}
	}
	return nil
}

func (s *Sites) site(ctx context.Context, doc string, vars map[string]any) (siteData, error) {
	var data siteData
	if err := s.graphql(ctx, doc, vars, &data); err != nil {
		return siteData{}, err
	}
	if len(data.Viewer.Sites) == 0 {
		return siteData{}, &sim.APIError{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("site %v not found", vars["siteRef"])}
	}
	return data, nil
}

// Status returns simStatus of the site.
func (s *Sites) Status(ctx context.Context, run sim.RunID) (string, error) {
	if err := sim.ValidateRun(run); err != nil {
		return "", err
	}
	data, err := s.site(ctx, siteStatusQuery, map[string]any{"siteRef": run})
	if err != nil {
		return "", err
	}
	return data.Viewer.Sites[0].SimStatus, nil
}

// ErrorLog is not available in this dialect.
func (s *Sites) ErrorLog(ctx context.Context, run sim.RunID) (string, error) {
	return "", sim.NewClientError(sim.KindUnsupported, "error logs are not exposed by the %s API", Version)
}

// UploadModel requests a presigned form, posts the file, and remembers the
// file name for CreateRun.
func (s *Sites) UploadModel(ctx context.Context, path string) (sim.ModelID, error) {
	id, err := uuid.NewUUID()
	if err != nil {
		return "", &sim.ClientError{Kind: sim.KindInvalidArgument, Message: "generate upload id", Err: err}
	}
	filename := filepath.Base(path)
	req := uploadURLRequest{Name: "uploads/" + id.String() + "/" + filename}

	var target uploadURLResponse
	if err := s.t.Do(ctx, http.MethodPost, "upload-url", req, &target); err != nil {
		return "", fmt.Errorf("request upload target: %w", err)
	}
	if err := s.t.UploadFile(ctx, target.URL, target.Fields, path); err != nil {
		return "", err
	}

	model := sim.ModelID(id.String())
	s.mu.Lock()
	s.uploads[model] = filename
	s.mu.Unlock()
	return model, nil
}

// CreateRun registers the uploaded model as a site.
func (s *Sites) CreateRun(ctx context.Context, model sim.ModelID) (sim.RunID, error) {
	s.mu.Lock()
	filename, ok := s.uploads[model]
	s.mu.Unlock()
	if !ok {
		return "", sim.NewClientError(sim.KindInvalidArgument, "model %s was not uploaded through this client", model)
	}
	vars := map[string]any{"osmName": filename, "uploadID": string(model)}
	if err := s.graphql(ctx, addSiteMutation, vars, nil); err != nil {
		return "", err
	}
	return sim.RunID(model), nil
}

// Start runs the site.
func (s *Sites) Start(ctx context.Context, run sim.RunID, params sim.StartParams) error {
	if err := sim.ValidateRun(run); err != nil {
		return err
	}
	timescale := params.Timescale
	if timescale == 0 {
		timescale = sim.DefaultTimescale
	}
	vars := map[string]any{
		"siteRef":       run,
		"startDatetime": params.Start.Format(sim.TimeLayout),
		"endDatetime":   params.End.Format(sim.TimeLayout),
		"timescale":     timescale,
		"realtime":      params.Realtime,
		"externalClock": params.ExternalClock,
	}
	return s.graphql(ctx, runSiteMutation, vars, nil)
}

// Stop stops the site.
func (s *Sites) Stop(ctx context.Context, run sim.RunID) error {
	if err := sim.ValidateRun(run); err != nil {
		return err
	}
	return s.graphql(ctx, stopSiteMutation, map[string]any{"siteRef": run}, nil)
}

// Advance steps the site by one timestep.
func (s *Sites) Advance(ctx context.Context, run sim.RunID) error {
	if err := sim.ValidateRun(run); err != nil {
		return err
	}
	return s.graphql(ctx, advanceMutation, map[string]any{"siteRefs": []sim.RunID{run}}, nil)
}

// Remove deletes the site.
func (s *Sites) Remove(ctx context.Context, run sim.RunID) error {
	if err := sim.ValidateRun(run); err != nil {
		return err
	}
	return s.graphql(ctx, removeSiteMutation, map[string]any{"siteRef": run}, nil)
}

// Points reads the site's point records through the Haystack filter endpoint.
func (s *Sites) Points(ctx context.Context, run sim.RunID, types ...sim.PointType) ([]sim.Point, error) {
	if err := sim.ValidateRun(run); err != nil {
		return nil, err
	}
	rel := &url.URL{Path: "api/read", RawQuery: url.Values{"filter": {pointFilter(run)}}.Encode()}
	var grid readGrid
	if err := s.t.DoURL(ctx, http.MethodGet, rel, nil, &grid); err != nil {
		return nil, err
	}
	points := make([]sim.Point, 0, len(grid.Rows))
	for _, row := range grid.Rows {
		pt, ok := pointFromRow(row)
		if !ok || !matchesType(pt.Type, types) {
			continue
		}
		points = append(points, pt)
	}
	return points, nil
}

// Outputs reads curVal of every cur point, keyed by display name.
func (s *Sites) Outputs(ctx context.Context, run sim.RunID) ([]sim.PointValue, error) {
	if err := sim.ValidateRun(run); err != nil {
		return nil, err
	}
	data, err := s.site(ctx, siteOutputsQuery, map[string]any{"siteRef": run})
	if err != nil {
		return nil, err
	}
	var values []sim.PointValue
	for _, p := range data.Viewer.Sites[0].Points {
		for _, tag := range p.Tags {
			if tag.Key == "curVal" {
				values = append(values, sim.PointValue{Name: decodeString(p.Dis), Value: Decode(tag.Value)})
				break
			}
		}
	}
	return values, nil
}

// WritePoints writes each value by display name at level 1.
func (s *Sites) WritePoints(ctx context.Context, run sim.RunID, writes []sim.PointWrite) error {
	if err := sim.ValidateRun(run); err != nil {
		return err
	}
	for _, w := range writes {
		if strings.TrimSpace(w.Name) == "" {
			return sim.NewClientError(sim.KindInvalidArgument, "write for point %s has no name", w.ID)
		}
		vars := map[string]any{"siteRef": run, "pointName": w.Name, "level": writeLevel}
		if w.Value != nil {
			vars["value"] = w.Value
		}
		if err := s.graphql(ctx, writePointMutation, vars, nil); err != nil {
			return fmt.Errorf("write %s: %w", w.Name, err)
		}
	}
	return nil
}

// SimTime returns the site's datetime.
func (s *Sites) SimTime(ctx context.Context, run sim.RunID) (time.Time, error) {
	if err := sim.ValidateRun(run); err != nil {
		return time.Time{}, err
	}
	data, err := s.site(ctx, siteTimeQuery, map[string]any{"siteRef": run})
	if err != nil {
		return time.Time{}, err
	}
	return api.ParseSimTime(data.Viewer.Sites[0].Datetime)
}

// SetAlias binds alias to run.
func (s *Sites) SetAlias(ctx context.Context, alias string, run sim.RunID) error {
	if err := sim.ValidateAlias(alias); err != nil {
		return err
	}
	if err := sim.ValidateRun(run); err != nil {
		return err
	}
	return s.t.Do(ctx, http.MethodPut, aliasPath(alias), aliasRequest{RefID: string(run)}, nil)
}

// Alias resolves alias.
func (s *Sites) Alias(ctx context.Context, alias string) (sim.RunID, error) {
	if err := sim.ValidateAlias(alias); err != nil {
		return "", err
	}
	var resp aliasResponse
	if err := s.t.Do(ctx, http.MethodGet, aliasPath(alias), nil, &resp); err != nil {
		return "", err
	}
	return sim.RunID(resp.RefID), nil
}

// Aliases lists all aliases.
func (s *Sites) Aliases(ctx context.Context) (map[string]sim.RunID, error) {
	aliases := map[string]sim.RunID{}
	if err := s.t.Do(ctx, http.MethodGet, "api/v2/aliases", nil, &aliases); err != nil {
		return nil, err
	}
	return aliases, nil
}

func aliasPath(alias string) string {
	return "api/v2/aliases/" + url.PathEscape(alias)
}

func matchesType(t sim.PointType, types []sim.PointType) bool {
	if len(types) == 0 {
		return true
	}
	for _, want := range types {
		if t == want {
			return true
		}
	}
	return false
}

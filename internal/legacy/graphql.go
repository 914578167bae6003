package legacy

import (
	"encoding/json"
	"strings"
)

// Documents are static; all values travel as variables.
const (
	siteStatusQuery = `query SiteStatus($siteRef: String!) {
  viewer { sites(siteRef: $siteRef) { simStatus } }
}`

	siteTimeQuery = `query SiteTime($siteRef: String!) {
  viewer { sites(siteRef: $siteRef) { datetime } }
}`

	siteOutputsQuery = `query SiteOutputs($siteRef: String!) {
  viewer { sites(siteRef: $siteRef) { points(cur: true) { dis tags { key value } } } }
}`

	addSiteMutation = `mutation AddSite($osmName: String!, $uploadID: String!) {
  addSite(osmName: $osmName, uploadID: $uploadID)
}`

	runSiteMutation = `mutation RunSite($siteRef: String!, $startDatetime: String, $endDatetime: String, $timescale: Float, $realtime: Boolean, $externalClock: Boolean) {
  runSite(siteRef: $siteRef, startDatetime: $startDatetime, endDatetime: $endDatetime, timescale: $timescale, realtime: $realtime, externalClock: $externalClock)
}`

	stopSiteMutation = `mutation StopSite($siteRef: String!) {
  stopSite(siteRef: $siteRef)
}`

	removeSiteMutation = `mutation RemoveSite($siteRef: String!) {
  removeSite(siteRef: $siteRef)
}`

	advanceMutation = `mutation Advance($siteRefs: [String]!) {
  advance(siteRefs: $siteRefs)
}`

	writePointMutation = `mutation WritePoint($siteRef: String!, $pointName: String!, $value: Float, $level: Int) {
  writePoint(siteRef: $siteRef, pointName: $pointName, value: $value, level: $level)
}`
)

// writeLevel is the priority array slot the client writes into.
const writeLevel = 1

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

func (r graphQLResponse) errorMessage() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		if m := strings.TrimSpace(e.Message); m != "" {
			msgs = append(msgs, m)
		}
	}
	return strings.Join(msgs, "; ")
}

// siteData is the shape shared by the viewer.sites queries.
type siteData struct {
	Viewer struct {
		Sites []struct {
			SimStatus string `json:"simStatus"`
			Datetime  string `json:"datetime"`
			Points    []struct {
				Dis  string `json:"dis"`
				Tags []struct {
					Key   string `json:"key"`
					Value string `json:"value"`
				} `json:"tags"`
			} `json:"points"`
		} `json:"sites"`
	} `json:"viewer"`
}

type uploadURLRequest struct {
	Name string `json:"name"`
}

type uploadURLResponse struct {
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields"`
}

type aliasRequest struct {
	RefID string `json:"ref_id"`
}

type aliasResponse struct {
	RefID string `json:"ref_id"`
}

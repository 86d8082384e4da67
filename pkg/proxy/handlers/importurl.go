package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"voygen/gateway/pkg/content"
	"voygen/gateway/pkg/mcp"
	"voygen/gateway/pkg/proxy"
	"voygen/gateway/pkg/telemetry/logging"
)

// DefaultParseStrategy is used when a parse request names no strategy.
const DefaultParseStrategy = "schedule_first"

// ImportEndpoints are listed by GET /voygen/import-from-url/status.
var ImportEndpoints = []string{
	"POST /voygen/import-from-url/content",
	"POST /voygen/import-from-url/parse",
	"GET /voygen/import-from-url/status",
}

type importPageParams struct {
	TripID      json.RawMessage `json:"trip_id"`
	URL         string          `json:"url"`
	SaveRawHTML bool            `json:"save_raw_html"`
	SaveText    bool            `json:"save_text"`
	Tag         string          `json:"tag"`
}

type importParseParams struct {
	TripID    json.RawMessage `json:"trip_id"`
	URL       json.RawMessage `json:"url"`
	Strategy  json.RawMessage `json:"strategy"`
	Overwrite string          `json:"overwrite"`
	DryRun    bool            `json:"dry_run"`
}

type contentResponse struct {
	OK               bool             `json:"ok"`
	URL              string           `json:"url"`
	ExtractedContent *content.Article `json:"extractedContent"`
	SavedToDatabase  bool             `json:"savedToDatabase"`
}

type parseResponse struct {
	OK     bool            `json:"ok"`
	URL    json.RawMessage `json:"url"`
	TripID json.RawMessage `json:"trip_id"`
	Result json.RawMessage `json:"result"`
}

// ImportHandler imports travel pages by URL.
type ImportHandler struct {
	Forwarder Forwarder
	Extractor ContentExtractor

	// ExposeErrors writes upstream error text into 500 responses.
	ExposeErrors bool
}

// NewImportHandler creates the import-from-url handler.
func NewImportHandler(fwd Forwarder, extractor ContentExtractor, exposeErrors bool) *ImportHandler {
	return &ImportHandler{Forwarder: fwd, Extractor: extractor, ExposeErrors: exposeErrors}
}

// Content handles POST /voygen/import-from-url/content. The page is fetched
// and extracted by the gateway itself. When save_to_database and trip_id are
// both set the page is also imported into the data upstream; a failure
// there is logged and does not fail the request.
func (h *ImportHandler) Content(w http.ResponseWriter, r *http.Request) {
	const failure = "Failed to import content from URL"

	body, err := proxy.ParseJSONBody(r)
	if err != nil {
		proxy.WriteError(w, r, failure, err, h.ExposeErrors)
		return
	}
	if !body.Has("url") {
		proxy.WriteError(w, r, failure, proxy.MissingFields("url", false), h.ExposeErrors)
		return
	}

	pageURL := body.String("url")
	if !isAbsoluteURL(pageURL) {
		proxy.WriteError(w, r, failure, proxy.InvalidValue("url", "Invalid URL format"), h.ExposeErrors)
		return
	}

	article, err := h.Extractor.Extract(r.Context(), pageURL)
	if err != nil {
		proxy.WriteError(w, r, failure, err, h.ExposeErrors)
		return
	}

	save := body.Has("save_to_database") && body.Has("trip_id")
	if save {
		_, err := h.Forwarder.Call(r.Context(), mcp.UpstreamData, "import_trip_page", importPageParams{
			TripID:      body.Value("trip_id"),
			URL:         pageURL,
			SaveRawHTML: true,
			SaveText:    true,
			Tag:         "api-import",
		})
		if err != nil {
			logging.FromContext(r.Context()).Warn("failed to save imported page to database",
				"url", pageURL,
				"error", err,
			)
		}
	}

	_ = proxy.WriteJSONResponse(w, http.StatusOK, &contentResponse{
		OK:               true,
		URL:              pageURL,
		ExtractedContent: article,
		SavedToDatabase:  save,
	})
}

// Parse handles POST /voygen/import-from-url/parse. The data upstream
// fetches and parses the page into the trip.
func (h *ImportHandler) Parse(w http.ResponseWriter, r *http.Request) {
	const failure = "Failed to parse trip content from URL"

	body, err := proxy.ParseJSONBody(r)
	if err != nil {
		proxy.WriteError(w, r, failure, err, h.ExposeErrors)
		return
	}
	if !body.Has("url") || !body.Has("trip_id") {
		proxy.WriteError(w, r, failure, proxy.MissingFields("url, trip_id", true), h.ExposeErrors)
		return
	}

	result, err := h.Forwarder.Call(r.Context(), mcp.UpstreamData, "import_trip_page_and_parse", importParseParams{
		TripID:    body.Value("trip_id"),
		URL:       body.Value("url"),
		Strategy:  body.ValueOr("parse_strategy", DefaultParseStrategy),
		Overwrite: "none",
		DryRun:    false,
	})
	if err != nil {
		proxy.WriteError(w, r, failure, err, h.ExposeErrors)
		return
	}

	_ = proxy.WriteJSONResponse(w, http.StatusOK, &parseResponse{
		OK:     true,
		URL:    body.Value("url"),
		TripID: body.Value("trip_id"),
		Result: result,
	})
}

// Status returns the handler for GET /voygen/import-from-url/status.
func (h *ImportHandler) Status() http.Handler {
	return &StatusHandler{Service: "import-from-url", Endpoints: ImportEndpoints}
}

// isAbsoluteURL reports whether s parses as a URL with a scheme.
func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return false
	}
	return u.Host != "" || u.Opaque != ""
}

package handlers

import (
	"encoding/json"
	"net/http"

	"voygen/gateway/pkg/mcp"
	"voygen/gateway/pkg/proxy"
)

// DefaultTemplate is the proposal template used when none is requested.
const DefaultTemplate = "standard"

// PublishEndpoints are listed by GET /voygen/publish/status.
var PublishEndpoints = []string{
	"POST /voygen/publish/proposal",
	"POST /voygen/publish/preview",
	"GET /voygen/publish/templates",
	"GET /voygen/publish/status",
}

type proposalOptions struct {
	IncludeImages bool `json:"include_images"`
	ImageQuality  int  `json:"image_quality"`
}

type generateProposalParams struct {
	TripID   json.RawMessage `json:"trip_id"`
	Template json.RawMessage `json:"template"`
	Options  proposalOptions `json:"options"`
}

type tripMetadata struct {
	Title       json.RawMessage `json:"title"`
	Dates       json.RawMessage `json:"dates"`
	Status      string          `json:"status"`
	Description json.RawMessage `json:"description"`
}

type publishDocumentParams struct {
	TripID       json.RawMessage `json:"trip_id"`
	HTMLContent  json.RawMessage `json:"html_content"`
	Filename     string          `json:"filename"`
	TripMetadata tripMetadata    `json:"trip_metadata"`
}

type previewParams struct {
	TripID   json.RawMessage `json:"trip_id"`
	Template json.RawMessage `json:"template"`
}

type proposalResponse struct {
	OK            bool            `json:"ok"`
	TripID        json.RawMessage `json:"trip_id"`
	Template      json.RawMessage `json:"template"`
	Proposal      json.RawMessage `json:"proposal"`
	Published     json.RawMessage `json:"published"`
	PublishResult json.RawMessage `json:"publishResult"`
}

type previewResponse struct {
	OK       bool            `json:"ok"`
	TripID   json.RawMessage `json:"trip_id"`
	Template json.RawMessage `json:"template"`
	Preview  json.RawMessage `json:"preview"`
}

type templatesResponse struct {
	OK        bool            `json:"ok"`
	Templates json.RawMessage `json:"templates"`
}

// PublishHandler generates travel proposals through the data upstream and
// optionally publishes them through the publish upstream.
type PublishHandler struct {
	Forwarder Forwarder

	// ExposeErrors writes upstream error text into 500 responses.
	ExposeErrors bool
}

// NewPublishHandler creates the publish handler.
func NewPublishHandler(fwd Forwarder, exposeErrors bool) *PublishHandler {
	return &PublishHandler{Forwarder: fwd, ExposeErrors: exposeErrors}
}

// Proposal handles POST /voygen/publish/proposal. With publish_to_github
// set, a generated proposal carrying html_content is published as a travel
// document; a publish failure fails the request.
func (h *PublishHandler) Proposal(w http.ResponseWriter, r *http.Request) {
	const failure = "Failed to generate proposal"

	body, err := proxy.ParseJSONBody(r)
	if err != nil {
		proxy.WriteError(w, r, failure, err, h.ExposeErrors)
		return
	}
	if !body.Has("trip_id") {
		proxy.WriteError(w, r, failure, proxy.MissingFields("trip_id", false), h.ExposeErrors)
		return
	}

	tripID := body.Value("trip_id")
	template := body.Default("template", DefaultTemplate)

	proposal, err := h.Forwarder.Call(r.Context(), mcp.UpstreamData, "generate_proposal", generateProposalParams{
		TripID:   tripID,
		Template: template,
		Options:  proposalOptions{IncludeImages: true, ImageQuality: 85},
	})
	if err != nil {
		proxy.WriteError(w, r, failure, err, h.ExposeErrors)
		return
	}

	var publishResult json.RawMessage
	if body.Has("publish_to_github") {
		if doc, ok := proposalDocument(proposal); ok {
			tripText := body.String("trip_id")
			publishResult, err = h.Forwarder.Call(r.Context(), mcp.UpstreamPublish, "publish_travel_document_with_dashboard_update", publishDocumentParams{
				TripID:      tripID,
				HTMLContent: doc.Value("html_content"),
				Filename:    "trip-" + tripText + "-proposal",
				TripMetadata: tripMetadata{
					Title:       doc.ValueOr("title", "Trip "+tripText),
					Dates:       doc.ValueOr("dates", "TBD"),
					Status:      "proposal",
					Description: doc.ValueOr("description", "Travel proposal"),
				},
			})
			if err != nil {
				proxy.WriteError(w, r, failure, err, h.ExposeErrors)
				return
			}
		}
	}

	_ = proxy.WriteJSONResponse(w, http.StatusOK, &proposalResponse{
		OK:            true,
		TripID:        tripID,
		Template:      template,
		Proposal:      proposal,
		Published:     body.Default("publish_to_github", false),
		PublishResult: publishResult,
	})
}

// proposalDocument returns the proposal as an object when it carries an
// html_content key.
func proposalDocument(proposal json.RawMessage) (proxy.Body, bool) {
	var doc proxy.Body
	if err := json.Unmarshal(proposal, &doc); err != nil || doc == nil {
		return nil, false
	}
	_, ok := doc["html_content"]
	return doc, ok
}

// Preview handles POST /voygen/publish/preview.
func (h *PublishHandler) Preview(w http.ResponseWriter, r *http.Request) {
	const failure = "Failed to preview proposal"

	body, err := proxy.ParseJSONBody(r)
	if err != nil {
		proxy.WriteError(w, r, failure, err, h.ExposeErrors)
		return
	}
	if !body.Has("trip_id") {
		proxy.WriteError(w, r, failure, proxy.MissingFields("trip_id", false), h.ExposeErrors)
		return
	}

	template := body.Default("template", DefaultTemplate)
	preview, err := h.Forwarder.Call(r.Context(), mcp.UpstreamData, "preview_proposal", previewParams{
		TripID:   body.Value("trip_id"),
		Template: template,
	})
	if err != nil {
		proxy.WriteError(w, r, failure, err, h.ExposeErrors)
		return
	}

	_ = proxy.WriteJSONResponse(w, http.StatusOK, &previewResponse{
		OK:       true,
		TripID:   body.Value("trip_id"),
		Template: template,
		Preview:  preview,
	})
}

// Templates handles GET /voygen/publish/templates.
func (h *PublishHandler) Templates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Forwarder.Call(r.Context(), mcp.UpstreamData, "list_templates", struct{}{})
	if err != nil {
		proxy.WriteError(w, r, "Failed to list templates", err, h.ExposeErrors)
		return
	}

	_ = proxy.WriteJSONResponse(w, http.StatusOK, &templatesResponse{
		OK:        true,
		Templates: templates,
	})
}

// Status returns the handler for GET /voygen/publish/status.
func (h *PublishHandler) Status() http.Handler {
	return &StatusHandler{Service: "publish", Endpoints: PublishEndpoints}
}

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"voygen/gateway/pkg/mcp"
	"voygen/gateway/pkg/proxy"
)

// DefaultSite tags ingested records when the caller names no site.
const DefaultSite = "voygen-api"

// ExtractEndpoints are listed by GET /voygen/extract/status.
var ExtractEndpoints = []string{
	"POST /voygen/extract/hotels",
	"POST /voygen/extract/rooms",
	"GET /voygen/extract/status",
}

type ingestHotelsParams struct {
	TripID    json.RawMessage `json:"trip_id"`
	Hotels    json.RawMessage `json:"hotels"`
	Site      json.RawMessage `json:"site"`
	SessionID json.RawMessage `json:"session_id,omitempty"`
}

type ingestRoomsParams struct {
	TripID       json.RawMessage `json:"trip_id"`
	RoomsByHotel json.RawMessage `json:"rooms_by_hotel"`
	Site         json.RawMessage `json:"site"`
}

type ingestResponse struct {
	OK      bool            `json:"ok"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// ExtractHandler ingests hotel and room data into the data upstream.
type ExtractHandler struct {
	Forwarder Forwarder

	// ExposeErrors writes upstream error text into 500 responses.
	ExposeErrors bool
}

// NewExtractHandler creates the extract handler.
func NewExtractHandler(fwd Forwarder, exposeErrors bool) *ExtractHandler {
	return &ExtractHandler{Forwarder: fwd, ExposeErrors: exposeErrors}
}

// Hotels handles POST /voygen/extract/hotels.
func (h *ExtractHandler) Hotels(w http.ResponseWriter, r *http.Request) {
	const failure = "Failed to extract hotels"

	body, err := proxy.ParseJSONBody(r)
	if err != nil {
		proxy.WriteError(w, r, failure, err, h.ExposeErrors)
		return
	}
	if !body.Has("trip_id") || !body.IsArray("hotels") {
		proxy.WriteError(w, r, failure, proxy.MissingFields("trip_id, hotels (array)", true), h.ExposeErrors)
		return
	}

	result, err := h.Forwarder.Call(r.Context(), mcp.UpstreamData, "ingest_hotels", ingestHotelsParams{
		TripID:    body.Value("trip_id"),
		Hotels:    body.Value("hotels"),
		Site:      body.ValueOr("site", DefaultSite),
		SessionID: body.Value("session_id"),
	})
	if err != nil {
		proxy.WriteError(w, r, failure, err, h.ExposeErrors)
		return
	}

	_ = proxy.WriteJSONResponse(w, http.StatusOK, &ingestResponse{
		OK:      true,
		Message: fmt.Sprintf("Ingested %d hotels for trip %s", body.Len("hotels"), body.String("trip_id")),
		Result:  result,
	})
}

// Rooms handles POST /voygen/extract/rooms.
func (h *ExtractHandler) Rooms(w http.ResponseWriter, r *http.Request) {
	const failure = "Failed to extract rooms"

	body, err := proxy.ParseJSONBody(r)
	if err != nil {
		proxy.WriteError(w, r, failure, err, h.ExposeErrors)
		return
	}
	if !body.Has("trip_id") || !body.Has("rooms_by_hotel") {
		proxy.WriteError(w, r, failure, proxy.MissingFields("trip_id, rooms_by_hotel", true), h.ExposeErrors)
		return
	}

	result, err := h.Forwarder.Call(r.Context(), mcp.UpstreamData, "ingest_rooms", ingestRoomsParams{
		TripID:       body.Value("trip_id"),
		RoomsByHotel: body.Value("rooms_by_hotel"),
		Site:         body.ValueOr("site", DefaultSite),
	})
	if err != nil {
		proxy.WriteError(w, r, failure, err, h.ExposeErrors)
		return
	}

	_ = proxy.WriteJSONResponse(w, http.StatusOK, &ingestResponse{
		OK:      true,
		Message: "Ingested rooms for trip " + body.String("trip_id"),
		Result:  result,
	})
}

// Status returns the handler for GET /voygen/extract/status.
func (h *ExtractHandler) Status() http.Handler {
	return &StatusHandler{Service: "extract", Endpoints: ExtractEndpoints}
}

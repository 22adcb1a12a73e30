package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/ngmaloney/surf-spotter/internal/geo"
	"github.com/ngmaloney/surf-spotter/internal/logging"
	"github.com/ngmaloney/surf-spotter/internal/models"
	"github.com/ngmaloney/surf-spotter/internal/pipeline"
	"github.com/ngmaloney/surf-spotter/internal/validation"
)

type handler struct {
	recommender Recommender
	spots       SpotLister
	timeout     time.Duration
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// recommendationRequest is the query of GET /api/recommendations
type recommendationRequest struct {
	Address  string  `json:"address"`
	MaxPrice float64 `json:"max_price" validate:"gte=0"`
	MaxHours float64 `json:"max_hours" validate:"gte=0"`
	ColorBy  string  `json:"color_by" validate:"omitempty,oneof=distance price"`
	Days     *int    `json:"days" validate:"omitempty,min=1,max=16"` // max is pipeline.MaxHorizonDays
}

func (req recommendationRequest) options() pipeline.Options {
	opts := pipeline.Options{
		MaxPriceEUR:    req.MaxPrice,
		MaxDriveHours:  req.MaxHours,
		ColorCriterion: models.ColorCriterion(req.ColorBy),
	}
	if req.Days != nil {
		opts.HorizonDays = *req.Days
	}
	return opts
}

// spotsRequest is the optional reference point of GET /api/spots
type spotsRequest struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

// GetRecommendations runs the pipeline for ?address=
//
// Optional parameters: max_price (EUR), max_hours, color_by (distance|price)
// and days (1-16). A blank address is left to the pipeline, which reports it
// as an unresolved origin.
func (h *handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	req, err := bindRecommendationRequest(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	address, opts := req.Address, req.options()

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	rec, err := h.recommender.Run(ctx, address, opts)
	if err != nil {
		switch {
		case pipeline.IsOriginUnresolved(err):
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "origin unresolved", Reason: unresolvedReason(err)})
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: "request timed out"})
		default:
			logging.Ctx(ctx).Error().Err(err).Str("address", address).Msg("recommendation failed")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "recommendation failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, newRecommendationView(rec))
}

// ListSpots returns the catalog. With ?lat=&lon= each spot carries its
// straight-line distance from that point.
func (h *handler) ListSpots(w http.ResponseWriter, r *http.Request) {
	var from *models.Location
	if lat, lon := r.URL.Query().Get("lat"), r.URL.Query().Get("lon"); lat != "" || lon != "" {
		loc, err := parseLocation(lat, lon)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		from = &loc
	}

	spots, err := h.spots.LoadSpots(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("loading spots")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "catalog unavailable"})
		return
	}

	views := make([]spotView, 0, len(spots))
	for _, s := range spots {
		v := spotView{SpotProfile: s}
		if from != nil && s.Location != nil {
			km := models.Round(geo.HaversineKm(*from, *s.Location), 1)
			v.StraightLineKm = &km
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, views)
}

func bindRecommendationRequest(q url.Values) (recommendationRequest, error) {
	req := recommendationRequest{
		Address: q.Get("address"),
		ColorBy: strings.ToLower(strings.TrimSpace(q.Get("color_by"))),
	}
	var err error
	if req.MaxPrice, err = parseFloat("max_price", q.Get("max_price")); err != nil {
		return req, err
	}
	if req.MaxHours, err = parseFloat("max_hours", q.Get("max_hours")); err != nil {
		return req, err
	}
	if days := q.Get("days"); days != "" {
		n, err := strconv.Atoi(days)
		if err != nil {
			return req, errors.New("days must be an integer")
		}
		req.Days = &n
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		return req, verr
	}
	return req, nil
}

func parseFloat(name, s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}

func parseLocation(lat, lon string) (models.Location, error) {
	var req spotsRequest
	var err error
	if req.Lat, err = parseFloat("lat", lat); err != nil || lat == "" {
		return models.Location{}, errors.New("lat and lon must both be given as numbers")
	}
	if req.Lon, err = parseFloat("lon", lon); err != nil || lon == "" {
		return models.Location{}, errors.New("lat and lon must both be given as numbers")
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		return models.Location{}, verr
	}
	return models.Location{Latitude: req.Lat, Longitude: req.Lon}, nil
}

func unresolvedReason(err error) string {
	var unresolved *models.OriginUnresolvedError
	if errors.As(err, &unresolved) {
		return unresolved.Reason
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("encoding response")
	}
}

package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lonestar-outdoor/boardmap/internal/model"
	"github.com/lonestar-outdoor/boardmap/internal/store"
)

// billboardItem is the list-item shape the map frontend consumes.
type billboardItem struct {
	ID               string              `json:"id"`
	Name             *string             `json:"name"`
	Vendor           *string             `json:"vendor"`
	Address          *string             `json:"address"`
	Zipcode          *string             `json:"zipcode"`
	SourceProperties model.RawProperties `json:"source_properties"`
	Lat              float64             `json:"lat"`
	Lng              float64             `json:"lng"`
	BoardType        model.BoardType     `json:"board_type"`
	TrafficTier      model.TrafficTier   `json:"traffic_tier"`
	PriceTier        model.PriceTier     `json:"price_tier"`
	ImageURL         *string             `json:"image_url"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// cityScope expands the city_id / state_id query parameters into the set
// of city IDs to filter by. nil means unscoped; empty non-nil means the
// state has no cities and the response short-circuits to empty.
func (s *Server) cityScope(r *http.Request) ([]string, error) {
	if cityID := parseUUID(r.URL.Query().Get("city_id")); cityID != "" {
		return []string{cityID}, nil
	}
	stateID := parseUUID(r.URL.Query().Get("state_id"))
	if stateID == "" {
		return nil, nil
	}

	cities, err := s.store.ListCities(r.Context(), stateID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(cities))
	for _, c := range cities {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (s *Server) handleBillboards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.Filter{
		Zipcodes: parseZipcodes(q.Get("zipcodes")),
		Limit:    parseLimit(q.Get("limit")),
	}

	if v := q.Get("board_type"); v != "" {
		bt, err := model.ParseBoardType(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.BoardType = bt
	}
	if v := q.Get("traffic_tier"); v != "" {
		tt, err := model.ParseTrafficTier(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.TrafficTier = tt
	}
	if v := q.Get("price_tier"); v != "" {
		pt, err := model.ParsePriceTier(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.PriceTier = pt
	}

	cityIDs, err := s.cityScope(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if cityIDs != nil && len(cityIDs) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"billboards": []billboardItem{},
			"totalCount": 0,
		})
		return
	}
	filter.CityIDs = cityIDs

	// The data page and the exact count are independent reads; run them
	// in parallel.
	var (
		billboards []model.Billboard
		totalCount int64
	)
	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		billboards, err = s.store.ListBillboards(gctx, filter)
		return err
	})
	g.Go(func() error {
		countFilter := filter
		countFilter.Limit = 0
		var err error
		totalCount, err = s.store.CountBillboards(gctx, countFilter)
		return err
	})
	if err := g.Wait(); err != nil {
		zap.L().Error("billboard query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	items := make([]billboardItem, 0, len(billboards))
	for _, b := range billboards {
		items = append(items, billboardItem{
			ID:               b.ID,
			Name:             b.Name,
			Vendor:           b.Vendor,
			Address:          b.Address,
			Zipcode:          b.Zipcode,
			SourceProperties: b.SourceProperties,
			Lat:              b.Latitude,
			Lng:              b.Longitude,
			BoardType:        b.BoardType,
			TrafficTier:      b.TrafficTier,
			PriceTier:        b.PriceTier,
			ImageURL:         b.ImageURL,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"billboards": items,
		"totalCount": totalCount,
	})
}

func (s *Server) handleZipcodes(w http.ResponseWriter, r *http.Request) {
	cityIDs, err := s.cityScope(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if cityIDs != nil && len(cityIDs) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"zipcodes": []string{}})
		return
	}

	raw, err := s.store.ListZipcodes(r.Context(), cityIDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	seen := make(map[string]bool)
	zipcodes := make([]string, 0, len(raw))
	for _, z := range raw {
		t := strings.TrimSpace(z)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		zipcodes = append(zipcodes, t)
	}
	sortZipcodes(zipcodes)

	writeJSON(w, http.StatusOK, map[string]any{"zipcodes": zipcodes})
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	states, err := s.store.ListStates(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if states == nil {
		states = []model.State{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"states": states})
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	stateID := parseUUID(r.URL.Query().Get("state_id"))
	if stateID == "" {
		writeError(w, http.StatusBadRequest, "state_id is required")
		return
	}

	cities, err := s.store.ListCities(r.Context(), stateID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if cities == nil {
		cities = []model.City{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"cities": cities})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

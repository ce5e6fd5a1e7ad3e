package heatmap

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"optionpulse/internal/domain/catalog"
	heatmapdomain "optionpulse/internal/domain/heatmap"
	"optionpulse/internal/domain/sentiment"
	heatmapsvc "optionpulse/internal/services/heatmap"
	"optionpulse/pkg/clock"
	"optionpulse/pkg/errors"
	"optionpulse/pkg/logger"
)

// Handler serves the heatmap read surface
type Handler struct {
	engine  *heatmapsvc.Service
	catalog catalog.Repository
	clock   clock.Clock
	log     *logger.Logger
}

// New creates the heatmap handler
func New(engine *heatmapsvc.Service, catalogRepo catalog.Repository, clk clock.Clock) *Handler {
	return &Handler{
		engine:  engine,
		catalog: catalogRepo,
		clock:   clk,
		log:     logger.Get().With("component", "heatmap_api"),
	}
}

// HandleHeatmap serves GET /heatmap
func (h *Handler) HandleHeatmap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	result, err := h.compute(r)
	if err != nil {
		h.writeComputeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

// HandleExport serves GET /heatmap/export as CSV
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	result, err := h.compute(r)
	if err != nil {
		h.writeComputeError(w, err)
		return
	}

	rows := h.engine.ExportRows(result)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="heatmap.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	cw.Write([]string{
		"underlying", "expiration", "contract_type", "strike",
		"score", "trend", "confidence", "news_count", "analyst_count",
	})
	for _, row := range rows {
		cw.Write([]string{
			row.Underlying,
			row.Expiration.Format("2006-01-02"),
			string(row.ContractType),
			row.Strike.String(),
			strconv.FormatFloat(row.Score, 'f', 2, 64),
			string(row.Trend),
			strconv.FormatFloat(row.Confidence, 'f', 2, 64),
			strconv.Itoa(row.NewsCount),
			strconv.Itoa(row.AnalystCount),
		})
	}
	cw.Flush()
}

// HandleSweep serves POST /cache/sweep for on-demand expiry reclamation
func (h *Handler) HandleSweep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	deleted, err := h.engine.SweepExpired(r.Context())
	if err != nil {
		h.log.Errorw("Cache sweep failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "cache unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]int{"deleted": deleted})
}

func (h *Handler) compute(r *http.Request) (*heatmapdomain.Result, error) {
	filter, err := parseFilter(r)
	if err != nil {
		return nil, err
	}

	notBefore := clock.Midnight(h.clock.Now())

	var contracts []catalog.OptionContract
	if len(filter.Underlyings) > 0 {
		contracts, err = h.catalog.ListByUnderlyings(r.Context(), filter.Underlyings, notBefore)
	} else {
		contracts, err = h.catalog.ListActive(r.Context(), notBefore)
	}
	if err != nil {
		return nil, errors.Wrap(err, "loading contracts")
	}

	return h.engine.GetHeatmap(r.Context(), contracts, filter)
}

func (h *Handler) writeComputeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errors.ErrInvalidFilter), errors.Is(err, errors.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errors.ErrCatalogUnavailable):
		h.log.Errorw("Catalog unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "contract catalog unavailable")
	default:
		h.log.Errorw("Heatmap request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// parseFilter builds a domain filter from query parameters. Unset parameters
// stay unset; defaulting is the domain's job.
func parseFilter(r *http.Request) (heatmapdomain.Filter, error) {
	q := r.URL.Query()
	var filter heatmapdomain.Filter

	if raw := q.Get("underlyings"); raw != "" {
		for _, symbol := range strings.Split(raw, ",") {
			symbol = strings.ToUpper(strings.TrimSpace(symbol))
			if symbol != "" {
				filter.Underlyings = append(filter.Underlyings, symbol)
			}
		}
	}

	filter.ExpiryBucket = heatmapdomain.ExpiryBucket(q.Get("expiry_bucket"))
	filter.ScoringMode = sentiment.ScoringMode(q.Get("scoring_mode"))

	var err error
	if filter.MinScore, err = parseFloatParam(q.Get("min_score"), "min_score"); err != nil {
		return filter, err
	}
	if filter.MaxScore, err = parseFloatParam(q.Get("max_score"), "max_score"); err != nil {
		return filter, err
	}
	if raw := q.Get("min_confidence"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, errors.Wrapf(errors.ErrInvalidFilter, "min_confidence: %q is not a number", raw)
		}
		filter.MinConfidence = value
	}

	minStrike, maxStrike := q.Get("min_strike"), q.Get("max_strike")
	if minStrike != "" || maxStrike != "" {
		if minStrike == "" || maxStrike == "" {
			return filter, errors.Wrapf(errors.ErrInvalidFilter, "min_strike and max_strike must be set together")
		}
		lo, err := decimal.NewFromString(minStrike)
		if err != nil {
			return filter, errors.Wrapf(errors.ErrInvalidFilter, "min_strike: %q is not a number", minStrike)
		}
		hi, err := decimal.NewFromString(maxStrike)
		if err != nil {
			return filter, errors.Wrapf(errors.ErrInvalidFilter, "max_strike: %q is not a number", maxStrike)
		}
		filter.StrikeRange = &heatmapdomain.StrikeRange{Min: lo, Max: hi}
	}

	return filter, nil
}

func parseFloatParam(raw, name string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidFilter, "%s: %q is not a number", name, raw)
	}
	return &value, nil
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

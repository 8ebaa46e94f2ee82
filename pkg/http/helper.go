package http

import (
	"net/http"
	"strconv"
	"time"

	"lodgebook/pkg/config"
	apperrors "lodgebook/pkg/errors"
	"lodgebook/pkg/model"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = int64(v)
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractDateRange parses start_date/end_date query parameters in the
// YYYY-MM-DD calendar form used throughout the API.
func ExtractDateRange(r *http.Request) (model.DateRange, error) {
	query := r.URL.Query()
	startStr := query.Get("start_date")
	endStr := query.Get("end_date")

	if startStr == "" || endStr == "" {
		return model.DateRange{}, apperrors.InvalidInput("both 'start_date' and 'end_date' query parameters are required")
	}

	start, err := time.Parse(time.DateOnly, startStr)
	if err != nil {
		return model.DateRange{}, apperrors.InvalidInput("invalid start_date format, must be YYYY-MM-DD")
	}
	end, err := time.Parse(time.DateOnly, endStr)
	if err != nil {
		return model.DateRange{}, apperrors.InvalidInput("invalid end_date format, must be YYYY-MM-DD")
	}

	rng, err := model.NewDateRange(start, end)
	if err != nil {
		return model.DateRange{}, apperrors.ValidationWrap(err, "Invalid date range", map[string]any{"field": "end_date"})
	}

	return rng, nil
}

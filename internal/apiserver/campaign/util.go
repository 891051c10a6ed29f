package campaign

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/model"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/validation"
)

// parseDate 接受 RFC3339 或 YYYY-MM-DD（按 UTC 零点）
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

func checkDateRange(start time.Time, end *time.Time) error {
	if end != nil && end.Before(start) {
		return errors.New("end_date must not be before start_date")
	}
	return nil
}

// parseFilter 从查询参数构造过滤条件，兼容 start_date_from/start_date_to 旧参数名
func parseFilter(r *http.Request) (model.CampaignFilter, error) {
	q := r.URL.Query()
	f := model.CampaignFilter{Limit: DefaultListLimit}

	if v := q.Get("status"); v != "" {
		f.Status = model.CampaignStatus(v)
		if !f.Status.Valid() {
			return f, fmt.Errorf("unknown status %q", v)
		}
	}
	if v := q.Get("platform"); v != "" {
		f.Platform = model.Platform(v)
		if !f.Platform.Valid() {
			return f, fmt.Errorf("unknown platform %q", v)
		}
	}

	for _, p := range []struct {
		keys []string
		dst  **time.Time
	}{
		{[]string{"start_from", "start_date_from"}, &f.StartFrom},
		{[]string{"start_to", "start_date_to"}, &f.StartTo},
	} {
		for _, key := range p.keys {
			v := q.Get(key)
			if v == "" {
				continue
			}
			t, err := parseDate(v)
			if err != nil {
				return f, fmt.Errorf("%s: %w", key, err)
			}
			*p.dst = &t
			break
		}
	}

	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, errors.New("skip must be a non-negative integer")
		}
		f.Skip = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxListLimit {
			return f, fmt.Errorf("limit must be between 1 and %d", MaxListLimit)
		}
		f.Limit = n
	}
	return f, nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeValidationError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error(), "fields": verr.Fields})
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

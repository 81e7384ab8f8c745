// Package normalizer maps the prediction service's response shapes onto one view model.
package normalizer

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"FxSignals/internal/domain/models"
	"FxSignals/pkg/util"

	"github.com/tidwall/gjson"
)

// ErrMalformed is wrapped by every normalization failure.
var ErrMalformed = errors.New("malformed response")

var (
	decisionKeys  = []string{"signal", "decision", "action"}
	timestampKeys = []string{"date", "timestamp", "time"}
	valueKeys     = []string{"predicted_price", "predictedValue", "predicted_value", "price"}
	sharpeKeys    = []string{"sharpeRatio", "sharpe_ratio"}
	returnsKeys   = []string{"cumulativeReturns", "cumulative_returns"}

	messagePaths = []string{"detail", "message", "error", "error.message", "detail.0.msg"}
)

const maxMessageLen = 300

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// Normalize parses a 2xx body. A series with performance data wins over a single point.
func Normalize(body []byte) (*models.ViewModel, error) {
	if !gjson.ValidBytes(body) {
		return nil, malformed("invalid json")
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, malformed("root is not an object")
	}

	signals := root.Get("signals")
	perf := root.Get("performance")
	if signals.IsArray() && perf.IsObject() {
		return series(signals, perf)
	}

	signal := root.Get("signal")
	price := root.Get("predicted_price")
	if signal.Type == gjson.String && price.Type == gjson.Number {
		d, ok := models.ParseDecision(signal.Str)
		if !ok {
			return nil, malformed("unknown decision '%s'", signal.Str)
		}
		return models.NewPointViewModel(d, price.Num), nil
	}

	return nil, malformed("no recognized response shape")
}

func series(signals, perf gjson.Result) (*models.ViewModel, error) {
	entries := signals.Array()
	points := make([]models.SignalPoint, 0, len(entries))
	for i, entry := range entries {
		p, err := point(entry)
		if err != nil {
			return nil, fmt.Errorf("signals[%d]: %w", i, err)
		}
		points = append(points, p)
	}

	m, err := metrics(perf)
	if err != nil {
		return nil, err
	}
	return models.NewSeriesViewModel(points, m), nil
}

func point(entry gjson.Result) (models.SignalPoint, error) {
	switch {
	case entry.Type == gjson.String:
		d, ok := models.ParseDecision(entry.Str)
		if !ok {
			return models.SignalPoint{}, malformed("unknown decision '%s'", entry.Str)
		}
		return models.SignalPoint{Decision: d}, nil

	case entry.IsObject():
		raw, found := first(entry, decisionKeys)
		if !found || raw.Type != gjson.String {
			return models.SignalPoint{}, malformed("entry has no decision")
		}
		d, ok := models.ParseDecision(raw.Str)
		if !ok {
			return models.SignalPoint{}, malformed("unknown decision '%s'", raw.Str)
		}
		p := models.SignalPoint{Decision: d}

		if ts, found := first(entry, timestampKeys); found {
			switch ts.Type {
			case gjson.String:
				p.Timestamp = ts.Str
			case gjson.Number:
				t, ok := util.ParseTime(ts.Raw)
				if !ok {
					return models.SignalPoint{}, malformed("timestamp %s is not a unix time", ts.Raw)
				}
				p.Timestamp = t.UTC().Format(time.RFC3339)
			case gjson.Null:
			default:
				return models.SignalPoint{}, malformed("timestamp is not a string")
			}
		}

		if v, found := first(entry, valueKeys); found {
			switch v.Type {
			case gjson.Number:
				n := v.Num
				p.PredictedValue = &n
			case gjson.Null:
			default:
				return models.SignalPoint{}, malformed("predicted value is not a number")
			}
		}
		return p, nil

	default:
		return models.SignalPoint{}, malformed("entry is neither a string nor an object")
	}
}

// metrics reads the performance block. Both figures must be present and numeric.
func metrics(perf gjson.Result) (*models.Metrics, error) {
	sharpe, ok := first(perf, sharpeKeys)
	if !ok || sharpe.Type != gjson.Number {
		return nil, malformed("performance.sharpeRatio is not a number")
	}
	returns, ok := first(perf, returnsKeys)
	if !ok || returns.Type != gjson.Number {
		return nil, malformed("performance.cumulativeReturns is not a number")
	}
	return &models.Metrics{SharpeRatio: sharpe.Num, CumulativeReturns: returns.Num}, nil
}

func first(obj gjson.Result, keys []string) (gjson.Result, bool) {
	for _, k := range keys {
		if r := obj.Get(k); r.Exists() {
			return r, true
		}
	}
	return gjson.Result{}, false
}

// ErrorMessage extracts a human-readable message from an error body. It returns
// "" when the body carries none.
func ErrorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return ""
	}
	for _, path := range messagePaths {
		r := root.Get(path)
		if r.Type != gjson.String {
			continue
		}
		if msg := strings.TrimSpace(r.Str); msg != "" {
			return truncate(msg)
		}
	}
	return ""
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxMessageLen {
		return s
	}
	return string([]rune(s)[:maxMessageLen]) + "..."
}

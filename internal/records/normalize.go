package records

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"mango/internal/apperr"
	"mango/internal/timewindow"

	"github.com/google/uuid"
)

// Normalize validates and coerces an inbound raw record into the
// canonical schema. It is a pure transform: storage writes are the
// caller's job. Already-normalized records re-normalize to themselves.
func Normalize(raw map[string]any) (Record, error) {
	var r Record

	account, ok, err := coerceString(raw, "account")
	if err != nil {
		return Record{}, err
	}
	if !ok || strings.TrimSpace(account) == "" {
		return Record{}, apperr.Invalid("account", apperr.ReasonMissing)
	}
	r.Account = strings.TrimSpace(account)

	if v, ok, err := coerceString(raw, "uuid"); err != nil {
		return Record{}, err
	} else if ok && v != "" {
		if _, perr := uuid.Parse(v); perr != nil {
			return Record{}, apperr.Invalid("uuid", apperr.ReasonMalformed)
		}
		r.UUID = v
	} else {
		r.UUID = uuid.NewString()
	}

	if v, _, err := coerceString(raw, "uniqueid"); err != nil {
		return Record{}, err
	} else {
		r.UniqueID = v
	}

	if v, ok, err := coerceString(raw, "accountcode"); err != nil {
		return Record{}, err
	} else if ok && v != "" {
		r.AccountCode = v
	} else {
		r.AccountCode = r.Account
	}

	for _, f := range []struct {
		key string
		dst *string
	}{
		{"source", &r.Source},
		{"destination", &r.Destination},
		{"channel", &r.Channel},
		{"status", &r.Status},
	} {
		v, _, err := coerceString(raw, f.key)
		if err != nil {
			return Record{}, err
		}
		*f.dst = v
	}

	start, err := coerceTime(raw, "start")
	if err != nil {
		return Record{}, err
	}
	r.Start = start

	if r.Duration, err = coerceInt(raw, "duration"); err != nil {
		return Record{}, err
	}
	if r.Billsec, err = coerceInt(raw, "billsec"); err != nil {
		return Record{}, err
	}
	if r.Seconds, err = coerceInt(raw, "seconds"); err != nil {
		return Record{}, err
	}
	if r.Seconds == 0 {
		r.Seconds = r.Billsec
	}
	if r.Duration < 0 {
		return Record{}, apperr.Invalid("duration", apperr.ReasonMalformed)
	}
	if r.Billsec < 0 || r.Billsec > r.Duration {
		return Record{}, apperr.Invalid("billsec", apperr.ReasonMalformed)
	}

	if r.Public, err = coerceBool(raw, "public"); err != nil {
		return Record{}, err
	}
	if r.Assigned, err = coerceBool(raw, "assigned"); err != nil {
		return Record{}, err
	}

	return r, nil
}

func coerceString(raw map[string]any, key string) (string, bool, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", false, nil
	}
	switch t := v.(type) {
	case string:
		return t, true, nil
	case json.Number:
		return t.String(), true, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true, nil
	case int:
		return strconv.Itoa(t), true, nil
	case int64:
		return strconv.FormatInt(t, 10), true, nil
	default:
		return "", false, apperr.Invalid(key, apperr.ReasonMalformed)
	}
}

func coerceInt(raw map[string]any, key string) (int, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		return int(t), nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, apperr.Invalid(key, apperr.ReasonMalformed)
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, apperr.Invalid(key, apperr.ReasonMalformed)
		}
		return n, nil
	default:
		return 0, apperr.Invalid(key, apperr.ReasonMalformed)
	}
}

func coerceBool(raw map[string]any, key string) (bool, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return false, nil
	}
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "t", "yes", "1":
			return true, nil
		case "false", "f", "no", "0", "":
			return false, nil
		default:
			return false, apperr.Invalid(key, apperr.ReasonMalformed)
		}
	case float64:
		return t != 0, nil
	case int:
		return t != 0, nil
	default:
		return false, apperr.Invalid(key, apperr.ReasonMalformed)
	}
}

func coerceTime(raw map[string]any, key string) (time.Time, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return time.Time{}, nil
	}
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Truncate(time.Second), nil
	case string:
		if t == "" || t == "0001-01-01T00:00:00Z" {
			return time.Time{}, nil
		}
		parsed, err := timewindow.Parse(t)
		if err != nil {
			return time.Time{}, apperr.Invalid(key, apperr.ReasonMalformed)
		}
		return parsed.Truncate(time.Second), nil
	case float64:
		return time.Unix(int64(t), 0).UTC(), nil
	case int64:
		return time.Unix(t, 0).UTC(), nil
	case int:
		return time.Unix(int64(t), 0).UTC(), nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return time.Time{}, apperr.Invalid(key, apperr.ReasonMalformed)
		}
		return time.Unix(n, 0).UTC(), nil
	default:
		return time.Time{}, apperr.Invalid(key, apperr.ReasonMalformed)
	}
}

package tasks

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestTaskJSONOmitsUnsetScheduleFields(t *testing.T) {
	raw, err := json.Marshal(Task{Account: "acme", Status: StatusNew})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"start"`, `"stop"`, `"deadline"`} {
		if strings.Contains(string(raw), key) {
			t.Errorf("unset task serializes %s: %s", key, raw)
		}
	}

	deadline := time.Date(2017, 5, 1, 10, 0, 0, 0, time.UTC)
	raw, err = json.Marshal(Task{Account: "acme", Status: StatusNew, Deadline: &deadline})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"deadline":"2017-05-01T10:00:00Z"`) {
		t.Errorf("set deadline missing from %s", raw)
	}
}

package sessions

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"flash-backend/internal/shared/storage/docstore"
	"flash-backend/resume/model"
)

// Record is the durable active session for one user. After normalize every
// field is total: no nil slices, no nil preference bag.
type Record struct {
	UserID      string              `json:"userId"`
	Job         model.JobContext    `json:"job"`
	Resume      model.ResumePayload `json:"resume"`
	Preferences map[string]any      `json:"preferences"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// Source tells where a hydrated record came from.
type Source string

const (
	SourceCanonical   Source = "canonical"
	SourceLegacyUser  Source = "legacy_user"
	SourceLegacyQuery Source = "legacy_query"
	SourceCache       Source = "cache"
)

const schemaVersion = 2

func (r Record) normalize() Record {
	r.UserID = strings.TrimSpace(r.UserID)
	r.Job = r.Job.Normalize()
	r.Resume = r.Resume.Normalize()
	if r.Preferences == nil {
		r.Preferences = map[string]any{}
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = r.UpdatedAt
	}
	return r
}

func toDocument(r Record) (docstore.Document, error) {
	resume, err := toMap(r.Resume)
	if err != nil {
		return nil, fmt.Errorf("encode resume: %w", err)
	}
	return docstore.Document{
		"userId": r.UserID,
		"job": map[string]any{
			"title":   r.Job.Title,
			"company": r.Job.Company,
			"url":     r.Job.URL,
		},
		"resume":        resume,
		"preferences":   r.Preferences,
		"createdAt":     r.CreatedAt.UTC(),
		"updatedAt":     r.UpdatedAt.UTC(),
		"schemaVersion": schemaVersion,
	}, nil
}

// fromCanonical decodes a flashSessions document.
func fromCanonical(userID string, doc docstore.Document) (Record, error) {
	var job model.JobContext
	if err := fromAny(doc["job"], &job); err != nil {
		return Record{}, fmt.Errorf("decode job: %w", err)
	}
	var resume model.ResumePayload
	if err := fromAny(doc["resume"], &resume); err != nil {
		return Record{}, fmt.Errorf("decode resume: %w", err)
	}
	return Record{
		UserID:      firstNonEmpty(stringField(doc, "userId"), userID),
		Job:         job,
		Resume:      resume,
		Preferences: mapField(doc, "preferences"),
		CreatedAt:   timeField(doc["createdAt"]),
		UpdatedAt:   timeField(doc["updatedAt"]),
	}.normalize(), nil
}

func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// fromAny re-decodes a loosely typed value into dst. Nil leaves dst untouched.
func fromAny(v any, dst any) error {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return json.Unmarshal([]byte(s), dst)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func stringField(doc map[string]any, key string) string {
	switch v := doc[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func mapField(doc map[string]any, key string) map[string]any {
	switch v := doc[key].(type) {
	case map[string]any:
		return v
	case string:
		var out map[string]any
		if json.Unmarshal([]byte(v), &out) == nil {
			return out
		}
	}
	return map[string]any{}
}

// timeField accepts the timestamp forms the backends hand back: native
// times (Firestore), RFC 3339 strings (JSON round trips) and epoch millis.
func timeField(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(t)); err == nil {
			return parsed.UTC()
		}
		if ms, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return time.UnixMilli(ms).UTC()
		}
	case float64:
		return time.UnixMilli(int64(t)).UTC()
	case int64:
		return time.UnixMilli(t).UTC()
	case int:
		return time.UnixMilli(int64(t)).UTC()
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

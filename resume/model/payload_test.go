package model

import (
	"encoding/json"
	"testing"
)

func TestNormalizeAllocatesContainers(t *testing.T) {
	var payload ResumePayload
	if err := json.Unmarshal([]byte(`{"personalInfo":{"fullName":"  Ada  "},"experience":[{"company":"Acme","highlights":null}],"skills":null}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got := payload.Normalize()
	if got.PersonalInfo.FullName != "Ada" {
		t.Fatalf("expected trimmed name, got %q", got.PersonalInfo.FullName)
	}
	if got.PersonalInfo.Links == nil || got.Skills == nil || got.Education == nil {
		t.Fatalf("expected non-nil containers, got %+v", got)
	}
	if got.Experience[0].Highlights == nil {
		t.Fatalf("expected non-nil highlights")
	}

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	for _, key := range []string{"experience", "education", "skills"} {
		if raw[key] == nil {
			t.Fatalf("expected %s to encode as an array, got null", key)
		}
	}
}

func TestNormalizeDropsBlankEntries(t *testing.T) {
	payload := ResumePayload{Skills: []string{"Go", " ", "", "SQL "}}
	got := payload.Normalize()
	if len(got.Skills) != 2 || got.Skills[1] != "SQL" {
		t.Fatalf("unexpected skills: %#v", got.Skills)
	}
}

func TestIsEmpty(t *testing.T) {
	if !(ResumePayload{}).IsEmpty() {
		t.Fatalf("zero payload should be empty")
	}
	if (ResumePayload{Skills: []string{"Go"}}).IsEmpty() {
		t.Fatalf("payload with skills should not be empty")
	}
}

func TestJobContextHelpers(t *testing.T) {
	job := JobContext{Title: "  Engineer ", Company: "", URL: "   "}.Normalize()
	if job.Title != "Engineer" {
		t.Fatalf("expected trimmed title, got %q", job.Title)
	}
	if job.HasURL() {
		t.Fatalf("blank url must not count")
	}
	if job.IsEmpty() {
		t.Fatalf("job with a title is not empty")
	}
	if !(JobContext{}).IsEmpty() {
		t.Fatalf("zero job must be empty")
	}
}

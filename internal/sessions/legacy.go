package sessions

import (
	"fmt"

	"flash-backend/internal/shared/storage/docstore"
	"flash-backend/resume/model"
)

// Legacy locations written by earlier clients.
const (
	legacyUsersCollection = "users"
	legacyUserField       = "activeFlash"
	legacyQueryCollection = "flash_sessions"
	legacyQueryUserField  = "user_id"
)

// legacyContact is the v1 contact block.
type legacyContact struct {
	Name     string   `json:"name"`
	Headline string   `json:"headline"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Location string   `json:"location"`
	Links    []string `json:"links"`
}

type legacyExperience struct {
	Company  string   `json:"company"`
	Title    string   `json:"title"`
	Location string   `json:"location"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	Bullets  []string `json:"bullets"`
}

type legacyEducation struct {
	School string `json:"school"`
	Degree string `json:"degree"`
	Field  string `json:"field"`
	From   string `json:"from"`
	To     string `json:"to"`
}

// legacyResume is the résumé layout nested in users/{id}.activeFlash and
// serialized into flash_sessions.resume_json.
type legacyResume struct {
	Contact    legacyContact      `json:"contact"`
	Summary    string             `json:"summary"`
	Experience []legacyExperience `json:"experience"`
	Education  []legacyEducation  `json:"education"`
	Skills     []string           `json:"skills"`
}

func (l legacyResume) payload() model.ResumePayload {
	out := model.ResumePayload{
		PersonalInfo: model.PersonalInfo{
			FullName: l.Contact.Name,
			Title:    l.Contact.Headline,
			Email:    l.Contact.Email,
			Phone:    l.Contact.Phone,
			Location: l.Contact.Location,
			Links:    l.Contact.Links,
		},
		Summary: l.Summary,
		Skills:  l.Skills,
	}
	for _, exp := range l.Experience {
		out.Experience = append(out.Experience, model.Experience{
			Company:    exp.Company,
			Role:       exp.Title,
			Location:   exp.Location,
			Start:      exp.From,
			End:        exp.To,
			Highlights: exp.Bullets,
		})
	}
	for _, edu := range l.Education {
		out.Education = append(out.Education, model.Education{
			Institution: edu.School,
			Degree:      edu.Degree,
			Field:       edu.Field,
			Start:       edu.From,
			End:         edu.To,
		})
	}
	return out
}

// fromLegacyUser decodes the activeFlash field of a users document.
func fromLegacyUser(userID string, doc docstore.Document) (Record, bool, error) {
	raw, ok := doc[legacyUserField].(map[string]any)
	if !ok || len(raw) == 0 {
		return Record{}, false, nil
	}
	var job struct {
		Title   string `json:"title"`
		Company string `json:"company"`
		Link    string `json:"link"`
	}
	if err := fromAny(raw["job"], &job); err != nil {
		return Record{}, false, fmt.Errorf("decode legacy job: %w", err)
	}
	var resume legacyResume
	if err := fromAny(raw["resume"], &resume); err != nil {
		return Record{}, false, fmt.Errorf("decode legacy resume: %w", err)
	}
	saved := timeField(raw["savedAt"])
	return Record{
		UserID:      userID,
		Job:         model.JobContext{Title: job.Title, Company: job.Company, URL: job.Link},
		Resume:      resume.payload(),
		Preferences: mapField(raw, "prefs"),
		CreatedAt:   saved,
		UpdatedAt:   saved,
	}.normalize(), true, nil
}

// fromLegacyRow decodes one flat flash_sessions document.
func fromLegacyRow(userID string, doc docstore.Document) (Record, error) {
	var resume legacyResume
	if err := fromAny(doc["resume_json"], &resume); err != nil {
		return Record{}, fmt.Errorf("decode legacy resume_json: %w", err)
	}
	updated := timeField(doc["updated_at"])
	created := timeField(doc["created_at"])
	return Record{
		UserID: firstNonEmpty(stringField(doc, legacyQueryUserField), userID),
		Job: model.JobContext{
			Title:   stringField(doc, "job_title"),
			Company: stringField(doc, "company_name"),
			URL:     stringField(doc, "job_url"),
		},
		Resume:      resume.payload(),
		Preferences: mapField(doc, "prefs"),
		CreatedAt:   created,
		UpdatedAt:   updated,
	}.normalize(), nil
}

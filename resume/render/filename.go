package render

import (
	"flash-backend/internal/shared/util"
	"flash-backend/resume/model"
)

// Filename names an artifact after the person, e.g. "Ada_Lovelace_Resume.pdf".
// Payloads without a usable name fall back to "Resume.<ext>".
func Filename(payload model.ResumePayload, kind Kind) string {
	if stem := util.FileStem(payload.PersonalInfo.FullName); stem != "" {
		return stem + "_Resume" + kind.Extension()
	}
	return "Resume" + kind.Extension()
}

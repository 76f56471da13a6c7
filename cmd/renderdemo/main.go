package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"flash-backend/resume/model"
	"flash-backend/resume/render"
)

func main() {
	outDir := flag.StringP("out", "o", "./out", "directory for the rendered files")
	input := flag.StringP("payload", "p", "", "résumé payload JSON (defaults to a built-in sample)")
	flag.Parse()

	payload, err := loadPayload(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "payload: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}

	for _, r := range []render.Renderer{render.PDF{}, render.DOCX{}} {
		data, err := r.Render(payload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "render %s failed: %v\n", r.Kind(), err)
			os.Exit(1)
		}
		path := filepath.Join(*outDir, render.Filename(payload, r.Kind()))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("OK: wrote %s (%d bytes)\n", path, len(data))
	}
}

func loadPayload(path string) (model.ResumePayload, error) {
	if path == "" {
		return samplePayload(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.ResumePayload{}, err
	}
	var payload model.ResumePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return model.ResumePayload{}, err
	}
	return payload, nil
}

func samplePayload() model.ResumePayload {
	return model.ResumePayload{
		PersonalInfo: model.PersonalInfo{
			FullName: "Ada Lovelace",
			Title:    "Staff Engineer",
			Email:    "ada@example.com",
			Location: "London",
			Links:    []string{"https://example.com/ada"},
		},
		Summary: "Engineer focused on analytical engines and reliable delivery pipelines.",
		Experience: []model.Experience{
			{
				Company: "Analytical Engines Ltd",
				Role:    "Staff Engineer",
				Start:   "1842",
				Highlights: []string{
					"Designed the first published algorithm for a general-purpose machine.",
					"Reviewed and annotated the engine's design notes.",
				},
			},
		},
		Skills: []string{"Go", "Distributed systems", "Mathematics"},
	}
}

package packaging

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bnema/ferry/internal/domain"
)

// metadataView is what metadata templates render against.
type metadataView struct {
	SubmissionID string
	SubmittedAt  time.Time
	Spec         string
	Metadata     map[string]any
	Files        []domain.SubmissionFile
}

var templateFuncs = template.FuncMap{
	"xml": func(v any) (string, error) {
		var b strings.Builder
		if err := xml.EscapeText(&b, []byte(fmt.Sprint(v))); err != nil {
			return "", err
		}
		return b.String(), nil
	},
	"json": func(v any) (string, error) {
		data, err := json.Marshal(v)
		return string(data), err
	},
	"join": func(sep string, v []any) string {
		parts := make([]string, len(v))
		for i, p := range v {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, sep)
	},
	"date": func(layout string, t time.Time) string {
		return t.UTC().Format(layout)
	},
	"default": func(def, v any) any {
		if v == nil || v == "" {
			return def
		}
		return v
	},
}

// serializeMetadata renders submission metadata. Map keys are emitted in
// sorted order by every format so the entry is reproducible.
func serializeMetadata(sub *domain.Submission, cfg domain.AssemblerConfig) ([]byte, error) {
	metadata := sub.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	switch cfg.Options.MetadataFormat {
	case domain.MetadataYAML:
		return yaml.Marshal(metadata)

	case domain.MetadataTemplate:
		tmpl, err := template.New("metadata").
			Funcs(templateFuncs).
			Option("missingkey=zero").
			Parse(cfg.Options.MetadataTemplate)
		if err != nil {
			return nil, fmt.Errorf("parse metadata template: %w", err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, metadataView{
			SubmissionID: sub.ID,
			SubmittedAt:  sub.SubmittedAt,
			Spec:         cfg.Spec,
			Metadata:     metadata,
			Files:        sub.Files,
		}); err != nil {
			return nil, fmt.Errorf("render metadata template: %w", err)
		}
		return buf.Bytes(), nil

	default:
		data, err := json.MarshalIndent(metadata, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}

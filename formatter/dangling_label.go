package formatter

type DanglingLabelFormatter struct{}

func (f *DanglingLabelFormatter) DefectTemplate() string {
	return `{{header .Kind .MaxLineNumWidth .Filename .Line .Column -}}
{{- if .HasSnippet }}
{{- snippet .Snippet .Line .MaxLineNumWidth .Indent .Padding -}}
{{- underlineAndMessage .Unit .Message .Padding .Snippet .Column .Indent -}}
{{- else }}
{{- message .Unit .Message .Padding -}}
{{- end }}
{{- note "add a label statement before the reference, or list the label under ghost_labels" }}
`
}

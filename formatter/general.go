package formatter

type GeneralDefectFormatter struct{}

func (f *GeneralDefectFormatter) DefectTemplate() string {
	return `{{header .Kind .MaxLineNumWidth .Filename .Line .Column -}}
{{- if .HasSnippet }}
{{- snippet .Snippet .Line .MaxLineNumWidth .Indent .Padding -}}
{{- underlineAndMessage .Unit .Message .Padding .Snippet .Column .Indent -}}
{{- else }}
{{- message .Unit .Message .Padding -}}
{{- end }}
`
}

package formatter

type OutOfScopeFormatter struct{}

func (f *OutOfScopeFormatter) DefectTemplate() string {
	return `{{header .Kind .MaxLineNumWidth .Filename .Line .Column -}}
{{- if .HasSnippet }}
{{- snippet .Snippet .Line .MaxLineNumWidth .Indent .Padding -}}
{{- underlineAndMessage .Unit .Message .Padding .Snippet .Column .Indent -}}
{{- else }}
{{- message .Unit .Message .Padding -}}
{{- end }}
{{- note (printf "%q has no value in the state saved at label %q" .Variable .Label) }}
`
}

package formatter

type OldInFunctionFormatter struct{}

func (f *OldInFunctionFormatter) DefectTemplate() string {
	return `{{header .Kind .MaxLineNumWidth .Filename .Line .Column -}}
{{- if .HasSnippet }}
{{- snippet .Snippet .Line .MaxLineNumWidth .Indent .Padding -}}
{{- underlineAndMessage .Unit "old expression in a pure function" .Padding .Snippet .Column .Indent -}}
{{- else }}
{{- message .Unit "old expression in a pure function" .Padding -}}
{{- end }}
{{- note (printf "functions have no historical state; %s cannot be evaluated" .Message) }}
`
}

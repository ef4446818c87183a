package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"github.com/fatih/color"

	"github.com/gnolang/virfix/internal/fixes"
)

const tabWidth = 8

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	ruleStyle    = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	noteStyle    = color.New(color.FgGreen, color.Bold)
)

// defectFormatter is the interface that wraps the DefectTemplate method.
// Implementations supply the text template for one kind of defect.
type defectFormatter interface {
	DefectTemplate() string
}

// getDefectFormatter returns the formatter for kind, falling back to the
// general one.
func getDefectFormatter(kind fixes.DefectKind) defectFormatter {
	switch kind {
	case fixes.DanglingLabel:
		return &DanglingLabelFormatter{}
	case fixes.OutOfScope:
		return &OutOfScopeFormatter{}
	case fixes.OldInFunction:
		return &OldInFunctionFormatter{}
	default:
		return &GeneralDefectFormatter{}
	}
}

// GenerateFormattedDefects formats defects found in filename into a
// human-readable string. source may be nil, in which case no code snippet
// is shown.
func GenerateFormattedDefects(filename string, defects []*fixes.EncodingDefect, source *SourceCode) string {
	var builder strings.Builder
	for _, d := range defects {
		builder.WriteString(buildDefect(filename, d, source, getDefectFormatter(d.Kind)))
	}
	return builder.String()
}

/***** Defect Formatter Builder *****/

type DefectData struct {
	Kind            string
	Unit            string
	Label           string
	Variable        string
	Filename        string
	Line            int
	Column          int
	HasSnippet      bool
	Snippet         string
	Indent          string
	MaxLineNumWidth int
	Padding         string
	Message         string
}

func buildDefect(filename string, d *fixes.EncodingDefect, source *SourceCode, formatter defectFormatter) string {
	maxLineNumWidth := calculateMaxLineNumWidth(d.Pos.Line)
	data := DefectData{
		Kind:            d.Kind.String(),
		Unit:            d.Unit,
		Label:           d.Label,
		Variable:        d.Variable,
		Filename:        filename,
		Line:            d.Pos.Line,
		Column:          d.Pos.Column,
		MaxLineNumWidth: maxLineNumWidth,
		Padding:         strings.Repeat(" ", maxLineNumWidth+1),
		Message:         d.Message(),
	}
	if line, ok := source.line(d.Pos.Line); ok && d.Pos.IsValid() {
		data.HasSnippet = true
		data.Snippet = line
		data.Indent = leadingSpace(line)
	}

	funcMap := template.FuncMap{
		"header":              header,
		"snippet":             codeSnippet,
		"underlineAndMessage": underlineAndMessage,
		"message":             message,
		"note":                note,
	}

	tmpl := template.Must(template.New("defect").Funcs(funcMap).Parse(formatter.DefectTemplate()))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting defect: %v", err)
	}
	return buf.String()
}

// utils functions used in the text templates

func header(kind string, maxLineNumWidth int, filename string, line int, column int) string {
	endString := errorStyle.Sprint("error: ")
	endString += ruleStyle.Sprintf("%s\n", kind)

	padding := strings.Repeat(" ", maxLineNumWidth)
	endString += lineStyle.Sprintf("%s--> ", padding)
	if line > 0 && column > 0 {
		endString += fileStyle.Sprintf("%s:%d:%d\n", filename, line, column)
	} else {
		endString += fileStyle.Sprintf("%s\n", filename)
	}
	return endString
}

func codeSnippet(line string, lineNum int, maxLineNumWidth int, indent string, padding string) string {
	endString := lineStyle.Sprintf("%s|\n", padding)
	endString += lineStyle.Sprintf("%*d | ", maxLineNumWidth, lineNum)
	endString += fmt.Sprintf("%s\n", strings.TrimPrefix(line, indent))
	return endString
}

func underlineAndMessage(unit string, msg string, padding string, line string, column int, indent string) string {
	caret := calculateVisualColumn(line, column) - calculateVisualColumn(indent, len(indent)+1)
	if caret < 0 {
		caret = 0
	}
	endString := lineStyle.Sprintf("%s| ", padding)
	endString += strings.Repeat(" ", caret)
	endString += messageStyle.Sprint("^\n")
	endString += message(unit, msg, padding)
	return endString
}

func message(unit string, msg string, padding string) string {
	return lineStyle.Sprintf("%s= ", padding) + messageStyle.Sprintf("%s: %s\n", unit, msg)
}

func note(text string) string {
	return noteStyle.Sprint("note: ") + fmt.Sprintf("%s\n", text)
}

func calculateMaxLineNumWidth(line int) int {
	return len(fmt.Sprintf("%d", line))
}

// calculateVisualColumn calculates the visual column position
// in a string. taking into account tab characters.
func calculateVisualColumn(line string, column int) int {
	if column < 0 {
		return 0
	}
	visualColumn := 0
	for i, ch := range line {
		if i+1 == column {
			break
		}
		if ch == '\t' {
			visualColumn += tabWidth - (visualColumn % tabWidth)
		} else {
			visualColumn++
		}
	}
	return visualColumn
}

func leadingSpace(line string) string {
	return line[:len(line)-len(strings.TrimLeftFunc(line, unicode.IsSpace))]
}

// Package prompt builds the text sent to the language model. All functions
// are pure.
package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/learnloop/lumen/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// OutOfContextDisclaimer is the reply the model is told to give when the
// context does not contain the answer
const OutOfContextDisclaimer = "I don't know, It is out of context question."

//go:embed prompt/context.md
var contextPromptTmpl string

//go:embed prompt/sql_generation.md
var sqlGenerationPromptTmpl string

//go:embed prompt/summarization.md
var summarizationPromptTmpl string

var (
	contextPrompt       = template.Must(template.New("context").Parse(contextPromptTmpl))
	sqlGenerationPrompt = template.Must(template.New("sql_generation").Parse(sqlGenerationPromptTmpl))
	summarizationPrompt = template.Must(template.New("summarization").Parse(summarizationPromptTmpl))
)

var instructions = map[types.Persona]string{
	types.PersonaFriendly: "Respond in a kind and encouraging way.",
	types.PersonaStrict:   "Respond strictly and directly without any casual tone.",
	types.PersonaHumorous: "Add a slight touch of humor to make learning fun.",
}

// ResolvePersona maps a requested persona to a supported one, falling back to
// friendly.
func ResolvePersona(s string) types.Persona {
	return types.ParsePersona(s)
}

// Instruction returns the tone sentence for p
func Instruction(p types.Persona) string {
	if s, ok := instructions[p]; ok {
		return s
	}
	return instructions[types.PersonaFriendly]
}

// BuildContextPrompt asks the model to answer question from context only
func BuildContextPrompt(question string, persona types.Persona, context string) (string, error) {
	return render(contextPrompt, struct {
		Disclaimer  string
		Instruction string
		Context     string
		Question    string
	}{
		Disclaimer:  OutOfContextDisclaimer,
		Instruction: Instruction(persona),
		Context:     context,
		Question:    question,
	})
}

// BuildSQLGenerationPrompt asks the model to translate question into SQL
// over schema
func BuildSQLGenerationPrompt(question, schema string) (string, error) {
	return render(sqlGenerationPrompt, struct {
		Schema   string
		Question string
	}{
		Schema:   schema,
		Question: question,
	})
}

// BuildSummarizationPrompt asks the model to explain query results
func BuildSummarizationPrompt(question, sql string, rows []model.Row, persona types.Persona) (string, error) {
	formatted := make([]string, len(rows))
	for i, row := range rows {
		formatted[i] = formatRow(row)
	}

	return render(summarizationPrompt, struct {
		Instruction string
		Question    string
		SQL         string
		Rows        []string
	}{
		Instruction: Instruction(persona),
		Question:    question,
		SQL:         sql,
		Rows:        formatted,
	})
}

// formatRow keeps the column order of the statement
func formatRow(row model.Row) string {
	parts := make([]string, 0, len(row.Columns))
	for i, col := range row.Columns {
		var v any
		if i < len(row.Values) {
			v = row.Values[i]
		}
		if v == nil {
			v = "NULL"
		}
		parts = append(parts, fmt.Sprintf("%s: %v", col, v))
	}
	return strings.Join(parts, ", ")
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to render prompt", goerr.V("template", tmpl.Name()))
	}
	return buf.String(), nil
}

package services

import (
	"strings"
	"text/template"
)

var answerPrompt = template.Must(template.New("answer").Parse(`Context: {{.Context}}

Question: {{.Question}}

Please provide your answer in a clear, structured format:
1. Use bullet points or numbered lists where appropriate
2. Break down complex information into smaller, digestible points
3. Highlight key information using markdown formatting
4. Keep each point concise and focused

Answer:`))

type promptVars struct {
	Context  string
	Question string
}

func renderAnswerPrompt(context, question string) (string, error) {
	var b strings.Builder
	if err := answerPrompt.Execute(&b, promptVars{Context: context, Question: question}); err != nil {
		return "", err
	}
	return b.String(), nil
}

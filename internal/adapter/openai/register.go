package openai

import (
	"github.com/codeweaver-dev/codeweaver/internal/port/modelgateway"
)

const (
	deepseekBaseURL = "https://api.deepseek.com"
	groqBaseURL     = "https://api.groq.com/openai/v1"
	openaiBaseURL   = "https://api.openai.com/v1"
)

func init() {
	register("deepseek", deepseekBaseURL)
	register("groq", groqBaseURL)
	register("openai", openaiBaseURL)
}

func register(name, defaultBaseURL string) {
	modelgateway.Register(name, func(st modelgateway.Settings) (modelgateway.Gateway, error) {
		if st.BaseURL == "" {
			st.BaseURL = defaultBaseURL
		}
		return NewClient(name, st), nil
	})
}

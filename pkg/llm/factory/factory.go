package factory

import (
	"fmt"

	"github.com/DianaLeoTang/DT-Study-Companion/pkg/llm"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/llm/ollama"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/llm/openai"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "openai", "deepseek":
		return openai.NewOpenAIProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}

package provider

import (
	"github.com/jannisai/llmsdk/internal/provider/anthropic"
	"github.com/jannisai/llmsdk/internal/provider/cerebras"
	"github.com/jannisai/llmsdk/internal/provider/gemini"
	"github.com/jannisai/llmsdk/internal/provider/openairesponses"
)

// New builds the Provider registered under name. This is the single
// factory the rest of the module depends on; adding a fifth backend
// means adding one case here and one new subpackage.
func New(name string) (Provider, error) {
	switch name {
	case "cerebras":
		return cerebras.New(), nil
	case "openai":
		return openairesponses.New(), nil
	case "anthropic":
		return anthropic.New(), nil
	case "gemini":
		return gemini.New(), nil
	default:
		return nil, &ErrUnknownProvider{Name: name}
	}
}

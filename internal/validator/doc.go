// Package validator narrows parser counts with an external judgment.
//
// A Validator reviews the snippets the parser found for expert quotes,
// statistics, sources, case studies and FAQs, and may only reject items. It
// never adds any. Run is the caller-side contract: any failure, including a
// response that does not conserve the detected counts, yields a fallback
// result that echoes the parser counts with no rejections.
//
// LLMValidator asks a language model through a Completer. AnthropicClient is
// the Completer for the Anthropic Messages API.
package validator

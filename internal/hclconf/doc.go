// Package hclconf loads pipeline definitions written in HCL and translates
// them into the format-agnostic config model. Stage argument bodies are kept
// raw here so the executor can evaluate them against the live run context.
package hclconf

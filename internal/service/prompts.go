package service

import (
	"fmt"
	"strings"
)

// Role names, used as agent identifiers in context memory and the
// conversation tracker.
const (
	AgentGenerator = "generate"
	AgentCritic    = "critique"
	AgentAdvocate  = "advocate"
	AgentSkeptic   = "skeptic"
	AgentImprover  = "improve"
)

func generationPrompt(topic, constraints string, ordinal, total int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a creative idea generator. Propose one concrete, novel idea (%d of %d) for the topic below.\n\n", ordinal, total)
	fmt.Fprintf(&sb, "Topic: %s\n", topic)
	if constraints != "" {
		fmt.Fprintf(&sb, "Constraints: %s\n", constraints)
	}
	sb.WriteString("\nRespond with the idea text only, 2-4 sentences, no preamble and no numbering.")
	return sb.String()
}

func critiquePrompt(ideaText, contextHint string) string {
	var sb strings.Builder
	sb.WriteString("You are a rigorous critic. Evaluate the idea below.\n\n")
	fmt.Fprintf(&sb, "Idea: %s\n", ideaText)
	if contextHint != "" {
		fmt.Fprintf(&sb, "\nRelevant prior context:\n%s\n", contextHint)
	}
	sb.WriteString(`
Respond with ONLY a JSON object:
{
  "score": <0.0 to 10.0>,
  "critique": "<one-paragraph assessment>",
  "strengths": ["..."],
  "weaknesses": ["..."]
}`)
	return sb.String()
}

func advocacyPrompt(ideaText, critique string) string {
	var sb strings.Builder
	sb.WriteString("You are a persuasive advocate. Make the strongest fair case FOR the idea below, addressing the critique where you can.\n\n")
	fmt.Fprintf(&sb, "Idea: %s\n\nCritique: %s\n", ideaText, critique)
	sb.WriteString("\nRespond with your argument in 2-3 paragraphs, no preamble.")
	return sb.String()
}

func skepticismPrompt(ideaText, critique string) string {
	var sb strings.Builder
	sb.WriteString("You are a devil's advocate. Identify the real risks, failure modes, and unjustified assumptions in the idea below. Find real flaws, not nitpicks.\n\n")
	fmt.Fprintf(&sb, "Idea: %s\n\nCritique so far: %s\n", ideaText, critique)
	sb.WriteString("\nRespond with your concerns in 2-3 paragraphs, no preamble.")
	return sb.String()
}

func improvementPrompt(ideaText, critique, advocacy, skepticism, contextHint string) string {
	var sb strings.Builder
	sb.WriteString("You are a synthesizer. Rewrite the idea below into a stronger version that keeps its core value, answers the critique, builds on the advocacy, and mitigates the skeptic's concerns.\n\n")
	fmt.Fprintf(&sb, "Original idea: %s\n\n", ideaText)
	fmt.Fprintf(&sb, "Critique: %s\n\n", critique)
	fmt.Fprintf(&sb, "Advocacy: %s\n\n", advocacy)
	fmt.Fprintf(&sb, "Skepticism: %s\n", skepticism)
	if contextHint != "" {
		fmt.Fprintf(&sb, "\nRelevant prior context:\n%s\n", contextHint)
	}
	sb.WriteString("\nRespond with the improved idea text only, 2-5 sentences, no preamble.")
	return sb.String()
}

func dimensionPrompt(ideaText, context string, dimensions []string) string {
	var sb strings.Builder
	sb.WriteString("You are an analytical evaluator. Score the idea below on each dimension from 0 to 10 with one sentence of reasoning per dimension.\n\n")
	fmt.Fprintf(&sb, "Idea: %s\n", ideaText)
	if context != "" {
		fmt.Fprintf(&sb, "Context: %s\n", context)
	}
	sb.WriteString("\nDimensions: " + strings.Join(dimensions, ", "))
	sb.WriteString(`

Respond with ONLY a JSON object keyed by dimension name, covering every dimension exactly once:
{
  "<dimension>": {"score": <0.0 to 10.0>, "reasoning": "<one sentence>"},
  ...
}`)
	return sb.String()
}

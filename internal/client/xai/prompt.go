package xai

import (
	"fmt"
	"strings"
)

const promptTemplate = `You are an expert prediction market analyst. Analyze this market and provide a probability estimate.

MARKET QUESTION: %s

%s

TASK:
1. Search the web for current news, data, and expert opinions relevant to this question
2. Search X/Twitter for real-time sentiment, breaking news, and insider perspectives
3. Consider the resolution criteria carefully
4. Analyze price momentum (recent price changes may indicate new information)
5. Estimate the TRUE probability this event will resolve YES

Return your analysis as a JSON object with this EXACT structure:
{
    "estimated_probability": <float between 0.0 and 1.0>,
    "confidence": "<low|medium|high>",
    "reasoning": "<detailed multi-paragraph analysis with line breaks between sections>",
    "key_events": ["<upcoming event/date 1>", "<upcoming event/date 2>"],
    "risks": ["<risk to your thesis 1>", "<risk to your thesis 2>"],
    "sources": ["<url1>", "<url2>", ...]
}

GUIDELINES:
- Be precise with probability. Don't default to 50%%.
- If market has moved significantly, explain why (new information?)
- For "confidence": use "high" only if evidence is strong and recent
- List specific upcoming dates/events that could move the market
- Acknowledge risks that could invalidate your analysis
- Use line breaks in reasoning for readability

Only return the JSON object, no other text.`

func buildPrompt(req Request) string {
	parts := []string{fmt.Sprintf("CURRENT MARKET PRICE: %.1f%%", req.CurrentPrice*100)}

	if req.Description != "" {
		desc := req.Description
		if len(desc) > 1000 {
			desc = desc[:1000]
		}
		parts = append(parts, "RESOLUTION CRITERIA: "+desc)
	}
	if req.EndDate != "" {
		parts = append(parts, "RESOLUTION DATE: "+req.EndDate)
	}
	if req.OneDayChange != nil {
		parts = append(parts, fmt.Sprintf("24H PRICE CHANGE: %s %.1f%%", changeArrow(*req.OneDayChange), abs(*req.OneDayChange)*100))
	}
	if req.OneWeekChange != nil {
		parts = append(parts, fmt.Sprintf("7D PRICE CHANGE: %s %.1f%%", changeArrow(*req.OneWeekChange), abs(*req.OneWeekChange)*100))
	}
	if req.Volume24h > 0 {
		parts = append(parts, fmt.Sprintf("24H VOLUME: $%.0f", req.Volume24h))
	}

	return fmt.Sprintf(promptTemplate, req.Question, strings.Join(parts, "\n"))
}

func changeArrow(v float64) string {
	switch {
	case v > 0:
		return "up"
	case v < 0:
		return "down"
	default:
		return "flat"
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

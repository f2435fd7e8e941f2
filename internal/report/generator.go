// Package report builds the human-readable scan report. The generative call
// is best effort: any failure is downgraded to a deterministic template built
// from local data, so callers never see an error from this package.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/raysh454/guardscan/internal/classifier"
	"github.com/raysh454/guardscan/internal/genai"
	"github.com/raysh454/guardscan/internal/logging"
	"github.com/raysh454/guardscan/internal/model"
)

// Report wraps the raw report text. Downstream parsing of section markers or
// the embedded JSON fragment is a consumer concern, not a contract here.
type Report struct {
	RawText string
}

type Generator struct {
	ai     genai.Generator
	logger logging.Logger
}

func NewGenerator(ai genai.Generator, logger logging.Logger) *Generator {
	return &Generator{
		ai:     ai,
		logger: logger.With(logging.Field{Key: "component", Value: "report"}),
	}
}

// Generate produces the report for one scan. The safe/malicious/suspicious
// percentages embedded in both the prompt and the fallback come from the same
// flooring-and-rounding rule, so prompt, fallback and pie-chart JSON always
// agree with each other.
func (g *Generator) Generate(ctx context.Context, kind classifier.Kind, input string, stats model.VerdictStats, meta model.VerdictMeta) Report {
	safePct, maliciousPct, suspiciousPct := model.Percentages(stats)

	prompt := buildPrompt(kind, input, stats, meta, safePct, maliciousPct, suspiciousPct)

	text, err := g.ai.Generate(ctx, prompt)
	if err != nil || text == "" {
		if err != nil {
			g.logger.Warn("generative call failed, using fallback report",
				logging.Field{Key: "kind", Value: string(kind)},
				logging.Field{Key: "error", Value: err.Error()})
		}
		return Report{RawText: fallbackReport(kind, input, stats, meta, safePct, maliciousPct, suspiciousPct)}
	}
	return Report{RawText: text}
}

func buildPrompt(kind classifier.Kind, input string, stats model.VerdictStats, meta model.VerdictMeta, safePct, maliciousPct, suspiciousPct int) string {
	threatNames := strings.Join(meta.ThreatNames, ", ")
	if threatNames == "" {
		threatNames = "None"
	}

	categories := make([]string, 0, len(meta.Categories))
	for _, label := range meta.Categories {
		categories = append(categories, label)
	}
	categoryList := strings.Join(categories, ", ")
	if categoryList == "" {
		categoryList = "Unknown"
	}

	reputation := "N/A"
	if meta.Reputation != nil {
		reputation = fmt.Sprintf("%d", *meta.Reputation)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze %s: %s for cybersecurity purposes with detailed insights.\n", kind, input)
	fmt.Fprintf(&b, "VirusTotal stats: harmless=%d, undetected=%d, malicious=%d, suspicious=%d, timeout=%d.\n",
		stats.Harmless, stats.Undetected, stats.Malicious, stats.Suspicious, stats.Timeout)
	fmt.Fprintf(&b, "Threat names: %s.\n", threatNames)
	fmt.Fprintf(&b, "Categories: %s.\n", categoryList)
	fmt.Fprintf(&b, "Reputation: %s.\n", reputation)
	b.WriteString("Provide a comprehensive, structured cybersecurity report with:\n")
	b.WriteString("- **Threats & Vulnerabilities:** List specific threats based solely on VirusTotal data (e.g., malware, phishing) or state \"No specific threats detected\" if none found. Include general risks associated with the input type.\n")
	b.WriteString("- **Reputation:** Assess trustworthiness based on the domain/source and VirusTotal results, providing a qualitative analysis.\n")
	b.WriteString("- **Context:** Describe the input's purpose and potential risks based on its nature (e.g., search query, website, file).\n")
	b.WriteString("- **Safety Tips:** Provide 5+ actionable, specific tips to mitigate risks, tailored to the input type.\n")
	fmt.Fprintf(&b, "- **JSON Pie Chart:** Use these exact values based on VirusTotal: {\"Safe\": %d, \"Malicious\": %d, \"Suspicious\": %d}. Do not alter these percentages; they must reflect the VirusTotal stats provided.\n",
		safePct, maliciousPct, suspiciousPct)
	b.WriteString("Ensure detailed, clear, and actionable content for all sections, avoiding vague or incomplete responses.")
	return b.String()
}

// fallbackReport is the fixed-shape report used when the generative call
// fails. It is built entirely from local data.
func fallbackReport(kind classifier.Kind, input string, stats model.VerdictStats, meta model.VerdictMeta, safePct, maliciousPct, suspiciousPct int) string {
	threatLine := "No specific threats detected."
	if stats.Malicious > 0 {
		threatLine = "Detected threats."
	}

	reputationLine := "No data available."
	if meta.Reputation != nil {
		reputationLine = fmt.Sprintf("Score: %d", *meta.Reputation)
	}

	contextLine := "Likely a file hash."
	if kind == classifier.KindURL {
		contextLine = "Likely a website or service."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Cybersecurity Report for %s**\n", input)
	fmt.Fprintf(&b, "- **Threats & Vulnerabilities:** %s\n", threatLine)
	fmt.Fprintf(&b, "- **Reputation:** %s\n", reputationLine)
	fmt.Fprintf(&b, "- **Context:** %s\n", contextLine)
	b.WriteString("- **Safety Tips:** Use HTTPS, run antivirus, enable 2FA, verify sources, avoid suspicious links.\n")
	fmt.Fprintf(&b, "- **JSON Pie Chart:** {\"Safe\": %d, \"Malicious\": %d, \"Suspicious\": %d}\n",
		safePct, maliciousPct, suspiciousPct)
	return b.String()
}

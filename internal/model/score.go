package model

import "math"

// Safety derives the boolean safety flag and the 0-100 safety score from a
// set of verdict counts. The two values are computed independently and may
// disagree near boundaries: a single suspicious verdict among thousands of
// harmless ones keeps isSafe true while still charging its penalty against
// the score. That divergence is part of the contract.
//
// The safe/unsafe boundary is strict: exactly 5% malicious+suspicious is
// unsafe, 4.999% is safe. Do not round before comparing.
func Safety(stats VerdictStats) (isSafe bool, safetyScore int) {
	total := float64(stats.Total())

	maliciousPct := float64(stats.Malicious) / total * 100
	suspiciousPct := float64(stats.Suspicious) / total * 100
	isSafe = maliciousPct+suspiciousPct < 5

	base := float64(stats.Harmless+stats.Undetected) / total * 100
	penalty := float64(stats.Malicious*10 + stats.Suspicious*5)

	safetyScore = int(math.Round(base - penalty))
	if safetyScore < 0 {
		safetyScore = 0
	}
	return isSafe, safetyScore
}

// Percentages returns the safe/malicious/suspicious shares of the verdict
// counts, each rounded to the nearest integer. Rounding here is independent
// of Safety, so the values can differ slightly from the raw score inputs.
func Percentages(stats VerdictStats) (safe, malicious, suspicious int) {
	total := float64(stats.Total())
	safe = int(math.Round(float64(stats.Harmless+stats.Undetected) / total * 100))
	malicious = int(math.Round(float64(stats.Malicious) / total * 100))
	suspicious = int(math.Round(float64(stats.Suspicious) / total * 100))
	return safe, malicious, suspicious
}

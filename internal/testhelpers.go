package internal

import (
	"time"
)

// CreateTestSession creates a demo session with fixed timestamps
func CreateTestSession(id string) *Session {
	return demoSession(id, DemoEmail, time.Date(2024, time.March, 1, 12, 30, 0, 0, time.UTC))
}

// CreateTestResult derives a result for a fixed score against a test address
func CreateTestResult(score int) *AnalysisResult {
	input := AddressInput("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D", DefaultNetwork)
	return DeriveResult(input, score, time.Date(2024, time.March, 1, 12, 30, 0, 0, time.UTC))
}

// FixedScore is a RandomSource that always yields the given score
type FixedScore int

// Intn returns the offset that makes DrawScore produce the fixed score
func (f FixedScore) Intn(n int) int {
	return int(f) - MinScore
}

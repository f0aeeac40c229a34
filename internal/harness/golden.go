package harness

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/soultek101/ocarina/internal/canon"
)

// Snapshot renders a scenario header line followed by the canonical trace.
func Snapshot(name string, result *Result) ([]byte, error) {
	header, err := canon.Marshal(canon.NewObject(canon.O("scenario", canon.String(name))))
	if err != nil {
		return nil, err
	}
	trace, err := result.MarshalTrace()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(header)
	buf.WriteByte('\n')
	buf.Write(trace)
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}

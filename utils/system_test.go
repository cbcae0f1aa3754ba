package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerCount(t *testing.T) {
	savedCores := logicalCores
	t.Cleanup(func() { logicalCores = savedCores })

	testCases := []struct {
		name     string
		setting  string
		cores    int
		coresErr error
		expected int
	}{
		{"Explicit Count", "6", 64, nil, 6},
		{"Explicit Count With Spaces", " 3 ", 64, nil, 3},
		{"Auto Halves Cores", "auto", 8, nil, 4},
		{"Auto Is Case Insensitive", "AUTO", 8, nil, 4},
		{"Auto Minimum", "auto", 1, nil, 1},
		{"Auto Maximum", "auto", 128, nil, 16},
		{"Empty Means Auto", "", 4, nil, 2},
		{"Unparsable Means Auto", "lots", 12, nil, 6},
		{"Zero Means Auto", "0", 12, nil, 6},
		{"Core Detection Fails", "auto", 0, errors.New("no /proc"), 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logicalCores = func() (int, error) { return tc.cores, tc.coresErr }
			assert.Equal(t, tc.expected, WorkerCount(tc.setting))
		})
	}
}

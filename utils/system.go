package utils

import (
	"log"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
)

// Bounds of the product pool when it is sized from the CPU count.
const (
	autoWorkersMin = 1
	autoWorkersMax = 16
	// used when the core count cannot be read
	autoWorkersFallback = 2
)

// logicalCores is swapped in tests.
var logicalCores = func() (int, error) { return cpu.Counts(true) }

// WorkerCount sizes the product pool from the scraper.workers setting. A
// positive number is taken as is; "auto", empty or anything unparsable gives
// one browser tab per two logical cores, kept within the auto bounds.
func WorkerCount(setting string) int {
	setting = strings.TrimSpace(setting)
	if n, err := strconv.Atoi(setting); err == nil && n > 0 {
		return n
	}
	if setting != "" && !strings.EqualFold(setting, "auto") {
		log.Printf("scraper.workers %q is not a positive number, sizing the pool from the CPU count", setting)
	}

	cores, err := logicalCores()
	if err != nil || cores < 1 {
		log.Printf("CPU count unavailable (cores=%d, err=%v), using %d product workers", cores, err, autoWorkersFallback)
		return autoWorkersFallback
	}
	return min(max(cores/2, autoWorkersMin), autoWorkersMax)
}

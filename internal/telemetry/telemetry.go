// Package telemetry ingests the side-channel counters the obfuscation pass
// writes next to its output.
package telemetry

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// FileName is the well-known telemetry file the pass plugin writes into the
// working directory of the opt process.
const FileName = "warp_pass_telemetry.json"

// Record holds the counters reported by the obfuscation pass.
//
// Unknown keys in the file are ignored so newer plugins can add fields
// without breaking older drivers. The zero value is the canonical fallback
// when telemetry is unavailable.
type Record struct {
	StringsObfuscated   int `json:"strings_obf_count"`
	FakeFuncsInserted   int `json:"fake_funcs_inserted"`
	CyclesCompleted     int `json:"cycles_completed"`
	XORKey              int `json:"xor_key"`
	BogusCountRequested int `json:"bogus_count_requested"`
}

// Read loads the telemetry record from dir.
//
// An absent or malformed file is not an error: the pipeline ran fine without
// telemetry, so the zero record is substituted and a warning logged.
func Read(dir string, log *slog.Logger) Record {
	path := filepath.Join(dir, FileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("telemetry file not found, counters default to zero", "path", path)
		} else {
			log.Warn("could not read telemetry file", "path", path, "err", err)
		}
		return Record{}
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		log.Warn("could not parse telemetry file", "path", path, "err", err)
		return Record{}
	}
	return rec
}

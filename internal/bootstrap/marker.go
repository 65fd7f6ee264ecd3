package bootstrap

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// MarkerName is the sentinel file created inside the data directory when
// provisioning starts and removed only after it fully succeeds. Its
// presence after process exit means a prior attempt crashed mid-run; the
// next invocation refuses to proceed past it rather than silently retrying.
const MarkerName = ".init_script_is_incomplete"

// markerPayload identifies the run that created the marker, for the
// operator diagnostic when a leftover marker is found.
type markerPayload struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	PID       int       `json:"pid"`
}

// MarkerPath returns the marker file path for a data directory.
func MarkerPath(dataDir string) string {
	return filepath.Join(dataDir, MarkerName)
}

// writeMarker creates (or overwrites) the marker with this run's identity.
func writeMarker(path string) error {
	payload := markerPayload{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
		PID:       os.Getpid(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// readMarker loads the marker payload for diagnostics. Returns nil when the
// payload is unreadable (markers from older versions are plain empty files).
func readMarker(path string) *markerPayload {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var payload markerPayload
	if json.Unmarshal(data, &payload) != nil {
		return nil
	}
	return &payload
}

// clearMarker removes the marker, signaling successful completion.
func clearMarker(path string) error {
	return os.Remove(path)
}

// markerExists reports whether the marker is present.
func markerExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IncompleteMarkerPresent reports whether a data directory carries a
// leftover marker from a crashed run.
func IncompleteMarkerPresent(dataDir string) bool {
	return markerExists(MarkerPath(dataDir))
}

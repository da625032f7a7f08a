package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/saviobatista/rpas-logbook/internal/types"
)

// BackupVersion is the opaque format tag written into backup documents.
const BackupVersion = "1"

// ErrMalformedBackup is returned when a restore document does not contain a
// mission array.
var ErrMalformedBackup = errors.New("backup document has no mission array")

// WriteBackup serializes the full record set and suggestion-list store to a
// formatted JSON document.
func WriteBackup(w io.Writer, missions []types.Mission, ls types.SuggestionLists, now time.Time) error {
	doc := types.Backup{
		Version:    BackupVersion,
		BackupDate: now.UTC().Format(time.RFC3339),
		Missions:   missions,
		Lists:      ls,
	}
	if doc.Missions == nil {
		doc.Missions = []types.Mission{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	return nil
}

// BackupFilename stamps the backup filename with the current date.
func BackupFilename(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_backup_%s.json", prefix, now.Format("2006-01-02"))
}

// ParseBackup parses a user-supplied backup document. The missions field
// must be present and be an array; lists and the remaining fields are
// optional. A nil Lists in the result means the document carried none.
func ParseBackup(data []byte) (*types.Backup, error) {
	var probe struct {
		Version    string                 `json:"version"`
		BackupDate string                 `json:"backupDate"`
		Missions   *[]types.Mission       `json:"missions"`
		Lists      *types.SuggestionLists `json:"lists"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBackup, err)
	}
	if probe.Missions == nil {
		return nil, ErrMalformedBackup
	}

	doc := &types.Backup{
		Version:    probe.Version,
		BackupDate: probe.BackupDate,
		Missions:   *probe.Missions,
	}
	if probe.Lists != nil {
		doc.Lists = *probe.Lists
	}
	return doc, nil
}

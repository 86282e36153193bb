package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var jsonBlockPattern = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

var requiredNotificationKeys = []string{"patient_info", "medications", "next_visit"}

// IntakeFlag accepts "yes"/"no" strings as well as JSON booleans.
type IntakeFlag string

func (f *IntakeFlag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if b {
			*f = "yes"
		} else {
			*f = "no"
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("intake flag: %w", err)
	}
	*f = IntakeFlag(strings.ToLower(strings.TrimSpace(s)))
	return nil
}

func (f IntakeFlag) Taken() bool {
	return f == "yes" || f == "true"
}

type Medication struct {
	Name         string     `json:"name"`
	Dosage       string     `json:"dosage"`
	Morning      IntakeFlag `json:"morning"`
	Afternoon    IntakeFlag `json:"afternoon"`
	Evening      IntakeFlag `json:"evening"`
	Night        IntakeFlag `json:"night"`
	Duration     string     `json:"duration"`
	Instructions string     `json:"instructions"`
}

type NextVisit struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// Notification is the medication and follow-up block extracted from a prescription.
type Notification struct {
	PatientInfo map[string]interface{} `json:"patient_info"`
	Medications []Medication           `json:"medications"`
	NextVisit   NextVisit              `json:"next_visit"`
}

// NotificationEntry is one element of medical_notifications.json.
type NotificationEntry struct {
	ProcessingTime string                 `json:"processing_time"`
	PatientInfo    map[string]interface{} `json:"patient_info"`
	Medications    []Medication           `json:"medications"`
	NextVisit      NextVisit              `json:"next_visit"`
}

// ParseNotification pulls the ```json block out of a model response. It
// returns false when there is no block, the JSON is invalid, or a required
// key is missing.
func ParseNotification(response string) (*Notification, bool) {
	match := jsonBlockPattern.FindStringSubmatch(response)
	if match == nil {
		return nil, false
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(match[1]), &keys); err != nil {
		return nil, false
	}
	for _, k := range requiredNotificationKeys {
		if _, ok := keys[k]; !ok {
			return nil, false
		}
	}

	var n Notification
	if err := json.Unmarshal([]byte(match[1]), &n); err != nil {
		return nil, false
	}
	if n.PatientInfo == nil {
		n.PatientInfo = map[string]interface{}{}
	}
	if n.Medications == nil {
		n.Medications = []Medication{}
	}
	return &n, true
}

// StructuredText is the free-text part of a model response, before any ```json block.
func StructuredText(response string) string {
	before, _, _ := strings.Cut(response, "```json")
	return strings.TrimSpace(before)
}

// AppendNotification adds n to the JSON array at path, creating the file when needed.
func AppendNotification(path string, n *Notification, now time.Time) error {
	entries, err := readNotificationEntries(path)
	if err != nil {
		return err
	}

	entries = append(entries, NotificationEntry{
		ProcessingTime: now.Format("2006-01-02T15:04:05.000000"),
		PatientInfo:    n.PatientInfo,
		Medications:    n.Medications,
		NextVisit:      n.NextVisit,
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode notifications: %w", err)
	}
	return writeFileAtomic(path, data)
}

// ReadNotificationsRaw returns the notifications file verbatim, or "" when absent.
func ReadNotificationsRaw(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read notifications: %w", err)
	}
	return string(data), nil
}

func readNotificationEntries(path string) ([]NotificationEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []NotificationEntry{}, nil
		}
		return nil, fmt.Errorf("read notifications: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []NotificationEntry{}, nil
	}

	var entries []NotificationEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode notifications %s: %w", path, err)
	}
	return entries, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmpName, path)
}

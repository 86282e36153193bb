package extractor

import (
	"errors"
	"path/filepath"
	"strings"
)

const (
	RecordFileName        = "Medical_Record.pdf"
	NotificationsFileName = "medical_notifications.json"
)

var ErrInvalidUsername = errors.New("extractor: invalid username")

// PatientArea resolves the per-patient document directory <Root>/<username>.
type PatientArea struct {
	Root string
}

func NewPatientArea(root string) *PatientArea {
	if root == "" {
		root = "static"
	}
	return &PatientArea{Root: root}
}

func (a *PatientArea) Dir(username string) (string, error) {
	if username == "" || username == "." || username == ".." ||
		strings.ContainsAny(username, `/\`) || filepath.Base(username) != username {
		return "", ErrInvalidUsername
	}
	return filepath.Join(a.Root, username), nil
}

func (a *PatientArea) RecordPath(username string) (string, error) {
	dir, err := a.Dir(username)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, RecordFileName), nil
}

func (a *PatientArea) NotificationsPath(username string) (string, error) {
	dir, err := a.Dir(username)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, NotificationsFileName), nil
}

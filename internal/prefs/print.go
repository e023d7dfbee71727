package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const printFile = "print.json"

// Print is the operator's last used print setup. It overrides config on start.
type Print struct {
	Printer string `json:"printer,omitempty"`
	Size    string `json:"size,omitempty"`
}

// Dir is where preference files live. Empty means the user config dir.
var Dir = ""

func printPath() (string, error) {
	dir := Dir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, "photobooth")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, printFile), nil
}

func SavePrint(p Print) error {
	path, err := printPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadPrint returns the zero value when nothing was saved yet.
func LoadPrint() (Print, error) {
	path, err := printPath()
	if err != nil {
		return Print{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Print{}, nil
		}
		return Print{}, err
	}
	var p Print
	if err := json.Unmarshal(data, &p); err != nil {
		return Print{}, err
	}
	return p, nil
}

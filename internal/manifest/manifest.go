// Package manifest reads the declarative permission catalog: a metadata file,
// one JSON file per module, and optional system-role definitions. Files may
// contain comments and trailing commas.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
)

var ErrManifestNotFound = errors.New("permission manifest not found")

const (
	metadataFile   = "metadata.json"
	modulesDir     = "modules"
	systemRolesDir = "system-roles"
)

type Metadata struct {
	Version     string `json:"version"`
	LastUpdated string `json:"lastUpdated"`
}

type FeatureDef struct {
	FeatureID      string  `json:"featureId"`
	FeatureName    string  `json:"featureName"`
	Description    *string `json:"description,omitempty"`
	DefaultEnabled bool    `json:"defaultEnabled"`
}

type ModuleDef struct {
	ModuleID    string       `json:"moduleId"`
	ModuleName  string       `json:"moduleName"`
	Description *string      `json:"description,omitempty"`
	Features    []FeatureDef `json:"features"`
}

type SystemRoleDef struct {
	RoleID             string   `json:"roleId"`
	RoleName           string   `json:"roleName"`
	Description        string   `json:"description"`
	DefaultPermissions []string `json:"defaultPermissions"`
}

// Manifest is a loaded catalog. Modules are in file-name order, which is also
// their sort order.
type Manifest struct {
	Metadata Metadata
	Modules  []ModuleDef
	// SystemRoles is nil when the system-roles directory does not exist.
	SystemRoles []SystemRoleDef
}

// Load reads the catalog rooted at dir. A missing root, metadata file, or
// modules directory yields ErrManifestNotFound. Modules without a moduleId
// and features without a featureId are dropped.
func Load(dir string) (*Manifest, error) {
	var m Manifest
	if err := readFile(filepath.Join(dir, metadataFile), &m.Metadata); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, filepath.Join(dir, metadataFile))
		}
		return nil, err
	}

	files, err := jsonFiles(filepath.Join(dir, modulesDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, filepath.Join(dir, modulesDir))
		}
		return nil, err
	}
	for _, f := range files {
		var mod ModuleDef
		if err := readFile(f, &mod); err != nil {
			return nil, err
		}
		if mod.ModuleID == "" {
			continue
		}
		features := mod.Features[:0]
		for _, ft := range mod.Features {
			if ft.FeatureID != "" {
				features = append(features, ft)
			}
		}
		mod.Features = features
		m.Modules = append(m.Modules, mod)
	}

	roleFiles, err := jsonFiles(filepath.Join(dir, systemRolesDir))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &m, nil
	case err != nil:
		return nil, err
	}
	m.SystemRoles = []SystemRoleDef{}
	for _, f := range roleFiles {
		var r SystemRoleDef
		if err := readFile(f, &r); err != nil {
			return nil, err
		}
		if r.RoleID == "" {
			continue
		}
		m.SystemRoles = append(m.SystemRoles, r)
	}
	return &m, nil
}

func jsonFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func readFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package entity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrUnknownResource is returned when no metadata exists for a resource.
var ErrUnknownResource = errors.New("unknown resource")

// FileSource reads raw field metadata from <dir>/<resource>.yaml files.
//
// Each file holds one FieldSet:
//
//	resource: ticket
//	fields:
//	  - name: id
//	    dataType: long
//	    isReadOnly: true
//	  - name: companyID
//	    dataType: integer
//	    isRequired: true
//	    isReference: true
//	    referenceEntityType: Company
//	userDefinedFields: []
//
// Parsed files are cached; Invalidate drops the cache after the files change.
type FileSource struct {
	dir   string
	cache map[string]*FieldSet
	mu    sync.RWMutex
}

// NewFileSource creates a file source rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{
		dir:   dir,
		cache: make(map[string]*FieldSet),
	}
}

// LoadFieldSet loads the metadata of resource, from cache when possible.
func (s *FileSource) LoadFieldSet(_ context.Context, resource string) (*FieldSet, error) {
	key := strings.ToLower(resource)

	s.mu.RLock()
	if cached, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	path, err := s.find(resource)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file %s: %w", path, err)
	}

	var set FieldSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse metadata file %s: %w", path, err)
	}
	if set.Resource == "" {
		set.Resource = resource
	}

	s.mu.Lock()
	s.cache[key] = &set
	s.mu.Unlock()

	return &set, nil
}

// Resources lists the resources that have a metadata file.
func (s *FileSource) Resources() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata directory: %w", err)
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		out = append(out, strings.TrimSuffix(entry.Name(), ext))
	}
	sort.Strings(out)
	return out, nil
}

// Invalidate clears the parsed-file cache.
func (s *FileSource) Invalidate() {
	s.mu.Lock()
	s.cache = make(map[string]*FieldSet)
	s.mu.Unlock()
}

// find locates the file for resource, matching the name case-insensitively.
func (s *FileSource) find(resource string) (string, error) {
	for _, ext := range []string{".yaml", ".yml"} {
		p := filepath.Join(s.dir, resource+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	names, err := s.Resources()
	if err != nil {
		return "", err
	}
	for _, name := range names {
		if strings.EqualFold(name, resource) {
			for _, ext := range []string{".yaml", ".yml"} {
				p := filepath.Join(s.dir, name+ext)
				if _, err := os.Stat(p); err == nil {
					return p, nil
				}
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownResource, resource)
}

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

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/msoukhomlinov/autotask-mcp/pkg/entity"
	"github.com/msoukhomlinov/autotask-mcp/pkg/mcp/protocol"
	"github.com/msoukhomlinov/autotask-mcp/pkg/mcp/server"
)

// ResourceScheme prefixes metadata resource URIs.
const ResourceScheme = "autotask"

// MetadataResources publishes field metadata as MCP resources:
//
//	autotask://<resource>/fields?mode=read|write
//	autotask://<resource>/picklists/<fieldId>
type MetadataResources struct {
	provider  entity.Provider
	picklists entity.PicklistProvider
	resources []string
}

// NewMetadataResources lists one fields resource per name in resources.
// Picklist URIs are served only when provider also implements
// entity.PicklistProvider.
func NewMetadataResources(provider entity.Provider, resources []string) *MetadataResources {
	m := &MetadataResources{provider: provider, resources: resources}
	if pp, ok := provider.(entity.PicklistProvider); ok {
		m.picklists = pp
	}
	return m
}

// FieldsURI returns the fields resource URI of resource.
func FieldsURI(resource string) string {
	return fmt.Sprintf("%s://%s/fields", ResourceScheme, resource)
}

// ListResources implements server.ResourceProvider.
func (m *MetadataResources) ListResources(_ context.Context) ([]protocol.Resource, error) {
	out := make([]protocol.Resource, 0, len(m.resources))
	for _, name := range m.resources {
		out = append(out, protocol.Resource{
			URI:         FieldsURI(name),
			Name:        name + " fields",
			Description: fmt.Sprintf("Field metadata of the %s resource", name),
			MimeType:    "application/json",
		})
	}
	return out, nil
}

// ListResourceTemplates implements server.ResourceTemplateProvider.
func (m *MetadataResources) ListResourceTemplates(_ context.Context) ([]protocol.ResourceTemplate, error) {
	templates := []protocol.ResourceTemplate{{
		URITemplate: ResourceScheme + "://{resource}/fields{?mode}",
		Name:        "fields",
		Description: "Field metadata of any resource, for reading or writing",
		MimeType:    "application/json",
	}}
	if m.picklists != nil {
		templates = append(templates, protocol.ResourceTemplate{
			URITemplate: ResourceScheme + "://{resource}/picklists/{fieldId}",
			Name:        "picklist",
			Description: "Active values of one picklist field",
			MimeType:    "application/json",
		})
	}
	return templates, nil
}

// ReadResource implements server.ResourceProvider.
func (m *MetadataResources) ReadResource(ctx context.Context, uri string) (*protocol.ReadResourceResult, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid resource uri: %w", err)
	}
	if u.Scheme != ResourceScheme || u.Host == "" {
		return nil, fmt.Errorf("unsupported resource uri %q", uri)
	}
	resource := u.Host
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")

	var body interface{}
	switch {
	case len(parts) == 1 && parts[0] == "fields":
		mode, err := entity.ParseMode(u.Query().Get("mode"))
		if err != nil {
			return nil, err
		}
		fields, err := m.provider.GetFields(ctx, resource, mode)
		if err != nil {
			return nil, err
		}
		body = map[string]interface{}{"resource": resource, "mode": string(mode), "fields": fields}

	case len(parts) == 2 && parts[0] == "picklists" && m.picklists != nil:
		values, err := m.picklists.GetPicklistValues(ctx, resource, parts[1])
		if err != nil {
			return nil, err
		}
		body = map[string]interface{}{"resource": resource, "fieldId": parts[1], "values": values}

	default:
		return nil, fmt.Errorf("unsupported resource uri %q", uri)
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", uri, err)
	}
	return &protocol.ReadResourceResult{Contents: []protocol.ResourceContents{{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(raw),
	}}}, nil
}

var (
	_ server.ResourceProvider         = (*MetadataResources)(nil)
	_ server.ResourceTemplateProvider = (*MetadataResources)(nil)
)

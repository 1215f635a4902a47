package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const uriScheme = "socrates://"

// registerResources registers the project resources with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "projects",
		Name:        "projects",
		Description: "Stored projects and their linked repositories",
		MIMEType:    "application/json",
	}, s.handleProjectsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "projects/{projectId}/status",
		Name:        "project-status",
		Description: "GitHub sync status of a project",
		MIMEType:    "application/json",
	}, s.handleProjectStatusResource)
}

func (s *Server) handleProjectsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Projects == nil {
		return jsonResource(req.Params.URI, []struct{}{})
	}

	projects, err := s.ports.Projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	type projectInfo struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Repository string `json:"repository,omitempty"`
		Branch     string `json:"branch,omitempty"`
	}

	infos := make([]projectInfo, len(projects))
	for i := range projects {
		infos[i] = projectInfo{
			ID:         projects[i].ID,
			Name:       projects[i].Name,
			Repository: projects[i].Repository,
			Branch:     projects[i].Branch,
		}
	}
	return jsonResource(req.Params.URI, infos)
}

func (s *Server) handleProjectStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Sync == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	id := extractProjectID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	status, err := s.ports.Sync.Status(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("project status: %w", err)
	}
	return jsonResource(req.Params.URI, projectStatusOutput(status))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractProjectID extracts the ID from socrates://projects/{projectId}/status.
func extractProjectID(uri string) string {
	const prefix = uriScheme + "projects/"
	const suffix = "/status"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return ""
	}
	id := strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

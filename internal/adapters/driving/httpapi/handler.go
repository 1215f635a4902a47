package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/socrates/internal/core/domain"
	"github.com/custodia-labs/socrates/internal/core/ports/driving"
)

// ImportRequest is the body of POST /github/import.
type ImportRequest struct {
	URL    string `json:"url" binding:"required"`
	Name   string `json:"name"`
	Branch string `json:"branch"`
}

// PushRequest is the body of POST /github/projects/:id/push.
type PushRequest struct {
	Message  string `json:"message"`
	Create   bool   `json:"create"`
	RepoName string `json:"repo_name"`
	Private  bool   `json:"private"`
}

// SyncRequest is the body of POST /github/projects/:id/sync.
type SyncRequest struct {
	Message string `json:"message"`
}

// GitHubHandler serves the /github routes.
type GitHubHandler struct {
	sync     driving.ProjectSyncService
	projects driving.ProjectService
}

// NewGitHubHandler creates a handler. projects may be nil, which disables listing.
func NewGitHubHandler(sync driving.ProjectSyncService, projects driving.ProjectService) *GitHubHandler {
	return &GitHubHandler{sync: sync, projects: projects}
}

// Import clones a repository into a new project.
func (h *GitHubHandler) Import(ctx *gin.Context) {
	var req ImportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		AbortWithError(ctx, http.StatusBadRequest, CodeInvalidRequest, err)
		return
	}

	report, err := h.sync.Import(ctx.Request.Context(), ctx.GetString(tokenKey), driving.ImportRequest{
		URL:    req.URL,
		Name:   req.Name,
		Branch: req.Branch,
	})
	h.respond(ctx, http.StatusCreated, report, err)
}

// Pull replaces stored project files with the remote branch.
func (h *GitHubHandler) Pull(ctx *gin.Context) {
	report, err := h.sync.Pull(ctx.Request.Context(), ctx.GetString(tokenKey), ctx.Param("id"))
	h.respond(ctx, http.StatusOK, report, err)
}

// Push commits and pushes stored project files.
func (h *GitHubHandler) Push(ctx *gin.Context) {
	var req PushRequest
	if !bindOptional(ctx, &req) {
		return
	}

	report, err := h.sync.Push(ctx.Request.Context(), ctx.GetString(tokenKey), ctx.Param("id"), driving.PushRequest{
		Message:  req.Message,
		Create:   req.Create,
		RepoName: req.RepoName,
		Private:  req.Private,
	})
	h.respond(ctx, http.StatusOK, report, err)
}

// Sync pushes and then refreshes stored files from the merged tree.
func (h *GitHubHandler) Sync(ctx *gin.Context) {
	var req SyncRequest
	if !bindOptional(ctx, &req) {
		return
	}

	report, err := h.sync.Sync(ctx.Request.Context(), ctx.GetString(tokenKey), ctx.Param("id"), req.Message)
	h.respond(ctx, http.StatusOK, report, err)
}

// Status returns a project's linkage and last sync state.
func (h *GitHubHandler) Status(ctx *gin.Context) {
	status, err := h.sync.Status(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		AbortWithSyncError(ctx, err)
		return
	}
	ctx.PureJSON(http.StatusOK, status)
}

// Projects lists stored projects.
func (h *GitHubHandler) Projects(ctx *gin.Context) {
	if h.projects == nil {
		ctx.PureJSON(http.StatusOK, gin.H{"projects": []domain.Project{}})
		return
	}

	projects, err := h.projects.List(ctx.Request.Context())
	if err != nil {
		AbortWithSyncError(ctx, err)
		return
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
	ctx.PureJSON(http.StatusOK, gin.H{"projects": infos})
}

// respond writes a workflow report. Partial results are 207 so clients
// cannot mistake them for full success.
func (h *GitHubHandler) respond(ctx *gin.Context, okStatus int, report *domain.SyncReport, err error) {
	if err != nil {
		AbortWithSyncError(ctx, err)
		return
	}
	if report == nil {
		AbortWithError(ctx, http.StatusInternalServerError, CodeInternalError, fmt.Errorf("workflow returned no report"))
		return
	}

	status := okStatus
	if report.Status == domain.StatusPartial {
		status = http.StatusMultiStatus
	}
	ctx.PureJSON(status, report)
}

// bindOptional binds a JSON body when one is present.
func bindOptional(ctx *gin.Context, v any) bool {
	if ctx.Request.ContentLength == 0 {
		return true
	}
	if err := ctx.ShouldBindJSON(v); err != nil {
		AbortWithError(ctx, http.StatusBadRequest, CodeInvalidRequest, err)
		return false
	}
	return true
}

package evidence

import (
	"context"
	"fmt"

	"github.com/xanzy/go-gitlab"

	"github.com/randalmurphal/autoflow"
)

// GitLabCollector derives merge evidence from a GitLab merge request.
type GitLabCollector struct {
	client    *gitlab.Client
	projectID string // Numeric ID or "namespace/project"
}

// NewGitLabCollector creates a collector for one project.
// baseURL is the GitLab instance URL (empty for gitlab.com).
func NewGitLabCollector(token, baseURL, projectID string) (*GitLabCollector, error) {
	if token == "" {
		return nil, fmt.Errorf("GitLab token is required")
	}
	if projectID == "" {
		return nil, fmt.Errorf("project ID is required")
	}

	var client *gitlab.Client
	var err error
	if baseURL != "" {
		client, err = gitlab.NewClient(token, gitlab.WithBaseURL(baseURL))
	} else {
		client, err = gitlab.NewClient(token)
	}
	if err != nil {
		return nil, fmt.Errorf("create GitLab client: %w", err)
	}

	return &GitLabCollector{
		client:    client,
		projectID: projectID,
	}, nil
}

// CollectMerge gathers merge evidence for a merge request by IID.
func (c *GitLabCollector) CollectMerge(ctx context.Context, iid int) (*autoflow.MergeEvidence, error) {
	mr, _, err := c.client.MergeRequests.GetMergeRequest(c.projectID, iid, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get merge request %d: %w", iid, err)
	}

	approvals, _, err := c.client.MergeRequestApprovals.GetConfiguration(c.projectID, iid, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get approvals for %d: %w", iid, err)
	}

	return &autoflow.MergeEvidence{
		HasChanges:        mr.ChangesCount != "" && mr.ChangesCount != "0",
		ConflictsResolved: !mr.HasConflicts,
		ReviewsApproved:   approvals.Approved,
		CIPassing:         mr.Pipeline != nil && mr.Pipeline.Status == "success",
	}, nil
}

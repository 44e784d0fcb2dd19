package evidence

import (
	"context"
	"fmt"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/randalmurphal/autoflow"
)

// GitHubCollector derives merge evidence from a GitHub pull request.
type GitHubCollector struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHubCollector creates a collector for one repository.
// token is a personal access token or GitHub App token.
func NewGitHubCollector(token, owner, repo string) (*GitHubCollector, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token is required")
	}
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("owner and repo are required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)

	return &GitHubCollector{
		client: github.NewClient(tc),
		owner:  owner,
		repo:   repo,
	}, nil
}

// CollectMerge gathers merge evidence for a pull request by number.
func (c *GitHubCollector) CollectMerge(ctx context.Context, number int) (*autoflow.MergeEvidence, error) {
	pr, _, err := c.client.PullRequests.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return nil, fmt.Errorf("get pull request %d: %w", number, err)
	}

	reviews, _, err := c.client.PullRequests.ListReviews(ctx, c.owner, c.repo, number, nil)
	if err != nil {
		return nil, fmt.Errorf("list reviews for %d: %w", number, err)
	}

	ev := &autoflow.MergeEvidence{
		HasChanges:        pr.GetCommits() > 0 || pr.GetChangedFiles() > 0,
		ConflictsResolved: conflictsResolved(pr),
		ReviewsApproved:   approvedByReviews(reviews),
	}

	if sha := pr.GetHead().GetSHA(); sha != "" {
		status, _, err := c.client.Repositories.GetCombinedStatus(ctx, c.owner, c.repo, sha, nil)
		if err != nil {
			return nil, fmt.Errorf("combined status for %s: %w", sha, err)
		}
		ev.CIPassing = status.GetState() == "success"
	}

	return ev, nil
}

// conflictsResolved reads GitHub's mergeability verdict. A PR GitHub has
// not finished computing yet ("unknown") is treated as unresolved.
func conflictsResolved(pr *github.PullRequest) bool {
	if pr.Mergeable != nil {
		return pr.GetMergeable()
	}
	return false
}

// approvedByReviews reports whether the latest review from every reviewer
// is an approval. A later CHANGES_REQUESTED supersedes an earlier approval.
func approvedByReviews(reviews []*github.PullRequestReview) bool {
	latest := make(map[string]string)
	for _, review := range reviews {
		login := review.GetUser().GetLogin()
		switch review.GetState() {
		case "APPROVED", "CHANGES_REQUESTED":
			latest[login] = review.GetState()
		}
	}

	if len(latest) == 0 {
		return false
	}
	for _, state := range latest {
		if state != "APPROVED" {
			return false
		}
	}
	return true
}

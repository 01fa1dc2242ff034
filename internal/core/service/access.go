package service

import "github.com/campus-issues/issue-tracker/internal/core/domain"

// isOwnerOrAdmin is the authorization predicate shared by edit and delete:
// the reporter of an issue and any admin may modify it.
func isOwnerOrAdmin(issue *domain.Issue, r domain.Requester) bool {
	return r.IsAdmin() || (r.ID != "" && issue.ReportedBy == r.ID)
}

func requireAdmin(r domain.Requester) error {
	if !r.IsAdmin() {
		return domain.NewError(domain.ErrForbidden, domain.MsgAdminOnly)
	}
	return nil
}

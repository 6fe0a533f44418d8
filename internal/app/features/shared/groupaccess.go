// internal/app/features/shared/groupaccess.go
package shared

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/bulletin/internal/app/features/errors"
	"github.com/dalemusser/bulletin/internal/app/system/authz"
	"github.com/dalemusser/bulletin/internal/app/system/formutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MembershipChecker reports whether a user belongs to a group.
type MembershipChecker interface {
	IsMember(ctx context.Context, userID, groupID primitive.ObjectID) (bool, error)
}

// RequireGroupMember passes the request on only when the signed-in user
// belongs to the group named by the {param} URL parameter. Administrators
// always pass. Non-members get 403.
func RequireGroupMember(mc MembershipChecker, errLog *uierrors.ErrorLogger, param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authz.IsAdmin(r) {
				next.ServeHTTP(w, r)
				return
			}

			groupID, err := formutil.ObjectIDParam(r, param)
			if err != nil {
				errLog.Write(w, r, err)
				return
			}
			userID := authz.UserID(r)

			ok, err := mc.IsMember(r.Context(), userID, groupID)
			if err != nil {
				errLog.Write(w, r, err)
				return
			}
			if !ok {
				errLog.Log.Debug("group access denied",
					zap.String("user_id", userID.Hex()),
					zap.String("group_id", groupID.Hex()))
				uierrors.WriteStatus(w, http.StatusForbidden, "not_member", "you are not a member of this group")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

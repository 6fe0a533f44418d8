// internal/app/features/groups/util.go
package groups

import (
	"net/http"

	uierrors "github.com/dalemusser/bulletin/internal/app/features/errors"
	"github.com/dalemusser/bulletin/internal/app/system/formutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memberParams reads {id} and {userID}, writing the error response itself
// when either is malformed.
func (h *Handler) memberParams(w http.ResponseWriter, r *http.Request) (groupID, userID primitive.ObjectID, ok bool) {
	groupID, err := formutil.ObjectIDParam(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return groupID, userID, false
	}
	userID, err = formutil.ObjectIDParam(r, "userID")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return groupID, userID, false
	}
	return groupID, userID, true
}

// writeGroup responds with the group's current state.
func (h *Handler) writeGroup(w http.ResponseWriter, r *http.Request, id primitive.ObjectID) {
	g, err := h.Membership.GetGroup(r.Context(), id)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, g)
}

package interfaces

import "fx-dashboard/src/models"

// -----------------------------------------------------------------------------
// IRenderer is the rendering collaborator. It receives immutable frames only;
// RESET frames require a full re-render, APPEND frames an incremental one.
// -----------------------------------------------------------------------------

type IRenderer interface {
	Render(frame models.MDashboardFrame)
}

package domain

// PushAction tags an outbound push with the local mutation that
// triggered it.
type PushAction string

const (
	// PushCreate mirrors a local record creation.
	PushCreate PushAction = "create"

	// PushUpdate mirrors a local record update.
	PushUpdate PushAction = "update"

	// PushDelete mirrors a local record deletion.
	PushDelete PushAction = "delete"
)

// CommitResult summarises one commit of accepted changes.
type CommitResult struct {
	// Created and Updated count records written, split by
	// classification kind.
	Created int
	Updated int

	// Chunks is the number of batched writes issued. A chunk is
	// atomic; the commit across chunks is not.
	Chunks int
}

// Written returns the total number of records written.
func (r *CommitResult) Written() int {
	return r.Created + r.Updated
}

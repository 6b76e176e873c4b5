package lbt

import (
	"github.com/Anvesh-Bunga/MTP-MTECH/datarecording"
	"github.com/Anvesh-Bunga/MTP-MTECH/sim"
)

type accessTraceEntry struct {
	Time         float64
	BwpID        int
	Granted      bool
	Phase        string
	BackoffSlots int
	Cw           int
}

// AccessRecorder is a hook that stores one row per channel access attempt
// through a data recorder. Attach it to a Comp to trace every grant and
// denial.
type AccessRecorder struct {
	timeTeller sim.TimeTeller
	backend    datarecording.DataRecorder
}

// NewAccessRecorder creates an AccessRecorder that writes into the
// lbt_access_trace table of the given backend.
func NewAccessRecorder(
	timeTeller sim.TimeTeller,
	backend datarecording.DataRecorder,
) *AccessRecorder {
	r := &AccessRecorder{
		timeTeller: timeTeller,
		backend:    backend,
	}

	r.backend.CreateTable("lbt_access_trace", accessTraceEntry{})

	return r
}

// Func records the access attempt carried by the hook context.
func (r *AccessRecorder) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosAccessGranted && ctx.Pos != HookPosAccessDenied {
		return
	}

	detail, ok := ctx.Item.(AccessDetail)
	if !ok {
		return
	}

	r.backend.InsertData("lbt_access_trace", accessTraceEntry{
		Time:         float64(r.timeTeller.CurrentTime()),
		BwpID:        detail.BwpID,
		Granted:      detail.Granted,
		Phase:        detail.Phase,
		BackoffSlots: detail.BackoffSlots,
		Cw:           detail.Cw,
	})
}

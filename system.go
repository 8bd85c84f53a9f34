package ecs

// SystemContext is passed to every System hook. Component kinds declared
// through Register read out of it via their BucketSlice/Get accessors
// rather than being handed typed parameters directly, since a System's
// input set is only known at runtime in Go.
type SystemContext struct {
	Model     *Model
	Archetype Archetype
	Entities  []EntityId
	Bucket    *Bucket
	Scratch   any
}

// System is one unit of per-frame simulation logic. Inputs declares the
// component set a System needs; Update is invoked once per non-empty
// bucket whose archetype is a supertype of Inputs.
type System interface {
	Inputs() Archetype
	Update(ctx *SystemContext) error
}

// BeginEnder is an optional extension a System implements to run a hook
// once per Runner.Tick, before and after its per-bucket Update calls.
type BeginEnder interface {
	Begin(ctx *SystemContext) error
	End(ctx *SystemContext) error
}

// Runner drives a fixed, ordered list of Systems over a Model. Its
// scheduling policy is deliberately bare, per SPEC_FULL.md's system
// runner contract: systems run once per Tick, in registration order.
// Structural mutation during a Tick must go through Model.Enqueue, since
// each System's bucket walk holds the Model locked.
type Runner struct {
	Model   *Model
	Systems []System
}

// NewRunner creates a Runner over model with the given systems, run in
// the given order on every Tick.
func NewRunner(model *Model, systems ...System) *Runner {
	return &Runner{Model: model, Systems: systems}
}

// Tick runs every registered System once against the buckets currently
// matching its Inputs. scratch is forwarded to every SystemContext
// unexamined, for a caller-owned per-frame arena.
func (r *Runner) Tick(scratch any) error {
	for _, sys := range r.Systems {
		if be, ok := sys.(BeginEnder); ok {
			if err := be.Begin(&SystemContext{Model: r.Model, Scratch: scratch}); err != nil {
				return err
			}
		}

		cur := r.Model.Query(sys.Inputs())
		for bucket := range cur.Buckets() {
			ctx := &SystemContext{
				Model:     r.Model,
				Archetype: bucket.Archetype(),
				Entities:  bucket.Entities(),
				Bucket:    bucket,
				Scratch:   scratch,
			}
			if err := sys.Update(ctx); err != nil {
				return err
			}
		}

		if be, ok := sys.(BeginEnder); ok {
			if err := be.End(&SystemContext{Model: r.Model, Scratch: scratch}); err != nil {
				return err
			}
		}
	}
	return nil
}
